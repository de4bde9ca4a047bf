package http

import (
	"context"
	"sync"
)

// HandlerFunc executes a parsed request and returns the status to answer with.
type HandlerFunc func(ctx context.Context, rec *Record) Status

type Router struct {
	mu     sync.RWMutex
	routes map[Method]HandlerFunc
}

// NewRouter creates a new router
func NewRouter() *Router {
	return &Router{
		routes: make(map[Method]HandlerFunc),
	}
}

// Handle registers a handler for the given method
func (r *Router) Handle(method Method, handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.routes[method] = handler
}

// GET registers a GET handler
func (r *Router) GET(handler HandlerFunc) {
	r.Handle(MethodGET, handler)
}

// PUT registers a PUT handler
func (r *Router) PUT(handler HandlerFunc) {
	r.Handle(MethodPUT, handler)
}

// Match finds a handler for the given method
func (r *Router) Match(method Method) HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.routes[method]
}
