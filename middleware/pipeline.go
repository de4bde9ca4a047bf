package middleware

import (
	"time"

	"github.com/touka-aoi/low-level-server/server/peer"
	"github.com/touka-aoi/low-level-server/transport"
)

type Context struct {
	Peer     peer.Endpoint
	Start    time.Time
	Summary  transport.Summary
	Metadata map[string]interface{}
}

type NextFunc func(*Context) error
type MiddlewareFunc func(*Context, NextFunc) error

type Pipeline struct {
	middlewares []MiddlewareFunc
}

func NewPipeline() *Pipeline {
	return &Pipeline{
		middlewares: make([]MiddlewareFunc, 0),
	}
}

func (p *Pipeline) Use(middleware MiddlewareFunc) *Pipeline {
	p.middlewares = append(p.middlewares, middleware)
	return p
}

// Execute runs the middlewares in registration order; the last one's next
// is final. A nil pipeline runs final directly.
func (p *Pipeline) Execute(ctx *Context, final NextFunc) error {
	if p == nil {
		return final(ctx)
	}
	return p.executeMiddleware(0, ctx, final)
}

func (p *Pipeline) executeMiddleware(index int, ctx *Context, final NextFunc) error {
	if index >= len(p.middlewares) {
		if final == nil {
			return nil
		}
		return final(ctx)
	}

	next := func(ctx *Context) error {
		return p.executeMiddleware(index+1, ctx, final)
	}

	return p.middlewares[index](ctx, next)
}

func NewContext(p peer.Endpoint) *Context {
	return &Context{
		Peer:     p,
		Start:    time.Now(),
		Metadata: make(map[string]interface{}),
	}
}
