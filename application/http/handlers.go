package http

import (
	"context"
)

// DefaultHandlers returns a router serving GET and PUT from store
func DefaultHandlers(store *FileStore) *Router {
	router := NewRouter()
	router.GET(store.Get)
	router.PUT(store.Put)
	return router
}

// Get opens the target for reading. The file itself is streamed by the
// record after the status line has been written.
func (s *FileStore) Get(ctx context.Context, rec *Record) Status {
	f, size, status := s.OpenForRead(rec.req.Target)
	if status != StatusOK {
		rec.logger.DebugContext(ctx, "GET rejected", "target", rec.req.Target, "status", int(status))
		return status
	}
	rec.attachFile(f, size)
	return StatusOK
}

// Put opens or creates the target and stores the request body in it before
// the response is written. A short body is logged; the status stands.
func (s *FileStore) Put(ctx context.Context, rec *Record) Status {
	declared, ok := rec.req.ContentLength()
	if !ok {
		return StatusBadRequest
	}

	f, status := s.OpenForWrite(rec.req.Target)
	if status != StatusOK && status != StatusCreated {
		rec.logger.DebugContext(ctx, "PUT rejected", "target", rec.req.Target, "status", int(status))
		return status
	}
	rec.attachFile(f, 0)

	stored, err := rec.receiveBody(f, declared)
	if err != nil || stored != declared {
		rec.logger.WarnContext(ctx, "PUT stored wrong number of bytes",
			"target", rec.req.Target,
			"declared", declared,
			"stored", stored,
			"error", err)
	}
	return status
}
