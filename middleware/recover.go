package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Recover turns a panic further down the chain into an error so that one
// connection cannot take the accept loop down.
func Recover() MiddlewareFunc {
	return func(ctx *Context, next NextFunc) (err error) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Recovered from panic",
					"session", ctx.Peer.Session(),
					"panic", r,
					"stack", string(debug.Stack()))
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return next(ctx)
	}
}
