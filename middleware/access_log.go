package middleware

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewAccessLogger writes one JSON object per line to w.
func NewAccessLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// AccessLog records every connection once it has been answered.
func AccessLog(logger zerolog.Logger) MiddlewareFunc {
	return func(ctx *Context, next NextFunc) error {
		err := next(ctx)

		ev := logger.Info()
		if err != nil {
			ev = logger.Warn().Err(err)
		}
		s := ctx.Summary
		ev.Str("session", ctx.Peer.Session()).
			Str("remote", ctx.Peer.RemoteAddr().String()).
			Str("method", s.Method).
			Str("target", s.Target).
			Int("status", s.Status).
			Int64("bytes_in", s.BytesRead).
			Int64("bytes_out", s.BytesWritten).
			Dur("duration", time.Since(ctx.Start)).
			Msg("request")
		return err
	}
}
