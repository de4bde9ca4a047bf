package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/touka-aoi/low-level-server/core/buffer"
	"github.com/touka-aoi/low-level-server/server/peer"
	"github.com/touka-aoi/low-level-server/transport"
)

type HTTPApplication struct {
	router     *Router
	headerSize int
}

var _ transport.Transport = (*HTTPApplication)(nil)

// NewHTTPApplication serves one request per connection through router.
// headerSize bounds the header block; 0 selects buffer.DefaultHeaderSize.
func NewHTTPApplication(router *Router, headerSize int) *HTTPApplication {
	if headerSize <= 0 {
		headerSize = buffer.DefaultHeaderSize
	}
	return &HTTPApplication{
		router:     router,
		headerSize: headerSize,
	}
}

// OnConnect is called when a new connection is established
func (h *HTTPApplication) OnConnect(ctx context.Context, p *peer.Peer) error {
	slog.DebugContext(ctx, "HTTP connection established",
		"session", p.SessionID,
		"peer", p.RemoteAddr(),
		"local", p.LocalAddr())
	return nil
}

// OnConn reads, executes and answers exactly one request.
func (h *HTTPApplication) OnConn(ctx context.Context, p *peer.Peer, conn io.ReadWriter) (transport.Summary, error) {
	logger := p.Logger(slog.Default())

	rec := NewRecord(conn, h.headerSize, logger)
	defer func() {
		if err := rec.Close(); err != nil {
			logger.WarnContext(ctx, "Failed to close target file", "error", err)
		}
	}()

	if err := rec.ReadHeader(); err != nil {
		return rec.Summary(), fmt.Errorf("read header: %w", err)
	}

	if err := rec.Parse(); err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			logger.DebugContext(ctx, "Malformed request", "status", int(pe.Status), "reason", pe.Reason)
		}
	} else {
		logger.DebugContext(ctx, "HTTP request received",
			"method", rec.req.Method.String(),
			"target", rec.req.Target)
	}

	if err := rec.Handle(ctx, h.router); err != nil {
		return rec.Summary(), err
	}
	return rec.Summary(), nil
}

// OnDisconnect is called when a connection is closed
func (h *HTTPApplication) OnDisconnect(ctx context.Context, p *peer.Peer) error {
	slog.DebugContext(ctx, "HTTP connection closed", "session", p.SessionID, "peer", p.RemoteAddr())
	return nil
}
