//go:build linux

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/touka-aoi/low-level-server/core/engine"
	toukaerrors "github.com/touka-aoi/low-level-server/core/errors"
	"github.com/touka-aoi/low-level-server/middleware"
	"github.com/touka-aoi/low-level-server/server/peer"
	"github.com/touka-aoi/low-level-server/transport"
)

const (
	maxAcceptDelay = time.Second
)

type SrvStatus int32

const (
	Running SrvStatus = iota
	Draining
	Stopped
)

var stateName = map[SrvStatus]string{
	Running:  "running",
	Draining: "draining",
	Stopped:  "stopped",
}

func (s SrvStatus) String() string {
	return stateName[s]
}

// NetworkServer accepts connections one at a time and runs each to
// completion before accepting the next.
type NetworkServer struct {
	engine   engine.NetEngine
	listener engine.Listener
	config   NetworkServerConfig
	pipeline *middleware.Pipeline
	app      transport.Transport
	status   atomic.Int32
	served   atomic.Int64
}

func NewNetworkServer(netEngine engine.NetEngine, config NetworkServerConfig, pipeline *middleware.Pipeline, app transport.Transport) *NetworkServer {
	ns := &NetworkServer{
		engine:   netEngine,
		config:   config,
		pipeline: pipeline,
		app:      app,
	}
	ns.status.Store(int32(Stopped))
	return ns
}

func (ns *NetworkServer) Status() SrvStatus {
	return SrvStatus(ns.status.Load())
}

// Served reports how many connections have been handled.
func (ns *NetworkServer) Served() int64 {
	return ns.served.Load()
}

func (ns *NetworkServer) Listen(ctx context.Context) error {
	if err := ns.config.Validate(); err != nil {
		return err
	}
	addr := ns.config.ListenAddr()
	listener, err := engine.Listen(ns.config.Protocol, addr, ns.config.Backlog)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	ns.listener = listener

	slog.InfoContext(ctx, "Listening on", "address", listener.Addr().String())
	return nil
}

// Addr is the bound address; valid after Listen.
func (ns *NetworkServer) Addr() netip.AddrPort {
	if ns.listener == nil {
		return netip.AddrPort{}
	}
	return ns.listener.Addr()
}

// Close releases the listening socket.
func (ns *NetworkServer) Close() error {
	if ns.listener == nil {
		return nil
	}
	err := ns.listener.Close()
	ns.listener = nil
	return err
}

// Serve blocks until ctx is cancelled. The connection in progress at that
// moment is finished first.
func (ns *NetworkServer) Serve(ctx context.Context) error {
	if ns.listener == nil {
		return errors.New("serve: Listen has not been called")
	}
	ns.status.Store(int32(Running))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			ns.status.CompareAndSwap(int32(Running), int32(Draining))
			if err := ns.engine.PrepareClose(); err != nil {
				slog.ErrorContext(ctx, "Failed to prepare close", "error", err)
			}
		case <-done:
		}
	}()

	var delay time.Duration
	for {
		conn, err := ns.engine.Accept(ctx, ns.listener)
		if err != nil {
			if errors.Is(err, toukaerrors.ErrListenerClosed) || ctx.Err() != nil {
				ns.status.Store(int32(Stopped))
				slog.InfoContext(ctx, "Server stopped", "served", ns.Served())
				return nil
			}

			// 一時的なエラー (EMFILE など) はバックオフしてリトライ
			if delay == 0 {
				delay = 5 * time.Millisecond
			} else {
				delay = min(delay*2, maxAcceptDelay)
			}
			slog.ErrorContext(ctx, "Failed to accept connection", "error", err, "retry", delay)
			time.Sleep(delay)
			continue
		}
		delay = 0

		ns.handleConn(ctx, conn)
	}
}

func (ns *NetworkServer) handleConn(ctx context.Context, conn *engine.Conn) {
	connPeer := peer.NewPeer(conn.Fd(), conn.LocalAddr(), conn.RemoteAddr())
	slog.DebugContext(ctx, "Accepted new connection", "fd", conn.Fd(), "localAddr", connPeer.LocalAddr(), "remoteAddr", connPeer.RemoteAddr())

	defer func() {
		connPeer.SetState(peer.StateClosed)
		if err := conn.Close(); err != nil {
			slog.WarnContext(ctx, "Failed to close peer", "fd", conn.Fd(), "error", err)
		}
		if ns.app != nil {
			if err := ns.app.OnDisconnect(ctx, connPeer); err != nil {
				slog.ErrorContext(ctx, "Application error", "error", err)
			}
		}
		ns.served.Add(1)
	}()

	if ns.app == nil {
		return
	}

	// Applicationに通知
	if err := ns.app.OnConnect(ctx, connPeer); err != nil {
		slog.ErrorContext(ctx, "Application rejected connection", "fd", conn.Fd(), "error", err)
		return
	}
	connPeer.SetState(peer.StateActive)

	mctx := middleware.NewContext(connPeer)
	err := ns.pipeline.Execute(mctx, func(c *middleware.Context) error {
		summary, err := ns.app.OnConn(ctx, connPeer, conn)
		c.Summary = summary
		return err
	})
	if err != nil {
		// only this connection is dropped; the loop keeps accepting
		slog.ErrorContext(ctx, "Connection aborted", "session", connPeer.SessionID, "fd", conn.Fd(), "error", err)
	}
}
