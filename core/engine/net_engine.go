//go:build linux

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/netip"
	"sync"
	"sync/atomic"

	"github.com/touka-aoi/low-level-server/core/core"
	toukaerrors "github.com/touka-aoi/low-level-server/core/errors"
	"golang.org/x/sys/unix"
)

type SockAddr struct {
	Fd         int32
	LocalAddr  netip.AddrPort
	RemoteAddr netip.AddrPort
}

type NetEngine interface {
	Accept(ctx context.Context, listener Listener) (*Conn, error)
	PrepareClose() error
	GetSockAddr(ctx context.Context, fd int32) (*SockAddr, error)
	Close() error
}

// BlockingNetEngine hands out one connection per Accept call and blocks the
// calling goroutine until a peer arrives.
type BlockingNetEngine struct {
	mu        sync.Mutex
	listeners map[int32]*TCPListener
	closing   atomic.Bool
}

func NewBlockingNetEngine() *BlockingNetEngine {
	return &BlockingNetEngine{
		listeners: make(map[int32]*TCPListener),
	}
}

func (e *BlockingNetEngine) Accept(ctx context.Context, listener Listener) (*Conn, error) {
	l, ok := listener.(*TCPListener)
	if !ok {
		return nil, fmt.Errorf("accept: unsupported listener %T", listener)
	}
	if ctx.Err() != nil {
		return nil, toukaerrors.ErrListenerClosed
	}

	// closing is checked under mu; PrepareClose shuts down every listener registered here
	e.mu.Lock()
	if e.closing.Load() {
		e.mu.Unlock()
		return nil, toukaerrors.ErrListenerClosed
	}
	e.listeners[l.Fd()] = l
	e.mu.Unlock()

	fd, err := l.accept()
	if err != nil {
		if e.closing.Load() {
			return nil, toukaerrors.ErrListenerClosed
		}
		return nil, err
	}

	addr, err := e.GetSockAddr(ctx, fd)
	if err != nil {
		slog.WarnContext(ctx, "Failed to resolve socket addresses", "fd", fd, "error", err)
		addr = &SockAddr{Fd: fd}
	}
	return NewConn(fd, addr.LocalAddr, addr.RemoteAddr), nil
}

// PrepareClose unblocks any pending Accept. Safe to call from another goroutine.
func (e *BlockingNetEngine) PrepareClose() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closing.CompareAndSwap(false, true) {
		return nil
	}
	for fd, l := range e.listeners {
		if err := l.shutdown(); err != nil {
			slog.Warn("Failed to shutdown listener", "fd", fd, "error", err)
		}
	}
	return nil
}

func (e *BlockingNetEngine) GetSockAddr(ctx context.Context, fd int32) (*SockAddr, error) {
	localSockAddr, err := unix.Getsockname(int(fd))
	if err != nil {
		return nil, err
	}

	remoteSockAddr, err := unix.Getpeername(int(fd))
	if err != nil {
		return nil, err
	}

	return &SockAddr{
		Fd:         fd,
		LocalAddr:  core.SockaddrToAddrPort(localSockAddr),
		RemoteAddr: core.SockaddrToAddrPort(remoteSockAddr),
	}, nil
}

func (e *BlockingNetEngine) Close() error {
	return e.PrepareClose()
}
