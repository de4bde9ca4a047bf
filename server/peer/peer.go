package peer

import (
	"log/slog"
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type Peer struct {
	SessionID  string
	fd         int32
	localAddr  netip.AddrPort
	remoteAddr netip.AddrPort
	status     atomic.Int32
	LastActive atomic.Int64
}

func NewPeer(fd int32, localAddr netip.AddrPort, remoteAddr netip.AddrPort) *Peer {
	sessionID := uuid.NewString()
	p := &Peer{
		SessionID:  sessionID,
		fd:         fd,
		localAddr:  localAddr,
		remoteAddr: remoteAddr,
	}
	p.Touch()
	return p
}

func (p *Peer) Session() string {
	return p.SessionID
}

func (p *Peer) Fd() int32 {
	return p.fd
}

func (p *Peer) LocalAddr() netip.AddrPort {
	return p.localAddr
}

func (p *Peer) RemoteAddr() netip.AddrPort {
	return p.remoteAddr
}

func (p *Peer) Status() string {
	s := p.status.Load()
	return ConnState(s).String()
}

func (p *Peer) State() ConnState {
	return ConnState(p.status.Load())
}

// SetState moves the peer forward; a closed peer never reopens.
func (p *Peer) SetState(s ConnState) bool {
	for {
		cur := p.status.Load()
		if ConnState(cur) == StateClosed || ConnState(cur) > s {
			return false
		}
		if p.status.CompareAndSwap(cur, int32(s)) {
			p.Touch()
			return true
		}
	}
}

func (p *Peer) Touch() {
	p.LastActive.Store(time.Now().UnixNano())
}

// Logger returns a logger annotated with the connection identity.
func (p *Peer) Logger(base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	return base.With("session", p.SessionID, "fd", p.fd, "remote", p.remoteAddr.String())
}
