package peer

import (
	"net/netip"
	"testing"

	"github.com/google/uuid"
)

func TestNewPeer(t *testing.T) {
	local := netip.MustParseAddrPort("127.0.0.1:8080")
	remote := netip.MustParseAddrPort("10.0.0.2:41000")
	p := NewPeer(7, local, remote)

	if _, err := uuid.Parse(p.SessionID); err != nil {
		t.Errorf("session id %q is not a uuid: %v", p.SessionID, err)
	}
	if p.Session() != p.SessionID {
		t.Errorf("Session() = %q", p.Session())
	}
	if p.Fd() != 7 || p.LocalAddr() != local || p.RemoteAddr() != remote {
		t.Errorf("unexpected identity %d %s %s", p.Fd(), p.LocalAddr(), p.RemoteAddr())
	}
	if p.Status() != "new" {
		t.Errorf("Status() = %q, want new", p.Status())
	}
	if p.LastActive.Load() == 0 {
		t.Error("LastActive not set")
	}

	other := NewPeer(8, local, remote)
	if other.SessionID == p.SessionID {
		t.Error("session ids collide")
	}
}

func TestPeer_SetState(t *testing.T) {
	p := NewPeer(1, netip.AddrPort{}, netip.AddrPort{})

	if !p.SetState(StateActive) {
		t.Fatal("new -> active rejected")
	}
	if p.SetState(StateNew) {
		t.Error("active -> new accepted")
	}
	if !p.SetState(StateClosed) {
		t.Fatal("active -> closed rejected")
	}
	if p.SetState(StateActive) {
		t.Error("closed -> active accepted")
	}
	if p.State() != StateClosed || p.Status() != "closed" {
		t.Errorf("state = %v", p.State())
	}
}

func TestPeer_Logger(t *testing.T) {
	p := NewPeer(1, netip.AddrPort{}, netip.AddrPort{})
	if p.Logger(nil) == nil {
		t.Fatal("Logger(nil) returned nil")
	}
}
