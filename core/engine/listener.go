//go:build linux

package engine

import (
	"fmt"
	"net/netip"

	"github.com/touka-aoi/low-level-server/core/core"
)

type Listener interface {
	Fd() int32
	Addr() netip.AddrPort
	Close() error
}

type TCPListener struct {
	socket *core.Socket
	addr   netip.AddrPort
}

func Listen(protocol, externalAddress string, listenMaxConnection int) (Listener, error) {
	switch protocol {
	case "tcp":
		addr, err := netip.ParseAddrPort(externalAddress)
		if err != nil {
			return nil, err
		}

		s, err := core.CreateTCPSocket()
		if err != nil {
			return nil, err
		}
		if err := s.Bind(addr); err != nil {
			s.Close()
			return nil, err
		}
		if err := s.Listen(listenMaxConnection); err != nil {
			s.Close()
			return nil, err
		}

		bound, err := s.SockName()
		if err != nil {
			s.Close()
			return nil, err
		}

		return &TCPListener{
			socket: s,
			addr:   bound,
		}, nil
	}

	return nil, fmt.Errorf("unsupported protocol %q", protocol)
}

func (l *TCPListener) accept() (int32, error) {
	return l.socket.Accept()
}

func (l *TCPListener) shutdown() error {
	return l.socket.Shutdown()
}

func (l *TCPListener) Close() error {
	err := l.socket.Close()
	if err != nil {
		return err
	}
	return nil
}

func (l *TCPListener) Fd() int32 {
	return l.socket.Fd
}

// Addr returns the bound address, with the kernel-chosen port when 0 was requested.
func (l *TCPListener) Addr() netip.AddrPort {
	return l.addr
}
