//go:build linux

package core

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"

	"golang.org/x/sys/unix"
)

type Socket struct {
	Fd        int32
	LocalAddr string
}

func CreateTCPSocket() (*Socket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		slog.Error("Failed to create socket", "err", err)
		return nil, fmt.Errorf("socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		slog.Error("Failed to set socket option", "err", err)
		unix.Close(fd)
		return nil, fmt.Errorf("setsockopt: %w", err)
	}

	return &Socket{Fd: int32(fd)}, nil
}

func (s *Socket) Bind(address netip.AddrPort) error {
	// https://man7.org/linux/man-pages/man2/bind.2.html
	if !address.Addr().Is4() {
		return fmt.Errorf("bind %s: only IPv4 addresses are supported", address)
	}
	sa := &unix.SockaddrInet4{
		Port: int(address.Port()),
		Addr: address.Addr().As4(),
	}
	if err := unix.Bind(int(s.Fd), sa); err != nil {
		return fmt.Errorf("bind %s: %w", address, err)
	}

	bound, err := s.SockName()
	if err != nil {
		return err
	}
	s.LocalAddr = bound.String()
	return nil
}

func (s *Socket) Listen(maxConn int) error {
	if err := unix.Listen(int(s.Fd), maxConn); err != nil {
		slog.Error("Failed to listen", "err", err)
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Accept blocks until a connection arrives and returns its descriptor.
func (s *Socket) Accept() (int32, error) {
	for {
		nfd, _, err := unix.Accept4(int(s.Fd), unix.SOCK_CLOEXEC)
		if err == nil {
			return int32(nfd), nil
		}
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.ECONNABORTED) {
			continue
		}
		return -1, fmt.Errorf("accept: %w", err)
	}
}

// Shutdown stops further accepts; a blocked Accept returns with an error.
func (s *Socket) Shutdown() error {
	return unix.Shutdown(int(s.Fd), unix.SHUT_RDWR)
}

func (s *Socket) SockName() (netip.AddrPort, error) {
	sa, err := unix.Getsockname(int(s.Fd))
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("getsockname: %w", err)
	}
	return SockaddrToAddrPort(sa), nil
}

func (s *Socket) Close() error {
	return unix.Close(int(s.Fd))
}

func SockaddrToAddrPort(sa unix.Sockaddr) netip.AddrPort {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(v.Addr), uint16(v.Port))
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(v.Addr), uint16(v.Port))
	}
	return netip.AddrPort{}
}
