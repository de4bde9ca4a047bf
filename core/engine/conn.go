//go:build linux

package engine

import (
	"errors"
	"io"
	"net/netip"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Conn is a blocking, descriptor-backed stream connection.
type Conn struct {
	fd         int32
	localAddr  netip.AddrPort
	remoteAddr netip.AddrPort
	closed     atomic.Bool
}

func NewConn(fd int32, localAddr, remoteAddr netip.AddrPort) *Conn {
	return &Conn{
		fd:         fd,
		localAddr:  localAddr,
		remoteAddr: remoteAddr,
	}
}

func (c *Conn) Fd() int32 {
	return c.fd
}

// SysFd exposes the raw descriptor for zero-copy transfers.
func (c *Conn) SysFd() int {
	return int(c.fd)
}

func (c *Conn) LocalAddr() netip.AddrPort {
	return c.localAddr
}

func (c *Conn) RemoteAddr() netip.AddrPort {
	return c.remoteAddr
}

func (c *Conn) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		n, err := unix.Read(int(c.fd), p)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return 0, err
		}
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

func (c *Conn) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := unix.Write(int(c.fd), p[written:])
		if err != nil {
			if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
				continue
			}
			return written, err
		}
		written += n
	}
	return written, nil
}

func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return unix.Close(int(c.fd))
}
