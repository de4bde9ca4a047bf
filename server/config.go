package server

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strconv"
)

const (
	DefaultBacklog = 128
)

type NetworkServerConfig struct {
	Protocol         string
	Address          string
	Port             int
	Backlog          int
	Root             string
	HeaderBufferSize int
}

func DefaultConfig() NetworkServerConfig {
	return NetworkServerConfig{
		Protocol: "tcp",
		Address:  "0.0.0.0",
		Port:     8080,
		Backlog:  DefaultBacklog,
		Root:     ".",
	}
}

func (c NetworkServerConfig) ListenAddr() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

// Validate checks the values a listener cannot start without. Port 0 asks
// the kernel for a free port.
func (c NetworkServerConfig) Validate() error {
	var errs []error
	if c.Protocol != "tcp" {
		errs = append(errs, fmt.Errorf("unsupported protocol %q", c.Protocol))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port number %d", c.Port))
	}
	if addr, err := netip.ParseAddr(c.Address); err != nil || !addr.Is4() {
		errs = append(errs, fmt.Errorf("invalid IPv4 address %q", c.Address))
	}
	if c.Backlog <= 0 {
		errs = append(errs, fmt.Errorf("invalid backlog %d", c.Backlog))
	}
	if c.HeaderBufferSize < 0 {
		errs = append(errs, fmt.Errorf("invalid header buffer size %d", c.HeaderBufferSize))
	}
	if info, err := os.Stat(c.Root); err != nil {
		errs = append(errs, fmt.Errorf("document root: %w", err))
	} else if !info.IsDir() {
		errs = append(errs, fmt.Errorf("document root %q is not a directory", c.Root))
	}
	return errors.Join(errs...)
}
