package peer

import "net/netip"

type Endpoint interface {
	Session() string
	Fd() int32
	LocalAddr() netip.AddrPort
	RemoteAddr() netip.AddrPort
	Status() string
}

var _ Endpoint = (*Peer)(nil)
