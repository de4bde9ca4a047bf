package transport

import (
	"context"
	"io"

	"github.com/touka-aoi/low-level-server/server/peer"
)

// Summary describes what happened on one connection, for logging.
type Summary struct {
	Method       string
	Target       string
	Status       int
	BytesRead    int64
	BytesWritten int64
}

type Transport interface {
	OnConnect(ctx context.Context, peer *peer.Peer) error
	OnConn(ctx context.Context, peer *peer.Peer, conn io.ReadWriter) (Summary, error)
	OnDisconnect(ctx context.Context, peer *peer.Peer) error
}
