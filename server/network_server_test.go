//go:build linux

package server

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	apphttp "github.com/touka-aoi/low-level-server/application/http"
	"github.com/touka-aoi/low-level-server/core/engine"
	"github.com/touka-aoi/low-level-server/middleware"
)

func startServer(t *testing.T) (*NetworkServer, context.CancelFunc, <-chan error) {
	t.Helper()

	config := DefaultConfig()
	config.Address = "127.0.0.1"
	config.Port = 0
	config.Root = t.TempDir()

	app := apphttp.NewHTTPApplication(apphttp.DefaultHandlers(apphttp.NewFileStore(config.Root)), 0)
	ns := NewNetworkServer(engine.NewBlockingNetEngine(), config, middleware.NewPipeline().Use(middleware.Recover()), app)

	ctx, cancel := context.WithCancel(context.Background())
	if err := ns.Listen(ctx); err != nil {
		cancel()
		t.Fatalf("Listen failed: %v", err)
	}
	t.Cleanup(func() { ns.Close() })

	done := make(chan error, 1)
	go func() { done <- ns.Serve(ctx) }()
	return ns, cancel, done
}

func roundTrip(t *testing.T, addr string, request string) string {
	t.Helper()

	c, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	c.SetDeadline(time.Now().Add(5 * time.Second))

	if _, err := io.WriteString(c, request); err != nil {
		t.Fatalf("write: %v", err)
	}
	resp, err := io.ReadAll(c)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(resp)
}

func TestNetworkServer_Serve(t *testing.T) {
	ns, cancel, done := startServer(t)
	defer cancel()
	addr := ns.Addr().String()

	if got, want := roundTrip(t, addr, "PUT /note HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello"), "HTTP/1.1 201 Created\r\nContent-Length: 8\r\n\r\nCreated\n"; got != want {
		t.Errorf("PUT = %q, want %q", got, want)
	}
	if got, want := roundTrip(t, addr, "GET /note HTTP/1.1\r\n\r\n"), "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello"; got != want {
		t.Errorf("GET = %q, want %q", got, want)
	}
	if got, want := roundTrip(t, addr, "GARBAGE\r\n\r\n"), "HTTP/1.1 400 Bad Request\r\nContent-Length: 12\r\n\r\nBad Request\n"; got != want {
		t.Errorf("garbage = %q, want %q", got, want)
	}

	stored, err := os.ReadFile(filepath.Join(ns.config.Root, "note"))
	if err != nil || string(stored) != "hello" {
		t.Errorf("stored = %q, %v", stored, err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	if ns.Status() != Stopped {
		t.Errorf("status = %v, want stopped", ns.Status())
	}
	if ns.Served() != 3 {
		t.Errorf("served = %d, want 3", ns.Served())
	}
}

func TestNetworkServer_AbortedClientDoesNotStopServer(t *testing.T) {
	ns, cancel, done := startServer(t)
	defer cancel()
	addr := ns.Addr().String()

	c, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(c, "GET /x HTTP/1.1\r\n")
	c.Close()

	if got, want := roundTrip(t, addr, "GET /missing HTTP/1.1\r\n\r\n"), "HTTP/1.1 404 Not Found\r\nContent-Length: 10\r\n\r\nNot Found\n"; got != want {
		t.Errorf("GET = %q, want %q", got, want)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Serve returned %v", err)
	}
}

func TestNetworkServer_ServeWithoutListen(t *testing.T) {
	ns := NewNetworkServer(engine.NewBlockingNetEngine(), DefaultConfig(), nil, nil)
	if err := ns.Serve(context.Background()); err == nil {
		t.Error("Serve succeeded without Listen")
	}
}
