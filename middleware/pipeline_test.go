package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/netip"
	"strings"
	"testing"

	"github.com/touka-aoi/low-level-server/server/peer"
	"github.com/touka-aoi/low-level-server/transport"
)

func newTestContext() *Context {
	return NewContext(peer.NewPeer(5, netip.MustParseAddrPort("127.0.0.1:80"), netip.MustParseAddrPort("127.0.0.1:9999")))
}

func TestPipeline_Order(t *testing.T) {
	var trace []string
	mark := func(name string) MiddlewareFunc {
		return func(ctx *Context, next NextFunc) error {
			trace = append(trace, name+">")
			err := next(ctx)
			trace = append(trace, "<"+name)
			return err
		}
	}

	p := NewPipeline().Use(mark("a")).Use(mark("b"))
	err := p.Execute(newTestContext(), func(*Context) error {
		trace = append(trace, "final")
		return nil
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	want := "a> b> final <b <a"
	if got := strings.Join(trace, " "); got != want {
		t.Errorf("trace = %q, want %q", got, want)
	}
}

func TestPipeline_NilRunsFinal(t *testing.T) {
	var p *Pipeline
	called := false
	if err := p.Execute(newTestContext(), func(*Context) error { called = true; return nil }); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("final not called")
	}
}

func TestPipeline_ShortCircuit(t *testing.T) {
	stop := errors.New("stop")
	p := NewPipeline().Use(func(ctx *Context, next NextFunc) error { return stop })

	called := false
	err := p.Execute(newTestContext(), func(*Context) error { called = true; return nil })
	if !errors.Is(err, stop) {
		t.Errorf("err = %v, want stop", err)
	}
	if called {
		t.Error("final ran after short circuit")
	}
}

func TestAccessLog(t *testing.T) {
	var out bytes.Buffer
	p := NewPipeline().Use(AccessLog(NewAccessLogger(&out)))

	ctx := newTestContext()
	err := p.Execute(ctx, func(c *Context) error {
		c.Summary = transport.Summary{Method: "PUT", Target: "f", Status: 201, BytesRead: 50, BytesWritten: 46}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	var entry map[string]any
	if err := json.Unmarshal(out.Bytes(), &entry); err != nil {
		t.Fatalf("access log is not JSON: %q", out.String())
	}
	checks := map[string]any{
		"level":     "info",
		"method":    "PUT",
		"target":    "f",
		"status":    float64(201),
		"bytes_in":  float64(50),
		"bytes_out": float64(46),
		"remote":    "127.0.0.1:9999",
		"session":   ctx.Peer.Session(),
		"message":   "request",
	}
	for k, want := range checks {
		if entry[k] != want {
			t.Errorf("%s = %v, want %v", k, entry[k], want)
		}
	}
}

func TestAccessLog_Error(t *testing.T) {
	var out bytes.Buffer
	p := NewPipeline().Use(AccessLog(NewAccessLogger(&out)))

	boom := errors.New("boom")
	if err := p.Execute(newTestContext(), func(*Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(out.Bytes(), &entry); err != nil {
		t.Fatalf("access log is not JSON: %q", out.String())
	}
	if entry["level"] != "warn" || entry["error"] != "boom" {
		t.Errorf("entry = %v", entry)
	}
}

func TestRecover(t *testing.T) {
	p := NewPipeline().Use(Recover())
	err := p.Execute(newTestContext(), func(*Context) error {
		panic("contract violation")
	})
	if err == nil || !strings.Contains(err.Error(), "contract violation") {
		t.Errorf("err = %v", err)
	}
}
