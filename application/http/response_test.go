package http

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
)

// splitResponse returns the announced Content-Length and the inline body.
func splitResponse(t *testing.T, raw []byte) (int64, []byte) {
	t.Helper()

	head, body, ok := bytes.Cut(raw, []byte("\r\n\r\n"))
	if !ok {
		t.Fatalf("no blank line in %q", raw)
	}
	for _, line := range strings.Split(string(head), "\r\n")[1:] {
		if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				t.Fatalf("bad Content-Length %q", v)
			}
			return n, body
		}
	}
	t.Fatalf("no Content-Length in %q", raw)
	return 0, nil
}

func TestResponseBuilder_Build(t *testing.T) {
	tests := []struct {
		status Status
		method Method
		want   string
	}{
		{StatusOK, MethodPUT, "HTTP/1.1 200 OK\r\nContent-Length: 3\r\n\r\nOK\n"},
		{StatusCreated, MethodPUT, "HTTP/1.1 201 Created\r\nContent-Length: 8\r\n\r\nCreated\n"},
		{StatusBadRequest, MethodUnset, "HTTP/1.1 400 Bad Request\r\nContent-Length: 12\r\n\r\nBad Request\n"},
		{StatusForbidden, MethodGET, "HTTP/1.1 403 Forbidden\r\nContent-Length: 10\r\n\r\nForbidden\n"},
		{StatusNotFound, MethodGET, "HTTP/1.1 404 Not Found\r\nContent-Length: 10\r\n\r\nNot Found\n"},
		{StatusInternalServerError, MethodPUT, "HTTP/1.1 500 Internal Server Error\r\nContent-Length: 22\r\n\r\nInternal Server Error\n"},
		{StatusNotImplemented, MethodUnset, "HTTP/1.1 501 Not Implemented\r\nContent-Length: 16\r\n\r\nNot Implemented\n"},
		{StatusVersionNotSupported, MethodUnset, "HTTP/1.1 505 Version Not Supported\r\nContent-Length: 22\r\n\r\nVersion Not Supported\n"},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(int(tt.status)), func(t *testing.T) {
			got := NewResponse(tt.status).Method(tt.method).FileLength(999).Build()
			if string(got) != tt.want {
				t.Errorf("Build() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResponseBuilder_GetOK(t *testing.T) {
	got := NewResponse(StatusOK).Method(MethodGET).FileLength(1234).Build()
	want := "HTTP/1.1 200 OK\r\nContent-Length: 1234\r\n\r\n"
	if string(got) != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

func TestResponseBuilder_ContentLengthRoundTrip(t *testing.T) {
	for status := range statusTexts {
		for _, method := range []Method{MethodUnset, MethodGET, MethodPUT} {
			b := NewResponse(status).Method(method).FileLength(77)
			n, body := splitResponse(t, b.Build())

			if status == StatusOK && method == MethodGET {
				if n != 77 || len(body) != 0 {
					t.Errorf("GET 200: length %d body %q", n, body)
				}
				continue
			}
			if n != int64(len(body)) {
				t.Errorf("%d %v: announced %d, body has %d bytes", status, method, n, len(body))
			}
			if string(body) != status.Message() {
				t.Errorf("%d %v: body %q, want %q", status, method, body, status.Message())
			}
		}
	}
}

func TestResponseBuilder_AppendTo(t *testing.T) {
	prefix := []byte("prefix|")
	got := NewResponse(StatusNotFound).AppendTo(prefix)
	if !bytes.HasPrefix(got, prefix) {
		t.Fatalf("prefix lost: %q", got)
	}
	if !bytes.Equal(got[len(prefix):], NewResponse(StatusNotFound).Build()) {
		t.Errorf("AppendTo and Build disagree: %q", got)
	}
}

func TestResponseBuilder_UnknownStatusPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown status")
		}
	}()
	NewResponse(Status(418)).Build()
}

func TestStatus_Texts(t *testing.T) {
	for status, text := range statusTexts {
		if !status.Known() {
			t.Errorf("%d not known", status)
		}
		if text.message != text.phrase+"\n" {
			t.Errorf("%d: message %q does not match phrase %q", status, text.message, text.phrase)
		}
	}
	if Status(0).Known() {
		t.Error("unset status reported as known")
	}
}
