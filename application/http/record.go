package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/touka-aoi/low-level-server/core/buffer"
	"github.com/touka-aoi/low-level-server/core/wire"
	"github.com/touka-aoi/low-level-server/transport"
)

// Record is the state of one request/response cycle on one connection.
//
// Lifecycle: NewRecord, ReadHeader, Parse, Handle, Close. Close must run on
// every path; it releases the target file. The connection itself is not
// owned and is left open.
type Record struct {
	conn   io.ReadWriter
	header *buffer.HeaderBuffer
	logger *slog.Logger

	req      *Request
	parseErr *ParseError
	status   Status

	file       *os.File
	fileLength int64

	bodyRead     int64
	bytesWritten int64
}

func NewRecord(conn io.ReadWriter, headerSize int, logger *slog.Logger) *Record {
	if logger == nil {
		logger = slog.Default()
	}
	return &Record{
		conn:   conn,
		header: buffer.NewHeaderBuffer(headerSize),
		logger: logger,
	}
}

// ReadHeader fills the header buffer until the blank line arrives or the
// buffer is full. An error means the connection is unusable and no
// response should be attempted.
func (rec *Record) ReadHeader() error {
	_, err := wire.ReadUntil(rec.conn, rec.header, wire.CRLFCRLF)
	return err
}

// Parse parses the buffered header. A parse failure fixes the status; the
// returned error is the *ParseError.
func (rec *Record) Parse() error {
	req, err := ParseRequest(rec.header.Bytes())
	if err != nil {
		var pe *ParseError
		if !errors.As(err, &pe) {
			pe = &ParseError{Status: StatusBadRequest, Reason: err.Error()}
		}
		rec.parseErr = pe
		rec.setStatus(pe.Status)
		return pe
	}
	rec.req = req
	return nil
}

// Handle executes a successfully parsed request, writes the response and,
// for a successful GET, streams the file after it.
func (rec *Record) Handle(ctx context.Context, router *Router) error {
	if rec.status == 0 {
		if rec.req == nil {
			return fmt.Errorf("handle: request was not parsed")
		}
		h := router.Match(rec.req.Method)
		if h == nil {
			rec.setStatus(StatusNotImplemented)
		} else {
			rec.setStatus(h(ctx, rec))
		}
	}

	method := rec.Method()
	resp := NewResponse(rec.status).
		Method(method).
		FileLength(rec.fileLength).
		Build()

	n, err := wire.WriteN(rec.conn, resp)
	rec.bytesWritten += int64(n)
	if err != nil {
		return fmt.Errorf("write response: %w", err)
	}

	if method == MethodGET && rec.status == StatusOK {
		sent, err := wire.PassN(rec.conn, rec.file, rec.fileLength)
		rec.bytesWritten += sent
		if err != nil {
			return fmt.Errorf("send %s: %w", rec.req.Target, err)
		}
	}
	return nil
}

// Close releases the target file.
func (rec *Record) Close() error {
	if rec.file == nil {
		return nil
	}
	err := rec.file.Close()
	rec.file = nil
	return err
}

func (rec *Record) setStatus(s Status) {
	if rec.status != 0 {
		rec.logger.Warn("Status already set", "status", int(rec.status), "new", int(s))
		return
	}
	rec.status = s
}

// attachFile hands ownership of f to the record.
func (rec *Record) attachFile(f *os.File, length int64) {
	if rec.file != nil {
		rec.file.Close()
	}
	rec.file = f
	rec.fileLength = length
}

func (rec *Record) Status() Status {
	return rec.status
}

func (rec *Record) Request() *Request {
	return rec.req
}

func (rec *Record) Method() Method {
	if rec.req == nil {
		return MethodUnset
	}
	return rec.req.Method
}

// Buffered returns the body bytes that arrived together with the header.
func (rec *Record) Buffered() []byte {
	if rec.req == nil {
		return nil
	}
	return rec.header.From(rec.req.HeaderEnd())
}

// receiveBody stores exactly declared bytes into dst: first whatever is
// already buffered, then the rest straight from the connection. Buffered
// bytes beyond declared are dropped.
func (rec *Record) receiveBody(dst io.Writer, declared int64) (int64, error) {
	buffered := rec.Buffered()
	if declared <= int64(len(buffered)) {
		n, err := wire.WriteN(dst, buffered[:declared])
		return int64(n), err
	}

	n, err := wire.WriteN(dst, buffered)
	total := int64(n)
	if err != nil {
		return total, err
	}

	// 残りはソケットから直接読む
	m, err := wire.PassN(dst, rec.conn, declared-total)
	rec.bodyRead += m
	return total + m, err
}

func (rec *Record) Summary() transport.Summary {
	s := transport.Summary{
		Status:       int(rec.status),
		BytesRead:    int64(rec.header.Len()) + rec.bodyRead,
		BytesWritten: rec.bytesWritten,
	}
	switch {
	case rec.req != nil:
		s.Method = rec.req.Method.String()
		s.Target = rec.req.Target
	case rec.parseErr != nil:
		s.Method = rec.parseErr.Method
		s.Target = rec.parseErr.Target
	}
	return s
}
