//go:build linux

// Package wire holds the blocking byte-transfer primitives used on accepted
// connections: read until a delimiter, write exactly n bytes and copy
// exactly n bytes between two descriptors.
package wire

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/touka-aoi/low-level-server/core/buffer"
	toukaerrors "github.com/touka-aoi/low-level-server/core/errors"
	"golang.org/x/sys/unix"
)

const (
	maxEmptyReads = 100
	maxSendfile   = 1 << 30
)

var CRLFCRLF = []byte("\r\n\r\n")

// rawConn is implemented by connections that can take part in sendfile.
type rawConn interface {
	SysFd() int
}

// ReadUntil reads from r into buf until delim appears in the filled region
// or buf is full. More bytes than the delimiter boundary may be consumed.
// It returns the total number of bytes held by buf.
func ReadUntil(r io.Reader, buf *buffer.HeaderBuffer, delim []byte) (int, error) {
	empty := 0
	for {
		if buf.Full() {
			return buf.Len(), nil
		}

		prev := buf.Len()
		n, err := r.Read(buf.Spare())
		buf.Advance(n)

		if n > 0 {
			empty = 0
			from := max(prev-len(delim)+1, 0)
			if bytes.Contains(buf.Bytes()[from:], delim) {
				return buf.Len(), nil
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				if buf.Len() == 0 {
					return 0, toukaerrors.ErrConnClosed
				}
				return buf.Len(), fmt.Errorf("%w after %d bytes", toukaerrors.ErrHeaderIncomplete, buf.Len())
			}
			return buf.Len(), fmt.Errorf("read: %w", err)
		}

		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				return buf.Len(), io.ErrNoProgress
			}
		}
	}
}

// WriteN writes all of p to w.
func WriteN(w io.Writer, p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := w.Write(p[written:])
		written += n
		if err != nil {
			return written, err
		}
		if n == 0 {
			return written, io.ErrShortWrite
		}
	}
	return written, nil
}

// PassN copies exactly n bytes from src to dst. When src is a regular file
// and dst is descriptor-backed the copy happens in the kernel via sendfile.
// A source that runs dry early yields ErrShortTransfer with the partial count.
func PassN(dst io.Writer, src io.Reader, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}

	if f, ok := src.(*os.File); ok {
		if rc, ok := dst.(rawConn); ok {
			done, handled, err := sendfile(rc.SysFd(), f, n)
			if handled {
				return done, err
			}
		}
	}

	done, err := io.CopyN(dst, src, n)
	if errors.Is(err, io.EOF) {
		return done, fmt.Errorf("%w: %d of %d bytes", toukaerrors.ErrShortTransfer, done, n)
	}
	return done, err
}

// sendfile reports handled=false when the kernel refuses the descriptor pair
// before any byte was moved, so the caller can fall back to a user-space copy.
func sendfile(outFd int, f *os.File, n int64) (int64, bool, error) {
	var done int64
	inFd := int(f.Fd())
	for done < n {
		chunk := int(min(n-done, maxSendfile))
		m, err := unix.Sendfile(outFd, inFd, nil, chunk)
		if m > 0 {
			done += int64(m)
		}
		if err != nil {
			if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
				continue
			}
			if done == 0 && (errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOSYS)) {
				return 0, false, nil
			}
			return done, true, fmt.Errorf("sendfile: %w", err)
		}
		if m == 0 {
			return done, true, fmt.Errorf("%w: %d of %d bytes", toukaerrors.ErrShortTransfer, done, n)
		}
	}
	return done, true, nil
}
