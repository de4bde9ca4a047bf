package buffer

import (
	"errors"
	"log/slog"
)

const DefaultHeaderSize = 8192

var (
	ErrBufferFull = errors.New("buffer is full")
)

// HeaderBuffer is a fixed-capacity linear buffer that receives the raw
// header block of one request. Bytes past the header boundary that were read
// in the same call stay in the buffer and are handed out through From.
type HeaderBuffer struct {
	buf  []byte
	tail int
}

func NewHeaderBuffer(size int) *HeaderBuffer {
	if size <= 0 {
		size = DefaultHeaderSize
	}
	return &HeaderBuffer{
		buf: make([]byte, size),
	}
}

// Len reports the number of bytes placed into the buffer so far.
func (h *HeaderBuffer) Len() int {
	return h.tail
}

func (h *HeaderBuffer) Cap() int {
	return len(h.buf)
}

func (h *HeaderBuffer) Free() int {
	return h.Cap() - h.tail
}

func (h *HeaderBuffer) Full() bool {
	return h.tail == len(h.buf)
}

// Spare returns the unfilled tail of the buffer. Callers read into it and
// then report the count with Advance.
func (h *HeaderBuffer) Spare() []byte {
	return h.buf[h.tail:]
}

func (h *HeaderBuffer) Advance(n int) {
	if n <= 0 {
		return
	}
	if n > h.Free() {
		slog.Warn("Invalid advance value exceeds free space", "n", n, "free", h.Free())
		n = h.Free()
	}
	h.tail += n
}

func (h *HeaderBuffer) Write(b []byte) (int, error) {
	if len(b) > h.Free() {
		return 0, ErrBufferFull
	}
	n := copy(h.buf[h.tail:], b)
	h.tail += n
	return n, nil
}

// Bytes returns the filled region. The slice aliases the buffer.
func (h *HeaderBuffer) Bytes() []byte {
	return h.buf[:h.tail:h.tail]
}

// From returns the filled bytes starting at off. For off at the header
// boundary this is the body prefix that was read together with the header.
func (h *HeaderBuffer) From(off int) []byte {
	if off < 0 || off > h.tail {
		return nil
	}
	return h.buf[off:h.tail:h.tail]
}

func (h *HeaderBuffer) Reset() {
	h.tail = 0
}
