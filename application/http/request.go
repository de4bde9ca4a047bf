package http

import "fmt"

type Method int

const (
	MethodUnset Method = iota
	MethodGET
	MethodPUT
)

var methodName = map[Method]string{
	MethodUnset: "",
	MethodGET:   "GET",
	MethodPUT:   "PUT",
}

func (m Method) String() string {
	return methodName[m]
}

func methodFromToken(tok []byte) Method {
	switch string(tok) {
	case "GET":
		return MethodGET
	case "PUT":
		return MethodPUT
	}
	return MethodUnset
}

type Header struct {
	Key   string // without the trailing colon
	Value string
}

// Request is the result of a successful parse. It is not modified afterwards.
type Request struct {
	Method  Method
	Target  string // path without the leading '/'
	Version string
	Headers []Header

	contentLength    int64
	hasContentLength bool
	headerEnd        int
}

// ContentLength returns the declared body length and whether a
// Content-Length field was present.
func (r *Request) ContentLength() (int64, bool) {
	return r.contentLength, r.hasContentLength
}

// HeaderEnd is the offset just past the blank line that ends the header block.
func (r *Request) HeaderEnd() int {
	return r.headerEnd
}

func (r *Request) Header(key string) (string, bool) {
	for i := len(r.Headers) - 1; i >= 0; i-- {
		if r.Headers[i].Key == key {
			return r.Headers[i].Value, true
		}
	}
	return "", false
}

// ParseError carries the status a malformed request is answered with.
// Method and Target are set when parsing got far enough to read them.
type ParseError struct {
	Status Status
	Reason string
	Method string
	Target string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d %s: %s", int(e.Status), e.Status.Phrase(), e.Reason)
}
