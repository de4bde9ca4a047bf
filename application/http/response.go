package http

import (
	"fmt"
	"strconv"
)

type Status int

const (
	StatusOK                  Status = 200
	StatusCreated             Status = 201
	StatusBadRequest          Status = 400
	StatusForbidden           Status = 403
	StatusNotFound            Status = 404
	StatusInternalServerError Status = 500
	StatusNotImplemented      Status = 501
	StatusVersionNotSupported Status = 505
)

type statusText struct {
	phrase  string
	message string
}

var statusTexts = map[Status]statusText{
	StatusOK:                  {"OK", "OK\n"},
	StatusCreated:             {"Created", "Created\n"},
	StatusBadRequest:          {"Bad Request", "Bad Request\n"},
	StatusForbidden:           {"Forbidden", "Forbidden\n"},
	StatusNotFound:            {"Not Found", "Not Found\n"},
	StatusInternalServerError: {"Internal Server Error", "Internal Server Error\n"},
	StatusNotImplemented:      {"Not Implemented", "Not Implemented\n"},
	StatusVersionNotSupported: {"Version Not Supported", "Version Not Supported\n"},
}

func (s Status) Known() bool {
	_, ok := statusTexts[s]
	return ok
}

func (s Status) Phrase() string {
	return statusTexts[s].phrase
}

// Message is the one-line body sent with every response except a
// successful GET.
func (s Status) Message() string {
	return statusTexts[s].message
}

// ResponseBuilder renders the status line, the Content-Length header and,
// unless the response announces a file, the status message as body.
type ResponseBuilder struct {
	status     Status
	method     Method
	fileLength int64
}

// NewResponse creates a new response builder
func NewResponse(status Status) *ResponseBuilder {
	return &ResponseBuilder{
		status: status,
	}
}

// Method sets the request method the response answers.
func (r *ResponseBuilder) Method(m Method) *ResponseBuilder {
	r.method = m
	return r
}

// FileLength sets the size of the file that follows a successful GET.
func (r *ResponseBuilder) FileLength(n int64) *ResponseBuilder {
	r.fileLength = n
	return r
}

func (r *ResponseBuilder) carriesFile() bool {
	return r.status == StatusOK && r.method == MethodGET
}

// ContentLength is the value announced in the Content-Length header.
func (r *ResponseBuilder) ContentLength() int64 {
	if r.carriesFile() {
		return r.fileLength
	}
	return int64(len(r.status.Message()))
}

// AppendTo appends the serialized response to dst. An unknown status is a
// programming error and panics.
func (r *ResponseBuilder) AppendTo(dst []byte) []byte {
	text, ok := statusTexts[r.status]
	if !ok {
		panic(fmt.Sprintf("http: no status text for code %d", int(r.status)))
	}

	dst = append(dst, "HTTP/1.1 "...)
	dst = strconv.AppendInt(dst, int64(r.status), 10)
	dst = append(dst, ' ')
	dst = append(dst, text.phrase...)
	dst = append(dst, "\r\nContent-Length: "...)
	dst = strconv.AppendInt(dst, r.ContentLength(), 10)
	dst = append(dst, "\r\n\r\n"...)
	if !r.carriesFile() {
		dst = append(dst, text.message...)
	}
	return dst
}

// Build creates the final HTTP response bytes
func (r *ResponseBuilder) Build() []byte {
	return r.AppendTo(make([]byte, 0, 128))
}
