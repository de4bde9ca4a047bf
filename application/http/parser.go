package http

import (
	"bytes"
	"strconv"
)

var (
	crlf             = []byte("\r\n")
	crlfcrlf         = []byte("\r\n\r\n")
	http11           = []byte("HTTP/1.1")
	contentLengthKey = []byte("Content-Length:")
)

// ParseRequest parses the request line and header block at the start of
// header. On failure the returned error is a *ParseError whose Status is
// 400, 501 or 505.
//
// Only the bytes up to the first blank line are treated as header; anything
// after it is body that happened to arrive with the header.
func ParseRequest(header []byte) (*Request, error) {
	region := header
	if i := bytes.Index(header, crlfcrlf); i >= 0 {
		region = header[:i+len(crlfcrlf)]
	}

	rl, ok := matchRequestLine(region)
	if !ok {
		return nil, &ParseError{Status: StatusBadRequest, Reason: "malformed request line"}
	}

	// method before version: an unknown method is 501 even with a bad version
	method := methodFromToken(rl.method)
	if method == MethodUnset {
		return nil, &ParseError{
			Status: StatusNotImplemented,
			Reason: "unsupported method",
			Method: string(rl.method),
			Target: string(rl.path),
		}
	}
	if !bytes.Equal(rl.version, http11) {
		return nil, &ParseError{
			Status: StatusVersionNotSupported,
			Reason: "unsupported version " + string(rl.version),
			Method: string(rl.method),
			Target: string(rl.path),
		}
	}

	req := &Request{
		Method:  method,
		Target:  string(rl.path),
		Version: string(rl.version),
	}
	fail := func(reason string) (*Request, error) {
		return nil, &ParseError{
			Status: StatusBadRequest,
			Reason: reason,
			Method: req.Method.String(),
			Target: req.Target,
		}
	}

	cursor := rl.end
	for {
		f, ok := findHeaderField(region, cursor)
		if !ok {
			break
		}
		if f.start != cursor {
			return fail("header field at offset " + strconv.Itoa(f.start) + " does not follow offset " + strconv.Itoa(cursor))
		}

		if bytes.Equal(f.key, contentLengthKey) {
			n, err := parseContentLength(f.value)
			if err != nil {
				return fail("invalid Content-Length " + strconv.Quote(string(f.value)))
			}
			req.contentLength = n
			req.hasContentLength = true
		}
		req.Headers = append(req.Headers, Header{
			Key:   string(f.key[:len(f.key)-1]),
			Value: string(f.value),
		})
		cursor = f.end
	}

	if !bytes.HasPrefix(region[cursor:], crlf) {
		return fail("header block not terminated by an empty line")
	}
	if req.Method == MethodPUT && !req.hasContentLength {
		return fail("PUT without Content-Length")
	}

	req.headerEnd = cursor + len(crlf)
	return req, nil
}

// parseContentLength accepts only a plain run of decimal digits.
func parseContentLength(v []byte) (int64, error) {
	if len(v) == 0 {
		return 0, strconv.ErrSyntax
	}
	for _, c := range v {
		if !isDigit(c) {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseInt(string(v), 10, 64)
}
