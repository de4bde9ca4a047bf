package http

// Byte-level matchers for the request line and header fields.
//
//	request-line = 1*8ALPHA SP "/" 1*63pchar SP "HTTP/" DIGIT "." DIGIT CRLF
//	header-field = 1*128kchar ":" SP 1*128VCHAR CRLF
//
// pchar and kchar are both [A-Za-z0-9.-]; VCHAR here is the range ' '..'~'.
// None of the matchers write to the input.

const (
	maxMethodLen = 8
	maxPathLen   = 63
	maxKeyLen    = 128
	maxValueLen  = 128
)

type requestLine struct {
	method  []byte
	path    []byte // without the leading '/'
	version []byte
	end     int // offset just past the CRLF
}

type headerField struct {
	key   []byte // includes the trailing ':'
	value []byte
	start int
	end   int // offset just past the CRLF
}

func isAlpha(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isTokenChar(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '.' || c == '-'
}

func isVisible(c byte) bool {
	return ' ' <= c && c <= '~'
}

// span counts how many bytes starting at buf[i] satisfy ok.
func span(buf []byte, i int, ok func(byte) bool) int {
	n := 0
	for i+n < len(buf) && ok(buf[i+n]) {
		n++
	}
	return n
}

func hasAt(buf []byte, i int, s string) bool {
	return i >= 0 && i+len(s) <= len(buf) && string(buf[i:i+len(s)]) == s
}

// matchRequestLine matches the request line anchored at the start of buf.
func matchRequestLine(buf []byte) (requestLine, bool) {
	var rl requestLine

	i := 0
	n := span(buf, i, isAlpha)
	if n < 1 || n > maxMethodLen || !hasAt(buf, i+n, " ") {
		return rl, false
	}
	rl.method = buf[i : i+n]
	i += n + 1

	if !hasAt(buf, i, "/") {
		return rl, false
	}
	i++
	n = span(buf, i, isTokenChar)
	if n < 1 || n > maxPathLen || !hasAt(buf, i+n, " ") {
		return rl, false
	}
	rl.path = buf[i : i+n]
	i += n + 1

	// HTTP/d.d
	const versionLen = len("HTTP/1.1")
	if !hasAt(buf, i, "HTTP/") || i+versionLen > len(buf) {
		return rl, false
	}
	if !isDigit(buf[i+5]) || buf[i+6] != '.' || !isDigit(buf[i+7]) {
		return rl, false
	}
	rl.version = buf[i : i+versionLen]
	i += versionLen

	if !hasAt(buf, i, "\r\n") {
		return rl, false
	}
	rl.end = i + 2
	return rl, true
}

// matchHeaderField matches one header field anchored at buf[at].
func matchHeaderField(buf []byte, at int) (headerField, bool) {
	f := headerField{start: at}

	i := at
	n := span(buf, i, isTokenChar)
	if n < 1 || n > maxKeyLen || !hasAt(buf, i+n, ": ") {
		return f, false
	}
	f.key = buf[i : i+n+1]
	i += n + 2

	n = span(buf, i, isVisible)
	if n < 1 || n > maxValueLen || !hasAt(buf, i+n, "\r\n") {
		return f, false
	}
	f.value = buf[i : i+n]
	f.end = i + n + 2
	return f, true
}

// findHeaderField returns the leftmost header field starting at or after
// from. The caller decides whether a match past from is acceptable.
func findHeaderField(buf []byte, from int) (headerField, bool) {
	for s := from; s < len(buf); s++ {
		if f, ok := matchHeaderField(buf, s); ok {
			return f, true
		}
	}
	return headerField{}, false
}
