package proto

import "github.com/indigo-web/utils/uf"

type Proto uint8

const (
	Unknown Proto = iota
	HTTP11
)

const http11 = "HTTP/1.1"

// String returns the protocol token as it appears on the wire, or an empty string for
// Unknown.
func (p Proto) String() string {
	if p == HTTP11 {
		return http11
	}

	return ""
}

// FromBytes recognizes the version token of a request line. Only HTTP/1.1 is supported,
// any other token (including HTTP/1.0 and HTTP/2) results in Unknown.
func FromBytes(raw []byte) Proto {
	return Parse(uf.B2S(raw))
}

func Parse(token string) Proto {
	if token == http11 {
		return HTTP11
	}

	return Unknown
}
