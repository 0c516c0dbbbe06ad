package http

import (
	"net"

	"github.com/indigo-web/httpfront/http/method"
	"github.com/indigo-web/httpfront/http/proto"
	"github.com/indigo-web/httpfront/kv"
)

type (
	Headers = *kv.Storage
	Header  = kv.Pair
	Query   = *kv.Storage
	Vars    = *kv.Storage
)

// Request represents the head of an HTTP request. It's constructed once per connection by the
// parser and must be treated as read-only afterwards.
type Request struct {
	// Method is an enum representing the request method.
	Method method.Method
	// Path is the request-target without the query string, percent-decoded and guaranteed to be
	// a valid UTF-8 string.
	Path string
	// Query holds the decoded query parameters. Keys are case-sensitive. When a key repeats,
	// the latest value wins.
	Query Query
	// Vars are path parameters. No router fills them yet, so they're always present and empty.
	Vars Vars
	// Protocol is the version of the request. Only HTTP/1.1 is ever accepted.
	Protocol proto.Proto
	// Headers are looked up case-insensitively. When a key repeats, the latest value wins.
	// Values have their leading whitespace trimmed.
	Headers Headers
	// Remote holds the remote address. Please note that this is generally not a good parameter to identify
	// a user, because there might be proxies in the middle.
	Remote net.Addr
}

// NewRequest returns an empty request with storages ready to be filled in.
func NewRequest(headers, query, vars *kv.Storage) *Request {
	return &Request{
		Method:   method.Unknown,
		Protocol: proto.Unknown,
		Headers:  headers,
		Query:    query,
		Vars:     vars,
	}
}

// Respond returns a fresh response builder, set to 200 OK.
func (r *Request) Respond() *Response {
	return NewResponse()
}
