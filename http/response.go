package http

import (
	"github.com/indigo-web/httpfront/http/mime"
	"github.com/indigo-web/httpfront/http/status"
	"github.com/indigo-web/httpfront/internal/response"
	"github.com/indigo-web/httpfront/kv"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
)

const (
	// why 7? I don't know. There's no theory behind this number nor researches.
	// It can be adjusted to 10 as well, but why you would ever need to do this?
	preallocRespHeaders = 7
)

// Response is a transient value: built by a handler and consumed exactly once by the
// connection it's responded on.
type Response struct {
	fields *response.Fields
}

// NewResponse returns a new instance of the Response object with status code set to 200 OK
// and pre-allocated space for response headers.
// NOTE: it's recommended to use Request.Respond() method inside of handlers, if there's no
// clear reason otherwise
func NewResponse() *Response {
	return &Response{
		&response.Fields{
			Code:    status.OK,
			Headers: kv.NewPrealloc(preallocRespHeaders),
		},
	}
}

// Code sets a Response code and a corresponding status.
// In case of unknown code, "Unknown Status Code" will be set as a status
// code. In this case you should call Status explicitly
func (r *Response) Code(code status.Code) *Response {
	r.fields.Code = code
	return r
}

// Status sets a custom status text. This text does not matter at all, and usually
// totally ignored by client, so there is actually no reasons to use this except some
// rare cases when you need to represent a Response status text somewhere
func (r *Response) Status(status status.Status) *Response {
	r.fields.Status = status
	return r
}

// ContentType sets a custom Content-Type header value.
func (r *Response) ContentType(value mime.MIME) *Response {
	r.fields.Headers.Set("Content-Type", value)
	return r
}

// Header adds header values to a key. In case it already exists the values will
// be appended. Setting Content-Length explicitly suppresses the automatic one, so it must
// match the body.
func (r *Response) Header(key string, values ...string) *Response {
	for _, value := range values {
		r.fields.Headers.Add(key, value)
	}

	return r
}

// String sets the response's body to the passed string
func (r *Response) String(body string) *Response {
	return r.Bytes(uf.S2B(body))
}

// Bytes sets the response's body to passed slice WITHOUT COPYING. Changing
// the passed slice later will affect the response by itself
func (r *Response) Bytes(body []byte) *Response {
	r.fields.Body = body
	return r
}

// Write implements io.Writer interface. It always returns n=len(b) and err=nil
func (r *Response) Write(b []byte) (n int, err error) {
	r.fields.Body = append(r.fields.Body, b...)
	return len(b), nil
}

// TryJSON receives a model (must be a pointer to the structure) and returns a new Response
// object and an error
func (r *Response) TryJSON(model any) (*Response, error) {
	// the body may be a caller's slice or a string's memory, neither is ours to overwrite
	r.fields.Body = nil
	stream := json.ConfigDefault.BorrowStream(r)
	stream.WriteVal(model)
	err := stream.Flush()
	json.ConfigDefault.ReturnStream(stream)

	return r.ContentType(mime.JSON), err
}

// JSON does the same as TryJSON does, except returned error is being implicitly wrapped
// by Error
func (r *Response) JSON(model any) *Response {
	resp, err := r.TryJSON(model)
	if err != nil {
		return r.Error(err)
	}

	return resp
}

// Error returns a response builder with an error set. If passed err is nil, nothing will happen.
// If the err wraps a status.HTTPError, its code is used, otherwise the code defaults to
// 500 Internal Server Error. The error message becomes the body.
func (r *Response) Error(err error) *Response {
	if err == nil {
		return r
	}

	code, ok := status.CodeOf(err)
	if !ok {
		code = status.InternalServerError
	}

	return r.
		Code(code).
		ContentType(mime.Plain).
		String(err.Error())
}

// Expose returns a struct with values, filled by builder. Used mostly in internal purposes
func (r *Response) Expose() *response.Fields {
	return r.fields
}

// Clear discards everything was done with Response object before
func (r *Response) Clear() *Response {
	r.fields.Clear()
	return r
}
