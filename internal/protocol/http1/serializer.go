package http1

import (
	"io"
	"strconv"
	"strings"

	"github.com/indigo-web/httpfront/http"
	"github.com/indigo-web/httpfront/http/proto"
	"github.com/indigo-web/httpfront/http/status"
	"github.com/indigo-web/httpfront/internal/response"
	"github.com/indigo-web/httpfront/kv"
	"github.com/indigo-web/utils/strcomp"
)

var crlf = []byte("\r\n")

// Serializer renders a response as an HTTP/1.1 message. The whole message is composed in
// memory and written by a single call, so the writer sees either all of it or nothing.
type Serializer struct {
	buff    []byte
	maxSize int
}

// NewSerializer returns a serializer using buff as its initial memory. Once the buffer grows
// past maxSize while composing a large response, it's dropped and re-allocated afterwards.
func NewSerializer(buff []byte, maxSize int) *Serializer {
	return &Serializer{
		buff:    buff[:0],
		maxSize: maxSize,
	}
}

// Write serializes the response and flushes it into w. A Content-Length header is
// added unless the response already carries one.
func (s *Serializer) Write(w io.Writer, response *http.Response) error {
	resp := response.Expose()
	if err := validate(resp); err != nil {
		return err
	}

	s.appendProtocol(proto.HTTP11)
	s.appendStatus(resp)
	s.appendHeaders(resp)

	if !resp.Headers.Has("Content-Length") {
		s.appendContentLength(len(resp.Body))
	}

	s.crlf()
	s.buff = append(s.buff, resp.Body...)

	err := s.flush(w)
	s.cleanup()

	return err
}

func (s *Serializer) flush(w io.Writer) error {
	_, err := w.Write(s.buff)
	return err
}

func (s *Serializer) cleanup() {
	if cap(s.buff) > s.maxSize {
		s.buff = make([]byte, 0, s.maxSize)
		return
	}

	s.buff = s.buff[:0]
}

func (s *Serializer) appendProtocol(protocol proto.Proto) {
	s.buff = append(s.buff, protocol.String()...)
	s.sp()
}

// appendStatus writes the status code and the reason phrase, terminated by CRLF.
func (s *Serializer) appendStatus(fields *response.Fields) {
	s.buff = strconv.AppendUint(s.buff, uint64(fields.Code), 10)
	s.sp()

	statusText := fields.Status
	if len(statusText) == 0 {
		statusText = status.Text(fields.Code)
	}

	s.buff = append(s.buff, statusText...)
	s.crlf()
}

func (s *Serializer) appendHeaders(fields *response.Fields) {
	for _, header := range fields.Headers.Expose() {
		s.appendHeader(header)
	}
}

// appendHeader writes a complete header field line including the trailing CRLF.
func (s *Serializer) appendHeader(header kv.Pair) {
	s.buff = append(s.buff, header.Key...)
	s.colonsp()
	s.buff = append(s.buff, header.Value...)
	s.crlf()
}

func (s *Serializer) appendContentLength(value int) {
	s.buff = append(s.buff, "Content-Length: "...)
	s.buff = strconv.AppendInt(s.buff, int64(value), 10)
	s.crlf()
}

func (s *Serializer) sp() {
	s.buff = append(s.buff, ' ')
}

func (s *Serializer) colonsp() {
	s.buff = append(s.buff, ':', ' ')
}

func (s *Serializer) crlf() {
	s.buff = append(s.buff, crlf...)
}

// validate rejects responses which would otherwise produce a corrupted or smuggled message.
func validate(fields *response.Fields) error {
	if !status.Valid(fields.Code) {
		return status.Wrap(status.ErrInvalidResponse, status.NewError(
			status.CloseConnection, "status code out of range: "+strconv.Itoa(int(fields.Code)),
		))
	}

	if hasLineBreak(string(fields.Status)) {
		return status.Wrap(status.ErrInvalidResponse, status.NewError(
			status.CloseConnection, "line break in the reason phrase",
		))
	}

	for _, header := range fields.Headers.Expose() {
		if len(header.Key) == 0 || strings.ContainsAny(header.Key, ": \t\r\n") || hasLineBreak(header.Value) {
			return status.Wrap(status.ErrInvalidResponse, status.NewError(
				status.CloseConnection, "bad header field: "+strconv.Quote(header.Key),
			))
		}

		if strcomp.EqualFold(header.Key, "Content-Length") && !isDecimal(header.Value) {
			return status.Wrap(status.ErrInvalidResponse, status.NewError(
				status.CloseConnection, "bad Content-Length value: "+strconv.Quote(header.Value),
			))
		}
	}

	return nil
}

func hasLineBreak(str string) bool {
	return strings.ContainsAny(str, "\r\n")
}

func isDecimal(str string) bool {
	if len(str) == 0 {
		return false
	}

	for i := 0; i < len(str); i++ {
		if str[i] < '0' || str[i] > '9' {
			return false
		}
	}

	return true
}
