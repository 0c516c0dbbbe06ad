package response

import (
	"github.com/indigo-web/httpfront/http/status"
	"github.com/indigo-web/httpfront/kv"
)

// Fields are the raw values collected by the http.Response builder and consumed by the
// serializer.
type Fields struct {
	// Status is a custom reason phrase. Empty means the default one for the Code.
	Status  status.Status
	Headers *kv.Storage
	Body    []byte
	Code    status.Code
}

func (f *Fields) Clear() {
	f.Code = status.OK
	f.Status = ""
	f.Headers.Clear()
	f.Body = nil
}
