package mime

type MIME = string

const (
	OctetStream MIME = "application/octet-stream"
	Plain       MIME = "text/plain"
	HTML        MIME = "text/html"
	JSON        MIME = "application/json"
)

// WithCharset appends the charset parameter, e.g. "text/plain; charset=utf-8".
func WithCharset(mime MIME, charset string) string {
	return mime + "; charset=" + charset
}
