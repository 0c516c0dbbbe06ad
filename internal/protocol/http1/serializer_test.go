package http1

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	stdhttp "net/http"
	"strings"
	"testing"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/httpfront/http"
	"github.com/indigo-web/httpfront/http/mime"
	"github.com/indigo-web/httpfront/http/status"
	"github.com/stretchr/testify/require"
)

func getSerializer() *Serializer {
	return NewSerializer(make([]byte, 0, 1024), 4096)
}

type accumulativeWriter struct {
	Data   []byte
	Writes int
}

func (a *accumulativeWriter) Write(b []byte) (int, error) {
	a.Data = append(a.Data, b...)
	a.Writes++
	return len(b), nil
}

func readResponse(t *testing.T, data []byte) *stdhttp.Response {
	stdreq, err := stdhttp.NewRequest(stdhttp.MethodGet, "/", nil)
	require.NoError(t, err)
	resp, err := stdhttp.ReadResponse(bufio.NewReader(bytes.NewReader(data)), stdreq)
	require.NoError(t, err)

	return resp
}

func TestSerializer_Write(t *testing.T) {
	t.Run("default builder", func(t *testing.T) {
		writer := new(accumulativeWriter)
		require.NoError(t, getSerializer().Write(writer, http.NewResponse()))
		require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n", string(writer.Data))
		require.Equal(t, 1, writer.Writes)
	})

	t.Run("round trip", func(t *testing.T) {
		body := uniuri.NewLen(256)
		writer := new(accumulativeWriter)
		response := http.NewResponse().
			Code(status.Teapot).
			ContentType(mime.Plain).
			Header("X-Custom", "one", "two").
			String(body)
		require.NoError(t, getSerializer().Write(writer, response))

		resp := readResponse(t, writer.Data)
		require.Equal(t, int(status.Teapot), resp.StatusCode)
		require.Equal(t, "HTTP/1.1", resp.Proto)
		require.Equal(t, mime.Plain, resp.Header.Get("Content-Type"))
		require.Equal(t, []string{"one", "two"}, resp.Header.Values("X-Custom"))
		require.EqualValues(t, len(body), resp.ContentLength)

		actualBody, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, body, string(actualBody))
	})

	t.Run("every known code", func(t *testing.T) {
		for _, code := range []status.Code{
			status.OK, status.Created, status.MovedPermanently, status.BadRequest,
			status.NotFound, status.RequestURITooLong, status.InternalServerError,
			status.HTTPVersionNotSupported,
		} {
			writer := new(accumulativeWriter)
			require.NoError(t, getSerializer().Write(writer, http.NewResponse().Code(code).String("x")))

			resp := readResponse(t, writer.Data)
			require.Equal(t, int(code), resp.StatusCode)
			require.Equal(t, fmt.Sprintf("%d %s", code, status.Text(code)), resp.Status)
		}
	})

	t.Run("custom status text", func(t *testing.T) {
		writer := new(accumulativeWriter)
		require.NoError(t, getSerializer().Write(writer, http.NewResponse().Status("Perfectly Fine")))
		require.True(t, strings.HasPrefix(string(writer.Data), "HTTP/1.1 200 Perfectly Fine\r\n"))
	})

	t.Run("unknown but valid code", func(t *testing.T) {
		writer := new(accumulativeWriter)
		require.NoError(t, getSerializer().Write(writer, http.NewResponse().Code(599)))
		require.True(t, strings.HasPrefix(string(writer.Data), "HTTP/1.1 599 Unknown Status Code\r\n"))
	})

	t.Run("explicit content length", func(t *testing.T) {
		writer := new(accumulativeWriter)
		response := http.NewResponse().
			Header("content-length", "5").
			String("Hello")
		require.NoError(t, getSerializer().Write(writer, response))
		require.Equal(t, 1, strings.Count(strings.ToLower(string(writer.Data)), "content-length"))

		resp := readResponse(t, writer.Data)
		require.EqualValues(t, 5, resp.ContentLength)
	})

	t.Run("JSON body", func(t *testing.T) {
		writer := new(accumulativeWriter)
		response := http.NewResponse().JSON(map[string]int{"answer": 42})
		require.NoError(t, getSerializer().Write(writer, response))

		resp := readResponse(t, writer.Data)
		require.Equal(t, mime.JSON, resp.Header.Get("Content-Type"))
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"answer":42}`, string(body))
	})

	t.Run("reused after a large response", func(t *testing.T) {
		serializer := NewSerializer(make([]byte, 0, 64), 128)
		writer := new(accumulativeWriter)
		require.NoError(t, serializer.Write(writer, http.NewResponse().String(strings.Repeat("a", 1024))))
		require.LessOrEqual(t, cap(serializer.buff), 128)

		writer = new(accumulativeWriter)
		require.NoError(t, serializer.Write(writer, http.NewResponse()))
		require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n", string(writer.Data))
	})
}

func TestSerializer_Invalid(t *testing.T) {
	for _, tc := range []struct {
		Name     string
		Response *http.Response
	}{
		{"code below range", http.NewResponse().Code(42)},
		{"code above range", http.NewResponse().Code(600)},
		{"line break in status", http.NewResponse().Status("OK\r\nX-Injected: 1")},
		{"line break in header value", http.NewResponse().Header("X-Hello", "a\r\nX-Injected: 1")},
		{"bare LF in header value", http.NewResponse().Header("X-Hello", "a\nb")},
		{"colon in header key", http.NewResponse().Header("X:Hello", "a")},
		{"space in header key", http.NewResponse().Header("X Hello", "a")},
		{"empty header key", http.NewResponse().Header("", "a")},
		{"non-numeric content length", http.NewResponse().Header("Content-Length", "five")},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			writer := new(accumulativeWriter)
			err := getSerializer().Write(writer, tc.Response)
			require.ErrorIs(t, err, status.ErrInvalidResponse)
			require.Zero(t, writer.Writes)
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, io.ErrClosedPipe
}

func TestSerializer_WriteError(t *testing.T) {
	serializer := getSerializer()
	err := serializer.Write(failingWriter{}, http.NewResponse().String("Hello"))
	require.True(t, errors.Is(err, io.ErrClosedPipe))

	writer := new(accumulativeWriter)
	require.NoError(t, serializer.Write(writer, http.NewResponse()))
	require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n", string(writer.Data))
}
