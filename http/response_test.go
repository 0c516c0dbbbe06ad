package http

import (
	"errors"
	"slices"
	"testing"

	"github.com/indigo-web/httpfront/http/status"
	"github.com/stretchr/testify/require"
)

func TestResponse(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		resp := NewResponse().Expose()
		require.Equal(t, status.OK, resp.Code)
		require.Empty(t, resp.Status)
		require.True(t, resp.Headers.Empty())
		require.Empty(t, resp.Body)
	})

	t.Run("builder", func(t *testing.T) {
		resp := NewResponse().
			Code(status.Created).
			Status("Made It").
			Header("X-Multi", "a", "b").
			Header("Server", "httpfront").
			String("hello").
			Expose()

		require.Equal(t, status.Created, resp.Code)
		require.Equal(t, status.Status("Made It"), resp.Status)
		require.Equal(t, []string{"a", "b"}, slices.Collect(resp.Headers.Values("x-multi")))
		require.Equal(t, "httpfront", resp.Headers.Value("server"))
		require.Equal(t, "hello", string(resp.Body))
	})

	t.Run("write appends", func(t *testing.T) {
		resp := NewResponse()
		_, _ = resp.Write([]byte("hello, "))
		_, _ = resp.Write([]byte("world"))
		require.Equal(t, "hello, world", string(resp.Expose().Body))
	})

	t.Run("JSON", func(t *testing.T) {
		response := NewResponse()
		m := []int{1, 2, 3}
		resp, err := response.TryJSON(m)
		require.NoError(t, err)
		require.Equal(t, "[1,2,3]", string(resp.Expose().Body))
		require.Equal(t, "application/json", resp.Expose().Headers.Value("Content-Type"))
	})

	t.Run("JSON struct", func(t *testing.T) {
		type model struct {
			Name string `json:"name"`
			Age  int    `json:"age"`
		}

		resp := NewResponse().JSON(&model{Name: "Pavlo", Age: 20})
		require.Equal(t, `{"name":"Pavlo","age":20}`, string(resp.Expose().Body))
	})

	t.Run("JSON leaves the previous body intact", func(t *testing.T) {
		body := []byte("a pretty long previous body")
		resp := NewResponse().Bytes(body).JSON(42)
		require.Equal(t, "42", string(resp.Expose().Body))
		require.Equal(t, "a pretty long previous body", string(body))
	})

	t.Run("error with status", func(t *testing.T) {
		resp := NewResponse().Error(status.ErrUnknownMethod).Expose()
		require.Equal(t, status.NotImplemented, resp.Code)
		require.Equal(t, status.ErrUnknownMethod.Error(), string(resp.Body))
	})

	t.Run("wrapped error with status", func(t *testing.T) {
		resp := NewResponse().Error(status.Wrap(status.ErrTimeout, errors.New("i/o timeout"))).Expose()
		require.Equal(t, status.RequestTimeout, resp.Code)
	})

	t.Run("arbitrary error", func(t *testing.T) {
		resp := NewResponse().Error(errors.New("oops")).Expose()
		require.Equal(t, status.InternalServerError, resp.Code)
		require.Equal(t, "oops", string(resp.Body))
	})

	t.Run("nil error", func(t *testing.T) {
		resp := NewResponse().Error(nil).Expose()
		require.Equal(t, status.OK, resp.Code)
	})

	t.Run("clear", func(t *testing.T) {
		resp := NewResponse().Code(status.NotFound).Header("A", "b").String("body").Clear().Expose()
		require.Equal(t, status.OK, resp.Code)
		require.True(t, resp.Headers.Empty())
		require.Empty(t, resp.Body)
	})
}
