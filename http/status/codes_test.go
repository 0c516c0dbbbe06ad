package status

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	require.Equal(t, Status("OK"), Text(OK))
	require.Equal(t, Status("Not Found"), Text(NotFound))
	require.Equal(t, Status("HTTP Version Not Supported"), Text(HTTPVersionNotSupported))
	require.Equal(t, Status("Unknown Status Code"), Text(299))
	require.Equal(t, Status("Unknown Status Code"), Text(60000))
}

func TestErrors(t *testing.T) {
	t.Run("wrap keeps both", func(t *testing.T) {
		err := Wrap(ErrIO, io.EOF)
		require.ErrorIs(t, err, ErrIO)
		require.ErrorIs(t, err, io.EOF)
		require.NotErrorIs(t, err, ErrTimeout)
	})

	t.Run("wrap nil cause", func(t *testing.T) {
		require.Equal(t, ErrTimeout, Wrap(ErrTimeout, nil))
	})

	t.Run("code of", func(t *testing.T) {
		code, ok := CodeOf(ErrUnknownMethod)
		require.True(t, ok)
		require.Equal(t, NotImplemented, code)

		code, ok = CodeOf(Wrap(ErrTimeout, errors.New("i/o timeout")))
		require.True(t, ok)
		require.Equal(t, RequestTimeout, code)

		_, ok = CodeOf(Wrap(ErrIO, io.EOF))
		require.False(t, ok)

		_, ok = CodeOf(io.EOF)
		require.False(t, ok)
	})
}
