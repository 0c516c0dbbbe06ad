package linebuf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func fill(b *Buffer, s string) bool {
	for i := 0; i < len(s); i++ {
		if !b.AppendByte(s[i]) {
			return false
		}
	}

	return true
}

func TestBuffer(t *testing.T) {
	t.Run("strips CRLF", func(t *testing.T) {
		b := New(4, 64)
		require.True(t, fill(b, "Host: h\r\n"))
		require.Equal(t, "Host: h", string(b.Line()))
	})

	t.Run("strips bare LF", func(t *testing.T) {
		b := New(4, 64)
		require.True(t, fill(b, "Host: h\n"))
		require.Equal(t, "Host: h", string(b.Line()))
	})

	t.Run("short lines", func(t *testing.T) {
		b := New(4, 64)
		require.True(t, fill(b, "\r\n"))
		require.Empty(t, b.Line())

		b.Reset()
		require.True(t, fill(b, "\n"))
		require.Empty(t, b.Line())

		b.Reset()
		require.True(t, fill(b, "a\n"))
		require.Equal(t, "a", string(b.Line()))
	})

	t.Run("lone CR is kept", func(t *testing.T) {
		b := New(4, 64)
		require.True(t, fill(b, "a\rb\n"))
		require.Equal(t, "a\rb", string(b.Line()))
	})

	t.Run("limit", func(t *testing.T) {
		b := New(16, 4)
		require.True(t, fill(b, "abcd"))
		require.False(t, b.AppendByte('e'))
		require.Equal(t, 4, b.Len())

		b.Reset()
		b.Limit(8)
		require.True(t, fill(b, "abcdefg\n"))
		require.Equal(t, "abcdefg", string(b.Line()))
	})

	t.Run("initial capacity never exceeds the limit", func(t *testing.T) {
		require.Equal(t, 16, New(16, 64).Cap())
		require.Equal(t, 4, New(16, 4).Cap())
	})
}
