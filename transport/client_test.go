package transport

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/indigo-web/httpfront/config"
	"github.com/indigo-web/httpfront/http/status"
	"github.com/stretchr/testify/require"
)

func newPipeClient(ctx context.Context, cfg config.NET) (Client, net.Conn) {
	server, peer := net.Pipe()
	return NewClient(ctx, server, cfg), peer
}

func TestClient(t *testing.T) {
	t.Run("reads byte by byte", func(t *testing.T) {
		client, peer := newPipeClient(context.Background(), config.Default().NET)
		defer client.Close()

		go func() {
			_, _ = peer.Write([]byte("ab"))
		}()

		c, err := client.ReadByte()
		require.NoError(t, err)
		require.Equal(t, byte('a'), c)

		// nothing was read ahead, so the rest is still in the connection
		buff := make([]byte, 8)
		n, err := client.Conn().Read(buff)
		require.NoError(t, err)
		require.Equal(t, "b", string(buff[:n]))
	})

	t.Run("premature close", func(t *testing.T) {
		client, peer := newPipeClient(context.Background(), config.Default().NET)
		defer client.Close()
		require.NoError(t, peer.Close())

		_, err := client.ReadByte()
		require.ErrorIs(t, err, status.ErrIO)
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("read timeout", func(t *testing.T) {
		cfg := config.Default().NET
		cfg.ReadTimeout = 50 * time.Millisecond
		client, peer := newPipeClient(context.Background(), cfg)
		defer peer.Close()
		defer client.Close()

		_, err := client.ReadByte()
		require.ErrorIs(t, err, status.ErrTimeout)
	})

	t.Run("request timeout", func(t *testing.T) {
		cfg := config.Default().NET
		cfg.RequestTimeout = 50 * time.Millisecond
		client, peer := newPipeClient(context.Background(), cfg)
		defer peer.Close()
		defer client.Close()

		go func() {
			// trickle a byte every 20ms, which never trips the read timeout
			for range 100 {
				if _, err := peer.Write([]byte("a")); err != nil {
					return
				}

				time.Sleep(20 * time.Millisecond)
			}
		}()

		var err error
		for err == nil {
			_, err = client.ReadByte()
		}

		require.ErrorIs(t, err, status.ErrTimeout)
	})

	t.Run("cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		client, peer := newPipeClient(ctx, config.Default().NET)
		defer peer.Close()
		defer client.Close()

		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		_, err := client.ReadByte()
		require.ErrorIs(t, err, status.ErrIO)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("detached", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		client, peer := newPipeClient(ctx, config.Default().NET)
		defer peer.Close()
		defer client.Close()

		client.Detach()
		cancel()

		// the connection itself is still usable for writing a farewell response
		go func() {
			_, _ = io.ReadAll(peer)
		}()

		_, err := client.Conn().Write([]byte("bye"))
		require.NoError(t, err)
	})

	t.Run("write", func(t *testing.T) {
		client, peer := newPipeClient(context.Background(), config.Default().NET)
		defer client.Close()

		go func() {
			_, _ = client.Write([]byte("hello"))
		}()

		buff := make([]byte, 5)
		_, err := io.ReadFull(peer, buff)
		require.NoError(t, err)
		require.Equal(t, "hello", string(buff))

		require.NoError(t, peer.Close())
		_, err = client.Write([]byte("again"))
		require.ErrorIs(t, err, status.ErrIO)
	})
}
