package transport

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	"github.com/indigo-web/httpfront/config"
	"github.com/indigo-web/httpfront/http/status"
	"github.com/indigo-web/httpfront/internal/timer"
)

// Client is the only I/O primitive the request parser needs: reading one byte at a time from
// a live connection. It also carries the write side used to emit the response.
type Client interface {
	ReadByte() (byte, error)
	Write([]byte) (int, error)
	Conn() net.Conn
	Remote() net.Addr
	Detach()
	Close() error
}

var _ Client = new(client)

type client struct {
	ctx             context.Context
	stop            func() bool
	conn            net.Conn
	one             [1]byte
	readTimeout     time.Duration
	writeTimeout    time.Duration
	requestDeadline time.Time
}

// NewClient wraps the connection. The per-request deadline starts ticking right away. If the
// context is cancelled, any blocked read or write is interrupted and fails.
func NewClient(ctx context.Context, conn net.Conn, cfg config.NET) Client {
	c := &client{
		ctx:             ctx,
		stop:            func() bool { return false },
		conn:            conn,
		readTimeout:     cfg.ReadTimeout,
		writeTimeout:    cfg.WriteTimeout,
		requestDeadline: timer.Deadline(cfg.RequestTimeout),
	}

	if ctx.Done() != nil {
		c.stop = context.AfterFunc(ctx, func() {
			_ = conn.SetDeadline(aLongTimeAgo)
		})
	}

	return c
}

var aLongTimeAgo = time.Unix(1, 0)

// ReadByte blocks until exactly one byte is read. Nothing is read ahead, so the bytes following
// the request head stay in the socket.
func (c *client) ReadByte() (byte, error) {
	deadline := timer.Earliest(timer.Deadline(c.readTimeout), c.requestDeadline)
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return 0, c.wrap(err)
	}

	// the cancellation could have happened right before the deadline was reset, so its
	// effect might be lost.
	if err := c.ctx.Err(); err != nil {
		return 0, status.Wrap(status.ErrIO, err)
	}

	for {
		n, err := c.conn.Read(c.one[:])
		if n == 1 {
			return c.one[0], nil
		}

		if err != nil {
			return 0, c.wrap(err)
		}
	}
}

// Write writes data into the underlying connection entirely.
func (c *client) Write(b []byte) (int, error) {
	if err := c.conn.SetWriteDeadline(timer.Deadline(c.writeTimeout)); err != nil {
		return 0, c.wrap(err)
	}

	if err := c.ctx.Err(); err != nil {
		return 0, status.Wrap(status.ErrIO, err)
	}

	n, err := c.conn.Write(b)
	if err != nil {
		return n, c.wrap(err)
	}

	return n, nil
}

func (c *client) wrap(err error) error {
	if ctxErr := c.ctx.Err(); ctxErr != nil {
		return status.Wrap(status.ErrIO, ctxErr)
	}

	if errors.Is(err, os.ErrDeadlineExceeded) {
		return status.Wrap(status.ErrTimeout, err)
	}

	return status.Wrap(status.ErrIO, err)
}

// Conn unwraps the underlying net.Conn.
func (c *client) Conn() net.Conn {
	return c.conn
}

// Remote returns the remote address of the connection.
func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

// Detach stops watching the context. The connection stays open, however cancelling the
// context won't interrupt it anymore.
func (c *client) Detach() {
	c.stop()
}

// Close closes the connection.
func (c *client) Close() error {
	c.stop()
	return c.conn.Close()
}
