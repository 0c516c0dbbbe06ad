package dummy

import (
	"io"
	"net"
	"time"
)

var _ net.Conn = new(Conn)

// Conn is an in-memory net.Conn. Reads are served from the data it was initialised with,
// io.EOF is returned afterwards. Everything written is recorded.
type Conn struct {
	Data    []byte
	Written []byte
	Closed  bool
	remote  net.Addr
	nop     bool
}

func NewConn(data string) *Conn {
	return &Conn{
		Data:   []byte(data),
		remote: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8080},
	}
}

func (c *Conn) Read(b []byte) (n int, err error) {
	if c.Closed {
		return 0, net.ErrClosed
	}

	if len(c.Data) == 0 {
		return 0, io.EOF
	}

	n = copy(b, c.Data)
	c.Data = c.Data[n:]

	return n, nil
}

func (c *Conn) Write(b []byte) (n int, err error) {
	if c.Closed {
		return 0, net.ErrClosed
	}

	if !c.nop {
		c.Written = append(c.Written, b...)
	}

	return len(b), nil
}

func (c *Conn) Close() error {
	c.Closed = true
	return nil
}

func (c *Conn) LocalAddr() net.Addr {
	return nil
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.remote
}

func (c *Conn) SetDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetReadDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetWriteDeadline(time.Time) error {
	return nil
}

// Nop makes the connection discard everything written.
func (c *Conn) Nop() *Conn {
	c.nop = true
	return c
}
