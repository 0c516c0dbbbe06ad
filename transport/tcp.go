package transport

import (
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/indigo-web/httpfront/config"
	"github.com/indigo-web/httpfront/internal/timer"
)

type listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

// TCP is the accept loop. Every accepted connection is served in its own goroutine, so a
// slow client never stalls the others. The connection is closed after the callback returns.
type TCP struct {
	l    listener
	wg   *sync.WaitGroup
	stop *atomic.Bool
}

func NewTCP() *TCP {
	return &TCP{
		wg:   new(sync.WaitGroup),
		stop: new(atomic.Bool),
	}
}

func (t *TCP) Bind(addr string) error {
	tcpaddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return err
	}

	t.l, err = net.ListenTCP("tcp", tcpaddr)
	return err
}

// Addr returns the bound address. Useful when binding to port 0.
func (t *TCP) Addr() net.Addr {
	return t.l.Addr()
}

func (t *TCP) Listen(cfg config.NET, cb func(conn net.Conn)) error {
	for !t.stop.Load() {
		// the coarse clock lags behind, so short periods would yield deadlines in the past
		err := t.l.SetDeadline(time.Now().Add(cfg.AcceptLoopInterruptPeriod))
		if err != nil {
			return err
		}

		conn, err := t.l.Accept()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}

			if t.stop.Load() {
				// the listener was closed in order to interrupt us
				return nil
			}

			return err
		}

		t.wg.Add(1)
		go func(conn net.Conn) {
			defer t.wg.Done()
			cb(conn)
			_ = conn.Close()
		}(conn)
	}

	return nil
}

// Stop makes the accept loop exit. A blocked Accept is interrupted by closing the listener,
// otherwise the loop notices the flag at the latest after AcceptLoopInterruptPeriod. Already
// accepted connections keep being served.
func (t *TCP) Stop() {
	if !t.stop.Swap(true) {
		_ = t.l.Close()
	}
}

func (t *TCP) Close() {
	_ = t.l.Close()
}

// Wait blocks until every accepted connection is done.
func (t *TCP) Wait() {
	t.wg.Wait()
}

// maxDrain bounds how much of the peer's leftovers is read before giving up.
const maxDrain = 256 * 1024

// CloseWriteAndDrain half-closes the connection and discards whatever the peer keeps sending
// until it closes its side or the timeout expires. Closing a socket with unread data in it
// resets the connection, and the peer might lose the response it hasn't read yet.
func CloseWriteAndDrain(conn net.Conn, timeout time.Duration) {
	type closeWriter interface {
		CloseWrite() error
	}

	if cw, ok := conn.(closeWriter); ok {
		_ = cw.CloseWrite()
	}

	if err := conn.SetReadDeadline(timer.Deadline(timeout)); err != nil {
		return
	}

	_, _ = io.CopyN(io.Discard, conn, maxDrain)
}
