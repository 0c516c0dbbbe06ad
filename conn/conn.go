package conn

import (
	"context"
	"errors"
	"net"

	"github.com/indigo-web/httpfront/config"
	"github.com/indigo-web/httpfront/http"
	"github.com/indigo-web/httpfront/http/status"
	"github.com/indigo-web/httpfront/internal/protocol/http1"
	"github.com/indigo-web/httpfront/internal/timer"
	"github.com/indigo-web/httpfront/transport"
)

// Conn pairs the parsed request with the connection it came from. Exactly one request is
// served per connection, so it's answered at most once.
type Conn struct {
	client     transport.Client
	request    *http.Request
	serializer *http1.Serializer
	responded  bool
}

// New takes over the connection and reads the request head from it. On failure the error
// is returned unchanged, no partial request escapes, and closing the connection is up to
// the caller. Cancelling the context interrupts the reading.
func New(ctx context.Context, cfg *config.Config, netConn net.Conn) (*Conn, error) {
	client := transport.NewClient(ctx, netConn, cfg.NET)

	request, err := http1.NewParser(cfg).Parse(client)
	if err != nil {
		client.Detach()
		return nil, err
	}

	request.Remote = client.Remote()

	return &Conn{
		client:  client,
		request: request,
		serializer: http1.NewSerializer(
			make([]byte, 0, cfg.NET.WriteBufferSize.Default), cfg.NET.WriteBufferSize.Maximal,
		),
	}, nil
}

func (c *Conn) Request() *http.Request {
	return c.request
}

func (c *Conn) Remote() net.Addr {
	return c.client.Remote()
}

// Respond writes the response. A nil response is the same as http.NewResponse(), that is
// 200 OK with no body. An invalid response is refused with status.ErrInvalidResponse before
// anything is written, so another one may be responded instead.
func (c *Conn) Respond(response *http.Response) error {
	if c.responded {
		return status.ErrAlreadyResponded
	}

	if response == nil {
		response = http.NewResponse()
	}

	err := c.serializer.Write(c.client, response)
	if errors.Is(err, status.ErrInvalidResponse) {
		return err
	}

	c.responded = true
	return err
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.client.Close()
}

// Reject answers a connection whose request failed to be parsed with the error's status
// code. Errors without one (I/O failures in the first place) are not answered: there's
// nobody to answer to. The connection isn't closed.
func Reject(cfg *config.Config, netConn net.Conn, err error) (answered bool, writeErr error) {
	if _, ok := status.CodeOf(err); !ok {
		return false, nil
	}

	if writeErr = netConn.SetWriteDeadline(timer.Deadline(cfg.NET.WriteTimeout)); writeErr != nil {
		return false, status.Wrap(status.ErrIO, writeErr)
	}

	serializer := http1.NewSerializer(nil, cfg.NET.WriteBufferSize.Default)
	response := http.NewResponse().
		Error(err).
		Header("Connection", "close")

	if writeErr = serializer.Write(netConn, response); writeErr != nil {
		return false, status.Wrap(status.ErrIO, writeErr)
	}

	return true, nil
}
