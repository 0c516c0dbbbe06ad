package httpfront

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/indigo-web/httpfront/config"
	"github.com/indigo-web/httpfront/conn"
	"github.com/indigo-web/httpfront/http"
	"github.com/indigo-web/httpfront/http/status"
	"github.com/indigo-web/httpfront/internal/limiter"
	"github.com/indigo-web/httpfront/internal/metrics"
	"github.com/indigo-web/httpfront/transport"
	"go.uber.org/zap"
)

// lingerTimeout is how long a rejected peer is given to read the answer before the
// connection is closed.
const lingerTimeout = 500 * time.Millisecond

// Handler answers a request. Returning nil is the same as returning 200 OK with no body.
type Handler func(request *http.Request) *http.Response

// App accepts connections, reads a single request from each of them and answers it with
// the handler's response.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	limiter *limiter.Pool
	hooks   hooks
	addrs   []string

	mu    sync.Mutex
	bound []net.Addr
}

// New returns a new App instance. Nil config means config.Default().
func New(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Default()
	}

	return &App{
		cfg:     cfg,
		logger:  zap.NewNop(),
		metrics: metrics.New(),
		limiter: limiter.New(cfg.NET.ConnRate, cfg.NET.ConnBurst),
	}
}

// Logger replaces the default no-op logger.
func (a *App) Logger(logger *zap.Logger) *App {
	a.logger = logger
	return a
}

// Metrics returns the collectors of the app, e.g. in order to expose them.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// Listen adds an extra address to listen at, additionally to the one passed to Serve.
func (a *App) Listen(addr string) *App {
	a.addrs = append(a.addrs, addr)
	return a
}

// NotifyOnStart calls the callback at the moment, when all the listeners are bound. Addrs
// returns actual addresses by then.
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback at the moment, when all the listeners are down and every
// accepted connection is served.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Addrs returns the addresses the app is bound to. Empty until the app is started.
func (a *App) Addrs() []net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.bound
}

// Serve binds every address and serves connections until the context is cancelled or
// a listener fails. Cancelling the context interrupts requests being received, waits for
// those already being handled, and makes Serve return nil.
func (a *App) Serve(ctx context.Context, addr string, handler Handler) error {
	if handler == nil {
		handler = func(*http.Request) *http.Response {
			return nil
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	supervisor := transport.NewSupervisor()
	cb := a.newConnCallback(ctx, handler)

	for _, address := range append([]string{addr}, a.addrs...) {
		if err := supervisor.Add(address, transport.NewTCP(), cb); err != nil {
			return err
		}
	}

	a.mu.Lock()
	a.bound = supervisor.Addrs()
	a.mu.Unlock()

	for _, bound := range a.bound {
		a.logger.Info("listening", zap.Stringer("addr", bound))
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			supervisor.Stop()
		case <-done:
		}
	}()

	callIfNotNil(a.hooks.OnStart)
	err := supervisor.Run(a.cfg.NET)
	close(done)
	callIfNotNil(a.hooks.OnStop)

	if err != nil {
		a.logger.Error("listener_failed", zap.Error(err))
	}

	return err
}

func (a *App) newConnCallback(ctx context.Context, handler Handler) func(net.Conn) {
	return func(netConn net.Conn) {
		a.metrics.Accepted()
		remote := netConn.RemoteAddr()

		if !a.limiter.AllowAddr(remote) {
			a.metrics.RateLimited()
			a.logger.Debug("rate_limited", zap.Stringer("remote", remote))
			return
		}

		start := time.Now()
		c, err := conn.New(ctx, a.cfg, netConn)
		a.metrics.ObserveParse(time.Since(start))

		if err != nil {
			a.reject(netConn, err)
			return
		}

		defer func() {
			_ = c.Close()
		}()

		response := a.handle(handler, c.Request())
		err = c.Respond(response)
		if errors.Is(err, status.ErrInvalidResponse) {
			a.logger.Error("invalid_response",
				zap.String("path", c.Request().Path),
				zap.Error(err),
			)
			response = http.NewResponse().Code(status.InternalServerError)
			err = c.Respond(response)
		}

		if err != nil {
			a.logger.Debug("respond_failed", zap.Stringer("remote", remote), zap.Error(err))
			return
		}

		a.metrics.Responded(codeOf(response))
	}
}

func (a *App) reject(netConn net.Conn, err error) {
	a.metrics.ParseFailed(err)
	a.logger.Debug("parse_failed", zap.Stringer("remote", netConn.RemoteAddr()), zap.Error(err))

	answered, writeErr := conn.Reject(a.cfg, netConn, err)
	if writeErr != nil {
		a.logger.Debug("reject_failed", zap.Stringer("remote", netConn.RemoteAddr()), zap.Error(writeErr))
		return
	}

	if answered {
		code, _ := status.CodeOf(err)
		a.metrics.Responded(code)
		transport.CloseWriteAndDrain(netConn, lingerTimeout)
	}
}

// handle calls the handler, turning a panic into 500 Internal Server Error.
func (a *App) handle(handler Handler, request *http.Request) (response *http.Response) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("handler_panicked",
				zap.String("path", request.Path),
				zap.Any("panic", r),
			)
			response = http.NewResponse().Code(status.InternalServerError)
		}
	}()

	return handler(request)
}

func codeOf(response *http.Response) status.Code {
	if response == nil {
		return status.OK
	}

	return response.Expose().Code
}

type hooks struct {
	OnStart, OnStop func()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
