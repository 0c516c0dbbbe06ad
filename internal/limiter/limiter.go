package limiter

import (
	"net"
	"sync"

	"golang.org/x/time/rate"
)

// maxEntries bounds the memory a flood of distinct addresses may take. Once reached, all the
// limiters are forgotten and start over with a full bucket.
const maxEntries = 64 * 1024

// Pool keeps a token bucket per remote IP, limiting how often a single peer may open
// connections.
type Pool struct {
	mu    sync.Mutex
	m     map[string]*rate.Limiter
	limit rate.Limit
	burst int
}

// New returns a pool allowing rps connections per second per IP with bursts of up to
// burst connections. Non-positive rps disables limiting at all.
func New(rps float64, burst int) *Pool {
	if burst <= 0 {
		burst = 1
	}

	return &Pool{
		m:     make(map[string]*rate.Limiter),
		limit: rate.Limit(rps),
		burst: burst,
	}
}

// Enabled reports whether the pool limits anything.
func (p *Pool) Enabled() bool {
	return p.limit > 0
}

func (p *Pool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if l, ok := p.m[key]; ok {
		return l
	}

	if len(p.m) >= maxEntries {
		clear(p.m)
	}

	l := rate.NewLimiter(p.limit, p.burst)
	p.m[key] = l
	return l
}

// Allow reports whether a connection from the key may be accepted now.
func (p *Pool) Allow(key string) bool {
	if !p.Enabled() {
		return true
	}

	return p.get(key).Allow()
}

// AllowAddr is Allow keyed by the IP part of the address, so that different ports of the
// same host share the bucket.
func (p *Pool) AllowAddr(addr net.Addr) bool {
	return p.Allow(Key(addr))
}

// Key extracts the host part of the address. Addresses which can't be split are used as is.
func Key(addr net.Addr) string {
	if addr == nil {
		return ""
	}

	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String()
	}

	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}

	return host
}
