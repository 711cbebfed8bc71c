package worker

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces outbound requests per host.
// Hosts are keyed case-insensitively with default ports removed, so
// "HF.co:443" and "hf.co" share one budget.
type Limiter struct {
	mu           sync.RWMutex
	hosts        map[string]*hostLimit
	defaultRate  rate.Limit
	defaultBurst int
}

type hostLimit struct {
	limiter *rate.Limiter
	delay   time.Duration // Crawl delay override, 0 when the default rate applies
}

// NewLimiter creates a per-host limiter; requestsPerSecond <= 0 disables pacing
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	return &Limiter{
		hosts:        make(map[string]*hostLimit),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait blocks until a request to rawURL's host is allowed
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	host, err := hostOf(rawURL)
	if err != nil {
		return err
	}
	return l.forHost(host).limiter.Wait(ctx)
}

// Allow reports whether a request may proceed without waiting
func (l *Limiter) Allow(rawURL string) bool {
	host, err := hostOf(rawURL)
	if err != nil {
		return false
	}
	return l.forHost(host).limiter.Allow()
}

// SetHostDelay slows a host down to one request per delay (e.g. a robots.txt crawl delay).
// A shorter delay than the one already set is ignored.
func (l *Limiter) SetHostDelay(host string, delay time.Duration) {
	if delay <= 0 {
		return
	}
	key := hostKey(host, "")

	l.mu.Lock()
	defer l.mu.Unlock()
	if current, ok := l.hosts[key]; ok && current.delay >= delay {
		return
	}
	l.hosts[key] = &hostLimit{limiter: rate.NewLimiter(rate.Every(delay), 1), delay: delay}
}

// HostDelay returns the crawl delay set for host, 0 if none
func (l *Limiter) HostDelay(host string) time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if h, ok := l.hosts[hostKey(host, "")]; ok {
		return h.delay
	}
	return 0
}

func (l *Limiter) forHost(key string) *hostLimit {
	l.mu.RLock()
	h, ok := l.hosts[key]
	l.mu.RUnlock()
	if ok {
		return h
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if h, ok := l.hosts[key]; ok {
		return h
	}
	h = &hostLimit{limiter: rate.NewLimiter(l.defaultRate, l.defaultBurst)}
	l.hosts[key] = h
	return h
}

func hostOf(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("url %q has no host", rawURL)
	}
	return hostKey(parsed.Host, parsed.Scheme), nil
}

// hostKey lowercases host and drops the scheme's default port.
// With no scheme both 80 and 443 count as default.
func hostKey(host, scheme string) string {
	host = strings.ToLower(host)
	name, port, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}
	switch {
	case port == "80" && scheme != "https", port == "443" && scheme != "http":
		return name
	}
	return host
}
