package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter counts requests per client IP in fixed windows.
type RateLimiter struct {
	ipLimits map[string]*ipLimit
	mu       sync.Mutex

	maxRequests int
	window      time.Duration
	now         func() time.Time

	// trusted proxies may name the client in X-Forwarded-For.
	trusted []netip.Prefix
}

type ipLimit struct {
	requests  int
	resetTime time.Time
}

func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		ipLimits:    make(map[string]*ipLimit),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Allow records a request from ip and reports whether it is within the limit.
func (rl *RateLimiter) Allow(ip string) bool {
	if rl.maxRequests <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	limit, exists := rl.ipLimits[ip]
	if !exists || now.After(limit.resetTime) {
		rl.ipLimits[ip] = &ipLimit{
			requests:  1,
			resetTime: now.Add(rl.window),
		}
		return true
	}

	if limit.requests >= rl.maxRequests {
		return false
	}
	limit.requests++
	return true
}

func (rl *RateLimiter) Remaining(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limit, exists := rl.ipLimits[ip]
	if !exists || rl.now().After(limit.resetTime) {
		return rl.maxRequests
	}
	remaining := rl.maxRequests - limit.requests
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for ip, limit := range rl.ipLimits {
		if now.After(limit.resetTime) {
			delete(rl.ipLimits, ip)
		}
	}
}

// Run removes expired entries every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.ipLimits = make(map[string]*ipLimit)
}

// Limit answers 429 once a client goes over the limit.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if !rl.Allow(ClientIP(r, rl.trusted...)) {
			rw.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			writeError(rw, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		next.ServeHTTP(rw, r)
	})
}

// TrustProxies makes Limit read X-Forwarded-For on requests coming from these networks.
func (rl *RateLimiter) TrustProxies(trusted []netip.Prefix) {
	rl.trusted = trusted
}

// ParseTrustedProxies accepts CIDRs and single addresses.
func ParseTrustedProxies(list []string) ([]netip.Prefix, error) {
	res := make([]netip.Prefix, 0, len(list))
	for _, item := range list {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if p, err := netip.ParsePrefix(item); err == nil {
			res = append(res, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q", item)
		}
		res = append(res, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return res, nil
}

// ClientIP returns the connection address. When that address is a trusted proxy,
// X-Forwarded-For is read from the right and the first untrusted hop is the client.
func ClientIP(r *http.Request, trusted ...netip.Prefix) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !isTrusted(host, trusted) {
		return host
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop != "" && !isTrusted(hop, trusted) {
			return hop
		}
	}
	return host
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
