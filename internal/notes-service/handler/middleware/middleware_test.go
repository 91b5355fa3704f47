package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/session"
)

type fakeSessions map[string]*session.Claims

func (f fakeSessions) Parse(_ context.Context, token string) (*session.Claims, error) {
	if c, ok := f[token]; ok {
		return c, nil
	}
	return nil, errors.New("invalid")
}

var okHandler = http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
	rw.WriteHeader(http.StatusOK)
})

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{name: "cookie", cookie: "abc", want: "abc"},
		{name: "bearer", header: "Bearer xyz", want: "xyz"},
		{name: "lowercase bearer", header: "bearer xyz", want: "xyz"},
		{name: "cookie wins", cookie: "abc", header: "Bearer xyz", want: "abc"},
		{name: "basic auth ignored", header: "Basic dXNlcjpwYXNz", want: ""},
		{name: "none", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/files", nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: session.CookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, TokenFromRequest(r))
		})
	}
}

func TestCheckAuth(t *testing.T) {
	userID := uuid.New()
	sessions := fakeSessions{"good": {UserID: userID}}
	var seen uuid.UUID
	h := CheckAuth(sessions)(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		c, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		seen = c.UserID
	}))

	rw := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	h.ServeHTTP(rw, r)
	assert.Equal(t, http.StatusUnauthorized, rw.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rw.Body.String())

	rw = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/api/files", nil)
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: "good"})
	h.ServeHTTP(rw, r)
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.Equal(t, userID, seen)
}

func TestPageGuard(t *testing.T) {
	sessions := fakeSessions{"good": {UserID: uuid.New()}}
	h := PageGuard(sessions)(okHandler)

	tests := []struct {
		name         string
		path         string
		token        string
		wantStatus   int
		wantLocation string
	}{
		{name: "anonymous home", path: "/", wantStatus: http.StatusFound, wantLocation: "/login"},
		{name: "anonymous page", path: "/files/123", wantStatus: http.StatusFound, wantLocation: "/login"},
		{name: "anonymous login", path: "/login", wantStatus: http.StatusOK},
		{name: "anonymous register", path: "/register", wantStatus: http.StatusOK},
		{name: "anonymous asset", path: "/assets/app.css", wantStatus: http.StatusOK},
		{name: "signed in home", path: "/", token: "good", wantStatus: http.StatusOK},
		{name: "signed in login", path: "/login", token: "good", wantStatus: http.StatusFound, wantLocation: "/"},
		{name: "signed in register", path: "/register/", token: "good", wantStatus: http.StatusFound, wantLocation: "/"},
		{name: "bad token", path: "/", token: "bad", wantStatus: http.StatusFound, wantLocation: "/login"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				r.AddCookie(&http.Cookie{Name: session.CookieName, Value: tt.token})
			}
			rw := httptest.NewRecorder()
			h.ServeHTTP(rw, r)
			assert.Equal(t, tt.wantStatus, rw.Code)
			assert.Equal(t, tt.wantLocation, rw.Header().Get("Location"))
		})
	}
}

func TestRecover(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := log.New()
	logger.SetOutput(buf)
	h := Recover(log.NewEntry(logger))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/api/files", nil))
	assert.Equal(t, http.StatusInternalServerError, rw.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rw.Body.String())
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "boom")
}

func TestLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := log.New()
	logger.SetOutput(buf)
	logger.SetFormatter(&log.JSONFormatter{})
	h := Logging(log.NewEntry(logger))(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/files/1", nil))
	out := buf.String()
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"method":"DELETE"`)
	assert.Contains(t, out, `"path":"/api/files/1"`)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Now()
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))
	assert.Equal(t, 0, rl.Remaining("1.1.1.1"))
	assert.Equal(t, 1, rl.Remaining("2.2.2.2"))

	now = now.Add(2 * time.Minute)
	assert.True(t, rl.Allow("1.1.1.1"))
	rl.cleanup()
	assert.Len(t, rl.ipLimits, 1)

	rl.Reset()
	assert.Equal(t, 2, rl.Remaining("1.1.1.1"))
}

func TestRateLimiter_Limit(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	h := rl.Limit(okHandler)

	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, r)
	assert.Equal(t, http.StatusOK, rw.Code)

	rw = httptest.NewRecorder()
	h.ServeHTTP(rw, r)
	assert.Equal(t, http.StatusTooManyRequests, rw.Code)
	assert.Equal(t, "60", rw.Header().Get("Retry-After"))

	for i := 1; i <= 5; i++ {
		spoofed := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		spoofed.RemoteAddr = "10.0.0.1:1234"
		spoofed.Header.Set("X-Forwarded-For", fmt.Sprintf("192.168.0.%d", i))
		rw = httptest.NewRecorder()
		h.ServeHTTP(rw, spoofed)
		assert.Equal(t, http.StatusTooManyRequests, rw.Code, "forwarded header from an untrusted peer")
	}
}

func TestRateLimiter_LimitBehindProxy(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	rl.TrustProxies(trusted)
	h := rl.Limit(okHandler)

	send := func(forwarded string) int {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		r.Header.Set("X-Forwarded-For", forwarded)
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, r)
		return rw.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.5"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.5"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.1, 203.0.113.5"), "client cannot prepend hops")
	assert.Equal(t, http.StatusOK, send("203.0.113.6"))
}

func TestClientIP(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.168.1.1"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		remote    string
		forwarded string
		trusted   []netip.Prefix
		want      string
	}{
		{name: "remote addr", remote: "203.0.113.5:4000", want: "203.0.113.5"},
		{name: "header ignored without trusted proxies", remote: "203.0.113.5:4000", forwarded: "1.2.3.4", want: "203.0.113.5"},
		{name: "header ignored from untrusted peer", remote: "203.0.113.5:4000", forwarded: "1.2.3.4", trusted: trusted, want: "203.0.113.5"},
		{name: "trusted proxy", remote: "10.1.2.3:4000", forwarded: "1.2.3.4", trusted: trusted, want: "1.2.3.4"},
		{name: "rightmost untrusted hop", remote: "10.1.2.3:4000", forwarded: "6.6.6.6, 1.2.3.4, 192.168.1.1", trusted: trusted, want: "1.2.3.4"},
		{name: "only proxies", remote: "10.1.2.3:4000", forwarded: "10.9.9.9", trusted: trusted, want: "10.1.2.3"},
		{name: "no port", remote: "203.0.113.5", want: "203.0.113.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, ClientIP(r, tt.trusted...))
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := ParseTrustedProxies([]string{" 10.0.0.1/8 ", "", "::1", "192.168.1.1"})
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("::1/128"),
		netip.MustParsePrefix("192.168.1.1/32"),
	}, got)

	_, err = ParseTrustedProxies([]string{"proxy.local"})
	assert.Error(t, err)
}

func TestRateLimiter_RunStops(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not stop")
	}
}
