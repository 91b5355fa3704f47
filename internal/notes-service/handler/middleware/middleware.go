package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/session"
)

type contextKey int

const claimsKey contextKey = iota

// SessionParser validates a raw token.
type SessionParser interface {
	Parse(ctx context.Context, token string) (*session.Claims, error)
}

func writeError(rw http.ResponseWriter, status int, message string) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(map[string]string{"error": message})
}

// TokenFromRequest returns the session token from the cookie or, failing that, a bearer header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(session.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func WithClaims(ctx context.Context, c *session.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func ClaimsFromContext(ctx context.Context) (*session.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*session.Claims)
	return c, ok && c != nil
}

// CheckAuth rejects requests without a valid session with 401 before they reach next.
func CheckAuth(sessions SessionParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			claims, err := sessions.Parse(r.Context(), TokenFromRequest(r))
			if err != nil {
				writeError(rw, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(rw, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

var publicPages = []string{"/login", "/register"}

var publicPrefixes = []string{"/assets/", "/static/", "/favicon.ico"}

func isAuthPage(p string) bool {
	p = strings.TrimSuffix(p, "/")
	p = strings.TrimSuffix(p, ".html")
	for _, page := range publicPages {
		if p == page {
			return true
		}
	}
	return false
}

func isPublicAsset(p string) bool {
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// PageGuard sends anonymous visitors of protected pages to /login and signed in visitors of
// /login or /register back to /.
func PageGuard(sessions SessionParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			if isPublicAsset(r.URL.Path) {
				next.ServeHTTP(rw, r)
				return
			}
			_, err := sessions.Parse(r.Context(), TokenFromRequest(r))
			authenticated := err == nil

			switch {
			case isAuthPage(r.URL.Path) && authenticated:
				http.Redirect(rw, r, "/", http.StatusFound)
			case !isAuthPage(r.URL.Path) && !authenticated:
				http.Redirect(rw, r, "/login", http.StatusFound)
			default:
				next.ServeHTTP(rw, r)
			}
		})
	}
}
