// Package session attaches the caller's session to the request context.
// Nothing in the application is gated on it; the board only uses the name
// to greet the user.
package session

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// CookieName holds the display name of the signed-in user.
const CookieName = "keepkoro_session"

// maxNameLen is counted in runes.
const maxNameLen = 64

type Session struct {
	Name string
}

// Anonymous reports whether the request carried no usable session cookie.
func (s Session) Anonymous() bool {
	return s.Name == ""
}

type ctxKey struct{}

// Middleware reads the session cookie into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), Read(r))))
	})
}

// Read parses the session cookie. A missing or malformed cookie yields an
// anonymous session.
func Read(r *http.Request) Session {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return Session{}
	}
	name, err := url.QueryUnescape(c.Value)
	if err != nil {
		return Session{}
	}
	return Session{Name: truncate(strings.TrimSpace(strings.ToValidUTF8(name, "")), maxNameLen)}
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by Middleware, or an anonymous one.
func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(ctxKey{}).(Session)
	return s
}
