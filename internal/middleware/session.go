// Package middleware provides HTTP middlewares for sessions, logging and
// request throttling.
package middleware

import (
	"context"
	"net/http"
)

type ctxKey string

const userKey ctxKey = "user"

// IdentitySource reports the currently logged-in user.
type IdentitySource interface {
	User() (string, bool)
}

// WithSession stores the logged-in username, if any, in the request context.
// The identity is read on every request, so a logout takes effect for the
// very next page.
func WithSession(src IdentitySource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := src.User()
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

// ContextWithUser returns a copy of ctx carrying username.
func ContextWithUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, userKey, username)
}

// UserFromContext extracts the username stored by WithSession.
// Returns an empty string and false if no user is logged in.
func UserFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(userKey).(string)
	return s, ok && s != ""
}
