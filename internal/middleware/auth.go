// Package middleware provides the HTTP middleware stack.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

type contextKey string

var userContextKey = contextKey("user")

// UserResolver resolves a bearer token to the current user. Implemented by
// the auth service.
type UserResolver interface {
	CurrentUser(ctx context.Context, token string) (*model.User, error)
}

// Authenticator validates the Authorization bearer token and injects the
// authenticated user into the request context. Unauthenticated requests get
// 401.
func Authenticator(resolver UserResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := resolver.CurrentUser(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return ""
}

// UserFromContext returns the authenticated user, or nil outside the
// Authenticator.
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// ContextWithUser injects a user into the context. Used by the Authenticator
// and by tests.
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
