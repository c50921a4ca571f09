package http

import (
	"context"
	"net/http"
	"strings"

	"centavo/internal/core"
	"centavo/internal/log"
)

type userKey struct{}

// Authenticator resolves a bearer token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (core.User, error)
}

// requireAuth rejects requests without a valid access token and stores the
// user in the context.
func requireAuth(auth Authenticator, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeErrorMessage(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		u, err := auth.Authenticate(r.Context(), strings.TrimSpace(token))
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userKey{}, u)
		ctx = log.WithContext(ctx, log.FromContext(ctx).With(log.FieldUserID, u.ID))
		next(w, r.WithContext(ctx))
	}
}

// currentUser returns the authenticated user. Only valid behind requireAuth.
func currentUser(r *http.Request) core.User {
	u, _ := r.Context().Value(userKey{}).(core.User)
	return u
}

// chain wraps h so that the first middleware runs outermost.
func chain(h http.Handler, mw ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}
