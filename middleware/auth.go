package middleware

import (
	"net/http"
	"strings"

	"github.com/leonelm2/PotreroMobile/models"
)

// TokenParser turns a bearer token into the caller identity. *utils.TokenManager implements it.
type TokenParser interface {
	Parse(token string) (models.Actor, error)
}

// Authenticate resolves the bearer token when one is sent. Requests without
// a token continue as anonymous; a malformed or expired token is rejected.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, kindUnauthorized, "authorization header must be 'Bearer <token>'")
				return
			}

			actor, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				LoggerFromContext(r.Context()).Debug("rejected token", "error", err)
				writeError(w, http.StatusUnauthorized, kindUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ActorFromContext(r.Context()).IsAuthenticated() {
			writeError(w, http.StatusUnauthorized, kindUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := ActorFromContext(r.Context())
		switch {
		case !actor.IsAuthenticated():
			writeError(w, http.StatusUnauthorized, kindUnauthorized, "authentication required")
		case !actor.IsAdmin():
			writeError(w, http.StatusForbidden, kindForbidden, "operation requires administrator privileges")
		default:
			next.ServeHTTP(w, r)
		}
	})
}
