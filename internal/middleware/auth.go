package middleware

import (
	"net/http"
	"strings"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/auth"
)

// Authenticate resolves an "Authorization: Token <key>" (or Bearer) header to a
// user. Requests without the header pass through anonymously; a header that
// does not resolve is rejected.
func Authenticate(provider auth.Provider, writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			credential, ok := parseCredential(header)
			if !ok {
				writeErr(w, r, apperr.Unauthorized("invalid authorization header"))
				return
			}
			user, err := provider.CurrentUser(r.Context(), credential)
			if err != nil {
				writeErr(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func parseCredential(header string) (string, bool) {
	scheme, credential, found := strings.Cut(header, " ")
	if !found {
		return "", false
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return "", false
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
		return credential, true
	default:
		return "", false
	}
}

func RequireUser(writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserFrom(r.Context()); !ok {
				writeErr(w, r, apperr.Unauthorized("authentication credentials were not provided"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireStaff(writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFrom(r.Context())
			if !ok {
				writeErr(w, r, apperr.Unauthorized("authentication credentials were not provided"))
				return
			}
			if !u.IsStaff {
				writeErr(w, r, apperr.Forbidden("staff only"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
