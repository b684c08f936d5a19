package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/auth"
)

const HeaderCorrelationID = "X-Correlation-Id"

type ctxKey string

const (
	ctxCorrelationID ctxKey = "correlation_id"
	ctxUser          ctxKey = "user"
)

// ErrorWriter renders err as the service's JSON error body.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// CorrelationID propagates X-Correlation-Id, generating one when absent.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(HeaderCorrelationID)
		if cid == "" {
			cid = uuid.NewString()
		}
		w.Header().Set(HeaderCorrelationID, cid)

		ctx := context.WithValue(r.Context(), ctxCorrelationID, cid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetCorrelationID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxCorrelationID).(string); ok {
		return v
	}
	return ""
}

func WithUser(ctx context.Context, u *auth.User) context.Context {
	return context.WithValue(ctx, ctxUser, u)
}

// UserFrom returns the authenticated user, if any.
func UserFrom(ctx context.Context) (*auth.User, bool) {
	u, ok := ctx.Value(ctxUser).(*auth.User)
	return u, ok && u != nil
}
