package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/auth"
)

type fakeProvider struct {
	currentUser func(ctx context.Context, credential string) (*auth.User, error)
}

func (f fakeProvider) CurrentUser(ctx context.Context, credential string) (*auth.User, error) {
	return f.currentUser(ctx, credential)
}

// recordKind writes the error kind as the body so tests can assert on it.
func recordKind(w http.ResponseWriter, _ *http.Request, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperr.KindForbidden:
		status = http.StatusForbidden
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(apperr.KindOf(err)))
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFrom(r.Context())
	if ok {
		_, _ = w.Write([]byte(u.ID))
	}
}

func TestCorrelationID(t *testing.T) {
	var seen string
	h := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetCorrelationID(r.Context())
	}))

	t.Run("propagates incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderCorrelationID, "abc")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "abc", seen)
		assert.Equal(t, "abc", rec.Header().Get(HeaderCorrelationID))
	})

	t.Run("generates when missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(HeaderCorrelationID))
	})
}

func TestAuthenticate(t *testing.T) {
	provider := fakeProvider{currentUser: func(_ context.Context, credential string) (*auth.User, error) {
		if credential == "good" {
			return &auth.User{ID: "u-1"}, nil
		}
		return nil, apperr.Unauthorized("invalid token")
	}}
	h := Authenticate(provider, recordKind)(http.HandlerFunc(okHandler))

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"anonymous", "", http.StatusOK, ""},
		{"token scheme", "Token good", http.StatusOK, "u-1"},
		{"bearer scheme", "Bearer good", http.StatusOK, "u-1"},
		{"unknown token", "Token bad", http.StatusUnauthorized, "unauthorized"},
		{"unknown scheme", "Basic good", http.StatusUnauthorized, "unauthorized"},
		{"missing credential", "Token ", http.StatusUnauthorized, "unauthorized"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.body, rec.Body.String())
		})
	}
}

func TestRequireUserAndStaff(t *testing.T) {
	serve := func(mw func(http.Handler) http.Handler, u *auth.User) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if u != nil {
			req = req.WithContext(WithUser(req.Context(), u))
		}
		rec := httptest.NewRecorder()
		mw(http.HandlerFunc(okHandler)).ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, serve(RequireUser(recordKind), nil).Code)
	assert.Equal(t, http.StatusOK, serve(RequireUser(recordKind), &auth.User{ID: "u-1"}).Code)

	assert.Equal(t, http.StatusUnauthorized, serve(RequireStaff(recordKind), nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(RequireStaff(recordKind), &auth.User{ID: "u-1"}).Code)
	assert.Equal(t, http.StatusOK, serve(RequireStaff(recordKind), &auth.User{ID: "u-1", IsStaff: true}).Code)
}

type fakeObserver struct {
	route, method, status string
}

func (f *fakeObserver) ObserveRequest(route, method, status string, _ float64) {
	f.route, f.method, f.status = route, method, status
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	obs := &fakeObserver{}

	r := chi.NewRouter()
	r.Use(CorrelationID, RequestLogger(logger, obs))
	r.Get("/api/orders/{orderId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/o-1", nil)
	req.Header.Set(HeaderCorrelationID, "corr-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request completed", line["message"])
	assert.Equal(t, "corr-1", line["correlation_id"])
	assert.Equal(t, "/api/orders/o-1", line["path"])
	assert.EqualValues(t, http.StatusTeapot, line["status"])

	assert.Equal(t, "/api/orders/{orderId}", obs.route)
	assert.Equal(t, "418", obs.status)
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	h := Recover(zerolog.New(&buf), recordKind)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "boom")
}
