package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/blob"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/profile"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/social"
)

type Accounts interface {
	auth.Provider
	Register(ctx context.Context, reg auth.Registration) (*auth.User, string, error)
	Login(ctx context.Context, username, password string) (*auth.User, string, error)
	Logout(ctx context.Context, userID string) error
}

type ProductImages interface {
	AttachImage(ctx context.Context, productID, filename string, data []byte) (catalog.Image, error)
	CreateWithMainImage(ctx context.Context, in catalog.ProductInput, filename string, data []byte) (catalog.Product, error)
}

type Checkouter interface {
	Checkout(ctx context.Context, userID, correlationID string) (*order.Order, error)
}

type Metrics interface {
	middleware.RequestObserver
	Handler() http.Handler
}

type Deps struct {
	Logger      zerolog.Logger
	ServiceName string
	Metrics     Metrics

	Accounts Accounts
	Catalog  catalog.Repository
	Images   ProductImages
	Social   social.Repository
	Carts    cart.Repository
	Orders   order.Repository
	Checkout Checkouter
	Profiles profile.Repository
	Blobs    blob.Store

	BlobBaseURL    string
	RequestTimeout time.Duration
	MaxUploadBytes int64
	CORSOrigins    []string
}

type Handler struct {
	logger      zerolog.Logger
	serviceName string

	accounts Accounts
	catalog  catalog.Repository
	images   ProductImages
	social   social.Repository
	carts    cart.Repository
	orders   order.Repository
	checkout Checkouter
	profiles profile.Repository
	blobs    blob.Store

	blobBaseURL    string
	maxUploadBytes int64
}

func NewHandler(d Deps) *Handler {
	base := d.BlobBaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &Handler{
		logger:         d.Logger,
		serviceName:    d.ServiceName,
		accounts:       d.Accounts,
		catalog:        d.Catalog,
		images:         d.Images,
		social:         d.Social,
		carts:          d.Carts,
		orders:         d.Orders,
		checkout:       d.Checkout,
		profiles:       d.Profiles,
		blobs:          d.Blobs,
		blobBaseURL:    base,
		maxUploadBytes: d.MaxUploadBytes,
	}
}

// currentUser is only called behind RequireUser.
func currentUser(r *http.Request) *auth.User {
	u, _ := middleware.UserFrom(r.Context())
	return u
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": h.serviceName})
}
