package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/middleware"
)

func NewRouter(d Deps) http.Handler {
	h := NewHandler(d)
	requireUser := middleware.RequireUser(h.writeError)
	requireStaff := middleware.RequireStaff(h.writeError)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID)
	if len(d.CORSOrigins) > 0 {
		r.Use(middleware.CORS(d.CORSOrigins))
	}
	var obs middleware.RequestObserver
	if d.Metrics != nil {
		obs = d.Metrics
	}
	r.Use(middleware.RequestLogger(d.Logger, obs))
	r.Use(middleware.Recover(d.Logger, h.writeError))

	r.Get("/health", h.Health)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
	r.Get("/media/*", h.GetMedia)

	r.Route("/api", func(r chi.Router) {
		if d.RequestTimeout > 0 {
			r.Use(chimw.Timeout(d.RequestTimeout))
		}
		if d.MaxUploadBytes > 0 {
			r.Use(chimw.RequestSize(d.MaxUploadBytes))
		}
		r.Use(middleware.Authenticate(d.Accounts, h.writeError))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.With(requireUser).Post("/logout", h.Logout)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Get("/{categoryId}", h.GetCategory)
			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Post("/", h.CreateCategory)
				r.Put("/{categoryId}", h.UpdateCategory)
				r.Delete("/{categoryId}", h.DeleteCategory)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/{productId}", h.GetProduct)
			r.Get("/{productId}/comments", h.ListComments)
			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Post("/", h.CreateProduct)
				r.Post("/{productId}/images", h.UploadProductImage)
				r.Post("/{productId}/comments", h.CreateComment)
				r.Post("/{productId}/likes", h.CreateLike)
				r.Post("/{productId}/ratings", h.CreateRating)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)

			r.Get("/wishlist", h.ListWishlist)
			r.Post("/wishlist", h.AddToWishlist)
			r.Delete("/wishlist/{productId}", h.RemoveFromWishlist)

			r.Get("/cart", h.GetCart)
			r.Post("/cart/items", h.AddCartItem)
			r.Delete("/cart/items/{productId}", h.RemoveCartItem)

			r.Get("/orders", h.ListOrders)
			r.Post("/orders/checkout", h.Checkout)
			r.Get("/orders/{orderId}", h.GetOrder)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireStaff)
			r.Post("/products", h.AdminCreateProduct)
			r.Patch("/orders/{orderId}/paid", h.SetOrderPaid)
		})
	})

	return r
}
