package httpapi

import (
	"context"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/profile"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/social"
)

const (
	aliceID = "5f0c7a0e-1c1a-4c55-9d2e-0c8a3f1b2a01"
	staffID = "5f0c7a0e-1c1a-4c55-9d2e-0c8a3f1b2a02"
)

type fakeAccounts struct {
	register func(ctx context.Context, reg auth.Registration) (*auth.User, string, error)
	login    func(ctx context.Context, username, password string) (*auth.User, string, error)
	logout   func(ctx context.Context, userID string) error
}

// CurrentUser knows two fixed tokens.
func (f *fakeAccounts) CurrentUser(_ context.Context, credential string) (*auth.User, error) {
	switch credential {
	case "alice-token":
		return &auth.User{ID: aliceID, Username: "alice"}, nil
	case "staff-token":
		return &auth.User{ID: staffID, Username: "root", IsStaff: true}, nil
	default:
		return nil, apperr.Unauthorized("invalid token")
	}
}

func (f *fakeAccounts) Register(ctx context.Context, reg auth.Registration) (*auth.User, string, error) {
	if f.register != nil {
		return f.register(ctx, reg)
	}
	return &auth.User{ID: aliceID, Username: reg.Username}, "new-token", nil
}

func (f *fakeAccounts) Login(ctx context.Context, username, password string) (*auth.User, string, error) {
	if f.login != nil {
		return f.login(ctx, username, password)
	}
	return nil, "", apperr.Unauthorized("invalid credentials")
}

func (f *fakeAccounts) Logout(ctx context.Context, userID string) error {
	if f.logout != nil {
		return f.logout(ctx, userID)
	}
	return nil
}

// fakeCatalog embeds the interface so unset methods panic if reached.
type fakeCatalog struct {
	catalog.Repository
	listProducts   func(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, error)
	getProduct     func(ctx context.Context, id string) (catalog.Product, error)
	createProduct  func(ctx context.Context, in catalog.ProductInput) (catalog.Product, error)
	deleteCategory func(ctx context.Context, id string) error
}

func (f *fakeCatalog) ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	return f.listProducts(ctx, filter)
}

func (f *fakeCatalog) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	return f.getProduct(ctx, id)
}

func (f *fakeCatalog) CreateProduct(ctx context.Context, in catalog.ProductInput) (catalog.Product, error) {
	return f.createProduct(ctx, in)
}

func (f *fakeCatalog) DeleteCategory(ctx context.Context, id string) error {
	return f.deleteCategory(ctx, id)
}

type fakeImages struct {
	attach func(ctx context.Context, productID, filename string, data []byte) (catalog.Image, error)
	create func(ctx context.Context, in catalog.ProductInput, filename string, data []byte) (catalog.Product, error)
}

func (f *fakeImages) AttachImage(ctx context.Context, productID, filename string, data []byte) (catalog.Image, error) {
	return f.attach(ctx, productID, filename, data)
}

func (f *fakeImages) CreateWithMainImage(ctx context.Context, in catalog.ProductInput, filename string, data []byte) (catalog.Product, error) {
	return f.create(ctx, in, filename, data)
}

type fakeSocial struct {
	social.Repository
	stats   func(ctx context.Context, productIDs []string) (map[string]social.Stats, error)
	addLike func(ctx context.Context, userID, productID string) (social.Like, error)
}

func (f *fakeSocial) Stats(ctx context.Context, productIDs []string) (map[string]social.Stats, error) {
	return f.stats(ctx, productIDs)
}

func (f *fakeSocial) AddLike(ctx context.Context, userID, productID string) (social.Like, error) {
	return f.addLike(ctx, userID, productID)
}

type fakeCarts struct {
	add    func(ctx context.Context, userID, productID string, quantity int) (cart.Item, error)
	remove func(ctx context.Context, userID, productID string) error
	list   func(ctx context.Context, userID string) (*cart.Cart, error)
}

func (f *fakeCarts) AddOrIncrement(ctx context.Context, userID, productID string, quantity int) (cart.Item, error) {
	return f.add(ctx, userID, productID, quantity)
}

func (f *fakeCarts) Remove(ctx context.Context, userID, productID string) error {
	return f.remove(ctx, userID, productID)
}

func (f *fakeCarts) List(ctx context.Context, userID string) (*cart.Cart, error) {
	return f.list(ctx, userID)
}

type fakeOrders struct {
	getByID    func(ctx context.Context, userID, orderID string) (*order.Order, error)
	listByUser func(ctx context.Context, userID string) ([]order.Order, error)
	setPaid    func(ctx context.Context, orderID string, paid bool) (*order.Order, error)
}

func (f *fakeOrders) GetByID(ctx context.Context, userID, orderID string) (*order.Order, error) {
	return f.getByID(ctx, userID, orderID)
}

func (f *fakeOrders) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	return f.listByUser(ctx, userID)
}

func (f *fakeOrders) SetPaid(ctx context.Context, orderID string, paid bool) (*order.Order, error) {
	return f.setPaid(ctx, orderID, paid)
}

type fakeCheckout struct {
	checkout func(ctx context.Context, userID, correlationID string) (*order.Order, error)
}

func (f *fakeCheckout) Checkout(ctx context.Context, userID, correlationID string) (*order.Order, error) {
	return f.checkout(ctx, userID, correlationID)
}

type fakeProfiles struct {
	profile.Repository
	members map[string]bool
	addErr  error
}

func (f *fakeProfiles) AddToWishlist(_ context.Context, _, productID string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.members[productID] = true
	return nil
}

func (f *fakeProfiles) RemoveFromWishlist(_ context.Context, _, productID string) error {
	delete(f.members, productID)
	return nil
}

func (f *fakeProfiles) Wishlist(context.Context, string) ([]profile.WishlistItem, error) {
	items := []profile.WishlistItem{}
	for id := range f.members {
		items = append(items, profile.WishlistItem{ProductID: id})
	}
	return items, nil
}

type fakeBlobs struct {
	objects map[string][]byte
}

func (f *fakeBlobs) Store(_ context.Context, folder, filename string, data []byte) (string, error) {
	uri := "/media/" + folder + "/" + filename
	f.objects[uri] = data
	return uri, nil
}

func (f *fakeBlobs) Retrieve(_ context.Context, uri string) ([]byte, error) {
	data, ok := f.objects[uri]
	if !ok {
		return nil, apperr.NotFound("blob %s not found", uri)
	}
	return data, nil
}
