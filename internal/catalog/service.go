package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/blob"
)

const (
	mainImageFolder    = "products/main"
	galleryImageFolder = "product_images"
)

// Service adds the blob-backed image workflows on top of the Repository.
type Service struct {
	repo  Repository
	blobs blob.Store
}

func NewService(repo Repository, blobs blob.Store) *Service {
	return &Service{repo: repo, blobs: blobs}
}

// AttachImage stores an uploaded image and links it to an existing product.
func (s *Service) AttachImage(ctx context.Context, productID, filename string, data []byte) (Image, error) {
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return Image{}, err
	}
	if err := requireImage("image", data); err != nil {
		return Image{}, err
	}

	uri, err := s.blobs.Store(ctx, galleryImageFolder, filename, data)
	if err != nil {
		return Image{}, fmt.Errorf("store product image: %w", err)
	}
	return s.repo.AddImage(ctx, productID, uri)
}

// CreateWithMainImage stores the main image first, then creates the product pointing at it.
func (s *Service) CreateWithMainImage(ctx context.Context, in ProductInput, filename string, data []byte) (Product, error) {
	if err := requireImage("main_image", data); err != nil {
		return Product{}, err
	}
	uri, err := s.blobs.Store(ctx, mainImageFolder, filename, data)
	if err != nil {
		return Product{}, fmt.Errorf("store main image: %w", err)
	}
	in.MainImage = uri
	return s.repo.CreateProduct(ctx, in)
}

func requireImage(field string, data []byte) error {
	if len(data) == 0 {
		return apperr.Invalid(field, "file is required")
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return apperr.Invalid(field, "file is not an image")
	}
	return nil
}
