package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/social"
)

// productResponse is a product with its social aggregates flattened in.
type productResponse struct {
	catalog.Product
	social.Stats
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "categoryId", "category")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.catalog.GetCategory(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.catalog.CreateCategory(r.Context(), catalog.CategoryInput{Name: req.Name, Description: req.Description})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "categoryId", "category")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.catalog.UpdateCategory(r.Context(), id, catalog.CategoryInput{Name: req.Name, Description: req.Description})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "categoryId", "category")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	f, err := parseProductFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	products, err := h.catalog.ListProducts(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp, err := h.withStats(r, products...)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productId", "product")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp, err := h.withStats(r, p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp[0])
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.catalog.CreateProduct(r.Context(), req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeCreatedProduct(w, p)
}

// AdminCreateProduct takes a multipart form whose main_image part is uploaded to the blob store.
func (h *Handler) AdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	filename, data, err := h.readUpload(r, "main_image")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := productFromForm(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.images.CreateWithMainImage(r.Context(), req.input(), filename, data)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeCreatedProduct(w, p)
}

func (h *Handler) UploadProductImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productId", "product")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	filename, data, err := h.readUpload(r, "image")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	img, err := h.images.AttachImage(r.Context(), id, filename, data)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

func writeCreatedProduct(w http.ResponseWriter, p catalog.Product) {
	// A new product has no social rows yet.
	writeJSON(w, http.StatusCreated, productResponse{Product: p})
}

func (h *Handler) withStats(r *http.Request, products ...catalog.Product) ([]productResponse, error) {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	stats, err := h.social.Stats(r.Context(), ids)
	if err != nil {
		return nil, err
	}
	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = productResponse{Product: p, Stats: stats[p.ID]}
	}
	return out, nil
}

func (req productRequest) input() catalog.ProductInput {
	return catalog.ProductInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		MainImage:   req.MainImage,
	}
}

func productFromForm(r *http.Request) (productRequest, error) {
	req := productRequest{
		CategoryID:  r.FormValue("category"),
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}
	fields := map[string]string{}
	if raw := r.FormValue("price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			fields["price"] = "must be a decimal number"
		}
		req.Price = price
	}
	if raw := r.FormValue("stock"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			fields["stock"] = "must be an integer"
		}
		req.Stock = stock
	}
	if len(fields) > 0 {
		return req, &apperr.ValidationError{Fields: fields}
	}
	return req, validateStruct(&req)
}

func parseProductFilter(r *http.Request) (catalog.ProductFilter, error) {
	q := r.URL.Query()
	f := catalog.ProductFilter{
		CategorySlug: q.Get("category_slug"),
		Search:       strings.TrimSpace(q.Get("search")),
	}
	fields := map[string]string{}

	if raw := q.Get("category"); raw != "" {
		if err := validate.Var(raw, "uuid"); err != nil {
			fields["category"] = "must be a valid UUID"
		}
		f.CategoryID = raw
	}
	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{{"min_price", &f.MinPrice}, {"max_price", &f.MaxPrice}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			fields[p.name] = "must be a decimal number"
			continue
		}
		*p.dst = &d
	}
	if raw := q.Get("in_stock"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			fields["in_stock"] = "must be a boolean"
		}
		f.InStock = b
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &f.Limit}, {"offset", &f.Offset}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fields[p.name] = "must be a non-negative integer"
			continue
		}
		*p.dst = n
	}

	if len(fields) > 0 {
		return f, &apperr.ValidationError{Fields: fields}
	}
	return f, nil
}

// readUpload parses a multipart body and returns the named file part.
func (h *Handler) readUpload(r *http.Request, field string) (string, []byte, error) {
	limit := h.maxUploadBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	if err := r.ParseMultipartForm(limit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, apperr.Invalid(field, "file is too large")
		}
		return "", nil, apperr.Invalid(field, "expected a multipart form upload")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, apperr.Invalid(field, "file is required")
		}
		return "", nil, apperr.Invalid(field, "could not read upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, apperr.Invalid(field, "could not read upload")
	}
	return header.Filename, data, nil
}
