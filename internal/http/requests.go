package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/apperr"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type productRequest struct {
	CategoryID  string          `json:"category" validate:"required,uuid"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price" validate:"gt=0,lt=100000000"`
	Stock       int             `json:"stock" validate:"gte=0,max=1000000000"`
	MainImage   string          `json:"main_image" validate:"max=500"`
}

type commentRequest struct {
	Text string `json:"text" validate:"required,max=5000"`
}

type ratingRequest struct {
	Stars int `json:"stars" validate:"required,min=1,max=5"`
}

type profileRequest struct {
	Bio string `json:"bio" validate:"max=5000"`
}

type wishlistRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

type cartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  *int   `json:"quantity" validate:"omitempty,min=1,max=10000"`
}

// quantity defaults to a single unit when the field is omitted.
func (r cartItemRequest) quantity() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

type paidRequest struct {
	IsPaid *bool `json:"is_paid" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Money is compared as a number so gt/lt work on decimal fields.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	// Prices are stored as NUMERIC(10,2); finer fractions would be rounded by the database.
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		req := sl.Current().Interface().(productRequest)
		if !req.Price.Equal(req.Price.Truncate(2)) {
			sl.ReportError(req.Price, "price", "Price", "cents", "")
		}
	}, productRequest{})
	return v
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("body", "request body is required")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperr.Invalid(typeErr.Field, "has the wrong type")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.Invalid("body", "request body is too large")
		}
		return apperr.Invalid("body", "malformed JSON")
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate request: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return &apperr.ValidationError{Fields: fields}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "uuid":
		return "must be a valid UUID"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lt":
		return "must be less than " + fe.Param()
	case "cents":
		return "must have at most 2 decimal places"
	default:
		return "is invalid"
	}
}

// pathID reads a UUID path parameter. Anything that is not a UUID cannot name
// a row, so it is reported as not found.
func pathID(r *http.Request, name, what string) (string, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperr.NotFound("%s %s not found", what, raw)
	}
	return id.String(), nil
}
