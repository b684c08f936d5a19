package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/db"
)

const (
	// numberedSlugs is how many "-2", "-3" suffixes are tried before random ones.
	numberedSlugs = 20
	randomSlugs   = 5
)

type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id string) (Category, error)
	CreateCategory(ctx context.Context, in CategoryInput) (Category, error)
	UpdateCategory(ctx context.Context, id string, in CategoryInput) (Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListProducts(ctx context.Context, f ProductFilter) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (Product, error)
	AddImage(ctx context.Context, productID, uri string) (Image, error)
}

type PostgresRepository struct {
	pool db.Querier
}

func NewPostgresRepository(pool db.Querier) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const categoryColumns = `id, name, slug, description, created_at, updated_at`

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *PostgresRepository) GetCategory(ctx context.Context, id string) (Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, apperr.NotFound("category %s not found", id)
		}
		return Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, in CategoryInput) (Category, error) {
	var c Category
	err := withUniqueSlug(in.Name, "categories_slug_key", func(candidate string) error {
		var err error
		c, err = scanCategory(r.pool.QueryRow(ctx, `
			INSERT INTO categories (id, name, slug, description)
			VALUES ($1, $2, $3, $4)
			RETURNING `+categoryColumns,
			uuid.NewString(), in.Name, candidate, in.Description))
		return err
	})
	if err != nil {
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// UpdateCategory changes name and description. The slug is kept stable.
func (r *PostgresRepository) UpdateCategory(ctx context.Context, id string, in CategoryInput) (Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx, `
		UPDATE categories
		SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+categoryColumns,
		id, in.Name, in.Description))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, apperr.NotFound("category %s not found", id)
		}
		return Category{}, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return apperr.Wrap(apperr.Conflict("category %s still has products", id), err)
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("category %s not found", id)
	}
	return nil
}

const productSelect = `
	SELECT p.id, p.name, p.slug, p.description, p.price, p.stock, p.main_image,
	       p.created_at, p.updated_at, c.id, c.name, c.slug
	FROM products p
	JOIN categories c ON c.id = p.category_id`

func (r *PostgresRepository) ListProducts(ctx context.Context, f ProductFilter) ([]Product, error) {
	where, args := f.conditions()
	args = append(args, f.limit(), max(f.Offset, 0))
	query := productSelect + where +
		fmt.Sprintf(" ORDER BY p.created_at DESC, p.id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	rows.Close()

	if err := r.attachImages(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *PostgresRepository) GetProduct(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, apperr.NotFound("product %s not found", id)
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}

	products := []Product{p}
	if err := r.attachImages(ctx, products); err != nil {
		return Product{}, err
	}
	return products[0], nil
}

func (r *PostgresRepository) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	id := uuid.NewString()
	err := withUniqueSlug(in.Name, "products_slug_key", func(candidate string) error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO products (id, category_id, name, slug, description, price, stock, main_image)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, id, in.CategoryID, in.Name, candidate, in.Description, in.Price, in.Stock, in.MainImage)
		return err
	})
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Product{}, apperr.Wrap(apperr.NotFound("category %s not found", in.CategoryID), err)
		}
		if verr := db.InvalidInput(err, productColumn(err)); verr != nil {
			return Product{}, verr
		}
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return r.GetProduct(ctx, id)
}

func (r *PostgresRepository) AddImage(ctx context.Context, productID, uri string) (Image, error) {
	img := Image{ID: uuid.NewString(), ProductID: productID, URI: uri}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO product_images (id, product_id, image)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, img.ID, productID, uri).Scan(&img.CreatedAt)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Image{}, apperr.Wrap(apperr.NotFound("product %s not found", productID), err)
		}
		return Image{}, fmt.Errorf("insert product image: %w", err)
	}
	return img, nil
}

func (r *PostgresRepository) attachImages(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = i
		products[i].Images = []Image{}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, image, created_at
		FROM product_images
		WHERE product_id = ANY($1)
		ORDER BY created_at, id
	`, ids)
	if err != nil {
		return fmt.Errorf("list product images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URI, &img.CreatedAt); err != nil {
			return fmt.Errorf("scan product image: %w", err)
		}
		if i, ok := index[img.ProductID]; ok {
			products[i].Images = append(products[i].Images, img)
		}
	}
	return rows.Err()
}

// conditions renders the WHERE clause and its positional args.
func (f ProductFilter) conditions() (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.CategoryID != "" {
		add("p.category_id = $%d", f.CategoryID)
	}
	if f.CategorySlug != "" {
		add("c.slug = $%d", f.CategorySlug)
	}
	if f.Search != "" {
		add("p.name ILIKE '%%' || $%d || '%%'", escapeLike(f.Search))
	}
	if f.MinPrice != nil {
		add("p.price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("p.price <= $%d", *f.MaxPrice)
	}
	if f.InStock {
		clauses = append(clauses, "p.stock > 0")
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// productColumn names the input field behind a products CHECK or range failure.
// Range failures carry no constraint name and come from price, the only numeric.
func productColumn(err error) string {
	if strings.Contains(db.ConstraintName(err), "stock") {
		return "stock"
	}
	return "price"
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// withUniqueSlug calls insert with slug candidates derived from name until one
// does not collide with constraint. Popular names get a short random suffix once
// the numbered ones are taken.
func withUniqueSlug(name, constraint string, insert func(candidate string) error) error {
	base := slug.Make(name)
	if base == "" {
		base = "item"
	}
	for attempt := 1; attempt <= numberedSlugs+randomSlugs; attempt++ {
		err := insert(slugCandidate(base, attempt))
		if err == nil {
			return nil
		}
		if db.IsUniqueViolation(err) && db.ConstraintName(err) == constraint {
			continue
		}
		return err
	}
	return apperr.Conflict("no free slug for %q", name)
}

func slugCandidate(base string, attempt int) string {
	switch {
	case attempt == 1:
		return base
	case attempt <= numberedSlugs:
		return fmt.Sprintf("%s-%d", base, attempt)
	default:
		return base + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Stock, &p.MainImage,
		&p.CreatedAt, &p.UpdatedAt, &p.Category.ID, &p.Category.Name, &p.Category.Slug,
	)
	return p, err
}
