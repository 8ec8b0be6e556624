package postgres

import (
	"context"
	"fmt"

	"marketplace-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productRepository struct {
	base
}

func NewProductRepository(pool *pgxpool.Pool) domain.ProductRepository {
	return &productRepository{base{pool: pool}}
}

const productColumns = `id, seller_id, name, category, price::text, stock, status, image_url, retrade_of, created_at, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var price, status string
	if err := row.Scan(&p.ID, &p.SellerID, &p.Name, &p.Category, &price, &p.Stock, &status, &p.ImageURL,
		&p.RetradeOf, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = domain.ProductStatus(status)
	var err error
	if p.Price, err = parseMoney(price); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) GetProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	w := &where{}
	if f.Search != "" {
		w.add(`name ILIKE ?`, likePattern(f.Search))
	}
	if f.Category != "" {
		w.add(`category = ?`, f.Category)
	}
	if f.SellerID != "" {
		w.add(`seller_id = ?`, f.SellerID)
	}
	if f.Status != "" {
		w.add(`status = ?`, string(f.Status))
	}

	var total int64
	if err := r.db(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM products`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	p := domain.NewPagination(f.Page, f.Limit, total)
	limit, offset := w.next(p.Limit), w.next(p.Offset())
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+productColumns+` FROM products`+w.String()+` ORDER BY created_at DESC, id LIMIT `+limit+` OFFSET `+offset,
		w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		prod, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *prod)
	}
	return out, total, rows.Err()
}

func (r *productRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(r.db(ctx).QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	return p, notFound(err)
}

func (r *productRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	if p.Status == "" {
		p.Status = domain.ProductActive
	}
	return r.db(ctx).QueryRow(ctx, `
		INSERT INTO products (id, seller_id, name, category, price, stock, status, image_url, retrade_of)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		p.ID, p.SellerID, p.Name, p.Category, p.Price.String(), p.Stock, string(p.Status), p.ImageURL, p.RetradeOf,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *productRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	err := r.db(ctx).QueryRow(ctx, `
		UPDATE products SET name = $2, category = $3, price = $4::numeric, stock = $5, image_url = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.Name, p.Category, p.Price.String(), p.Stock, p.ImageURL,
	).Scan(&p.UpdatedAt)
	return notFound(err)
}

func (r *productRepository) UpdateProductStatus(ctx context.Context, id string, status domain.ProductStatus) error {
	tag, err := r.db(ctx).Exec(ctx, `UPDATE products SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
