package domain

import (
	"context"
	"time"
)

type Product struct {
	ID        string        `json:"id"`
	SellerID  string        `json:"sellerId"`
	Name      string        `json:"name"`
	Category  string        `json:"category"`
	Price     Money         `json:"price"`
	Stock     int           `json:"stock"`
	Status    ProductStatus `json:"status"`
	ImageURL  string        `json:"imageUrl"`
	RetradeOf *string       `json:"retradeOf,omitempty"` // order item id
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type ProductFilter struct {
	Page     int
	Limit    int
	Search   string
	Category string
	SellerID string
	Status   ProductStatus
}

type ProductRepository interface {
	GetProducts(ctx context.Context, filter ProductFilter) ([]Product, int64, error)
	GetProductByID(ctx context.Context, id string) (*Product, error)
	CreateProduct(ctx context.Context, product *Product) error
	UpdateProduct(ctx context.Context, product *Product) error
	UpdateProductStatus(ctx context.Context, id string, status ProductStatus) error
}
