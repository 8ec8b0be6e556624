package domain

import (
	"context"
	"time"
)

// ContentPage is an editable policy/information page (terms, return policy, seller rules...).
type ContentPage struct {
	Key       string    `json:"key"`
	Title     string    `json:"title"`
	Body      string    `json:"body"` // markdown, rendered by the storefront
	IsActive  bool      `json:"isActive"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ContentRepository interface {
	GetPage(ctx context.Context, key string) (*ContentPage, error)
	UpsertPage(ctx context.Context, page *ContentPage) error
}
