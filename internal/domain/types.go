package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as plain numbers, the way the dashboards format them.
	decimal.MarshalJSONWithoutQuotes = true
}

// --- Shared Types ---

// Money is a VND amount. Fractions are kept for line-level arithmetic only.
type Money = decimal.Decimal

// Pagination mirrors the {page, maxPage, total} fields the dashboards read next to list data.
type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	MaxPage int   `json:"maxPage"`
}

// NewPagination computes maxPage from total and limit. An empty result still has one page.
func NewPagination(page, limit int, total int64) Pagination {
	if limit < 1 {
		limit = 1
	}
	maxPage := int((total + int64(limit) - 1) / int64(limit))
	if maxPage < 1 {
		maxPage = 1
	}
	return Pagination{Page: page, Limit: limit, Total: total, MaxPage: maxPage}
}

// Offset returns the row offset for a 1-based page.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Response standardizes API responses.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Content interface{}       `json:"content,omitempty"`
	Meta    interface{}       `json:"meta,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// --- Interfaces ---

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
