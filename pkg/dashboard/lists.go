package dashboard

import (
	"context"
	"strings"

	"marketplace-backend/internal/domain"
	"marketplace-backend/pkg/client"
)

// NewOrderList pages the admin order list. The category of a row is its
// first combo's status.
func NewOrderList(c *client.Client, base client.OrderQuery) *PagedList[client.OrderRow] {
	fetch := func(ctx context.Context, q Query) (Page[client.OrderRow], error) {
		query := base
		query.Search = q.Search
		p, err := c.GetOrders(ctx, q.Page, query)
		if err != nil {
			return Page[client.OrderRow]{}, err
		}
		return Page[client.OrderRow]{Rows: p.Orders, MaxPage: p.MaxPage, Total: p.TotalOrders}, nil
	}
	return NewPagedList(fetch, ListOptions[client.OrderRow]{
		Sorters: map[string]func(a, b client.OrderRow) int{
			"grandTotal": func(a, b client.OrderRow) int { return a.GrandTotal.Cmp(b.GrandTotal) },
			"orderedAt":  func(a, b client.OrderRow) int { return a.OrderedAt.Compare(b.OrderedAt) },
		},
		Category: FirstComboStatus,
	})
}

// FirstComboStatus is the status the order list shows and filters on.
func FirstComboStatus(o client.OrderRow) string {
	if len(o.Combos) == 0 {
		return ""
	}
	return string(o.Combos[0].Status)
}

// NewSellerList pages sellers, optionally limited to one badge server-side.
func NewSellerList(c *client.Client, badge string) *PagedList[domain.SellerProfile] {
	fetch := func(ctx context.Context, q Query) (Page[domain.SellerProfile], error) {
		rows, p, err := c.ListSellers(ctx, q.Page, client.SellerQuery{Badge: badge, Search: q.Search})
		if err != nil {
			return Page[domain.SellerProfile]{}, err
		}
		return Page[domain.SellerProfile]{Rows: rows, MaxPage: p.MaxPage, Total: p.Total}, nil
	}
	return NewPagedList(fetch, ListOptions[domain.SellerProfile]{
		Sorters: map[string]func(a, b domain.SellerProfile) int{
			"shopName":  func(a, b domain.SellerProfile) int { return strings.Compare(a.ShopName, b.ShopName) },
			"createdAt": func(a, b domain.SellerProfile) int { return a.CreatedAt.Compare(b.CreatedAt) },
		},
		Category: func(s domain.SellerProfile) string { return SellerBadge(&s) },
	})
}

func NewWithdrawList(c *client.Client, status domain.WithdrawStatus) *PagedList[domain.WithdrawRequest] {
	fetch := func(ctx context.Context, q Query) (Page[domain.WithdrawRequest], error) {
		rows, p, err := c.ListWithdraws(ctx, q.Page, client.WithdrawQuery{Status: status})
		if err != nil {
			return Page[domain.WithdrawRequest]{}, err
		}
		return Page[domain.WithdrawRequest]{Rows: rows, MaxPage: p.MaxPage, Total: p.Total}, nil
	}
	return NewPagedList(fetch, ListOptions[domain.WithdrawRequest]{
		Sorters: map[string]func(a, b domain.WithdrawRequest) int{
			"amount":    func(a, b domain.WithdrawRequest) int { return a.Amount.Cmp(b.Amount) },
			"createdAt": func(a, b domain.WithdrawRequest) int { return a.CreatedAt.Compare(b.CreatedAt) },
		},
		Category: func(w domain.WithdrawRequest) string { return string(w.Status) },
	})
}

func NewReportList(c *client.Client, status domain.ReportStatus) *PagedList[domain.Report] {
	fetch := func(ctx context.Context, q Query) (Page[domain.Report], error) {
		rows, p, err := c.ListReports(ctx, q.Page, client.ReportQuery{Status: status})
		if err != nil {
			return Page[domain.Report]{}, err
		}
		return Page[domain.Report]{Rows: rows, MaxPage: p.MaxPage, Total: p.Total}, nil
	}
	return NewPagedList(fetch, ListOptions[domain.Report]{
		Sorters: map[string]func(a, b domain.Report) int{
			"createdAt": func(a, b domain.Report) int { return a.CreatedAt.Compare(b.CreatedAt) },
		},
		Category: func(r domain.Report) string { return string(r.Status) },
	})
}
