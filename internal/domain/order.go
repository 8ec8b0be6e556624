package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StatusPolicy decides which combo status represents the whole order.
type StatusPolicy string

const (
	// PolicyFirst uses the first combo. It is what the dashboards have always shown.
	PolicyFirst           StatusPolicy = "first"
	PolicyMostProblematic StatusPolicy = "most_problematic"
	PolicyMostAdvanced    StatusPolicy = "most_advanced"
)

func ParseStatusPolicy(s string) StatusPolicy {
	switch StatusPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyMostProblematic:
		return PolicyMostProblematic
	case PolicyMostAdvanced:
		return PolicyMostAdvanced
	default:
		return PolicyFirst
	}
}

type OrderFilter struct {
	Page     int
	Limit    int
	Search   string
	Status   string // case-insensitive substring of the aggregate status
	SortBy   string // grandTotal | orderedAt
	SortAsc  bool
	Customer string
	SellerID string
	Policy   StatusPolicy
}

// --- Order Entities ---

type Destination struct {
	ReceiverName string `json:"receiverName"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
}

type Order struct {
	ID          string       `json:"id"`
	CustomerID  string       `json:"customerId"`
	Destination Destination  `json:"destination"`
	GrandTotal  Money        `json:"grandTotal"`
	Combos      []OrderCombo `json:"orderCombos"`
	Version     int64        `json:"version"`
	OrderedAt   time.Time    `json:"orderedAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// OrderCombo is one seller's share of an order.
type OrderCombo struct {
	ID          string      `json:"id"`
	OrderID     string      `json:"orderId"`
	SellerID    string      `json:"sellerId"`
	Status      ComboStatus `json:"status"`
	ShippingFee Money       `json:"shippingFee"`
	Items       []OrderItem `json:"items"`
	Version     int64       `json:"version"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type OrderItem struct {
	ID          string `json:"id"`
	ComboID     string `json:"comboId"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	UnitPrice   Money  `json:"unitPrice"`
	Retraded    int    `json:"retraded"`
}

// Total is computed, never stored.
func (i OrderItem) Total() Money {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (c OrderCombo) Subtotal() Money {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(it.Total())
	}
	return sum
}

// ComputeGrandTotal sums item totals and shipping fees across all combos.
func (o *Order) ComputeGrandTotal() Money {
	sum := decimal.Zero
	for _, c := range o.Combos {
		sum = sum.Add(c.Subtotal()).Add(c.ShippingFee)
	}
	return sum
}

// Status returns the aggregate display status under the given policy.
// An order without combos has no status.
func (o *Order) Status(policy StatusPolicy) ComboStatus {
	if len(o.Combos) == 0 {
		return ""
	}
	switch policy {
	case PolicyMostAdvanced:
		fallthrough
	case PolicyMostProblematic:
		top := o.Combos[0].Status
		for _, c := range o.Combos[1:] {
			if policy.Rank(c.Status) > policy.Rank(top) {
				top = c.Status
			}
		}
		return top
	default:
		return o.Combos[0].Status
	}
}

// FindCombo returns the combo with the given id, or nil.
func (o *Order) FindCombo(id string) *OrderCombo {
	for i := range o.Combos {
		if o.Combos[i].ID == id {
			return &o.Combos[i]
		}
	}
	return nil
}

// CancellableComboStatuses are the states from which a combo can still be cancelled.
var CancellableComboStatuses = map[ComboStatus]bool{
	ComboPending:             true,
	ComboPaymentConfirmation: true,
	ComboUnpaid:              true,
	ComboPreparing:           true,
}

// IsCancellable reports whether every combo can still be cancelled.
func (o *Order) IsCancellable() bool {
	if len(o.Combos) == 0 {
		return false
	}
	for _, c := range o.Combos {
		if !CancellableComboStatuses[c.Status] {
			return false
		}
	}
	return true
}

// StatusHistory is an audit row for any workflow entity.
type StatusHistory struct {
	ID         string    `json:"id"`
	Entity     string    `json:"entity"`
	EntityID   string    `json:"entityId"`
	FromStatus *string   `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	Action     string    `json:"action"`
	Reason     *string   `json:"reason"`
	ActorID    *string   `json:"actorId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// --- Interfaces ---

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByComboID(ctx context.Context, comboID string) (*Order, error)
	GetByCustomerID(ctx context.Context, customerID string) ([]Order, error)
	GetAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)
	CountByStatus(ctx context.Context, policy StatusPolicy) (map[ComboStatus]int64, error)
	GetItem(ctx context.Context, itemID string) (*OrderItem, *OrderCombo, *Order, error)

	// UpdateComboStatus is a compare-and-set on the combo version.
	UpdateComboStatus(ctx context.Context, comboID string, expectedVersion int64, status ComboStatus) (int64, error)
	// BumpVersion is a compare-and-set on the order version.
	BumpVersion(ctx context.Context, orderID string, expectedVersion int64) (int64, error)
	AddRetraded(ctx context.Context, itemID string, quantity int) error
}

type HistoryRepository interface {
	Create(ctx context.Context, h *StatusHistory) error
	List(ctx context.Context, entity, entityID string) ([]StatusHistory, error)
}

// Rank orders combo statuses for the policy; the highest rank represents the order.
// PolicyFirst has no rank and relies on combo position.
func (p StatusPolicy) Rank(s ComboStatus) int {
	switch p {
	case PolicyMostAdvanced:
		return comboProgress[s]
	case PolicyMostProblematic:
		return comboProblem[s]
	}
	return 0
}
