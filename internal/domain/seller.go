package domain

import (
	"context"
	"time"
)

type SellerFilter struct {
	Page   int
	Limit  int
	Search string
	Badge  string // pending | verified | rejected | banned
}

// SellerProfile is a shop owner and their verification state.
// Identity review and account approval are tracked separately.
type SellerProfile struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	ShopName       string         `json:"shopName"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	Address        string         `json:"address"`
	IdentityStatus IdentityStatus `json:"identityVerifiedStatus"`
	IDCardFrontKey *string        `json:"-"`
	IDCardBackKey  *string        `json:"-"`
	Verified       bool           `json:"verified"`
	Banned         bool           `json:"banned"`
	RejectReason   *string        `json:"rejectReason"`
	Version        int64          `json:"version"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Seller badges
const (
	BadgePending  = "pending"
	BadgeVerified = "verified"
	BadgeRejected = "rejected"
	BadgeBanned   = "banned"
)

// Badge is the single label the dashboards render for a seller.
// A seller that is neither verified nor rejected is pending.
func (s *SellerProfile) Badge() string {
	switch {
	case s.Banned:
		return BadgeBanned
	case s.Verified:
		return BadgeVerified
	case s.RejectReason != nil:
		return BadgeRejected
	default:
		return BadgePending
	}
}

// SellerUpdate is the full set of mutable workflow fields written in one compare-and-set.
type SellerUpdate struct {
	IdentityStatus IdentityStatus
	IDCardFrontKey *string
	IDCardBackKey  *string
	Verified       bool
	Banned         bool
	RejectReason   *string
}

func (s *SellerProfile) ToUpdate() SellerUpdate {
	return SellerUpdate{
		IdentityStatus: s.IdentityStatus,
		IDCardFrontKey: s.IDCardFrontKey,
		IDCardBackKey:  s.IDCardBackKey,
		Verified:       s.Verified,
		Banned:         s.Banned,
		RejectReason:   s.RejectReason,
	}
}

type SellerRepository interface {
	Create(ctx context.Context, s *SellerProfile) error
	GetByID(ctx context.Context, id string) (*SellerProfile, error)
	GetByUserID(ctx context.Context, userID string) (*SellerProfile, error)
	GetAll(ctx context.Context, filter SellerFilter) ([]SellerProfile, int64, error)
	// Update is a compare-and-set on version; it returns the new version.
	Update(ctx context.Context, id string, expectedVersion int64, u SellerUpdate) (int64, error)
}
