package domain

import (
	"context"
	"time"
)

type WithdrawFilter struct {
	Page        int
	Limit       int
	Status      WithdrawStatus
	RequesterID string
}

// WithdrawRequest is a payout of accumulated balance to a bank account.
type WithdrawRequest struct {
	ID            string         `json:"id"`
	RequesterID   string         `json:"requesterId"`
	RequesterRole string         `json:"requesterRole"`
	Amount        Money          `json:"amount"`
	BankName      string         `json:"bankName"`
	BankBin       string         `json:"bankBin"`
	BankAccount   string         `json:"bankAccount"`
	AccountHolder string         `json:"accountHolder"`
	Status        WithdrawStatus `json:"status"`
	CancelReason  *string        `json:"cancelReason"`
	ProofURL      *string        `json:"proofUrl"`
	Version       int64          `json:"version"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type WithdrawRepository interface {
	Create(ctx context.Context, w *WithdrawRequest) error
	GetByID(ctx context.Context, id string) (*WithdrawRequest, error)
	GetAll(ctx context.Context, filter WithdrawFilter) ([]WithdrawRequest, int64, error)
	// UpdateStatus is a compare-and-set on version; it returns the new version.
	UpdateStatus(ctx context.Context, id string, expectedVersion int64, status WithdrawStatus, cancelReason, proofURL *string) (int64, error)
}
