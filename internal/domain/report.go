package domain

import (
	"context"
	"time"
)

type ReportFilter struct {
	Page     int
	Limit    int
	Status   ReportStatus
	SellerID string
}

// Report is a complaint about seller misconduct, adjudicated by an admin.
type Report struct {
	ID           string       `json:"id"`
	SellerID     string       `json:"sellerId"`
	ReporterID   string       `json:"reporterId"`
	Reason       string       `json:"reason"`
	Status       ReportStatus `json:"status"`
	RejectReason *string      `json:"rejectReason"`
	Version      int64        `json:"version"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Evidence is material attached to a report by either side.
type Evidence struct {
	ID          string    `json:"id"`
	ReportID    string    `json:"reportId"`
	SubmittedBy string    `json:"submittedBy"`
	Note        string    `json:"note"`
	Files       []string  `json:"files"`
	URLs        []string  `json:"urls"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IsEmpty reports whether nothing at all was submitted.
func (e *Evidence) IsEmpty() bool {
	return len(e.Files) == 0 && len(e.URLs) == 0 && e.Note == ""
}

type ReportRepository interface {
	Create(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, id string) (*Report, error)
	GetAll(ctx context.Context, filter ReportFilter) ([]Report, int64, error)
	UpdateStatus(ctx context.Context, id string, expectedVersion int64, status ReportStatus, rejectReason *string) (int64, error)
	AddEvidence(ctx context.Context, e *Evidence) error
	GetEvidence(ctx context.Context, reportID string) ([]Evidence, error)
}
