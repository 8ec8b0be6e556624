package domain

import "strings"

// ComboStatus is the fulfilment/payment status of one seller's part of an order.
type ComboStatus string

const (
	ComboPending             ComboStatus = "PENDING"
	ComboPaymentConfirmation ComboStatus = "PAYMENT_CONFIRMATION"
	ComboPaymentFailed       ComboStatus = "PAYMENT_FAILED"
	ComboPaymentCancelled    ComboStatus = "PAYMENT_CANCELLED"
	ComboUnpaid              ComboStatus = "UNPAID"
	ComboPreparing           ComboStatus = "PREPARING"
	ComboDelivering          ComboStatus = "DELIVERING"
	ComboDelivered           ComboStatus = "DELIVERED"
	ComboCompleted           ComboStatus = "COMPLETED"
	ComboCancelled           ComboStatus = "CANCELLED"
	ComboReturnRequested     ComboStatus = "RETURN_REQUESTED"
	ComboReturnApproved      ComboStatus = "RETURN_APPROVED"
	ComboReturnRejected      ComboStatus = "RETURN_REJECTED"
	ComboReturning           ComboStatus = "RETURNING"
	ComboReturned            ComboStatus = "RETURNED"
	ComboRefunded            ComboStatus = "REFUNDED"
)

// IdentityStatus tracks KYC document review.
type IdentityStatus string

const (
	IdentityInit     IdentityStatus = "INIT"
	IdentityWaiting  IdentityStatus = "WAITING"
	IdentityVerified IdentityStatus = "VERIFIED"
	IdentityFailed   IdentityStatus = "FAILED"
)

type WithdrawStatus string

const (
	WithdrawPending   WithdrawStatus = "PENDING"
	WithdrawApproved  WithdrawStatus = "APPROVED"
	WithdrawRejected  WithdrawStatus = "REJECTED"
	WithdrawCompleted WithdrawStatus = "COMPLETED"
)

// IsTerminal reports whether no further action can be taken on the request.
func (s WithdrawStatus) IsTerminal() bool {
	return s == WithdrawRejected || s == WithdrawCompleted
}

type ReportStatus string

const (
	ReportPending  ReportStatus = "PENDING"
	ReportAccepted ReportStatus = "ACCEPTED"
	ReportRejected ReportStatus = "REJECTED"
)

type ProductStatus string

const (
	ProductActive ProductStatus = "ACTIVE"
	ProductHidden ProductStatus = "HIDDEN"
	ProductBanned ProductStatus = "BANNED"
)

// Roles
const (
	RoleAdmin    = "admin"
	RoleSeller   = "seller"
	RoleCustomer = "customer"
)

// List Exports for API
var ComboStatuses = []ComboStatus{
	ComboPending,
	ComboPaymentConfirmation,
	ComboPaymentFailed,
	ComboPaymentCancelled,
	ComboUnpaid,
	ComboPreparing,
	ComboDelivering,
	ComboDelivered,
	ComboCompleted,
	ComboCancelled,
	ComboReturnRequested,
	ComboReturnApproved,
	ComboReturnRejected,
	ComboReturning,
	ComboReturned,
	ComboRefunded,
}

var IdentityStatuses = []IdentityStatus{IdentityInit, IdentityWaiting, IdentityVerified, IdentityFailed}

var WithdrawStatuses = []WithdrawStatus{WithdrawPending, WithdrawApproved, WithdrawRejected, WithdrawCompleted}

var ReportStatuses = []ReportStatus{ReportPending, ReportAccepted, ReportRejected}

var ProductStatuses = []ProductStatus{ProductActive, ProductHidden, ProductBanned}

// ParseComboStatus accepts any casing and returns false for unknown values.
func ParseComboStatus(s string) (ComboStatus, bool) {
	want := ComboStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range ComboStatuses {
		if st == want {
			return st, true
		}
	}
	return "", false
}

// comboProgress is the lifecycle rank used by the most_advanced policy.
// Dead ends rank below every live status, so they only show when no combo moved on.
var comboProgress = map[ComboStatus]int{
	ComboPaymentFailed:       1,
	ComboPaymentCancelled:    2,
	ComboCancelled:           3,
	ComboPending:             10,
	ComboUnpaid:              15,
	ComboPaymentConfirmation: 20,
	ComboPreparing:           30,
	ComboDelivering:          40,
	ComboDelivered:           50,
	ComboCompleted:           60,
	ComboReturnRequested:     70,
	ComboReturnRejected:      72,
	ComboReturnApproved:      74,
	ComboReturning:           76,
	ComboReturned:            78,
	ComboRefunded:            80,
}

// comboProblem is the rank used by the most_problematic policy. Zero means healthy.
var comboProblem = map[ComboStatus]int{
	ComboPaymentFailed:       100,
	ComboPaymentCancelled:    90,
	ComboCancelled:           80,
	ComboReturnRequested:     70,
	ComboReturning:           65,
	ComboReturnApproved:      60,
	ComboReturned:            55,
	ComboRefunded:            50,
	ComboReturnRejected:      45,
	ComboUnpaid:              30,
	ComboPaymentConfirmation: 20,
}
