package workflow

import (
	"context"
	"testing"

	"marketplace-backend/internal/domain"
	"marketplace-backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		entity domain.EntityKind
		status string
		want   []domain.ActionKind
	}{
		{domain.EntitySeller, domain.BadgePending, []domain.ActionKind{domain.ActionApprove, domain.ActionReject, domain.ActionBan}},
		{domain.EntitySeller, domain.BadgeRejected, []domain.ActionKind{domain.ActionApprove, domain.ActionReject, domain.ActionBan}},
		{domain.EntitySeller, domain.BadgeVerified, []domain.ActionKind{domain.ActionBan}},
		{domain.EntitySeller, domain.BadgeBanned, nil},
		{domain.EntityWithdrawal, "PENDING", []domain.ActionKind{domain.ActionAccept, domain.ActionApprove, domain.ActionReject}},
		{domain.EntityWithdrawal, "APPROVED", []domain.ActionKind{domain.ActionApprove, domain.ActionReject}},
		{domain.EntityWithdrawal, "COMPLETED", nil},
		{domain.EntityWithdrawal, "REJECTED", nil},
		{domain.EntityReport, "PENDING", []domain.ActionKind{domain.ActionApprove, domain.ActionReject}},
		{domain.EntityReport, "ACCEPTED", nil},
		{domain.EntityOrder, "PREPARING", []domain.ActionKind{domain.ActionCancel}},
		{domain.EntityOrder, "DELIVERING", nil},
		{domain.EntityCombo, "RETURN_REQUESTED", []domain.ActionKind{domain.ActionApprove, domain.ActionReject}},
		{domain.EntityCombo, "PENDING", []domain.ActionKind{domain.ActionAdvance, domain.ActionCancel}},
		{domain.EntityCombo, "REFUNDED", nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.entity)+"/"+tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.entity, tt.status))
		})
	}
}

func TestIsAllowedTreatsReportAcceptAsApprove(t *testing.T) {
	assert.True(t, IsAllowed(domain.EntityReport, "PENDING", domain.ActionAccept))
	assert.False(t, IsAllowed(domain.EntityReport, "REJECTED", domain.ActionAccept))
}

func TestCanAdvance(t *testing.T) {
	assert.True(t, CanAdvance(domain.ComboPreparing, domain.ComboDelivering))
	assert.True(t, CanAdvance(domain.ComboDelivered, domain.ComboReturnRequested))
	assert.False(t, CanAdvance(domain.ComboPreparing, domain.ComboCompleted))
	assert.False(t, CanAdvance(domain.ComboReturnRequested, domain.ComboReturnApproved))
	assert.Empty(t, NextComboStatuses(domain.ComboCancelled))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		a     domain.Action
		field string
	}{
		{"reject without reason", domain.Action{Kind: domain.ActionReject, Entity: domain.EntitySeller, EntityID: "s"}, "reason"},
		{"withdraw approve without proof", domain.Action{Kind: domain.ActionApprove, Entity: domain.EntityWithdrawal, EntityID: "w"}, "proof"},
		{"advance without target", domain.Action{Kind: domain.ActionAdvance, Entity: domain.EntityCombo, EntityID: "c"}, "target"},
		{"advance unknown target", domain.Action{Kind: domain.ActionAdvance, Entity: domain.EntityCombo, EntityID: "c", Target: "FLYING"}, "target"},
		{"unknown entity", domain.Action{Kind: domain.ActionApprove, Entity: "invoice", EntityID: "x"}, "entity"},
		{"ban on report", domain.Action{Kind: domain.ActionBan, Entity: domain.EntityReport, EntityID: "r"}, "kind"},
		{"missing id", domain.Action{Kind: domain.ActionCancel, Entity: domain.EntityOrder}, "entityId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.a)
			assert.True(t, apperr.IsKind(err, apperr.Invalid))
			assert.Contains(t, apperr.FieldsOf(err), tt.field)
		})
	}

	assert.NoError(t, Validate(domain.Action{Kind: domain.ActionApprove, Entity: domain.EntitySeller, EntityID: "s"}))
	assert.NoError(t, Validate(domain.Action{Kind: domain.ActionApprove, Entity: domain.EntityWithdrawal, EntityID: "w", ProofURL: "https://cdn/x.webp"}))
	assert.NoError(t, Validate(domain.Action{Kind: domain.ActionAdvance, Entity: domain.EntityCombo, EntityID: "c", Target: "delivering"}))
}

func TestMemoryLocker(t *testing.T) {
	l := NewMemoryLocker()
	unlock, ok, err := l.TryLock(context.Background(), "k", 0)
	assert.NoError(t, err)
	assert.True(t, ok)

	_, ok, _ = l.TryLock(context.Background(), "k", 0)
	assert.False(t, ok)
	_, ok, _ = l.TryLock(context.Background(), "other", 0)
	assert.True(t, ok)

	unlock()
	unlock()
	_, ok, _ = l.TryLock(context.Background(), "k", 0)
	assert.True(t, ok)
}

func TestSuccessMessage(t *testing.T) {
	assert.Equal(t, "Xác minh tài khoản thành công!", SuccessMessage(domain.EntitySeller, domain.ActionApprove))
	assert.Equal(t, "Thao tác thành công!", SuccessMessage(domain.EntitySeller, domain.ActionAdvance))
}
