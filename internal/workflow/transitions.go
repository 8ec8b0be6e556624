package workflow

import "marketplace-backend/internal/domain"

// supported lists which action kinds make sense for each entity at all.
var supported = map[domain.EntityKind][]domain.ActionKind{
	domain.EntityOrder:      {domain.ActionCancel},
	domain.EntityCombo:      {domain.ActionAdvance, domain.ActionApprove, domain.ActionReject, domain.ActionCancel},
	domain.EntitySeller:     {domain.ActionApprove, domain.ActionReject, domain.ActionBan},
	domain.EntityWithdrawal: {domain.ActionAccept, domain.ActionApprove, domain.ActionReject},
	domain.EntityReport:     {domain.ActionApprove, domain.ActionAccept, domain.ActionReject},
}

// comboEdges are the forward fulfilment steps an advance may take.
var comboEdges = map[domain.ComboStatus][]domain.ComboStatus{
	domain.ComboPending: {
		domain.ComboPaymentConfirmation,
		domain.ComboUnpaid,
		domain.ComboPaymentFailed,
		domain.ComboPaymentCancelled,
		domain.ComboPreparing,
	},
	domain.ComboPaymentConfirmation: {domain.ComboPreparing, domain.ComboPaymentFailed},
	domain.ComboUnpaid:              {domain.ComboPreparing, domain.ComboPaymentCancelled},
	domain.ComboPreparing:           {domain.ComboDelivering},
	domain.ComboDelivering:          {domain.ComboDelivered},
	domain.ComboDelivered:           {domain.ComboCompleted, domain.ComboReturnRequested},
	domain.ComboReturnApproved:      {domain.ComboReturning},
	domain.ComboReturning:           {domain.ComboReturned},
	domain.ComboReturned:            {domain.ComboRefunded},
}

// Supports reports whether kind is meaningful for entity.
func Supports(entity domain.EntityKind, kind domain.ActionKind) bool {
	for _, k := range supported[entity] {
		if k == kind {
			return true
		}
	}
	return false
}

// Allowed returns the actions available for an entity in the given state.
// For sellers the state is the badge; for orders it is any one combo status and
// the order handler checks every combo.
func Allowed(entity domain.EntityKind, status string) []domain.ActionKind {
	switch entity {
	case domain.EntitySeller:
		switch status {
		case domain.BadgeBanned:
			return nil
		case domain.BadgeVerified:
			return []domain.ActionKind{domain.ActionBan}
		default:
			return []domain.ActionKind{domain.ActionApprove, domain.ActionReject, domain.ActionBan}
		}
	case domain.EntityWithdrawal:
		switch domain.WithdrawStatus(status) {
		case domain.WithdrawPending:
			return []domain.ActionKind{domain.ActionAccept, domain.ActionApprove, domain.ActionReject}
		case domain.WithdrawApproved:
			return []domain.ActionKind{domain.ActionApprove, domain.ActionReject}
		}
		return nil
	case domain.EntityReport:
		if domain.ReportStatus(status) == domain.ReportPending {
			return []domain.ActionKind{domain.ActionApprove, domain.ActionReject}
		}
		return nil
	case domain.EntityOrder:
		if domain.CancellableComboStatuses[domain.ComboStatus(status)] {
			return []domain.ActionKind{domain.ActionCancel}
		}
		return nil
	case domain.EntityCombo:
		st := domain.ComboStatus(status)
		var out []domain.ActionKind
		if len(comboEdges[st]) > 0 {
			out = append(out, domain.ActionAdvance)
		}
		if st == domain.ComboReturnRequested {
			out = append(out, domain.ActionApprove, domain.ActionReject)
		}
		if domain.CancellableComboStatuses[st] {
			out = append(out, domain.ActionCancel)
		}
		return out
	}
	return nil
}

// IsAllowed is Allowed as a predicate. Report accept is the same as approve.
func IsAllowed(entity domain.EntityKind, status string, kind domain.ActionKind) bool {
	if entity == domain.EntityReport && kind == domain.ActionAccept {
		kind = domain.ActionApprove
	}
	for _, k := range Allowed(entity, status) {
		if k == kind {
			return true
		}
	}
	return false
}

// NextComboStatuses returns the statuses a combo may advance to.
func NextComboStatuses(from domain.ComboStatus) []domain.ComboStatus {
	return comboEdges[from]
}

// CanAdvance reports whether from -> to is a forward fulfilment edge.
func CanAdvance(from, to domain.ComboStatus) bool {
	for _, s := range comboEdges[from] {
		if s == to {
			return true
		}
	}
	return false
}
