package workflow

import (
	"strings"

	"marketplace-backend/internal/domain"
	"marketplace-backend/pkg/apperr"
)

const (
	MsgReasonRequired = "Vui lòng nhập lý do"
	MsgProofRequired  = "Vui lòng tải lên ảnh chứng từ chuyển khoản"
	MsgTargetRequired = "Vui lòng chọn trạng thái tiếp theo"
)

// Validate checks an action before any I/O. Failures carry per-field messages.
func Validate(a domain.Action) error {
	if !knownEntity(a.Entity) {
		return apperr.FieldErr("entity", "Loại đối tượng không hợp lệ")
	}
	if !Supports(a.Entity, a.Kind) {
		return apperr.FieldErr("kind", "Thao tác không hợp lệ")
	}
	if strings.TrimSpace(a.EntityID) == "" {
		return apperr.FieldErr("entityId", "Thiếu mã đối tượng")
	}

	switch a.Kind {
	case domain.ActionReject:
		if strings.TrimSpace(a.Reason) == "" {
			return apperr.FieldErr("reason", MsgReasonRequired)
		}
	case domain.ActionApprove:
		if a.Entity == domain.EntityWithdrawal && strings.TrimSpace(a.ProofURL) == "" {
			return apperr.FieldErr("proof", MsgProofRequired)
		}
	case domain.ActionAdvance:
		if _, ok := domain.ParseComboStatus(a.Target); !ok {
			return apperr.FieldErr("target", MsgTargetRequired)
		}
	}
	return nil
}

func knownEntity(e domain.EntityKind) bool {
	for _, k := range domain.EntityKinds {
		if k == e {
			return true
		}
	}
	return false
}
