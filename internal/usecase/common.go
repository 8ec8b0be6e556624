package usecase

import (
	"errors"

	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/workflow"
	"marketplace-backend/pkg/apperr"
	"marketplace-backend/pkg/utils"
)

const (
	msgOrderNotFound    = "Không tìm thấy đơn hàng"
	msgSellerNotFound   = "Không tìm thấy người bán"
	msgWithdrawNotFound = "Không tìm thấy yêu cầu rút tiền"
	msgReportNotFound   = "Không tìm thấy báo cáo"
	msgProductNotFound  = "Không tìm thấy sản phẩm"
	msgPageNotFound     = "Không tìm thấy trang"
	msgForbidden        = "Bạn không có quyền thực hiện thao tác này"
)

// repoErr maps repository sentinels; anything else becomes an internal error.
func repoErr(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return apperr.NotFoundErr(notFoundMsg)
	case errors.Is(err, domain.ErrVersionConflict):
		return apperr.ConflictErr(workflow.MsgStale)
	}
	return apperr.Wrap(err)
}

func newID() string { return utils.GenerateUUID() }

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// history builds an audit row. from may be empty for creations.
func history(entity domain.EntityKind, id, from, to string, a domain.Action) *domain.StatusHistory {
	return &domain.StatusHistory{
		ID:         utils.GenerateUUID(),
		Entity:     string(entity),
		EntityID:   id,
		FromStatus: strPtr(from),
		ToStatus:   to,
		Action:     string(a.Kind),
		Reason:     strPtr(a.Reason),
		ActorID:    strPtr(a.ActorID),
	}
}

func clampPage(page, limit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
