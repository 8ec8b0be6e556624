package dashboard

import (
	"time"

	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/workflow"
	"marketplace-backend/pkg/utils"
)

// SellerBadge is the one label a seller row shows: pending, verified, rejected or banned.
func SellerBadge(s *domain.SellerProfile) string {
	return s.Badge()
}

func SellerActions(s *domain.SellerProfile) []domain.ActionKind {
	return workflow.Allowed(domain.EntitySeller, s.Badge())
}

// WithdrawPanel says what the withdrawal detail dialog renders.
type WithdrawPanel struct {
	ShowQR      bool
	ShowActions bool
	Actions     []domain.ActionKind
}

// WithdrawView hides the transfer QR and the action buttons once a request is closed.
func WithdrawView(w *domain.WithdrawRequest) WithdrawPanel {
	if w.Status.IsTerminal() {
		return WithdrawPanel{}
	}
	actions := workflow.Allowed(domain.EntityWithdrawal, string(w.Status))
	return WithdrawPanel{ShowQR: true, ShowActions: len(actions) > 0, Actions: actions}
}

// OrderActions lists what an admin can do to the whole order.
func OrderActions(o *domain.Order) []domain.ActionKind {
	if o.IsCancellable() {
		return []domain.ActionKind{domain.ActionCancel}
	}
	return nil
}

func ComboActions(c *domain.OrderCombo) []domain.ActionKind {
	return workflow.Allowed(domain.EntityCombo, string(c.Status))
}

func ReportActions(r *domain.Report) []domain.ActionKind {
	return workflow.Allowed(domain.EntityReport, string(r.Status))
}

var comboLabels = map[domain.ComboStatus]string{
	domain.ComboPending:             "Chờ xác nhận",
	domain.ComboPaymentConfirmation: "Chờ xác nhận thanh toán",
	domain.ComboPaymentFailed:       "Thanh toán thất bại",
	domain.ComboPaymentCancelled:    "Đã hủy thanh toán",
	domain.ComboUnpaid:              "Chưa thanh toán",
	domain.ComboPreparing:           "Đang chuẩn bị hàng",
	domain.ComboDelivering:          "Đang giao hàng",
	domain.ComboDelivered:           "Đã giao hàng",
	domain.ComboCompleted:           "Hoàn thành",
	domain.ComboCancelled:           "Đã hủy",
	domain.ComboReturnRequested:     "Yêu cầu trả hàng",
	domain.ComboReturnApproved:      "Đã chấp nhận trả hàng",
	domain.ComboReturnRejected:      "Từ chối trả hàng",
	domain.ComboReturning:           "Đang trả hàng",
	domain.ComboReturned:            "Đã trả hàng",
	domain.ComboRefunded:            "Đã hoàn tiền",
}

// ComboStatusLabel falls back to the raw status for values it does not know.
func ComboStatusLabel(s domain.ComboStatus) string {
	if l, ok := comboLabels[s]; ok {
		return l
	}
	return string(s)
}

// FormatVND renders "1.234.567 ₫".
func FormatVND(amount domain.Money) string {
	return utils.FormatVND(amount)
}

// FormatTime renders "15:04:05 2/1/2006" in Vietnam time.
func FormatTime(t time.Time) string {
	return utils.FormatTime(t)
}
