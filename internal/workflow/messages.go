package workflow

import "marketplace-backend/internal/domain"

var successMessages = map[domain.EntityKind]map[domain.ActionKind]string{
	domain.EntityOrder: {
		domain.ActionCancel: "Hủy đơn hàng thành công!",
	},
	domain.EntityCombo: {
		domain.ActionAdvance: "Cập nhật trạng thái đơn hàng thành công!",
		domain.ActionApprove: "Đã chấp nhận yêu cầu trả hàng",
		domain.ActionReject:  "Đã từ chối yêu cầu trả hàng",
		domain.ActionCancel:  "Hủy đơn hàng thành công!",
	},
	domain.EntitySeller: {
		domain.ActionApprove: "Xác minh tài khoản thành công!",
		domain.ActionReject:  "Đã từ chối xác minh tài khoản",
		domain.ActionBan:     "Đã khóa tài khoản người bán",
	},
	domain.EntityWithdrawal: {
		domain.ActionAccept:  "Đã chấp nhận yêu cầu rút tiền",
		domain.ActionApprove: "Xác nhận chuyển tiền thành công!",
		domain.ActionReject:  "Đã từ chối yêu cầu rút tiền",
	},
	domain.EntityReport: {
		domain.ActionAccept:  "Đã chấp nhận báo cáo",
		domain.ActionApprove: "Đã chấp nhận báo cáo",
		domain.ActionReject:  "Đã từ chối báo cáo",
	},
}

// SuccessMessage is the toast shown after a committed action.
func SuccessMessage(entity domain.EntityKind, kind domain.ActionKind) string {
	if m, ok := successMessages[entity][kind]; ok {
		return m
	}
	return "Thao tác thành công!"
}
