package v1

import (
	"net/http"

	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/usecase"
	"marketplace-backend/pkg/utils"
)

type WithdrawHandler struct {
	uc     *usecase.WithdrawUsecase
	engine Executor
}

func NewWithdrawHandler(uc *usecase.WithdrawUsecase, engine Executor) *WithdrawHandler {
	return &WithdrawHandler{uc: uc, engine: engine}
}

// POST /api/v1/withdrawals
func (h *WithdrawHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req usecase.CreateWithdrawReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	wr, err := h.uc.CreateWithdraw(r.Context(), user, req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeEntity(w, http.StatusCreated, "Đã gửi yêu cầu rút tiền", wr, wr.Version)
}

func (h *WithdrawHandler) list(w http.ResponseWriter, r *http.Request, requesterID string) {
	page, limit := utils.ParsePagination(r, defaultPageSize, maxPageSize)
	items, p, err := h.uc.ListWithdraws(r.Context(), domain.WithdrawFilter{
		Page:        page,
		Limit:       limit,
		Status:      domain.WithdrawStatus(r.URL.Query().Get("status")),
		RequesterID: requesterID,
	})
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writePage(w, items, p)
}

// GET /api/v1/admin/withdrawals
func (h *WithdrawHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, r.URL.Query().Get("requesterId"))
}

// GET /api/v1/withdrawals
func (h *WithdrawHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.list(w, r, user.ID)
}

// GET /api/v1/admin/withdrawals/{id}
func (h *WithdrawHandler) Get(w http.ResponseWriter, r *http.Request) {
	wr, err := h.uc.GetWithdraw(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeEntity(w, http.StatusOK, "", wr, wr.Version)
}

// GET /api/v1/admin/withdrawals/{id}/qr
func (h *WithdrawHandler) GetQRCode(w http.ResponseWriter, r *http.Request) {
	url, err := h.uc.GetQRCode(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "", map[string]string{"url": url}, nil)
}

// POST /api/v1/admin/withdrawals/{id}/accept
func (h *WithdrawHandler) Accept(w http.ResponseWriter, r *http.Request) {
	runAction(w, r, h.engine, domain.Action{
		Kind: domain.ActionAccept, Entity: domain.EntityWithdrawal, EntityID: r.PathValue("id"),
	})
}

// POST /api/v1/admin/withdrawals/{id}/approve with {proofUrl} from a prior upload.
func (h *WithdrawHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProofURL string `json:"proofUrl"`
	}
	if err := decodeOptional(r, &body); err != nil {
		utils.WriteError(w, err)
		return
	}
	runAction(w, r, h.engine, domain.Action{
		Kind: domain.ActionApprove, Entity: domain.EntityWithdrawal, EntityID: r.PathValue("id"), ProofURL: body.ProofURL,
	})
}

// POST /api/v1/admin/withdrawals/{id}/reject
func (h *WithdrawHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var body reasonBody
	if err := decodeOptional(r, &body); err != nil {
		utils.WriteError(w, err)
		return
	}
	runAction(w, r, h.engine, domain.Action{
		Kind: domain.ActionReject, Entity: domain.EntityWithdrawal, EntityID: r.PathValue("id"), Reason: body.Reason,
	})
}
