package v1

import (
	"net/http"
	"strings"

	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/usecase"
	"marketplace-backend/pkg/utils"
)

type SellerHandler struct {
	uc     *usecase.SellerUsecase
	engine Executor
}

func NewSellerHandler(uc *usecase.SellerUsecase, engine Executor) *SellerHandler {
	return &SellerHandler{uc: uc, engine: engine}
}

// GET /api/v1/admin/sellers?badge=pending&search=
func (h *SellerHandler) ListSellers(w http.ResponseWriter, r *http.Request) {
	page, limit := utils.ParsePagination(r, defaultPageSize, maxPageSize)
	sellers, p, err := h.uc.ListSellers(r.Context(), domain.SellerFilter{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Badge:  r.URL.Query().Get("badge"),
	})
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writePage(w, sellers, p)
}

// GET /api/v1/admin/sellers/{id}
func (h *SellerHandler) GetSeller(w http.ResponseWriter, r *http.Request) {
	s, err := h.uc.GetSeller(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeEntity(w, http.StatusOK, "", s, s.Version)
}

type approveSellerReq struct {
	Approve       bool    `json:"approve"`
	ForceIdentity bool    `json:"forceIdentity"`
	Reason        *string `json:"reason"`
}

// POST /api/v1/admin/sellers/{id}/approve
// approve=false is a rejection and needs a reason.
func (h *SellerHandler) ApproveSeller(w http.ResponseWriter, r *http.Request) {
	var req approveSellerReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	a := domain.Action{
		Kind:          domain.ActionApprove,
		Entity:        domain.EntitySeller,
		EntityID:      r.PathValue("id"),
		ForceIdentity: req.ForceIdentity,
	}
	if !req.Approve {
		a.Kind = domain.ActionReject
	}
	if req.Reason != nil {
		a.Reason = *req.Reason
	}
	runAction(w, r, h.engine, a)
}

// POST /api/v1/admin/sellers/{id}/ban
func (h *SellerHandler) BanSeller(w http.ResponseWriter, r *http.Request) {
	var body reasonBody
	if err := decodeOptional(r, &body); err != nil {
		utils.WriteError(w, err)
		return
	}
	runAction(w, r, h.engine, domain.Action{
		Kind: domain.ActionBan, Entity: domain.EntitySeller, EntityID: r.PathValue("id"), Reason: body.Reason,
	})
}

// GET /api/v1/admin/sellers/{id}/id-card/{side}
func (h *SellerHandler) GetIDCardImage(w http.ResponseWriter, r *http.Request) {
	url, err := h.uc.GetIDCardImage(r.Context(), r.PathValue("id"), r.PathValue("side"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "private, no-store")
	utils.WriteSuccess(w, http.StatusOK, "", map[string]string{"url": url}, nil)
}

type registerSellerReq struct {
	ShopName string `json:"shopName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// POST /api/v1/seller/register
func (h *SellerHandler) Register(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req registerSellerReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	email := req.Email
	if email == "" {
		email = user.Email
	}
	s, err := h.uc.Register(r.Context(), user.ID, req.ShopName, email, req.Phone, req.Address)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeEntity(w, http.StatusCreated, "Đăng ký bán hàng thành công!", s, s.Version)
}

// GET /api/v1/seller/me
func (h *SellerHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	s, err := h.uc.GetSellerByUser(r.Context(), user.ID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeEntity(w, http.StatusOK, "", s, s.Version)
}

type submitIdentityReq struct {
	FrontKey string `json:"frontKey"`
	BackKey  string `json:"backKey"`
}

// POST /api/v1/seller/identity with the keys returned by the identity upload.
func (h *SellerHandler) SubmitIdentity(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req submitIdentityReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	s, err := h.uc.SubmitIdentity(r.Context(), user.ID, req.FrontKey, req.BackKey)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeEntity(w, http.StatusOK, "Đã gửi hồ sơ xác minh", s, s.Version)
}
