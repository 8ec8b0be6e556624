package v1

import (
	"net/http"

	"marketplace-backend/internal/usecase"
	"marketplace-backend/pkg/utils"
)

type ContentHandler struct {
	usecase usecase.ContentUsecase
}

func NewContentHandler(u usecase.ContentUsecase) *ContentHandler {
	return &ContentHandler{usecase: u}
}

// GET /api/v1/pages/{key}
func (h *ContentHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.usecase.GetActivePage(r.Context(), r.PathValue("key"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	utils.WriteSuccess(w, http.StatusOK, "", page, nil)
}

// GET /api/v1/admin/pages/{key}
func (h *ContentHandler) GetPageAdmin(w http.ResponseWriter, r *http.Request) {
	page, err := h.usecase.GetPage(r.Context(), r.PathValue("key"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "", page, nil)
}

type upsertPageReq struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	IsActive *bool  `json:"isActive"`
}

// PUT /api/v1/admin/pages/{key}
func (h *ContentHandler) UpsertPage(w http.ResponseWriter, r *http.Request) {
	var req upsertPageReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	page, err := h.usecase.UpsertPage(r.Context(), r.PathValue("key"), req.Title, req.Body, active)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Lưu trang thành công", page, nil)
}
