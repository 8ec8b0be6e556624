package v1

import (
	"net/http"

	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/usecase"
	"marketplace-backend/pkg/utils"
)

type ReportHandler struct {
	uc     *usecase.ReportUsecase
	engine Executor
}

func NewReportHandler(uc *usecase.ReportUsecase, engine Executor) *ReportHandler {
	return &ReportHandler{uc: uc, engine: engine}
}

type createReportReq struct {
	SellerID string `json:"sellerId"`
	Reason   string `json:"reason"`
}

// POST /api/v1/reports
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req createReportReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	rep, err := h.uc.CreateReport(r.Context(), user, req.SellerID, req.Reason)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeEntity(w, http.StatusCreated, "Đã gửi báo cáo", rep, rep.Version)
}

// GET /api/v1/admin/reports
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := utils.ParsePagination(r, defaultPageSize, maxPageSize)
	items, p, err := h.uc.ListReports(r.Context(), domain.ReportFilter{
		Page:     page,
		Limit:    limit,
		Status:   domain.ReportStatus(r.URL.Query().Get("status")),
		SellerID: r.URL.Query().Get("sellerId"),
	})
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writePage(w, items, p)
}

// GET /api/v1/admin/reports/{id}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	rep, err := h.uc.GetReportByID(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeEntity(w, http.StatusOK, "", rep, rep.Version)
}

// POST /api/v1/admin/reports/{id}/accept
func (h *ReportHandler) Accept(w http.ResponseWriter, r *http.Request) {
	runAction(w, r, h.engine, domain.Action{
		Kind: domain.ActionAccept, Entity: domain.EntityReport, EntityID: r.PathValue("id"),
	})
}

// POST /api/v1/admin/reports/{id}/reject
func (h *ReportHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var body reasonBody
	if err := decodeOptional(r, &body); err != nil {
		utils.WriteError(w, err)
		return
	}
	runAction(w, r, h.engine, domain.Action{
		Kind: domain.ActionReject, Entity: domain.EntityReport, EntityID: r.PathValue("id"), Reason: body.Reason,
	})
}

type evidenceReq struct {
	Files []string `json:"files"`
	URLs  []string `json:"urls"`
	Note  string   `json:"note"`
}

// POST /api/v1/reports/{id}/evidence
func (h *ReportHandler) PostEvidence(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req evidenceReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	e, err := h.uc.PostEvidence(r.Context(), user, r.PathValue("id"), domain.Evidence{Files: req.Files, URLs: req.URLs, Note: req.Note})
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Đã gửi bằng chứng", e, nil)
}

// GET /api/v1/reports/{id}/evidence
func (h *ReportHandler) GetEvidence(w http.ResponseWriter, r *http.Request) {
	ev, err := h.uc.GetEvidence(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "", ev, nil)
}
