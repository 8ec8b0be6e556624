package v1

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/usecase"
	"marketplace-backend/pkg/utils"
)

type OrderHandler struct {
	orderUC *usecase.OrderUsecase
	statsUC *usecase.StatsUsecase
	engine  Executor
}

func NewOrderHandler(orderUC *usecase.OrderUsecase, statsUC *usecase.StatsUsecase, engine Executor) *OrderHandler {
	return &OrderHandler{orderUC: orderUC, statsUC: statsUC, engine: engine}
}

func orderFilter(r *http.Request) domain.OrderFilter {
	q := r.URL.Query()
	page, limit := utils.ParsePagination(r, defaultPageSize, maxPageSize)
	return domain.OrderFilter{
		Page:     page,
		Limit:    limit,
		Search:   strings.TrimSpace(q.Get("search")),
		Status:   strings.TrimSpace(q.Get("status")),
		SortBy:   q.Get("sort"),
		SortAsc:  queryBool(r, "asc"),
		SellerID: q.Get("sellerId"),
	}
}

// ordersPage is the list shape the order dashboard reads.
type ordersPage struct {
	Orders      []usecase.OrderView `json:"orders"`
	Page        int                 `json:"page"`
	MaxPage     int                 `json:"maxPage"`
	TotalOrders int64               `json:"totalOrders"`
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request, f domain.OrderFilter) {
	orders, p, err := h.orderUC.ListOrders(r.Context(), f)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writePage(w, ordersPage{Orders: orders, Page: p.Page, MaxPage: p.MaxPage, TotalOrders: p.Total}, p)
}

// GET /api/v1/admin/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, orderFilter(r))
}

// GET /api/v1/orders
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	f := orderFilter(r)
	f.Customer = user.ID
	h.list(w, r, f)
}

// GET /api/v1/admin/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	v, err := h.orderUC.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeEntity(w, http.StatusOK, "", v, v.Version)
}

// GET /api/v1/orders/{id}
func (h *OrderHandler) GetMyOrder(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	v, err := h.orderUC.GetOrderFor(r.Context(), user, r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeEntity(w, http.StatusOK, "", v, v.Version)
}

// GET /api/v1/admin/orders/{id}/history
func (h *OrderHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	hist, err := h.orderUC.History(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if hist == nil {
		hist = []domain.StatusHistory{}
	}
	utils.WriteSuccess(w, http.StatusOK, "", hist, nil)
}

// GET /api/v1/admin/orders/stats
func (h *OrderHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsUC.OrderStats(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "", stats, map[string]string{"policy": string(h.orderUC.Policy())})
}

// GET /api/v1/admin/stats/queue
func (h *OrderHandler) GetAdminQueue(w http.ResponseWriter, r *http.Request) {
	q, err := h.statsUC.AdminQueue(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "", q, nil)
}

// GET /api/v1/admin/orders/export
func (h *OrderHandler) Export(w http.ResponseWriter, r *http.Request) {
	name := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := h.orderUC.ExportOrders(r.Context(), orderFilter(r), w); err != nil {
		w.Header().Del("Content-Disposition")
		utils.WriteError(w, err)
	}
}

// POST /api/v1/orders
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req usecase.PlaceOrderReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	order, err := h.orderUC.PlaceOrder(r.Context(), user.ID, req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeEntity(w, http.StatusCreated, "Đặt hàng thành công!", order, order.Version)
}

// POST /api/v1/orders/{id}/cancel and /api/v1/admin/orders/{id}/cancel
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var body reasonBody
	if err := decodeOptional(r, &body); err != nil {
		utils.WriteError(w, err)
		return
	}
	runAction(w, r, h.engine, domain.Action{
		Kind: domain.ActionCancel, Entity: domain.EntityOrder, EntityID: r.PathValue("id"), Reason: body.Reason,
	})
}

// POST /api/v1/seller/combos/{id}/advance and /api/v1/orders/combos/{id}/advance
func (h *OrderHandler) AdvanceCombo(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Target string `json:"target"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.WriteError(w, err)
		return
	}
	runAction(w, r, h.engine, domain.Action{
		Kind: domain.ActionAdvance, Entity: domain.EntityCombo, EntityID: r.PathValue("id"), Target: body.Target,
	})
}

// POST /api/v1/seller/combos/{id}/cancel
func (h *OrderHandler) CancelCombo(w http.ResponseWriter, r *http.Request) {
	var body reasonBody
	if err := decodeOptional(r, &body); err != nil {
		utils.WriteError(w, err)
		return
	}
	runAction(w, r, h.engine, domain.Action{
		Kind: domain.ActionCancel, Entity: domain.EntityCombo, EntityID: r.PathValue("id"), Reason: body.Reason,
	})
}

// POST /api/v1/admin/combos/{id}/return/approve
func (h *OrderHandler) ApproveReturn(w http.ResponseWriter, r *http.Request) {
	runAction(w, r, h.engine, domain.Action{
		Kind: domain.ActionApprove, Entity: domain.EntityCombo, EntityID: r.PathValue("id"),
	})
}

// POST /api/v1/admin/combos/{id}/return/reject
func (h *OrderHandler) RejectReturn(w http.ResponseWriter, r *http.Request) {
	var body reasonBody
	if err := decodeOptional(r, &body); err != nil {
		utils.WriteError(w, err)
		return
	}
	runAction(w, r, h.engine, domain.Action{
		Kind: domain.ActionReject, Entity: domain.EntityCombo, EntityID: r.PathValue("id"), Reason: body.Reason,
	})
}
