package v1

import (
	"net/http"
	"strings"

	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/usecase"
	"marketplace-backend/pkg/utils"
)

type ProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

func productFilter(r *http.Request) domain.ProductFilter {
	q := r.URL.Query()
	page, limit := utils.ParsePagination(r, defaultPageSize, maxPageSize)
	return domain.ProductFilter{
		Page:     page,
		Limit:    limit,
		Search:   strings.TrimSpace(q.Get("search")),
		Category: q.Get("category"),
		SellerID: q.Get("sellerId"),
		Status:   domain.ProductStatus(q.Get("status")),
	}
}

// GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	f := productFilter(r)
	f.Status = domain.ProductActive
	items, p, err := h.uc.ListProducts(r.Context(), f)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writePage(w, items, p)
}

// GET /api/v1/admin/products
func (h *ProductHandler) ListAllProducts(w http.ResponseWriter, r *http.Request) {
	items, p, err := h.uc.ListProducts(r.Context(), productFilter(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writePage(w, items, p)
}

// GET /api/v1/seller/products
func (h *ProductHandler) ListMyProducts(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	items, p, err := h.uc.ListSellerProducts(r.Context(), user.ID, productFilter(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writePage(w, items, p)
}

// POST /api/v1/seller/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req usecase.ProductReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	p, err := h.uc.CreateProduct(r.Context(), user.ID, req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Thêm sản phẩm thành công", p, nil)
}

// PUT /api/v1/seller/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req usecase.ProductReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	p, err := h.uc.UpdateProduct(r.Context(), user.ID, r.PathValue("id"), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Cập nhật sản phẩm thành công", p, nil)
}

// PATCH /api/v1/admin/products/{id}/status
func (h *ProductHandler) UpdateProductStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status domain.ProductStatus `json:"status"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.uc.SetProductStatus(r.Context(), r.PathValue("id"), req.Status); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Cập nhật trạng thái sản phẩm thành công", nil, nil)
}

// POST /api/v1/products/retrade
func (h *ProductHandler) Retrade(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req usecase.RetradeReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	p, err := h.uc.Retrade(r.Context(), user.ID, req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Đăng bán lại thành công", p, nil)
}
