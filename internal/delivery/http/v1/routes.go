package v1

import (
	"net/http"

	"marketplace-backend/internal/delivery/http/middleware"
	"marketplace-backend/internal/domain"
	"marketplace-backend/pkg/utils"
)

// Handlers groups everything RegisterRoutes mounts. Events may be nil.
type Handlers struct {
	Action   *ActionHandler
	Config   *ConfigHandler
	Content  *ContentHandler
	Order    *OrderHandler
	Seller   *SellerHandler
	Withdraw *WithdrawHandler
	Report   *ReportHandler
	Product  *ProductHandler
	Upload   *UploadHandler
	Events   http.Handler
	Health   http.HandlerFunc
}

// RegisterRoutes mounts the v1 API on mux.
func RegisterRoutes(mux *http.ServeMux, h Handlers) {
	auth := func(fn http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(fn)
	}
	admin := func(fn http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(fn))
	}
	role := func(fn http.HandlerFunc, roles ...string) http.Handler {
		return middleware.AuthMiddleware(middleware.RequireRole(roles...)(fn))
	}
	seller := func(fn http.HandlerFunc) http.Handler {
		return role(fn, domain.RoleSeller, domain.RoleAdmin)
	}

	health := h.Health
	if health == nil {
		health = func(w http.ResponseWriter, r *http.Request) {
			utils.WriteSuccess(w, http.StatusOK, "ok", nil, nil)
		}
	}
	mux.HandleFunc("GET /api/v1/health", health)
	mux.HandleFunc("GET /health", health)

	// Public
	mux.HandleFunc("GET /api/v1/config/enums", h.Config.GetEnums)
	mux.HandleFunc("GET /api/v1/pages/{key}", h.Content.GetPage)
	mux.HandleFunc("GET /api/v1/products", h.Product.ListProducts)

	// Any signed-in user
	mux.Handle("POST /api/v1/upload", auth(h.Upload.UploadFile))
	mux.Handle("GET /api/v1/orders", auth(h.Order.ListMyOrders))
	mux.Handle("POST /api/v1/orders", auth(h.Order.PlaceOrder))
	mux.Handle("GET /api/v1/orders/{id}", auth(h.Order.GetMyOrder))
	mux.Handle("POST /api/v1/orders/{id}/cancel", auth(h.Order.Cancel))
	mux.Handle("POST /api/v1/orders/combos/{id}/advance", auth(h.Order.AdvanceCombo))
	mux.Handle("POST /api/v1/products/retrade", auth(h.Product.Retrade))
	mux.Handle("POST /api/v1/withdrawals", auth(h.Withdraw.Create))
	mux.Handle("GET /api/v1/withdrawals", auth(h.Withdraw.ListMine))
	mux.Handle("POST /api/v1/reports", auth(h.Report.Create))
	mux.Handle("POST /api/v1/reports/{id}/evidence", auth(h.Report.PostEvidence))
	mux.Handle("GET /api/v1/reports/{id}/evidence", auth(h.Report.GetEvidence))
	mux.Handle("POST /api/v1/seller/register", auth(h.Seller.Register))

	// Sellers
	mux.Handle("GET /api/v1/seller/me", seller(h.Seller.Me))
	mux.Handle("POST /api/v1/seller/identity", seller(h.Seller.SubmitIdentity))
	mux.Handle("GET /api/v1/seller/products", seller(h.Product.ListMyProducts))
	mux.Handle("POST /api/v1/seller/products", seller(h.Product.CreateProduct))
	mux.Handle("PUT /api/v1/seller/products/{id}", seller(h.Product.UpdateProduct))
	mux.Handle("POST /api/v1/seller/combos/{id}/advance", seller(h.Order.AdvanceCombo))
	mux.Handle("POST /api/v1/seller/combos/{id}/cancel", seller(h.Order.CancelCombo))

	// Admin
	mux.Handle("POST /api/v1/admin/actions", admin(h.Action.Execute))
	mux.Handle("GET /api/v1/admin/pages/{key}", admin(h.Content.GetPageAdmin))
	mux.Handle("PUT /api/v1/admin/pages/{key}", admin(h.Content.UpsertPage))
	mux.Handle("GET /api/v1/admin/stats/queue", admin(h.Order.GetAdminQueue))

	mux.Handle("GET /api/v1/admin/orders", admin(h.Order.ListOrders))
	mux.Handle("GET /api/v1/admin/orders/stats", admin(h.Order.GetStats))
	mux.Handle("GET /api/v1/admin/orders/export", admin(h.Order.Export))
	mux.Handle("GET /api/v1/admin/orders/{id}", admin(h.Order.GetOrder))
	mux.Handle("POST /api/v1/admin/orders/{id}/cancel", admin(h.Order.Cancel))
	mux.Handle("GET /api/v1/admin/orders/{id}/history", admin(h.Order.GetHistory))
	mux.Handle("POST /api/v1/admin/combos/{id}/return/approve", admin(h.Order.ApproveReturn))
	mux.Handle("POST /api/v1/admin/combos/{id}/return/reject", admin(h.Order.RejectReturn))

	mux.Handle("GET /api/v1/admin/sellers", admin(h.Seller.ListSellers))
	mux.Handle("GET /api/v1/admin/sellers/{id}", admin(h.Seller.GetSeller))
	mux.Handle("POST /api/v1/admin/sellers/{id}/approve", admin(h.Seller.ApproveSeller))
	mux.Handle("POST /api/v1/admin/sellers/{id}/ban", admin(h.Seller.BanSeller))
	mux.Handle("GET /api/v1/admin/sellers/{id}/id-card/{side}", admin(h.Seller.GetIDCardImage))

	mux.Handle("GET /api/v1/admin/withdrawals", admin(h.Withdraw.List))
	mux.Handle("GET /api/v1/admin/withdrawals/{id}", admin(h.Withdraw.Get))
	mux.Handle("GET /api/v1/admin/withdrawals/{id}/qr", admin(h.Withdraw.GetQRCode))
	mux.Handle("POST /api/v1/admin/withdrawals/{id}/accept", admin(h.Withdraw.Accept))
	mux.Handle("POST /api/v1/admin/withdrawals/{id}/approve", admin(h.Withdraw.Approve))
	mux.Handle("POST /api/v1/admin/withdrawals/{id}/reject", admin(h.Withdraw.Reject))

	mux.Handle("GET /api/v1/admin/reports", admin(h.Report.List))
	mux.Handle("GET /api/v1/admin/reports/{id}", admin(h.Report.Get))
	mux.Handle("POST /api/v1/admin/reports/{id}/accept", admin(h.Report.Accept))
	mux.Handle("POST /api/v1/admin/reports/{id}/reject", admin(h.Report.Reject))

	mux.Handle("GET /api/v1/admin/products", admin(h.Product.ListAllProducts))
	mux.Handle("PATCH /api/v1/admin/products/{id}/status", admin(h.Product.UpdateProductStatus))

	if h.Events != nil {
		mux.Handle("GET /api/v1/admin/events", admin(h.Events.ServeHTTP))
	}
}
