package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/workflow"
	"marketplace-backend/pkg/apperr"
	"marketplace-backend/pkg/cache"
	"marketplace-backend/pkg/logger"
	"marketplace-backend/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

type OrderUsecase struct {
	orderRepo   domain.OrderRepository
	productRepo domain.ProductRepository
	sellerRepo  domain.SellerRepository
	history     domain.HistoryRepository
	txManager   domain.TransactionManager
	loader      *cache.Loader
	policy      domain.StatusPolicy
	entityTTL   time.Duration
	shippingFee decimal.Decimal
}

type OrderConfig struct {
	Policy      domain.StatusPolicy
	EntityTTL   time.Duration
	ShippingFee decimal.Decimal
}

func NewOrderUsecase(orderRepo domain.OrderRepository, productRepo domain.ProductRepository, sellerRepo domain.SellerRepository,
	history domain.HistoryRepository, txManager domain.TransactionManager, loader *cache.Loader, cfg OrderConfig) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		sellerRepo:  sellerRepo,
		history:     history,
		txManager:   txManager,
		loader:      loader,
		policy:      cfg.Policy,
		entityTTL:   cfg.EntityTTL,
		shippingFee: cfg.ShippingFee,
	}
}

func (u *OrderUsecase) Policy() domain.StatusPolicy { return u.policy }

// OrderView is an order with its aggregate status and the actions open on it.
type OrderView struct {
	*domain.Order
	Status  domain.ComboStatus  `json:"status"`
	Actions []domain.ActionKind `json:"actions"`
}

func (u *OrderUsecase) view(o *domain.Order) OrderView {
	var actions []domain.ActionKind
	if o.IsCancellable() {
		actions = []domain.ActionKind{domain.ActionCancel}
	}
	return OrderView{Order: o, Status: o.Status(u.policy), Actions: actions}
}

const statsPrefix = "stats:orders:"

func statsKey(policy domain.StatusPolicy) string { return statsPrefix + string(policy) }

// --- Queries ---

// ListOrders searches, filters and sorts over the full result set, then pages.
func (u *OrderUsecase) ListOrders(ctx context.Context, f domain.OrderFilter) ([]OrderView, domain.Pagination, error) {
	f.Page, f.Limit = clampPage(f.Page, f.Limit, 100)
	f.Policy = u.policy
	if f.SortBy != "" && f.SortBy != "grandTotal" && f.SortBy != "orderedAt" {
		return nil, domain.Pagination{}, apperr.FieldErr("sort", "Trường sắp xếp không hợp lệ")
	}

	orders, total, err := u.orderRepo.GetAll(ctx, f)
	if err != nil {
		return nil, domain.Pagination{}, apperr.Wrap(err)
	}
	views := make([]OrderView, len(orders))
	for i := range orders {
		views[i] = u.view(&orders[i])
	}
	return views, domain.NewPagination(f.Page, f.Limit, total), nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, id string) (OrderView, error) {
	o, err := cache.GetOrLoad(u.loader, domain.EntityKey(domain.EntityOrder, id), u.entityTTL, func() (*domain.Order, error) {
		return u.orderRepo.GetByID(ctx, id)
	})
	if err != nil {
		return OrderView{}, repoErr(err, msgOrderNotFound)
	}
	return u.view(o), nil
}

// GetOrderFor hides other customers' orders behind a not-found.
func (u *OrderUsecase) GetOrderFor(ctx context.Context, actor *domain.User, id string) (OrderView, error) {
	v, err := u.GetOrder(ctx, id)
	if err != nil {
		return OrderView{}, err
	}
	if !actor.IsAdmin() && v.CustomerID != actor.ID {
		return OrderView{}, apperr.NotFoundErr(msgOrderNotFound)
	}
	return v, nil
}

func (u *OrderUsecase) History(ctx context.Context, id string) ([]domain.StatusHistory, error) {
	v, err := u.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := u.history.List(ctx, string(domain.EntityOrder), id)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	for _, c := range v.Combos {
		h, err := u.history.List(ctx, string(domain.EntityCombo), c.ID)
		if err != nil {
			return nil, apperr.Wrap(err)
		}
		out = append(out, h...)
	}
	return out, nil
}

const exportBatch = 500

var exportHeader = []string{"Mã đơn", "Khách hàng", "Người nhận", "Số điện thoại", "Địa chỉ", "Trạng thái", "Tổng tiền", "Ngày đặt"}

// ExportOrders writes every order matching f to an xlsx workbook.
func (u *OrderUsecase) ExportOrders(ctx context.Context, f domain.OrderFilter, w io.Writer) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return apperr.Wrap(err)
	}
	header := sheet.AddRow()
	for _, h := range exportHeader {
		header.AddCell().SetValue(h)
	}

	f.Policy = u.policy
	f.Limit = exportBatch
	rows := 0
	for page := 1; ; page++ {
		f.Page = page
		orders, total, err := u.orderRepo.GetAll(ctx, f)
		if err != nil {
			return apperr.Wrap(err)
		}
		for i := range orders {
			o := &orders[i]
			row := sheet.AddRow()
			row.AddCell().SetValue(o.ID)
			row.AddCell().SetValue(o.CustomerID)
			row.AddCell().SetValue(o.Destination.ReceiverName)
			row.AddCell().SetValue(o.Destination.Phone)
			row.AddCell().SetValue(o.Destination.Address)
			row.AddCell().SetValue(string(o.Status(u.policy)))
			row.AddCell().SetValue(o.GrandTotal.InexactFloat64())
			row.AddCell().SetValue(utils.FormatTime(o.OrderedAt))
			rows++
		}
		if len(orders) < exportBatch || int64(page*exportBatch) >= total {
			break
		}
	}

	logger.WithContext(ctx).Info().Int("rows", rows).Msg("Orders exported")
	if err := file.Write(w); err != nil {
		return apperr.Wrap(err)
	}
	return nil
}

// --- Commands ---

type OrderLine struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type PlaceOrderReq struct {
	Destination domain.Destination `json:"destination"`
	Lines       []OrderLine        `json:"items"`
}

// PlaceOrder groups lines by seller into combos, one shipping fee per combo.
func (u *OrderUsecase) PlaceOrder(ctx context.Context, customerID string, req PlaceOrderReq) (*domain.Order, error) {
	fields := map[string]string{}
	if strings.TrimSpace(req.Destination.ReceiverName) == "" {
		fields["receiverName"] = "Vui lòng nhập tên người nhận"
	}
	if strings.TrimSpace(req.Destination.Phone) == "" {
		fields["phone"] = "Vui lòng nhập số điện thoại"
	}
	if strings.TrimSpace(req.Destination.Address) == "" {
		fields["address"] = "Vui lòng nhập địa chỉ"
	}
	if len(req.Lines) == 0 {
		fields["items"] = "Đơn hàng phải có ít nhất một sản phẩm"
	}
	if len(fields) > 0 {
		return nil, apperr.InvalidErr("Thông tin đơn hàng chưa đầy đủ", fields)
	}

	order := &domain.Order{ID: newID(), CustomerID: customerID, Destination: req.Destination}
	bySeller := map[string]int{}
	for i, line := range req.Lines {
		if line.Quantity < 1 {
			return nil, apperr.FieldErr(fmt.Sprintf("items[%d].quantity", i), "Số lượng phải lớn hơn 0")
		}
		p, err := u.productRepo.GetProductByID(ctx, line.ProductID)
		if err != nil {
			return nil, repoErr(err, msgProductNotFound)
		}
		if p.Status != domain.ProductActive {
			return nil, apperr.ConflictErr(fmt.Sprintf("Sản phẩm %s hiện không bán", p.Name))
		}
		if p.Stock < line.Quantity {
			return nil, apperr.ConflictErr(fmt.Sprintf("Sản phẩm %s không đủ hàng", p.Name))
		}

		idx, ok := bySeller[p.SellerID]
		if !ok {
			order.Combos = append(order.Combos, domain.OrderCombo{
				ID:          newID(),
				SellerID:    p.SellerID,
				Status:      domain.ComboPending,
				ShippingFee: u.shippingFee,
			})
			idx = len(order.Combos) - 1
			bySeller[p.SellerID] = idx
		}
		order.Combos[idx].Items = append(order.Combos[idx].Items, domain.OrderItem{
			ID:          newID(),
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			UnitPrice:   p.Price,
		})
	}
	order.GrandTotal = order.ComputeGrandTotal()

	err := u.txManager.Do(ctx, func(ctx context.Context) error {
		if err := u.orderRepo.CreateOrder(ctx, order); err != nil {
			return err
		}
		return u.history.Create(ctx, history(domain.EntityOrder, order.ID, "", string(domain.ComboPending),
			domain.Action{Kind: "create", ActorID: customerID}))
	})
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	u.loader.Cache().Delete(statsKey(u.policy))

	logger.WithContext(ctx).Info().Str("order_id", order.ID).Int("combos", len(order.Combos)).Str("total", order.GrandTotal.String()).Msg("Order placed")
	return order, nil
}

// OrderHandler cancels whole orders for the workflow engine.
func (u *OrderUsecase) OrderHandler() workflow.Handler {
	return workflow.HandlerFunc(u.applyOrder)
}

// ComboHandler advances, cancels and settles returns on single combos.
func (u *OrderUsecase) ComboHandler() workflow.Handler {
	return workflow.HandlerFunc(u.applyCombo)
}

func (u *OrderUsecase) applyOrder(ctx context.Context, a domain.Action) (*domain.Transition, error) {
	o, err := u.orderRepo.GetByID(ctx, a.EntityID)
	if err != nil {
		return nil, repoErr(err, msgOrderNotFound)
	}
	if a.ActorRole != domain.RoleAdmin && o.CustomerID != a.ActorID {
		return nil, apperr.NotFoundErr(msgOrderNotFound)
	}
	if err := workflow.CheckVersion(a, o.Version); err != nil {
		return nil, err
	}
	from := string(o.Status(u.policy))
	if !o.IsCancellable() {
		return nil, workflow.Disallowed(domain.EntityOrder, from, a.Kind)
	}

	related := []string{statsPrefix + cache.Wildcard}
	var version int64
	err = u.txManager.Do(ctx, func(ctx context.Context) error {
		for _, c := range o.Combos {
			if _, err := u.orderRepo.UpdateComboStatus(ctx, c.ID, c.Version, domain.ComboCancelled); err != nil {
				return err
			}
			if err := u.history.Create(ctx, history(domain.EntityCombo, c.ID, string(c.Status), string(domain.ComboCancelled), a)); err != nil {
				return err
			}
			related = append(related, domain.EntityKey(domain.EntityCombo, c.ID))
		}
		v, err := u.orderRepo.BumpVersion(ctx, o.ID, o.Version)
		if err != nil {
			return err
		}
		version = v
		return u.history.Create(ctx, history(domain.EntityOrder, o.ID, from, string(domain.ComboCancelled), a))
	})
	if err != nil {
		return nil, repoErr(err, msgOrderNotFound)
	}

	return &domain.Transition{
		Entity:   domain.EntityOrder,
		EntityID: o.ID,
		Action:   a.Kind,
		From:     from,
		To:       string(domain.ComboCancelled),
		Version:  version,
		Reason:   strings.TrimSpace(a.Reason),
		ActorID:  a.ActorID,
		Related:  related,
	}, nil
}

// customerSteps are the only advances a buyer may make on their own combo.
var customerSteps = map[domain.ComboStatus]bool{
	domain.ComboCompleted:       true,
	domain.ComboReturnRequested: true,
}

func (u *OrderUsecase) authorizeCombo(ctx context.Context, a domain.Action, o *domain.Order, c *domain.OrderCombo, to domain.ComboStatus) error {
	switch a.ActorRole {
	case domain.RoleAdmin:
		return nil
	case domain.RoleSeller:
		s, err := u.sellerRepo.GetByUserID(ctx, a.ActorID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if s != nil && s.ID == c.SellerID && !s.Banned {
			return nil
		}
	case domain.RoleCustomer:
		if o.CustomerID == a.ActorID && a.Kind == domain.ActionAdvance && customerSteps[to] {
			return nil
		}
	}
	return apperr.ForbiddenErr(msgForbidden)
}

func (u *OrderUsecase) applyCombo(ctx context.Context, a domain.Action) (*domain.Transition, error) {
	o, err := u.orderRepo.GetByComboID(ctx, a.EntityID)
	if err != nil {
		return nil, repoErr(err, msgOrderNotFound)
	}
	c := o.FindCombo(a.EntityID)
	if c == nil {
		return nil, apperr.NotFoundErr(msgOrderNotFound)
	}
	if err := workflow.CheckVersion(a, c.Version); err != nil {
		return nil, err
	}

	from := c.Status
	var to domain.ComboStatus
	switch a.Kind {
	case domain.ActionAdvance:
		to, _ = domain.ParseComboStatus(a.Target)
		if !workflow.CanAdvance(from, to) {
			return nil, workflow.Disallowed(domain.EntityCombo, string(from), a.Kind)
		}
	case domain.ActionApprove, domain.ActionReject, domain.ActionCancel:
		if !workflow.IsAllowed(domain.EntityCombo, string(from), a.Kind) {
			return nil, workflow.Disallowed(domain.EntityCombo, string(from), a.Kind)
		}
		to = map[domain.ActionKind]domain.ComboStatus{
			domain.ActionApprove: domain.ComboReturnApproved,
			domain.ActionReject:  domain.ComboReturnRejected,
			domain.ActionCancel:  domain.ComboCancelled,
		}[a.Kind]
	}
	if err := u.authorizeCombo(ctx, a, o, c, to); err != nil {
		return nil, err
	}

	var version int64
	err = u.txManager.Do(ctx, func(ctx context.Context) error {
		v, err := u.orderRepo.UpdateComboStatus(ctx, c.ID, c.Version, to)
		if err != nil {
			return err
		}
		version = v
		if _, err := u.orderRepo.BumpVersion(ctx, o.ID, o.Version); err != nil {
			return err
		}
		return u.history.Create(ctx, history(domain.EntityCombo, c.ID, string(from), string(to), a))
	})
	if err != nil {
		return nil, repoErr(err, msgOrderNotFound)
	}

	return &domain.Transition{
		Entity:   domain.EntityCombo,
		EntityID: c.ID,
		Action:   a.Kind,
		From:     string(from),
		To:       string(to),
		Version:  version,
		Reason:   strings.TrimSpace(a.Reason),
		ActorID:  a.ActorID,
		Related:  []string{domain.EntityKey(domain.EntityOrder, o.ID), statsPrefix + cache.Wildcard},
	}, nil
}
