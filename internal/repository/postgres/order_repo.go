package postgres

import (
	"context"
	"errors"
	"fmt"

	"marketplace-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type orderRepository struct {
	base
}

func NewOrderRepository(pool *pgxpool.Pool) domain.OrderRepository {
	return &orderRepository{base{pool: pool}}
}

const orderColumns = `o.id, o.customer_id, o.receiver_name, o.address, o.phone, o.grand_total::text, o.version, o.ordered_at, o.updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var total string
	if err := row.Scan(&o.ID, &o.CustomerID, &o.Destination.ReceiverName, &o.Destination.Address, &o.Destination.Phone,
		&total, &o.Version, &o.OrderedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if o.GrandTotal, err = parseMoney(total); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	return r.inTx(ctx, func(ctx context.Context) error {
		db := r.db(ctx)
		err := db.QueryRow(ctx, `
			INSERT INTO orders (id, customer_id, receiver_name, address, phone, grand_total)
			VALUES ($1, $2, $3, $4, $5, $6::numeric)
			RETURNING version, ordered_at, updated_at`,
			order.ID, order.CustomerID, order.Destination.ReceiverName, order.Destination.Address,
			order.Destination.Phone, order.GrandTotal.String(),
		).Scan(&order.Version, &order.OrderedAt, &order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for pos := range order.Combos {
			c := &order.Combos[pos]
			c.OrderID = order.ID
			if c.Status == "" {
				c.Status = domain.ComboPending
			}
			err := db.QueryRow(ctx, `
				INSERT INTO order_combos (id, order_id, seller_id, position, status, shipping_fee)
				VALUES ($1, $2, $3, $4, $5, $6::numeric)
				RETURNING version, updated_at`,
				c.ID, c.OrderID, c.SellerID, pos, string(c.Status), c.ShippingFee.String(),
			).Scan(&c.Version, &c.UpdatedAt)
			if err != nil {
				return fmt.Errorf("insert combo: %w", err)
			}
			for i := range c.Items {
				it := &c.Items[i]
				it.ComboID = c.ID
				if _, err := db.Exec(ctx, `
					INSERT INTO order_items (id, combo_id, product_id, product_name, quantity, unit_price)
					VALUES ($1, $2, $3, $4, $5, $6::numeric)`,
					it.ID, it.ComboID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice.String(),
				); err != nil {
					return fmt.Errorf("insert item: %w", err)
				}
			}
		}
		return nil
	})
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(r.db(ctx).QueryRow(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	orders := []domain.Order{*o}
	if err := r.loadCombos(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *orderRepository) GetByComboID(ctx context.Context, comboID string) (*domain.Order, error) {
	var orderID string
	err := r.db(ctx).QueryRow(ctx, `SELECT order_id FROM order_combos WHERE id = $1`, comboID).Scan(&orderID)
	if err != nil {
		return nil, notFound(err)
	}
	return r.GetByID(ctx, orderID)
}

func (r *orderRepository) GetByCustomerID(ctx context.Context, customerID string) ([]domain.Order, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.customer_id = $1 ORDER BY o.ordered_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadCombos(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// aggregateCTE picks one combo status per order under the policy.
// $1/$2 carry the rank table so the ordering matches domain.Order.Status.
func aggregateCTE(w *where, policy domain.StatusPolicy) string {
	names := make([]string, 0, len(domain.ComboStatuses))
	ranks := make([]int32, 0, len(domain.ComboStatuses))
	for _, s := range domain.ComboStatuses {
		names = append(names, string(s))
		ranks = append(ranks, int32(policy.Rank(s)))
	}
	n, rk := w.next(names), w.next(ranks)

	order := "c.order_id, c.position"
	if policy != domain.PolicyFirst {
		order = "c.order_id, COALESCE(r.rank, 0) DESC, c.position"
	}
	return `WITH agg AS (
		SELECT DISTINCT ON (c.order_id) c.order_id, c.status
		FROM order_combos c
		LEFT JOIN unnest(` + n + `::text[], ` + rk + `::int[]) AS r(status, rank) ON r.status = c.status
		ORDER BY ` + order + `
	) `
}

var orderSorts = map[string]string{
	"grandTotal": "o.grand_total",
	"orderedAt":  "o.ordered_at",
}

func (r *orderRepository) GetAll(ctx context.Context, f domain.OrderFilter) ([]domain.Order, int64, error) {
	w := &where{}
	cte := aggregateCTE(w, f.Policy)

	if f.Search != "" {
		w.add(`(o.id ILIKE ? OR o.customer_id ILIKE ? OR o.phone ILIKE ? OR o.address ILIKE ? OR o.receiver_name ILIKE ?)`, likePattern(f.Search))
	}
	if f.Status != "" {
		w.add(`agg.status ILIKE ?`, likePattern(f.Status))
	}
	if f.Customer != "" {
		w.add(`o.customer_id = ?`, f.Customer)
	}
	if f.SellerID != "" {
		w.add(`EXISTS (SELECT 1 FROM order_combos sc WHERE sc.order_id = o.id AND sc.seller_id = ?)`, f.SellerID)
	}
	from := ` FROM orders o LEFT JOIN agg ON agg.order_id = o.id` + w.String()

	var total int64
	if err := r.db(ctx).QueryRow(ctx, cte+`SELECT COUNT(*)`+from, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	col, ok := orderSorts[f.SortBy]
	if !ok {
		col = "o.ordered_at"
	}
	dir := "DESC"
	if f.SortAsc {
		dir = "ASC"
	}
	p := domain.NewPagination(f.Page, f.Limit, total)
	limit, offset := w.next(p.Limit), w.next(p.Offset())

	rows, err := r.db(ctx).Query(ctx,
		cte+`SELECT `+orderColumns+from+` ORDER BY `+col+` `+dir+`, o.id LIMIT `+limit+` OFFSET `+offset,
		w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := r.loadCombos(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) CountByStatus(ctx context.Context, policy domain.StatusPolicy) (map[domain.ComboStatus]int64, error) {
	w := &where{}
	cte := aggregateCTE(w, policy)
	rows, err := r.db(ctx).Query(ctx, cte+`SELECT status, COUNT(*) FROM agg GROUP BY status`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.ComboStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[domain.ComboStatus(status)] = n
	}
	return out, rows.Err()
}

func (r *orderRepository) GetItem(ctx context.Context, itemID string) (*domain.OrderItem, *domain.OrderCombo, *domain.Order, error) {
	var comboID string
	if err := r.db(ctx).QueryRow(ctx, `SELECT combo_id FROM order_items WHERE id = $1`, itemID).Scan(&comboID); err != nil {
		return nil, nil, nil, notFound(err)
	}
	o, err := r.GetByComboID(ctx, comboID)
	if err != nil {
		return nil, nil, nil, err
	}
	c := o.FindCombo(comboID)
	if c == nil {
		return nil, nil, nil, domain.ErrNotFound
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i], c, o, nil
		}
	}
	return nil, nil, nil, domain.ErrNotFound
}

func (r *orderRepository) UpdateComboStatus(ctx context.Context, comboID string, expectedVersion int64, status domain.ComboStatus) (int64, error) {
	var v int64
	err := r.db(ctx).QueryRow(ctx, `
		UPDATE order_combos SET status = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING version`, comboID, expectedVersion, string(status)).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, r.casMiss(ctx, "order_combos", comboID)
	}
	return v, err
}

func (r *orderRepository) BumpVersion(ctx context.Context, orderID string, expectedVersion int64) (int64, error) {
	var v int64
	err := r.db(ctx).QueryRow(ctx, `
		UPDATE orders SET version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING version`, orderID, expectedVersion).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, r.casMiss(ctx, "orders", orderID)
	}
	return v, err
}

func (r *orderRepository) AddRetraded(ctx context.Context, itemID string, quantity int) error {
	tag, err := r.db(ctx).Exec(ctx, `
		UPDATE order_items SET retraded = retraded + $2
		WHERE id = $1 AND retraded + $2 <= quantity`, itemID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.casMiss(ctx, "order_items", itemID)
	}
	return nil
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	defer rows.Close()
	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// loadCombos fills combos and items for a page of orders in two queries.
func (r *orderRepository) loadCombos(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := r.db(ctx).Query(ctx, `
		SELECT id, order_id, seller_id, status, shipping_fee::text, version, updated_at
		FROM order_combos WHERE order_id = ANY($1) ORDER BY order_id, position`, ids)
	if err != nil {
		return fmt.Errorf("load combos: %w", err)
	}
	var combos []domain.OrderCombo
	for rows.Next() {
		var c domain.OrderCombo
		var status, fee string
		if err := rows.Scan(&c.ID, &c.OrderID, &c.SellerID, &status, &fee, &c.Version, &c.UpdatedAt); err != nil {
			rows.Close()
			return err
		}
		c.Status = domain.ComboStatus(status)
		if c.ShippingFee, err = parseMoney(fee); err != nil {
			rows.Close()
			return err
		}
		combos = append(combos, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	comboIDs := make([]string, len(combos))
	comboIndex := make(map[string]int, len(combos))
	for i, c := range combos {
		comboIDs[i] = c.ID
		comboIndex[c.ID] = i
	}
	if len(comboIDs) > 0 {
		items, err := r.db(ctx).Query(ctx, `
			SELECT id, combo_id, product_id, product_name, quantity, unit_price::text, retraded
			FROM order_items WHERE combo_id = ANY($1) ORDER BY combo_id, id`, comboIDs)
		if err != nil {
			return fmt.Errorf("load items: %w", err)
		}
		defer items.Close()
		for items.Next() {
			var it domain.OrderItem
			var price string
			if err := items.Scan(&it.ID, &it.ComboID, &it.ProductID, &it.ProductName, &it.Quantity, &price, &it.Retraded); err != nil {
				return err
			}
			if it.UnitPrice, err = parseMoney(price); err != nil {
				return err
			}
			c := &combos[comboIndex[it.ComboID]]
			c.Items = append(c.Items, it)
		}
		if err := items.Err(); err != nil {
			return err
		}
	}

	for _, c := range combos {
		o := &orders[index[c.OrderID]]
		o.Combos = append(o.Combos, c)
	}
	return nil
}
