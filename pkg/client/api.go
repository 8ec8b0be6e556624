package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"

	"marketplace-backend/internal/domain"
)

// --- Orders ---

// OrderRow is one row of the admin order list.
type OrderRow struct {
	domain.Order
	Status  domain.ComboStatus  `json:"status"`
	Actions []domain.ActionKind `json:"actions"`
}

type OrdersPage struct {
	Orders      []OrderRow `json:"orders"`
	Page        int        `json:"page"`
	MaxPage     int        `json:"maxPage"`
	TotalOrders int64      `json:"totalOrders"`
}

type OrderQuery struct {
	Search   string
	Status   string
	Sort     string
	Asc      bool
	SellerID string
	Limit    int
}

func (q OrderQuery) values(page int) url.Values {
	v := pageQuery(page, map[string]string{
		"search":   q.Search,
		"status":   q.Status,
		"sort":     q.Sort,
		"sellerId": q.SellerID,
	})
	if q.Asc {
		v.Set("asc", "true")
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func (c *Client) GetOrders(ctx context.Context, page int, q OrderQuery) (*OrdersPage, error) {
	var out OrdersPage
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/api/v1/admin/orders", query: q.values(page)}, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*OrderRow, error) {
	var out OrderRow
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/api/v1/admin/orders/" + escape(id)}, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelOrder(ctx context.Context, id, reason string) (*ActionResult, error) {
	return c.action(ctx, "/api/v1/admin/orders/"+escape(id)+"/cancel", reasonBody(reason))
}

func (c *Client) AdvanceCombo(ctx context.Context, comboID string, target domain.ComboStatus) (*ActionResult, error) {
	return c.action(ctx, "/api/v1/seller/combos/"+escape(comboID)+"/advance", map[string]string{"target": string(target)})
}

func (c *Client) ApproveReturn(ctx context.Context, comboID string) (*ActionResult, error) {
	return c.action(ctx, "/api/v1/admin/combos/"+escape(comboID)+"/return/approve", nil)
}

func (c *Client) RejectReturn(ctx context.Context, comboID, reason string) (*ActionResult, error) {
	return c.action(ctx, "/api/v1/admin/combos/"+escape(comboID)+"/return/reject", reasonBody(reason))
}

// --- Sellers ---

type SellerQuery struct {
	Badge  string
	Search string
}

func (c *Client) ListSellers(ctx context.Context, page int, q SellerQuery) ([]domain.SellerProfile, domain.Pagination, error) {
	var (
		out []domain.SellerProfile
		p   domain.Pagination
	)
	query := pageQuery(page, map[string]string{"badge": q.Badge, "search": q.Search})
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/api/v1/admin/sellers", query: query}, &out, &p)
	return out, p, err
}

func (c *Client) GetSeller(ctx context.Context, id string) (*domain.SellerProfile, error) {
	var out domain.SellerProfile
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/api/v1/admin/sellers/" + escape(id)}, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

type approveSellerBody struct {
	Approve       bool    `json:"approve"`
	ForceIdentity bool    `json:"forceIdentity"`
	Reason        *string `json:"reason,omitempty"`
}

// ApproveSeller verifies a seller, or rejects them when approve is false.
func (c *Client) ApproveSeller(ctx context.Context, id string, approve, forceIdentity bool, reason *string) (*ActionResult, error) {
	return c.action(ctx, "/api/v1/admin/sellers/"+escape(id)+"/approve", approveSellerBody{
		Approve:       approve,
		ForceIdentity: forceIdentity,
		Reason:        reason,
	})
}

func (c *Client) BanSeller(ctx context.Context, id, reason string) (*ActionResult, error) {
	return c.action(ctx, "/api/v1/admin/sellers/"+escape(id)+"/ban", reasonBody(reason))
}

// GetIDCardImage returns a short-lived URL for the front or back of a seller's ID card.
func (c *Client) GetIDCardImage(ctx context.Context, id, side string) (string, error) {
	return c.getURL(ctx, "/api/v1/admin/sellers/"+escape(id)+"/id-card/"+escape(side))
}

// --- Withdrawals ---

type WithdrawQuery struct {
	Status      domain.WithdrawStatus
	RequesterID string
}

func (c *Client) ListWithdraws(ctx context.Context, page int, q WithdrawQuery) ([]domain.WithdrawRequest, domain.Pagination, error) {
	var (
		out []domain.WithdrawRequest
		p   domain.Pagination
	)
	query := pageQuery(page, map[string]string{"status": string(q.Status), "requesterId": q.RequesterID})
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/api/v1/admin/withdrawals", query: query}, &out, &p)
	return out, p, err
}

func (c *Client) GetWithdraw(ctx context.Context, id string) (*domain.WithdrawRequest, error) {
	var out domain.WithdrawRequest
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/api/v1/admin/withdrawals/" + escape(id)}, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetWithdrawQR(ctx context.Context, id string) (string, error) {
	return c.getURL(ctx, "/api/v1/admin/withdrawals/"+escape(id)+"/qr")
}

func (c *Client) AcceptWithdraw(ctx context.Context, id string) (*ActionResult, error) {
	return c.action(ctx, "/api/v1/admin/withdrawals/"+escape(id)+"/accept", nil)
}

// ApproveWithdraw uploads the transfer proof, then completes the request with its URL.
func (c *Client) ApproveWithdraw(ctx context.Context, id string, proof io.Reader, filename string) (*ActionResult, error) {
	proofURL, err := c.upload(ctx, "evidence", proof, filename)
	if err != nil {
		return nil, fmt.Errorf("upload proof: %w", err)
	}
	return c.ApproveWithdrawURL(ctx, id, proofURL)
}

// ApproveWithdrawURL completes a request with an already uploaded proof.
func (c *Client) ApproveWithdrawURL(ctx context.Context, id, proofURL string) (*ActionResult, error) {
	return c.action(ctx, "/api/v1/admin/withdrawals/"+escape(id)+"/approve", map[string]string{"proofUrl": proofURL})
}

func (c *Client) RejectWithdraw(ctx context.Context, id, reason string) (*ActionResult, error) {
	return c.action(ctx, "/api/v1/admin/withdrawals/"+escape(id)+"/reject", reasonBody(reason))
}

// --- Reports ---

type ReportQuery struct {
	Status   domain.ReportStatus
	SellerID string
}

func (c *Client) ListReports(ctx context.Context, page int, q ReportQuery) ([]domain.Report, domain.Pagination, error) {
	var (
		out []domain.Report
		p   domain.Pagination
	)
	query := pageQuery(page, map[string]string{"status": string(q.Status), "sellerId": q.SellerID})
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/api/v1/admin/reports", query: query}, &out, &p)
	return out, p, err
}

func (c *Client) GetReportByID(ctx context.Context, id string) (*domain.Report, error) {
	var out domain.Report
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/api/v1/admin/reports/" + escape(id)}, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AcceptReport(ctx context.Context, id string) (*ActionResult, error) {
	return c.action(ctx, "/api/v1/admin/reports/"+escape(id)+"/accept", nil)
}

func (c *Client) RejectReport(ctx context.Context, id, reason string) (*ActionResult, error) {
	return c.action(ctx, "/api/v1/admin/reports/"+escape(id)+"/reject", reasonBody(reason))
}

// Evidence is what a participant attaches to a report.
type Evidence struct {
	Files []string `json:"files"`
	URLs  []string `json:"urls"`
	Note  string   `json:"note"`
}

func (c *Client) PostEvidence(ctx context.Context, reportID string, ev Evidence) (*domain.Evidence, error) {
	var out domain.Evidence
	req := request{method: http.MethodPost, path: "/api/v1/reports/" + escape(reportID) + "/evidence", body: ev}
	if _, err := c.do(ctx, req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetEvidence(ctx context.Context, reportID string) ([]domain.Evidence, error) {
	var out []domain.Evidence
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/api/v1/reports/" + escape(reportID) + "/evidence"}, &out, nil)
	return out, err
}

// --- Products ---

type ProductQuery struct {
	Search   string
	Category string
	SellerID string
}

func (c *Client) ListProducts(ctx context.Context, page int, q ProductQuery) ([]domain.Product, domain.Pagination, error) {
	var (
		out []domain.Product
		p   domain.Pagination
	)
	query := pageQuery(page, map[string]string{"search": q.Search, "category": q.Category, "sellerId": q.SellerID})
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/api/v1/products", query: query}, &out, &p)
	return out, p, err
}

// --- Generic actions and uploads ---

// Execute posts a to the generic action endpoint. ExpectedVersion travels in the body.
func (c *Client) Execute(ctx context.Context, a domain.Action) (*ActionResult, error) {
	return c.action(ctx, "/api/v1/admin/actions", a)
}

// FileUpload stores r as a product image and returns its public URL.
func (c *Client) FileUpload(ctx context.Context, r io.Reader, filename string) (string, error) {
	return c.upload(ctx, "", r, filename)
}

func (c *Client) upload(ctx context.Context, folder string, r io.Reader, filename string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(filename)))
	ct := mime.TypeByExtension(filepath.Ext(filename))
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var query url.Values
	if folder != "" {
		query = url.Values{"folder": {folder}}
	}
	var out struct {
		URL string `json:"url"`
	}
	req := request{method: http.MethodPost, path: "/api/v1/upload", query: query, body: &buf, contentType: mw.FormDataContentType()}
	if _, err := c.do(ctx, req, &out, nil); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) getURL(ctx context.Context, path string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if _, err := c.do(ctx, request{method: http.MethodGet, path: path}, &out, nil); err != nil {
		return "", err
	}
	return out.URL, nil
}

// reasonBody omits the body entirely when there is no reason.
func reasonBody(reason string) interface{} {
	if reason == "" {
		return nil
	}
	return map[string]string{"reason": reason}
}
