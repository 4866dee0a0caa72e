package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/internal/service"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
	"github.com/pesio-ai/be-procurement-settlement/pkg/idempotency"
	"github.com/pesio-ai/be-procurement-settlement/pkg/logger"
)

// HTTPHandler handles HTTP requests
type HTTPHandler struct {
	orders   OrderService
	budgets  BudgetService
	requests OrderRequestService
	idem     IdempotencyStore
	log      *logger.Logger
}

// NewHTTPHandler creates a new HTTP handler. idem may be nil, in which case
// Idempotency-Key headers are ignored.
func NewHTTPHandler(
	orders OrderService,
	budgets BudgetService,
	requests OrderRequestService,
	idem IdempotencyStore,
	log *logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		orders:   orders,
		budgets:  budgets,
		requests: requests,
		idem:     idem,
		log:      log,
	}
}

// Register mounts the API routes on r. Every route requires the identity
// headers.
func (h *HTTPHandler) Register(r gin.IRouter) {
	api := r.Group("/api/v1", Authenticate())

	api.POST("/orders", h.CreateOrder)
	api.GET("/orders", h.ListOrders)
	api.GET("/orders/:id", h.GetOrder)
	api.PATCH("/orders/:id/status", h.AdvanceOrderStatus)

	api.GET("/budgets/current", h.GetCurrentBudget)
	api.GET("/budgets/current/estimate", h.EstimateRemainingBudget)
	api.POST("/budgets/current/deductions", h.DeductBudget)
	api.GET("/budgets/:year/:month/ledger", h.ListLedgerEntries)
	api.PUT("/budgets/:year/:month", h.UpdateBudget)

	api.POST("/order-requests", h.CreateOrderRequest)
	api.GET("/order-requests", h.ListOrderRequests)
	api.GET("/order-requests/:id", h.GetOrderRequest)
	api.POST("/order-requests/:id/approve", h.ApproveOrderRequest)
	api.POST("/order-requests/:id/reject", h.RejectOrderRequest)
	api.DELETE("/order-requests/:id", h.DeleteOrderRequest)
}

// ── Orders ────────────────────────────────────────────────────────────────────

// CreateOrder handles order settlement. A repeated Idempotency-Key replays the
// first response instead of charging the budget again.
func (h *HTTPHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.InvalidInput("body", "invalid request body"))
		return
	}
	ident := identity(c)

	key := idempotency.Key(c.Request)
	scope := "orders:" + ident.UserID
	if key != "" && h.idem != nil {
		stored, err := h.idem.Begin(c.Request.Context(), scope, key)
		if err != nil {
			writeError(c, err)
			return
		}
		if stored != nil {
			c.Header("Idempotent-Replayed", "true")
			c.Data(stored.Status, "application/json; charset=utf-8", stored.Body)
			return
		}
	} else {
		key = ""
	}

	in := &service.CreateOrderInput{
		UserID:         ident.UserID,
		Role:           ident.Role,
		Items:          make([]service.OrderLine, 0, len(req.Items)),
		OrderRequestID: req.OrderRequestID,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, service.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), in)
	if err != nil {
		if key != "" {
			h.releaseKey(c.Request.Context(), scope, key)
		}
		writeError(c, err)
		return
	}

	body, err := json.Marshal(toOrderResponse(order))
	if err != nil {
		writeError(c, errors.Wrap(err, errors.ErrCodeInternal, "failed to encode order"))
		return
	}
	if key != "" {
		resp := &idempotency.Response{Status: http.StatusCreated, Body: body}
		if err := h.idem.Complete(c.Request.Context(), scope, key, resp); err != nil {
			h.log.Warn().Err(err).Str("order_id", order.ID).Msg("Failed to store idempotent response")
		}
	}
	c.Data(http.StatusCreated, "application/json; charset=utf-8", body)
}

func (h *HTTPHandler) releaseKey(ctx context.Context, scope, key string) {
	if err := h.idem.Abort(ctx, scope, key); err != nil {
		h.log.Warn().Err(err).Str("scope", scope).Msg("Failed to release idempotency key")
	}
}

// GetOrder handles get order HTTP requests
func (h *HTTPHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrderDetail(c.Request.Context(), identity(c).UserID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// ListOrders handles list orders HTTP requests
func (h *HTTPHandler) ListOrders(c *gin.Context) {
	var status *repository.OrderStatus
	if s := c.Query("status"); s != "" {
		st := repository.OrderStatus(strings.ToUpper(s))
		status = &st
	}
	page := pageFromQuery(c)

	orders, total, err := h.orders.ListOrders(c.Request.Context(), identity(c).UserID, status, page)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := listResponse[orderResponse]{Data: make([]orderResponse, 0, len(orders)), Total: total, Page: page.Page, PageSize: page.PageSize}
	for _, o := range orders {
		resp.Data = append(resp.Data, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, resp)
}

// AdvanceOrderStatus handles fulfillment status changes
func (h *HTTPHandler) AdvanceOrderStatus(c *gin.Context) {
	var req advanceOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.InvalidInput("status", "status is required"))
		return
	}
	ident := identity(c)

	order, err := h.orders.AdvanceOrderStatus(c.Request.Context(), &service.AdvanceOrderStatusInput{
		UserID:  ident.UserID,
		Role:    ident.Role,
		OrderID: c.Param("id"),
		Status:  repository.OrderStatus(strings.ToUpper(req.Status)),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// ── Budgets ───────────────────────────────────────────────────────────────────

// GetCurrentBudget handles get current budget HTTP requests
func (h *HTTPHandler) GetCurrentBudget(c *gin.Context) {
	budget, err := h.budgets.GetCurrentBudget(c.Request.Context(), identity(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// EstimateRemainingBudget handles budget projection requests
func (h *HTTPHandler) EstimateRemainingBudget(c *gin.Context) {
	expected, err := strconv.ParseInt(c.Query("expected_amount"), 10, 64)
	if err != nil {
		writeError(c, errors.InvalidInput("expected_amount", "expected_amount must be an integer"))
		return
	}

	remaining, err := h.budgets.EstimateRemainingBudget(c.Request.Context(), identity(c).UserID, expected)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"expected_amount":  expected,
		"remaining_amount": remaining,
		"sufficient":       remaining >= 0,
	})
}

// DeductBudget handles manual budget deductions
func (h *HTTPHandler) DeductBudget(c *gin.Context) {
	var req deductBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.InvalidInput("amount", "amount is required"))
		return
	}
	ident := identity(c)
	if !ident.Role.IsAdmin() {
		writeError(c, errors.Forbidden("only company administrators can deduct budget"))
		return
	}

	remaining, err := h.budgets.DeductBudget(c.Request.Context(), ident.UserID, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"remaining_amount": remaining})
}

// ListLedgerEntries handles ledger listing for one period
func (h *HTTPHandler) ListLedgerEntries(c *gin.Context) {
	year, month, ok := periodParams(c)
	if !ok {
		return
	}

	entries, err := h.budgets.ListLedgerEntries(c.Request.Context(), identity(c).UserID, year, month)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toLedgerResponse(entries)})
}

// UpdateBudget handles budget creation and overwrite for one period.
// Administrators manage their own company; super administrators may name any
// company.
func (h *HTTPHandler) UpdateBudget(c *gin.Context) {
	year, month, ok := periodParams(c)
	if !ok {
		return
	}
	var req updateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.InvalidInput("body", "initial_amount and current_amount are required"))
		return
	}

	ident := identity(c)
	if !ident.Role.IsAdmin() {
		writeError(c, errors.Forbidden("only company administrators can update budgets"))
		return
	}
	companyID := req.CompanyID
	if companyID == "" {
		companyID = ident.CompanyID
	}
	if companyID == "" {
		writeError(c, errors.InvalidInput("company_id", "company_id is required"))
		return
	}
	if companyID != ident.CompanyID && ident.Role != repository.RoleSuperAdmin {
		writeError(c, errors.Forbidden("cannot update the budget of another company"))
		return
	}

	budget, err := h.budgets.UpdateBudget(c.Request.Context(), &service.UpdateBudgetRequest{
		CompanyID:     companyID,
		Year:          year,
		Month:         month,
		InitialAmount: *req.InitialAmount,
		CurrentAmount: *req.CurrentAmount,
		UpdatedBy:     ident.UserID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// ── Order requests ────────────────────────────────────────────────────────────

// CreateOrderRequest handles create order request HTTP requests
func (h *HTTPHandler) CreateOrderRequest(c *gin.Context) {
	var req createOrderRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.InvalidInput("body", "invalid request body"))
		return
	}
	ident := identity(c)
	if ident.CompanyID == "" {
		writeError(c, errors.InvalidInput("company_id", HeaderCompanyID+" header is required"))
		return
	}

	in := &service.CreateOrderRequestInput{
		RequesterID: ident.UserID,
		CompanyID:   ident.CompanyID,
		Items:       make([]service.OrderRequestLine, 0, len(req.Items)),
		Notes:       req.Notes,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, service.OrderRequestLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Notes:     item.Notes,
		})
	}

	created, err := h.requests.CreateOrderRequest(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderRequestResponse(created))
}

// GetOrderRequest handles get order request HTTP requests
func (h *HTTPHandler) GetOrderRequest(c *gin.Context) {
	req, err := h.requests.GetOrderRequest(c.Request.Context(), c.Param("id"), identity(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderRequestResponse(req))
}

// ListOrderRequests handles list order requests HTTP requests
func (h *HTTPHandler) ListOrderRequests(c *gin.Context) {
	var status *repository.OrderRequestStatus
	if s := c.Query("status"); s != "" {
		st := repository.OrderRequestStatus(strings.ToUpper(s))
		status = &st
	}
	page := pageFromQuery(c)

	reqs, total, err := h.requests.ListOrderRequests(c.Request.Context(), identity(c).UserID, status, page)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := listResponse[orderRequestResponse]{Data: make([]orderRequestResponse, 0, len(reqs)), Total: total, Page: page.Page, PageSize: page.PageSize}
	for _, r := range reqs {
		resp.Data = append(resp.Data, toOrderRequestResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

// ApproveOrderRequest handles approve order request HTTP requests
func (h *HTTPHandler) ApproveOrderRequest(c *gin.Context) {
	h.resolveOrderRequest(c, h.requests.ApproveOrderRequest)
}

// RejectOrderRequest handles reject order request HTTP requests
func (h *HTTPHandler) RejectOrderRequest(c *gin.Context) {
	h.resolveOrderRequest(c, h.requests.RejectOrderRequest)
}

func (h *HTTPHandler) resolveOrderRequest(
	c *gin.Context,
	resolve func(ctx context.Context, in *service.ResolveOrderRequestInput) (*repository.OrderRequest, error),
) {
	var req resolveOrderRequestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, errors.InvalidInput("body", "invalid request body"))
			return
		}
	}

	resolved, err := resolve(c.Request.Context(), &service.ResolveOrderRequestInput{
		ID:         c.Param("id"),
		ResolverID: identity(c).UserID,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderRequestResponse(resolved))
}

// DeleteOrderRequest handles delete order request HTTP requests
func (h *HTTPHandler) DeleteOrderRequest(c *gin.Context) {
	if err := h.requests.DeleteOrderRequest(c.Request.Context(), c.Param("id"), identity(c).UserID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func pageFromQuery(c *gin.Context) service.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return service.Page{Page: page, PageSize: pageSize}
}

func periodParams(c *gin.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		writeError(c, errors.InvalidInput("year", "year must be an integer"))
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		writeError(c, errors.InvalidInput("month", "month must be an integer"))
		return 0, 0, false
	}
	return year, month, true
}
