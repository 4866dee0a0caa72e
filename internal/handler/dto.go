package handler

import (
	"time"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
)

// ── Requests ──────────────────────────────────────────────────────────────────

type orderLineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0,lte=2147483647"`
}

type createOrderRequest struct {
	Items          []orderLineRequest `json:"items" binding:"required,dive"`
	OrderRequestID *string            `json:"order_request_id"`
}

type advanceOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type deductBudgetRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

type updateBudgetRequest struct {
	CompanyID     string `json:"company_id"`
	InitialAmount *int64 `json:"initial_amount" binding:"required"`
	CurrentAmount *int64 `json:"current_amount" binding:"required"`
}

type orderRequestLineRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gt=0,lte=2147483647"`
	Notes     *string `json:"notes"`
}

type createOrderRequestRequest struct {
	Items []orderRequestLineRequest `json:"items" binding:"required,dive"`
	Notes *string                   `json:"notes"`
}

type resolveOrderRequestRequest struct {
	Notes *string `json:"notes"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

type orderItemResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
}

type orderResponse struct {
	ID             string              `json:"id"`
	OrderNumber    string              `json:"order_number"`
	CompanyID      string              `json:"company_id"`
	Status         string              `json:"status"`
	Subtotal       int64               `json:"subtotal"`
	ShippingFee    int64               `json:"shipping_fee"`
	TotalAmount    int64               `json:"total_amount"`
	ShippingMethod string              `json:"shipping_method"`
	OrderRequestID *string             `json:"order_request_id,omitempty"`
	CreatedBy      string              `json:"created_by"`
	UpdatedBy      string              `json:"updated_by"`
	RequestedBy    string              `json:"requested_by"`
	ShippedAt      *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time          `json:"delivered_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Items          []orderItemResponse `json:"items,omitempty"`
}

func toOrderResponse(o *repository.Order) orderResponse {
	resp := orderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		CompanyID:      o.CompanyID,
		Status:         string(o.Status),
		Subtotal:       o.Subtotal,
		ShippingFee:    o.ShippingFee,
		TotalAmount:    o.TotalAmount,
		ShippingMethod: o.ShippingMethod,
		OrderRequestID: o.OrderRequestID,
		CreatedBy:      o.CreatedByID,
		UpdatedBy:      o.UpdatedByID,
		RequestedBy:    o.RequestedByID,
		ShippedAt:      o.ShippedAt,
		DeliveredAt:    o.DeliveredAt,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	return resp
}

type budgetResponse struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"company_id"`
	Year          int       `json:"year"`
	Month         int       `json:"month"`
	InitialAmount int64     `json:"initial_amount"`
	CurrentAmount int64     `json:"current_amount"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toBudgetResponse(b *repository.Budget) budgetResponse {
	return budgetResponse{
		ID:            b.ID,
		CompanyID:     b.CompanyID,
		Year:          b.Year,
		Month:         b.Month,
		InitialAmount: b.InitialAmount,
		CurrentAmount: b.CurrentAmount,
		UpdatedAt:     b.UpdatedAt,
	}
}

type ledgerEntryResponse struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Amount       int64     `json:"amount"`
	BeforeAmount int64     `json:"before_amount"`
	AfterAmount  int64     `json:"after_amount"`
	Description  string    `json:"description"`
	ReferenceID  *string   `json:"reference_id,omitempty"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

func toLedgerResponse(entries []*repository.LedgerEntry) []ledgerEntryResponse {
	out := make([]ledgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ledgerEntryResponse{
			ID:           e.ID,
			Type:         string(e.Type),
			Amount:       e.Amount,
			BeforeAmount: e.BeforeAmount,
			AfterAmount:  e.AfterAmount,
			Description:  e.Description,
			ReferenceID:  e.ReferenceID,
			CreatedBy:    e.CreatedBy,
			CreatedAt:    e.CreatedAt,
		})
	}
	return out
}

type orderRequestItemResponse struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     int64   `json:"price"`
	Notes     *string `json:"notes,omitempty"`
}

type orderRequestResponse struct {
	ID          string                     `json:"id"`
	CompanyID   string                     `json:"company_id"`
	RequesterID string                     `json:"requester_id"`
	Status      string                     `json:"status"`
	TotalAmount int64                      `json:"total_amount"`
	ResolverID  *string                    `json:"resolver_id,omitempty"`
	ResolvedAt  *time.Time                 `json:"resolved_at,omitempty"`
	Notes       *string                    `json:"notes,omitempty"`
	CreatedAt   time.Time                  `json:"created_at"`
	Items       []orderRequestItemResponse `json:"items,omitempty"`
}

func toOrderRequestResponse(r *repository.OrderRequest) orderRequestResponse {
	resp := orderRequestResponse{
		ID:          r.ID,
		CompanyID:   r.CompanyID,
		RequesterID: r.RequesterID,
		Status:      string(r.Status),
		TotalAmount: r.TotalAmount,
		ResolverID:  r.ResolverID,
		ResolvedAt:  r.ResolvedAt,
		Notes:       r.Notes,
		CreatedAt:   r.CreatedAt,
	}
	for _, item := range r.Items {
		resp.Items = append(resp.Items, orderRequestItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Notes:     item.Notes,
		})
	}
	return resp
}

type listResponse[T any] struct {
	Data     []T   `json:"data"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}
