package handler

import (
	"context"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/internal/service"
	"github.com/pesio-ai/be-procurement-settlement/pkg/idempotency"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

// OrderService is the order settlement surface used by the HTTP layer.
type OrderService interface {
	CreateOrder(ctx context.Context, in *service.CreateOrderInput) (*repository.Order, error)
	GetOrderDetail(ctx context.Context, userID, orderID string) (*repository.Order, error)
	ListOrders(ctx context.Context, userID string, status *repository.OrderStatus, page service.Page) ([]*repository.Order, int64, error)
	AdvanceOrderStatus(ctx context.Context, in *service.AdvanceOrderStatusInput) (*repository.Order, error)
}

// BudgetService is the budget ledger surface used by the HTTP layer.
type BudgetService interface {
	DeductBudget(ctx context.Context, userID string, amount int64) (int64, error)
	EstimateRemainingBudget(ctx context.Context, userID string, expectedAmount int64) (int64, error)
	GetCurrentBudget(ctx context.Context, userID string) (*repository.Budget, error)
	ListLedgerEntries(ctx context.Context, userID string, year, month int) ([]*repository.LedgerEntry, error)
	UpdateBudget(ctx context.Context, req *service.UpdateBudgetRequest) (*repository.Budget, error)
}

// OrderRequestService is the order request workflow surface used by the HTTP layer.
type OrderRequestService interface {
	CreateOrderRequest(ctx context.Context, in *service.CreateOrderRequestInput) (*repository.OrderRequest, error)
	ApproveOrderRequest(ctx context.Context, in *service.ResolveOrderRequestInput) (*repository.OrderRequest, error)
	RejectOrderRequest(ctx context.Context, in *service.ResolveOrderRequestInput) (*repository.OrderRequest, error)
	DeleteOrderRequest(ctx context.Context, id, actorID string) error
	GetOrderRequest(ctx context.Context, id, userID string) (*repository.OrderRequest, error)
	ListOrderRequests(ctx context.Context, userID string, status *repository.OrderRequestStatus, page service.Page) ([]*repository.OrderRequest, int64, error)
}

// IdempotencyStore reserves Idempotency-Key values and replays stored responses.
type IdempotencyStore interface {
	Begin(ctx context.Context, scope, key string) (*idempotency.Response, error)
	Complete(ctx context.Context, scope, key string, resp *idempotency.Response) error
	Abort(ctx context.Context, scope, key string) error
}

var (
	_ OrderService        = (*service.OrderService)(nil)
	_ BudgetService       = (*service.BudgetService)(nil)
	_ OrderRequestService = (*service.OrderRequestService)(nil)
	_ IdempotencyStore    = (*idempotency.RedisStore)(nil)
)
