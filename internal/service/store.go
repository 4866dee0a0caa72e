package service

import (
	"context"
	"time"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
)

// Transactor runs fn inside one atomic unit of work carried by the context
// handed to fn. Nested calls join the outer transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	GetUser(ctx context.Context, id string) (*repository.User, error)
	GetCompany(ctx context.Context, id string) (*repository.Company, error)
	ListAdminIDs(ctx context.Context, companyID string) ([]string, error)
}

type BudgetRepository interface {
	GetByPeriod(ctx context.Context, companyID string, year, month int) (*repository.Budget, error)
	GetByPeriodForUpdate(ctx context.Context, companyID string, year, month int) (*repository.Budget, error)
	Create(ctx context.Context, b *repository.Budget) error
	UpdateAmounts(ctx context.Context, b *repository.Budget) error
	UpdateCurrentAmount(ctx context.Context, id string, currentAmount int64) error
}

type LedgerRepository interface {
	Append(ctx context.Context, entry *repository.LedgerEntry) error
	ListByBudget(ctx context.Context, budgetID string) ([]*repository.LedgerEntry, error)
}

type ProductRepository interface {
	GetPrices(ctx context.Context, ids []string) (map[string]int64, error)
}

type CartRepository interface {
	ClearForUser(ctx context.Context, userID string) (int64, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *repository.Order) error
	GetByID(ctx context.Context, id string) (*repository.Order, error)
	ListByCompany(ctx context.Context, companyID string, status *repository.OrderStatus, limit, offset int) ([]*repository.Order, int64, error)
	UpdateFulfillment(ctx context.Context, order *repository.Order) error
	ExistsForRequest(ctx context.Context, orderRequestID string) (bool, error)
}

type OrderRequestRepository interface {
	Create(ctx context.Context, req *repository.OrderRequest) error
	GetByID(ctx context.Context, id string) (*repository.OrderRequest, error)
	GetByIDForUpdate(ctx context.Context, id string) (*repository.OrderRequest, error)
	Resolve(ctx context.Context, id string, status repository.OrderRequestStatus, resolverID string, notes *string, at time.Time) error
	Delete(ctx context.Context, id string) error
	ListByCompany(ctx context.Context, companyID string, status *repository.OrderRequestStatus, limit, offset int) ([]*repository.OrderRequest, int64, error)
}

type OutboxRepository interface {
	Insert(ctx context.Context, event *repository.OutboxEvent) error
}

// Notifier delivers order-request lifecycle events to interested users.
// Implementations must not fail the caller; delivery is best-effort.
type Notifier interface {
	OrderRequestCreated(ctx context.Context, req *repository.OrderRequest, adminIDs []string)
	OrderRequestResolved(ctx context.Context, req *repository.OrderRequest)
}

// Stores bundles the storage dependencies shared by the services.
type Stores struct {
	Tx       Transactor
	Users    UserRepository
	Budgets  BudgetRepository
	Ledger   LedgerRepository
	Products ProductRepository
	Carts    CartRepository
	Orders   OrderRepository
	Requests OrderRequestRepository
	Outbox   OutboxRepository
}

// ── Pagination ────────────────────────────────────────────────────────────────

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Page     int
	PageSize int
}

func (p Page) limitOffset() (int, int) {
	page, size := p.Page, p.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return size, (page - 1) * size
}
