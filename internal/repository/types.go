package repository

import (
	"encoding/json"
	"time"
)

// ── Companies and users ──────────────────────────────────────────────────────

// FeeZone classifies a company address for shipping.
type FeeZone string

const (
	FeeZoneStandard     FeeZone = "STANDARD"
	FeeZoneIsolated     FeeZone = "ISOLATED"
	FeeZoneRemoteIsland FeeZone = "REMOTE_ISLAND"
)

// Address is the registered billing/shipping address of a company.
type Address struct {
	Zipcode string
	Line1   string
	Line2   *string
	FeeZone FeeZone
}

// Company owns budgets, orders and order requests.
type Company struct {
	ID        string
	Name      string
	Address   *Address // nil when the company never registered an address
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role is a user's authority inside their company.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// IsAdmin reports whether the role may settle orders and resolve requests.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type User struct {
	ID        string
	CompanyID string
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
}

// ── Budgets ──────────────────────────────────────────────────────────────────

// Budget is the spendable pool of one company for one calendar month.
type Budget struct {
	ID            string
	CompanyID     string
	Year          int
	Month         int
	InitialAmount int64
	CurrentAmount int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LedgerEntryType is the kind of budget movement.
type LedgerEntryType string

const LedgerEntryWithdrawal LedgerEntryType = "WITHDRAWAL"

// LedgerEntry is one immutable budget movement. AfterAmount always equals
// BeforeAmount + Amount.
type LedgerEntry struct {
	ID           string
	BudgetID     string
	Type         LedgerEntryType
	Amount       int64 // signed; negative for withdrawals
	BeforeAmount int64
	AfterAmount  int64
	Description  string
	ReferenceID  *string // order id for settlement withdrawals
	CreatedBy    string
	CreatedAt    time.Time
}

// ── Products and carts ───────────────────────────────────────────────────────

type Product struct {
	ID         string
	Name       string
	Price      int64
	CategoryID *string
	ImageURL   *string
}

type CartItem struct {
	UserID    string
	ProductID string
	Quantity  int
}

// ── Order requests ───────────────────────────────────────────────────────────

type OrderRequestStatus string

const (
	OrderRequestPending  OrderRequestStatus = "PENDING"
	OrderRequestApproved OrderRequestStatus = "APPROVED"
	OrderRequestRejected OrderRequestStatus = "REJECTED"
)

// OrderRequest is an employee's ask for an admin to buy something. Its
// TotalAmount is the price snapshot taken at request time and is only an
// estimate of what settlement will charge.
type OrderRequest struct {
	ID          string
	CompanyID   string
	RequesterID string
	Status      OrderRequestStatus
	TotalAmount int64
	ResolverID  *string
	ResolvedAt  *time.Time
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Items       []*OrderRequestItem
}

type OrderRequestItem struct {
	ID             string
	OrderRequestID string
	ProductID      string
	Quantity       int
	Price          int64
	Notes          *string
}

// ── Orders ───────────────────────────────────────────────────────────────────

type OrderStatus string

const (
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

// Order is a settled purchase. Amounts are fixed at creation.
type Order struct {
	ID             string
	OrderNumber    string
	CompanyID      string
	Status         OrderStatus
	Subtotal       int64
	ShippingFee    int64
	TotalAmount    int64
	ShippingMethod string
	OrderRequestID *string
	CreatedByID    string
	UpdatedByID    string
	RequestedByID  string
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Items          []*OrderItem
}

type OrderItem struct {
	ID          string
	OrderID     string
	ProductID   string
	ProductName string // filled on reads
	Quantity    int
	Price       int64
}

// ── Outbox ───────────────────────────────────────────────────────────────────

// OutboxEvent is a domain event stored with the business rows that caused it
// and relayed to the message broker afterwards.
type OutboxEvent struct {
	ID        int64
	EventID   string
	EventType string // e.g. order.created
	Key       string // aggregate id, used as the partition key
	Payload   json.RawMessage
	CreatedAt time.Time
	SentAt    *time.Time
}
