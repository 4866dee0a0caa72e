package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
	"github.com/pesio-ai/be-procurement-settlement/pkg/logger"
	"github.com/pesio-ai/be-procurement-settlement/pkg/metrics"
)

// OrderService settles purchases against the company budget.
type OrderService struct {
	tx       Transactor
	users    UserRepository
	orders   OrderRepository
	requests OrderRequestRepository
	carts    CartRepository
	outbox   OutboxRepository
	prices   *PriceLookup
	budget   *BudgetService
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	stores Stores,
	budget *BudgetService,
	prices *PriceLookup,
	m *metrics.Metrics,
	log *logger.Logger,
) *OrderService {
	return &OrderService{
		tx:       stores.Tx,
		users:    stores.Users,
		orders:   stores.Orders,
		requests: stores.Requests,
		carts:    stores.Carts,
		outbox:   stores.Outbox,
		prices:   prices,
		budget:   budget,
		metrics:  m,
		log:      log,
	}
}

// OrderLine is one requested product and quantity.
type OrderLine struct {
	ProductID string
	Quantity  int
}

// CreateOrderInput represents a create order request
type CreateOrderInput struct {
	UserID string
	Role   repository.Role
	Items  []OrderLine
	// OrderRequestID optionally links an APPROVED order request this
	// purchase fulfils.
	OrderRequestID *string
}

// AdvanceOrderStatusInput represents a fulfillment status change
type AdvanceOrderStatusInput struct {
	UserID  string
	Role    repository.Role
	OrderID string
	Status  repository.OrderStatus
}

// ── Create ────────────────────────────────────────────────────────────────────

// CreateOrder prices the items live, charges shipping, deducts the total from
// the current-month budget and persists the order, all in one transaction.
// The purchaser's cart is cleared and an order.created event recorded in the
// same transaction.
func (s *OrderService) CreateOrder(ctx context.Context, in *CreateOrderInput) (*repository.Order, error) {
	if !in.Role.IsAdmin() {
		return nil, errors.Forbidden("only company administrators can place orders")
	}
	lines, err := mergeLines(in.Items)
	if err != nil {
		return nil, err
	}

	var (
		order     *repository.Order
		deductErr error
	)
	err = s.budget.retry.run(ctx, "order settlement", func(ctx context.Context) error {
		deductErr = nil

		user, err := s.users.GetUser(ctx, in.UserID)
		if err != nil {
			return err
		}
		company, err := s.users.GetCompany(ctx, user.CompanyID)
		if err != nil {
			return err
		}

		requestedBy := user.ID
		if in.OrderRequestID != nil {
			req, err := s.linkableRequest(ctx, *in.OrderRequestID, user.CompanyID)
			if err != nil {
				return err
			}
			requestedBy = req.RequesterID
		}

		ids := make([]string, len(lines))
		for i, l := range lines {
			ids[i] = l.ProductID
		}
		prices, err := s.prices.ResolvePrices(ctx, ids)
		if err != nil {
			return err
		}

		orderID := uuid.NewString()
		orderNumber := s.newOrderNumber()

		items := make([]*repository.OrderItem, 0, len(lines))
		var subtotal int64
		for _, l := range lines {
			price := prices[l.ProductID]
			if price > 0 && int64(l.Quantity) > (math.MaxInt64-subtotal)/price {
				return errors.InvalidInput("items", "order total is too large")
			}
			subtotal += price * int64(l.Quantity)
			items = append(items, &repository.OrderItem{
				ID:        uuid.NewString(),
				OrderID:   orderID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				Price:     price,
			})
		}

		quote, err := ComputeShippingFee(company.Address, subtotal)
		if err != nil {
			s.metrics.ShippingFallbacks.Inc()
			s.log.Warn().
				Err(err).
				Str("company_id", company.ID).
				Str("order_number", orderNumber).
				Int64("subtotal", subtotal).
				Msg("Shipping fee could not be computed, charging no shipping")
			quote = ShippingQuote{Fee: 0, Method: ShippingMethodUnresolved}
		}
		total := subtotal + quote.Fee

		if _, err := s.budget.withdraw(ctx, company.ID, total, withdrawal{
			createdBy:   user.ID,
			description: fmt.Sprintf("Order %s", orderNumber),
			referenceID: &orderID,
		}); err != nil {
			deductErr = err
			return err
		}

		order = &repository.Order{
			ID:             orderID,
			OrderNumber:    orderNumber,
			CompanyID:      company.ID,
			Status:         repository.OrderStatusPaid,
			Subtotal:       subtotal,
			ShippingFee:    quote.Fee,
			TotalAmount:    total,
			ShippingMethod: quote.Method,
			OrderRequestID: in.OrderRequestID,
			CreatedByID:    user.ID,
			UpdatedByID:    user.ID,
			RequestedByID:  requestedBy,
			Items:          items,
		}
		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}

		if _, err := s.carts.ClearForUser(ctx, user.ID); err != nil {
			return err
		}

		event, err := newOrderCreatedEvent(order, s.budget.now())
		if err != nil {
			return err
		}
		return insertEvent(ctx, s.outbox, event)
	})
	if err == nil || deductErr != nil {
		s.budget.observeDeduction(err)
	}
	if err != nil {
		return nil, err
	}

	s.metrics.OrdersCreated.Inc()
	s.metrics.OrderTotal.Observe(float64(order.TotalAmount))
	s.log.Info().
		Str("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("company_id", order.CompanyID).
		Int64("subtotal", order.Subtotal).
		Int64("shipping_fee", order.ShippingFee).
		Int64("total_amount", order.TotalAmount).
		Str("shipping_method", order.ShippingMethod).
		Msg("Order created")

	return order, nil
}

// linkableRequest locks and validates an order request an order is about to
// settle.
func (s *OrderService) linkableRequest(ctx context.Context, id, companyID string) (*repository.OrderRequest, error) {
	req, err := s.requests.GetByIDForUpdate(ctx, id)
	if errors.IsCode(err, errors.ErrCodeNotFound) {
		return nil, errors.InvalidInput("order_request_id", fmt.Sprintf("order request '%s' does not exist", id))
	}
	if err != nil {
		return nil, err
	}
	if req.CompanyID != companyID {
		return nil, errors.InvalidInput("order_request_id", "order request belongs to another company")
	}
	if req.Status != repository.OrderRequestApproved {
		return nil, errors.InvalidInput("order_request_id",
			fmt.Sprintf("cannot settle order request with status '%s'", req.Status))
	}

	settled, err := s.orders.ExistsForRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if settled {
		return nil, errors.Conflict(fmt.Sprintf("order request '%s' has already been settled", id))
	}
	return req, nil
}

// MaxLineQuantity is the largest quantity a single order or request line may
// carry. It matches the INTEGER quantity columns.
const MaxLineQuantity = math.MaxInt32

func validateQuantity(productID string, quantity int) error {
	if quantity <= 0 {
		return errors.InvalidInput("quantity", fmt.Sprintf("quantity for product '%s' must be positive", productID))
	}
	if quantity > MaxLineQuantity {
		return errors.InvalidInput("quantity", fmt.Sprintf("quantity for product '%s' cannot exceed %d", productID, MaxLineQuantity))
	}
	return nil
}

// mergeLines validates lines and sums quantities of repeated products,
// keeping first-seen order. Merged quantities obey the same bound as single
// lines.
func mergeLines(items []OrderLine) ([]OrderLine, error) {
	if len(items) == 0 {
		return nil, errors.InvalidInput("items", "order must have at least 1 item")
	}

	index := make(map[string]int, len(items))
	merged := make([]OrderLine, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.ProductID) == "" {
			return nil, errors.InvalidInput("product_id", "product id is required")
		}
		if err := validateQuantity(item.ProductID, item.Quantity); err != nil {
			return nil, err
		}
		if i, ok := index[item.ProductID]; ok {
			// both operands are <= MaxInt32, so the sum cannot wrap
			if err := validateQuantity(item.ProductID, merged[i].Quantity+item.Quantity); err != nil {
				return nil, err
			}
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

func (s *OrderService) newOrderNumber() string {
	day := s.budget.now().In(s.budget.loc).Format("20060102")
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", day, suffix)
}

// ── Reads ─────────────────────────────────────────────────────────────────────

// GetOrderDetail returns an order with its items. Orders of other companies
// are never visible.
func (s *OrderService) GetOrderDetail(ctx context.Context, userID, orderID string) (*repository.Order, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CompanyID != user.CompanyID {
		return nil, errors.Forbidden("order belongs to another company")
	}
	return order, nil
}

// ListOrders lists the orders of the user's company, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string, status *repository.OrderStatus, page Page) ([]*repository.Order, int64, error) {
	if status != nil && orderStatusRank(*status) < 0 {
		return nil, 0, errors.InvalidInput("status", fmt.Sprintf("unknown order status '%s'", *status))
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	limit, offset := page.limitOffset()
	return s.orders.ListByCompany(ctx, user.CompanyID, status, limit, offset)
}

// ── Fulfillment ───────────────────────────────────────────────────────────────

var orderStatusFlow = []repository.OrderStatus{
	repository.OrderStatusPaid,
	repository.OrderStatusPreparing,
	repository.OrderStatusShipped,
	repository.OrderStatusDelivered,
}

func orderStatusRank(status repository.OrderStatus) int {
	for i, st := range orderStatusFlow {
		if st == status {
			return i
		}
	}
	return -1
}

// AdvanceOrderStatus moves an order forward along
// PAID -> PREPARING -> SHIPPED -> DELIVERED. Amounts are never touched.
func (s *OrderService) AdvanceOrderStatus(ctx context.Context, in *AdvanceOrderStatusInput) (*repository.Order, error) {
	if !in.Role.IsAdmin() {
		return nil, errors.Forbidden("only company administrators can update order status")
	}
	target := orderStatusRank(in.Status)
	if target < 0 {
		return nil, errors.InvalidInput("status", fmt.Sprintf("unknown order status '%s'", in.Status))
	}

	var order *repository.Order
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.GetOrderDetail(ctx, in.UserID, in.OrderID)
		if err != nil {
			return err
		}

		if target <= orderStatusRank(order.Status) {
			return errors.InvalidInput("status",
				fmt.Sprintf("cannot move order from '%s' to '%s'", order.Status, in.Status))
		}

		now := s.budget.now().UTC()
		if target >= orderStatusRank(repository.OrderStatusShipped) && order.ShippedAt == nil {
			order.ShippedAt = &now
		}
		if in.Status == repository.OrderStatusDelivered {
			order.DeliveredAt = &now
		}
		order.Status = in.Status
		order.UpdatedByID = in.UserID
		return s.orders.UpdateFulfillment(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("order_id", order.ID).
		Str("status", string(order.Status)).
		Str("updated_by", in.UserID).
		Msg("Order status updated")

	return order, nil
}
