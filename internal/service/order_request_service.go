package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
	"github.com/pesio-ai/be-procurement-settlement/pkg/logger"
	"github.com/pesio-ai/be-procurement-settlement/pkg/metrics"
)

// OrderRequestService runs the PENDING -> APPROVED | REJECTED workflow.
// Approval is an administrative signal only; it never touches the budget.
type OrderRequestService struct {
	tx       Transactor
	users    UserRepository
	requests OrderRequestRepository
	prices   *PriceLookup
	notifier Notifier
	now      func() time.Time
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// NewOrderRequestService creates a new order request service
func NewOrderRequestService(
	stores Stores,
	prices *PriceLookup,
	notifier Notifier,
	now func() time.Time,
	m *metrics.Metrics,
	log *logger.Logger,
) *OrderRequestService {
	if now == nil {
		now = time.Now
	}
	return &OrderRequestService{
		tx:       stores.Tx,
		users:    stores.Users,
		requests: stores.Requests,
		prices:   prices,
		notifier: notifier,
		now:      now,
		metrics:  m,
		log:      log,
	}
}

// OrderRequestLine is one requested product.
type OrderRequestLine struct {
	ProductID string
	Quantity  int
	Notes     *string
}

// CreateOrderRequestInput represents a create order request request
type CreateOrderRequestInput struct {
	RequesterID string
	CompanyID   string
	Items       []OrderRequestLine
	Notes       *string
}

// ResolveOrderRequestInput represents an approve or reject decision
type ResolveOrderRequestInput struct {
	ID         string
	ResolverID string
	Notes      *string
}

// ── Create ────────────────────────────────────────────────────────────────────

// CreateOrderRequest snapshots live prices into a new PENDING request. The
// total is an estimate; settlement re-prices the items.
func (s *OrderRequestService) CreateOrderRequest(ctx context.Context, in *CreateOrderRequestInput) (*repository.OrderRequest, error) {
	if len(in.Items) == 0 {
		return nil, errors.InvalidInput("items", "order request must have at least 1 item")
	}
	ids := make([]string, 0, len(in.Items))
	for _, item := range in.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return nil, errors.InvalidInput("product_id", "product id is required")
		}
		if err := validateQuantity(item.ProductID, item.Quantity); err != nil {
			return nil, err
		}
		ids = append(ids, item.ProductID)
	}

	requester, err := s.users.GetUser(ctx, in.RequesterID)
	if err != nil {
		return nil, err
	}
	if requester.CompanyID != in.CompanyID {
		return nil, errors.Forbidden("requester does not belong to this company")
	}

	prices, err := s.prices.ResolvePrices(ctx, ids)
	if err != nil {
		return nil, err
	}

	req := &repository.OrderRequest{
		ID:          uuid.NewString(),
		CompanyID:   in.CompanyID,
		RequesterID: in.RequesterID,
		Status:      repository.OrderRequestPending,
		Notes:       in.Notes,
		Items:       make([]*repository.OrderRequestItem, 0, len(in.Items)),
	}
	for _, item := range in.Items {
		price := prices[item.ProductID]
		if price > 0 && int64(item.Quantity) > (math.MaxInt64-req.TotalAmount)/price {
			return nil, errors.InvalidInput("items", "order request total is too large")
		}
		req.TotalAmount += price * int64(item.Quantity)
		req.Items = append(req.Items, &repository.OrderRequestItem{
			ID:             uuid.NewString(),
			OrderRequestID: req.ID,
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			Price:          price,
			Notes:          item.Notes,
		})
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.metrics.OrderRequests.WithLabelValues("created").Inc()
	s.log.Info().
		Str("order_request_id", req.ID).
		Str("company_id", req.CompanyID).
		Str("requester_id", req.RequesterID).
		Int64("total_amount", req.TotalAmount).
		Int("items", len(req.Items)).
		Msg("Order request created")

	adminIDs, err := s.users.ListAdminIDs(ctx, req.CompanyID)
	if err != nil {
		s.log.Warn().Err(err).Str("order_request_id", req.ID).Msg("Failed to list admins for notification")
	} else {
		s.notifier.OrderRequestCreated(ctx, req, adminIDs)
	}

	return req, nil
}

// ── Approve / Reject ──────────────────────────────────────────────────────────

// ApproveOrderRequest marks a PENDING request APPROVED. It fires once; any
// later approve or reject fails with INVALID_INPUT.
func (s *OrderRequestService) ApproveOrderRequest(ctx context.Context, in *ResolveOrderRequestInput) (*repository.OrderRequest, error) {
	return s.resolve(ctx, in, repository.OrderRequestApproved)
}

// RejectOrderRequest marks a PENDING request REJECTED.
func (s *OrderRequestService) RejectOrderRequest(ctx context.Context, in *ResolveOrderRequestInput) (*repository.OrderRequest, error) {
	return s.resolve(ctx, in, repository.OrderRequestRejected)
}

func (s *OrderRequestService) resolve(ctx context.Context, in *ResolveOrderRequestInput, status repository.OrderRequestStatus) (*repository.OrderRequest, error) {
	var req *repository.OrderRequest
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.requests.GetByIDForUpdate(ctx, in.ID)
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return errors.InvalidInput("id", fmt.Sprintf("order request '%s' does not exist", in.ID))
		}
		if err != nil {
			return err
		}
		if req.Status != repository.OrderRequestPending {
			return errors.InvalidInput("status",
				fmt.Sprintf("cannot %s order request with status '%s'", verbFor(status), req.Status))
		}

		resolver, err := s.users.GetUser(ctx, in.ResolverID)
		if err != nil {
			return err
		}
		if !resolver.Role.IsAdmin() || resolver.CompanyID != req.CompanyID {
			return errors.Forbidden("only administrators of the requesting company can resolve order requests")
		}

		at := s.now().UTC()
		if err := s.requests.Resolve(ctx, req.ID, status, resolver.ID, in.Notes, at); err != nil {
			return err
		}

		req.Status = status
		req.ResolverID = &resolver.ID
		req.ResolvedAt = &at
		if in.Notes != nil {
			req.Notes = in.Notes
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderRequests.WithLabelValues(strings.ToLower(string(status))).Inc()
	s.log.Info().
		Str("order_request_id", req.ID).
		Str("status", string(status)).
		Str("resolver_id", in.ResolverID).
		Msg("Order request resolved")

	s.notifier.OrderRequestResolved(ctx, req)
	return req, nil
}

func verbFor(status repository.OrderRequestStatus) string {
	if status == repository.OrderRequestRejected {
		return "reject"
	}
	return "approve"
}

// ── Delete ────────────────────────────────────────────────────────────────────

// DeleteOrderRequest removes a PENDING request and its items. Only the
// requester or an administrator of the same company may delete it.
func (s *OrderRequestService) DeleteOrderRequest(ctx context.Context, id, actorID string) error {
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		req, err := s.requests.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if req.Status != repository.OrderRequestPending {
			return errors.InvalidInput("status",
				fmt.Sprintf("cannot delete order request with status '%s'", req.Status))
		}

		actor, err := s.users.GetUser(ctx, actorID)
		if err != nil {
			return err
		}
		isAdmin := actor.Role.IsAdmin() && actor.CompanyID == req.CompanyID
		if actor.ID != req.RequesterID && !isAdmin {
			return errors.Forbidden("only the requester or a company administrator can delete this order request")
		}
		return s.requests.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.metrics.OrderRequests.WithLabelValues("deleted").Inc()
	s.log.Info().
		Str("order_request_id", id).
		Str("deleted_by", actorID).
		Msg("Order request deleted")
	return nil
}

// ── Query helpers ─────────────────────────────────────────────────────────────

// GetOrderRequest returns a request with its items, scoped to the user's company.
func (s *OrderRequestService) GetOrderRequest(ctx context.Context, id, userID string) (*repository.OrderRequest, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CompanyID != user.CompanyID {
		return nil, errors.Forbidden("order request belongs to another company")
	}
	return req, nil
}

// ListOrderRequests lists requests of the user's company, newest first.
func (s *OrderRequestService) ListOrderRequests(ctx context.Context, userID string, status *repository.OrderRequestStatus, page Page) ([]*repository.OrderRequest, int64, error) {
	if status != nil {
		switch *status {
		case repository.OrderRequestPending, repository.OrderRequestApproved, repository.OrderRequestRejected:
		default:
			return nil, 0, errors.InvalidInput("status", fmt.Sprintf("unknown order request status '%s'", *status))
		}
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	limit, offset := page.limitOffset()
	return s.requests.ListByCompany(ctx, user.CompanyID, status, limit, offset)
}
