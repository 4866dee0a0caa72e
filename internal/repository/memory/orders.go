package memory

import (
	"context"
	"sort"
	"time"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

// ── Orders ────────────────────────────────────────────────────────────────────

type OrderRepository struct{ s *Store }

func (s *Store) Orders() *OrderRepository { return &OrderRepository{s: s} }

func (r *OrderRepository) Create(ctx context.Context, order *repository.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if order.OrderRequestID != nil {
		if _, taken := r.s.orderByRequest[*order.OrderRequestID]; taken {
			return errors.Conflict("order request has already been settled")
		}
	}
	for _, item := range order.Items {
		if _, ok := r.s.products[item.ProductID]; !ok {
			return errors.New(errors.ErrCodeInternal, "order item references unknown product "+item.ProductID)
		}
	}

	now := r.s.now()
	order.CreatedAt, order.UpdatedAt = now, now
	for _, item := range order.Items {
		item.OrderID = order.ID
	}
	r.s.orders[order.ID] = cloneOrder(order)
	if order.OrderRequestID != nil {
		r.s.orderByRequest[*order.OrderRequestID] = order.ID
	}

	r.s.onRollback(ctx, func() {
		delete(r.s.orders, order.ID)
		if order.OrderRequestID != nil {
			delete(r.s.orderByRequest, *order.OrderRequestID)
		}
	})
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*repository.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, errors.NotFound("order", id)
	}
	cp := cloneOrder(o)
	for _, item := range cp.Items {
		if p, ok := r.s.products[item.ProductID]; ok {
			item.ProductName = p.Name
		}
	}
	return cp, nil
}

func (r *OrderRepository) ListByCompany(ctx context.Context, companyID string, status *repository.OrderStatus, limit, offset int) ([]*repository.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := make([]*repository.Order, 0)
	for _, o := range r.s.orders {
		if o.CompanyID != companyID || (status != nil && o.Status != *status) {
			continue
		}
		cp := cloneOrder(o)
		cp.Items = nil
		matched = append(matched, cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].OrderNumber > matched[j].OrderNumber
	})
	return paginate(matched, limit, offset), int64(len(matched)), nil
}

func (r *OrderRepository) UpdateFulfillment(ctx context.Context, order *repository.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.orders[order.ID]
	if !ok {
		return errors.NotFound("order", order.ID)
	}
	prev := *stored

	stored.Status = order.Status
	stored.ShippedAt = order.ShippedAt
	stored.DeliveredAt = order.DeliveredAt
	stored.UpdatedByID = order.UpdatedByID
	stored.UpdatedAt = r.s.now()
	order.UpdatedAt = stored.UpdatedAt

	r.s.onRollback(ctx, func() { *stored = prev })
	return nil
}

func (r *OrderRepository) ExistsForRequest(ctx context.Context, orderRequestID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.orderByRequest[orderRequestID]
	return ok, nil
}

func cloneOrder(o *repository.Order) *repository.Order {
	cp := *o
	cp.Items = make([]*repository.OrderItem, len(o.Items))
	for i, item := range o.Items {
		it := *item
		cp.Items[i] = &it
	}
	return &cp
}

// ── Order requests ────────────────────────────────────────────────────────────

type OrderRequestRepository struct{ s *Store }

func (s *Store) OrderRequests() *OrderRequestRepository { return &OrderRequestRepository{s: s} }

func (r *OrderRequestRepository) Create(ctx context.Context, req *repository.OrderRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	req.CreatedAt, req.UpdatedAt = now, now
	for _, item := range req.Items {
		item.OrderRequestID = req.ID
	}
	r.s.requests[req.ID] = cloneOrderRequest(req)

	r.s.onRollback(ctx, func() { delete(r.s.requests, req.ID) })
	return nil
}

func (r *OrderRequestRepository) GetByID(ctx context.Context, id string) (*repository.OrderRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.get(id)
}

func (r *OrderRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (*repository.OrderRequest, error) {
	if err := r.s.lockRow(ctx, "order_request/"+id); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.get(id)
}

func (r *OrderRequestRepository) get(id string) (*repository.OrderRequest, error) {
	req, ok := r.s.requests[id]
	if !ok {
		return nil, errors.NotFound("order request", id)
	}
	return cloneOrderRequest(req), nil
}

func (r *OrderRequestRepository) Resolve(ctx context.Context, id string, status repository.OrderRequestStatus, resolverID string, notes *string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.requests[id]
	if !ok || stored.Status != repository.OrderRequestPending {
		return errors.InvalidInput("status", "order request is not pending")
	}
	prev := *stored

	stored.Status = status
	stored.ResolverID = &resolverID
	resolvedAt := at
	stored.ResolvedAt = &resolvedAt
	if notes != nil {
		stored.Notes = notes
	}
	stored.UpdatedAt = r.s.now()

	r.s.onRollback(ctx, func() { *stored = prev })
	return nil
}

func (r *OrderRequestRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.requests[id]
	if !ok || stored.Status != repository.OrderRequestPending {
		return errors.InvalidInput("status", "only pending order requests can be deleted")
	}
	delete(r.s.requests, id)

	r.s.onRollback(ctx, func() { r.s.requests[id] = stored })
	return nil
}

func (r *OrderRequestRepository) ListByCompany(ctx context.Context, companyID string, status *repository.OrderRequestStatus, limit, offset int) ([]*repository.OrderRequest, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := make([]*repository.OrderRequest, 0)
	for _, req := range r.s.requests {
		if req.CompanyID != companyID || (status != nil && req.Status != *status) {
			continue
		}
		cp := cloneOrderRequest(req)
		cp.Items = nil
		matched = append(matched, cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return paginate(matched, limit, offset), int64(len(matched)), nil
}

func cloneOrderRequest(req *repository.OrderRequest) *repository.OrderRequest {
	cp := *req
	cp.Items = make([]*repository.OrderRequestItem, len(req.Items))
	for i, item := range req.Items {
		it := *item
		cp.Items[i] = &it
	}
	return &cp
}

func paginate[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return all[:0]
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}
