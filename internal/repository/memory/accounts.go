package memory

import (
	"context"
	"sort"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

// ── Seeding ───────────────────────────────────────────────────────────────────

// PutCompany inserts or replaces a company.
func (s *Store) PutCompany(c *repository.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[c.ID] = cloneCompany(c)
}

// PutUser inserts or replaces a user.
func (s *Store) PutUser(u *repository.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
}

// PutProduct inserts or replaces a product.
func (s *Store) PutProduct(p *repository.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
}

// AddToCart adds quantity of a product to a user's cart.
func (s *Store) AddToCart(userID, productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.carts[userID] == nil {
		s.carts[userID] = make(map[string]int)
	}
	s.carts[userID][productID] += quantity
}

// CartItems returns a user's cart ordered by product id.
func (s *Store) CartItems(userID string) []repository.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]repository.CartItem, 0, len(s.carts[userID]))
	for productID, qty := range s.carts[userID] {
		items = append(items, repository.CartItem{UserID: userID, ProductID: productID, Quantity: qty})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return items
}

// ── Users and companies ───────────────────────────────────────────────────────

type UserRepository struct{ s *Store }

func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

func (r *UserRepository) GetUser(ctx context.Context, id string) (*repository.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, errors.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetCompany(ctx context.Context, id string) (*repository.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return nil, errors.NotFound("company", id)
	}
	return cloneCompany(c), nil
}

func (r *UserRepository) ListAdminIDs(ctx context.Context, companyID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]string, 0)
	for _, u := range r.s.users {
		if u.CompanyID == companyID && u.Role.IsAdmin() {
			ids = append(ids, u.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func cloneCompany(c *repository.Company) *repository.Company {
	cp := *c
	if c.Address != nil {
		addr := *c.Address
		cp.Address = &addr
	}
	return &cp
}

// ── Products and carts ────────────────────────────────────────────────────────

type ProductRepository struct{ s *Store }

func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }

func (r *ProductRepository) GetPrices(ctx context.Context, ids []string) (map[string]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prices := make(map[string]int64, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			prices[id] = p.Price
		}
	}
	return prices, nil
}

type CartRepository struct{ s *Store }

func (s *Store) Carts() *CartRepository { return &CartRepository{s: s} }

func (r *CartRepository) ClearForUser(ctx context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cart, ok := r.s.carts[userID]
	if !ok {
		return 0, nil
	}
	delete(r.s.carts, userID)

	r.s.onRollback(ctx, func() { r.s.carts[userID] = cart })
	return int64(len(cart)), nil
}
