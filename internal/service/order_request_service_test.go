package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

func (f *fixture) pendingRequest(t *testing.T, requester string) *repository.OrderRequest {
	t.Helper()
	req, err := f.requests.CreateOrderRequest(context.Background(), &CreateOrderRequestInput{
		RequesterID: requester,
		CompanyID:   companyID,
		Items:       []OrderRequestLine{{ProductID: juiceID, Quantity: 2, Notes: ptr("cold please")}},
		Notes:       ptr("for the offsite"),
	})
	require.NoError(t, err)
	return req
}

func TestCreateOrderRequest(t *testing.T) {
	f := newFixture(t)
	f.seedBudget(t, companyID, 100000)

	req := f.pendingRequest(t, employeeID)

	assert.Equal(t, repository.OrderRequestPending, req.Status)
	assert.Equal(t, int64(60000), req.TotalAmount)
	require.Len(t, req.Items, 1)
	assert.Equal(t, int64(30000), req.Items[0].Price)
	assert.Nil(t, req.ResolverID)

	assert.Equal(t, int64(100000), f.currentAmount(t, companyID), "requests never reserve budget")

	require.Len(t, f.notifier.created, 1)
	assert.Equal(t, []string{adminID}, f.notifier.admins[0])
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OrderRequests.WithLabelValues("created")))
}

func TestCreateOrderRequest_PriceSnapshotIsKept(t *testing.T) {
	f := newFixture(t)
	req := f.pendingRequest(t, employeeID)

	f.store.PutProduct(&repository.Product{ID: juiceID, Name: "Juice", Price: 99000})

	got, err := f.requests.GetOrderRequest(context.Background(), req.ID, employeeID)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), got.TotalAmount)
	assert.Equal(t, int64(30000), got.Items[0].Price)
}

func TestCreateOrderRequest_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   *CreateOrderRequestInput
		code errors.Code
	}{
		{"no items", &CreateOrderRequestInput{RequesterID: employeeID, CompanyID: companyID}, errors.ErrCodeInvalidInput},
		{"negative quantity", &CreateOrderRequestInput{RequesterID: employeeID, CompanyID: companyID, Items: []OrderRequestLine{{ProductID: chipsID, Quantity: -1}}}, errors.ErrCodeInvalidInput},
		{"unknown product", &CreateOrderRequestInput{RequesterID: employeeID, CompanyID: companyID, Items: []OrderRequestLine{{ProductID: "p-ghost", Quantity: 1}}}, errors.ErrCodeNotFound},
		{"foreign company", &CreateOrderRequestInput{RequesterID: employeeID, CompanyID: otherCompanyID, Items: []OrderRequestLine{{ProductID: chipsID, Quantity: 1}}}, errors.ErrCodeForbidden},
		{"unknown requester", &CreateOrderRequestInput{RequesterID: "u-ghost", CompanyID: companyID, Items: []OrderRequestLine{{ProductID: chipsID, Quantity: 1}}}, errors.ErrCodeNotFound},
		{"quantity above column range", &CreateOrderRequestInput{RequesterID: employeeID, CompanyID: companyID, Items: []OrderRequestLine{{ProductID: chipsID, Quantity: MaxLineQuantity + 1}}}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.requests.CreateOrderRequest(ctx, tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
	assert.Empty(t, f.notifier.created)
}

func TestApproveOrderRequest(t *testing.T) {
	f := newFixture(t)
	req := f.pendingRequest(t, employeeID)
	ctx := context.Background()

	approved, err := f.requests.ApproveOrderRequest(ctx, &ResolveOrderRequestInput{
		ID: req.ID, ResolverID: adminID, Notes: ptr("approved for friday"),
	})
	require.NoError(t, err)
	assert.Equal(t, repository.OrderRequestApproved, approved.Status)
	require.NotNil(t, approved.ResolverID)
	assert.Equal(t, adminID, *approved.ResolverID)
	require.NotNil(t, approved.ResolvedAt)
	assert.Equal(t, fixedNow, *approved.ResolvedAt)

	stored, err := f.requests.GetOrderRequest(ctx, req.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, repository.OrderRequestApproved, stored.Status)
	assert.Equal(t, "approved for friday", *stored.Notes)

	require.Len(t, f.notifier.resolved, 1)
	assert.Equal(t, repository.OrderRequestApproved, f.notifier.resolved[0].Status)
}

func TestResolveOrderRequest_FiresOnce(t *testing.T) {
	f := newFixture(t)
	req := f.pendingRequest(t, employeeID)
	ctx := context.Background()

	_, err := f.requests.RejectOrderRequest(ctx, &ResolveOrderRequestInput{ID: req.ID, ResolverID: adminID})
	require.NoError(t, err)

	_, err = f.requests.ApproveOrderRequest(ctx, &ResolveOrderRequestInput{ID: req.ID, ResolverID: adminID})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
	assert.Contains(t, err.Error(), "cannot approve order request with status 'REJECTED'")

	_, err = f.requests.RejectOrderRequest(ctx, &ResolveOrderRequestInput{ID: req.ID, ResolverID: adminID})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))

	stored, err := f.requests.GetOrderRequest(ctx, req.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, repository.OrderRequestRejected, stored.Status)
	assert.Len(t, f.notifier.resolved, 1)
}

func TestResolveOrderRequest_Authorization(t *testing.T) {
	f := newFixture(t)
	req := f.pendingRequest(t, employeeID)
	ctx := context.Background()

	_, err := f.requests.ApproveOrderRequest(ctx, &ResolveOrderRequestInput{ID: req.ID, ResolverID: colleagueID})
	assert.True(t, errors.IsCode(err, errors.ErrCodeForbidden))

	_, err = f.requests.ApproveOrderRequest(ctx, &ResolveOrderRequestInput{ID: req.ID, ResolverID: otherAdminID})
	assert.True(t, errors.IsCode(err, errors.ErrCodeForbidden))

	_, err = f.requests.ApproveOrderRequest(ctx, &ResolveOrderRequestInput{ID: "req-ghost", ResolverID: adminID})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))

	stored, err := f.requests.GetOrderRequest(ctx, req.ID, employeeID)
	require.NoError(t, err)
	assert.Equal(t, repository.OrderRequestPending, stored.Status)
	assert.Empty(t, f.notifier.resolved)
}

func TestDeleteOrderRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("requester deletes pending", func(t *testing.T) {
		f := newFixture(t)
		req := f.pendingRequest(t, employeeID)
		require.NoError(t, f.requests.DeleteOrderRequest(ctx, req.ID, employeeID))

		_, err := f.requests.GetOrderRequest(ctx, req.ID, employeeID)
		assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	})

	t.Run("admin deletes pending", func(t *testing.T) {
		f := newFixture(t)
		req := f.pendingRequest(t, employeeID)
		assert.NoError(t, f.requests.DeleteOrderRequest(ctx, req.ID, adminID))
	})

	t.Run("colleague cannot delete", func(t *testing.T) {
		f := newFixture(t)
		req := f.pendingRequest(t, employeeID)
		err := f.requests.DeleteOrderRequest(ctx, req.ID, colleagueID)
		assert.True(t, errors.IsCode(err, errors.ErrCodeForbidden))
	})

	t.Run("admin of another company cannot delete", func(t *testing.T) {
		f := newFixture(t)
		req := f.pendingRequest(t, employeeID)
		err := f.requests.DeleteOrderRequest(ctx, req.ID, otherAdminID)
		assert.True(t, errors.IsCode(err, errors.ErrCodeForbidden))
	})

	t.Run("resolved requests are kept", func(t *testing.T) {
		f := newFixture(t)
		req := f.pendingRequest(t, employeeID)
		_, err := f.requests.ApproveOrderRequest(ctx, &ResolveOrderRequestInput{ID: req.ID, ResolverID: adminID})
		require.NoError(t, err)

		err = f.requests.DeleteOrderRequest(ctx, req.ID, employeeID)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
	})

	t.Run("unknown request", func(t *testing.T) {
		f := newFixture(t)
		err := f.requests.DeleteOrderRequest(ctx, "req-ghost", adminID)
		assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	})
}

func TestListOrderRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.pendingRequest(t, employeeID)
	f.pendingRequest(t, colleagueID)
	_, err := f.requests.ApproveOrderRequest(ctx, &ResolveOrderRequestInput{ID: first.ID, ResolverID: adminID})
	require.NoError(t, err)

	all, total, err := f.requests.ListOrderRequests(ctx, adminID, nil, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	pending, total, err := f.requests.ListOrderRequests(ctx, adminID, ptr(repository.OrderRequestPending), Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, colleagueID, pending[0].RequesterID)

	foreign, _, err := f.requests.ListOrderRequests(ctx, otherAdminID, nil, Page{})
	require.NoError(t, err)
	assert.Empty(t, foreign)

	_, _, err = f.requests.ListOrderRequests(ctx, adminID, ptr(repository.OrderRequestStatus("LOST")), Page{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
}

func TestGetOrderRequest_ScopedToCompany(t *testing.T) {
	f := newFixture(t)
	req := f.pendingRequest(t, employeeID)

	_, err := f.requests.GetOrderRequest(context.Background(), req.ID, otherAdminID)
	assert.True(t, errors.IsCode(err, errors.ErrCodeForbidden))
}
