package main

import (
	"context"
	"time"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/internal/repository/memory"
)

// seedDemo fills an in-memory store with one company, two users, a small
// catalogue and a budget for the current month.
func seedDemo(store *memory.Store, now time.Time) {
	store.PutCompany(&repository.Company{
		ID:   "demo-company",
		Name: "Demo Corp",
		Address: &repository.Address{
			Zipcode: "04524",
			Line1:   "1 Demo Street",
			FeeZone: repository.FeeZoneStandard,
		},
	})
	store.PutUser(&repository.User{ID: "demo-admin", CompanyID: "demo-company", Name: "Demo Admin", Email: "admin@demo.test", Role: repository.RoleAdmin})
	store.PutUser(&repository.User{ID: "demo-user", CompanyID: "demo-company", Name: "Demo User", Email: "user@demo.test", Role: repository.RoleUser})

	store.PutProduct(&repository.Product{ID: "snack-chips", Name: "Potato Chips", Price: 1500})
	store.PutProduct(&repository.Product{ID: "snack-cookies", Name: "Choco Cookies", Price: 2200})
	store.PutProduct(&repository.Product{ID: "drink-juice", Name: "Orange Juice", Price: 1800})

	_ = store.Budgets().Create(context.Background(), &repository.Budget{
		ID:            "demo-budget",
		CompanyID:     "demo-company",
		Year:          now.UTC().Year(),
		Month:         int(now.UTC().Month()),
		InitialAmount: 1_000_000,
		CurrentAmount: 1_000_000,
	})
}
