package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/pesio-ai/be-procurement-settlement/pkg/database"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

// UserRepository reads users and their companies. Both are owned by the
// account service; settlement only reads them.
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetUser retrieves a user by ID
func (r *UserRepository) GetUser(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, company_id, name, email, role, created_at
		FROM users
		WHERE id = $1
	`

	u := &User{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.CompanyID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("user", id)
	}
	if err != nil {
		return nil, database.Wrap(err, "failed to get user")
	}
	return u, nil
}

// GetCompany retrieves a company with its address. Address is nil when no
// zipcode has been registered.
func (r *UserRepository) GetCompany(ctx context.Context, id string) (*Company, error) {
	query := `
		SELECT id, name, zipcode, address_line1, address_line2, fee_zone,
		       created_at, updated_at
		FROM companies
		WHERE id = $1
	`

	var (
		c       Company
		zipcode *string
		line1   *string
		line2   *string
		feeZone *string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&zipcode,
		&line1,
		&line2,
		&feeZone,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("company", id)
	}
	if err != nil {
		return nil, database.Wrap(err, "failed to get company")
	}

	if zipcode != nil {
		addr := &Address{Zipcode: *zipcode, Line2: line2, FeeZone: FeeZoneStandard}
		if line1 != nil {
			addr.Line1 = *line1
		}
		if feeZone != nil {
			addr.FeeZone = FeeZone(*feeZone)
		}
		c.Address = addr
	}
	return &c, nil
}

// ListAdminIDs returns the ids of every admin of a company.
func (r *UserRepository) ListAdminIDs(ctx context.Context, companyID string) ([]string, error) {
	query := `
		SELECT id
		FROM users
		WHERE company_id = $1 AND role IN ('ADMIN', 'SUPERADMIN')
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, database.Wrap(err, "failed to list admins")
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, database.Wrap(err, "failed to scan admins")
	}
	return ids, nil
}
