package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/betterwealth/workshop-booking/internal/model"
)

// CustomerRepo looks up purchasers.  Customers are written only inside the
// fulfillment transaction (see FulfillmentRepo).
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo returns a new CustomerRepo bound to the given database.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

const selectCustomer = "SELECT id, email, first_name, last_name, phone, company, created_at FROM customers"

func scanCustomer(s rowScanner) (model.Customer, error) {
	var c model.Customer
	err := s.Scan(&c.ID, &c.Email, &c.FirstName, &c.LastName, &c.Phone, &c.Company, &c.CreatedAt)
	return c, err
}

// GetByEmail fetches a customer by normalized email.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx, selectCustomer+" WHERE email = ? LIMIT 1", normalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
