package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/betterwealth/workshop-booking/internal/model"
)

// SubscriberRepo manages newsletter_subscribers.  Emails are stored
// lower-cased.
type SubscriberRepo struct {
	db *sql.DB
}

// NewSubscriberRepo returns a new SubscriberRepo bound to the given
// database.
func NewSubscriberRepo(db *sql.DB) *SubscriberRepo { return &SubscriberRepo{db: db} }

// GetByEmail returns ErrNotFound when the address has never subscribed.
func (r *SubscriberRepo) GetByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	var (
		s           model.Subscriber
		first, last sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, first_name, last_name, source, active, subscribed_at FROM newsletter_subscribers WHERE email = ?",
		normalizeEmail(email)).
		Scan(&s.ID, &s.Email, &first, &last, &s.Source, &s.Active, &s.SubscribedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.FirstName, s.LastName = first.String, last.String
	return &s, nil
}

// Create inserts an active subscriber.  A concurrent signup for the same
// address returns ErrEmailExists.
func (r *SubscriberRepo) Create(ctx context.Context, s *model.Subscriber) error {
	s.Email = normalizeEmail(s.Email)
	s.Active = true
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO newsletter_subscribers (email, first_name, last_name, source, active) VALUES (?, ?, ?, ?, TRUE)",
		s.Email, nullIfEmpty(s.FirstName), nullIfEmpty(s.LastName), s.Source)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// Reactivate marks an existing subscriber active again and records the new
// source, names and signup time.
func (r *SubscriberRepo) Reactivate(ctx context.Context, id uint64, firstName, lastName, source string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE newsletter_subscribers
		 SET active = TRUE, subscribed_at = CURRENT_TIMESTAMP, source = ?,
		     first_name = ?, last_name = ?
		 WHERE id = ?`,
		source, nullIfEmpty(firstName), nullIfEmpty(lastName), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
