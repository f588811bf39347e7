package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/betterwealth/workshop-booking/internal/model"
)

// WorkshopRepo reads and writes the workshop catalog.  Rows are only
// written through the admin API; the booking flow never modifies them.
type WorkshopRepo struct {
	db *sql.DB
}

// NewWorkshopRepo returns a new WorkshopRepo bound to the given database.
func NewWorkshopRepo(db *sql.DB) *WorkshopRepo { return &WorkshopRepo{db: db} }

// Create inserts a workshop and fills in its ID and CreatedAt.  A slug
// collision returns ErrConflict.
func (r *WorkshopRepo) Create(ctx context.Context, w *model.Workshop) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO workshops (name, slug, price_pence) VALUES (?, ?, ?)",
		w.Name, w.Slug, w.PricePence)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = uint64(id)
	return r.db.QueryRowContext(ctx, "SELECT created_at FROM workshops WHERE id = ?", w.ID).Scan(&w.CreatedAt)
}

// GetByID returns ErrNotFound when no workshop has the given id.
func (r *WorkshopRepo) GetByID(ctx context.Context, id uint64) (*model.Workshop, error) {
	var w model.Workshop
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, slug, price_pence, created_at FROM workshops WHERE id = ?", id).
		Scan(&w.ID, &w.Name, &w.Slug, &w.PricePence, &w.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetBySlug resolves a slug to its workshop.
func (r *WorkshopRepo) GetBySlug(ctx context.Context, slug string) (*model.Workshop, error) {
	var w model.Workshop
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, slug, price_pence, created_at FROM workshops WHERE slug = ?", slug).
		Scan(&w.ID, &w.Name, &w.Slug, &w.PricePence, &w.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// List returns every workshop ordered by name.
func (r *WorkshopRepo) List(ctx context.Context) ([]model.Workshop, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, slug, price_pence, created_at FROM workshops ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Workshop{}
	for rows.Next() {
		var w model.Workshop
		if err := rows.Scan(&w.ID, &w.Name, &w.Slug, &w.PricePence, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// WorkshopDateRepo is the inventory store for scheduled sessions.
type WorkshopDateRepo struct {
	db *sql.DB
}

// NewWorkshopDateRepo returns a new WorkshopDateRepo bound to the given
// database.
func NewWorkshopDateRepo(db *sql.DB) *WorkshopDateRepo { return &WorkshopDateRepo{db: db} }

const selectDateDetail = `SELECT d.id, d.workshop_id, d.date, d.time_start, d.time_end,
       d.capacity, d.seats_remaining, w.name, w.slug, w.price_pence
FROM workshop_dates d
JOIN workshops w ON w.id = d.workshop_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDateDetail(s rowScanner) (model.WorkshopDateDetail, error) {
	var d model.WorkshopDateDetail
	var end sql.NullString
	err := s.Scan(&d.ID, &d.WorkshopID, &d.Date, &d.TimeStart, &end,
		&d.Capacity, &d.SeatsRemaining, &d.WorkshopName, &d.WorkshopSlug, &d.PricePence)
	d.TimeEnd = end.String
	return d, err
}

// GetWithWorkshop loads a session joined with its workshop.  It returns
// ErrNotFound when the session does not exist.
func (r *WorkshopDateRepo) GetWithWorkshop(ctx context.Context, id uint64) (*model.WorkshopDateDetail, error) {
	d, err := scanDateDetail(r.db.QueryRowContext(ctx, selectDateDetail+" WHERE d.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListUpcoming returns sessions on or after the given day, ordered by date
// and start time.  A zero workshopID lists sessions of every workshop.
func (r *WorkshopDateRepo) ListUpcoming(ctx context.Context, workshopID uint64, from time.Time) ([]model.WorkshopDateDetail, error) {
	q := selectDateDetail + " WHERE d.date >= ?"
	args := []any{from.Format("2006-01-02")}
	if workshopID != 0 {
		q += " AND d.workshop_id = ?"
		args = append(args, workshopID)
	}
	q += " ORDER BY d.date, d.time_start"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.WorkshopDateDetail{}
	for rows.Next() {
		d, err := scanDateDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Create provisions a new session.  SeatsRemaining starts equal to
// Capacity.
func (r *WorkshopDateRepo) Create(ctx context.Context, d *model.WorkshopDate) error {
	var end any
	if d.TimeEnd != "" {
		end = d.TimeEnd
	}
	d.SeatsRemaining = d.Capacity
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO workshop_dates (workshop_id, date, time_start, time_end, capacity, seats_remaining)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.WorkshopID, d.Date.Format("2006-01-02"), d.TimeStart, end, d.Capacity, d.SeatsRemaining)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return nil
}
