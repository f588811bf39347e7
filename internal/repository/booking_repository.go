package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/betterwealth/workshop-booking/internal/model"
)

// BookingRepo provides read access to bookings joined with their customer
// and, where it still exists, their session.  Bookings are created only by
// FulfillmentRepo.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const selectBookingDetail = `SELECT b.id, b.customer_id, b.workshop_date_id, b.payment_reference,
       b.checkout_session_id, b.payment_status, b.amount_paid, b.booking_reference,
       b.quantity, b.created_at, b.updated_at,
       c.id, c.email, c.first_name, c.last_name, c.phone, c.company, c.created_at,
       d.id, d.date, d.time_start, d.time_end, d.capacity, d.seats_remaining,
       w.id, w.name, w.slug, w.price_pence
FROM bookings b
JOIN customers c ON c.id = b.customer_id
LEFT JOIN workshop_dates d ON d.id = b.workshop_date_id
LEFT JOIN workshops w ON w.id = d.workshop_id`

func scanBookingDetail(s rowScanner) (model.BookingDetail, error) {
	var (
		bd                         model.BookingDetail
		dID, wID                   sql.NullInt64
		dDate                      sql.NullTime
		dStart, dEnd, wName, wSlug sql.NullString
		dCap, dSeats               sql.NullInt64
		wPrice                     sql.NullInt64
		status                     string
	)
	err := s.Scan(
		&bd.ID, &bd.CustomerID, &bd.WorkshopDateID, &bd.PaymentReference,
		&bd.CheckoutSessionID, &status, &bd.AmountPaid, &bd.BookingReference,
		&bd.Quantity, &bd.CreatedAt, &bd.UpdatedAt,
		&bd.Customer.ID, &bd.Customer.Email, &bd.Customer.FirstName, &bd.Customer.LastName,
		&bd.Customer.Phone, &bd.Customer.Company, &bd.Customer.CreatedAt,
		&dID, &dDate, &dStart, &dEnd, &dCap, &dSeats,
		&wID, &wName, &wSlug, &wPrice,
	)
	if err != nil {
		return bd, err
	}
	bd.PaymentStatus = model.PaymentStatus(status)
	if dID.Valid && wID.Valid {
		bd.Session = &model.WorkshopDateDetail{
			WorkshopDate: model.WorkshopDate{
				ID:             uint64(dID.Int64),
				WorkshopID:     uint64(wID.Int64),
				Date:           dDate.Time,
				TimeStart:      dStart.String,
				TimeEnd:        dEnd.String,
				Capacity:       int(dCap.Int64),
				SeatsRemaining: int(dSeats.Int64),
			},
			WorkshopName: wName.String,
			WorkshopSlug: wSlug.String,
			PricePence:   wPrice.Int64,
		}
	}
	return bd, nil
}

// GetByCheckoutSession returns the booking created for a checkout session,
// or ErrNotFound if the payment has not been fulfilled yet.
func (r *BookingRepo) GetByCheckoutSession(ctx context.Context, sessionID string) (*model.BookingDetail, error) {
	bd, err := scanBookingDetail(r.db.QueryRowContext(ctx, selectBookingDetail+" WHERE b.checkout_session_id = ?", sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bd, nil
}

// ListByDate returns all bookings for a session, oldest first.
func (r *BookingRepo) ListByDate(ctx context.Context, workshopDateID uint64) ([]model.BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, selectBookingDetail+" WHERE b.workshop_date_id = ? ORDER BY b.created_at, b.id", workshopDateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BookingDetail{}
	for rows.Next() {
		bd, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, bd)
	}
	return out, rows.Err()
}
