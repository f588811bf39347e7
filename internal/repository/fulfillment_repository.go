package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/betterwealth/workshop-booking/internal/model"
)

// FulfillmentRepo persists the durable part of a completed payment: the
// customer, the booking and the seat decrement.  All three happen in one
// transaction, so a failure leaves no partial state behind and a retried
// notification starts from scratch.
type FulfillmentRepo struct {
	db *sql.DB
}

// NewFulfillmentRepo returns a new FulfillmentRepo bound to the given
// database.
func NewFulfillmentRepo(db *sql.DB) *FulfillmentRepo { return &FulfillmentRepo{db: db} }

// FulfillmentInput carries everything needed to record one paid checkout.
type FulfillmentInput struct {
	Email             string
	FirstName         string
	LastName          string
	Phone             string
	Company           string
	WorkshopDateID    uint64
	Quantity          int
	PaymentReference  string
	CheckoutSessionID string
	AmountPaid        int64
	BookingReference  string
}

// FulfillmentResult describes what Fulfill wrote.
//
// Fields:
//
//	Booking         – the inserted booking row.
//	Customer        – the reused or newly created customer.
//	CustomerCreated – true when the customer row was inserted by this call.
//	Session         – the session after the decrement; nil when it no longer exists.
//	Oversold        – the session had fewer seats than Quantity and was floored at zero.
type FulfillmentResult struct {
	Booking         model.Booking
	Customer        model.Customer
	CustomerCreated bool
	Session         *model.WorkshopDateDetail
	Oversold        bool
}

// Fulfill records a completed payment.  It returns ErrDuplicatePayment,
// after rolling back, when the payment reference or checkout session has
// already produced a booking.
func (r *FulfillmentRepo) Fulfill(ctx context.Context, in FulfillmentInput) (*FulfillmentResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res := &FulfillmentResult{}

	cust, created, err := upsertCustomerTx(ctx, tx, in)
	if err != nil {
		return nil, fmt.Errorf("customer: %w", err)
	}
	res.Customer, res.CustomerCreated = cust, created

	b := model.Booking{
		CustomerID:        cust.ID,
		WorkshopDateID:    in.WorkshopDateID,
		PaymentReference:  in.PaymentReference,
		CheckoutSessionID: in.CheckoutSessionID,
		PaymentStatus:     model.PaymentSucceeded,
		AmountPaid:        in.AmountPaid,
		BookingReference:  in.BookingReference,
		Quantity:          in.Quantity,
	}
	ins, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (customer_id, workshop_date_id, payment_reference, checkout_session_id,
		                       payment_status, amount_paid, booking_reference, quantity)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.CustomerID, b.WorkshopDateID, b.PaymentReference, b.CheckoutSessionID,
		string(b.PaymentStatus), b.AmountPaid, b.BookingReference, b.Quantity)
	if err != nil {
		if isDuplicatePayment(err) {
			return nil, ErrDuplicatePayment
		}
		return nil, fmt.Errorf("booking: %w", err)
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return nil, err
	}
	b.ID = uint64(id)
	res.Booking = b

	// Row lock serialises concurrent fulfillments for the same session.
	d, err := scanDateDetail(tx.QueryRowContext(ctx, selectDateDetail+" WHERE d.id = ? FOR UPDATE", in.WorkshopDateID))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Paid booking kept without a session; details degrade downstream.
	case err != nil:
		return nil, fmt.Errorf("lock session: %w", err)
	default:
		oversold, err := decrementSeatsTx(ctx, tx, in.WorkshopDateID, in.Quantity)
		if err != nil {
			return nil, fmt.Errorf("decrement seats: %w", err)
		}
		if oversold {
			d.SeatsRemaining = 0
		} else {
			d.SeatsRemaining -= in.Quantity
		}
		res.Session, res.Oversold = &d, oversold
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}

// upsertCustomerTx returns the customer for in.Email, inserting it when
// absent.  LAST_INSERT_ID(id) makes the existing row's id available on a
// duplicate, and RowsAffected tells the two cases apart.  Contact fields of
// an existing customer are left untouched.
func upsertCustomerTx(ctx context.Context, tx *sql.Tx, in FulfillmentInput) (model.Customer, bool, error) {
	email := normalizeEmail(in.Email)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO customers (email, first_name, last_name, phone, company)
		 VALUES (?, ?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)`,
		email, in.FirstName, in.LastName, in.Phone, in.Company)
	if err != nil {
		return model.Customer{}, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Customer{}, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Customer{}, false, err
	}
	c, err := scanCustomer(tx.QueryRowContext(ctx, selectCustomer+" WHERE id = ?", id))
	if err != nil {
		return model.Customer{}, false, err
	}
	return c, n == 1, nil
}

// decrementSeatsTx subtracts qty seats.  When fewer than qty remain the
// conditional update matches nothing and the count is floored at zero
// instead; the caller logs the oversell.
func decrementSeatsTx(ctx context.Context, tx *sql.Tx, dateID uint64, qty int) (bool, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE workshop_dates SET seats_remaining = seats_remaining - ? WHERE id = ? AND seats_remaining >= ?",
		qty, dateID, qty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, "UPDATE workshop_dates SET seats_remaining = 0 WHERE id = ?", dateID); err != nil {
		return false, err
	}
	return true, nil
}

func isDuplicatePayment(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlErrDuplicateEntry {
		return false
	}
	return strings.Contains(me.Message, "uq_bookings_payment_reference") ||
		strings.Contains(me.Message, "uq_bookings_checkout_session")
}
