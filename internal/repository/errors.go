// Package repository holds the MySQL data access layer.  The sentinel
// errors below let services and handlers tell failure scenarios apart
// without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup matches no row.  Handlers
// translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDuplicatePayment is returned by Fulfill when a booking for the same
// payment reference or checkout session already exists.  The transaction
// is rolled back and callers treat the notification as already handled.
var ErrDuplicatePayment = errors.New("payment already fulfilled")

// ErrEmailExists is returned when an insert collides with an existing
// unique email.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when an insert collides with another unique key,
// such as a workshop slug.  Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

const mysqlErrDuplicateEntry = 1062

// isDuplicateKey reports whether err is a MySQL unique constraint
// violation.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}
