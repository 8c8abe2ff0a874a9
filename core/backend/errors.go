package backend

import (
	"context"
	"database/sql/driver"
	"errors"
	"net/http"

	"github.com/lib/pq"
)

// Kind classifies a request failure. Every failure that reaches a
// client is classified first; raw internal error text never leaves the
// process.
type Kind int

const (
	// KindUnknown is any failure without a better classification
	KindUnknown Kind = iota
	// KindValidation means the request body fails schema constraints
	KindValidation
	// KindNoFieldsToUpdate means a partial update carried zero recognized fields
	KindNoFieldsToUpdate
	// KindConstraintViolation means the store rejected a unique or foreign-key constraint
	KindConstraintViolation
	// KindNotFound means the predicate matched no row
	KindNotFound
	// KindConnectionUnavailable means the pool or the store connection failed
	KindConnectionUnavailable
	// KindSyntaxOrBinding means a malformed statement or argument-count
	// mismatch. With correct statement builders this never happens; seeing
	// it is a programming defect, not a client error.
	KindSyntaxOrBinding
)

// Error is a classified backend failure.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

// status maps every failure kind to exactly one HTTP status. The
// mapping is used by all entity routers; no router invents its own.
func (k Kind) status() int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNoFieldsToUpdate:
		return http.StatusBadRequest
	case KindConstraintViolation:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindConnectionUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// classify maps a store error to a tagged Error.
//
// Constraint failures are reported by postgres as class 23: 23505 is a
// unique violation, 23503 a foreign-key violation, 23502 a not-null
// violation. Class 42 is a syntax or binding defect, classes 08, 53 and
// 57 cover unreachable or exhausted connections.
func classify(err error) *Error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "23":
			detail := "constraint violation"
			if pqErr.Constraint != "" {
				detail += ": " + pqErr.Constraint
			}
			return &Error{Kind: KindConstraintViolation, Detail: detail}
		case "42", "26":
			return &Error{Kind: KindSyntaxOrBinding, Detail: "malformed statement"}
		case "08", "53", "57":
			return &Error{Kind: KindConnectionUnavailable, Detail: "datastore unavailable"}
		}
		return &Error{Kind: KindUnknown, Detail: "datastore error"}
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return &Error{Kind: KindConnectionUnavailable, Detail: "datastore unavailable"}
	}
	return &Error{Kind: KindUnknown, Detail: "internal error"}
}
