package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	// ErrNotFound covers absent, soft-deleted, and tenant-mismatched rows.
	ErrNotFound = errors.New("entity not found")
	// ErrConflict signals an optimistic concurrency failure: the supplied
	// expected version no longer matches the stored one.
	ErrConflict = errors.New("version conflict")
	// ErrValidation signals malformed or out-of-constraint input.
	ErrValidation = errors.New("validation failed")
	// ErrInvariant signals detected breakage of the ordering invariant. It
	// indicates a bug and is never silently repaired.
	ErrInvariant = errors.New("ordering invariant violated")

	ErrDuplicateKey     = errors.New("duplicate key violation")
	ErrForeignKey       = errors.New("foreign key violation")
	ErrConnectionFailed = errors.New("database connection failed")
	ErrTimeout          = errors.New("operation timeout")
	ErrCanceled         = errors.New("operation canceled")
)

// Error provides detailed error information
type Error struct {
	Op     string // Operation that failed
	Table  string // Table involved
	Err    error  // Underlying error
	Detail string // Human-readable detail
}

func (e *Error) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("store: %s", e.Op))

	if e.Table != "" {
		parts = append(parts, fmt.Sprintf("table=%s", e.Table))
	}

	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}

	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for Error type
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return errors.Is(e.Err, target)
	}

	if t.Op != "" && e.Op == t.Op {
		return true
	}

	return errors.Is(e.Err, t.Err)
}

func notFound(op, table string) error {
	return &Error{Op: op, Table: table, Err: ErrNotFound}
}

func conflict(op, table string) error {
	return &Error{Op: op, Table: table, Err: ErrConflict}
}

func invalid(op, table string, err error) error {
	return &Error{Op: op, Table: table, Err: ErrValidation, Detail: err.Error()}
}

func invalidf(op, table, format string, args ...interface{}) error {
	return &Error{Op: op, Table: table, Err: ErrValidation, Detail: fmt.Sprintf(format, args...)}
}

func invariantf(op, table, format string, args ...interface{}) error {
	return &Error{Op: op, Table: table, Err: ErrInvariant, Detail: fmt.Sprintf(format, args...)}
}

// parseDBError converts driver-level errors to store errors.
func parseDBError(err error, op, table string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFound(op, table)
	}

	errStr := err.Error()

	if strings.Contains(errStr, "duplicate key value violates unique constraint") {
		return &Error{Op: op, Table: table, Err: ErrDuplicateKey, Detail: errStr}
	}

	if strings.Contains(errStr, "violates foreign key constraint") {
		return &Error{Op: op, Table: table, Err: ErrForeignKey, Detail: errStr}
	}

	if strings.Contains(errStr, "context deadline exceeded") {
		return &Error{Op: op, Table: table, Err: ErrTimeout}
	}

	if strings.Contains(errStr, "context canceled") {
		return &Error{Op: op, Table: table, Err: ErrCanceled}
	}

	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "connection reset") {
		return &Error{Op: op, Table: table, Err: ErrConnectionFailed}
	}

	return &Error{Op: op, Table: table, Err: err}
}
