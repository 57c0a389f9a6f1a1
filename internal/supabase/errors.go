package supabase

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"

	"custom-print-backend/internal/status"
	"custom-print-backend/internal/store"

	"github.com/lib/pq"
)

const (
	pqUndefinedTable   pq.ErrorCode = "42P01"
	pqUniqueViolation  pq.ErrorCode = "23505"
	pqRaiseException   pq.ErrorCode = "P0001"
	pqAdminShutdown    pq.ErrorCode = "57P01"
	pqCannotConnectNow pq.ErrorCode = "57P03"
)

// classifyError maps driver errors onto the store error taxonomy.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to %s: %w", op, store.ErrNotFound)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return &store.TransientError{Op: op, Err: err}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUndefinedTable:
			return fmt.Errorf("failed to %s: %w: %s", op, store.ErrCollectionMissing, pqErr.Message)
		case pqUniqueViolation:
			return fmt.Errorf("failed to %s: %w", op, store.ErrDuplicateReference)
		case pqRaiseException:
			return fmt.Errorf("failed to %s: %w: %s", op, status.ErrInvalidTransition, pqErr.Message)
		case pqAdminShutdown, pqCannotConnectNow:
			return &store.TransientError{Op: op, Err: err}
		}
		// 08: connection exception, 53: insufficient resources.
		switch pqErr.Code.Class() {
		case "08", "53":
			return &store.TransientError{Op: op, Err: err}
		}
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &store.TransientError{Op: op, Err: err}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
