package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors surfaced to services so they can map store-level invariant
// violations onto the domain taxonomy.
var (
	// ErrDuplicate reports a unique-constraint violation (two requests raced
	// to create the same row).
	ErrDuplicate = errors.New("duplicate row")

	// ErrAlreadyResolved reports a guarded status transition that matched no
	// waiting row: the record already reached a terminal state.
	ErrAlreadyResolved = errors.New("already resolved")
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
