package usecases

import "github.com/pkg/errors"

var (
	// ErrValidation rejects bad input synchronously, before any state
	// change.
	ErrValidation = errors.New("validation failed")

	// ErrPersistence marks a store failure; no partial mutation may be
	// observable behind it.
	ErrPersistence = errors.New("persistence failed")

	// ErrQuoteUnavailable means a market order could not be priced.
	// Such orders fail closed, they never fill at a stale price.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrConflict is a concurrent-write conflict on a position that
	// survived the bounded retries.
	ErrConflict = errors.New("concurrent position update")
)
