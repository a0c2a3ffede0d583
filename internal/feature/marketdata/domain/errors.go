// Package domain defines domain-level errors shared by the ingest
// pipeline and the query engine.
package domain

import "errors"

// Domain errors for market data operations.
// These errors represent business failures; transport layers decide how
// to surface them (HTTP status codes live in the handlers, not here).
var (
	// ErrDataUnavailable indicates the upstream provider returned no data
	// after all retry attempts and the synthetic fallback is disabled.
	ErrDataUnavailable = errors.New("market data unavailable from upstream")

	// ErrNotFound indicates a queried symbol has no rows in the store.
	ErrNotFound = errors.New("symbol not found")

	// ErrInsufficientData indicates a comparison window contained no rows
	// after restricting both series to their common date range.
	ErrInsufficientData = errors.New("not enough data points for comparison")

	// ErrStoreUninitialized indicates the store was queried before the
	// ingest pipeline created the schema.
	ErrStoreUninitialized = errors.New("store not initialized")
)
