package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoKB indicates no knowledge base is loaded.
	// Retrieval requires a previously loaded bundle.
	ErrNoKB = errors.New("no knowledge base loaded")

	// ErrKBStoreUnavailable indicates the KB document store is not configured.
	// Loaded bundles are then held in memory only.
	ErrKBStoreUnavailable = errors.New("knowledge-base store unavailable")
)
