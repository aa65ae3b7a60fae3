package repository

import "context"

// VisitorRepository defines persistence for per-visitor key-value records
// (session credential, serialized identity, cached analysis result).
// No business logic here — strictly persistence operations.
type VisitorRepository interface {
	// Get returns the value stored for (visitorID, key).
	// Returns ErrKeyNotFound when no record exists.
	Get(ctx context.Context, visitorID, key string) (string, error)

	// Set stores or overwrites the value for (visitorID, key).
	Set(ctx context.Context, visitorID, key, value string) error

	// Delete removes a single key for the visitor. Deleting a missing key is not an error.
	Delete(ctx context.Context, visitorID, key string) error

	// DeleteAll removes every key stored for the visitor.
	DeleteAll(ctx context.Context, visitorID string) error
}
