// Package identity resolves external user references to durable numeric
// identities. Registrations and survey submissions key on the numeric id so a
// user's external reference can change without orphaning their history.
package identity

import (
	"context"

	id "rollbook/pkg/domain"
)

// Resolver maps raw user references onto stored identity records.
type Resolver interface {
	// ResolveOrCreate returns the user id for ref, creating the identity
	// record on first sight. Idempotent under concurrency.
	ResolveOrCreate(ctx context.Context, ref string) (id.UserID, error)
	// Lookup returns the user id for ref, or sentinel.ErrNotFound.
	Lookup(ctx context.Context, ref string) (id.UserID, error)
	// Ref returns the external reference for a user id, or sentinel.ErrNotFound.
	Ref(ctx context.Context, userID id.UserID) (string, error)
}
