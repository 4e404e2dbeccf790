// Package tenant maps authenticated subjects to tenant identifiers.
//
// Every stored resource is scoped to a tenant ID, and every data-plane query
// filters on it. The mapping from token subject to tenant is isolated behind
// the Resolver interface so a future organisational model (schools, shared
// departments) only has to swap the resolver, not the storage layer.
package tenant

import "context"

// Resolver derives the tenant ID for an authenticated subject.
type Resolver interface {
	Resolve(ctx context.Context, subject string) (string, error)
}

// IdentityResolver is the current policy: each account is its own tenant,
// so the tenant ID is the identity ID itself.
type IdentityResolver struct{}

// NewIdentityResolver creates the identity-is-tenant resolver.
func NewIdentityResolver() *IdentityResolver {
	return &IdentityResolver{}
}

// Resolve returns the subject unchanged.
func (r *IdentityResolver) Resolve(_ context.Context, subject string) (string, error) {
	return subject, nil
}
