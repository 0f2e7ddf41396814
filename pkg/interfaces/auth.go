package interfaces

import "context"

// AuthGuard answers whether the caller bound to ctx is an authenticated admin.
// Mutating commands consult it before touching storage.
type AuthGuard interface {
	IsAdmin(ctx context.Context) bool
}
