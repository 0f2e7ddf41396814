package postscmd

import (
	"context"
	"crypto/subtle"

	"github.com/goliatone/go-blogstore/pkg/interfaces"
)

type adminSecretKey struct{}

// WithAdminSecret attaches the secret presented by the caller to ctx.
func WithAdminSecret(ctx context.Context, secret string) context.Context {
	return context.WithValue(ctx, adminSecretKey{}, secret)
}

// StaticSecretGuard grants admin access when the context carries the
// configured secret.
type StaticSecretGuard struct {
	secret []byte
}

var _ interfaces.AuthGuard = StaticSecretGuard{}

// NewStaticSecretGuard builds a guard for secret. An empty secret never matches.
func NewStaticSecretGuard(secret string) StaticSecretGuard {
	return StaticSecretGuard{secret: []byte(secret)}
}

// IsAdmin compares the context secret in constant time.
func (g StaticSecretGuard) IsAdmin(ctx context.Context) bool {
	if len(g.secret) == 0 || ctx == nil {
		return false
	}
	presented, _ := ctx.Value(adminSecretKey{}).(string)
	if presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), g.secret) == 1
}

// TrustedGuard treats every caller as an administrator. It is meant for
// single-user local setups where the process owner is the author.
type TrustedGuard struct{}

func (TrustedGuard) IsAdmin(context.Context) bool { return true }
