package tenantctx

import (
	"context"
	"strings"
)

// Tenant identifies the business account a request acts for.
type Tenant struct {
	Email     string
	SuperUser bool
}

// tenantKey is the request context key for the active tenant.
type tenantKey struct{}

// WithTenant stores the tenant in the context.
func WithTenant(ctx context.Context, t Tenant) context.Context {
	t.Email = strings.ToLower(strings.TrimSpace(t.Email))
	return context.WithValue(ctx, tenantKey{}, t)
}

// FromContext returns the tenant from context, if set.
func FromContext(ctx context.Context) (Tenant, bool) {
	if ctx == nil {
		return Tenant{}, false
	}
	t, ok := ctx.Value(tenantKey{}).(Tenant)
	if !ok || t.Email == "" {
		return Tenant{}, false
	}
	return t, true
}

// Email returns the tenant email from context, if set.
func Email(ctx context.Context) (string, bool) {
	t, ok := FromContext(ctx)
	return t.Email, ok
}
