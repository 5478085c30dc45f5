package policy

import (
	"context"

	"github.com/diewo77/go-quotes/gate"
	"github.com/diewo77/go-quotes/internal/models"
)

// Ownable is implemented by resources that have an owning user.
type Ownable interface {
	GetUserID() uint
}

// TenantScoped is implemented by resources that belong to one company.
type TenantScoped interface {
	GetCompanyID() uint
}

// OwnershipPolicy lets any member of the company view a resource and only
// its owner change it.
type OwnershipPolicy struct{}

// NewOwnershipPolicy creates a new ownership policy.
func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Can checks tenant and ownership. For list/create (resource is nil) it
// returns true since profile permissions already control access.
func (p *OwnershipPolicy) Can(_ context.Context, actor models.Actor, action gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	if !sameTenant(actor, resource) {
		return false
	}
	if action == gate.ActionView || action == gate.ActionList {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return ownable.GetUserID() == actor.UserID
}

// sameTenant denies resources without a company.
func sameTenant(actor models.Actor, resource any) bool {
	scoped, ok := resource.(TenantScoped)
	return ok && scoped.GetCompanyID() == actor.CompanyID
}

// AdminBypassPolicy wraps another policy and lets admins act on any
// resource of their own company.
type AdminBypassPolicy struct {
	inner       gate.Policy[models.Actor]
	isAdminFunc func(ctx context.Context, actor models.Actor) bool
}

// NewAdminBypassPolicy creates a policy that bypasses ownership for admins.
func NewAdminBypassPolicy(inner gate.Policy[models.Actor], isAdminFunc func(ctx context.Context, actor models.Actor) bool) *AdminBypassPolicy {
	return &AdminBypassPolicy{inner: inner, isAdminFunc: isAdminFunc}
}

// Can checks if actor is admin (bypass) or falls back to inner policy.
func (p *AdminBypassPolicy) Can(ctx context.Context, actor models.Actor, action gate.Action, resource any) bool {
	if resource != nil && !sameTenant(actor, resource) {
		return false
	}
	if p.isAdminFunc(ctx, actor) {
		return true
	}
	return p.inner.Can(ctx, actor, action, resource)
}
