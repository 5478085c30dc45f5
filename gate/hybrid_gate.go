// Package gate provides a Laravel-inspired Gate/Policy authorization system.
// HybridGate combines profile permissions ("resource:action") with
// resource-specific policies. The package has no dependency on domain models.
//
// The user type is generic so callers can authorize plain IDs or richer
// principals:
//   - HybridGate[uint] for user ID based auth
//   - HybridGate[models.Actor] for tenant-aware principals
package gate

import (
	"context"
	"fmt"
)

// HybridGate combines profile-based global permissions with resource-specific policies.
// Authorization flow:
//  1. Check if user is valid (non-zero)
//  2. Check if user's profile has the required permission (resource:action)
//  3. If a resource policy exists and resource is provided, check it
type HybridGate[U comparable] struct {
	resolver ProfileResolver[U]
	policies map[string]Policy[U]
}

// NewHybridGate creates a hybrid gate with the given profile resolver.
func NewHybridGate[U comparable](resolver ProfileResolver[U]) *HybridGate[U] {
	return &HybridGate[U]{
		resolver: resolver,
		policies: make(map[string]Policy[U]),
	}
}

// Register adds a resource-specific policy. Overwrites any existing policy
// for that type.
func (g *HybridGate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Authorize returns nil when user may perform action on resource.
// Denials wrap ErrUnauthorized together with the reason.
func (g *HybridGate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	var zero U
	if user == zero {
		return ErrUnauthorized
	}

	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil {
		return fmt.Errorf("%w: resolve profile: %v", ErrUnauthorized, err)
	}
	if profile == nil {
		return fmt.Errorf("%w: %w", ErrUnauthorized, ErrNoProfile)
	}

	perm := NewPermission(resourceType, action)
	if !profile.HasPermission(perm) {
		return fmt.Errorf("%w: %w %s", ErrUnauthorized, ErrMissingPermission, perm)
	}

	if resource != nil {
		if policy, ok := g.policies[resourceType]; ok {
			if !policy.Can(ctx, user, action, resource) {
				return fmt.Errorf("%w: %w", ErrUnauthorized, ErrPolicyDenied)
			}
		}
	}

	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *HybridGate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}

// CanProfile checks only the profile permission, without resource policy.
// Used by route middleware before a specific document is loaded.
func (g *HybridGate[U]) CanProfile(ctx context.Context, user U, action Action, resourceType string) bool {
	var zero U
	if user == zero {
		return false
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil || profile == nil {
		return false
	}
	return profile.HasPermission(NewPermission(resourceType, action))
}
