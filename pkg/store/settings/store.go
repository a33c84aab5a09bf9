// Package settings defines the persisted settings store: per-tenant access
// decisions plus generic string options used as feature flags.
package settings

import "context"

// Decision is the recorded access-control state for a tenant.
type Decision int

const (
	// DecisionUnknown means no decision has been recorded.
	DecisionUnknown Decision = iota

	// DecisionAllow means the user granted access.
	DecisionAllow

	// DecisionDeny means the user denied access.
	DecisionDeny
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionDeny:
		return "deny"
	default:
		return "unknown"
	}
}

// Store persists access decisions and feature-flag options.
//
// Implementations must be safe for concurrent use: the access gate and the
// event recorder interleave reads and writes freely.
type Store interface {
	// GetAccessDecision returns the recorded decision for a tenant, or
	// DecisionUnknown when none exists.
	GetAccessDecision(ctx context.Context, tenantID string) (Decision, error)

	// SetAccessDecision records an allow/deny decision for a tenant.
	SetAccessDecision(ctx context.Context, tenantID string, allow bool) error

	// DeleteAccessDecision removes a tenant's decision, returning it to
	// DecisionUnknown. Deleting a missing decision is not an error.
	DeleteAccessDecision(ctx context.Context, tenantID string) error

	// ListAccessDecisions returns every recorded decision keyed by tenant.
	ListAccessDecisions(ctx context.Context) (map[string]bool, error)

	// GetOption returns the value of a named option and whether it was set.
	GetOption(ctx context.Context, key string) (string, bool, error)

	// SetOption stores a named option.
	SetOption(ctx context.Context, key, value string) error

	// Close releases the store's resources.
	Close() error
}
