// Package prompt defines how the broker asks its user whether an unknown
// tenant may be granted access.
package prompt

import "context"

// Response is the terminal outcome of one confirmation prompt.
type Response int

const (
	// ResponseDeny refuses access; the decision is persisted.
	ResponseDeny Response = iota

	// ResponseGrant grants access; the decision is persisted.
	ResponseGrant

	// ResponseCancel dismisses the prompt without answering. Treated as a
	// deny for the triggering call, but no decision is persisted.
	ResponseCancel
)

func (r Response) String() string {
	switch r {
	case ResponseGrant:
		return "grant"
	case ResponseDeny:
		return "deny"
	default:
		return "cancel"
	}
}

// Prompter asks the user for a one-time grant/deny decision.
//
// ConfirmGrantAccess blocks until exactly one terminal signal arrives:
// an answer, or cancellation (the ctx ending counts as a cancel).
type Prompter interface {
	ConfirmGrantAccess(ctx context.Context, tenantID string) (Response, error)
}
