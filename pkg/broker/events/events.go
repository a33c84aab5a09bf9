// Package events records an audit trail of broker activity: commands
// received, their results, and access-control outcomes.
//
// Recording is strictly best-effort. A sink failure must never change a
// command's result, so every write error is demoted to a debug log line.
package events

import (
	"time"
)

// EventType classifies an audit event.
type EventType string

const (
	EventCommandReceived EventType = "commandReceived"
	EventCommandResult   EventType = "commandResult"
	EventAccessGranted   EventType = "accessGranted"
	EventAccessDenied    EventType = "accessDenied"
)

// Event is one audit record.
type Event struct {
	// Time is when the event happened.
	Time time.Time `json:"time"`

	// Type classifies the event.
	Type EventType `json:"type"`

	// TenantID is the tenant the event concerns ("" for malformed senders).
	TenantID string `json:"tenantId,omitempty"`

	// Command is the command name, when the event concerns one.
	Command string `json:"command,omitempty"`

	// Outcome summarizes a result: "ok", "invalid", or the error code.
	Outcome string `json:"outcome,omitempty"`

	// Detail carries a short human-readable elaboration.
	Detail string `json:"detail,omitempty"`
}

// Sink consumes audit events. Record is fire-and-forget: implementations
// report failures through their return value but callers ignore everything
// except for debug logging.
type Sink interface {
	Record(event Event) error
	Close() error
}

// NopSink discards every event. Used when event logging is disabled.
type NopSink struct{}

func (NopSink) Record(Event) error { return nil }
func (NopSink) Close() error       { return nil }
