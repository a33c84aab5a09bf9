package events

import (
	"time"

	"github.com/marmos91/brokerd/internal/logger"
	"github.com/marmos91/brokerd/pkg/broker/command"
)

// RecorderConfig selects which event classes are recorded.
type RecorderConfig struct {
	// LogCommands records a commandReceived event per inbound command.
	LogCommands bool

	// LogResults records a commandResult event per produced result,
	// including invalid results (they form the audit trail for rejected
	// input, not a system fault).
	LogResults bool

	// LogAccess records accessGranted/accessDenied events.
	LogAccess bool
}

// Recorder emits gated audit events to a Sink.
type Recorder struct {
	sink Sink
	cfg  RecorderConfig
}

// NewRecorder creates a recorder. A nil sink records nothing.
func NewRecorder(sink Sink, cfg RecorderConfig) *Recorder {
	if sink == nil {
		sink = NopSink{}
	}
	return &Recorder{sink: sink, cfg: cfg}
}

func (r *Recorder) record(event Event) {
	event.Time = time.Now()
	if err := r.sink.Record(event); err != nil {
		logger.Debug("event sink failure (ignored): %v", err)
	}
}

// CommandReceived records the arrival of a command.
func (r *Recorder) CommandReceived(tenantID, commandName string) {
	if !r.cfg.LogCommands {
		return
	}
	r.record(Event{Type: EventCommandReceived, TenantID: tenantID, Command: commandName})
}

// CommandResult records the outcome of a command.
func (r *Recorder) CommandResult(tenantID, commandName string, result *command.Result) {
	if !r.cfg.LogResults || result == nil {
		return
	}

	event := Event{Type: EventCommandResult, TenantID: tenantID, Command: commandName}
	switch {
	case result.IsError():
		event.Outcome = result.Code()
		event.Detail = result.ErrorMessage()
	case result.IsInvalid():
		event.Outcome = "invalid"
		event.Detail = result.InvalidMessage()
	default:
		event.Outcome = "ok"
	}
	r.record(event)
}

// AccessDecided records an access-control outcome for an external message.
func (r *Recorder) AccessDecided(tenantID string, granted bool, detail string) {
	if !r.cfg.LogAccess {
		return
	}

	eventType := EventAccessDenied
	if granted {
		eventType = EventAccessGranted
	}
	r.record(Event{Type: eventType, TenantID: tenantID, Detail: detail})
}
