// Package gate implements the access-control gate applied to messages from
// external senders.
//
// Evaluation order per message: sender identity check → feature toggle →
// recorded decision lookup → first-contact prompt. Internal messages never
// pass through the gate.
package gate

import (
	"context"
	"sync"

	"github.com/marmos91/brokerd/internal/logger"
	"github.com/marmos91/brokerd/pkg/broker/command"
	"github.com/marmos91/brokerd/pkg/broker/events"
	"github.com/marmos91/brokerd/pkg/broker/names"
	"github.com/marmos91/brokerd/pkg/prompt"
	"github.com/marmos91/brokerd/pkg/store/settings"
)

// Config controls the gate's behavior.
type Config struct {
	// Enabled turns access control on. When false every external message
	// proceeds unconditionally.
	Enabled bool

	// PromptEnabled allows first-contact prompting. When false, unknown
	// tenants are denied without being asked (and without persisting).
	PromptEnabled bool
}

// Gate decides whether an external tenant may invoke file operations at
// all, independent of per-file validation.
type Gate struct {
	settings settings.Store
	prompter prompt.Prompter
	recorder *events.Recorder
	cfg      Config

	// inflight serializes first-contact prompts per tenant: concurrent
	// callers for the same undecided tenant share one prompt outcome
	// instead of opening one dialog each.
	mu       sync.Mutex
	inflight map[string]*inflightPrompt
}

type inflightPrompt struct {
	done    chan struct{}
	granted bool
}

// New creates a gate. recorder may be nil to disable audit events.
func New(store settings.Store, prompter prompt.Prompter, recorder *events.Recorder, cfg Config) *Gate {
	if recorder == nil {
		recorder = events.NewRecorder(nil, events.RecorderConfig{})
	}
	return &Gate{
		settings: store,
		prompter: prompter,
		recorder: recorder,
		cfg:      cfg,
		inflight: make(map[string]*inflightPrompt),
	}
}

// Authorize gates one external message. It returns (true, nil) when the
// message may proceed, or (false, reject) where reject is the result to
// send back: 400 for a bad sender identity, 403 for a denial, 500 when the
// gating machinery itself fails. No error ever propagates past this method.
func (g *Gate) Authorize(ctx context.Context, tenantID string) (granted bool, reject *command.Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("access gate panic for tenant %q: %v", tenantID, r)
			granted, reject = false, command.Errorf(command.CodeInternal, "Internal Error")
		}
	}()

	if !names.IsValidTenantID(tenantID) {
		return false, command.Errorf(command.CodeBadRequest, "Invalid Request: Sender has no valid identity")
	}

	allowed, err := g.decide(ctx, tenantID)
	if err != nil {
		logger.Error("access gate failure for tenant %q: %v", tenantID, err)
		return false, command.Errorf(command.CodeInternal, "Internal Error")
	}

	if !allowed {
		g.recorder.AccessDecided(tenantID, false, "")
		return false, command.Errorf(command.CodeForbidden, "Access Denied")
	}

	g.recorder.AccessDecided(tenantID, true, "")
	return true, nil
}

// HandleAccess resolves the literal "access" command: it runs the same
// gating logic but reports the outcome as a payload instead of an error, so
// callers can probe their status. The probe never touches the file store,
// but an unknown tenant is still prompted when prompting is enabled.
func (g *Gate) HandleAccess(ctx context.Context, tenantID string) (result *command.Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("access gate panic for tenant %q: %v", tenantID, r)
			result = command.Errorf(command.CodeInternal, "Internal Error")
		}
	}()

	if !names.IsValidTenantID(tenantID) {
		return command.Errorf(command.CodeBadRequest, "Invalid Request: Sender has no valid identity")
	}

	allowed, err := g.decide(ctx, tenantID)
	if err != nil {
		logger.Error("access gate failure for tenant %q: %v", tenantID, err)
		return command.Errorf(command.CodeInternal, "Internal Error")
	}

	g.recorder.AccessDecided(tenantID, allowed, "probe")
	if allowed {
		return command.OK(map[string]any{"access": "granted"})
	}
	return command.OK(map[string]any{"access": "denied"})
}

// decide runs the toggle → lookup → prompt pipeline.
func (g *Gate) decide(ctx context.Context, tenantID string) (bool, error) {
	if !g.cfg.Enabled {
		return true, nil
	}

	decision, err := g.settings.GetAccessDecision(ctx, tenantID)
	if err != nil {
		return false, err
	}

	switch decision {
	case settings.DecisionAllow:
		return true, nil
	case settings.DecisionDeny:
		return false, nil
	}

	if !g.cfg.PromptEnabled {
		logger.Debug("unknown tenant %q denied: prompting disabled", tenantID)
		return false, nil
	}

	return g.promptFirstContact(ctx, tenantID)
}

// promptFirstContact asks the user about an undecided tenant, serializing
// concurrent first contacts so at most one prompt per tenant is open.
func (g *Gate) promptFirstContact(ctx context.Context, tenantID string) (bool, error) {
	g.mu.Lock()
	if fl, ok := g.inflight[tenantID]; ok {
		g.mu.Unlock()
		select {
		case <-fl.done:
			return fl.granted, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	fl := &inflightPrompt{done: make(chan struct{})}
	g.inflight[tenantID] = fl
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.inflight, tenantID)
		g.mu.Unlock()
		close(fl.done)
	}()

	resp, err := g.prompter.ConfirmGrantAccess(ctx, tenantID)
	if err != nil {
		return false, err
	}

	switch resp {
	case prompt.ResponseGrant:
		if err := g.settings.SetAccessDecision(ctx, tenantID, true); err != nil {
			return false, err
		}
		fl.granted = true
		return true, nil
	case prompt.ResponseDeny:
		if err := g.settings.SetAccessDecision(ctx, tenantID, false); err != nil {
			return false, err
		}
		return false, nil
	default:
		// Dialog dismissed: deny this call, record nothing. The tenant
		// stays undecided and will be asked again next time.
		logger.Debug("access prompt for tenant %q cancelled", tenantID)
		return false, nil
	}
}
