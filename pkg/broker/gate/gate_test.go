package gate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/marmos91/brokerd/pkg/broker/command"
	"github.com/marmos91/brokerd/pkg/prompt"
	"github.com/marmos91/brokerd/pkg/store/settings"
	"github.com/marmos91/brokerd/pkg/store/settings/memory"
)

// countingPrompter wraps a fixed answer and counts how often it is asked.
type countingPrompter struct {
	response prompt.Response
	calls    atomic.Int64
	block    chan struct{}
}

func (p *countingPrompter) ConfirmGrantAccess(ctx context.Context, tenantID string) (prompt.Response, error) {
	p.calls.Add(1)
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return prompt.ResponseCancel, nil
		}
	}
	return p.response, nil
}

func newTestGate(t *testing.T, prompter prompt.Prompter, cfg Config) (*Gate, settings.Store) {
	t.Helper()
	store := memory.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	return New(store, prompter, nil, cfg), store
}

func TestGate_Disabled(t *testing.T) {
	g, _ := newTestGate(t, prompt.NewStatic(prompt.ResponseDeny), Config{Enabled: false})

	granted, reject := g.Authorize(context.Background(), "alice")
	if !granted || reject != nil {
		t.Fatalf("disabled gate must grant, got granted=%v reject=%v", granted, reject)
	}
}

func TestGate_InvalidIdentity(t *testing.T) {
	g, _ := newTestGate(t, prompt.NewStatic(prompt.ResponseGrant), Config{Enabled: true, PromptEnabled: true})

	for _, id := range []string{"", "..", "a/b", "con"} {
		granted, reject := g.Authorize(context.Background(), id)
		if granted {
			t.Errorf("identity %q must not be granted", id)
		}
		if reject == nil || reject.Code() != command.CodeBadRequest {
			t.Errorf("identity %q: want 400 reject, got %v", id, reject)
		}
	}
}

func TestGate_GrantPersists(t *testing.T) {
	prompter := &countingPrompter{response: prompt.ResponseGrant}
	g, store := newTestGate(t, prompter, Config{Enabled: true, PromptEnabled: true})

	granted, reject := g.Authorize(context.Background(), "alice")
	if !granted || reject != nil {
		t.Fatalf("first contact grant: granted=%v reject=%v", granted, reject)
	}

	decision, err := store.GetAccessDecision(context.Background(), "alice")
	if err != nil || decision != settings.DecisionAllow {
		t.Fatalf("decision not persisted: %v %v", decision, err)
	}

	// Second call answers from the store, not the prompter.
	if granted, _ := g.Authorize(context.Background(), "alice"); !granted {
		t.Fatal("recorded allow must keep granting")
	}
	if n := prompter.calls.Load(); n != 1 {
		t.Fatalf("prompter asked %d times, want 1", n)
	}
}

func TestGate_DenyPersists(t *testing.T) {
	prompter := &countingPrompter{response: prompt.ResponseDeny}
	g, store := newTestGate(t, prompter, Config{Enabled: true, PromptEnabled: true})

	granted, reject := g.Authorize(context.Background(), "bob")
	if granted {
		t.Fatal("deny must not grant")
	}
	if reject == nil || reject.Code() != command.CodeForbidden {
		t.Fatalf("want 403 reject, got %v", reject)
	}

	decision, err := store.GetAccessDecision(context.Background(), "bob")
	if err != nil || decision != settings.DecisionDeny {
		t.Fatalf("decision not persisted: %v %v", decision, err)
	}

	g.Authorize(context.Background(), "bob")
	if n := prompter.calls.Load(); n != 1 {
		t.Fatalf("prompter asked %d times, want 1", n)
	}
}

func TestGate_CancelLeavesUndecided(t *testing.T) {
	prompter := &countingPrompter{response: prompt.ResponseCancel}
	g, store := newTestGate(t, prompter, Config{Enabled: true, PromptEnabled: true})

	if granted, _ := g.Authorize(context.Background(), "carol"); granted {
		t.Fatal("cancel must deny the triggering call")
	}

	decision, err := store.GetAccessDecision(context.Background(), "carol")
	if err != nil || decision != settings.DecisionUnknown {
		t.Fatalf("cancel must not persist, got %v %v", decision, err)
	}

	// The tenant is asked again next time.
	g.Authorize(context.Background(), "carol")
	if n := prompter.calls.Load(); n != 2 {
		t.Fatalf("prompter asked %d times, want 2", n)
	}
}

func TestGate_PromptingDisabled(t *testing.T) {
	prompter := &countingPrompter{response: prompt.ResponseGrant}
	g, store := newTestGate(t, prompter, Config{Enabled: true, PromptEnabled: false})

	if granted, _ := g.Authorize(context.Background(), "dave"); granted {
		t.Fatal("unknown tenant must be denied when prompting is off")
	}
	if n := prompter.calls.Load(); n != 0 {
		t.Fatalf("prompter asked %d times, want 0", n)
	}

	decision, _ := store.GetAccessDecision(context.Background(), "dave")
	if decision != settings.DecisionUnknown {
		t.Fatal("deny-without-prompt must not be persisted")
	}
}

func TestGate_ConcurrentFirstContact(t *testing.T) {
	prompter := &countingPrompter{response: prompt.ResponseGrant, block: make(chan struct{})}
	g, _ := newTestGate(t, prompter, Config{Enabled: true, PromptEnabled: true})

	const callers = 8
	results := make([]bool, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = g.Authorize(context.Background(), "erin")
		}(i)
	}

	// Let every caller reach the gate before the single prompt resolves.
	time.Sleep(50 * time.Millisecond)
	close(prompter.block)
	wg.Wait()

	for i, granted := range results {
		if !granted {
			t.Errorf("caller %d not granted", i)
		}
	}
	if n := prompter.calls.Load(); n != 1 {
		t.Fatalf("prompter asked %d times, want exactly 1", n)
	}
}

func TestGate_HandleAccessProbe(t *testing.T) {
	g, _ := newTestGate(t, prompt.NewStatic(prompt.ResponseGrant), Config{Enabled: true, PromptEnabled: true})

	result := g.HandleAccess(context.Background(), "alice")
	if !result.IsOK() {
		t.Fatalf("probe must succeed, got %v", result)
	}
	if got := result.Payload()["access"]; got != "granted" {
		t.Fatalf("access = %v, want granted", got)
	}

	g2, _ := newTestGate(t, prompt.NewStatic(prompt.ResponseDeny), Config{Enabled: true, PromptEnabled: true})
	result = g2.HandleAccess(context.Background(), "bob")
	if !result.IsOK() {
		t.Fatalf("denied probe is still a successful command, got %v", result)
	}
	if got := result.Payload()["access"]; got != "denied" {
		t.Fatalf("access = %v, want denied", got)
	}
}

func TestGate_HandleAccessInvalidIdentity(t *testing.T) {
	g, _ := newTestGate(t, prompt.NewStatic(prompt.ResponseGrant), Config{Enabled: true, PromptEnabled: true})

	result := g.HandleAccess(context.Background(), "a/b")
	if !result.IsError() || result.Code() != command.CodeBadRequest {
		t.Fatalf("want 400 error, got %v", result)
	}
}
