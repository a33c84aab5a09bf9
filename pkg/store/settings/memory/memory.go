// Package memory implements an in-memory settings store, used by tests and
// by deployments that don't need decisions to survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/marmos91/brokerd/pkg/store/settings"
)

// MemoryStore implements settings.Store with plain maps.
//
// Thread Safety: protected by a single read-write mutex.
type MemoryStore struct {
	mu        sync.RWMutex
	decisions map[string]bool
	options   map[string]string
}

// NewMemoryStore creates an empty in-memory settings store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		decisions: make(map[string]bool),
		options:   make(map[string]string),
	}
}

func (s *MemoryStore) GetAccessDecision(ctx context.Context, tenantID string) (settings.Decision, error) {
	if err := ctx.Err(); err != nil {
		return settings.DecisionUnknown, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	allow, ok := s.decisions[tenantID]
	if !ok {
		return settings.DecisionUnknown, nil
	}
	if allow {
		return settings.DecisionAllow, nil
	}
	return settings.DecisionDeny, nil
}

func (s *MemoryStore) SetAccessDecision(ctx context.Context, tenantID string, allow bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions[tenantID] = allow
	return nil
}

func (s *MemoryStore) DeleteAccessDecision(ctx context.Context, tenantID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.decisions, tenantID)
	return nil
}

func (s *MemoryStore) ListAccessDecisions(ctx context.Context) (map[string]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool, len(s.decisions))
	for tenant, allow := range s.decisions {
		out[tenant] = allow
	}
	return out, nil
}

func (s *MemoryStore) GetOption(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.options[key]
	return value, ok, nil
}

func (s *MemoryStore) SetOption(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.options[key] = value
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
