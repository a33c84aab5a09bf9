package prompt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Request is one outstanding confirmation, identified by a correlation id.
type Request struct {
	// ID is the correlation id for resolving the request.
	ID string `json:"id"`

	// TenantID is the tenant asking for access.
	TenantID string `json:"tenantId"`

	// CreatedAt is when the prompt was opened.
	CreatedAt time.Time `json:"createdAt"`

	answer chan Response
}

// Registry is a Prompter that parks each confirmation as a pending request
// keyed by a correlation id until some frontend resolves it.
//
// Each request is single-shot: the first Resolve wins and later ones fail.
// Context cancellation plays the role of the user closing the confirmation
// window — the request is withdrawn and answered as a cancel.
type Registry struct {
	mu      sync.Mutex
	pending map[string]*Request
}

// NewRegistry creates an empty prompt registry.
func NewRegistry() *Registry {
	return &Registry{pending: make(map[string]*Request)}
}

// ConfirmGrantAccess registers a pending request and blocks until it is
// resolved or ctx ends.
func (r *Registry) ConfirmGrantAccess(ctx context.Context, tenantID string) (Response, error) {
	req := &Request{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		CreatedAt: time.Now(),
		answer:    make(chan Response, 1),
	}

	r.mu.Lock()
	r.pending[req.ID] = req
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.pending, req.ID)
		r.mu.Unlock()
	}()

	select {
	case resp := <-req.answer:
		return resp, nil
	case <-ctx.Done():
		return ResponseCancel, nil
	}
}

// Resolve answers the pending request with the given correlation id.
func (r *Registry) Resolve(id string, response Response) error {
	r.mu.Lock()
	req, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("no pending prompt with id %s", id)
	}

	req.answer <- response
	return nil
}

// Pending returns a snapshot of the outstanding requests.
func (r *Registry) Pending() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Request, 0, len(r.pending))
	for _, req := range r.pending {
		out = append(out, Request{ID: req.ID, TenantID: req.TenantID, CreatedAt: req.CreatedAt})
	}
	return out
}
