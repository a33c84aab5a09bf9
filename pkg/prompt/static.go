package prompt

import "context"

// Static is a Prompter that always answers with a fixed response. Used in
// headless deployments where no user is present to confirm, and in tests.
type Static struct {
	Response Response
}

// NewStatic creates a prompter with a fixed answer.
func NewStatic(response Response) *Static {
	return &Static{Response: response}
}

func (s *Static) ConfirmGrantAccess(ctx context.Context, tenantID string) (Response, error) {
	if err := ctx.Err(); err != nil {
		return ResponseCancel, nil
	}
	return s.Response, nil
}
