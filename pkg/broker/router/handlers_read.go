package router

import (
	"context"
	"encoding/json"

	"github.com/marmos91/brokerd/pkg/broker/command"
	"github.com/marmos91/brokerd/pkg/store/file"
)

// readText runs the shared head of every read command: a missing file is a
// client-correctable condition, everything else a fault.
func (r *Router) readText(ctx context.Context, tenantID, name string) (string, *command.Result) {
	data, err := r.store.ReadText(ctx, tenantID, name)
	if err != nil {
		if file.IsNotFound(err) {
			return "", command.Invalidf("file not found: %q", name)
		}
		return "", storeFailure(err)
	}
	return data, nil
}

func (r *Router) handleReadFile(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	name, fail := requireFileName(cmd)
	if fail != nil {
		return fail
	}

	data, fail := r.readText(ctx, tenantID, name)
	if fail != nil {
		return fail
	}
	return command.OK(map[string]any{"fileName": name, "data": data})
}

// handleReadJSONFile reads a file that must contain valid JSON and returns
// its text unparsed.
func (r *Router) handleReadJSONFile(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	name, fail := requireFileName(cmd)
	if fail != nil {
		return fail
	}

	data, fail := r.readText(ctx, tenantID, name)
	if fail != nil {
		return fail
	}
	if !json.Valid([]byte(data)) {
		return command.Invalidf("file %q does not contain valid JSON", name)
	}
	return command.OK(map[string]any{"fileName": name, "data": data})
}

// handleReadObjectFromJSONFile reads a JSON file and returns the decoded
// object.
func (r *Router) handleReadObjectFromJSONFile(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	name, fail := requireFileName(cmd)
	if fail != nil {
		return fail
	}

	data, fail := r.readText(ctx, tenantID, name)
	if fail != nil {
		return fail
	}

	var object any
	if err := json.Unmarshal([]byte(data), &object); err != nil {
		return command.Invalidf("file %q does not contain valid JSON: %v", name, err)
	}
	return command.OK(map[string]any{"fileName": name, "object": object})
}
