package router

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/marmos91/brokerd/pkg/broker/command"
)

// writeText runs the shared tail of every write command: resolve the write
// mode, delegate to the store, format the result.
func (r *Router) writeText(ctx context.Context, tenantID, name, data string, mode command.WriteMode) *command.Result {
	n, err := r.store.WriteText(ctx, tenantID, name, data, mode)
	if err != nil {
		return storeFailure(err)
	}
	return command.OK(map[string]any{"fileName": name, "bytesWritten": n})
}

// resolveWriteMode parses the command's writeMode with the router default of
// "create": plain writeFile refuses to clobber unless asked.
func resolveWriteMode(cmd *command.Command) (command.WriteMode, *command.Result) {
	raw := ""
	if cmd.WriteMode != nil {
		raw = *cmd.WriteMode
	}
	mode, err := command.ParseWriteMode(raw, command.WriteModeCreate)
	if err != nil {
		return "", command.Invalidf("invalid 'writeMode' parameter: %q", raw)
	}
	return mode, nil
}

// handleWriteFile writes string data to a file. Default write mode is
// create.
func (r *Router) handleWriteFile(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	name, fail := requireFileName(cmd)
	if fail != nil {
		return fail
	}
	data, ok := cmd.StringData()
	if !ok {
		return command.Invalidf("missing or non-string 'data' parameter")
	}
	mode, fail := resolveWriteMode(cmd)
	if fail != nil {
		return fail
	}
	return r.writeText(ctx, tenantID, name, data, mode)
}

// handleReplaceFile writes string data unconditionally, replacing any
// existing content. The writeMode parameter is ignored.
func (r *Router) handleReplaceFile(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	name, fail := requireFileName(cmd)
	if fail != nil {
		return fail
	}
	data, ok := cmd.StringData()
	if !ok {
		return command.Invalidf("missing or non-string 'data' parameter")
	}
	return r.writeText(ctx, tenantID, name, data, command.WriteModeOverwrite)
}

// handleAppendToFile appends string data, creating the file when absent.
func (r *Router) handleAppendToFile(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	name, fail := requireFileName(cmd)
	if fail != nil {
		return fail
	}
	data, ok := cmd.StringData()
	if !ok {
		return command.Invalidf("missing or non-string 'data' parameter")
	}
	return r.writeText(ctx, tenantID, name, data, command.WriteModeAppendOrCreate)
}

// jsonWriteMode resolves the write mode for the JSON-writing commands,
// which reject appending modes: a JSON document is only valid whole.
func jsonWriteMode(cmd *command.Command) (command.WriteMode, *command.Result) {
	mode, fail := resolveWriteMode(cmd)
	if fail != nil {
		return "", fail
	}
	if mode.Appends() {
		return "", command.Invalidf("writeMode %q is not allowed for JSON files", mode)
	}
	return mode, nil
}

// handleWriteJSONFile writes a caller-serialized JSON string to a file,
// after verifying it actually parses.
func (r *Router) handleWriteJSONFile(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	name, fail := requireFileName(cmd)
	if fail != nil {
		return fail
	}
	data, ok := cmd.StringData()
	if !ok {
		return command.Invalidf("missing or non-string 'data' parameter")
	}
	if !json.Valid([]byte(data)) {
		return command.Invalidf("'data' parameter is not valid JSON")
	}
	mode, fail := jsonWriteMode(cmd)
	if fail != nil {
		return fail
	}
	return r.writeText(ctx, tenantID, name, data, mode)
}

// handleWriteObjectToJSONFile serializes the object parameter and writes it.
func (r *Router) handleWriteObjectToJSONFile(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	name, fail := requireFileName(cmd)
	if fail != nil {
		return fail
	}
	if len(cmd.Object) == 0 {
		return command.Invalidf("missing 'object' parameter")
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, cmd.Object); err != nil {
		return command.Invalidf("'object' parameter cannot be serialized: %v", err)
	}

	mode, fail := jsonWriteMode(cmd)
	if fail != nil {
		return fail
	}
	return r.writeText(ctx, tenantID, name, buf.String(), mode)
}
