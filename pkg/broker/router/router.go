// Package router dispatches validated commands to their handlers.
//
// Each command moves through the same stages: parameter validation,
// precondition checks, execution against the file store, result formatting.
// A failed validation short-circuits to an "invalid" result without touching
// the store, and no handler ever lets an error or panic escape ProcessCommand.
package router

import (
	"context"

	"github.com/marmos91/brokerd/internal/logger"
	"github.com/marmos91/brokerd/pkg/broker/command"
	"github.com/marmos91/brokerd/pkg/broker/names"
	"github.com/marmos91/brokerd/pkg/store/file"
)

// handler resolves one command for one tenant.
type handler func(ctx context.Context, tenantID string, cmd *command.Command) *command.Result

// Router maps command names to handlers over a single file store.
type Router struct {
	store    file.Store
	handlers map[string]handler
}

// New creates a router over the given file store.
func New(store file.Store) *Router {
	r := &Router{store: store}
	r.handlers = map[string]handler{
		command.CmdExists:                r.handleExists,
		command.CmdIsRegularFile:         r.handleIsRegularFile,
		command.CmdIsDirectory:           r.handleIsDirectory,
		command.CmdHasFiles:              r.handleHasFiles,
		command.CmdGetFileCount:          r.handleGetFileCount,
		command.CmdWriteFile:             r.handleWriteFile,
		command.CmdReplaceFile:           r.handleReplaceFile,
		command.CmdAppendToFile:          r.handleAppendToFile,
		command.CmdWriteJSONFile:         r.handleWriteJSONFile,
		command.CmdWriteObjectToJSONFile: r.handleWriteObjectToJSONFile,
		command.CmdReadFile:              r.handleReadFile,
		command.CmdReadJSONFile:          r.handleReadJSONFile,
		command.CmdReadObjectFromJSON:    r.handleReadObjectFromJSONFile,
		command.CmdGetFileInfo:           r.handleGetFileInfo,
		command.CmdRenameFile:            r.handleRenameFile,
		command.CmdDeleteFile:            r.handleDeleteFile,
		command.CmdDeleteDirectory:       r.handleDeleteDirectory,
		command.CmdMakeDirectory:         r.handleMakeDirectory,
		command.CmdListFiles:             r.handleListFiles,
		command.CmdListFileInfo:          r.handleListFileInfo,
		command.CmdList:                  r.handleList,
		command.CmdListInfo:              r.handleListInfo,
		command.CmdGetFullPathName:       r.handleGetFullPathName,
		command.CmdIsValidFileName:       r.handleIsValidFileName,
		command.CmdIsValidDirectoryName:  r.handleIsValidDirectoryName,
		command.CmdGetFSPathName:         r.handleGetFileSystemPathName,
	}
	return r
}

// ProcessCommand resolves one command and always returns a well-formed
// result. Unknown commands yield a 404 error; handler panics are converted
// to 500 at this boundary.
func (r *Router) ProcessCommand(ctx context.Context, tenantID string, cmd *command.Command) (result *command.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("handler panic for command %q, tenant %q: %v", cmd.Command, tenantID, rec)
			result = command.Errorf(command.CodeInternal, "Internal Error")
		}
	}()

	if cmd == nil || cmd.Command == "" {
		return command.Errorf(command.CodeBadRequest, "Invalid Request: Message has no Command Object")
	}

	h, ok := r.handlers[cmd.Command]
	if !ok {
		return command.Errorf(command.CodeNotFound, "Invalid 'command' Parameter: %q", cmd.Command)
	}

	logger.Debug("dispatching command %q for tenant %q", cmd.Command, tenantID)
	return h(ctx, tenantID, cmd)
}

// storeFailure translates a file store error into the caller-facing
// taxonomy: expected domain failures (missing file, precondition violated)
// are client-correctable and become "invalid"; infrastructure failures
// become 500 errors.
func storeFailure(err error) *command.Result {
	storeErr, ok := err.(*file.StoreError)
	if !ok {
		return command.Errorf(command.CodeInternal, "%v", err)
	}

	switch storeErr.Code {
	case file.ErrNotFound, file.ErrExists, file.ErrPrecondition,
		file.ErrNotEmpty, file.ErrIsDirectory, file.ErrNotDirectory:
		return command.Invalidf("%s", storeErr.Message)
	default:
		return command.Errorf(command.CodeInternal, "%s", storeErr.Error())
	}
}

// requireFileName extracts and validates a mandatory fileName parameter.
func requireFileName(cmd *command.Command) (string, *command.Result) {
	if cmd.FileName == nil {
		return "", command.Invalidf("missing 'fileName' parameter")
	}
	if !names.IsValidName(*cmd.FileName) {
		return "", command.Invalidf("invalid 'fileName' parameter: %q", *cmd.FileName)
	}
	return *cmd.FileName, nil
}

// optionalFileName extracts a fileName that may be absent; "" addresses the
// tenant directory itself. A present but invalid name still fails.
func optionalFileName(cmd *command.Command) (string, *command.Result) {
	if cmd.FileName == nil {
		return "", nil
	}
	if !names.IsValidName(*cmd.FileName) {
		return "", command.Invalidf("invalid 'fileName' parameter: %q", *cmd.FileName)
	}
	return *cmd.FileName, nil
}

// optionalDirectoryName is optionalFileName for directory parameters, with
// the stricter directory naming rule.
func optionalDirectoryName(cmd *command.Command) (string, *command.Result) {
	if cmd.DirectoryName == nil {
		return "", nil
	}
	if !names.IsValidDirectoryName(*cmd.DirectoryName) {
		return "", command.Invalidf("invalid 'directoryName' parameter: %q", *cmd.DirectoryName)
	}
	return *cmd.DirectoryName, nil
}
