package router

import (
	"context"
	"path/filepath"

	"github.com/marmos91/brokerd/pkg/broker/command"
	"github.com/marmos91/brokerd/pkg/broker/names"
)

// handleGetFullPathName reports the composed broker path for a file, or for
// the tenant directory when no fileName is given. Purely diagnostic: the
// store is never touched, so the path may name something that doesn't exist.
func (r *Router) handleGetFullPathName(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	name, fail := optionalFileName(cmd)
	if fail != nil {
		return fail
	}

	path := names.ComposePath(r.store.Root(), tenantID, name)
	if !names.IsValidPath(path) {
		return command.Invalidf("composed path exceeds the length limit")
	}
	return command.OK(map[string]any{"fullPathName": path})
}

// handleGetFileSystemPathName is handleGetFullPathName in the host
// filesystem's native separator convention.
func (r *Router) handleGetFileSystemPathName(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	name, fail := optionalFileName(cmd)
	if fail != nil {
		return fail
	}

	path := names.ComposePath(r.store.Root(), tenantID, name)
	if !names.IsValidPath(path) {
		return command.Invalidf("composed path exceeds the length limit")
	}
	return command.OK(map[string]any{"fileSystemPathName": filepath.FromSlash(path)})
}

// handleIsValidFileName is a pure pass-through to the naming rules. It
// always succeeds with a boolean payload; a missing parameter is simply an
// invalid name.
func (r *Router) handleIsValidFileName(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	name := ""
	if cmd.FileName != nil {
		name = *cmd.FileName
	}
	return command.OK(map[string]any{"fileName": name, "isValid": names.IsValidName(name)})
}

// handleIsValidDirectoryName is the directory-rule counterpart.
func (r *Router) handleIsValidDirectoryName(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	name := ""
	if cmd.DirectoryName != nil {
		name = *cmd.DirectoryName
	}
	return command.OK(map[string]any{"directoryName": name, "isValid": names.IsValidDirectoryName(name)})
}
