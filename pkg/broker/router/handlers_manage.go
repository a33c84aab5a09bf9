package router

import (
	"context"

	"github.com/marmos91/brokerd/pkg/broker/command"
	"github.com/marmos91/brokerd/pkg/broker/names"
	"github.com/marmos91/brokerd/pkg/store/file"
)

// handleRenameFile moves a regular file within the tenant directory.
func (r *Router) handleRenameFile(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	if cmd.FromFileName == nil || !names.IsValidName(*cmd.FromFileName) {
		return command.Invalidf("missing or invalid 'fromFileName' parameter")
	}
	if cmd.ToFileName == nil || !names.IsValidName(*cmd.ToFileName) {
		return command.Invalidf("missing or invalid 'toFileName' parameter")
	}
	from, to := *cmd.FromFileName, *cmd.ToFileName

	info, err := r.store.Stat(ctx, tenantID, from)
	if err != nil {
		if file.IsNotFound(err) {
			return command.Invalidf("file not found: %q", from)
		}
		return storeFailure(err)
	}
	if info.Type != file.TypeRegular {
		return command.Invalidf("%q is not a regular file", from)
	}

	if err := r.store.Rename(ctx, tenantID, from, to, cmd.Overwrite); err != nil {
		return storeFailure(err)
	}
	return command.OK(map[string]any{"fromFileName": from, "toFileName": to, "renamed": true})
}

// handleDeleteFile removes a regular file and verifies it is actually gone:
// the deleted flag reflects a post-delete existence check, not an
// assumption.
func (r *Router) handleDeleteFile(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	name, fail := requireFileName(cmd)
	if fail != nil {
		return fail
	}

	info, err := r.store.Stat(ctx, tenantID, name)
	if err != nil {
		if file.IsNotFound(err) {
			return command.Invalidf("file not found: %q", name)
		}
		return storeFailure(err)
	}
	if info.Type != file.TypeRegular {
		return command.Invalidf("%q is not a regular file", name)
	}

	if err := r.store.Remove(ctx, tenantID, name); err != nil {
		// A concurrent delete winning the race still leaves the file gone,
		// which is the outcome the caller asked for.
		if !file.IsNotFound(err) {
			return storeFailure(err)
		}
	}

	stillThere, err := r.store.Exists(ctx, tenantID, name)
	if err != nil {
		return storeFailure(err)
	}
	return command.OK(map[string]any{"fileName": name, "deleted": !stillThere})
}

// handleDeleteDirectory removes a child directory, or the tenant directory
// itself when no directoryName is given. Non-recursive removal requires the
// directory to be empty.
func (r *Router) handleDeleteDirectory(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	name, fail := optionalDirectoryName(cmd)
	if fail != nil {
		return fail
	}

	info, err := r.store.Stat(ctx, tenantID, name)
	if err != nil {
		if file.IsNotFound(err) {
			return command.Invalidf("directory not found: %q", displayName(tenantID, name))
		}
		return storeFailure(err)
	}
	if info.Type != file.TypeDirectory {
		return command.Invalidf("%q is not a directory", displayName(tenantID, name))
	}

	if err := r.store.RemoveDirectory(ctx, tenantID, name, cmd.Recursive); err != nil {
		return storeFailure(err)
	}
	return command.OK(map[string]any{"directoryName": displayName(tenantID, name), "deleted": true})
}

// handleMakeDirectory creates the tenant's own directory. No name parameter
// exists: nested directories are never creatable through this API.
func (r *Router) handleMakeDirectory(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	if err := r.store.MakeDirectory(ctx, tenantID); err != nil {
		return storeFailure(err)
	}
	return command.OK(map[string]any{"directoryName": tenantID, "created": true})
}
