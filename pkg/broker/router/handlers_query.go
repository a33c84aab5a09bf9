package router

import (
	"context"

	"github.com/marmos91/brokerd/pkg/broker/command"
	"github.com/marmos91/brokerd/pkg/store/file"
)

// handleExists checks whether a file, or the tenant directory when no
// fileName is given, exists.
func (r *Router) handleExists(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	name, fail := optionalFileName(cmd)
	if fail != nil {
		return fail
	}

	exists, err := r.store.Exists(ctx, tenantID, name)
	if err != nil {
		return storeFailure(err)
	}
	return command.OK(map[string]any{"exists": exists})
}

// statType resolves the entry's type, mapping an absent entry to
// file.TypeOther and "" so boolean type probes answer false instead of
// failing.
func (r *Router) statType(ctx context.Context, tenantID, name string) (file.FileType, *command.Result) {
	info, err := r.store.Stat(ctx, tenantID, name)
	if err != nil {
		if file.IsNotFound(err) {
			return "", nil
		}
		return "", storeFailure(err)
	}
	return info.Type, nil
}

func (r *Router) handleIsRegularFile(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	name, fail := optionalFileName(cmd)
	if fail != nil {
		return fail
	}

	t, fail := r.statType(ctx, tenantID, name)
	if fail != nil {
		return fail
	}
	return command.OK(map[string]any{"isRegularFile": t == file.TypeRegular})
}

func (r *Router) handleIsDirectory(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	name, fail := optionalFileName(cmd)
	if fail != nil {
		return fail
	}

	t, fail := r.statType(ctx, tenantID, name)
	if fail != nil {
		return fail
	}
	return command.OK(map[string]any{"isDirectory": t == file.TypeDirectory})
}

// countRegularFiles counts regular files in the tenant directory, applying
// the optional glob filter.
func (r *Router) countRegularFiles(ctx context.Context, tenantID string, cmd *command.Command) (int, *command.Result) {
	entries, fail := r.listEntries(ctx, tenantID, cmd, true)
	if fail != nil {
		return 0, fail
	}
	return len(entries), nil
}

func (r *Router) handleHasFiles(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	count, fail := r.countRegularFiles(ctx, tenantID, cmd)
	if fail != nil {
		return fail
	}
	return command.OK(map[string]any{"hasFiles": count > 0})
}

func (r *Router) handleGetFileCount(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	count, fail := r.countRegularFiles(ctx, tenantID, cmd)
	if fail != nil {
		return fail
	}
	return command.OK(map[string]any{"fileCount": count})
}

// handleGetFileInfo returns stat metadata for a file or the tenant
// directory. Absence is a client-correctable condition here, not an error.
func (r *Router) handleGetFileInfo(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	name, fail := optionalFileName(cmd)
	if fail != nil {
		return fail
	}

	exists, err := r.store.Exists(ctx, tenantID, name)
	if err != nil {
		return storeFailure(err)
	}
	if !exists {
		return command.Invalidf("item not found: %q", displayName(tenantID, name))
	}

	info, err := r.store.Stat(ctx, tenantID, name)
	if err != nil {
		return storeFailure(err)
	}

	// The resolved name is reported under the fileName key; the stat's own
	// name field is internal.
	return command.OK(map[string]any{
		"fileName":     displayName(tenantID, name),
		"type":         info.Type,
		"size":         info.Size,
		"creationTime": info.CreationTime,
		"lastAccessed": info.LastAccessed,
		"lastModified": info.LastModified,
	})
}

// displayName is the name reported back to the caller: the tenant id when
// the operation addressed the tenant directory itself.
func displayName(tenantID, name string) string {
	if name == "" {
		return tenantID
	}
	return name
}
