package router

import (
	"context"
	"sort"

	"github.com/marmos91/brokerd/pkg/broker/command"
	"github.com/marmos91/brokerd/pkg/broker/names"
	"github.com/marmos91/brokerd/pkg/store/file"
)

// listEntries lists the tenant directory, applying the optional matchGLOB
// filter to base names and, when regularOnly is set, dropping everything
// that is not a regular file. Results are sorted by name so listings are
// stable across backends.
func (r *Router) listEntries(ctx context.Context, tenantID string, cmd *command.Command, regularOnly bool) ([]file.Info, *command.Result) {
	var matcher interface{ MatchString(string) bool }
	if cmd.MatchGLOB != nil {
		re, err := names.CompileGlob(*cmd.MatchGLOB)
		if err != nil {
			return nil, command.Invalidf("invalid 'matchGLOB' parameter: %q", *cmd.MatchGLOB)
		}
		matcher = re
	}

	entries, err := r.store.ListChildren(ctx, tenantID)
	if err != nil {
		return nil, storeFailure(err)
	}

	out := make([]file.Info, 0, len(entries))
	for _, entry := range entries {
		if regularOnly && entry.Type != file.TypeRegular {
			continue
		}
		if matcher != nil && !matcher.MatchString(entry.Name) {
			continue
		}
		out = append(out, entry)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func entryNames(entries []file.Info) []string {
	out := make([]string, len(entries))
	for i, entry := range entries {
		out[i] = entry.Name
	}
	return out
}

func entryInfos(entries []file.Info) []map[string]any {
	out := make([]map[string]any, len(entries))
	for i, entry := range entries {
		out[i] = map[string]any{
			"fileName":     entry.Name,
			"type":         entry.Type,
			"size":         entry.Size,
			"creationTime": entry.CreationTime,
			"lastAccessed": entry.LastAccessed,
			"lastModified": entry.LastModified,
		}
	}
	return out
}

// handleListFiles lists the names of regular files.
func (r *Router) handleListFiles(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	entries, fail := r.listEntries(ctx, tenantID, cmd, true)
	if fail != nil {
		return fail
	}
	return command.OK(map[string]any{"fileNames": entryNames(entries), "length": len(entries)})
}

// handleListFileInfo lists stat records for regular files.
func (r *Router) handleListFileInfo(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	entries, fail := r.listEntries(ctx, tenantID, cmd, true)
	if fail != nil {
		return fail
	}
	return command.OK(map[string]any{"fileInfo": entryInfos(entries), "length": len(entries)})
}

// handleList lists the names of all entries regardless of type.
func (r *Router) handleList(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	entries, fail := r.listEntries(ctx, tenantID, cmd, false)
	if fail != nil {
		return fail
	}
	return command.OK(map[string]any{"names": entryNames(entries), "length": len(entries)})
}

// handleListInfo lists stat records for all entries regardless of type.
func (r *Router) handleListInfo(ctx context.Context, tenantID string, cmd *command.Command) *command.Result {
	entries, fail := r.listEntries(ctx, tenantID, cmd, false)
	if fail != nil {
		return fail
	}
	return command.OK(map[string]any{"info": entryInfos(entries), "length": len(entries)})
}
