// Package local implements the per-tenant file store on the local
// filesystem: one flat directory per tenant under a fixed root.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/marmos91/brokerd/pkg/broker/names"
	"github.com/marmos91/brokerd/pkg/store/file"
)

// LocalStore implements file.Store using a directory tree on local disk.
//
// Layout: root/tenantID/name. Tenants can never create nested directories,
// so the tree is at most two levels deep below the root.
//
// Thread Safety:
// The underlying filesystem operations are thread-safe at the OS level.
// Concurrent writes to the same file race with last-writer-wins semantics;
// there is no cross-call locking, matching the broker's concurrency model.
type LocalStore struct {
	root string
}

// NewLocalStore creates a local file store rooted at root, creating the
// root directory if it doesn't exist.
//
// Parameters:
//   - ctx: Context for cancellation
//   - root: Root directory under which tenant directories live
//
// Returns:
//   - *LocalStore: Initialized store
//   - error: Error if directory creation fails or context is cancelled
func NewLocalStore(ctx context.Context, root string) (*LocalStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store root: %w", err)
	}

	return &LocalStore{root: root}, nil
}

// Root returns the store's root directory.
func (s *LocalStore) Root() string {
	return s.root
}

// resolve composes and validates the absolute path for (tenant, name).
// name may be "" to address the tenant directory itself.
func (s *LocalStore) resolve(tenantID, name string) (string, error) {
	// Defense in depth: the router validates names before calling the
	// store, but a separator slipping through here would break confinement.
	if tenantID == "" || tenantID == "." || tenantID == ".." || strings.ContainsAny(tenantID, `/\`) {
		return "", &file.StoreError{Code: file.ErrInvalidPath, Message: "invalid tenant segment", Path: tenantID}
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", &file.StoreError{Code: file.ErrInvalidPath, Message: "invalid name segment", Path: name}
	}

	composed := names.ComposePath(s.root, tenantID, name)
	if !names.IsValidPath(composed) {
		return "", &file.StoreError{Code: file.ErrIO, Message: "composed path failed validation", Path: composed}
	}

	if name == "" {
		return filepath.Join(s.root, tenantID), nil
	}
	return filepath.Join(s.root, tenantID, name), nil
}

// Exists reports whether the named file (or the tenant directory when name
// is "") exists.
func (s *LocalStore) Exists(ctx context.Context, tenantID, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	path, err := s.resolve(tenantID, name)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: path}
	}
	return true, nil
}

// Stat returns metadata for the named file or the tenant directory.
//
// A not-found result here is always ErrNotFound, even when a prior Exists
// call answered true: the item vanished between the two calls and callers
// treat that the same as never having existed.
func (s *LocalStore) Stat(ctx context.Context, tenantID, name string) (*file.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(tenantID, name)
	if err != nil {
		return nil, err
	}

	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &file.StoreError{Code: file.ErrNotFound, Message: "item not found", Path: path}
		}
		return nil, &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: path}
	}

	return infoFromOS(baseName(tenantID, name), fi), nil
}

// MakeDirectory creates the tenant's own directory. Idempotent.
func (s *LocalStore) MakeDirectory(ctx context.Context, tenantID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.resolve(tenantID, "")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: path}
	}
	return nil
}

// ListChildren returns the entries of the tenant directory. A missing
// tenant directory yields an empty listing.
func (s *LocalStore) ListChildren(ctx context.Context, tenantID string) ([]file.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := s.resolve(tenantID, "")
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []file.Info{}, nil
		}
		return nil, &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: dir}
	}

	infos := make([]file.Info, 0, len(entries))
	for _, entry := range entries {
		fi, err := entry.Info()
		if err != nil {
			// Entry removed while listing; skip it.
			continue
		}
		infos = append(infos, *infoFromOS(entry.Name(), fi))
	}
	return infos, nil
}

// Remove deletes a regular file.
func (s *LocalStore) Remove(ctx context.Context, tenantID, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.resolve(tenantID, name)
	if err != nil {
		return err
	}

	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &file.StoreError{Code: file.ErrNotFound, Message: "item not found", Path: path}
		}
		return &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: path}
	}
	if fi.IsDir() {
		return &file.StoreError{Code: file.ErrIsDirectory, Message: "target is a directory", Path: path}
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return &file.StoreError{Code: file.ErrNotFound, Message: "item not found", Path: path}
		}
		return &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: path}
	}
	return nil
}

// RemoveDirectory deletes the named child directory, or the tenant
// directory itself when name is "".
func (s *LocalStore) RemoveDirectory(ctx context.Context, tenantID, name string, recursive bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.resolve(tenantID, name)
	if err != nil {
		return err
	}

	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &file.StoreError{Code: file.ErrNotFound, Message: "directory not found", Path: path}
		}
		return &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: path}
	}
	if !fi.IsDir() {
		return &file.StoreError{Code: file.ErrNotDirectory, Message: "target is not a directory", Path: path}
	}

	if recursive {
		if err := os.RemoveAll(path); err != nil {
			return &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: path}
		}
		return nil
	}

	if err := os.Remove(path); err != nil {
		// Directory not empty surfaces as an *os.PathError with varying
		// errno text across platforms; report the category instead.
		if entries, readErr := os.ReadDir(path); readErr == nil && len(entries) > 0 {
			return &file.StoreError{Code: file.ErrNotEmpty, Message: "directory not empty", Path: path}
		}
		return &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: path}
	}
	return nil
}

// Rename moves from → to within the tenant directory.
func (s *LocalStore) Rename(ctx context.Context, tenantID, from, to string, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fromPath, err := s.resolve(tenantID, from)
	if err != nil {
		return err
	}
	toPath, err := s.resolve(tenantID, to)
	if err != nil {
		return err
	}

	if _, err := os.Stat(fromPath); err != nil {
		if os.IsNotExist(err) {
			return &file.StoreError{Code: file.ErrNotFound, Message: "source not found", Path: fromPath}
		}
		return &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: fromPath}
	}

	if !overwrite {
		if _, err := os.Stat(toPath); err == nil {
			return &file.StoreError{Code: file.ErrExists, Message: "target already exists", Path: toPath}
		} else if !os.IsNotExist(err) {
			return &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: toPath}
		}
	}

	if err := os.Rename(fromPath, toPath); err != nil {
		return &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: fromPath}
	}
	return nil
}

func baseName(tenantID, name string) string {
	if name == "" {
		return tenantID
	}
	return name
}

func infoFromOS(name string, fi os.FileInfo) *file.Info {
	t := file.TypeOther
	switch {
	case fi.Mode().IsRegular():
		t = file.TypeRegular
	case fi.IsDir():
		t = file.TypeDirectory
	}

	// Creation and access times are not portably available through
	// os.FileInfo; mirror the modification time, which every caller of
	// getFileInfo tolerates.
	mod := fi.ModTime()
	return &file.Info{
		Name:         name,
		Type:         t,
		Size:         fi.Size(),
		CreationTime: mod,
		LastAccessed: mod,
		LastModified: mod,
	}
}
