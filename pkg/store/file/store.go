// Package file defines the per-tenant file store contract.
//
// A Store confines every operation to root/tenantID/name: one flat directory
// per tenant, at most one validated leaf name below it. Implementations must
// refuse any call whose composed path fails validation — callers validate
// names first, but the store is the last line of defense.
package file

import (
	"context"
	"time"

	"github.com/marmos91/brokerd/pkg/broker/command"
)

// FileType classifies a directory entry.
type FileType string

const (
	TypeRegular   FileType = "regular"
	TypeDirectory FileType = "directory"
	TypeOther     FileType = "other"
)

// Info describes a file or directory.
type Info struct {
	// Name is the base name within the tenant directory. For the tenant
	// directory itself this is the tenant id.
	Name string `json:"name"`

	// Type classifies the entry.
	Type FileType `json:"type"`

	// Size is the size in bytes (0 for directories on some backends).
	Size int64 `json:"size"`

	// CreationTime is the creation timestamp where the backend records one;
	// otherwise it mirrors LastModified.
	CreationTime time.Time `json:"creationTime"`

	// LastAccessed is the last access timestamp (backend best-effort).
	LastAccessed time.Time `json:"lastAccessed"`

	// LastModified is the last modification timestamp.
	LastModified time.Time `json:"lastModified"`
}

// Store is the per-tenant file store consumed by the command router.
//
// All methods are context-aware and may fail with a *StoreError. A name of
// "" targets the tenant's own directory where that is meaningful (Exists,
// Stat, RemoveDirectory).
type Store interface {
	// Exists reports whether the named file — or the tenant directory when
	// name is "" — exists.
	Exists(ctx context.Context, tenantID, name string) (bool, error)

	// Stat returns metadata for the named file or the tenant directory.
	// Fails with ErrNotFound if absent. Implementations tolerate the
	// exists-then-stat race by reporting ErrNotFound rather than ErrIO when
	// the item vanishes between the two calls.
	Stat(ctx context.Context, tenantID, name string) (*Info, error)

	// ReadText returns the file's content as a string.
	ReadText(ctx context.Context, tenantID, name string) (string, error)

	// WriteText writes data according to mode and returns the number of
	// bytes written. The mode's existence precondition (append requires the
	// file, create requires its absence) is checked before any write and
	// violated preconditions fail with ErrPrecondition or ErrExists.
	WriteText(ctx context.Context, tenantID, name, data string, mode command.WriteMode) (int, error)

	// Remove deletes a regular file.
	Remove(ctx context.Context, tenantID, name string) error

	// RemoveDirectory deletes the named child directory, or the tenant
	// directory itself when name is "". Non-recursive removal of a
	// non-empty directory fails with ErrNotEmpty.
	RemoveDirectory(ctx context.Context, tenantID, name string, recursive bool) error

	// Rename moves from → to within the tenant directory. Without overwrite
	// an existing target fails with ErrExists.
	Rename(ctx context.Context, tenantID, from, to string, overwrite bool) error

	// MakeDirectory creates the tenant's own directory. Creating it when it
	// already exists is not an error.
	MakeDirectory(ctx context.Context, tenantID string) error

	// ListChildren returns the entries of the tenant directory. A missing
	// tenant directory yields an empty listing, not an error.
	ListChildren(ctx context.Context, tenantID string) ([]Info, error)

	// Root returns the fixed root location of the store, for diagnostic
	// commands that report path names.
	Root() string
}
