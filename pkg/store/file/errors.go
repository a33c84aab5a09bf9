package file

// StoreError represents a domain error from file store operations.
//
// These are business-logic failures (not found, precondition violated) as
// opposed to infrastructure failures, which use ErrIO. The router translates
// StoreError codes into the invalid/error result taxonomy returned to
// callers.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the composed path related to the error (if applicable)
	Path string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Path != "" {
		return e.Message + ": " + e.Path
	}
	return e.Message
}

// ErrorCode represents the category of a store error.
type ErrorCode int

const (
	// ErrNotFound indicates the target file or directory doesn't exist.
	// Also produced when a stat races with a concurrent removal: the item
	// existed a moment ago and has vanished.
	ErrNotFound ErrorCode = iota

	// ErrExists indicates the target already exists (create-mode writes,
	// rename without overwrite)
	ErrExists

	// ErrPrecondition indicates a write-mode precondition was violated
	// (append on a missing file)
	ErrPrecondition

	// ErrNotEmpty indicates a directory still has children and cannot be
	// removed non-recursively
	ErrNotEmpty

	// ErrIsDirectory indicates the operation expected a regular file
	ErrIsDirectory

	// ErrNotDirectory indicates the operation expected a directory
	ErrNotDirectory

	// ErrInvalidPath indicates the composed path failed validation; the
	// store refuses to touch the filesystem in that case
	ErrInvalidPath

	// ErrIO indicates an infrastructure failure reading or writing
	ErrIO
)

// IsNotFound reports whether err is a StoreError with code ErrNotFound.
func IsNotFound(err error) bool {
	return hasCode(err, ErrNotFound)
}

// IsExists reports whether err is a StoreError with code ErrExists.
func IsExists(err error) bool {
	return hasCode(err, ErrExists)
}

// IsPrecondition reports whether err is a StoreError with code
// ErrPrecondition.
func IsPrecondition(err error) bool {
	return hasCode(err, ErrPrecondition)
}

func hasCode(err error, code ErrorCode) bool {
	storeErr, ok := err.(*StoreError)
	return ok && storeErr.Code == code
}
