package command

import "fmt"

// WriteMode is the write-conflict policy applied to a file write.
type WriteMode string

const (
	// WriteModeOverwrite replaces the file, creating it if absent.
	WriteModeOverwrite WriteMode = "overwrite"

	// WriteModeAppend appends to an existing file; the file must exist.
	WriteModeAppend WriteMode = "append"

	// WriteModeAppendOrCreate appends, creating the file if absent.
	WriteModeAppendOrCreate WriteMode = "appendOrCreate"

	// WriteModeCreate writes a new file; the file must not exist.
	WriteModeCreate WriteMode = "create"
)

// ParseWriteMode normalizes a caller-supplied write mode. "replace" is an
// accepted alias for "overwrite". The empty string resolves to fallback.
func ParseWriteMode(s string, fallback WriteMode) (WriteMode, error) {
	switch s {
	case "":
		return fallback, nil
	case "overwrite", "replace":
		return WriteModeOverwrite, nil
	case "append":
		return WriteModeAppend, nil
	case "appendOrCreate":
		return WriteModeAppendOrCreate, nil
	case "create":
		return WriteModeCreate, nil
	default:
		return "", fmt.Errorf("unknown writeMode %q", s)
	}
}

// Appends reports whether the mode adds to existing content rather than
// replacing it. JSON-writing commands reject appending modes because a JSON
// document is only valid as a whole file.
func (m WriteMode) Appends() bool {
	return m == WriteModeAppend || m == WriteModeAppendOrCreate
}
