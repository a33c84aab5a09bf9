// Package command defines the wire-level command and result types exchanged
// with callers.
//
// A Command is a single discriminated request object: the "command" field
// names the operation and the remaining fields are operation-specific. One
// Command is processed per inbound message; Commands are never persisted.
package command

import "encoding/json"

// Command name constants. The router dispatches on these exact strings;
// anything else yields an unknown-command error (code 404).
const (
	CmdExists                = "exists"
	CmdIsRegularFile         = "isRegularFile"
	CmdIsDirectory           = "isDirectory"
	CmdHasFiles              = "hasFiles"
	CmdGetFileCount          = "getFileCount"
	CmdWriteFile             = "writeFile"
	CmdReplaceFile           = "replaceFile"
	CmdAppendToFile          = "appendToFile"
	CmdWriteJSONFile         = "writeJSONFile"
	CmdWriteObjectToJSONFile = "writeObjectToJSONFile"
	CmdReadFile              = "readFile"
	CmdReadJSONFile          = "readJSONFile"
	CmdReadObjectFromJSON    = "readObjectFromJSONFile"
	CmdGetFileInfo           = "getFileInfo"
	CmdRenameFile            = "renameFile"
	CmdDeleteFile            = "deleteFile"
	CmdDeleteDirectory       = "deleteDirectory"
	CmdMakeDirectory         = "makeDirectory"
	CmdListFiles             = "listFiles"
	CmdListFileInfo          = "listFileInfo"
	CmdList                  = "list"
	CmdListInfo              = "listInfo"
	CmdGetFullPathName       = "getFullPathName"
	CmdIsValidFileName       = "isValidFileName"
	CmdIsValidDirectoryName  = "isValidDirectoryName"
	CmdGetFSPathName         = "getFileSystemPathName"

	// CmdAccess is resolved entirely by the access gate; it never reaches
	// the file store.
	CmdAccess = "access"
)

// Command is the inbound request object carried by a message envelope.
//
// Optional fields use pointer or interface types so handlers can distinguish
// "absent" from zero values: a missing data field is a validation error for
// writeFile, while an empty string is a legal (empty) write.
type Command struct {
	// Command is the operation discriminator.
	Command string `json:"command"`

	// FileName names the target file for single-file operations.
	FileName *string `json:"fileName,omitempty"`

	// DirectoryName names the target directory for deleteDirectory and
	// isValidDirectoryName.
	DirectoryName *string `json:"directoryName,omitempty"`

	// FromFileName and ToFileName are the renameFile endpoints.
	FromFileName *string `json:"fromFileName,omitempty"`
	ToFileName   *string `json:"toFileName,omitempty"`

	// Data is the payload for text writes. Must be a JSON string; any other
	// JSON type is rejected during parameter validation.
	Data json.RawMessage `json:"data,omitempty"`

	// Object is the payload for writeObjectToJSONFile.
	Object json.RawMessage `json:"object,omitempty"`

	// WriteMode selects the write-conflict policy. Empty means the router
	// default ("create").
	WriteMode *string `json:"writeMode,omitempty"`

	// MatchGLOB optionally filters listing results by base name.
	MatchGLOB *string `json:"matchGLOB,omitempty"`

	// Overwrite allows renameFile to replace an existing target.
	Overwrite bool `json:"overwrite,omitempty"`

	// Recursive allows deleteDirectory to remove non-empty directories.
	Recursive bool `json:"recursive,omitempty"`

	// Parameters carries free-form extra arguments. Currently unused by
	// every command; kept for envelope compatibility.
	Parameters json.RawMessage `json:"parameters,omitempty"`
}

// StringData decodes the data field as a JSON string.
// Returns ok=false when data is absent or not a string.
func (c *Command) StringData() (string, bool) {
	if len(c.Data) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(c.Data, &s); err != nil {
		return "", false
	}
	return s, true
}
