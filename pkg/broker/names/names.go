// Package names implements the naming rules shared by every file operation.
//
// All functions in this package are pure: they perform no I/O, never panic,
// and return plain booleans. Callers must check the boolean before handing
// any name to a file store — nothing downstream revalidates.
package names

import (
	"regexp"
	"strings"
)

const (
	// MaxNameLength is the maximum length of a file, directory, or tenant name.
	MaxNameLength = 64

	// MaxPathLength is the maximum length of a composed path.
	MaxPathLength = 255
)

// illegalChars matches any character forbidden inside a name: the Windows
// reserved set plus ASCII control characters. Path separators are part of
// this set, which is what confines every name to a single path segment.
var illegalChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)

// reservedNames are device names rejected case-insensitively.
var reservedNames = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
	"com0": true, "com1": true, "com2": true, "com3": true, "com4": true,
	"com5": true, "com6": true, "com7": true, "com8": true, "com9": true,
	"lpt0": true, "lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true,
	"lpt5": true, "lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	guidPattern  = regexp.MustCompile(`^\{?[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\}?$`)
)

// IsValidName reports whether s is a legal file name: 1 to 64 characters,
// none of them from the illegal set, and not a reserved device name.
func IsValidName(s string) bool {
	if len(s) == 0 || len(s) > MaxNameLength {
		return false
	}
	if illegalChars.MatchString(s) {
		return false
	}
	if reservedNames[strings.ToLower(s)] {
		return false
	}
	return true
}

// IsValidDirectoryName reports whether s is a legal directory name.
// Same rules as IsValidName, additionally rejecting "..".
func IsValidDirectoryName(s string) bool {
	if s == ".." {
		return false
	}
	return IsValidName(s)
}

// IsValidTenantID reports whether s may be used as a tenant identifier and
// therefore as the per-tenant directory segment.
//
// A tenant id is accepted when it satisfies the file-name rules, or when it
// is shaped like an email address or a GUID (enclosed {8-4-4-4-12} or bare).
// The email and GUID patterns are fully anchored; an id that fails the name
// rules and matches neither shape is rejected.
func IsValidTenantID(s string) bool {
	// The id becomes a directory segment, so the dot entries can never be
	// accepted even though they pass the plain name rules.
	if s == "." || s == ".." {
		return false
	}
	if IsValidName(s) {
		return true
	}
	// The alternative shapes still have to be usable as a single path
	// segment: no illegal characters, bounded length.
	if len(s) == 0 || len(s) > MaxPathLength || illegalChars.MatchString(s) {
		return false
	}
	return emailPattern.MatchString(s) || guidPattern.MatchString(s)
}

// IsValidPath reports whether a composed path has a legal total length.
func IsValidPath(path string) bool {
	return len(path) >= 1 && len(path) <= MaxPathLength
}

// ComposePath joins the fixed root, the tenant segment, and at most one leaf
// name with forward slashes. It performs no validation; callers validate the
// parts first and the result with IsValidPath.
func ComposePath(root, tenantID string, name ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(root, "/"))
	b.WriteByte('/')
	b.WriteString(tenantID)
	for _, n := range name {
		if n == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(n)
	}
	return b.String()
}
