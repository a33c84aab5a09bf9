package names

import (
	"strings"
	"testing"
)

func TestIsValidName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple name", "notes.txt", true},
		{"single char", "a", true},
		{"max length 64", strings.Repeat("a", 64), true},
		{"length 65 rejected", strings.Repeat("a", 65), false},
		{"length 256 rejected", strings.Repeat("a", 256), false},
		{"empty rejected", "", false},
		{"forward slash", "a/b", false},
		{"backslash", `a\b`, false},
		{"colon", "a:b", false},
		{"question mark", "a?b", false},
		{"asterisk", "a*b", false},
		{"angle brackets", "<name>", false},
		{"double quote", `"name"`, false},
		{"pipe", "a|b", false},
		{"control char", "a\x01b", false},
		{"null byte", "a\x00b", false},
		{"dot names allowed", "..", true}, // only directory names reject ".."
		{"spaces allowed", "my file.txt", true},
		{"unicode allowed", "ファイル.txt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidName(tt.input); got != tt.want {
				t.Errorf("IsValidName(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidName_ReservedDevices(t *testing.T) {
	reserved := []string{"con", "prn", "aux", "nul"}
	for i := 0; i <= 9; i++ {
		reserved = append(reserved, "com"+string(rune('0'+i)), "lpt"+string(rune('0'+i)))
	}

	for _, name := range reserved {
		if IsValidName(name) {
			t.Errorf("reserved name %q should be rejected", name)
		}
		upper := strings.ToUpper(name)
		if IsValidName(upper) {
			t.Errorf("reserved name %q should be rejected case-insensitively", upper)
		}
	}

	// Reserved names are exact matches only.
	for _, name := range []string{"console", "con.txt", "aux1", "com10"} {
		if !IsValidName(name) {
			t.Errorf("%q is not reserved and should be accepted", name)
		}
	}
}

func TestIsValidDirectoryName(t *testing.T) {
	if IsValidDirectoryName("..") {
		t.Error("directory name '..' must be rejected")
	}
	if !IsValidDirectoryName("subdir") {
		t.Error("plain directory name should be accepted")
	}
	if IsValidDirectoryName("a/b") {
		t.Error("directory name with separator must be rejected")
	}
}

// TestIsValidTenantID covers the fixed email/GUID acceptance: the upstream
// implementation returned true unconditionally once the basic check passed;
// here the extra shapes are real alternatives with anchored patterns.
func TestIsValidTenantID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"extension-style id", "my-extension@example.org", true},
		{"plain name id", "extension-one", true},
		{"bare guid", "550e8400-e29b-41d4-a716-446655440000", true},
		{"enclosed guid", "{550e8400-e29b-41d4-a716-446655440000}", true},
		{"guid wrong group lengths", "550e8400-e29b-41d4-a716-4466", false},
		{"guid non-hex", "550e8400-e29b-41d4-a716-44665544zzzz", false},
		{"reserved name passes as email", "con@example.org", true},
		{"reserved plain name", "con", false},
		{"long email accepted beyond name limit", strings.Repeat("a", 70) + "@example.org", true},
		{"long non-email rejected", strings.Repeat("a", 70), false},
		{"empty", "", false},
		{"path traversal", "../other", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidTenantID(tt.input); got != tt.want {
				t.Errorf("IsValidTenantID(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestComposePath(t *testing.T) {
	got := ComposePath("/srv/broker", "tenant-a", "notes.txt")
	if got != "/srv/broker/tenant-a/notes.txt" {
		t.Errorf("ComposePath = %q", got)
	}

	got = ComposePath("/srv/broker/", "tenant-a")
	if got != "/srv/broker/tenant-a" {
		t.Errorf("ComposePath without name = %q", got)
	}
}

// TestComposePath_Confinement verifies that validated inputs can never
// compose a path escaping the tenant directory.
func TestComposePath_Confinement(t *testing.T) {
	tenants := []string{"tenant-a", "ext@example.org", "{550e8400-e29b-41d4-a716-446655440000}"}
	leaves := []string{"notes.txt", "a b c", "x.y.z"}

	for _, tenant := range tenants {
		if !IsValidTenantID(tenant) {
			t.Fatalf("test tenant %q should be valid", tenant)
		}
		for _, leaf := range leaves {
			if !IsValidName(leaf) {
				t.Fatalf("test leaf %q should be valid", leaf)
			}
			p := ComposePath("/root", tenant, leaf)
			rest := strings.TrimPrefix(p, "/root/")
			if strings.Contains(rest, "..") {
				t.Errorf("composed path %q contains '..'", p)
			}
			if strings.Count(p, "/") != 3 {
				t.Errorf("composed path %q has unexpected extra segments", p)
			}
		}
	}
}

func TestIsValidPath(t *testing.T) {
	if !IsValidPath(strings.Repeat("a", 255)) {
		t.Error("255-char path should be valid")
	}
	if IsValidPath(strings.Repeat("a", 256)) {
		t.Error("256-char path should be invalid")
	}
	if IsValidPath("") {
		t.Error("empty path should be invalid")
	}
}

func TestCompileGlob(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{"*.txt", "notes.txt", true},
		{"*.txt", "notes.json", false},
		{"*", "anything at all", true},
		{"?.log", "a.log", true},
		{"?.log", "ab.log", false},
		{"data.[1]", "data.[1]", true}, // brackets are literal
		{"data.[1]", "data.1", false},
		{"a+b", "a+b", true}, // plus is literal
		{"a+b", "aab", false},
		{"report-??.*", "report-01.csv", true},
	}

	for _, tt := range tests {
		re, err := CompileGlob(tt.pattern)
		if err != nil {
			t.Fatalf("CompileGlob(%q): %v", tt.pattern, err)
		}
		if got := re.MatchString(tt.input); got != tt.want {
			t.Errorf("glob %q on %q = %v, want %v", tt.pattern, tt.input, got, tt.want)
		}
	}
}
