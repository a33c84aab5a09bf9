package names

import (
	"regexp"
	"strings"
)

// CompileGlob translates a shell-style pattern into an anchored regular
// expression matcher: '*' matches any run of characters, '?' matches a
// single character, and every other regex metacharacter is escaped so it
// matches literally.
//
// The returned matcher is applied to base names only; patterns cannot reach
// outside a tenant's directory because names cannot contain separators.
func CompileGlob(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	return regexp.Compile(b.String())
}
