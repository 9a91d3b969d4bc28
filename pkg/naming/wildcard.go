package naming

import (
	"regexp"
	"strings"

	"github.com/umisama/go-regexpcache"
)

// Wildcard is a compiled glob pattern ('*' any run, '?' any single character).
//
// Matching is case-insensitive and unanchored: the pattern may match anywhere in
// the candidate, so "pCube1.*" matches "foo.pCube1.translateX" and "Arm?.rotateX"
// matches "Arm10.rotateX".
type Wildcard struct {
	pattern string
	re      *regexp.Regexp
}

// CompileWildcard translates a glob pattern into a matcher. Compiled
// expressions are cached per pattern.
func CompileWildcard(pattern string) *Wildcard {
	return &Wildcard{
		pattern: pattern,
		re:      regexpcache.MustCompile("(?i)" + WildcardToRegexp(pattern)),
	}
}

// WildcardToRegexp escapes regexp metacharacters and converts '*' and '?'
func WildcardToRegexp(pattern string) string {
	escaped := regexp.QuoteMeta(pattern)
	escaped = strings.ReplaceAll(escaped, `\*`, `.*`)
	escaped = strings.ReplaceAll(escaped, `\?`, `.`)
	return escaped
}

// MatchString reports whether the pattern occurs anywhere in s
func (w *Wildcard) MatchString(s string) bool {
	return w.re.MatchString(s)
}

// String returns the original glob pattern
func (w *Wildcard) String() string {
	return w.pattern
}
