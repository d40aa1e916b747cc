package matcher

import (
	"regexp"
	"strings"
	"sync"

	"github.com/dlclark/regexp2"
)

// wildcardCache memoises the compiled regex.Regexp for a glob pattern; globs
// are static per expectation and reused across many requests.
var wildcardCache sync.Map // map[string]*regexp.Regexp

// MatchRegex reports whether pattern is found anywhere in actual
// (containment, not whole-match). A malformed pattern is a non-match.
func MatchRegex(pattern, actual string) bool {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return false
	}
	matched, err := re.MatchString(actual)
	if err != nil {
		return false
	}
	return matched
}

// MatchWildcard converts pattern (containing "*" segments) into a regex
// anchored at both ends, each "*" expanding to ".*", and matches actual
// against it in full. A malformed pattern is a non-match.
func MatchWildcard(pattern, actual string) bool {
	re, ok := wildcardCache.Load(pattern)
	if !ok {
		compiled, err := regexp.Compile(wildcardToRegex(pattern))
		if err != nil {
			return false
		}
		wildcardCache.Store(pattern, compiled)
		re = compiled
	}
	return re.(*regexp.Regexp).MatchString(actual)
}

func wildcardToRegex(pattern string) string {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return "^" + strings.Join(parts, ".*") + "$"
}
