// Package matcher holds the pure predicates that decide whether a request
// matcher admits a live request. Every exported predicate is a total
// function: malformed matcher input (a bad regex, unparseable XML) is
// reported as a non-match, never as an error or panic up the call stack.
package matcher

import (
	"strings"

	"github.com/opsmock/mockserver-go/internal/model"
)

// standardHeaders is ignored when checking STRICT key-set agreement, unless
// the expectation explicitly asserts on one of them — in which case it is
// treated as an ordinary match and no longer exempted for that comparison.
var standardHeaders = map[string]struct{}{
	"host":            {},
	"connection":      {},
	"content-length":  {},
	"user-agent":      {},
	"accept":          {},
	"accept-encoding": {},
	"content-type":    {},
}

// Matches reports whether m admits r.
func Matches(m *model.RequestMatcher, r *model.Request) bool {
	if m == nil {
		return true
	}

	if !matchField(m.Method, r.Method, matchLiteral) {
		return false
	}
	if !matchField(m.Path, r.Path, matchPathValue) {
		return false
	}
	if !matchQueryParams(m.QueryParams, r.Query, m.EffectiveMatchType()) {
		return false
	}
	if !matchHeaders(m.Headers, r.Headers, m.EffectiveMatchType()) {
		return false
	}
	if !matchBody(m.Body, r) {
		return false
	}
	return true
}

func matchField(f *model.FieldMatcher, actual string, cmp func(value, actual string) bool) bool {
	if f == nil {
		return true
	}
	result := cmp(f.Value, actual)
	if f.Not {
		return !result
	}
	return result
}

func matchLiteral(value, actual string) bool {
	return value == actual
}

// matchPathValue interprets value as a /regex/ literal, a glob containing
// "*", or a plain literal, in that priority order.
func matchPathValue(value, actual string) bool {
	if len(value) >= 2 && strings.HasPrefix(value, "/") && strings.HasSuffix(value, "/") {
		return MatchRegex(value[1:len(value)-1], actual)
	}
	if strings.Contains(value, "*") {
		return MatchWildcard(value, actual)
	}
	return value == actual
}

func matchHeaders(m *model.MultiValueMatcher, actual map[string][]string, matchType model.MatchType) bool {
	normalized := make(map[string][]string, len(actual))
	for k, v := range actual {
		normalized[strings.ToLower(k)] = v
	}
	return matchMultiValue(m, normalized, matchType, standardHeaders, true)
}

func matchQueryParams(m *model.MultiValueMatcher, actual map[string][]string, matchType model.MatchType) bool {
	return matchMultiValue(m, actual, matchType, nil, false)
}

// matchMultiValue implements the shared header/query-param semantics: every
// expected key must be present among actual's values for that key (set
// semantics, each expected value present regardless of order); under STRICT
// the key sets must agree modulo whitelist. The whole match is inverted by
// m.Not.
func matchMultiValue(m *model.MultiValueMatcher, actual map[string][]string, matchType model.MatchType, whitelist map[string]struct{}, caseInsensitiveKeys bool) bool {
	if m == nil {
		if matchType != model.MatchStrict {
			return true
		}
		return onlyWhitelisted(actual, nil, whitelist, caseInsensitiveKeys)
	}

	result := evalMultiValue(m, actual, matchType, whitelist, caseInsensitiveKeys)
	if m.Not {
		return !result
	}
	return result
}

func evalMultiValue(m *model.MultiValueMatcher, actual map[string][]string, matchType model.MatchType, whitelist map[string]struct{}, caseInsensitiveKeys bool) bool {
	for name, expectedValues := range m.Values {
		key := name
		if caseInsensitiveKeys {
			key = strings.ToLower(name)
		}
		actualValues, ok := actual[key]
		if !ok {
			return false
		}
		for _, ev := range expectedValues {
			if !containsMatchingValue(actualValues, ev) {
				return false
			}
		}
	}
	if matchType == model.MatchStrict {
		return onlyWhitelisted(actual, m.Values, whitelist, caseInsensitiveKeys)
	}
	return true
}

// onlyWhitelisted reports whether every actual key not present in expected
// is exempt under the whitelist (standard headers). A key explicitly given
// in expected loses its exemption for this comparison, but that is moot here
// since such keys are excluded from the "leftover" set entirely.
func onlyWhitelisted(actual map[string][]string, expected map[string][]string, whitelist map[string]struct{}, caseInsensitiveKeys bool) bool {
	expectedKeys := expected
	if caseInsensitiveKeys && expected != nil {
		expectedKeys = make(map[string][]string, len(expected))
		for k, v := range expected {
			expectedKeys[strings.ToLower(k)] = v
		}
	}

	for key := range actual {
		lookup := key
		if caseInsensitiveKeys {
			lookup = strings.ToLower(key)
		}
		if _, given := expectedKeys[lookup]; given {
			continue
		}
		if whitelist == nil {
			return false
		}
		if _, exempt := whitelist[lookup]; !exempt {
			return false
		}
	}
	return true
}

// containsMatchingValue matches an expected value against actual's values
// for a key; an expected value wrapped in /regex/ is matched as a regex,
// otherwise as a literal string.
func containsMatchingValue(actualValues []string, expected string) bool {
	isRegex := len(expected) >= 2 && strings.HasPrefix(expected, "/") && strings.HasSuffix(expected, "/")
	pattern := expected
	if isRegex {
		pattern = expected[1 : len(expected)-1]
	}
	for _, av := range actualValues {
		if isRegex {
			if MatchRegex(pattern, av) {
				return true
			}
		} else if av == expected {
			return true
		}
	}
	return false
}
