package ratelimit

import "strings"

// MatchRule resolves the rule for a request path and method. The
// health check is never limited. Exact path matches win over prefix
// matches. Returns nil when no rule applies.
func MatchRule(path, method string, rules []Rule) *Rule {
	if path == "/health" && method == "GET" {
		return &Rule{} // Limit 0 means unlimited
	}

	for i := range rules {
		r := &rules[i]
		if r.Path == path && r.Method == method {
			return r
		}
	}

	for i := range rules {
		r := &rules[i]
		if r.Method == method && strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			return r
		}
	}

	return nil
}
