// Package filter selects which documented endpoints are generated, using
// gitignore-style patterns over API paths.
package filter

import "strings"

// Match checks if an API path matches a gitignore-style pattern.
// Supports: *, **, ?, leading/trailing slashes, and negation with !
//
// API paths carry literal brackets around placeholders, so `[` and `]` are
// ordinary characters here.
//
// Examples:
//   - "/organizations/*" matches "/organizations/[organizationId]"
//   - "/networks/**" matches "/networks" and "/networks/[networkId]/devices"
//   - "devices" and "devices/" match any path with a "devices" segment
//   - "!/admin/**" matches every path outside /admin
func Match(pattern, path string) bool {
	negated := strings.HasPrefix(pattern, "!")
	if negated {
		pattern = pattern[1:]
	}
	pattern = strings.TrimPrefix(pattern, "/")
	if pattern == "" {
		return false
	}

	matched := matchPath(pattern, segments(path))
	if negated {
		return !matched
	}
	return matched
}

func segments(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchPath(pattern string, path []string) bool {
	dir := strings.HasSuffix(pattern, "/")
	pattern = strings.TrimSuffix(pattern, "/")

	// a single segment matches at any depth, along with everything below it
	if !strings.Contains(pattern, "/") && pattern != "**" {
		for _, seg := range path {
			if matchSegment(pattern, seg) {
				return true
			}
		}
		return false
	}

	parts := strings.Split(pattern, "/")
	if dir {
		parts = append(parts, "**")
	}
	return matchSegments(parts, path)
}

// matchSegments matches path against pattern parts, where "**" spans zero
// or more segments.
func matchSegments(parts, path []string) bool {
	for len(parts) > 0 {
		if parts[0] == "**" {
			rest := parts[1:]
			for i := 0; i <= len(path); i++ {
				if matchSegments(rest, path[i:]) {
					return true
				}
			}
			return false
		}
		if len(path) == 0 || !matchSegment(parts[0], path[0]) {
			return false
		}
		parts, path = parts[1:], path[1:]
	}
	return len(path) == 0
}

// matchSegment matches one segment: * is any run of characters and ? is
// exactly one.
func matchSegment(pattern, seg string) bool {
	p, s := []rune(pattern), []rune(seg)
	for len(p) > 0 {
		switch p[0] {
		case '*':
			for len(p) > 0 && p[0] == '*' {
				p = p[1:]
			}
			if len(p) == 0 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if matchSegment(string(p), string(s[i:])) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
		default:
			if len(s) == 0 || s[0] != p[0] {
				return false
			}
		}
		p, s = p[1:], s[1:]
	}
	return len(s) == 0
}

// MatchAny reports whether path matches any of the patterns.
func MatchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if Match(pattern, path) {
			return true
		}
	}
	return false
}
