package filter

import (
	"strings"

	"github.com/ehabterra/apigen/internal/apidocs"
)

// Filter decides which endpoints are kept. The zero value keeps everything.
type Filter struct {
	Include  []string // path patterns; when set, at least one must match
	Exclude  []string // path patterns; any match drops the endpoint
	Sections []string // section labels, compared case-insensitively
}

// IsZero reports whether the filter keeps every endpoint.
func (f Filter) IsZero() bool {
	return len(f.Include) == 0 && len(f.Exclude) == 0 && len(f.Sections) == 0
}

// Allow reports whether ep passes the filter.
func (f Filter) Allow(ep apidocs.Endpoint) bool {
	if len(f.Sections) > 0 && !f.sectionAllowed(ep.Section) {
		return false
	}
	if len(f.Include) > 0 && !MatchAny(f.Include, ep.Path) {
		return false
	}
	return !MatchAny(f.Exclude, ep.Path)
}

func (f Filter) sectionAllowed(section string) bool {
	for _, s := range f.Sections {
		if strings.EqualFold(strings.TrimSpace(s), section) {
			return true
		}
	}
	return false
}

// Apply returns the endpoints that pass the filter, keeping their order.
func (f Filter) Apply(eps []apidocs.Endpoint) []apidocs.Endpoint {
	if f.IsZero() {
		return eps
	}
	out := make([]apidocs.Endpoint, 0, len(eps))
	for _, ep := range eps {
		if f.Allow(ep) {
			out = append(out, ep)
		}
	}
	return out
}
