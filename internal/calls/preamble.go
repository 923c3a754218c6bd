package calls

import (
	"fmt"
	"sort"
	"strings"
)

// Stats counts records per HTTP verb.
type Stats map[string]int

// VerbCount is one entry of Stats.Ordered.
type VerbCount struct {
	Verb  string
	Count int
}

// ComputeStats counts the records per verb.
func ComputeStats(records []Record) Stats {
	s := make(Stats)
	for _, r := range records {
		s[r.Verb]++
	}
	return s
}

// Total returns the number of counted records.
func (s Stats) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

var statsOrder = []string{"GET", "POST", "PUT", "DELETE", "PATCH"}

// Ordered returns the counts for GET, POST, PUT, DELETE and PATCH, in
// that order, followed by any other verb alphabetically. Well-known verbs
// are always present, even with a zero count.
func (s Stats) Ordered() []VerbCount {
	out := make([]VerbCount, 0, len(s)+len(statsOrder))
	known := make(map[string]bool, len(statsOrder))
	for _, v := range statsOrder {
		known[v] = true
		out = append(out, VerbCount{Verb: v, Count: s[v]})
	}

	var extra []string
	for v := range s {
		if !known[v] {
			extra = append(extra, v)
		}
	}
	sort.Strings(extra)
	for _, v := range extra {
		out = append(out, VerbCount{Verb: v, Count: s[v]})
	}
	return out
}

// String renders the counts as "12 GET, 3 POST, ...", omitting zeros.
func (s Stats) String() string {
	var parts []string
	for _, vc := range s.Ordered() {
		if vc.Count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", vc.Count, vc.Verb))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// Preamble composes the header text embedded at the top of a generated
// script. It is plain text; emitters turn it into a comment or doc string.
func Preamble(records []Record, language, source string) string {
	stats := ComputeStats(records)

	var b strings.Builder
	fmt.Fprintf(&b, "Meraki Dashboard API client for %s, generated by apigen.\n", language)
	b.WriteString("\n")
	if source != "" {
		fmt.Fprintf(&b, "Source: %s\n", source)
	}
	fmt.Fprintf(&b, "Calls:  %d (%s)\n", stats.Total(), stats)
	b.WriteString("\n")
	b.WriteString("Every function sends one request and returns the response body.\n")
	b.WriteString("Path parameters are positional; query string and request body\n")
	b.WriteString("parameters are passed through the trailing params argument.\n")
	b.WriteString("The API key is embedded in this file. Keep it private.\n")
	return b.String()
}
