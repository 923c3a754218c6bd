package apidocs

import (
	"sort"
	"strings"
)

// Parameter locations. OpenAPI 3 request bodies are reported as InBody so
// both description formats look the same downstream.
const (
	InPath     = "path"
	InQuery    = "query"
	InBody     = "body"
	InFormData = "formData"
	InHeader   = "header"
)

// Endpoint is one documented API operation.
type Endpoint struct {
	Verb           string  `json:"http_method" yaml:"http_method"`
	Path           string  `json:"path" yaml:"path"`
	OperationID    string  `json:"operation_id,omitempty" yaml:"operation_id,omitempty"`
	Summary        string  `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description    string  `json:"description,omitempty" yaml:"description,omitempty"`
	Section        string  `json:"section,omitempty" yaml:"section,omitempty"`
	Params         []Param `json:"params,omitempty" yaml:"params,omitempty"`
	SampleResponse string  `json:"sample_response,omitempty" yaml:"sample_response,omitempty"`
}

// Param describes a single parameter.
type Param struct {
	Name        string `json:"name" yaml:"name"`
	In          string `json:"in" yaml:"in"` // path, query, body, formData, header
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// HasPayload reports whether the endpoint takes query or body parameters,
// i.e. anything a generated function would accept through `params`.
func (e Endpoint) HasPayload() bool {
	for _, p := range e.Params {
		switch p.In {
		case InQuery, InBody, InFormData:
			return true
		}
	}
	return false
}

// PayloadParams returns the query and body parameters in declaration order.
func (e Endpoint) PayloadParams() []Param {
	var out []Param
	for _, p := range e.Params {
		switch p.In {
		case InQuery, InBody, InFormData:
			out = append(out, p)
		}
	}
	return out
}

var verbOrder = map[string]int{
	"GET":    0,
	"POST":   1,
	"PUT":    2,
	"DELETE": 3,
	"PATCH":  4,
}

func verbRank(v string) int {
	if r, ok := verbOrder[v]; ok {
		return r
	}
	return len(verbOrder)
}

// SortEndpoints orders endpoints by path, then by verb (GET, POST, PUT,
// DELETE, PATCH, then anything else alphabetically).
func SortEndpoints(eps []Endpoint) {
	sort.SliceStable(eps, func(i, j int) bool {
		if eps[i].Path != eps[j].Path {
			return eps[i].Path < eps[j].Path
		}
		ri, rj := verbRank(eps[i].Verb), verbRank(eps[j].Verb)
		if ri != rj {
			return ri < rj
		}
		return eps[i].Verb < eps[j].Verb
	})
}

// sectionFromPath falls back to the first literal path segment.
func sectionFromPath(path string) string {
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || strings.HasPrefix(seg, "[") || strings.HasPrefix(seg, "{") {
			continue
		}
		return seg
	}
	return "default"
}
