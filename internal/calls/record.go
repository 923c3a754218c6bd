package calls

import (
	"strings"

	"github.com/ehabterra/apigen/internal/apidocs"
)

// Placement says where a call's `params` argument travels.
type Placement string

const (
	QueryString Placement = "query"
	Body        Placement = "body"
)

// PlacementFor maps an HTTP verb to its parameter placement: GET, DELETE,
// HEAD and OPTIONS use the query string, everything else the request body.
func PlacementFor(verb string) Placement {
	switch strings.ToUpper(verb) {
	case "GET", "DELETE", "HEAD", "OPTIONS":
		return QueryString
	default:
		return Body
	}
}

// ParamsArg is the name of the trailing argument carrying query or body parameters.
const ParamsArg = "params"

// Record is one endpoint normalized for rendering. Records are created by
// the Normalizer and not modified afterwards.
type Record struct {
	Name        string
	Description string
	// Args lists PathArgs followed by ParamsArg when HasParams is set.
	Args      []string
	PathArgs  []string
	HasParams bool
	Placement Placement
	// URLFormat is a Python format expression for the path, e.g.
	// '/networks/{}/devices'.format(network_id).
	URLFormat string
	Verb      string
	Path      string
	Section   string
	// Class is the container name in classy mode and empty otherwise.
	Class  string
	Params []apidocs.Param

	template *PathTemplate
}

// ArgList returns the comma-joined argument list.
func (r Record) ArgList() string {
	return strings.Join(r.Args, ", ")
}

// QueryEncoded reports whether generated code must urlencode params into
// the query string.
func (r Record) QueryEncoded() bool {
	return r.HasParams && r.Placement == QueryString
}

// BodyEncoded reports whether generated code must serialize params as the
// request payload.
func (r Record) BodyEncoded() bool {
	return r.HasParams && r.Placement == Body
}

func (r Record) pathTemplate() *PathTemplate {
	if r.template != nil {
		return r.template
	}
	t, err := ParsePath(r.Path)
	if err != nil {
		return &PathTemplate{raw: r.Path, segments: []Segment{{Literal: r.Path}}}
	}
	return t
}

// RenderPath rebuilds the path for a target language. lit escapes literal
// text (nil keeps it as is); arg renders the reference to a path argument.
func (r Record) RenderPath(lit func(string) string, arg func(name string) string) string {
	return r.pathTemplate().Render(lit, func(i int, placeholder string) string {
		if i < len(r.PathArgs) {
			return arg(r.PathArgs[i])
		}
		return arg(SafeIdentifier(placeholder))
	})
}

// URLFormatWith returns the Python format expression with an extra "{}"
// appended at the end of the path for every extra argument.
func (r Record) URLFormatWith(extra ...string) string {
	format := r.RenderPath(escapePythonFormat, func(string) string { return "{}" })
	format += strings.Repeat("{}", len(extra))

	args := append(append([]string{}, r.PathArgs...), extra...)
	quoted := "'" + format + "'"
	if len(args) == 0 {
		return strings.ReplaceAll(strings.ReplaceAll(quoted, "{{", "{"), "}}", "}")
	}
	return quoted + ".format(" + strings.Join(args, ", ") + ")"
}

func escapePythonFormat(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "{", "{{", "}", "}}")
	return r.Replace(s)
}
