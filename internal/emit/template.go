package emit

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/ehabterra/apigen/internal/calls"
	"github.com/ehabterra/apigen/internal/config"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// functionView is what a language's "function" template sees for one record.
type functionView struct {
	Name     string
	Doc      string
	Args     string
	PathArgs []string
	Verb     string
	PathExpr string

	Placement    calls.Placement
	HasParams    bool
	QueryEncoded bool
	BodyEncoded  bool
	// Static is set for methods rendered inside a class container.
	Static bool
}

type groupView struct {
	Class     string
	Functions []string
}

type scriptView struct {
	Preamble string
	APIKey   string
	BaseURL  string
	Groups   []groupView
	Classy   bool
}

// dialect holds the per-language pieces of a template emitter.
type dialect struct {
	// args renders the parameter list of a function.
	args func(rec calls.Record) string
	// pathExpr renders the expression for the request path, including the
	// encoded query string when the record needs one.
	pathExpr func(rec calls.Record) string
	// doc renders the description as it appears inside the function.
	doc   func(desc string) string
	funcs template.FuncMap
}

type templateEmitter struct {
	language string
	filename string
	tmpl     *template.Template
	dialect  dialect
}

func newTemplateEmitter(language, filename string, d dialect) *templateEmitter {
	src, err := templateFS.ReadFile("templates/" + language + ".tmpl")
	if err != nil {
		panic(fmt.Sprintf("emit: missing template for %s: %v", language, err))
	}

	funcs := sprig.TxtFuncMap()
	funcs["indentBody"] = indentBody
	funcs["comment"] = commentLines
	for k, v := range d.funcs {
		funcs[k] = v
	}

	tmpl := template.Must(template.New(language).Funcs(funcs).Parse(string(src)))
	return &templateEmitter{language: language, filename: filename, tmpl: tmpl, dialect: d}
}

func (e *templateEmitter) Language() string { return e.language }
func (e *templateEmitter) Filename() string { return e.filename }

func (e *templateEmitter) Render(w io.Writer, in Input) error {
	classy := in.Options.Has(config.OptClassy)
	if classy && !config.HasClasses(e.language) {
		in.logger().Info("classy mode has no effect for this language, emitting flat functions", "language", e.language)
		classy = false
	}

	view := scriptView{
		Preamble: strings.TrimRight(in.Preamble, "\n"),
		APIKey:   in.APIKey,
		BaseURL:  strings.TrimRight(in.BaseURL, "/"),
		Classy:   classy,
	}

	groups := make(map[string]int)
	for _, rec := range in.Calls {
		class := ""
		if classy {
			class = rec.Class
			if class == "" {
				class = calls.ClassName(rec.Section)
			}
		}

		fn, err := e.renderFunction(rec, classy)
		if err != nil {
			return fmt.Errorf("%s %s: %w", rec.Verb, rec.Path, err)
		}

		i, ok := groups[class]
		if !ok {
			i = len(view.Groups)
			groups[class] = i
			view.Groups = append(view.Groups, groupView{Class: class})
		}
		view.Groups[i].Functions = append(view.Groups[i].Functions, fn)
	}

	if err := e.tmpl.Execute(w, view); err != nil {
		return fmt.Errorf("failed to execute %s template: %w", e.language, err)
	}
	return nil
}

func (e *templateEmitter) renderFunction(rec calls.Record, static bool) (string, error) {
	fv := functionView{
		Name:         rec.Name,
		Doc:          e.dialect.doc(rec.Description),
		Args:         e.dialect.args(rec),
		PathArgs:     rec.PathArgs,
		Verb:         rec.Verb,
		PathExpr:     e.dialect.pathExpr(rec),
		Placement:    rec.Placement,
		HasParams:    rec.HasParams,
		QueryEncoded: rec.QueryEncoded(),
		BodyEncoded:  rec.BodyEncoded(),
		Static:       static,
	}

	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, "function", fv); err != nil {
		return "", err
	}
	return strings.Trim(buf.String(), "\n"), nil
}

// indentBody prefixes every non-empty line of s with n spaces.
func indentBody(n int, s string) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}

// commentLines turns every line of s into a line comment. Empty lines get
// the bare marker so no trailing whitespace is produced.
func commentLines(marker, s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			lines[i] = marker
			continue
		}
		lines[i] = marker + " " + l
	}
	return strings.Join(lines, "\n")
}

// continueLines indents every line after the first, for text that starts
// right after an opening delimiter.
func continueLines(n int, s string) string {
	first, rest, found := strings.Cut(s, "\n")
	if !found {
		return s
	}
	return first + "\n" + indentBody(n, rest)
}

// singleQuoted escapes s for a single-quoted string literal whose only
// escapes are backslash and the quote.
func singleQuoted(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}
