// Copyright 2025 Ehab Terra
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package calls turns documented endpoints into language-neutral call
// records: a function name, an argument list, a path template and a
// description, plus the statistics the script preamble reports.
package calls

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/kr/text"

	"github.com/ehabterra/apigen/internal/apidocs"
	"github.com/ehabterra/apigen/internal/config"
)

// DefaultWrapWidth is the column descriptions wrap at when the textwrap
// option is set.
const DefaultWrapWidth = 79

// Normalizer converts endpoints into records.
type Normalizer struct {
	Options config.Options
	Logger  hclog.Logger
	// Language is the target language. Calls are only grouped into classes
	// when it has them; empty means it does.
	Language string
	// WrapWidth overrides DefaultWrapWidth when positive.
	WrapWidth int
}

// NewNormalizer returns a Normalizer for the given options. A nil logger
// discards output.
func NewNormalizer(opts config.Options, logger hclog.Logger) *Normalizer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Normalizer{Options: opts, Logger: logger}
}

// Normalize converts every endpoint, in order. Endpoints that cannot be
// converted are collected into a single error and no records are returned.
// Name collisions inside a scope (the class in classy mode, the whole
// script otherwise) are resolved with numeric suffixes.
func (n *Normalizer) Normalize(eps []apidocs.Endpoint) ([]Record, error) {
	logger := n.logger()

	var merr *multierror.Error
	records := make([]Record, 0, len(eps))
	for _, ep := range eps {
		rec, err := n.normalize(ep)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s %s: %w", ep.Verb, ep.Path, err))
			continue
		}
		records = append(records, rec)
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}

	resolveCollisions(records, logger)
	logger.Debug("normalized endpoints", "records", len(records))
	return records, nil
}

func (n *Normalizer) logger() hclog.Logger {
	if n.Logger == nil {
		return hclog.NewNullLogger()
	}
	return n.Logger
}

func (n *Normalizer) classy() bool {
	if !n.Options.Has(config.OptClassy) {
		return false
	}
	return n.Language == "" || config.HasClasses(n.Language)
}

func (n *Normalizer) normalize(ep apidocs.Endpoint) (Record, error) {
	verb := strings.ToUpper(strings.TrimSpace(ep.Verb))
	if verb == "" {
		return Record{}, fmt.Errorf("missing HTTP verb")
	}

	tmpl, err := ParsePath(ep.Path)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		Name:      callName(verb, ep, tmpl),
		Verb:      verb,
		Path:      tmpl.Bracketed(),
		Section:   ep.Section,
		HasParams: ep.HasPayload(),
		Placement: PlacementFor(verb),
		Params:    ep.PayloadParams(),
		template:  tmpl,
	}
	if n.classy() {
		rec.Class = ClassName(ep.Section)
	}

	rec.PathArgs = pathArgs(tmpl.Placeholders())
	rec.Args = append([]string{}, rec.PathArgs...)
	if rec.HasParams {
		rec.Args = append(rec.Args, ParamsArg)
	}
	rec.URLFormat = rec.URLFormatWith()
	rec.Description = n.describe(ep, rec)
	return rec, nil
}

// callName prefers the operation id, then the summary, then the verb
// followed by the literal path segments.
func callName(verb string, ep apidocs.Endpoint, tmpl *PathTemplate) string {
	switch {
	case strings.TrimSpace(ep.OperationID) != "":
		return SafeIdentifier(ep.OperationID)
	case strings.TrimSpace(ep.Summary) != "":
		return SafeIdentifier(ep.Summary)
	}

	parts := []string{strings.ToLower(verb)}
	for _, s := range tmpl.Segments() {
		if !s.IsPlaceholder() {
			parts = append(parts, s.Literal)
		}
	}
	return SafeIdentifier(strings.Join(parts, "_"))
}

// pathArgs turns placeholders into unique identifiers, in path order.
func pathArgs(placeholders []string) []string {
	args := make([]string, 0, len(placeholders))
	seen := make(map[string]bool, len(placeholders))
	for _, p := range placeholders {
		id := SafeIdentifier(p)
		name := id
		for i := 2; seen[name]; i++ {
			name = fmt.Sprintf("%s_%d", id, i)
		}
		seen[name] = true
		args = append(args, name)
	}
	return args
}

func resolveCollisions(records []Record, logger hclog.Logger) {
	taken := make(map[string]bool, len(records))
	key := func(class, name string) string { return class + "." + name }

	for i := range records {
		rec := &records[i]
		if !taken[key(rec.Class, rec.Name)] {
			taken[key(rec.Class, rec.Name)] = true
			continue
		}
		name := rec.Name
		for suffix := 2; taken[key(rec.Class, name)]; suffix++ {
			name = fmt.Sprintf("%s_%d", rec.Name, suffix)
		}
		logger.Warn("duplicate function name renamed",
			"name", rec.Name, "renamed", name, "class", rec.Class, "verb", rec.Verb, "path", rec.Path)
		rec.Name = name
		taken[key(rec.Class, name)] = true
	}
}

func (n *Normalizer) wrapWidth(rec Record) int {
	width := n.WrapWidth
	if width <= 0 {
		width = DefaultWrapWidth
	}
	// function bodies sit one level deeper inside a class
	indent := 4
	if rec.Class != "" {
		indent = 8
	}
	if width-indent < 20 {
		return 20
	}
	return width - indent
}

func (n *Normalizer) wrap(s string, width int) string {
	if !n.Options.Has(config.OptTextWrap) {
		return s
	}
	paras := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n")
	for i, p := range paras {
		paras[i] = text.Wrap(p, width)
	}
	return strings.Join(paras, "\n\n")
}

// describe builds the documentation block of a generated function.
func (n *Normalizer) describe(ep apidocs.Endpoint, rec Record) string {
	width := n.wrapWidth(rec)
	var blocks []string

	summary := strings.TrimSpace(ep.Summary)
	if summary != "" {
		blocks = append(blocks, n.wrap(summary, width))
	}
	if d := strings.TrimSpace(ep.Description); d != "" && d != summary {
		blocks = append(blocks, n.wrap(d, width))
	}
	blocks = append(blocks, fmt.Sprintf("HTTP %s %s", rec.Verb, rec.Path))

	if len(rec.Args) > 0 {
		var b strings.Builder
		b.WriteString("Args:")
		for i, arg := range rec.PathArgs {
			line := fmt.Sprintf("%s: path parameter %s", arg, rec.template.Placeholders()[i])
			b.WriteString("\n" + text.Indent(n.wrap(line, width-4), "    "))
		}
		if rec.HasParams {
			where := "query string parameters"
			if rec.Placement == Body {
				where = "request body parameters"
			}
			b.WriteString("\n    " + ParamsArg + ": " + where)
			for _, p := range rec.Params {
				line := p.Name
				if p.Required {
					line += " (required)"
				}
				if d := strings.TrimSpace(p.Description); d != "" {
					line += ": " + d
				}
				b.WriteString("\n" + text.Indent(n.wrap(line, width-8), "        "))
			}
		}
		blocks = append(blocks, b.String())
	}

	if n.Options.Has(config.OptAddSampleResp) && strings.TrimSpace(ep.SampleResponse) != "" {
		blocks = append(blocks, "Sample response:\n"+strings.TrimRight(ep.SampleResponse, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}
