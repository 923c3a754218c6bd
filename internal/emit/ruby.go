package emit

import (
	"strings"
	"text/template"

	"github.com/ehabterra/apigen/internal/calls"
	"github.com/ehabterra/apigen/internal/config"
)

var rubyLiteral = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `#`, `\#`)

func newRuby() Emitter {
	return newTemplateEmitter(config.LanguageRuby, "meraki_api.rb", dialect{
		args: func(rec calls.Record) string {
			args := append([]string{}, rec.PathArgs...)
			if rec.HasParams {
				args = append(args, calls.ParamsArg+" = nil")
			}
			// no parentheses for calls without arguments
			if len(args) == 0 {
				return ""
			}
			return "(" + strings.Join(args, ", ") + ")"
		},
		pathExpr: func(rec calls.Record) string {
			path := rec.RenderPath(rubyLiteral.Replace, func(name string) string {
				return "#{" + name + "}"
			})
			if rec.QueryEncoded() {
				path += "#{url_query}"
			}
			return `"#{BASE_URL}` + path + `"`
		},
		doc: func(desc string) string {
			return commentLines("#", desc)
		},
		funcs: template.FuncMap{
			"rbString": singleQuoted,
		},
	})
}
