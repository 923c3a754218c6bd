package emit

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/ehabterra/apigen/internal/calls"
	"github.com/ehabterra/apigen/internal/config"
)

var bashLiteral = strings.NewReplacer(`\`, `\\`, `$`, `\$`, `"`, `\"`, "`", "\\`")

func newBash() Emitter {
	return newTemplateEmitter(config.LanguageBash, "meraki_api.sh", dialect{
		// bash functions take positional arguments, bound to locals here
		args: func(rec calls.Record) string {
			var lines []string
			for i, arg := range rec.PathArgs {
				lines = append(lines, fmt.Sprintf(`local %s="${%d}"`, arg, i+1))
			}
			if rec.HasParams {
				lines = append(lines, fmt.Sprintf(`local %s="${%d:-}"`, calls.ParamsArg, len(rec.PathArgs)+1))
			}
			return strings.Join(lines, "\n")
		},
		pathExpr: func(rec calls.Record) string {
			path := rec.RenderPath(bashLiteral.Replace, func(name string) string {
				return "${" + name + "}"
			})
			if rec.QueryEncoded() {
				path += "${url_query}"
			}
			return `"${BASE_URL}` + path + `"`
		},
		doc: func(desc string) string {
			return commentLines("#", desc)
		},
		funcs: template.FuncMap{
			"shString": shellQuote,
		},
	})
}

// shellQuote wraps s in single quotes for a POSIX shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
