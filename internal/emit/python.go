package emit

import (
	"strings"
	"text/template"

	"github.com/ehabterra/apigen/internal/calls"
	"github.com/ehabterra/apigen/internal/config"
)

func newPython() Emitter {
	return newTemplateEmitter(config.LanguagePython, "meraki_api.py", dialect{
		args: func(rec calls.Record) string {
			args := append([]string{}, rec.PathArgs...)
			if rec.HasParams {
				args = append(args, calls.ParamsArg+"=None")
			}
			return strings.Join(args, ", ")
		},
		pathExpr: func(rec calls.Record) string {
			if rec.QueryEncoded() {
				return rec.URLFormatWith("url_query")
			}
			return rec.URLFormat
		},
		doc: func(desc string) string {
			doc := pyDocString(desc)
			if !strings.Contains(doc, "\n") {
				// a trailing quote would merge with the closing delimiter
				if strings.HasSuffix(doc, `"`) {
					doc += " "
				}
				return doc
			}
			return continueLines(4, doc) + "\n    "
		},
		funcs: template.FuncMap{
			"pyString": singleQuoted,
			"pyDoc":    pyDocString,
		},
	})
}

// pyDocString escapes text placed between triple double quotes.
func pyDocString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"""`, `\"\"\"`)
}
