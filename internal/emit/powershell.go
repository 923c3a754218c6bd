package emit

import (
	"regexp"
	"strings"
	"text/template"

	"github.com/ehabterra/apigen/internal/calls"
	"github.com/ehabterra/apigen/internal/config"
)

var psLiteral = strings.NewReplacer("`", "``", `$`, "`$", `"`, "`\"")

func newPowerShell() Emitter {
	return newTemplateEmitter(config.LanguagePowerShell, "meraki_api.ps1", dialect{
		args: func(rec calls.Record) string {
			var params []string
			for _, arg := range rec.PathArgs {
				params = append(params, "[Parameter(Mandatory)][string]$"+arg)
			}
			if rec.HasParams {
				params = append(params, "[hashtable]$"+calls.ParamsArg+" = $null")
			}
			return strings.Join(params, ",\n")
		},
		pathExpr: func(rec calls.Record) string {
			path := rec.RenderPath(psLiteral.Replace, func(name string) string {
				return "$($" + name + ")"
			})
			if rec.QueryEncoded() {
				path += "$($urlQuery)"
			}
			return `"` + path + `"`
		},
		doc: psComment,
		funcs: template.FuncMap{
			"psString":  psString,
			"psComment": psComment,
		},
	})
}

// psString returns s as a single-quoted PowerShell string.
func psString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// psComment keeps text from closing or nesting a <# #> block comment.
func psComment(s string) string {
	return strings.NewReplacer("#>", "# >", "<#", "< #").Replace(s)
}

var psSpecial = regexp.MustCompile("([ $#`<>])")

// PSSanitize escapes text passed as a PowerShell command line argument:
// space, '$', '#', '`', '<' and '>' get a backtick prefix, newlines and tabs
// become `n and `t.
func PSSanitize(s string) string {
	s = psSpecial.ReplaceAllString(s, "`$1")
	return strings.NewReplacer("\n", "`n", "\t", "`t").Replace(s)
}

// PSUnsanitize reverses PSSanitize.
func PSUnsanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '`' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
