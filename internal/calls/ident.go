package calls

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// reservedWords is the union of the keywords of every target language. A
// generated identifier colliding with one of them gets a trailing underscore.
var reservedWords = map[string]struct{}{
	// python
	"and": {}, "as": {}, "assert": {}, "async": {}, "await": {}, "break": {}, "class": {},
	"continue": {}, "def": {}, "del": {}, "elif": {}, "else": {}, "except": {}, "false": {},
	"finally": {}, "for": {}, "from": {}, "global": {}, "if": {}, "import": {}, "in": {},
	"is": {}, "lambda": {}, "none": {}, "nonlocal": {}, "not": {}, "or": {}, "pass": {},
	"raise": {}, "return": {}, "true": {}, "try": {}, "while": {}, "with": {}, "yield": {},
	// ruby
	"alias": {}, "begin": {}, "case": {}, "defined": {}, "do": {}, "end": {}, "ensure": {},
	"module": {}, "next": {}, "nil": {}, "redo": {}, "rescue": {}, "retry": {}, "self": {},
	"super": {}, "then": {}, "undef": {}, "unless": {}, "until": {}, "when": {},
	// bash
	"done": {}, "esac": {}, "fi": {}, "function": {}, "select": {}, "time": {}, "local": {},
	// powershell
	"data": {}, "dynamicparam": {}, "elseif": {}, "exit": {}, "filter": {}, "foreach": {},
	"param": {}, "process": {}, "switch": {}, "throw": {}, "trap": {}, "args": {}, "input": {},
	// names used by the generated runtime helpers
	"params": {}, "api_call": {}, "graceful_exit": {}, "url_query": {}, "response": {},
	"urlencode_params": {}, "headers": {}, "body": {},
	// modules the generated python imports
	"json": {}, "requests": {}, "urllib": {},
}

// IsReserved reports whether name is a keyword in any target language or a
// name taken by the generated helpers and imports.
func IsReserved(name string) bool {
	_, ok := reservedWords[strings.ToLower(name)]
	return ok
}

// Identifier converts free text into a lower snake_case identifier.
//
// Rules: camelCase boundaries become underscores (organizationId ->
// organization_id, HTTPServer -> http_server); every run of characters outside
// [a-z0-9] collapses to one underscore; leading and trailing underscores are
// dropped; a leading digit is prefixed with '_'; empty input yields "call".
func Identifier(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}

	var out strings.Builder
	pendingSep := false
	for _, r := range b.String() {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && out.Len() > 0 {
				out.WriteByte('_')
			}
			pendingSep = false
			out.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	id := out.String()
	if id == "" {
		return "call"
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = "_" + id
	}
	return id
}

// SafeIdentifier is Identifier with a trailing '_' appended to reserved words.
func SafeIdentifier(s string) string {
	id := Identifier(s)
	if IsReserved(id) {
		id += "_"
	}
	return id
}

// ClassName converts a section label into a PascalCase class name:
// "switch ports" -> "SwitchPorts", "MR" -> "MR".
func ClassName(section string) string {
	words := strings.FieldsFunc(section, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	caser := cases.Title(language.English, cases.NoLower)
	var b strings.Builder
	for _, w := range words {
		b.WriteString(caser.String(w))
	}

	name := b.String()
	if name == "" {
		return "Default"
	}
	if unicode.IsDigit([]rune(name)[0]) {
		name = "Section" + name
	}
	return name
}
