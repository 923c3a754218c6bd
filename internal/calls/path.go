package calls

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPath is returned for paths with unbalanced or invalid placeholders.
var ErrMalformedPath = errors.New("malformed path")

// Segment is either literal text or a placeholder name.
type Segment struct {
	Literal     string
	Placeholder string
}

// IsPlaceholder reports whether the segment is a placeholder.
func (s Segment) IsPlaceholder() bool {
	return s.Placeholder != ""
}

// PathTemplate is a parsed endpoint path such as /networks/[networkId]/devices.
type PathTemplate struct {
	raw      string
	segments []Segment
}

// ParsePath parses placeholders written as [name] or {name}. Names may hold
// letters, digits, '_' and '-'.
func ParsePath(path string) (*PathTemplate, error) {
	t := &PathTemplate{raw: path}

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, Segment{Literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(path); i++ {
		c := path[i]
		switch c {
		case '[', '{':
			closer := byte(']')
			if c == '{' {
				closer = '}'
			}
			end := strings.IndexByte(path[i+1:], closer)
			if end < 0 {
				return nil, fmt.Errorf("%w %q: unterminated placeholder at offset %d", ErrMalformedPath, path, i)
			}
			name := path[i+1 : i+1+end]
			if !validPlaceholder(name) {
				return nil, fmt.Errorf("%w %q: invalid placeholder %q", ErrMalformedPath, path, name)
			}
			flush()
			t.segments = append(t.segments, Segment{Placeholder: name})
			i += end + 1
		case ']', '}':
			return nil, fmt.Errorf("%w %q: unexpected %q at offset %d", ErrMalformedPath, path, c, i)
		default:
			lit.WriteByte(c)
		}
	}
	flush()
	return t, nil
}

func validPlaceholder(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}

// String returns the path as it was parsed.
func (t *PathTemplate) String() string {
	return t.raw
}

// Segments returns the parsed segments.
func (t *PathTemplate) Segments() []Segment {
	return t.segments
}

// Placeholders returns placeholder names in path order, repeats included.
func (t *PathTemplate) Placeholders() []string {
	var names []string
	for _, s := range t.segments {
		if s.IsPlaceholder() {
			names = append(names, s.Placeholder)
		}
	}
	return names
}

// Render rebuilds the path, replacing the i-th placeholder with the result of
// fn and literal text with lit (identity when lit is nil).
func (t *PathTemplate) Render(lit func(string) string, fn func(i int, name string) string) string {
	var b strings.Builder
	n := 0
	for _, s := range t.segments {
		if s.IsPlaceholder() {
			b.WriteString(fn(n, s.Placeholder))
			n++
			continue
		}
		if lit != nil {
			b.WriteString(lit(s.Literal))
		} else {
			b.WriteString(s.Literal)
		}
	}
	return b.String()
}

// Bracketed returns the path with every placeholder written as [name].
func (t *PathTemplate) Bracketed() string {
	return t.Render(nil, func(_ int, name string) string {
		return "[" + name + "]"
	})
}
