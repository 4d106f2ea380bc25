package contract

import (
	"fmt"
	"strings"
)

// Segment is either a literal run of the path or a parameter placeholder.
type Segment struct {
	Literal string
	Param   string
}

func (s Segment) IsParam() bool { return s.Param != "" }

// PathTemplate is an ordered sequence of literal and placeholder segments,
// written "/_rest_/bucket/{bucketName}".
type PathTemplate struct {
	segments []Segment
}

// ParsePathTemplate rejects unbalanced or empty braces.
func ParsePathTemplate(raw string) (PathTemplate, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "/"
	}
	var segs []Segment
	rest := raw
	for rest != "" {
		open := strings.IndexByte(rest, '{')
		closing := strings.IndexByte(rest, '}')
		if open < 0 {
			if closing >= 0 {
				return PathTemplate{}, fmt.Errorf("path %q: unmatched '}'", raw)
			}
			segs = append(segs, Segment{Literal: rest})
			break
		}
		if closing >= 0 && closing < open {
			return PathTemplate{}, fmt.Errorf("path %q: unmatched '}'", raw)
		}
		if open > 0 {
			segs = append(segs, Segment{Literal: rest[:open]})
		}
		rest = rest[open+1:]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			return PathTemplate{}, fmt.Errorf("path %q: unterminated placeholder", raw)
		}
		name := strings.TrimSpace(rest[:end])
		if name == "" || strings.ContainsAny(name, "{/") {
			return PathTemplate{}, fmt.Errorf("path %q: invalid placeholder %q", raw, rest[:end])
		}
		segs = append(segs, Segment{Param: name})
		rest = rest[end+1:]
	}
	return PathTemplate{segments: segs}, nil
}

// Segments returns a copy of the template's segments.
func (p PathTemplate) Segments() []Segment {
	return append([]Segment(nil), p.segments...)
}

// Placeholders lists parameter names in path order.
func (p PathTemplate) Placeholders() []string {
	var out []string
	for _, s := range p.segments {
		if s.IsParam() {
			out = append(out, s.Param)
		}
	}
	return out
}

func (p PathTemplate) String() string {
	var b strings.Builder
	for _, s := range p.segments {
		if s.IsParam() {
			b.WriteString("{" + s.Param + "}")
			continue
		}
		b.WriteString(s.Literal)
	}
	return b.String()
}
