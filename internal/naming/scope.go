package naming

import "fmt"

// NormalizationConflictError reports two distinct contract identifiers that
// render to the same name for one target.
type NormalizationConflictError struct {
	Target string
	Scope  string // e.g. "type", "request", "field of Bucket"
	Name   string
	First  string
	Second string
}

func (e *NormalizationConflictError) Error() string {
	return fmt.Sprintf("%s: %s name %q produced by both %q and %q", e.Target, e.Scope, e.Name, e.First, e.Second)
}

// Scope tracks the names claimed within one namespace of one target build.
// It is not safe for concurrent use.
type Scope struct {
	target string
	kind   string
	owners map[string]string
}

func NewScope(target, kind string) *Scope {
	return &Scope{target: target, kind: kind, owners: make(map[string]string)}
}

// Claim records that source renders to name. Claiming the same name again for
// the same source is a no-op; a different source is a conflict.
func (s *Scope) Claim(name, source string) error {
	if owner, ok := s.owners[name]; ok && owner != source {
		return &NormalizationConflictError{
			Target: s.target,
			Scope:  s.kind,
			Name:   name,
			First:  owner,
			Second: source,
		}
	}
	s.owners[name] = source
	return nil
}
