package contract

import (
	"fmt"
	"sort"

	"github.com/mark3labs/contract2sdk/internal/naming"
)

// Spec is the immutable, validated contract. Accessors return copies of the
// top-level collections so callers cannot reorder or grow the spec.
type Spec struct {
	requests []Request
	types    []Type
	typeMaps []TypeMapElement

	requestIndex map[string]int
	typeIndex    typeIndex
}

// NewSpec validates every request, type and type map and returns the
// assembled spec. It never returns a partially populated value.
func NewSpec(requests []Request, types []Type, typeMaps []TypeMapElement) (*Spec, error) {
	s := &Spec{
		requests:     cloneRequests(requests),
		types:        cloneTypes(types),
		typeMaps:     append([]TypeMapElement(nil), typeMaps...),
		requestIndex: make(map[string]int, len(requests)),
		typeIndex:    newTypeIndex(len(types)),
	}
	sort.SliceStable(s.requests, func(i, j int) bool { return s.requests[i].Name < s.requests[j].Name })
	sort.SliceStable(s.types, func(i, j int) bool { return s.types[i].Name < s.types[j].Name })

	for i, r := range s.requests {
		if err := r.validate(); err != nil {
			return nil, err
		}
		if _, dup := s.requestIndex[r.Name]; dup {
			return nil, parseErrorf(fmt.Sprintf("requests[%s]", r.Name), "duplicate request name %q", r.Name)
		}
		s.requestIndex[r.Name] = i
	}
	for i, t := range s.types {
		if err := t.validate(); err != nil {
			return nil, err
		}
		if _, dup := s.typeIndex.full[t.Name]; dup {
			return nil, parseErrorf(fmt.Sprintf("types[%s]", t.Name), "duplicate type name %q", t.Name)
		}
		s.typeIndex.add(t.Name, i)
	}
	for i, m := range s.typeMaps {
		if err := m.validate(i); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Spec) Requests() []Request { return append([]Request(nil), s.requests...) }

func (s *Spec) Types() []Type { return append([]Type(nil), s.types...) }

func (s *Spec) TypeMaps() []TypeMapElement { return append([]TypeMapElement(nil), s.typeMaps...) }

func (s *Spec) Request(name string) (Request, bool) {
	i, ok := s.requestIndex[name]
	if !ok {
		return Request{}, false
	}
	return s.requests[i], true
}

// LookupType finds a declared type by its exact contract name, falling back
// to an unambiguous short name so "Bucket" finds
// "com.spectralogic.s3.server.domain.Bucket".
func (s *Spec) LookupType(name string) (Type, bool) {
	if i, ok := s.typeIndex.find(name); ok {
		return s.types[i], true
	}
	return Type{}, false
}

// typeIndex resolves type names to positions: exact names first, then short
// names that only one type carries.
type typeIndex struct {
	full  map[string]int
	short map[string]int // -1 when ambiguous
}

func newTypeIndex(n int) typeIndex {
	return typeIndex{full: make(map[string]int, n), short: make(map[string]int, n)}
}

func (x typeIndex) add(name string, i int) {
	x.full[name] = i
	short := naming.ShortName(name)
	if _, seen := x.short[short]; seen {
		x.short[short] = -1
	} else {
		x.short[short] = i
	}
}

func (x typeIndex) find(name string) (int, bool) {
	if i, ok := x.full[name]; ok {
		return i, true
	}
	if i, ok := x.short[naming.ShortName(name)]; ok && i >= 0 {
		return i, true
	}
	return 0, false
}

func cloneRequests(in []Request) []Request {
	out := make([]Request, len(in))
	for i, r := range in {
		r.RequiredParams = append([]Param(nil), r.RequiredParams...)
		r.OptionalParams = append([]Param(nil), r.OptionalParams...)
		if r.Response != nil {
			resp := *r.Response
			resp.Codes = append([]int(nil), resp.Codes...)
			r.Response = &resp
		}
		out[i] = r
	}
	return out
}

func cloneTypes(in []Type) []Type {
	out := make([]Type, len(in))
	for i, t := range in {
		t.Elements = append([]Element(nil), t.Elements...)
		t.EnumConstants = append([]string(nil), t.EnumConstants...)
		out[i] = t
	}
	return out
}
