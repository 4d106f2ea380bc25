package contract

import (
	"fmt"
	"strings"
)

// Canonical Spec Model. Values are built once by the parsers, validated by
// NewSpec and only read afterwards.

type HTTPVerb string

const (
	GET    HTTPVerb = "GET"
	PUT    HTTPVerb = "PUT"
	POST   HTTPVerb = "POST"
	DELETE HTTPVerb = "DELETE"
	HEAD   HTTPVerb = "HEAD"
)

// ParseHTTPVerb accepts any casing of the five supported verbs.
func ParseHTTPVerb(s string) (HTTPVerb, error) {
	switch v := HTTPVerb(strings.ToUpper(strings.TrimSpace(s))); v {
	case GET, PUT, POST, DELETE, HEAD:
		return v, nil
	default:
		return "", fmt.Errorf("unknown http verb %q", s)
	}
}

type Classification string

const (
	AmazonS3        Classification = "amazons3"
	SpectraS3       Classification = "spectrads3"
	SpectraInternal Classification = "spectrainternal"
)

// ParseClassification defaults to amazons3 when s is empty.
func ParseClassification(s string) (Classification, error) {
	switch c := Classification(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return AmazonS3, nil
	case AmazonS3, SpectraS3, SpectraInternal:
		return c, nil
	default:
		return "", fmt.Errorf("unknown classification %q", s)
	}
}

// Action is the symbolic action of a request. Empty means unspecified.
type Action string

var actions = symbols("BULK_DELETE", "BULK_MODIFY", "CREATE", "DELETE", "LIST", "MODIFY", "SHOW")

func ParseAction(s string) (Action, error) {
	v, err := parseSymbol(s, actions, "action")
	return Action(v), err
}

// Operation is the symbolic operation of a request. Empty means unspecified.
type Operation string

var operations = symbols(
	"ALLOCATE", "CANCEL_EJECT", "CANCEL_FORMAT", "CANCEL_IMPORT", "CANCEL_ONLINE",
	"CANCEL_VERIFY", "CLEAN", "COMPACT", "DEALLOCATE", "EJECT", "FORMAT",
	"GET_PHYSICAL_PLACEMENT", "IMPORT", "INSPECT", "MARK_FOR_COMPACTION", "ONLINE",
	"PAIR_BACK", "REGENERATE_SECRET_KEY", "START_BULK_GET", "START_BULK_PUT",
	"START_BULK_STAGE", "START_BULK_VERIFY", "VERIFY", "VERIFY_PHYSICAL_PLACEMENT",
	"VERIFY_SAFE_TO_START_BULK_PUT",
)

func ParseOperation(s string) (Operation, error) {
	v, err := parseSymbol(s, operations, "operation")
	return Operation(v), err
}

func symbols(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func parseSymbol(s string, known map[string]struct{}, kind string) (string, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "" {
		return "", nil
	}
	if _, ok := known[v]; !ok {
		return "", fmt.Errorf("unknown %s %q", kind, s)
	}
	return v, nil
}

// ParamLocation says where a parameter travels on the wire.
type ParamLocation string

const (
	InPath  ParamLocation = "path"
	InQuery ParamLocation = "query"
)

type Param struct {
	Name string
	Type TypeRef
	In   ParamLocation
}

type Cardinality string

const (
	One  Cardinality = "one"
	Many Cardinality = "many"
)

// Response describes the payload returned on success. A zero Type means the
// response carries no payload.
type Response struct {
	Type        TypeRef
	Cardinality Cardinality
	Codes       []int
}

// NewResponse folds a collection type into Many cardinality of its
// component and fills the default success code.
func NewResponse(t TypeRef, card string, codes []int) (*Response, error) {
	c := Cardinality(strings.ToLower(strings.TrimSpace(card)))
	switch c {
	case "", One, Many:
	default:
		return nil, fmt.Errorf("unknown cardinality %q", card)
	}
	if t.IsCollection() {
		t = TypeRef{Name: t.Component}
		c = Many
	}
	if c == "" {
		c = One
	}
	if len(codes) == 0 {
		codes = []int{200}
	}
	for _, code := range codes {
		if code < 100 || code >= 300 {
			return nil, fmt.Errorf("success code %d out of range", code)
		}
	}
	return &Response{Type: t, Cardinality: c, Codes: append([]int(nil), codes...)}, nil
}

// HasPayload reports whether the response carries a body.
func (r *Response) HasPayload() bool {
	return r != nil && !r.Type.IsZero()
}

type Request struct {
	Name           string
	Classification Classification
	Verb           HTTPVerb
	Action         Action
	Operation      Operation
	Resource       string
	Path           PathTemplate
	RequiredParams []Param
	OptionalParams []Param
	Payload        TypeRef // request body; zero when absent
	Response       *Response
}

// PathParams returns the required params bound to the path, in declared order.
func (r Request) PathParams() []Param {
	var out []Param
	for _, p := range r.RequiredParams {
		if p.In == InPath {
			out = append(out, p)
		}
	}
	return out
}

func (r Request) validate() error {
	ptr := fmt.Sprintf("requests[%s]", r.Name)
	if strings.TrimSpace(r.Name) == "" {
		return parseErrorf("requests", "request without a name")
	}
	if _, err := ParseHTTPVerb(string(r.Verb)); err != nil {
		return parseErrorf(ptr+".httpVerb", "%v", err)
	}
	seen := make(map[string]struct{})
	for i, p := range append(append([]Param(nil), r.RequiredParams...), r.OptionalParams...) {
		if strings.TrimSpace(p.Name) == "" {
			return parseErrorf(fmt.Sprintf("%s.params[%d]", ptr, i), "param without a name")
		}
		if p.Type.IsZero() {
			return parseErrorf(ptr+".params."+p.Name, "param %q has no type", p.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return parseErrorf(ptr+".params."+p.Name, "duplicate param %q", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	for _, p := range r.OptionalParams {
		if p.In == InPath {
			return parseErrorf(ptr+".optionalParams."+p.Name, "optional param %q cannot be bound to the path", p.Name)
		}
	}
	bound := r.PathParams()
	holes := r.Path.Placeholders()
	if len(holes) != len(bound) {
		return parseErrorf(ptr+".path", "path %q has %d placeholders but %d required path params", r.Path, len(holes), len(bound))
	}
	byName := make(map[string]struct{}, len(bound))
	for _, p := range bound {
		byName[p.Name] = struct{}{}
	}
	for _, h := range holes {
		if _, ok := byName[h]; !ok {
			return parseErrorf(ptr+".path", "placeholder {%s} has no matching required param", h)
		}
	}
	return nil
}

// Element is one field of a contract type. NameToMarshal is the wire name
// of the element, or of each item when the element is a collection; empty
// means the element name. Wrapper names the element enclosing a
// collection's items, empty when items are not wrapped.
type Element struct {
	Name          string
	Type          TypeRef
	NameToMarshal string
	Wrapper       string
	Attribute     bool
	Nullable      bool
}

type Type struct {
	Name          string
	NameToMarshal string
	Elements      []Element
	EnumConstants []string
}

func (t Type) IsEnum() bool { return len(t.EnumConstants) > 0 }

func (t Type) validate() error {
	ptr := fmt.Sprintf("types[%s]", t.Name)
	if strings.TrimSpace(t.Name) == "" {
		return parseErrorf("types", "type without a name")
	}
	if t.IsEnum() && len(t.Elements) > 0 {
		return parseErrorf(ptr, "type %q declares both elements and enum constants", t.Name)
	}
	seen := make(map[string]struct{})
	for _, el := range t.Elements {
		if strings.TrimSpace(el.Name) == "" {
			return parseErrorf(ptr+".elements", "element without a name")
		}
		if el.Type.IsZero() {
			return parseErrorf(ptr+".elements."+el.Name, "element %q has no type", el.Name)
		}
		if _, dup := seen[el.Name]; dup {
			return parseErrorf(ptr+".elements."+el.Name, "duplicate element %q", el.Name)
		}
		seen[el.Name] = struct{}{}
		if el.Attribute && el.Type.IsCollection() {
			return parseErrorf(ptr+".elements."+el.Name, "collection element %q cannot be an attribute", el.Name)
		}
		if el.Wrapper != "" && !el.Type.IsCollection() {
			return parseErrorf(ptr+".elements."+el.Name, "element %q has a wrapper but is not a collection", el.Name)
		}
	}
	seen = make(map[string]struct{})
	for _, c := range t.EnumConstants {
		if strings.TrimSpace(c) == "" {
			return parseErrorf(ptr+".enumValues", "empty enum constant")
		}
		if _, dup := seen[c]; dup {
			return parseErrorf(ptr+".enumValues", "duplicate enum constant %q", c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

// TypeMapElement is an explicit (contractType -> sdkType) mapping scoped to
// one target.
type TypeMapElement struct {
	ContractType string
	SDKType      string
	Target       string
}

func (m TypeMapElement) validate(i int) error {
	ptr := fmt.Sprintf("typeMaps[%d]", i)
	switch {
	case strings.TrimSpace(m.ContractType) == "":
		return parseErrorf(ptr, "type map without contractType")
	case strings.TrimSpace(m.SDKType) == "":
		return parseErrorf(ptr, "type map for %q without sdkType", m.ContractType)
	case strings.TrimSpace(m.Target) == "":
		return parseErrorf(ptr, "type map for %q without targetLanguage", m.ContractType)
	}
	return nil
}
