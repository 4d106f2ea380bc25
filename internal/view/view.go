package view

import "github.com/mark3labs/contract2sdk/internal/shape"

// View models are the renderer-facing projection of the contract for one
// target. Every name in them is already in the target's spelling.

type TargetModel struct {
	Target   string
	Requests []RequestView
	Types    []TypeView
}

type RequestView struct {
	Name           string
	ContractName   string
	Classification string
	Verb           string
	Action         string
	Operation      string
	Resource       string
	Path           []PathSegmentView
	PathTemplate   string
	RequiredParams []ParamView
	OptionalParams []ParamView
	// PayloadType is the request body type, empty when there is none.
	PayloadType string
	Response    ResponseView
	// Doc is the request description, empty when none is known.
	Doc string
}

// Args returns the required params a caller supplies. Required flags are
// always sent and take no argument.
func (r RequestView) Args() []ParamView {
	var out []ParamView
	for _, p := range r.RequiredParams {
		if !p.IsFlag {
			out = append(out, p)
		}
	}
	return out
}

// PathParams returns the required params bound to the path.
func (r RequestView) PathParams() []ParamView {
	var out []ParamView
	for _, p := range r.RequiredParams {
		if p.InPath {
			out = append(out, p)
		}
	}
	return out
}

// QueryParams returns the required params carried in the query string.
func (r RequestView) QueryParams() []ParamView {
	var out []ParamView
	for _, p := range r.RequiredParams {
		if !p.InPath {
			out = append(out, p)
		}
	}
	return out
}

type PathSegmentView struct {
	Literal string
	// Param is the target-side name of the param filling this segment.
	Param string
}

func (s PathSegmentView) IsParam() bool { return s.Param != "" }

type ParamView struct {
	Name     string
	WireName string
	Type     string
	InPath   bool
	// IsFlag marks a valueless query flag.
	IsFlag bool
	Doc    string
}

type ResponseView struct {
	Name          string
	Shape         shape.Shape
	ExpectedCodes []int
	// Parser is nil for responses without a payload.
	Parser *ParserView
}

type ParserView struct {
	Name        string
	Field       string
	Type        string
	ElementType string
	// MarshalName is the wire name the payload is marshalled under. ItemName
	// is the wire name of one element; the two differ only when the shape
	// reserves a name for the list.
	MarshalName string
	ItemName    string
	IsList      bool
	IsString    bool
}

type TypeView struct {
	Name         string
	ContractName string
	MarshalName  string
	Fields       []FieldView
	EnumValues   []EnumValueView
}

func (t TypeView) IsEnum() bool { return len(t.EnumValues) > 0 }

// FieldKind tells renderers how a field's value is read off the wire.
type FieldKind int

const (
	KindPrimitive FieldKind = iota
	KindEnum
	KindObject
	// KindExternal is a type the SDK runtime provides, read as text.
	KindExternal
)

type FieldView struct {
	Name     string
	WireName string
	Type     string
	Nullable bool
	IsList   bool
	// ItemName is the wire name of each item of a list field. Wrapper names
	// the element enclosing the items, empty when they sit directly in the
	// parent.
	ItemName string
	Wrapper  string
	// ItemType is the target type of one value: the field type itself, or
	// the element type of a list.
	ItemType  string
	Kind      FieldKind
	Attribute bool
}

func (f FieldView) IsExternal() bool { return f.Kind == KindExternal }

type EnumValueView struct {
	Name  string
	Value string
}
