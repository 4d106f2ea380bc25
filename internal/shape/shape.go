package shape

import (
	"fmt"

	"github.com/mark3labs/contract2sdk/internal/contract"
	"github.com/mark3labs/contract2sdk/internal/naming"
)

// Shape is the structural category of a response payload. The set is closed:
// every value returned by All must have a generation strategy.
type Shape int

const (
	NoPayload Shape = iota
	StringPayload
	SingleObjectPayload
	ListPayload
	// OverriddenNamePayload is a list whose element type is marshalled under a
	// reserved wire name rather than its own.
	OverriddenNamePayload
)

// All lists every shape in declaration order.
func All() []Shape {
	return []Shape{NoPayload, StringPayload, SingleObjectPayload, ListPayload, OverriddenNamePayload}
}

func (s Shape) String() string {
	switch s {
	case NoPayload:
		return "NoPayload"
	case StringPayload:
		return "StringPayload"
	case SingleObjectPayload:
		return "SingleObjectPayload"
	case ListPayload:
		return "ListPayload"
	case OverriddenNamePayload:
		return "OverriddenNamePayload"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Overrides maps a list element type to the reserved name its list is
// marshalled under. Keys are compared by normalized name.
type Overrides map[string]string

// DefaultOverrides returns the built-in overrides: a list of jobs travels as
// "Jobs".
func DefaultOverrides() Overrides {
	return Overrides{"Job": "Jobs"}
}

// Lookup returns the reserved name for an element type, if any.
func (o Overrides) Lookup(typeName string) (string, bool) {
	want := naming.Normalize(typeName)
	if v, ok := o[want]; ok {
		return v, true
	}
	for k, v := range o {
		if naming.Normalize(k) == want {
			return v, true
		}
	}
	return "", false
}

// Merge returns a copy of o with extra applied on top.
func (o Overrides) Merge(extra map[string]string) Overrides {
	out := make(Overrides, len(o)+len(extra))
	for k, v := range o {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Classifier assigns a shape from the response description alone; the
// request it belongs to plays no part.
type Classifier struct {
	Overrides Overrides
}

func (c Classifier) Classify(r *contract.Response) Shape {
	if !r.HasPayload() {
		return NoPayload
	}
	if r.Cardinality == contract.Many {
		if _, ok := c.Overrides.Lookup(r.Type.Name); ok {
			return OverriddenNamePayload
		}
		return ListPayload
	}
	if p, ok := contract.PrimitiveOf(r.Type.Name); ok && p == contract.String {
		return StringPayload
	}
	return SingleObjectPayload
}
