package generator

import (
	"fmt"

	"github.com/mark3labs/contract2sdk/internal/shape"
	"github.com/mark3labs/contract2sdk/internal/view"
)

// ShapeDispatchError reports a shape with no registered strategy.
type ShapeDispatchError struct {
	Shape shape.Shape
}

func (e *ShapeDispatchError) Error() string {
	return fmt.Sprintf("no generator strategy registered for shape %s", e.Shape)
}

// Input is everything a strategy may look at. It deliberately carries no
// request identity, so structurally equal responses render alike.
type Input struct {
	ResponseName string
	// Payload is the target type of the whole payload; for lists it is the
	// container type.
	Payload string
	// Element is the target type of one item.
	Element string
	// ElementContract is the contract name of the item type.
	ElementContract string
	Field string
	// MarshalName is the wire name of the payload's root element. ItemName
	// is the wire name of one item of a list payload; empty means
	// MarshalName.
	MarshalName string
	ItemName    string
	Codes       []int
	// Override is the reserved wire name bound by the registry for
	// OverriddenNamePayload.
	Override string
}

// Strategy turns an input into the response view for one shape.
type Strategy func(Input) view.ResponseView

// Registry is a total mapping from shape to strategy.
type Registry struct {
	strategies map[shape.Shape]Strategy
	overrides  shape.Overrides
}

// NewRegistry copies strategies and verifies every shape is covered.
func NewRegistry(strategies map[shape.Shape]Strategy, overrides shape.Overrides) (*Registry, error) {
	r := &Registry{strategies: make(map[shape.Shape]Strategy, len(strategies)), overrides: overrides}
	for s, fn := range strategies {
		if fn != nil {
			r.strategies[s] = fn
		}
	}
	for _, s := range shape.All() {
		if _, ok := r.strategies[s]; !ok {
			return nil, &ShapeDispatchError{Shape: s}
		}
	}
	return r, nil
}

func (r *Registry) Overrides() shape.Overrides { return r.overrides }

// Dispatch returns the strategy for s. For OverriddenNamePayload the
// registry's override for the element type is bound into the input before
// the strategy runs.
func (r *Registry) Dispatch(s shape.Shape) (Strategy, error) {
	fn, ok := r.strategies[s]
	if !ok {
		return nil, &ShapeDispatchError{Shape: s}
	}
	if s != shape.OverriddenNamePayload {
		return fn, nil
	}
	return func(in Input) view.ResponseView {
		if in.Override == "" {
			in.Override, _ = r.overrides.Lookup(in.ElementContract)
		}
		return fn(in)
	}, nil
}

// Default returns the registry of built-in strategies.
func Default(overrides shape.Overrides) *Registry {
	r, err := NewRegistry(Builtin(), overrides)
	if err != nil {
		panic(err)
	}
	return r
}

// Builtin returns a fresh copy of the built-in strategy table.
func Builtin() map[shape.Shape]Strategy {
	return map[shape.Shape]Strategy{
		shape.NoPayload:             noPayload,
		shape.StringPayload:         stringPayload,
		shape.SingleObjectPayload:   singleObject,
		shape.ListPayload:           listPayload,
		shape.OverriddenNamePayload: overriddenName,
	}
}

func base(in Input, s shape.Shape) view.ResponseView {
	codes := append([]int(nil), in.Codes...)
	if len(codes) == 0 {
		codes = []int{200}
	}
	return view.ResponseView{Name: in.ResponseName, Shape: s, ExpectedCodes: codes}
}

func noPayload(in Input) view.ResponseView {
	return base(in, shape.NoPayload)
}

func stringPayload(in Input) view.ResponseView {
	rv := base(in, shape.StringPayload)
	rv.Parser = &view.ParserView{
		Name:     in.ResponseName + "Parser",
		Field:    in.Field,
		Type:     in.Payload,
		IsString: true,
	}
	return rv
}

func singleObject(in Input) view.ResponseView {
	rv := base(in, shape.SingleObjectPayload)
	rv.Parser = &view.ParserView{
		Name:        in.ResponseName + "Parser",
		Field:       in.Field,
		Type:        in.Payload,
		ElementType: in.Element,
		MarshalName: in.MarshalName,
		ItemName:    in.MarshalName,
	}
	return rv
}

func listPayload(in Input) view.ResponseView {
	item := in.ItemName
	if item == "" {
		item = in.MarshalName
	}
	rv := base(in, shape.ListPayload)
	rv.Parser = &view.ParserView{
		Name:        in.ResponseName + "Parser",
		Field:       in.Field,
		Type:        in.Payload,
		ElementType: in.Element,
		MarshalName: item,
		ItemName:    item,
		IsList:      true,
	}
	return rv
}

func overriddenName(in Input) view.ResponseView {
	rv := listPayload(in)
	rv.Shape = shape.OverriddenNamePayload
	if in.Override != "" {
		rv.Parser.MarshalName = in.Override
	}
	return rv
}
