package builder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mark3labs/contract2sdk/internal/contract"
	"github.com/mark3labs/contract2sdk/internal/generator"
	"github.com/mark3labs/contract2sdk/internal/naming"
	"github.com/mark3labs/contract2sdk/internal/shape"
	"github.com/mark3labs/contract2sdk/internal/target"
	"github.com/mark3labs/contract2sdk/internal/typemap"
	"github.com/mark3labs/contract2sdk/internal/view"
)

// Settings configures a build.
type Settings struct {
	Registry    *generator.Registry
	Overrides   shape.Overrides
	TypeMaps    []contract.TypeMapElement
	Concurrency int
	// Docs supplies request and param descriptions; nil leaves them empty.
	Docs   *contract.DocSpec
	Logger *slog.Logger
}

// Option mutates Settings.
type Option func(*Settings)

func WithRegistry(r *generator.Registry) Option { return func(s *Settings) { s.Registry = r } }
func WithOverrides(o shape.Overrides) Option { return func(s *Settings) { s.Overrides = o } }
func WithTypeMaps(m ...contract.TypeMapElement) Option {
	return func(s *Settings) { s.TypeMaps = append(s.TypeMaps, m...) }
}
func WithConcurrency(n int) Option { return func(s *Settings) { s.Concurrency = n } }
func WithDocs(d *contract.DocSpec) Option { return func(s *Settings) { s.Docs = d } }
func WithLogger(l *slog.Logger) Option { return func(s *Settings) { s.Logger = l } }

func resolveSettings(opts []Option) Settings {
	s := Settings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.Overrides == nil {
		if s.Registry != nil && s.Registry.Overrides() != nil {
			s.Overrides = s.Registry.Overrides()
		} else {
			s.Overrides = shape.DefaultOverrides()
		}
	}
	if s.Registry == nil {
		s.Registry = generator.Default(s.Overrides)
	}
	if s.Concurrency <= 0 {
		s.Concurrency = runtime.GOMAXPROCS(0)
	}
	if s.Logger == nil {
		s.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Result is the outcome of building one target.
type Result struct {
	Target string
	Model  *view.TargetModel
	Err    error
}

// BuildAll builds every target concurrently. A failing target never affects
// the others; results come back in the order targets were given.
func BuildAll(ctx context.Context, spec *contract.Spec, targets []target.Target, opts ...Option) []Result {
	settings := resolveSettings(opts)
	results := make([]Result, len(targets))
	g := new(errgroup.Group)
	g.SetLimit(settings.Concurrency)
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			model, err := Build(ctx, spec, t, opts...)
			results[i] = Result{Target: t.Name, Model: model, Err: err}
			if err != nil {
				settings.Logger.Warn("target build failed", "target", t.Name, "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Build produces the view model of spec for one target. Names are claimed
// per target so collisions surface as NormalizationConflictError; type
// resolution failures surface as UnmappedTypeError.
func Build(ctx context.Context, spec *contract.Spec, t target.Target, opts ...Option) (*view.TargetModel, error) {
	if spec == nil {
		return nil, fmt.Errorf("builder: nil spec")
	}
	settings := resolveSettings(opts)
	logger := settings.Logger.With("target", t.Name)

	table, err := typemap.New(t, spec, settings.TypeMaps...)
	if err != nil {
		return nil, err
	}
	b := &build{
		spec:       spec,
		target:     t,
		table:      table,
		classifier: shape.Classifier{Overrides: settings.Overrides},
		registry:   settings.Registry,
		docs:       settings.Docs,
		logger:     logger,
	}

	types, err := b.types()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	requests, err := b.requests(ctx, settings.Concurrency)
	if err != nil {
		return nil, err
	}
	logger.Debug("built target model", "requests", len(requests), "types", len(types))
	return &view.TargetModel{Target: t.Name, Requests: requests, Types: types}, nil
}

type build struct {
	spec       *contract.Spec
	target     target.Target
	table      *typemap.Table
	classifier shape.Classifier
	registry   *generator.Registry
	docs       *contract.DocSpec
	logger     *slog.Logger
}

func (b *build) types() ([]view.TypeView, error) {
	scope := naming.NewScope(b.target.Name, "type")
	var out []view.TypeView
	for _, ct := range b.spec.Types() {
		if _, ok := b.table.Explicit(ct.Name); ok {
			// provided by the SDK runtime
			continue
		}
		name := b.table.TypeName(ct.Name)
		if err := scope.Claim(name, ct.Name); err != nil {
			return nil, err
		}
		tv := view.TypeView{Name: name, ContractName: ct.Name, MarshalName: marshalName(ct)}
		if ct.IsEnum() {
			values, err := b.enumValues(name, ct)
			if err != nil {
				return nil, err
			}
			tv.EnumValues = values
		} else {
			fields, err := b.fields(name, ct)
			if err != nil {
				return nil, err
			}
			tv.Fields = fields
		}
		out = append(out, tv)
	}
	return out, nil
}

func (b *build) fields(typeName string, ct contract.Type) ([]view.FieldView, error) {
	scope := naming.NewScope(b.target.Name, "field of "+typeName)
	out := make([]view.FieldView, 0, len(ct.Elements))
	for _, el := range ct.Elements {
		name := b.target.FieldCasing.Apply(el.Name)
		if err := scope.Claim(name, el.Name); err != nil {
			return nil, err
		}
		typ, err := b.table.ResolveField(el.Type, el.Nullable)
		if err != nil {
			return nil, typemap.AtLocation(err, fmt.Sprintf("types[%s].elements.%s", ct.Name, el.Name))
		}
		fv := view.FieldView{
			Name:      name,
			WireName:  el.Name,
			Type:      typ,
			Nullable:  el.Nullable,
			IsList:    el.Type.IsCollection(),
			Attribute: el.Attribute,
		}
		item := el.Type
		if fv.IsList {
			item = contract.TypeRef{Name: el.Type.Component}
			fv.ItemName = el.NameToMarshal
			if fv.ItemName == "" {
				fv.ItemName = el.Name
			}
			fv.Wrapper = el.Wrapper
		} else if el.NameToMarshal != "" {
			fv.WireName = el.NameToMarshal
		}
		if fv.ItemType, err = b.table.Resolve(item); err != nil {
			return nil, typemap.AtLocation(err, fmt.Sprintf("types[%s].elements.%s", ct.Name, el.Name))
		}
		fv.Kind = b.kindOf(item)
		out = append(out, fv)
	}
	return out, nil
}

func (b *build) kindOf(ref contract.TypeRef) view.FieldKind {
	if _, ok := b.table.Explicit(ref.Name); ok {
		return view.KindExternal
	}
	if _, ok := contract.PrimitiveOf(ref.Name); ok {
		return view.KindPrimitive
	}
	decl, ok := b.spec.LookupType(ref.Name)
	switch {
	case !ok:
		return view.KindExternal
	case decl.IsEnum():
		return view.KindEnum
	default:
		return view.KindObject
	}
}

func (b *build) enumValues(typeName string, ct contract.Type) ([]view.EnumValueView, error) {
	scope := naming.NewScope(b.target.Name, "enum value of "+typeName)
	out := make([]view.EnumValueView, 0, len(ct.EnumConstants))
	for _, c := range ct.EnumConstants {
		name := b.target.EnumCasing.Apply(c)
		if b.target.EnumPrefix {
			name = b.target.EnumCasing.Apply(typeName) + "_" + name
		}
		if err := scope.Claim(name, c); err != nil {
			return nil, err
		}
		out = append(out, view.EnumValueView{Name: name, Value: c})
	}
	return out, nil
}

type requestNames struct {
	request  string
	response string
}

// requests claims every request and response name up front, then builds the
// request views concurrently. Every request is built, so the error reported
// is always the first in request order.
func (b *build) requests(ctx context.Context, limit int) ([]view.RequestView, error) {
	reqs := b.spec.Requests()
	scope := naming.NewScope(b.target.Name, "request")
	names := make([]requestNames, len(reqs))
	for i, r := range reqs {
		canonical := naming.RequestName(r.Name, string(r.Classification))
		n := requestNames{
			request:  b.target.TypeCasing.Apply(canonical),
			response: b.target.TypeCasing.Apply(naming.ResponseName(canonical)),
		}
		if err := scope.Claim(n.request, r.Name); err != nil {
			return nil, err
		}
		if err := scope.Claim(n.response, r.Name); err != nil {
			return nil, err
		}
		names[i] = n
	}

	out := make([]view.RequestView, len(reqs))
	errs := make([]error, len(reqs))
	g := new(errgroup.Group)
	g.SetLimit(limit)
	for i, r := range reqs {
		i, r := i, r
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			out[i], errs[i] = b.request(r, names[i])
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (b *build) request(r contract.Request, names requestNames) (view.RequestView, error) {
	ptr := fmt.Sprintf("requests[%s]", r.Name)
	rv := view.RequestView{
		Name:           names.request,
		ContractName:   r.Name,
		Classification: string(r.Classification),
		Verb:           string(r.Verb),
		Action:         string(r.Action),
		Operation:      string(r.Operation),
		Resource:       r.Resource,
		PathTemplate:   r.Path.String(),
	}
	if doc, ok := b.docs.RequestDoc(naming.RequestName(r.Name, string(r.Classification))); ok {
		rv.Doc = doc
	} else if b.docs != nil {
		b.logger.Debug("request has no description", "request", r.Name)
	}

	scope := naming.NewScope(b.target.Name, "param of "+names.request)
	pathNames := make(map[string]string)
	param := func(p contract.Param) (view.ParamView, error) {
		name := b.target.ParamCasing.Apply(p.Name)
		if err := scope.Claim(name, p.Name); err != nil {
			return view.ParamView{}, err
		}
		typ, err := b.table.Resolve(p.Type)
		if err != nil {
			return view.ParamView{}, typemap.AtLocation(err, ptr+".params."+p.Name)
		}
		prim, _ := contract.PrimitiveOf(p.Type.Name)
		pv := view.ParamView{
			Name:     name,
			WireName: p.Name,
			Type:     typ,
			InPath:   p.In == contract.InPath,
			IsFlag:   prim == contract.Void,
		}
		if doc, ok := b.docs.ParamDoc(p.Name); ok {
			pv.Doc = doc
		} else if b.docs != nil {
			b.logger.Debug("param has no description", "request", r.Name, "param", p.Name)
		}
		if pv.InPath {
			pathNames[p.Name] = name
		}
		return pv, nil
	}
	for _, p := range r.RequiredParams {
		pv, err := param(p)
		if err != nil {
			return view.RequestView{}, err
		}
		rv.RequiredParams = append(rv.RequiredParams, pv)
	}
	for _, p := range r.OptionalParams {
		pv, err := param(p)
		if err != nil {
			return view.RequestView{}, err
		}
		rv.OptionalParams = append(rv.OptionalParams, pv)
	}
	for _, seg := range r.Path.Segments() {
		if seg.IsParam() {
			rv.Path = append(rv.Path, view.PathSegmentView{Param: pathNames[seg.Param]})
			continue
		}
		rv.Path = append(rv.Path, view.PathSegmentView{Literal: seg.Literal})
	}

	if !r.Payload.IsZero() {
		typ, err := b.table.Resolve(r.Payload)
		if err != nil {
			return view.RequestView{}, typemap.AtLocation(err, ptr+".payload")
		}
		rv.PayloadType = typ
	}

	resp, err := b.response(r, names.response)
	if err != nil {
		return view.RequestView{}, typemap.AtLocation(err, ptr+".response")
	}
	rv.Response = resp
	return rv, nil
}

func (b *build) response(r contract.Request, name string) (view.ResponseView, error) {
	s := b.classifier.Classify(r.Response)
	strategy, err := b.registry.Dispatch(s)
	if err != nil {
		return view.ResponseView{}, err
	}
	in := generator.Input{ResponseName: name}
	if r.Response != nil {
		in.Codes = r.Response.Codes
	}
	if s == shape.NoPayload {
		return strategy(in), nil
	}

	elem := r.Response.Type
	if in.Element, err = b.table.Resolve(elem); err != nil {
		return view.ResponseView{}, err
	}
	in.ElementContract = elem.Name
	in.Payload = in.Element
	many := r.Response.Cardinality == contract.Many
	if many {
		if in.Payload, err = b.table.Resolve(contract.TypeRef{Name: "array", Component: elem.Name}); err != nil {
			return view.ResponseView{}, err
		}
	}

	switch {
	case s == shape.StringPayload:
		in.Field = b.target.FieldCasing.Apply("Content")
	case many:
		in.Field = b.target.FieldCasing.Apply(naming.Normalize(elem.Name) + "List")
	default:
		in.Field = b.target.FieldCasing.Apply(naming.Normalize(elem.Name))
	}
	if decl, ok := b.spec.LookupType(elem.Name); ok {
		in.MarshalName = marshalName(decl)
		in.ItemName = itemName(decl)
	} else {
		in.MarshalName = naming.ShortName(elem.Name)
		in.ItemName = in.MarshalName
	}
	return strategy(in), nil
}

// marshalName is the wire element name of a type, its short name when the
// contract gives none.
func marshalName(t contract.Type) string {
	if n := strings.TrimSpace(t.NameToMarshal); n != "" {
		return n
	}
	return naming.ShortName(t.Name)
}

// itemName is the wire name of one item of a list of t. "Data" is the
// generic root the server wraps whole payloads in and never names an item.
func itemName(t contract.Type) string {
	if n := marshalName(t); n != dataElement {
		return n
	}
	return naming.ShortName(t.Name)
}

const dataElement = "Data"
