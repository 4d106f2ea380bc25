package contract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/contract2sdk/internal/naming"
)

const schemaRefPrefix = "#/components/schemas/"

// decodeOpenAPI converts an OpenAPI 3 (or Swagger 2) document into a draft
// contract. Operations become requests, component schemas become types.
func decodeOpenAPI(ctx context.Context, raw []byte, logger *slog.Logger) (*draft, error) {
	doc, err := loadOpenAPI(raw)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, &Error{Code: ParseError, Message: fmt.Sprintf("invalid openapi document: %v", err), Cause: err}
	}

	d := &draft{}
	if doc.Components != nil {
		names := make([]string, 0, len(doc.Components.Schemas))
		for name := range doc.Components.Schemas {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			t, err := schemaToType(name, doc.Components.Schemas[name])
			if err != nil {
				return nil, err
			}
			d.types = append(d.types, t)
		}
	}

	paths := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		item := doc.Paths[p]
		if item == nil {
			continue
		}
		ops := []struct {
			verb HTTPVerb
			op   *openapi3.Operation
		}{
			{GET, item.Get},
			{PUT, item.Put},
			{POST, item.Post},
			{DELETE, item.Delete},
			{HEAD, item.Head},
		}
		for _, pair := range ops {
			if pair.op == nil {
				continue
			}
			req, err := operationToRequest(p, pair.verb, item.Parameters, pair.op)
			if err != nil {
				return nil, err
			}
			d.requests = append(d.requests, req)
		}
		if item.Patch != nil || item.Options != nil || item.Trace != nil {
			logger.Debug("skipping unsupported http verbs", "path", p)
		}
	}
	return d, nil
}

func loadOpenAPI(raw []byte) (*openapi3.T, error) {
	var head struct {
		Swagger string `yaml:"swagger"`
	}
	_ = yaml.Unmarshal(raw, &head)

	loader := openapi3.NewLoader()
	if !strings.HasPrefix(strings.TrimSpace(head.Swagger), "2.") {
		doc, err := loader.LoadFromData(raw)
		if err != nil {
			return nil, &Error{Code: ParseError, Message: fmt.Sprintf("decode openapi: %v", err), Cause: err}
		}
		return doc, nil
	}

	// openapi2.T only carries json tags, so go through JSON.
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, &Error{Code: ParseError, Message: fmt.Sprintf("decode swagger: %v", err), Cause: err}
	}
	js, err := json.Marshal(generic)
	if err != nil {
		return nil, &Error{Code: ParseError, Message: fmt.Sprintf("decode swagger: %v", err), Cause: err}
	}
	var v2 openapi2.T
	if err := json.Unmarshal(js, &v2); err != nil {
		return nil, &Error{Code: ParseError, Message: fmt.Sprintf("decode swagger: %v", err), Cause: err}
	}
	doc, err := openapi2conv.ToV3(&v2)
	if err != nil {
		return nil, &Error{Code: ParseError, Message: fmt.Sprintf("convert swagger 2 to openapi 3: %v", err), Cause: err}
	}
	if err := loader.ResolveRefsIn(doc, nil); err != nil {
		return nil, &Error{Code: ParseError, Message: fmt.Sprintf("resolve refs: %v", err), Cause: err}
	}
	return doc, nil
}

func operationToRequest(path string, verb HTTPVerb, shared openapi3.Parameters, op *openapi3.Operation) (Request, error) {
	name := strings.TrimSpace(op.OperationID)
	if name == "" {
		name = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return ' '
		}, strings.ToLower(string(verb))+" "+path)
	}
	ptr := fmt.Sprintf("paths[%s].%s", path, strings.ToLower(string(verb)))

	tmpl, err := ParsePathTemplate(path)
	if err != nil {
		return Request{}, parseErrorf(ptr, "%v", err)
	}
	req := Request{
		Name:           naming.Normalize(name),
		Classification: AmazonS3,
		Verb:           verb,
		Path:           tmpl,
	}

	// operation-level params override path-level ones
	merged := make(map[string]*openapi3.Parameter)
	var order []string
	for _, list := range []openapi3.Parameters{shared, op.Parameters} {
		for _, ref := range list {
			if ref == nil || ref.Value == nil {
				continue
			}
			key := ref.Value.In + ":" + ref.Value.Name
			if _, seen := merged[key]; !seen {
				order = append(order, key)
			}
			merged[key] = ref.Value
		}
	}
	for _, key := range order {
		p := merged[key]
		var in ParamLocation
		switch p.In {
		case openapi3.ParameterInPath:
			in = InPath
		case openapi3.ParameterInQuery:
			in = InQuery
		default:
			continue
		}
		t, err := schemaToTypeRef(p.Schema, ptr+".parameters."+p.Name)
		if err != nil {
			return Request{}, err
		}
		param := Param{Name: p.Name, Type: t, In: in}
		if p.Required || in == InPath {
			req.RequiredParams = append(req.RequiredParams, param)
		} else {
			req.OptionalParams = append(req.OptionalParams, param)
		}
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		if schema := firstSchema(op.RequestBody.Value.Content); schema != nil {
			if req.Payload, err = schemaToTypeRef(schema, ptr+".requestBody"); err != nil {
				return Request{}, err
			}
		}
	}

	codes := make([]string, 0, len(op.Responses))
	for code := range op.Responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	var (
		success []int
		payload TypeRef
	)
	for _, code := range codes {
		n, err := strconv.Atoi(code)
		if err != nil || n < 200 || n >= 300 {
			continue
		}
		success = append(success, n)
		ref := op.Responses[code]
		if ref == nil || ref.Value == nil || !payload.IsZero() {
			continue
		}
		if schema := firstSchema(ref.Value.Content); schema != nil {
			if payload, err = schemaToTypeRef(schema, ptr+".responses."+code); err != nil {
				return Request{}, err
			}
		}
	}
	if len(success) > 0 {
		resp, err := NewResponse(payload, "", success)
		if err != nil {
			return Request{}, parseErrorf(ptr+".responses", "%v", err)
		}
		req.Response = resp
	}
	return req, nil
}

// firstSchema prefers XML, then JSON, then whatever media type sorts first.
func firstSchema(content openapi3.Content) *openapi3.SchemaRef {
	for _, mime := range []string{"application/xml", "application/json"} {
		if mt := content.Get(mime); mt != nil && mt.Schema != nil {
			return mt.Schema
		}
	}
	mimes := make([]string, 0, len(content))
	for m := range content {
		mimes = append(mimes, m)
	}
	sort.Strings(mimes)
	for _, m := range mimes {
		if mt := content[m]; mt != nil && mt.Schema != nil {
			return mt.Schema
		}
	}
	return nil
}

func schemaToType(name string, ref *openapi3.SchemaRef) (Type, error) {
	ptr := schemaRefPrefix + name
	if ref == nil || ref.Value == nil {
		return Type{}, parseErrorf(ptr, "schema %q has no value", name)
	}
	s := ref.Value
	t := Type{Name: name, NameToMarshal: name}
	if s.XML != nil && s.XML.Name != "" {
		t.NameToMarshal = s.XML.Name
	}
	if len(s.Enum) > 0 {
		for _, v := range s.Enum {
			t.EnumConstants = append(t.EnumConstants, fmt.Sprint(v))
		}
		return t, nil
	}
	props := make([]string, 0, len(s.Properties))
	for p := range s.Properties {
		props = append(props, p)
	}
	sort.Strings(props)
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	for _, p := range props {
		prop := s.Properties[p]
		et, err := schemaToTypeRef(prop, ptr+"/properties/"+p)
		if err != nil {
			return Type{}, err
		}
		el := Element{Name: p, Type: et, Nullable: !required[p]}
		el.NameToMarshal, el.Wrapper, el.Attribute = xmlNames(p, prop, et.IsCollection())
		t.Elements = append(t.Elements, el)
	}
	return t, nil
}

// xmlNames reads a property's xml object. A wrapped array is enclosed in an
// element named by the array's xml name, or the property name, and its items
// take the items' xml name.
func xmlNames(prop string, ref *openapi3.SchemaRef, collection bool) (name, wrapper string, attr bool) {
	if ref == nil || ref.Value == nil {
		return "", "", false
	}
	x := ref.Value.XML
	if !collection {
		if x == nil {
			return "", "", false
		}
		return x.Name, "", x.Attribute
	}
	if items := ref.Value.Items; items != nil && items.Value != nil && items.Value.XML != nil {
		name = items.Value.XML.Name
	}
	if x == nil {
		return name, "", false
	}
	if x.Wrapped {
		wrapper = x.Name
		if wrapper == "" {
			wrapper = prop
		}
		return name, wrapper, false
	}
	if name == "" {
		name = x.Name
	}
	return name, "", false
}

// schemaToTypeRef maps a schema onto the contract vocabulary. Inline objects
// have no name to generate and are rejected.
func schemaToTypeRef(ref *openapi3.SchemaRef, ptr string) (TypeRef, error) {
	if ref == nil {
		return TypeRef{}, parseErrorf(ptr, "missing schema")
	}
	if strings.HasPrefix(ref.Ref, schemaRefPrefix) {
		return TypeRef{Name: strings.TrimPrefix(ref.Ref, schemaRefPrefix)}, nil
	}
	s := ref.Value
	if s == nil {
		return TypeRef{}, parseErrorf(ptr, "unresolved schema reference %q", ref.Ref)
	}
	switch s.Type {
	case openapi3.TypeString:
		switch s.Format {
		case "uuid":
			return TypeRef{Name: string(UUID)}, nil
		case "date", "date-time":
			return TypeRef{Name: string(Date)}, nil
		}
		return TypeRef{Name: string(String)}, nil
	case openapi3.TypeInteger:
		if s.Format == "int64" {
			return TypeRef{Name: string(Long)}, nil
		}
		return TypeRef{Name: string(Int)}, nil
	case openapi3.TypeNumber:
		if s.Format == "float" {
			return TypeRef{Name: string(Float)}, nil
		}
		return TypeRef{Name: string(Double)}, nil
	case openapi3.TypeBoolean:
		return TypeRef{Name: string(Boolean)}, nil
	case openapi3.TypeArray:
		elem, err := schemaToTypeRef(s.Items, ptr+"/items")
		if err != nil {
			return TypeRef{}, err
		}
		if elem.IsCollection() {
			return TypeRef{}, parseErrorf(ptr, "nested arrays are not supported")
		}
		return TypeRef{Name: "array", Component: elem.Name}, nil
	default:
		return TypeRef{}, parseErrorf(ptr, "inline %q schema has no name; declare it under components/schemas", s.Type)
	}
}
