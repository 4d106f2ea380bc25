package contract

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAML/JSON contract document. Unknown keys are ignored.

type docSpec struct {
	Requests []docRequest `yaml:"requests"`
	Types    []docType    `yaml:"types"`
	TypeMaps []docTypeMap `yaml:"typeMaps"`
}

type docRequest struct {
	Name           string       `yaml:"name"`
	Classification string       `yaml:"classification"`
	HTTPVerb       string       `yaml:"httpVerb"`
	Action         string       `yaml:"action"`
	Operation      string       `yaml:"operation"`
	Resource       string       `yaml:"resource"`
	Path           string       `yaml:"path"`
	RequiredParams []docParam   `yaml:"requiredParams"`
	OptionalParams []docParam   `yaml:"optionalParams"`
	Payload        string       `yaml:"payload"`
	Response       *docResponse `yaml:"response"`
}

type docParam struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	In   string `yaml:"in"`
}

type docResponse struct {
	Type        string `yaml:"type"`
	Cardinality string `yaml:"cardinality"`
	Codes       []int  `yaml:"codes"`
}

type docType struct {
	Name          string     `yaml:"name"`
	NameToMarshal string     `yaml:"nameToMarshal"`
	Fields        []docField `yaml:"fields"`
	EnumValues    []string   `yaml:"enumValues"`
}

type docField struct {
	Name          string `yaml:"name"`
	Type          string `yaml:"type"`
	NameToMarshal string `yaml:"nameToMarshal"`
	Wrapper       string `yaml:"wrapper"`
	Attribute     bool   `yaml:"attribute"`
	Nullable      bool   `yaml:"nullable"`
}

type docTypeMap struct {
	ContractType   string `yaml:"contractType"`
	SDKType        string `yaml:"sdkType"`
	TargetLanguage string `yaml:"targetLanguage"`
}

func decodeDocument(raw []byte) (*draft, error) {
	var doc docSpec
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, &Error{Code: ParseError, Message: fmt.Sprintf("decode document: %v", err), Cause: err}
	}

	d := &draft{}
	for i, r := range doc.Requests {
		req, err := r.toRequest(i)
		if err != nil {
			return nil, err
		}
		d.requests = append(d.requests, req)
	}
	for _, t := range doc.Types {
		d.types = append(d.types, t.toType())
	}
	for _, m := range doc.TypeMaps {
		d.typeMaps = append(d.typeMaps, m.toElement())
	}
	return d, nil
}

func (r docRequest) toRequest(i int) (Request, error) {
	ptr := fmt.Sprintf("requests[%d]", i)
	if strings.TrimSpace(r.Name) == "" {
		return Request{}, parseErrorf(ptr, "request without a name")
	}
	ptr = fmt.Sprintf("requests[%s]", r.Name)
	if strings.TrimSpace(r.HTTPVerb) == "" {
		return Request{}, parseErrorf(ptr, "missing httpVerb")
	}
	verb, err := ParseHTTPVerb(r.HTTPVerb)
	if err != nil {
		return Request{}, parseErrorf(ptr+".httpVerb", "%v", err)
	}
	classification, err := ParseClassification(r.Classification)
	if err != nil {
		return Request{}, parseErrorf(ptr+".classification", "%v", err)
	}
	action, err := ParseAction(r.Action)
	if err != nil {
		return Request{}, parseErrorf(ptr+".action", "%v", err)
	}
	operation, err := ParseOperation(r.Operation)
	if err != nil {
		return Request{}, parseErrorf(ptr+".operation", "%v", err)
	}
	path, err := ParsePathTemplate(r.Path)
	if err != nil {
		return Request{}, parseErrorf(ptr+".path", "%v", err)
	}

	req := Request{
		Name:           strings.TrimSpace(r.Name),
		Classification: classification,
		Verb:           verb,
		Action:         action,
		Operation:      operation,
		Resource:       strings.ToUpper(strings.TrimSpace(r.Resource)),
		Path:           path,
	}
	holes := make(map[string]struct{})
	for _, h := range path.Placeholders() {
		holes[h] = struct{}{}
	}
	for _, p := range r.RequiredParams {
		param, err := p.toParam(ptr, holes)
		if err != nil {
			return Request{}, err
		}
		req.RequiredParams = append(req.RequiredParams, param)
	}
	for _, p := range r.OptionalParams {
		param, err := p.toParam(ptr, nil)
		if err != nil {
			return Request{}, err
		}
		req.OptionalParams = append(req.OptionalParams, param)
	}
	if !IsNullName(r.Payload) {
		req.Payload = ParseTypeRef(r.Payload)
	}
	if r.Response != nil {
		var t TypeRef
		if !IsNullName(r.Response.Type) {
			t = ParseTypeRef(r.Response.Type)
		}
		resp, err := NewResponse(t, r.Response.Cardinality, r.Response.Codes)
		if err != nil {
			return Request{}, parseErrorf(ptr+".response", "%v", err)
		}
		req.Response = resp
	}
	return req, nil
}

// toParam binds a param to the path when "in" says so or, with "in" left
// out, when its name matches a placeholder.
func (p docParam) toParam(ptr string, holes map[string]struct{}) (Param, error) {
	param := Param{Name: strings.TrimSpace(p.Name), Type: ParseTypeRef(p.Type), In: InQuery}
	switch in := strings.ToLower(strings.TrimSpace(p.In)); in {
	case "":
		if _, ok := holes[param.Name]; ok {
			param.In = InPath
		}
	case string(InPath):
		param.In = InPath
	case string(InQuery):
	default:
		return Param{}, parseErrorf(ptr+".params."+param.Name, "unknown param location %q", p.In)
	}
	return param, nil
}

func (t docType) toType() Type {
	out := Type{
		Name:          strings.TrimSpace(t.Name),
		NameToMarshal: strings.TrimSpace(t.NameToMarshal),
		EnumConstants: append([]string(nil), t.EnumValues...),
	}
	for _, f := range t.Fields {
		out.Elements = append(out.Elements, Element{
			Name:          strings.TrimSpace(f.Name),
			Type:          ParseTypeRef(f.Type),
			NameToMarshal: strings.TrimSpace(f.NameToMarshal),
			Wrapper:       strings.TrimSpace(f.Wrapper),
			Attribute:     f.Attribute,
			Nullable:      f.Nullable,
		})
	}
	return out
}

func (m docTypeMap) toElement() TypeMapElement {
	return TypeMapElement{
		ContractType: strings.TrimSpace(m.ContractType),
		SDKType:      strings.TrimSpace(m.SDKType),
		Target:       strings.TrimSpace(m.TargetLanguage),
	}
}

// ParseTypeMaps reads a standalone type-map file: either a bare list of
// mappings or a document with a top-level typeMaps key.
func ParseTypeMaps(r io.Reader) ([]TypeMapElement, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Code: IOError, Message: fmt.Sprintf("read type map: %v", err), Cause: err}
	}
	var list []docTypeMap
	if err := yaml.Unmarshal(raw, &list); err != nil {
		var doc struct {
			TypeMaps []docTypeMap `yaml:"typeMaps"`
		}
		if derr := yaml.Unmarshal(raw, &doc); derr != nil {
			return nil, &Error{Code: ParseError, Message: fmt.Sprintf("decode type map: %v", errors.Join(err, derr)), Cause: derr}
		}
		list = doc.TypeMaps
	}
	out := make([]TypeMapElement, 0, len(list))
	for i, m := range list {
		el := m.toElement()
		if err := el.validate(i); err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}
