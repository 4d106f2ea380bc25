package contract

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/mark3labs/contract2sdk/internal/naming"
)

// XML contract layout. Only the elements the generator needs are declared;
// encoding/xml skips everything else, which keeps older generators working
// against newer contracts.

type xmlData struct {
	XMLName  xml.Name     `xml:"Data"`
	Contract *xmlContract `xml:"Contract"`
}

type xmlContract struct {
	RequestHandlers *struct {
		Handlers []xmlRequestHandler `xml:"RequestHandler"`
	} `xml:"RequestHandlers"`
	Types *struct {
		Types []xmlType `xml:"Type"`
	} `xml:"Types"`
	TypeMaps *struct {
		Maps []xmlTypeMap `xml:"TypeMap"`
	} `xml:"TypeMaps"`
}

type xmlRequestHandler struct {
	Classification string            `xml:"Classification,attr"`
	Name           string            `xml:"Name,attr"`
	Request        *xmlRequest       `xml:"Request"`
	ResponseCodes  []xmlResponseCode `xml:"ResponseCodes>ResponseCode"`
}

type xmlRequest struct {
	Action            string     `xml:"Action,attr"`
	HTTPVerb          string     `xml:"HttpVerb,attr"`
	Operation         string     `xml:"Operation,attr"`
	Resource          string     `xml:"Resource,attr"`
	BucketRequirement string     `xml:"BucketRequirement,attr"`
	ObjectRequirement string     `xml:"ObjectRequirement,attr"`
	IncludeIDInPath   string     `xml:"IncludeIdInPath,attr"`
	OptionalParams    []xmlParam `xml:"OptionalQueryParams>Param"`
	RequiredParams    []xmlParam `xml:"RequiredQueryParams>Param"`
}

type xmlParam struct {
	Name string `xml:"Name,attr"`
	Type string `xml:"Type,attr"`
}

type xmlResponseCode struct {
	Code  string            `xml:"Code"`
	Types []xmlResponseType `xml:"ResponseTypes>ResponseType"`
}

type xmlResponseType struct {
	Type          string `xml:"Type,attr"`
	ComponentType string `xml:"ComponentType,attr"`
}

type xmlType struct {
	Name          string       `xml:"Name,attr"`
	NameToMarshal string       `xml:"NameToMarshal,attr"`
	Elements      []xmlElement `xml:"Elements>Element"`
	EnumConstants []struct {
		Name string `xml:"Name,attr"`
	} `xml:"EnumConstants>EnumConstant"`
}

type xmlElement struct {
	Name          string          `xml:"Name,attr"`
	Type          string          `xml:"Type,attr"`
	ComponentType string          `xml:"ComponentType,attr"`
	Nullable      string          `xml:"Nullable,attr"`
	Annotations   []xmlAnnotation `xml:"ElementAnnotations>Annotation"`
}

type xmlAnnotation struct {
	Name     string `xml:"Name,attr"`
	Elements []struct {
		Name  string `xml:"Name,attr"`
		Value string `xml:"Value,attr"`
	} `xml:"AnnotationElements>AnnotationElement"`
}

type xmlTypeMap struct {
	ContractType string `xml:"ContractType,attr"`
	SDKType      string `xml:"SdkType,attr"`
	Target       string `xml:"Target,attr"`
}

const (
	requirementRequired   = "REQUIRED"
	requirementNotAllowed = "NOT_ALLOWED"

	customMarshaledName   = "CustomMarshaledName"
	marshalXMLAsAttribute = "MarshalXmlAsAttribute"
	blockForEveryElement  = "BLOCK_FOR_EVERY_ELEMENT"

	// detailParam is the optional flag that selects the detailed payload of
	// a request answering one success code with two payload types.
	detailParam = "FullDetails"
)

func decodeXML(raw []byte) (*draft, error) {
	var doc xmlData
	dec := xml.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&doc); err != nil {
		return nil, &Error{Code: ParseError, Message: fmt.Sprintf("decode xml: %v", err), Cause: err}
	}
	if doc.Contract == nil {
		return nil, parseErrorf("Data", "missing Contract element")
	}

	d := &draft{}
	if doc.Contract.RequestHandlers != nil {
		for i, h := range doc.Contract.RequestHandlers.Handlers {
			reqs, err := h.toRequests(i)
			if err != nil {
				return nil, err
			}
			d.requests = append(d.requests, reqs...)
		}
	}
	if doc.Contract.Types != nil {
		for _, t := range doc.Contract.Types.Types {
			d.types = append(d.types, t.toType())
		}
	}
	if doc.Contract.TypeMaps != nil {
		for _, m := range doc.Contract.TypeMaps.Maps {
			d.typeMaps = append(d.typeMaps, TypeMapElement{ContractType: m.ContractType, SDKType: m.SDKType, Target: m.Target})
		}
	}
	return d, nil
}

// toRequests converts one handler. A handler whose success code carries two
// payload types becomes two requests: the base request answering with the
// first type, and a FullDetails variant that requires the detail flag and
// answers with the second.
func (h xmlRequestHandler) toRequests(i int) ([]Request, error) {
	req, alt, err := h.toRequest(i)
	if err != nil || alt == nil {
		return []Request{req}, err
	}
	ptr := fmt.Sprintf("RequestHandler[%s].ResponseCodes", h.Name)
	idx := -1
	for j, p := range req.OptionalParams {
		if strings.EqualFold(p.Name, detailParam) {
			idx = j
			break
		}
	}
	if idx < 0 {
		return nil, parseErrorf(ptr, "payload types %s and %s need an optional %s param to tell them apart", req.Response.Type, alt.Type, detailParam)
	}
	flag := req.OptionalParams[idx]

	detailed := req
	detailed.Name = detailName(req.Name)
	detailed.Response = alt
	detailed.RequiredParams = append(append([]Param(nil), req.RequiredParams...), flag)
	detailed.OptionalParams = nil
	for j, p := range req.OptionalParams {
		if j != idx {
			detailed.OptionalParams = append(detailed.OptionalParams, p)
		}
	}
	req.OptionalParams = append([]Param(nil), detailed.OptionalParams...)
	return []Request{req, detailed}, nil
}

// detailName inserts the detail flag name before the last "Request" of a
// handler name, or appends it when there is none.
func detailName(name string) string {
	if i := strings.LastIndex(name, "Request"); i > 0 {
		return name[:i] + detailParam + name[i:]
	}
	return name + detailParam
}

func (h xmlRequestHandler) toRequest(i int) (Request, *Response, error) {
	ptr := fmt.Sprintf("RequestHandler[%d]", i)
	if strings.TrimSpace(h.Name) == "" {
		return Request{}, nil, parseErrorf(ptr, "RequestHandler without Name")
	}
	ptr = fmt.Sprintf("RequestHandler[%s]", h.Name)
	if h.Request == nil {
		return Request{}, nil, parseErrorf(ptr, "missing Request element")
	}
	x := h.Request

	classification, err := ParseClassification(h.Classification)
	if err != nil {
		return Request{}, nil, parseErrorf(ptr, "%v", err)
	}
	verb, err := ParseHTTPVerb(x.HTTPVerb)
	if err != nil {
		return Request{}, nil, parseErrorf(ptr+".HttpVerb", "%v", err)
	}
	action, err := ParseAction(x.Action)
	if err != nil {
		return Request{}, nil, parseErrorf(ptr+".Action", "%v", err)
	}
	operation, err := ParseOperation(x.Operation)
	if err != nil {
		return Request{}, nil, parseErrorf(ptr+".Operation", "%v", err)
	}
	bucket, err := parseRequirement(x.BucketRequirement)
	if err != nil {
		return Request{}, nil, parseErrorf(ptr+".BucketRequirement", "%v", err)
	}
	object, err := parseRequirement(x.ObjectRequirement)
	if err != nil {
		return Request{}, nil, parseErrorf(ptr+".ObjectRequirement", "%v", err)
	}
	includeID, err := parseBoolAttr(x.IncludeIDInPath)
	if err != nil {
		return Request{}, nil, parseErrorf(ptr+".IncludeIdInPath", "%v", err)
	}

	req := Request{
		Name:           strings.TrimSpace(h.Name),
		Classification: classification,
		Verb:           verb,
		Action:         action,
		Operation:      operation,
		Resource:       strings.ToUpper(strings.TrimSpace(x.Resource)),
	}
	rawPath, pathParams := derivePath(classification, req.Resource, bucket == requirementRequired, object == requirementRequired, includeID)
	if req.Path, err = ParsePathTemplate(rawPath); err != nil {
		return Request{}, nil, parseErrorf(ptr, "%v", err)
	}
	req.RequiredParams = append(req.RequiredParams, pathParams...)
	for _, p := range x.RequiredParams {
		req.RequiredParams = append(req.RequiredParams, Param{Name: p.Name, Type: ParseTypeRef(p.Type), In: InQuery})
	}
	for _, p := range x.OptionalParams {
		req.OptionalParams = append(req.OptionalParams, Param{Name: p.Name, Type: ParseTypeRef(p.Type), In: InQuery})
	}

	var alt *Response
	if len(h.ResponseCodes) > 0 {
		resps, err := responseFromCodes(h.ResponseCodes)
		if err != nil {
			return Request{}, nil, parseErrorf(ptr+".ResponseCodes", "%v", err)
		}
		if len(resps) > 0 {
			req.Response = resps[0]
		}
		if len(resps) > 1 {
			alt = resps[1]
		}
	}
	return req, alt, nil
}

// derivePath rebuilds the request path the server routes on. Amazon S3
// requests address buckets and objects directly; Spectra S3 requests live
// under /_rest_/<resource>.
func derivePath(c Classification, resource string, bucket, object, includeID bool) (string, []Param) {
	bucketParam := Param{Name: "BucketName", Type: TypeRef{Name: string(String)}, In: InPath}
	if c == AmazonS3 {
		switch {
		case object:
			return "/{BucketName}/{ObjectName}", []Param{bucketParam, {Name: "ObjectName", Type: TypeRef{Name: string(String)}, In: InPath}}
		case bucket:
			return "/{BucketName}", []Param{bucketParam}
		default:
			return "/", nil
		}
	}
	path := "/_rest_/" + strings.ToLower(resource)
	if !includeID || resource == "" {
		return path, nil
	}
	if resource == "BUCKET" {
		return path + "/{BucketName}", []Param{bucketParam}
	}
	name := naming.Casing{Case: naming.Pascal}.Apply(resource) + "Id"
	return path + "/{" + name + "}", []Param{{Name: name, Type: TypeRef{Name: string(UUID)}, In: InPath}}
}

func parseRequirement(s string) (string, error) {
	switch v := strings.ToUpper(strings.TrimSpace(s)); v {
	case "", requirementRequired, requirementNotAllowed:
		return v, nil
	default:
		return "", fmt.Errorf("unknown requirement %q", s)
	}
}

func parseBoolAttr(s string) (bool, error) {
	if strings.TrimSpace(s) == "" {
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}

// responseFromCodes picks the payloads from the success codes. Codes at or
// above 300 describe errors and never contribute a payload. One distinct
// non-null payload gives one response; two give a base and a detailed
// response, in declaration order. Only error codes means no response.
func responseFromCodes(codes []xmlResponseCode) ([]*Response, error) {
	var (
		success  []int
		payloads []TypeRef
	)
	for _, rc := range codes {
		code, err := strconv.Atoi(strings.TrimSpace(rc.Code))
		if err != nil {
			return nil, fmt.Errorf("invalid response code %q", rc.Code)
		}
		if code >= 300 {
			continue
		}
		success = append(success, code)
		for _, rt := range rc.Types {
			if IsNullName(rt.Type) {
				continue
			}
			ref := NewTypeRef(rt.Type, rt.ComponentType)
			if ref.IsZero() || slices.Contains(payloads, ref) {
				continue
			}
			payloads = append(payloads, ref)
		}
	}
	if len(success) == 0 {
		return nil, nil
	}
	if len(payloads) > 2 {
		return nil, fmt.Errorf("%d payload types, at most two are supported", len(payloads))
	}
	if len(payloads) == 0 {
		payloads = []TypeRef{{}}
	}
	out := make([]*Response, 0, len(payloads))
	for _, p := range payloads {
		resp, err := NewResponse(p, "", success)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

func (t xmlType) toType() Type {
	out := Type{Name: strings.TrimSpace(t.Name), NameToMarshal: strings.TrimSpace(t.NameToMarshal)}
	for _, el := range t.Elements {
		nullable, _ := strconv.ParseBool(strings.TrimSpace(el.Nullable))
		ref := NewTypeRef(el.Type, el.ComponentType)
		name, wrapper, attr := el.wireNames(ref.IsCollection())
		out.Elements = append(out.Elements, Element{
			Name:          strings.TrimSpace(el.Name),
			Type:          ref,
			NameToMarshal: name,
			Wrapper:       wrapper,
			Attribute:     attr,
			Nullable:      nullable,
		})
	}
	for _, c := range t.EnumConstants {
		out.EnumConstants = append(out.EnumConstants, strings.TrimSpace(c.Name))
	}
	return out
}

// wireNames reads an element's marshalling annotations. Value names the
// element, or each item of a collection. CollectionValue names the block
// around a collection's items, unless the rendering mode repeats one block
// per item, in which case it names the items themselves.
func (el xmlElement) wireNames(collection bool) (name, wrapper string, attr bool) {
	var value, collectionValue, mode string
	for _, a := range el.Annotations {
		switch naming.ShortName(a.Name) {
		case marshalXMLAsAttribute:
			attr = true
		case customMarshaledName:
			for _, ae := range a.Elements {
				v := strings.TrimSpace(ae.Value)
				switch ae.Name {
				case "Value":
					value = v
				case "CollectionValue":
					collectionValue = v
				case "CollectionValueRenderingMode":
					mode = strings.ToUpper(v)
				}
			}
		}
	}
	if !collection || collectionValue == "" {
		return value, "", attr
	}
	if mode == blockForEveryElement {
		if value == "" {
			value = collectionValue
		}
		return value, "", attr
	}
	return value, collectionValue, attr
}
