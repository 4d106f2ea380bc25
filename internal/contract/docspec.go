package contract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mark3labs/contract2sdk/internal/naming"
)

// DocSpec carries the human descriptions of requests and params that the
// contract itself does not hold. A nil *DocSpec knows nothing.
type DocSpec struct {
	requests map[string]string
	params   map[string]string
}

type rawDocSpec struct {
	RequestDescriptors []struct {
		Name           string `yaml:"name"`
		Classification string `yaml:"classification"`
		Description    string `yaml:"description"`
	} `yaml:"requestDescriptors"`
	ParamDescriptors []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"paramDescriptors"`
}

// ParseDocSpec decodes a documentation file, JSON or YAML. Request entries
// are keyed by canonical request name, so "GetJobRequestHandler" under
// spectrads3 documents GetJobSpectraS3Request.
func ParseDocSpec(r io.Reader) (*DocSpec, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Code: IOError, Message: fmt.Sprintf("read docs: %v", err), Cause: err}
	}
	return parseDocSpec(raw)
}

// LoadDocSpec reads a documentation file from a local path or an http/https
// URL.
func LoadDocSpec(ctx context.Context, input string, opts ...Option) (*DocSpec, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &Error{Code: IOError, Message: "docs: input is empty"}
	}
	settings := resolveSettings(opts)
	raw, location, err := readSource(ctx, input, settings)
	if err != nil {
		return nil, err
	}
	docs, err := parseDocSpec(raw)
	if err != nil {
		return nil, withLocation(err, location)
	}
	settings.Logger.Debug("docs loaded", "location", location, "requests", len(docs.requests), "params", len(docs.params))
	return docs, nil
}

func parseDocSpec(raw []byte) (*DocSpec, error) {
	var doc rawDocSpec
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, &Error{Code: ParseError, Message: fmt.Sprintf("decode docs: %v", err), Cause: err}
	}
	out := &DocSpec{requests: make(map[string]string), params: make(map[string]string)}
	for i, rd := range doc.RequestDescriptors {
		if strings.TrimSpace(rd.Name) == "" {
			return nil, parseErrorf(fmt.Sprintf("requestDescriptors[%d]", i), "request descriptor without name")
		}
		out.requests[naming.RequestName(rd.Name, strings.ToLower(rd.Classification))] = strings.TrimSpace(rd.Description)
	}
	for i, pd := range doc.ParamDescriptors {
		if strings.TrimSpace(pd.Name) == "" {
			return nil, parseErrorf(fmt.Sprintf("paramDescriptors[%d]", i), "param descriptor without name")
		}
		out.params[strings.TrimSpace(pd.Name)] = strings.TrimSpace(pd.Description)
	}
	return out, nil
}

// RequestDoc returns the description of a canonical request name.
func (d *DocSpec) RequestDoc(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	doc, ok := d.requests[name]
	return doc, ok
}

// ParamDoc returns the description of a param by its contract name.
func (d *DocSpec) ParamDoc(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	doc, ok := d.params[name]
	return doc, ok
}
