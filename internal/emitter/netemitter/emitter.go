package netemitter

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"text/template"
	"unicode"

	"github.com/mark3labs/contract2sdk/internal/emitter"
	"github.com/mark3labs/contract2sdk/internal/view"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("net").Funcs(emitter.Funcs()).ParseFS(templateFS, "templates/*.tmpl"))

const defaultNamespace = "Ds3"

type supportData struct {
	Namespace string
}

type typeData struct {
	Namespace string
	Type      view.TypeView
}

type requestData struct {
	Namespace string
	Request   view.RequestView
	HasModels bool
}

// Render produces a C# source tree rooted at the namespace directory with
// Models, Calls and ResponseParsers folders.
func Render(model *view.TargetModel, opts emitter.RenderOptions) ([]emitter.File, error) {
	if model == nil {
		return nil, fmt.Errorf("netemitter: nil model")
	}
	ns := namespace(opts.PackageName)
	root := strings.ReplaceAll(ns, ".", "/")

	var files []emitter.File
	add := func(rel, tmpl string, data any) error {
		content, err := emitter.Execute(templates, tmpl, data)
		if err != nil {
			return fmt.Errorf("netemitter: %w", err)
		}
		files = append(files, emitter.File{RelPath: path.Join(root, rel), Content: content})
		return nil
	}

	support := supportData{Namespace: ns}
	if err := add("Calls/Ds3Request.cs", "ds3request.cs.tmpl", support); err != nil {
		return nil, err
	}
	if err := add("Runtime/ResponseParseUtilities.cs", "runtime.cs.tmpl", support); err != nil {
		return nil, err
	}
	for _, t := range model.Types {
		if err := add("Models/"+t.Name+".cs", "model.cs.tmpl", typeData{Namespace: ns, Type: t}); err != nil {
			return nil, err
		}
	}
	hasModels := len(model.Types) > 0
	for _, r := range model.Requests {
		data := requestData{Namespace: ns, Request: r, HasModels: hasModels}
		if err := add("Calls/"+r.Name+".cs", "request.cs.tmpl", data); err != nil {
			return nil, err
		}
		if err := add("Calls/"+r.Response.Name+".cs", "response.cs.tmpl", data); err != nil {
			return nil, err
		}
		if err := add("ResponseParsers/"+r.Response.Name+"Parser.cs", "parser.cs.tmpl", data); err != nil {
			return nil, err
		}
	}
	emitter.SortFiles(files)
	return files, nil
}

// namespace keeps the identifier characters of each dotted segment.
func namespace(name string) string {
	var segments []string
	for _, seg := range strings.Split(strings.TrimSpace(name), ".") {
		var b strings.Builder
		for _, r := range seg {
			switch {
			case unicode.IsLetter(r), r == '_':
				b.WriteRune(r)
			case unicode.IsDigit(r) && b.Len() > 0:
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			segments = append(segments, b.String())
		}
	}
	if len(segments) == 0 {
		return defaultNamespace
	}
	return strings.Join(segments, ".")
}
