package javaemitter

import (
	"embed"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"text/template"

	"github.com/mark3labs/contract2sdk/internal/emitter"
	"github.com/mark3labs/contract2sdk/internal/view"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("java").Funcs(emitter.Funcs()).ParseFS(templateFS, "templates/*.tmpl"))

const defaultPackage = "com.spectralogic.ds3client"

// utilImports maps a java.util class to the pattern that shows it is used.
var utilImports = []struct {
	name string
	re   *regexp.Regexp
}{
	{"java.util.Date", regexp.MustCompile(`\bDate\b`)},
	{"java.util.List", regexp.MustCompile(`\bList<`)},
	{"java.util.UUID", regexp.MustCompile(`\bUUID\b`)},
}

type supportData struct {
	Package string
}

type typeData struct {
	Package string
	Type    view.TypeView
	Imports []string
}

type requestData struct {
	Package   string
	Request   view.RequestView
	Imports   []string
	HasModels bool
}

// Render produces a Maven-style source tree: one class per model, and a
// request, response and response parser class per request.
func Render(model *view.TargetModel, opts emitter.RenderOptions) ([]emitter.File, error) {
	if model == nil {
		return nil, fmt.Errorf("javaemitter: nil model")
	}
	pkg := packageName(opts.PackageName)
	root := path.Join("src/main/java", strings.ReplaceAll(pkg, ".", "/"))

	var files []emitter.File
	add := func(rel, tmpl string, data any) error {
		content, err := emitter.Execute(templates, tmpl, data)
		if err != nil {
			return fmt.Errorf("javaemitter: %w", err)
		}
		files = append(files, emitter.File{RelPath: path.Join(root, rel), Content: content})
		return nil
	}

	support := supportData{Package: pkg}
	if err := add("commands/interfaces/AbstractRequest.java", "abstract_request.java.tmpl", support); err != nil {
		return nil, err
	}
	if err := add("commands/parsers/utils/ResponseParserUtils.java", "parser_utils.java.tmpl", support); err != nil {
		return nil, err
	}

	for _, t := range model.Types {
		var used []string
		for _, f := range t.Fields {
			used = append(used, f.Type)
		}
		data := typeData{Package: pkg, Type: t, Imports: imports(used...)}
		if err := add("models/"+t.Name+".java", "model.java.tmpl", data); err != nil {
			return nil, err
		}
	}

	hasModels := len(model.Types) > 0
	for _, r := range model.Requests {
		used := []string{r.PayloadType}
		for _, p := range r.RequiredParams {
			used = append(used, p.Type)
		}
		for _, p := range r.OptionalParams {
			used = append(used, p.Type)
		}
		data := requestData{Package: pkg, Request: r, Imports: imports(used...), HasModels: hasModels}
		if err := add("commands/"+r.Name+".java", "request.java.tmpl", data); err != nil {
			return nil, err
		}

		var payload []string
		if p := r.Response.Parser; p != nil {
			payload = append(payload, p.Type, p.ElementType)
		}
		data.Imports = imports(payload...)
		if err := add("commands/"+r.Response.Name+".java", "response.java.tmpl", data); err != nil {
			return nil, err
		}
		if err := add("commands/parsers/"+r.Response.Name+"Parser.java", "parser.java.tmpl", data); err != nil {
			return nil, err
		}
	}
	emitter.SortFiles(files)
	return files, nil
}

// imports lists the java.util classes referenced by the given type names.
func imports(types ...string) []string {
	var out []string
	for _, u := range utilImports {
		for _, t := range types {
			if u.re.MatchString(t) {
				out = append(out, u.name)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// packageName lowercases each dotted segment and drops characters Java does
// not allow in package names.
func packageName(name string) string {
	var segments []string
	for _, seg := range strings.Split(strings.TrimSpace(name), ".") {
		var b strings.Builder
		for _, r := range strings.ToLower(seg) {
			switch {
			case r >= 'a' && r <= 'z', r == '_':
				b.WriteRune(r)
			case r >= '0' && r <= '9' && b.Len() > 0:
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			segments = append(segments, b.String())
		}
	}
	if len(segments) == 0 {
		return defaultPackage
	}
	return strings.Join(segments, ".")
}
