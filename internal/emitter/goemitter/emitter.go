package goemitter

import (
	"embed"
	"fmt"
	"go/format"
	"path"
	"strings"
	"text/template"

	"github.com/mark3labs/contract2sdk/internal/emitter"
	"github.com/mark3labs/contract2sdk/internal/naming"
	"github.com/mark3labs/contract2sdk/internal/shape"
	"github.com/mark3labs/contract2sdk/internal/view"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("go").Funcs(emitter.Funcs()).ParseFS(templateFS, "templates/*.tmpl"))

const defaultPackage = "ds3"

type typeData struct {
	Package string
	Type    view.TypeView
}

type requestData struct {
	Package      string
	Request      view.RequestView
	NeedsXMLName bool
}

type packageData struct {
	Package string
	Model   *view.TargetModel
}

// Render produces a Go package with one file per type and one per request.
// Every file is passed through gofmt, so a template bug surfaces as an error
// rather than as broken output.
func Render(model *view.TargetModel, opts emitter.RenderOptions) ([]emitter.File, error) {
	if model == nil {
		return nil, fmt.Errorf("goemitter: nil model")
	}
	pkg := packageName(opts.PackageName)

	var files []emitter.File
	scope := naming.NewScope(model.Target, "file")
	add := func(rel, source, tmpl string, data any) error {
		if err := scope.Claim(rel, source); err != nil {
			return err
		}
		raw, err := emitter.Execute(templates, tmpl, data)
		if err != nil {
			return fmt.Errorf("goemitter: %w", err)
		}
		src, err := format.Source(raw)
		if err != nil {
			return fmt.Errorf("goemitter: format %s: %w", rel, err)
		}
		files = append(files, emitter.File{RelPath: path.Join(pkg, rel), Content: src})
		return nil
	}

	if err := add("doc.go", "package doc", "doc.go.tmpl", packageData{Package: pkg, Model: model}); err != nil {
		return nil, err
	}
	if err := add("client_support.go", "client support", "support.go.tmpl", packageData{Package: pkg, Model: model}); err != nil {
		return nil, err
	}
	for _, t := range model.Types {
		if err := add(fileName(t.Name), t.Name, "type.go.tmpl", typeData{Package: pkg, Type: t}); err != nil {
			return nil, err
		}
	}
	for _, r := range model.Requests {
		data := requestData{Package: pkg, Request: r, NeedsXMLName: needsXMLName(r.Response)}
		if err := add(fileName(r.Name), r.Name, "request.go.tmpl", data); err != nil {
			return nil, err
		}
	}
	emitter.SortFiles(files)
	return files, nil
}

func needsXMLName(r view.ResponseView) bool {
	return r.Shape == shape.OverriddenNamePayload && r.Parser != nil && r.Parser.MarshalName != r.Parser.ItemName
}

// fileName is the snake-case file holding a declaration. Names the go tool
// would read as a test file or a GOOS/GOARCH constrained file, or that
// would replace a fixed file of the package, get a "_gen" suffix.
func fileName(name string) string {
	base := naming.Casing{Case: naming.Snake}.Apply(name)
	if fixedFiles[base] || strings.HasSuffix(base, "_test") || constrained(base) {
		base += "_gen"
	}
	return base + ".go"
}

var fixedFiles = map[string]bool{"doc": true, "client_support": true}

// constrained mirrors go/build: everything after the first underscore is
// checked, a trailing "test" is dropped, and a final GOOS or GOARCH element
// constrains the file.
func constrained(base string) bool {
	_, rest, ok := strings.Cut(base, "_")
	if !ok {
		return false
	}
	parts := strings.Split(rest, "_")
	if n := len(parts); parts[n-1] == "test" {
		parts = parts[:n-1]
	}
	if len(parts) == 0 {
		return false
	}
	last := parts[len(parts)-1]
	_, isOS := knownOS[last]
	_, isArch := knownArch[last]
	return isOS || isArch
}

var knownOS = naming.Words("aix", "android", "darwin", "dragonfly", "freebsd", "hurd", "illumos", "ios", "js",
	"linux", "nacl", "netbsd", "openbsd", "plan9", "solaris", "wasip1", "windows", "zos")

var knownArch = naming.Words("386", "amd64", "amd64p32", "arm", "armbe", "arm64", "arm64be", "loong64", "mips",
	"mipsle", "mips64", "mips64le", "mips64p32", "mips64p32le", "ppc", "ppc64", "ppc64le", "riscv", "riscv64",
	"s390", "s390x", "sparc", "sparc64", "wasm")

// packageName keeps the last path element and reduces it to a valid Go
// package identifier.
func packageName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9' && b.Len() > 0) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return defaultPackage
	}
	return b.String()
}
