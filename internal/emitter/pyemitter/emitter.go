package pyemitter

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/mark3labs/contract2sdk/internal/emitter"
	"github.com/mark3labs/contract2sdk/internal/view"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("python").Funcs(emitter.Funcs()).ParseFS(templateFS, "templates/*.tmpl"))

const defaultPackage = "ds3"

type templateData struct {
	Package string
	Model   *view.TargetModel
}

// Render produces a Python package with models, requests and responses
// modules.
func Render(model *view.TargetModel, opts emitter.RenderOptions) ([]emitter.File, error) {
	if model == nil {
		return nil, fmt.Errorf("pyemitter: nil model")
	}
	pkg := sanitizePackageName(opts.PackageName)
	if pkg == "" {
		pkg = defaultPackage
	}
	data := templateData{Package: pkg, Model: model}

	var files []emitter.File
	for _, f := range []struct{ rel, tmpl string }{
		{"__init__.py", "init.py.tmpl"},
		{"models.py", "models.py.tmpl"},
		{"requests.py", "requests.py.tmpl"},
		{"responses.py", "responses.py.tmpl"},
	} {
		content, err := emitter.Execute(templates, f.tmpl, data)
		if err != nil {
			return nil, fmt.Errorf("pyemitter: %w", err)
		}
		files = append(files, emitter.File{RelPath: path.Join(pkg, f.rel), Content: content})
	}
	emitter.SortFiles(files)
	return files, nil
}

func sanitizePackageName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	// dotted names keep their last component
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ToLower(name)
	b := strings.Builder{}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "_")
}
