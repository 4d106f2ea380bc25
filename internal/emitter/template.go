package emitter

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/mark3labs/contract2sdk/internal/naming"
)

// Funcs returns the template helpers shared by the target renderers.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"pascal": naming.Casing{Case: naming.Pascal}.Apply,
		"camel":  naming.Casing{Case: naming.Camel}.Apply,
		"snake":  naming.Casing{Case: naming.Snake}.Apply,
		"export": naming.Casing{Case: naming.Pascal, Initialisms: true}.Apply,
		"quote":  strconv.Quote,
		"codes":  JoinCodes,
		"lower":  strings.ToLower,
		"lines":  Lines,
	}
}

// Lines splits free text into trimmed, non-empty lines for comment blocks.
// A "*/" is broken up so the text cannot close a block comment.
func Lines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(strings.ReplaceAll(l, "*/", "* /"))
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// JoinCodes renders status codes as "200, 206".
func JoinCodes(codes []int) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ", ")
}

// Execute runs the named template and returns its output.
func Execute(t *template.Template, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// SortFiles orders files by relative path.
func SortFiles(files []File) {
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
}
