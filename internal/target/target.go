package target

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/contract2sdk/internal/contract"
	"github.com/mark3labs/contract2sdk/internal/naming"
)

// Target describes one SDK ecosystem as data: how identifiers are cased and
// how contract primitives and collections are spelled.
type Target struct {
	Name    string
	Aliases []string

	TypeCasing  naming.Casing
	FieldCasing naming.Casing
	ParamCasing naming.Casing
	EnumCasing  naming.Casing
	// EnumPrefix prefixes enum constants with the enum's own name, for
	// languages without scoped enums.
	EnumPrefix bool

	Primitives map[contract.Primitive]string
	// Container is a format string wrapping a collection's element type.
	Container string
	// Boxed spells a primitive that appears inside a container or as a
	// nullable field, when the language distinguishes the two.
	Boxed map[string]string
	// Nullable is a format string for nullable primitive fields. Empty means
	// nullability is expressed through Boxed.
	Nullable string
}

// Matches reports whether name refers to t, by canonical name or alias.
func (t Target) Matches(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == t.Name {
		return true
	}
	for _, a := range t.Aliases {
		if name == a {
			return true
		}
	}
	return false
}

// Box returns the boxed spelling of a resolved type, or the type itself.
func (t Target) Box(resolved string) string {
	if b, ok := t.Boxed[resolved]; ok {
		return b
	}
	return resolved
}

var goKeywords = naming.Words(
	"break", "case", "chan", "const", "continue", "default", "defer", "else",
	"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
	"map", "package", "range", "return", "select", "struct", "switch", "type", "var",
)

var pythonKeywords = naming.Words(
	"and", "as", "assert", "async", "await", "break", "class", "continue", "def",
	"del", "elif", "else", "except", "finally", "for", "from", "global", "if",
	"import", "in", "is", "lambda", "nonlocal", "not", "or", "pass", "raise",
	"return", "try", "type", "while", "with", "yield",
)

var javaKeywords = naming.Words(
	"abstract", "boolean", "break", "byte", "case", "catch", "char", "class",
	"continue", "default", "do", "double", "else", "enum", "extends", "final",
	"finally", "float", "for", "if", "implements", "import", "instanceof", "int",
	"interface", "long", "new", "package", "private", "protected", "public",
	"return", "short", "static", "super", "switch", "this", "throw", "throws",
	"try", "void", "while",
)

var csharpKeywords = naming.Words(
	"abstract", "base", "bool", "break", "case", "catch", "class", "const",
	"continue", "default", "delegate", "do", "double", "else", "enum", "event",
	"fixed", "float", "for", "foreach", "if", "in", "int", "interface", "is",
	"lock", "long", "namespace", "new", "object", "operator", "out", "override",
	"params", "private", "protected", "public", "ref", "return", "string",
	"struct", "switch", "this", "throw", "try", "using", "virtual", "void", "while",
)

var builtins = []Target{
	{
		Name:        "go",
		Aliases:     []string{"golang"},
		TypeCasing:  naming.Casing{Case: naming.Pascal, Initialisms: true},
		FieldCasing: naming.Casing{Case: naming.Pascal, Initialisms: true},
		ParamCasing: naming.Casing{Case: naming.Camel, Initialisms: true, Reserved: goKeywords, Suffix: "_"},
		EnumCasing:  naming.Casing{Case: naming.ScreamingSnake},
		EnumPrefix:  true,
		Primitives: map[contract.Primitive]string{
			contract.Boolean: "bool",
			contract.Int:     "int",
			contract.Long:    "int64",
			contract.Double:  "float64",
			contract.Float:   "float32",
			contract.String:  "string",
			contract.UUID:    "string",
			contract.Date:    "string",
			contract.Void:    "bool",
		},
		Container: "[]%s",
		Nullable:  "*%s",
	},
	{
		Name:        "python",
		Aliases:     []string{"py"},
		TypeCasing:  naming.Casing{Case: naming.Pascal},
		FieldCasing: naming.Casing{Case: naming.Snake, Reserved: pythonKeywords, Suffix: "_"},
		ParamCasing: naming.Casing{Case: naming.Snake, Reserved: pythonKeywords, Suffix: "_"},
		EnumCasing:  naming.Casing{Case: naming.ScreamingSnake},
		Primitives: map[contract.Primitive]string{
			contract.Boolean: "bool",
			contract.Int:     "int",
			contract.Long:    "int",
			contract.Double:  "float",
			contract.Float:   "float",
			contract.String:  "str",
			contract.UUID:    "str",
			contract.Date:    "str",
			contract.Void:    "bool",
		},
		Container: "List[%s]",
		Nullable:  "Optional[%s]",
	},
	{
		Name:        "java",
		TypeCasing:  naming.Casing{Case: naming.Pascal},
		FieldCasing: naming.Casing{Case: naming.Camel, Reserved: javaKeywords, Suffix: "Value"},
		ParamCasing: naming.Casing{Case: naming.Camel, Reserved: javaKeywords, Suffix: "Value"},
		EnumCasing:  naming.Casing{Case: naming.ScreamingSnake},
		Primitives: map[contract.Primitive]string{
			contract.Boolean: "boolean",
			contract.Int:     "int",
			contract.Long:    "long",
			contract.Double:  "double",
			contract.Float:   "float",
			contract.String:  "String",
			contract.UUID:    "UUID",
			contract.Date:    "Date",
			contract.Void:    "boolean",
		},
		Container: "List<%s>",
		Boxed: map[string]string{
			"boolean": "Boolean",
			"int":     "Integer",
			"long":    "Long",
			"double":  "Double",
			"float":   "Float",
		},
	},
	{
		Name:        "net",
		Aliases:     []string{"csharp", "c#", "dotnet", ".net"},
		TypeCasing:  naming.Casing{Case: naming.Pascal},
		FieldCasing: naming.Casing{Case: naming.Pascal, Reserved: csharpKeywords, Suffix: "Value"},
		ParamCasing: naming.Casing{Case: naming.Camel, Reserved: csharpKeywords, Suffix: "Value"},
		EnumCasing:  naming.Casing{Case: naming.Pascal},
		Primitives: map[contract.Primitive]string{
			contract.Boolean: "bool",
			contract.Int:     "int",
			contract.Long:    "long",
			contract.Double:  "double",
			contract.Float:   "float",
			contract.String:  "string",
			contract.UUID:    "Guid",
			contract.Date:    "DateTime",
			contract.Void:    "bool",
		},
		Container: "IEnumerable<%s>",
		Nullable:  "%s?",
	},
}

// Lookup finds a built-in target by name or alias, case-insensitively.
func Lookup(name string) (Target, error) {
	for _, t := range builtins {
		if t.Matches(name) {
			return t, nil
		}
	}
	return Target{}, fmt.Errorf("unknown target %q (available: %s)", name, strings.Join(Names(), ", "))
}

// Names lists the built-in target names in sorted order.
func Names() []string {
	out := make([]string, 0, len(builtins))
	for _, t := range builtins {
		out = append(out, t.Name)
	}
	sort.Strings(out)
	return out
}

// All returns the built-in targets sorted by name.
func All() []Target {
	out := append([]Target(nil), builtins...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupAll resolves a list of names, dropping duplicates while keeping the
// first occurrence's position.
func LookupAll(names []string) ([]Target, error) {
	seen := make(map[string]bool, len(names))
	var out []Target
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		t, err := Lookup(n)
		if err != nil {
			return nil, err
		}
		if seen[t.Name] {
			continue
		}
		seen[t.Name] = true
		out = append(out, t)
	}
	return out, nil
}
