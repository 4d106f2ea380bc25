package contract

import (
	"strings"

	"github.com/mark3labs/contract2sdk/internal/naming"
)

// TypeRef references a contract type. Collections carry their element type
// in Component.
type TypeRef struct {
	Name      string
	Component string
}

var collectionNames = symbols("ARRAY", "LIST", "SET", "JAVA.UTIL.LIST", "JAVA.UTIL.SET")

// ParseTypeRef reads the textual forms "T", "array<T>", "list<T>", "set<T>"
// and "T[]".
func ParseTypeRef(s string) TypeRef {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "[]") {
		return TypeRef{Name: "array", Component: strings.TrimSpace(strings.TrimSuffix(s, "[]"))}
	}
	if open := strings.IndexByte(s, '<'); open > 0 && strings.HasSuffix(s, ">") {
		outer := strings.TrimSpace(s[:open])
		if isCollectionName(outer) {
			return TypeRef{Name: outer, Component: strings.TrimSpace(s[open+1 : len(s)-1])}
		}
	}
	return TypeRef{Name: s}
}

// NewTypeRef builds a ref from the separate type and component attributes
// used by the XML contract. The component is dropped for non-collections.
func NewTypeRef(name, component string) TypeRef {
	name, component = strings.TrimSpace(name), strings.TrimSpace(component)
	if !isCollectionName(name) {
		return TypeRef{Name: name}
	}
	return TypeRef{Name: name, Component: component}
}

func isCollectionName(name string) bool {
	_, ok := collectionNames[strings.ToUpper(name)]
	return ok
}

func (r TypeRef) IsZero() bool { return r.Name == "" }

func (r TypeRef) IsCollection() bool {
	return isCollectionName(r.Name) && r.Component != ""
}

func (r TypeRef) String() string {
	if r.IsCollection() {
		return "array<" + r.Component + ">"
	}
	return r.Name
}

// IsNullName reports contract spellings of "no type".
func IsNullName(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "null", "void", "java.lang.void":
		return true
	}
	return false
}

// Primitive names the contract vocabulary shared by every target.
type Primitive string

const (
	Boolean Primitive = "boolean"
	Int     Primitive = "int"
	Long    Primitive = "long"
	Double  Primitive = "double"
	Float   Primitive = "float"
	String  Primitive = "string"
	UUID    Primitive = "uuid"
	Date    Primitive = "date"
	// Void marks a query flag that carries no value.
	Void    Primitive = "void"
)

var primitiveAliases = map[string]Primitive{
	"boolean": Boolean,
	"bool":    Boolean,
	"int":     Int,
	"integer": Int,
	"long":    Long,
	"double":  Double,
	"float":   Float,
	"string":  String,
	"uuid":    UUID,
	"date":    Date,
	"void":    Void,
}

// PrimitiveOf resolves a contract type name ("java.lang.Integer", "int",
// "UUID") to its primitive, if it is one.
func PrimitiveOf(name string) (Primitive, bool) {
	p, ok := primitiveAliases[strings.ToLower(naming.ShortName(name))]
	return p, ok
}
