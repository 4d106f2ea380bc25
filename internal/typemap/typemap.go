package typemap

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mark3labs/contract2sdk/internal/contract"
	"github.com/mark3labs/contract2sdk/internal/naming"
	"github.com/mark3labs/contract2sdk/internal/target"
)

const cacheSize = 1024

// UnmappedTypeError reports a contract type that has neither an explicit
// mapping nor a structural default for a target.
type UnmappedTypeError struct {
	Type     string
	Target   string
	Location string // e.g. "types[Job].elements.Status"
}

func (e *UnmappedTypeError) Error() string {
	msg := fmt.Sprintf("%s: no mapping for contract type %q", e.Target, e.Type)
	if e.Location != "" {
		msg += " (at " + e.Location + ")"
	}
	return msg
}

// MappingConflictError reports two explicit mappings for the same contract
// type within one target.
type MappingConflictError struct {
	ContractType string
	Target       string
	First        string
	Second       string
}

func (e *MappingConflictError) Error() string {
	return fmt.Sprintf("%s: contract type %q mapped to both %q and %q", e.Target, e.ContractType, e.First, e.Second)
}

// AtLocation attaches a contract location to an UnmappedTypeError that does
// not carry one yet. Other errors pass through.
func AtLocation(err error, location string) error {
	var ue *UnmappedTypeError
	if errors.As(err, &ue) && ue.Location == "" {
		ue.Location = location
	}
	return err
}

// Table resolves contract types for exactly one target. Resolve is safe for
// concurrent use.
type Table struct {
	target   target.Target
	spec     *contract.Spec
	explicit map[string]string
	cache    *lru.Cache[string, string]
}

// New builds the table for t from the spec's type maps that name t plus any
// extra mappings. Mappings for other targets are ignored.
func New(t target.Target, spec *contract.Spec, extra ...contract.TypeMapElement) (*Table, error) {
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, err
	}
	tbl := &Table{target: t, spec: spec, explicit: make(map[string]string), cache: cache}

	var maps []contract.TypeMapElement
	if spec != nil {
		maps = spec.TypeMaps()
	}
	maps = append(maps, extra...)
	for _, m := range maps {
		if !t.Matches(m.Target) {
			continue
		}
		key := strings.TrimSpace(m.ContractType)
		sdk := strings.TrimSpace(m.SDKType)
		if prev, ok := tbl.explicit[key]; ok && prev != sdk {
			return nil, &MappingConflictError{ContractType: key, Target: t.Name, First: prev, Second: sdk}
		}
		tbl.explicit[key] = sdk
	}
	return tbl, nil
}

func (t *Table) Target() target.Target { return t.target }

// Explicit returns the explicit mapping for a contract type name, trying the
// exact name first and then its short name.
func (t *Table) Explicit(name string) (string, bool) {
	if sdk, ok := t.explicit[name]; ok {
		return sdk, true
	}
	sdk, ok := t.explicit[naming.ShortName(name)]
	return sdk, ok
}

// ExplicitTypes lists the contract names with an explicit mapping, sorted.
func (t *Table) ExplicitTypes() []string {
	out := make([]string, 0, len(t.explicit))
	for k := range t.explicit {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Resolve maps a contract type to the target's spelling: an explicit
// mapping first, then the structural defaults for primitives, collections
// and declared types.
func (t *Table) Resolve(ref contract.TypeRef) (string, error) {
	key := ref.String()
	if v, ok := t.cache.Get(key); ok {
		return v, nil
	}
	v, err := t.resolve(ref)
	if err != nil {
		return "", err
	}
	t.cache.Add(key, v)
	return v, nil
}

func (t *Table) resolve(ref contract.TypeRef) (string, error) {
	if ref.IsZero() {
		return "", &UnmappedTypeError{Type: "<empty>", Target: t.target.Name}
	}
	if sdk, ok := t.Explicit(ref.String()); ok {
		return sdk, nil
	}
	if ref.IsCollection() {
		elem, err := t.Resolve(contract.TypeRef{Name: ref.Component})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(t.target.Container, t.target.Box(elem)), nil
	}
	if sdk, ok := t.Explicit(ref.Name); ok {
		return sdk, nil
	}
	if p, ok := contract.PrimitiveOf(ref.Name); ok {
		if sdk, ok := t.target.Primitives[p]; ok {
			return sdk, nil
		}
	}
	if t.spec != nil {
		if decl, ok := t.spec.LookupType(ref.Name); ok {
			return t.TypeName(decl.Name), nil
		}
	}
	return "", &UnmappedTypeError{Type: ref.Name, Target: t.target.Name}
}

// ResolveField resolves an element type and applies the target's nullable
// form to primitive, non-string values.
func (t *Table) ResolveField(ref contract.TypeRef, nullable bool) (string, error) {
	v, err := t.Resolve(ref)
	if err != nil || !nullable || ref.IsCollection() {
		return v, err
	}
	p, ok := contract.PrimitiveOf(ref.Name)
	if !ok || p == contract.String {
		return v, nil
	}
	if _, explicit := t.Explicit(ref.Name); explicit {
		return v, nil
	}
	if t.target.Nullable == "" {
		return t.target.Box(v), nil
	}
	return fmt.Sprintf(t.target.Nullable, v), nil
}

// TypeName renders a declared contract type name in the target's type
// casing.
func (t *Table) TypeName(contractName string) string {
	return t.target.TypeCasing.Apply(naming.Normalize(contractName))
}
