// Package resolver turns textual type references into resolved type trees
// against the source unit index.
package resolver

import (
	"strings"
)

// Kind tags a resolved Type.
type Kind int

const (
	// KindUnknown is a reference nothing could resolve.
	KindUnknown Kind = iota
	// KindPrimitive is a built in type from the primitive catalog.
	KindPrimitive
	// KindArray is a list of Element.
	KindArray
	// KindUnion is an ordered list of alternatives.
	KindUnion
	// KindEnum is a resolved enum declaration.
	KindEnum
	// KindObject is a resolved interface, class or inline object type.
	KindObject
	// KindRef points back at a declaration already being resolved.
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindArray:
		return "array"
	case KindUnion:
		return "union"
	case KindEnum:
		return "enum"
	case KindObject:
		return "object"
	case KindRef:
		return "ref"
	default:
		return "unknown"
	}
}

// ObjectKind says where an object type came from.
type ObjectKind string

const (
	ObjectInterface ObjectKind = "interface"
	ObjectClass     ObjectKind = "class"
	ObjectInline    ObjectKind = "inline"
)

// Primitive names produced by the resolver.
const (
	PrimitiveString    = "string"
	PrimitiveNumber    = "number"
	PrimitiveBoolean   = "boolean"
	PrimitiveDate      = "date"
	PrimitiveAny       = "any"
	PrimitiveVoid      = "void"
	PrimitiveNull      = "null"
	PrimitiveUndefined = "undefined"
	PrimitiveObject    = "object"
	PrimitiveFunction  = "function"
	PrimitivePromise   = "promise"
)

// primitiveCatalog maps source spellings to canonical primitive names.
var primitiveCatalog = map[string]string{
	"string":    PrimitiveString,
	"number":    PrimitiveNumber,
	"boolean":   PrimitiveBoolean,
	"Date":      PrimitiveDate,
	"any":       PrimitiveAny,
	"void":      PrimitiveVoid,
	"null":      PrimitiveNull,
	"undefined": PrimitiveUndefined,
	"object":    PrimitiveObject,
	"Object":    PrimitiveObject,
	"Function":  PrimitiveFunction,
	"Promise":   PrimitivePromise,
}

// LookupPrimitive returns the canonical primitive name for a source spelling.
func LookupPrimitive(name string) (string, bool) {
	canonical, ok := primitiveCatalog[name]
	return canonical, ok
}

// Type is a resolved type. Which fields are set depends on Kind. Types
// handed out by a Resolver are shared through its cache and must not be
// mutated.
type Type struct {
	Kind Kind

	// Name is the canonical primitive name, or the declared name of an
	// enum, object or ref.
	Name string

	// RawName is the original reference text of an unknown type.
	RawName string

	// SchemaName is the catalog name of an enum, object or ref.
	SchemaName string

	Element     *Type
	Members     []*Type
	EnumMembers []EnumMember
	ObjectKind  ObjectKind
	Properties  []Property
	OriginUnit  string
	Description string
}

// Property is a named member of an object or enum type.
type Property struct {
	Name        string
	Type        *Type
	Optional    bool
	Description string
	Default     string
}

// EnumMember is one enum member with its value: int64, float64 or string.
type EnumMember struct {
	Name    string
	Value   interface{}
	Literal string
}

// Primitive builds a primitive type.
func Primitive(name string) *Type {
	return &Type{Kind: KindPrimitive, Name: name}
}

// ArrayOf builds an array type.
func ArrayOf(element *Type) *Type {
	return &Type{Kind: KindArray, Element: element}
}

// UnionOf builds a union type keeping member order.
func UnionOf(members ...*Type) *Type {
	return &Type{Kind: KindUnion, Members: members}
}

// Unknown builds the fallback type for an unresolvable reference.
func Unknown(raw string) *Type {
	return &Type{Kind: KindUnknown, RawName: raw}
}

// IsPrimitive reports whether the type is a primitive.
func (t *Type) IsPrimitive() bool {
	return t != nil && t.Kind == KindPrimitive
}

// AllPrimitive reports whether every member of a union is primitive.
func (t *Type) AllPrimitive() bool {
	if t == nil || t.Kind != KindUnion || len(t.Members) == 0 {
		return false
	}
	for _, m := range t.Members {
		if !m.IsPrimitive() {
			return false
		}
	}
	return true
}

// Property returns the named property.
func (t *Type) Property(name string) (Property, bool) {
	if t == nil {
		return Property{}, false
	}
	for _, p := range t.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// String renders a short, human readable form.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindPrimitive:
		return t.Name
	case KindArray:
		elem := t.Element.String()
		if t.Element != nil && t.Element.Kind == KindUnion {
			elem = "(" + elem + ")"
		}
		return elem + "[]"
	case KindUnion:
		parts := make([]string, 0, len(t.Members))
		for _, m := range t.Members {
			parts = append(parts, m.String())
		}
		return strings.Join(parts, " | ")
	case KindEnum:
		return "enum " + t.Name
	case KindObject:
		if t.Name != "" {
			return t.Name
		}
		parts := make([]string, 0, len(t.Properties))
		for _, p := range t.Properties {
			opt := ""
			if p.Optional {
				opt = "?"
			}
			parts = append(parts, p.Name+opt+": "+p.Type.String())
		}
		return "{ " + strings.Join(parts, "; ") + " }"
	case KindRef:
		return "ref " + t.Name
	default:
		return "unknown " + t.RawName
	}
}
