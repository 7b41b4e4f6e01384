package schema

import (
	"strings"
	"unicode"

	"github.com/griffnb/nest-swag/internal/resolver"
)

// Property naming strategies.
const (
	// OriginalCase keeps property names as declared.
	OriginalCase = "original"
	// CamelCase lowercases the first letter.
	CamelCase = "camelcase"
	// PascalCase uppercases the first letter.
	PascalCase = "pascalcase"
	// SnakeCase converts to snake_case.
	SnakeCase = "snakecase"
)

// Generator renders resolved types. The zero value keeps property names as declared.
type Generator struct {
	propNamingStrategy string
}

// NewGenerator creates a generator with the given property naming strategy.
func NewGenerator(propNamingStrategy string) *Generator {
	return &Generator{propNamingStrategy: propNamingStrategy}
}

var defaultGenerator = &Generator{}

// Generate renders a resolved type with declared property names.
func Generate(t *resolver.Type) *JSONSchema {
	return defaultGenerator.Generate(t)
}

// Generate renders a resolved type. It is pure and total.
func (g *Generator) Generate(t *resolver.Type) *JSONSchema {
	if t == nil {
		return unknownSchema("")
	}

	switch t.Kind {
	case resolver.KindPrimitive:
		return primitiveSchema(t.Name)
	case resolver.KindArray:
		return &JSONSchema{Type: ARRAY, Items: g.Generate(t.Element)}
	case resolver.KindUnion:
		// unions of primitives collapse to the first member
		if t.AllPrimitive() {
			return g.Generate(t.Members[0])
		}
		s := &JSONSchema{OneOf: make([]*JSONSchema, 0, len(t.Members))}
		for _, m := range t.Members {
			s.OneOf = append(s.OneOf, g.Generate(m))
		}
		return s
	case resolver.KindEnum:
		s := &JSONSchema{Type: STRING, Description: t.Description}
		for _, m := range t.EnumMembers {
			s.Enum = append(s.Enum, m.Value)
		}
		return s
	case resolver.KindObject:
		return g.objectSchema(t)
	case resolver.KindRef:
		return &JSONSchema{Type: OBJECT, Ref: DefinitionsPrefix + refTarget(t)}
	}
	return unknownSchema(t.RawName)
}

func (g *Generator) objectSchema(t *resolver.Type) *JSONSchema {
	s := &JSONSchema{Type: OBJECT, Description: t.Description}
	for _, p := range t.Properties {
		name := g.applyNamingStrategy(p.Name)
		prop := g.Generate(p.Type)
		if p.Description != "" {
			prop.Description = p.Description
		}
		prop.Default = p.Default
		prop.Optional = p.Optional
		s.SetProperty(name, prop)
		if !p.Optional {
			s.Required = append(s.Required, name)
		}
	}
	if s.Properties == nil {
		s.Properties = map[string]*JSONSchema{}
	}
	return s
}

func refTarget(t *resolver.Type) string {
	if t.SchemaName != "" {
		return t.SchemaName
	}
	return t.Name
}

func primitiveSchema(name string) *JSONSchema {
	switch name {
	case resolver.PrimitiveString:
		return &JSONSchema{Type: STRING}
	case resolver.PrimitiveNumber:
		return &JSONSchema{Type: NUMBER}
	case resolver.PrimitiveBoolean:
		return &JSONSchema{Type: BOOLEAN}
	case resolver.PrimitiveDate:
		return &JSONSchema{Type: STRING, Format: FormatDateTime}
	case resolver.PrimitiveAny:
		return &JSONSchema{Type: OBJECT}
	case resolver.PrimitiveVoid, resolver.PrimitiveNull, resolver.PrimitiveUndefined:
		return &JSONSchema{Type: NULL}
	}
	return &JSONSchema{Type: STRING}
}

func unknownSchema(raw string) *JSONSchema {
	return &JSONSchema{Type: OBJECT, Description: "Unknown type: " + raw}
}

func (g *Generator) applyNamingStrategy(name string) string {
	switch strings.ToLower(g.propNamingStrategy) {
	case CamelCase, "camel_case":
		return toCamelCase(name)
	case PascalCase, "pascal_case":
		return toPascalCase(name)
	case SnakeCase, "snake_case":
		return toSnakeCase(name)
	default:
		return name
	}
}

func toCamelCase(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

func toPascalCase(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func toSnakeCase(s string) string {
	var result []rune
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			result = append(result, '_')
		}
		result = append(result, unicode.ToLower(r))
	}
	return string(result)
}
