// Package schema renders resolved types as JSON Schema documents, builds
// representative example values and keeps the catalog of named definitions.
package schema

import (
	"sort"
)

const (
	// ARRAY represent a array value.
	ARRAY = "array"
	// OBJECT represent a object value.
	OBJECT = "object"
	// BOOLEAN represent a boolean value.
	BOOLEAN = "boolean"
	// NUMBER represent a number value.
	NUMBER = "number"
	// STRING represent a string value.
	STRING = "string"
	// NULL represent a null value.
	NULL = "null"

	// FormatDateTime is the format attached to date primitives.
	FormatDateTime = "date-time"

	// DefinitionsPrefix prefixes every $ref.
	DefinitionsPrefix = "#/definitions/"
)

// JSONSchema is the generated description of a data shape.
type JSONSchema struct {
	Type        string                 `json:"type,omitempty"`
	Format      string                 `json:"format,omitempty"`
	Description string                 `json:"description,omitempty"`
	Ref         string                 `json:"$ref,omitempty"`
	Properties  map[string]*JSONSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
	Items       *JSONSchema            `json:"items,omitempty"`
	Enum        []interface{}          `json:"enum,omitempty"`
	OneOf       []*JSONSchema          `json:"oneOf,omitempty"`
	Default     string                 `json:"default,omitempty"`
	Optional    bool                   `json:"optional,omitempty"`
	Examples    []interface{}          `json:"examples,omitempty"`

	// order keeps property declaration order; JSON output sorts keys anyway.
	order []string
}

// SetProperty adds or replaces a property, remembering declaration order.
func (s *JSONSchema) SetProperty(name string, prop *JSONSchema) {
	if s.Properties == nil {
		s.Properties = make(map[string]*JSONSchema)
	}
	if _, exists := s.Properties[name]; !exists {
		s.order = append(s.order, name)
	}
	s.Properties[name] = prop
}

// PropertyNames returns property names in declaration order. Properties set
// without SetProperty follow in sorted order.
func (s *JSONSchema) PropertyNames() []string {
	if s == nil || len(s.Properties) == 0 {
		return nil
	}
	names := make([]string, 0, len(s.Properties))
	seen := make(map[string]struct{}, len(s.order))
	for _, name := range s.order {
		if _, ok := s.Properties[name]; ok {
			names = append(names, name)
			seen[name] = struct{}{}
		}
	}
	var rest []string
	for name := range s.Properties {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// RefName extracts the definition name from "#/definitions/Name".
func RefName(ref string) string {
	if len(ref) > len(DefinitionsPrefix) && ref[:len(DefinitionsPrefix)] == DefinitionsPrefix {
		return ref[len(DefinitionsPrefix):]
	}
	return ""
}

// IsRefSchema reports whether the schema is a reference.
func IsRefSchema(s *JSONSchema) bool {
	return s != nil && s.Ref != ""
}

// Walk calls fn for s and every nested schema, depth first.
func Walk(s *JSONSchema, fn func(*JSONSchema)) {
	if s == nil {
		return
	}
	fn(s)
	for _, name := range s.PropertyNames() {
		Walk(s.Properties[name], fn)
	}
	Walk(s.Items, fn)
	for _, m := range s.OneOf {
		Walk(m, fn)
	}
}
