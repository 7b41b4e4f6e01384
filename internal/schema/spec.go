package schema

import (
	"github.com/go-openapi/spec"
)

// RefSchema builds a reference schema.
func RefSchema(refType string) *spec.Schema {
	return spec.RefSchema(DefinitionsPrefix + refType)
}

// ToSpec converts a JSONSchema into an OpenAPI schema. Optional properties
// carry an x-optional extension; references drop their sibling fields.
func ToSpec(s *JSONSchema) *spec.Schema {
	if s == nil {
		return nil
	}
	if name := RefName(s.Ref); name != "" {
		return RefSchema(name)
	}

	out := &spec.Schema{
		SchemaProps: spec.SchemaProps{
			Format:      s.Format,
			Description: s.Description,
			Required:    s.Required,
		},
	}
	if s.Type != "" {
		out.Type = spec.StringOrArray{s.Type}
	}
	if s.Default != "" {
		out.Default = s.Default
	}
	if len(s.Enum) > 0 {
		out.Enum = append([]interface{}{}, s.Enum...)
	}
	if s.Items != nil {
		out.Items = &spec.SchemaOrArray{Schema: ToSpec(s.Items)}
	}
	if len(s.Properties) > 0 {
		out.Properties = make(spec.SchemaProperties, len(s.Properties))
		for name, prop := range s.Properties {
			if converted := ToSpec(prop); converted != nil {
				out.Properties[name] = *converted
			}
		}
	}
	for _, m := range s.OneOf {
		if converted := ToSpec(m); converted != nil {
			out.OneOf = append(out.OneOf, *converted)
		}
	}
	if len(s.Examples) > 0 {
		out.Example = s.Examples[0]
	}
	if s.Optional {
		out.AddExtension("x-optional", true)
	}
	return out
}
