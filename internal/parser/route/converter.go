package route

import (
	"github.com/go-openapi/spec"

	"github.com/griffnb/nest-swag/internal/parser/route/domain"
	"github.com/griffnb/nest-swag/internal/resolver"
	"github.com/griffnb/nest-swag/internal/schema"
)

// RouteToSpecOperation converts a domain.Route to a spec.Operation
func RouteToSpecOperation(route *domain.Route) *spec.Operation {
	if route == nil {
		return nil
	}

	operation := &spec.Operation{
		OperationProps: spec.OperationProps{
			ID:          route.OperationID,
			Summary:     route.Summary,
			Description: route.Description,
			Tags:        route.Tags,
			Deprecated:  route.Deprecated,
		},
		VendorExtensible: spec.VendorExtensible{
			Extensions: make(spec.Extensions),
		},
	}
	operation.AddExtension("x-handler", route.Controller+"."+route.FunctionName)
	if route.FilePath != "" {
		operation.AddExtension("x-path", route.FilePath)
	}
	if route.LineNumber > 0 {
		operation.AddExtension("x-line", route.LineNumber)
	}

	bodySeen := false
	for _, param := range route.Parameters {
		if param.In == string(LocationBody) {
			// Swagger 2 allows a single body parameter per operation.
			if bodySeen {
				continue
			}
			bodySeen = true
			operation.Consumes = []string{"application/json"}
		}
		operation.Parameters = append(operation.Parameters, ParameterToSpec(param)...)
	}

	responses := &spec.Responses{
		VendorExtensible: spec.VendorExtensible{
			Extensions: make(spec.Extensions),
		},
		ResponsesProps: spec.ResponsesProps{
			StatusCodeResponses: make(map[int]spec.Response),
		},
	}

	for code, resp := range route.Responses {
		specResp := ResponseToSpec(resp)
		if specResp.Schema != nil {
			operation.Produces = []string{"application/json"}
			if route.Examples.Response != nil {
				specResp.Examples = map[string]interface{}{"application/json": route.Examples.Response}
			}
		}
		responses.StatusCodeResponses[code] = specResp
	}

	operation.Responses = responses

	if len(route.Consumes) > 0 {
		operation.Consumes = route.Consumes
	}
	if len(route.Produces) > 0 {
		operation.Produces = route.Produces
	}
	for _, sec := range route.Security {
		scopes := sec.Scopes
		if scopes == nil {
			scopes = []string{}
		}
		operation.Security = append(operation.Security, map[string][]string{sec.Scheme: scopes})
	}

	return operation
}

// ParameterToSpec converts a domain.Parameter to spec parameters. A body
// parameter keeps its schema; a non-body parameter bound to an object is
// expanded into one parameter per property.
func ParameterToSpec(param domain.Parameter) []spec.Parameter {
	if param.In == string(LocationBody) {
		return []spec.Parameter{{
			ParamProps: spec.ParamProps{
				Name:        param.Name,
				In:          param.In,
				Required:    param.Required,
				Description: param.Description,
				Schema:      SchemaToSpec(param.Type, param.Schema),
			},
		}}
	}

	s := param.Schema
	if s != nil && s.Type == schema.OBJECT && len(s.Properties) > 0 {
		required := make(map[string]bool, len(s.Required))
		for _, name := range s.Required {
			required[name] = true
		}
		var params []spec.Parameter
		for _, name := range s.PropertyNames() {
			prop := domain.Parameter{
				Name:     name,
				In:       param.In,
				Required: required[name] || param.In == string(LocationPath),
				Schema:   s.Properties[name],
			}
			prop.Description = prop.Schema.Description
			params = append(params, simpleParameter(prop))
		}
		return params
	}

	return []spec.Parameter{simpleParameter(param)}
}

func simpleParameter(param domain.Parameter) spec.Parameter {
	specParam := spec.Parameter{
		ParamProps: spec.ParamProps{
			Name:        param.Name,
			In:          param.In,
			Required:    param.Required,
			Description: param.Description,
		},
	}

	s := param.Schema
	if s == nil {
		specParam.Type = schema.STRING
		return specParam
	}
	if len(s.OneOf) > 0 {
		s = s.OneOf[0]
	}

	specParam.Type = s.Type
	specParam.Format = s.Format
	if s.Type == "" || s.Type == schema.OBJECT || s.Type == schema.NULL {
		specParam.Type = schema.STRING
	}
	if s.Items != nil {
		itemType := s.Items.Type
		if itemType == "" || itemType == schema.OBJECT || itemType == schema.NULL {
			itemType = schema.STRING
		}
		specParam.Items = &spec.Items{
			SimpleSchema: spec.SimpleSchema{
				Type:   itemType,
				Format: s.Items.Format,
			},
		}
		if len(s.Items.Enum) > 0 {
			specParam.Items.Enum = s.Items.Enum
		}
		specParam.CollectionFormat = "multi"
	}
	if s.Default != "" {
		specParam.Default = s.Default
	}
	if len(s.Enum) > 0 {
		specParam.Enum = s.Enum
	}
	if param.Description == "" {
		specParam.Description = s.Description
	}

	return specParam
}

// ResponseToSpec converts a domain.Response to spec.Response
func ResponseToSpec(resp domain.Response) spec.Response {
	return spec.Response{
		ResponseProps: spec.ResponseProps{
			Description: resp.Description,
			Schema:      SchemaToSpec(resp.Type, resp.Schema),
		},
		VendorExtensible: spec.VendorExtensible{
			Extensions: make(spec.Extensions),
		},
	}
}

// SchemaToSpec converts a route schema. Named declarations, and arrays of
// them, point at the definitions catalog instead of being inlined.
func SchemaToSpec(t *resolver.Type, s *schema.JSONSchema) *spec.Schema {
	if s == nil {
		return nil
	}
	if name := definitionName(t); name != "" {
		return schema.RefSchema(name)
	}
	if t != nil && t.Kind == resolver.KindArray {
		if name := definitionName(t.Element); name != "" {
			return spec.ArrayProperty(schema.RefSchema(name))
		}
	}
	return schema.ToSpec(s)
}

func definitionName(t *resolver.Type) string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case resolver.KindObject, resolver.KindEnum:
		if t.ObjectKind == resolver.ObjectInline {
			return ""
		}
		return t.SchemaName
	case resolver.KindRef:
		return t.SchemaName
	}
	return ""
}
