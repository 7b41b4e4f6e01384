package schema

import (
	"github.com/go-openapi/spec"
)

// RemoveUnusedDefinitions drops definitions no operation reaches, directly or
// through other definitions.
func RemoveUnusedDefinitions(swagger *spec.Swagger) {
	if swagger == nil || len(swagger.Definitions) == 0 {
		return
	}

	used := make(map[string]struct{})
	var queue []string
	mark := func(s *spec.Schema) {
		walkSpec(s, func(node *spec.Schema) {
			name := RefName(node.Ref.String())
			if name == "" {
				return
			}
			if _, seen := used[name]; !seen {
				used[name] = struct{}{}
				queue = append(queue, name)
			}
		})
	}

	if swagger.Paths != nil {
		for _, item := range swagger.Paths.Paths {
			for _, op := range operations(item) {
				for i := range op.Parameters {
					mark(op.Parameters[i].Schema)
				}
				if op.Responses == nil {
					continue
				}
				if op.Responses.Default != nil {
					mark(op.Responses.Default.Schema)
				}
				for _, resp := range op.Responses.StatusCodeResponses {
					mark(resp.Schema)
				}
			}
		}
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if def, ok := swagger.Definitions[name]; ok {
			mark(&def)
		}
	}

	for name := range swagger.Definitions {
		if _, ok := used[name]; !ok {
			delete(swagger.Definitions, name)
		}
	}
}

func operations(item spec.PathItem) []*spec.Operation {
	var ops []*spec.Operation
	for _, op := range []*spec.Operation{item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch} {
		if op != nil {
			ops = append(ops, op)
		}
	}
	return ops
}

func walkSpec(s *spec.Schema, fn func(*spec.Schema)) {
	if s == nil {
		return
	}
	fn(s)
	for name := range s.Properties {
		prop := s.Properties[name]
		walkSpec(&prop, fn)
	}
	if s.Items != nil {
		walkSpec(s.Items.Schema, fn)
		for i := range s.Items.Schemas {
			walkSpec(&s.Items.Schemas[i], fn)
		}
	}
	for i := range s.OneOf {
		walkSpec(&s.OneOf[i], fn)
	}
	for i := range s.AllOf {
		walkSpec(&s.AllOf[i], fn)
	}
	if s.AdditionalProperties != nil {
		walkSpec(s.AdditionalProperties.Schema, fn)
	}
}
