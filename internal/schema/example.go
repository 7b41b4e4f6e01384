package schema

import (
	"time"
)

// Examples builds representative values for schemas.
type Examples struct {
	now func() time.Time
}

// NewExamples creates an example builder. A nil clock uses time.Now.
func NewExamples(now func() time.Time) *Examples {
	if now == nil {
		now = time.Now
	}
	return &Examples{now: now}
}

var defaultExamples = NewExamples(nil)

// ExamplePair holds the request and response examples of an entry point.
type ExamplePair struct {
	Request  interface{} `json:"request,omitempty"`
	Response interface{} `json:"response,omitempty"`
}

// GenerateExample builds an example value using the wall clock.
func GenerateExample(s *JSONSchema) interface{} {
	return defaultExamples.Generate(s)
}

// GenerateExamples builds request and response examples independently.
func GenerateExamples(request, response *JSONSchema) ExamplePair {
	return defaultExamples.Pair(request, response)
}

// Pair builds request and response examples independently; a nil schema
// gives a nil example.
func (e *Examples) Pair(request, response *JSONSchema) ExamplePair {
	return ExamplePair{
		Request:  e.Generate(request),
		Response: e.Generate(response),
	}
}

// Generate builds an example value. Objects only carry their required
// properties; anything without a recognised type is nil.
func (e *Examples) Generate(s *JSONSchema) interface{} {
	if s == nil {
		return nil
	}

	switch s.Type {
	case STRING:
		if len(s.Enum) > 0 {
			return s.Enum[0]
		}
		if s.Format == FormatDateTime {
			return e.now().UTC().Format(time.RFC3339)
		}
		return "string"
	case NUMBER:
		return 0
	case BOOLEAN:
		return true
	case ARRAY:
		if s.Items == nil {
			return []interface{}{}
		}
		return []interface{}{e.Generate(s.Items)}
	case OBJECT:
		obj := make(map[string]interface{}, len(s.Required))
		for _, name := range s.Required {
			obj[name] = e.Generate(s.Properties[name])
		}
		return obj
	case "":
		if len(s.OneOf) > 0 {
			return e.Generate(s.OneOf[0])
		}
	}
	return nil
}
