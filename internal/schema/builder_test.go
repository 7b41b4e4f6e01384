package schema

import (
	"testing"
	"time"

	"github.com/go-openapi/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/griffnb/nest-swag/internal/resolver"
)

func TestBuilderService(t *testing.T) {
	t.Run("should add and get definitions", func(t *testing.T) {
		b := NewBuilder()
		require.NoError(t, b.AddDefinition("User", &JSONSchema{Type: OBJECT}))

		got, ok := b.GetDefinition("User")
		require.True(t, ok)
		assert.Equal(t, OBJECT, got.Type)

		_, ok = b.GetDefinition("Missing")
		assert.False(t, ok)
	})

	t.Run("should reject empty and duplicate names", func(t *testing.T) {
		b := NewBuilder()
		assert.Error(t, b.AddDefinition("", &JSONSchema{}))
		require.NoError(t, b.AddDefinition("User", &JSONSchema{}))
		assert.Error(t, b.AddDefinition("User", &JSONSchema{}))
	})

	t.Run("should build schemas with examples", func(t *testing.T) {
		b := NewBuilder()
		b.SetClock(func() time.Time { return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC) })
		obj := &resolver.Type{
			Kind:       resolver.KindObject,
			Name:       "Event",
			Properties: []resolver.Property{{Name: "at", Type: resolver.Primitive("date")}},
		}
		s, err := b.BuildSchema("Event", obj)
		require.NoError(t, err)
		require.Len(t, s.Examples, 1)
		assert.Equal(t, map[string]interface{}{"at": "2020-01-01T00:00:00Z"}, s.Examples[0])
		assert.Equal(t, []string{"Event"}, b.Names())
	})

	t.Run("should report dangling references", func(t *testing.T) {
		b := NewBuilder()
		s := &JSONSchema{Type: OBJECT}
		s.SetProperty("parent", &JSONSchema{Type: OBJECT, Ref: "#/definitions/Node"})
		s.SetProperty("other", &JSONSchema{Type: ARRAY, Items: &JSONSchema{Ref: "#/definitions/Missing"}})
		require.NoError(t, b.AddDefinition("Node", s))
		assert.Equal(t, []string{"Missing"}, b.MissingReferences())
	})
}

func TestToSpec(t *testing.T) {
	t.Run("should convert nested schemas", func(t *testing.T) {
		s := &JSONSchema{Type: OBJECT, Required: []string{"id"}, Description: "User"}
		s.SetProperty("id", &JSONSchema{Type: NUMBER})
		s.SetProperty("tags", &JSONSchema{Type: ARRAY, Items: &JSONSchema{Type: STRING}, Optional: true})
		s.SetProperty("role", &JSONSchema{Type: STRING, Enum: []interface{}{"admin"}, Default: "admin"})
		s.Examples = []interface{}{map[string]interface{}{"id": 0}}

		got := ToSpec(s)
		require.NotNil(t, got)
		assert.Equal(t, spec.StringOrArray{"object"}, got.Type)
		assert.Equal(t, []string{"id"}, got.Required)
		assert.Equal(t, "User", got.Description)
		assert.Equal(t, spec.StringOrArray{"array"}, got.Properties["tags"].Type)
		assert.Equal(t, spec.StringOrArray{"string"}, got.Properties["tags"].Items.Schema.Type)
		assert.Equal(t, true, got.Properties["tags"].Extensions["x-optional"])
		assert.Equal(t, []interface{}{"admin"}, got.Properties["role"].Enum)
		assert.Equal(t, "admin", got.Properties["role"].Default)
		assert.Equal(t, map[string]interface{}{"id": 0}, got.Example)
	})

	t.Run("should reduce refs to the reference", func(t *testing.T) {
		got := ToSpec(&JSONSchema{Type: OBJECT, Ref: "#/definitions/User"})
		assert.Equal(t, "#/definitions/User", got.Ref.String())
		assert.Empty(t, got.Type)
	})

	t.Run("should keep oneOf", func(t *testing.T) {
		got := ToSpec(&JSONSchema{OneOf: []*JSONSchema{{Type: STRING}, {Type: NULL}}})
		assert.Len(t, got.OneOf, 2)
	})

	t.Run("should return nil for nil", func(t *testing.T) {
		assert.Nil(t, ToSpec(nil))
	})
}

func TestRemoveUnusedDefinitions(t *testing.T) {
	swagger := &spec.Swagger{
		SwaggerProps: spec.SwaggerProps{
			Definitions: spec.Definitions{
				"User": {SchemaProps: spec.SchemaProps{
					Type:       []string{"object"},
					Properties: map[string]spec.Schema{"address": *RefSchema("Address")},
				}},
				"Address":     {SchemaProps: spec.SchemaProps{Type: []string{"object"}}},
				"UnusedModel": {SchemaProps: spec.SchemaProps{Type: []string{"object"}}},
			},
			Paths: &spec.Paths{Paths: map[string]spec.PathItem{
				"/users": {PathItemProps: spec.PathItemProps{Get: &spec.Operation{OperationProps: spec.OperationProps{
					Responses: &spec.Responses{ResponsesProps: spec.ResponsesProps{
						StatusCodeResponses: map[int]spec.Response{
							200: {ResponseProps: spec.ResponseProps{Schema: RefSchema("User")}},
						},
					}},
				}}}},
			}},
		},
	}

	RemoveUnusedDefinitions(swagger)

	assert.Contains(t, swagger.Definitions, "User")
	assert.Contains(t, swagger.Definitions, "Address")
	assert.NotContains(t, swagger.Definitions, "UnusedModel")
}
