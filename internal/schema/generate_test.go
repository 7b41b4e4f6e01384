package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/griffnb/nest-swag/internal/domain"
	"github.com/griffnb/nest-swag/internal/registry"
	"github.com/griffnb/nest-swag/internal/resolver"
)

func TestGenerate_Primitives(t *testing.T) {
	tests := []struct {
		name       string
		primitive  string
		wantType   string
		wantFormat string
	}{
		{"string", resolver.PrimitiveString, STRING, ""},
		{"number", resolver.PrimitiveNumber, NUMBER, ""},
		{"boolean", resolver.PrimitiveBoolean, BOOLEAN, ""},
		{"date", resolver.PrimitiveDate, STRING, FormatDateTime},
		{"any", resolver.PrimitiveAny, OBJECT, ""},
		{"void", resolver.PrimitiveVoid, NULL, ""},
		{"null", resolver.PrimitiveNull, NULL, ""},
		{"undefined", resolver.PrimitiveUndefined, NULL, ""},
		{"object falls back to string", resolver.PrimitiveObject, STRING, ""},
		{"function falls back to string", resolver.PrimitiveFunction, STRING, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(resolver.Primitive(tt.primitive))
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantFormat, got.Format)
		})
	}
}

func TestGenerate_Union(t *testing.T) {
	t.Run("should collapse a union of primitives to its first member", func(t *testing.T) {
		got := Generate(resolver.UnionOf(resolver.Primitive("number"), resolver.Primitive("string")))
		assert.Equal(t, &JSONSchema{Type: NUMBER}, got)
	})

	t.Run("should emit oneOf for mixed unions", func(t *testing.T) {
		obj := &resolver.Type{Kind: resolver.KindObject, Name: "A"}
		got := Generate(resolver.UnionOf(obj, resolver.Primitive("null")))
		assert.Empty(t, got.Type)
		require.Len(t, got.OneOf, 2)
		assert.Equal(t, OBJECT, got.OneOf[0].Type)
		assert.Equal(t, NULL, got.OneOf[1].Type)
	})
}

func TestGenerate_Object(t *testing.T) {
	t.Run("should list only non optional properties as required", func(t *testing.T) {
		obj := &resolver.Type{
			Kind: resolver.KindObject,
			Name: "Thing",
			Properties: []resolver.Property{
				{Name: "a", Type: resolver.Primitive("string")},
				{Name: "b", Type: resolver.Primitive("number"), Optional: true},
			},
		}
		got := Generate(obj)
		assert.Equal(t, OBJECT, got.Type)
		assert.Equal(t, []string{"a"}, got.Required)
		assert.Equal(t, []string{"a", "b"}, got.PropertyNames())
		assert.True(t, got.Properties["b"].Optional)
		assert.False(t, got.Properties["a"].Optional)
	})

	t.Run("should carry descriptions and defaults", func(t *testing.T) {
		obj := &resolver.Type{
			Kind:        resolver.KindObject,
			Description: "A thing.",
			Properties: []resolver.Property{
				{Name: "size", Type: resolver.Primitive("number"), Description: "Size in cm.", Default: "10"},
			},
		}
		got := Generate(obj)
		assert.Equal(t, "A thing.", got.Description)
		assert.Equal(t, "Size in cm.", got.Properties["size"].Description)
		assert.Equal(t, "10", got.Properties["size"].Default)
	})

	t.Run("should apply the naming strategy", func(t *testing.T) {
		obj := &resolver.Type{
			Kind:       resolver.KindObject,
			Properties: []resolver.Property{{Name: "createdAt", Type: resolver.Primitive("date")}},
		}
		got := NewGenerator(SnakeCase).Generate(obj)
		assert.Contains(t, got.Properties, "created_at")
		assert.Equal(t, []string{"created_at"}, got.Required)

		got = NewGenerator(PascalCase).Generate(obj)
		assert.Contains(t, got.Properties, "CreatedAt")
	})
}

func TestGenerate_EnumUnknownRef(t *testing.T) {
	t.Run("should render enums as strings with values", func(t *testing.T) {
		enum := &resolver.Type{
			Kind: resolver.KindEnum,
			Name: "Color",
			EnumMembers: []resolver.EnumMember{
				{Name: "RED", Value: int64(0), Literal: "0"},
				{Name: "GREEN", Value: int64(1), Literal: "1"},
			},
		}
		got := Generate(enum)
		assert.Equal(t, STRING, got.Type)
		assert.Equal(t, []interface{}{int64(0), int64(1)}, got.Enum)
	})

	t.Run("should describe unknown types", func(t *testing.T) {
		got := Generate(resolver.Unknown("Frobnicator"))
		assert.Equal(t, &JSONSchema{Type: OBJECT, Description: "Unknown type: Frobnicator"}, got)
	})

	t.Run("should treat nil as unknown", func(t *testing.T) {
		assert.Equal(t, OBJECT, Generate(nil).Type)
	})

	t.Run("should point refs at definitions", func(t *testing.T) {
		got := Generate(&resolver.Type{Kind: resolver.KindRef, Name: "TreeNode", SchemaName: "tree.TreeNode"})
		assert.Equal(t, "#/definitions/tree.TreeNode", got.Ref)
		assert.Equal(t, "tree.TreeNode", RefName(got.Ref))
	})
}

func TestGenerate_Array(t *testing.T) {
	got := Generate(resolver.ArrayOf(resolver.Primitive("number")))
	assert.Equal(t, ARRAY, got.Type)
	require.NotNil(t, got.Items)
	assert.Equal(t, NUMBER, got.Items.Type)
	assert.Equal(t, []interface{}{0}, GenerateExample(got))
}

func TestGenerate_UserEndToEnd(t *testing.T) {
	idx := registry.NewService()
	require.NoError(t, idx.CollectUnit(&domain.SourceUnit{
		ID: "user.dto.ts",
		Declarations: []*domain.Declaration{{
			Name: "User",
			Kind: domain.KindInterface,
			Properties: []domain.Property{
				{Name: "id", TypeText: "number"},
				{Name: "name", TypeText: "string"},
				{Name: "email", TypeText: "string", Optional: true},
				{Name: "createdAt", TypeText: "Date"},
				{Name: "tags", TypeText: "string[]"},
			},
		}},
	}))

	user := resolver.New(idx, nil).Resolve("User", "")
	got := Generate(user)

	assert.Equal(t, OBJECT, got.Type)
	assert.Equal(t, []string{"id", "name", "createdAt", "tags"}, got.Required)
	assert.Equal(t, NUMBER, got.Properties["id"].Type)
	assert.Equal(t, STRING, got.Properties["email"].Type)
	assert.Equal(t, STRING, got.Properties["createdAt"].Type)
	assert.Equal(t, FormatDateTime, got.Properties["createdAt"].Format)
	assert.Equal(t, ARRAY, got.Properties["tags"].Type)
	assert.Equal(t, STRING, got.Properties["tags"].Items.Type)

	now := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	example := NewExamples(func() time.Time { return now }).Generate(got)
	assert.Equal(t, map[string]interface{}{
		"id":        0,
		"name":      "string",
		"createdAt": "2024-05-01T12:30:00Z",
		"tags":      []interface{}{"string"},
	}, example)
}
