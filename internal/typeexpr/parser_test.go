package typeexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "User", "User"},
		{"collapses whitespace", "  string  |\n  number ", "string | number"},
		{"strips generics", "Paginated<User>", "Paginated"},
		{"strips nested generics", "Map<string, Array<User>>", "Map"},
		{"array wrapper", "Array<User>", "User[]"},
		{"array wrapper with union", "Array<string | number>", "(string | number)[]"},
		{"readonly array wrapper", "ReadonlyArray<User>", "User[]"},
		{"nested array wrapper", "Array<Array<number>>", "number[][]"},
		{"unclosed generic", "Foo<Bar", "Foo"},
		{"readonly prefix", "readonly string[]", "string[]"},
		{"keeps arrow", "(x: number) => void", "(x: number) => void"},
		{"identifier suffix is not a wrapper", "MyArray<User>", "MyArray"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("should parse a bare name", func(t *testing.T) {
		n := Parse("User")
		assert.Equal(t, KindName, n.Kind)
		assert.Equal(t, "User", n.Name)
	})

	t.Run("should parse array suffix", func(t *testing.T) {
		n := Parse("User[]")
		require.Equal(t, KindArray, n.Kind)
		assert.Equal(t, "User", n.Elem.Name)
	})

	t.Run("should parse nested arrays", func(t *testing.T) {
		n := Parse("number[][]")
		require.Equal(t, KindArray, n.Kind)
		require.Equal(t, KindArray, n.Elem.Kind)
		assert.Equal(t, "number", n.Elem.Elem.Name)
	})

	t.Run("should bind array tighter than union", func(t *testing.T) {
		n := Parse("string | number[]")
		require.Equal(t, KindUnion, n.Kind)
		require.Len(t, n.Members, 2)
		assert.Equal(t, KindName, n.Members[0].Kind)
		assert.Equal(t, KindArray, n.Members[1].Kind)
	})

	t.Run("should keep union member order", func(t *testing.T) {
		n := Parse("number | string | boolean")
		require.Equal(t, KindUnion, n.Kind)
		assert.Equal(t, "number", n.Members[0].Name)
		assert.Equal(t, "string", n.Members[1].Name)
		assert.Equal(t, "boolean", n.Members[2].Name)
	})

	t.Run("should parse parenthesized union array", func(t *testing.T) {
		n := Parse("(A | B)[]")
		require.Equal(t, KindArray, n.Kind)
		assert.Equal(t, KindUnion, n.Elem.Kind)
		assert.Equal(t, "(A | B)[]", n.String())
	})

	t.Run("should accept a leading pipe", func(t *testing.T) {
		n := Parse("| 'a' | 'b'")
		require.Equal(t, KindUnion, n.Kind)
		assert.Len(t, n.Members, 2)
		assert.Equal(t, "string", n.Members[0].LiteralFamily())
	})

	t.Run("should parse literal types", func(t *testing.T) {
		assert.Equal(t, "string", Parse("'admin'").LiteralFamily())
		assert.Equal(t, "number", Parse("42").LiteralFamily())
		assert.Equal(t, "number", Parse("-1.5").LiteralFamily())
		assert.Equal(t, "boolean", Parse("true").LiteralFamily())
	})

	t.Run("should parse inline object types", func(t *testing.T) {
		n := Parse("{ id: number; name?: string, tags: string[] }")
		require.Equal(t, KindObject, n.Kind)
		require.Len(t, n.Fields, 3)
		assert.Equal(t, "id", n.Fields[0].Name)
		assert.False(t, n.Fields[0].Optional)
		assert.True(t, n.Fields[1].Optional)
		assert.Equal(t, KindArray, n.Fields[2].Type.Kind)
		assert.Equal(t, "{ id: number; name?: string; tags: string[] }", n.String())
	})

	t.Run("should skip index signatures in objects", func(t *testing.T) {
		n := Parse("{ [key: string]: number; id: string }")
		require.Equal(t, KindObject, n.Kind)
		require.Len(t, n.Fields, 1)
		assert.Equal(t, "id", n.Fields[0].Name)
	})

	t.Run("should parse tuples", func(t *testing.T) {
		n := Parse("[string, number]")
		require.Equal(t, KindTuple, n.Kind)
		assert.Len(t, n.Members, 2)
		assert.Equal(t, "[string, number]", n.String())
	})

	t.Run("should parse function types", func(t *testing.T) {
		n := Parse("(a: string, b: number) => Promise<void>")
		assert.Equal(t, KindFunction, n.Kind)
	})

	t.Run("should parse intersections", func(t *testing.T) {
		n := Parse("A & B")
		require.Equal(t, KindIntersection, n.Kind)
		assert.Len(t, n.Members, 2)
	})

	t.Run("should reduce keyof to string", func(t *testing.T) {
		n := Parse("keyof User")
		assert.Equal(t, KindName, n.Kind)
		assert.Equal(t, "string", n.Name)
	})

	t.Run("should fall back to a name for malformed text", func(t *testing.T) {
		n := Parse("User[")
		assert.Equal(t, KindName, n.Kind)
		assert.Equal(t, "User[", n.Name)

		n = Parse("{ id: number")
		assert.Equal(t, KindName, n.Kind)
	})

	t.Run("should handle empty input", func(t *testing.T) {
		n := Parse("   ")
		assert.Equal(t, KindName, n.Kind)
		assert.Equal(t, "", n.Name)
	})

	t.Run("should render the same canonical text for equivalent input", func(t *testing.T) {
		assert.Equal(t, Parse("string|number[]").String(), Parse("string  |  number []").String())
		assert.Equal(t, Parse("Array<User>").String(), Parse("User[]").String())
	})
}
