package route

import (
	"testing"

	"github.com/go-openapi/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/griffnb/nest-swag/internal/parser/route/domain"
	"github.com/griffnb/nest-swag/internal/resolver"
	"github.com/griffnb/nest-swag/internal/schema"
)

func TestRegisterRoutes(t *testing.T) {
	t.Run("registers extracted routes", func(t *testing.T) {
		service := newTestService(t, usersUnits())
		routes, err := service.Extract()
		require.NoError(t, err)

		swagger := &spec.Swagger{}
		require.NoError(t, service.RegisterRoutes(swagger, routes, true))

		require.Contains(t, swagger.Paths.Paths, "/users")
		require.Contains(t, swagger.Paths.Paths, "/users/{id}")

		users := swagger.Paths.Paths["/users"]
		require.NotNil(t, users.Get)
		require.NotNil(t, users.Post)
		assert.Equal(t, "UsersController_findAll", users.Get.ID)

		list := users.Get.Responses.StatusCodeResponses[200].Schema
		require.NotNil(t, list)
		assert.Equal(t, spec.StringOrArray{"array"}, list.Type)
		assert.Equal(t, "#/definitions/User", list.Items.Schema.Ref.String())

		item := swagger.Paths.Paths["/users/{id}"]
		require.NotNil(t, item.Get)
		require.NotNil(t, item.Delete)
		assert.Equal(t, "#/definitions/User", item.Get.Responses.StatusCodeResponses[200].Schema.Ref.String())
		assert.Contains(t, item.Delete.Responses.StatusCodeResponses, 204)
	})

	t.Run("expands object query parameters", func(t *testing.T) {
		service := newTestService(t, usersUnits())
		routes, err := service.Extract()
		require.NoError(t, err)

		swagger := &spec.Swagger{}
		require.NoError(t, service.RegisterRoutes(swagger, routes, false))

		params := swagger.Paths.Paths["/users"].Get.Parameters
		require.Len(t, params, 2)
		assert.Equal(t, "page", params[0].Name)
		assert.Equal(t, "query", params[0].In)
		assert.Equal(t, "number", params[0].Type)
		assert.True(t, params[0].Required)
		assert.Equal(t, "search", params[1].Name)
		assert.False(t, params[1].Required)
	})

	t.Run("references the body definition", func(t *testing.T) {
		service := newTestService(t, usersUnits())
		routes, err := service.Extract()
		require.NoError(t, err)

		swagger := &spec.Swagger{}
		require.NoError(t, service.RegisterRoutes(swagger, routes, false))

		post := swagger.Paths.Paths["/users"].Post
		require.Len(t, post.Parameters, 2)
		assert.Equal(t, "body", post.Parameters[0].In)
		assert.Equal(t, "#/definitions/CreateUserDto", post.Parameters[0].Schema.Ref.String())
		assert.Equal(t, "header", post.Parameters[1].In)
		assert.Equal(t, "string", post.Parameters[1].Type)
		assert.Equal(t, []string{"application/json"}, post.Consumes)
	})

	t.Run("detects duplicate routes", func(t *testing.T) {
		service := NewService(nil, nil)
		routes := []*domain.Route{
			{Method: "GET", Path: "/users", OperationID: "a"},
			{Method: "GET", Path: "/users", OperationID: "b"},
		}

		err := service.RegisterRoutes(&spec.Swagger{}, routes, true)
		assert.Error(t, err)

		swagger := &spec.Swagger{}
		require.NoError(t, service.RegisterRoutes(swagger, routes, false))
		assert.Equal(t, "a", swagger.Paths.Paths["/users"].Get.ID)
	})

	t.Run("registers ALL under every method", func(t *testing.T) {
		service := NewService(nil, nil)
		swagger := &spec.Swagger{}
		require.NoError(t, service.RegisterRoutes(swagger, []*domain.Route{{Method: "ALL", Path: "/ping", OperationID: "ping"}}, true))

		item := swagger.Paths.Paths["/ping"]
		require.NotNil(t, item.Get)
		require.NotNil(t, item.Head)
		assert.Equal(t, "ping_post", item.Post.ID)
	})

	t.Run("rejects invalid methods", func(t *testing.T) {
		service := NewService(nil, nil)
		err := service.RegisterRoutes(&spec.Swagger{}, []*domain.Route{{Method: "TRACE", Path: "/x"}}, false)
		assert.Error(t, err)
	})
}

func TestFilterValidPathParameters(t *testing.T) {
	params := []spec.Parameter{
		{ParamProps: spec.ParamProps{Name: "id", In: "path"}},
		{ParamProps: spec.ParamProps{Name: "params", In: "path"}},
		{ParamProps: spec.ParamProps{Name: "q", In: "query"}},
	}
	got := filterValidPathParameters(params, "/users/{id}")
	require.Len(t, got, 2)
	assert.Equal(t, "id", got[0].Name)
	assert.Equal(t, "q", got[1].Name)
}

func TestSchemaToSpec(t *testing.T) {
	t.Run("inlines inline objects", func(t *testing.T) {
		inline := &resolver.Type{Kind: resolver.KindObject, ObjectKind: resolver.ObjectInline, SchemaName: "X"}
		got := SchemaToSpec(inline, &schema.JSONSchema{Type: schema.OBJECT})
		assert.Equal(t, spec.StringOrArray{"object"}, got.Type)
		assert.Empty(t, got.Ref.String())
	})

	t.Run("references enums and refs", func(t *testing.T) {
		enum := &resolver.Type{Kind: resolver.KindEnum, SchemaName: "Role"}
		assert.Equal(t, "#/definitions/Role", SchemaToSpec(enum, &schema.JSONSchema{}).Ref.String())

		ref := &resolver.Type{Kind: resolver.KindRef, SchemaName: "tree.Node"}
		assert.Equal(t, "#/definitions/tree.Node", SchemaToSpec(ref, &schema.JSONSchema{}).Ref.String())
	})

	t.Run("returns nil without a schema", func(t *testing.T) {
		assert.Nil(t, SchemaToSpec(nil, nil))
	})
}
