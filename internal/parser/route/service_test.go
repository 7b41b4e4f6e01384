package route

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/griffnb/nest-swag/internal/domain"
	routedomain "github.com/griffnb/nest-swag/internal/parser/route/domain"
	"github.com/griffnb/nest-swag/internal/registry"
	"github.com/griffnb/nest-swag/internal/resolver"
	"github.com/griffnb/nest-swag/internal/schema"
)

func ann(name string, args ...string) domain.Annotation {
	return domain.Annotation{Name: name, Args: args}
}

func usersUnits() []*domain.SourceUnit {
	return []*domain.SourceUnit{
		{
			ID: "users/user.dto.ts",
			Declarations: []*domain.Declaration{
				{
					Name: "User",
					Kind: domain.KindInterface,
					Properties: []domain.Property{
						{Name: "id", TypeText: "string"},
						{Name: "name", TypeText: "string"},
						{Name: "age", TypeText: "number", Optional: true},
					},
				},
				{
					Name: "CreateUserDto",
					Kind: domain.KindClass,
					Properties: []domain.Property{
						{Name: "name", TypeText: "string"},
					},
				},
				{
					Name: "ListQuery",
					Kind: domain.KindClass,
					Properties: []domain.Property{
						{Name: "page", TypeText: "number"},
						{Name: "search", TypeText: "string", Optional: true},
					},
				},
			},
		},
		{
			ID: "users/users.controller.ts",
			Declarations: []*domain.Declaration{{
				Name:        "UsersController",
				Kind:        domain.KindClass,
				Annotations: []domain.Annotation{ann("Controller", "users")},
				Methods: []domain.Method{
					{
						Name:           "findAll",
						Annotations:    []domain.Annotation{ann("Get")},
						Parameters:     []domain.Parameter{{Name: "query", TypeText: "ListQuery", Annotations: []domain.Annotation{ann("Query")}}},
						ReturnTypeText: "Promise<User[]>",
						Description:    "List users.\nSupports paging.",
					},
					{
						Name:           "findOne",
						Annotations:    []domain.Annotation{ann("Get", ":id")},
						Parameters:     []domain.Parameter{{Name: "id", TypeText: "string", Annotations: []domain.Annotation{ann("Param", "id")}}},
						ReturnTypeText: "Observable<User>",
						Line:           12,
					},
					{
						Name:        "create",
						Annotations: []domain.Annotation{ann("Post")},
						Parameters: []domain.Parameter{
							{Name: "dto", TypeText: "CreateUserDto", Annotations: []domain.Annotation{ann("Body")}},
							{Name: "auth", TypeText: "string", Annotations: []domain.Annotation{ann("Headers", "authorization")}},
						},
						ReturnTypeText: "Promise<User>",
					},
					{
						Name:           "remove",
						Annotations:    []domain.Annotation{ann("Delete", ":id"), ann("HttpCode", "HttpStatus.NO_CONTENT")},
						ReturnTypeText: "Promise<void>",
					},
					{
						Name:           "helper",
						ReturnTypeText: "string",
					},
				},
			}},
		},
	}
}

func newTestService(t *testing.T, units []*domain.SourceUnit) *Service {
	t.Helper()
	idx := registry.NewService()
	for _, unit := range units {
		require.NoError(t, idx.CollectUnit(unit))
	}
	clock := func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return NewService(idx, resolver.New(idx, nil), WithExamples(schema.NewExamples(clock)))
}

func byHandler(routes []*routedomain.Route) map[string]*routedomain.Route {
	out := make(map[string]*routedomain.Route)
	for _, r := range routes {
		out[r.FunctionName] = r
	}
	return out
}

func TestExtract(t *testing.T) {
	routes, err := newTestService(t, usersUnits()).Extract()
	require.NoError(t, err)
	require.Len(t, routes, 4)
	got := byHandler(routes)

	t.Run("should keep method order and skip undecorated methods", func(t *testing.T) {
		assert.Equal(t, "findAll", routes[0].FunctionName)
		assert.Equal(t, "remove", routes[3].FunctionName)
		assert.NotContains(t, got, "helper")
	})

	t.Run("should build paths and metadata", func(t *testing.T) {
		r := got["findOne"]
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/:id", r.RawPath)
		assert.Equal(t, "/users/{id}", r.Path)
		assert.Equal(t, "UsersController", r.Controller)
		assert.Equal(t, "UsersController_findOne", r.OperationID)
		assert.Equal(t, "users/users.controller.ts", r.FilePath)
		assert.Equal(t, 12, r.LineNumber)
		assert.Equal(t, []string{"Users"}, r.Tags)

		assert.Equal(t, "/users", got["findAll"].Path)
		assert.Equal(t, "List users.", got["findAll"].Summary)
		assert.Equal(t, "Supports paging.", got["findAll"].Description)
	})

	t.Run("should apply the status catalog", func(t *testing.T) {
		assert.Equal(t, []int{200, 404}, sortedCodes(got["findOne"].Responses))
		assert.Equal(t, []int{201, 400}, sortedCodes(got["create"].Responses))
		assert.Equal(t, "Created", got["create"].Responses[201].Description)
	})

	t.Run("should honor HttpCode and void responses", func(t *testing.T) {
		r := got["remove"]
		assert.Equal(t, []int{204, 404}, sortedCodes(r.Responses))
		assert.Nil(t, r.ResponseSchema)
		assert.Nil(t, r.Responses[204].Schema)
	})

	t.Run("should unwrap deferred return types", func(t *testing.T) {
		r := got["findOne"]
		require.NotNil(t, r.ResponseSchema)
		assert.Equal(t, schema.OBJECT, r.ResponseSchema.Type)
		assert.Equal(t, []string{"id", "name"}, r.ResponseSchema.Required)
		assert.Equal(t, r.ResponseSchema, r.Responses[200].Schema)
		assert.Equal(t, map[string]interface{}{"id": "string", "name": "string"}, r.Examples.Response)

		list := got["findAll"].ResponseSchema
		assert.Equal(t, schema.ARRAY, list.Type)
	})

	t.Run("should classify parameters and take the body as request", func(t *testing.T) {
		r := got["create"]
		require.Len(t, r.Parameters, 2)
		assert.Equal(t, "dto", r.Parameters[0].Name)
		assert.Equal(t, "body", r.Parameters[0].In)
		assert.Equal(t, "authorization", r.Parameters[1].Name)
		assert.Equal(t, "header", r.Parameters[1].In)
		require.NotNil(t, r.RequestSchema)
		assert.Equal(t, []string{"name"}, r.RequestSchema.Required)
		assert.Equal(t, map[string]interface{}{"name": "string"}, r.Examples.Request)

		assert.Equal(t, "path", got["findOne"].Parameters[0].In)
		assert.True(t, got["findOne"].Parameters[0].Required)
		assert.Nil(t, got["findOne"].RequestSchema)
	})

	t.Run("should document unbound path params", func(t *testing.T) {
		r := got["remove"]
		require.Len(t, r.Parameters, 1)
		assert.Equal(t, "id", r.Parameters[0].Name)
		assert.Equal(t, "path", r.Parameters[0].In)
		assert.Equal(t, schema.STRING, r.Parameters[0].Schema.Type)
	})
}

func TestExtract_Defaults(t *testing.T) {
	units := []*domain.SourceUnit{{
		ID: "health.controller.ts",
		Declarations: []*domain.Declaration{{
			Name:        "HealthController",
			Kind:        domain.KindClass,
			Annotations: []domain.Annotation{ann("Controller")},
			Methods: []domain.Method{
				{Name: "check", Annotations: []domain.Annotation{ann("Get")}, Parameters: []domain.Parameter{{Name: "payload", TypeText: "string"}}},
				{Name: "any", Annotations: []domain.Annotation{ann("All", "ping")}},
				{Name: "hidden", Annotations: []domain.Annotation{ann("Get", "x"), ann("ApiExcludeEndpoint")}},
			},
		}},
	}}

	routes, err := newTestService(t, units).Extract()
	require.NoError(t, err)
	require.Len(t, routes, 2)

	t.Run("should default the path to slash", func(t *testing.T) {
		assert.Equal(t, "/", routes[0].Path)
		assert.Equal(t, []string{"Health"}, routes[0].Tags)
	})

	t.Run("should default unannotated parameters to the body", func(t *testing.T) {
		assert.Equal(t, "body", routes[0].Parameters[0].In)
		assert.Equal(t, schema.STRING, routes[0].RequestSchema.Type)
	})

	t.Run("should give unknown verbs a single success code", func(t *testing.T) {
		assert.Equal(t, "ALL", routes[1].Method)
		assert.Equal(t, []int{200}, sortedCodes(routes[1].Responses))
		assert.Nil(t, routes[1].ResponseSchema)
	})
}

func TestVerbAndLocation(t *testing.T) {
	assert.Equal(t, VerbGet, VerbFromAnnotation("Get"))
	assert.Equal(t, VerbUnknown, VerbFromAnnotation("Injectable"))
	assert.Equal(t, "UNKNOWN", VerbUnknown.String())
	assert.Equal(t, http.MethodPatch, VerbPatch.String())

	assert.Equal(t, LocationPath, LocationFromAnnotation("Param"))
	assert.Equal(t, LocationQuery, LocationFromAnnotation("Query"))
	assert.Equal(t, LocationHeader, LocationFromAnnotation("Headers"))
	assert.Equal(t, LocationBody, LocationFromAnnotation("Req"))
	assert.Equal(t, LocationBody, LocationFromAnnotation(""))
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"", "", "/"},
		{"users", "", "/users"},
		{"/users/", "/:id/", "/users/:id"},
		{"", "health", "/health"},
		{"api//v1", "items", "/api/v1/items"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinPath(tt.base, tt.path))
		})
	}

	assert.Equal(t, "/users/{id}/posts/{postId}", OpenAPIPath("/users/:id/posts/:postId"))
	assert.Equal(t, []string{"id", "postId"}, PathParams("/users/:id/posts/:postId"))
}

func TestUnwrapDeferred(t *testing.T) {
	assert.Equal(t, "User", UnwrapDeferred("Promise<User>"))
	assert.Equal(t, "User[]", UnwrapDeferred("Observable<Promise<User[]>>"))
	assert.Equal(t, "Map<string, User>", UnwrapDeferred("Promise<Map<string, User>>"))
	assert.Equal(t, "Promise<A> | B", UnwrapDeferred("Promise<A> | B"))
	assert.Equal(t, "Promise<A>[]", UnwrapDeferred("Promise<A>[]"))
	assert.Equal(t, "", UnwrapDeferred(""))
}

func TestHttpCode(t *testing.T) {
	code, ok := httpCode(domain.Method{Annotations: []domain.Annotation{ann("HttpCode", "202")}})
	assert.True(t, ok)
	assert.Equal(t, 202, code)

	_, ok = httpCode(domain.Method{Annotations: []domain.Annotation{ann("HttpCode", "HttpStatus.TEAPOT")}})
	assert.False(t, ok)

	_, ok = httpCode(domain.Method{})
	assert.False(t, ok)
}

func TestExtract_HttpCodeMatchesErrorCode(t *testing.T) {
	units := usersUnits()[:1]
	units = append(units, &domain.SourceUnit{
		ID: "users/legacy.controller.ts",
		Declarations: []*domain.Declaration{{
			Name:        "LegacyController",
			Kind:        domain.KindClass,
			Annotations: []domain.Annotation{ann("Controller", "legacy")},
			Methods: []domain.Method{
				{Name: "gone", ReturnTypeText: "User", Annotations: []domain.Annotation{ann("Get"), ann("HttpCode", "404")}},
				{Name: "reject", ReturnTypeText: "User", Annotations: []domain.Annotation{ann("Post"), ann("HttpCode", "400")}},
			},
		}},
	})

	routes, err := newTestService(t, units).Extract()
	require.NoError(t, err)
	byName := byHandler(routes)

	t.Run("should keep the success schema on a GET", func(t *testing.T) {
		gone := byName["gone"]
		require.NotNil(t, gone)
		assert.Equal(t, []int{404}, sortedCodes(gone.Responses))
		resp := gone.Responses[404]
		require.NotNil(t, resp.Schema)
		assert.Equal(t, schema.OBJECT, resp.Schema.Type)
		require.NotNil(t, resp.Type)
		assert.Equal(t, "User", resp.Type.Name)
	})

	t.Run("should keep the success schema on a POST", func(t *testing.T) {
		reject := byName["reject"]
		require.NotNil(t, reject)
		assert.Equal(t, []int{400}, sortedCodes(reject.Responses))
		assert.NotNil(t, reject.Responses[400].Schema)
	})
}

func sortedCodes(responses map[int]routedomain.Response) []int {
	var codes []int
	for code := range responses {
		codes = append(codes, code)
	}
	for i := 1; i < len(codes); i++ {
		for j := i; j > 0 && codes[j] < codes[j-1]; j-- {
			codes[j], codes[j-1] = codes[j-1], codes[j]
		}
	}
	return codes
}

func TestExtract_SecurityAndMimeTypes(t *testing.T) {
	units := []*domain.SourceUnit{{
		ID: "files.controller.ts",
		Declarations: []*domain.Declaration{{
			Name:        "FilesController",
			Kind:        domain.KindClass,
			Annotations: []domain.Annotation{ann("Controller", "files"), ann("ApiBearerAuth"), ann("ApiProduces", "application/json")},
			Methods: []domain.Method{
				{
					Name: "upload",
					Annotations: []domain.Annotation{
						ann("Post"),
						ann("ApiConsumes", "multipart/form-data"),
						ann("ApiOAuth2", "['files:write']"),
						ann("ApiBearerAuth"),
					},
				},
				{Name: "list", Annotations: []domain.Annotation{ann("Get"), ann("ApiConsumes", "not a mime")}},
			},
		}},
	}}

	routes, err := newTestService(t, units).Extract()
	require.NoError(t, err)
	require.Len(t, routes, 2)

	t.Run("should merge controller and method security", func(t *testing.T) {
		assert.Equal(t, []routedomain.Security{
			{Scheme: "bearer", Kind: "bearer"},
			{Scheme: "oauth2", Kind: "oauth2", Scopes: []string{"files:write"}},
		}, routes[0].Security)
	})

	t.Run("should prefer method mime types", func(t *testing.T) {
		assert.Equal(t, []string{"multipart/form-data"}, routes[0].Consumes)
		assert.Equal(t, []string{"application/json"}, routes[0].Produces)
	})

	t.Run("should drop invalid mime types", func(t *testing.T) {
		assert.Nil(t, routes[1].Consumes)
		assert.Equal(t, []string{"application/json"}, routes[1].Produces)
	})

	t.Run("should carry security into the operation", func(t *testing.T) {
		op := RouteToSpecOperation(routes[0])
		assert.Equal(t, []map[string][]string{
			{"bearer": {}},
			{"oauth2": {"files:write"}},
		}, op.Security)
		assert.Equal(t, []string{"multipart/form-data"}, op.Consumes)
	})
}
