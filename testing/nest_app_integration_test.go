package testing_test

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-openapi/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/griffnb/nest-swag/internal/gen"
	routedomain "github.com/griffnb/nest-swag/internal/parser/route/domain"
)

func TestNestAppIntegration(t *testing.T) {
	searchDir := "testdata/nest_app/src"
	outputDir := t.TempDir()

	doc, err := gen.New().Build(context.Background(), &gen.Config{
		Debugger:        log.New(io.Discard, "", log.LstdFlags),
		SearchDir:       searchDir,
		GeneralInfoFile: filepath.Join(searchDir, "main.ts"),
		OutputDir:       outputDir,
		OutputTypes:     []string{"json", "docs"},
		Clock:           func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) },
	})
	require.NoError(t, err, "Failed to build docs")

	t.Logf("Total definitions generated: %d", len(doc.Swagger.Definitions))
	for name := range doc.Swagger.Definitions {
		t.Logf("  - %s", name)
	}

	t.Run("General info comes from the bootstrap file", func(t *testing.T) {
		info := doc.Swagger.Info
		assert.Equal(t, "Shop API", info.Title)
		assert.Equal(t, "Orders and customers", info.Description)
		assert.Equal(t, "2.1.0", info.Version)
		assert.Equal(t, "/api", doc.Swagger.BasePath)
		require.Len(t, doc.Swagger.Tags, 1)
		assert.Equal(t, "orders", doc.Swagger.Tags[0].Name)
		assert.Contains(t, doc.Swagger.SecurityDefinitions, "bearer")
	})

	t.Run("Data declarations become definitions", func(t *testing.T) {
		for _, name := range []string{"Order", "OrderStatus", "LineItem", "Customer", "CreateOrderDto"} {
			assert.Contains(t, doc.Swagger.Definitions, name, "%s definition should exist", name)
		}
		for _, name := range []string{"OrdersController", "OrdersService", "AppModule"} {
			assert.NotContains(t, doc.Swagger.Definitions, name, "%s is framework wiring", name)
		}
	})

	t.Run("Order schema is resolved across files", func(t *testing.T) {
		order := doc.Schemas["Order"]
		require.NotNil(t, order)
		assert.Equal(t, "A placed order.", order.Description)
		assert.Equal(t, []string{"id", "status", "items", "customer"}, order.Required)

		assert.Equal(t, []interface{}{"pending", "paid"}, order.Properties["status"].Enum)
		assert.Equal(t, "#/definitions/Order", order.Properties["parent"].Ref)

		customer := order.Properties["customer"]
		require.NotNil(t, customer)
		assert.Equal(t, "#/definitions/Customer", customer.Ref)
		assert.Contains(t, doc.Schemas["Customer"].Properties, "email")

		items := order.Properties["items"]
		require.NotNil(t, items.Items)
		assert.Equal(t, "#/definitions/LineItem", items.Items.Ref)
		assert.Equal(t, []string{"sku", "quantity"}, doc.Schemas["LineItem"].Required)
	})

	t.Run("Controller methods become operations", func(t *testing.T) {
		require.Len(t, doc.Endpoints, 4)
		assert.Equal(t, 4, doc.Stats.Endpoints)

		orders := doc.Swagger.Paths.Paths["/orders"]
		require.NotNil(t, orders.Get, "GET /orders should exist")
		require.NotNil(t, orders.Post, "POST /orders should exist")
		assert.Equal(t, "Lists orders.", orders.Get.Summary)
		assert.Equal(t, "#/definitions/Order", orders.Get.Responses.StatusCodeResponses[200].Schema.Items.Schema.Ref.String())

		create := orders.Post
		assert.Equal(t, "Places an order.", create.Summary)
		assert.Equal(t, "The order starts out pending.", create.Description)
		assert.Equal(t, "#/definitions/CreateOrderDto", create.Parameters[0].Schema.Ref.String())
		assert.Contains(t, create.Responses.StatusCodeResponses, 201)

		byID := doc.Swagger.Paths.Paths["/orders/{id}"]
		require.NotNil(t, byID.Get)
		require.NotNil(t, byID.Delete)
		assert.Equal(t, []string{"orders"}, byID.Get.Tags)
		assert.Equal(t, []map[string][]string{{"bearer": {}}}, byID.Get.Security)
		assert.Contains(t, byID.Delete.Responses.StatusCodeResponses, 204)
		assert.Nil(t, byID.Delete.Responses.StatusCodeResponses[204].Schema)
	})

	t.Run("Every reference has a definition", func(t *testing.T) {
		assert.Empty(t, doc.Stats.Missing)
	})

	t.Run("Written files match the run", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(outputDir, "swagger.json"))
		require.NoError(t, err)
		var written spec.Swagger
		require.NoError(t, json.Unmarshal(data, &written))
		assert.Equal(t, "Shop API", written.Info.Title)
		assert.Len(t, written.Paths.Paths, 2)

		data, err = os.ReadFile(filepath.Join(outputDir, "endpoints.json"))
		require.NoError(t, err)
		var run struct {
			RunID     string               `json:"runId"`
			Endpoints []*routedomain.Route `json:"endpoints"`
		}
		require.NoError(t, json.Unmarshal(data, &run))
		assert.Equal(t, doc.RunID, run.RunID)
		require.Len(t, run.Endpoints, 4)
		assert.Equal(t, "OrdersController_list", run.Endpoints[0].OperationID)
	})
}
