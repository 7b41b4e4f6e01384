package route

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-openapi/spec"

	"github.com/griffnb/nest-swag/internal/console"
	"github.com/griffnb/nest-swag/internal/parser/route/domain"
)

// allMethods are the operations an @All() handler is registered under.
var allMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
	http.MethodDelete, http.MethodOptions, http.MethodHead,
}

// RegisterRoutes registers routes to swagger.Paths
// strict controls whether to error on duplicate routes
func (s *Service) RegisterRoutes(swagger *spec.Swagger, routes []*domain.Route, strict bool) error {
	if swagger.Paths == nil {
		swagger.Paths = &spec.Paths{
			Paths: make(map[string]spec.PathItem),
		}
	}
	if swagger.Paths.Paths == nil {
		swagger.Paths.Paths = make(map[string]spec.PathItem)
	}

	for _, route := range routes {
		methods := []string{route.Method}
		if route.Method == VerbAll.HTTPMethod() {
			methods = allMethods
		}
		for _, method := range methods {
			if err := s.registerRoute(swagger, route, method, strict); err != nil {
				return err
			}
		}
	}

	return nil
}

// registerRoute registers a single route to swagger.Paths
func (s *Service) registerRoute(swagger *spec.Swagger, route *domain.Route, method string, strict bool) error {
	pathItem, exists := swagger.Paths.Paths[route.Path]
	if !exists {
		pathItem = spec.PathItem{}
	}

	op := refRouteMethodOp(&pathItem, method)
	if op == nil {
		return fmt.Errorf("invalid HTTP method: %s", method)
	}

	if *op != nil {
		err := fmt.Errorf("route %s %s is declared multiple times", method, route.Path)
		if strict {
			return err
		}
		console.Logger.Debug("warning: %s\n", err)
		return nil
	}

	specOp := RouteToSpecOperation(route)
	if specOp == nil {
		return fmt.Errorf("failed to convert route to operation: %s %s", method, route.Path)
	}
	if method != route.Method {
		specOp.ID = route.OperationID + "_" + strings.ToLower(method)
	}

	specOp.Parameters = filterValidPathParameters(specOp.Parameters, route.Path)

	*op = specOp

	swagger.Paths.Paths[route.Path] = pathItem

	return nil
}

// refRouteMethodOp returns a pointer to the operation field for the given HTTP method
func refRouteMethodOp(item *spec.PathItem, method string) **spec.Operation {
	switch method {
	case http.MethodGet:
		return &item.Get
	case http.MethodPost:
		return &item.Post
	case http.MethodDelete:
		return &item.Delete
	case http.MethodPut:
		return &item.Put
	case http.MethodPatch:
		return &item.Patch
	case http.MethodHead:
		return &item.Head
	case http.MethodOptions:
		return &item.Options
	default:
		return nil
	}
}

// filterValidPathParameters filters out path parameters that don't exist in the path
func filterValidPathParameters(params []spec.Parameter, path string) []spec.Parameter {
	var validParams []spec.Parameter

	for _, param := range params {
		if param.In == "path" && !strings.Contains(path, "{"+param.Name+"}") {
			continue
		}
		validParams = append(validParams, param)
	}

	return validParams
}
