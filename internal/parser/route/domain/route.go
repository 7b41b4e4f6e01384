// Package domain contains domain models for route extraction.
package domain

import (
	"github.com/griffnb/nest-swag/internal/resolver"
	"github.com/griffnb/nest-swag/internal/schema"
)

// Route is one endpoint descriptor built from an annotated controller method.
type Route struct {
	// HTTP method (GET, POST, PUT, DELETE, etc.)
	Method string `json:"method"`

	// Path is the OpenAPI path template (e.g., "/users/{id}")
	Path string `json:"path"`

	// RawPath is the framework path (e.g., "/users/:id")
	RawPath string `json:"rawPath"`

	// Controller is the declaring class
	Controller string `json:"controller"`

	// FunctionName is the handler method
	FunctionName string `json:"handler"`

	Summary     string   `json:"summary,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	Parameters []Parameter `json:"parameters,omitempty"`

	// RequestSchema is the schema of the first body parameter
	RequestSchema *schema.JSONSchema `json:"requestSchema,omitempty"`

	// ResponseSchema is the schema of the unwrapped return type
	ResponseSchema *schema.JSONSchema `json:"responseSchema,omitempty"`

	// Responses keyed by status code
	Responses map[int]Response `json:"responses"`

	Examples schema.ExamplePair `json:"examples"`

	// Security lists alternative requirements; any one of them grants access
	Security []Security `json:"security,omitempty"`

	Consumes []string `json:"consumes,omitempty"`
	Produces []string `json:"produces,omitempty"`

	Deprecated  bool   `json:"deprecated,omitempty"`
	OperationID string `json:"operationId"`

	// FilePath is the ID of the declaring unit
	FilePath string `json:"file"`

	// LineNumber where the handler is defined
	LineNumber int `json:"line,omitempty"`
}

// Parameter is one handler parameter
type Parameter struct {
	// Name of the parameter
	Name string `json:"name"`

	// In specifies where the parameter is located (body, path, query, header)
	In string `json:"in"`

	// TypeText is the declared type reference
	TypeText string `json:"type,omitempty"`

	// Required indicates if the parameter is mandatory
	Required bool `json:"required"`

	Description string `json:"description,omitempty"`

	Schema *schema.JSONSchema `json:"schema,omitempty"`

	// Type is the resolved type behind Schema
	Type *resolver.Type `json:"-"`
}

// Response is one documented status code
type Response struct {
	Description string             `json:"description"`
	Schema      *schema.JSONSchema `json:"schema,omitempty"`
	Type        *resolver.Type     `json:"-"`
}

// Security is one security requirement from an auth annotation
type Security struct {
	// Scheme is the security definition name
	Scheme string `json:"scheme"`

	// Kind is the scheme type implied by the annotation (basic, bearer,
	// apiKey, cookie, oauth2) or empty when only the name is known
	Kind string `json:"kind,omitempty"`

	Scopes []string `json:"scopes,omitempty"`
}
