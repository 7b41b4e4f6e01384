// Package base builds the document level parts of the OpenAPI output:
// general info, tags, MIME types and security definitions.
package base

import (
	"github.com/go-openapi/spec"
)

// Debugger interface for logging
type Debugger interface {
	Printf(format string, v ...interface{})
}

type noOpDebugger struct{}

func (noOpDebugger) Printf(format string, v ...interface{}) {}

// Service fills document level fields of a swagger document
type Service struct {
	swagger *spec.Swagger
	debug   Debugger
}

// NewService creates a new base parser service
func NewService(swagger *spec.Swagger) *Service {
	if swagger.Info == nil {
		swagger.Info = &spec.Info{}
	}
	if swagger.SecurityDefinitions == nil {
		swagger.SecurityDefinitions = make(spec.SecurityDefinitions)
	}
	return &Service{
		swagger: swagger,
		debug:   noOpDebugger{},
	}
}

// SetDebugger sets the debugger for logging
func (s *Service) SetDebugger(debug Debugger) {
	if debug != nil {
		s.debug = debug
	}
}

// Info holds general API info. Empty fields leave the document unchanged.
type Info struct {
	Title       string
	Version     string
	Description string
	Host        string
	BasePath    string
}

// ApplyInfo copies the non-empty fields of info into the document.
func (s *Service) ApplyInfo(info Info) {
	setIfNotEmpty(&s.swagger.Info.Title, info.Title)
	setIfNotEmpty(&s.swagger.Info.Version, info.Version)
	setIfNotEmpty(&s.swagger.Info.Description, info.Description)
	setIfNotEmpty(&s.swagger.Host, info.Host)
	setIfNotEmpty(&s.swagger.BasePath, info.BasePath)
}

func setIfNotEmpty(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
