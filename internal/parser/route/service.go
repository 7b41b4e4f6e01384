// Package route extracts endpoint descriptors from annotated controller
// classes and registers them as OpenAPI operations.
package route

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/griffnb/nest-swag/internal/domain"
	"github.com/griffnb/nest-swag/internal/parser/base"
	routedomain "github.com/griffnb/nest-swag/internal/parser/route/domain"
	"github.com/griffnb/nest-swag/internal/resolver"
	"github.com/griffnb/nest-swag/internal/schema"
)

// Declarations iterates the source unit index.
type Declarations interface {
	RangeDeclarations(handle func(decl *domain.Declaration) error) error
}

// TypeResolver resolves a type reference in the scope of a unit.
type TypeResolver interface {
	Resolve(text, scope string) *resolver.Type
}

// Debugger interface for logging
type Debugger interface {
	Printf(format string, v ...interface{})
}

type noOpDebugger struct{}

func (noOpDebugger) Printf(format string, v ...interface{}) {}

// Service handles extracting routes from controllers
type Service struct {
	declarations Declarations
	typeResolver TypeResolver
	generator    *schema.Generator
	examples     *schema.Examples
	debug        Debugger
}

// Option configures a Service.
type Option func(*Service)

// WithGenerator sets the schema generator used for parameters and responses.
func WithGenerator(g *schema.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.generator = g
		}
	}
}

// WithExamples sets the example builder.
func WithExamples(e *schema.Examples) Option {
	return func(s *Service) {
		if e != nil {
			s.examples = e
		}
	}
}

// WithDebugger sets the debugger for logging
func WithDebugger(debug Debugger) Option {
	return func(s *Service) {
		if debug != nil {
			s.debug = debug
		}
	}
}

// NewService creates a new route extractor
func NewService(declarations Declarations, typeResolver TypeResolver, options ...Option) *Service {
	s := &Service{
		declarations: declarations,
		typeResolver: typeResolver,
		generator:    schema.NewGenerator(""),
		examples:     schema.NewExamples(nil),
		debug:        noOpDebugger{},
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Extract builds one route per verb-annotated method of every controller,
// in index order then method order.
func (s *Service) Extract() ([]*routedomain.Route, error) {
	var routes []*routedomain.Route
	err := s.declarations.RangeDeclarations(func(decl *domain.Declaration) error {
		if !decl.IsController() {
			return nil
		}
		controllerRoutes := s.ParseController(decl)
		s.debug.Printf("controller %s: %d routes", decl.Name, len(controllerRoutes))
		routes = append(routes, controllerRoutes...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract routes: %w", err)
	}
	return routes, nil
}

// ParseController builds the routes of one controller class. It is safe to
// call concurrently when the resolver is.
func (s *Service) ParseController(decl *domain.Declaration) []*routedomain.Route {
	ann, _ := domain.FindAnnotation(decl.Annotations, domain.ControllerAnnotation)
	prefix := ann.Arg(0)
	tags := s.controllerTags(decl, prefix)

	var routes []*routedomain.Route
	for _, method := range decl.Methods {
		route := s.parseMethod(decl, method, prefix, tags)
		if route != nil {
			routes = append(routes, route)
		}
	}
	return routes
}

// parseMethod returns nil for methods without a verb annotation.
func (s *Service) parseMethod(decl *domain.Declaration, method domain.Method, prefix string, tags []string) *routedomain.Route {
	verb, verbAnn := methodVerb(method)
	if verb == VerbUnknown {
		return nil
	}
	if _, ok := method.Annotation("ApiExcludeEndpoint"); ok {
		return nil
	}

	rawPath := JoinPath(prefix, pathArg(verbAnn))
	summary, description := splitDoc(method.Description)

	route := &routedomain.Route{
		Method:       verb.HTTPMethod(),
		Path:         OpenAPIPath(rawPath),
		RawPath:      rawPath,
		Controller:   decl.Name,
		FunctionName: method.Name,
		Summary:      summary,
		Description:  description,
		Tags:         tags,
		Deprecated:   method.Deprecated,
		OperationID:  decl.Name + "_" + method.Name,
		FilePath:     decl.Unit,
		LineNumber:   method.Line,
	}
	if op, ok := method.Annotation("ApiOperation"); ok && route.Summary == "" {
		route.Summary = op.Arg(0)
	}

	route.Parameters = s.parameters(method, decl.Unit, rawPath)
	for _, p := range route.Parameters {
		if p.In == string(LocationBody) {
			route.RequestSchema = p.Schema
			break
		}
	}

	responseType := s.responseType(method, decl.Unit)
	if responseType != nil {
		route.ResponseSchema = s.generator.Generate(responseType)
	}
	route.Responses = s.responses(verb, method, responseType, route.ResponseSchema)
	route.Examples = s.examples.Pair(route.RequestSchema, route.ResponseSchema)

	route.Security = base.SecurityFromAnnotations(append(append([]domain.Annotation{}, decl.Annotations...), method.Annotations...))
	route.Consumes = s.mimeTypes(decl, method, "ApiConsumes")
	route.Produces = s.mimeTypes(decl, method, "ApiProduces")

	return route
}

// mimeTypes reads a MIME annotation from the method, falling back to the
// controller.
func (s *Service) mimeTypes(decl *domain.Declaration, method domain.Method, name string) []string {
	for _, annotations := range [][]domain.Annotation{method.Annotations, decl.Annotations} {
		types, err := base.MimeTypes(annotations, name)
		if err != nil {
			s.debug.Printf("%s.%s: %v", decl.Name, method.Name, err)
			return nil
		}
		if len(types) > 0 {
			return types
		}
	}
	return nil
}

func methodVerb(method domain.Method) (Verb, domain.Annotation) {
	for _, ann := range method.Annotations {
		if verb := VerbFromAnnotation(ann.Name); verb != VerbUnknown {
			return verb, ann
		}
	}
	return VerbUnknown, domain.Annotation{}
}

// pathArg returns the path argument of a verb or controller annotation.
// Array forms like @Get(['a', 'b']) are not paths.
func pathArg(ann domain.Annotation) string {
	arg := ann.Arg(0)
	if strings.HasPrefix(arg, "[") || strings.HasPrefix(arg, "{") {
		return ""
	}
	return arg
}

// controllerTags uses @ApiTags when present, otherwise the title cased
// first segment of the base path, otherwise the class name without its
// Controller suffix.
func (s *Service) controllerTags(decl *domain.Declaration, prefix string) []string {
	if ann, ok := domain.FindAnnotation(decl.Annotations, "ApiTags"); ok && len(ann.Args) > 0 {
		return append([]string{}, ann.Args...)
	}
	if segment := strings.Split(strings.Trim(prefix, "/"), "/")[0]; segment != "" && !strings.HasPrefix(segment, ":") {
		return []string{cases.Title(language.English).String(strings.ReplaceAll(segment, "-", " "))}
	}
	name := strings.TrimSuffix(decl.Name, "Controller")
	if name == "" {
		name = decl.Name
	}
	return []string{name}
}

// splitDoc uses the first line of a doc comment as the summary and the
// remaining lines as the description.
func splitDoc(doc string) (string, string) {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return "", ""
	}
	first, rest, _ := strings.Cut(doc, "\n")
	return strings.TrimSpace(first), strings.TrimSpace(rest)
}

func (s *Service) responses(verb Verb, method domain.Method, t *resolver.Type, success *schema.JSONSchema) map[int]routedomain.Response {
	codes := statusCatalog(verb)
	if code, ok := httpCode(method); ok {
		codes[0] = code
	}

	responses := make(map[int]routedomain.Response, len(codes))
	for i, code := range codes {
		// @HttpCode may pick the catalog's error code; the success entry wins.
		if _, taken := responses[code]; taken {
			continue
		}
		resp := routedomain.Response{Description: http.StatusText(code)}
		if i == 0 && code != http.StatusNoContent {
			resp.Schema = success
			resp.Type = t
		}
		responses[code] = resp
	}
	return responses
}
