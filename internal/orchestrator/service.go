// Package orchestrator coordinates all services to generate API documentation.
// It provides a clean, simple coordinator that delegates to specialized services.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-openapi/spec"
	"github.com/google/uuid"

	"github.com/griffnb/nest-swag/internal/domain"
	"github.com/griffnb/nest-swag/internal/loader"
	"github.com/griffnb/nest-swag/internal/parser/base"
	"github.com/griffnb/nest-swag/internal/parser/route"
	routedomain "github.com/griffnb/nest-swag/internal/parser/route/domain"
	"github.com/griffnb/nest-swag/internal/parser/typescript"
	"github.com/griffnb/nest-swag/internal/registry"
	"github.com/griffnb/nest-swag/internal/resolver"
	"github.com/griffnb/nest-swag/internal/schema"
	"github.com/griffnb/nest-swag/internal/summarize"
)

// Service coordinates all parsing services to generate documentation.
type Service struct {
	loader *loader.Service
	config *Config

	// State of the last run.
	registry      *registry.Service
	resolver      *resolver.Resolver
	schemaBuilder *schema.BuilderService
	routeParser   *route.Service
}

// Config holds orchestrator configuration options.
type Config struct {
	Excludes           []string
	Extensions         []string
	OutputDir          string
	MaxFileSize        int64
	PropNamingStrategy string
	Strict             bool

	// ManifestFile loads a pre-parsed index instead of walking sources.
	ManifestFile string

	// PreludeUnits are collected before any loaded unit. Their declarations
	// replace same-named declarations of loaded units.
	PreludeUnits []*domain.SourceUnit

	// PruneDefinitions drops catalog entries no operation references from
	// the OpenAPI document. The native catalog keeps everything.
	PruneDefinitions bool

	// GeneralInfoFile is the application bootstrap file (main.ts). Its
	// DocumentBuilder calls fill the general info and security definitions.
	// Non-empty info fields of this config take precedence.
	GeneralInfoFile string

	Title       string
	Version     string
	Description string
	Host        string
	BasePath    string

	Clock      func() time.Time
	Summarizer summarize.Summarizer
	Provider   loader.Provider
	Debug      Debugger
}

// Debugger is the interface for debug logging.
type Debugger interface {
	Printf(format string, v ...interface{})
}

type noOpDebugger struct{}

func (noOpDebugger) Printf(format string, v ...interface{}) {}

// Documentation is the result of one analysis run.
type Documentation struct {
	RunID       string                        `json:"runId"`
	GeneratedAt time.Time                     `json:"generatedAt"`
	Endpoints   []*routedomain.Route          `json:"endpoints"`
	Schemas     map[string]*schema.JSONSchema `json:"schemas"`
	Stats       Stats                         `json:"stats"`
	Swagger     *spec.Swagger                 `json:"-"`
}

// Stats summarizes a run.
type Stats struct {
	Units        int               `json:"units"`
	Declarations int               `json:"declarations"`
	Endpoints    int               `json:"endpoints"`
	Schemas      int               `json:"schemas"`
	Summarized   int               `json:"summarized,omitempty"`
	CacheHits    int               `json:"cacheHits"`
	CacheMisses  int               `json:"cacheMisses"`
	Skipped      map[string]string `json:"skipped,omitempty"`
	Missing      []string          `json:"missingDefinitions,omitempty"`
}

// New creates a new orchestrator service with the given configuration.
func New(config *Config) *Service {
	if config == nil {
		config = &Config{}
	}

	// Apply defaults for zero values
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.Debug == nil {
		config.Debug = noOpDebugger{}
	}

	opts := []loader.Option{
		loader.WithExcludes(config.Excludes),
		loader.WithExtensions(config.Extensions),
		loader.WithOutputDir(config.OutputDir),
		loader.WithMaxFileSize(config.MaxFileSize),
		loader.WithDebugger(config.Debug),
	}
	if config.Provider != nil {
		opts = append(opts, loader.WithProvider(config.Provider))
	}

	return &Service{
		loader: loader.NewService(opts...),
		config: config,
	}
}

// Parse generates documentation from the given search directories. This is
// the main entry point that coordinates all services. Every call is an
// independent run with its own index and resolution cache.
func (s *Service) Parse(ctx context.Context, searchDirs []string) (*Documentation, error) {
	debug := s.config.Debug
	debug.Printf("Orchestrator: Starting parse with %d search dirs", len(searchDirs))

	// Step 1: Load source units
	debug.Printf("Orchestrator: Step 1 - Loading source units")
	loadResult, err := s.load(ctx, searchDirs)
	if err != nil {
		return nil, err
	}
	debug.Printf("Orchestrator: Loaded %d units (%d skipped)", len(loadResult.Units), len(loadResult.Skipped))

	// Step 2: Collect units into the index
	debug.Printf("Orchestrator: Step 2 - Collecting declarations")
	s.registry = registry.NewService()
	s.registry.SetDebugger(debug)
	shadowed := make(map[string]struct{})
	for _, unit := range s.config.PreludeUnits {
		for _, decl := range unit.Declarations {
			if decl != nil {
				shadowed[decl.Name] = struct{}{}
			}
		}
	}
	units := append([]*domain.SourceUnit{}, s.config.PreludeUnits...)
	for _, unit := range loadResult.Units {
		units = append(units, s.withoutShadowed(unit, shadowed))
	}
	for _, unit := range units {
		if err := s.registry.CollectUnit(unit); err != nil {
			return nil, fmt.Errorf("failed to collect unit %s: %w", unit.ID, err)
		}
	}
	stats := s.registry.Stats()
	declarations := 0
	for _, n := range stats {
		declarations += n
	}
	debug.Printf("Orchestrator: Indexed %d declarations %v", declarations, stats)

	// Step 3: Build the schema catalog
	debug.Printf("Orchestrator: Step 3 - Building schema catalog")
	s.resolver = resolver.New(s.registry, resolver.NewCache(), resolver.WithDebugger(debug))
	s.schemaBuilder = schema.NewBuilder()
	s.schemaBuilder.SetPropNamingStrategy(s.config.PropNamingStrategy)
	s.schemaBuilder.SetClock(s.config.Clock)
	if err := s.buildCatalog(); err != nil {
		return nil, err
	}
	debug.Printf("Orchestrator: Built %d schema definitions", len(s.schemaBuilder.Names()))

	// Step 4: Extract routes from controllers (parallel)
	debug.Printf("Orchestrator: Step 4 - Extracting routes (parallel, limit=%d)", runtime.NumCPU())
	s.routeParser = route.NewService(s.registry, s.resolver,
		route.WithGenerator(s.schemaBuilder.Generator()),
		route.WithExamples(s.schemaBuilder.Examples()),
		route.WithDebugger(debug),
	)
	routes, err := s.parseRoutesParallel(ctx)
	if err != nil {
		return nil, err
	}
	debug.Printf("Orchestrator: Extracted %d routes", len(routes))

	missing := s.checkReferences(routes)

	// Step 5: Summarize routes without a doc comment
	summarized := 0
	if s.config.Summarizer != nil {
		debug.Printf("Orchestrator: Step 5 - Summarizing routes")
		summarized = summarize.Apply(ctx, s.config.Summarizer, routes, debug)
		debug.Printf("Orchestrator: Summarized %d routes", summarized)
	}

	// Step 6: Assemble the OpenAPI document
	debug.Printf("Orchestrator: Step 6 - Registering operations")
	swagger, general, err := s.newSwagger(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.routeParser.RegisterRoutes(swagger, routes, s.config.Strict); err != nil {
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}
	for _, r := range routes {
		general.RegisterSecurity(r.Security)
	}
	if s.config.PruneDefinitions {
		before := len(swagger.Definitions)
		schema.RemoveUnusedDefinitions(swagger)
		debug.Printf("Orchestrator: Pruned %d unused definitions", before-len(swagger.Definitions))
	}

	hits, misses := s.resolver.Cache().Stats()
	debug.Printf("Orchestrator: Resolver cache hits=%d misses=%d", hits, misses)

	doc := &Documentation{
		RunID:       uuid.NewString(),
		GeneratedAt: s.config.Clock().UTC(),
		Endpoints:   routes,
		Schemas:     s.schemaBuilder.Definitions(),
		Swagger:     swagger,
		Stats: Stats{
			Units:        len(loadResult.Units),
			Declarations: declarations,
			Endpoints:    len(routes),
			Schemas:      len(s.schemaBuilder.Names()),
			Summarized:   summarized,
			CacheHits:    hits,
			CacheMisses:  misses,
			Skipped:      loadResult.Skipped,
			Missing:      missing,
		},
	}
	if doc.Endpoints == nil {
		doc.Endpoints = []*routedomain.Route{}
	}

	debug.Printf("Orchestrator: Parse complete (run %s)", doc.RunID)
	return doc, nil
}

func (s *Service) load(ctx context.Context, searchDirs []string) (*loader.LoadResult, error) {
	if s.config.ManifestFile != "" {
		result, err := loader.LoadManifest(s.config.ManifestFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadableIndex, err)
		}
		return result, nil
	}
	result, err := s.loader.LoadSearchDirs(ctx, searchDirs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableIndex, err)
	}
	return result, nil
}

// withoutShadowed returns unit without the declarations a prelude unit
// replaces. The loaded unit is not modified.
func (s *Service) withoutShadowed(unit *domain.SourceUnit, shadowed map[string]struct{}) *domain.SourceUnit {
	if len(shadowed) == 0 {
		return unit
	}
	kept := make([]*domain.Declaration, 0, len(unit.Declarations))
	for _, decl := range unit.Declarations {
		if decl == nil {
			continue
		}
		if _, ok := shadowed[decl.Name]; ok {
			s.config.Debug.Printf("Orchestrator: %s in %s is overridden", decl.Name, unit.ID)
			continue
		}
		kept = append(kept, decl)
	}
	if len(kept) == len(unit.Declarations) {
		return unit
	}
	filtered := *unit
	filtered.Declarations = kept
	return &filtered
}

// Default general info used when neither the bootstrap file nor the config
// name the API.
const (
	DefaultTitle   = "API"
	DefaultVersion = "1.0.0"
)

func (s *Service) newSwagger(ctx context.Context) (*spec.Swagger, *base.Service, error) {
	swagger := &spec.Swagger{
		SwaggerProps: spec.SwaggerProps{
			Swagger: "2.0",
			Info: &spec.Info{
				VendorExtensible: spec.VendorExtensible{
					Extensions: spec.Extensions{},
				},
			},
			Paths:       &spec.Paths{Paths: make(map[string]spec.PathItem)},
			Definitions: s.schemaBuilder.SpecDefinitions(),
		},
	}

	general := base.NewService(swagger)
	general.SetDebugger(s.config.Debug)
	general.ApplyInfo(base.Info{Title: DefaultTitle, Version: DefaultVersion})

	if s.config.GeneralInfoFile != "" {
		calls, err := s.documentBuilderCalls(ctx)
		if err != nil {
			return nil, nil, err
		}
		if err := general.ApplyDocumentBuilder(calls); err != nil {
			return nil, nil, fmt.Errorf("failed to apply %s: %w", s.config.GeneralInfoFile, err)
		}
	}

	general.ApplyInfo(base.Info{
		Title:       s.config.Title,
		Version:     s.config.Version,
		Description: s.config.Description,
		Host:        s.config.Host,
		BasePath:    s.config.BasePath,
	})
	return swagger, general, nil
}

func (s *Service) documentBuilderCalls(ctx context.Context) ([]domain.Annotation, error) {
	content, err := os.ReadFile(s.config.GeneralInfoFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read general info file: %w", err)
	}
	parser := typescript.New(typescript.WithMaxFileSize(s.config.MaxFileSize))
	calls, err := parser.ParseCalls(ctx, s.config.GeneralInfoFile, content, base.BuilderMethods...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse general info file: %w", err)
	}
	s.config.Debug.Printf("Orchestrator: %d document builder calls in %s", len(calls), s.config.GeneralInfoFile)
	return calls, nil
}

// Registry returns the index of the last run.
func (s *Service) Registry() *registry.Service {
	return s.registry
}

// Resolver returns the resolver of the last run.
func (s *Service) Resolver() *resolver.Resolver {
	return s.resolver
}

// SchemaBuilder returns the schema catalog of the last run.
func (s *Service) SchemaBuilder() *schema.BuilderService {
	return s.schemaBuilder
}
