// Package gen runs an analysis and writes its documents to disk, optionally
// persisting the run and uploading the written files.
package gen

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-openapi/spec"
	"sigs.k8s.io/yaml"

	"github.com/griffnb/nest-swag/internal/console"
	"github.com/griffnb/nest-swag/internal/domain"
	"github.com/griffnb/nest-swag/internal/orchestrator"
	"github.com/griffnb/nest-swag/internal/resolver"
	"github.com/griffnb/nest-swag/internal/summarize"
)

var open = os.Open

// Version of nest-swag.
const Version = "v0.3.0"

// DefaultOverridesFile is the location nest-swag will look for type overrides.
const DefaultOverridesFile = ".nestswag"

// OverridesUnitID is the unit ID override declarations are collected under.
const OverridesUnitID = "overrides"

type genTypeWriter func(*Config, *orchestrator.Documentation) (string, error)

// DocumentStore persists a run.
type DocumentStore interface {
	SaveDocumentation(ctx context.Context, doc *orchestrator.Documentation) error
}

// Uploader stores a written file for a run and returns its location.
type Uploader interface {
	Upload(ctx context.Context, runID, name string, content []byte) (string, error)
}

// Gen presents a generate tool for nest-swag.
type Gen struct {
	json          func(data interface{}) ([]byte, error)
	jsonIndent    func(data interface{}) ([]byte, error)
	jsonToYAML    func(data []byte) ([]byte, error)
	outputTypeMap map[string]genTypeWriter
	debug         Debugger
}

// Debugger is the interface that wraps the basic Printf method.
type Debugger interface {
	Printf(format string, v ...interface{})
}

// New creates a new Gen.
func New() *Gen {
	gen := Gen{
		json: json.Marshal,
		jsonIndent: func(data interface{}) ([]byte, error) {
			return json.MarshalIndent(data, "", "    ")
		},
		jsonToYAML: yaml.JSONToYAML,
		debug:      log.New(os.Stdout, "", log.LstdFlags),
	}

	gen.outputTypeMap = map[string]genTypeWriter{
		"json": gen.writeJSONSwagger,
		"yaml": gen.writeYAMLSwagger,
		"yml":  gen.writeYAMLSwagger,
		"docs": gen.writeEndpoints,
	}

	return &gen
}

// Config presents Gen configurations.
type Config struct {
	Debugger Debugger

	// SearchDir the sources to analyze, comma separated if multiple
	SearchDir string

	// Excludes dirs and files in SearchDir, comma separated
	Excludes string

	// ParseExtension source file extensions to read, comma separated
	ParseExtension string

	// ManifestFile a pre-parsed source unit index used instead of SearchDir
	ManifestFile string

	// MaxFileSize largest source file read, in bytes
	MaxFileSize int64

	// OutputDir represents the output directory for all the generated files
	OutputDir string

	// OutputTypes define types of files which should be generated
	OutputTypes []string

	// PropNamingStrategy represents property naming strategy like snake case,camel case,pascal case
	PropNamingStrategy string

	// Strict whether duplicate routes are an error instead of a warning
	Strict bool

	// OverridesFile defines global type overrides.
	OverridesFile string

	// PruneDefinitions drops definitions no operation references from the OpenAPI output
	PruneDefinitions bool

	// GeneralInfoFile the bootstrap file whose DocumentBuilder calls describe the API
	GeneralInfoFile string

	Title       string
	Version     string
	Description string
	Host        string
	BasePath    string

	Clock      func() time.Time
	Summarizer summarize.Summarizer
	Store      DocumentStore
	Uploader   Uploader
}

// Build analyzes the configured sources and writes every requested output.
func (g *Gen) Build(ctx context.Context, config *Config) (*orchestrator.Documentation, error) {
	if config.Debugger != nil {
		g.debug = config.Debugger
	}

	var searchDirs []string
	if config.ManifestFile == "" {
		searchDirs = splitList(config.SearchDir)
		for _, searchDir := range searchDirs {
			if _, err := os.Stat(searchDir); os.IsNotExist(err) {
				return nil, fmt.Errorf("dir: %s does not exist", searchDir)
			}
		}
	}

	var prelude []*domain.SourceUnit
	if config.OverridesFile != "" {
		overridesFile, err := open(config.OverridesFile)
		if err != nil {
			// Don't bother reporting if the default file is missing; assume there are no overrides
			if !(config.OverridesFile == DefaultOverridesFile && os.IsNotExist(err)) {
				return nil, fmt.Errorf("could not open overrides file: %w", err)
			}
		} else {
			console.Logger.Debug("Using overrides from %s", config.OverridesFile)

			overrides, err := parseOverrides(overridesFile)
			_ = overridesFile.Close()
			if err != nil {
				return nil, err
			}
			if unit := overridesUnit(overrides); unit != nil {
				prelude = append(prelude, unit)
			}
		}
	}

	console.Logger.Debug("Generate swagger docs....")

	orc := orchestrator.New(&orchestrator.Config{
		Excludes:           splitList(config.Excludes),
		Extensions:         splitList(config.ParseExtension),
		OutputDir:          config.OutputDir,
		MaxFileSize:        config.MaxFileSize,
		PropNamingStrategy: config.PropNamingStrategy,
		Strict:             config.Strict,
		ManifestFile:       config.ManifestFile,
		PreludeUnits:       prelude,
		PruneDefinitions:   config.PruneDefinitions,
		GeneralInfoFile:    config.GeneralInfoFile,
		Title:              config.Title,
		Version:            config.Version,
		Description:        config.Description,
		Host:               config.Host,
		BasePath:           config.BasePath,
		Clock:              config.Clock,
		Summarizer:         config.Summarizer,
		Debug:              g.debug,
	})

	doc, err := orc.Parse(ctx, searchDirs)
	if err != nil {
		return nil, err
	}
	for _, name := range doc.Stats.Missing {
		console.Logger.Warn("no definition for referenced type %s", name)
	}

	// Sanitize swagger spec to remove infinity/NaN values before any output
	// These values are not valid in JSON and will cause marshaling errors
	g.debug.Printf("Sanitizing swagger spec to remove invalid numeric values...")
	sanitizeSwaggerSpec(doc.Swagger)

	if err := os.MkdirAll(config.OutputDir, os.ModePerm); err != nil {
		return nil, err
	}

	var written []string
	for _, outputType := range config.OutputTypes {
		outputType = strings.ToLower(strings.TrimSpace(outputType))
		typeWriter, ok := g.outputTypeMap[outputType]
		if !ok {
			log.Printf("output type '%s' not supported", outputType)
			continue
		}
		file, err := typeWriter(config, doc)
		if err != nil {
			return nil, err
		}
		written = append(written, file)
	}

	if config.Store != nil {
		if err := config.Store.SaveDocumentation(ctx, doc); err != nil {
			return nil, fmt.Errorf("failed to save run %s: %w", doc.RunID, err)
		}
		console.Logger.Debug("saved run %s", doc.RunID)
	}

	if config.Uploader != nil {
		if err := g.upload(ctx, config.Uploader, doc.RunID, written); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

func (g *Gen) upload(ctx context.Context, uploader Uploader, runID string, files []string) error {
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		location, err := uploader.Upload(ctx, runID, filepath.Base(file), content)
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", file, err)
		}
		console.Logger.Debug("uploaded %s to %s", file, location)
	}
	return nil
}

func (g *Gen) writeJSONSwagger(config *Config, doc *orchestrator.Documentation) (string, error) {
	jsonFileName := filepath.Join(config.OutputDir, "swagger.json")

	b, err := g.jsonIndent(doc.Swagger)
	if err != nil {
		return "", err
	}

	if err := g.writeFile(b, jsonFileName); err != nil {
		return "", err
	}

	console.Logger.Debug("create swagger.json at %+v", jsonFileName)

	return jsonFileName, nil
}

func (g *Gen) writeYAMLSwagger(config *Config, doc *orchestrator.Documentation) (string, error) {
	yamlFileName := filepath.Join(config.OutputDir, "swagger.yaml")

	b, err := g.json(doc.Swagger)
	if err != nil {
		return "", err
	}

	y, err := g.jsonToYAML(b)
	if err != nil {
		return "", fmt.Errorf("cannot covert json to yaml error: %s", err)
	}

	if err := g.writeFile(y, yamlFileName); err != nil {
		return "", err
	}

	console.Logger.Debug("create swagger.yaml at %+v", yamlFileName)

	return yamlFileName, nil
}

// writeEndpoints writes the native endpoint descriptors and schema catalog.
func (g *Gen) writeEndpoints(config *Config, doc *orchestrator.Documentation) (string, error) {
	docsFileName := filepath.Join(config.OutputDir, "endpoints.json")

	b, err := g.jsonIndent(doc)
	if err != nil {
		return "", err
	}

	if err := g.writeFile(b, docsFileName); err != nil {
		return "", err
	}

	console.Logger.Debug("create endpoints.json at %+v", docsFileName)

	return docsFileName, nil
}

func (g *Gen) writeFile(b []byte, file string) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}

	defer f.Close()

	_, err = f.Write(b)

	return err
}

// Read and parse the overrides file.
func parseOverrides(r io.Reader) (map[string]string, error) {
	overrides := make(map[string]string)
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments
		if strings.HasPrefix(line, "//") {
			continue
		}

		parts := strings.Fields(line)

		switch len(parts) {
		case 0:
			continue
		case 2:
			if parts[0] != "skip" {
				return nil, fmt.Errorf("could not parse override: '%s'", line)
			}

			overrides[parts[1]] = ""
		default:
			if parts[0] != "replace" || len(parts) < 3 {
				return nil, fmt.Errorf("could not parse override: '%s'", line)
			}

			// the replacement is a type expression and may contain spaces
			overrides[parts[1]] = strings.Join(parts[2:], " ")
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading overrides file: %w", err)
	}

	return overrides, nil
}

// overridesUnit turns overrides into alias declarations, which replace
// same-named source declarations. A skipped type resolves to any.
func overridesUnit(overrides map[string]string) *domain.SourceUnit {
	if len(overrides) == 0 {
		return nil
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	unit := &domain.SourceUnit{ID: OverridesUnitID}
	for _, name := range names {
		target := overrides[name]
		if target == "" {
			target = resolver.PrimitiveAny
		}
		unit.Declarations = append(unit.Declarations, &domain.Declaration{
			Name:     name,
			Kind:     domain.KindAlias,
			AliasOf:  target,
			Exported: true,
		})
	}
	return unit
}

// splitList converts a comma-separated string to a slice.
func splitList(list string) []string {
	result := []string{}
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}

// sanitizeSwaggerSpec removes infinity and NaN values from the swagger spec
// to prevent JSON marshaling errors. These values are not valid in JSON.
func sanitizeSwaggerSpec(swagger *spec.Swagger) {
	if swagger == nil {
		return
	}

	for name, def := range swagger.Definitions {
		sanitizeSchema(&def)
		swagger.Definitions[name] = def
	}

	if swagger.Paths == nil {
		return
	}
	for _, pathItem := range swagger.Paths.Paths {
		for _, op := range []*spec.Operation{
			pathItem.Get, pathItem.Put, pathItem.Post, pathItem.Delete,
			pathItem.Options, pathItem.Head, pathItem.Patch,
		} {
			sanitizeOperation(op)
		}
	}
}

func sanitizeOperation(op *spec.Operation) {
	if op == nil {
		return
	}

	for i := range op.Parameters {
		sanitizeParameter(&op.Parameters[i])
	}
	if op.Responses == nil {
		return
	}
	for code, resp := range op.Responses.StatusCodeResponses {
		sanitizeSchema(resp.Schema)
		op.Responses.StatusCodeResponses[code] = resp
	}
}

func sanitizeParameter(param *spec.Parameter) {
	param.Minimum = finite(param.Minimum)
	param.Maximum = finite(param.Maximum)
	param.MultipleOf = finite(param.MultipleOf)
	param.Default = finiteValue(param.Default)
	param.Example = finiteValue(param.Example)
	param.Enum = finiteValues(param.Enum)

	sanitizeSchema(param.Schema)
	sanitizeItems(param.Items)
}

func sanitizeSchema(schema *spec.Schema) {
	if schema == nil {
		return
	}

	schema.Minimum = finite(schema.Minimum)
	schema.Maximum = finite(schema.Maximum)
	schema.MultipleOf = finite(schema.MultipleOf)
	schema.Default = finiteValue(schema.Default)
	schema.Enum = finiteValues(schema.Enum)

	for k := range schema.Properties {
		propSchema := schema.Properties[k]
		sanitizeSchema(&propSchema)
		schema.Properties[k] = propSchema
	}

	if schema.Items != nil {
		sanitizeSchema(schema.Items.Schema)
	}

	for i := range schema.OneOf {
		sanitizeSchema(&schema.OneOf[i])
	}
	for i := range schema.AllOf {
		sanitizeSchema(&schema.AllOf[i])
	}

	if schema.AdditionalProperties != nil {
		sanitizeSchema(schema.AdditionalProperties.Schema)
	}
}

func sanitizeItems(items *spec.Items) {
	for ; items != nil; items = items.Items {
		items.Minimum = finite(items.Minimum)
		items.Maximum = finite(items.Maximum)
		items.MultipleOf = finite(items.MultipleOf)
		items.Default = finiteValue(items.Default)
		items.Example = finiteValue(items.Example)
		items.Enum = finiteValues(items.Enum)
	}
}
