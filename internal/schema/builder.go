package schema

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-openapi/spec"

	"github.com/griffnb/nest-swag/internal/resolver"
)

// BuilderService keeps the catalog of named definitions.
type BuilderService struct {
	mu          sync.RWMutex
	definitions map[string]*JSONSchema
	generator   *Generator
	examples    *Examples
}

// NewBuilder creates an empty catalog.
func NewBuilder() *BuilderService {
	return &BuilderService{
		definitions: make(map[string]*JSONSchema),
		generator:   &Generator{},
		examples:    defaultExamples,
	}
}

// SetPropNamingStrategy sets the property naming strategy.
func (b *BuilderService) SetPropNamingStrategy(strategy string) {
	b.generator = NewGenerator(strategy)
}

// SetClock sets the clock used for date-time examples.
func (b *BuilderService) SetClock(now func() time.Time) {
	b.examples = NewExamples(now)
}

// Generator returns the generator used by the catalog.
func (b *BuilderService) Generator() *Generator {
	return b.generator
}

// Examples returns the example builder used by the catalog.
func (b *BuilderService) Examples() *Examples {
	return b.examples
}

// BuildSchema renders a resolved type, attaches its example and stores it
// under name.
func (b *BuilderService) BuildSchema(name string, t *resolver.Type) (*JSONSchema, error) {
	s := b.generator.Generate(t)
	if example := b.examples.Generate(s); example != nil {
		s.Examples = []interface{}{example}
	}
	if err := b.AddDefinition(name, s); err != nil {
		return nil, err
	}
	return s, nil
}

// AddDefinition adds a schema definition with the given name. A name can
// only be added once.
func (b *BuilderService) AddDefinition(name string, s *JSONSchema) error {
	if name == "" {
		return fmt.Errorf("definition name is empty")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.definitions[name]; exists {
		return fmt.Errorf("definition %s already exists", name)
	}
	b.definitions[name] = s
	return nil
}

// GetDefinition retrieves a schema definition by name.
func (b *BuilderService) GetDefinition(name string) (*JSONSchema, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.definitions[name]
	return s, ok
}

// Definitions returns all schema definitions.
func (b *BuilderService) Definitions() map[string]*JSONSchema {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]*JSONSchema, len(b.definitions))
	for name, s := range b.definitions {
		out[name] = s
	}
	return out
}

// Names returns the definition names, sorted.
func (b *BuilderService) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.definitions))
	for name := range b.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SpecDefinitions converts the catalog into OpenAPI definitions.
func (b *BuilderService) SpecDefinitions() spec.Definitions {
	b.mu.RLock()
	defer b.mu.RUnlock()
	defs := make(spec.Definitions, len(b.definitions))
	for name, s := range b.definitions {
		defs[name] = *ToSpec(s)
	}
	return defs
}

// MissingReferences lists $ref targets that have no definition, sorted.
func (b *BuilderService) MissingReferences() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	missing := make(map[string]struct{})
	for _, s := range b.definitions {
		Walk(s, func(node *JSONSchema) {
			if name := RefName(node.Ref); name != "" {
				if _, ok := b.definitions[name]; !ok {
					missing[name] = struct{}{}
				}
			}
		})
	}
	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
