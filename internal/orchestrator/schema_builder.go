package orchestrator

import (
	"fmt"

	"github.com/griffnb/nest-swag/internal/domain"
)

// frameworkAnnotations mark classes that are wiring, not data shapes.
var frameworkAnnotations = []string{
	domain.ControllerAnnotation,
	"Injectable",
	"Module",
	"Catch",
	"Resolver",
	"WebSocketGateway",
}

// buildCatalog resolves every data declaration in index order and stores
// its schema under the declaration's unique catalog name.
func (s *Service) buildCatalog() error {
	return s.registry.RangeDeclarations(func(decl *domain.Declaration) error {
		if !isDataDeclaration(decl) {
			return nil
		}
		name := s.registry.SchemaName(decl)
		if _, exists := s.schemaBuilder.GetDefinition(name); exists {
			s.config.Debug.Printf("warning: definition %s declared more than once in %s", name, decl.Unit)
			return nil
		}
		t := s.resolver.Resolve(decl.Name, decl.Unit)
		if _, err := s.schemaBuilder.BuildSchema(name, t); err != nil {
			return fmt.Errorf("failed to build schema %s: %w", name, err)
		}
		return nil
	})
}

func isDataDeclaration(decl *domain.Declaration) bool {
	if decl.Kind != domain.KindClass {
		return true
	}
	for _, name := range frameworkAnnotations {
		if _, ok := domain.FindAnnotation(decl.Annotations, name); ok {
			return false
		}
	}
	return true
}
