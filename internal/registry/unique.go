package registry

import (
	"strings"

	"github.com/griffnb/nest-swag/internal/domain"
)

// SchemaName returns the catalog name for a declaration. Names declared in a
// single unit are used as is; names declared in several units are qualified
// with their unit ID so every declaration gets its own definition.
func (s *Service) SchemaName(decl *domain.Declaration) string {
	if decl == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uniqueDefinitions == nil {
		s.buildUniqueDefinitions()
	}
	if name, ok := s.uniqueDefinitions[decl]; ok {
		return name
	}
	return decl.Name
}

// IsUnique reports whether exactly one unit declares the name.
func (s *Service) IsUnique(name string) bool {
	return len(s.byName[name]) == 1
}

func (s *Service) buildUniqueDefinitions() {
	s.uniqueDefinitions = make(map[*domain.Declaration]string)
	for name, decls := range s.byName {
		if len(decls) == 1 {
			s.uniqueDefinitions[decls[0]] = name
			continue
		}
		for _, decl := range decls {
			s.uniqueDefinitions[decl] = qualifiedName(decl.Unit, name)
		}
	}
}

// qualifiedName turns "users/dto/user.dto.ts" + "User" into
// "users.dto.user.dto.User".
func qualifiedName(unitID, name string) string {
	prefix := unitID
	for _, ext := range []string{".tsx", ".ts"} {
		prefix = strings.TrimSuffix(prefix, ext)
	}
	prefix = strings.NewReplacer("/", ".", "\\", ".", "-", "_").Replace(prefix)
	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
