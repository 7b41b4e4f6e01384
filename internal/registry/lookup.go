package registry

import (
	"strings"

	"github.com/griffnb/nest-swag/internal/domain"
)

// FindDeclaration looks a name up inside the scope unit first, then across
// the whole index in index order. The first match wins. It returns nil when
// nothing matches. Namespace qualified names (ns.User) fall back to their
// last segment.
func (s *Service) FindDeclaration(name, scope string) *domain.Declaration {
	if decl := s.findDeclaration(name, scope); decl != nil {
		return decl
	}
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 && idx < len(name)-1 {
		return s.findDeclaration(name[idx+1:], scope)
	}
	return nil
}

func (s *Service) findDeclaration(name, scope string) *domain.Declaration {
	candidates := s.byName[name]
	if len(candidates) == 0 {
		return nil
	}
	if scope != "" {
		for _, decl := range candidates {
			if decl.Unit == scope {
				return decl
			}
		}
	}
	return candidates[0]
}
