// Package registry provides the source unit index: the ordered, read-only
// collection of parsed units the resolver looks declarations up in.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/griffnb/nest-swag/internal/domain"
)

// Debugger is the interface for debug logging.
type Debugger interface {
	Printf(format string, v ...interface{})
}

// Service holds every collected source unit in index order.
type Service struct {
	units             []*domain.SourceUnit
	byID              map[string]*domain.SourceUnit
	byName            map[string][]*domain.Declaration
	uniqueDefinitions map[*domain.Declaration]string
	mu                sync.Mutex
	debug             Debugger
}

// NewService creates a new, empty registry.
func NewService() *Service {
	return &Service{
		byID:   make(map[string]*domain.SourceUnit),
		byName: make(map[string][]*domain.Declaration),
	}
}

// SetDebugger sets the debugger.
func (s *Service) SetDebugger(debug Debugger) {
	s.debug = debug
}

// CollectUnit appends a unit to the index. A unit whose ID is already present
// is ignored so the first collected unit wins.
func (s *Service) CollectUnit(unit *domain.SourceUnit) error {
	if unit == nil {
		return nil
	}
	if unit.ID == "" {
		return fmt.Errorf("source unit %q has no id", unit.Path)
	}
	if _, exists := s.byID[unit.ID]; exists {
		if s.debug != nil {
			s.debug.Printf("registry: unit %s already collected, skipping", unit.ID)
		}
		return nil
	}

	s.units = append(s.units, unit)
	s.byID[unit.ID] = unit
	for _, decl := range unit.Declarations {
		if decl == nil || decl.Name == "" {
			continue
		}
		decl.Unit = unit.ID
		s.byName[decl.Name] = append(s.byName[decl.Name], decl)
	}
	s.mu.Lock()
	s.uniqueDefinitions = nil
	s.mu.Unlock()

	return nil
}

// Units returns the collected units in index order.
func (s *Service) Units() []*domain.SourceUnit {
	return s.units
}

// Unit returns the unit with the given ID, or nil.
func (s *Service) Unit(id string) *domain.SourceUnit {
	return s.byID[id]
}

// RangeUnits iterates over units in index order.
func (s *Service) RangeUnits(handle func(unit *domain.SourceUnit) error) error {
	for _, unit := range s.units {
		if err := handle(unit); err != nil {
			return err
		}
	}
	return nil
}

// RangeDeclarations iterates over every declaration in index order.
func (s *Service) RangeDeclarations(handle func(decl *domain.Declaration) error) error {
	return s.RangeUnits(func(unit *domain.SourceUnit) error {
		for _, decl := range unit.Declarations {
			if decl == nil || decl.Name == "" {
				continue
			}
			if err := handle(decl); err != nil {
				return err
			}
		}
		return nil
	})
}

// Stats returns the number of declarations per kind.
func (s *Service) Stats() map[domain.DeclarationKind]int {
	stats := make(map[domain.DeclarationKind]int)
	_ = s.RangeDeclarations(func(decl *domain.Declaration) error {
		stats[decl.Kind]++
		return nil
	})
	return stats
}

// Names returns every declared name, sorted.
func (s *Service) Names() []string {
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
