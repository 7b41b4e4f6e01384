package orchestrator

import (
	"fmt"
	"sort"
	"strings"

	routedomain "github.com/griffnb/nest-swag/internal/parser/route/domain"
	"github.com/griffnb/nest-swag/internal/resolver"
)

// CollectReferencedTypes walks all routes and returns the catalog names of
// the named types their parameters and responses use. Values are source
// locations describing where the name was first encountered
// (e.g., "GET /users → findAll (users.controller.ts:42)").
func CollectReferencedTypes(routes []*routedomain.Route) map[string]string {
	refs := make(map[string]string)
	for _, route := range routes {
		if route == nil {
			continue
		}
		source := routeSource(route)
		for _, p := range route.Parameters {
			collectRefsFromType(p.Type, refs, source, map[*resolver.Type]bool{})
		}
		for _, resp := range route.Responses {
			collectRefsFromType(resp.Type, refs, source, map[*resolver.Type]bool{})
		}
	}
	return refs
}

// routeSource builds a human-readable location string for a route.
func routeSource(r *routedomain.Route) string {
	parts := []string{}
	if r.Method != "" {
		parts = append(parts, r.Method)
	}
	if r.Path != "" {
		parts = append(parts, r.Path)
	}
	loc := strings.Join(parts, " ")
	if r.FunctionName != "" {
		loc += " → " + r.FunctionName
	}
	if r.FilePath != "" {
		file := r.FilePath
		if idx := strings.LastIndex(file, "/"); idx >= 0 {
			file = file[idx+1:]
		}
		if r.LineNumber > 0 {
			loc += fmt.Sprintf(" (%s:%d)", file, r.LineNumber)
		} else {
			loc += fmt.Sprintf(" (%s)", file)
		}
	}
	return loc
}

func collectRefsFromType(t *resolver.Type, refs map[string]string, source string, seen map[*resolver.Type]bool) {
	if t == nil || seen[t] {
		return
	}
	seen[t] = true

	switch t.Kind {
	case resolver.KindObject, resolver.KindEnum, resolver.KindRef:
		if t.SchemaName != "" && t.ObjectKind != resolver.ObjectInline {
			if _, exists := refs[t.SchemaName]; !exists {
				refs[t.SchemaName] = source
			}
		}
	}

	collectRefsFromType(t.Element, refs, source, seen)
	for _, m := range t.Members {
		collectRefsFromType(m, refs, source, seen)
	}
	for _, p := range t.Properties {
		collectRefsFromType(p.Type, refs, source, seen)
	}
}

// checkReferences warns about named types routes use that have no catalog
// entry and returns their names, sorted.
func (s *Service) checkReferences(routes []*routedomain.Route) []string {
	var missing []string
	for name, source := range CollectReferencedTypes(routes) {
		if _, ok := s.schemaBuilder.GetDefinition(name); !ok {
			s.config.Debug.Printf("warning: %s references %s which has no definition", source, name)
			missing = append(missing, name)
		}
	}
	for _, name := range s.schemaBuilder.MissingReferences() {
		missing = append(missing, name)
	}
	sort.Strings(missing)
	return dedupe(missing)
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, name := range sorted {
		if i > 0 && sorted[i-1] == name {
			continue
		}
		out = append(out, name)
	}
	return out
}
