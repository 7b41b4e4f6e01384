package orchestrator

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/griffnb/nest-swag/internal/domain"
	routedomain "github.com/griffnb/nest-swag/internal/parser/route/domain"
)

// controllerRoutes pairs a controller's index position with its routes for
// deterministic ordering.
type controllerRoutes struct {
	position int
	routes   []*routedomain.Route
}

// parseRoutesParallel extracts routes from all controllers concurrently
// using an errgroup bounded by the number of CPUs. Results are sorted by
// index position so output does not depend on goroutine scheduling.
func (s *Service) parseRoutesParallel(ctx context.Context) ([]*routedomain.Route, error) {
	var controllers []*domain.Declaration
	err := s.registry.RangeDeclarations(func(decl *domain.Declaration) error {
		if decl.IsController() {
			controllers = append(controllers, decl)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		collected []controllerRoutes
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, decl := range controllers {
		i, decl := i, decl

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			routes := s.routeParser.ParseController(decl)
			if len(routes) == 0 {
				return nil
			}

			mu.Lock()
			collected = append(collected, controllerRoutes{position: i, routes: routes})
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(collected, func(i, j int) bool {
		return collected[i].position < collected[j].position
	})

	var allRoutes []*routedomain.Route
	for _, cr := range collected {
		allRoutes = append(allRoutes, cr.routes...)
	}

	return allRoutes, nil
}
