package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/griffnb/nest-swag/internal/domain"
)

type sourceFile struct {
	id   string
	path string
}

// LoadSearchDirs discovers source files under dirs and parses them in
// parallel. Unit IDs are slash separated paths relative to their search dir.
// Files that fail to parse are skipped and reported in the result; only an
// unreadable search dir is fatal.
func (s *Service) LoadSearchDirs(ctx context.Context, dirs []string) (*LoadResult, error) {
	var files []sourceFile
	seen := make(map[string]struct{})

	for _, searchDir := range dirs {
		absDir, err := filepath.Abs(searchDir)
		if err != nil {
			return nil, err
		}

		found, err := s.walkDirectory(absDir)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if _, dup := seen[f.id]; dup {
				s.debug.Printf("warning: duplicate unit %s from %s ignored", f.id, f.path)
				continue
			}
			seen[f.id] = struct{}{}
			files = append(files, f)
		}
	}

	return s.parseFiles(ctx, files)
}

// walkDirectory collects the source files under searchDir
func (s *Service) walkDirectory(searchDir string) ([]sourceFile, error) {
	info, err := os.Stat(searchDir)
	if err != nil {
		return nil, fmt.Errorf("failed to access search dir %q: %w", searchDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("search dir %q is not a directory", searchDir)
	}

	var files []sourceFile
	err = filepath.WalkDir(searchDir, func(path string, d fs.DirEntry, wError error) error {
		if wError != nil {
			if path == searchDir {
				return fmt.Errorf("failed to access path %q, err: %w", path, wError)
			}
			s.debug.Printf("warning: skipping %s: %v", path, wError)
			return nil
		}

		if d.IsDir() {
			if path != searchDir && s.shouldSkipDir(searchDir, path, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.shouldSkipFile(searchDir, path) {
			return nil
		}

		relPath, err := filepath.Rel(searchDir, path)
		if err != nil {
			return err
		}
		files = append(files, sourceFile{id: filepath.ToSlash(relPath), path: path})
		return nil
	})
	return files, err
}

func (s *Service) parseFiles(ctx context.Context, files []sourceFile) (*LoadResult, error) {
	result := &LoadResult{Skipped: make(map[string]string)}

	var (
		mu    sync.Mutex
		units []*domain.SourceUnit
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, file := range files {
		file := file

		g.Go(func() error {
			unit, err := s.parseFile(ctx, file)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.debug.Printf("warning: skipping %s: %v", file.path, err)
				result.Skipped[file.id] = err.Error()
				return nil
			}
			if unit.SyntaxErrors {
				s.debug.Printf("warning: %s has syntax errors, declarations were recovered where possible", file.path)
			}
			units = append(units, unit)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The registry's lookup order is collection order, so it must not depend
	// on goroutine scheduling.
	sort.Slice(units, func(i, j int) bool {
		return units[i].ID < units[j].ID
	})
	result.Units = units

	return result, nil
}

// parseFile reads and parses a single source file
func (s *Service) parseFile(ctx context.Context, file sourceFile) (*domain.SourceUnit, error) {
	content, err := os.ReadFile(file.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", file.path, err)
	}

	unit, err := s.provider.Parse(ctx, file.id, content)
	if err != nil {
		return nil, err
	}
	unit.ID = file.id
	unit.Path = file.path
	return unit, nil
}

// shouldSkipFile checks if a file should be skipped
func (s *Service) shouldSkipFile(searchDir, path string) bool {
	if s.isExcluded(searchDir, path) {
		return true
	}
	lower := strings.ToLower(path)
	for _, suffix := range s.skipSuffix {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	ext := filepath.Ext(lower)
	for _, allowed := range s.extensions {
		if ext == allowed {
			return false
		}
	}
	return true
}

// shouldSkipDir checks if a directory should be skipped
func (s *Service) shouldSkipDir(searchDir, path, name string) bool {
	if _, ok := s.skipDirs[name]; ok {
		return true
	}
	if len(name) > 1 && name[0] == '.' && name != ".." {
		return true
	}

	if s.outputDir != "" {
		if out, err := filepath.Abs(s.outputDir); err == nil && out == path {
			return true
		}
	}

	return s.isExcluded(searchDir, path)
}

// isExcluded matches path against the excludes, relative to searchDir or as given.
func (s *Service) isExcluded(searchDir, path string) bool {
	if rel, err := filepath.Rel(searchDir, path); err == nil {
		if _, ok := s.excludes[rel]; ok {
			return true
		}
	}
	_, ok := s.excludes[path]
	return ok
}
