package loader

import (
	"context"

	"github.com/griffnb/nest-swag/internal/domain"
)

// Provider turns one source file into a source unit.
type Provider interface {
	Parse(ctx context.Context, id string, content []byte) (*domain.SourceUnit, error)
}

// Service handles discovering and parsing source files
type Service struct {
	extensions  []string
	skipSuffix  []string
	skipDirs    map[string]struct{}
	excludes    map[string]struct{}
	outputDir   string
	maxFileSize int64
	provider    Provider
	debug       Debugger
}

// Debugger interface for logging
type Debugger interface {
	Printf(format string, v ...interface{})
}

// LoadResult contains the parsed units sorted by ID.
type LoadResult struct {
	Units []*domain.SourceUnit

	// Skipped lists files that could not be read or parsed, with the reason.
	Skipped map[string]string
}

// Option is a functional option for configuring Service
type Option func(*Service)

// noOpDebugger is a no-op debugger
type noOpDebugger struct{}

func (n *noOpDebugger) Printf(format string, v ...interface{}) {}
