package loader

import (
	"path/filepath"

	"github.com/griffnb/nest-swag/internal/parser/typescript"
)

// Default extensions and suffixes.
var (
	DefaultExtensions = []string{".ts", ".tsx"}
	DefaultSkipSuffix = []string{".d.ts", ".spec.ts", ".test.ts", ".spec.tsx", ".test.tsx"}
)

// NewService creates a new loader service with optional configuration
func NewService(options ...Option) *Service {
	s := &Service{
		extensions: DefaultExtensions,
		skipSuffix: DefaultSkipSuffix,
		skipDirs: map[string]struct{}{
			"node_modules": {},
			"dist":         {},
			"coverage":     {},
		},
		excludes: make(map[string]struct{}),
		debug:    &noOpDebugger{},
	}

	for _, opt := range options {
		opt(s)
	}

	if s.provider == nil {
		var parserOpts []typescript.Option
		if s.maxFileSize > 0 {
			parserOpts = append(parserOpts, typescript.WithMaxFileSize(s.maxFileSize))
		}
		s.provider = typescript.New(parserOpts...)
	}

	return s
}

// WithExtensions sets the file extensions to parse
func WithExtensions(exts []string) Option {
	return func(s *Service) {
		if len(exts) > 0 {
			s.extensions = exts
		}
	}
}

// WithExcludes sets directories and files to skip. Relative entries are matched
// against the search dir.
func WithExcludes(excludes []string) Option {
	return func(s *Service) {
		for _, ex := range excludes {
			if ex == "" {
				continue
			}
			s.excludes[filepath.Clean(ex)] = struct{}{}
		}
	}
}

// WithOutputDir skips the directory generated documents are written to.
func WithOutputDir(dir string) Option {
	return func(s *Service) {
		s.outputDir = dir
	}
}

// WithMaxFileSize limits the size of parsed files
func WithMaxFileSize(bytes int64) Option {
	return func(s *Service) {
		s.maxFileSize = bytes
	}
}

// WithProvider replaces the TypeScript declaration provider
func WithProvider(p Provider) Option {
	return func(s *Service) {
		s.provider = p
	}
}

// WithDebugger sets the debugger for logging
func WithDebugger(debugger Debugger) Option {
	return func(s *Service) {
		s.debug = debugger
	}
}
