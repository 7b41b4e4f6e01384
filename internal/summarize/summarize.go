package summarize

import (
	"context"
	"strings"

	routedomain "github.com/griffnb/nest-swag/internal/parser/route/domain"
)

// Summarizer turns a prompt into a short summary.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Debugger interface for logging
type Debugger interface {
	Printf(format string, v ...interface{})
}

type noOpDebugger struct{}

func (noOpDebugger) Printf(format string, v ...interface{}) {}

// Apply fills the summary of every route that has none. Failures are
// logged and skipped. It returns the number of routes summarized.
func Apply(ctx context.Context, summarizer Summarizer, routes []*routedomain.Route, debug Debugger) int {
	if summarizer == nil {
		return 0
	}
	if debug == nil {
		debug = noOpDebugger{}
	}

	filled := 0
	for _, route := range routes {
		if route == nil || route.Summary != "" {
			continue
		}
		if ctx.Err() != nil {
			debug.Printf("summarize: stopped: %v", ctx.Err())
			break
		}

		prompt, err := BuildPrompt(route)
		if err != nil {
			debug.Printf("summarize: %v", err)
			continue
		}
		summary, err := summarizer.Summarize(ctx, prompt)
		if err != nil {
			debug.Printf("summarize: %s %s: %v", route.Method, route.Path, err)
			continue
		}
		summary = cleanSummary(summary)
		if summary == "" {
			continue
		}
		route.Summary = summary
		filled++
	}
	return filled
}

// cleanSummary keeps the first line and drops quotes and a trailing period.
func cleanSummary(s string) string {
	s = strings.TrimSpace(s)
	if line, _, found := strings.Cut(s, "\n"); found {
		s = strings.TrimSpace(line)
	}
	s = strings.Trim(s, "\"'`")
	return strings.TrimSuffix(s, ".")
}
