// Package console writes leveled, optionally colored messages for the CLI.
//
// Format strings may carry color markup such as "$Bold{$Cyan{text}}". The
// markup renders to ANSI escapes when the output is a terminal and is
// stripped otherwise.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// Logger is the process wide console used by the CLI and by services that
// have no injected debugger.
var Logger = New(os.Stdout)

var styles = map[string]string{
	"Bold":    "\x1b[1m",
	"Red":     "\x1b[31m",
	"Green":   "\x1b[32m",
	"Yellow":  "\x1b[33m",
	"Blue":    "\x1b[34m",
	"Magenta": "\x1b[35m",
	"Cyan":    "\x1b[36m",
}

const reset = "\x1b[0m"

// ConsoleLogger writes to one output. DebugLevel 0 suppresses Debug.
type ConsoleLogger struct {
	DebugLevel int
	Quiet      bool

	mu    sync.Mutex
	out   io.Writer
	color bool
}

// New creates a logger writing to out. Color is enabled when out is a
// terminal.
func New(out io.Writer) *ConsoleLogger {
	l := &ConsoleLogger{out: out}
	if f, ok := out.(*os.File); ok {
		l.color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return l
}

// SetOutput replaces the output and re-detects color support.
func (l *ConsoleLogger) SetOutput(out io.Writer) {
	fresh := New(out)
	l.mu.Lock()
	l.out = fresh.out
	l.color = fresh.color
	l.mu.Unlock()
}

// SetColor forces color on or off.
func (l *ConsoleLogger) SetColor(enabled bool) {
	l.mu.Lock()
	l.color = enabled
	l.mu.Unlock()
}

// Debug prints when DebugLevel is above zero.
func (l *ConsoleLogger) Debug(format string, args ...interface{}) {
	if l.DebugLevel <= 0 {
		return
	}
	l.write(format, args...)
}

// Info prints unless the logger is quiet.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	if l.Quiet {
		return
	}
	l.write(format, args...)
}

// Warn always prints, prefixed in yellow.
func (l *ConsoleLogger) Warn(format string, args ...interface{}) {
	l.write("$Yellow{warning:} "+format, args...)
}

// Printf makes the logger usable as a service Debugger.
func (l *ConsoleLogger) Printf(format string, args ...interface{}) {
	l.Debug(format, args...)
}

func (l *ConsoleLogger) write(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := fmt.Sprintf(Render(format, l.color), args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	_, _ = io.WriteString(l.out, msg)
}

// Render expands color markup. With color disabled the markup is removed
// and only the text is kept. A "}" that closes no markup is left as is.
func Render(format string, color bool) string {
	var (
		b     strings.Builder
		stack []string
	)
	for i := 0; i < len(format); {
		if format[i] == '$' {
			if name, width := markupAt(format[i:]); width > 0 {
				stack = append(stack, styles[name])
				if color {
					b.WriteString(styles[name])
				}
				i += width
				continue
			}
		}
		if format[i] == '}' && len(stack) > 0 {
			stack = stack[:len(stack)-1]
			if color {
				b.WriteString(reset)
				for _, code := range stack {
					b.WriteString(code)
				}
			}
			i++
			continue
		}
		b.WriteByte(format[i])
		i++
	}
	return b.String()
}

// markupAt reports the style name and the width of "$Name{" at the start of s.
func markupAt(s string) (string, int) {
	open := strings.IndexByte(s, '{')
	if open < 2 {
		return "", 0
	}
	name := s[1:open]
	if _, ok := styles[name]; !ok {
		return "", 0
	}
	return name, open + 1
}
