// Package typeexpr parses the textual type references found in declarations
// ("User", "string[]", "A | B", "{ id: number }") into a small syntax tree.
package typeexpr

import (
	"strings"
)

// arrayWrappers are generic types whose single argument is the element type.
var arrayWrappers = []string{"ReadonlyArray", "Array", "Set"}

// Normalize strips generic argument lists, rewrites Array<T> to T[] and
// collapses whitespace. Generic arguments are discarded.
func Normalize(text string) string {
	text = collapseSpace(text)
	text = strings.TrimPrefix(text, "readonly ")
	text = rewriteArrayWrappers(text)
	text = stripGenerics(text)
	return collapseSpace(text)
}

func collapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// rewriteArrayWrappers turns Array<T> into (T)[] so the element type survives
// generic stripping.
func rewriteArrayWrappers(text string) string {
	for _, wrapper := range arrayWrappers {
		for {
			idx := findWrapper(text, wrapper)
			if idx < 0 {
				break
			}
			open := idx + len(wrapper)
			end := matchingAngle(text, open)
			if end < 0 {
				break
			}
			inner := rewriteArrayWrappers(strings.TrimSpace(text[open+1 : end]))
			if inner == "" {
				inner = "any"
			}
			if isSimple(inner) {
				text = text[:idx] + inner + "[]" + text[end+1:]
			} else {
				text = text[:idx] + "(" + inner + ")[]" + text[end+1:]
			}
		}
	}
	return text
}

// findWrapper finds "<wrapper><" where wrapper is not the tail of a longer identifier.
func findWrapper(text, wrapper string) int {
	from := 0
	for {
		idx := strings.Index(text[from:], wrapper+"<")
		if idx < 0 {
			return -1
		}
		idx += from
		if idx == 0 || !isIdentChar(text[idx-1]) {
			return idx
		}
		from = idx + 1
	}
}

// matchingAngle returns the index of the '>' closing the '<' at open, or -1.
func matchingAngle(text string, open int) int {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '<':
			depth++
		case '>':
			if i > 0 && text[i-1] == '=' {
				continue
			}
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isSimple(text string) bool {
	for i := 0; i < len(text); i++ {
		if !isIdentChar(text[i]) && text[i] != '[' && text[i] != ']' {
			return false
		}
	}
	return true
}

// stripGenerics removes every balanced <...> span. An unclosed '<' drops the
// rest of the text.
func stripGenerics(text string) string {
	var b strings.Builder
	depth := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '<':
			depth++
		case c == '>' && i > 0 && text[i-1] == '=':
			if depth == 0 {
				b.WriteByte(c)
			}
		case c == '>':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}
