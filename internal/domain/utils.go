package domain

import (
	"strings"
)

// ControllerAnnotation marks a class as an entry-point container.
const ControllerAnnotation = "Controller"

// FindAnnotation returns the first annotation with the given name.
func FindAnnotation(annotations []Annotation, name string) (Annotation, bool) {
	for _, a := range annotations {
		if a.Name == name {
			return a, true
		}
	}
	return Annotation{}, false
}

// Arg returns the i-th argument or an empty string.
func (a Annotation) Arg(i int) string {
	if i < 0 || i >= len(a.Args) {
		return ""
	}
	return a.Args[i]
}

// IsController reports whether the declaration is an annotated controller class.
func (d *Declaration) IsController() bool {
	if d == nil || d.Kind != KindClass {
		return false
	}
	_, ok := FindAnnotation(d.Annotations, ControllerAnnotation)
	return ok
}

// Annotation returns the first method annotation with the given name.
func (m Method) Annotation(name string) (Annotation, bool) {
	return FindAnnotation(m.Annotations, name)
}

// UnquoteLiteral strips one level of matching quotes (', " or `).
func UnquoteLiteral(text string) string {
	text = strings.TrimSpace(text)
	if len(text) < 2 {
		return text
	}
	first, last := text[0], text[len(text)-1]
	if first == last && (first == '\'' || first == '"' || first == '`') {
		return text[1 : len(text)-1]
	}
	return text
}

// IsQuoted reports whether the text is a quoted string literal.
func IsQuoted(text string) bool {
	text = strings.TrimSpace(text)
	return len(text) >= 2 && UnquoteLiteral(text) != text
}
