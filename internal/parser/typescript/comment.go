package typescript

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

type docComment struct {
	text string
	tags map[string]string
}

// docComment finds the JSDoc block attached to node. Decorators between the
// comment and the node are skipped, and for exported declarations the
// comment sits before the export statement.
func (e *extractor) docComment(node *sitter.Node) docComment {
	prev := node.PrevSibling()
	for prev != nil && skippable(prev.Type()) {
		prev = prev.PrevSibling()
	}
	if prev == nil {
		if parent := node.Parent(); parent != nil && parent.Type() == "export_statement" {
			return e.docComment(parent)
		}
		return docComment{}
	}
	if prev.Type() != "comment" {
		return docComment{}
	}
	raw := e.text(prev)
	if !strings.HasPrefix(raw, "/**") {
		return docComment{}
	}
	return parseJSDoc(raw)
}

func skippable(kind string) bool {
	switch kind {
	case "decorator", "export", "default", "declare":
		return true
	}
	return false
}

// parseJSDoc splits a /** */ block into free text and @tags.
func parseJSDoc(raw string) docComment {
	doc := docComment{tags: map[string]string{}}
	body := strings.TrimSuffix(strings.TrimPrefix(raw, "/**"), "*/")

	var text []string
	currentTag := ""
	for _, l := range strings.Split(body, "\n") {
		l = strings.TrimSpace(l)
		l = strings.TrimSpace(strings.TrimPrefix(l, "*"))
		if strings.HasPrefix(l, "@") {
			name, value, _ := strings.Cut(l[1:], " ")
			currentTag = name
			doc.tags[name] = strings.TrimSpace(value)
			continue
		}
		if currentTag != "" {
			if l != "" {
				doc.tags[currentTag] = strings.TrimSpace(doc.tags[currentTag] + " " + l)
			}
			continue
		}
		text = append(text, l)
	}
	doc.text = strings.TrimSpace(strings.Join(text, "\n"))
	return doc
}
