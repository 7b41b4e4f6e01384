package typescript

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/griffnb/nest-swag/internal/domain"
)

// decorator converts a decorator node. @Get(':id') becomes {Get [":id"]},
// @Api.Tag() becomes {Tag []}. An object argument contributes its "path"
// property when present, otherwise its full text.
func (e *extractor) decorator(node *sitter.Node) domain.Annotation {
	var ann domain.Annotation
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier", "member_expression":
			ann.Name = lastSegment(e.text(child))
		case "call_expression":
			if fn := child.ChildByFieldName("function"); fn != nil {
				ann.Name = lastSegment(e.text(fn))
			}
			if args := child.ChildByFieldName("arguments"); args != nil {
				ann.Args = e.arguments(args)
			}
		}
	}
	return ann
}

func (e *extractor) arguments(node *sitter.Node) []string {
	var args []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		arg := node.NamedChild(i)
		switch arg.Type() {
		case "comment":
			continue
		case "string", "template_string":
			args = append(args, domain.UnquoteLiteral(e.text(arg)))
		case "object":
			args = append(args, e.objectPath(arg))
		default:
			args = append(args, e.text(arg))
		}
	}
	return args
}

func (e *extractor) objectPath(node *sitter.Node) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		pair := node.NamedChild(i)
		if pair.Type() != "pair" {
			continue
		}
		key := domain.UnquoteLiteral(e.text(pair.ChildByFieldName("key")))
		if key == "path" {
			return domain.UnquoteLiteral(e.text(pair.ChildByFieldName("value")))
		}
	}
	return e.text(node)
}

func lastSegment(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
