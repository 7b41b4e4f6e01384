package typescript

import (
	"context"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/griffnb/nest-swag/internal/domain"
)

// ParseCalls returns the method calls named in methods, in source order.
// Chained calls like new DocumentBuilder().setTitle('a').setVersion('1')
// come out as {setTitle [a]}, {setVersion [1]}. Object arguments keep their
// source text.
func (p *Parser) ParseCalls(ctx context.Context, id string, content []byte, methods ...string) ([]domain.Annotation, error) {
	tree, err := p.parseTree(ctx, id, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	wanted := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		wanted[m] = struct{}{}
	}

	type call struct {
		pos uint32
		ann domain.Annotation
	}
	var calls []call

	e := &extractor{content: content}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "call_expression" {
			if fn := n.ChildByFieldName("function"); fn != nil && fn.Type() == "member_expression" {
				if prop := fn.ChildByFieldName("property"); prop != nil {
					if _, ok := wanted[e.text(prop)]; ok {
						ann := domain.Annotation{Name: e.text(prop)}
						if args := n.ChildByFieldName("arguments"); args != nil {
							ann.Args = e.callArguments(args)
						}
						calls = append(calls, call{pos: prop.StartByte(), ann: ann})
					}
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	if root := tree.RootNode(); root != nil {
		walk(root)
	}

	sort.Slice(calls, func(i, j int) bool { return calls[i].pos < calls[j].pos })
	out := make([]domain.Annotation, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.ann)
	}
	return out, nil
}

func (e *extractor) callArguments(node *sitter.Node) []string {
	var args []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		arg := node.NamedChild(i)
		switch arg.Type() {
		case "comment":
			continue
		case "string", "template_string":
			args = append(args, domain.UnquoteLiteral(e.text(arg)))
		default:
			args = append(args, e.text(arg))
		}
	}
	return args
}
