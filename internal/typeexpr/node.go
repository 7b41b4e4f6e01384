package typeexpr

import (
	"strings"
)

// Kind tags a Node.
type Kind int

const (
	// KindName is a bare type name such as "User" or "string".
	KindName Kind = iota
	// KindArray is an element type followed by [].
	KindArray
	// KindUnion is a list of alternatives separated by |.
	KindUnion
	// KindIntersection is a list of types separated by &.
	KindIntersection
	// KindObject is an inline object literal type.
	KindObject
	// KindLiteral is a string, number or boolean literal type.
	KindLiteral
	// KindTuple is a fixed length [A, B] list.
	KindTuple
	// KindFunction is a function type (a) => b.
	KindFunction
)

// Node is one parsed type expression.
type Node struct {
	Kind Kind

	// Name holds the identifier for KindName and the literal text for KindLiteral.
	Name string

	// Elem is the element of a KindArray.
	Elem *Node

	// Members of a KindUnion, KindIntersection or KindTuple, in source order.
	Members []*Node

	// Fields of a KindObject, in source order.
	Fields []Field
}

// Field is a member of an inline object type.
type Field struct {
	Name     string
	Optional bool
	Type     *Node
}

// LiteralFamily returns "string", "number" or "boolean" for a literal node.
func (n *Node) LiteralFamily() string {
	if n == nil || n.Kind != KindLiteral {
		return ""
	}
	switch {
	case n.Name == "true" || n.Name == "false":
		return "boolean"
	case len(n.Name) > 0 && (n.Name[0] == '\'' || n.Name[0] == '"' || n.Name[0] == '`'):
		return "string"
	default:
		return "number"
	}
}

// String renders the canonical text of the node. Equal trees render equally.
func (n *Node) String() string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	switch n.Kind {
	case KindName, KindLiteral:
		b.WriteString(n.Name)
	case KindFunction:
		b.WriteString("Function")
	case KindArray:
		if n.Elem.Kind == KindUnion || n.Elem.Kind == KindIntersection || n.Elem.Kind == KindFunction {
			b.WriteByte('(')
			n.Elem.write(b)
			b.WriteByte(')')
		} else {
			n.Elem.write(b)
		}
		b.WriteString("[]")
	case KindUnion:
		writeJoined(b, n.Members, " | ")
	case KindIntersection:
		writeJoined(b, n.Members, " & ")
	case KindTuple:
		b.WriteByte('[')
		writeJoined(b, n.Members, ", ")
		b.WriteByte(']')
	case KindObject:
		if len(n.Fields) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{ ")
		for i, f := range n.Fields {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(f.Name)
			if f.Optional {
				b.WriteByte('?')
			}
			b.WriteString(": ")
			f.Type.write(b)
		}
		b.WriteString(" }")
	}
}

func writeJoined(b *strings.Builder, nodes []*Node, sep string) {
	for i, m := range nodes {
		if i > 0 {
			b.WriteString(sep)
		}
		if m.Kind == KindUnion || m.Kind == KindIntersection {
			b.WriteByte('(')
			m.write(b)
			b.WriteByte(')')
			continue
		}
		m.write(b)
	}
}
