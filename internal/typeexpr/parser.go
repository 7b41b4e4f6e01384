package typeexpr

import (
	"fmt"

	"github.com/griffnb/nest-swag/internal/domain"
)

// Parse normalizes the text and parses it. It never fails: text that does not
// parse as a whole is returned as a single KindName node holding the cleaned
// text, which later resolves to an unknown type.
func Parse(text string) *Node {
	cleaned := Normalize(text)
	if cleaned == "" {
		return &Node{Kind: KindName}
	}

	p := &parser{toks: tokenize(cleaned)}
	n, err := p.parseType()
	if err != nil || p.cur().kind != tkEOF {
		return &Node{Kind: KindName, Name: cleaned}
	}
	return n
}

// parser is a recursive descent parser over the grammar
//
//	type    := union
//	union   := '|'? inter ( '|' inter )*
//	inter   := postfix ( '&' postfix )*
//	postfix := primary ( '[' ']' )*
//	primary := '(' type ')' | fn | '{' fields '}' | '[' types ']' | literal | name
type parser struct {
	toks []token
	pos  int
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) peek(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) eat(k tokKind) bool {
	if p.cur().kind == k {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(k tokKind) error {
	if !p.eat(k) {
		return fmt.Errorf("expected token %v at %d, got %q", k, p.pos, p.cur().text)
	}
	return nil
}

func (p *parser) parseType() (*Node, error) { return p.parseUnion() }

func (p *parser) parseUnion() (*Node, error) {
	p.eat(tkPipe)
	n, err := p.parseIntersection()
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tkPipe {
		return n, nil
	}
	union := &Node{Kind: KindUnion, Members: []*Node{n}}
	for p.eat(tkPipe) {
		m, err := p.parseIntersection()
		if err != nil {
			return nil, err
		}
		union.Members = append(union.Members, m)
	}
	return union, nil
}

func (p *parser) parseIntersection() (*Node, error) {
	p.eat(tkAmp)
	n, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tkAmp {
		return n, nil
	}
	inter := &Node{Kind: KindIntersection, Members: []*Node{n}}
	for p.eat(tkAmp) {
		m, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		inter.Members = append(inter.Members, m)
	}
	return inter, nil
}

func (p *parser) parsePostfix() (*Node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.cur().kind == tkLBrack && p.peek(1).kind == tkRBrack {
		p.pos += 2
		n = &Node{Kind: KindArray, Elem: n}
	}
	return n, nil
}

//nolint:exhaustive // only tokens that can start a type are handled
func (p *parser) parsePrimary() (*Node, error) {
	tok := p.cur()
	switch tok.kind {
	case tkLPar:
		if p.isFunctionType() {
			return p.parseFunction()
		}
		p.pos++
		n, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tkRPar); err != nil {
			return nil, err
		}
		return n, nil
	case tkLBrace:
		return p.parseObject()
	case tkLBrack:
		return p.parseTuple()
	case tkString, tkNumber:
		p.pos++
		return &Node{Kind: KindLiteral, Name: tok.text}, nil
	case tkIdent:
		p.pos++
		switch tok.text {
		case "true", "false":
			return &Node{Kind: KindLiteral, Name: tok.text}, nil
		case "keyof":
			if _, err := p.parsePostfix(); err != nil {
				return nil, err
			}
			return &Node{Kind: KindName, Name: "string"}, nil
		case "typeof", "readonly", "unique":
			if p.cur().kind == tkIdent || p.cur().kind == tkLPar || p.cur().kind == tkLBrace || p.cur().kind == tkLBrack {
				return p.parsePostfix()
			}
		}
		return &Node{Kind: KindName, Name: tok.text}, nil
	}
	return nil, fmt.Errorf("unexpected token %q at %d", tok.text, p.pos)
}

// isFunctionType reports whether the '(' at the cursor opens a parameter
// list followed by =>.
func (p *parser) isFunctionType() bool {
	end := p.matching(p.pos)
	return end >= 0 && end+1 < len(p.toks) && p.toks[end+1].kind == tkArrow
}

// matching returns the index of the bracket closing the one at open, or -1.
func (p *parser) matching(open int) int {
	depth := 0
	for i := open; i < len(p.toks); i++ {
		switch p.toks[i].kind {
		case tkLPar, tkLBrack, tkLBrace:
			depth++
		case tkRPar, tkRBrack, tkRBrace:
			depth--
			if depth == 0 {
				return i
			}
		case tkEOF:
			return -1
		}
	}
	return -1
}

func (p *parser) parseFunction() (*Node, error) {
	p.pos = p.matching(p.pos) + 1
	if err := p.expect(tkArrow); err != nil {
		return nil, err
	}
	if _, err := p.parseType(); err != nil {
		return nil, err
	}
	return &Node{Kind: KindFunction}, nil
}

func (p *parser) parseTuple() (*Node, error) {
	p.pos++
	tuple := &Node{Kind: KindTuple}
	for p.cur().kind != tkRBrack {
		m, err := p.parseType()
		if err != nil {
			return nil, err
		}
		p.eat(tkQuestion)
		tuple.Members = append(tuple.Members, m)
		if !p.eat(tkComma) {
			break
		}
	}
	if err := p.expect(tkRBrack); err != nil {
		return nil, err
	}
	return tuple, nil
}

func (p *parser) parseObject() (*Node, error) {
	p.pos++
	obj := &Node{Kind: KindObject}
	for !p.eat(tkRBrace) {
		if p.cur().kind == tkEOF {
			return nil, fmt.Errorf("unterminated object type")
		}

		if p.cur().kind == tkIdent && p.cur().text == "readonly" && p.peek(1).kind != tkColon && p.peek(1).kind != tkQuestion {
			p.pos++
		}

		// index signature [key: string]: T has no stable property name
		if p.cur().kind == tkLBrack {
			end := p.matching(p.pos)
			if end < 0 {
				return nil, fmt.Errorf("unterminated index signature")
			}
			p.pos = end + 1
			p.eat(tkQuestion)
			if err := p.expect(tkColon); err != nil {
				return nil, err
			}
			if _, err := p.parseType(); err != nil {
				return nil, err
			}
			p.skipSeparator()
			continue
		}

		tok := p.cur()
		if tok.kind != tkIdent && tok.kind != tkString && tok.kind != tkNumber {
			return nil, fmt.Errorf("unexpected token %q in object type", tok.text)
		}
		p.pos++
		field := Field{Name: domain.UnquoteLiteral(tok.text)}
		field.Optional = p.eat(tkQuestion)

		if p.cur().kind == tkLPar {
			end := p.matching(p.pos)
			if end < 0 {
				return nil, fmt.Errorf("unterminated method signature")
			}
			p.pos = end + 1
			if p.eat(tkColon) {
				if _, err := p.parseType(); err != nil {
					return nil, err
				}
			}
			field.Type = &Node{Kind: KindFunction}
		} else {
			if err := p.expect(tkColon); err != nil {
				return nil, err
			}
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			field.Type = t
		}

		obj.Fields = append(obj.Fields, field)
		p.skipSeparator()
	}
	return obj, nil
}

func (p *parser) skipSeparator() {
	if !p.eat(tkSemi) {
		p.eat(tkComma)
	}
}
