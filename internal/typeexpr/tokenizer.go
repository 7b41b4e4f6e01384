package typeexpr

// tokKind represents the kind of token in a type expression.
type tokKind int

const (
	tkIdent tokKind = iota
	tkString
	tkNumber
	tkPipe
	tkAmp
	tkLBrack
	tkRBrack
	tkLPar
	tkRPar
	tkLBrace
	tkRBrace
	tkColon
	tkSemi
	tkComma
	tkQuestion
	tkArrow
	tkOther
	tkEOF
)

type token struct {
	kind tokKind
	text string
}

// tokenize never fails; characters it does not understand become tkOther
// tokens so the parser can reject them.
func tokenize(s string) []token {
	var toks []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '\'' || c == '"' || c == '`':
			j := i + 1
			for j < len(s) && s[j] != c {
				if s[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(s) {
				toks = append(toks, token{kind: tkOther, text: s[i:]})
				i = len(s)
				continue
			}
			toks = append(toks, token{kind: tkString, text: s[i : j+1]})
			i = j + 1
		case isDigit(c) || (c == '-' && i+1 < len(s) && isDigit(s[i+1])):
			j := i + 1
			for j < len(s) && (isDigit(s[j]) || s[j] == '.' || s[j] == '_' || s[j] == 'e' || s[j] == 'x') {
				j++
			}
			toks = append(toks, token{kind: tkNumber, text: s[i:j]})
			i = j
		case isIdentChar(c):
			j := i
			for j < len(s) && isIdentChar(s[j]) {
				j++
			}
			toks = append(toks, token{kind: tkIdent, text: s[i:j]})
			i = j
		case c == '=' && i+1 < len(s) && s[i+1] == '>':
			toks = append(toks, token{kind: tkArrow, text: "=>"})
			i += 2
		default:
			toks = append(toks, token{kind: punct(c), text: string(c)})
			i++
		}
	}
	return append(toks, token{kind: tkEOF})
}

func punct(c byte) tokKind {
	switch c {
	case '|':
		return tkPipe
	case '&':
		return tkAmp
	case '[':
		return tkLBrack
	case ']':
		return tkRBrack
	case '(':
		return tkLPar
	case ')':
		return tkRPar
	case '{':
		return tkLBrace
	case '}':
		return tkRBrace
	case ':':
		return tkColon
	case ';':
		return tkSemi
	case ',':
		return tkComma
	case '?':
		return tkQuestion
	}
	return tkOther
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || isDigit(c) || c == '_' || c == '.' || c == '$'
}
