package policy

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/lexvault/lexvault/internal/shared"
)

// The condition grammar is deliberately small: comparisons, boolean
// connectives, list membership and dotted field access rooted at the three
// request bindings. There are no function calls, no indexing and no way to
// reach ambient state, so a policy can be audited by reading it.
//
//	or     := and ( "||" and )*
//	and    := unary ( "&&" unary )*
//	unary  := "!" unary | cmp
//	cmp    := operand ( ( "==" | "!=" | "<" | "<=" | ">" | ">=" | "in" ) operand )?
//	operand:= literal | list | path | "(" or ")"
//	path   := ("user" | "resource" | "environment") ( "." ident )*

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokOp     // == != < <= > >= && || !
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokDot
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	src string
	pos int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && unicode.IsSpace(rune(l.src[l.pos])) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}
	start := l.pos
	c := l.src[l.pos]

	switch c {
	case '(':
		l.pos++
		return token{tokLParen, "(", start}, nil
	case ')':
		l.pos++
		return token{tokRParen, ")", start}, nil
	case '[':
		l.pos++
		return token{tokLBracket, "[", start}, nil
	case ']':
		l.pos++
		return token{tokRBracket, "]", start}, nil
	case ',':
		l.pos++
		return token{tokComma, ",", start}, nil
	case '.':
		l.pos++
		return token{tokDot, ".", start}, nil
	case '\'', '"':
		quote := c
		l.pos++
		var sb strings.Builder
		for l.pos < len(l.src) && l.src[l.pos] != quote {
			if l.src[l.pos] == '\\' && l.pos+1 < len(l.src) {
				l.pos++
			}
			sb.WriteByte(l.src[l.pos])
			l.pos++
		}
		if l.pos >= len(l.src) {
			return token{}, fmt.Errorf("unterminated string at %d", start)
		}
		l.pos++
		return token{tokString, sb.String(), start}, nil
	case '=', '!', '<', '>':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '=' {
			l.pos += 2
			return token{tokOp, l.src[start : start+2], start}, nil
		}
		l.pos++
		if c == '=' {
			return token{}, fmt.Errorf("single '=' at %d, use '=='", start)
		}
		return token{tokOp, string(c), start}, nil
	case '&', '|':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == c {
			l.pos += 2
			return token{tokOp, l.src[start : start+2], start}, nil
		}
		return token{}, fmt.Errorf("unexpected %q at %d", string(c), start)
	}

	if c == '-' || unicode.IsDigit(rune(c)) {
		l.pos++
		for l.pos < len(l.src) && (unicode.IsDigit(rune(l.src[l.pos])) || l.src[l.pos] == '.') {
			l.pos++
		}
		return token{tokNumber, l.src[start:l.pos], start}, nil
	}

	if unicode.IsLetter(rune(c)) || c == '_' {
		l.pos++
		for l.pos < len(l.src) {
			r := rune(l.src[l.pos])
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
				l.pos++
				continue
			}
			break
		}
		return token{tokIdent, l.src[start:l.pos], start}, nil
	}

	return token{}, fmt.Errorf("unexpected character %q at %d", string(c), start)
}

// AST nodes.

type node interface {
	eval(in Input) (any, error)
}

type literalNode struct {
	value any
}

type listNode struct {
	items []node
}

type pathNode struct {
	segments []string
}

type unaryNode struct {
	op string
	x  node
}

type binaryNode struct {
	op    string
	left  node
	right node
}

type parser struct {
	lex  *lexer
	cur  token
	peek *token
}

// Parse compiles a condition into an expression tree. Parse failures wrap
// shared.ErrValidation so the authoring surface can reject bad conditions
// up front.
func Parse(condition string) (Expr, error) {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return Expr{}, fmt.Errorf("%w: empty condition", shared.ErrValidation)
	}
	p := &parser{lex: &lexer{src: condition}}
	if err := p.advance(); err != nil {
		return Expr{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	root, err := p.parseOr()
	if err != nil {
		return Expr{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	if p.cur.kind != tokEOF {
		return Expr{}, fmt.Errorf("%w: trailing input at %d", shared.ErrValidation, p.cur.pos)
	}
	return Expr{root: root, source: condition}, nil
}

func (p *parser) advance() error {
	if p.peek != nil {
		p.cur = *p.peek
		p.peek = nil
		return nil
	}
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokOp && p.cur.text == "||" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: "||", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokOp && p.cur.text == "&&" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: "&&", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.cur.kind == tokOp && p.cur.text == "!" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: "!", x: x}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (node, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if p.cur.kind == tokOp {
		switch p.cur.text {
		case "==", "!=", "<", "<=", ">", ">=":
			op := p.cur.text
			if err := p.advance(); err != nil {
				return nil, err
			}
			right, err := p.parseOperand()
			if err != nil {
				return nil, err
			}
			return binaryNode{op: op, left: left, right: right}, nil
		}
	}
	if p.cur.kind == tokIdent && p.cur.text == "in" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return binaryNode{op: "in", left: left, right: right}, nil
	}
	return left, nil
}

func (p *parser) parseOperand() (node, error) {
	switch p.cur.kind {
	case tokString:
		value := p.cur.text
		return literalNode{value: value}, p.advance()
	case tokNumber:
		f, err := strconv.ParseFloat(p.cur.text, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q at %d", p.cur.text, p.cur.pos)
		}
		return literalNode{value: f}, p.advance()
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokRParen {
			return nil, fmt.Errorf("expected ')' at %d", p.cur.pos)
		}
		return inner, p.advance()
	case tokLBracket:
		return p.parseList()
	case tokIdent:
		switch p.cur.text {
		case "true":
			return literalNode{value: true}, p.advance()
		case "false":
			return literalNode{value: false}, p.advance()
		case "null":
			return literalNode{value: nil}, p.advance()
		}
		return p.parsePath()
	default:
		return nil, fmt.Errorf("unexpected token %q at %d", p.cur.text, p.cur.pos)
	}
}

func (p *parser) parseList() (node, error) {
	// cur is '['
	if err := p.advance(); err != nil {
		return nil, err
	}
	var items []node
	if p.cur.kind == tokRBracket {
		return listNode{}, p.advance()
	}
	for {
		item, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.cur.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if p.cur.kind != tokRBracket {
		return nil, fmt.Errorf("expected ']' at %d", p.cur.pos)
	}
	return listNode{items: items}, p.advance()
}

func (p *parser) parsePath() (node, error) {
	root := p.cur.text
	if root != bindingUser && root != bindingResource && root != bindingEnvironment {
		return nil, fmt.Errorf("unknown binding %q at %d: conditions may only reference user, resource and environment", root, p.cur.pos)
	}
	segments := []string{root}
	if err := p.advance(); err != nil {
		return nil, err
	}
	for p.cur.kind == tokDot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind != tokIdent {
			return nil, fmt.Errorf("expected field name at %d", p.cur.pos)
		}
		segments = append(segments, p.cur.text)
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return pathNode{segments: segments}, nil
}
