package expr

import "fmt"

// The guard grammar is deliberately closed: literals, identifiers,
// boolean/comparison/arithmetic operators and parentheses. No call,
// member, or index forms exist, so task-authored guards cannot reach
// any code path beyond namespace lookup.
//
//	expr    := or
//	or      := and (("||" | "or") and)*
//	and     := not (("&&" | "and") not)*
//	not     := ("!" | "not") not | cmp
//	cmp     := sum (("==" | "!=" | "<" | "<=" | ">" | ">=") sum)?
//	sum     := term (("+" | "-") term)*
//	term    := factor (("*" | "/" | "%") factor)*
//	factor  := "-" factor | primary
//	primary := number | string | bool | ident | "(" expr ")"
//
// Unary minus binds tightest; "not" binds looser than comparison, so
// "not x > 5" negates the comparison result.

type node interface{}

type litNode struct {
	value any // int64, float64, string, or bool
}

type identNode struct {
	name string
}

type unaryNode struct {
	op    tokenKind // tokNot or tokMinus
	child node
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

type parser struct {
	toks []token
	pos  int
}

func parse(input string) (node, error) {
	toks, err := scan(input)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at position %d", tok.text, tok.pos)
	}
	return n, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: tokOr, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: tokAnd, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (node, error) {
	if p.peek().kind == tokNot {
		p.next()
		child, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: tokNot, child: child}, nil
	}
	return p.parseCmp()
}

func (p *parser) parseCmp() (node, error) {
	left, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	switch op := p.peek().kind; op {
	case tokEq, tokNe, tokLt, tokLe, tokGt, tokGe:
		p.next()
		right, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		return &binaryNode{op: op, left: left, right: right}, nil
	}
	return left, nil
}

func (p *parser) parseSum() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokPlus && op != tokMinus {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokStar && op != tokSlash && op != tokPct {
			return left, nil
		}
		p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseFactor() (node, error) {
	if p.peek().kind == tokMinus {
		p.next()
		child, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: tokMinus, child: child}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		if tok.isInt {
			return &litNode{value: int64(tok.num)}, nil
		}
		return &litNode{value: tok.num}, nil
	case tokString:
		return &litNode{value: tok.text}, nil
	case tokBool:
		return &litNode{value: tok.text == "true"}, nil
	case tokIdent:
		return &identNode{name: tok.text}, nil
	case tokLParen:
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis at position %d", closing.pos)
		}
		return n, nil
	case tokEOF:
		return nil, fmt.Errorf("unexpected end of expression")
	default:
		return nil, fmt.Errorf("unexpected %q at position %d", tok.text, tok.pos)
	}
}
