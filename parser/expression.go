package parser

import (
	"github.com/sansecio/hexpat/ast"
	"github.com/sansecio/hexpat/token"
)

// parseExpression parses a full expression. Precedence from loosest to
// tightest: ?:, ||, ^^, &&, |, ^, &, == !=, < > <= >=, << >>, + -, * / %,
// unary, then postfix paths and primaries.
func (p *Parser) parseExpression() (ast.Node, error) {
	return p.parseTernary()
}

// (parseBooleanOr) [? (parseBooleanOr) : (parseBooleanOr)]...
func (p *Parser) parseTernary() (ast.Node, error) {
	node, err := p.parseBooleanOr()
	if err != nil {
		return nil, err
	}
	for p.sequence(operator(token.OpTernary)) {
		line := p.prev(1).Line
		second, err := p.parseBooleanOr()
		if err != nil {
			return nil, err
		}
		if !p.sequence(operator(token.OpInherit)) {
			return nil, p.errorf("expected ':' in ternary expression")
		}
		third, err := p.parseBooleanOr()
		if err != nil {
			return nil, err
		}
		node = &ast.TernaryExpr{
			Meta:   ast.Meta{Line: line},
			Op:     token.OpTernary,
			First:  node,
			Second: second,
			Third:  third,
		}
	}
	return node, nil
}

// binary parses a left-associative chain of next separated by ops.
func (p *Parser) binary(next func() (ast.Node, error), ops ...token.Operator) (ast.Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.binaryOperator(ops)
		if !ok {
			return left, nil
		}
		line := p.prev(1).Line
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ast.MathExpr{Meta: ast.Meta{Line: line}, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) binaryOperator(ops []token.Operator) (token.Operator, bool) {
	for _, op := range ops {
		if p.sequence(operator(op)) {
			return op, true
		}
	}
	return 0, false
}

func (p *Parser) parseBooleanOr() (ast.Node, error) {
	return p.binary(p.parseBooleanXor, token.OpBoolOr)
}

func (p *Parser) parseBooleanXor() (ast.Node, error) {
	return p.binary(p.parseBooleanAnd, token.OpBoolXor)
}

func (p *Parser) parseBooleanAnd() (ast.Node, error) {
	return p.binary(p.parseBinaryOr, token.OpBoolAnd)
}

func (p *Parser) parseBinaryOr() (ast.Node, error) {
	return p.binary(p.parseBinaryXor, token.OpBitOr)
}

func (p *Parser) parseBinaryXor() (ast.Node, error) {
	return p.binary(p.parseBinaryAnd, token.OpBitXor)
}

func (p *Parser) parseBinaryAnd() (ast.Node, error) {
	return p.binary(p.parseEquality, token.OpBitAnd)
}

func (p *Parser) parseEquality() (ast.Node, error) {
	return p.binary(p.parseRelation, token.OpEqual, token.OpNotEqual)
}

func (p *Parser) parseRelation() (ast.Node, error) {
	return p.binary(p.parseShift, token.OpLess, token.OpGreater, token.OpLessEqual, token.OpGreaterEqual)
}

func (p *Parser) parseShift() (ast.Node, error) {
	return p.binary(p.parseAdditive, token.OpShiftLeft, token.OpShiftRight)
}

func (p *Parser) parseAdditive() (ast.Node, error) {
	return p.binary(p.parseMultiplicative, token.OpPlus, token.OpMinus)
}

func (p *Parser) parseMultiplicative() (ast.Node, error) {
	return p.binary(p.parseUnary, token.OpStar, token.OpSlash, token.OpPercent)
}

// <+|-|!|~> (parseUnary) | (parseFactor)
func (p *Parser) parseUnary() (ast.Node, error) {
	if p.oneOf(operator(token.OpPlus), operator(token.OpMinus), operator(token.OpBoolNot), operator(token.OpBitNot)) {
		op := p.prev(1)
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Meta: ast.Meta{Line: op.Line}, Op: op.Operator, Operand: operand}, nil
	}
	return p.parseFactor()
}

// Integer | ( expr ) | call | Identifier::Identifier... | path | $ |
// addressof(path) | sizeof(path)
func (p *Parser) parseFactor() (ast.Node, error) {
	line := p.current().Line
	switch {
	case p.sequence(integer):
		return &ast.IntegerLiteral{Meta: ast.Meta{Line: line}, Value: p.prev(1).Literal}, nil

	case p.sequence(separator(token.SepRoundOpen)):
		node, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if !p.sequence(separator(token.SepRoundClose)) {
			return nil, p.errorf("expected closing parenthesis")
		}
		return node, nil

	case p.peekFunctionCall():
		return p.parseFunctionCall(line)

	case p.sequence(identifier, separator(token.SepScope)):
		path := []string{p.prev(2).Text}
		for {
			if !p.sequence(identifier) {
				return nil, p.errorf("expected member name")
			}
			path = append(path, p.prev(1).Text)
			if !p.sequence(separator(token.SepScope)) {
				break
			}
		}
		return &ast.ScopeResolution{Meta: ast.Meta{Line: line}, Path: path}, nil

	case p.oneOf(identifier, keyword(token.KeywordParent)):
		return p.parseRValue()

	case p.sequence(operator(token.OpDollar)):
		return &ast.CurrentOffset{Meta: ast.Meta{Line: line}}, nil

	case p.peek(anyOf(operator(token.OpAddressOf), operator(token.OpSizeOf)), separator(token.SepRoundOpen)):
		p.pos += 2
		op := p.prev(2).Operator
		if !p.oneOf(identifier, keyword(token.KeywordParent)) {
			return nil, p.errorf("expected rvalue identifier")
		}
		target, err := p.parseRValue()
		if err != nil {
			return nil, err
		}
		if !p.sequence(separator(token.SepRoundClose)) {
			return nil, p.errorf("expected closing parenthesis")
		}
		return &ast.TypeOperator{Meta: ast.Meta{Line: line}, Op: op, Target: target}, nil

	case p.peek(separator(token.SepEndOfProgram)):
		return nil, p.errorf("unexpected end of program")
	}
	return nil, p.errorf("expected integer or parenthesis, got '%s'", p.current())
}

// <Identifier|parent>[ '[' expr ']' ][.<Identifier|parent>...] with the
// first name already consumed.
func (p *Parser) parseRValue() (*ast.RValue, error) {
	rv := &ast.RValue{Meta: ast.Meta{Line: p.prev(1).Line}}
	for {
		tok := p.prev(1)
		if tok.Kind == token.KindKeyword {
			rv.Path = append(rv.Path, ast.PathSegment{Name: "parent", Parent: true})
		} else {
			rv.Path = append(rv.Path, ast.PathSegment{Name: tok.Text})
		}

		for p.sequence(separator(token.SepSquareOpen)) {
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if !p.sequence(separator(token.SepSquareClose)) {
				return nil, p.errorf("expected closing ']' at end of array indexing")
			}
			rv.Path = append(rv.Path, ast.PathSegment{Index: index})
		}

		if !p.sequence(separator(token.SepDot)) {
			return rv, nil
		}
		if !p.oneOf(identifier, keyword(token.KeywordParent)) {
			return nil, p.errorf("expected member name or 'parent' keyword")
		}
	}
}
