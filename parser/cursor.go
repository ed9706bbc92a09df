package parser

import (
	"github.com/sansecio/hexpat/token"
)

// matcher tests a single token.
type matcher func(token.Token) bool

func keyword(k token.Keyword) matcher {
	return func(t token.Token) bool { return t.Kind == token.KindKeyword && t.Keyword == k }
}

func operator(o token.Operator) matcher {
	return func(t token.Token) bool { return t.Kind == token.KindOperator && t.Operator == o }
}

func separator(s token.Separator) matcher {
	return func(t token.Token) bool { return t.Kind == token.KindSeparator && t.Separator == s }
}

func valueType(m token.ValueType) matcher {
	return func(t token.Token) bool { return t.Kind == token.KindValueType && t.Type.Matches(m) }
}

func identifier(t token.Token) bool { return t.Kind == token.KindIdentifier }
func integer(t token.Token) bool    { return t.Kind == token.KindInteger }
func str(t token.Token) bool        { return t.Kind == token.KindString }

var endian = anyOf(keyword(token.KeywordLittleEndian), keyword(token.KeywordBigEndian))

func anyOf(ms ...matcher) matcher {
	return func(t token.Token) bool {
		for _, m := range ms {
			if m(t) {
				return true
			}
		}
		return false
	}
}

// begin saves the cursor so a failed match can be undone with reset.
func (p *Parser) begin() int { return p.pos }

func (p *Parser) reset(mark int) { p.pos = mark }

func (p *Parser) current() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

// prev returns the token n positions behind the cursor, so prev(1) is the
// token consumed last.
func (p *Parser) prev(n int) token.Token {
	return p.tokens[p.pos-n]
}

func (p *Parser) peek(ms ...matcher) bool {
	for i, m := range ms {
		if p.pos+i >= len(p.tokens) || !m(p.tokens[p.pos+i]) {
			return false
		}
	}
	return true
}

// sequence consumes the tokens matching ms in order, or nothing at all.
func (p *Parser) sequence(ms ...matcher) bool {
	if !p.peek(ms...) {
		return false
	}
	p.pos += len(ms)
	return true
}

// oneOf consumes a single token matching the first applicable matcher.
func (p *Parser) oneOf(ms ...matcher) bool {
	return p.sequence(anyOf(ms...))
}

// optional consumes a matching token if present and reports whether it did.
func (p *Parser) optional(m matcher) bool {
	return p.sequence(m)
}
