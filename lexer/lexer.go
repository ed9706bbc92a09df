// Package lexer turns preprocessed pattern source into tokens.
package lexer

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/sansecio/hexpat/token"
)

// Error is a lexing failure at a source line.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// definition is the raw scanner. Rules are tried in order, so the
// unterminated forms only fire when the complete form failed to match.
var definition = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Whitespace", Pattern: `[ \t\r\n\f\v]+`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "BlockComment", Pattern: `/\*(?:[^*]|\*+[^*/])*\*+/`},
		{Name: "OpenComment", Pattern: `/\*`},
		{Name: "String", Pattern: `"(?:[^"\\\n]|\\.)*"`},
		{Name: "OpenString", Pattern: `"`},
		{Name: "Char", Pattern: `'(?:[^'\\\n]|\\.)*'`},
		{Name: "OpenChar", Pattern: `'`},
		{Name: "Number", Pattern: `[0-9][0-9A-Za-z_]*(?:\.[0-9][0-9A-Za-z_]*)?`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
		{Name: "Punct", Pattern: `::|<<|>>|<=|>=|==|!=|&&|\|\||\^\^|[@=:+\-*/%|&^~<>!?$(){}\[\],.;]`},
		{Name: "Invalid", Pattern: `.`},
	},
})

var symbols = definition.Symbols()

// Lex tokenizes src. The result always ends with an EndOfProgram separator.
func Lex(src string) ([]token.Token, error) {
	lx, err := definition.LexString("", src)
	if err != nil {
		return nil, &Error{Line: 1, Message: err.Error()}
	}

	var tokens []token.Token
	line := 1
	for {
		raw, err := lx.Next()
		if err != nil {
			return nil, &Error{Line: line, Message: err.Error()}
		}
		if raw.EOF() {
			break
		}
		line = raw.Pos.Line

		tok, skip, err := convert(raw)
		if err != nil {
			return nil, &Error{Line: line, Message: err.Error()}
		}
		if skip {
			continue
		}
		tok.Line = line
		tokens = append(tokens, tok)
	}

	tokens = append(tokens, token.Token{Kind: token.KindSeparator, Separator: token.SepEndOfProgram, Line: line})
	return tokens, nil
}

func convert(raw lexer.Token) (tok token.Token, skip bool, err error) {
	switch raw.Type {
	case symbols["Whitespace"], symbols["LineComment"], symbols["BlockComment"]:
		return tok, true, nil
	case symbols["OpenComment"]:
		return tok, false, fmt.Errorf("unterminated comment")
	case symbols["OpenString"]:
		return tok, false, fmt.Errorf("unterminated string literal")
	case symbols["OpenChar"]:
		return tok, false, fmt.Errorf("unterminated character literal")
	case symbols["String"]:
		s, err := unescape(raw.Value[1 : len(raw.Value)-1])
		if err != nil {
			return tok, false, err
		}
		return token.Token{Kind: token.KindString, Text: s}, false, nil
	case symbols["Char"]:
		s, err := unescape(raw.Value[1 : len(raw.Value)-1])
		if err != nil {
			return tok, false, err
		}
		if len(s) != 1 {
			return tok, false, fmt.Errorf("invalid character literal %s", raw.Value)
		}
		return token.Token{Kind: token.KindInteger, Literal: token.Char(s[0])}, false, nil
	case symbols["Number"]:
		lit, err := parseNumber(raw.Value)
		if err != nil {
			return tok, false, err
		}
		return token.Token{Kind: token.KindInteger, Literal: lit}, false, nil
	case symbols["Ident"]:
		return identifier(raw.Value), false, nil
	case symbols["Punct"]:
		if sep, ok := token.LookupSeparator(raw.Value); ok {
			return token.Token{Kind: token.KindSeparator, Separator: sep}, false, nil
		}
		if op, ok := token.LookupOperator(raw.Value); ok {
			return token.Token{Kind: token.KindOperator, Operator: op}, false, nil
		}
	}
	return tok, false, fmt.Errorf("unknown token %q", raw.Value)
}

func identifier(name string) token.Token {
	switch name {
	case "true":
		return token.Token{Kind: token.KindInteger, Literal: token.Bool(true)}
	case "false":
		return token.Token{Kind: token.KindInteger, Literal: token.Bool(false)}
	case "addressof", "sizeof":
		op, _ := token.LookupOperator(name)
		return token.Token{Kind: token.KindOperator, Operator: op}
	}
	if kw, ok := token.LookupKeyword(name); ok {
		return token.Token{Kind: token.KindKeyword, Keyword: kw}
	}
	if vt, ok := token.LookupValueType(name); ok {
		return token.Token{Kind: token.KindValueType, Type: vt}
	}
	return token.Token{Kind: token.KindIdentifier, Text: name}
}
