// Package token defines the lexical vocabulary of the pattern language:
// token kinds, keywords, operators, separators, value types and the numeric
// literal variant shared by the lexer, parser and evaluator.
package token

import "fmt"

// Kind classifies a token.
type Kind uint8

const (
	KindKeyword Kind = iota
	KindValueType
	KindOperator
	KindInteger
	KindString
	KindIdentifier
	KindSeparator
)

func (k Kind) String() string {
	switch k {
	case KindKeyword:
		return "keyword"
	case KindValueType:
		return "value type"
	case KindOperator:
		return "operator"
	case KindInteger:
		return "integer"
	case KindString:
		return "string"
	case KindIdentifier:
		return "identifier"
	case KindSeparator:
		return "separator"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Keyword is a reserved word.
type Keyword uint8

const (
	KeywordStruct Keyword = iota + 1
	KeywordUnion
	KeywordUsing
	KeywordEnum
	KeywordBitfield
	KeywordLittleEndian
	KeywordBigEndian
	KeywordIf
	KeywordElse
	KeywordParent
	KeywordWhile
	KeywordFunction
	KeywordReturn
)

var keywords = map[string]Keyword{
	"struct":   KeywordStruct,
	"union":    KeywordUnion,
	"using":    KeywordUsing,
	"enum":     KeywordEnum,
	"bitfield": KeywordBitfield,
	"le":       KeywordLittleEndian,
	"be":       KeywordBigEndian,
	"if":       KeywordIf,
	"else":     KeywordElse,
	"parent":   KeywordParent,
	"while":    KeywordWhile,
	"fn":       KeywordFunction,
	"function": KeywordFunction,
	"return":   KeywordReturn,
}

// LookupKeyword reports whether name is a keyword.
func LookupKeyword(name string) (Keyword, bool) {
	k, ok := keywords[name]
	return k, ok
}

func (k Keyword) String() string {
	for name, kw := range keywords {
		if kw == k && name != "function" {
			return name
		}
	}
	return fmt.Sprintf("Keyword(%d)", uint8(k))
}

// Operator is an operator symbol or operator keyword.
type Operator uint8

const (
	OpAt Operator = iota + 1
	OpAssign
	OpInherit
	OpPlus
	OpMinus
	OpStar
	OpSlash
	OpPercent
	OpShiftLeft
	OpShiftRight
	OpBitOr
	OpBitAnd
	OpBitXor
	OpBitNot
	OpEqual
	OpNotEqual
	OpGreater
	OpLess
	OpGreaterEqual
	OpLessEqual
	OpBoolAnd
	OpBoolOr
	OpBoolXor
	OpBoolNot
	OpTernary
	OpDollar
	OpAddressOf
	OpSizeOf
)

var operatorNames = map[Operator]string{
	OpAt:           "@",
	OpAssign:       "=",
	OpInherit:      ":",
	OpPlus:         "+",
	OpMinus:        "-",
	OpStar:         "*",
	OpSlash:        "/",
	OpPercent:      "%",
	OpShiftLeft:    "<<",
	OpShiftRight:   ">>",
	OpBitOr:        "|",
	OpBitAnd:       "&",
	OpBitXor:       "^",
	OpBitNot:       "~",
	OpEqual:        "==",
	OpNotEqual:     "!=",
	OpGreater:      ">",
	OpLess:         "<",
	OpGreaterEqual: ">=",
	OpLessEqual:    "<=",
	OpBoolAnd:      "&&",
	OpBoolOr:       "||",
	OpBoolXor:      "^^",
	OpBoolNot:      "!",
	OpTernary:      "?",
	OpDollar:       "$",
	OpAddressOf:    "addressof",
	OpSizeOf:       "sizeof",
}

var operatorsBySymbol = func() map[string]Operator {
	m := make(map[string]Operator, len(operatorNames))
	for op, s := range operatorNames {
		m[s] = op
	}
	return m
}()

// LookupOperator maps an operator symbol or keyword to its Operator.
func LookupOperator(symbol string) (Operator, bool) {
	op, ok := operatorsBySymbol[symbol]
	return op, ok
}

func (o Operator) String() string {
	if s, ok := operatorNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Operator(%d)", uint8(o))
}

// Separator is punctuation that delimits constructs.
type Separator uint8

const (
	SepRoundOpen Separator = iota + 1
	SepRoundClose
	SepCurlyOpen
	SepCurlyClose
	SepSquareOpen
	SepSquareClose
	SepComma
	SepDot
	SepScope
	SepSemicolon
	SepEndOfProgram
)

var separatorNames = map[Separator]string{
	SepRoundOpen:    "(",
	SepRoundClose:   ")",
	SepCurlyOpen:    "{",
	SepCurlyClose:   "}",
	SepSquareOpen:   "[",
	SepSquareClose:  "]",
	SepComma:        ",",
	SepDot:          ".",
	SepScope:        "::",
	SepSemicolon:    ";",
	SepEndOfProgram: "<end of program>",
}

var separatorsBySymbol = func() map[string]Separator {
	m := make(map[string]Separator, len(separatorNames))
	for sep, s := range separatorNames {
		m[s] = sep
	}
	return m
}()

// LookupSeparator maps a punctuation symbol to its Separator.
func LookupSeparator(symbol string) (Separator, bool) {
	sep, ok := separatorsBySymbol[symbol]
	return sep, ok
}

func (s Separator) String() string {
	if name, ok := separatorNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Separator(%d)", uint8(s))
}

// Token is a single lexical unit with its 1-based source line.
type Token struct {
	Kind      Kind
	Keyword   Keyword
	Operator  Operator
	Separator Separator
	Type      ValueType
	Literal   Literal
	Text      string // identifier name or decoded string literal
	Line      int
}

func (t Token) String() string {
	switch t.Kind {
	case KindKeyword:
		return t.Keyword.String()
	case KindValueType:
		return t.Type.String()
	case KindOperator:
		return t.Operator.String()
	case KindInteger:
		return t.Literal.String()
	case KindString:
		return fmt.Sprintf("%q", t.Text)
	case KindIdentifier:
		return t.Text
	case KindSeparator:
		return t.Separator.String()
	default:
		return "?"
	}
}
