// Package parser builds the syntax tree of a pattern program from its tokens.
//
// The parser is a hand-written recursive descent over a token cursor. Every
// alternative is tried with begin/reset so a failed match leaves the cursor
// untouched; only the error of the last alternative surfaces.
package parser

import (
	"fmt"
	"sort"

	"github.com/sansecio/hexpat/ast"
	"github.com/sansecio/hexpat/internal/suggest"
	"github.com/sansecio/hexpat/token"
)

// Error is a parse failure at a source line.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Parser parses pattern language token streams. A Parser may be reused but
// is not safe for concurrent use.
type Parser struct {
	tokens []token.Token
	pos    int
	types  map[string]bool
}

// New creates a new parser.
func New() *Parser {
	return &Parser{}
}

// Parse turns tokens into the list of top-level declarations.
func (p *Parser) Parse(tokens []token.Token) ([]ast.Node, error) {
	if n := len(tokens); n == 0 || !separator(token.SepEndOfProgram)(tokens[n-1]) {
		line := 1
		if n > 0 {
			line = tokens[n-1].Line
		}
		tokens = append(tokens[:n:n], token.Token{Kind: token.KindSeparator, Separator: token.SepEndOfProgram, Line: line})
	}
	p.tokens = tokens
	p.pos = 0
	p.types = make(map[string]bool)

	var program []ast.Node
	for !p.sequence(separator(token.SepEndOfProgram)) {
		nodes, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program = append(program, nodes...)
	}
	if len(program) == 0 {
		return nil, p.errorf("program is empty")
	}
	return program, nil
}

// Types returns the names of all types declared by the last Parse, sorted.
func (p *Parser) Types() []string {
	names := make([]string, 0, len(p.types))
	for name := range p.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Parser) errorf(format string, args ...any) *Error {
	return &Error{Line: p.current().Line, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) errorAt(line int, format string, args ...any) *Error {
	return &Error{Line: line, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) expectSemicolon() error {
	if !p.sequence(separator(token.SepSemicolon)) {
		return p.errorAt(p.prev(1).Line, "missing ';' at end of expression")
	}
	return nil
}

/* Program */

// using, struct, union, enum, bitfield, fn, a free function call or a
// variable placement.
func (p *Parser) parseStatement() ([]ast.Node, error) {
	attrs, err := p.parseAttributes()
	if err != nil {
		return nil, err
	}
	line := p.current().Line

	var node ast.Node
	needsSemicolon := true
	if decl, ok, err := p.parseTypeDeclaration(line); err != nil {
		return nil, err
	} else if ok {
		node = decl
	} else {
		switch {
		case p.sequence(keyword(token.KeywordFunction)):
			node, err = p.parseFunctionDefinition(line)
			needsSemicolon = false
		case p.peekFunctionCall():
			node, err = p.parseFunctionCall(line)
		default:
			node, err = p.parseVariable(line, true)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := p.finishDeclaration(node, attrs, needsSemicolon); err != nil {
		return nil, err
	}
	return []ast.Node{node}, nil
}

// finishDeclaration attaches leading and trailing attributes and consumes
// the terminating ';'.
func (p *Parser) finishDeclaration(node ast.Node, attrs []*ast.Attribute, needsSemicolon bool) error {
	trailing, err := p.parseAttributes()
	if err != nil {
		return err
	}
	for _, a := range append(attrs, trailing...) {
		ast.AddAttribute(node, a)
	}
	if needsSemicolon {
		return p.expectSemicolon()
	}
	p.optional(separator(token.SepSemicolon))
	return nil
}

// parseTypeDeclaration handles the named type forms. ok is false when the
// cursor is not at a type declaration.
func (p *Parser) parseTypeDeclaration(line int) (node ast.Node, ok bool, err error) {
	switch {
	case p.sequence(keyword(token.KeywordUsing), identifier, operator(token.OpAssign)):
		node, err = p.parseUsing(line)
	case p.sequence(keyword(token.KeywordStruct), identifier, separator(token.SepCurlyOpen)):
		node, err = p.parseStruct(line, p.prev(2).Text)
	case p.sequence(keyword(token.KeywordUnion), identifier, separator(token.SepCurlyOpen)):
		node, err = p.parseUnion(line, p.prev(2).Text)
	case p.sequence(keyword(token.KeywordEnum), identifier, operator(token.OpInherit)):
		node, err = p.parseEnum(line, p.prev(2).Text)
	case p.sequence(keyword(token.KeywordBitfield), identifier, separator(token.SepCurlyOpen)):
		node, err = p.parseBitfield(line, p.prev(2).Text)
	default:
		return nil, false, nil
	}
	return node, true, err
}

func (p *Parser) declareType(line int, name string) error {
	if p.types[name] {
		return p.errorAt(line, "redefinition of type '%s'", name)
	}
	p.types[name] = true
	return nil
}

/* Types */

// using Identifier = (parseType)
func (p *Parser) parseUsing(line int) (ast.Node, error) {
	name := p.prev(2).Text
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if ref := unresolved(typ); ref != "" && !p.types[ref] {
		return nil, p.unknownType(line, ref)
	}
	if err := p.declareType(line, name); err != nil {
		return nil, err
	}

	decl := &ast.TypeDecl{Meta: ast.Meta{Line: line}, Name: name, Type: typ}
	if inner, ok := typ.(*ast.TypeDecl); ok && inner.Name == "" {
		decl.Type, decl.Endian = inner.Type, inner.Endian
	}
	return decl, nil
}

// struct Identifier { <(parseMember)...> }
func (p *Parser) parseStruct(line int, name string) (ast.Node, error) {
	if err := p.declareType(line, name); err != nil {
		return nil, err
	}
	members, err := p.parseMembers()
	if err != nil {
		return nil, err
	}
	return &ast.TypeDecl{
		Meta: ast.Meta{Line: line},
		Name: name,
		Type: &ast.Struct{Meta: ast.Meta{Line: line}, Members: members},
	}, nil
}

// union Identifier { <(parseMember)...> }
func (p *Parser) parseUnion(line int, name string) (ast.Node, error) {
	if err := p.declareType(line, name); err != nil {
		return nil, err
	}
	members, err := p.parseMembers()
	if err != nil {
		return nil, err
	}
	return &ast.TypeDecl{
		Meta: ast.Meta{Line: line},
		Name: name,
		Type: &ast.Union{Meta: ast.Meta{Line: line}, Members: members},
	}, nil
}

// enum Identifier : (parseType) { <Identifier [= (parseExpression)], ...> }
func (p *Parser) parseEnum(line int, name string) (ast.Node, error) {
	if err := p.declareType(line, name); err != nil {
		return nil, err
	}
	enum, err := p.parseEnumBody(line)
	if err != nil {
		return nil, err
	}
	return &ast.TypeDecl{Meta: ast.Meta{Line: line}, Name: name, Type: enum}, nil
}

func (p *Parser) parseEnumBody(line int) (*ast.Enum, error) {
	underlying, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if decl, ok := underlying.(*ast.TypeDecl); ok && decl.Endian != nil {
		return nil, p.errorAt(line, "underlying type may not have an endian specification")
	}
	if !p.sequence(separator(token.SepCurlyOpen)) {
		return nil, p.errorf("expected '{' after enum underlying type")
	}

	enum := &ast.Enum{Meta: ast.Meta{Line: line}, Underlying: underlying}
	for !p.sequence(separator(token.SepCurlyClose)) {
		switch {
		case p.sequence(identifier, operator(token.OpAssign)):
			entry := &ast.EnumEntry{Name: p.prev(2).Text}
			if entry.Value, err = p.parseExpression(); err != nil {
				return nil, err
			}
			enum.Entries = append(enum.Entries, entry)
		case p.sequence(identifier):
			enum.Entries = append(enum.Entries, &ast.EnumEntry{Name: p.prev(1).Text})
		case p.peek(separator(token.SepEndOfProgram)):
			return nil, p.errorf("unexpected end of program")
		default:
			return nil, p.errorf("invalid enum entry")
		}

		if !p.sequence(separator(token.SepComma)) {
			if p.sequence(separator(token.SepCurlyClose)) {
				break
			}
			return nil, p.errorf("missing ',' between enum entries")
		}
	}
	return enum, nil
}

// bitfield Identifier { <Identifier : (parseExpression);...> }
func (p *Parser) parseBitfield(line int, name string) (ast.Node, error) {
	if err := p.declareType(line, name); err != nil {
		return nil, err
	}
	bf, err := p.parseBitfieldBody(line)
	if err != nil {
		return nil, err
	}
	return &ast.TypeDecl{Meta: ast.Meta{Line: line}, Name: name, Type: bf}, nil
}

func (p *Parser) parseBitfieldBody(line int) (*ast.Bitfield, error) {
	bf := &ast.Bitfield{Meta: ast.Meta{Line: line}}
	for !p.sequence(separator(token.SepCurlyClose)) {
		var entry *ast.BitfieldEntry
		switch {
		case p.sequence(identifier, operator(token.OpInherit)):
			entry = &ast.BitfieldEntry{Name: p.prev(2).Text}
		case p.sequence(valueType(token.Padding), operator(token.OpInherit)):
			entry = &ast.BitfieldEntry{}
		case p.peek(separator(token.SepEndOfProgram)):
			return nil, p.errorf("unexpected end of program")
		default:
			return nil, p.errorf("invalid bitfield member")
		}
		size, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		entry.Size = size
		bf.Entries = append(bf.Entries, entry)
		if err := p.expectSemicolon(); err != nil {
			return nil, err
		}
	}
	return bf, nil
}

// [be|le] <builtin | Identifier[::Identifier...] | anonymous struct/union/enum/bitfield>
//
// Identifiers are not checked against the declared types here since pointer
// targets may name types declared later.
func (p *Parser) parseType() (ast.Node, error) {
	line := p.current().Line
	var order *token.Endian
	if p.optional(endian) {
		e := token.Little
		if p.prev(1).Keyword == token.KeywordBigEndian {
			e = token.Big
		}
		order = &e
	}

	var typ ast.Node
	switch {
	case p.peek(valueType(token.Padding)):
		return nil, p.errorf("padding may only be used as padding[size]")
	case p.sequence(valueType(token.Any)):
		typ = &ast.BuiltinType{Meta: ast.Meta{Line: line}, Type: p.prev(1).Type}
	case p.sequence(keyword(token.KeywordStruct), separator(token.SepCurlyOpen)):
		members, err := p.parseMembers()
		if err != nil {
			return nil, err
		}
		typ = &ast.Struct{Meta: ast.Meta{Line: line}, Members: members}
	case p.sequence(keyword(token.KeywordUnion), separator(token.SepCurlyOpen)):
		members, err := p.parseMembers()
		if err != nil {
			return nil, err
		}
		typ = &ast.Union{Meta: ast.Meta{Line: line}, Members: members}
	case p.sequence(keyword(token.KeywordEnum), operator(token.OpInherit)):
		enum, err := p.parseEnumBody(line)
		if err != nil {
			return nil, err
		}
		typ = enum
	case p.sequence(keyword(token.KeywordBitfield), separator(token.SepCurlyOpen)):
		bf, err := p.parseBitfieldBody(line)
		if err != nil {
			return nil, err
		}
		typ = bf
	case p.sequence(identifier):
		typ = &ast.TypeRef{Meta: ast.Meta{Line: line}, Name: p.qualifiedName()}
	case p.peek(separator(token.SepEndOfProgram)):
		return nil, p.errorf("unexpected end of program")
	default:
		return nil, p.errorf("expected type, got '%s'", p.current())
	}

	if order != nil {
		return &ast.TypeDecl{Meta: ast.Meta{Line: line}, Type: typ, Endian: order}, nil
	}
	return typ, nil
}

// qualifiedName extends the identifier consumed last with any ::Identifier
// continuation.
func (p *Parser) qualifiedName() string {
	name := p.prev(1).Text
	for p.sequence(separator(token.SepScope), identifier) {
		name += "::" + p.prev(1).Text
	}
	return name
}

// unresolved returns the name of a type reference in typ, or "".
func unresolved(typ ast.Node) string {
	switch t := typ.(type) {
	case *ast.TypeRef:
		return t.Name
	case *ast.TypeDecl:
		if t.Name == "" {
			return unresolved(t.Type)
		}
	}
	return ""
}

func (p *Parser) unknownType(line int, name string) *Error {
	return p.errorAt(line, "unknown type '%s'%s", name, suggest.Hint(name, p.Types()))
}

func isUnsignedBuiltin(typ ast.Node) bool {
	switch t := typ.(type) {
	case *ast.BuiltinType:
		return t.Type.IsUnsigned()
	case *ast.TypeDecl:
		return t.Name == "" && isUnsignedBuiltin(t.Type)
	}
	return false
}

/* Members and variables */

// { <(parseMember)...> } with the opening brace already consumed.
func (p *Parser) parseMembers() ([]ast.Node, error) {
	var members []ast.Node
	for !p.sequence(separator(token.SepCurlyClose)) {
		nodes, err := p.parseMember()
		if err != nil {
			return nil, err
		}
		members = append(members, nodes...)
	}
	return members, nil
}

// A variable, array, pointer, padding, conditional, while loop, function
// call or nested type declaration inside a struct or union.
func (p *Parser) parseMember() ([]ast.Node, error) {
	attrs, err := p.parseAttributes()
	if err != nil {
		return nil, err
	}
	line := p.current().Line

	var node ast.Node
	needsSemicolon := true
	if decl, ok, err := p.parseTypeDeclaration(line); err != nil {
		return nil, err
	} else if ok {
		node = decl
	} else {
		switch {
		case p.sequence(keyword(token.KeywordIf), separator(token.SepRoundOpen)):
			node, err = p.parseConditional(line, p.parseMember)
			needsSemicolon = false
		case p.sequence(keyword(token.KeywordWhile), separator(token.SepRoundOpen)):
			node, err = p.parseWhile(line, p.parseMember)
			needsSemicolon = false
		case p.peekFunctionCall():
			node, err = p.parseFunctionCall(line)
		case p.peek(separator(token.SepEndOfProgram)):
			return nil, p.errorAt(p.prev(1).Line, "unexpected end of program")
		default:
			node, err = p.parseVariable(line, false)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := p.finishDeclaration(node, attrs, needsSemicolon); err != nil {
		return nil, err
	}
	return []ast.Node{node}, nil
}

// (parseType) Identifier [ '[' size ']' ] [@ expr]
// (parseType) *Identifier : (parseType) [@ expr]
// padding[expr]
//
// Placements are only accepted at top level.
func (p *Parser) parseVariable(line int, topLevel bool) (ast.Node, error) {
	if p.sequence(valueType(token.Padding), separator(token.SepSquareOpen)) {
		size, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if !p.sequence(separator(token.SepSquareClose)) {
			return nil, p.errorf("expected closing ']' at end of array declaration")
		}
		return &ast.ArrayVariableDecl{
			Meta: ast.Meta{Line: line},
			Type: &ast.BuiltinType{Meta: ast.Meta{Line: line}, Type: token.Padding},
			Size: size,
		}, nil
	}

	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}

	if p.sequence(operator(token.OpStar), identifier, operator(token.OpInherit)) {
		decl := &ast.PointerVariableDecl{Meta: ast.Meta{Line: line}, Name: p.prev(2).Text, Type: typ}
		if decl.SizeType, err = p.parseType(); err != nil {
			return nil, err
		}
		if !isUnsignedBuiltin(decl.SizeType) {
			return nil, p.errorAt(line, "expected unsigned builtin type as size")
		}
		if decl.Placement, err = p.parsePlacement(topLevel); err != nil {
			return nil, err
		}
		return decl, nil
	}

	if ref := unresolved(typ); ref != "" && !p.types[ref] {
		return nil, p.unknownType(line, ref)
	}
	if !p.sequence(identifier) {
		return nil, p.errorf("expected variable name, got '%s'", p.current())
	}
	name := p.prev(1).Text

	if p.peek(separator(token.SepSquareOpen)) && !p.peek(separator(token.SepSquareOpen), separator(token.SepSquareOpen)) {
		p.sequence(separator(token.SepSquareOpen))
		decl := &ast.ArrayVariableDecl{Meta: ast.Meta{Line: line}, Name: name, Type: typ}
		if decl.Size, err = p.parseArraySize(); err != nil {
			return nil, err
		}
		if decl.Placement, err = p.parsePlacement(topLevel); err != nil {
			return nil, err
		}
		return decl, nil
	}

	decl := &ast.VariableDecl{Meta: ast.Meta{Line: line}, Name: name, Type: typ}
	if decl.Placement, err = p.parsePlacement(topLevel); err != nil {
		return nil, err
	}
	return decl, nil
}

// The array bound after '[': nothing, while(expr) or an expression.
func (p *Parser) parseArraySize() (ast.Node, error) {
	if p.sequence(separator(token.SepSquareClose)) {
		return nil, nil
	}

	var size ast.Node
	line := p.current().Line
	if p.sequence(keyword(token.KeywordWhile), separator(token.SepRoundOpen)) {
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if !p.sequence(separator(token.SepRoundClose)) {
			return nil, p.errorf("expected closing ')' after while head")
		}
		size = &ast.WhileStatement{Meta: ast.Meta{Line: line}, Condition: cond}
	} else {
		var err error
		if size, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}

	if !p.sequence(separator(token.SepSquareClose)) {
		return nil, p.errorf("expected closing ']' at end of array declaration")
	}
	return size, nil
}

func (p *Parser) parsePlacement(topLevel bool) (ast.Node, error) {
	if !p.peek(operator(token.OpAt)) {
		return nil, nil
	}
	if !topLevel {
		return nil, p.errorf("placement is only allowed at top level")
	}
	p.sequence(operator(token.OpAt))
	return p.parseExpression()
}

/* Control flow */

type statementParser func() ([]ast.Node, error)

// if (expr) body [else body] with "if (" already consumed.
func (p *Parser) parseConditional(line int, stmt statementParser) (ast.Node, error) {
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.sequence(separator(token.SepRoundClose)) {
		return nil, p.errorf("expected closing ')' after if condition")
	}

	node := &ast.Conditional{Meta: ast.Meta{Line: line}, Condition: cond}
	if node.True, err = p.parseBody(stmt); err != nil {
		return nil, err
	}
	if p.sequence(keyword(token.KeywordElse)) {
		if node.False, err = p.parseBody(stmt); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// while (expr) body with "while (" already consumed.
func (p *Parser) parseWhile(line int, stmt statementParser) (ast.Node, error) {
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.sequence(separator(token.SepRoundClose)) {
		return nil, p.errorf("expected closing ')' after while head")
	}
	body, err := p.parseBody(stmt)
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Meta: ast.Meta{Line: line}, Condition: cond, Body: body}, nil
}

// A braced block or a single statement.
func (p *Parser) parseBody(stmt statementParser) ([]ast.Node, error) {
	if !p.sequence(separator(token.SepCurlyOpen)) {
		return stmt()
	}
	var body []ast.Node
	for !p.sequence(separator(token.SepCurlyClose)) {
		if p.peek(separator(token.SepEndOfProgram)) {
			return nil, p.errorf("unexpected end of program")
		}
		nodes, err := stmt()
		if err != nil {
			return nil, err
		}
		body = append(body, nodes...)
	}
	return body, nil
}

/* Functions */

// fn Identifier ( [type] name, ... ) { <(parseFunctionStatement)...> }
func (p *Parser) parseFunctionDefinition(line int) (ast.Node, error) {
	if !p.sequence(identifier) {
		return nil, p.errorf("expected function name")
	}
	fn := &ast.FunctionDefinition{Meta: ast.Meta{Line: line}, Name: p.qualifiedName()}
	if !p.sequence(separator(token.SepRoundOpen)) {
		return nil, p.errorf("expected '(' after function name")
	}

	if !p.sequence(separator(token.SepRoundClose)) {
		for {
			var param ast.Param
			if p.sequence(valueType(token.Any)) {
				t := p.prev(1).Type
				param.Type = &t
			}
			if !p.sequence(identifier) {
				return nil, p.errorf("expected parameter name")
			}
			param.Name = p.prev(1).Text
			fn.Params = append(fn.Params, param)

			if p.sequence(separator(token.SepComma)) {
				continue
			}
			if p.sequence(separator(token.SepRoundClose)) {
				break
			}
			return nil, p.errorf("expected closing ')' after parameter list")
		}
	}

	if !p.sequence(separator(token.SepCurlyOpen)) {
		return nil, p.errorf("expected opening '{' after function definition")
	}
	for !p.sequence(separator(token.SepCurlyClose)) {
		if p.peek(separator(token.SepEndOfProgram)) {
			return nil, p.errorf("unexpected end of program")
		}
		nodes, err := p.parseFunctionStatement()
		if err != nil {
			return nil, err
		}
		fn.Body = append(fn.Body, nodes...)
	}
	return fn, nil
}

// A call, local variable, assignment, return, if or while inside a function.
func (p *Parser) parseFunctionStatement() ([]ast.Node, error) {
	line := p.current().Line
	needsSemicolon := true
	var nodes []ast.Node

	switch {
	case p.sequence(keyword(token.KeywordReturn)):
		ret := &ast.Return{Meta: ast.Meta{Line: line}}
		if !p.peek(separator(token.SepSemicolon)) {
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			ret.Value = value
		}
		nodes = append(nodes, ret)
	case p.sequence(keyword(token.KeywordIf), separator(token.SepRoundOpen)):
		node, err := p.parseConditional(line, p.parseFunctionStatement)
		if err != nil {
			return nil, err
		}
		nodes, needsSemicolon = append(nodes, node), false
	case p.sequence(keyword(token.KeywordWhile), separator(token.SepRoundOpen)):
		node, err := p.parseWhile(line, p.parseFunctionStatement)
		if err != nil {
			return nil, err
		}
		nodes, needsSemicolon = append(nodes, node), false
	case p.peekFunctionCall():
		node, err := p.parseFunctionCall(line)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	case p.sequence(identifier, operator(token.OpAssign)):
		name := p.prev(2).Text
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, &ast.Assignment{Meta: ast.Meta{Line: line}, Name: name, Value: value})
	case p.peek(valueType(token.Any)), p.peek(endian, valueType(token.Any)):
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if !p.sequence(identifier) {
			return nil, p.errorf("expected variable name, got '%s'", p.current())
		}
		name := p.prev(1).Text
		nodes = append(nodes, &ast.VariableDecl{Meta: ast.Meta{Line: line}, Name: name, Type: typ})
		if p.sequence(operator(token.OpAssign)) {
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &ast.Assignment{Meta: ast.Meta{Line: line}, Name: name, Value: value})
		}
	default:
		return nil, p.errorf("invalid sequence '%s'", p.current())
	}

	if needsSemicolon {
		if err := p.expectSemicolon(); err != nil {
			return nil, err
		}
	}
	return nodes, nil
}

// peekFunctionCall reports whether the cursor is at Identifier[::Identifier...](.
func (p *Parser) peekFunctionCall() bool {
	mark := p.begin()
	defer p.reset(mark)
	if !p.sequence(identifier) {
		return false
	}
	for p.sequence(separator(token.SepScope), identifier) {
	}
	return p.peek(separator(token.SepRoundOpen))
}

// Identifier[::Identifier...]( [param, ...] )
func (p *Parser) parseFunctionCall(line int) (*ast.FunctionCall, error) {
	p.sequence(identifier)
	call := &ast.FunctionCall{Meta: ast.Meta{Line: line}, Name: p.qualifiedName()}
	p.sequence(separator(token.SepRoundOpen))

	for !p.sequence(separator(token.SepRoundClose)) {
		if p.peek(str, anyOf(separator(token.SepComma), separator(token.SepRoundClose))) {
			p.sequence(str)
			call.Params = append(call.Params, &ast.StringLiteral{Meta: ast.Meta{Line: p.prev(1).Line}, Value: p.prev(1).Text})
		} else {
			param, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			call.Params = append(call.Params, param)
		}

		if p.sequence(separator(token.SepComma), separator(token.SepRoundClose)) {
			return nil, p.errorAt(p.prev(1).Line, "unexpected ',' at end of function parameter list")
		} else if p.sequence(separator(token.SepRoundClose)) {
			break
		} else if !p.sequence(separator(token.SepComma)) {
			return nil, p.errorf("missing ',' between parameters")
		}
	}
	return call, nil
}

/* Attributes */

// [[ <Identifier[("value")], ...> ]], repeated.
func (p *Parser) parseAttributes() ([]*ast.Attribute, error) {
	var attrs []*ast.Attribute
	for p.sequence(separator(token.SepSquareOpen), separator(token.SepSquareOpen)) {
		for {
			if !p.sequence(identifier) {
				return nil, p.errorf("expected attribute expression")
			}
			attr := &ast.Attribute{Meta: ast.Meta{Line: p.prev(1).Line}, Name: p.prev(1).Text}
			if p.sequence(separator(token.SepRoundOpen), str, separator(token.SepRoundClose)) {
				v := p.prev(2).Text
				attr.Value = &v
			}
			attrs = append(attrs, attr)
			if !p.sequence(separator(token.SepComma)) {
				break
			}
		}
		if !p.sequence(separator(token.SepSquareClose), separator(token.SepSquareClose)) {
			return nil, p.errorf("unfinished attribute. Expected ']]'")
		}
	}
	return attrs, nil
}
