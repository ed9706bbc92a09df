package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/sansecio/hexpat/ast"
	"github.com/sansecio/hexpat/lexer"
	"github.com/sansecio/hexpat/parser"
	"github.com/sansecio/hexpat/token"
)

func mustParse(t *testing.T, src string) []ast.Node {
	t.Helper()
	toks, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("failed to lex: %v", err)
	}
	nodes, err := parser.New().Parse(toks)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	return nodes
}

func TestValidateAccepts(t *testing.T) {
	tests := []string{
		`struct Node { u32 value; Node *next : u32; }; Node head @ 0;`,
		`enum E : u8 { A, B }; E e @ 0;`,
		`using Byte = u8; enum E : Byte { A }; E e @ 0;`,
		`bitfield B { a : 64; }; B b @ 0;`,
		`struct Empty {}; Empty e @ 0;`,
		`struct S { if (1) { u8 x; } else { u16 x; } };`,
		`struct Outer { struct Inner { u8 a; }; Inner i; }; Outer o @ 0;`,
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			if err := Validate(mustParse(t, src)); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		want string
	}{
		{"duplicate variable", "u8 a @ 0;\nu8 a @ 1;", 2, "redefinition of identifier 'a'"},
		{"duplicate function", "fn f() {}\nfn f() {}", 2, "redefinition of identifier 'f'"},
		{"duplicate member", "struct S {\n u8 a;\n u16 a;\n};", 3, "redeclaration of member 'a'"},
		{"self by value", "struct A { u8 x; A inner; };", 1, "type 'A' contains itself by value"},
		{"self in array", "union U { U items[2]; };", 1, "type 'U' contains itself by value"},
		{"float enum", "enum E : float { A };", 1, "enum underlying type must be a builtin integer type"},
		{"duplicate enum constant", "enum E : u8 { A, A };", 1, "redeclaration of enum constant 'A'"},
		{"bitfield 65", "bitfield B {\n a : 65;\n};", 2, "bitfield entry must occupy between 1 and 64 bits"},
		{"bitfield 0", "bitfield B { a : 0; };", 1, "between 1 and 64 bits"},
		{"float placement", "u8 x @ 1.5;", 1, "placement offset must be an integer expression"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(mustParse(t, tt.src))
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if verr.Line != tt.line {
				t.Errorf("expected line %d, got %d", tt.line, verr.Line)
			}
			if !strings.Contains(verr.Message, tt.want) {
				t.Errorf("expected %q in %q", tt.want, verr.Message)
			}
		})
	}
}

func TestValidateIndirectRecursion(t *testing.T) {
	// struct A { B b; }; struct B { A a; }; cannot be written in source
	// since types must be declared before use by value.
	a := &ast.TypeDecl{Meta: ast.Meta{Line: 1}, Name: "A", Type: &ast.Struct{Members: []ast.Node{
		&ast.VariableDecl{Name: "b", Type: &ast.TypeRef{Name: "B"}},
	}}}
	b := &ast.TypeDecl{Meta: ast.Meta{Line: 2}, Name: "B", Type: &ast.Struct{Members: []ast.Node{
		&ast.VariableDecl{Name: "a", Type: &ast.TypeDecl{Type: &ast.TypeRef{Name: "A"}, Endian: new(token.Endian)}},
	}}}

	err := ValidateAll([]ast.Node{a, b})
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, want := range []string{"type 'A' contains itself", "type 'B' contains itself"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestValidatePointerBreaksCycle(t *testing.T) {
	a := &ast.TypeDecl{Name: "A", Type: &ast.Struct{Members: []ast.Node{
		&ast.PointerVariableDecl{Name: "b", Type: &ast.TypeRef{Name: "B"}, SizeType: &ast.BuiltinType{Type: token.Unsigned32}},
	}}}
	b := &ast.TypeDecl{Name: "B", Type: &ast.Struct{Members: []ast.Node{
		&ast.VariableDecl{Name: "a", Type: &ast.TypeRef{Name: "A"}},
	}}}
	if err := Validate([]ast.Node{a, b}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
