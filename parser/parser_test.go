package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/sansecio/hexpat/ast"
	"github.com/sansecio/hexpat/lexer"
	"github.com/sansecio/hexpat/token"
)

func parse(src string) ([]ast.Node, error) {
	toks, err := lexer.Lex(src)
	if err != nil {
		return nil, err
	}
	return New().Parse(toks)
}

func mustParse(t *testing.T, src string) []ast.Node {
	t.Helper()
	nodes, err := parse(src)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	return nodes
}

func TestParsePlacement(t *testing.T) {
	nodes := mustParse(t, `
u32 placementVar @ 0x00;
u8  placementArray[10] @ 0x10;
`)
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}

	v, ok := nodes[0].(*ast.VariableDecl)
	if !ok {
		t.Fatalf("expected VariableDecl, got %T", nodes[0])
	}
	if v.Name != "placementVar" {
		t.Errorf("expected name placementVar, got %q", v.Name)
	}
	if bt, ok := v.Type.(*ast.BuiltinType); !ok || bt.Type != token.Unsigned32 {
		t.Errorf("expected u32 type, got %#v", v.Type)
	}
	if lit, ok := v.Placement.(*ast.IntegerLiteral); !ok || lit.Value.Uint64() != 0 {
		t.Errorf("expected placement 0, got %#v", v.Placement)
	}

	a, ok := nodes[1].(*ast.ArrayVariableDecl)
	if !ok {
		t.Fatalf("expected ArrayVariableDecl, got %T", nodes[1])
	}
	if lit, ok := a.Size.(*ast.IntegerLiteral); !ok || lit.Value.Uint64() != 10 {
		t.Errorf("expected size 10, got %#v", a.Size)
	}
	if ast.Line(a) != 3 {
		t.Errorf("expected line 3, got %d", ast.Line(a))
	}
}

func TestParseStruct(t *testing.T) {
	nodes := mustParse(t, `
struct TestStruct {
	s32 variable;
	padding[20];
	u8 array[0x10];
	TestStruct *next : u32;
};
TestStruct testStruct @ 0x100;
`)
	decl, ok := nodes[0].(*ast.TypeDecl)
	if !ok || decl.Name != "TestStruct" {
		t.Fatalf("expected TypeDecl TestStruct, got %#v", nodes[0])
	}
	st, ok := decl.Type.(*ast.Struct)
	if !ok {
		t.Fatalf("expected Struct, got %T", decl.Type)
	}
	if len(st.Members) != 4 {
		t.Fatalf("expected 4 members, got %d", len(st.Members))
	}
	pad, ok := st.Members[1].(*ast.ArrayVariableDecl)
	if !ok || pad.Name != "" || pad.Type.(*ast.BuiltinType).Type != token.Padding {
		t.Errorf("expected padding member, got %#v", st.Members[1])
	}
	ptr, ok := st.Members[3].(*ast.PointerVariableDecl)
	if !ok {
		t.Fatalf("expected PointerVariableDecl, got %T", st.Members[3])
	}
	if ref, ok := ptr.Type.(*ast.TypeRef); !ok || ref.Name != "TestStruct" {
		t.Errorf("expected self reference, got %#v", ptr.Type)
	}
	if _, ok := nodes[1].(*ast.VariableDecl).Type.(*ast.TypeRef); !ok {
		t.Errorf("expected TypeRef, got %T", nodes[1].(*ast.VariableDecl).Type)
	}
}

func TestParseEnumAndBitfield(t *testing.T) {
	nodes := mustParse(t, `
enum TestEnum : u32 { A, B = 0x1234, C, D };
bitfield TestBitfield { a : 4; b : 4; padding : 4; d : 4; };
be TestBitfield testBitfield @ 0x12;
`)
	enum := nodes[0].(*ast.TypeDecl).Type.(*ast.Enum)
	if len(enum.Entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(enum.Entries))
	}
	if enum.Entries[0].Value != nil || enum.Entries[1].Value == nil {
		t.Errorf("unexpected entry values: %#v", enum.Entries)
	}

	bf := nodes[1].(*ast.TypeDecl).Type.(*ast.Bitfield)
	if len(bf.Entries) != 4 || bf.Entries[2].Name != "" {
		t.Errorf("unexpected bitfield entries: %#v", bf.Entries)
	}

	v := nodes[2].(*ast.VariableDecl)
	td, ok := v.Type.(*ast.TypeDecl)
	if !ok || td.Endian == nil || *td.Endian != token.Big {
		t.Fatalf("expected big endian type, got %#v", v.Type)
	}
}

func TestParseUsing(t *testing.T) {
	nodes := mustParse(t, `
using Word = be u16;
Word w @ 0;
`)
	decl := nodes[0].(*ast.TypeDecl)
	if decl.Name != "Word" || decl.Endian == nil || *decl.Endian != token.Big {
		t.Errorf("unexpected using declaration: %#v", decl)
	}
	if _, ok := decl.Type.(*ast.BuiltinType); !ok {
		t.Errorf("expected builtin, got %T", decl.Type)
	}
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		expr string
		op   token.Operator
	}{
		{"1 + 2 * 3", token.OpPlus},
		{"1 * 2 + 3", token.OpPlus},
		{"1 << 2 + 3", token.OpShiftLeft},
		{"1 == 2 && 3", token.OpBoolAnd},
		{"1 | 2 ^ 3 & 4", token.OpBitOr},
		{"1 || 2 ^^ 3", token.OpBoolOr},
		{"1 < 2 == 3", token.OpEqual},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			nodes := mustParse(t, "u8 x @ "+tt.expr+";")
			m, ok := nodes[0].(*ast.VariableDecl).Placement.(*ast.MathExpr)
			if !ok {
				t.Fatalf("expected MathExpr, got %T", nodes[0].(*ast.VariableDecl).Placement)
			}
			if m.Op != tt.op {
				t.Errorf("expected root operator %s, got %s", tt.op, m.Op)
			}
		})
	}
}

func TestParseTernary(t *testing.T) {
	nodes := mustParse(t, `std::assert((10 == 20) ? 30 : 40 == 40, "");`)
	call := nodes[0].(*ast.FunctionCall)
	if call.Name != "std::assert" || len(call.Params) != 2 {
		t.Fatalf("unexpected call: %#v", call)
	}
	tern, ok := call.Params[0].(*ast.TernaryExpr)
	if !ok {
		t.Fatalf("expected ternary, got %T", call.Params[0])
	}
	if m, ok := tern.Third.(*ast.MathExpr); !ok || m.Op != token.OpEqual {
		t.Errorf("expected third operand 40 == 40, got %#v", tern.Third)
	}
	if _, ok := call.Params[1].(*ast.StringLiteral); !ok {
		t.Errorf("expected string parameter, got %T", call.Params[1])
	}
}

func TestParseRValuePaths(t *testing.T) {
	nodes := mustParse(t, `
enum E : u8 { X };
struct S {
	u8 len;
	u8 data[parent.header.entries[1].len + len];
	if (E::X == 0) { u8 a; } else u16 b;
	u32 where[while($ < 0x10)];
	u8 off[addressof(len)];
};
`)
	members := nodes[1].(*ast.TypeDecl).Type.(*ast.Struct).Members

	rv := members[1].(*ast.ArrayVariableDecl).Size.(*ast.MathExpr).Left.(*ast.RValue)
	if len(rv.Path) != 5 || !rv.Path[0].Parent || rv.Path[3].Index == nil || rv.Path[4].Name != "len" {
		t.Errorf("unexpected path: %#v", rv.Path)
	}

	cond := members[2].(*ast.Conditional)
	if len(cond.True) != 1 || len(cond.False) != 1 {
		t.Errorf("unexpected conditional bodies: %#v", cond)
	}
	if sr, ok := cond.Condition.(*ast.MathExpr).Left.(*ast.ScopeResolution); !ok || strings.Join(sr.Path, "::") != "E::X" {
		t.Errorf("expected scope resolution, got %#v", cond.Condition)
	}

	if _, ok := members[3].(*ast.ArrayVariableDecl).Size.(*ast.WhileStatement); !ok {
		t.Errorf("expected while bound, got %T", members[3].(*ast.ArrayVariableDecl).Size)
	}
	if op, ok := members[4].(*ast.ArrayVariableDecl).Size.(*ast.TypeOperator); !ok || op.Op != token.OpAddressOf {
		t.Errorf("expected addressof, got %#v", members[4].(*ast.ArrayVariableDecl).Size)
	}
}

func TestParseAttributes(t *testing.T) {
	nodes := mustParse(t, `
struct S {
	[[color("FF0000")]] u8 a;
	u8 b [[name("Bee"), hidden]];
};
`)
	members := nodes[0].(*ast.TypeDecl).Type.(*ast.Struct).Members
	attrs := ast.Attributes(members[0])
	if len(attrs) != 1 || attrs[0].Name != "color" || *attrs[0].Value != "FF0000" {
		t.Errorf("unexpected attributes on a: %#v", attrs)
	}
	attrs = ast.Attributes(members[1])
	if len(attrs) != 2 || attrs[1].Name != "hidden" || attrs[1].Value != nil {
		t.Errorf("unexpected attributes on b: %#v", attrs)
	}
}

func TestParseFunctions(t *testing.T) {
	nodes := mustParse(t, `
fn sum(u32 a, b) {
	u32 total = a;
	while (b > 0) {
		total = total + 1;
		b = b - 1;
	}
	if (total == 0) return 1;
	return total;
}
std::print("x");
`)
	fn, ok := nodes[0].(*ast.FunctionDefinition)
	if !ok {
		t.Fatalf("expected FunctionDefinition, got %T", nodes[0])
	}
	if len(fn.Params) != 2 || fn.Params[0].Type == nil || *fn.Params[0].Type != token.Unsigned32 || fn.Params[1].Type != nil {
		t.Errorf("unexpected params: %#v", fn.Params)
	}
	if len(fn.Body) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(fn.Body))
	}
	if _, ok := fn.Body[0].(*ast.VariableDecl); !ok {
		t.Errorf("expected local declaration, got %T", fn.Body[0])
	}
	if _, ok := fn.Body[1].(*ast.Assignment); !ok {
		t.Errorf("expected initializer assignment, got %T", fn.Body[1])
	}
	if _, ok := fn.Body[2].(*ast.WhileStatement); !ok {
		t.Errorf("expected while, got %T", fn.Body[2])
	}
	if _, ok := nodes[1].(*ast.FunctionCall); !ok {
		t.Errorf("expected call, got %T", nodes[1])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		want string
	}{
		{"empty", ``, 1, "program is empty"},
		{"missing semicolon", "u8 x @ 0\nu8 y @ 1;", 1, "missing ';'"},
		{"unknown type", "struct Header { u8 a; };\nHeadr h @ 0;", 2, "unknown type 'Headr'. Did you mean 'Header'?"},
		{"redefinition", "struct A {};\nstruct A {};", 2, "redefinition of type 'A'"},
		{"unclosed attribute", "u8 x [[hidden @ 0;", 1, "unfinished attribute"},
		{"trailing comma", `f(1,);`, 1, "unexpected ','"},
		{"missing comma", `f(1 2);`, 1, "missing ',' between parameters"},
		{"ternary", `u8 x @ 1 ? 2;`, 1, "expected ':' in ternary expression"},
		{"pointer size", `u8 *p : float @ 0;`, 1, "expected unsigned builtin type as size"},
		{"member placement", `struct S { u8 a @ 0; };`, 1, "placement is only allowed at top level"},
		{"end of program", `struct S { u8 a;`, 1, "unexpected end of program"},
		{"enum endian", `enum E : be u8 { A };`, 1, "underlying type may not have an endian"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(tt.src)
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if perr.Line != tt.line {
				t.Errorf("expected line %d, got %d (%s)", tt.line, perr.Line, perr.Message)
			}
			if !strings.Contains(perr.Message, tt.want) {
				t.Errorf("expected message containing %q, got %q", tt.want, perr.Message)
			}
		})
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	nodes := mustParse(t, `struct S { [[name("a")]] u8 a[2]; };`)
	orig := nodes[0]
	clone := ast.Clone(orig).(*ast.TypeDecl)
	clone.Name = "T"
	member := clone.Type.(*ast.Struct).Members[0].(*ast.ArrayVariableDecl)
	member.Name = "b"
	ast.AddAttribute(member, &ast.Attribute{Name: "hidden"})

	origMember := orig.(*ast.TypeDecl).Type.(*ast.Struct).Members[0].(*ast.ArrayVariableDecl)
	if orig.(*ast.TypeDecl).Name != "S" || origMember.Name != "a" {
		t.Errorf("clone aliased the original")
	}
	if len(ast.Attributes(origMember)) != 1 {
		t.Errorf("clone aliased the attribute list")
	}
}
