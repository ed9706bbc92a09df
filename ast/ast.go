// Package ast defines the syntax tree produced by the parser.
//
// Node is a closed sum type: every variant embeds Meta, which carries the
// source line and the attribute list. Nodes are always used as pointers.
package ast

import "github.com/sansecio/hexpat/token"

// Node is any syntax tree node.
type Node interface {
	meta() *Meta
}

// Meta holds the data shared by every node.
type Meta struct {
	Line       int
	Attributes []*Attribute
}

func (m *Meta) meta() *Meta { return m }

// Line returns the source line of n.
func Line(n Node) int { return n.meta().Line }

// Attributes returns the attributes attached to n.
func Attributes(n Node) []*Attribute { return n.meta().Attributes }

// AddAttribute attaches a to n.
func AddAttribute(n Node, a *Attribute) {
	m := n.meta()
	m.Attributes = append(m.Attributes, a)
}

// Attribute is a [[name]] or [[name("value")]] annotation.
type Attribute struct {
	Meta
	Name  string
	Value *string
}

// IntegerLiteral is a numeric constant.
type IntegerLiteral struct {
	Meta
	Value token.Literal
}

// StringLiteral is a string constant.
type StringLiteral struct {
	Meta
	Value string
}

// MathExpr is a binary operation.
type MathExpr struct {
	Meta
	Op          token.Operator
	Left, Right Node
}

// UnaryExpr is a prefix operation.
type UnaryExpr struct {
	Meta
	Op      token.Operator
	Operand Node
}

// TernaryExpr is cond ? a : b.
type TernaryExpr struct {
	Meta
	Op                    token.Operator
	First, Second, Third Node
}

// CurrentOffset is the $ operator.
type CurrentOffset struct {
	Meta
}

// PathSegment is one step of an r-value path: a member name, the parent
// keyword or an index expression.
type PathSegment struct {
	Name   string
	Parent bool
	Index  Node
}

// RValue names a previously materialized pattern or local variable.
type RValue struct {
	Meta
	Path []PathSegment
}

// ScopeResolution is A::B, used to name enum entries.
type ScopeResolution struct {
	Meta
	Path []string
}

// TypeOperator is addressof(path) or sizeof(path).
type TypeOperator struct {
	Meta
	Op     token.Operator
	Target *RValue
}

// FunctionCall invokes a user-defined or builtin function.
type FunctionCall struct {
	Meta
	Name   string
	Params []Node
}

// TypeDecl binds a name and an optional endian override to a type. An
// anonymous inline type or an endian-qualified use has an empty Name.
type TypeDecl struct {
	Meta
	Name   string
	Type   Node
	Endian *token.Endian
}

// BuiltinType is one of the built-in value types.
type BuiltinType struct {
	Meta
	Type token.ValueType
}

// TypeRef refers to a user-defined type by name through the type table.
type TypeRef struct {
	Meta
	Name string
}

// Struct lays out its members one after another.
type Struct struct {
	Meta
	Members []Node
}

// Union lays out all of its members at the same offset.
type Union struct {
	Meta
	Members []Node
}

// EnumEntry is a named enum constant. Value is nil for an implicit value.
type EnumEntry struct {
	Name  string
	Value Node
}

// Enum maps integer values of an underlying type to names.
type Enum struct {
	Meta
	Underlying Node
	Entries    []*EnumEntry
}

// BitfieldEntry is a named run of bits.
type BitfieldEntry struct {
	Name string
	Size Node
}

// Bitfield splits an integer into named bit ranges.
type Bitfield struct {
	Meta
	Entries []*BitfieldEntry
}

// VariableDecl declares a single value. Placement is nil when the variable
// is laid out at the current offset.
type VariableDecl struct {
	Meta
	Name      string
	Type      Node
	Placement Node
}

// ArrayVariableDecl declares an array. Size is an expression, a
// *WhileStatement, or nil for a zero-terminated array.
type ArrayVariableDecl struct {
	Meta
	Name      string
	Type      Node
	Size      Node
	Placement Node
}

// PointerVariableDecl declares a pointer whose value is read as SizeType.
type PointerVariableDecl struct {
	Meta
	Name      string
	Type      Node
	SizeType  Node
	Placement Node
}

// Conditional is an if/else statement or member block.
type Conditional struct {
	Meta
	Condition Node
	True      []Node
	False     []Node
}

// WhileStatement is a loop, or an array bound when used as ArrayVariableDecl.Size.
type WhileStatement struct {
	Meta
	Condition Node
	Body      []Node
}

// Param is a function parameter with an optional built-in type.
type Param struct {
	Name string
	Type *token.ValueType
}

// FunctionDefinition is a user function.
type FunctionDefinition struct {
	Meta
	Name   string
	Params []Param
	Body   []Node
}

// Assignment stores a value in a local variable.
type Assignment struct {
	Meta
	Name  string
	Value Node
}

// Return leaves a function, optionally with a value.
type Return struct {
	Meta
	Value Node
}
