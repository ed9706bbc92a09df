// Package pattern holds the output of an evaluation: a tree of typed regions
// of the data source.
package pattern

import (
	"fmt"

	"github.com/sansecio/hexpat/token"
)

// Kind identifies the variant of a Pattern.
type Kind uint8

const (
	KindUnsigned Kind = iota
	KindSigned
	KindFloat
	KindBoolean
	KindCharacter
	KindString
	KindArray
	KindStruct
	KindUnion
	KindEnum
	KindBitfield
	KindBitfieldField
	KindPointer
	KindPadding
)

var kindNames = [...]string{
	KindUnsigned:      "unsigned",
	KindSigned:        "signed",
	KindFloat:         "float",
	KindBoolean:       "boolean",
	KindCharacter:     "character",
	KindString:        "string",
	KindArray:         "array",
	KindStruct:        "struct",
	KindUnion:         "union",
	KindEnum:          "enum",
	KindBitfield:      "bitfield",
	KindBitfieldField: "bitfield field",
	KindPointer:       "pointer",
	KindPadding:       "padding",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Pattern is one node of the tree. The set of implementations is closed:
// every variant in this package embeds Base.
type Pattern interface {
	Common() *Base
	Kind() Kind
}

// Base holds the attributes shared by all patterns.
type Base struct {
	Offset   uint64
	Size     uint64
	Color    uint32
	Name     string
	TypeName string
	Endian   token.Endian

	// Set from attributes.
	DisplayName string
	Comment     string
	Hidden      bool
	Formatted   string
}

func (b *Base) Common() *Base { return b }

// End returns the offset one past the last byte.
func (b *Base) End() uint64 { return b.Offset + b.Size }

// Contains reports whether offset lies inside the pattern.
func (b *Base) Contains(offset uint64) bool {
	return offset >= b.Offset && offset < b.End()
}

// Label is the name shown to the user.
func (b *Base) Label() string {
	if b.DisplayName != "" {
		return b.DisplayName
	}
	return b.Name
}

// Unsigned is an unsigned integer.
type Unsigned struct {
	Base
	Value token.Literal
}

// Signed is a signed integer.
type Signed struct {
	Base
	Value token.Literal
}

// Float is a float or double.
type Float struct {
	Base
	Value token.Literal
}

// Boolean is a one-byte truth value. Raw keeps the byte as read.
type Boolean struct {
	Base
	Raw byte
}

// Character is a char or char16.
type Character struct {
	Base
	Value token.Literal
}

// String is a character array rendered as text. Data includes the
// terminating zero byte when there is one.
type String struct {
	Base
	Data []byte
}

// Array is an ordered list of contiguous entries.
type Array struct {
	Base
	ElementType string
	Entries     []Pattern
}

// Struct lays out members one after another.
type Struct struct {
	Base
	Members []Pattern
}

// Union lays out all members at its own offset.
type Union struct {
	Base
	Members []Pattern
}

// EnumEntry is one named constant of an enum.
type EnumEntry struct {
	Name  string
	Value token.Literal
}

// Enum is an integer with named values.
type Enum struct {
	Base
	Value   token.Literal
	Entries []EnumEntry
}

// Entry returns the name of the constant equal to Value.
func (e *Enum) Entry() (string, bool) {
	for _, entry := range e.Entries {
		if entry.Value.Big().Cmp(e.Value.Big()) == 0 {
			return entry.Name, true
		}
	}
	return "", false
}

// Bitfield is a run of bytes split into named bit ranges.
type Bitfield struct {
	Base
	Data   []byte
	Fields []*BitfieldField
}

// BitfieldField is a named bit range of a Bitfield. It covers the same
// bytes as its bitfield.
type BitfieldField struct {
	Base
	BitOffset int
	BitSize   int
	Value     token.Literal
}

// Pointer holds an address and the pattern found there. A Shared target
// is owned by another pointer that reached the same address and type first.
type Pointer struct {
	Base
	Address token.Literal
	Target  Pattern
	Shared  bool
}

// Padding is a gap without a value.
type Padding struct {
	Base
}

func (*Unsigned) Kind() Kind      { return KindUnsigned }
func (*Signed) Kind() Kind        { return KindSigned }
func (*Float) Kind() Kind         { return KindFloat }
func (*Boolean) Kind() Kind       { return KindBoolean }
func (*Character) Kind() Kind     { return KindCharacter }
func (*String) Kind() Kind        { return KindString }
func (*Array) Kind() Kind         { return KindArray }
func (*Struct) Kind() Kind        { return KindStruct }
func (*Union) Kind() Kind         { return KindUnion }
func (*Enum) Kind() Kind          { return KindEnum }
func (*Bitfield) Kind() Kind      { return KindBitfield }
func (*BitfieldField) Kind() Kind { return KindBitfieldField }
func (*Pointer) Kind() Kind       { return KindPointer }
func (*Padding) Kind() Kind       { return KindPadding }

// Members returns the structural children of p: struct and union members,
// array entries and bitfield fields. Pointer targets are not included.
func Members(p Pattern) []Pattern {
	switch p := p.(type) {
	case *Struct:
		return p.Members
	case *Union:
		return p.Members
	case *Array:
		return p.Entries
	case *Bitfield:
		members := make([]Pattern, len(p.Fields))
		for i, f := range p.Fields {
			members[i] = f
		}
		return members
	}
	return nil
}

// Member returns the direct member of p called name.
func Member(p Pattern, name string) (Pattern, bool) {
	for _, m := range Members(p) {
		if m.Common().Name == name {
			return m, true
		}
	}
	return nil, false
}

// Value returns the scalar value of p, if it has one.
func Value(p Pattern) (token.Literal, bool) {
	switch p := p.(type) {
	case *Unsigned:
		return p.Value, true
	case *Signed:
		return p.Value, true
	case *Float:
		return p.Value, true
	case *Boolean:
		return token.Bool(p.Raw != 0), true
	case *Character:
		return p.Value, true
	case *Enum:
		return p.Value, true
	case *BitfieldField:
		return p.Value, true
	case *Pointer:
		return p.Address, true
	}
	return token.Literal{}, false
}

// Walk visits p and its descendants depth first, following non-shared
// pointer targets. Returning false from fn skips the children of a pattern.
func Walk(p Pattern, fn func(Pattern) bool) {
	if !fn(p) {
		return
	}
	for _, m := range Members(p) {
		Walk(m, fn)
	}
	if ptr, ok := p.(*Pointer); ok && ptr.Target != nil && !ptr.Shared {
		Walk(ptr.Target, fn)
	}
}
