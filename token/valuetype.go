package token

import (
	"encoding/binary"
	"fmt"
)

// ValueType identifies a built-in type. The upper bits encode the width in
// bytes and the low nibble the family: 0 unsigned, 1 signed, 2 floating
// point. The 0xFFxx values are matchers used only when comparing tokens.
type ValueType uint16

const (
	Unsigned8   ValueType = 0x10
	Signed8     ValueType = 0x11
	Unsigned16  ValueType = 0x20
	Signed16    ValueType = 0x21
	Unsigned32  ValueType = 0x40
	Signed32    ValueType = 0x41
	Unsigned64  ValueType = 0x80
	Signed64    ValueType = 0x81
	Unsigned128 ValueType = 0x100
	Signed128   ValueType = 0x101
	Character   ValueType = 0x13
	Character16 ValueType = 0x23
	Boolean     ValueType = 0x14
	Float       ValueType = 0x42
	Double      ValueType = 0x82
	CustomType  ValueType = 0x00
	Padding     ValueType = 0x1F

	AnyUnsigned ValueType = 0xFF00
	AnySigned   ValueType = 0xFF01
	AnyFloat    ValueType = 0xFF02
	AnyInteger  ValueType = 0xFF03
	Any         ValueType = 0xFFFF
)

var valueTypeNames = map[string]ValueType{
	"u8":      Unsigned8,
	"s8":      Signed8,
	"u16":     Unsigned16,
	"s16":     Signed16,
	"u32":     Unsigned32,
	"s32":     Signed32,
	"u64":     Unsigned64,
	"s64":     Signed64,
	"u128":    Unsigned128,
	"s128":    Signed128,
	"char":    Character,
	"char16":  Character16,
	"bool":    Boolean,
	"float":   Float,
	"double":  Double,
	"padding": Padding,
}

// LookupValueType maps a built-in type name to its ValueType.
func LookupValueType(name string) (ValueType, bool) {
	v, ok := valueTypeNames[name]
	return v, ok
}

func (v ValueType) String() string {
	for name, vt := range valueTypeNames {
		if vt == v {
			return name
		}
	}
	switch v {
	case CustomType:
		return "custom type"
	case AnyUnsigned:
		return "unsigned integer"
	case AnySigned:
		return "signed integer"
	case AnyFloat:
		return "floating point"
	case AnyInteger:
		return "integer"
	case Any:
		return "any type"
	}
	return fmt.Sprintf("ValueType(%#x)", uint16(v))
}

func (v ValueType) isMatcher() bool { return v&0xFF00 == 0xFF00 }

// Size returns the width in bytes. Padding and custom types have size 0.
func (v ValueType) Size() int {
	if v == Padding || v == CustomType || v.isMatcher() {
		return 0
	}
	return int(v >> 4)
}

// IsUnsigned reports whether v is an unsigned integer type.
func (v ValueType) IsUnsigned() bool {
	return !v.isMatcher() && v != CustomType && v&0xF == 0
}

// IsSigned reports whether v is a signed integer type.
func (v ValueType) IsSigned() bool {
	return !v.isMatcher() && v&0xF == 1
}

// IsFloat reports whether v is float or double.
func (v ValueType) IsFloat() bool {
	return !v.isMatcher() && v&0xF == 2
}

// IsInteger reports whether v is a signed or unsigned integer type.
func (v ValueType) IsInteger() bool { return v.IsUnsigned() || v.IsSigned() }

// IsCharacter reports whether v is char or char16.
func (v ValueType) IsCharacter() bool { return v == Character || v == Character16 }

// Matches reports whether v satisfies the matcher m. A non-matcher m only
// matches itself.
func (v ValueType) Matches(m ValueType) bool {
	switch m {
	case Any:
		return true
	case AnyUnsigned:
		return v.IsUnsigned()
	case AnySigned:
		return v.IsSigned()
	case AnyFloat:
		return v.IsFloat()
	case AnyInteger:
		return v.IsInteger()
	default:
		return v == m
	}
}

// Endian is a byte order.
type Endian uint8

const (
	Little Endian = iota
	Big
)

// Native returns the byte order of the host.
func Native() Endian {
	if binary.NativeEndian.Uint16([]byte{1, 0}) == 1 {
		return Little
	}
	return Big
}

// ByteOrder returns the encoding/binary order for e.
func (e Endian) ByteOrder() binary.ByteOrder {
	if e == Big {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (e Endian) String() string {
	if e == Big {
		return "big"
	}
	return "little"
}
