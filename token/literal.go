package token

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// Int128 is a 128-bit two's complement integer.
type Int128 struct {
	Hi, Lo uint64
}

var (
	mask64  = new(big.Int).SetUint64(math.MaxUint64)
	mask128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	two128  = new(big.Int).Lsh(big.NewInt(1), 128)
)

// Int128FromBig truncates b to its low 128 bits.
func Int128FromBig(b *big.Int) Int128 {
	m := new(big.Int).And(b, mask128)
	lo := new(big.Int).And(m, mask64).Uint64()
	hi := new(big.Int).Rsh(m, 64).Uint64()
	return Int128{Hi: hi, Lo: lo}
}

// Int128FromInt64 sign-extends v.
func Int128FromInt64(v int64) Int128 {
	if v < 0 {
		return Int128{Hi: math.MaxUint64, Lo: uint64(v)}
	}
	return Int128{Lo: uint64(v)}
}

// Unsigned interprets x as an unsigned value.
func (x Int128) Unsigned() *big.Int {
	b := new(big.Int).SetUint64(x.Hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(x.Lo))
}

// Signed interprets x as a two's complement value.
func (x Int128) Signed() *big.Int {
	b := x.Unsigned()
	if x.Hi>>63 == 1 {
		b.Sub(b, two128)
	}
	return b
}

// normalize truncates x to the width of t and re-extends it to 128 bits,
// sign-extending for signed types.
func normalize(t ValueType, x Int128) Int128 {
	if t == Boolean {
		if x.Hi != 0 || x.Lo != 0 {
			return Int128{Lo: 1}
		}
		return Int128{}
	}
	bits := intType(t).Size() * 8
	signed := intType(t).IsSigned()
	switch {
	case bits >= 128:
		return x
	case bits == 64:
		if signed && x.Lo>>63 == 1 {
			return Int128{Hi: math.MaxUint64, Lo: x.Lo}
		}
		return Int128{Lo: x.Lo}
	default:
		mask := uint64(1)<<bits - 1
		lo := x.Lo & mask
		if signed && lo>>(bits-1) == 1 {
			return Int128{Hi: math.MaxUint64, Lo: lo | ^mask}
		}
		return Int128{Lo: lo}
	}
}

// intType maps the non-numeric integral types onto the integer type they are
// stored as.
func intType(t ValueType) ValueType {
	switch t {
	case Boolean:
		return Unsigned8
	case Character:
		return Signed8
	case Character16:
		return Unsigned16
	default:
		return t
	}
}

// Literal is a typed numeric value: bool, char, char16, the signed and
// unsigned integers up to 128 bits, float or double.
type Literal struct {
	Type  ValueType
	bits  Int128
	float float64
}

// Bool returns a boolean literal.
func Bool(b bool) Literal {
	if b {
		return Literal{Type: Boolean, bits: Int128{Lo: 1}}
	}
	return Literal{Type: Boolean}
}

// Char returns a character literal.
func Char(c byte) Literal {
	return Literal{Type: Character, bits: normalize(Character, Int128{Lo: uint64(c)})}
}

// Char16 returns a 16-bit character literal.
func Char16(c uint16) Literal {
	return Literal{Type: Character16, bits: Int128{Lo: uint64(c)}}
}

// Unsigned returns an integer literal of type t holding v.
func Unsigned(t ValueType, v uint64) Literal {
	return FromInt128(t, Int128{Lo: v})
}

// Signed returns an integer literal of type t holding v.
func Signed(t ValueType, v int64) Literal {
	return FromInt128(t, Int128FromInt64(v))
}

// FromInt128 returns a literal of integral type t, wrapping x to t's width.
func FromInt128(t ValueType, x Int128) Literal {
	if t.IsFloat() {
		return FromFloat(t, bigToFloat(x.Signed()))
	}
	return Literal{Type: t, bits: normalize(t, x)}
}

// FromBig returns a literal of type t holding b wrapped to t's width.
func FromBig(t ValueType, b *big.Int) Literal {
	if t.IsFloat() {
		return FromFloat(t, bigToFloat(b))
	}
	return Literal{Type: t, bits: normalize(t, Int128FromBig(b))}
}

// FromFloat returns a float or double literal. Float values are rounded to
// single precision.
func FromFloat(t ValueType, v float64) Literal {
	if t == Float {
		v = float64(float32(v))
	} else {
		t = Double
	}
	return Literal{Type: t, float: v}
}

func bigToFloat(b *big.Int) float64 {
	f, _ := new(big.Float).SetInt(b).Float64()
	return f
}

// Bits returns the two's complement payload of an integral literal.
func (l Literal) Bits() Int128 {
	if l.Type.IsFloat() {
		return Int128FromBig(l.Big())
	}
	return l.bits
}

// Big returns the exact value of the literal. Floating point values are
// truncated toward zero.
func (l Literal) Big() *big.Int {
	if l.Type.IsFloat() {
		if math.IsNaN(l.float) || math.IsInf(l.float, 0) {
			return new(big.Int)
		}
		b, _ := big.NewFloat(l.float).Int(nil)
		return b
	}
	if intType(l.Type).IsSigned() {
		return l.bits.Signed()
	}
	return l.bits.Unsigned()
}

// Uint64 returns the low 64 bits of the value.
func (l Literal) Uint64() uint64 {
	if l.Type.IsFloat() {
		return Int128FromBig(l.Big()).Lo
	}
	return l.bits.Lo
}

// Int64 returns the value as an int64, truncating wider values.
func (l Literal) Int64() int64 { return int64(l.Uint64()) }

// Float64 returns the value as a float64.
func (l Literal) Float64() float64 {
	if l.Type.IsFloat() {
		return l.float
	}
	return bigToFloat(l.Big())
}

// IsTrue reports whether the value is non-zero.
func (l Literal) IsTrue() bool {
	if l.Type.IsFloat() {
		return l.float != 0
	}
	return l.bits.Hi != 0 || l.bits.Lo != 0
}

// Cast converts l to type t with C-like conversion rules.
func (l Literal) Cast(t ValueType) Literal {
	switch {
	case t == l.Type:
		return l
	case t == Boolean:
		return Bool(l.IsTrue())
	case t.IsFloat():
		return FromFloat(t, l.Float64())
	default:
		return FromBig(t, l.Big())
	}
}

// Bytes encodes the value in t's width using the given byte order.
func (l Literal) Bytes(e Endian) []byte {
	size := l.Type.Size()
	buf := make([]byte, size)
	switch {
	case l.Type == Float:
		e.ByteOrder().PutUint32(buf, math.Float32bits(float32(l.float)))
		return buf
	case l.Type == Double:
		e.ByteOrder().PutUint64(buf, math.Float64bits(l.float))
		return buf
	}
	x := l.bits
	for i := 0; i < size; i++ {
		var b byte
		if i < 8 {
			b = byte(x.Lo >> (8 * i))
		} else {
			b = byte(x.Hi >> (8 * (i - 8)))
		}
		if e == Big {
			buf[size-1-i] = b
		} else {
			buf[i] = b
		}
	}
	return buf
}

// String renders the value the way print-style builtins show it.
func (l Literal) String() string {
	switch {
	case l.Type == Boolean:
		if l.IsTrue() {
			return "true"
		}
		return "false"
	case l.Type == Character:
		return string(rune(byte(l.bits.Lo)))
	case l.Type == Character16:
		return string(rune(uint16(l.bits.Lo)))
	case l.Type == Float:
		return strconv.FormatFloat(l.float, 'g', -1, 32)
	case l.Type == Double:
		return strconv.FormatFloat(l.float, 'g', -1, 64)
	default:
		return l.Big().String()
	}
}

// GoString includes the type, for test failure messages.
func (l Literal) GoString() string {
	return fmt.Sprintf("%s(%s)", l.Type, l.String())
}

// DecodeBits assembles up to 16 bytes in byte order e into an unsigned
// 128-bit value.
func DecodeBits(b []byte, e Endian) Int128 {
	var x Int128
	for i := range b {
		v := b[i]
		if e == Big {
			v = b[len(b)-1-i]
		}
		if i < 8 {
			x.Lo |= uint64(v) << (8 * i)
		} else if i < 16 {
			x.Hi |= uint64(v) << (8 * (i - 8))
		}
	}
	return x
}

// Decode reads a value of type t from b in byte order e. b must hold at
// least t.Size() bytes.
func Decode(t ValueType, b []byte, e Endian) Literal {
	switch t {
	case Float:
		return FromFloat(Float, float64(math.Float32frombits(e.ByteOrder().Uint32(b))))
	case Double:
		return FromFloat(Double, math.Float64frombits(e.ByteOrder().Uint64(b)))
	case Boolean:
		return Bool(b[0] != 0)
	}
	return FromInt128(t, DecodeBits(b[:t.Size()], e))
}
