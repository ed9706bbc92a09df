package token

import (
	"errors"
	"math/big"
	"testing"
)

func TestPromote(t *testing.T) {
	tests := []struct {
		a, b, want ValueType
	}{
		{Unsigned8, Unsigned32, Unsigned32},
		{Signed64, Unsigned32, Signed64},
		{Signed32, Unsigned32, Unsigned32},
		{Unsigned32, Float, Float},
		{Float, Double, Double},
		{Any, Signed16, Signed16},
		{Unsigned128, Any, Unsigned128},
		{Boolean, Signed8, Unsigned8},
		{Character, Unsigned16, Unsigned16},
	}
	for _, tt := range tests {
		t.Run(tt.a.String()+"_"+tt.b.String(), func(t *testing.T) {
			if got := Promote(tt.a, tt.b); got != tt.want {
				t.Errorf("Promote(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestBinaryIntegers(t *testing.T) {
	tests := []struct {
		name string
		op   Operator
		l, r Literal
		want Literal
	}{
		{"add", OpPlus, Signed(Signed32, 40), Signed(Signed32, 2), Signed(Signed32, 42)},
		{"sub_wraps_unsigned", OpMinus, Unsigned(Unsigned8, 1), Unsigned(Unsigned8, 2), Unsigned(Unsigned8, 0xFF)},
		{"mul_promotes", OpStar, Unsigned(Unsigned8, 200), Unsigned(Unsigned16, 2), Unsigned(Unsigned16, 400)},
		{"div_truncates", OpSlash, Signed(Signed32, -7), Signed(Signed32, 2), Signed(Signed32, -3)},
		{"rem_sign_of_dividend", OpPercent, Signed(Signed32, -7), Signed(Signed32, 2), Signed(Signed32, -1)},
		{"shr", OpShiftRight, Signed(Signed32, 0xAA), Signed(Signed32, 4), Signed(Signed32, 0x0A)},
		{"shl", OpShiftLeft, Unsigned(Unsigned8, 1), Unsigned(Unsigned8, 7), Unsigned(Unsigned8, 0x80)},
		{"shift_past_width", OpShiftLeft, Unsigned(Unsigned32, 1), Unsigned(Unsigned32, 32), Unsigned(Unsigned32, 0)},
		{"and", OpBitAnd, Unsigned(Unsigned16, 0xF0F0), Unsigned(Unsigned16, 0xFF00), Unsigned(Unsigned16, 0xF000)},
		{"xor", OpBitXor, Unsigned(Unsigned8, 0xFF), Unsigned(Unsigned8, 0x0F), Unsigned(Unsigned8, 0xF0)},
		{"eq", OpEqual, Signed(Signed32, 0xFF), Signed(Signed32, 255), Bool(true)},
		{"lt_mixed_sign", OpLess, Signed(Signed32, -1), Unsigned(Unsigned32, 1), Bool(false)},
		{"bool_xor", OpBoolXor, Bool(true), Bool(true), Bool(false)},
		{"bool_or", OpBoolOr, Bool(false), Signed(Signed32, 3), Bool(true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Binary(tt.op, tt.l, tt.r)
			if err != nil {
				t.Fatalf("Binary: %v", err)
			}
			if got.Type != tt.want.Type || got.Big().Cmp(tt.want.Big()) != 0 {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestBinary128BitWrap(t *testing.T) {
	max := FromBig(Unsigned128, new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)))
	got, err := Binary(OpPlus, max, Unsigned(Unsigned128, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got.Big().Sign() != 0 {
		t.Errorf("u128 max + 1 = %s, want 0", got)
	}

	got, err = Binary(OpMinus, Signed(Signed128, 0), Unsigned(Unsigned128, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != Unsigned128 || got.Bits() != (Int128{Hi: ^uint64(0), Lo: ^uint64(0)}) {
		t.Errorf("s128 0 - u128 1 = %#v, want all ones u128", got)
	}
}

func TestBinaryFloats(t *testing.T) {
	got, err := Binary(OpGreater, FromFloat(Float, 3.14), FromFloat(Double, 1.41))
	if err != nil || !got.IsTrue() {
		t.Errorf("3.14F > 1.41D = %v, %v", got, err)
	}

	_, err = Binary(OpBitOr, Signed(Signed32, 0x7F), FromFloat(Double, 1.0))
	if !errors.Is(err, ErrFloatBitwise) {
		t.Errorf("expected ErrFloatBitwise, got %v", err)
	}
}

func TestBinaryDivisionByZero(t *testing.T) {
	for _, op := range []Operator{OpSlash, OpPercent} {
		if _, err := Binary(op, Signed(Signed32, 1), Signed(Signed32, 0)); !errors.Is(err, ErrDivisionByZero) {
			t.Errorf("%s: expected ErrDivisionByZero, got %v", op, err)
		}
	}
}

func TestUnary(t *testing.T) {
	tests := []struct {
		name string
		op   Operator
		v    Literal
		want Literal
	}{
		{"neg", OpMinus, Signed(Signed32, 5), Signed(Signed32, -5)},
		{"neg_unsigned_wraps", OpMinus, Unsigned(Unsigned8, 1), Unsigned(Unsigned8, 0xFF)},
		{"not", OpBitNot, Unsigned(Unsigned16, 0x00FF), Unsigned(Unsigned16, 0xFF00)},
		{"bool_not", OpBoolNot, Signed(Signed32, 0), Bool(true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unary(tt.op, tt.v)
			if err != nil {
				t.Fatal(err)
			}
			if got.Type != tt.want.Type || got.Big().Cmp(tt.want.Big()) != 0 {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}

	if _, err := Unary(OpBitNot, FromFloat(Float, 1)); !errors.Is(err, ErrFloatBitwise) {
		t.Errorf("~float: expected ErrFloatBitwise, got %v", err)
	}
}

func TestLiteralBytes(t *testing.T) {
	v := Unsigned(Unsigned32, 0x11223344)
	if got := v.Bytes(Little); string(got) != "\x44\x33\x22\x11" {
		t.Errorf("little = % x", got)
	}
	if got := v.Bytes(Big); string(got) != "\x11\x22\x33\x44" {
		t.Errorf("big = % x", got)
	}
}

func TestSignedNormalize(t *testing.T) {
	v := Unsigned(Signed8, 0xFF)
	if v.Int64() != -1 {
		t.Errorf("s8 0xFF = %d, want -1", v.Int64())
	}
	if v.Big().Int64() != -1 {
		t.Errorf("Big() = %s", v.Big())
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		typ    ValueType
		data   []byte
		endian Endian
		want   string
	}{
		{"u16_le", Unsigned16, []byte{0x34, 0x12}, Little, "4660"},
		{"u16_be", Unsigned16, []byte{0x12, 0x34}, Big, "4660"},
		{"s8_negative", Signed8, []byte{0xFF}, Little, "-1"},
		{"s32_be_negative", Signed32, []byte{0xFF, 0xFF, 0xFF, 0xFE}, Big, "-2"},
		{"u128", Unsigned128, []byte{1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0}, Little, "18446744073709551617"},
		{"float", Float, []byte{0x00, 0x00, 0xC0, 0x3F}, Little, "1.5"},
		{"double_be", Double, []byte{0x40, 0x09, 0x21, 0xFB, 0x54, 0x44, 0x2D, 0x18}, Big, "3.141592653589793"},
		{"bool", Boolean, []byte{2}, Little, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.typ, tt.data, tt.endian)
			if got.Type != tt.typ || got.String() != tt.want {
				t.Errorf("Decode() = %#v, want %s(%s)", got, tt.typ, tt.want)
			}
		})
	}
}
