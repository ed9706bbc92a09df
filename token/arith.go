package token

import (
	"errors"
	"math"
	"math/big"
)

var (
	ErrFloatBitwise    = errors.New("bitwise operations on floating point numbers are forbidden")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrInvalidOperator = errors.New("invalid operator used in mathematical expression")
)

// Promote returns the type two operands are converted to before a binary
// operation. Floating point wins over integers; among integers the wider
// type wins and at equal width unsigned wins. Any yields the other side.
func Promote(a, b ValueType) ValueType {
	switch {
	case a == Any:
		return b
	case b == Any:
		return a
	case a == Double || b == Double:
		return Double
	case a == Float || b == Float:
		return Float
	}
	a, b = intType(a), intType(b)
	switch {
	case a.Size() > b.Size():
		return a
	case b.Size() > a.Size():
		return b
	case a.IsUnsigned():
		return a
	default:
		return b
	}
}

// Binary applies a binary operator. Both operands are converted to the
// promoted type first; integer results wrap to the promoted width.
func Binary(op Operator, l, r Literal) (Literal, error) {
	switch op {
	case OpBoolAnd:
		return Bool(l.IsTrue() && r.IsTrue()), nil
	case OpBoolOr:
		return Bool(l.IsTrue() || r.IsTrue()), nil
	case OpBoolXor:
		return Bool(l.IsTrue() != r.IsTrue()), nil
	}

	t := Promote(l.Type, r.Type)
	if t.IsFloat() {
		return floatBinary(op, t, l.Float64(), r.Float64())
	}
	l, r = l.Cast(t), r.Cast(t)

	switch op {
	case OpEqual, OpNotEqual, OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
		return Bool(compare(op, l.Big().Cmp(r.Big()))), nil
	case OpBitAnd:
		return FromInt128(t, Int128{Hi: l.bits.Hi & r.bits.Hi, Lo: l.bits.Lo & r.bits.Lo}), nil
	case OpBitOr:
		return FromInt128(t, Int128{Hi: l.bits.Hi | r.bits.Hi, Lo: l.bits.Lo | r.bits.Lo}), nil
	case OpBitXor:
		return FromInt128(t, Int128{Hi: l.bits.Hi ^ r.bits.Hi, Lo: l.bits.Lo ^ r.bits.Lo}), nil
	case OpShiftLeft, OpShiftRight:
		return shift(op, t, l, r), nil
	}

	a, b := l.Big(), r.Big()
	res := new(big.Int)
	switch op {
	case OpPlus:
		res.Add(a, b)
	case OpMinus:
		res.Sub(a, b)
	case OpStar:
		res.Mul(a, b)
	case OpSlash:
		if b.Sign() == 0 {
			return Literal{}, ErrDivisionByZero
		}
		res.Quo(a, b)
	case OpPercent:
		if b.Sign() == 0 {
			return Literal{}, ErrDivisionByZero
		}
		res.Rem(a, b)
	default:
		return Literal{}, ErrInvalidOperator
	}
	return FromBig(t, res), nil
}

func compare(op Operator, c int) bool {
	switch op {
	case OpEqual:
		return c == 0
	case OpNotEqual:
		return c != 0
	case OpGreater:
		return c > 0
	case OpLess:
		return c < 0
	case OpGreaterEqual:
		return c >= 0
	default:
		return c <= 0
	}
}

// shift by a count at or beyond the width of t yields 0.
func shift(op Operator, t ValueType, l, r Literal) Literal {
	count := r.Big()
	width := int64(intType(t).Size() * 8)
	if count.Sign() < 0 || !count.IsInt64() || count.Int64() >= width {
		return FromInt128(t, Int128{})
	}
	n := uint(count.Int64())
	if op == OpShiftLeft {
		return FromBig(t, new(big.Int).Lsh(l.Big(), n))
	}
	return FromBig(t, new(big.Int).Rsh(l.Big(), n))
}

func floatBinary(op Operator, t ValueType, a, b float64) (Literal, error) {
	switch op {
	case OpEqual, OpNotEqual, OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
		c := 0
		if a < b {
			c = -1
		} else if a > b {
			c = 1
		}
		return Bool(compare(op, c)), nil
	case OpPlus:
		return FromFloat(t, a+b), nil
	case OpMinus:
		return FromFloat(t, a-b), nil
	case OpStar:
		return FromFloat(t, a*b), nil
	case OpSlash:
		return FromFloat(t, a/b), nil
	case OpPercent:
		return FromFloat(t, math.Mod(a, b)), nil
	case OpBitAnd, OpBitOr, OpBitXor, OpShiftLeft, OpShiftRight:
		return Literal{}, ErrFloatBitwise
	default:
		return Literal{}, ErrInvalidOperator
	}
}

// Unary applies a prefix operator.
func Unary(op Operator, v Literal) (Literal, error) {
	switch op {
	case OpPlus:
		return v, nil
	case OpBoolNot:
		return Bool(!v.IsTrue()), nil
	case OpMinus:
		if v.Type.IsFloat() {
			return FromFloat(v.Type, -v.float), nil
		}
		t := intType(v.Type)
		return FromBig(t, new(big.Int).Neg(v.Big())), nil
	case OpBitNot:
		if v.Type.IsFloat() {
			return Literal{}, ErrFloatBitwise
		}
		t := intType(v.Type)
		return FromInt128(t, Int128{Hi: ^v.bits.Hi, Lo: ^v.bits.Lo}), nil
	default:
		return Literal{}, ErrInvalidOperator
	}
}
