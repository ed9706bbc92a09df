package lexer

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/sansecio/hexpat/token"
)

var (
	maxSigned32  = big.NewInt(1<<31 - 1)
	maxSigned64  = big.NewInt(1<<63 - 1)
	maxSigned128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	maxUnsigned  = map[token.ValueType]*big.Int{
		token.Unsigned32:  new(big.Int).SetUint64(1<<32 - 1),
		token.Unsigned64:  new(big.Int).SetUint64(1<<64 - 1),
		token.Unsigned128: new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)),
	}
)

// parseNumber decodes an integer or floating point literal with its
// optional radix prefix and type suffix.
func parseNumber(text string) (token.Literal, error) {
	if strings.Contains(text, ".") {
		return parseFloat(text)
	}

	base, digits, radix := 10, text, "decimal"
	if len(text) > 1 && text[0] == '0' {
		switch text[1] {
		case 'x', 'X':
			base, digits, radix = 16, text[2:], "hexadecimal"
		case 'b', 'B':
			base, digits, radix = 2, text[2:], "binary"
		case 'o', 'O':
			base, digits, radix = 8, text[2:], "octal"
		}
	}

	digits, suffix := splitSuffix(digits, base)
	if digits == "" {
		return token.Literal{}, fmt.Errorf("invalid integer literal %q", text)
	}
	for _, c := range digits {
		if digitValue(c) >= base {
			return token.Literal{}, fmt.Errorf("invalid digit %q in %s literal %q", c, radix, text)
		}
	}

	value, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return token.Literal{}, fmt.Errorf("invalid integer literal %q", text)
	}
	if value.BitLen() > 128 {
		return token.Literal{}, fmt.Errorf("integer literal %q exceeds 128 bits", text)
	}

	switch strings.ToUpper(suffix) {
	case "":
		return token.FromBig(smallestSigned(value), value), nil
	case "U":
		return token.FromBig(smallestUnsigned(token.Unsigned32, value), value), nil
	case "UL":
		return token.FromBig(smallestUnsigned(token.Unsigned64, value), value), nil
	case "ULL":
		return token.FromBig(token.Unsigned128, value), nil
	case "L":
		if value.Cmp(maxSigned64) <= 0 {
			return token.FromBig(token.Signed64, value), nil
		}
		return token.FromBig(token.Signed128, value), nil
	case "LL":
		return token.FromBig(token.Signed128, value), nil
	case "F":
		return token.FromBig(token.Float, value), nil
	case "D":
		return token.FromBig(token.Double, value), nil
	}
	return token.Literal{}, fmt.Errorf("invalid integer literal suffix %q", suffix)
}

// splitSuffix separates the trailing type suffix. Hexadecimal literals
// cannot carry F or D since those are digits.
func splitSuffix(s string, base int) (digits, suffix string) {
	end := len(s)
	for end > 0 && strings.ContainsRune("uUlL", rune(s[end-1])) {
		end--
	}
	if end == len(s) && base != 16 && end > 0 && strings.ContainsRune("fFdD", rune(s[end-1])) {
		end--
	}
	return s[:end], s[end:]
}

func digitValue(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return 99
	}
}

// smallestSigned picks the first of s32, s64, s128 holding v, falling back
// to u128 for values only an unsigned 128-bit integer can hold.
func smallestSigned(v *big.Int) token.ValueType {
	switch {
	case v.Cmp(maxSigned32) <= 0:
		return token.Signed32
	case v.Cmp(maxSigned64) <= 0:
		return token.Signed64
	case v.Cmp(maxSigned128) <= 0:
		return token.Signed128
	default:
		return token.Unsigned128
	}
}

func smallestUnsigned(min token.ValueType, v *big.Int) token.ValueType {
	for _, t := range []token.ValueType{token.Unsigned32, token.Unsigned64, token.Unsigned128} {
		if t < min {
			continue
		}
		if v.Cmp(maxUnsigned[t]) <= 0 {
			return t
		}
	}
	return token.Unsigned128
}

func parseFloat(text string) (token.Literal, error) {
	t := token.Double
	body := text
	switch text[len(text)-1] {
	case 'f', 'F':
		t, body = token.Float, text[:len(text)-1]
	case 'd', 'D':
		body = text[:len(text)-1]
	}
	v, err := strconv.ParseFloat(body, 64)
	if err != nil || strings.ContainsAny(body, "xXbBoO_") {
		return token.Literal{}, fmt.Errorf("invalid floating point literal %q", text)
	}
	return token.FromFloat(t, v), nil
}

// unescape decodes backslash escapes in a string or character literal.
func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("invalid escape sequence at end of literal")
		}
		switch s[i] {
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\\', '\'', '"':
			b.WriteByte(s[i])
		case 'x':
			if i+3 > len(s) {
				return "", fmt.Errorf("invalid escape sequence \\x%s", s[i+1:])
			}
			v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("invalid escape sequence \\x%s", s[i+1:i+3])
			}
			b.WriteByte(byte(v))
			i += 2
		default:
			return "", fmt.Errorf("invalid escape sequence \\%c", s[i])
		}
	}
	return b.String(), nil
}
