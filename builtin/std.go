package builtin

import (
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/sansecio/hexpat/console"
	"github.com/sansecio/hexpat/scanner"
	"github.com/sansecio/hexpat/token"
)

// Std returns a registry holding the std:: library.
func Std() *Registry {
	r := NewRegistry()

	r.Add("std::assert", Exactly(2), assert)
	r.Add("std::assert_warn", Exactly(2), assertWarn)
	r.Add("std::print", AtLeast(1), printMessage)
	r.Add("std::format", AtLeast(1), formatMessage)

	r.Add("std::mem::read_unsigned", Exactly(2), readInteger("std::mem::read_unsigned", false))
	r.Add("std::mem::read_signed", Exactly(2), readInteger("std::mem::read_signed", true))
	r.Add("std::mem::size", Exactly(0), memSize)
	r.Add("std::mem::base_address", Exactly(0), baseAddress)
	r.Add("std::mem::align_to", Exactly(2), alignTo)
	r.Add("std::mem::find_sequence", AtLeast(2), findSequence)
	r.Add("std::mem::find_string", Exactly(2), findString)
	r.Add("std::mem::find_regex", Exactly(2), findRegex)

	r.Add("std::str::length", Exactly(1), strLength)
	return r
}

func assert(c *Context, params []Value) (Value, error) {
	msg, err := text("std::assert", params, 1)
	if err != nil {
		return Void, err
	}
	if !params[0].Literal.IsTrue() || params[0].Kind != KindNumber {
		return Void, c.Console.Abort(msg)
	}
	return Void, nil
}

func assertWarn(c *Context, params []Value) (Value, error) {
	msg, err := text("std::assert_warn", params, 1)
	if err != nil {
		return Void, err
	}
	if !params[0].Literal.IsTrue() || params[0].Kind != KindNumber {
		c.Console.Log(console.Warning, fmt.Sprintf("assertion failed \"%s\"", msg))
	}
	return Void, nil
}

func printMessage(c *Context, params []Value) (Value, error) {
	msg, err := substitute("std::print", params)
	if err != nil {
		return Void, err
	}
	c.Console.Log(console.Info, msg)
	return Void, nil
}

func formatMessage(_ *Context, params []Value) (Value, error) {
	msg, err := substitute("std::format", params)
	if err != nil {
		return Void, err
	}
	return Text(msg), nil
}

// substitute replaces each {} in the first parameter with the next
// remaining parameter.
func substitute(name string, params []Value) (string, error) {
	f, err := text(name, params, 0)
	if err != nil {
		return "", err
	}
	args := params[1:]

	var sb strings.Builder
	for {
		i := strings.Index(f, "{}")
		if i < 0 {
			break
		}
		if len(args) == 0 {
			return "", fmt.Errorf("%s: format string expects more arguments", name)
		}
		sb.WriteString(f[:i])
		sb.WriteString(args[0].String())
		args = args[1:]
		f = f[i+2:]
	}
	sb.WriteString(f)
	return sb.String(), nil
}

func readInteger(name string, signed bool) Func {
	return func(c *Context, params []Value) (Value, error) {
		address, err := number(name, params, 0)
		if err != nil {
			return Void, err
		}
		size, err := number(name, params, 1)
		if err != nil {
			return Void, err
		}
		n := size.Uint64()
		if n < 1 || n > 16 {
			return Void, fmt.Errorf("%s: invalid read size %d", name, n)
		}

		buf := make([]byte, n)
		if err := c.Provider.Read(address.Uint64(), buf); err != nil {
			return Void, fmt.Errorf("%s: %w", name, err)
		}
		bits := token.DecodeBits(buf, token.Little)
		if !signed {
			return Number(token.FromInt128(token.Unsigned128, bits)), nil
		}
		v := token.FromInt128(token.Unsigned128, bits).Big()
		if buf[n-1]&0x80 != 0 {
			v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(8*n)))
		}
		return Number(token.FromBig(token.Signed128, v)), nil
	}
}

func memSize(c *Context, _ []Value) (Value, error) {
	return Number(token.Unsigned(token.Unsigned128, c.Provider.Size())), nil
}

func baseAddress(c *Context, _ []Value) (Value, error) {
	return Number(token.Unsigned(token.Unsigned128, c.Provider.BaseAddress())), nil
}

func alignTo(_ *Context, params []Value) (Value, error) {
	alignment, err := number("std::mem::align_to", params, 0)
	if err != nil {
		return Void, err
	}
	value, err := number("std::mem::align_to", params, 1)
	if err != nil {
		return Void, err
	}
	a, v := alignment.Big(), value.Big()
	if a.Sign() <= 0 {
		return Void, fmt.Errorf("std::mem::align_to: alignment must be positive")
	}
	if rem := new(big.Int).Mod(v, a); rem.Sign() != 0 {
		v.Add(v, a.Sub(a, rem))
	}
	return Number(token.FromBig(token.Unsigned128, v)), nil
}

func occurrence(name string, params []Value) (int, error) {
	n, err := number(name, params, 0)
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}

func offsetResult(offset uint64, found bool, err error) (Value, error) {
	if err != nil {
		return Void, err
	}
	if !found {
		return Number(token.Signed(token.Signed128, -1)), nil
	}
	return Number(token.Unsigned(token.Signed128, offset)), nil
}

func findSequence(c *Context, params []Value) (Value, error) {
	const name = "std::mem::find_sequence"
	occ, err := occurrence(name, params)
	if err != nil {
		return Void, err
	}
	seq := make([]byte, 0, len(params)-1)
	for i := 1; i < len(params); i++ {
		b, err := number(name, params, i)
		if err != nil {
			return Void, err
		}
		if b.Big().Sign() < 0 || b.Uint64() > 0xFF || b.Bits().Hi != 0 {
			return Void, fmt.Errorf("%s: parameter %d is not a byte", name, i+1)
		}
		seq = append(seq, byte(b.Uint64()))
	}
	return offsetResult(scanner.FindSequence(c.Context, c.Provider, seq, occ))
}

func findString(c *Context, params []Value) (Value, error) {
	const name = "std::mem::find_string"
	occ, err := occurrence(name, params)
	if err != nil {
		return Void, err
	}
	s, err := text(name, params, 1)
	if err != nil {
		return Void, err
	}
	if s == "" {
		return Void, fmt.Errorf("%s: empty search string", name)
	}
	return offsetResult(scanner.FindSequence(c.Context, c.Provider, []byte(s), occ))
}

func findRegex(c *Context, params []Value) (Value, error) {
	const name = "std::mem::find_regex"
	occ, err := occurrence(name, params)
	if err != nil {
		return Void, err
	}
	expr, err := text(name, params, 1)
	if err != nil {
		return Void, err
	}
	return offsetResult(scanner.FindRegex(c.Context, c.Provider, expr, occ))
}

func strLength(_ *Context, params []Value) (Value, error) {
	s, err := text("std::str::length", params, 0)
	if err != nil {
		return Void, err
	}
	return Number(token.Unsigned(token.Unsigned128, uint64(utf8.RuneCountInString(s)))), nil
}
