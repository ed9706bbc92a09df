package pattern

import (
	"fmt"
	"math"
	"strings"

	"github.com/sansecio/hexpat/token"
)

// Format renders the value of p for display. A value produced by a format
// attribute takes precedence.
func Format(p Pattern) string {
	if f := p.Common().Formatted; f != "" {
		return f
	}

	switch p := p.(type) {
	case *Unsigned:
		return formatInteger(p.Value, p.Size)
	case *Signed:
		return formatInteger(p.Value, p.Size)
	case *BitfieldField:
		return formatInteger(p.Value, uint64(p.BitSize+7)/8)
	case *Float:
		var bits uint64
		if p.Value.Type == token.Float {
			bits = uint64(math.Float32bits(float32(p.Value.Float64())))
		} else {
			bits = math.Float64bits(p.Value.Float64())
		}
		return fmt.Sprintf("%e (0x%0*X)", p.Value.Float64(), int(p.Size*2), bits)
	case *Boolean:
		switch p.Raw {
		case 0:
			return "false"
		case 1:
			return "true"
		default:
			return "true*"
		}
	case *Character:
		return fmt.Sprintf("'%s'", p.Value)
	case *String:
		return fmt.Sprintf("%q", printable(p.Data))
	case *Enum:
		name, ok := p.Entry()
		if !ok {
			return "???"
		}
		return p.TypeName + "::" + name
	case *Bitfield:
		var sb strings.Builder
		sb.WriteString("{ ")
		for _, b := range p.Data {
			fmt.Fprintf(&sb, "%02X ", b)
		}
		sb.WriteString("}")
		return sb.String()
	case *Pointer:
		return fmt.Sprintf("*(0x%X)", p.Address.Big())
	case *Struct, *Union, *Array:
		return "{ ... }"
	}
	return ""
}

// formatInteger prints the decimal value and the two's complement bits
// padded to the width of the pattern.
func formatInteger(v token.Literal, size uint64) string {
	bits := v.Bits()
	var hex string
	switch {
	case size > 8:
		hex = fmt.Sprintf("%0*X%016X", int(size-8)*2, bits.Hi, bits.Lo)
	case size == 8:
		hex = fmt.Sprintf("%016X", bits.Lo)
	default:
		hex = fmt.Sprintf("%0*X", int(size)*2, bits.Lo&(1<<(8*size)-1))
	}
	return fmt.Sprintf("%s (0x%s)", v.Big(), hex)
}

// printable drops a trailing zero byte and blanks control characters.
func printable(data []byte) string {
	if n := len(data); n > 0 && data[n-1] == 0 {
		data = data[:n-1]
	}
	out := make([]byte, len(data))
	for i, b := range data {
		if b < 0x20 || b == 0x7F {
			b = ' '
		}
		out[i] = b
	}
	return string(out)
}

// TypeDisplay returns the type of p as shown next to its name.
func TypeDisplay(p Pattern) string {
	name := p.Common().TypeName
	switch p := p.(type) {
	case *Struct:
		return strings.TrimSpace("struct " + name)
	case *Union:
		return strings.TrimSpace("union " + name)
	case *Enum:
		return strings.TrimSpace("enum " + name)
	case *Bitfield:
		return strings.TrimSpace("bitfield " + name)
	case *BitfieldField:
		return "bits"
	case *Array:
		return fmt.Sprintf("%s[%d]", p.ElementType, len(p.Entries))
	case *Pointer:
		target := "?"
		if p.Target != nil {
			target = TypeDisplay(p.Target)
		}
		return fmt.Sprintf("%s* : %s", target, p.Address.Type)
	case *String:
		return fmt.Sprintf("String[%d]", len(p.Data))
	case *Padding:
		return "padding"
	}
	return name
}
