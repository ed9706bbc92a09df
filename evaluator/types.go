package evaluator

import (
	"fmt"
	"math/big"
	"slices"
	"sort"

	"github.com/sansecio/hexpat/ast"
	"github.com/sansecio/hexpat/internal/suggest"
	"github.com/sansecio/hexpat/pattern"
	"github.com/sansecio/hexpat/provider"
	"github.com/sansecio/hexpat/token"
)

// layoutVariable lays out a variable, array or pointer declaration at the
// current offset and applies its attributes.
func (e *Evaluator) layoutVariable(node ast.Node) (pattern.Pattern, error) {
	defer e.transition(LayingOutType)()

	color := e.palette.Next()
	var (
		p    pattern.Pattern
		name string
		err  error
	)
	switch n := node.(type) {
	case *ast.VariableDecl:
		name = n.Name
		p, err = e.evaluateType(n.Type)
	case *ast.ArrayVariableDecl:
		name = n.Name
		p, err = e.layoutArray(n, color)
	case *ast.PointerVariableDecl:
		name = n.Name
		p, err = e.layoutPointer(n)
	default:
		return nil, e.errorf(node, "invalid variable declaration")
	}
	if err != nil {
		return nil, err
	}

	p.Common().Name = name
	if ptr, ok := p.(*pattern.Pointer); ok && ptr.Target != nil && !ptr.Shared {
		ptr.Target.Common().Name = "*" + name
	}
	paint(p, color)
	if err := e.applyAttributes(p, ast.Attributes(node)); err != nil {
		return nil, err
	}
	return p, nil
}

// paint assigns color to p unless it already has one. Bitfield fields take
// the color of their bitfield.
func paint(p pattern.Pattern, color uint32) {
	b := p.Common()
	if b.Color == 0 {
		b.Color = color
	}
	if bf, ok := p.(*pattern.Bitfield); ok {
		for _, f := range bf.Fields {
			f.Color = b.Color
		}
	}
}

// evaluateType lays out one value of typ at the current offset.
func (e *Evaluator) evaluateType(typ ast.Node) (pattern.Pattern, error) {
	switch t := typ.(type) {
	case *ast.TypeDecl:
		if t.Endian != nil {
			e.endian = append(e.endian, *t.Endian)
			defer func() { e.endian = e.endian[:len(e.endian)-1] }()
		}
		p, err := e.evaluateType(t.Type)
		if err != nil {
			return nil, err
		}
		if t.Name != "" {
			p.Common().TypeName = t.Name
		}
		if err := e.applyAttributes(p, ast.Attributes(t)); err != nil {
			return nil, err
		}
		return p, nil

	case *ast.TypeRef:
		decl, ok := e.types[t.Name]
		if !ok {
			return nil, e.errorf(t, "unresolved type '%s'%s", t.Name, suggest.Hint(t.Name, e.typeNames()))
		}
		exit, err := e.enter(t)
		if err != nil {
			return nil, err
		}
		defer exit()
		return e.evaluateType(decl)

	case *ast.BuiltinType:
		return e.evaluateBuiltin(t, t.Type)

	case *ast.Struct:
		return e.evaluateStruct(t)

	case *ast.Union:
		return e.evaluateUnion(t)

	case *ast.Enum:
		return e.evaluateEnum(t)

	case *ast.Bitfield:
		return e.evaluateBitfield(t)
	}
	return nil, e.errorf(typ, "invalid type")
}

// read returns size bytes at the current offset without advancing it.
func (e *Evaluator) read(node ast.Node, size uint64) ([]byte, error) {
	if !provider.InRange(e.provider, e.offset, size) {
		return nil, &Error{Line: ast.Line(node), Message: "variable placed out of range", Err: errOutOfRange}
	}
	buf := make([]byte, size)
	if err := e.provider.Read(e.offset, buf); err != nil {
		return nil, e.wrap(node, err)
	}
	return buf, nil
}

func (e *Evaluator) evaluateBuiltin(node ast.Node, vt token.ValueType) (pattern.Pattern, error) {
	if vt == token.Padding {
		return nil, e.errorf(node, "padding may only be used as padding[size]")
	}
	size := uint64(vt.Size())
	buf, err := e.read(node, size)
	if err != nil {
		return nil, err
	}

	endian := e.currentEndian()
	base := pattern.Base{Offset: e.offset, Size: size, TypeName: vt.String(), Endian: endian}
	e.offset += size

	v := token.Decode(vt, buf, endian)
	switch {
	case vt.IsUnsigned():
		return &pattern.Unsigned{Base: base, Value: v}, nil
	case vt.IsSigned():
		return &pattern.Signed{Base: base, Value: v}, nil
	case vt.IsFloat():
		return &pattern.Float{Base: base, Value: v}, nil
	case vt == token.Boolean:
		return &pattern.Boolean{Base: base, Raw: buf[0]}, nil
	default:
		return &pattern.Character{Base: base, Value: v}, nil
	}
}

// layout tracks the extent of a struct or union while its members are
// evaluated.
type layout struct {
	union bool
	start uint64
	end   uint64
}

func (e *Evaluator) evaluateStruct(t *ast.Struct) (pattern.Pattern, error) {
	s := &pattern.Struct{Base: pattern.Base{Offset: e.offset, Endian: e.currentEndian()}}
	members, size, err := e.evaluateCompound(t.Members, false)
	if err != nil {
		return nil, err
	}
	s.Members, s.Size = members, size
	return s, nil
}

func (e *Evaluator) evaluateUnion(t *ast.Union) (pattern.Pattern, error) {
	u := &pattern.Union{Base: pattern.Base{Offset: e.offset, Endian: e.currentEndian()}}
	members, size, err := e.evaluateCompound(t.Members, true)
	if err != nil {
		return nil, err
	}
	u.Members, u.Size = members, size
	return u, nil
}

// evaluateCompound lays out the members of a struct or union in a new
// scope and leaves the current offset at its end.
func (e *Evaluator) evaluateCompound(members []ast.Node, union bool) ([]pattern.Pattern, uint64, error) {
	sc := e.pushScope()
	defer e.popScope()

	l := &layout{union: union, start: e.offset, end: e.offset}
	if err := e.evaluateMembers(members, sc, l); err != nil {
		return nil, 0, err
	}
	e.offset = l.end
	return sc.patterns, l.end - l.start, nil
}

func (e *Evaluator) evaluateMembers(members []ast.Node, sc *scope, l *layout) error {
	for _, member := range members {
		if err := e.checkInterrupted(member); err != nil {
			return err
		}

		switch n := member.(type) {
		case *ast.VariableDecl, *ast.ArrayVariableDecl, *ast.PointerVariableDecl:
			if l.union {
				e.offset = l.start
			}
			p, err := e.layoutVariable(member)
			if err != nil {
				return err
			}
			sc.patterns = append(sc.patterns, p)
			l.end = max(l.end, e.offset)

		case *ast.Conditional:
			cond, err := e.evaluateNumber(n.Condition)
			if err != nil {
				return err
			}
			body := n.False
			if cond.IsTrue() {
				body = n.True
			}
			if err := e.evaluateMembers(body, sc, l); err != nil {
				return err
			}

		case *ast.WhileStatement:
			for {
				if err := e.checkInterrupted(n); err != nil {
					return err
				}
				cond, err := e.evaluateNumber(n.Condition)
				if err != nil {
					return err
				}
				if !cond.IsTrue() {
					break
				}
				if err := e.evaluateMembers(n.Body, sc, l); err != nil {
					return err
				}
			}

		case *ast.FunctionCall:
			if _, err := e.callFunction(n); err != nil {
				return err
			}

		case *ast.TypeDecl:
			e.types[n.Name] = n

		default:
			return e.errorf(member, "invalid member declaration")
		}
	}
	return nil
}

// builtinType is a built-in type reached through aliases, with the
// innermost endian override on the way.
type builtinType struct {
	typ    token.ValueType
	endian *token.Endian
}

// asBuiltin resolves typ to a built-in type through type declarations and
// references.
func (e *Evaluator) asBuiltin(typ ast.Node) (builtinType, bool) {
	for range maxAliasChain {
		switch t := typ.(type) {
		case *ast.BuiltinType:
			return builtinType{typ: t.Type}, true
		case *ast.TypeDecl:
			inner, ok := e.asBuiltin(t.Type)
			if ok && t.Endian != nil {
				inner.endian = t.Endian
			}
			return inner, ok
		case *ast.TypeRef:
			decl, ok := e.types[t.Name]
			if !ok {
				return builtinType{}, false
			}
			typ = decl
		default:
			return builtinType{}, false
		}
	}
	return builtinType{}, false
}

const maxAliasChain = 64

// underlyingNode strips declarations and references from typ.
func (e *Evaluator) underlyingNode(typ ast.Node) ast.Node {
	for range maxAliasChain {
		switch t := typ.(type) {
		case *ast.TypeDecl:
			typ = t.Type
		case *ast.TypeRef:
			decl, ok := e.types[t.Name]
			if !ok {
				return t
			}
			typ = decl
		default:
			return typ
		}
	}
	return typ
}

func (e *Evaluator) typeNames() []string {
	names := make([]string, 0, len(e.types))
	for name := range e.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// typeName is the name a type is displayed and keyed by.
func typeName(typ ast.Node) string {
	switch t := typ.(type) {
	case *ast.BuiltinType:
		return t.Type.String()
	case *ast.TypeRef:
		return t.Name
	case *ast.TypeDecl:
		if t.Name != "" {
			return t.Name
		}
		return typeName(t.Type)
	}
	return fmt.Sprintf("<anonymous:%d>", ast.Line(typ))
}

// enumEntries evaluates the constants of an enum and resolves its
// underlying type. Implicit values continue from the previous entry.
func (e *Evaluator) enumEntries(t *ast.Enum) ([]pattern.EnumEntry, builtinType, error) {
	underlying, ok := e.asBuiltin(t.Underlying)
	if !ok || !underlying.typ.IsInteger() {
		return nil, builtinType{}, e.errorf(t, "enum underlying type must be a builtin integer type")
	}

	vt := underlying.typ
	entries := make([]pattern.EnumEntry, 0, len(t.Entries))
	next := token.Unsigned(vt, 0)
	for _, entry := range t.Entries {
		v := next
		if entry.Value != nil {
			lit, err := e.evaluateNumber(entry.Value)
			if err != nil {
				return nil, builtinType{}, err
			}
			v = lit.Cast(vt)
		}
		entries = append(entries, pattern.EnumEntry{Name: entry.Name, Value: v})

		var err error
		if next, err = token.Binary(token.OpPlus, v, token.Unsigned(vt, 1)); err != nil {
			return nil, builtinType{}, e.wrap(t, err)
		}
	}
	return entries, underlying, nil
}

func (e *Evaluator) evaluateEnum(t *ast.Enum) (pattern.Pattern, error) {
	entries, underlying, err := e.enumEntries(t)
	if err != nil {
		return nil, err
	}
	if underlying.endian != nil {
		e.endian = append(e.endian, *underlying.endian)
		defer func() { e.endian = e.endian[:len(e.endian)-1] }()
	}

	vt := underlying.typ
	size := uint64(vt.Size())
	buf, err := e.read(t, size)
	if err != nil {
		return nil, err
	}
	endian := e.currentEndian()
	p := &pattern.Enum{
		Base:    pattern.Base{Offset: e.offset, Size: size, Endian: endian},
		Value:   token.Decode(vt, buf, endian),
		Entries: entries,
	}
	e.offset += size
	return p, nil
}

var maxBitfieldEntry = big.NewInt(64)

func (e *Evaluator) evaluateBitfield(t *ast.Bitfield) (pattern.Pattern, error) {
	sizes := make([]int, len(t.Entries))
	total := 0
	for i, entry := range t.Entries {
		v, err := e.evaluateNumber(entry.Size)
		if err != nil {
			return nil, err
		}
		if v.Type.IsFloat() || v.Big().Sign() <= 0 || v.Big().Cmp(maxBitfieldEntry) > 0 {
			return nil, e.errorf(t, "bitfield entry must occupy between 1 and 64 bits")
		}
		sizes[i] = int(v.Uint64())
		total += sizes[i]
	}

	size := uint64(total+7) / 8
	buf, err := e.read(t, size)
	if err != nil {
		return nil, err
	}
	endian := e.currentEndian()
	bf := &pattern.Bitfield{
		Base: pattern.Base{Offset: e.offset, Size: size, Endian: endian},
		Data: buf,
	}
	e.offset += size

	// Little endian fields start at the least significant bit, big endian
	// fields at the most significant bit of the value.
	ordered := slices.Clone(buf)
	if endian == token.Little {
		slices.Reverse(ordered)
	}
	value := new(big.Int).SetBytes(ordered)
	width := int(size * 8)

	bit := 0
	for i, entry := range t.Entries {
		shift := bit
		if endian == token.Big {
			shift = width - bit - sizes[i]
		}
		bit += sizes[i]
		if entry.Name == "" {
			continue
		}

		mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(sizes[i])), big.NewInt(1))
		field := new(big.Int).Rsh(value, uint(shift))
		field.And(field, mask)
		bf.Fields = append(bf.Fields, &pattern.BitfieldField{
			Base:      pattern.Base{Offset: bf.Offset, Size: bf.Size, Name: entry.Name, TypeName: "bits", Endian: endian},
			BitOffset: shift,
			BitSize:   sizes[i],
			Value:     token.Unsigned(token.Unsigned64, field.Uint64()),
		})
	}
	return bf, nil
}
