package evaluator

import (
	"errors"
	"fmt"

	"github.com/sansecio/hexpat/ast"
	"github.com/sansecio/hexpat/pattern"
	"github.com/sansecio/hexpat/provider"
	"github.com/sansecio/hexpat/token"
)

// layoutArray lays out padding, static, dynamic and zero-terminated
// arrays. Entries share the color of the array.
func (e *Evaluator) layoutArray(n *ast.ArrayVariableDecl, color uint32) (pattern.Pattern, error) {
	elem, isBuiltin := e.asBuiltin(n.Type)
	if isBuiltin && elem.typ == token.Padding {
		return e.layoutPadding(n)
	}
	if isBuiltin && elem.endian != nil {
		e.endian = append(e.endian, *elem.endian)
		defer func() { e.endian = e.endian[:len(e.endian)-1] }()
	}

	start := e.offset
	var (
		entries []pattern.Pattern
		err     error
	)
	switch size := n.Size.(type) {
	case nil:
		if !isBuiltin {
			return nil, e.errorf(n, "zero-terminated arrays require a built-in element type")
		}
		var count uint64
		if count, err = e.terminatedCount(n, uint64(elem.typ.Size())); err == nil {
			entries, err = e.layoutEntries(n, count, color)
		}
	case *ast.WhileStatement:
		entries, err = e.layoutWhile(n, size, color)
	default:
		var count uint64
		if count, err = e.arrayCount(n, size); err != nil {
			return nil, err
		}
		if isBuiltin && count > 0 && !fits(e.provider, start, count, uint64(elem.typ.Size())) {
			return nil, e.errorf(n, "array exceeds size of file")
		}
		entries, err = e.layoutEntries(n, count, color)
		if errors.Is(err, errOutOfRange) {
			return nil, e.errorf(n, "array exceeds size of file")
		}
	}
	if err != nil {
		return nil, err
	}

	if isBuiltin && elem.typ == token.Character {
		return toString(start, entries, e.currentEndian()), nil
	}
	name := typeName(n.Type)
	return &pattern.Array{
		Base:        pattern.Base{Offset: start, Size: e.offset - start, TypeName: name, Endian: e.currentEndian()},
		ElementType: name,
		Entries:     entries,
	}, nil
}

// fits reports whether count elements of elemSize fit at offset.
func fits(p provider.Provider, offset, count, elemSize uint64) bool {
	if elemSize != 0 && count > p.Size()/elemSize {
		return false
	}
	return provider.InRange(p, offset, count*elemSize)
}

func (e *Evaluator) layoutPadding(n *ast.ArrayVariableDecl) (pattern.Pattern, error) {
	count, err := e.arrayCount(n, n.Size)
	if err != nil {
		return nil, err
	}
	if !provider.InRange(e.provider, e.offset, count) {
		return nil, e.errorf(n, "array exceeds size of file")
	}
	p := &pattern.Padding{Base: pattern.Base{Offset: e.offset, Size: count, TypeName: "padding", Endian: e.currentEndian()}}
	e.offset += count
	return p, nil
}

func (e *Evaluator) arrayCount(n ast.Node, size ast.Node) (uint64, error) {
	v, err := e.evaluateNumber(size)
	if err != nil {
		return 0, err
	}
	if v.Type.IsFloat() || v.Big().Sign() < 0 {
		return 0, e.errorf(n, "array size must be a non-negative integer")
	}
	return v.Uint64(), nil
}

// terminatedCount counts elements up to and including the first element
// whose bytes are all zero.
func (e *Evaluator) terminatedCount(n ast.Node, elemSize uint64) (uint64, error) {
	buf := make([]byte, elemSize)
	for count := uint64(1); ; count++ {
		offset := e.offset + (count-1)*elemSize
		if !provider.InRange(e.provider, offset, elemSize) {
			return 0, e.errorf(n, "array exceeds size of file")
		}
		if err := e.provider.Read(offset, buf); err != nil {
			return 0, e.wrap(n, err)
		}
		if isZero(buf) {
			return count, nil
		}
	}
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

func (e *Evaluator) layoutEntries(n *ast.ArrayVariableDecl, count uint64, color uint32) ([]pattern.Pattern, error) {
	entries := make([]pattern.Pattern, 0, min(count, 1<<16))
	for i := range count {
		if err := e.checkInterrupted(n); err != nil {
			return nil, err
		}
		entry, err := e.layoutEntry(n, i, color)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// layoutWhile adds entries while cond holds and data is left.
func (e *Evaluator) layoutWhile(n *ast.ArrayVariableDecl, w *ast.WhileStatement, color uint32) ([]pattern.Pattern, error) {
	var entries []pattern.Pattern
	for i := uint64(0); e.offset < e.provider.Size(); i++ {
		if err := e.checkInterrupted(n); err != nil {
			return nil, err
		}
		cond, err := e.evaluateNumber(w.Condition)
		if err != nil {
			return nil, err
		}
		if !cond.IsTrue() {
			break
		}
		before := e.offset
		entry, err := e.layoutEntry(n, i, color)
		if err != nil {
			return nil, err
		}
		if e.offset == before {
			return nil, e.errorf(n, "array entries of type '%s' occupy no data", typeName(n.Type))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (e *Evaluator) layoutEntry(n *ast.ArrayVariableDecl, i uint64, color uint32) (pattern.Pattern, error) {
	entry, err := e.evaluateType(n.Type)
	if err != nil {
		return nil, err
	}
	entry.Common().Name = fmt.Sprintf("[%d]", i)
	paint(entry, color)
	return entry, nil
}

// toString replays a char array as a String pattern.
func toString(start uint64, entries []pattern.Pattern, endian token.Endian) *pattern.String {
	data := make([]byte, len(entries))
	for i, entry := range entries {
		data[i] = byte(entry.(*pattern.Character).Value.Uint64())
	}
	return &pattern.String{
		Base: pattern.Base{Offset: start, Size: uint64(len(data)), TypeName: "char", Endian: endian},
		Data: data,
	}
}
