package evaluator

import (
	"github.com/sansecio/hexpat/ast"
	"github.com/sansecio/hexpat/pattern"
	"github.com/sansecio/hexpat/token"
)

// pointerKey identifies a pointer target.
type pointerKey struct {
	offset   uint64
	typeName string
}

// pointerTable breaks pointer cycles. A target reached a second time is
// shared instead of laid out again. Pointers reaching a target that is
// still being laid out are patched once it is done.
type pointerTable struct {
	done    map[pointerKey]pattern.Pattern
	pending map[pointerKey][]*pattern.Pointer
}

func newPointerTable() pointerTable {
	return pointerTable{
		done:    make(map[pointerKey]pattern.Pattern),
		pending: make(map[pointerKey][]*pattern.Pointer),
	}
}

// share points ptr at an already visited target and reports whether it did.
func (t pointerTable) share(key pointerKey, ptr *pattern.Pointer) bool {
	if p, ok := t.done[key]; ok {
		ptr.Target, ptr.Shared = p, true
		return true
	}
	if waiting, ok := t.pending[key]; ok {
		ptr.Shared = true
		t.pending[key] = append(waiting, ptr)
		return true
	}
	return false
}

func (t pointerTable) begin(key pointerKey) {
	t.pending[key] = nil
}

func (t pointerTable) finish(key pointerKey, p pattern.Pattern) {
	for _, ptr := range t.pending[key] {
		ptr.Target = p
	}
	delete(t.pending, key)
	t.done[key] = p
}

// layoutPointer reads the address at the current offset, lays out the
// target there and continues after the address.
func (e *Evaluator) layoutPointer(n *ast.PointerVariableDecl) (pattern.Pattern, error) {
	sizeType, ok := e.asBuiltin(n.SizeType)
	if !ok || !sizeType.typ.IsUnsigned() {
		return nil, e.errorf(n, "expected unsigned builtin type as size")
	}

	endian := e.currentEndian()
	if sizeType.endian != nil {
		endian = *sizeType.endian
	}
	size := uint64(sizeType.typ.Size())
	buf, err := e.read(n, size)
	if err != nil {
		return nil, err
	}
	address := token.Decode(sizeType.typ, buf, endian)

	ptr := &pattern.Pointer{
		Base:    pattern.Base{Offset: e.offset, Size: size, TypeName: typeName(n.Type), Endian: endian},
		Address: address,
	}
	end := e.offset + size

	target := address.Uint64()
	if address.Bits().Hi != 0 || target >= e.provider.Size() {
		return nil, e.errorf(n, "pointer points past the end of the data")
	}

	key := pointerKey{offset: target, typeName: typeName(n.Type)}
	if !e.pointers.share(key, ptr) {
		e.pointers.begin(key)
		e.offset = target
		p, err := e.evaluateType(n.Type)
		if err != nil {
			return nil, err
		}
		paint(p, e.palette.Next())
		e.pointers.finish(key, p)
		ptr.Target = p
	}

	e.offset = end
	return ptr, nil
}
