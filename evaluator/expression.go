package evaluator

import (
	"strings"

	"github.com/sansecio/hexpat/ast"
	"github.com/sansecio/hexpat/builtin"
	"github.com/sansecio/hexpat/internal/suggest"
	"github.com/sansecio/hexpat/pattern"
	"github.com/sansecio/hexpat/token"
)

// evaluateNumber evaluates node and requires a numeric result.
func (e *Evaluator) evaluateNumber(node ast.Node) (token.Literal, error) {
	v, err := e.evaluateExpression(node)
	if err != nil {
		return token.Literal{}, err
	}
	switch v.Kind {
	case builtin.KindNumber:
		return v.Literal, nil
	case builtin.KindText:
		return token.Literal{}, e.errorf(node, "expected integer, got string")
	}
	return token.Literal{}, e.errorf(node, "function returning void used in expression")
}

func (e *Evaluator) evaluateExpression(node ast.Node) (builtin.Value, error) {
	defer e.transition(EvaluatingExpression)()

	switch n := node.(type) {
	case *ast.IntegerLiteral:
		return builtin.Number(n.Value), nil

	case *ast.StringLiteral:
		return builtin.Text(n.Value), nil

	case *ast.CurrentOffset:
		return builtin.Number(token.Unsigned(token.Unsigned64, e.offset)), nil

	case *ast.MathExpr:
		return e.evaluateMath(n)

	case *ast.UnaryExpr:
		v, err := e.evaluateNumber(n.Operand)
		if err != nil {
			return builtin.Void, err
		}
		res, err := token.Unary(n.Op, v)
		if err != nil {
			return builtin.Void, e.wrap(n, err)
		}
		return builtin.Number(res), nil

	case *ast.TernaryExpr:
		cond, err := e.evaluateNumber(n.First)
		if err != nil {
			return builtin.Void, err
		}
		if cond.IsTrue() {
			return e.evaluateExpression(n.Second)
		}
		return e.evaluateExpression(n.Third)

	case *ast.RValue:
		return e.evaluateRValue(n)

	case *ast.ScopeResolution:
		v, err := e.resolveEnumEntry(n)
		if err != nil {
			return builtin.Void, err
		}
		return builtin.Number(v), nil

	case *ast.TypeOperator:
		return e.evaluateTypeOperator(n)

	case *ast.FunctionCall:
		v, err := e.callFunction(n)
		if err != nil {
			return builtin.Void, err
		}
		if v.Kind == builtin.KindVoid {
			return builtin.Void, e.errorf(n, "function returning void used in expression")
		}
		return v, nil
	}
	return builtin.Void, e.errorf(node, "invalid expression")
}

func (e *Evaluator) evaluateMath(n *ast.MathExpr) (builtin.Value, error) {
	// Logical operators short-circuit.
	if n.Op == token.OpBoolAnd || n.Op == token.OpBoolOr {
		l, err := e.evaluateNumber(n.Left)
		if err != nil {
			return builtin.Void, err
		}
		if (n.Op == token.OpBoolAnd) != l.IsTrue() {
			return builtin.Number(token.Bool(l.IsTrue())), nil
		}
		r, err := e.evaluateNumber(n.Right)
		if err != nil {
			return builtin.Void, err
		}
		return builtin.Number(token.Bool(r.IsTrue())), nil
	}

	l, err := e.evaluateExpression(n.Left)
	if err != nil {
		return builtin.Void, err
	}
	r, err := e.evaluateExpression(n.Right)
	if err != nil {
		return builtin.Void, err
	}
	if l.Kind == builtin.KindVoid || r.Kind == builtin.KindVoid {
		return builtin.Void, e.errorf(n, "function returning void used in expression")
	}

	if l.Kind == builtin.KindText || r.Kind == builtin.KindText {
		return e.evaluateText(n, l, r)
	}
	res, err := token.Binary(n.Op, l.Literal, r.Literal)
	if err != nil {
		return builtin.Void, e.wrap(n, err)
	}
	return builtin.Number(res), nil
}

// evaluateText supports concatenation and comparison of strings.
func (e *Evaluator) evaluateText(n *ast.MathExpr, l, r builtin.Value) (builtin.Value, error) {
	if l.Kind != r.Kind {
		if n.Op == token.OpPlus {
			return builtin.Text(l.String() + r.String()), nil
		}
		return builtin.Void, e.errorf(n, "invalid operand types for operator '%s'", n.Op)
	}
	switch n.Op {
	case token.OpPlus:
		return builtin.Text(l.Text + r.Text), nil
	case token.OpEqual:
		return builtin.Number(token.Bool(l.Text == r.Text)), nil
	case token.OpNotEqual:
		return builtin.Number(token.Bool(l.Text != r.Text)), nil
	}
	return builtin.Void, e.errorf(n, "invalid operator '%s' used on strings", n.Op)
}

func (e *Evaluator) evaluateRValue(n *ast.RValue) (builtin.Value, error) {
	if len(n.Path) == 1 && !n.Path[0].Parent {
		if v, ok := e.lookupLocal(n.Path[0].Name); ok {
			return v.value, nil
		}
	}

	p, err := e.resolvePath(n)
	if err != nil {
		return builtin.Void, err
	}
	return e.patternValue(n, p)
}

// patternValue converts a pattern to a value usable in expressions.
func (e *Evaluator) patternValue(node ast.Node, p pattern.Pattern) (builtin.Value, error) {
	if s, ok := p.(*pattern.String); ok {
		return builtin.Text(string(trimZero(s.Data))), nil
	}
	if v, ok := pattern.Value(p); ok {
		return builtin.Number(v), nil
	}
	return builtin.Void, e.errorf(node, "%s '%s' cannot be used in an expression", p.Kind(), p.Common().Name)
}

func trimZero(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == 0 {
		return b[:n-1]
	}
	return b
}

// resolvePath finds the pattern named by an r-value path. The first name
// is looked up in the innermost scope, then in the global scope; each
// parent moves one scope outward.
func (e *Evaluator) resolvePath(n *ast.RValue) (pattern.Pattern, error) {
	level := len(e.scopes) - 1
	i := 0
	for ; i < len(n.Path) && n.Path[i].Parent; i++ {
		level--
		if level < 0 {
			return nil, e.errorf(n, "no parent available for identifier")
		}
	}
	if i == len(n.Path) {
		return nil, e.errorf(n, "expected member name after 'parent'")
	}

	first := n.Path[i].Name
	current, ok := findByName(e.scopes[level].patterns, first)
	if !ok && i == 0 && level != 0 {
		current, ok = findByName(e.scopes[0].patterns, first)
	}
	if !ok {
		return nil, e.errorf(n, "no identifier with name '%s' was found%s", first, suggest.Hint(first, e.visibleNames(level)))
	}

	for _, seg := range n.Path[i+1:] {
		if ptr, ok := current.(*pattern.Pointer); ok {
			if ptr.Target == nil {
				return nil, e.errorf(n, "pointer '%s' is not resolved yet", ptr.Name)
			}
			current = ptr.Target
		}

		switch {
		case seg.Index != nil:
			next, err := e.index(n, current, seg.Index)
			if err != nil {
				return nil, err
			}
			current = next
		case seg.Parent:
			return nil, e.errorf(n, "'parent' may only appear at the start of a path")
		default:
			next, ok := pattern.Member(current, seg.Name)
			if !ok {
				return nil, e.errorf(n, "no member with name '%s' found in '%s'%s",
					seg.Name, current.Common().Name, suggest.Hint(seg.Name, memberNames(current)))
			}
			current = next
		}
	}
	return current, nil
}

func (e *Evaluator) index(n *ast.RValue, p pattern.Pattern, expr ast.Node) (pattern.Pattern, error) {
	idx, err := e.evaluateNumber(expr)
	if err != nil {
		return nil, err
	}
	i := idx.Uint64()
	switch p := p.(type) {
	case *pattern.Array:
		if idx.Big().Sign() < 0 || i >= uint64(len(p.Entries)) {
			return nil, e.errorf(n, "array index out of bounds")
		}
		return p.Entries[i], nil
	case *pattern.String:
		if idx.Big().Sign() < 0 || i >= uint64(len(p.Data)) {
			return nil, e.errorf(n, "array index out of bounds")
		}
		return &pattern.Character{
			Base:  pattern.Base{Offset: p.Offset + i, Size: 1, Name: "", TypeName: "char", Endian: p.Endian, Color: p.Color},
			Value: token.Char(p.Data[i]),
		}, nil
	}
	return nil, e.errorf(n, "cannot index non-array '%s'", p.Common().Name)
}

func findByName(patterns []pattern.Pattern, name string) (pattern.Pattern, bool) {
	// Later declarations shadow earlier ones.
	for i := len(patterns) - 1; i >= 0; i-- {
		if patterns[i].Common().Name == name {
			return patterns[i], true
		}
	}
	return nil, false
}

func memberNames(p pattern.Pattern) []string {
	var names []string
	for _, m := range pattern.Members(p) {
		names = append(names, m.Common().Name)
	}
	return names
}

func (e *Evaluator) visibleNames(level int) []string {
	var names []string
	for _, p := range e.scopes[level].patterns {
		names = append(names, p.Common().Name)
	}
	if level != 0 {
		for _, p := range e.scopes[0].patterns {
			names = append(names, p.Common().Name)
		}
	}
	for _, f := range e.frames {
		for _, b := range f.blocks {
			for name := range b {
				names = append(names, name)
			}
		}
	}
	return names
}

// resolveEnumEntry evaluates Enum::Entry.
func (e *Evaluator) resolveEnumEntry(n *ast.ScopeResolution) (token.Literal, error) {
	typeName := strings.Join(n.Path[:len(n.Path)-1], "::")
	entryName := n.Path[len(n.Path)-1]

	decl, ok := e.types[typeName]
	if !ok {
		return token.Literal{}, e.errorf(n, "no type named '%s' found%s", typeName, suggest.Hint(typeName, e.typeNames()))
	}
	enum, ok := e.underlyingNode(decl).(*ast.Enum)
	if !ok {
		return token.Literal{}, e.errorf(n, "invalid scope resolution. '%s' is not an enum", typeName)
	}
	entries, _, err := e.enumEntries(enum)
	if err != nil {
		return token.Literal{}, err
	}
	var names []string
	for _, entry := range entries {
		if entry.Name == entryName {
			return entry.Value, nil
		}
		names = append(names, entry.Name)
	}
	return token.Literal{}, e.errorf(n, "no enum entry named '%s' in '%s'%s", entryName, typeName, suggest.Hint(entryName, names))
}

func (e *Evaluator) evaluateTypeOperator(n *ast.TypeOperator) (builtin.Value, error) {
	if len(n.Target.Path) == 1 && !n.Target.Path[0].Parent {
		if v, ok := e.lookupLocal(n.Target.Path[0].Name); ok {
			if n.Op == token.OpAddressOf {
				return builtin.Void, e.errorf(n, "cannot take the address of local variable '%s'", n.Target.Path[0].Name)
			}
			return builtin.Number(token.Unsigned(token.Unsigned64, uint64(v.typ.Size()))), nil
		}
	}

	p, err := e.resolvePath(n.Target)
	if err != nil {
		return builtin.Void, err
	}
	if n.Op == token.OpAddressOf {
		return builtin.Number(token.Unsigned(token.Unsigned64, p.Common().Offset)), nil
	}
	return builtin.Number(token.Unsigned(token.Unsigned64, p.Common().Size)), nil
}
