package evaluator

import (
	"maps"
	"slices"

	"github.com/sansecio/hexpat/ast"
	"github.com/sansecio/hexpat/builtin"
	"github.com/sansecio/hexpat/internal/suggest"
	"github.com/sansecio/hexpat/token"
)

// variable is a function local. Untyped parameters have type Any and keep
// whatever value they were called with.
type variable struct {
	typ   token.ValueType
	value builtin.Value
}

// frame holds the block scopes of one function call.
type frame struct {
	blocks []map[string]*variable
}

func (e *Evaluator) lookupLocal(name string) (*variable, bool) {
	if len(e.frames) == 0 {
		return nil, false
	}
	f := e.frames[len(e.frames)-1]
	for i := len(f.blocks) - 1; i >= 0; i-- {
		if v, ok := f.blocks[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (e *Evaluator) callFunction(n *ast.FunctionCall) (builtin.Value, error) {
	params := make([]builtin.Value, len(n.Params))
	for i, param := range n.Params {
		v, err := e.evaluateExpression(param)
		if err != nil {
			return builtin.Void, err
		}
		params[i] = v
	}
	return e.invoke(n, n.Name, params)
}

// invoke calls a user-defined function or, failing that, a builtin.
func (e *Evaluator) invoke(node ast.Node, name string, params []builtin.Value) (builtin.Value, error) {
	defer e.transition(CallingFunction)()

	if fn, ok := e.functions[name]; ok {
		return e.callUser(node, fn, params)
	}
	if fn, ok := e.opts.Builtins.Lookup(name); ok {
		if err := fn.Params.Check(name, len(params)); err != nil {
			return builtin.Void, e.wrap(node, err)
		}
		c := &builtin.Context{Context: e.ctx, Console: e.console, Provider: e.provider}
		v, err := fn.Fn(c, params)
		if err != nil {
			return builtin.Void, e.wrap(node, err)
		}
		return v, nil
	}

	names := append(slices.Collect(maps.Keys(e.functions)), e.opts.Builtins.Names()...)
	return builtin.Void, e.errorf(node, "no function named '%s' found%s", name, suggest.Hint(name, names))
}

func (e *Evaluator) callUser(node ast.Node, fn *ast.FunctionDefinition, params []builtin.Value) (builtin.Value, error) {
	if err := builtin.Exactly(len(fn.Params)).Check(fn.Name, len(params)); err != nil {
		return builtin.Void, e.wrap(node, err)
	}
	exit, err := e.enter(node)
	if err != nil {
		return builtin.Void, err
	}
	defer exit()

	args := make(map[string]*variable, len(fn.Params))
	for i, p := range fn.Params {
		v := &variable{typ: token.Any, value: params[i]}
		if p.Type != nil {
			if params[i].Kind != builtin.KindNumber {
				return builtin.Void, e.errorf(node, "parameter '%s' of function '%s' expects a %s", p.Name, fn.Name, *p.Type)
			}
			v.typ = *p.Type
			v.value = builtin.Number(params[i].Literal.Cast(*p.Type))
		}
		args[p.Name] = v
	}

	e.frames = append(e.frames, &frame{blocks: []map[string]*variable{args}})
	defer func() { e.frames = e.frames[:len(e.frames)-1] }()

	v, _, err := e.execute(fn.Body)
	return v, err
}

// execute runs function statements in a new block. returned reports
// whether a return statement was reached.
func (e *Evaluator) execute(body []ast.Node) (v builtin.Value, returned bool, err error) {
	f := e.frames[len(e.frames)-1]
	f.blocks = append(f.blocks, make(map[string]*variable))
	defer func() { f.blocks = f.blocks[:len(f.blocks)-1] }()

	for _, stmt := range body {
		if err := e.checkInterrupted(stmt); err != nil {
			return builtin.Void, false, err
		}

		switch n := stmt.(type) {
		case *ast.FunctionCall:
			if _, err := e.callFunction(n); err != nil {
				return builtin.Void, false, err
			}

		case *ast.VariableDecl:
			if err := e.declareLocal(f, n); err != nil {
				return builtin.Void, false, err
			}

		case *ast.Assignment:
			if err := e.assign(n); err != nil {
				return builtin.Void, false, err
			}

		case *ast.Return:
			if n.Value == nil {
				return builtin.Void, true, nil
			}
			v, err := e.evaluateExpression(n.Value)
			return v, true, err

		case *ast.Conditional:
			cond, err := e.evaluateNumber(n.Condition)
			if err != nil {
				return builtin.Void, false, err
			}
			branch := n.False
			if cond.IsTrue() {
				branch = n.True
			}
			if v, returned, err := e.execute(branch); err != nil || returned {
				return v, returned, err
			}

		case *ast.WhileStatement:
			for {
				if err := e.checkInterrupted(n); err != nil {
					return builtin.Void, false, err
				}
				cond, err := e.evaluateNumber(n.Condition)
				if err != nil {
					return builtin.Void, false, err
				}
				if !cond.IsTrue() {
					break
				}
				if v, returned, err := e.execute(n.Body); err != nil || returned {
					return v, returned, err
				}
			}

		default:
			return builtin.Void, false, e.errorf(stmt, "invalid statement in function body")
		}
	}
	return builtin.Void, false, nil
}

func (e *Evaluator) declareLocal(f *frame, n *ast.VariableDecl) error {
	block := f.blocks[len(f.blocks)-1]
	if _, ok := block[n.Name]; ok {
		return e.errorf(n, "redefinition of variable '%s'", n.Name)
	}
	bt, ok := e.asBuiltin(n.Type)
	if !ok || bt.typ == token.Padding {
		return e.errorf(n, "local variable '%s' must have a built-in type", n.Name)
	}
	block[n.Name] = &variable{typ: bt.typ, value: builtin.Number(token.FromInt128(bt.typ, token.Int128{}))}
	return nil
}

func (e *Evaluator) assign(n *ast.Assignment) error {
	v, ok := e.lookupLocal(n.Name)
	if !ok {
		return e.errorf(n, "no identifier with name '%s' was found", n.Name)
	}
	value, err := e.evaluateExpression(n.Value)
	if err != nil {
		return err
	}
	switch {
	case value.Kind == builtin.KindVoid:
		return e.errorf(n, "function returning void used in expression")
	case v.typ == token.Any:
		v.value = value
	case value.Kind != builtin.KindNumber:
		return e.errorf(n, "invalid rvalue used in assignment")
	default:
		v.value = builtin.Number(value.Literal.Cast(v.typ))
	}
	return nil
}
