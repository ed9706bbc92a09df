// Package evaluator runs a parsed pattern program against a provider and
// produces the pattern tree.
//
// The evaluator is a single-threaded tree walker. It keeps a current
// offset that advances as values are laid out, a stack of endian
// overrides, a stack of scopes holding the patterns materialized so far and
// the type and function tables of the program. Only Interrupt and State
// may be called from another goroutine.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/sansecio/hexpat/ast"
	"github.com/sansecio/hexpat/builtin"
	"github.com/sansecio/hexpat/console"
	"github.com/sansecio/hexpat/pattern"
	"github.com/sansecio/hexpat/provider"
	"github.com/sansecio/hexpat/token"
)

// DefaultEvalDepth is the nesting limit used when Options.EvalDepth is 0.
const DefaultEvalDepth = 32

// ErrInterrupted is wrapped by the error returned from an interrupted run.
var ErrInterrupted = errors.New("evaluation interrupted")

// errOutOfRange marks reads past the end of the provider.
var errOutOfRange = errors.New("out of range")

// Error is an evaluation failure at a source line.
type Error struct {
	Line    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Options configures an Evaluator.
type Options struct {
	DefaultEndian token.Endian
	EvalDepth     int
	Builtins      *builtin.Registry
	Logger        *slog.Logger
}

// Evaluator lays out patterns. It may be reused; every call to Evaluate
// starts from a clean state.
type Evaluator struct {
	opts        Options
	console     *console.Console
	palette     pattern.Palette
	interrupted atomic.Bool
	state       atomic.Uint32

	ctx       context.Context
	provider  provider.Provider
	types     map[string]*ast.TypeDecl
	functions map[string]*ast.FunctionDefinition
	offset    uint64
	endian    []token.Endian
	scopes    []*scope
	frames    []*frame
	depth     int
	pointers  pointerTable
}

// scope holds the patterns of one struct, union or the global level.
type scope struct {
	patterns []pattern.Pattern
}

// New returns an evaluator configured by opts.
func New(opts Options) *Evaluator {
	if opts.EvalDepth <= 0 {
		opts.EvalDepth = DefaultEvalDepth
	}
	if opts.Builtins == nil {
		opts.Builtins = builtin.NewRegistry()
	}
	return &Evaluator{
		opts:    opts,
		console: console.New(opts.Logger),
	}
}

// SetDefaultEndian sets the byte order used where no override applies.
func (e *Evaluator) SetDefaultEndian(endian token.Endian) { e.opts.DefaultEndian = endian }

// SetEvalDepth sets the nesting limit. Values below 1 restore the default.
func (e *Evaluator) SetEvalDepth(depth int) {
	if depth <= 0 {
		depth = DefaultEvalDepth
	}
	e.opts.EvalDepth = depth
}

// Console returns the console of the last run.
func (e *Evaluator) Console() *console.Console { return e.console }

// Interrupt makes the running evaluation, or the next one, fail with
// ErrInterrupted at the next statement or member.
func (e *Evaluator) Interrupt() { e.interrupted.Store(true) }

// Evaluate runs nodes against p and returns the root patterns. On failure
// no patterns are returned.
func (e *Evaluator) Evaluate(ctx context.Context, nodes []ast.Node, p provider.Provider) (_ []pattern.Pattern, err error) {
	e.reset(ctx, p)
	e.setState(RunningTopLevel)
	defer func() {
		e.interrupted.Store(false)
		if err != nil {
			e.setState(Failed)
		} else {
			e.setState(Done)
		}
	}()

	global := e.pushScope()
	for _, node := range nodes {
		if err := e.checkInterrupted(node); err != nil {
			return nil, err
		}
		if err := e.evaluateTopLevel(node, global); err != nil {
			return nil, err
		}
	}
	e.popScope()
	return global.patterns, nil
}

func (e *Evaluator) reset(ctx context.Context, p provider.Provider) {
	e.ctx = ctx
	e.provider = p
	e.types = make(map[string]*ast.TypeDecl)
	e.functions = make(map[string]*ast.FunctionDefinition)
	e.offset = 0
	e.endian = nil
	e.scopes = nil
	e.frames = nil
	e.depth = 0
	e.pointers = newPointerTable()
	e.console.Clear()
	e.palette.Reset()
}

func (e *Evaluator) evaluateTopLevel(node ast.Node, global *scope) error {
	switch n := node.(type) {
	case *ast.TypeDecl:
		e.types[n.Name] = n
		return nil
	case *ast.FunctionDefinition:
		if _, ok := e.functions[n.Name]; ok {
			return e.errorf(n, "redefinition of function '%s'", n.Name)
		}
		e.functions[n.Name] = n
		return nil
	case *ast.FunctionCall:
		_, err := e.callFunction(n)
		return err
	case *ast.VariableDecl, *ast.ArrayVariableDecl, *ast.PointerVariableDecl:
		if err := e.place(node); err != nil {
			return err
		}
		p, err := e.layoutVariable(node)
		if err != nil {
			return err
		}
		global.patterns = append(global.patterns, p)
		return nil
	}
	return e.errorf(node, "invalid top level statement")
}

// place moves the current offset to the placement of a declaration, if it
// has one.
func (e *Evaluator) place(node ast.Node) error {
	var placement ast.Node
	switch n := node.(type) {
	case *ast.VariableDecl:
		placement = n.Placement
	case *ast.ArrayVariableDecl:
		placement = n.Placement
	case *ast.PointerVariableDecl:
		placement = n.Placement
	}
	if placement == nil {
		return nil
	}

	v, err := e.evaluateNumber(placement)
	if err != nil {
		return err
	}
	if v.Type.IsFloat() || v.Big().Sign() < 0 {
		return e.errorf(placement, "placement offset must be a non-negative integer")
	}
	offset := v.Uint64()
	if offset > e.provider.Size() {
		return e.errorf(node, "variable placed out of range")
	}
	e.offset = offset
	return nil
}

func (e *Evaluator) pushScope() *scope {
	s := &scope{}
	e.scopes = append(e.scopes, s)
	return s
}

func (e *Evaluator) popScope() {
	e.scopes = e.scopes[:len(e.scopes)-1]
}

func (e *Evaluator) currentEndian() token.Endian {
	if n := len(e.endian); n > 0 {
		return e.endian[n-1]
	}
	return e.opts.DefaultEndian
}

// enter increases the nesting depth and returns the matching exit.
func (e *Evaluator) enter(node ast.Node) (func(), error) {
	if e.depth >= e.opts.EvalDepth {
		return nil, e.errorf(node, "evaluation depth exceeds maximum of %d. Use #pragma eval_depth <depth> to increase the maximum", e.opts.EvalDepth)
	}
	e.depth++
	return func() { e.depth-- }, nil
}

func (e *Evaluator) checkInterrupted(node ast.Node) error {
	if e.interrupted.Load() {
		return &Error{Line: ast.Line(node), Message: ErrInterrupted.Error(), Err: ErrInterrupted}
	}
	if err := e.ctx.Err(); err != nil {
		return &Error{Line: ast.Line(node), Message: ErrInterrupted.Error(), Err: errors.Join(ErrInterrupted, err)}
	}
	return nil
}

func (e *Evaluator) errorf(node ast.Node, format string, args ...any) *Error {
	return &Error{Line: ast.Line(node), Message: fmt.Sprintf(format, args...)}
}

// wrap attaches the line of node to errors raised outside the evaluator.
func (e *Evaluator) wrap(node ast.Node, err error) error {
	var evalErr *Error
	if errors.As(err, &evalErr) {
		return err
	}
	return &Error{Line: ast.Line(node), Message: err.Error(), Err: err}
}
