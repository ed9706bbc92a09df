// Package builtin is the registry of host functions callable from pattern
// programs, along with the std:: library registered by default.
package builtin

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/sansecio/hexpat/console"
	"github.com/sansecio/hexpat/provider"
	"github.com/sansecio/hexpat/token"
)

type countKind uint8

const (
	exactly countKind = iota
	atLeast
	atMost
	unlimited
)

// ParamCount describes how many parameters a function accepts.
type ParamCount struct {
	kind countKind
	n    int
}

func Exactly(n int) ParamCount { return ParamCount{kind: exactly, n: n} }
func AtLeast(n int) ParamCount { return ParamCount{kind: atLeast, n: n} }
func AtMost(n int) ParamCount  { return ParamCount{kind: atMost, n: n} }
func Unlimited() ParamCount    { return ParamCount{kind: unlimited} }

// Check validates that function name may be called with n parameters.
func (pc ParamCount) Check(name string, n int) error {
	switch pc.kind {
	case exactly:
		if n > pc.n {
			return fmt.Errorf("too many parameters for function '%s'. Expected %d", name, pc.n)
		}
		if n < pc.n {
			return fmt.Errorf("too few parameters for function '%s'. Expected %d", name, pc.n)
		}
	case atLeast:
		if n < pc.n {
			return fmt.Errorf("too few parameters for function '%s'. Expected at least %d", name, pc.n)
		}
	case atMost:
		if n > pc.n {
			return fmt.Errorf("too many parameters for function '%s'. Expected at most %d", name, pc.n)
		}
	}
	return nil
}

// ValueKind classifies a Value.
type ValueKind uint8

const (
	KindVoid ValueKind = iota
	KindNumber
	KindText
)

// Value is a function argument or result.
type Value struct {
	Kind    ValueKind
	Literal token.Literal
	Text    string
}

// Void is the result of a function without a return value.
var Void = Value{}

func Number(l token.Literal) Value { return Value{Kind: KindNumber, Literal: l} }
func Text(s string) Value          { return Value{Kind: KindText, Text: s} }

func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return v.Literal.String()
	case KindText:
		return v.Text
	}
	return "void"
}

// Context is what a builtin sees of the running evaluation.
type Context struct {
	Context  context.Context
	Console  *console.Console
	Provider provider.Provider
}

// Func implements a builtin.
type Func func(c *Context, params []Value) (Value, error)

// Function is a registered builtin.
type Function struct {
	Params ParamCount
	Fn     Func
}

// Registry maps qualified names such as "std::print" to functions.
type Registry struct {
	funcs map[string]Function
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Function)}
}

// Add registers fn under name, replacing any previous registration.
func (r *Registry) Add(name string, params ParamCount, fn Func) {
	r.funcs[name] = Function{Params: params, Fn: fn}
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (Function, bool) {
	f, ok := r.funcs[name]
	return f, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.funcs))
}

// number returns parameter i as a numeric literal.
func number(name string, params []Value, i int) (token.Literal, error) {
	if params[i].Kind != KindNumber {
		return token.Literal{}, fmt.Errorf("%s: parameter %d must be a number", name, i+1)
	}
	return params[i].Literal, nil
}

// text returns parameter i as a string.
func text(name string, params []Value, i int) (string, error) {
	if params[i].Kind != KindText {
		return "", fmt.Errorf("%s: parameter %d must be a string", name, i+1)
	}
	return params[i].Text, nil
}
