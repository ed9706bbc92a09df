// Package validator performs the static checks that run between parsing
// and evaluation. It never evaluates expressions beyond constant literals.
package validator

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/sansecio/hexpat/ast"
	"github.com/sansecio/hexpat/token"
)

// MaxBitfieldEntry is the widest bitfield entry in bits.
const MaxBitfieldEntry = 64

var bigMaxEntry = big.NewInt(MaxBitfieldEntry)

// Error is a validation failure at a source line.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

func errorf(line int, format string, args ...any) *Error {
	return &Error{Line: line, Message: fmt.Sprintf(format, args...)}
}

// Validate returns the first problem found in nodes, or nil.
func Validate(nodes []ast.Node) error {
	errs := check(nodes)
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}

// ValidateAll reports every problem found in nodes joined into one error.
func ValidateAll(nodes []ast.Node) error {
	errs := check(nodes)
	joined := make([]error, len(errs))
	for i, e := range errs {
		joined[i] = e
	}
	return errors.Join(joined...)
}

type checker struct {
	types map[string]*ast.TypeDecl
	errs  []*Error
}

func check(nodes []ast.Node) []*Error {
	c := &checker{types: make(map[string]*ast.TypeDecl)}
	c.collectTypes(nodes)
	c.checkNames(nodes)
	for _, n := range nodes {
		ast.Inspect(n, c.visit)
	}
	c.checkRecursion()
	return c.errs
}

func (c *checker) fail(line int, format string, args ...any) {
	c.errs = append(c.errs, errorf(line, format, args...))
}

func (c *checker) collectTypes(nodes []ast.Node) {
	for _, n := range nodes {
		ast.Inspect(n, func(n ast.Node) bool {
			if decl, ok := n.(*ast.TypeDecl); ok && decl.Name != "" {
				if _, dup := c.types[decl.Name]; !dup {
					c.types[decl.Name] = decl
				}
			}
			return true
		})
	}
}

// checkNames rejects top-level declarations sharing a name.
func (c *checker) checkNames(nodes []ast.Node) {
	seen := make(map[string]bool)
	for _, n := range nodes {
		name := declName(n)
		if name == "" {
			continue
		}
		if seen[name] {
			c.fail(ast.Line(n), "redefinition of identifier '%s'", name)
		}
		seen[name] = true
	}
}

func declName(n ast.Node) string {
	switch n := n.(type) {
	case *ast.TypeDecl:
		return n.Name
	case *ast.VariableDecl:
		return n.Name
	case *ast.ArrayVariableDecl:
		return n.Name
	case *ast.PointerVariableDecl:
		return n.Name
	case *ast.FunctionDefinition:
		return n.Name
	}
	return ""
}

func (c *checker) visit(n ast.Node) bool {
	switch n := n.(type) {
	case *ast.Struct:
		c.checkMembers(n.Members)
	case *ast.Union:
		c.checkMembers(n.Members)
	case *ast.Enum:
		c.checkEnum(n)
	case *ast.Bitfield:
		c.checkBitfield(n)
	case *ast.VariableDecl:
		c.checkPlacement(n.Placement)
	case *ast.ArrayVariableDecl:
		c.checkPlacement(n.Placement)
	case *ast.PointerVariableDecl:
		c.checkPlacement(n.Placement)
	case *ast.FunctionDefinition:
		return false
	}
	return true
}

func (c *checker) checkMembers(members []ast.Node) {
	seen := make(map[string]bool)
	for _, m := range members {
		name := declName(m)
		if _, isType := m.(*ast.TypeDecl); name == "" || isType {
			continue
		}
		if seen[name] {
			c.fail(ast.Line(m), "redeclaration of member '%s'", name)
		}
		seen[name] = true
	}
}

func (c *checker) checkEnum(e *ast.Enum) {
	if vt, ok := c.builtin(e.Underlying); !ok || !vt.IsInteger() {
		c.fail(ast.Line(e), "enum underlying type must be a builtin integer type")
	}
	seen := make(map[string]bool)
	for _, entry := range e.Entries {
		if seen[entry.Name] {
			c.fail(ast.Line(e), "redeclaration of enum constant '%s'", entry.Name)
		}
		seen[entry.Name] = true
	}
}

func (c *checker) checkBitfield(b *ast.Bitfield) {
	seen := make(map[string]bool)
	for _, entry := range b.Entries {
		if entry.Name != "" {
			if seen[entry.Name] {
				c.fail(ast.Line(b), "redeclaration of member '%s'", entry.Name)
			}
			seen[entry.Name] = true
		}
		lit, ok := entry.Size.(*ast.IntegerLiteral)
		if !ok {
			continue
		}
		if lit.Value.Type.IsFloat() {
			c.fail(ast.Line(lit), "bitfield entry size must be an integer")
			continue
		}
		if v := lit.Value.Big(); v.Sign() <= 0 || v.Cmp(bigMaxEntry) > 0 {
			c.fail(ast.Line(lit), "bitfield entry must occupy between 1 and %d bits", MaxBitfieldEntry)
		}
	}
}

func (c *checker) checkPlacement(n ast.Node) {
	switch n := n.(type) {
	case *ast.StringLiteral:
		c.fail(ast.Line(n), "placement offset must be an integer expression")
	case *ast.IntegerLiteral:
		if n.Value.Type.IsFloat() {
			c.fail(ast.Line(n), "placement offset must be an integer expression")
		}
	}
}

// builtin resolves n through aliases to a builtin value type.
func (c *checker) builtin(n ast.Node) (token.ValueType, bool) {
	seen := make(map[string]bool)
	for {
		switch t := n.(type) {
		case *ast.BuiltinType:
			return t.Type, true
		case *ast.TypeDecl:
			n = t.Type
		case *ast.TypeRef:
			decl, ok := c.types[t.Name]
			if !ok || seen[t.Name] {
				return 0, false
			}
			seen[t.Name] = true
			n = decl
		default:
			return 0, false
		}
	}
}
