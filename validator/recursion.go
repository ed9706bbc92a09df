package validator

import (
	"sort"

	"github.com/sansecio/hexpat/ast"
)

// checkRecursion rejects structs and unions that contain themselves by
// value. Pointers break the cycle.
func (c *checker) checkRecursion() {
	names := make([]string, 0, len(c.types))
	for name := range c.types {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		decl := c.types[name]
		switch decl.Type.(type) {
		case *ast.Struct, *ast.Union:
		default:
			continue
		}
		if c.contains(decl.Type, name, make(map[string]bool)) {
			c.fail(ast.Line(decl), "type '%s' contains itself by value", name)
		}
	}
}

// contains reports whether laying out n requires laying out the type target.
func (c *checker) contains(n ast.Node, target string, visited map[string]bool) bool {
	switch t := n.(type) {
	case *ast.TypeRef:
		if t.Name == target {
			return true
		}
		if visited[t.Name] {
			return false
		}
		visited[t.Name] = true
		decl, ok := c.types[t.Name]
		return ok && c.contains(decl.Type, target, visited)
	case *ast.TypeDecl:
		return c.contains(t.Type, target, visited)
	case *ast.Struct:
		return c.containsAny(t.Members, target, visited)
	case *ast.Union:
		return c.containsAny(t.Members, target, visited)
	case *ast.VariableDecl:
		return c.contains(t.Type, target, visited)
	case *ast.ArrayVariableDecl:
		return c.contains(t.Type, target, visited)
	case *ast.Conditional:
		return c.containsAny(t.True, target, visited) || c.containsAny(t.False, target, visited)
	case *ast.WhileStatement:
		return c.containsAny(t.Body, target, visited)
	}
	return false
}

func (c *checker) containsAny(nodes []ast.Node, target string, visited map[string]bool) bool {
	for _, n := range nodes {
		if decl, ok := n.(*ast.TypeDecl); ok && decl.Name != "" {
			continue
		}
		if c.contains(n, target, visited) {
			return true
		}
	}
	return false
}
