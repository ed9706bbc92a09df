package evaluator

import (
	"github.com/sansecio/hexpat/ast"
	"github.com/sansecio/hexpat/builtin"
	"github.com/sansecio/hexpat/internal/suggest"
	"github.com/sansecio/hexpat/pattern"
)

var knownAttributes = []string{"color", "comment", "format", "hidden", "name"}

// applyAttributes updates p from [[...]] annotations.
func (e *Evaluator) applyAttributes(p pattern.Pattern, attrs []*ast.Attribute) error {
	b := p.Common()
	for _, a := range attrs {
		switch a.Name {
		case "hidden":
			b.Hidden = true
			continue
		case "color", "comment", "format", "name":
		default:
			return e.errorf(a, "unknown or invalid attribute '%s'%s", a.Name, suggest.Hint(a.Name, knownAttributes))
		}

		if a.Value == nil {
			return e.errorf(a, "attribute '%s' expects a parameter", a.Name)
		}
		value := *a.Value

		switch a.Name {
		case "color":
			c, ok := pattern.ParseColor(value)
			if !ok {
				return e.errorf(a, "invalid color value '%s'", value)
			}
			b.Color = 0
			paint(p, c)
		case "comment":
			b.Comment = value
		case "name":
			b.DisplayName = value
		case "format":
			formatted, err := e.formatPattern(a, p, value)
			if err != nil {
				return err
			}
			b.Formatted = formatted
		}
	}
	return nil
}

// formatPattern calls the function fn with the value of p and returns the
// result as text.
func (e *Evaluator) formatPattern(a *ast.Attribute, p pattern.Pattern, fn string) (string, error) {
	v, err := e.patternValue(a, p)
	if err != nil {
		return "", err
	}
	res, err := e.invoke(a, fn, []builtin.Value{v})
	if err != nil {
		return "", err
	}
	if res.Kind == builtin.KindVoid {
		return "", e.errorf(a, "format function '%s' does not return a value", fn)
	}
	return res.String(), nil
}
