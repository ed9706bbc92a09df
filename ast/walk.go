package ast

// Inspect traverses the tree rooted at n in depth-first order, calling f for
// every node. Children are skipped when f returns false.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, a := range Attributes(n) {
		Inspect(a, f)
	}
	each := func(nodes []Node) {
		for _, c := range nodes {
			Inspect(c, f)
		}
	}
	switch n := n.(type) {
	case *MathExpr:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *UnaryExpr:
		Inspect(n.Operand, f)
	case *TernaryExpr:
		Inspect(n.First, f)
		Inspect(n.Second, f)
		Inspect(n.Third, f)
	case *RValue:
		for _, s := range n.Path {
			if s.Index != nil {
				Inspect(s.Index, f)
			}
		}
	case *TypeOperator:
		Inspect(n.Target, f)
	case *FunctionCall:
		each(n.Params)
	case *TypeDecl:
		Inspect(n.Type, f)
	case *Struct:
		each(n.Members)
	case *Union:
		each(n.Members)
	case *Enum:
		Inspect(n.Underlying, f)
		for _, e := range n.Entries {
			if e.Value != nil {
				Inspect(e.Value, f)
			}
		}
	case *Bitfield:
		for _, e := range n.Entries {
			Inspect(e.Size, f)
		}
	case *VariableDecl:
		Inspect(n.Type, f)
		if n.Placement != nil {
			Inspect(n.Placement, f)
		}
	case *ArrayVariableDecl:
		Inspect(n.Type, f)
		if n.Size != nil {
			Inspect(n.Size, f)
		}
		if n.Placement != nil {
			Inspect(n.Placement, f)
		}
	case *PointerVariableDecl:
		Inspect(n.Type, f)
		Inspect(n.SizeType, f)
		if n.Placement != nil {
			Inspect(n.Placement, f)
		}
	case *Conditional:
		Inspect(n.Condition, f)
		each(n.True)
		each(n.False)
	case *WhileStatement:
		Inspect(n.Condition, f)
		each(n.Body)
	case *FunctionDefinition:
		each(n.Body)
	case *Assignment:
		Inspect(n.Value, f)
	case *Return:
		if n.Value != nil {
			Inspect(n.Value, f)
		}
	}
}

// Clone returns a deep copy of n. Attribute values are shared since they are
// never mutated after parsing.
func Clone(n Node) Node {
	if n == nil {
		return nil
	}
	switch n := n.(type) {
	case *Attribute:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		return &c
	case *IntegerLiteral:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		return &c
	case *StringLiteral:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		return &c
	case *CurrentOffset:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		return &c
	case *BuiltinType:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		return &c
	case *TypeRef:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		return &c
	case *ScopeResolution:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		c.Path = append([]string(nil), n.Path...)
		return &c
	case *MathExpr:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		c.Left, c.Right = Clone(n.Left), Clone(n.Right)
		return &c
	case *UnaryExpr:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		c.Operand = Clone(n.Operand)
		return &c
	case *TernaryExpr:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		c.First, c.Second, c.Third = Clone(n.First), Clone(n.Second), Clone(n.Third)
		return &c
	case *RValue:
		return cloneRValue(n)
	case *TypeOperator:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		c.Target = cloneRValue(n.Target)
		return &c
	case *FunctionCall:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		c.Params = cloneAll(n.Params)
		return &c
	case *TypeDecl:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		c.Type = Clone(n.Type)
		if n.Endian != nil {
			e := *n.Endian
			c.Endian = &e
		}
		return &c
	case *Struct:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		c.Members = cloneAll(n.Members)
		return &c
	case *Union:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		c.Members = cloneAll(n.Members)
		return &c
	case *Enum:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		c.Underlying = Clone(n.Underlying)
		c.Entries = make([]*EnumEntry, len(n.Entries))
		for i, e := range n.Entries {
			c.Entries[i] = &EnumEntry{Name: e.Name, Value: Clone(e.Value)}
		}
		return &c
	case *Bitfield:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		c.Entries = make([]*BitfieldEntry, len(n.Entries))
		for i, e := range n.Entries {
			c.Entries[i] = &BitfieldEntry{Name: e.Name, Size: Clone(e.Size)}
		}
		return &c
	case *VariableDecl:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		c.Type, c.Placement = Clone(n.Type), Clone(n.Placement)
		return &c
	case *ArrayVariableDecl:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		c.Type, c.Size, c.Placement = Clone(n.Type), Clone(n.Size), Clone(n.Placement)
		return &c
	case *PointerVariableDecl:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		c.Type, c.SizeType, c.Placement = Clone(n.Type), Clone(n.SizeType), Clone(n.Placement)
		return &c
	case *Conditional:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		c.Condition = Clone(n.Condition)
		c.True, c.False = cloneAll(n.True), cloneAll(n.False)
		return &c
	case *WhileStatement:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		c.Condition = Clone(n.Condition)
		c.Body = cloneAll(n.Body)
		return &c
	case *FunctionDefinition:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		c.Params = append([]Param(nil), n.Params...)
		c.Body = cloneAll(n.Body)
		return &c
	case *Assignment:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		c.Value = Clone(n.Value)
		return &c
	case *Return:
		c := *n
		c.Meta = cloneMeta(n.Meta)
		c.Value = Clone(n.Value)
		return &c
	}
	panic("ast: unknown node type")
}

func cloneRValue(n *RValue) *RValue {
	if n == nil {
		return nil
	}
	c := *n
	c.Meta = cloneMeta(n.Meta)
	c.Path = make([]PathSegment, len(n.Path))
	for i, s := range n.Path {
		c.Path[i] = PathSegment{Name: s.Name, Parent: s.Parent, Index: Clone(s.Index)}
	}
	return &c
}

func cloneMeta(m Meta) Meta {
	c := Meta{Line: m.Line}
	for _, a := range m.Attributes {
		c.Attributes = append(c.Attributes, Clone(a).(*Attribute))
	}
	return c
}

func cloneAll(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = Clone(n)
	}
	return out
}
