package ast

// Clone deep-copies n and everything it reaches, so a caller (the
// monomorphizer) can produce an independent specialized copy of a generic
// declaration without mutating the original AST shared by other
// instantiations.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	cp := *n

	cp.Decls = cloneSlice(n.Decls)
	cp.Params = cloneParams(n.Params)
	cp.Body = Clone(n.Body)
	cp.ExprBody = Clone(n.ExprBody)
	cp.Fields = cloneFields(n.Fields)
	cp.Methods = cloneSlice(n.Methods)
	cp.Constructors = cloneSlice(n.Constructors)
	cp.Stmts = cloneSlice(n.Stmts)
	cp.VarInit = Clone(n.VarInit)
	cp.Expr = Clone(n.Expr)
	cp.Cond = Clone(n.Cond)
	cp.Then = Clone(n.Then)
	cp.Else = Clone(n.Else)
	cp.ForInit = Clone(n.ForInit)
	cp.ForCond = Clone(n.ForCond)
	cp.ForPost = Clone(n.ForPost)
	cp.Iterable = Clone(n.Iterable)
	cp.SwitchSubject = Clone(n.SwitchSubject)
	cp.SwitchCases = cloneSwitchCases(n.SwitchCases)
	cp.Left = Clone(n.Left)
	cp.Right = Clone(n.Right)
	cp.Operand = Clone(n.Operand)
	cp.Callee = Clone(n.Callee)
	cp.Args = cloneArgs(n.Args)
	cp.Object = Clone(n.Object)
	cp.Index = Clone(n.Index)
	cp.Elements = cloneSlice(n.Elements)
	cp.Fields2 = cloneObjectFields(n.Fields2)
	cp.CtorArgs = cloneSlice(n.CtorArgs)
	cp.RangeFrom = Clone(n.RangeFrom)
	cp.RangeTo = Clone(n.RangeTo)
	cp.CondTest = Clone(n.CondTest)
	cp.CondThen = Clone(n.CondThen)
	cp.CondElse = Clone(n.CondElse)
	cp.TemplateParts = cloneTemplateParts(n.TemplateParts)
	cp.TagCallee = Clone(n.TagCallee)
	cp.XMLAttrs = cloneObjectFields(n.XMLAttrs)
	cp.XMLChildren = cloneSlice(n.XMLChildren)
	cp.TableRows = cloneNodeGrid(n.TableRows)

	return &cp
}

func cloneSlice(ns []*Node) []*Node {
	if ns == nil {
		return nil
	}
	out := make([]*Node, len(ns))
	for i, n := range ns {
		out[i] = Clone(n)
	}
	return out
}

func cloneParams(ps []ParamDecl) []ParamDecl {
	if ps == nil {
		return nil
	}
	out := make([]ParamDecl, len(ps))
	for i, p := range ps {
		p.Default = Clone(p.Default)
		out[i] = p
	}
	return out
}

func cloneFields(fs []FieldDecl) []FieldDecl {
	if fs == nil {
		return nil
	}
	out := make([]FieldDecl, len(fs))
	for i, f := range fs {
		f.Default = Clone(f.Default)
		out[i] = f
	}
	return out
}

func cloneArgs(as []Arg) []Arg {
	if as == nil {
		return nil
	}
	out := make([]Arg, len(as))
	for i, a := range as {
		a.Value = Clone(a.Value)
		out[i] = a
	}
	return out
}

func cloneObjectFields(fs []ObjectField) []ObjectField {
	if fs == nil {
		return nil
	}
	out := make([]ObjectField, len(fs))
	for i, f := range fs {
		f.Value = Clone(f.Value)
		out[i] = f
	}
	return out
}

func cloneSwitchCases(cs []SwitchCase) []SwitchCase {
	if cs == nil {
		return nil
	}
	out := make([]SwitchCase, len(cs))
	for i, c := range cs {
		c.Values = cloneSlice(c.Values)
		c.Body = cloneSlice(c.Body)
		out[i] = c
	}
	return out
}

func cloneTemplateParts(ps []TemplatePart) []TemplatePart {
	if ps == nil {
		return nil
	}
	out := make([]TemplatePart, len(ps))
	for i, p := range ps {
		p.Expr = Clone(p.Expr)
		out[i] = p
	}
	return out
}

func cloneNodeGrid(rows [][]*Node) [][]*Node {
	if rows == nil {
		return nil
	}
	out := make([][]*Node, len(rows))
	for i, row := range rows {
		out[i] = cloneSlice(row)
	}
	return out
}

// Walk visits n and every node it reaches in source order, calling visit on
// each. Used by the monomorphizer's instantiation-collection pass and by
// backends that need a generic traversal instead of a kind switch.
func Walk(n *Node, visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, d := range n.Decls {
		Walk(d, visit)
	}
	Walk(n.Body, visit)
	Walk(n.ExprBody, visit)
	for _, f := range n.Fields {
		Walk(f.Default, visit)
	}
	for _, m := range n.Methods {
		Walk(m, visit)
	}
	for _, c := range n.Constructors {
		Walk(c, visit)
	}
	for _, p := range n.Params {
		Walk(p.Default, visit)
	}
	for _, s := range n.Stmts {
		Walk(s, visit)
	}
	Walk(n.VarInit, visit)
	Walk(n.Expr, visit)
	Walk(n.Cond, visit)
	Walk(n.Then, visit)
	Walk(n.Else, visit)
	Walk(n.ForInit, visit)
	Walk(n.ForCond, visit)
	Walk(n.ForPost, visit)
	Walk(n.Iterable, visit)
	Walk(n.SwitchSubject, visit)
	for _, c := range n.SwitchCases {
		for _, v := range c.Values {
			Walk(v, visit)
		}
		for _, s := range c.Body {
			Walk(s, visit)
		}
	}
	Walk(n.Left, visit)
	Walk(n.Right, visit)
	Walk(n.Operand, visit)
	Walk(n.Callee, visit)
	for _, a := range n.Args {
		Walk(a.Value, visit)
	}
	Walk(n.Object, visit)
	Walk(n.Index, visit)
	for _, e := range n.Elements {
		Walk(e, visit)
	}
	for _, f := range n.Fields2 {
		Walk(f.Value, visit)
	}
	for _, a := range n.CtorArgs {
		Walk(a, visit)
	}
	Walk(n.RangeFrom, visit)
	Walk(n.RangeTo, visit)
	Walk(n.CondTest, visit)
	Walk(n.CondThen, visit)
	Walk(n.CondElse, visit)
	for _, p := range n.TemplateParts {
		Walk(p.Expr, visit)
	}
	Walk(n.TagCallee, visit)
	for _, a := range n.XMLAttrs {
		Walk(a.Value, visit)
	}
	for _, c := range n.XMLChildren {
		Walk(c, visit)
	}
	for _, row := range n.TableRows {
		for _, cell := range row {
			Walk(cell, visit)
		}
	}
}
