package ast

// Walk traverses the AST starting from node, calling fn for each node.
// If fn returns false, Walk stops traversing that branch.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *NotExpr:
		Walk(n.Operand, fn)

	case *NegExpr:
		Walk(n.Operand, fn)

	case *GroupExpr:
		Walk(n.Inner, fn)

	case *BinaryExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)

	case *IfExpr:
		Walk(n.Cond, fn)
		Walk(n.Then, fn)
		Walk(n.Else, fn)

	case *LetExpr:
		for _, b := range n.Bindings {
			Walk(b, fn)
		}
		Walk(n.Body, fn)

	case *Binding:
		Walk(n.Value, fn)

	// Leaf nodes don't need traversal
	case *IntLit, *Ident:
	}
}

// Depth returns the nesting depth of the tree rooted at e; a leaf has depth 1.
func Depth(e Expr) int {
	switch n := e.(type) {
	case *NotExpr:
		return 1 + Depth(n.Operand)
	case *NegExpr:
		return 1 + Depth(n.Operand)
	case *GroupExpr:
		return 1 + Depth(n.Inner)
	case *BinaryExpr:
		return 1 + max(Depth(n.Left), Depth(n.Right))
	case *IfExpr:
		return 1 + max(Depth(n.Cond), Depth(n.Then), Depth(n.Else))
	case *LetExpr:
		d := Depth(n.Body)
		for _, b := range n.Bindings {
			d = max(d, Depth(b.Value))
		}
		return 1 + d
	default:
		return 1
	}
}

// FreeNames returns the identifiers referenced by e that are not bound by an
// enclosing let inside e, in first-occurrence order.
func FreeNames(e Expr) []string {
	idents := FreeIdents(e)
	if len(idents) == 0 {
		return nil
	}
	names := make([]string, len(idents))
	for i, id := range idents {
		names[i] = id.Name
	}
	return names
}

// FreeIdents is FreeNames returning the first free occurrence of each name.
func FreeIdents(e Expr) []*Ident {
	var out []*Ident
	seen := make(map[string]bool)
	var visit func(e Expr, bound map[string]bool)
	visit = func(e Expr, bound map[string]bool) {
		switch n := e.(type) {
		case *Ident:
			if !bound[n.Name] && !seen[n.Name] {
				seen[n.Name] = true
				out = append(out, n)
			}
		case *NotExpr:
			visit(n.Operand, bound)
		case *NegExpr:
			visit(n.Operand, bound)
		case *GroupExpr:
			visit(n.Inner, bound)
		case *BinaryExpr:
			visit(n.Left, bound)
			visit(n.Right, bound)
		case *IfExpr:
			visit(n.Cond, bound)
			visit(n.Then, bound)
			visit(n.Else, bound)
		case *LetExpr:
			// Values see only the enclosing scope.
			inner := make(map[string]bool, len(bound)+len(n.Bindings))
			for name := range bound {
				inner[name] = true
			}
			for _, b := range n.Bindings {
				visit(b.Value, bound)
				inner[b.Name] = true
			}
			visit(n.Body, inner)
		}
	}
	visit(e, map[string]bool{})
	return out
}
