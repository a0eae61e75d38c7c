package ast

// Equal reports whether a and b have the same shape and values. Spans are
// ignored.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case *IntLit:
		y, ok := b.(*IntLit)
		return ok && x.Value == y.Value
	case *Ident:
		y, ok := b.(*Ident)
		return ok && x.Name == y.Name
	case *NotExpr:
		y, ok := b.(*NotExpr)
		return ok && Equal(x.Operand, y.Operand)
	case *NegExpr:
		y, ok := b.(*NegExpr)
		return ok && Equal(x.Operand, y.Operand)
	case *GroupExpr:
		y, ok := b.(*GroupExpr)
		return ok && Equal(x.Inner, y.Inner)
	case *BinaryExpr:
		y, ok := b.(*BinaryExpr)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *IfExpr:
		y, ok := b.(*IfExpr)
		return ok && Equal(x.Cond, y.Cond) && Equal(x.Then, y.Then) && Equal(x.Else, y.Else)
	case *LetExpr:
		y, ok := b.(*LetExpr)
		if !ok || len(x.Bindings) != len(y.Bindings) {
			return false
		}
		for i := range x.Bindings {
			if x.Bindings[i].Name != y.Bindings[i].Name || !Equal(x.Bindings[i].Value, y.Bindings[i].Value) {
				return false
			}
		}
		return Equal(x.Body, y.Body)
	case nil:
		return b == nil
	default:
		return false
	}
}
