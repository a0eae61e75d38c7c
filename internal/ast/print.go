package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders e in canonical source form: single spaces between tokens and
// parentheses only where a GroupExpr records them. Re-parsing the output of
// Print yields a tree Equal to e for any tree the parser produced.
func Print(e Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writeExpr(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *IntLit:
		b.WriteString(strconv.FormatInt(n.Value, 10))
	case *Ident:
		b.WriteString(n.Name)
	case *NotExpr:
		b.WriteByte('!')
		writeExpr(b, n.Operand)
	case *NegExpr:
		b.WriteByte('-')
		writeExpr(b, n.Operand)
	case *GroupExpr:
		b.WriteByte('(')
		writeExpr(b, n.Inner)
		b.WriteByte(')')
	case *BinaryExpr:
		writeExpr(b, n.Left)
		b.WriteByte(' ')
		b.WriteString(n.Op.String())
		b.WriteByte(' ')
		writeExpr(b, n.Right)
	case *IfExpr:
		b.WriteString("if ")
		writeExpr(b, n.Cond)
		b.WriteString(" then ")
		writeExpr(b, n.Then)
		b.WriteString(" else ")
		writeExpr(b, n.Else)
		b.WriteString(" end")
	case *LetExpr:
		b.WriteString("let ")
		for i, binding := range n.Bindings {
			if i > 0 {
				b.WriteString(" and ")
			}
			b.WriteString(binding.Name)
			b.WriteString(" = ")
			writeExpr(b, binding.Value)
		}
		b.WriteString(" in ")
		writeExpr(b, n.Body)
		b.WriteString(" end")
	case nil:
		b.WriteString("<nil>")
	default:
		fmt.Fprintf(b, "<%T>", e)
	}
}

// Dump renders e as an indented tree, one node per line.
func Dump(e Expr) string {
	var b strings.Builder
	dump(&b, e, 0)
	return b.String()
}

func dump(b *strings.Builder, e Expr, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n := e.(type) {
	case *IntLit:
		fmt.Fprintf(b, "%sInt %d\n", indent, n.Value)
	case *Ident:
		fmt.Fprintf(b, "%sIdent %s\n", indent, n.Name)
	case *NotExpr:
		fmt.Fprintf(b, "%sNot\n", indent)
		dump(b, n.Operand, depth+1)
	case *NegExpr:
		fmt.Fprintf(b, "%sNegate\n", indent)
		dump(b, n.Operand, depth+1)
	case *GroupExpr:
		fmt.Fprintf(b, "%sGroup\n", indent)
		dump(b, n.Inner, depth+1)
	case *BinaryExpr:
		fmt.Fprintf(b, "%sBinary %s\n", indent, n.Op)
		dump(b, n.Left, depth+1)
		dump(b, n.Right, depth+1)
	case *IfExpr:
		fmt.Fprintf(b, "%sIf\n", indent)
		dump(b, n.Cond, depth+1)
		dump(b, n.Then, depth+1)
		dump(b, n.Else, depth+1)
	case *LetExpr:
		fmt.Fprintf(b, "%sLet\n", indent)
		for _, binding := range n.Bindings {
			fmt.Fprintf(b, "%s  Binding %s\n", indent, binding.Name)
			dump(b, binding.Value, depth+2)
		}
		fmt.Fprintf(b, "%s  In\n", indent)
		dump(b, n.Body, depth+2)
	default:
		fmt.Fprintf(b, "%s<%T>\n", indent, e)
	}
}
