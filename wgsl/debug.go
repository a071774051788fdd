package wgsl

import (
	"fmt"
	"io"
	"strings"
)

// NodeTypeName returns a stable label for an AST node's kind.
func NodeTypeName(n Node) string {
	switch n.(type) {
	case *StructDecl:
		return "Struct"
	case *FunctionDecl:
		return "Function"
	case *VarDecl:
		return "VarDecl"
	case *ConstDecl:
		return "ConstDecl"
	case *OverrideDecl:
		return "OverrideDecl"
	case *AliasDecl:
		return "AliasDecl"
	case *NamedType, *ArrayType, *PtrType:
		return "Type"
	case *BlockStmt:
		return "Block"
	case *ReturnStmt:
		return "Return"
	case *IfStmt:
		return "If"
	case *ForStmt:
		return "For"
	case *WhileStmt:
		return "While"
	case *DoWhileStmt:
		return "DoWhile"
	case *LoopStmt:
		return "Loop"
	case *SwitchStmt:
		return "Switch"
	case *BreakStmt:
		return "Break"
	case *ContinueStmt:
		return "Continue"
	case *DiscardStmt:
		return "Discard"
	case *AssignStmt:
		return "Assign"
	case *ExprStmt:
		return "ExprStmt"
	case *Ident:
		return "Ident"
	case *Literal:
		return "Literal"
	case *BinaryExpr:
		return "Binary"
	case *UnaryExpr:
		return "Unary"
	case *TernaryExpr:
		return "Ternary"
	case *CallExpr:
		return "Call"
	case *IndexExpr:
		return "Index"
	case *MemberExpr:
		return "Member"
	case *ConstructExpr:
		return "Construct"
	case *BitcastExpr:
		return "Bitcast"
	default:
		return "Unknown"
	}
}

// DebugString renders an indented textual tree for a node.
// This is purely a debugging aid.
func DebugString(n Node) string {
	var sb strings.Builder
	Fprint(&sb, n, 0)
	return sb.String()
}

// DebugModuleString renders the debug tree for a whole module.
func DebugModuleString(m *Module) string {
	var sb strings.Builder
	FprintModule(&sb, m)
	return sb.String()
}

// FprintModule renders every declaration of a module in order.
func FprintModule(w io.Writer, m *Module) {
	for _, s := range m.Structs {
		Fprint(w, s, 0)
	}
	for _, a := range m.Aliases {
		Fprint(w, a, 0)
	}
	for _, c := range m.Constants {
		Fprint(w, c, 0)
	}
	for _, o := range m.Overrides {
		Fprint(w, o, 0)
	}
	for _, g := range m.GlobalVars {
		Fprint(w, g, 0)
	}
	for _, f := range m.Functions {
		Fprint(w, f, 0)
	}
}

// Fprint writes the indented debug tree for a node.
func Fprint(w io.Writer, n Node, indent int) {
	if n == nil {
		return
	}
	pad := strings.Repeat("  ", indent)

	switch v := n.(type) {
	case *StructDecl:
		fmt.Fprintf(w, "%sStruct %s\n", pad, v.Name)
		for _, m := range v.Members {
			printAttrs(w, m.Attributes, indent+1)
			fmt.Fprintf(w, "%s  Field %s\n", pad, m.Name)
			Fprint(w, m.Type, indent+2)
		}

	case *FunctionDecl:
		printAttrs(w, v.Attributes, indent)
		fmt.Fprintf(w, "%sFunction %s\n", pad, v.Name)
		for _, p := range v.Params {
			printAttrs(w, p.Attributes, indent+1)
			fmt.Fprintf(w, "%s  Param %s\n", pad, p.Name)
			Fprint(w, p.Type, indent+2)
		}
		if v.ReturnType != nil {
			fmt.Fprintf(w, "%s  Returns\n", pad)
			printAttrs(w, v.ReturnAttrs, indent+2)
			Fprint(w, v.ReturnType, indent+2)
		}
		Fprint(w, v.Body, indent+1)

	case *VarDecl:
		printAttrs(w, v.Attributes, indent)
		if v.AddressSpace != "" {
			fmt.Fprintf(w, "%sVarDecl %s <%s>\n", pad, v.Name, v.AddressSpace)
		} else {
			fmt.Fprintf(w, "%sVarDecl %s\n", pad, v.Name)
		}
		Fprint(w, v.Type, indent+1)
		Fprint(w, v.Init, indent+1)

	case *ConstDecl:
		fmt.Fprintf(w, "%sConstDecl %s\n", pad, v.Name)
		Fprint(w, v.Type, indent+1)
		Fprint(w, v.Init, indent+1)

	case *OverrideDecl:
		printAttrs(w, v.Attributes, indent)
		fmt.Fprintf(w, "%sOverrideDecl %s\n", pad, v.Name)
		Fprint(w, v.Type, indent+1)
		Fprint(w, v.Init, indent+1)

	case *AliasDecl:
		fmt.Fprintf(w, "%sAliasDecl %s\n", pad, v.Name)
		Fprint(w, v.Type, indent+1)

	case *NamedType:
		fmt.Fprintf(w, "%sType %s\n", pad, v.Name)
		for _, tp := range v.TypeParams {
			Fprint(w, tp, indent+1)
		}
		for _, sa := range v.SizeArgs {
			Fprint(w, sa, indent+1)
		}

	case *ArrayType:
		fmt.Fprintf(w, "%sType array\n", pad)
		Fprint(w, v.Element, indent+1)
		Fprint(w, v.Size, indent+1)

	case *PtrType:
		fmt.Fprintf(w, "%sType ptr <%s>\n", pad, v.AddressSpace)
		Fprint(w, v.PointeeType, indent+1)

	case *BlockStmt:
		fmt.Fprintf(w, "%sBlock\n", pad)
		for _, s := range v.Statements {
			Fprint(w, s, indent+1)
		}

	case *ReturnStmt:
		fmt.Fprintf(w, "%sReturn\n", pad)
		Fprint(w, v.Value, indent+1)

	case *IfStmt:
		fmt.Fprintf(w, "%sIf\n", pad)
		Fprint(w, v.Condition, indent+1)
		Fprint(w, v.Body, indent+1)
		if v.Else != nil {
			fmt.Fprintf(w, "%sElse\n", pad)
			Fprint(w, v.Else, indent+1)
		}

	case *ForStmt:
		fmt.Fprintf(w, "%sFor\n", pad)
		Fprint(w, v.Init, indent+1)
		Fprint(w, v.Condition, indent+1)
		Fprint(w, v.Update, indent+1)
		Fprint(w, v.Body, indent+1)

	case *WhileStmt:
		fmt.Fprintf(w, "%sWhile\n", pad)
		Fprint(w, v.Condition, indent+1)
		Fprint(w, v.Body, indent+1)

	case *DoWhileStmt:
		fmt.Fprintf(w, "%sDoWhile\n", pad)
		Fprint(w, v.Body, indent+1)
		Fprint(w, v.Condition, indent+1)

	case *LoopStmt:
		fmt.Fprintf(w, "%sLoop\n", pad)
		Fprint(w, v.Body, indent+1)
		Fprint(w, v.Continuing, indent+1)

	case *SwitchStmt:
		fmt.Fprintf(w, "%sSwitch\n", pad)
		Fprint(w, v.Selector, indent+1)
		for _, c := range v.Cases {
			if c.IsDefault {
				fmt.Fprintf(w, "%s  Default\n", pad)
			} else {
				fmt.Fprintf(w, "%s  Case\n", pad)
				for _, sel := range c.Selectors {
					Fprint(w, sel, indent+2)
				}
			}
			Fprint(w, c.Body, indent+2)
		}

	case *BreakStmt:
		fmt.Fprintf(w, "%sBreak\n", pad)

	case *ContinueStmt:
		fmt.Fprintf(w, "%sContinue\n", pad)

	case *DiscardStmt:
		fmt.Fprintf(w, "%sDiscard\n", pad)

	case *AssignStmt:
		fmt.Fprintf(w, "%sAssign %s\n", pad, v.Op)
		Fprint(w, v.Left, indent+1)
		Fprint(w, v.Right, indent+1)

	case *ExprStmt:
		fmt.Fprintf(w, "%sExprStmt\n", pad)
		Fprint(w, v.Expr, indent+1)

	case *Ident:
		fmt.Fprintf(w, "%sIdent %s\n", pad, v.Name)

	case *Literal:
		fmt.Fprintf(w, "%sLiteral %s\n", pad, v.Value)

	case *BinaryExpr:
		fmt.Fprintf(w, "%sBinary %s\n", pad, v.Op)
		Fprint(w, v.Left, indent+1)
		Fprint(w, v.Right, indent+1)

	case *UnaryExpr:
		if v.Postfix {
			fmt.Fprintf(w, "%sUnary postfix %s\n", pad, v.Op)
		} else {
			fmt.Fprintf(w, "%sUnary %s\n", pad, v.Op)
		}
		Fprint(w, v.Operand, indent+1)

	case *TernaryExpr:
		fmt.Fprintf(w, "%sTernary\n", pad)
		Fprint(w, v.Condition, indent+1)
		Fprint(w, v.Then, indent+1)
		Fprint(w, v.Else, indent+1)

	case *CallExpr:
		fmt.Fprintf(w, "%sCall %s\n", pad, v.Func.Name)
		for _, a := range v.Args {
			Fprint(w, a, indent+1)
		}

	case *IndexExpr:
		fmt.Fprintf(w, "%sIndex\n", pad)
		Fprint(w, v.Expr, indent+1)
		Fprint(w, v.Index, indent+1)

	case *MemberExpr:
		fmt.Fprintf(w, "%sMember .%s\n", pad, v.Member)
		Fprint(w, v.Expr, indent+1)

	case *ConstructExpr:
		fmt.Fprintf(w, "%sConstruct\n", pad)
		Fprint(w, v.Type, indent+1)
		for _, a := range v.Args {
			Fprint(w, a, indent+1)
		}

	case *BitcastExpr:
		fmt.Fprintf(w, "%sBitcast\n", pad)
		Fprint(w, v.Type, indent+1)
		Fprint(w, v.Expr, indent+1)

	default:
		fmt.Fprintf(w, "%s%s\n", pad, NodeTypeName(n))
	}
}

func printAttrs(w io.Writer, attrs []Attribute, indent int) {
	pad := strings.Repeat("  ", indent)
	for _, a := range attrs {
		if len(a.Args) == 0 {
			fmt.Fprintf(w, "%s@%s\n", pad, a.Name)
			continue
		}
		fmt.Fprintf(w, "%s@%s(...)\n", pad, a.Name)
		for _, arg := range a.Args {
			Fprint(w, arg, indent+1)
		}
	}
}
