package cc

import (
	"fmt"

	"github.com/ccfront/cc/ascii"
)

// Dump renders n as an indented tree of kind names and key fields, one
// line per node, the same shape as the teacher's grammar tree printer
// but walking CCN instead of a grammar AST.
func Dump(n CCN) string {
	tp := newTreePrinter(func(s string, _ NodeKind) string { return s })
	dumpNode(tp, n)
	return tp.output.String()
}

// HighlightDump is Dump with ANSI coloring applied per NodeKind
// category (declarations, control flow, expressions), grounded on the
// teacher's ascii.Theme-driven colorizer.
func HighlightDump(n CCN, theme ascii.Theme) string {
	tp := newTreePrinter(func(s string, k NodeKind) string {
		return ascii.Color(dumpColorFor(theme, k), "%s", s)
	})
	dumpNode(tp, n)
	return tp.output.String()
}

func dumpColorFor(theme ascii.Theme, k NodeKind) string {
	switch {
	case k <= KindParam:
		return theme.Declaration
	case k <= KindFuncType:
		return theme.TypeRef
	case k <= KindMatchArm:
		return theme.Statement
	default:
		return theme.Expression
	}
}

func dumpNode(tp *treePrinter[NodeKind], n CCN) {
	if n == nil {
		tp.pwritel(tp.format("<nil>", KindFile))
		return
	}
	label := fmt.Sprintf("%s %s", nodeKindName(n.Kind()), n.String())
	tp.pwritel(tp.format(label, n.Kind()))
	tp.indent("  ")
	for _, child := range directChildren(n) {
		dumpNode(tp, child)
	}
	tp.unindent()
}

// directChildren returns n's immediate CCN-typed children, in
// declared order, for one level of tree-printer indentation; it is
// Walk's child enumeration with the recursion stripped out.
func directChildren(n CCN) []CCN {
	var out []CCN
	add := func(c CCN) {
		if c != nil {
			out = append(out, c)
		}
	}
	switch t := n.(type) {
	case *File:
		for _, it := range t.Items {
			add(it)
		}
	case *FuncDecl:
		add(t.Return)
		for _, p := range t.Params {
			add(p)
		}
		if t.Body != nil {
			add(t.Body)
		}
	case *VarDecl:
		add(t.Type)
		add(t.Init)
	case *Typedef:
		add(t.Type)
	case *StructDecl:
		for _, f := range t.Fields {
			add(f)
		}
	case *StructField:
		add(t.Type)
	case *EnumDecl:
		for _, v := range t.Values {
			add(v)
		}
	case *EnumValue:
		add(t.Value)
	case *Param:
		add(t.Type)
	case *PointerType:
		add(t.Elem)
	case *ArrayType:
		add(t.Elem)
		add(t.Dim)
	case *SliceType:
		add(t.Elem)
	case *ChanTxType:
		add(t.Elem)
	case *ChanRxType:
		add(t.Elem)
	case *OptionalType:
		add(t.Elem)
	case *ResultType:
		add(t.Ok)
		add(t.Err)
	case *FuncType:
		add(t.Return)
		for _, p := range t.Params {
			add(p)
		}
	case *Block:
		for _, s := range t.Stmts {
			add(s)
		}
	case *ExprStmt:
		add(t.Expr)
	case *Return:
		add(t.Expr)
	case *If:
		add(t.Cond)
		add(t.Then)
		add(t.Else)
	case *While:
		add(t.Cond)
		add(t.Body)
	case *For:
		add(t.Init)
		add(t.Cond)
		add(t.Post)
		add(t.Body)
	case *ForAwait:
		add(t.Init)
		add(t.Cond)
		add(t.Post)
		add(t.Body)
	case *Switch:
		add(t.Tag)
		for _, c := range t.Cases {
			for _, v := range c.Values {
				add(v)
			}
			for _, s := range c.Body {
				add(s)
			}
		}
	case *Nursery:
		add(t.Body)
	case *Arena:
		add(t.Body)
	case *Defer:
		add(t.Stmt)
	case *Spawn:
		add(t.Call)
	case *Match:
		for _, a := range t.Arms {
			add(a)
		}
	case *MatchArm:
		add(t.SendVal)
		add(t.RecvPtr)
		for _, s := range t.Body {
			add(s)
		}
	case *Call:
		add(t.Callee)
		for _, a := range t.Args {
			add(a)
		}
	case *Method:
		add(t.Recv)
		for _, a := range t.Args {
			add(a)
		}
	case *Field:
		add(t.Recv)
	case *Index:
		add(t.Recv)
		add(t.Index)
	case *Unary:
		add(t.Expr)
	case *Binary:
		add(t.Left)
		add(t.Right)
	case *Ternary:
		add(t.Cond)
		add(t.Then)
		add(t.Else)
	case *Cast:
		add(t.Type)
		add(t.Expr)
	case *Sizeof:
		add(t.Type)
		add(t.Expr)
	case *Assign:
		add(t.Target)
		add(t.Value)
	case *Compound:
		add(t.Type)
		add(t.List)
	case *InitList:
		for _, e := range t.Elems {
			add(e)
		}
	case *Designator:
		add(t.IndexExpr)
		add(t.Value)
	case *Closure:
		add(t.Return)
		for _, p := range t.Params {
			add(p)
		}
		add(t.Body)
	case *Await:
		add(t.Expr)
	case *ChanSend:
		add(t.Chan)
		add(t.Value)
	case *ChanRecv:
		add(t.Chan)
	case *OkCtor:
		add(t.Value)
	case *ErrCtor:
		add(t.Value)
	case *SomeCtor:
		add(t.Value)
	case *Try:
		add(t.Expr)
	}
	return out
}

func nodeKindName(k NodeKind) string {
	names := map[NodeKind]string{
		KindFile: "File", KindFuncDecl: "FuncDecl", KindVarDecl: "VarDecl",
		KindTypedef: "Typedef", KindStructDecl: "StructDecl", KindStructField: "StructField",
		KindEnumDecl: "EnumDecl", KindEnumValue: "EnumValue", KindInclude: "Include", KindParam: "Param",
		KindTypeName: "TypeName", KindPointerType: "PointerType", KindArrayType: "ArrayType",
		KindSliceType: "SliceType", KindChanTxType: "ChanTxType", KindChanRxType: "ChanRxType",
		KindOptionalType: "OptionalType", KindResultType: "ResultType", KindFuncType: "FuncType",
		KindBlock: "Block", KindExprStmt: "ExprStmt", KindReturn: "Return", KindIf: "If",
		KindWhile: "While", KindFor: "For", KindForAwait: "ForAwait", KindSwitch: "Switch",
		KindBreak: "Break", KindContinue: "Continue", KindGoto: "Goto", KindLabel: "Label",
		KindNursery: "Nursery", KindArena: "Arena", KindDefer: "Defer", KindSpawn: "Spawn",
		KindMatch: "Match", KindMatchArm: "MatchArm",
		KindIdent: "Ident", KindIntLit: "IntLit", KindFloatLit: "FloatLit", KindStringLit: "StringLit",
		KindCharLit: "CharLit", KindCall: "Call", KindMethod: "Method", KindField: "Field",
		KindIndex: "Index", KindUnary: "Unary", KindBinary: "Binary", KindTernary: "Ternary",
		KindCast: "Cast", KindSizeof: "Sizeof", KindAssign: "Assign", KindCompound: "Compound",
		KindInitList: "InitList", KindClosure: "Closure", KindAwait: "Await",
		KindChanSend: "ChanSend", KindChanRecv: "ChanRecv", KindOkCtor: "OkCtor",
		KindErrCtor: "ErrCtor", KindSomeCtor: "SomeCtor", KindNoneCtor: "NoneCtor",
		KindTry: "Try", KindDesignator: "Designator",
	}
	if name, ok := names[k]; ok {
		return name
	}
	return "Unknown"
}
