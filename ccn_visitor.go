package cc

// WalkFunc is called once per node during Walk. Returning false stops
// descent into that node's children, mirroring the teacher's
// grammar_ast_visitor.go Inspect contract.
type WalkFunc func(n CCN) bool

// Walk performs a preorder traversal of n and every CCN-typed field it
// owns, in the order each node's children are declared (§3 ordering
// invariant). It is the one place that knows every variant's child
// layout, so adding a NodeKind means adding a case here.
func Walk(n CCN, fn WalkFunc) {
	if n == nil || !fn(n) {
		return
	}
	switch t := n.(type) {
	case *File:
		for _, it := range t.Items {
			Walk(it, fn)
		}
	case *FuncDecl:
		Walk(t.Return, fn)
		for _, p := range t.Params {
			Walk(p, fn)
		}
		if t.Body != nil {
			Walk(t.Body, fn)
		}
	case *VarDecl:
		Walk(t.Type, fn)
		Walk(t.Init, fn)
	case *Typedef:
		Walk(t.Type, fn)
	case *StructDecl:
		for _, f := range t.Fields {
			Walk(f, fn)
		}
	case *StructField:
		Walk(t.Type, fn)
	case *EnumDecl:
		for _, v := range t.Values {
			Walk(v, fn)
		}
	case *EnumValue:
		Walk(t.Value, fn)
	case *Param:
		Walk(t.Type, fn)

	case *PointerType:
		Walk(t.Elem, fn)
	case *ArrayType:
		Walk(t.Elem, fn)
		Walk(t.Dim, fn)
	case *SliceType:
		Walk(t.Elem, fn)
	case *ChanTxType:
		Walk(t.Elem, fn)
	case *ChanRxType:
		Walk(t.Elem, fn)
	case *OptionalType:
		Walk(t.Elem, fn)
	case *ResultType:
		Walk(t.Ok, fn)
		Walk(t.Err, fn)
	case *FuncType:
		Walk(t.Return, fn)
		for _, p := range t.Params {
			Walk(p, fn)
		}

	case *Block:
		for _, s := range t.Stmts {
			Walk(s, fn)
		}
	case *ExprStmt:
		Walk(t.Expr, fn)
	case *Return:
		Walk(t.Expr, fn)
	case *If:
		Walk(t.Cond, fn)
		Walk(t.Then, fn)
		Walk(t.Else, fn)
	case *While:
		Walk(t.Cond, fn)
		Walk(t.Body, fn)
	case *For:
		Walk(t.Init, fn)
		Walk(t.Cond, fn)
		Walk(t.Post, fn)
		Walk(t.Body, fn)
	case *ForAwait:
		Walk(t.Init, fn)
		Walk(t.Cond, fn)
		Walk(t.Post, fn)
		Walk(t.Body, fn)
	case *Switch:
		Walk(t.Tag, fn)
		for _, c := range t.Cases {
			for _, v := range c.Values {
				Walk(v, fn)
			}
			for _, s := range c.Body {
				Walk(s, fn)
			}
		}
	case *Nursery:
		Walk(t.Body, fn)
	case *Arena:
		Walk(t.Body, fn)
	case *Defer:
		Walk(t.Stmt, fn)
	case *Spawn:
		Walk(t.Call, fn)
	case *Match:
		for _, a := range t.Arms {
			Walk(a, fn)
		}
	case *MatchArm:
		Walk(t.SendVal, fn)
		Walk(t.RecvPtr, fn)
		for _, s := range t.Body {
			Walk(s, fn)
		}

	case *Call:
		Walk(t.Callee, fn)
		for _, a := range t.Args {
			Walk(a, fn)
		}
	case *Method:
		Walk(t.Recv, fn)
		for _, a := range t.Args {
			Walk(a, fn)
		}
	case *Field:
		Walk(t.Recv, fn)
	case *Index:
		Walk(t.Recv, fn)
		Walk(t.Index, fn)
	case *Unary:
		Walk(t.Expr, fn)
	case *Binary:
		Walk(t.Left, fn)
		Walk(t.Right, fn)
	case *Ternary:
		Walk(t.Cond, fn)
		Walk(t.Then, fn)
		Walk(t.Else, fn)
	case *Cast:
		Walk(t.Type, fn)
		Walk(t.Expr, fn)
	case *Sizeof:
		Walk(t.Type, fn)
		Walk(t.Expr, fn)
	case *Assign:
		Walk(t.Target, fn)
		Walk(t.Value, fn)
	case *Compound:
		Walk(t.Type, fn)
		Walk(t.List, fn)
	case *InitList:
		for _, e := range t.Elems {
			Walk(e, fn)
		}
	case *Designator:
		Walk(t.IndexExpr, fn)
		Walk(t.Value, fn)
	case *Closure:
		Walk(t.Return, fn)
		for _, p := range t.Params {
			Walk(p, fn)
		}
		Walk(t.Body, fn)
	case *Await:
		Walk(t.Expr, fn)
	case *ChanSend:
		Walk(t.Chan, fn)
		Walk(t.Value, fn)
	case *ChanRecv:
		Walk(t.Chan, fn)
	case *OkCtor:
		Walk(t.Value, fn)
	case *ErrCtor:
		Walk(t.Value, fn)
	case *SomeCtor:
		Walk(t.Value, fn)
	case *Try:
		Walk(t.Expr, fn)

	// Leaf kinds: Include, Ident, IntLit, FloatLit, StringLit, CharLit,
	// TypeName, Break, Continue, Goto, Label, NoneCtor have no CCN children.
	}
}

// Find returns the first node for which pred reports true, or nil.
func Find(root CCN, pred func(CCN) bool) CCN {
	var found CCN
	Walk(root, func(n CCN) bool {
		if found != nil {
			return false
		}
		if pred(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// Collect gathers every node for which pred reports true, in preorder.
func Collect(root CCN, pred func(CCN) bool) []CCN {
	var out []CCN
	Walk(root, func(n CCN) bool {
		if pred(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// ContainsAwait reports whether an Await is reachable from n without
// crossing into a nested FuncDecl or Closure body (those get their own
// independent async analysis), used by the arena-vs-await diagnostic
// (§4.8) and by the async rewriter's per-statement awaits-inside check.
func ContainsAwait(n CCN) bool {
	found := false
	Walk(n, func(cur CCN) bool {
		if found {
			return false
		}
		if cur != n {
			if _, ok := cur.(*FuncDecl); ok {
				return false
			}
			if _, ok := cur.(*Closure); ok {
				return false
			}
		}
		if _, ok := cur.(*Await); ok {
			found = true
			return false
		}
		return true
	})
	return found
}
