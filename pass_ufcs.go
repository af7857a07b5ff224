package cc

// primitiveElemTypes are never UFCS-rewritten (§4.6); a Method whose
// receiver's static type is one of these is left as a genuine
// method-shaped call (e.g. a channel builtin survives UFCS untouched
// because channel ops are handled by the match/type passes instead).
var primitiveElemTypes = map[string]bool{
	"int": true, "char": true, "void": true, "float": true,
	"double": true, "long": true, "short": true,
}

// receiverTypeNamer resolves the static type name of a Method's
// receiver expression, e.g. by looking up a variable's declared type.
// The tree builder doesn't carry a symbol table (§1 out of scope), so
// the default resolver only recognises the receiver's own spelled-out
// type annotation when present; callers with a real symbol table can
// supply a richer implementation.
type receiverTypeNamer func(recv CCN) (typeName string, isPointer bool)

// RunUFCS rewrites every Method node `recv.m(args)` into a Call node
// `TypeName_m(receiver', args...)`, address-of'ing the receiver when
// its type isn't already a pointer (§4.6). It recurses into children
// first so a receiver that is itself a Method gets UFCS applied
// before the outer rewrite runs, and returns a fresh tree (CCN trees
// are rewritten by substitution, not in place, consistent with the
// rest of the pipeline's "produces a new buffer/tree" discipline).
func RunUFCS(root CCN, namer receiverTypeNamer) CCN {
	return rewriteUFCS(root, namer)
}

func rewriteUFCS(n CCN, namer receiverTypeNamer) CCN {
	if n == nil {
		return nil
	}
	switch t := n.(type) {
	case *File:
		items := make([]CCN, len(t.Items))
		for i, it := range t.Items {
			items[i] = rewriteUFCS(it, namer)
		}
		return NewFile(t.Name, items, t.Sp)
	case *FuncDecl:
		var body *Block
		if t.Body != nil {
			body = rewriteUFCS(t.Body, namer).(*Block)
		}
		return &FuncDecl{Sp: t.Sp, Name: t.Name, Return: t.Return, Params: t.Params, Body: body, IsAsync: t.IsAsync}
	case *Block:
		stmts := make([]CCN, len(t.Stmts))
		for i, s := range t.Stmts {
			stmts[i] = rewriteUFCS(s, namer)
		}
		return NewBlock(stmts, t.Sp)
	case *ExprStmt:
		return NewExprStmt(rewriteUFCS(t.Expr, namer), t.Sp)
	case *Return:
		return NewReturn(rewriteUFCS(t.Expr, namer), t.Sp)
	case *If:
		then := rewriteUFCS(t.Then, namer).(*Block)
		return NewIf(rewriteUFCS(t.Cond, namer), then, rewriteUFCS(t.Else, namer), t.Sp)
	case *While:
		return NewWhile(rewriteUFCS(t.Cond, namer), rewriteUFCS(t.Body, namer).(*Block), t.Sp)
	case *For:
		return NewFor(rewriteUFCS(t.Init, namer), rewriteUFCS(t.Cond, namer), rewriteUFCS(t.Post, namer), rewriteUFCS(t.Body, namer).(*Block), t.Sp)
	case *ForAwait:
		return NewForAwait(rewriteUFCS(t.Init, namer), rewriteUFCS(t.Cond, namer), rewriteUFCS(t.Post, namer), rewriteUFCS(t.Body, namer).(*Block), t.Sp)
	case *Switch:
		cases := make([]SwitchCase, len(t.Cases))
		for i, c := range t.Cases {
			values := make([]CCN, len(c.Values))
			for j, v := range c.Values {
				values[j] = rewriteUFCS(v, namer)
			}
			body := make([]CCN, len(c.Body))
			for j, s := range c.Body {
				body[j] = rewriteUFCS(s, namer)
			}
			cases[i] = SwitchCase{Sp: c.Sp, Values: values, Body: body}
		}
		return NewSwitch(rewriteUFCS(t.Tag, namer), cases, t.Sp)
	case *Nursery:
		return NewNursery(rewriteUFCS(t.Body, namer).(*Block), t.Sp)
	case *Arena:
		return NewArena(rewriteUFCS(t.Body, namer).(*Block), t.Sp)
	case *Defer:
		return NewDefer(t.Cond, rewriteUFCS(t.Stmt, namer), t.Sp)
	case *Spawn:
		return NewSpawn(rewriteUFCS(t.Call, namer), t.Sp)
	case *Match:
		arms := make([]*MatchArm, len(t.Arms))
		for i, a := range t.Arms {
			body := make([]CCN, len(a.Body))
			for j, s := range a.Body {
				body[j] = rewriteUFCS(s, namer)
			}
			arms[i] = &MatchArm{Sp: a.Sp, Chan: a.Chan, IsSend: a.IsSend, SendVal: rewriteUFCS(a.SendVal, namer), RecvPtr: rewriteUFCS(a.RecvPtr, namer), Cancel: a.Cancel, Body: body}
		}
		return NewMatch(arms, t.Sp)

	case *Method:
		recv := rewriteUFCS(t.Recv, namer)
		args := make([]CCN, len(t.Args))
		for i, a := range t.Args {
			args[i] = rewriteUFCS(a, namer)
		}
		return lowerMethodToCall(t, recv, args, namer)
	case *Call:
		args := make([]CCN, len(t.Args))
		for i, a := range t.Args {
			args[i] = rewriteUFCS(a, namer)
		}
		return NewCall(rewriteUFCS(t.Callee, namer), args, t.Sp)
	case *Field:
		return NewField(rewriteUFCS(t.Recv, namer), t.Name, t.Arrow, t.Sp)
	case *Index:
		return NewIndex(rewriteUFCS(t.Recv, namer), rewriteUFCS(t.Index, namer), t.Sp)
	case *Unary:
		return NewUnary(t.Op, rewriteUFCS(t.Expr, namer), t.Sp)
	case *Binary:
		return NewBinary(t.Op, rewriteUFCS(t.Left, namer), rewriteUFCS(t.Right, namer), t.Sp)
	case *Ternary:
		return NewTernary(rewriteUFCS(t.Cond, namer), rewriteUFCS(t.Then, namer), rewriteUFCS(t.Else, namer), t.Sp)
	case *Cast:
		return NewCast(t.Type, rewriteUFCS(t.Expr, namer), t.Sp)
	case *Sizeof:
		if t.Expr == nil {
			return t
		}
		return NewSizeofExpr(rewriteUFCS(t.Expr, namer), t.Sp)
	case *Assign:
		return &Assign{Sp: t.Sp, Target: rewriteUFCS(t.Target, namer), Value: rewriteUFCS(t.Value, namer), HasOp: t.HasOp, Op: t.Op}
	case *Compound:
		return NewCompound(t.Type, rewriteUFCS(t.List, namer).(*InitList), t.Sp)
	case *InitList:
		elems := make([]CCN, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = rewriteUFCS(e, namer)
		}
		return NewInitList(elems, t.Sp)
	case *Designator:
		if t.Name != "" {
			return NewFieldDesignator(t.Name, rewriteUFCS(t.Value, namer), t.Sp)
		}
		return NewIndexDesignator(rewriteUFCS(t.IndexExpr, namer), rewriteUFCS(t.Value, namer), t.Sp)
	case *Closure:
		return NewClosure(t.Captures, t.Params, t.Return, rewriteUFCS(t.Body, namer).(*Block), t.Sp)
	case *Await:
		return NewAwait(rewriteUFCS(t.Expr, namer), t.Sp)
	case *ChanSend:
		return NewChanSend(rewriteUFCS(t.Chan, namer), rewriteUFCS(t.Value, namer), t.Sp)
	case *ChanRecv:
		return NewChanRecv(rewriteUFCS(t.Chan, namer), t.Sp)
	case *OkCtor:
		return NewOkCtor(rewriteUFCS(t.Value, namer), t.Sp)
	case *ErrCtor:
		return NewErrCtor(rewriteUFCS(t.Value, namer), t.Sp)
	case *SomeCtor:
		return NewSomeCtor(rewriteUFCS(t.Value, namer), t.Sp)
	case *Try:
		return NewTry(rewriteUFCS(t.Expr, namer), t.Sp)
	case *VarDecl:
		return NewVarDecl(t.Name, t.Type, rewriteUFCS(t.Init, namer), t.Sp)
	default:
		return n
	}
}

// lowerMethodToCall applies the UFCS substitution itself: resolve the
// receiver's type name (skipping the rewrite for primitive element
// types), address-of the receiver if it isn't already a pointer, and
// build `TypeName_method(receiver', args...)`.
func lowerMethodToCall(m *Method, recv CCN, args []CCN, namer receiverTypeNamer) CCN {
	typeName, isPointer := "", false
	if namer != nil {
		typeName, isPointer = namer(recv)
	}
	if typeName != "" && primitiveElemTypes[typeName] {
		return &Method{Sp: m.Sp, Recv: recv, Name: m.Name, Args: args}
	}
	calleeName := m.Name
	if typeName != "" {
		calleeName = typeName + "_" + m.Name
	}
	receiver := recv
	if !isPointer {
		receiver = NewUnary(OpAddr, recv, recv.Span())
	}
	callArgs := append([]CCN{receiver}, args...)
	return NewCall(NewIdent(calleeName, m.Sp), callArgs, m.Sp)
}
