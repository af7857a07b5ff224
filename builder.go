package cc

import "strings"

// BuildFile reconstructs a *File from a flat stub-node stream (§4.4).
// Malformed stubs never abort the build; orphaned or unrecognized
// nodes are simply dropped, mirroring the teacher's tolerant
// tree-assembly approach in grammar_parser.go.
func BuildFile(root *StubRoot, name string) *File {
	b := &builder{root: root, nodes: make([]CCN, len(root.Nodes)), transferred: make([]bool, len(root.Nodes))}
	b.convertAll()
	b.repairMisparents()
	b.linkChildren()
	b.attachFunctionBodies()
	items := b.collectFileRoot(name)
	items = append(b.scanIncludes(string(root.Source)), items...)
	fileSpan := Span{}
	if len(root.Nodes) > 0 {
		fileSpan = root.Span(root.Nodes[0])
	}
	return NewFile(name, items, fileSpan)
}

type builder struct {
	root        *StubRoot
	nodes       []CCN        // parallel to root.Nodes; nil where unconvertible
	parent      []int        // effective parent after misparent repair, parallel to root.Nodes
	transferred []bool       // whether a node has been attached to some parent's field
	blockKids   map[int][]CCN // scratch: nodes pushed into a block-shaped parent, by stub index
}

// convertAll is tree-builder step 1: per-node conversion.
func (b *builder) convertAll() {
	b.parent = make([]int, len(b.root.Nodes))
	for i, sn := range b.root.Nodes {
		b.parent[i] = sn.Parent
		b.nodes[i] = b.convertOne(i, sn)
	}
}

func (b *builder) convertOne(i int, sn StubNode) CCN {
	sp := b.root.Span(sn)
	switch sn.Kind {
	case StubFile:
		return NewFile(sn.Name, nil, sp)
	case StubFuncDecl:
		fd := NewFuncDecl(sn.Name, NewTypeName(sn.Type, sp), nil, nil, sp)
		fd.IsAsync = sn.HasAttr(AttrAsync)
		return fd
	case StubVarDecl:
		return NewVarDecl(sn.Name, NewTypeName(sn.Type, sp), nil, sp)
	case StubTypedef:
		return NewTypedef(sn.Name, NewTypeName(sn.Type, sp), sp)
	case StubStructDecl:
		return NewStructDecl(sn.Name, nil, sn.HasAttr(AttrIsUnion), sp)
	case StubStructField:
		return NewStructField(sn.Name, NewTypeName(sn.Type, sp), sp)
	case StubEnumDecl:
		return NewEnumDecl(sn.Name, nil, sp)
	case StubEnumValue:
		return NewEnumValue(sn.Name, nil, sp)
	case StubParam:
		return NewParam(sn.Name, NewTypeName(sn.Type, sp), sp)
	case StubBlock:
		return NewBlock(nil, sp)
	case StubExprStmt:
		return NewExprStmt(nil, sp)
	case StubReturn:
		return NewReturn(nil, sp)
	case StubIf:
		return NewIf(nil, NewBlock(nil, sp), nil, sp)
	case StubWhile:
		return NewWhile(nil, NewBlock(nil, sp), sp)
	case StubFor:
		return NewFor(nil, nil, nil, NewBlock(nil, sp), sp)
	case StubForAwait:
		return NewForAwait(nil, nil, nil, NewBlock(nil, sp), sp)
	case StubSwitch:
		return NewSwitch(nil, nil, sp)
	case StubBreak:
		return NewBreak(sp)
	case StubContinue:
		return NewContinue(sp)
	case StubGoto:
		return NewGoto(sn.Name, sp)
	case StubLabel:
		return NewLabel(sn.Name, sp)
	case StubNursery:
		return NewNursery(NewBlock(nil, sp), sp)
	case StubArena:
		return NewArena(NewBlock(nil, sp), sp)
	case StubDefer:
		cond := DeferAlways
		if sn.HasAttr(AttrIsUnsafe) { // the stub carries no ok/err condition, so every Defer built here is DeferAlways
			cond = DeferAlways
		}
		return NewDefer(cond, nil, sp)
	case StubSpawn:
		return NewSpawn(nil, sp)
	case StubMatch:
		return NewMatch(nil, sp)
	case StubIdent:
		return NewIdent(sn.Name, sp)
	case StubIntLit:
		return NewIntLit(sn.Name, sp)
	case StubFloatLit:
		return NewFloatLit(sn.Name, sp)
	case StubStringLit:
		return NewStringLit(sn.Name, sp)
	case StubCharLit:
		return NewCharLit(sn.Name, sp)
	case StubCall:
		return NewCall(nil, nil, sp)
	case StubMethod:
		return NewMethod(nil, sn.Name, nil, sp)
	case StubField:
		return NewField(nil, sn.Name, sn.HasAttr(AttrIsArrow), sp)
	case StubIndex:
		return NewIndex(nil, nil, sp)
	case StubUnary:
		return NewUnary(unOpFromName(sn.Name), nil, sp)
	case StubBinary:
		return NewBinary(binOpFromName(sn.Name), nil, nil, sp)
	case StubTernary:
		return NewTernary(nil, nil, nil, sp)
	case StubCast:
		return NewCast(NewTypeName(sn.Type, sp), nil, sp)
	case StubSizeof:
		if sn.Type != "" {
			return NewSizeofType(NewTypeName(sn.Type, sp), sp)
		}
		return NewSizeofExpr(nil, sp)
	case StubAssign:
		return NewAssign(nil, nil, sp)
	case StubCompound:
		return NewCompound(NewTypeName(sn.Type, sp), NewInitList(nil, sp), sp)
	case StubInitList:
		return NewInitList(nil, sp)
	case StubClosure:
		return NewClosure(nil, nil, NewTypeName(sn.Type, sp), NewBlock(nil, sp), sp)
	case StubAwait:
		return NewAwait(nil, sp)
	case StubChanSend:
		return NewChanSend(nil, nil, sp)
	case StubChanRecv:
		return NewChanRecv(nil, sp)
	case StubOkCtor:
		return NewOkCtor(nil, sp)
	case StubErrCtor:
		return NewErrCtor(nil, sp)
	case StubSomeCtor:
		return NewSomeCtor(nil, sp)
	case StubNoneCtor:
		return NewNoneCtor(sp)
	case StubTry:
		return NewTry(nil, sp)
	case StubDesignator:
		if sn.Name != "" {
			return NewFieldDesignator(sn.Name, nil, sp)
		}
		return NewIndexDesignator(nil, nil, sp)
	default:
		// StubUnknown and any marker-only kind (channel pair, with_deadline)
		// drop through to a null slot, per §4.4 step 1.
		return nil
	}
}

func unOpFromName(name string) UnOp {
	switch name {
	case "-":
		return OpNeg
	case "!":
		return OpNot
	case "~":
		return OpBitNot
	case "&":
		return OpAddr
	case "*":
		return OpDeref
	case "++pre":
		return OpPreIncr
	case "--pre":
		return OpPreDecr
	case "++post":
		return OpPostIncr
	case "--post":
		return OpPostDecr
	default:
		return OpNeg
	}
}

func binOpFromName(name string) BinOp {
	switch name {
	case "+":
		return OpAdd
	case "-":
		return OpSub
	case "*":
		return OpMul
	case "/":
		return OpDiv
	case "%":
		return OpMod
	case "==":
		return OpEq
	case "!=":
		return OpNe
	case "<":
		return OpLt
	case "<=":
		return OpLe
	case ">":
		return OpGt
	case ">=":
		return OpGe
	case "&&":
		return OpAnd
	case "||":
		return OpOr
	case "&":
		return OpBitAnd
	case "|":
		return OpBitOr
	case "^":
		return OpBitXor
	case "<<":
		return OpShl
	case ">>":
		return OpShr
	default:
		return OpAdd
	}
}

// isStmtControlKind reports the stub kinds whose children get misparent
// repair: control-flow statements whose bookkeeping can trap a
// trailing sibling (§4.4 step 2).
func isStmtControlKind(k StubKind) bool {
	switch k {
	case StubIf, StubWhile, StubFor, StubSwitch:
		return true
	default:
		return false
	}
}

// repairMisparents is tree-builder step 2.
func (b *builder) repairMisparents() {
	for i, sn := range b.root.Nodes {
		p := sn.Parent
		if p < 0 || p >= len(b.root.Nodes) {
			continue
		}
		parentKind := b.root.Nodes[p].Kind
		if !isStmtControlKind(parentKind) {
			continue
		}
		if sn.Kind == StubBlock || sn.Kind == StubThen || sn.Kind == StubElse {
			continue
		}
		grandparent := b.root.Nodes[p].Parent
		b.parent[i] = grandparent
	}
}

// linkChildren is tree-builder step 3. It walks stub indices in
// source order, attaching each converted node into its parent's
// variant-specific field, applying the salvage rules described in
// §4.4 step 3.
func (b *builder) linkChildren() {
	b.blockKids = make(map[int][]CCN)
	for i := range b.root.Nodes {
		child := b.nodes[i]
		if child == nil {
			continue
		}
		p := b.parent[i]
		if p < 0 || p >= len(b.nodes) || b.nodes[p] == nil {
			continue
		}
		if b.attach(p, child, i) {
			b.transferred[i] = true
		}
	}
}

// attach implements the per-parent-kind linking rules, including the
// salvage heuristics for binary/call/unary/field/index/await/array-dim
// adoption and nursery block unwrapping.
func (b *builder) attach(parentIdx int, child CCN, childIdx int) bool {
	parent := b.nodes[parentIdx]
	switch p := parent.(type) {
	case *File:
		p.Items = append(p.Items, child)
		return true
	case *FuncDecl:
		switch c := child.(type) {
		case *Param:
			p.Params = append(p.Params, c)
		case *Block:
			p.Body = c
		case *TypeName:
			p.Return = c
		}
		return true
	case *VarDecl:
		if p.Init == nil {
			p.Init = child
		}
		return true
	case *Typedef:
		p.Type = child
		return true
	case *StructDecl:
		if sf, ok := child.(*StructField); ok {
			p.Fields = append(p.Fields, sf)
		}
		return true
	case *EnumDecl:
		if ev, ok := child.(*EnumValue); ok {
			p.Values = append(p.Values, ev)
		}
		return true
	case *EnumValue:
		p.Value = child
		return true

	case *Block:
		if b.salvageIntoBlock(p, parentIdx, child) {
			return true
		}
		p.Stmts = append(p.Stmts, child)
		b.blockKids[parentIdx] = p.Stmts
		return true
	case *ExprStmt:
		p.Expr = child
		return true
	case *Return:
		p.Expr = child
		return true
	case *If:
		switch child.(type) {
		case *Block:
			if p.Then == nil {
				p.Then = child.(*Block)
			} else {
				p.Else = child
			}
		default:
			if p.Cond == nil {
				p.Cond = child
			} else {
				p.Else = child
			}
		}
		return true
	case *While:
		if p.Cond == nil {
			p.Cond = child
		} else if blk, ok := child.(*Block); ok {
			p.Body = blk
		}
		return true
	case *For:
		b.attachForClause(p, child)
		return true
	case *ForAwait:
		b.attachForAwaitClause(p, child)
		return true
	case *Switch:
		if p.Tag == nil {
			p.Tag = child
		}
		return true
	case *Nursery:
		if blk, ok := child.(*Block); ok {
			if containsNursery(blk) {
				p.Body = unwrapNurseryBlock(blk)
			} else {
				p.Body = blk
			}
		} else {
			p.Body.Stmts = append(p.Body.Stmts, child)
		}
		return true
	case *Arena:
		if blk, ok := child.(*Block); ok {
			p.Body = blk
		} else {
			p.Body.Stmts = append(p.Body.Stmts, child)
		}
		return true
	case *Defer:
		p.Stmt = child
		return true
	case *Spawn:
		p.Call = child
		return true
	case *Match:
		if arm, ok := child.(*MatchArm); ok {
			p.Arms = append(p.Arms, arm)
		}
		return true
	case *MatchArm:
		p.Body = append(p.Body, child)
		return true

	case *Call:
		if p.Callee == nil {
			p.Callee = child
		} else {
			p.Args = append(p.Args, child)
		}
		return true
	case *Method:
		if p.Recv == nil {
			p.Recv = child
		} else {
			p.Args = append(p.Args, child)
		}
		return true
	case *Field:
		p.Recv = child
		return true
	case *Index:
		if p.Recv == nil {
			p.Recv = child
		} else {
			p.Index = child
		}
		return true
	case *Unary:
		p.Expr = child
		return true
	case *Binary:
		if p.Left == nil {
			p.Left = child
		} else {
			p.Right = child
		}
		return true
	case *Ternary:
		if p.Cond == nil {
			p.Cond = child
		} else if p.Then == nil {
			p.Then = child
		} else {
			p.Else = child
		}
		return true
	case *Cast:
		p.Expr = child
		return true
	case *Sizeof:
		p.Expr = child
		return true
	case *Assign:
		if p.Target == nil {
			p.Target = child
		} else {
			p.Value = child
		}
		return true
	case *Compound:
		if il, ok := child.(*InitList); ok {
			p.List = il
		}
		return true
	case *InitList:
		p.Elems = append(p.Elems, child)
		return true
	case *Closure:
		switch c := child.(type) {
		case *Param:
			p.Params = append(p.Params, c)
		case *Block:
			p.Body = c
		}
		return true
	case *Await:
		b.attachAwait(p, child)
		return true
	case *ChanSend:
		if p.Chan == nil {
			p.Chan = child
		} else {
			p.Value = child
		}
		return true
	case *ChanRecv:
		p.Chan = child
		return true
	case *OkCtor:
		p.Value = child
		return true
	case *ErrCtor:
		p.Value = child
		return true
	case *SomeCtor:
		p.Value = child
		return true
	case *Try:
		p.Expr = child
		return true
	case *Designator:
		if p.Name == "" && p.IndexExpr == nil {
			p.IndexExpr = child
		} else {
			p.Value = child
		}
		return true
	}
	return false
}

func (b *builder) attachForClause(p *For, child CCN) {
	if blk, ok := child.(*Block); ok {
		p.Body = blk
		return
	}
	switch {
	case p.Init == nil:
		p.Init = child
	case p.Cond == nil:
		p.Cond = child
	case p.Post == nil:
		p.Post = child
	}
}

func (b *builder) attachForAwaitClause(p *ForAwait, child CCN) {
	if blk, ok := child.(*Block); ok {
		p.Body = blk
		return
	}
	switch {
	case p.Init == nil:
		p.Init = child
	case p.Cond == nil:
		p.Cond = child
	case p.Post == nil:
		p.Post = child
	}
}

// attachAwait implements the await-receiver salvage rule: when the
// awaited expression is a bare identifier followed immediately by a
// Method, the method's receiver becomes that identifier; for a Call,
// the identifier is prepended as the first argument only if the
// callee name differs from the identifier (UFCS vs ordinary call).
func (b *builder) attachAwait(p *Await, child CCN) {
	if p.Expr == nil {
		p.Expr = child
		return
	}
	if ident, ok := p.Expr.(*Ident); ok {
		switch c := child.(type) {
		case *Method:
			if c.Recv == nil {
				c.Recv = ident
			}
			p.Expr = c
			return
		case *Call:
			if calleeIdent, ok := c.Callee.(*Ident); !ok || calleeIdent.Name != ident.Name {
				c.Args = append([]CCN{ident}, c.Args...)
			}
			p.Expr = c
			return
		}
	}
	p.Expr = child
}

// salvageIntoBlock implements the binary/call/unary/field/index
// adoption rules and the array-dimension discard rule (§4.4 step 3).
func (b *builder) salvageIntoBlock(blk *Block, blkIdx int, child CCN) bool {
	stmts := b.blockKids[blkIdx]
	if len(stmts) == 0 {
		stmts = blk.Stmts
	}
	if len(stmts) == 0 {
		return false
	}
	last := stmts[len(stmts)-1]
	lastExpr, lastIsBareExpr := bareExprOf(last)

	switch c := child.(type) {
	case *Binary:
		if lastIsBareExpr && isLvalueShaped(lastExpr) && c.Left == nil {
			c.Left = lastExpr
			b.popLast(blk, blkIdx)
			blk.Stmts = append(blk.Stmts, NewExprStmt(c, c.Span()))
			b.blockKids[blkIdx] = blk.Stmts
			return true
		}
	case *Call:
		if ident, ok := lastExpr.(*Ident); ok && lastIsBareExpr {
			if calleeIdent, ok := c.Callee.(*Ident); ok && calleeIdent.Name == ident.Name {
				b.popLast(blk, blkIdx)
				blk.Stmts = append(blk.Stmts, NewExprStmt(c, c.Span()))
				b.blockKids[blkIdx] = blk.Stmts
				return true
			}
		}
	case *Unary:
		if lastIsBareExpr && c.Expr == nil {
			c.Expr = lastExpr
			b.popLast(blk, blkIdx)
			blk.Stmts = append(blk.Stmts, NewExprStmt(c, c.Span()))
			b.blockKids[blkIdx] = blk.Stmts
			return true
		}
	case *Field:
		if lastIsBareExpr && c.Recv == nil {
			c.Recv = lastExpr
			b.popLast(blk, blkIdx)
			blk.Stmts = append(blk.Stmts, NewExprStmt(c, c.Span()))
			b.blockKids[blkIdx] = blk.Stmts
			return true
		}
	case *Index:
		if lastIsBareExpr && c.Recv == nil {
			c.Recv = lastExpr
			b.popLast(blk, blkIdx)
			blk.Stmts = append(blk.Stmts, NewExprStmt(c, c.Span()))
			b.blockKids[blkIdx] = blk.Stmts
			return true
		}
	case *IntLit:
		if vd, ok := last.(*VarDecl); ok {
			if _, isArr := vd.Type.(*ArrayType); isArr {
				return true // bare dimension hint, discarded per §4.4 step 3
			}
		}
	}
	return false
}

func (b *builder) popLast(blk *Block, blkIdx int) {
	stmts := b.blockKids[blkIdx]
	if len(stmts) == 0 {
		stmts = blk.Stmts
	}
	stmts = stmts[:len(stmts)-1]
	blk.Stmts = stmts
	b.blockKids[blkIdx] = stmts
}

// bareExprOf unwraps an ExprStmt to its inner expression so it can be
// salvaged as an operand; non-ExprStmt statements are never adopted.
func bareExprOf(n CCN) (CCN, bool) {
	if es, ok := n.(*ExprStmt); ok {
		return es.Expr, true
	}
	return nil, false
}

func isLvalueShaped(n CCN) bool {
	switch n.(type) {
	case *Ident, *Field, *Index:
		return true
	case *Unary:
		return n.(*Unary).Op == OpDeref
	default:
		return false
	}
}

func containsNursery(blk *Block) bool {
	for _, s := range blk.Stmts {
		if _, ok := s.(*Nursery); ok {
			return true
		}
	}
	return false
}

// unwrapNurseryBlock implements the rule that a block wrapper
// containing a nursery statement is unwrapped so the nursery becomes
// the body directly, rather than a block holding one nursery child.
func unwrapNurseryBlock(blk *Block) *Block {
	for _, s := range blk.Stmts {
		if n, ok := s.(*Nursery); ok {
			return n.Body
		}
	}
	return blk
}

// attachFunctionBodies is tree-builder step 4: any FuncDecl with no
// body adopts a sibling Block sharing the same parent.
func (b *builder) attachFunctionBodies() {
	for i, n := range b.nodes {
		fd, ok := n.(*FuncDecl)
		if !ok || fd.Body != nil {
			continue
		}
		p := b.parent[i]
		for j := range b.nodes {
			if j == i || b.parent[j] != p {
				continue
			}
			if blk, ok := b.nodes[j].(*Block); ok {
				fd.Body = blk
				break
			}
		}
	}
}

// collectFileRoot is tree-builder step 5: top-level declarations whose
// source file matches the translation unit, in source order, skipping
// parser-stub declarations prefixed CC/__CC/__cc.
func (b *builder) collectFileRoot(tuName string) []CCN {
	var out []CCN
	for i, sn := range b.root.Nodes {
		n := b.nodes[i]
		if n == nil || b.transferred[i] {
			continue
		}
		if sn.File != "" && baseName(sn.File) != baseName(tuName) {
			continue
		}
		switch decl := n.(type) {
		case *FuncDecl:
			if isStubPrefixed(decl.Name) {
				continue
			}
		case *VarDecl:
			if isStubPrefixed(decl.Name) {
				continue
			}
		case *Typedef:
			if isStubPrefixed(decl.Name) {
				continue
			}
		case *StructDecl, *EnumDecl:
			// declarations without a name filter are kept as-is
		default:
			continue
		}
		out = append(out, n)
	}
	return out
}

func isStubPrefixed(name string) bool {
	return strings.HasPrefix(name, "CC") || strings.HasPrefix(name, "__CC") || strings.HasPrefix(name, "__cc")
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// scanIncludes is tree-builder step 6: a line-oriented pre-parse scan
// recording every #include as an Include node, in source order.
func (b *builder) scanIncludes(source string) []CCN {
	var out []CCN
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#include") {
			continue
		}
		rest := strings.TrimSpace(trimmed[len("#include"):])
		sp := Span{Start: Location{Line: int32(i + 1), Column: 1}, End: Location{Line: int32(i + 1), Column: int32(len(line) + 1)}}
		if strings.HasPrefix(rest, "<") {
			if end := strings.IndexByte(rest, '>'); end > 0 {
				out = append(out, NewInclude(rest[1:end], true, sp))
			}
		} else if strings.HasPrefix(rest, "\"") {
			if end := strings.IndexByte(rest[1:], '"'); end >= 0 {
				out = append(out, NewInclude(rest[1:1+end], false, sp))
			}
		}
	}
	return out
}
