package cc

import (
	"regexp"
	"strings"
)

// maxAsyncFrameSlots bounds the number of await points a single
// @async function's state machine can allocate a task slot for,
// mirroring Config's "async.max_awaits" default (§4.8 frame
// inventory: "a task slot array sized to the number of await
// points").
const maxAsyncFrameSlots = 64

// RunAsyncRewrite is the §4.8 async state-machine rewriter: it locates
// every @async function in the freshly re-parsed source (step 7 of
// the §4.7 scheduler), and replaces each one's declaration and body
// with a generated frame struct, poll function, drop function, and
// constructor implementing the same behavior as a stackless
// coroutine. Non-async code is left untouched, byte for byte.
func RunAsyncRewrite(cfg *Config, root *StubRoot) (string, passStatus, error) {
	src := string(root.Source)

	if err := checkAwaitPlacement(root); err != nil {
		return src, statusError, err
	}

	targets, err := locateAsyncTargets(root, src)
	if err != nil {
		return src, statusError, err
	}
	if len(targets) == 0 {
		return src, statusUnchanged, nil
	}

	maxAwaits := cfg.GetInt("async.max_awaits")
	if maxAwaits <= 0 {
		maxAwaits = maxAsyncFrameSlots
	}

	out := &StringBuilder{}
	pos := 0
	for _, t := range targets {
		out.WriteString(src[pos:t.declStart])
		rendered, rerr := renderAsyncFunction(t, maxAwaits)
		if rerr != nil {
			return src, statusError, rerr
		}
		out.WriteString(rendered)
		pos = t.bodyClose + 1
	}
	out.WriteString(src[pos:])
	return out.String(), statusChanged, nil
}

// checkAwaitPlacement implements the pre-lowering diagnostic scan:
// every Await must sit inside a function whose async flag is set, and
// none may sit inside an @arena block regardless of enclosing
// function (an arena's allocations are scoped to a single synchronous
// pass and can't survive a suspend).
func checkAwaitPlacement(root *StubRoot) error {
	for i, n := range root.Nodes {
		if n.Kind != StubAwait {
			continue
		}
		_, arena, ok := enclosingAsyncContext(root, i)
		if !ok {
			return NewUnsupportedError("await used outside an @async function", "mark the enclosing function @async", root.Span(n))
		}
		if arena {
			return NewUnsupportedError("await used inside @arena", "move the await outside the arena block", root.Span(n))
		}
	}
	return nil
}

// enclosingAsyncContext walks the parent chain from idx up to the
// nearest FuncDecl, reporting whether that FuncDecl is @async and
// whether an @arena block was crossed along the way.
func enclosingAsyncContext(root *StubRoot, idx int) (funcIdx int, crossedArena bool, ok bool) {
	cur := root.Nodes[idx].Parent
	for cur != -1 {
		n := root.Nodes[cur]
		if n.Kind == StubArena {
			crossedArena = true
		}
		if n.Kind == StubFuncDecl {
			return cur, crossedArena, n.HasAttr(AttrAsync)
		}
		cur = n.Parent
	}
	return -1, crossedArena, false
}

// asyncTarget is the located byte-range of one @async function's
// declaration, ready for text-level replacement.
type asyncTarget struct {
	name       string
	returnType string
	paramsText string
	bodyText   string
	declStart  int // index of the "@async" keyword
	bodyOpen   int // index of the body's '{'
	bodyClose  int // index of the body's matching '}'
}

// locateAsyncTargets finds, for every async-flagged FuncDecl stub (in
// source order), the byte range of "@async" through the function's
// closing brace (§4.8 "Locating targets"): @async, then the function
// name, then brace-matching its first '{'.
func locateAsyncTargets(root *StubRoot, src string) ([]asyncTarget, error) {
	var out []asyncTarget
	searchPos := 0
	for _, n := range root.Nodes {
		if n.Kind != StubFuncDecl || !n.HasAttr(AttrAsync) {
			continue
		}
		atIdx := indexKeyword(src, searchPos, "@async")
		if atIdx < 0 {
			return nil, NewInternalError("can't locate @async for function "+n.Name, root.Span(n))
		}
		nameIdx := indexKeyword(src, atIdx+len("@async"), n.Name)
		if nameIdx < 0 {
			return nil, NewInternalError("can't locate name for async function "+n.Name, root.Span(n))
		}
		returnType := strings.TrimSpace(src[atIdx+len("@async") : nameIdx])
		openParen := SkipSpaceAndComments(src, nameIdx+len(n.Name))
		if openParen >= len(src) || src[openParen] != '(' {
			return nil, NewSyntaxError("expected '(' after async function name "+n.Name, root.Span(n))
		}
		closeParen, err := MatchParen(src, openParen)
		if err != nil {
			return nil, err
		}
		paramsText := src[openParen+1 : closeParen]
		braceOpen := SkipSpaceAndComments(src, closeParen+1)
		if braceOpen >= len(src) || src[braceOpen] != '{' {
			return nil, NewSyntaxError("async function "+n.Name+" has no body", root.Span(n))
		}
		braceClose, err := MatchBrace(src, braceOpen)
		if err != nil {
			return nil, err
		}
		out = append(out, asyncTarget{
			name: n.Name, returnType: returnType, paramsText: paramsText,
			bodyText:  src[braceOpen+1 : braceClose],
			declStart: atIdx, bodyOpen: braceOpen, bodyClose: braceClose,
		})
		searchPos = braceClose + 1
	}
	return out, nil
}

type asyncParam struct{ name, ctype string }
type asyncLocal struct{ name, ctype string }

// paramDeclRe splits one comma-separated parameter into its type and
// name: everything up to the last identifier is the type.
var paramDeclRe = regexp.MustCompile(`^(.*?[\s\*])?([A-Za-z_]\w*)$`)

func parseAsyncParams(paramsText string) []asyncParam {
	parts := splitTopLevelArgs(paramsText)
	var out []asyncParam
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || p == "void" || p == "..." {
			continue
		}
		m := paramDeclRe.FindStringSubmatch(p)
		if m == nil {
			continue
		}
		ctype := strings.TrimSpace(strings.TrimSuffix(m[1], "*"))
		if strings.HasSuffix(m[1], "*") {
			ctype += " *"
		}
		out = append(out, asyncParam{name: m[2], ctype: ctype})
	}
	return out
}

// localDeclRe finds declaration-shaped statements anywhere in an
// async function's body: TYPE [**]NAME [= INIT];. Assignments and
// calls never match since both require a bare identifier to precede
// '=' or '(' with no separating type token.
var localDeclRe = regexp.MustCompile(`(?:^|[;{}])\s*([A-Za-z_]\w*(?:\s+[A-Za-z_]\w*)*?)\b\s*(\**)\s*([A-Za-z_]\w*)\s*(=\s*([^;]+))?;`)

var asyncReservedLeadWords = map[string]bool{
	"return": true, "if": true, "while": true, "for": true, "else": true,
	"break": true, "continue": true, "switch": true, "case": true,
	"goto": true, "await": true, "default": true, "do": true,
}

// collectAsyncLocals hoists every local declared anywhere in the
// function body (not just at top level — a state machine's locals
// must all live in the frame struct since any of them may need to
// survive a suspend), rejecting compiler-introduced temporaries and
// control-keyword false matches (§4.8 "Frame inventory").
func collectAsyncLocals(body string) []asyncLocal {
	var out []asyncLocal
	seen := map[string]bool{}
	rest := body
	for {
		m := localDeclRe.FindStringSubmatch(rest)
		if m == nil {
			break
		}
		// Resume at the match's closing ';' so it can also open the
		// declaration right after it.
		loc := localDeclRe.FindStringIndex(rest)
		rest = rest[loc[1]-1:]
		typ := strings.TrimSpace(m[1])
		stars := m[2]
		name := m[3]
		if typ == "" || asyncReservedLeadWords[strings.Fields(typ)[0]] {
			continue
		}
		if strings.HasPrefix(name, "__cc_ab_") || strings.HasPrefix(name, "__cc_ns_c") {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		ctype := typ
		if stars != "" {
			ctype += " " + stars
		}
		out = append(out, asyncLocal{name: name, ctype: ctype})
	}
	return out
}

func countAwaitPoints(body string) int {
	count := 0
	pos := 0
	for {
		idx := indexKeyword(body, pos, "await")
		if idx < 0 {
			return count
		}
		count++
		pos = idx + len("await")
	}
}

// renderAsyncFunction builds the frame struct, poll function, drop
// function, and constructor for one @async target, replacing its
// `@async ReturnType name(params) { body }` declaration in full
// (§4.8 "Emission").
func renderAsyncFunction(t asyncTarget, maxAwaits int) (string, error) {
	bodySrc := t.bodyText
	params := parseAsyncParams(t.paramsText)
	locals := collectAsyncLocals(bodySrc)
	awaitCount := countAwaitPoints(bodySrc)
	if awaitCount > maxAwaits {
		return "", NewUnsupportedError("async function has too many await points", "raise async.max_awaits or split the function", Span{})
	}

	idMap := map[string]string{}
	for _, p := range params {
		idMap[p.name] = "__f->__p_" + p.name
	}
	for _, l := range locals {
		idMap[l.name] = "__f->" + l.name
	}

	e := newAsyncEmitter(idMap, maxAwaits)
	stmts := parseAsyncBody(bodySrc)
	e.openCase(1)
	for _, s := range stmts {
		e.emitStmt(s)
	}
	e.stmt("__f->__st = 999; return CC_FUTURE_PENDING;")
	e.closeCase()
	if e.err != nil {
		return "", e.err
	}

	frameName := t.name + "_Frame"
	returnType := strings.TrimSpace(t.returnType)
	hasReturnValue := returnType != "" && returnType != "void"

	var frame StringBuilder
	frame.Appendf("typedef struct {\n  int __st;\n")
	if hasReturnValue {
		frame.Appendf("  %s __r;\n", returnType)
	}
	for _, l := range locals {
		frame.Appendf("  %s %s;\n", l.ctype, l.name)
	}
	for i := 0; i < awaitCount; i++ {
		frame.Appendf("  intptr_t __cc_aw%d;\n", i)
	}
	for _, p := range params {
		frame.Appendf("  %s __p_%s;\n", p.ctype, p.name)
	}
	if awaitCount > 0 {
		frame.Appendf("  CCTaskIntptr __t[%d];\n", awaitCount)
	}
	frame.Appendf("} %s;\n\n", frameName)

	var poll StringBuilder
	poll.Appendf("static CCFutureStatus %s_poll(void *__vf, intptr_t *__out, int *__outerr) {\n", t.name)
	poll.Appendf("  %s *__f = (%s *)__vf;\n", frameName, frameName)
	poll.Appendf("  (void)__outerr;\n")
	poll.Appendf("  switch (__f->__st) {\n")
	poll.WriteString(e.buf.String())
	if hasReturnValue {
		poll.Appendf("  case 999: { if (__out) *__out = (intptr_t)__f->__r; return CC_FUTURE_READY; }\n")
	} else {
		poll.Appendf("  case 999: { return CC_FUTURE_READY; }\n")
	}
	poll.Appendf("  }\n")
	poll.Appendf("  return CC_FUTURE_READY;\n")
	poll.Appendf("}\n\n")

	var drop StringBuilder
	drop.Appendf("static void %s_drop(void *__vf) {\n", t.name)
	drop.Appendf("  %s *__f = (%s *)__vf;\n", frameName, frameName)
	for i := 0; i < awaitCount; i++ {
		drop.Appendf("  cc_task_intptr_free(&__f->__t[%d]);\n", i)
	}
	drop.Appendf("  free(__f);\n}\n\n")

	var ctor StringBuilder
	var paramDecls []string
	for _, p := range params {
		paramDecls = append(paramDecls, p.ctype+" "+p.name)
	}
	ctor.Appendf("CCTaskIntptr %s(%s) {\n", t.name, strings.Join(paramDecls, ", "))
	ctor.Appendf("  %s *__f = (%s *)calloc(1, sizeof(%s));\n", frameName, frameName, frameName)
	ctor.Appendf("  __f->__st = 1;\n")
	for _, p := range params {
		ctor.Appendf("  __f->__p_%s = %s;\n", p.name, p.name)
	}
	ctor.Appendf("  return cc_task_intptr_make_poll_ex(__f, %s_poll, %s_drop);\n", t.name, t.name)
	ctor.Appendf("}\n")

	return frame.String() + poll.String() + drop.String() + ctor.String(), nil
}
