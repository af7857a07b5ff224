package cc

import (
	"regexp"
	"strconv"
	"strings"
)

// asyncEmitter walks a function's airNode statement list and emits
// the body of its poll function as a flat sequence of `case N: { ... }`
// blocks inside one big `switch (__f->__st)`. Control flow (if/while/
// for/break/continue) and suspension (await) are both implemented the
// same way: set __f->__st to the next state and `return
// CC_FUTURE_PENDING`, relying on the surrounding switch to resume
// execution at the right case the next time the frame is polled
// (§4.8 "State allocation" and "Emission").
type asyncEmitter struct {
	buf          *StringBuilder
	idMap        map[string]string
	stateCounter int // last allocated state; case 1 is already open when emission starts
	awaitCounter int
	maxAwaits    int
	loopStack    []loopTarget
	err          error
}

type loopTarget struct {
	breakState, continueState int
}

func newAsyncEmitter(idMap map[string]string, maxAwaits int) *asyncEmitter {
	return &asyncEmitter{buf: &StringBuilder{}, idMap: idMap, stateCounter: 1, maxAwaits: maxAwaits}
}

func (e *asyncEmitter) newState() int {
	e.stateCounter++
	return e.stateCounter
}

func (e *asyncEmitter) openCase(n int)  { e.buf.Appendf("case %d: {\n", n) }
func (e *asyncEmitter) closeCase()      { e.buf.WriteString("}\n") }
func (e *asyncEmitter) stmt(format string, args ...any) {
	e.buf.Appendf(format+"\n", args...)
}

func (e *asyncEmitter) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *asyncEmitter) emitStmtList(stmts []*airNode) {
	for _, s := range stmts {
		e.emitStmt(s)
	}
}

func (e *asyncEmitter) emitStmt(s *airNode) {
	if s == nil {
		return
	}
	switch s.kind {
	case airBlock:
		e.emitStmtList(s.stmts)
	case airSemi:
		e.emitSemi(s.text)
	case airReturn:
		e.emitReturn(s)
	case airBreak:
		e.emitBreak()
	case airContinue:
		e.emitContinue()
	case airIf:
		e.emitIf(s)
	case airWhile:
		e.emitWhile(s)
	case airFor:
		e.emitFor(s)
	}
}

func (e *asyncEmitter) emitSemi(text string) {
	if text == "" {
		return
	}
	if name, init, hasInit, isDecl := tryParseHoistedDecl(text, e.idMap); isDecl {
		if hasInit {
			rhs := e.mapIdents(e.expandAwaits(init))
			e.stmt("%s = %s;", e.idMap[name], rhs)
		}
		return
	}
	e.stmt("%s;", e.mapIdents(e.expandAwaits(text)))
}

func (e *asyncEmitter) emitReturn(s *airNode) {
	if s.text != "" {
		expr := e.mapIdents(e.expandAwaits(s.text))
		e.stmt("__f->__r = (%s);", expr)
	}
	e.stmt("__f->__st = 999; return CC_FUTURE_PENDING;")
}

func (e *asyncEmitter) emitBreak() {
	if len(e.loopStack) == 0 {
		e.fail(NewInternalError("break outside loop in async function", Span{}))
		return
	}
	top := e.loopStack[len(e.loopStack)-1]
	e.stmt("__f->__st = %d; return CC_FUTURE_PENDING;", top.breakState)
}

func (e *asyncEmitter) emitContinue() {
	if len(e.loopStack) == 0 {
		e.fail(NewInternalError("continue outside loop in async function", Span{}))
		return
	}
	top := e.loopStack[len(e.loopStack)-1]
	e.stmt("__f->__st = %d; return CC_FUTURE_PENDING;", top.continueState)
}

func (e *asyncEmitter) emitIf(s *airNode) {
	cond := e.mapIdents(e.expandAwaits(s.cond))
	thenS, elseS, afterS := e.newState(), e.newState(), e.newState()
	e.stmt("if (%s) { __f->__st = %d; } else { __f->__st = %d; }", cond, thenS, elseS)
	e.stmt("return CC_FUTURE_PENDING;")
	e.closeCase()

	e.openCase(thenS)
	if s.then != nil {
		e.emitStmtList(s.then.stmts)
	}
	e.stmt("__f->__st = %d; return CC_FUTURE_PENDING;", afterS)
	e.closeCase()

	e.openCase(elseS)
	if s.els != nil {
		e.emitStmt(s.els)
	}
	e.stmt("__f->__st = %d; return CC_FUTURE_PENDING;", afterS)
	e.closeCase()

	e.openCase(afterS)
}

func (e *asyncEmitter) emitWhile(s *airNode) {
	condS, bodyS, afterS := e.newState(), e.newState(), e.newState()
	e.stmt("__f->__st = %d; return CC_FUTURE_PENDING;", condS)
	e.closeCase()

	e.openCase(condS)
	cond := e.mapIdents(e.expandAwaits(s.cond))
	e.stmt("if (%s) { __f->__st = %d; } else { __f->__st = %d; }", cond, bodyS, afterS)
	e.stmt("return CC_FUTURE_PENDING;")
	e.closeCase()

	e.openCase(bodyS)
	e.loopStack = append(e.loopStack, loopTarget{breakState: afterS, continueState: condS})
	if s.body != nil {
		e.emitStmtList(s.body.stmts)
	}
	e.loopStack = e.loopStack[:len(e.loopStack)-1]
	e.stmt("__f->__st = %d; return CC_FUTURE_PENDING;", condS)
	e.closeCase()

	e.openCase(afterS)
}

func (e *asyncEmitter) emitFor(s *airNode) {
	condS, bodyS, postS, afterS := e.newState(), e.newState(), e.newState(), e.newState()

	if s.init != "" {
		e.stmt("%s;", e.mapIdents(e.expandAwaits(s.init)))
	}
	e.stmt("__f->__st = %d; return CC_FUTURE_PENDING;", condS)
	e.closeCase()

	e.openCase(condS)
	if s.cond != "" {
		cond := e.mapIdents(e.expandAwaits(s.cond))
		e.stmt("if (%s) { __f->__st = %d; } else { __f->__st = %d; }", cond, bodyS, afterS)
	} else {
		e.stmt("__f->__st = %d;", bodyS)
	}
	e.stmt("return CC_FUTURE_PENDING;")
	e.closeCase()

	e.openCase(bodyS)
	e.loopStack = append(e.loopStack, loopTarget{breakState: afterS, continueState: postS})
	if s.body != nil {
		e.emitStmtList(s.body.stmts)
	}
	e.loopStack = e.loopStack[:len(e.loopStack)-1]
	e.stmt("__f->__st = %d; return CC_FUTURE_PENDING;", postS)
	e.closeCase()

	e.openCase(postS)
	if s.post != "" {
		e.stmt("%s;", e.mapIdents(e.expandAwaits(s.post)))
	}
	e.stmt("__f->__st = %d; return CC_FUTURE_PENDING;", condS)
	e.closeCase()

	e.openCase(afterS)
}

// expandAwaits implements the await-expander protocol: for each
// textual `await <operand>` inside expr, emit the suspend/poll/resume
// sequence into the current case, allocate a frame slot for the
// operand's eventual value, and substitute `__f->__cc_awN` for the
// `await <operand>` text so the caller's own emission (an assignment,
// a condition, a return) sees a plain value expression (§4.8 "The
// await-expander protocol").
func (e *asyncEmitter) expandAwaits(expr string) string {
	idx := indexKeyword(expr, 0, "await")
	if idx < 0 {
		return expr
	}
	before := expr[:idx]
	operandStart := SkipSpaceAndComments(expr, idx+len("await"))
	end := NearestStatementEnd(expr, operandStart)
	operand := strings.TrimSpace(expr[operandStart:end])
	after := expr[end:]

	if e.awaitCounter >= e.maxAwaits {
		e.fail(NewUnsupportedError("too many await points in one async function", "raise async.max_awaits or split the function", Span{}))
		return expr
	}
	n := e.awaitCounter
	e.awaitCounter++
	mappedOperand := e.mapIdents(operand)

	pollS, contS := e.newState(), e.newState()
	e.stmt("/* await %s */", operand)
	e.stmt("__f->__t[%d] = (%s);", n, mappedOperand)
	e.stmt("__f->__st = %d; return CC_FUTURE_PENDING;", pollS)
	e.closeCase()

	e.openCase(pollS)
	e.stmt("intptr_t __cc_v%d; int __cc_e%d;", n, n)
	e.stmt("CCFutureStatus __cc_s%d = cc_task_intptr_poll(&__f->__t[%d], &__cc_v%d, &__cc_e%d);", n, n, n, n)
	e.stmt("if (__cc_s%d == CC_FUTURE_PENDING) return CC_FUTURE_PENDING;", n)
	e.stmt("cc_task_intptr_free(&__f->__t[%d]);", n)
	e.stmt("__f->__cc_aw%d = __cc_v%d;", n, n)
	e.stmt("__f->__st = %d; return CC_FUTURE_PENDING;", contS)
	e.closeCase()

	e.openCase(contS)

	replaced := before + "__f->__cc_aw" + strconv.Itoa(n) + after
	return e.expandAwaits(replaced)
}

// mapIdents rewrites every hoisted identifier (local, parameter, or
// frame field already produced by expandAwaits) into its frame-slot
// form, comment/string safe.
func (e *asyncEmitter) mapIdents(text string) string {
	out := &StringBuilder{}
	state := scanCode
	i := 0
	for i < len(text) {
		next := classify(text, i, state)
		if state == scanCode && IsIdentStart(rune(text[i])) {
			j := i
			for j < len(text) && IsIdentCont(rune(text[j])) {
				j++
			}
			word := text[i:j]
			if repl, ok := e.idMap[word]; ok {
				out.WriteString(repl)
			} else {
				out.WriteString(word)
			}
			i = j
			state = next
			continue
		}
		out.WriteByte(text[i])
		i++
		state = next
	}
	return out.String()
}

// hoistedDeclRe recognizes one statement (already trimmed of its
// trailing ';') as a declaration: TYPE [**]NAME [= INIT]. A plain
// assignment like "count = 5" never matches since it has only one
// identifier before '=', not a type-then-name pair.
var hoistedDeclRe = regexp.MustCompile(`^([A-Za-z_]\w*(?:\s+[A-Za-z_]\w*)*?)\b\s*(\*{0,3})\s*([A-Za-z_]\w*)\s*(=\s*(.+))?$`)

// tryParseHoistedDecl reports whether text is a declaration of one of
// the frame's hoisted names. Pure declarations with no initializer
// are dropped entirely (the frame slot already exists, zeroed by
// calloc); declarations with an initializer become a plain assignment
// into the frame slot (§4.8 "Per-statement emission rules").
func tryParseHoistedDecl(text string, idMap map[string]string) (name, init string, hasInit, isDecl bool) {
	m := hoistedDeclRe.FindStringSubmatch(text)
	if m == nil {
		return "", "", false, false
	}
	name = m[3]
	if _, hoisted := idMap[name]; !hoisted {
		return "", "", false, false
	}
	if m[4] != "" {
		return name, strings.TrimSpace(m[5]), true, true
	}
	return name, "", false, true
}
