package cc

import (
	"fmt"
	"strings"
)

// maxDeferDepth is the fixed cap on lexical brace depth tracked by the
// defer stack; a @defer registered at or beyond it is dropped, and no
// warning or error is reported for it.
const maxDeferDepth = 256

type deferEntry struct {
	line int
	text string
	cond DeferCond
}

// RunDefer rewrites @defer / @defer(ok) / @defer(err) statements,
// materializing them at scope exit (`}`) and at `return expr;`
// (wrapping single-line `if (...) return ...;` first so the expansion
// is well-formed).
func RunDefer(cfg *Config, src string) (string, passStatus, error) {
	if !strings.Contains(src, "@defer") {
		return src, statusUnchanged, nil
	}
	li := NewLineIndex([]byte(src))
	stacks := make(map[int][]deferEntry)
	out := &StringBuilder{}
	depth := 0
	i := 0
	truncatedWarning := false

	for i < len(src) {
		state := classify(src, i, scanCode)
		if state != scanCode {
			out.WriteByte(src[i])
			i++
			continue
		}
		switch {
		case strings.HasPrefix(src[i:], "cancel") && wordBoundary(src, i, len("cancel")):
			return src, statusError, NewUnsupportedError("'cancel' is a reserved identifier", "rename the identifier", spanAt(src, i))

		case strings.HasPrefix(src[i:], "@defer"):
			rest := src[i+len("@defer"):]
			cond := DeferAlways
			consumed := len("@defer")
			trimmed := strings.TrimLeft(rest, " \t")
			if strings.HasPrefix(trimmed, "(ok)") {
				cond = DeferOnOk
				consumed += len(rest) - len(trimmed) + len("(ok)")
			} else if strings.HasPrefix(trimmed, "(err)") {
				cond = DeferOnErr
				consumed += len(rest) - len(trimmed) + len("(err)")
			}
			stmtStart := SkipSpaceAndComments(src, i+consumed)
			end := NearestStatementEnd(src, stmtStart)
			if end >= len(src) || src[end] != ';' {
				return src, statusError, NewSyntaxError("malformed @defer: missing terminating ';'", spanAt(src, i))
			}
			text := strings.TrimSpace(src[stmtStart:end])
			if depth >= maxDeferDepth {
				truncatedWarning = true
			} else {
				stacks[depth] = append(stacks[depth], deferEntry{line: li.Line(i), text: text, cond: cond})
			}
			i = end + 1
			continue

		case src[i] == '{':
			out.WriteByte('{')
			depth++
			i++
			continue

		case src[i] == '}':
			emitDepthDefers(out, stacks, depth, false, "")
			delete(stacks, depth)
			depth--
			out.WriteByte('}')
			i++
			continue

		case strings.HasPrefix(src[i:], "return") && wordBoundary(src, i, len("return")):
			end := NearestStatementEnd(src, i+len("return"))
			if end >= len(src) || src[end] != ';' {
				return src, statusError, NewSyntaxError("unterminated return inside deferred scope", spanAt(src, i))
			}
			expr := strings.TrimSpace(src[i+len("return") : end])
			hasConditional := false
			for _, e := range stacks[depth] {
				if e.cond != DeferAlways {
					hasConditional = true
				}
			}
			if !hasConditional {
				emitDepthDefers(out, stacks, depth, true, "")
				out.WriteString(fmt.Sprintf("return %s;", expr))
			} else {
				var body StringBuilder
				body.WriteString(fmt.Sprintf("{ typeof(%s) __cc_ret = (%s); int __cc_ret_err = !__cc_ret.ok;", expr, expr))
				for k := len(stacks[depth]) - 1; k >= 0; k-- {
					e := stacks[depth][k]
					if e.cond == DeferAlways {
						body.Appendf(" #line %d\n %s;", e.line, e.text)
					}
				}
				for k := len(stacks[depth]) - 1; k >= 0; k-- {
					e := stacks[depth][k]
					if e.cond == DeferOnErr {
						body.Appendf(" if (__cc_ret_err) { #line %d\n %s; }", e.line, e.text)
					}
				}
				for k := len(stacks[depth]) - 1; k >= 0; k-- {
					e := stacks[depth][k]
					if e.cond == DeferOnOk {
						body.Appendf(" if (!__cc_ret_err) { #line %d\n %s; }", e.line, e.text)
					}
				}
				body.WriteString(" return __cc_ret; }")
				out.WriteString(body.String())
			}
			i = end + 1
			continue
		}
		out.WriteByte(src[i])
		i++
	}
	_ = truncatedWarning // set when a @defer is dropped at maxDeferDepth; not reported to the caller
	return out.String(), statusChanged, nil
}

// emitDepthDefers writes the ALWAYS entries (and, if atReturn, all
// conditional entries too) for the given depth in reverse registration
// order.
func emitDepthDefers(out *StringBuilder, stacks map[int][]deferEntry, depth int, atReturn bool, _ string) {
	entries := stacks[depth]
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.cond == DeferAlways || atReturn {
			out.Appendf(" #line %d\n %s; ", e.line, e.text)
		}
	}
}

func wordBoundary(src string, i, kwLen int) bool {
	before := i == 0 || !IsIdentCont(rune(src[i-1]))
	afterPos := i + kwLen
	after := afterPos >= len(src) || !IsIdentCont(rune(src[afterPos]))
	return before && after
}
