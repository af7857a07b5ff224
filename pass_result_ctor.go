package cc

import (
	"fmt"
	"strings"
)

// RunResultCtor rewrites bare cc_ok(v)/cc_err(e) calls, inside a
// function whose return type is CCResult_T_E, to the type-qualified
// cc_ok_T_E(v)/cc_err_T_E(e) forms that RenderTypeDecls declares; the
// qualified name carries the T_E suffix only, with no CCResult_
// prefix. Errors beginning
// with CC_ERR_*/CC_IO_* are wrapped in cc_error(...)/cc_io_error(...)
// with a default message supplied when absent. The enclosing return
// type is tracked by brace depth from the nearest preceding function
// signature.
func RunResultCtor(src string) (string, passStatus, error) {
	if !strings.Contains(src, "cc_ok(") && !strings.Contains(src, "cc_err(") {
		return src, statusUnchanged, nil
	}
	out := &StringBuilder{}
	changed := false
	depth := 0
	var resultStack []string // resultStack[d] = enclosing CCResult_T_E at depth d, "" if none
	i := 0
	for i < len(src) {
		if classify(src, i, scanCode) != scanCode {
			out.WriteByte(src[i])
			i++
			continue
		}
		if ret := resultReturnTypeAt(src, i); ret != "" {
			resultStack = append(resultStack, ret)
		}
		switch {
		case src[i] == '{':
			depth++
			for len(resultStack) < depth {
				resultStack = append(resultStack, "")
			}
			out.WriteByte('{')
			i++
			continue
		case src[i] == '}':
			if depth > 0 {
				if len(resultStack) >= depth {
					resultStack = resultStack[:depth-1]
				}
				depth--
			}
			out.WriteByte('}')
			i++
			continue
		case strings.HasPrefix(src[i:], "cc_ok(") && wordBoundary(src, i, len("cc_ok")):
			enclosing := currentResultType(resultStack, depth)
			if enclosing == "" {
				out.WriteString("cc_ok(")
				i += len("cc_ok(")
				continue
			}
			argsStart := i + len("cc_ok(")
			closeIdx, err := matchParenAfter(src, i, "cc_ok")
			if err != nil {
				return src, statusError, NewSyntaxError("unterminated cc_ok(...)", spanAt(src, i))
			}
			value := src[argsStart:closeIdx]
			out.WriteString(fmt.Sprintf("cc_ok_%s(%s)", enclosing, value))
			changed = true
			i = closeIdx + 1
			continue
		case strings.HasPrefix(src[i:], "cc_err(") && wordBoundary(src, i, len("cc_err")):
			enclosing := currentResultType(resultStack, depth)
			if enclosing == "" {
				out.WriteString("cc_err(")
				i += len("cc_err(")
				continue
			}
			argsStart := i + len("cc_err(")
			closeIdx, err := matchParenAfter(src, i, "cc_err")
			if err != nil {
				return src, statusError, NewSyntaxError("unterminated cc_err(...)", spanAt(src, i))
			}
			arg := strings.TrimSpace(src[argsStart:closeIdx])
			wrapped := wrapErrorArg(arg)
			out.WriteString(fmt.Sprintf("cc_err_%s(%s)", enclosing, wrapped))
			changed = true
			i = closeIdx + 1
			continue
		}
		out.WriteByte(src[i])
		i++
	}
	if !changed {
		return src, statusUnchanged, nil
	}
	return out.String(), statusChanged, nil
}

func matchParenAfter(src string, callStart int, name string) (int, error) {
	open := callStart + len(name)
	return MatchParen(src, open)
}

func currentResultType(stack []string, depth int) string {
	d := depth
	if d >= len(stack) {
		d = len(stack) - 1
	}
	for ; d >= 0; d-- {
		if stack[d] != "" {
			return stack[d]
		}
	}
	return ""
}

// resultReturnTypeAt detects a `CCResult_T_E <name>(` function
// signature starting at i and returns the mangled "T_E" suffix.
func resultReturnTypeAt(src string, i int) string {
	if !strings.HasPrefix(src[i:], "CCResult_") {
		return ""
	}
	end := i + len("CCResult_")
	for end < len(src) && IsIdentCont(rune(src[end])) {
		end++
	}
	return src[i+len("CCResult_") : end]
}

func wrapErrorArg(arg string) string {
	trimmed := strings.TrimSpace(arg)
	switch {
	case strings.HasPrefix(trimmed, "CC_ERR_"):
		return fmt.Sprintf("cc_error(%s, \"\")", trimmed)
	case strings.HasPrefix(trimmed, "CC_IO_"):
		return fmt.Sprintf("cc_io_error(%s, \"\")", trimmed)
	default:
		return arg
	}
}
