package cc

import (
	"regexp"
	"strings"
)

var closureDeclPattern = regexp.MustCompile(`\b(CCClosure[12])\s+(\w+)\s*[;=,)]`)

// RunClosureCallTyping is a two-pass text rewrite: first collect every
// identifier declared (as a variable or a parameter) with type
// CCClosure1/CCClosure2, then rewrite each call site `f(a)` / `f(a, b)`
// against one of those names into `cc_closure1_call(f, (intptr_t)(a))`
// / `cc_closure2_call(f, (intptr_t)(a), (intptr_t)(b))` (§4.5). Method
// calls (already folded into Call nodes by UFCS, or still textual
// `.name(` forms) are left untouched since the rule is scoped to
// "non-UFCS call node".
func RunClosureCallTyping(src string) (string, passStatus, error) {
	closures := collectClosureNames(src)
	if len(closures) == 0 {
		return src, statusUnchanged, nil
	}
	out := &StringBuilder{}
	changed := false
	i := 0
	for i < len(src) {
		if classify(src, i, scanCode) != scanCode {
			out.WriteByte(src[i])
			i++
			continue
		}
		name := identAt(src, i)
		if name != "" && closures[name] {
			// Require a '(' immediately after, and that this isn't a
			// dotted method call (i.e. the preceding non-space byte
			// isn't '.' or "->").
			openIdx := i + len(name)
			if openIdx < len(src) && src[openIdx] == '(' && !precededByDot(src, i) {
				close, err := MatchParen(src, openIdx)
				if err == nil {
					args := splitTopLevelArgs(src[openIdx+1 : close])
					if len(args) == 1 || len(args) == 2 {
						out.WriteString(renderClosureCall(len(args), name, args))
						changed = true
						i = close + 1
						continue
					}
				}
			}
		}
		out.WriteByte(src[i])
		i++
	}
	if !changed {
		return src, statusUnchanged, nil
	}
	return out.String(), statusChanged, nil
}

func renderClosureCall(arity int, name string, args []string) string {
	if arity == 1 {
		return "cc_closure1_call(" + name + ", (intptr_t)(" + strings.TrimSpace(args[0]) + "))"
	}
	return "cc_closure2_call(" + name + ", (intptr_t)(" + strings.TrimSpace(args[0]) + "), (intptr_t)(" + strings.TrimSpace(args[1]) + "))"
}

func collectClosureNames(src string) map[string]bool {
	names := make(map[string]bool)
	for _, m := range closureDeclPattern.FindAllStringSubmatch(src, -1) {
		names[m[2]] = true
	}
	return names
}

func identAt(src string, i int) string {
	if !IsIdentStart(rune(src[i])) {
		return ""
	}
	j := i
	for j < len(src) && IsIdentCont(rune(src[j])) {
		j++
	}
	return src[i:j]
}

func precededByDot(src string, i int) bool {
	j := i - 1
	if j < 0 {
		return false
	}
	if src[j] == '.' {
		return true
	}
	if src[j] == '>' && j > 0 && src[j-1] == '-' {
		return true
	}
	return false
}

// splitTopLevelArgs splits a call's argument text on commas not nested
// inside parens/brackets/braces.
func splitTopLevelArgs(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var out []string
	depth := 0
	start := 0
	sc := &Scanner{src: s}
	for !sc.Done() {
		c, inCode, ok := sc.Next()
		if !ok {
			break
		}
		if !inCode {
			continue
		}
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:sc.pos-1])
				start = sc.pos
			}
		}
	}
	out = append(out, s[start:])
	return out
}
