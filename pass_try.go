package cc

import "strings"

// RunTry rewrites `try expr` to `cc_try(expr)`, where expr ends at the
// nearest top-level ';', ',', or unbalanced closing bracket.
func RunTry(src string) (string, passStatus, error) {
	const kw = "try"
	if !strings.Contains(src, kw) {
		return src, statusUnchanged, nil
	}
	out := &StringBuilder{}
	pos := 0
	changed := false
	for {
		idx := indexKeyword(src, pos, kw)
		if idx < 0 {
			out.WriteString(src[pos:])
			break
		}
		out.WriteString(src[pos:idx])
		exprStart := SkipSpaceAndComments(src, idx+len(kw))
		end := NearestStatementEnd(src, exprStart)
		expr := strings.TrimSpace(src[exprStart:end])
		out.WriteString("cc_try(" + expr + ")")
		changed = true
		pos = end
	}
	if !changed {
		return src, statusUnchanged, nil
	}
	return out.String(), statusChanged, nil
}
