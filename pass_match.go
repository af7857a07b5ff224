package cc

import (
	"fmt"
	"strings"
)

// RunMatch rewrites `@match { case <header>: <body> ... }` blocks over
// channel operations into a local array of case descriptors, a select
// over channels, and a switch dispatch. Recognised headers are
// `<chan>.send(expr)`, `<chan>.recv(ptr)`, and `is_cancelled()`.
func RunMatch(ctx *passContext, src string) (string, passStatus, error) {
	const kw = "@match"
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
		braceStart := SkipSpaceAndComments(src, idx+len(kw))
		if braceStart >= len(src) || src[braceStart] != '{' {
			return src, statusError, NewSyntaxError("@match must be followed by a block", spanAt(src, idx))
		}
		braceEnd, err := MatchBrace(src, braceStart)
		if err != nil {
			return src, statusError, NewSyntaxError("unterminated @match block", spanAt(src, idx))
		}
		body := src[braceStart+1 : braceEnd]
		rendered, rerr := rewriteMatchBody(ctx, body, idx)
		if rerr != nil {
			return src, statusError, rerr
		}
		out.WriteString(rendered)
		changed = true
		pos = braceEnd + 1
	}
	if !changed {
		return src, statusUnchanged, nil
	}
	return out.String(), statusChanged, nil
}

type matchCase struct {
	header     string
	chanName   string
	isSend     bool
	isRecv     bool
	isCancel   bool
	sendExpr   string
	recvPtr    string
	body       string
}

func rewriteMatchBody(ctx *passContext, body string, anchor int) (string, error) {
	cases, err := splitMatchCases(body, anchor)
	if err != nil {
		return "", err
	}
	id := ctx.next()
	var b StringBuilder
	b.WriteString(fmt.Sprintf("{ CCChanMatchCase __cc_mc%d[%d];", id, len(cases)))

	cancelIdx := -1
	for i, c := range cases {
		switch {
		case c.isCancel:
			cancelIdx = i
			b.Appendf(" __cc_mc%d[%d] = cc_chan_match_case_cancel();", id, i)
		case c.isSend:
			tmp := fmt.Sprintf("__cc_mc%d_send%d", id, i)
			b.Appendf(" typeof(%s) %s = (%s); __cc_mc%d[%d] = cc_chan_match_case_send(%s, &%s);", c.sendExpr, tmp, c.sendExpr, id, i, c.chanName, tmp)
		case c.isRecv:
			b.Appendf(" __cc_mc%d[%d] = cc_chan_match_case_recv(%s, %s);", id, i, c.chanName, c.recvPtr)
		}
	}
	if cancelIdx >= 0 {
		b.Appendf(" int __cc_mi%d = cc_is_cancelled() ? %d : cc_chan_match_select(__cc_mc%d, %d);", id, cancelIdx, id, len(cases))
	} else {
		b.Appendf(" int __cc_mi%d = cc_chan_match_select(__cc_mc%d, %d);", id, id, len(cases))
	}
	b.Appendf(" switch (__cc_mi%d) {", id)
	for i, c := range cases {
		b.Appendf(" case %d: { %s break; }", i, c.body)
	}
	b.WriteString(" } }")
	return b.String(), nil
}

// splitMatchCases parses `case <header>: <body>` entries separated at
// top-level `case` keywords, bracket/comment/string safe.
func splitMatchCases(body string, anchor int) ([]matchCase, error) {
	var cases []matchCase
	pos := 0
	for {
		idx := indexKeyword(body, pos, "case")
		if idx < 0 {
			break
		}
		colon := findTopLevelColon(body, idx+len("case"))
		if colon < 0 {
			return nil, NewSyntaxError("malformed @match case: missing ':'", spanAt(body, anchor))
		}
		header := strings.TrimSpace(body[idx+len("case") : colon])
		nextCase := indexKeyword(body, colon+1, "case")
		var bodyText string
		if nextCase < 0 {
			bodyText = strings.TrimSpace(body[colon+1:])
			pos = len(body)
		} else {
			bodyText = strings.TrimSpace(body[colon+1 : nextCase])
			pos = nextCase
		}
		mc, err := parseMatchHeader(header, bodyText, anchor)
		if err != nil {
			return nil, err
		}
		cases = append(cases, mc)
		if nextCase < 0 {
			break
		}
	}
	return cases, nil
}

func findTopLevelColon(src string, pos int) int {
	depth := 0
	sc := &Scanner{src: src, pos: pos}
	for !sc.Done() {
		c, inCode, ok := sc.Next()
		if !ok {
			break
		}
		if !inCode {
			continue
		}
		switch c {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ':':
			if depth == 0 {
				return sc.pos - 1
			}
		}
	}
	return -1
}

func parseMatchHeader(header, body string, anchor int) (matchCase, error) {
	header = strings.TrimSpace(header)
	if header == "is_cancelled()" {
		return matchCase{header: header, isCancel: true, body: body}, nil
	}
	dot := strings.IndexByte(header, '.')
	if dot < 0 {
		return matchCase{}, NewSyntaxError("unrecognised @match case header: "+header, spanAt(header, anchor))
	}
	chanName := strings.TrimSpace(header[:dot])
	call := strings.TrimSpace(header[dot+1:])
	switch {
	case strings.HasPrefix(call, "send(") && strings.HasSuffix(call, ")"):
		expr := call[len("send(") : len(call)-1]
		return matchCase{header: header, chanName: chanName, isSend: true, sendExpr: expr, body: body}, nil
	case strings.HasPrefix(call, "recv(") && strings.HasSuffix(call, ")"):
		ptr := call[len("recv(") : len(call)-1]
		return matchCase{header: header, chanName: chanName, isRecv: true, recvPtr: ptr, body: body}, nil
	default:
		return matchCase{}, NewSyntaxError("unrecognised @match case header: "+header, spanAt(header, anchor))
	}
}
