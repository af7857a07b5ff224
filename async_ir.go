package cc

import "strings"

// airKind tags one statement-IR variant from §4.8's "Building a
// statement list": Semi | Block | If | While | For | Break | Continue
// | Return.
type airKind int

const (
	airSemi airKind = iota
	airBlock
	airIf
	airWhile
	airFor
	airBreak
	airContinue
	airReturn
)

// airNode is one entry in the small statement IR the async rewriter
// reconstructs by combining text-based fallback parsing with the
// stub STMT shapes it mirrors (§4.8 "Building a statement list").
// Only the fields relevant to its Kind are populated.
type airNode struct {
	kind airKind

	text string // Semi: raw statement text, trimmed of trailing ';'. Return: expression text, "" for bare return.

	stmts []*airNode // Block: children, source order

	cond       string  // If/While/For
	then, els  *airNode // If: then/else branch (each an airBlock, or els may be a nested airIf)
	body       *airNode // While/For: body (airBlock)
	init, post string   // For
}

// parseAsyncBody turns a `@async` function's brace-delimited body text
// into a flat list of top-level airNodes. Parsing is comment/string
// safe throughout, built on the same Scanner/MatchBrace/MatchParen
// primitives every other text pass uses.
func parseAsyncBody(src string) []*airNode {
	return parseStmtList(src)
}

func parseStmtList(src string) []*airNode {
	var out []*airNode
	pos := 0
	for {
		pos = SkipSpaceAndComments(src, pos)
		if pos >= len(src) {
			break
		}
		node, next := parseOneStmt(src, pos)
		if next <= pos {
			break // defensive: never loop forever on unparsable trailing text
		}
		out = append(out, node)
		pos = next
	}
	return out
}

// parseSingleOrBlock parses an if/while/for body, which may be either
// a brace block or (C allows it) a single bare statement; the latter
// is wrapped in a synthetic airBlock so callers always get a uniform
// shape.
func parseSingleOrBlock(src string, pos int) (*airNode, int) {
	pos = SkipSpaceAndComments(src, pos)
	if pos < len(src) && src[pos] == '{' {
		close, err := MatchBrace(src, pos)
		if err != nil {
			return &airNode{kind: airBlock}, len(src)
		}
		return &airNode{kind: airBlock, stmts: parseStmtList(src[pos+1 : close])}, close + 1
	}
	node, next := parseOneStmt(src, pos)
	return &airNode{kind: airBlock, stmts: []*airNode{node}}, next
}

func parseOneStmt(src string, pos int) (*airNode, int) {
	if src[pos] == '{' {
		close, err := MatchBrace(src, pos)
		if err != nil {
			return &airNode{kind: airBlock}, len(src)
		}
		return &airNode{kind: airBlock, stmts: parseStmtList(src[pos+1 : close])}, close + 1
	}
	switch {
	case isKeywordAt(src, pos, "if"):
		return parseIf(src, pos)
	case isKeywordAt(src, pos, "while"):
		return parseWhile(src, pos)
	case isKeywordAt(src, pos, "for"):
		return parseFor(src, pos)
	case isKeywordAt(src, pos, "break"):
		end := NearestStatementEnd(src, pos+len("break"))
		return &airNode{kind: airBreak}, endOfSemi(src, end)
	case isKeywordAt(src, pos, "continue"):
		end := NearestStatementEnd(src, pos+len("continue"))
		return &airNode{kind: airContinue}, endOfSemi(src, end)
	case isKeywordAt(src, pos, "return"):
		end := NearestStatementEnd(src, pos+len("return"))
		text := strings.TrimSpace(src[pos+len("return") : end])
		return &airNode{kind: airReturn, text: text}, endOfSemi(src, end)
	case isKeywordAt(src, pos, "@nursery"):
		return parseBraceBoundedSemi(src, pos, "@nursery")
	case isKeywordAt(src, pos, "@arena"):
		return parseBraceBoundedSemi(src, pos, "@arena")
	default:
		end := NearestStatementEnd(src, pos)
		text := strings.TrimSpace(src[pos:end])
		return &airNode{kind: airSemi, text: text}, endOfSemi(src, end)
	}
}

// parseBraceBoundedSemi implements the rule that CC-extension
// block-like statements (@nursery, @arena — @defer is expected to
// already be gone by the time the async rewriter runs, per the §4.7
// scheduler order) are single Semi payloads bounded by matching
// braces.
func parseBraceBoundedSemi(src string, pos int, kw string) (*airNode, int) {
	braceStart := SkipSpaceAndComments(src, pos+len(kw))
	if braceStart >= len(src) || src[braceStart] != '{' {
		end := NearestStatementEnd(src, pos)
		return &airNode{kind: airSemi, text: strings.TrimSpace(src[pos:end])}, endOfSemi(src, end)
	}
	close, err := MatchBrace(src, braceStart)
	if err != nil {
		return &airNode{kind: airSemi, text: strings.TrimSpace(src[pos:])}, len(src)
	}
	return &airNode{kind: airSemi, text: strings.TrimSpace(src[pos : close+1])}, close + 1
}

func endOfSemi(src string, end int) int {
	if end < len(src) && src[end] == ';' {
		return end + 1
	}
	return end
}

func parseIf(src string, pos int) (*airNode, int) {
	open := SkipSpaceAndComments(src, pos+len("if"))
	close, err := MatchParen(src, open)
	if err != nil {
		return &airNode{kind: airIf}, len(src)
	}
	cond := strings.TrimSpace(src[open+1 : close])
	then, next := parseSingleOrBlock(src, close+1)
	next2 := SkipSpaceAndComments(src, next)
	var els *airNode
	if isKeywordAt(src, next2, "else") {
		next3 := SkipSpaceAndComments(src, next2+len("else"))
		if isKeywordAt(src, next3, "if") {
			els, next = parseIf(src, next3)
		} else {
			els, next = parseSingleOrBlock(src, next3)
		}
	}
	return &airNode{kind: airIf, cond: cond, then: then, els: els}, next
}

func parseWhile(src string, pos int) (*airNode, int) {
	open := SkipSpaceAndComments(src, pos+len("while"))
	close, err := MatchParen(src, open)
	if err != nil {
		return &airNode{kind: airWhile}, len(src)
	}
	cond := strings.TrimSpace(src[open+1 : close])
	body, next := parseSingleOrBlock(src, close+1)
	return &airNode{kind: airWhile, cond: cond, body: body}, next
}

func parseFor(src string, pos int) (*airNode, int) {
	open := SkipSpaceAndComments(src, pos+len("for"))
	close, err := MatchParen(src, open)
	if err != nil {
		return &airNode{kind: airFor}, len(src)
	}
	header := src[open+1 : close]
	init, cond, post := splitForHeader(header)
	body, next := parseSingleOrBlock(src, close+1)
	return &airNode{kind: airFor, init: init, cond: cond, post: post, body: body}, next
}

// splitForHeader splits a for-loop's parenthesised header on its two
// top-level ';' separators (§4.8 "splitting two top-level ';' in the
// parenthesised header").
func splitForHeader(header string) (init, cond, post string) {
	first := topLevelSemi(header, 0)
	if first < 0 {
		return strings.TrimSpace(header), "", ""
	}
	second := topLevelSemi(header, first+1)
	if second < 0 {
		return strings.TrimSpace(header[:first]), strings.TrimSpace(header[first+1:]), ""
	}
	return strings.TrimSpace(header[:first]), strings.TrimSpace(header[first+1 : second]), strings.TrimSpace(header[second+1:])
}

func topLevelSemi(src string, from int) int {
	depth := 0
	sc := &Scanner{src: src, pos: from}
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
		case ';':
			if depth == 0 {
				return sc.pos - 1
			}
		}
	}
	return -1
}

func isKeywordAt(src string, pos int, kw string) bool {
	if pos >= len(src) || !strings.HasPrefix(src[pos:], kw) {
		return false
	}
	return wordBoundary(src, pos, len(kw))
}
