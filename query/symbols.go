// Package query provides read-only lookups over a compiled CC File
// for downstream tooling (spec.md §1: "it also produces a structured
// AST for downstream tooling"). It never mutates the tree it is given.
package query

import (
	"sort"

	cc "github.com/ccfront/cc"
)

// SymbolKind discriminates the different top-level and nested symbols
// a document outline exposes, mirroring the teacher's query_lsp.go
// SymbolKind enum, narrowed to the declarations CC's AST actually has.
type SymbolKind int

const (
	SymbolFunc SymbolKind = iota
	SymbolVar
	SymbolParam
	SymbolStruct
	SymbolField
	SymbolEnum
	SymbolEnumValue
	SymbolTypedef
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunc:
		return "function"
	case SymbolVar:
		return "variable"
	case SymbolParam:
		return "parameter"
	case SymbolStruct:
		return "struct"
	case SymbolField:
		return "field"
	case SymbolEnum:
		return "enum"
	case SymbolEnumValue:
		return "enum-value"
	case SymbolTypedef:
		return "typedef"
	default:
		return "unknown"
	}
}

// DocumentSymbol is one entry in a file's outline: a name, its kind,
// the span it occupies, and (for functions/structs/enums) its nested
// symbols, modeled on the teacher's query_lsp.go DocumentSymbol.
type DocumentSymbol struct {
	Name     string
	Kind     SymbolKind
	Span     cc.Span
	Detail   string
	Children []DocumentSymbol
}

// Outline builds the top-level-to-nested symbol tree for a compiled
// File, in source order (the order BuildFile already assembled Items
// in, per §3's File invariant: imports first, then declarations in
// declared order).
func Outline(file *cc.File) []DocumentSymbol {
	var out []DocumentSymbol
	for _, item := range file.Items {
		if sym, ok := symbolFor(item); ok {
			out = append(out, sym)
		}
	}
	return out
}

func symbolFor(item cc.CCN) (DocumentSymbol, bool) {
	switch n := item.(type) {
	case *cc.FuncDecl:
		sym := DocumentSymbol{Name: n.Name, Kind: SymbolFunc, Span: n.Span(), Detail: funcDetail(n)}
		for _, p := range n.Params {
			sym.Children = append(sym.Children, DocumentSymbol{Name: p.Name, Kind: SymbolParam, Span: p.Span()})
		}
		return sym, true
	case *cc.VarDecl:
		return DocumentSymbol{Name: n.Name, Kind: SymbolVar, Span: n.Span()}, true
	case *cc.Typedef:
		return DocumentSymbol{Name: n.Name, Kind: SymbolTypedef, Span: n.Span()}, true
	case *cc.StructDecl:
		sym := DocumentSymbol{Name: n.Name, Kind: SymbolStruct, Span: n.Span()}
		for _, f := range n.Fields {
			sym.Children = append(sym.Children, DocumentSymbol{Name: f.Name, Kind: SymbolField, Span: f.Span()})
		}
		return sym, true
	case *cc.EnumDecl:
		sym := DocumentSymbol{Name: n.Name, Kind: SymbolEnum, Span: n.Span()}
		for _, v := range n.Values {
			sym.Children = append(sym.Children, DocumentSymbol{Name: v.Name, Kind: SymbolEnumValue, Span: v.Span()})
		}
		return sym, true
	default:
		// Include and any other top-level item carries no symbol.
		return DocumentSymbol{}, false
	}
}

func funcDetail(n *cc.FuncDecl) string {
	if n.IsAsync {
		return "async"
	}
	return ""
}

// FindNodeAt returns the innermost node whose span encloses cursor (a
// 0-based byte offset into the source that produced root), or nil if
// no node does. Ties (nodes sharing the same start/end) favor the one
// discovered last in a preorder walk, which is always the more deeply
// nested one since Walk descends into children before returning to
// siblings.
func FindNodeAt(root cc.CCN, cursor int) cc.CCN {
	var best cc.CCN
	cc.Walk(root, func(n cc.CCN) bool {
		if !spanContains(n.Span(), cursor) {
			return false
		}
		best = n
		return true
	})
	return best
}

func spanContains(sp cc.Span, cursor int) bool {
	return cursor >= sp.Start.Cursor && cursor <= sp.End.Cursor
}

// CollectByKind returns every node of the given NodeKind reachable
// from root, in preorder — a thin convenience over cc.Collect for
// callers that only care about a single kind (e.g. every Await, for a
// hover/usage listing of suspension points).
func CollectByKind(root cc.CCN, kind cc.NodeKind) []cc.CCN {
	return cc.Collect(root, func(n cc.CCN) bool { return n.Kind() == kind })
}

// SortedByPosition returns symbols ordered by their span's start
// cursor, for callers that built a list out of order (e.g. merging
// outlines from multiple files for a workspace-wide symbol search).
func SortedByPosition(syms []DocumentSymbol) []DocumentSymbol {
	out := make([]DocumentSymbol, len(syms))
	copy(out, syms)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Span.Start.Cursor < out[j].Span.Start.Cursor
	})
	return out
}
