package query

import (
	"testing"

	cc "github.com/ccfront/cc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addFunctionStub returns the flat node list for
// "int add(int a, int b) { return a + b; }", with real byte spans (all
// on line 1) so position-based lookups have something to resolve.
func addFunctionStub() []cc.StubNode {
	return []cc.StubNode{
		{Kind: cc.StubFuncDecl, Parent: -1, Name: "add", Type: "int", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 40},
		{Kind: cc.StubParam, Parent: 0, Name: "a", Type: "int", StartLine: 1, StartCol: 13, EndLine: 1, EndCol: 14},
		{Kind: cc.StubParam, Parent: 0, Name: "b", Type: "int", StartLine: 1, StartCol: 20, EndLine: 1, EndCol: 21},
		{Kind: cc.StubBlock, Parent: 0, StartLine: 1, StartCol: 23, EndLine: 1, EndCol: 40},
		{Kind: cc.StubReturn, Parent: 3, StartLine: 1, StartCol: 25, EndLine: 1, EndCol: 38},
		{Kind: cc.StubBinary, Parent: 4, Name: "+", StartLine: 1, StartCol: 32, EndLine: 1, EndCol: 37},
		{Kind: cc.StubIdent, Parent: 5, Name: "a", StartLine: 1, StartCol: 32, EndLine: 1, EndCol: 33},
		{Kind: cc.StubIdent, Parent: 5, Name: "b", StartLine: 1, StartCol: 36, EndLine: 1, EndCol: 37},
	}
}

func TestOutlineListsFunctionAndParams(t *testing.T) {
	src := "int add(int a, int b) { return a + b; }"
	root := cc.NewStubRoot(addFunctionStub(), "t.cc", []byte(src))
	file := cc.BuildFile(root, "t.cc")

	syms := Outline(file)
	require.Len(t, syms, 1)
	assert.Equal(t, "add", syms[0].Name)
	assert.Equal(t, SymbolFunc, syms[0].Kind)
	require.Len(t, syms[0].Children, 2)
	assert.Equal(t, "a", syms[0].Children[0].Name)
	assert.Equal(t, SymbolParam, syms[0].Children[0].Kind)
	assert.Equal(t, "b", syms[0].Children[1].Name)
}

func TestOutlineMarksAsyncFunctions(t *testing.T) {
	nodes := addFunctionStub()
	nodes[0].Aux0 |= cc.AttrAsync
	root := cc.NewStubRoot(nodes, "t.cc", []byte("async int add(int a, int b) { return a + b; }"))
	file := cc.BuildFile(root, "t.cc")

	syms := Outline(file)
	require.Len(t, syms, 1)
	assert.Equal(t, "async", syms[0].Detail)
}

func TestOutlineSkipsIncludes(t *testing.T) {
	src := "#include <stdio.h>\nint x;\n"
	nodes := []cc.StubNode{
		{Kind: cc.StubVarDecl, Parent: -1, Name: "x", Type: "int"},
	}
	root := cc.NewStubRoot(nodes, "t.cc", []byte(src))
	file := cc.BuildFile(root, "t.cc")

	syms := Outline(file)
	require.Len(t, syms, 1)
	assert.Equal(t, "x", syms[0].Name)
	assert.Equal(t, SymbolVar, syms[0].Kind)
}

func TestFindNodeAtReturnsInnermostEnclosingNode(t *testing.T) {
	src := "int add(int a, int b) { return a + b; }"
	root := cc.NewStubRoot(addFunctionStub(), "t.cc", []byte(src))
	file := cc.BuildFile(root, "t.cc")

	cursor := len("int add(int a, int b) { return a + ")
	found := FindNodeAt(file, cursor)
	require.NotNil(t, found)
	ident, ok := found.(*cc.Ident)
	require.True(t, ok)
	assert.Equal(t, "b", ident.Name)
}

func TestFindNodeAtOutsideAnySpanReturnsNil(t *testing.T) {
	src := "int add(int a, int b) { return a + b; }"
	root := cc.NewStubRoot(addFunctionStub(), "t.cc", []byte(src))
	file := cc.BuildFile(root, "t.cc")

	found := FindNodeAt(file, -1)
	assert.Nil(t, found)
}

func TestCollectByKindFindsEveryBinary(t *testing.T) {
	src := "int add(int a, int b) { return a + b; }"
	root := cc.NewStubRoot(addFunctionStub(), "t.cc", []byte(src))
	file := cc.BuildFile(root, "t.cc")

	bins := CollectByKind(file, cc.KindBinary)
	assert.Len(t, bins, 1)
}

func TestSortedByPositionOrdersByStartCursor(t *testing.T) {
	syms := []DocumentSymbol{
		{Name: "second", Span: cc.Span{Start: cc.Location{Cursor: 10}}},
		{Name: "first", Span: cc.Span{Start: cc.Location{Cursor: 0}}},
	}
	sorted := SortedByPosition(syms)
	require.Len(t, sorted, 2)
	assert.Equal(t, "first", sorted[0].Name)
	assert.Equal(t, "second", sorted[1].Name)
}
