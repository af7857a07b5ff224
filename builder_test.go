package cc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stub builds the flat node list for `int add(int a, int b) { return a + b; }`.
func addFunctionStub() []StubNode {
	return []StubNode{
		{Kind: StubFuncDecl, Parent: -1, Name: "add", Type: "int"},
		{Kind: StubParam, Parent: 0, Name: "a", Type: "int"},
		{Kind: StubParam, Parent: 0, Name: "b", Type: "int"},
		{Kind: StubBlock, Parent: 0},
		{Kind: StubReturn, Parent: 3},
		{Kind: StubBinary, Parent: 4, Name: "+"},
		{Kind: StubIdent, Parent: 5, Name: "a"},
		{Kind: StubIdent, Parent: 5, Name: "b"},
	}
}

func TestBuildFileAssemblesFunction(t *testing.T) {
	src := "int add(int a, int b) { return a + b; }"
	root := NewStubRoot(addFunctionStub(), "t.cc", []byte(src))

	file := BuildFile(root, "t.cc")
	require.Len(t, file.Items, 1)

	fn, ok := file.Items[0].(*FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	assert.Equal(t, "b", fn.Params[1].Name)

	require.NotNil(t, fn.Body)
	require.Len(t, fn.Body.Stmts, 1)

	ret, ok := fn.Body.Stmts[0].(*Return)
	require.True(t, ok)
	bin, ok := ret.Expr.(*Binary)
	require.True(t, ok)
	assert.Equal(t, OpAdd, bin.Op)

	left, ok := bin.Left.(*Ident)
	require.True(t, ok)
	assert.Equal(t, "a", left.Name)
	right, ok := bin.Right.(*Ident)
	require.True(t, ok)
	assert.Equal(t, "b", right.Name)
}

func TestBuildFileMarksAsyncFunctions(t *testing.T) {
	nodes := addFunctionStub()
	nodes[0].Aux0 |= AttrAsync
	root := NewStubRoot(nodes, "t.cc", []byte("async int add(int a, int b) { return a + b; }"))

	file := BuildFile(root, "t.cc")
	fn := file.Items[0].(*FuncDecl)
	assert.True(t, fn.IsAsync)
}

func TestBuildFileDropsStubPrefixedDeclarations(t *testing.T) {
	nodes := []StubNode{
		{Kind: StubVarDecl, Parent: -1, Name: "__cc_internal", Type: "int"},
		{Kind: StubVarDecl, Parent: -1, Name: "visible", Type: "int"},
	}
	root := NewStubRoot(nodes, "t.cc", []byte("int visible;"))
	file := BuildFile(root, "t.cc")
	require.Len(t, file.Items, 1)
	vd := file.Items[0].(*VarDecl)
	assert.Equal(t, "visible", vd.Name)
}

func TestBuildFileCollectsIncludes(t *testing.T) {
	src := "#include <stdio.h>\n#include \"local.h\"\nint x;\n"
	nodes := []StubNode{
		{Kind: StubVarDecl, Parent: -1, Name: "x", Type: "int"},
	}
	root := NewStubRoot(nodes, "t.cc", []byte(src))
	file := BuildFile(root, "t.cc")
	require.Len(t, file.Items, 3)

	inc1, ok := file.Items[0].(*Include)
	require.True(t, ok)
	assert.Equal(t, "stdio.h", inc1.Path)
	assert.True(t, inc1.System)

	inc2, ok := file.Items[1].(*Include)
	require.True(t, ok)
	assert.Equal(t, "local.h", inc2.Path)
	assert.False(t, inc2.System)
}
