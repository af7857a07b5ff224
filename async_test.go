package cc

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// asyncFuncStub returns the minimal stub-node slice RunAsyncRewrite
// needs for one @async function: a FuncDecl carrying the async
// attribute and name (everything else is recovered by text scanning
// over src, per §4.8 "Locating targets"), plus one StubAwait per
// await site so checkAwaitPlacement's parent-chain walk has something
// to validate.
func asyncFuncStub(name string, awaitParents ...int) []StubNode {
	nodes := []StubNode{
		{Kind: StubFuncDecl, Parent: -1, Name: name, Aux0: AttrAsync},
	}
	for _, p := range awaitParents {
		nodes = append(nodes, StubNode{Kind: StubAwait, Parent: p})
	}
	return nodes
}

func TestRunAsyncRewriteScenarioFiveFrameShape(t *testing.T) {
	src := "@async int g(int n) { int y = await h(n); return y + 1; }"
	root := NewStubRoot(asyncFuncStub("g", 0), "t.cc", []byte(src))

	out, status, err := RunAsyncRewrite(NewConfig(), root)
	require.NoError(t, err)
	assert.Equal(t, statusChanged, status)
	assert.NotContains(t, out, "@async")

	// Frame struct: __st, __r, hoisted local y, one await temp, the
	// hoisted parameter, and a task slot array sized to one await.
	assert.Regexp(t, `typedef struct \{\s*int __st;\s*int __r;\s*int y;\s*intptr_t __cc_aw0;\s*int __p_n;\s*CCTaskIntptr __t\[1\];\s*\} g_Frame;`, out)

	// Poll function signature and await protocol.
	assert.Contains(t, out, "static CCFutureStatus g_poll(void *__vf, intptr_t *__out, int *__outerr) {")
	assert.Contains(t, out, "__f->__t[0] = (h(__f->__p_n));")
	assert.Contains(t, out, "cc_task_intptr_poll(&__f->__t[0]")
	assert.Contains(t, out, "cc_task_intptr_free(&__f->__t[0]);")
	assert.Contains(t, out, "__f->__cc_aw0 = __cc_v0;")
	assert.Contains(t, out, "__f->y = __f->__cc_aw0;")
	assert.Contains(t, out, "__f->__r = (__f->y + 1);")

	// Terminal state copies the return value through *__out and
	// returns from inside the switch (no unreachable post-switch
	// read of __f->__st).
	assert.Contains(t, out, "case 999: { if (__out) *__out = (intptr_t)__f->__r; return CC_FUTURE_READY; }")
	assert.NotContains(t, out, "if (__f->__st == 999 && __out)")

	// §8: switch dispatches ≥ 2*A+1 = 3 states for A=1 await, plus
	// the terminal state.
	caseCount := len(regexp.MustCompile(`case \d+:`).FindAllString(out, -1))
	assert.GreaterOrEqual(t, caseCount, 2*1+1)
	assert.Contains(t, out, "case 999:")

	// Drop function frees the one pending task slot, then the frame.
	assert.Contains(t, out, "static void g_drop(void *__vf) {")
	assert.Contains(t, out, "cc_task_intptr_free(&__f->__t[0]);\n  free(__f);")

	// Constructor copies the parameter into the frame and hands back
	// a task handle.
	assert.Contains(t, out, "CCTaskIntptr g(int n) {")
	assert.Contains(t, out, "__f->__p_n = n;")
	assert.Contains(t, out, "__f->__st = 1;")
	assert.Contains(t, out, "return cc_task_intptr_make_poll_ex(__f, g_poll, g_drop);")
}

func TestRunAsyncRewriteZeroAwaitsStillReachesTerminalState(t *testing.T) {
	src := "@async int z(void) { return 1; }"
	root := NewStubRoot(asyncFuncStub("z"), "t.cc", []byte(src))

	out, status, err := RunAsyncRewrite(NewConfig(), root)
	require.NoError(t, err)
	assert.Equal(t, statusChanged, status)

	// No CCTaskIntptr array when there are no await points.
	assert.NotContains(t, out, "CCTaskIntptr __t[")
	assert.Contains(t, out, "__f->__r = (1);")
	assert.Contains(t, out, "__f->__st = 999; return CC_FUTURE_PENDING;")
	assert.Contains(t, out, "case 999: { if (__out) *__out = (intptr_t)__f->__r; return CC_FUTURE_READY; }")

	// Only the initial state and the terminal state are needed.
	caseCount := len(regexp.MustCompile(`case \d+:`).FindAllString(out, -1))
	assert.GreaterOrEqual(t, caseCount, 2*0+1)
}

func TestRunAsyncRewriteUnchangedWithNoAsyncFunctions(t *testing.T) {
	src := "int f(int x) { return x; }"
	root := NewStubRoot([]StubNode{{Kind: StubFuncDecl, Parent: -1, Name: "f"}}, "t.cc", []byte(src))

	out, status, err := RunAsyncRewrite(NewConfig(), root)
	require.NoError(t, err)
	assert.Equal(t, statusUnchanged, status)
	assert.Equal(t, src, out)
}

func TestRunAsyncRewriteRejectsAwaitOutsideAsync(t *testing.T) {
	src := "int f(int n) { int y = await h(n); return y; }"
	nodes := []StubNode{
		{Kind: StubFuncDecl, Parent: -1, Name: "f"}, // no AttrAsync
		{Kind: StubAwait, Parent: 0},
	}
	root := NewStubRoot(nodes, "t.cc", []byte(src))

	_, status, err := RunAsyncRewrite(NewConfig(), root)
	require.Error(t, err)
	assert.Equal(t, statusError, status)
	assert.True(t, isCategoryError(err, CategoryUnsupported))
	assert.True(t, strings.Contains(err.Error(), "await") || strings.Contains(err.Error(), "async"))
}

func TestRunAsyncRewriteRejectsAwaitInsideArena(t *testing.T) {
	src := "@async int f(int n) { @arena { int y = await h(n); } return 0; }"
	nodes := []StubNode{
		{Kind: StubFuncDecl, Parent: -1, Name: "f", Aux0: AttrAsync}, // idx 0
		{Kind: StubArena, Parent: 0},                                // idx 1
		{Kind: StubAwait, Parent: 1},                                // idx 2
	}
	root := NewStubRoot(nodes, "t.cc", []byte(src))

	_, status, err := RunAsyncRewrite(NewConfig(), root)
	require.Error(t, err)
	assert.Equal(t, statusError, status)
	assert.True(t, isCategoryError(err, CategoryUnsupported))
	assert.Contains(t, err.Error(), "arena")
}

func TestRunAsyncRewriteRejectsTooManyAwaitPoints(t *testing.T) {
	cfg := NewConfig()
	cfg.SetInt("async.max_awaits", 1)
	src := "@async int f(void) { int a = await g(); int b = await h(); return a + b; }"
	root := NewStubRoot(asyncFuncStub("f", 0), "t.cc", []byte(src))

	_, status, err := RunAsyncRewrite(cfg, root)
	require.Error(t, err)
	assert.Equal(t, statusError, status)
	assert.True(t, isCategoryError(err, CategoryUnsupported))
}
