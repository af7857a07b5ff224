package cc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithDeadlineRewritesScopedBlock(t *testing.T) {
	ctx := &passContext{}
	src := "with_deadline(deadline_ms(500)) { do_work(); }"
	out, status, err := RunWithDeadline(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, statusChanged, status)
	assert.Contains(t, out, "CCDeadline __cc_dl1 = cc_deadline_make(deadline_ms(500));")
	assert.Contains(t, out, "cc_deadline_push(&__cc_dl1);")
	assert.Contains(t, out, "@defer cc_deadline_pop();")
	assert.Contains(t, out, "do_work();")
}

func TestRunWithDeadlineUnchangedWithoutKeyword(t *testing.T) {
	ctx := &passContext{}
	src := "int f() { return 1; }"
	out, status, err := RunWithDeadline(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, statusUnchanged, status)
	assert.Equal(t, src, out)
}

func TestRunSliceTypesRewritesSliceAndUniqueSlice(t *testing.T) {
	out, status, err := RunSliceTypes("int[:] xs; char[:!] ys;")
	require.NoError(t, err)
	assert.Equal(t, statusChanged, status)
	assert.Equal(t, "CCSlice xs; CCSliceUnique ys;", out)
}

func TestRunSliceTypesIsIdempotent(t *testing.T) {
	out, status, err := RunSliceTypes("int[:] xs;")
	require.NoError(t, err)
	require.Equal(t, statusChanged, status)

	out2, status2, err2 := RunSliceTypes(out)
	require.NoError(t, err2)
	assert.Equal(t, statusUnchanged, status2)
	assert.Equal(t, out, out2)
}

func TestRunSliceTypesUnterminatedIsError(t *testing.T) {
	_, status, err := RunSliceTypes("int[: xs;")
	assert.Equal(t, statusError, status)
	assert.Error(t, err)
}

func TestRunOptionalTypesRewritesAndRegisters(t *testing.T) {
	reg := NewTypeRegistries()
	out, status, err := RunOptionalTypes(reg, "IoError? maybeErr;")
	require.NoError(t, err)
	assert.Equal(t, statusChanged, status)
	assert.Equal(t, "__CC_OPTIONAL(IoError) maybeErr;", out)
	assert.Equal(t, "IoError", reg.Optionals["CCIoError"])
}

func TestRunResultTypesRewritesArrowFormAndRegisters(t *testing.T) {
	reg := NewTypeRegistries()
	out, status, err := RunResultTypes(reg, "int!>(IoError) f();")
	require.NoError(t, err)
	assert.Equal(t, statusChanged, status)
	assert.Equal(t, "CCResult_int_CCIoError f();", out)
	pair, ok := reg.Results["int_CCIoError"]
	require.True(t, ok)
	assert.Equal(t, "int", pair.RawOk)
	assert.Equal(t, "IoError", pair.RawErr)
}

func TestRunResultTypesExcludesCCErrorPairs(t *testing.T) {
	reg := NewTypeRegistries()
	_, _, err := RunResultTypes(reg, "int!>(CCError) f();")
	require.NoError(t, err)
	assert.Empty(t, reg.Results)
}

func TestRunChannelHandleTypesRecognisesTxAndRx(t *testing.T) {
	out, specs, status, err := RunChannelHandleTypes("[int~4>] tx; [int~4<] rx;")
	require.NoError(t, err)
	assert.Equal(t, statusChanged, status)
	assert.Equal(t, "CCChanTx tx; CCChanRx rx;", out)
	require.Contains(t, specs, "tx")
	require.Contains(t, specs, "rx")
	assert.Equal(t, byte('>'), specs["tx"].Direction)
	assert.Equal(t, byte('<'), specs["rx"].Direction)
	assert.Equal(t, "4", specs["tx"].Capacity)
}

func TestRunChannelHandleTypesRejectsUnknownOption(t *testing.T) {
	_, _, status, err := RunChannelHandleTypes("[int~4>,bogus] tx;")
	assert.Equal(t, statusError, status)
	assert.Error(t, err)
}

func TestRunChannelPairExpandsStatementForm(t *testing.T) {
	src := "[int~4>] tx; [int~4<] rx; channel_pair(&tx, &rx);"
	out1, _, status1, err1 := RunChannelHandleTypes(src)
	require.NoError(t, err1)
	require.Equal(t, statusChanged, status1)

	_, specs, _, err1b := RunChannelHandleTypes(src)
	require.NoError(t, err1b)

	out2, status2, err2 := RunChannelPair(specs, out1)
	require.NoError(t, err2)
	assert.Equal(t, statusChanged, status2)
	assert.Contains(t, out2, "cc_chan_pair_create_full(4, CC_CHAN_MODE_BLOCK, 0, sizeof(int), 0, CC_CHAN_TOPO_DEFAULT, &tx, &rx)")
	assert.Contains(t, out2, "do { int __cc_cp_err =")
}

func TestRunChannelPairRejectsDirectionMismatch(t *testing.T) {
	src := "[int~4>] tx; [int~4>] rx; channel_pair(&tx, &rx);"
	_, specs, _, err := RunChannelHandleTypes(src)
	require.NoError(t, err)

	_, status, err2 := RunChannelPair(specs, src)
	assert.Equal(t, statusError, status)
	assert.Error(t, err2)
}

func TestRunTryRewritesExpression(t *testing.T) {
	out, status, err := RunTry("int x = try do_io(); next();")
	require.NoError(t, err)
	assert.Equal(t, statusChanged, status)
	assert.Equal(t, "int x = cc_try(do_io()); next();", out)
}

func TestRunTryUnchangedWithoutKeyword(t *testing.T) {
	out, status, err := RunTry("int x = 1;")
	require.NoError(t, err)
	assert.Equal(t, statusUnchanged, status)
	assert.Equal(t, "int x = 1;", out)
}

func TestRunResultCtorQualifiesBareConstructors(t *testing.T) {
	src := "CCResult_int_CCError f() { return cc_ok(1); } int g() { return cc_ok(2); }"
	out, status, err := RunResultCtor(src)
	require.NoError(t, err)
	assert.Equal(t, statusChanged, status)
	assert.Contains(t, out, "cc_ok_int_CCError(1)")
	assert.Contains(t, out, "return cc_ok(2);")
}

func TestRunResultCtorWrapsKnownErrorPrefixes(t *testing.T) {
	src := "CCResult_int_CCError f() { return cc_err(CC_ERR_NOT_FOUND); }"
	out, status, err := RunResultCtor(src)
	require.NoError(t, err)
	assert.Equal(t, statusChanged, status)
	assert.Contains(t, out, `cc_err_int_CCError(cc_error(CC_ERR_NOT_FOUND, ""))`)
}

func TestRunOptionalUnwrapRewritesDeclaredOptionalsOnly(t *testing.T) {
	src := "CCOptional_int opt; int *other; int a = *opt; int b = *other;"
	out, status, err := RunOptionalUnwrap(src)
	require.NoError(t, err)
	assert.Equal(t, statusChanged, status)
	assert.Contains(t, out, "int a = cc_unwrap_opt(opt);")
	assert.Contains(t, out, "int b = *other;")
}

func TestRunClosureCallTypingRewritesArity1And2(t *testing.T) {
	src := "CCClosure1 f; CCClosure2 g; int x = f(1); int y = g(1, 2);"
	out, status, err := RunClosureCallTyping(src)
	require.NoError(t, err)
	assert.Equal(t, statusChanged, status)
	assert.Contains(t, out, "cc_closure1_call(f, (intptr_t)(1))")
	assert.Contains(t, out, "cc_closure2_call(g, (intptr_t)(1), (intptr_t)(2))")
}

func TestRunClosureCallTypingSkipsMethodCalls(t *testing.T) {
	src := "CCClosure1 f; int y = obj.f(1);"
	out, status, err := RunClosureCallTyping(src)
	require.NoError(t, err)
	assert.Equal(t, statusUnchanged, status)
	assert.Equal(t, src, out)
}

func TestRunMatchExpandsSendRecvAndCancel(t *testing.T) {
	ctx := &passContext{}
	src := "@match { case tx.send(1): ok(); case rx.recv(&v): got(); case is_cancelled(): cancelled(); }"
	out, status, err := RunMatch(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, statusChanged, status)
	assert.Contains(t, out, "CCChanMatchCase __cc_mc1[3];")
	assert.Contains(t, out, "cc_chan_match_case_cancel();")
	assert.Contains(t, out, "cc_chan_match_case_send(tx, &__cc_mc1_send0);")
	assert.Contains(t, out, "cc_chan_match_case_recv(rx, &v);")
	assert.Contains(t, out, "cc_is_cancelled() ? 2 : cc_chan_match_select(__cc_mc1, 3);")
	assert.Contains(t, out, "case 0: { ok(); break; }")
	assert.Contains(t, out, "case 1: { got(); break; }")
	assert.Contains(t, out, "case 2: { cancelled(); break; }")
}

func TestRunMatchRejectsUnrecognisedHeader(t *testing.T) {
	ctx := &passContext{}
	_, status, err := RunMatch(ctx, "@match { case bogus(): x(); }")
	assert.Equal(t, statusError, status)
	assert.Error(t, err)
}

func TestRunUFCSAddressOfsValueReceiver(t *testing.T) {
	recv := NewCast(NewTypeName("Point", Span{}), NewIdent("a", Span{}), Span{})
	method := NewMethod(recv, "add", []CCN{NewIntLit("1", Span{})}, Span{})
	out := RunUFCS(method, defaultReceiverTypeNamer)
	call, ok := out.(*Call)
	require.True(t, ok)
	ident, ok := call.Callee.(*Ident)
	require.True(t, ok)
	assert.Equal(t, "Point_add", ident.Name)
	require.Len(t, call.Args, 2)
	addr, ok := call.Args[0].(*Unary)
	require.True(t, ok)
	assert.Equal(t, OpAddr, addr.Op)
}

func TestRunUFCSLeavesPrimitiveReceiverAsMethod(t *testing.T) {
	recv := NewCast(NewTypeName("int", Span{}), NewIdent("a", Span{}), Span{})
	method := NewMethod(recv, "add", []CCN{NewIntLit("1", Span{})}, Span{})
	out := RunUFCS(method, defaultReceiverTypeNamer)
	_, ok := out.(*Method)
	assert.True(t, ok)
}

func TestRunUFCSSkipsAddressOfForPointerReceiver(t *testing.T) {
	recv := NewCast(NewPointerType(NewTypeName("Point", Span{}), Span{}), NewIdent("a", Span{}), Span{})
	method := NewMethod(recv, "add", []CCN{NewIntLit("1", Span{})}, Span{})
	out := RunUFCS(method, defaultReceiverTypeNamer)
	call, ok := out.(*Call)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
	_, isUnary := call.Args[0].(*Unary)
	assert.False(t, isUnary)
}
