package cc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDeferUnchangedWithoutDefer(t *testing.T) {
	src := "int main() { return 0; }"
	out, status, err := RunDefer(NewConfig(), src)
	require.NoError(t, err)
	assert.Equal(t, statusUnchanged, status)
	assert.Equal(t, src, out)
}

func TestRunDeferExpandsAtScopeExit(t *testing.T) {
	src := "void f() { @defer cleanup(); do_work(); }"
	out, status, err := RunDefer(NewConfig(), src)
	require.NoError(t, err)
	assert.Equal(t, statusChanged, status)
	assert.NotContains(t, out, "@defer")
	assert.Contains(t, out, "cleanup();")
	assert.Contains(t, out, "do_work();")
}

func TestRunDeferExpandsAtReturn(t *testing.T) {
	src := "void f() { @defer cleanup(); return; }"
	out, status, err := RunDefer(NewConfig(), src)
	require.NoError(t, err)
	assert.Equal(t, statusChanged, status)
	assert.Contains(t, out, "cleanup();")
	assert.Contains(t, out, "return ;")
}

func TestRunDeferConditionalReturnsResultShape(t *testing.T) {
	src := "CCResult_int_CCError f() { @defer(ok) on_ok(); @defer(err) on_err(); return cc_ok(1); }"
	out, status, err := RunDefer(NewConfig(), src)
	require.NoError(t, err)
	assert.Equal(t, statusChanged, status)
	assert.Contains(t, out, "__cc_ret")
	assert.Contains(t, out, "on_ok();")
	assert.Contains(t, out, "on_err();")
}

func TestRunDeferRejectsReservedCancelIdentifier(t *testing.T) {
	src := "void f() { @defer cleanup(); cancel(); }"
	_, status, err := RunDefer(NewConfig(), src)
	require.Error(t, err)
	assert.Equal(t, statusError, status)
	assert.True(t, isCategoryError(err, CategoryUnsupported))
}
