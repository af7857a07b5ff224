package cc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticsCollectsEveryError(t *testing.T) {
	diags := NewDiagnostics()
	assert.False(t, diags.HasErrors())

	diags.ReportError(NewSyntaxError("bad token", Span{}), FileID(0))
	diags.ReportError(NewUnsupportedError("no such pass", "", Span{}), FileID(0))

	require.True(t, diags.HasErrors())
	require.Len(t, diags.Items(), 2)
	assert.Equal(t, CategorySyntax, diags.Items()[0].Category)
	assert.Equal(t, CategoryUnsupported, diags.Items()[1].Category)
}

func TestDiagnosticsReportErrorWrapsPlainError(t *testing.T) {
	diags := NewDiagnostics()
	diags.ReportError(assert.AnError, FileID(1))
	require.Len(t, diags.Items(), 1)
	assert.Equal(t, CategoryInternal, diags.Items()[0].Category)
	assert.Equal(t, assert.AnError.Error(), diags.Items()[0].Message)
}

func TestDiagnosticsStringJoinsLines(t *testing.T) {
	diags := NewDiagnostics()
	diags.ReportError(NewSyntaxError("a", Span{}), FileID(0))
	diags.ReportError(NewSyntaxError("b", Span{}), FileID(0))
	out := diags.String()
	assert.Contains(t, out, "a")
	assert.Contains(t, out, "b")
	assert.Equal(t, 1, countNewlines(out))
}

func countNewlines(s string) int {
	n := 0
	for _, c := range s {
		if c == '\n' {
			n++
		}
	}
	return n
}
