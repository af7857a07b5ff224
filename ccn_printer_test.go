package cc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpRendersNodeAndChildrenIndented(t *testing.T) {
	a := NewIdent("a", Span{})
	b := NewIdent("b", Span{})
	bin := NewBinary(OpAdd, a, b, Span{})

	out := Dump(bin)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Binary")
	assert.True(t, strings.HasPrefix(lines[1], "  "))
	assert.Contains(t, lines[1], "Ident a")
	assert.True(t, strings.HasPrefix(lines[2], "  "))
	assert.Contains(t, lines[2], "Ident b")
}

func TestDumpOnNilNode(t *testing.T) {
	out := Dump(nil)
	assert.Contains(t, out, "<nil>")
}
