package cc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCCErrorFormatting(t *testing.T) {
	sp := Span{Start: Location{Line: 3, Column: 5}, End: Location{Line: 3, Column: 5}}
	err := NewSyntaxError("unexpected token", sp)
	assert.Equal(t, "syntax-error @ 3:5: unexpected token", err.Error())
}

func TestUnsupportedErrorIncludesHint(t *testing.T) {
	err := NewUnsupportedError("await outside async function", "wrap the caller in @async", Span{})
	assert.Contains(t, err.Error(), "unsupported")
	assert.Contains(t, err.Error(), "(wrap the caller in @async)")
}

func TestIsCategoryError(t *testing.T) {
	err := NewIOError("can't read file", Span{})
	assert.True(t, isCategoryError(err, CategoryIO))
	assert.False(t, isCategoryError(err, CategorySyntax))
	assert.False(t, isCategoryError(assert.AnError, CategoryIO))
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "syntax-error", CategorySyntax.String())
	assert.Equal(t, "unsupported", CategoryUnsupported.String())
	assert.Equal(t, "io-error", CategoryIO.String())
	assert.Equal(t, "internal", CategoryInternal.String())
}
