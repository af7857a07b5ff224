package cc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchParenBraceBracket(t *testing.T) {
	src := `foo(bar(1, 2), "a)b")`
	close, err := MatchParen(src, 3)
	require.NoError(t, err)
	assert.Equal(t, len(src)-1, close)

	src2 := `{ if (x) { y(); } }`
	close2, err := MatchBrace(src2, 0)
	require.NoError(t, err)
	assert.Equal(t, len(src2)-1, close2)

	src3 := `[1, [2, 3], "]"]`
	close3, err := MatchBracket(src3, 0)
	require.NoError(t, err)
	assert.Equal(t, len(src3)-1, close3)
}

func TestMatchBracketUnterminated(t *testing.T) {
	_, err := MatchParen("foo(bar", 3)
	require.Error(t, err)
	assert.True(t, isCategoryError(err, CategorySyntax))
}

func TestMatchBracketIgnoresBracketsInStringsAndComments(t *testing.T) {
	src := `foo("(" /* ) */ , ')')`
	close, err := MatchParen(src, 3)
	require.NoError(t, err)
	assert.Equal(t, len(src)-1, close)
}

func TestSkipSpaceAndComments(t *testing.T) {
	src := "   // a comment\n  /* block */  x"
	pos := SkipSpaceAndComments(src, 0)
	assert.Equal(t, len(src)-1, pos)
}

func TestNearestStatementEnd(t *testing.T) {
	src := "foo(a, b); bar();"
	assert.Equal(t, 9, NearestStatementEnd(src, 0))

	src2 := "foo(a, b)"
	assert.Equal(t, len(src2), NearestStatementEnd(src2, 0))

	src3 := "a, b, c"
	assert.Equal(t, 1, NearestStatementEnd(src3, 0))
}

func TestRangeContainsToken(t *testing.T) {
	src := "int count = count_max;"
	r := NewRange(0, len(src))
	assert.True(t, RangeContainsToken(src, r, "count"))
	assert.False(t, RangeContainsToken(src, r, "count_max_2"))
}

func TestStringBuilder(t *testing.T) {
	b := NewStringBuilder()
	b.WriteString("a").WriteByte('-').Appendf("%d", 7)
	assert.Equal(t, "a-7", b.String())
	assert.Equal(t, 3, b.Len())
}
