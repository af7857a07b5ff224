package cc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditBufferAppliesNonOverlappingEdits(t *testing.T) {
	b := NewEditBuffer("abcdefghij")
	b.Add(2, 4, "XY", 0)
	b.Add(6, 8, "Z", 0)
	assert.Equal(t, "abXYefZij", b.Apply())
}

func TestEditBufferHigherPriorityWinsOverlap(t *testing.T) {
	b := NewEditBuffer("0123456789")
	b.Add(2, 6, "LOW", 0)
	b.Add(3, 5, "HIGH", 1)
	assert.Equal(t, "012HIGH56789", b.Apply())
}

func TestEditBufferEmptyReturnsSourceUnchanged(t *testing.T) {
	b := NewEditBuffer("unchanged")
	assert.Equal(t, "unchanged", b.Apply())
	assert.Equal(t, 0, b.Len())
}

func TestEditBufferLenTracksAdds(t *testing.T) {
	b := NewEditBuffer("src")
	b.Add(0, 1, "x", 0)
	b.Add(1, 2, "y", 0)
	assert.Equal(t, 2, b.Len())
}
