package cc

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// FileID is a stable, per-translation-unit identifier for a source
// file, used so spans don't have to carry a borrowed string pointer
// around in hot paths.
type FileID int32

const unknownFileID FileID = -1

// Location is a single point in a source file: a 1-based line and
// column plus the 0-based byte cursor it corresponds to.
type Location struct {
	Line   int32
	Column int32
	Cursor int
	File   string
}

func NewLocation(line, column int32, cursor int) Location {
	return Location{Line: line, Column: column, Cursor: cursor}
}

// Range is a pair of byte offsets into a source buffer. It takes as
// little as possible to represent a position within the input.
type Range struct{ Start, End int }

func NewRange(start, end int) Range {
	return Range{Start: start, End: end}
}

func (r Range) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

func (r Range) Str(v []byte) string {
	return string(v[r.Start:r.End])
}

// Contains reports whether other is fully enclosed by r.
func (r Range) Contains(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Span pairs two source locations and is attached to every stub node
// and every CCN node.
type Span struct {
	Start Location
	End   Location
}

func NewSpan(start, end Location) Span {
	return Span{Start: start, End: end}
}

func (s Span) String() string {
	startLine, startCol := s.Start.Line, s.Start.Column
	endLine, endCol := s.End.Line, s.End.Column
	if startLine == endLine && startLine == 1 {
		if startCol == endCol {
			return fmt.Sprintf("%d", startCol)
		}
		return fmt.Sprintf("%d..%d", startCol, endCol)
	}
	if startLine == endLine && startCol == endCol {
		return fmt.Sprintf("%d:%d", startLine, startCol)
	}
	return fmt.Sprintf("%d:%d..%d:%d", startLine, startCol, endLine, endCol)
}

// SourceLocation ties a Span to the file it was found in, using the
// interned FileID rather than a borrowed path string.
type SourceLocation struct {
	FileID FileID
	Span   Span
}

func NewSourceLocation(f FileID, s Span) SourceLocation {
	return SourceLocation{FileID: f, Span: s}
}

// LineIndex allows fast conversion from byte cursor offsets to
// line/column pairs.
//
// It stores the start byte offset of each line (0-based). Given a
// cursor, it finds the line by binary searching line starts (O(log
// lines)) and computes the column as (runes since lineStart + 1).
//
// Construction is O(n) over the input and is intended to be cached
// per input/pass so repeated offset lookups (e.g. while emitting
// #line directives) don't re-scan the buffer.
type LineIndex struct {
	input     []byte
	lineStart []int
}

func NewLineIndex(input []byte) *LineIndex {
	lineStart := make([]int, 1, 64)
	lineStart[0] = 0
	for i, b := range input {
		if b == '\n' {
			lineStart = append(lineStart, i+1)
		}
	}
	return &LineIndex{input: input, lineStart: lineStart}
}

func (li *LineIndex) Span(r Range) Span {
	return Span{Start: li.LocationAt(r.Start), End: li.LocationAt(r.End)}
}

func (li *LineIndex) LocationAt(cursor int) Location {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(li.input) {
		cursor = len(li.input)
	}

	lineIdx := sort.Search(len(li.lineStart), func(i int) bool {
		return li.lineStart[i] > cursor
	}) - 1
	if lineIdx < 0 {
		lineIdx = 0
	}

	lineStart := li.lineStart[lineIdx]
	col := int32(utf8.RuneCount(li.input[lineStart:cursor])) + 1

	return Location{Line: int32(lineIdx + 1), Column: col, Cursor: cursor}
}

// Line returns the 1-based line number for a byte offset, the unit
// #line directives are emitted in.
func (li *LineIndex) Line(cursor int) int {
	return int(li.LocationAt(cursor).Line)
}
