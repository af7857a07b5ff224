package cc

import "sort"

// edit is one recorded intent to replace src[Start:End] with
// Replacement. Tag is the edit's insertion sequence number, used as
// the final tie-break in Apply's sort since sort.Slice is not stable
// across equal keys.
type edit struct {
	Start       int
	End         int
	Replacement string
	Priority    int
	Tag         int
}

// EditBuffer collects non-overlapping text edits with a priority and
// applies them in a single splice pass, rather than rewriting the
// whole buffer once per pass. Passes that can express their rewrite as
// "replace this half-open byte range" append here instead of
// allocating a new string; only passes whose rewrite isn't a pure
// range replacement (e.g. the async rewriter, which restructures
// control flow) fall back to returning a fresh buffer.
type EditBuffer struct {
	src   string
	edits []edit
	seq   int
}

func NewEditBuffer(src string) *EditBuffer {
	return &EditBuffer{src: src}
}

// Add records an intent to replace src[start:end] with replacement.
// Higher priority wins when two edits would otherwise overlap; see
// Apply for how overlaps at equal priority are resolved.
func (b *EditBuffer) Add(start, end int, replacement string, priority int) {
	b.edits = append(b.edits, edit{Start: start, End: end, Replacement: replacement, Priority: priority, Tag: b.seq})
	b.seq++
}

func (b *EditBuffer) Len() int { return len(b.edits) }

// Apply splices every recorded edit into the source, sorting by
// (start desc, priority desc, tag desc) and walking the buffer from
// the end backwards. An edit that overlaps one of higher priority is
// dropped. Of two overlapping edits with equal priority, the one that
// starts later is kept (for equal starts, the one added later) and the
// other is dropped. Zero-length insertions at the same offset are all
// kept, in insertion order.
func (b *EditBuffer) Apply() string {
	if len(b.edits) == 0 {
		return b.src
	}
	sorted := make([]edit, len(b.edits))
	copy(sorted, b.edits)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start > sorted[j].Start
		}
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].Tag > sorted[j].Tag
	})

	var out []byte
	tail := len(b.src)
	for _, e := range sorted {
		outranked := false
		for _, o := range b.edits {
			outranked = outranked || (o.Priority > e.Priority && e.Start < o.End && o.Start < e.End)
		}
		if outranked || e.End > tail {
			// Overlaps a higher-priority edit, or an equal-priority edit
			// that starts later and was already applied; drop it.
			continue
		}
		out = append([]byte(b.src[e.End:tail]), out...)
		out = append([]byte(e.Replacement), out...)
		tail = e.Start
	}
	out = append([]byte(b.src[:tail]), out...)
	return string(out)
}
