package cache

import (
	"cmp"
	"slices"
	"sort"
)

// IntervalTree answers overlap queries over transcript spans. It is a
// sorted slice with a running maximum of span ends, built once and
// read-only afterwards.
type IntervalTree struct {
	spans  []span
	maxEnd []int64 // maxEnd[i] is the largest end among spans[:i+1]
}

type span struct {
	start, end int64
	transcript *Transcript
}

// BuildIntervalTree indexes transcripts by their span widened by pad bases
// on both sides, so upstream and downstream hits within the flank are
// returned too.
func BuildIntervalTree(transcripts []*Transcript, pad int64) *IntervalTree {
	spans := make([]span, 0, len(transcripts))
	for _, t := range transcripts {
		spans = append(spans, span{start: t.Start - pad, end: t.End + pad, transcript: t})
	}
	slices.SortStableFunc(spans, func(a, b span) int {
		return cmp.Compare(a.start, b.start)
	})

	maxEnd := make([]int64, len(spans))
	for i, s := range spans {
		maxEnd[i] = s.end
		if i > 0 {
			maxEnd[i] = max(maxEnd[i], maxEnd[i-1])
		}
	}
	return &IntervalTree{spans: spans, maxEnd: maxEnd}
}

// FindOverlaps returns the transcripts whose padded span contains pos.
func (t *IntervalTree) FindOverlaps(pos int64) []*Transcript {
	return t.FindRange(pos, pos)
}

// FindRange returns the transcripts whose padded span shares at least one
// base with [start, end], ordered by span start.
func (t *IntervalTree) FindRange(start, end int64) []*Transcript {
	// Candidates begin at or before end.
	hi := sort.Search(len(t.spans), func(i int) bool {
		return t.spans[i].start > end
	})

	var result []*Transcript
	for i := hi - 1; i >= 0 && t.maxEnd[i] >= start; i-- {
		if t.spans[i].end >= start {
			result = append(result, t.spans[i].transcript)
		}
	}
	slices.Reverse(result)
	return result
}

