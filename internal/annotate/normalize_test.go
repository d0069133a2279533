package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		seq    string
		origin int
		lo, hi int64
		edit   SequenceEdit
		want   SequenceEdit
	}{
		{
			name: "homopolymer deletion shifts 3'",
			seq:  "GAAAT", lo: 0, hi: 5,
			edit: SequenceEdit{Start: 1, End: 2, Ref: "A", Kind: EditDeletion},
			want: SequenceEdit{Start: 3, End: 4, Ref: "A", Kind: EditDeletion},
		},
		{
			name: "repeat unit deletion rotates",
			seq:  "TCAGCAGT", lo: 0, hi: 8,
			edit: SequenceEdit{Start: 1, End: 4, Ref: "CAG", Kind: EditDeletion},
			want: SequenceEdit{Start: 4, End: 7, Ref: "CAG", Kind: EditDeletion},
		},
		{
			name: "shift stops at bound",
			seq:  "GAAAT", lo: 0, hi: 3,
			edit: SequenceEdit{Start: 1, End: 2, Ref: "A", Kind: EditDeletion},
			want: SequenceEdit{Start: 2, End: 3, Ref: "A", Kind: EditDeletion},
		},
		{
			name: "plain insertion stays",
			seq:  "ACGT", lo: 0, hi: 4,
			edit: SequenceEdit{Start: 2, End: 2, Alt: "TT", Kind: EditInsertion},
			want: SequenceEdit{Start: 2, End: 2, Alt: "TT", Kind: EditInsertion},
		},
		{
			name: "insertion of preceding bases is a dup",
			seq:  "ATGGCT", lo: 0, hi: 6,
			edit: SequenceEdit{Start: 5, End: 5, Alt: "GC", Kind: EditInsertion},
			want: SequenceEdit{Start: 3, End: 5, Alt: "GC", Kind: EditDuplication},
		},
		{
			name: "motif dup found after rotation",
			seq:  "ATGCAGCAGT", lo: 0, hi: 10,
			edit: SequenceEdit{Start: 5, End: 5, Alt: "GCA", Kind: EditInsertion},
			want: SequenceEdit{Start: 6, End: 9, Alt: "CAG", Kind: EditDuplication},
		},
		{
			name: "repeat insertion shifts to the end of the repeat",
			seq:  "CAGCAGT", lo: 0, hi: 7,
			edit: SequenceEdit{Start: 0, End: 0, Alt: "CAG", Kind: EditInsertion},
			want: SequenceEdit{Start: 3, End: 6, Alt: "CAG", Kind: EditDuplication},
		},
		{
			name: "dup not reported across the lower bound",
			seq:  "GCTT", lo: 2, hi: 4,
			edit: SequenceEdit{Start: 2, End: 2, Alt: "GC", Kind: EditInsertion},
			want: SequenceEdit{Start: 2, End: 2, Alt: "GC", Kind: EditInsertion},
		},
		{
			name: "rotated insertion becomes dup of following bases",
			seq:  "GCGCT", lo: 2, hi: 5,
			edit: SequenceEdit{Start: 2, End: 2, Alt: "GC", Kind: EditInsertion},
			want: SequenceEdit{Start: 2, End: 4, Alt: "GC", Kind: EditDuplication},
		},
		{
			name: "origin-relative offsets",
			seq:  "CCAAAG", origin: 2, lo: -2, hi: 4,
			edit: SequenceEdit{Start: 0, End: 1, Ref: "A", Kind: EditDeletion},
			want: SequenceEdit{Start: 2, End: 3, Ref: "A", Kind: EditDeletion},
		},
		{
			name: "substitution untouched",
			seq:  "AAAA", lo: 0, hi: 4,
			edit: SequenceEdit{Start: 1, End: 2, Ref: "A", Alt: "C", Kind: EditSubstitution},
			want: SequenceEdit{Start: 1, End: 2, Ref: "A", Alt: "C", Kind: EditSubstitution},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.edit, tt.seq, tt.origin, tt.lo, tt.hi)
			assert.Equal(t, tt.want, got)

			// Normalizing a normalized edit changes nothing.
			assert.Equal(t, got, Normalize(got, tt.seq, tt.origin, tt.lo, tt.hi))

			// Shifting never changes the resulting sequence.
			assert.Equal(t, tt.edit.Apply(tt.seq, tt.origin), got.Apply(tt.seq, tt.origin))
		})
	}
}

func TestNormalize_DuplicationSymmetry(t *testing.T) {
	// Inserting a copy of the k bases before any anchor always yields a
	// duplication of length k.
	seq := "ACGTTGCAACCATGAAAGT"
	n := int64(len(seq))
	for s := int64(1); s <= n; s++ {
		for k := int64(1); k <= s; k++ {
			ins := SequenceEdit{Start: s, End: s, Alt: seq[s-k : s], Kind: EditInsertion}
			got := Normalize(ins, seq, 0, 0, n)
			if assert.Equal(t, EditDuplication, got.Kind, "anchor %d length %d", s, k) {
				assert.Equal(t, k, got.End-got.Start)
				assert.Equal(t, seq[got.Start:got.End], got.Alt)
			}
		}
	}
}
