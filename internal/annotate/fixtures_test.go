package annotate

import (
	"fmt"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// codingTranscript is a single forward exon at 1:1001-1024:
// 5'UTR GC, CDS ATG GCT AAA TAA (c.1 at 1003), 3'UTR CTGACCCCCC.
func codingTranscript() *cache.Transcript {
	t := &cache.Transcript{
		ID:          "TX1",
		GeneName:    "GENE1",
		Chrom:       "1",
		Strand:      1,
		IsCanonical: true,
		Exons:       []cache.Exon{{Start: 1001, End: 1024}},
		CDSStart:    2,
		CDSEnd:      14,
		Sequence:    "GC" + "ATGGCTAAATAA" + "CTGACCCCCC",
	}
	t.Finalize()
	return t
}

// splicedTranscript has forward exons 1:2001-2010 and 1:2050-2069.
// c.8 is the last base of exon 1, c.9 the first of exon 2.
func splicedTranscript() *cache.Transcript {
	t := &cache.Transcript{
		ID:       "TX2",
		GeneName: "GENE2",
		Chrom:    "1",
		Strand:   1,
		Exons:    []cache.Exon{{Start: 2001, End: 2010}, {Start: 2050, End: 2069}},
		CDSStart: 2,
		CDSEnd:   20,
		Sequence: "CCATGGCTAA" + "AGGCTGGTAACCCCCCCCCC",
	}
	t.Finalize()
	return t
}

// reverseTranscript has reverse-strand exons 1:3052-3059 (exon 1, c.-2 to
// c.6) and 1:3001-3022 (exon 2, c.7 onward).
func reverseTranscript() *cache.Transcript {
	t := &cache.Transcript{
		ID:       "TX3",
		GeneName: "GENE3",
		Chrom:    "1",
		Strand:   -1,
		Exons:    []cache.Exon{{Start: 3052, End: 3059}, {Start: 3001, End: 3022}},
		CDSStart: 2,
		CDSEnd:   20,
		Sequence: "CCATGGCTAAAGGCTGGTAACCCCCCCCCC",
	}
	t.Finalize()
	return t
}

// nonCodingTranscript is a single forward exon at 1:4001-4010.
func nonCodingTranscript() *cache.Transcript {
	t := &cache.Transcript{
		ID:       "NR1",
		Chrom:    "1",
		Strand:   1,
		Biotype:  "lncRNA",
		Exons:    []cache.Exon{{Start: 4001, End: 4010}},
		Sequence: "ACGTACGTAC",
	}
	t.Finalize()
	return t
}

func variant(pos int64, ref, alt string) *vcf.Variant {
	return &vcf.Variant{Chrom: "1", Pos: pos, Ref: ref, Alt: alt}
}

// mapReference is a ReferenceView over a few known genomic bases.
type mapReference map[int64]byte

func (m mapReference) Fetch(chrom string, start, end int64) (string, error) {
	b := make([]byte, 0, end-start+1)
	for p := start; p <= end; p++ {
		base, ok := m[p]
		if !ok {
			return "", fmt.Errorf("no base at %s:%d", chrom, p)
		}
		b = append(b, base)
	}
	return string(b), nil
}
