// Package cache provides the read-only transcript model and its lookup structures.
package cache

import (
	"errors"
	"fmt"
	"sort"
)

// Transcript represents a specific gene isoform as a read-only snapshot.
// Exons are ordered by ascending genomic position regardless of strand;
// Sequence is the spliced mRNA read 5' to 3' on the transcript strand.
type Transcript struct {
	ID          string `json:"id" yaml:"id"`                               // Transcript ID (e.g., ENST00000311936)
	GeneID      string `json:"gene_id,omitempty" yaml:"gene_id,omitempty"` // Parent gene ID
	GeneName    string `json:"gene_name,omitempty" yaml:"gene_name,omitempty"`
	Chrom       string `json:"chrom" yaml:"chrom"`
	Start       int64  `json:"start,omitempty" yaml:"start,omitempty"` // Genomic start (1-based), derived from exons when zero
	End         int64  `json:"end,omitempty" yaml:"end,omitempty"`     // Genomic end (1-based, inclusive)
	Strand      int8   `json:"strand" yaml:"strand"`                   // +1 or -1
	Biotype     string `json:"biotype,omitempty" yaml:"biotype,omitempty"`
	IsCanonical bool   `json:"canonical,omitempty" yaml:"canonical,omitempty"`
	Exons       []Exon `json:"exons" yaml:"exons"`
	CDSStart    int    `json:"cds_start" yaml:"cds_start"` // 0-based offset of the first coding base in Sequence
	CDSEnd      int    `json:"cds_end" yaml:"cds_end"`     // 0-based offset one past the stop codon; equal to CDSStart if non-coding
	Sequence    string `json:"sequence" yaml:"sequence"`
}

// Exon represents a single exon within a transcript.
type Exon struct {
	Number int   `json:"number,omitempty" yaml:"number,omitempty"` // Exon number in transcript order (1-based)
	Start  int64 `json:"start" yaml:"start"`                       // Genomic start (1-based)
	End    int64 `json:"end" yaml:"end"`                           // Genomic end (1-based, inclusive)
}

// Len returns the number of bases in the exon.
func (e *Exon) Len() int64 {
	return e.End - e.Start + 1
}

// IsProteinCoding returns true if the transcript has a coding sequence.
func (t *Transcript) IsProteinCoding() bool {
	return t.CDSEnd > t.CDSStart
}

// IsForwardStrand returns true if the transcript is on the forward strand.
func (t *Transcript) IsForwardStrand() bool {
	return t.Strand == 1
}

// IsReverseStrand returns true if the transcript is on the reverse strand.
func (t *Transcript) IsReverseStrand() bool {
	return t.Strand == -1
}

// CDSLength returns the length of the coding sequence including the stop codon.
func (t *Transcript) CDSLength() int {
	if !t.IsProteinCoding() {
		return 0
	}
	return t.CDSEnd - t.CDSStart
}

// CodingSequence returns the CDS portion of the spliced sequence.
// Returns an empty string when the sequence is missing or too short.
func (t *Transcript) CodingSequence() string {
	if !t.IsProteinCoding() || t.CDSEnd > len(t.Sequence) {
		return ""
	}
	return t.Sequence[t.CDSStart:t.CDSEnd]
}

// HasValidFrame reports whether the CDS can be read in frame: its length is a
// multiple of three and it lies inside the available sequence.
func (t *Transcript) HasValidFrame() bool {
	n := t.CDSLength()
	return n >= 3 && n%3 == 0 && t.CDSEnd <= len(t.Sequence)
}

// ExonicLength returns the summed length of all exons.
func (t *Transcript) ExonicLength() int64 {
	var n int64
	for i := range t.Exons {
		n += t.Exons[i].Len()
	}
	return n
}

// FindExon returns the index of the exon containing the genomic position,
// or -1 if the position is not exonic. Uses binary search over the
// ascending exon list.
func (t *Transcript) FindExon(pos int64) int {
	i := sort.Search(len(t.Exons), func(i int) bool {
		return t.Exons[i].End >= pos
	})
	if i < len(t.Exons) && t.Exons[i].Start <= pos {
		return i
	}
	return -1
}

// ExonTxOffset returns the 0-based spliced-sequence offset of the 5'-most
// base (in transcript orientation) of exon i.
func (t *Transcript) ExonTxOffset(i int) int64 {
	var off int64
	if t.IsReverseStrand() {
		for j := len(t.Exons) - 1; j > i; j-- {
			off += t.Exons[j].Len()
		}
		return off
	}
	for j := 0; j < i; j++ {
		off += t.Exons[j].Len()
	}
	return off
}

// Finalize fills derived fields: genomic span from exons, exon numbers in
// transcript order. Loaders call it once before the snapshot is shared.
func (t *Transcript) Finalize() {
	n := len(t.Exons)
	if n == 0 {
		return
	}
	sort.Slice(t.Exons, func(i, j int) bool { return t.Exons[i].Start < t.Exons[j].Start })
	if t.Start == 0 {
		t.Start = t.Exons[0].Start
	}
	if t.End == 0 {
		t.End = t.Exons[n-1].End
	}
	for i := range t.Exons {
		if t.IsReverseStrand() {
			t.Exons[i].Number = n - i
		} else {
			t.Exons[i].Number = i + 1
		}
	}
}

// Validate checks the structural invariants the mapper depends on.
// Frame problems (CDS length not a multiple of three) are not reported here;
// see HasValidFrame.
func (t *Transcript) Validate() error {
	if len(t.Exons) == 0 {
		return errors.New("transcript has no exons")
	}
	if t.Strand != 1 && t.Strand != -1 {
		return fmt.Errorf("invalid strand %d", t.Strand)
	}
	for i := range t.Exons {
		e := &t.Exons[i]
		if e.Start < 1 || e.End < e.Start {
			return fmt.Errorf("exon %d has invalid bounds %d-%d", i, e.Start, e.End)
		}
		if i > 0 && e.Start <= t.Exons[i-1].End {
			return fmt.Errorf("exon %d (%d-%d) overlaps or precedes exon %d", i, e.Start, e.End, i-1)
		}
	}
	if t.Sequence != "" && int64(len(t.Sequence)) != t.ExonicLength() {
		return fmt.Errorf("sequence length %d does not match exonic length %d", len(t.Sequence), t.ExonicLength())
	}
	if t.CDSStart < 0 || t.CDSEnd < t.CDSStart || int64(t.CDSEnd) > t.ExonicLength() {
		return fmt.Errorf("CDS bounds %d-%d outside transcript", t.CDSStart, t.CDSEnd)
	}
	return nil
}
