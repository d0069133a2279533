package annotate

import (
	"sort"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// Region tags where a genomic position falls relative to a transcript.
type Region int

const (
	RegionUpstream Region = iota + 1
	Region5UTR
	RegionCDS
	Region3UTR
	RegionNonCodingExon
	RegionIntron
	RegionSpliceDonor
	RegionSpliceAcceptor
	RegionDownstream
)

func (r Region) String() string {
	switch r {
	case RegionUpstream:
		return "upstream"
	case Region5UTR:
		return "5'UTR"
	case RegionCDS:
		return "CDS"
	case Region3UTR:
		return "3'UTR"
	case RegionNonCodingExon:
		return "non-coding exon"
	case RegionIntron:
		return "intron"
	case RegionSpliceDonor:
		return "splice donor"
	case RegionSpliceAcceptor:
		return "splice acceptor"
	case RegionDownstream:
		return "downstream"
	default:
		return "unknown"
	}
}

// IsExonic reports whether the region lies in the spliced transcript.
func (r Region) IsExonic() bool {
	switch r {
	case Region5UTR, RegionCDS, Region3UTR, RegionNonCodingExon:
		return true
	}
	return false
}

// IsIntronic reports whether the region lies between two exons.
func (r Region) IsIntronic() bool {
	return r == RegionIntron || r == RegionSpliceDonor || r == RegionSpliceAcceptor
}

// MappedPosition is a genomic position projected onto a transcript.
type MappedPosition struct {
	Region Region

	// TxOffset is the 0-based offset in the spliced transcript of the
	// exonic base, or of the exon base anchoring an intronic position.
	// Upstream positions are negative; downstream positions run past the
	// last transcript base.
	TxOffset int64

	// IntronOffset is the signed distance from the anchoring exon base:
	// positive after it in transcript direction, negative before it.
	IntronOffset int64

	CDSPos     int64 // 1-based CDS position, 0 outside the CDS
	Codon      int64 // 1-based codon number, 0 outside the CDS
	CodonPhase int   // 0-2 within the codon
	ExonIndex  int   // index into Transcript.Exons, -1 in the flanks
	NearSplice bool  // inside the splice region but not the splice site itself
}

// MapGenomic projects a 1-based genomic position onto t.
// Positions more than cfg.FlankWidth bases outside the transcript fail
// with an OutOfRange error.
func MapGenomic(pos int64, t *cache.Transcript, cfg Config) (MappedPosition, error) {
	n := len(t.Exons)
	if n == 0 {
		return MappedPosition{}, newError(KindMalformedTranscript, t.ID, "transcript has no exons")
	}
	txLen := t.ExonicLength()
	lo, hi := t.Exons[0].Start, t.Exons[n-1].End

	switch {
	case pos < lo:
		d := lo - pos
		if d > cfg.FlankWidth {
			return MappedPosition{}, newError(KindOutOfRange, t.ID, "position %d is %d bases outside the transcript", pos, d)
		}
		if t.IsReverseStrand() {
			return MappedPosition{Region: RegionDownstream, TxOffset: txLen - 1 + d, ExonIndex: -1}, nil
		}
		return MappedPosition{Region: RegionUpstream, TxOffset: -d, ExonIndex: -1}, nil
	case pos > hi:
		d := pos - hi
		if d > cfg.FlankWidth {
			return MappedPosition{}, newError(KindOutOfRange, t.ID, "position %d is %d bases outside the transcript", pos, d)
		}
		if t.IsReverseStrand() {
			return MappedPosition{Region: RegionUpstream, TxOffset: -d, ExonIndex: -1}, nil
		}
		return MappedPosition{Region: RegionDownstream, TxOffset: txLen - 1 + d, ExonIndex: -1}, nil
	}

	if i := t.FindExon(pos); i >= 0 {
		return mapExonic(pos, i, t, cfg), nil
	}
	return mapIntronic(pos, t, cfg), nil
}

// exonOffset returns the spliced offset of pos inside exon i.
func exonOffset(t *cache.Transcript, i int, pos int64) int64 {
	e := &t.Exons[i]
	if t.IsReverseStrand() {
		return t.ExonTxOffset(i) + (e.End - pos)
	}
	return t.ExonTxOffset(i) + (pos - e.Start)
}

func mapExonic(pos int64, i int, t *cache.Transcript, cfg Config) MappedPosition {
	off := exonOffset(t, i, pos)
	m := MappedPosition{TxOffset: off, ExonIndex: i}

	switch {
	case !t.IsProteinCoding():
		m.Region = RegionNonCodingExon
	case off < int64(t.CDSStart):
		m.Region = Region5UTR
	case off >= int64(t.CDSEnd):
		m.Region = Region3UTR
	default:
		m.Region = RegionCDS
		cds := off - int64(t.CDSStart)
		m.CDSPos = cds + 1
		m.Codon = cds/3 + 1
		m.CodonPhase = int(cds % 3)
	}

	// Only internal exon boundaries border a splice site.
	e := &t.Exons[i]
	w := cfg.SpliceRegionExonic
	if (i > 0 && pos-e.Start < w) || (i < len(t.Exons)-1 && e.End-pos < w) {
		m.NearSplice = true
	}
	return m
}

func mapIntronic(pos int64, t *cache.Transcript, cfg Config) MappedPosition {
	// First exon starting after pos; the caller guarantees 0 < right < len.
	right := sort.Search(len(t.Exons), func(j int) bool {
		return t.Exons[j].Start > pos
	})
	left := right - 1
	dL := pos - t.Exons[left].End
	dR := t.Exons[right].Start - pos

	// Ties go to the exon 5' of the intron, rendered as +N.
	var anchor int
	var anchorPos, offset int64
	if t.IsReverseStrand() {
		if dR <= dL {
			anchor, anchorPos, offset = right, t.Exons[right].Start, dR
		} else {
			anchor, anchorPos, offset = left, t.Exons[left].End, -dL
		}
	} else {
		if dL <= dR {
			anchor, anchorPos, offset = left, t.Exons[left].End, dL
		} else {
			anchor, anchorPos, offset = right, t.Exons[right].Start, -dR
		}
	}

	m := MappedPosition{
		TxOffset:     exonOffset(t, anchor, anchorPos),
		IntronOffset: offset,
		ExonIndex:    anchor,
	}
	d := abs64(offset)
	switch {
	case d <= cfg.SpliceWindow && offset > 0:
		m.Region = RegionSpliceDonor
	case d <= cfg.SpliceWindow:
		m.Region = RegionSpliceAcceptor
	default:
		m.Region = RegionIntron
		m.NearSplice = d <= cfg.SpliceRegionIntronic
	}
	return m
}

// TxToGenomic returns the genomic position of a 0-based spliced offset.
func TxToGenomic(off int64, t *cache.Transcript) (int64, error) {
	if off < 0 {
		return 0, newError(KindOutOfRange, t.ID, "transcript offset %d is negative", off)
	}
	rem := off
	n := len(t.Exons)
	for k := 0; k < n; k++ {
		i := k
		if t.IsReverseStrand() {
			i = n - 1 - k
		}
		e := &t.Exons[i]
		if rem < e.Len() {
			if t.IsReverseStrand() {
				return e.End - rem, nil
			}
			return e.Start + rem, nil
		}
		rem -= e.Len()
	}
	return 0, newError(KindOutOfRange, t.ID, "transcript offset %d is past the last exon", off)
}

// CDSToGenomic returns the genomic position of a 1-based CDS position.
func CDSToGenomic(cdsPos int64, t *cache.Transcript) (int64, error) {
	if !t.IsProteinCoding() || cdsPos < 1 || cdsPos > int64(t.CDSLength()) {
		return 0, newError(KindOutOfRange, t.ID, "CDS position %d outside the coding sequence", cdsPos)
	}
	return TxToGenomic(int64(t.CDSStart)+cdsPos-1, t)
}

// spliceContact records which splice features a genomic span touches.
type spliceContact struct {
	site   Region // RegionSpliceDonor, RegionSpliceAcceptor or zero
	region bool
	exon   bool
	intron bool
}

// touchSplice reports the splice features intersecting [lo, hi].
func touchSplice(lo, hi int64, t *cache.Transcript, cfg Config) spliceContact {
	var c spliceContact
	overlaps := func(a, b int64) bool { return a <= hi && b >= lo }
	setSite := func(r Region) {
		if c.site != RegionSpliceDonor {
			c.site = r
		}
	}

	n := len(t.Exons)
	for i := range t.Exons {
		e := &t.Exons[i]
		if overlaps(e.Start, e.End) {
			c.exon = true
		}
		if i < n-1 && overlaps(e.End+1, t.Exons[i+1].Start-1) {
			c.intron = true
		}

		// Boundary 3' of this exon in genomic order.
		if i < n-1 {
			site := RegionSpliceDonor
			if t.IsReverseStrand() {
				site = RegionSpliceAcceptor
			}
			if overlaps(e.End+1, e.End+cfg.SpliceWindow) {
				setSite(site)
			}
			if overlaps(e.End-cfg.SpliceRegionExonic+1, e.End) || overlaps(e.End+1, e.End+cfg.SpliceRegionIntronic) {
				c.region = true
			}
		}
		// Boundary 5' of this exon in genomic order.
		if i > 0 {
			site := RegionSpliceAcceptor
			if t.IsReverseStrand() {
				site = RegionSpliceDonor
			}
			if overlaps(e.Start-cfg.SpliceWindow, e.Start-1) {
				setSite(site)
			}
			if overlaps(e.Start, e.Start+cfg.SpliceRegionExonic-1) || overlaps(e.Start-cfg.SpliceRegionIntronic, e.Start-1) {
				c.region = true
			}
		}
	}
	return c
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
