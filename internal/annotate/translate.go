package annotate

import (
	"strings"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// TranslationResult compares the reference protein with the protein read
// from the edited transcript.
type TranslationResult struct {
	Codon int64  // 1-based codon containing the start of the edit
	RefAA string // reference residues from Codon through the reference stop
	AltAA string // mutated residues from Codon through the first stop or the extension cap

	Frameshift bool
	StartLost  bool
	StopGained bool
	StopLost   bool

	// Pos is the first changed residue (1-based), or the reference stop for
	// stop-loss. Zero when the protein is unchanged.
	Pos         int64
	RefResidue  byte // reference residue at Pos
	AltResidue  byte // mutated residue at Pos ('X' if translation ended first)
	PrevResidue byte // reference residue at Pos-1, 0 at the start

	// In-frame changes: reference residues removed from Pos onward and
	// the residues taking their place. Set for stop-loss only when residues
	// before the stop were removed with it.
	Deleted  string
	Inserted string
	Dup      bool // Inserted repeats the residues just before Pos

	RefStop int64 // 1-based residue number of the reference stop, 0 if the CDS has none

	// StopDistance is N in fs*N (counting the first changed residue as 1)
	// or ext*N (residues added past the reference stop). Zero when no stop
	// was found within the extension cap.
	StopDistance int
}

// Translate translates the reference CDS and the transcript with edit
// applied, from the start codon, and describes the first difference.
// The edit must overlap the CDS of a transcript with a valid frame.
// Translation of the edited transcript continues into the 3'UTR for up to
// cfg.ExtensionCap codons past the reference stop.
func Translate(t *cache.Transcript, e SequenceEdit, cfg Config) TranslationResult {
	seq := t.Sequence
	cdsStart := t.CDSStart
	delta := e.Delta()

	res := TranslationResult{Frameshift: delta%3 != 0}

	first := e.Start
	if e.Kind == EditDuplication {
		first = e.End
	}
	if first < 0 {
		first = 0
	}
	k := first / 3
	res.Codon = k + 1

	mut := e.Apply(seq, cdsStart)
	if touchesStartCodon(e) {
		if e.Start < 0 || len(mut) < cdsStart+3 || mut[cdsStart:cdsStart+3] != seq[cdsStart:cdsStart+3] {
			res.StartLost = true
			res.Pos = 1
			res.RefResidue = TranslateCodon(seq[cdsStart : cdsStart+3])
			return res
		}
	}

	refP, _ := translateToStop(seq[cdsStart:t.CDSEnd], t.CDSLength()/3)
	r := strings.IndexByte(refP, '*')
	if r >= 0 {
		res.RefStop = int64(r + 1)
	}
	limit := len(refP) + cfg.ExtensionCap
	if delta > 0 {
		limit += delta / 3
	}
	altP, _ := translateToStop(mut[cdsStart:], limit)

	res.RefAA = suffixFrom(refP, k)
	res.AltAA = suffixFrom(altP, k)

	i := 0
	for i < len(refP) && i < len(altP) && refP[i] == altP[i] {
		i++
	}
	if i == len(refP) && i == len(altP) {
		return res
	}
	j := strings.IndexByte(altP, '*')

	res.Pos = int64(i + 1)
	res.RefResidue = residueAt(refP, i)
	res.AltResidue = residueAt(altP, i)
	if i > 0 {
		res.PrevResidue = refP[i-1]
	}

	// The first change hits the stop codon itself.
	if r >= 0 && i == r {
		res.StopLost = true
		if j >= 0 {
			res.StopDistance = j - i
		}
		return res
	}

	if res.Frameshift {
		res.StopGained = res.AltResidue == '*'
		if j >= 0 {
			res.StopDistance = j - i + 1
		}
		return res
	}

	// In frame: the reference stop should reappear delta/3 residues away.
	expected := -1
	if r >= 0 {
		expected = r + delta/3
	}
	switch {
	case j >= 0 && (expected < 0 || j < expected):
		res.StopGained = true
		end := j + 1
		if end > len(refP) {
			end = len(refP)
		}
		res.Deleted = refP[i:end]
		res.Inserted = altP[i : j+1]
		return res
	case expected >= 0 && j != expected:
		res.StopLost = true
		if expected < i {
			// Sense residues went with the stop: Pos stays on the first
			// changed residue and the new residue there anchors the count.
			res.Deleted = refP[i : r+1]
			res.Inserted = string(res.AltResidue)
			if j >= 0 {
				res.StopDistance = j - i
			}
			return res
		}
		res.Pos = res.RefStop
		res.RefResidue = '*'
		res.AltResidue = residueAt(altP, expected)
		res.PrevResidue = residueAt(refP, r-1)
		if j >= 0 {
			res.StopDistance = j - expected
		}
		return res
	}

	oi, mi := len(refP)-1, len(altP)-1
	for oi >= i && mi >= i && refP[oi] == altP[mi] {
		oi--
		mi--
	}
	res.Deleted = refP[i : oi+1]
	res.Inserted = altP[i : mi+1]
	if res.Deleted == "" {
		n := len(res.Inserted)
		res.Dup = i-n >= 0 && refP[i-n:i] == res.Inserted
	}
	return res
}

// touchesStartCodon reports whether the edit changes bases of codon 1.
// Insertions count only when they fall inside the codon.
func touchesStartCodon(e SequenceEdit) bool {
	switch e.Kind {
	case EditInsertion:
		return e.Start > 0 && e.Start < 3
	case EditDuplication:
		return e.End > 0 && e.End < 3
	default:
		return e.Start < 3 && e.End > 0
	}
}

func suffixFrom(s string, k int64) string {
	if k >= int64(len(s)) {
		return ""
	}
	return s[k:]
}

func residueAt(s string, i int) byte {
	if i < 0 || i >= len(s) {
		return 'X'
	}
	return s[i]
}
