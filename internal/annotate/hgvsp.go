package annotate

import (
	"strconv"
	"strings"
)

// FormatHGVSp renders the protein consequence. It returns "" when the edit
// does not touch coding bases, and p.? when it does but no translation is
// available.
func FormatHGVSp(tr *TranslationResult, coding bool, code AACode) string {
	if !coding {
		return ""
	}
	if tr == nil {
		return "p.?"
	}
	aa := func(r byte) string { return aminoAcidName(r, code) }
	pos := func(n int64) string { return strconv.FormatInt(n, 10) }

	var b strings.Builder
	b.WriteString("p.")

	switch {
	case tr.StartLost:
		b.WriteString(aa(tr.RefResidue) + "1?")

	case tr.StopLost && tr.Deleted != "":
		b.WriteString(residueRange(tr.Deleted, tr.Pos, code) + "delins" + aminoAcidNames(tr.Inserted, code))
		b.WriteString("ext*" + stopDistance(tr.StopDistance))

	case tr.StopLost:
		b.WriteString("*" + pos(tr.Pos) + aa(tr.AltResidue) + "ext*" + stopDistance(tr.StopDistance))

	case tr.Pos == 0:
		ref := byte('X')
		if tr.RefAA != "" {
			ref = tr.RefAA[0]
		}
		b.WriteString(aa(ref) + pos(tr.Codon) + "=")

	case tr.StopGained && tr.AltResidue == '*':
		b.WriteString(aa(tr.RefResidue) + pos(tr.Pos) + "*")

	case tr.Frameshift:
		b.WriteString(aa(tr.RefResidue) + pos(tr.Pos) + aa(tr.AltResidue) + "fs*" + stopDistance(tr.StopDistance))

	case len(tr.Deleted) == 1 && len(tr.Inserted) == 1:
		b.WriteString(aa(tr.RefResidue) + pos(tr.Pos) + aa(tr.AltResidue))

	case tr.Dup:
		n := int64(len(tr.Inserted))
		b.WriteString(residueRange(tr.Inserted, tr.Pos-n, code) + "dup")

	case tr.Deleted == "":
		b.WriteString(aa(tr.PrevResidue) + pos(tr.Pos-1) + "_" + aa(tr.RefResidue) + pos(tr.Pos))
		b.WriteString("ins" + aminoAcidNames(tr.Inserted, code))

	case tr.Inserted == "":
		b.WriteString(residueRange(tr.Deleted, tr.Pos, code) + "del")

	default:
		b.WriteString(residueRange(tr.Deleted, tr.Pos, code) + "delins" + aminoAcidNames(tr.Inserted, code))
	}
	return b.String()
}

// residueRange renders Ala2 or Ala2_Lys4 for residues starting at first.
func residueRange(residues string, first int64, code AACode) string {
	s := aminoAcidName(residues[0], code) + strconv.FormatInt(first, 10)
	if len(residues) > 1 {
		last := first + int64(len(residues)) - 1
		s += "_" + aminoAcidName(residues[len(residues)-1], code) + strconv.FormatInt(last, 10)
	}
	return s
}

func stopDistance(n int) string {
	if n <= 0 {
		return "?"
	}
	return strconv.Itoa(n)
}
