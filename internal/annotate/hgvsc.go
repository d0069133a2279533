package annotate

import (
	"strconv"
	"strings"
)

// NotationPos is a position in c. (or n.) coordinates. Base is the
// origin-relative offset of an exonic base, or of the exon base anchoring an
// intronic position; Intron is the signed distance into the intron.
type NotationPos struct {
	Base   int64
	Intron int64
}

// CodingChange carries everything needed to render one HGVS.c string.
type CodingChange struct {
	Prefix string // "c." or "n."
	Kind   EditKind
	// Start and End are the first and last affected bases. For insertions
	// they are the two bases flanking the inserted sequence.
	Start, End NotationPos
	Ref, Alt   string
	// CodingLen is the CDS length (stop codon included) for c. notation, or
	// the transcript length for n.; positions at or past it render as *N.
	CodingLen int64
}

// FormatHGVSc renders a CodingChange, e.g. c.4G>T, c.5del, c.4_5dup,
// c.88+1_88+2insA or c.-14_-12delinsTT.
func FormatHGVSc(c CodingChange) string {
	var b strings.Builder
	b.WriteString(c.Prefix)
	start := formatPos(c.Start, c.CodingLen)

	switch c.Kind {
	case EditSubstitution:
		b.WriteString(start)
		b.WriteString(c.Ref)
		b.WriteByte('>')
		b.WriteString(c.Alt)
	case EditInsertion:
		b.WriteString(start)
		b.WriteByte('_')
		b.WriteString(formatPos(c.End, c.CodingLen))
		b.WriteString("ins")
		b.WriteString(c.Alt)
	default:
		b.WriteString(start)
		if c.End != c.Start {
			b.WriteByte('_')
			b.WriteString(formatPos(c.End, c.CodingLen))
		}
		switch c.Kind {
		case EditDeletion:
			b.WriteString("del")
		case EditDuplication:
			b.WriteString("dup")
		default:
			b.WriteString("delins")
			b.WriteString(c.Alt)
		}
	}
	return b.String()
}

// codingChangeFromEdit converts an edit on the spliced transcript.
func codingChangeFromEdit(e SequenceEdit, prefix string, codingLen int64) CodingChange {
	c := CodingChange{Prefix: prefix, Kind: e.Kind, Ref: e.Ref, Alt: e.Alt, CodingLen: codingLen}
	if e.Kind == EditInsertion {
		c.Start = NotationPos{Base: e.Start - 1}
		c.End = NotationPos{Base: e.Start}
	} else {
		c.Start = NotationPos{Base: e.Start}
		c.End = NotationPos{Base: e.End - 1}
	}
	return c
}

func formatPos(p NotationPos, codingLen int64) string {
	var s string
	switch {
	case p.Base < 0:
		s = "-" + strconv.FormatInt(-p.Base, 10)
	case p.Base >= codingLen:
		s = "*" + strconv.FormatInt(p.Base-codingLen+1, 10)
	default:
		s = strconv.FormatInt(p.Base+1, 10)
	}
	switch {
	case p.Intron > 0:
		s += "+" + strconv.FormatInt(p.Intron, 10)
	case p.Intron < 0:
		s += strconv.FormatInt(p.Intron, 10)
	}
	return s
}
