package annotate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// InputKind identifies the notation of a single-variant input string.
type InputKind int

const (
	InputGenomic InputKind = iota + 1
	InputCoding
)

// VariantInput is a parsed single-variant argument.
type VariantInput struct {
	Kind InputKind

	// Genomic input
	Variant *vcf.Variant

	// Coding input: a substitution on a transcript (or a gene's canonical
	// transcript) in c. coordinates.
	Transcript string
	CDSPos     int64
	Ref, Alt   byte
}

var (
	// 12:25245350:C:A, chr12-25245350-C-A, 12:25245350:C>A, 1:1006:GC:-
	reGenomic = regexp.MustCompile(`^(?:chr)?(\w+)[:\-](\d+)[:\-]([ACGTNacgtn]+|-)[>:/\-]([ACGTNacgtn]+|-)$`)
	// ENST00000311936:c.35G>T or KRAS c.35G>T
	reCoding = regexp.MustCompile(`^(\S+?)(?::|\s+)c\.(\d+)([ACGTacgt])>([ACGTacgt])$`)
)

// ParseVariantInput parses a genomic or c. substitution string.
func ParseVariantInput(input string) (*VariantInput, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty variant")
	}

	if m := reGenomic.FindStringSubmatch(input); m != nil {
		pos, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse position %q: %w", m[2], err)
		}
		return &VariantInput{
			Kind: InputGenomic,
			Variant: &vcf.Variant{
				Chrom: m[1],
				Pos:   pos,
				Ref:   strings.ToUpper(m[3]),
				Alt:   strings.ToUpper(m[4]),
			},
		}, nil
	}

	if m := reCoding.FindStringSubmatch(input); m != nil {
		pos, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse CDS position %q: %w", m[2], err)
		}
		return &VariantInput{
			Kind:       InputCoding,
			Transcript: m[1],
			CDSPos:     pos,
			Ref:        strings.ToUpper(m[3])[0],
			Alt:        strings.ToUpper(m[4])[0],
		}, nil
	}

	return nil, fmt.Errorf("cannot parse variant %q (expected chrom:pos:ref:alt or TRANSCRIPT:c.NX>Y)", input)
}

// Resolve returns the genomic variant for the input. Coding inputs are
// mapped through the named transcript, which is also returned; genomic
// inputs return a nil transcript.
func (in *VariantInput) Resolve(c *cache.Cache) (*vcf.Variant, *cache.Transcript, error) {
	if in.Kind == InputGenomic {
		return in.Variant, nil, nil
	}

	t := findTranscript(c, in.Transcript)
	if t == nil {
		return nil, nil, fmt.Errorf("transcript or gene %q not found", in.Transcript)
	}
	pos, err := CDSToGenomic(in.CDSPos, t)
	if err != nil {
		return nil, nil, err
	}
	if off := int64(t.CDSStart) + in.CDSPos - 1; off < int64(len(t.Sequence)) {
		if got := t.Sequence[off]; got != in.Ref {
			return nil, nil, newError(KindSequenceMismatch, t.ID, "c.%d is %c, not %c", in.CDSPos, got, in.Ref)
		}
	}

	ref, alt := in.Ref, in.Alt
	if t.IsReverseStrand() {
		ref, alt = Complement(ref), Complement(alt)
	}
	return &vcf.Variant{Chrom: t.Chrom, Pos: pos, Ref: string(ref), Alt: string(alt)}, t, nil
}

// findTranscript looks a name up as a transcript ID, then as an ID without
// its version, then as a gene name (canonical coding transcript first).
func findTranscript(c *cache.Cache, name string) *cache.Transcript {
	if t := c.GetTranscript(name); t != nil {
		return t
	}

	base := stripVersion(name)
	var byID, canonical, coding *cache.Transcript
	for _, chrom := range c.Chromosomes() {
		for _, t := range c.FindTranscriptsByChrom(chrom) {
			if byID == nil && stripVersion(t.ID) == base {
				byID = t
			}
			if t.GeneName != name || !t.IsProteinCoding() {
				continue
			}
			if canonical == nil && t.IsCanonical {
				canonical = t
			}
			if coding == nil {
				coding = t
			}
		}
	}
	switch {
	case byID != nil:
		return byID
	case canonical != nil:
		return canonical
	default:
		return coding
	}
}

func stripVersion(id string) string {
	if i := strings.IndexByte(id, '.'); i >= 0 {
		return id[:i]
	}
	return id
}
