package annotate

import "strconv"

// EffectAnnotation is the effect of one variant on one transcript.
// It is built once per pair and not modified afterwards.
type EffectAnnotation struct {
	VariantID       string // Source variant identifier (chrom_pos_ref/alt)
	TranscriptID    string
	GeneName        string
	GeneID          string
	Biotype         string
	Category        Category
	HGVSc           string // e.g. "c.34G>T"
	HGVSp           string // e.g. "p.Gly12Cys", empty outside the CDS
	Edit            SequenceEdit
	CDSPosition     int64  // First affected CDS position, 0 if not in CDS
	ProteinPosition int64  // First affected residue, 0 if not in CDS
	ExonNumber      string // e.g. "2/5"
	IntronNumber    string // e.g. "1/4"
	IsCanonical     bool
	Allele          string // The alternate allele as given in the variant
}

// Consequence returns the Sequence Ontology term of the category.
func (a *EffectAnnotation) Consequence() string {
	return a.Category.String()
}

// Impact returns HIGH, MODERATE, LOW or MODIFIER.
func (a *EffectAnnotation) Impact() string {
	return a.Category.Impact()
}

// FormatVariantID creates a variant identifier from components.
func FormatVariantID(chrom string, pos int64, ref, alt string) string {
	return chrom + "_" + strconv.FormatInt(pos, 10) + "_" + ref + "/" + alt
}
