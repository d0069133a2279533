// Package vcf provides the genomic variant record and VCF parsing.
package vcf

import (
	"strconv"
	"strings"
)

// Variant represents a single genomic variant from a VCF file.
// Ref and Alt may be empty (or "-") for pure insertions and deletions.
type Variant struct {
	Chrom         string                 // Chromosome name (e.g., "12", "chr12")
	Pos           int64                  // 1-based genomic position
	ID            string                 // Variant identifier (e.g., rs ID)
	Ref           string                 // Reference allele
	Alt           string                 // Alternate allele (single allele after splitting)
	Qual          float64                // Quality score
	Filter        string                 // Filter status (PASS or filter name)
	Info          map[string]interface{} // INFO field key-value pairs
	RawInfo       string                 // INFO column as read, for writers that re-emit it
	SampleColumns string                 // FORMAT and sample columns, unparsed
}

// IsSymbolic returns true for symbolic or breakend alleles (<DEL>, N[chr1:5[, *).
func (v *Variant) IsSymbolic() bool {
	return strings.ContainsAny(v.Alt, "<>[]*")
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	if len(v.Chrom) > 3 && v.Chrom[:3] == "chr" {
		return v.Chrom[3:]
	}
	return v.Chrom
}

// InfoString returns a string INFO value, or "" when absent or a flag.
func (v *Variant) InfoString(key string) string {
	if v.Info == nil {
		return ""
	}
	s, _ := v.Info[key].(string)
	return s
}

// String returns chrom:pos ref>alt.
func (v *Variant) String() string {
	return v.Chrom + ":" + strconv.FormatInt(v.Pos, 10) + " " + v.Ref + ">" + v.Alt
}
