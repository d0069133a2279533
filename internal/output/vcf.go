package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-hgvs/internal/annotate"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// CSQ sub-field names in VEP convention order.
var csqFields = []string{
	"Allele",
	"Consequence",
	"IMPACT",
	"SYMBOL",
	"Gene",
	"Feature_type",
	"Feature",
	"BIOTYPE",
	"EXON",
	"INTRON",
	"HGVSc",
	"HGVSp",
	"CDS_position",
	"Protein_position",
	"CANONICAL",
}

// VCFWriter writes annotations in VCF format with a CSQ INFO field.
// Annotations are buffered per variant and flushed when the variant changes.
type VCFWriter struct {
	w           *bufio.Writer
	headerLines []string // original VCF header lines (## and #CHROM)

	// Buffered state for the current variant.
	currentChrom string                       // chromosome for grouping
	currentPos   int64                        // position for grouping
	hasVariant   bool                         // whether we have a buffered variant
	first        *vcf.Variant                 // first record seen for this key
	annotations  []*annotate.EffectAnnotation // buffered annotations
	alts         []string                     // unique alt alleles seen
}

// NewVCFWriter creates a new VCF output writer.
func NewVCFWriter(w io.Writer, headerLines []string) *VCFWriter {
	return &VCFWriter{
		w:           bufio.NewWriter(w),
		headerLines: headerLines,
	}
}

// WriteHeader writes the original VCF header lines with an inserted CSQ INFO line.
func (vw *VCFWriter) WriteHeader() error {
	csqLine := fmt.Sprintf(
		"##INFO=<ID=CSQ,Number=.,Type=String,Description=\"Consequence annotations from vibe-hgvs. Format: %s\">",
		strings.Join(csqFields, "|"),
	)

	wroteCSQ := false
	for _, line := range vw.headerLines {
		if strings.HasPrefix(line, "##INFO=<ID=CSQ,") {
			continue
		}
		if strings.HasPrefix(line, "#CHROM") {
			if _, err := vw.w.WriteString(csqLine + "\n"); err != nil {
				return err
			}
			wroteCSQ = true
		}
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	if !wroteCSQ {
		_, err := vw.w.WriteString(csqLine + "\n")
		return err
	}
	return nil
}

// Write buffers an annotation for the given variant. When a new variant is
// encountered (different chrom/pos), the previous variant's VCF line is flushed.
func (vw *VCFWriter) Write(v *vcf.Variant, ann *annotate.EffectAnnotation) error {
	if vw.hasVariant && (vw.currentChrom != v.Chrom || vw.currentPos != v.Pos) {
		if err := vw.flushVariant(); err != nil {
			return err
		}
	}

	if !vw.hasVariant {
		vw.currentChrom = v.Chrom
		vw.currentPos = v.Pos
		vw.hasVariant = true
		vw.first = v
	}

	vw.annotations = append(vw.annotations, ann)

	found := false
	for _, a := range vw.alts {
		if a == v.Alt {
			found = true
			break
		}
	}
	if !found {
		vw.alts = append(vw.alts, v.Alt)
	}

	return nil
}

// Flush writes any buffered variant and flushes the underlying writer.
func (vw *VCFWriter) Flush() error {
	if vw.hasVariant {
		if err := vw.flushVariant(); err != nil {
			return err
		}
	}
	return vw.w.Flush()
}

// flushVariant writes the buffered variant as a VCF line with CSQ annotations.
func (vw *VCFWriter) flushVariant() error {
	v := vw.first
	info := stripCSQ(v.RawInfo)

	var lb strings.Builder
	lb.Grow(256)

	lb.WriteString(v.Chrom)
	lb.WriteByte('\t')
	lb.WriteString(strconv.FormatInt(v.Pos, 10))
	lb.WriteByte('\t')
	lb.WriteString(orDot(v.ID))
	lb.WriteByte('\t')
	lb.WriteString(v.Ref)
	lb.WriteByte('\t')
	lb.WriteString(strings.Join(vw.alts, ","))
	lb.WriteByte('\t')
	if v.Qual != 0 {
		lb.WriteString(strconv.FormatFloat(v.Qual, 'g', -1, 64))
	} else {
		lb.WriteByte('.')
	}
	lb.WriteByte('\t')
	lb.WriteString(orDot(v.Filter))
	lb.WriteByte('\t')
	if info != "." {
		lb.WriteString(info)
		lb.WriteByte(';')
	}
	lb.WriteString("CSQ=")
	for i, ann := range vw.annotations {
		if i > 0 {
			lb.WriteByte(',')
		}
		writeCSQEntry(&lb, ann)
	}

	if v.SampleColumns != "" {
		lb.WriteByte('\t')
		lb.WriteString(v.SampleColumns)
	}

	lb.WriteByte('\n')
	if _, err := vw.w.WriteString(lb.String()); err != nil {
		return err
	}

	vw.hasVariant = false
	vw.first = nil
	vw.annotations = nil
	vw.alts = nil
	return nil
}

// stripCSQ removes any existing CSQ field from a raw INFO string.
func stripCSQ(rawInfo string) string {
	if rawInfo == "" || rawInfo == "." {
		return "."
	}
	if !strings.Contains(rawInfo, "CSQ") {
		return rawInfo
	}

	var kept []string
	for _, field := range strings.Split(rawInfo, ";") {
		if strings.HasPrefix(field, "CSQ=") || field == "CSQ" {
			continue
		}
		kept = append(kept, field)
	}
	if len(kept) == 0 {
		return "."
	}
	return strings.Join(kept, ";")
}

// writeCSQEntry writes a single annotation as a pipe-delimited CSQ entry.
// '=' in HGVS strings is percent-encoded as VEP does, since INFO values
// may not contain it.
func writeCSQEntry(b *strings.Builder, ann *annotate.EffectAnnotation) {
	featureType := ""
	if ann.TranscriptID != "" {
		featureType = "Transcript"
	}
	canonical := ""
	if ann.IsCanonical {
		canonical = "YES"
	}
	var cdsPos, protPos string
	if ann.CDSPosition > 0 {
		cdsPos = strconv.FormatInt(ann.CDSPosition, 10)
	}
	if ann.ProteinPosition > 0 {
		protPos = strconv.FormatInt(ann.ProteinPosition, 10)
	}

	fields := [...]string{
		ann.Allele,
		ann.Consequence(),
		ann.Impact(),
		ann.GeneName,
		ann.GeneID,
		featureType,
		ann.TranscriptID,
		ann.Biotype,
		ann.ExonNumber,
		ann.IntronNumber,
		escapeInfo(ann.HGVSc),
		escapeInfo(ann.HGVSp),
		cdsPos,
		protPos,
		canonical,
	}
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(f)
	}
}

func escapeInfo(s string) string {
	return strings.ReplaceAll(s, "=", "%3D")
}

func orDot(s string) string {
	if s == "" {
		return "."
	}
	return s
}
