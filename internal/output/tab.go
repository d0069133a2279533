// Package output provides annotation output formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-hgvs/internal/annotate"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// TabColumns are the columns written by TabWriter.
var TabColumns = []string{
	"#Uploaded_variation",
	"Location",
	"Allele",
	"Gene",
	"Feature",
	"Feature_type",
	"Consequence",
	"IMPACT",
	"BIOTYPE",
	"CANONICAL",
	"EXON",
	"INTRON",
	"CDS_position",
	"Protein_position",
	"HGVSc",
	"HGVSp",
}

// TabWriter writes annotations in tab-delimited format.
type TabWriter struct {
	w *bufio.Writer
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(TabColumns, "\t") + "\n")
	return err
}

// Write writes a single annotation.
func (tw *TabWriter) Write(v *vcf.Variant, ann *annotate.EffectAnnotation) error {
	id := v.ID
	if id == "" || id == "." {
		id = ann.VariantID
	}

	featureType := "Transcript"
	if ann.TranscriptID == "" {
		featureType = "-"
	}

	canonical := "-"
	if ann.IsCanonical {
		canonical = "YES"
	}

	values := []string{
		id,
		v.Chrom + ":" + strconv.FormatInt(v.Pos, 10),
		orDash(ann.Allele),
		orDash(ann.GeneName),
		orDash(ann.TranscriptID),
		featureType,
		ann.Consequence(),
		ann.Impact(),
		orDash(ann.Biotype),
		canonical,
		orDash(ann.ExonNumber),
		orDash(ann.IntronNumber),
		positive(ann.CDSPosition),
		positive(ann.ProteinPosition),
		orDash(ann.HGVSc),
		orDash(ann.HGVSp),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func positive(n int64) string {
	if n <= 0 {
		return "-"
	}
	return strconv.FormatInt(n, 10)
}
