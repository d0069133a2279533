package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/inodb/vibe-hgvs/internal/annotate"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// INFO keys carrying expected notation in check input.
const (
	InfoTranscript = "TR"
	InfoHGVSc      = "HGVSC"
	InfoHGVSp      = "HGVSP"
)

// Expectation is the HGVS notation a variant record claims for one transcript.
type Expectation struct {
	TranscriptID string
	HGVSc        string
	HGVSp        string
}

// ExpectationFromInfo reads the TR, HGVSC and HGVSP INFO keys. ok is false
// when the record names no transcript.
func ExpectationFromInfo(v *vcf.Variant) (exp Expectation, ok bool) {
	exp = Expectation{
		TranscriptID: v.InfoString(InfoTranscript),
		HGVSc:        v.InfoString(InfoHGVSc),
		HGVSp:        v.InfoString(InfoHGVSp),
	}
	return exp, exp.TranscriptID != ""
}

// CheckWriter writes a comparison of expected and computed HGVS notation.
type CheckWriter struct {
	w          *tabwriter.Writer
	matches    int
	mismatches int
	total      int
	showAll    bool // if false, only show mismatches
}

// NewCheckWriter creates a new check output writer.
func NewCheckWriter(w io.Writer, showAll bool) *CheckWriter {
	return &CheckWriter{
		w:       tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		showAll: showAll,
	}
}

// WriteHeader writes the check output header.
func (c *CheckWriter) WriteHeader() error {
	_, err := fmt.Fprintln(c.w, "Variant\tTranscript\tExpected_HGVSc\tGot_HGVSc\tExpected_HGVSp\tGot_HGVSp\tMatch")
	return err
}

// WriteComparison records one expectation against the computed annotation
// (or the error that prevented one) and reports whether they agree. Empty
// expected fields are not compared.
func (c *CheckWriter) WriteComparison(v *vcf.Variant, exp Expectation, ann *annotate.EffectAnnotation, annErr error) (bool, error) {
	c.total++

	var gotC, gotP string
	switch {
	case annErr != nil:
		gotC = "error: " + annErr.Error()
		gotP = gotC
	case ann != nil:
		gotC, gotP = ann.HGVSc, ann.HGVSp
	}

	match := annErr == nil && ann != nil &&
		(exp.HGVSc == "" || NormalizeHGVS(exp.HGVSc) == NormalizeHGVS(gotC)) &&
		(exp.HGVSp == "" || NormalizeHGVS(exp.HGVSp) == NormalizeHGVS(gotP))

	matchStr := "N"
	if match {
		c.matches++
		matchStr = "Y"
	} else {
		c.mismatches++
	}

	if c.showAll || !match {
		_, err := fmt.Fprintf(c.w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.String(),
			exp.TranscriptID,
			orDash(exp.HGVSc),
			orDash(gotC),
			orDash(exp.HGVSp),
			orDash(gotP),
			matchStr,
		)
		return match, err
	}
	return match, nil
}

// Flush flushes the writer.
func (c *CheckWriter) Flush() error {
	return c.w.Flush()
}

// Summary returns match statistics.
func (c *CheckWriter) Summary() (total, matches, mismatches int) {
	return c.total, c.matches, c.mismatches
}

// WriteSummary writes a summary of the check results.
func (c *CheckWriter) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "\nCheck Summary:\n")
	fmt.Fprintf(w, "  Total expectations: %d\n", c.total)
	fmt.Fprintf(w, "  Matches:            %d (%.1f%%)\n", c.matches, percent(c.matches, c.total))
	fmt.Fprintf(w, "  Mismatches:         %d (%.1f%%)\n", c.mismatches, percent(c.mismatches, c.total))
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// NormalizeHGVS reduces notation to a comparable form: the reference
// sequence prefix (NM_000546.5:) is dropped, predicted-consequence
// parentheses are removed, Ter becomes * and %3D is decoded.
func NormalizeHGVS(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.ReplaceAll(s, "%3D", "=")
	s = strings.ReplaceAll(s, "Ter", "*")
	s = strings.ReplaceAll(s, "(", "")
	s = strings.ReplaceAll(s, ")", "")
	return s
}
