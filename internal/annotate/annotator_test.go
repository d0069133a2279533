package annotate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// brokenTranscript overlaps codingTranscript but has no valid strand.
func brokenTranscript() *cache.Transcript {
	t := codingTranscript()
	t.ID = "BAD1"
	t.Strand = 0
	t.IsCanonical = false
	return t
}

func newTestAnnotator(t *testing.T, transcripts ...*cache.Transcript) *Annotator {
	t.Helper()
	c := cache.New()
	for _, tx := range transcripts {
		c.AddTranscript(tx)
	}
	c.BuildIndex(DefaultConfig().FlankWidth)
	engine, err := NewEngine(DefaultConfig())
	require.NoError(t, err)
	return NewAnnotator(c, engine)
}

func TestAnnotator_Annotate(t *testing.T) {
	ann := newTestAnnotator(t, codingTranscript(), brokenTranscript())

	results := ann.Annotate(variant(1006, "G", "T"))
	require.Len(t, results, 2)

	byID := map[string]PairResult{}
	for _, r := range results {
		byID[r.TranscriptID] = r
	}

	good := byID["TX1"]
	require.NoError(t, good.Err)
	require.NotNil(t, good.Annotation)
	assert.Equal(t, "c.4G>T", good.Annotation.HGVSc)
	assert.Equal(t, "p.Ala2Ser", good.Annotation.HGVSp)

	bad := byID["BAD1"]
	assert.Nil(t, bad.Annotation)
	assert.True(t, errors.Is(bad.Err, ErrMalformedTranscript))
	var e *Error
	require.ErrorAs(t, bad.Err, &e)
	assert.Equal(t, "BAD1", e.Transcript)
}

func TestAnnotator_IntergenicVariant(t *testing.T) {
	ann := newTestAnnotator(t, codingTranscript())

	results := ann.Annotate(variant(90000, "A", "T"))
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Empty(t, results[0].TranscriptID)
	assert.Equal(t, CategoryIntergenic, results[0].Annotation.Category)
	assert.Equal(t, "1_90000_A/T", results[0].Annotation.VariantID)
}

func TestAnnotator_FlankingVariant(t *testing.T) {
	ann := newTestAnnotator(t, codingTranscript())

	results := ann.Annotate(variant(995, "A", "G"))
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, CategoryUpstream, results[0].Annotation.Category)
	assert.Equal(t, "c.-8A>G", results[0].Annotation.HGVSc)
}

func TestAnnotator_DeletionReachingTranscript(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FlankWidth = 10
	c := cache.New()
	c.AddTranscript(codingTranscript())
	c.BuildIndex(cfg.FlankWidth)
	engine, err := NewEngine(cfg)
	require.NoError(t, err)
	ann := NewAnnotator(c, engine)

	// Starts 16 bases upstream of TX1, ends inside its flank.
	results := ann.Annotate(variant(985, "AAAAAAAAAAAAAAAAAAAA", "A"))
	require.Len(t, results, 1)
	assert.Equal(t, "TX1", results[0].TranscriptID)
	assert.ErrorIs(t, results[0].Err, ErrOutOfRange)
}

func TestAnnotator_CanonicalOnly(t *testing.T) {
	ann := newTestAnnotator(t, codingTranscript(), brokenTranscript())
	ann.SetCanonicalOnly(true)

	results := ann.Annotate(variant(1006, "G", "T"))
	require.Len(t, results, 1)
	assert.Equal(t, "TX1", results[0].TranscriptID)
	assert.True(t, results[0].Annotation.IsCanonical)
}

// sliceParser serves variants from memory.
type sliceParser struct {
	variants []*vcf.Variant
	next     int
	err      error
}

func (p *sliceParser) Next() (*vcf.Variant, error) {
	if p.next >= len(p.variants) {
		return nil, p.err
	}
	v := p.variants[p.next]
	p.next++
	return v, nil
}

func (p *sliceParser) Close() error    { return nil }
func (p *sliceParser) LineNumber() int { return p.next }

type mockWriter struct {
	variants []*vcf.Variant
	anns     []*EffectAnnotation
	flushed  bool
	failAt   int // Write fails once this many annotations were written; 0 never
}

func (w *mockWriter) WriteHeader() error { return nil }

func (w *mockWriter) Write(v *vcf.Variant, ann *EffectAnnotation) error {
	if w.failAt > 0 && len(w.anns) == w.failAt {
		return errors.New("disk full")
	}
	w.variants = append(w.variants, v)
	w.anns = append(w.anns, ann)
	return nil
}

func (w *mockWriter) Flush() error {
	w.flushed = true
	return nil
}

func TestAnnotator_AnnotateAll(t *testing.T) {
	ann := newTestAnnotator(t, codingTranscript(), brokenTranscript())
	core, logs := observer.New(zap.WarnLevel)
	ann.SetLogger(zap.New(core))
	ann.SetWorkers(3)

	parser := &sliceParser{variants: []*vcf.Variant{
		variant(1006, "G", "T"),
		variant(1006, "G", "T,C"),
		variant(90000, "A", "T"),
	}}
	w := &mockWriter{}

	stats, err := ann.AnnotateAll(context.Background(), parser, w)
	require.NoError(t, err)
	assert.True(t, w.flushed)
	assert.Equal(t, Stats{Variants: 3, Annotations: 4, Failures: 3}, stats)

	var hgvsp []string
	for _, a := range w.anns {
		hgvsp = append(hgvsp, a.HGVSp)
	}
	assert.Equal(t, []string{"p.Ala2Ser", "p.Ala2Ser", "p.Ala2Pro", ""}, hgvsp)
	assert.Equal(t, CategoryIntergenic, w.anns[3].Category)

	assert.Equal(t, 3, logs.FilterMessage("failed to annotate variant").Len())
	for _, entry := range logs.All() {
		assert.Equal(t, "BAD1", entry.ContextMap()["transcript"])
	}
}

func TestAnnotator_AnnotateAll_ParseError(t *testing.T) {
	ann := newTestAnnotator(t, codingTranscript())

	parser := &sliceParser{
		variants: []*vcf.Variant{variant(1006, "G", "T")},
		err:      &vcf.ParseError{Line: 12, Message: "bad POS"},
	}
	w := &mockWriter{}

	stats, err := ann.AnnotateAll(context.Background(), parser, w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read variant")
	assert.Equal(t, 1, stats.Variants)
	assert.Len(t, w.anns, 1)
	assert.False(t, w.flushed)
}

func TestAnnotator_AnnotateAll_WriteError(t *testing.T) {
	ann := newTestAnnotator(t, codingTranscript())

	var variants []*vcf.Variant
	for range 500 {
		variants = append(variants, variant(1006, "G", "T"))
	}
	w := &mockWriter{failAt: 2}

	_, err := ann.AnnotateAll(context.Background(), &sliceParser{variants: variants}, w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, w.anns, 2)
	assert.False(t, w.flushed)
}

func TestAnnotator_AnnotateAll_Cancelled(t *testing.T) {
	ann := newTestAnnotator(t, codingTranscript())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ann.AnnotateAll(ctx, &sliceParser{variants: []*vcf.Variant{variant(1006, "G", "T")}}, &mockWriter{})
	assert.ErrorIs(t, err, context.Canceled)
}
