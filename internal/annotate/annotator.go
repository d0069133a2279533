package annotate

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// TranscriptLookup finds the transcripts overlapping a genomic range.
type TranscriptLookup interface {
	FindTranscripts(chrom string, start, end int64) []*cache.Transcript
}

// PairResult is the outcome for one (variant, transcript) pair. Exactly one
// of Annotation and Err is set.
type PairResult struct {
	TranscriptID string
	Annotation   *EffectAnnotation
	Err          error
}

// Annotator annotates variants against every overlapping transcript.
type Annotator struct {
	engine        *Engine
	cache         TranscriptLookup
	canonicalOnly bool
	workers       int
	logger        *zap.Logger
}

// NewAnnotator creates a new annotator over the given transcript lookup.
func NewAnnotator(c TranscriptLookup, engine *Engine) *Annotator {
	return &Annotator{
		engine: engine,
		cache:  c,
		logger: zap.NewNop(),
	}
}

// SetCanonicalOnly configures whether to only report canonical transcript annotations.
func (a *Annotator) SetCanonicalOnly(canonical bool) {
	a.canonicalOnly = canonical
}

// SetLogger sets the logger for warning and info messages.
func (a *Annotator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// SetWorkers sets the worker count for AnnotateAll; 0 means runtime.NumCPU().
func (a *Annotator) SetWorkers(n int) {
	a.workers = n
}

// Annotate annotates a single variant on each overlapping transcript.
// A failure on one transcript is recorded in its PairResult and does not
// affect the others. Variants hitting no transcript get one intergenic
// annotation.
func (a *Annotator) Annotate(v *vcf.Variant) []PairResult {
	end := v.Pos
	if len(v.Ref) > 1 {
		end += int64(len(v.Ref)) - 1
	}
	transcripts := a.cache.FindTranscripts(v.NormalizeChrom(), v.Pos, end)

	var results []PairResult
	for _, t := range transcripts {
		if a.canonicalOnly && !t.IsCanonical {
			continue
		}
		ann, err := a.engine.Annotate(v, t)
		if err != nil {
			results = append(results, PairResult{TranscriptID: t.ID, Err: err})
			continue
		}
		results = append(results, PairResult{TranscriptID: t.ID, Annotation: &ann})
	}

	if len(results) == 0 {
		ann := &EffectAnnotation{
			VariantID: FormatVariantID(v.Chrom, v.Pos, v.Ref, v.Alt),
			Category:  CategoryIntergenic,
			Allele:    v.Alt,
		}
		return []PairResult{{Annotation: ann}}
	}
	return results
}

// Stats summarizes an AnnotateAll run.
type Stats struct {
	Variants    int
	Annotations int
	Failures    int
}

// AnnotateAll annotates all variants from a parser and writes every
// successful annotation in input order. Failed pairs are logged and counted.
// A parse error stops reading; annotations of the records before it are
// still written, but the writer is not flushed.
func (a *Annotator) AnnotateAll(ctx context.Context, parser vcf.VariantParser, writer AnnotationWriter) (Stats, error) {
	var stats Stats
	var parseErr error

	g, gctx := errgroup.WithContext(ctx)
	items := make(chan WorkItem, 2*runtime.NumCPU())

	g.Go(func() error {
		defer close(items)
		seq := 0
		for {
			v, err := parser.Next()
			if err != nil {
				parseErr = fmt.Errorf("read variant: %w", err)
				return nil
			}
			if v == nil {
				return nil
			}
			stats.Variants++

			// Split multi-allelic variants, each gets its own sequence number.
			for _, variant := range vcf.SplitMultiAllelic(v) {
				select {
				case items <- WorkItem{Seq: seq, Variant: variant}:
				case <-gctx.Done():
					return gctx.Err()
				}
				seq++
			}
		}
	})

	g.Go(func() error {
		return a.ParallelAnnotate(gctx, items, a.workers, func(r WorkResult) error {
			for _, pr := range r.Pairs {
				if pr.Err != nil {
					stats.Failures++
					a.logger.Warn("failed to annotate variant",
						zap.String("chrom", r.Variant.Chrom),
						zap.Int64("pos", r.Variant.Pos),
						zap.String("transcript", pr.TranscriptID),
						zap.Error(pr.Err))
					continue
				}
				if err := writer.Write(r.Variant, pr.Annotation); err != nil {
					return fmt.Errorf("write annotation: %w", err)
				}
				stats.Annotations++
			}
			return nil
		})
	})

	if err := g.Wait(); err != nil {
		return stats, err
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if parseErr != nil {
		return stats, parseErr
	}

	if stats.Variants == 0 {
		a.logger.Info("0 variants processed")
	}

	return stats, writer.Flush()
}

// AnnotationWriter defines the interface for writing annotations.
type AnnotationWriter interface {
	WriteHeader() error
	Write(v *vcf.Variant, ann *EffectAnnotation) error
	Flush() error
}
