package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/annotate"
	"github.com/inodb/vibe-hgvs/internal/duckdb"
	"github.com/inodb/vibe-hgvs/internal/output"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// dbBatchSize is how many annotations are buffered before a DuckDB append.
const dbBatchSize = 10000

func newAnnotateCmd() *cobra.Command {
	var (
		src           sourceOptions
		outputFile    string
		outputFormat  string
		dbPath        string
		dbAppend      bool
		canonicalOnly bool
		minImpact     string
	)

	cmd := &cobra.Command{
		Use:   "annotate <input.vcf>",
		Short: "Annotate variants in a VCF file with HGVS notation",
		Long: `Annotate every variant of a VCF file (plain, gzip or bgzip) against the
overlapping transcripts and write HGVS.c, HGVS.p and the consequence.`,
		Example: `  vibe-hgvs annotate -t transcripts/ input.vcf
  vibe-hgvs annotate -t tx.json -f vcf -o annotated.vcf input.vcf.gz
  vibe-hgvs annotate -t tx.duckdb --db results.duckdb input.vcf
  cat input.vcf | vibe-hgvs annotate -t tx.json -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			return runAnnotate(cmd.Context(), logger, src, args[0], annotateOptions{
				output:        outputFile,
				format:        outputFormat,
				db:            dbPath,
				dbAppend:      dbAppend,
				canonicalOnly: canonicalOnly,
				minImpact:     minImpact,
				workers:       viper.GetInt("annotate.workers"),
			})
		},
	}

	addSourceFlags(cmd, &src)
	f := cmd.Flags()
	f.StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	f.StringVarP(&outputFormat, "output-format", "f", "tab", "Output format: tab, vcf")
	f.StringVar(&dbPath, "db", "", "Also store annotations in this DuckDB database")
	f.BoolVar(&dbAppend, "db-append", false, "Keep earlier results in --db if they came from the same transcript snapshot")
	f.BoolVar(&canonicalOnly, "canonical", false, "Only report canonical transcript annotations")
	f.StringVar(&minImpact, "min-impact", annotate.ImpactModifier, "Only report annotations at or above this impact: HIGH, MODERATE, LOW, MODIFIER")
	f.Int("workers", 0, "Annotation workers (0 = number of CPUs)")
	viper.BindPFlag("annotate.workers", f.Lookup("workers"))

	return cmd
}

type annotateOptions struct {
	output        string
	format        string
	db            string
	dbAppend      bool
	canonicalOnly bool
	minImpact     string
	workers       int
}

func runAnnotate(ctx context.Context, logger *zap.Logger, src sourceOptions, inputPath string, opts annotateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	parser, err := vcf.NewParser(inputPath)
	if err != nil {
		return err
	}
	defer parser.Close()

	s, err := openSession(src, logger)
	if err != nil {
		return err
	}

	minRank := annotate.ImpactRank(strings.ToUpper(opts.minImpact))
	if minRank == 0 && !strings.EqualFold(opts.minImpact, annotate.ImpactModifier) {
		return fmt.Errorf("unknown impact %q", opts.minImpact)
	}

	var out io.Writer = os.Stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	var writer annotate.AnnotationWriter
	switch opts.format {
	case "tab":
		writer = output.NewTabWriter(out)
	case "vcf":
		writer = output.NewVCFWriter(out, parser.Header())
	default:
		return fmt.Errorf("unknown output format %q (want tab or vcf)", opts.format)
	}

	if opts.db != "" {
		store, err := duckdb.Open(opts.db)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := prepareStore(store, s.files, opts.dbAppend, logger); err != nil {
			return err
		}
		writer = &teeWriter{AnnotationWriter: writer, db: &dbWriter{ctx: ctx, store: store}}
	}

	if minRank > 0 {
		writer = &impactFilter{AnnotationWriter: writer, minRank: minRank}
	}

	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	stats, err := s.annotator(opts.canonicalOnly, opts.workers).AnnotateAll(ctx, parser, writer)
	if err != nil {
		return err
	}
	logger.Info("annotation finished",
		zap.Int("variants", stats.Variants),
		zap.Int("annotations", stats.Annotations),
		zap.Int("failures", stats.Failures))
	return nil
}

// prepareStore clears results unless appending to a store built from the
// same transcript snapshot files, then records those files as the source.
func prepareStore(store *duckdb.Store, sources []string, appendResults bool, logger *zap.Logger) error {
	fps, err := duckdb.StatFiles(sources)
	if err != nil {
		return fmt.Errorf("stat transcript source: %w", err)
	}
	same, err := store.SourceMatches(fps)
	if err != nil {
		return err
	}
	if !appendResults || !same {
		if appendResults {
			logger.Warn("transcript snapshots changed, discarding stored results", zap.Strings("sources", sources))
		}
		if err := store.ClearVariantResults(); err != nil {
			return fmt.Errorf("clear stored results: %w", err)
		}
	}
	return store.SetSource(fps)
}

// dbWriter buffers annotations and appends them to a DuckDB store.
type dbWriter struct {
	ctx     context.Context
	store   *duckdb.Store
	pending []duckdb.VariantResult
}

func (w *dbWriter) Write(v *vcf.Variant, ann *annotate.EffectAnnotation) error {
	w.pending = append(w.pending, duckdb.VariantResult{
		Chrom: v.Chrom, Pos: v.Pos, Ref: v.Ref, Alt: v.Alt, Ann: ann,
	})
	if len(w.pending) >= dbBatchSize {
		return w.Flush()
	}
	return nil
}

func (w *dbWriter) Flush() error {
	if err := w.store.WriteVariantResults(w.ctx, w.pending); err != nil {
		return err
	}
	w.pending = w.pending[:0]
	return nil
}

// teeWriter writes annotations to an output format and a DuckDB store.
type teeWriter struct {
	annotate.AnnotationWriter
	db *dbWriter
}

func (t *teeWriter) Write(v *vcf.Variant, ann *annotate.EffectAnnotation) error {
	if err := t.AnnotationWriter.Write(v, ann); err != nil {
		return err
	}
	return t.db.Write(v, ann)
}

func (t *teeWriter) Flush() error {
	if err := t.AnnotationWriter.Flush(); err != nil {
		return err
	}
	return t.db.Flush()
}

// impactFilter drops annotations below a minimum impact.
type impactFilter struct {
	annotate.AnnotationWriter
	minRank int
}

func (f *impactFilter) Write(v *vcf.Variant, ann *annotate.EffectAnnotation) error {
	if annotate.ImpactRank(ann.Impact()) < f.minRank {
		return nil
	}
	return f.AnnotationWriter.Write(v, ann)
}
