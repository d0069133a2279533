package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/annotate"
	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/output"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

func newCheckCmd() *cobra.Command {
	var (
		src     sourceOptions
		showAll bool
	)

	cmd := &cobra.Command{
		Use:   "check <expected.vcf>",
		Short: "Compare computed HGVS notation against expected values",
		Long: `Read a VCF whose INFO column names a transcript (TR) and the expected
HGVS.c (HGVSC) and HGVS.p (HGVSP), annotate each record on that transcript
and report disagreements. Exits with status 3 if any record mismatches.`,
		Example: `  vibe-hgvs check -t tx.json expected.vcf
  vibe-hgvs check -t tx.json --all expected.vcf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			return runCheck(cmd.OutOrStdout(), cmd.ErrOrStderr(), logger, src, args[0], showAll)
		},
	}

	addSourceFlags(cmd, &src)
	cmd.Flags().BoolVar(&showAll, "all", false, "Show matching records too (default: mismatches only)")

	return cmd
}

func runCheck(out, summary io.Writer, logger *zap.Logger, src sourceOptions, inputPath string, showAll bool) error {
	parser, err := vcf.NewParser(inputPath)
	if err != nil {
		return err
	}
	defer parser.Close()

	s, err := openSession(src, logger)
	if err != nil {
		return err
	}
	byID := transcriptsByID(s.cache)

	if out == nil {
		out = os.Stdout
	}
	w := output.NewCheckWriter(out, showAll)
	if err := w.WriteHeader(); err != nil {
		return err
	}

	skipped := 0
	for {
		rec, err := parser.Next()
		if err != nil {
			return fmt.Errorf("read variant: %w", err)
		}
		if rec == nil {
			break
		}
		for _, v := range vcf.SplitMultiAllelic(rec) {
			exp, ok := output.ExpectationFromInfo(v)
			if !ok {
				skipped++
				continue
			}

			var ann *annotate.EffectAnnotation
			var annErr error
			t := byID[exp.TranscriptID]
			if t == nil {
				t = byID[unversioned(exp.TranscriptID)]
			}
			if t == nil {
				annErr = errors.New("transcript not found")
			} else {
				a, err := s.engine.Annotate(v, t)
				if err != nil {
					annErr = err
				} else {
					ann = &a
				}
			}

			if _, err := w.WriteComparison(v, exp, ann, annErr); err != nil {
				return fmt.Errorf("write comparison: %w", err)
			}
		}
	}

	if err := w.Flush(); err != nil {
		return err
	}
	w.WriteSummary(summary)
	if skipped > 0 {
		logger.Info("skipped records without a TR transcript", zap.Int("records", skipped))
	}

	if _, _, mismatches := w.Summary(); mismatches > 0 {
		return errMismatch
	}
	return nil
}

// transcriptsByID indexes the cache by full and unversioned transcript ID.
func transcriptsByID(c *cache.Cache) map[string]*cache.Transcript {
	byID := make(map[string]*cache.Transcript, c.TranscriptCount())
	for _, chrom := range c.Chromosomes() {
		for _, t := range c.FindTranscriptsByChrom(chrom) {
			byID[t.ID] = t
			if base := unversioned(t.ID); base != t.ID {
				if _, ok := byID[base]; !ok {
					byID[base] = t
				}
			}
		}
	}
	return byID
}

func unversioned(id string) string {
	if i := strings.LastIndexByte(id, '.'); i > 0 {
		return id[:i]
	}
	return id
}
