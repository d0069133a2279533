package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/annotate"
	"github.com/inodb/vibe-hgvs/internal/output"
)

func newVariantCmd() *cobra.Command {
	var (
		src           sourceOptions
		canonicalOnly bool
	)

	cmd := &cobra.Command{
		Use:   "variant <variant>",
		Short: "Annotate a single variant",
		Long: `Annotate one variant given in genomic form (chrom:pos:ref:alt) or as a
coding substitution on a transcript or gene (TRANSCRIPT:c.35G>T, GENE c.35G>T).`,
		Example: `  vibe-hgvs variant -t tx.json 12:25245350:C:A
  vibe-hgvs variant -t tx.json chr12-25245350-C-A
  vibe-hgvs variant -t tx.json ENST00000311936:c.35G>T
  vibe-hgvs variant -t tx.json KRAS c.35G>T`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			return runVariant(cmd.OutOrStdout(), logger, src, strings.Join(args, " "), canonicalOnly)
		},
	}

	addSourceFlags(cmd, &src)
	cmd.Flags().BoolVar(&canonicalOnly, "canonical", false, "Only report canonical transcript annotations")

	return cmd
}

func runVariant(out io.Writer, logger *zap.Logger, src sourceOptions, input string, canonicalOnly bool) error {
	in, err := annotate.ParseVariantInput(input)
	if err != nil {
		return err
	}

	s, err := openSession(src, logger)
	if err != nil {
		return err
	}

	v, tx, err := in.Resolve(s.cache)
	if err != nil {
		return err
	}

	var pairs []annotate.PairResult
	if tx != nil {
		ann, err := s.engine.Annotate(v, tx)
		if err != nil {
			return err
		}
		pairs = []annotate.PairResult{{TranscriptID: tx.ID, Annotation: &ann}}
	} else {
		pairs = s.annotator(canonicalOnly, 1).Annotate(v)
	}

	if out == nil {
		out = os.Stdout
	}
	w := output.NewTabWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	for _, p := range pairs {
		if p.Err != nil {
			logger.Warn("failed to annotate variant",
				zap.String("variant", v.String()),
				zap.String("transcript", p.TranscriptID),
				zap.Error(p.Err))
			continue
		}
		if err := w.Write(v, p.Annotation); err != nil {
			return fmt.Errorf("write annotation: %w", err)
		}
	}
	return w.Flush()
}
