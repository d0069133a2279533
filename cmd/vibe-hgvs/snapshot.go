package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

func newSnapshotCmd() *cobra.Command {
	var transcripts []string

	cmd := &cobra.Command{
		Use:   "snapshot <output.duckdb>",
		Short: "Convert transcript snapshots to a DuckDB database",
		Long: `Load JSON or YAML transcript snapshots and write them to a single DuckDB
database, which annotate, variant and check accept in place of the originals.
An existing output file is replaced.`,
		Example: `  vibe-hgvs snapshot -t transcripts/ transcripts.duckdb`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			return runSnapshot(logger, transcripts, args[0])
		},
	}

	cmd.Flags().StringSliceVarP(&transcripts, "transcripts", "t", nil, "Transcript snapshot files or directories")
	cmd.MarkFlagRequired("transcripts")

	return cmd
}

func runSnapshot(logger *zap.Logger, transcripts []string, outputPath string) error {
	if !cache.IsDuckDB(outputPath) {
		outputPath += ".duckdb"
	}

	c := cache.New()
	loader := cache.NewLoader(transcripts...)
	loader.SetLogger(logger)
	if err := loader.Load(c); err != nil {
		return fmt.Errorf("load transcripts: %w", err)
	}

	if _, err := os.Stat(outputPath); err == nil {
		if err := os.Remove(outputPath); err != nil {
			return fmt.Errorf("remove existing file: %w", err)
		}
	}

	db, err := cache.NewDuckDBLoader(outputPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.CreateSchema(); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	for _, chrom := range c.Chromosomes() {
		for _, t := range c.FindTranscriptsByChrom(chrom) {
			if err := db.InsertTranscript(t); err != nil {
				return fmt.Errorf("insert %s: %w", t.ID, err)
			}
		}
	}

	n, err := db.TranscriptCount()
	if err != nil {
		return err
	}
	logger.Info("wrote transcript snapshot",
		zap.String("path", outputPath),
		zap.Int("transcripts", n))
	return nil
}
