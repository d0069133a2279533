package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/annotate"
	"github.com/inodb/vibe-hgvs/internal/cache"
)

// sourceOptions names the transcript data a command annotates against.
type sourceOptions struct {
	transcripts        []string
	canonicalOverrides string
	reference          string
}

func addSourceFlags(cmd *cobra.Command, opts *sourceOptions) {
	f := cmd.Flags()
	f.StringSliceVarP(&opts.transcripts, "transcripts", "t", nil, "Transcript snapshot files or directories (JSON, YAML or DuckDB)")
	f.StringVar(&opts.canonicalOverrides, "canonical-overrides", "", "TSV of gene to canonical transcript overrides")
	f.StringVar(&opts.reference, "reference", "", "Genome FASTA (plain, gzip or bgzip) used to verify intronic reference alleles")
}

// session is the loaded transcript set and a configured engine.
type session struct {
	files  []string // snapshot files actually read
	cache  *cache.Cache
	engine *annotate.Engine
	logger *zap.Logger
}

// openSession loads transcripts and builds the engine from the current config.
func openSession(opts sourceOptions, logger *zap.Logger) (*session, error) {
	cfg, err := engineConfig()
	if err != nil {
		return nil, err
	}
	engine, err := annotate.NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	paths := opts.transcripts
	if len(paths) == 0 {
		paths = viper.GetStringSlice("transcripts")
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no transcript snapshots given (use --transcripts or set transcripts in the config file)")
	}

	c := cache.New()
	loader := cache.NewLoader(paths...)
	loader.SetLogger(logger)
	if err := loader.Load(c); err != nil {
		return nil, fmt.Errorf("load transcripts: %w", err)
	}
	logger.Info("loaded transcripts",
		zap.Int("files", len(loader.Files())),
		zap.Int("transcripts", c.TranscriptCount()),
		zap.Int("skipped", loader.Skipped()),
		zap.Int("chromosomes", len(c.Chromosomes())))

	if opts.canonicalOverrides != "" {
		overrides, err := cache.LoadCanonicalOverrides(opts.canonicalOverrides)
		if err != nil {
			return nil, err
		}
		n := c.ApplyCanonicalOverrides(overrides)
		logger.Info("applied canonical overrides",
			zap.Int("overrides", len(overrides)),
			zap.Int("genes_matched", n))
	}

	if opts.reference != "" {
		genome, err := cache.LoadGenome(opts.reference)
		if err != nil {
			return nil, err
		}
		engine.SetReference(genome)
		logger.Info("loaded reference genome", zap.Int("sequences", genome.ChromosomeCount()))
	}

	c.BuildIndex(cfg.FlankWidth)
	return &session{files: loader.Files(), cache: c, engine: engine, logger: logger}, nil
}

func (s *session) annotator(canonicalOnly bool, workers int) *annotate.Annotator {
	a := annotate.NewAnnotator(s.cache, s.engine)
	a.SetCanonicalOnly(canonicalOnly)
	a.SetWorkers(workers)
	a.SetLogger(s.logger)
	return a
}
