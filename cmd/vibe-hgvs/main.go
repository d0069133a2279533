// Package main provides the vibe-hgvs command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-hgvs/internal/annotate"
)

// Exit codes
const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitMismatch = 3
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// errMismatch is returned by check when any expectation disagrees.
var errMismatch = errors.New("expected notation does not match")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errMismatch) {
			return ExitMismatch
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "vibe-hgvs",
		Short: "HGVS effect annotation for genomic variants",
		Long: `vibe-hgvs computes the effect of genomic variants on transcripts and
renders it as HGVS coding (c./n.) and protein (p.) notation.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "Config file (default: ~/.vibe-hgvs.yaml)")
	f.BoolP("verbose", "v", false, "Log debug messages")
	f.String("log-level", "info", "Log level: debug, info, warn, error")

	def := annotate.DefaultConfig()
	f.Int64("splice-window", def.SpliceWindow, "Intronic bases on each side of an exon counted as the splice site")
	f.Int64("splice-region-exonic", def.SpliceRegionExonic, "Exonic bases next to an internal boundary counted as splice region")
	f.Int64("splice-region-intronic", def.SpliceRegionIntronic, "Intronic bases from a boundary counted as splice region")
	f.Int64("flank-width", def.FlankWidth, "Upstream/downstream bases annotated outside a transcript")
	f.Int("extension-cap", def.ExtensionCap, "Codons translated past the reference stop when looking for a new stop")
	f.Int("max-edit-length", def.MaxEditLength, "Longest reference or alternate allele accepted")
	f.String("aa-code", def.AACode.String(), "Amino acid code in HGVS.p: three or one")

	bindFlags(f, map[string]string{
		"log.level":                     "log-level",
		"log.verbose":                   "verbose",
		"engine.splice_window":          "splice-window",
		"engine.splice_region_exonic":   "splice-region-exonic",
		"engine.splice_region_intronic": "splice-region-intronic",
		"engine.flank_width":            "flank-width",
		"engine.extension_cap":          "extension-cap",
		"engine.max_edit_length":        "max-edit-length",
		"engine.aa_code":                "aa-code",
	})

	cmd.AddCommand(newAnnotateCmd())
	cmd.AddCommand(newVariantCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newSnapshotCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// bindFlags binds viper keys to flags so that flag > env > config file > default.
func bindFlags(f *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		viper.BindPFlag(key, f.Lookup(name))
	}
}

// initConfig reads the config file and environment.
func initConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.SetConfigFile(filepath.Join(home, ".vibe-hgvs.yaml"))
		}
	}

	viper.SetEnvPrefix("VIBE_HGVS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if cfgFile == "" && (errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("read config: %w", err)
}

// engineConfig assembles the engine settings from viper.
func engineConfig() (annotate.Config, error) {
	code, err := annotate.ParseAACode(viper.GetString("engine.aa_code"))
	if err != nil {
		return annotate.Config{}, err
	}
	cfg := annotate.Config{
		SpliceWindow:         viper.GetInt64("engine.splice_window"),
		SpliceRegionExonic:   viper.GetInt64("engine.splice_region_exonic"),
		SpliceRegionIntronic: viper.GetInt64("engine.splice_region_intronic"),
		FlankWidth:           viper.GetInt64("engine.flank_width"),
		ExtensionCap:         viper.GetInt("engine.extension_cap"),
		MaxEditLength:        viper.GetInt("engine.max_edit_length"),
		AACode:               code,
	}
	return cfg, cfg.Validate()
}

// newLogger builds a console logger on stderr at the configured level.
func newLogger() (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if viper.GetBool("log.verbose") {
		level = zapcore.DebugLevel
	} else if err := level.UnmarshalText([]byte(viper.GetString("log.level"))); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
