package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-hgvs/internal/annotate"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-hgvs configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.vibe-hgvs.yaml.",
		Example: `  vibe-hgvs config                              # show all config
  vibe-hgvs config set engine.aa_code one         # one-letter HGVS.p
  vibe-hgvs config set transcripts /data/tx.duckdb
  vibe-hgvs config get engine.flank_width         # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), args[0])
		},
	}
}

func runConfigShow(w io.Writer) error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintln(w, "# No configuration set. Config file: ~/.vibe-hgvs.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(w, string(out))
	return nil
}

func runConfigSet(w io.Writer, key, value string) error {
	key = strings.ToLower(key)
	if strings.HasPrefix(key, "engine.") {
		if err := checkEngineSetting(key, value); err != nil {
			return err
		}
	}

	// Parse boolean-like and numeric values
	switch value {
	case "true", "yes", "on":
		viper.Set(key, true)
	case "false", "no", "off":
		viper.Set(key, false)
	default:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			viper.Set(key, n)
		} else {
			viper.Set(key, value)
		}
	}

	// Ensure config file exists
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".vibe-hgvs.yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(w, "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(w io.Writer, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(w, val)
	return nil
}

// checkEngineSetting rejects engine values the annotate commands would
// refuse at startup, so a bad value never reaches the config file.
func checkEngineSetting(key, value string) error {
	name := strings.TrimPrefix(key, "engine.")
	if name == "aa_code" {
		_, err := annotate.ParseAACode(value)
		return err
	}

	cfg := annotate.DefaultConfig()
	var field *int64
	var small *int
	switch name {
	case "splice_window":
		field = &cfg.SpliceWindow
	case "splice_region_exonic":
		field = &cfg.SpliceRegionExonic
	case "splice_region_intronic":
		field = &cfg.SpliceRegionIntronic
	case "flank_width":
		field = &cfg.FlankWidth
	case "extension_cap":
		small = &cfg.ExtensionCap
	case "max_edit_length":
		small = &cfg.MaxEditLength
	default:
		return fmt.Errorf("unknown engine setting %q", key)
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("%s expects an integer, got %q", key, value)
	}
	if field != nil {
		*field = n
	} else {
		*small = int(n)
	}
	return cfg.Validate()
}
