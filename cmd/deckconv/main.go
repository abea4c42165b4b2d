// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the deckconv CLI. Each pipeline
// stage is a subcommand: parse, convert, export, catalog and watch.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deckconv/internal/logging"
	"github.com/pdiddy/deckconv/pkg/model"
	"github.com/pdiddy/deckconv/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured in the root command's PersistentPreRunE.
var logger = logging.NewNop()

// rootCmd is the base command for the deckconv CLI.
var rootCmd = &cobra.Command{
	Use:   "deckconv",
	Short: "Read, convert and write Radioss and LS-DYNA input decks",
	Long: `deckconv reads Radioss Starter decks and LS-DYNA keyword decks into one
finite-element model, converts LS-DYNA models to Radioss, and writes
Radioss Starter (.rad) and Engine (.D00) decks.

Batch conversions are recorded in a local SQLite catalog so past runs
and their diagnostics can be listed and exported.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(viper.GetString("log_level"))
		if err != nil {
			return err
		}
		logger = logging.New(level, os.Stderr)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.SetVersionTemplate("deckconv {{.Version}}\n")

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./deckconv.yaml or ~/.config/deckconv/deckconv.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads the optional config file. Settings come only from the
// file and flags; the environment is not consulted.
func initConfig() {
	def := types.DefaultConfig()
	viper.SetDefault("log_level", def.LogLevel)
	viper.SetDefault("convert.output_dir", def.Convert.OutputDir)
	viper.SetDefault("convert.workers", def.Convert.Workers)
	viper.SetDefault("catalog.dir", def.Catalog.Dir)
	viper.SetDefault("catalog.max_results", def.Catalog.MaxResults)

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("deckconv")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "deckconv"))
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the effective configuration from defaults, the
// config file and bound flags.
func loadConfig() (types.Config, error) {
	cfg := types.Config{
		LogLevel: viper.GetString("log_level"),
		Convert: types.ConvertConfig{
			WriterConfig: types.WriterConfig{
				Atomic:  viper.GetBool("convert.atomic"),
				RunName: viper.GetString("convert.run_name"),
			},
			OutputDir: viper.GetString("convert.output_dir"),
			Workers:   viper.GetInt("convert.workers"),
			Overwrite: viper.GetBool("convert.overwrite"),
		},
		Catalog: types.CatalogConfig{
			Dir:        viper.GetString("catalog.dir"),
			MaxResults: viper.GetInt("catalog.max_results"),
		},
	}
	if path := viper.GetString("convert.analysis"); path != "" {
		props, err := model.ReadAnalysisFile(path)
		if err != nil {
			return cfg, err
		}
		cfg.Convert.Analysis = &props
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
