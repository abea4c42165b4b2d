package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deckconv/internal/catalog"
	"github.com/pdiddy/deckconv/internal/convert"
	"github.com/pdiddy/deckconv/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [decks or directories...]",
	Short: "Convert decks to Radioss Starter and Engine decks",
	Long: `Convert reads each LS-DYNA or Radioss deck, maps LS-DYNA keywords to their
Radioss equivalents, and writes <name>.rad and <name>.D00 into the output
directory. Directories are searched recursively for deck files.

Decks whose output already exists are skipped unless --overwrite is set.
One failing deck never stops the others. Every run is recorded in the
catalog unless --no-catalog is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

// convertFlags maps config keys to the convert and watch flags that
// override them.
var convertFlags = map[string]string{
	"convert.output_dir": "output-dir",
	"convert.workers":    "workers",
	"convert.overwrite":  "overwrite",
	"convert.atomic":     "atomic",
	"convert.run_name":   "run-name",
	"convert.analysis":   "analysis",
}

// bindFlags binds the flags of the running command to their config keys.
// Binding happens at run time because convert and watch share keys.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, name := range keys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, convertFlags); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	paths, err := convert.DeckFiles(args, cfg.Convert.OutputDir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no decks found in %v", args)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	started := time.Now()
	result, runErr := convert.ConvertFiles(ctx, paths, cfg.Convert, os.Stdout, logger)

	noCatalog, _ := cmd.Flags().GetBool("no-catalog")
	if !noCatalog {
		if err := recordRun(cfg, started, result.Reports); err != nil {
			logger.Warn("run not recorded", "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	if result.HasFailures() {
		return fmt.Errorf("%d deck(s) failed conversion", result.Failed)
	}
	return nil
}

// recordRun stores a finished batch in the catalog.
func recordRun(cfg types.Config, started time.Time, reports []types.DeckReport) error {
	store, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Record(context.Background(), cfg.Convert.OutputDir, started, reports)
	if err != nil {
		return err
	}
	logger.Info("run recorded", "run", run.ID, "decks", len(reports))
	return nil
}

// addConvertFlags registers the flags shared by convert and watch.
func addConvertFlags(cmd *cobra.Command) {
	cmd.Flags().String("output-dir", "out", "directory receiving .rad and .D00 decks")
	cmd.Flags().Int("workers", 4, "number of decks converted at once")
	cmd.Flags().Bool("atomic", false, "write each deck to a temporary file and rename it into place")
	cmd.Flags().String("run-name", "", "override the /RUN name in Engine decks")
	cmd.Flags().String("analysis", "", "YAML file with run control for decks that carry none")
	cmd.Flags().Bool("no-catalog", false, "do not record runs in the catalog")
}

func init() {
	addConvertFlags(convertCmd)
	convertCmd.Flags().Bool("overwrite", false, "re-convert decks whose output already exists")

	rootCmd.AddCommand(convertCmd)
}
