// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deckconv/internal/convert"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directories...]",
	Short: "Re-convert decks whenever they change",
	Long: `Watch monitors directories for new or modified deck files and converts
them as they change, replacing earlier output. Changes made in quick
succession are converted together. The output directory is never
watched. Each batch is recorded in the catalog unless --no-catalog is
given. Stop with Ctrl-C.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, convertFlags); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	noCatalog, _ := cmd.Flags().GetBool("no-catalog")
	debounce, _ := cmd.Flags().GetDuration("debounce")

	w, err := convert.NewWatcher(cfg.Convert, logger)
	if err != nil {
		return err
	}
	defer w.Close()
	w.SetDebounce(debounce)

	for _, dir := range args {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Watching %v (output: %s)\n", args, cfg.Convert.OutputDir)
	started := time.Now()
	return w.Run(ctx, os.Stdout, func(result convert.BatchResult) {
		if !noCatalog {
			if err := recordRun(cfg, started, result.Reports); err != nil {
				logger.Warn("run not recorded", "error", err)
			}
		}
		started = time.Now()
	})
}

func init() {
	addConvertFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", convert.DefaultDebounce, "quiet period before converting changed decks")

	rootCmd.AddCommand(watchCmd)
}
