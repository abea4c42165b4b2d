// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deckconv/internal/convert"
	"github.com/pdiddy/deckconv/internal/radioss"
	"github.com/pdiddy/deckconv/pkg/model"
	"github.com/pdiddy/deckconv/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export <deck>",
	Short: "Write one deck as a Radioss Starter and Engine pair",
	Long: `Export reads a single deck of either dialect and writes it as a Radioss
Starter deck plus the matching Engine deck. Run control comes from
--analysis when given, otherwise from the deck itself, otherwise from the
defaults. Unlike convert, export always overwrites its output and is not
recorded in the catalog.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	analysisFile, _ := cmd.Flags().GetString("analysis")
	runName, _ := cmd.Flags().GetString("run-name")
	atomic, _ := cmd.Flags().GetBool("atomic")

	if output == "" {
		output = convert.StarterPath(args[0], ".")
	}
	if same, err := sameFile(output, args[0]); err == nil && same {
		return fmt.Errorf("output %s would overwrite the input deck", output)
	}

	src, err := convert.ReadDeck(args[0], logger)
	if err != nil {
		return err
	}
	doc := convert.NewConverter(logger).Convert(src)

	switch {
	case analysisFile != "":
		props, err := model.ReadAnalysisFile(analysisFile)
		if err != nil {
			return err
		}
		doc.Analysis = &props
	case doc.Analysis == nil:
		props := model.DefaultAnalysisProperties()
		doc.Analysis = &props
	}

	w := radioss.NewWriter(types.WriterConfig{Atomic: atomic, RunName: runName}, logger)
	if err := w.Export(output, doc); err != nil {
		return err
	}

	fmt.Printf("Wrote %s and %s\n", output, radioss.EnginePath(output))
	if n := len(doc.Diagnostics); n > 0 {
		fmt.Fprintf(os.Stderr, "%d diagnostics (run parse for details)\n", n)
	}
	return nil
}

func sameFile(a, b string) (bool, error) {
	ai, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	return os.SameFile(ai, bi), nil
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Starter deck to write (default: <deck name>.rad in the current directory)")
	exportCmd.Flags().String("analysis", "", "YAML file with run control")
	exportCmd.Flags().String("run-name", "", "override the /RUN name in the Engine deck")
	exportCmd.Flags().Bool("atomic", false, "write through a temporary file renamed into place")

	rootCmd.AddCommand(exportCmd)
}
