// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pdiddy/deckconv/internal/catalog"
	"github.com/pdiddy/deckconv/pkg/model"
	"github.com/pdiddy/deckconv/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect recorded conversion runs (runs, list, export)",
	Long: `Catalog reads the SQLite database where convert and watch record each
batch: the decks converted, skipped or failed, their entity counts and
their diagnostics.`,
}

// catalogFlags maps catalog config keys to their flags.
var catalogFlags = map[string]string{
	"catalog.dir": "catalog-dir",
}

// --- runs subcommand ---

var catalogRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent conversion runs",
	RunE:  runCatalogRuns,
}

func runCatalogRuns(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(context.Background(), limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Started", "Output", "Converted", "Skipped", "Failed"})
	for _, r := range runs {
		t.AppendRow(table.Row{r.ID, r.StartedAt.Local().Format(time.DateTime), r.OutputDir, r.Converted, r.Skipped, r.Failed})
	}
	t.Render()
	return nil
}

// --- list subcommand ---

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded decks with filters",
	Long: `List shows recorded decks, newest run first. Filter by run, status,
dialect, a substring of the input path, or the kind of diagnostic a deck
produced.`,
	RunE: runCatalogList,
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Decks(context.Background(), queryOptsFromFlags(cmd))
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(entries)
	}
	if len(entries) == 0 {
		fmt.Println("No decks found.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Deck", "Dialect", "Status", "Nodes", "Elements", "Diagnostics", "Duration"})
	for _, e := range entries {
		t.AppendRow(table.Row{
			e.ID, truncate(e.Path, 50), e.Dialect, e.Status,
			e.Counts.Nodes, e.Counts.Elements, e.Counts.Diagnostics, e.Duration,
		})
	}
	t.Render()
	fmt.Printf("\n%d decks\n", len(entries))
	return nil
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded decks and diagnostics to YAML or JSON",
	Long: `Export writes matching decks with all their diagnostics to export.yaml
or export.json in the catalog directory. It takes the same filters as
list.`,
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd)
	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(context.Background(), opts)
	case "json":
		path, err = store.ExportJSON(context.Background(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}

// --- shared helpers ---

func openCatalog(cmd *cobra.Command) (*catalog.Store, error) {
	if err := bindFlags(cmd, catalogFlags); err != nil {
		return nil, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return catalog.NewStore(cfg.Catalog)
}

func queryOptsFromFlags(cmd *cobra.Command) catalog.QueryOptions {
	runID, _ := cmd.Flags().GetString("run")
	status, _ := cmd.Flags().GetString("status")
	dialect, _ := cmd.Flags().GetString("dialect")
	path, _ := cmd.Flags().GetString("path")
	kind, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")

	return catalog.QueryOptions{
		RunID:      runID,
		Status:     types.DeckStatus(status),
		Dialect:    model.Dialect(dialect),
		Path:       path,
		Kind:       model.DiagnosticKind(kind),
		MaxResults: limit,
	}
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	catalogCmd.PersistentFlags().String("catalog-dir", "catalog", "directory holding catalog.db")

	catalogRunsCmd.Flags().Int("limit", 0, "maximum number of runs (default from config)")
	catalogRunsCmd.Flags().Bool("json", false, "output as JSON")

	for _, c := range []*cobra.Command{catalogListCmd, catalogExportCmd} {
		c.Flags().String("run", "", "filter by run ID")
		c.Flags().String("status", "", "filter by status: converted, skipped, failed")
		c.Flags().String("dialect", "", "filter by dialect: radioss, lsdyna")
		c.Flags().String("path", "", "filter by a substring of the deck path")
		c.Flags().String("kind", "", "only decks with a diagnostic of this kind")
	}
	catalogListCmd.Flags().Int("limit", 0, "maximum number of decks (default from config)")
	catalogListCmd.Flags().Bool("json", false, "output as JSON")
	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	catalogCmd.AddCommand(catalogRunsCmd, catalogListCmd, catalogExportCmd)
	rootCmd.AddCommand(catalogCmd)
}
