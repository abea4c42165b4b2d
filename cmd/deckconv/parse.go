// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pdiddy/deckconv/internal/convert"
	"github.com/pdiddy/deckconv/internal/host"
	"github.com/pdiddy/deckconv/pkg/model"
)

var parseCmd = &cobra.Command{
	Use:   "parse <deck>",
	Short: "Read a deck and report its contents and diagnostics",
	Long: `Parse reads a Radioss Starter deck (.rad) or an LS-DYNA keyword deck
(.k, .key, .dyn) and prints entity counts, unmapped keywords and every
diagnostic found. Use --objects to list the objects a host application
would create on import, or --json for machine-readable output.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

// parseOutput is the --json document.
type parseOutput struct {
	Path        string             `json:"path"`
	Dialect     model.Dialect      `json:"dialect"`
	Counts      model.Summary      `json:"counts"`
	Unmapped    []string           `json:"unmapped,omitempty"`
	Diagnostics []diagnosticOutput `json:"diagnostics,omitempty"`
	Objects     []host.Object      `json:"objects,omitempty"`
}

type diagnosticOutput struct {
	Kind    model.DiagnosticKind `json:"kind"`
	Line    int                  `json:"line,omitempty"`
	Content string               `json:"content,omitempty"`
	Message string               `json:"message"`
}

func runParse(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	showObjects, _ := cmd.Flags().GetBool("objects")

	doc, err := convert.ReadDeck(args[0], logger)
	if err != nil {
		return err
	}

	out := parseOutput{
		Path:     args[0],
		Dialect:  doc.Dialect,
		Counts:   doc.Summary(),
		Unmapped: doc.Unmapped,
	}
	for _, d := range doc.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, diagnosticOutput{
			Kind:    d.Kind,
			Line:    d.Line,
			Content: d.Content,
			Message: d.Message(),
		})
	}
	if showObjects {
		inv := &host.Inventory{}
		if _, err := host.Populate(inv, doc, logger); err != nil {
			return err
		}
		out.Objects = inv.Objects
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	renderParse(os.Stdout, out)
	return nil
}

func renderParse(w io.Writer, out parseOutput) {
	fmt.Fprintf(w, "%s (%s)\n\n", out.Path, out.Dialect)

	counts := table.NewWriter()
	counts.SetOutputMirror(w)
	counts.SetStyle(table.StyleLight)
	counts.AppendHeader(table.Row{"Entity", "Count"})
	c := out.Counts
	counts.AppendRows([]table.Row{
		{"Nodes", c.Nodes},
		{"Elements", c.Elements},
		{"Properties", c.Properties},
		{"Materials", c.Materials},
		{"Sets", c.Sets},
		{"Constraints", c.Constraints},
		{"Loads", c.Loads},
		{"Rigid bodies", c.RigidBodies},
		{"Contacts", c.Contacts},
	})
	counts.Render()

	if len(out.Unmapped) > 0 {
		fmt.Fprintf(w, "\nUnmapped keywords: %v\n", out.Unmapped)
	}

	if len(out.Objects) > 0 {
		fmt.Fprintln(w)
		objs := table.NewWriter()
		objs.SetOutputMirror(w)
		objs.SetStyle(table.StyleLight)
		objs.AppendHeader(table.Row{"#", "Object", "Label", "Size"})
		for i, o := range out.Objects {
			objs.AppendRow(table.Row{i + 1, o.Kind, o.Label, o.Size})
		}
		objs.Render()
	}

	if len(out.Diagnostics) == 0 {
		fmt.Fprintln(w, "\nNo diagnostics.")
		return
	}
	fmt.Fprintln(w)
	diags := table.NewWriter()
	diags.SetOutputMirror(w)
	diags.SetStyle(table.StyleLight)
	diags.AppendHeader(table.Row{"Line", "Kind", "Content", "Message"})
	for _, d := range out.Diagnostics {
		line := ""
		if d.Line > 0 {
			line = fmt.Sprint(d.Line)
		}
		diags.AppendRow(table.Row{line, d.Kind, truncate(d.Content, 40), d.Message})
	}
	diags.Render()
	fmt.Fprintf(w, "\n%d diagnostics\n", len(out.Diagnostics))
}

// truncate shortens s to at most n bytes, marking the cut with "...".
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func init() {
	parseCmd.Flags().Bool("json", false, "output as JSON")
	parseCmd.Flags().Bool("objects", false, "list the host objects an import would create")

	rootCmd.AddCommand(parseCmd)
}
