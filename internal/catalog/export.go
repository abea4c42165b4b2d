// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// ExportYAML writes matching decks with their diagnostics to
// <dir>/export.yaml and returns the path written.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) (string, error) {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.dir, "export.yaml")
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes matching decks with their diagnostics to
// <dir>/export.json and returns the path written.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) (string, error) {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	path := filepath.Join(s.dir, "export.json")
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]DeckEntry, error) {
	opts.MaxResults = exportLimit
	entries, err := s.Decks(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	for i := range entries {
		diags, err := s.Diagnostics(ctx, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Diagnostics = diags
	}
	return entries, nil
}
