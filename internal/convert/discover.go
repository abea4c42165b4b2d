// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pdiddy/deckconv/internal/deck"
)

// IsDeck reports whether path has a deck extension of either dialect.
func IsDeck(path string) bool {
	_, ok := deck.DetectDialect(path)
	return ok
}

// DeckFiles expands paths into the deck files to convert. Directories are
// walked recursively and contribute only files with a deck extension, in
// lexical order; hidden directories and the skip directory are not
// entered. Plain file arguments are kept as given so that a wrong
// extension is reported by the batch instead of being dropped silently.
func DeckFiles(paths []string, skip string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && (d.Name()[0] == '.' || (skip != "" && same(path, skip))) {
					return filepath.SkipDir
				}
				return nil
			}
			if IsDeck(path) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", p, err)
		}
	}
	return out, nil
}
