//go:build mage

// Package main contains Mage build targets for deckconv developer tooling.
package main

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the CLI uses by default.
var projectDirs = []string{
	"decks",
	"out",
	"catalog",
}

// Init creates the default working directories.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "deckconv"
	cmdPkg  = "./cmd/deckconv"
)

// Build compiles the CLI binary into bin/. The catalog needs cgo for
// SQLite.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	env := map[string]string{"CGO_ENABLED": "1"}
	ldflags := "-X main.version=" + strings.TrimSpace(version)
	if err := sh.RunWithV(env, "go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Check vets the code and runs the tests.
func Check() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	mg.Deps(Test)
	return nil
}

// Install builds the binary and copies it into GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", binName), filepath.Join(binDir, binName))
}

// Stats prints non-blank Go lines per package, split into production and
// test code, followed by the documentation word count.
func Stats() error {
	counts, err := countGoLines(".")
	if err != nil {
		return err
	}
	docWords, err := countDocWords("docs")
	if err != nil {
		return err
	}

	pkgs := slices.Sorted(maps.Keys(counts))
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Package", "Production", "Tests"})
	var prod, test int
	for _, pkg := range pkgs {
		c := counts[pkg]
		t.AppendRow(table.Row{pkg, c.prod, c.test})
		prod += c.prod
		test += c.test
	}
	t.AppendFooter(table.Row{"total", prod, test})
	t.Render()

	fmt.Printf("Words (documentation): %d\n", docWords)
	return nil
}

type lineCount struct {
	prod, test int
}

// countGoLines counts non-blank lines of Go files per directory, skipping
// hidden and underscore-prefixed directories the go tool ignores.
func countGoLines(root string) (map[string]lineCount, error) {
	counts := make(map[string]lineCount)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for line := range strings.SplitSeq(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				n++
			}
		}
		dir := filepath.Dir(path)
		c := counts[dir]
		if strings.HasSuffix(path, "_test.go") {
			c.test += n
		} else {
			c.prod += n
		}
		counts[dir] = c
		return nil
	})
	return counts, err
}

// countDocWords counts words in .md and .yaml files under root. A missing
// root counts as zero.
func countDocWords(root string) (int, error) {
	total := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".md", ".yaml", ".yml":
		default:
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
		return nil
	})
	return total, err
}
