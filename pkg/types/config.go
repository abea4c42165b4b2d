package types

import "github.com/pdiddy/deckconv/pkg/model"

// WriterConfig holds settings for writing Radioss decks.
type WriterConfig struct {
	// Atomic writes each deck to a temporary file and renames it into
	// place on success, so a failed write never leaves a partial deck.
	Atomic bool `json:"atomic" yaml:"atomic"`

	// RunName overrides the /RUN name in the Engine deck. Empty means the
	// Starter file's base name.
	RunName string `json:"run_name,omitempty" yaml:"run_name,omitempty"`
}

// ConvertConfig holds settings for batch deck conversion.
type ConvertConfig struct {
	WriterConfig `yaml:",inline"`

	// OutputDir receives <base>.rad and <base>.D00 for each input deck.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Workers bounds how many decks are converted at once (default 4).
	Workers int `json:"workers" yaml:"workers"`

	// Overwrite re-converts decks whose Starter output already exists.
	Overwrite bool `json:"overwrite" yaml:"overwrite"`

	// Analysis is the run control written to Engine decks for models that
	// carry none of their own. Nil means model.DefaultAnalysisProperties.
	Analysis *model.AnalysisProperties `json:"analysis,omitempty" yaml:"analysis,omitempty"`
}

// CatalogConfig holds settings for the conversion catalog.
type CatalogConfig struct {
	// Dir is the directory holding catalog.db.
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of listed decks (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// Config groups every configurable part of deckconv.
type Config struct {
	Convert  ConvertConfig `json:"convert" yaml:"convert"`
	Catalog  CatalogConfig `json:"catalog" yaml:"catalog"`
	LogLevel string        `json:"log_level" yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no config file sets a value.
func DefaultConfig() Config {
	return Config{
		Convert: ConvertConfig{
			OutputDir: "out",
			Workers:   4,
		},
		Catalog: CatalogConfig{
			Dir:        "catalog",
			MaxResults: 20,
		},
		LogLevel: "info",
	}
}
