// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"time"

	"github.com/pdiddy/deckconv/pkg/model"
)

// DeckStatus indicates the outcome of converting one deck.
type DeckStatus string

const (
	DeckConverted DeckStatus = "converted"
	DeckSkipped   DeckStatus = "skipped"
	DeckFailed    DeckStatus = "failed"
)

// DeckReport records what happened to one input deck during a batch.
type DeckReport struct {
	// Path is the input deck path.
	Path string `json:"path" yaml:"path"`

	// Dialect is the detected input dialect.
	Dialect model.Dialect `json:"dialect" yaml:"dialect"`

	// Status is the conversion outcome.
	Status DeckStatus `json:"status" yaml:"status"`

	// Starter and Engine are the written output paths; empty when the
	// corresponding file was not written.
	Starter string `json:"starter,omitempty" yaml:"starter,omitempty"`
	Engine  string `json:"engine,omitempty" yaml:"engine,omitempty"`

	// Counts summarizes the converted model.
	Counts model.Summary `json:"counts" yaml:"counts"`

	// Diagnostics lists every problem found while reading, converting
	// and writing the deck.
	Diagnostics []model.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`

	// Error is the failure message when Status is DeckFailed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Duration is the wall time spent on the deck.
	Duration time.Duration `json:"duration" yaml:"duration"`
}
