// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package model

import (
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"
)

// TimeIntegration selects the explicit time-integration scheme.
type TimeIntegration string

const CentralDifference TimeIntegration = "CENTRAL_DIFFERENCE"

// AnalysisProperties is the run control written to the Engine deck.
type AnalysisProperties struct {
	TerminationTime float64 `json:"termination_time" yaml:"termination_time"`
	TimeStep        float64 `json:"time_step" yaml:"time_step"`
	TimeStepScale   float64 `json:"time_step_scale" yaml:"time_step_scale"`
	PrintInterval   float64 `json:"print_interval" yaml:"print_interval"`

	// AnimationInterval is the animation output frequency. Zero means the
	// print interval is used.
	AnimationInterval float64 `json:"animation_interval,omitempty" yaml:"animation_interval,omitempty"`

	StressOutput       bool `json:"stress_output" yaml:"stress_output"`
	StrainOutput       bool `json:"strain_output" yaml:"strain_output"`
	DisplacementOutput bool `json:"displacement_output" yaml:"displacement_output"`

	Damping         float64         `json:"damping" yaml:"damping"`
	TimeIntegration TimeIntegration `json:"time_integration" yaml:"time_integration"`
}

// DefaultAnalysisProperties returns the run control used when a deck or
// configuration does not supply one.
func DefaultAnalysisProperties() AnalysisProperties {
	return AnalysisProperties{
		TerminationTime:    1.0,
		TimeStep:           1.0e-6,
		TimeStepScale:      0.9,
		PrintInterval:      0.001,
		StressOutput:       true,
		StrainOutput:       true,
		DisplacementOutput: true,
		TimeIntegration:    CentralDifference,
	}
}

// AnimInterval returns the effective animation output interval.
func (a AnalysisProperties) AnimInterval() float64 {
	if a.AnimationInterval > 0 {
		return a.AnimationInterval
	}
	return a.PrintInterval
}

// ReadAnalysis decodes run control from YAML. Keys missing from the input
// keep their default values.
func ReadAnalysis(r io.Reader) (AnalysisProperties, error) {
	props := DefaultAnalysisProperties()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&props); err != nil && err != io.EOF {
		return AnalysisProperties{}, fmt.Errorf("decoding analysis properties: %w", err)
	}
	return props, nil
}

// ReadAnalysisFile loads run control from a YAML file.
func ReadAnalysisFile(path string) (AnalysisProperties, error) {
	f, err := os.Open(path)
	if err != nil {
		return AnalysisProperties{}, fmt.Errorf("opening analysis file %s: %w", path, err)
	}
	defer f.Close()
	return ReadAnalysis(f)
}
