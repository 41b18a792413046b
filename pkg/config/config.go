// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"

	"github.com/tiendc/go-deepcopy"

	"github.com/floower/bloom-core/pkg/constants"
)

// FullConfig is the complete configuration of a flower agent.
type FullConfig struct {
	Agent    AgentConfig    `yaml:"agent"`
	Behavior BehaviorConfig `yaml:"behavior"`
}

// AgentConfig holds the process level settings.
type AgentConfig struct {
	// Name labels metrics and logs of this flower.
	Name        string `yaml:"name"`
	MetricsPort int    `yaml:"metricsPort"`
	APIPort     int    `yaml:"apiPort"`
}

// HSBColor is a palette entry. Hue and saturation are fractions in [0, 1];
// the brightness comes from BehaviorConfig.ColorBrightness.
type HSBColor struct {
	Hue        float64 `json:"hue" yaml:"hue"`
	Saturation float64 `json:"saturation" yaml:"saturation"`
}

// BehaviorConfig is read by the blooming behavior and never mutated by it.
type BehaviorConfig struct {
	// ColorScheme is the ordered palette the color picker draws from.
	ColorScheme        []HSBColor `json:"colorScheme" yaml:"colorScheme"`
	ColorBrightness    float64    `json:"colorBrightness" yaml:"colorBrightness"`
	SpeedMillis        int        `json:"speedMillis" yaml:"speedMillis"`
	MaxOpenLevel       int        `json:"maxOpenLevel" yaml:"maxOpenLevel"`
	ColorPickerEnabled bool       `json:"colorPickerEnabled" yaml:"colorPickerEnabled"`
}

// DefaultColorScheme is the factory palette: white, yellow, orange, red, pink, purple, blue.
func DefaultColorScheme() []HSBColor {
	return []HSBColor{
		{Hue: 0, Saturation: 0},
		{Hue: 0.13, Saturation: 1},
		{Hue: 0.08, Saturation: 1},
		{Hue: 0, Saturation: 1},
		{Hue: 0.93, Saturation: 0.7},
		{Hue: 0.8, Saturation: 1},
		{Hue: 0.6, Saturation: 1},
	}
}

// DefaultBehaviorConfig returns the factory behavior settings.
func DefaultBehaviorConfig() BehaviorConfig {
	return BehaviorConfig{
		ColorScheme:        DefaultColorScheme(),
		ColorBrightness:    constants.DefaultColorBrightness,
		SpeedMillis:        constants.DefaultSpeedMillis,
		MaxOpenLevel:       constants.DefaultMaxOpenLevel,
		ColorPickerEnabled: true,
	}
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() FullConfig {
	return FullConfig{
		Agent: AgentConfig{
			Name:        constants.DefaultInstanceName,
			MetricsPort: constants.DefaultMetricsPort,
			APIPort:     constants.DefaultAPIPort,
		},
		Behavior: DefaultBehaviorConfig(),
	}
}

// Validate checks the behavior settings. The palette must fit into the
// 64 bit color usage mask.
func (c BehaviorConfig) Validate() error {
	var errs []error

	switch n := len(c.ColorScheme); {
	case n == 0:
		errs = append(errs, errors.New("colorScheme must contain at least one color"))
	case n > constants.MaxColorSchemeSize:
		errs = append(errs, fmt.Errorf("colorScheme has %d colors, at most %d are supported", n, constants.MaxColorSchemeSize))
	}

	for i, color := range c.ColorScheme {
		if color.Hue < 0 || color.Hue > 1 {
			errs = append(errs, fmt.Errorf("colorScheme[%d].hue %v out of range [0, 1]", i, color.Hue))
		}
		if color.Saturation < 0 || color.Saturation > 1 {
			errs = append(errs, fmt.Errorf("colorScheme[%d].saturation %v out of range [0, 1]", i, color.Saturation))
		}
	}

	if c.ColorBrightness < 0 || c.ColorBrightness > 1 {
		errs = append(errs, fmt.Errorf("colorBrightness %v out of range [0, 1]", c.ColorBrightness))
	}

	if c.SpeedMillis <= 0 {
		errs = append(errs, fmt.Errorf("speedMillis must be positive, got %d", c.SpeedMillis))
	}

	if c.MaxOpenLevel < 0 || c.MaxOpenLevel > constants.MaxPetalsOpenLevel {
		errs = append(errs, fmt.Errorf("maxOpenLevel %d out of range [0, %d]", c.MaxOpenLevel, constants.MaxPetalsOpenLevel))
	}

	return errors.Join(errs...)
}

// Validate checks the full configuration.
func (c FullConfig) Validate() error {
	var errs []error

	if c.Agent.Name == "" {
		errs = append(errs, errors.New("agent.name must not be empty"))
	}
	if c.Agent.MetricsPort <= 0 || c.Agent.MetricsPort > 65535 {
		errs = append(errs, fmt.Errorf("agent.metricsPort %d is not a valid port", c.Agent.MetricsPort))
	}
	if c.Agent.APIPort <= 0 || c.Agent.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("agent.apiPort %d is not a valid port", c.Agent.APIPort))
	}

	if err := c.Behavior.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("behavior: %w", err))
	}

	return errors.Join(errs...)
}

// Clone returns a deep copy of the behavior settings so callers can keep it
// without sharing the palette slice.
func (c BehaviorConfig) Clone() BehaviorConfig {
	var clone BehaviorConfig
	if err := deepcopy.Copy(&clone, &c); err != nil {
		// A struct of plain values and a slice of them always copies.
		panic(fmt.Sprintf("failed to clone behavior config: %v", err))
	}

	return clone
}

// Clone returns a deep copy of the config.
func (c FullConfig) Clone() FullConfig {
	var clone FullConfig
	if err := deepcopy.Copy(&clone, &c); err != nil {
		panic(fmt.Sprintf("failed to clone config: %v", err))
	}

	return clone
}
