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

	"github.com/floower/bloom-core/pkg/env"
)

// Environment variables that override file values.
const (
	EnvColorPicker     = "FLOOWER_COLOR_PICKER"
	EnvSpeedMillis     = "FLOOWER_SPEED_MILLIS"
	EnvMaxOpenLevel    = "FLOOWER_MAX_OPEN_LEVEL"
	EnvColorBrightness = "FLOOWER_COLOR_BRIGHTNESS"
	EnvInstanceName    = "FLOOWER_NAME"
)

// ApplyEnvOverrides returns a copy of config with every set override applied.
//
// Order of precedence (highest to lowest):
// 1. Environment variables
// 2. Config file values
// 3. Defaults
//
// A variable that is set but cannot be parsed is an error rather than being
// silently ignored.
func ApplyEnvOverrides(config FullConfig) (FullConfig, error) {
	result := config.Clone()

	var errs []error
	var err error

	result.Agent.Name, err = env.GetAsString(EnvInstanceName, false, result.Agent.Name)
	errs = append(errs, err)

	result.Behavior.ColorPickerEnabled, err = env.GetAsBool(EnvColorPicker, false, result.Behavior.ColorPickerEnabled)
	errs = append(errs, err)

	result.Behavior.SpeedMillis, err = env.GetAsInt(EnvSpeedMillis, false, result.Behavior.SpeedMillis)
	errs = append(errs, err)

	result.Behavior.MaxOpenLevel, err = env.GetAsInt(EnvMaxOpenLevel, false, result.Behavior.MaxOpenLevel)
	errs = append(errs, err)

	result.Behavior.ColorBrightness, err = env.GetAsFloat(EnvColorBrightness, false, result.Behavior.ColorBrightness)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return FullConfig{}, err
	}

	return result, nil
}
