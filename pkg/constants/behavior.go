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

package constants

import "time"

const (
	// ColorPickerAttemptFactor bounds the rejection sampling of the color picker:
	// at most ColorPickerAttemptFactor * paletteSize draws are made per pick.
	ColorPickerAttemptFactor = 3

	// MaxColorSchemeSize is the largest palette the usage mask can track (one bit per color).
	MaxColorSchemeSize = 64

	// MaxPetalsOpenLevel is the upper bound for the configured aperture ceiling (percent).
	MaxPetalsOpenLevel = 100

	// DefaultSpeedMillis is the default duration of color and petal transitions.
	DefaultSpeedMillis = 5000

	// DefaultColorBrightness is the default light brightness (0..1).
	DefaultColorBrightness = 0.7

	// DefaultMaxOpenLevel is the default aperture ceiling (percent).
	DefaultMaxOpenLevel = 50

	// RainbowAnimationPeriod is the time the simulated rainbow animation needs for one full hue cycle.
	RainbowAnimationPeriod = 10 * time.Second
)
