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

package device

import "fmt"

// Animation is a continuous light effect run by the device until stopped.
type Animation int

const (
	AnimationNone Animation = iota
	// AnimationRainbow cycles through the full hue circle.
	AnimationRainbow
)

func (a Animation) String() string {
	switch a {
	case AnimationNone:
		return "none"
	case AnimationRainbow:
		return "rainbow"
	default:
		return fmt.Sprintf("animation(%d)", int(a))
	}
}

// Service is the actuator interface of the flower: petal servo and LEDs.
//
// All commands are fire-and-forget. A command issued while a previous one is
// still running supersedes it. Progress is polled through IsIdle.
type Service interface {
	// TransitionColor fades the light to the given color. Hue, saturation and
	// brightness are fractions in [0, 1].
	TransitionColor(hue, saturation, brightness float64, durationMillis int)

	// TransitionColorBrightness fades the brightness only, keeping hue and saturation.
	TransitionColorBrightness(brightness float64, durationMillis int)

	// SetPetalsOpenLevel moves the petals to level percent open.
	SetPetalsOpenLevel(level int, durationMillis int)

	// StartAnimation starts a continuous light animation.
	StartAnimation(animation Animation)

	// StopAnimation stops the running animation. With keepColor the color
	// shown at that moment stays on, otherwise the previous color is restored.
	StopAnimation(keepColor bool)

	// IsIdle reports whether no transition and no animation is in progress.
	IsIdle() bool
}

// Status is a point in time view of the device outputs.
type Status struct {
	Hue             float64   `json:"hue"`
	Saturation      float64   `json:"saturation"`
	Brightness      float64   `json:"brightness"`
	PetalsOpenLevel float64   `json:"petalsOpenLevel"`
	Animation       Animation `json:"-"`
	AnimationName   string    `json:"animation"`
	Idle            bool      `json:"idle"`
}

// StatusProvider is implemented by devices that can report their outputs.
type StatusProvider interface {
	Status() Status
}
