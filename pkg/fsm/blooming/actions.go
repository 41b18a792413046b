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

package blooming

import (
	"github.com/floower/bloom-core/pkg/service/device"
)

// lightUp shows the next palette color, petals untouched.
func (b *BloomingBehavior) lightUp() {
	color := b.picker.Next()
	b.logger.Debugf("Lighting up with hue %.2f saturation %.2f", color.Hue, color.Saturation)
	b.device.TransitionColor(color.Hue, color.Saturation, b.config.ColorBrightness, b.config.SpeedMillis)
}

func (b *BloomingBehavior) openPetals() {
	b.device.SetPetalsOpenLevel(b.config.MaxOpenLevel, b.config.SpeedMillis)
}

func (b *BloomingBehavior) closePetals() {
	b.device.SetPetalsOpenLevel(0, b.config.SpeedMillis)
}

// fadeOut turns the light off twice as fast as the other transitions.
func (b *BloomingBehavior) fadeOut() {
	b.device.TransitionColorBrightness(0, b.config.SpeedMillis/2)
}

func (b *BloomingBehavior) startPicker() {
	b.device.StartAnimation(device.AnimationRainbow)
	b.preventTouchUp = true
}

// confirmPicker stops the rainbow on the color currently shown.
func (b *BloomingBehavior) confirmPicker() {
	b.device.StopAnimation(true)
	b.preventTouchUp = true
}
