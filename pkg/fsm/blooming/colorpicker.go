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
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/floower/bloom-core/pkg/config"
	"github.com/floower/bloom-core/pkg/constants"
	"github.com/floower/bloom-core/pkg/logger"
	"github.com/floower/bloom-core/pkg/metrics"
)

// Rand is the randomness source of the color picker. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	// IntN returns a uniform value in [0, n).
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// ColorPicker hands out palette colors in random order without repeating a
// color until every color was used once. Collisions are redrawn a bounded
// number of times, so an unlucky sequence may still repeat a color early.
type ColorPicker struct {
	palette []config.HSBColor

	// used has bit i set when palette[i] was dispensed in the current cycle
	used uint64

	rng      Rand
	instance string
	logger   *zap.SugaredLogger
}

// NewColorPicker creates a picker for a palette of 1 to 64 colors.
func NewColorPicker(instance string, palette []config.HSBColor, rng Rand) (*ColorPicker, error) {
	if len(palette) == 0 {
		return nil, fmt.Errorf("color picker needs at least one color")
	}
	if len(palette) > constants.MaxColorSchemeSize {
		return nil, fmt.Errorf("color picker supports at most %d colors, got %d", constants.MaxColorSchemeSize, len(palette))
	}
	if rng == nil {
		rng = globalRand{}
	}

	return &ColorPicker{
		palette:  palette,
		rng:      rng,
		instance: instance,
		logger:   logger.For(logger.ComponentColorPicker),
	}, nil
}

// FullMask is the usage mask with one bit set per palette color.
func (p *ColorPicker) FullMask() uint64 {
	return ^uint64(0) >> (64 - len(p.palette))
}

// Used returns the current usage mask.
func (p *ColorPicker) Used() uint64 {
	return p.used
}

// Next returns the next color.
func (p *ColorPicker) Next() config.HSBColor {
	return p.palette[p.NextIndex()]
}

// NextIndex returns the palette index of the next color and marks it used.
func (p *ColorPicker) NextIndex() int {
	if p.used > 0 && p.used == p.FullMask() {
		p.used = 0
		metrics.IncColorCycleReset(p.instance)
		p.logger.Debugf("All %d colors used, starting a new cycle", len(p.palette))
	}

	n := len(p.palette)
	maxDraws := constants.ColorPickerAttemptFactor * n

	index := p.rng.IntN(n)
	draws := 1
	for p.used&(uint64(1)<<index) != 0 && draws < maxDraws {
		index = p.rng.IntN(n)
		draws++
	}

	p.used |= uint64(1) << index
	metrics.RecordColorDispensed(p.instance, index, draws-1)

	return index
}
