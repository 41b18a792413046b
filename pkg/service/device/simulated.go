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

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/floower/bloom-core/pkg/constants"
	"github.com/floower/bloom-core/pkg/logger"
)

// ramp is a linear transition of one output value.
type ramp struct {
	from, to float64
	start    time.Time
	duration time.Duration
}

func (r ramp) valueAt(now time.Time) float64 {
	if r.duration <= 0 || !now.Before(r.start.Add(r.duration)) {
		return r.to
	}
	if now.Before(r.start) {
		return r.from
	}

	progress := float64(now.Sub(r.start)) / float64(r.duration)

	return r.from + (r.to-r.from)*progress
}

func (r ramp) doneAt(now time.Time) bool {
	return !now.Before(r.start.Add(r.duration))
}

// SimulatedService is an in-memory flower. Transitions progress with the
// injected clock, so tests can move time forward without sleeping.
type SimulatedService struct {
	mu  sync.Mutex
	now func() time.Time

	hue, saturation ramp
	brightness      ramp
	petals          ramp

	animation      Animation
	animationStart time.Time
	// animationHue is the hue the rainbow started from
	animationHue float64
	// restoreBrightness is the brightness before the animation started
	restoreBrightness float64

	logger *zap.SugaredLogger
}

var (
	_ Service        = (*SimulatedService)(nil)
	_ StatusProvider = (*SimulatedService)(nil)
)

// NewSimulatedService creates a simulated device driven by the wall clock.
func NewSimulatedService() *SimulatedService {
	return NewSimulatedServiceWithClock(time.Now)
}

// NewSimulatedServiceWithClock creates a simulated device driven by now.
func NewSimulatedServiceWithClock(now func() time.Time) *SimulatedService {
	return &SimulatedService{
		now:    now,
		logger: logger.For(logger.ComponentDeviceService),
	}
}

// WithLogger replaces the logger, mainly for tests.
func (s *SimulatedService) WithLogger(log *zap.SugaredLogger) *SimulatedService {
	s.logger = log

	return s
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func millis(durationMillis int) time.Duration {
	if durationMillis <= 0 {
		return 0
	}

	return time.Duration(durationMillis) * time.Millisecond
}

// retarget starts a new ramp from the current value of r.
func retarget(r ramp, to float64, now time.Time, duration time.Duration) ramp {
	return ramp{from: r.valueAt(now), to: to, start: now, duration: duration}
}

// TransitionColor implements Service.
func (s *SimulatedService) TransitionColor(hue, saturation, brightness float64, durationMillis int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	d := millis(durationMillis)

	s.hue = retarget(s.hue, clamp(hue, 0, 1), now, d)
	s.saturation = retarget(s.saturation, clamp(saturation, 0, 1), now, d)
	s.brightness = retarget(s.brightness, clamp(brightness, 0, 1), now, d)

	s.logger.Debugf("Transition color to h=%.2f s=%.2f b=%.2f in %s", hue, saturation, brightness, d)
}

// TransitionColorBrightness implements Service.
func (s *SimulatedService) TransitionColorBrightness(brightness float64, durationMillis int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := millis(durationMillis)
	s.brightness = retarget(s.brightness, clamp(brightness, 0, 1), s.now(), d)

	s.logger.Debugf("Transition brightness to %.2f in %s", brightness, d)
}

// SetPetalsOpenLevel implements Service.
func (s *SimulatedService) SetPetalsOpenLevel(level int, durationMillis int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := millis(durationMillis)
	s.petals = retarget(s.petals, clamp(float64(level), 0, constants.MaxPetalsOpenLevel), s.now(), d)

	s.logger.Debugf("Set petals open level to %d in %s", level, d)
}

// StartAnimation implements Service. The rainbow runs at the current
// brightness, or the default brightness if the light is off.
func (s *SimulatedService) StartAnimation(animation Animation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.animation = animation
	s.animationStart = now
	s.animationHue = s.hue.valueAt(now)
	s.restoreBrightness = s.brightness.valueAt(now)

	if s.restoreBrightness == 0 {
		s.brightness = ramp{to: constants.DefaultColorBrightness, start: now}
	}

	s.logger.Debugf("Start animation %s", animation)
}

// StopAnimation implements Service.
func (s *SimulatedService) StopAnimation(keepColor bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.animation == AnimationNone {
		return
	}

	now := s.now()
	if keepColor {
		s.hue = ramp{to: s.rainbowHueAt(now), start: now}
		s.saturation = ramp{to: 1, start: now}
	} else {
		s.brightness = ramp{to: s.restoreBrightness, start: now}
	}
	s.animation = AnimationNone

	s.logger.Debugf("Stop animation, keep color: %t", keepColor)
}

// IsIdle implements Service.
func (s *SimulatedService) IsIdle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.idleAt(s.now())
}

// Status implements StatusProvider.
func (s *SimulatedService) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	status := Status{
		Hue:             s.hue.valueAt(now),
		Saturation:      s.saturation.valueAt(now),
		Brightness:      s.brightness.valueAt(now),
		PetalsOpenLevel: s.petals.valueAt(now),
		Animation:       s.animation,
		AnimationName:   s.animation.String(),
		Idle:            s.idleAt(now),
	}

	if s.animation == AnimationRainbow {
		status.Hue = s.rainbowHueAt(now)
		status.Saturation = 1
	}

	return status
}

func (s *SimulatedService) idleAt(now time.Time) bool {
	if s.animation != AnimationNone {
		return false
	}

	return s.hue.doneAt(now) && s.saturation.doneAt(now) && s.brightness.doneAt(now) && s.petals.doneAt(now)
}

func (s *SimulatedService) rainbowHueAt(now time.Time) float64 {
	elapsed := now.Sub(s.animationStart)
	turns := float64(elapsed) / float64(constants.RainbowAnimationPeriod)

	_, frac := math.Modf(s.animationHue + turns)

	return frac
}
