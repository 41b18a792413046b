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

package fsmtest

import (
	"context"
	"fmt"

	"github.com/floower/bloom-core/pkg/config"
	"github.com/floower/bloom-core/pkg/fsm/blooming"
	"github.com/floower/bloom-core/pkg/service/device"
)

// BehaviorTicker is any behavior that can be ticked and reports its state.
type BehaviorTicker interface {
	Tick(ctx context.Context)
	CurrentState() blooming.State
}

// BehaviorToucher is a BehaviorTicker that also takes touch events.
type BehaviorToucher interface {
	BehaviorTicker
	HandleTouch(ctx context.Context, event blooming.TouchEvent) bool
}

// CreateBloomingTestConfig returns a small palette with short transitions.
func CreateBloomingTestConfig() config.BehaviorConfig {
	return config.BehaviorConfig{
		ColorScheme: []config.HSBColor{
			{Hue: 0.1, Saturation: 0.9},
			{Hue: 0.4, Saturation: 0.8},
			{Hue: 0.7, Saturation: 1},
		},
		ColorBrightness:    0.5,
		SpeedMillis:        200,
		MaxOpenLevel:       60,
		ColorPickerEnabled: true,
	}
}

// SetupBloomingBehavior creates a behavior on a mock device with the default base.
func SetupBloomingBehavior(id string, cfg config.BehaviorConfig) (*blooming.BloomingBehavior, *device.MockService, error) {
	mockDevice := device.NewMockService()

	behavior, err := blooming.NewBloomingBehavior(id, cfg, mockDevice, blooming.DefaultBase{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create behavior %s: %w", id, err)
	}

	return behavior, mockDevice, nil
}

// WaitForBloomingState ticks the behavior until it reaches the desired state.
// It returns the number of ticks it took.
func WaitForBloomingState(ctx context.Context, behavior BehaviorTicker, desiredState blooming.State, maxAttempts int) (int, error) {
	for i := 0; i < maxAttempts; i++ {
		if behavior.CurrentState() == desiredState {
			return i, nil
		}

		if err := ctx.Err(); err != nil {
			return i, err
		}

		behavior.Tick(ctx)
	}

	if behavior.CurrentState() == desiredState {
		return maxAttempts, nil
	}

	return maxAttempts, fmt.Errorf("behavior failed to reach state %s after %d attempts, current state: %s",
		desiredState, maxAttempts, behavior.CurrentState())
}

// VerifyBloomingStableState ensures the behavior stays in the expected state
// over numCycles ticks.
func VerifyBloomingStableState(ctx context.Context, behavior BehaviorTicker, expectedState blooming.State, numCycles int) error {
	if behavior.CurrentState() != expectedState {
		return fmt.Errorf("behavior is not in expected state %s; actual: %s", expectedState, behavior.CurrentState())
	}

	for i := 0; i < numCycles; i++ {
		behavior.Tick(ctx)

		if behavior.CurrentState() != expectedState {
			return fmt.Errorf("state changed from %s to %s during cycle %d/%d",
				expectedState, behavior.CurrentState(), i+1, numCycles)
		}
	}

	return nil
}

// TouchStep is one gesture edge and the state expected right after it.
type TouchStep struct {
	Event         blooming.TouchEvent
	ExpectedState blooming.State
}

// ApplyTouchSequence feeds the steps to the behavior and stops at the first
// step whose resulting state does not match.
func ApplyTouchSequence(ctx context.Context, behavior BehaviorToucher, steps []TouchStep) error {
	for i, step := range steps {
		behavior.HandleTouch(ctx, step.Event)

		if behavior.CurrentState() != step.ExpectedState {
			return fmt.Errorf("step %d (%s): expected state %s, got %s",
				i+1, step.Event, step.ExpectedState, behavior.CurrentState())
		}
	}

	return nil
}
