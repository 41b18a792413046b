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

import "context"

// Posture is what a Base sees of the behavior it sits under.
type Posture interface {
	CurrentState() State

	// EnterStandby moves the behavior to StateStandby from any state.
	EnterStandby(ctx context.Context) error

	// ConsumePreventTouchUp reports whether the last gesture was already
	// consumed and clears the flag.
	ConsumePreventTouchUp() bool
}

// Base is the parent behavior. It is offered every tick and touch first.
type Base interface {
	Tick(ctx context.Context, posture Posture)

	// HandleTouch returns true if the base consumed the event.
	HandleTouch(ctx context.Context, posture Posture, event TouchEvent) bool

	CanEnableRadio(posture Posture) bool
}

// DefaultBase is the minimal parent behavior. It swallows the release that
// follows a consumed gesture so it does not trigger a transition of its own.
type DefaultBase struct{}

var _ Base = DefaultBase{}

func (DefaultBase) Tick(context.Context, Posture) {}

func (DefaultBase) HandleTouch(_ context.Context, posture Posture, event TouchEvent) bool {
	return event == TouchUp && posture.ConsumePreventTouchUp()
}

func (DefaultBase) CanEnableRadio(Posture) bool {
	return false
}
