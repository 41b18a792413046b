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
	// DefaultTickerTime is the interval between control cycles.
	// The firmware polls its behavior at roughly the same rate; a slower
	// ticker makes idle transitions (open -> bloom) visibly lag behind the petals.
	DefaultTickerTime = 100 * time.Millisecond

	// StarvationThreshold defines when to consider the control loop starved.
	// If no cycle has completed for this duration, the starvation
	// detector will log warnings and record metrics.
	StarvationThreshold = 15 * time.Second

	// StarvationCheckInterval is how often the starvation detector looks at the loop.
	StarvationCheckInterval = time.Second

	// CycleTimeoutFactor bounds a single control cycle to this many ticker intervals.
	CycleTimeoutFactor = 8

	// ExpectedMaxP95ExecutionTimePerEvent is the time a single FSM event is expected to take.
	// Events are refused if the context has less time than this left.
	ExpectedMaxP95ExecutionTimePerEvent = 5 * time.Millisecond

	// DefaultTouchQueueSize is the number of touch events buffered between
	// the touch sensor (or API) and the control loop.
	DefaultTouchQueueSize = 16

	// DefaultInstanceName is the default name of the behavior instance.
	DefaultInstanceName = "floower"
)
