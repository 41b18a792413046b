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
	"context"

	"github.com/looplab/fsm"

	"github.com/floower/bloom-core/pkg/metrics"
)

// registerCallbacks logs every state entry and exports transitions as metrics.
func (instance *BloomingBehavior) registerCallbacks() {
	for _, state := range AllStates() {
		name := state.String()
		instance.baseFSMInstance.AddCallback("enter_"+name, func(ctx context.Context, e *fsm.Event) {
			instance.logger.Infof("Entering %s state for %s (from %s via %s)", name, instance.baseFSMInstance.GetID(), e.Src, e.Event)
		})
	}

	instance.baseFSMInstance.AddTransitionHook(func(ctx context.Context, event, from, to string) {
		toState := statesByName[to]
		metrics.RecordStateTransition(instance.baseFSMInstance.GetID(), from, to, int(toState))
	})
}
