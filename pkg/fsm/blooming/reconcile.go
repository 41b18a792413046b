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
	"time"

	"github.com/floower/bloom-core/pkg/metrics"
)

// Tick runs once per control cycle. The base behavior ticks first; then the
// transient postures settle once the device reports it is idle. The three
// checks are independent and run in order; their source states exclude each other.
func (b *BloomingBehavior) Tick(ctx context.Context) {
	start := time.Now()
	defer func() {
		metrics.ObserveReconcileTime(metrics.ComponentBloomingBehavior, b.GetID(), time.Since(start))
	}()

	if ctx.Err() != nil {
		return
	}

	b.base.Tick(ctx, b)

	if b.CurrentState() == StateStandby {
		return
	}

	b.changeStateIfIdle(ctx, StateBloomOpen, EventOpenDone)
	b.changeStateIfIdle(ctx, StateBloomClose, EventCloseDone)
	b.changeStateIfIdle(ctx, StateFade, EventFadeDone)
}

// changeStateIfIdle sends event when the behavior is in from and the device
// finished its transition. No device command is issued.
func (b *BloomingBehavior) changeStateIfIdle(ctx context.Context, from State, event string) {
	if b.CurrentState() != from || !b.device.IsIdle() {
		return
	}

	b.transition(ctx, event, "tick")
}
