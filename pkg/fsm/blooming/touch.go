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

	"github.com/floower/bloom-core/pkg/metrics"
)

// HandleTouch offers the event to the base behavior first and then applies
// the blooming dispatch table. It returns whether any layer consumed the event.
func (b *BloomingBehavior) HandleTouch(ctx context.Context, event TouchEvent) bool {
	if ctx.Err() != nil {
		return false
	}

	if b.base.HandleTouch(ctx, b, event) {
		metrics.RecordTouchEvent(b.GetID(), event.String(), metrics.HandledByBase)
		b.logger.Debugf("Touch %s handled by base behavior", event)

		return true
	}

	var handled bool

	switch event {
	case TouchDown:
		handled = b.onTouchDown(ctx)
	case TouchUp:
		handled = b.onTouchUp(ctx)
	case TouchLongPress:
		handled = b.onLongPress(ctx)
	}

	if handled {
		metrics.RecordTouchEvent(b.GetID(), event.String(), metrics.HandledByBlooming)
	} else {
		metrics.RecordTouchEvent(b.GetID(), event.String(), metrics.HandledByNone)
		b.logger.Debugf("Touch %s ignored in state %s", event, b.CurrentState())
	}

	return handled
}

func (b *BloomingBehavior) onTouchDown(ctx context.Context) bool {
	switch b.CurrentState() {
	case StateStandby:
		if !b.transition(ctx, EventLight, "touch_down") {
			return false
		}
		b.lightUp()

		return true

	case StateBloomPicker, StateLightPicker:
		if !b.transition(ctx, EventPickerConfirm, "touch_down") {
			return false
		}
		b.confirmPicker()

		return true

	default:
		return false
	}
}

func (b *BloomingBehavior) onTouchUp(ctx context.Context) bool {
	switch b.CurrentState() {
	case StateStandby:
		if !b.transition(ctx, EventOpen, "touch_up") {
			return false
		}
		b.lightUp()
		b.openPetals()

		return true

	case StateBloomLight:
		if !b.transition(ctx, EventOpen, "touch_up") {
			return false
		}
		b.openPetals()

		return true

	case StateBloom:
		if !b.transition(ctx, EventClose, "touch_up") {
			return false
		}
		b.closePetals()

		return true

	case StateLight:
		if !b.transition(ctx, EventFade, "touch_up") {
			return false
		}
		b.fadeOut()

		return true

	default:
		return false
	}
}

func (b *BloomingBehavior) onLongPress(ctx context.Context) bool {
	if !b.config.ColorPickerEnabled {
		return false
	}

	switch b.CurrentState() {
	case StateStandby, StateBloomLight, StateLight:
		if !b.transition(ctx, EventStartLightPicker, "long_press") {
			return false
		}
		b.startPicker()

		return true

	case StateBloom:
		if !b.transition(ctx, EventStartBloomPicker, "long_press") {
			return false
		}
		b.startPicker()

		return true

	default:
		return false
	}
}
