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
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	internal_fsm "github.com/floower/bloom-core/internal/fsm"
	"github.com/floower/bloom-core/pkg/config"
	"github.com/floower/bloom-core/pkg/logger"
	"github.com/floower/bloom-core/pkg/metrics"
	"github.com/floower/bloom-core/pkg/service/device"
)

// BloomingBehavior layers the bloom, light and color picker postures on top
// of a Base behavior. It is not safe for concurrent use: Tick and HandleTouch
// must be called from one goroutine.
type BloomingBehavior struct {
	baseFSMInstance *internal_fsm.BaseFSMInstance

	config config.BehaviorConfig
	device device.Service
	base   Base
	picker *ColorPicker

	// preventTouchUp is set when a gesture was consumed and the following
	// release must not trigger anything
	preventTouchUp bool

	sessionID uuid.UUID
	logger    *zap.SugaredLogger
}

var _ Posture = (*BloomingBehavior)(nil)

// NewBloomingBehavior creates a behavior in StateStandby. The config is
// validated and copied. A nil base means DefaultBase.
func NewBloomingBehavior(id string, cfg config.BehaviorConfig, dev device.Service, base Base) (*BloomingBehavior, error) {
	return NewBloomingBehaviorWithRand(id, cfg, dev, base, nil)
}

// NewBloomingBehaviorWithRand creates a behavior drawing colors from rng.
// This is useful for testing.
func NewBloomingBehaviorWithRand(id string, cfg config.BehaviorConfig, dev device.Service, base Base, rng Rand) (*BloomingBehavior, error) {
	if id == "" {
		return nil, errors.New("behavior id must not be empty")
	}
	if dev == nil {
		return nil, errors.New("device service must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid behavior config: %w", err)
	}
	if base == nil {
		base = DefaultBase{}
	}

	cfg = cfg.Clone()

	picker, err := NewColorPicker(id, cfg.ColorScheme, rng)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New()
	log := logger.For(logger.ComponentBloomingBehavior).With("instance", id, "session", sessionID.String())

	baseCfg := internal_fsm.BaseFSMInstanceConfig{
		ID:           id,
		FSMType:      FSMType,
		InitialState: StateStandby.String(),
		Transitions: []fsm.EventDesc{
			// Press and release from standby
			{Name: EventLight, Src: []string{StateStandby.String()}, Dst: StateBloomLight.String()},
			{Name: EventOpen, Src: []string{StateStandby.String(), StateBloomLight.String()}, Dst: StateBloomOpen.String()},
			{Name: EventOpenDone, Src: []string{StateBloomOpen.String()}, Dst: StateBloom.String()},

			// Bloom -> BloomClose -> Light -> Fade -> Standby
			{Name: EventClose, Src: []string{StateBloom.String()}, Dst: StateBloomClose.String()},
			{Name: EventCloseDone, Src: []string{StateBloomClose.String()}, Dst: StateLight.String()},
			{Name: EventFade, Src: []string{StateLight.String()}, Dst: StateFade.String()},
			{Name: EventFadeDone, Src: []string{StateFade.String()}, Dst: StateStandby.String()},

			// Color picker, entered by a long press and confirmed by the next press
			{Name: EventStartLightPicker, Src: []string{StateStandby.String(), StateBloomLight.String(), StateLight.String()}, Dst: StateLightPicker.String()},
			{Name: EventStartBloomPicker, Src: []string{StateBloom.String()}, Dst: StateBloomPicker.String()},
			{Name: EventPickerConfirm, Src: []string{StateBloomPicker.String()}, Dst: StateBloom.String()},
			{Name: EventPickerConfirm, Src: []string{StateLightPicker.String()}, Dst: StateLight.String()},

			// Base behavior
			{Name: EventStandby, Src: stateNames[:], Dst: StateStandby.String()},
		},
	}

	instance := &BloomingBehavior{
		baseFSMInstance: internal_fsm.NewBaseFSMInstance(baseCfg, log),
		config:          cfg,
		device:          dev,
		base:            base,
		picker:          picker,
		sessionID:       sessionID,
		logger:          log,
	}

	metrics.InitErrorCounter(metrics.ComponentBloomingBehavior, id)
	metrics.SetCurrentState(id, int(StateStandby))

	instance.registerCallbacks()

	return instance, nil
}

// GetID returns the instance id.
func (b *BloomingBehavior) GetID() string {
	return b.baseFSMInstance.GetID()
}

// SessionID identifies this behavior session in logs and snapshots.
func (b *BloomingBehavior) SessionID() uuid.UUID {
	return b.sessionID
}

// CurrentState implements Posture.
func (b *BloomingBehavior) CurrentState() State {
	name := b.baseFSMInstance.GetCurrentFSMState()
	state, ok := statesByName[name]
	if !ok {
		// Only declared states are registered with the FSM.
		panic(fmt.Sprintf("blooming FSM in undeclared state %q", name))
	}

	return state
}

// EnterStandby implements Posture.
func (b *BloomingBehavior) EnterStandby(ctx context.Context) error {
	return b.baseFSMInstance.SendEvent(ctx, EventStandby)
}

// ConsumePreventTouchUp implements Posture.
func (b *BloomingBehavior) ConsumePreventTouchUp() bool {
	prevent := b.preventTouchUp
	b.preventTouchUp = false

	return prevent
}

// PreventTouchUp reports the flag without clearing it.
func (b *BloomingBehavior) PreventTouchUp() bool {
	return b.preventTouchUp
}

// ColorsUsed returns the color usage mask of the picker.
func (b *BloomingBehavior) ColorsUsed() uint64 {
	return b.picker.Used()
}

// CanEnableRadio reports whether the wireless channel may be enabled: the
// base permits it, or the flower is lit but closed or running the light picker.
func (b *BloomingBehavior) CanEnableRadio() bool {
	if b.base.CanEnableRadio(b) {
		return true
	}

	state := b.CurrentState()

	return state == StateLightPicker || state == StateBloomLight
}

// Snapshot returns a copy of the observable behavior state.
func (b *BloomingBehavior) Snapshot() Snapshot {
	snapshot := Snapshot{
		ID:             b.GetID(),
		SessionID:      b.sessionID.String(),
		State:          b.CurrentState().String(),
		ColorsUsed:     b.picker.Used(),
		PreventTouchUp: b.preventTouchUp,
		RadioPermitted: b.CanEnableRadio(),
	}
	if err := b.baseFSMInstance.GetError(); err != nil {
		snapshot.LastError = err.Error()
	}

	return snapshot
}

// SetCurrentState forces the state without running callbacks or actions.
// This should only be called in tests
func (b *BloomingBehavior) SetCurrentState(state State) {
	b.baseFSMInstance.SetCurrentFSMState(state.String())
}

// transition sends event and reports failures. The dispatch tables only send
// events allowed in the current state, so an error here is a bug or an
// expired context.
func (b *BloomingBehavior) transition(ctx context.Context, event string, operation string) bool {
	err := b.baseFSMInstance.SendEvent(ctx, event)
	if err == nil {
		b.baseFSMInstance.ClearError()

		return true
	}

	if ctx.Err() != nil || errors.Is(err, internal_fsm.ErrInsufficientTime) {
		b.logger.Debugf("Skipping %s: %v", event, err)

		return false
	}

	metrics.IncErrorCount(metrics.ComponentBloomingBehavior, b.GetID())
	b.baseFSMInstance.SetError(fmt.Errorf("event %s rejected in state %s: %w", event, b.CurrentState(), err), operation)

	return false
}
