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

package fsm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/floower/bloom-core/pkg/constants"
	"github.com/floower/bloom-core/pkg/sentry"
)

// ErrInsufficientTime is returned by SendEvent when the context deadline is
// too close to complete an event.
var ErrInsufficientTime = errors.New("insufficient time remaining before deadline")

// TransitionHook is called after every completed state change.
type TransitionHook func(ctx context.Context, event, from, to string)

// BaseFSMInstance implements the shared logic for the FSM-based behaviors.
// Concrete behaviors wrap it and translate their domain events into SendEvent calls.
type BaseFSMInstance struct {
	cfg BaseFSMInstanceConfig

	// mu is a mutex for protecting concurrent access to fields
	mu sync.RWMutex

	// fsm is the finite state machine that manages instance state
	fsm *fsm.FSM

	// Registered "enter_<state>" callbacks, purely for logging or minor side-effects.
	callbacks map[string]fsm.Callback

	// hooks run on every transition, after the per-state callback
	hooks []TransitionHook

	// lastError is the last transition error seen by the owner
	lastError error

	logger *zap.SugaredLogger
}

// BaseFSMInstanceConfig holds parameters for setting up the base FSM.
type BaseFSMInstanceConfig struct {
	ID string

	// FSMType labels errors reported to Sentry, e.g. "blooming"
	FSMType string

	// InitialState is the state the machine starts in
	InitialState string

	// Transitions are the transitions that are allowed
	Transitions []fsm.EventDesc
}

// NewBaseFSMInstance sets up a new FSM with the given transitions.
func NewBaseFSMInstance(cfg BaseFSMInstanceConfig, logger *zap.SugaredLogger) *BaseFSMInstance {
	baseInstance := &BaseFSMInstance{
		cfg:       cfg,
		callbacks: make(map[string]fsm.Callback),
		logger:    logger,
	}

	baseInstance.fsm = fsm.NewFSM(
		cfg.InitialState,
		fsm.Events(cfg.Transitions),
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				if cb, ok := baseInstance.callbacks["enter_"+e.Dst]; ok {
					cb(ctx, e)
				}

				baseInstance.mu.RLock()
				hooks := baseInstance.hooks
				baseInstance.mu.RUnlock()

				for _, hook := range hooks {
					hook(ctx, e.Event, e.Src, e.Dst)
				}
			},
		},
	)

	return baseInstance
}

// AddCallback adds a callback for a given callback name, e.g. "enter_bloom".
// Callbacks must be registered before the first event is sent.
func (s *BaseFSMInstance) AddCallback(name string, callback fsm.Callback) {
	s.callbacks[name] = callback
}

// AddTransitionHook registers a hook that runs on every state change.
func (s *BaseFSMInstance) AddTransitionHook(hook TransitionHook) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks = append(s.hooks, hook)
}

// GetCurrentFSMState returns the current state of the FSM
func (s *BaseFSMInstance) GetCurrentFSMState() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.fsm.Current()
}

// SetCurrentFSMState sets the current state of the FSM without running callbacks.
// This should only be called in tests
func (s *BaseFSMInstance) SetCurrentFSMState(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fsm.SetState(state)
}

// SendEvent sends an event to the FSM.
//
// A transition interrupted by an expiring context leaves looplab's internal
// transition pending, which rejects every following event. To avoid that,
// events are refused when the context is already cancelled or has less than
// constants.ExpectedMaxP95ExecutionTimePerEvent left.
//
// An event that leads back into the current state is not an error.
func (s *BaseFSMInstance) SendEvent(ctx context.Context, eventName string, args ...interface{}) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if remaining, ok := eventBudget(ctx); !ok {
		return fmt.Errorf("%w: %s left for event %s", ErrInsufficientTime, remaining, eventName)
	}

	err := s.fsm.Event(ctx, eventName, args...)

	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) && noTransition.Err == nil {
		return nil
	}

	return err
}

// SetError records a transition error and reports it.
func (s *BaseFSMInstance) SetError(err error, operation string) {
	s.mu.Lock()
	s.lastError = err
	s.mu.Unlock()

	sentry.ReportFSMErrorf(s.logger, s.cfg.ID, s.cfg.FSMType, operation, "FSM %s failed to %s: %v", s.cfg.ID, operation, err)
}

// GetError returns the last recorded transition error.
func (s *BaseFSMInstance) GetError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastError
}

// ClearError forgets the last recorded transition error.
func (s *BaseFSMInstance) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastError = nil
}

func (s *BaseFSMInstance) GetID() string {
	return s.cfg.ID
}

// eventBudget reports the time left before the ctx deadline and whether it
// covers one event. A context without deadline always has budget.
func eventBudget(ctx context.Context) (time.Duration, bool) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0, true
	}

	remaining := time.Until(deadline)

	return remaining, remaining >= constants.ExpectedMaxP95ExecutionTimePerEvent
}
