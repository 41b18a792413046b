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
	"strings"
)

// State is the posture of the flower. The zero value is StateStandby.
type State uint8

const (
	// StateStandby: petals closed, light off.
	StateStandby State = iota
	// StateBloomLight: light on, petals still closed, waiting for the release.
	StateBloomLight
	// StateBloomOpen: petals opening.
	StateBloomOpen
	// StateBloom: petals open, light on.
	StateBloom
	// StateBloomPicker: petals open, rainbow running until the next press.
	StateBloomPicker
	// StateBloomClose: petals closing, light stays on.
	StateBloomClose
	// StateLight: petals closed, light on.
	StateLight
	// StateLightPicker: petals closed, rainbow running until the next press.
	StateLightPicker
	// StateFade: light fading out.
	StateFade
)

var stateNames = [...]string{
	StateStandby:     "standby",
	StateBloomLight:  "bloom_light",
	StateBloomOpen:   "bloom_open",
	StateBloom:       "bloom",
	StateBloomPicker: "bloom_picker",
	StateBloomClose:  "bloom_close",
	StateLight:       "light",
	StateLightPicker: "light_picker",
	StateFade:        "fade",
}

var statesByName = func() map[string]State {
	m := make(map[string]State, len(stateNames))
	for i, name := range stateNames {
		m[name] = State(i)
	}

	return m
}()

// AllStates returns every state in declaration order.
func AllStates() []State {
	states := make([]State, len(stateNames))
	for i := range stateNames {
		states[i] = State(i)
	}

	return states
}

func (s State) String() string {
	if !s.Valid() {
		return fmt.Sprintf("state(%d)", uint8(s))
	}

	return stateNames[s]
}

// Valid reports whether s is one of the declared states.
func (s State) Valid() bool {
	return int(s) < len(stateNames)
}

// ParseState parses the name of a state. Numeric values are rejected.
func ParseState(name string) (State, error) {
	if s, ok := statesByName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return s, nil
	}

	return StateStandby, fmt.Errorf("unknown state %q", name)
}

// TouchEvent is a debounced gesture on the touch sensor.
type TouchEvent uint8

const (
	TouchDown TouchEvent = iota
	TouchUp
	TouchLongPress
)

var touchEventNames = [...]string{
	TouchDown:      "down",
	TouchUp:        "up",
	TouchLongPress: "long_press",
}

func (e TouchEvent) String() string {
	if int(e) >= len(touchEventNames) {
		return fmt.Sprintf("touch(%d)", uint8(e))
	}

	return touchEventNames[e]
}

// Valid reports whether e is one of the declared touch events.
func (e TouchEvent) Valid() bool {
	return int(e) < len(touchEventNames)
}

// ParseTouchEvent parses "down", "up" or "long_press". Numeric values are rejected.
func ParseTouchEvent(name string) (TouchEvent, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i, n := range touchEventNames {
		if n == normalized {
			return TouchEvent(i), nil
		}
	}

	return TouchDown, fmt.Errorf("unknown touch event %q", name)
}

// FSM events of the blooming behavior.
const (
	EventLight            = "light"
	EventOpen             = "open"
	EventOpenDone         = "open_done"
	EventClose            = "close"
	EventCloseDone        = "close_done"
	EventFade             = "fade"
	EventFadeDone         = "fade_done"
	EventStartLightPicker = "start_light_picker"
	EventStartBloomPicker = "start_bloom_picker"
	EventPickerConfirm    = "picker_confirm"

	// EventStandby is driven by the base behavior only.
	EventStandby = "standby"
)

// FSMType labels errors and logs of this machine.
const FSMType = "blooming"

// Snapshot is a read-only view of the behavior, safe to hand to other goroutines.
type Snapshot struct {
	ID             string `json:"id"`
	SessionID      string `json:"sessionId"`
	State          string `json:"state"`
	ColorsUsed     uint64 `json:"colorsUsed"`
	PreventTouchUp bool   `json:"preventTouchUp"`
	RadioPermitted bool   `json:"radioPermitted"`
	LastError      string `json:"lastError,omitempty"`
}
