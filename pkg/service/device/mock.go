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

import "sync"

// Command names recorded by MockService.
const (
	CommandTransitionColor           = "transition_color"
	CommandTransitionColorBrightness = "transition_color_brightness"
	CommandSetPetalsOpenLevel        = "set_petals_open_level"
	CommandStartAnimation            = "start_animation"
	CommandStopAnimation             = "stop_animation"
)

// Command is a recorded call on MockService.
type Command struct {
	Name           string
	Hue            float64
	Saturation     float64
	Brightness     float64
	Level          int
	DurationMillis int
	Animation      Animation
	KeepColor      bool
}

// MockService is a mock implementation of the device Service interface for testing.
type MockService struct {
	mu sync.Mutex

	// Tracks calls to methods
	TransitionColorCalled           bool
	TransitionColorBrightnessCalled bool
	SetPetalsOpenLevelCalled        bool
	StartAnimationCalled            bool
	StopAnimationCalled             bool
	IsIdleCalls                     int

	// Commands holds every actuation command in call order. IsIdle is not recorded.
	Commands []Command

	// IdleResult is returned by IsIdle
	IdleResult bool
}

var _ Service = (*MockService)(nil)

// NewMockService creates a mock device that reports busy until told otherwise.
func NewMockService() *MockService {
	return &MockService{}
}

func (m *MockService) record(cmd Command) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Commands = append(m.Commands, cmd)
}

// TransitionColor records the command.
func (m *MockService) TransitionColor(hue, saturation, brightness float64, durationMillis int) {
	m.TransitionColorCalled = true
	m.record(Command{Name: CommandTransitionColor, Hue: hue, Saturation: saturation, Brightness: brightness, DurationMillis: durationMillis})
}

// TransitionColorBrightness records the command.
func (m *MockService) TransitionColorBrightness(brightness float64, durationMillis int) {
	m.TransitionColorBrightnessCalled = true
	m.record(Command{Name: CommandTransitionColorBrightness, Brightness: brightness, DurationMillis: durationMillis})
}

// SetPetalsOpenLevel records the command.
func (m *MockService) SetPetalsOpenLevel(level int, durationMillis int) {
	m.SetPetalsOpenLevelCalled = true
	m.record(Command{Name: CommandSetPetalsOpenLevel, Level: level, DurationMillis: durationMillis})
}

// StartAnimation records the command.
func (m *MockService) StartAnimation(animation Animation) {
	m.StartAnimationCalled = true
	m.record(Command{Name: CommandStartAnimation, Animation: animation})
}

// StopAnimation records the command.
func (m *MockService) StopAnimation(keepColor bool) {
	m.StopAnimationCalled = true
	m.record(Command{Name: CommandStopAnimation, KeepColor: keepColor})
}

// IsIdle returns IdleResult.
func (m *MockService) IsIdle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.IsIdleCalls++

	return m.IdleResult
}

// SetIdle sets the value IsIdle returns.
func (m *MockService) SetIdle(idle bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.IdleResult = idle
}

// GetCommands returns a copy of the recorded commands.
func (m *MockService) GetCommands() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]Command, len(m.Commands))
	copy(result, m.Commands)

	return result
}

// CommandNames returns the names of the recorded commands in call order.
func (m *MockService) CommandNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.Commands))
	for _, cmd := range m.Commands {
		names = append(names, cmd.Name)
	}

	return names
}

// Reset forgets all recorded calls. IdleResult is kept.
func (m *MockService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Commands = nil
	m.IsIdleCalls = 0
	m.TransitionColorCalled = false
	m.TransitionColorBrightnessCalled = false
	m.SetPetalsOpenLevelCalled = false
	m.StartAnimationCalled = false
	m.StopAnimationCalled = false
}
