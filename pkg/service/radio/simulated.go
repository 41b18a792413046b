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

package radio

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/floower/bloom-core/pkg/logger"
)

// SimulatedTransceiver stands in for the BLE stack. It only records that it
// was enabled.
type SimulatedTransceiver struct {
	mu sync.Mutex

	EnableCalls int
	// EnableError is returned by Enable when set
	EnableError error

	enabled bool
	logger  *zap.SugaredLogger
}

var _ Transceiver = (*SimulatedTransceiver)(nil)

// NewSimulatedTransceiver creates a disabled transceiver.
func NewSimulatedTransceiver() *SimulatedTransceiver {
	return &SimulatedTransceiver{logger: logger.For(logger.ComponentRadioGate)}
}

// Enable implements Transceiver.
func (t *SimulatedTransceiver) Enable(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.EnableCalls++
	if t.EnableError != nil {
		return t.EnableError
	}

	t.enabled = true
	t.logger.Debug("Simulated radio advertising started")

	return nil
}

// IsEnabled reports whether Enable succeeded.
func (t *SimulatedTransceiver) IsEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.enabled
}

// SetEnableError changes the error returned by Enable.
func (t *SimulatedTransceiver) SetEnableError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.EnableError = err
}

// GetEnableCalls returns how often Enable was called.
func (t *SimulatedTransceiver) GetEnableCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.EnableCalls
}
