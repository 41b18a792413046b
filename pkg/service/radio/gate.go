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
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/floower/bloom-core/pkg/logger"
	"github.com/floower/bloom-core/pkg/metrics"
	"github.com/floower/bloom-core/pkg/sentry"
)

// Permitter decides whether the wireless channel may be enabled.
type Permitter interface {
	CanEnableRadio() bool
}

// PermitterFunc adapts a function to Permitter.
type PermitterFunc func() bool

func (f PermitterFunc) CanEnableRadio() bool { return f() }

// Transceiver is the wireless control channel.
type Transceiver interface {
	// Enable starts the channel. It is only called once it succeeded.
	Enable(ctx context.Context) error
}

// Gate enables the transceiver the first time the permitter allows it.
// Like the firmware's radio initialisation the step is one-way: the channel
// stays enabled even when the permitter later refuses.
type Gate struct {
	instance    string
	permitter   Permitter
	transceiver Transceiver

	mu      sync.RWMutex
	enabled bool

	logger *zap.SugaredLogger
}

// NewGate creates a gate with the radio disabled.
func NewGate(instance string, permitter Permitter, transceiver Transceiver) *Gate {
	metrics.InitErrorCounter(metrics.ComponentRadioGate, instance)
	metrics.SetRadioEnabled(instance, false)

	return &Gate{
		instance:    instance,
		permitter:   permitter,
		transceiver: transceiver,
		logger:      logger.For(logger.ComponentRadioGate),
	}
}

// Reconcile is called once per control cycle. It returns an error only when
// enabling was attempted and failed; the next cycle tries again.
func (g *Gate) Reconcile(ctx context.Context) error {
	if g.Enabled() {
		return nil
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if !g.permitter.CanEnableRadio() {
		return nil
	}

	if err := g.transceiver.Enable(ctx); err != nil {
		metrics.IncErrorCount(metrics.ComponentRadioGate, g.instance)
		sentry.ReportServiceErrorf(g.logger, g.instance, "radio", "enable", "failed to enable radio: %v", err)

		return fmt.Errorf("failed to enable radio: %w", err)
	}

	g.mu.Lock()
	g.enabled = true
	g.mu.Unlock()

	metrics.SetRadioEnabled(g.instance, true)
	g.logger.Infof("Radio enabled for %s", g.instance)

	return nil
}

// Enabled reports whether the radio has been enabled.
func (g *Gate) Enabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.enabled
}
