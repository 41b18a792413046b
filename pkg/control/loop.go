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

package control

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/floower/bloom-core/pkg/config"
	"github.com/floower/bloom-core/pkg/constants"
	"github.com/floower/bloom-core/pkg/fsm/blooming"
	"github.com/floower/bloom-core/pkg/logger"
	"github.com/floower/bloom-core/pkg/metrics"
	"github.com/floower/bloom-core/pkg/sentry"
	"github.com/floower/bloom-core/pkg/service/device"
	"github.com/floower/bloom-core/pkg/starvationchecker"
)

// ErrTouchQueueFull is returned by SubmitTouch when the control loop is not keeping up.
var ErrTouchQueueFull = errors.New("touch queue is full")

// Behavior is the part of the blooming behavior the control loop drives.
type Behavior interface {
	Tick(ctx context.Context)
	HandleTouch(ctx context.Context, event blooming.TouchEvent) bool
	Snapshot() blooming.Snapshot
}

// RadioGate enables the wireless channel once the behavior permits it.
type RadioGate interface {
	Reconcile(ctx context.Context) error
	Enabled() bool
}

// ControlLoop is the single goroutine that owns the behavior.
// Ticks and touches are taken from one select, so the behavior never sees
// two calls at the same time.
type ControlLoop struct {
	behavior          Behavior
	radio             RadioGate
	device            device.Service
	starvationChecker *starvationchecker.StarvationChecker
	snapshotManager   *SnapshotManager
	logger            *zap.SugaredLogger
	touches           chan blooming.TouchEvent
	instance          string
	cfg               config.BehaviorConfig
	tickerTime        time.Duration
	currentTick       uint64
	touchStats        TouchStats

	// written by SubmitTouch callers
	touchesDropped atomic.Uint64
}

// NewControlLoop creates a control loop for one flower.
// radio may be nil when the flower has no wireless channel.
func NewControlLoop(instance string, cfg config.BehaviorConfig, behavior Behavior, dev device.Service, radio RadioGate) *ControlLoop {
	log := logger.For(logger.ComponentControlLoop)

	metrics.InitErrorCounter(metrics.ComponentControlLoop, instance)

	return &ControlLoop{
		instance:          instance,
		cfg:               cfg.Clone(),
		behavior:          behavior,
		device:            dev,
		radio:             radio,
		tickerTime:        constants.DefaultTickerTime,
		touches:           make(chan blooming.TouchEvent, constants.DefaultTouchQueueSize),
		starvationChecker: starvationchecker.NewStarvationChecker(constants.StarvationThreshold, constants.StarvationCheckInterval),
		snapshotManager:   NewSnapshotManager(),
		logger:            log,
	}
}

// WithTickerTime overrides the cycle interval. Must be called before Execute.
func (c *ControlLoop) WithTickerTime(tickerTime time.Duration) *ControlLoop {
	if tickerTime > 0 {
		c.tickerTime = tickerTime
	}

	return c
}

// Execute runs the loop until ctx is cancelled or a cycle fails with an
// unexpected error. The starvation checker is stopped on return.
func (c *ControlLoop) Execute(ctx context.Context) error {
	ticker := time.NewTicker(c.tickerTime)
	defer ticker.Stop()
	defer c.starvationChecker.Stop()

	c.currentTick = 0
	c.updateSnapshot()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-c.touches:
			c.handleTouch(ctx, event)
		case <-ticker.C:
			c.currentTick++

			start := time.Now()

			timeoutCtx, cancel := context.WithTimeout(ctx, c.tickerTime*constants.CycleTimeoutFactor)
			err := c.Reconcile(timeoutCtx, c.currentTick)
			cancel()

			cycleTime := time.Since(start)

			if cycleTime > c.tickerTime {
				c.logger.Warnf("Control loop cycle time is greater than ticker time: %v", cycleTime)

				if cycleTime > 2*c.tickerTime {
					c.logger.Errorf("Control loop cycle time is greater than 2*ticker time: %v", cycleTime)
				}
			}

			metrics.ObserveReconcileTime(metrics.ComponentControlLoop, c.instance, cycleTime)

			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					sentry.ReportIssuef(sentry.IssueTypeWarning, c.logger, "Control loop cycle timed out: %v", err)
				} else if errors.Is(err, context.Canceled) {
					c.logger.Infof("Control loop cancelled")

					return nil
				} else {
					metrics.IncErrorCountAndLog(metrics.ComponentControlLoop, c.instance, err, c.logger)
					sentry.ReportIssuef(sentry.IssueTypeError, c.logger, "Control loop error: %v", err)

					return err
				}
			}
		}
	}
}

// Reconcile performs one control cycle:
// 1. Tick the behavior (base first, then the idle rules)
// 2. Let the radio gate look at the new state
// 3. Mark the cycle for the starvation checker
// 4. Publish a snapshot for readers on other goroutines
//
// A failed radio enable is not fatal; the gate retries on the next cycle.
func (c *ControlLoop) Reconcile(ctx context.Context, tick uint64) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	c.currentTick = tick

	c.behavior.Tick(ctx)

	if c.radio != nil {
		if err := c.radio.Reconcile(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			c.logger.Debugf("Radio not enabled in tick %d: %v", tick, err)
		}
	}

	if err := c.starvationChecker.Reconcile(ctx); err != nil {
		return fmt.Errorf("starvation checker failed: %w", err)
	}

	c.updateSnapshot()

	return nil
}

// SubmitTouch queues a touch event for the control loop. It never blocks;
// when the queue is full the event is dropped and ErrTouchQueueFull returned.
// Safe for concurrent use.
func (c *ControlLoop) SubmitTouch(event blooming.TouchEvent) error {
	if !event.Valid() {
		return fmt.Errorf("invalid touch event %d", event)
	}

	select {
	case c.touches <- event:
		return nil
	default:
		c.touchesDropped.Add(1)
		metrics.RecordTouchEvent(c.instance, event.String(), metrics.HandledByDropped)

		return ErrTouchQueueFull
	}
}

// GetSnapshot returns a copy of the latest snapshot. Safe for concurrent use.
func (c *ControlLoop) GetSnapshot() (SystemSnapshot, bool) {
	return c.snapshotManager.GetDeepCopySnapshot()
}

// Stop stops the starvation checker of a loop that was never executed.
func (c *ControlLoop) Stop() {
	c.starvationChecker.Stop()
}

func (c *ControlLoop) handleTouch(ctx context.Context, event blooming.TouchEvent) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.tickerTime*constants.CycleTimeoutFactor)
	defer cancel()

	if c.behavior.HandleTouch(timeoutCtx, event) {
		c.touchStats.Handled++
	} else {
		c.touchStats.Ignored++
		c.logger.Debugf("Touch %s ignored in tick %d", event, c.currentTick)
	}

	c.updateSnapshot()
}

func (c *ControlLoop) updateSnapshot() {
	c.touchStats.Dropped = c.touchesDropped.Load()

	snapshot := &SystemSnapshot{
		Tick:         c.currentTick,
		SnapshotTime: time.Now(),
		Behavior:     c.behavior.Snapshot(),
		Config:       c.cfg,
		Touches:      c.touchStats,
	}

	if provider, ok := c.device.(device.StatusProvider); ok {
		status := provider.Status()
		snapshot.Device = &status
	}

	if c.radio != nil {
		snapshot.RadioEnabled = c.radio.Enabled()
	}

	c.snapshotManager.UpdateSnapshot(snapshot)
}
