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

package starvationchecker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/floower/bloom-core/pkg/logger"
	"github.com/floower/bloom-core/pkg/metrics"
	"github.com/floower/bloom-core/pkg/sentry"
)

// StarvationChecker watches the control loop from a background goroutine.
// The loop marks every finished cycle; when no cycle finished for longer than
// the threshold, the checker counts it in metrics and reports a warning.
// A stuck touch handler or a blocking device call shows up here even though
// the loop itself cannot report anything.
type StarvationChecker struct {
	lastReconcileTime   time.Time
	starvationThreshold time.Duration
	checkInterval       time.Duration
	starvedChecks       int
	mutex               sync.RWMutex

	ctx    context.Context //nolint:containedctx // background service lifecycle
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *zap.SugaredLogger
}

// NewStarvationChecker starts a checker that looks at the loop every
// checkInterval. It must be stopped with Stop.
func NewStarvationChecker(threshold, checkInterval time.Duration) *StarvationChecker {
	if checkInterval <= 0 {
		checkInterval = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	checker := &StarvationChecker{
		starvationThreshold: threshold,
		checkInterval:       checkInterval,
		lastReconcileTime:   time.Now(),
		logger:              logger.For(logger.ComponentStarvationChecker),
		ctx:                 ctx,
		cancel:              cancel,
	}

	checker.wg.Add(1)

	go checker.checkStarvationLoop()

	checker.logger.Debugf("Starvation checker created with threshold %s", threshold)

	return checker
}

func (s *StarvationChecker) checkStarvationLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.check()
		}
	}
}

func (s *StarvationChecker) check() {
	s.mutex.Lock()
	sinceLastReconcile := time.Since(s.lastReconcileTime)
	starved := sinceLastReconcile > s.starvationThreshold
	if starved {
		s.starvedChecks++
	}
	s.mutex.Unlock()

	if !starved {
		return
	}

	metrics.AddStarvationTime(sinceLastReconcile.Seconds())
	sentry.ReportIssuef(sentry.IssueTypeWarning, s.logger, "control loop starvation detected: %.2f seconds since last cycle", sinceLastReconcile.Seconds())
}

// Stop terminates the background goroutine. It is safe to call more than once.
func (s *StarvationChecker) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Reconcile marks a finished control cycle.
func (s *StarvationChecker) Reconcile(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.UpdateLastReconcileTime()

	return nil
}

// UpdateLastReconcileTime marks the current time as the most recent cycle.
func (s *StarvationChecker) UpdateLastReconcileTime() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.lastReconcileTime = time.Now()
}

// GetLastReconcileTime returns the time of the most recent cycle.
func (s *StarvationChecker) GetLastReconcileTime() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.lastReconcileTime
}

// StarvedChecks returns how many background checks found the loop starved.
func (s *StarvationChecker) StarvedChecks() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.starvedChecks
}
