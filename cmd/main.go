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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/floower/bloom-core/pkg/api"
	"github.com/floower/bloom-core/pkg/config"
	"github.com/floower/bloom-core/pkg/control"
	"github.com/floower/bloom-core/pkg/fsm/blooming"
	"github.com/floower/bloom-core/pkg/logger"
	"github.com/floower/bloom-core/pkg/metrics"
	"github.com/floower/bloom-core/pkg/sentry"
	"github.com/floower/bloom-core/pkg/service/device"
	"github.com/floower/bloom-core/pkg/service/radio"
	"github.com/floower/bloom-core/pkg/version"
)

// shutdownTimeout is how long the HTTP servers get to drain on exit.
const shutdownTimeout = 3 * time.Second

func main() {
	// Initialize the global logger first thing
	logger.Initialize()

	defer func() {
		_ = logger.Sync()
	}()

	sentry.InitSentry(version.GetAppVersion())

	log := logger.For(logger.ComponentCore)
	log.Infof("Starting bloom-core %s...", version.GetAppVersion())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	configManager, err := config.NewFileConfigManager("")
	if err != nil {
		sentry.ReportIssuef(sentry.IssueTypeFatal, log, "Failed to create config manager: %v", err)
		os.Exit(1)
	}

	configData, err := config.LoadConfig(ctx, configManager, log)
	if err != nil {
		sentry.ReportIssuef(sentry.IssueTypeFatal, log, "Failed to load config: %v", err)
		os.Exit(1)
	}

	instance := configData.Agent.Name

	metricsServer := metrics.SetupMetricsEndpoint(fmt.Sprintf(":%d", configData.Agent.MetricsPort))

	dev := device.NewSimulatedService()

	behavior, err := blooming.NewBloomingBehavior(instance, configData.Behavior, dev, blooming.DefaultBase{})
	if err != nil {
		sentry.ReportIssuef(sentry.IssueTypeFatal, log, "Failed to create blooming behavior: %v", err)
		os.Exit(1)
	}

	gate := radio.NewGate(instance, behavior, radio.NewSimulatedTransceiver())
	controlLoop := control.NewControlLoop(instance, configData.Behavior, behavior, dev, gate)
	apiServer := api.NewServer(fmt.Sprintf(":%d", configData.Agent.APIPort), instance, controlLoop)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return controlLoop.Execute(groupCtx)
	})

	group.Go(apiServer.ListenAndServe)

	group.Go(func() error {
		<-groupCtx.Done()

		// S6_KILL_FINISH_MAXTIME is 5 seconds, so we need to finish before that
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			sentry.ReportIssuef(sentry.IssueTypeError, log, "Failed to shutdown control API: %v", err)
		}

		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			sentry.ReportIssuef(sentry.IssueTypeError, log, "Failed to shutdown metrics server: %v", err)
		}

		return nil
	})

	group.Go(func() error {
		SystemSnapshotLogger(groupCtx, controlLoop)

		return nil
	})

	if err := group.Wait(); err != nil {
		sentry.ReportIssuef(sentry.IssueTypeFatal, log, "bloom-core failed: %v", err)
		os.Exit(1)
	}

	log.Info("bloom-core completed")
}

// SystemSnapshotLogger logs the latest system snapshot every 5 seconds.
func SystemSnapshotLogger(ctx context.Context, controlLoop *control.ControlLoop) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	snapLogger := logger.For(logger.ComponentSnapshotLogger)
	snapLogger.Info("Starting system snapshot logger")

	for {
		select {
		case <-ctx.Done():
			snapLogger.Info("Stopping system snapshot logger")

			return
		case <-ticker.C:
			snapshot, ok := controlLoop.GetSnapshot()
			if !ok {
				sentry.ReportIssuef(sentry.IssueTypeWarning, snapLogger, "[SystemSnapshotLogger] No system snapshot available")

				continue
			}

			snapLogger.Infof("=== System Snapshot (Tick %d) === state=%s radio=%t touches=%d/%d/%d (handled/ignored/dropped)",
				snapshot.Tick, snapshot.Behavior.State, snapshot.RadioEnabled,
				snapshot.Touches.Handled, snapshot.Touches.Ignored, snapshot.Touches.Dropped)

			if snapshot.Device != nil {
				snapLogger.Debugf("Device: h=%.2f s=%.2f b=%.2f petals=%.0f animation=%s idle=%t",
					snapshot.Device.Hue, snapshot.Device.Saturation, snapshot.Device.Brightness,
					snapshot.Device.PetalsOpenLevel, snapshot.Device.AnimationName, snapshot.Device.Idle)
			}
		}
	}
}
