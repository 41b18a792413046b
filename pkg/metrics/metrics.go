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

package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/floower/bloom-core/pkg/logger"
	"github.com/floower/bloom-core/pkg/sentry"
)

const (
	// Component Labels.
	ComponentControlLoop      = "control_loop"
	ComponentBloomingBehavior = "blooming_behavior"
	ComponentRadioGate        = "radio_gate"
	ComponentConfigManager    = "config_manager"
	ComponentAPI              = "api"

	// Touch handler labels.
	HandledByBase     = "base"
	HandledByBlooming = "blooming"
	HandledByNone     = "none"
	HandledByDropped  = "dropped"
)

var (
	namespace = "floower"
	subsystem = "core"

	errorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "errors_total",
			Help:      "Total number of errors encountered by component",
		},
		[]string{"component", "instance"},
	)

	reconcileTime = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reconcile_duration_milliseconds",
			Help:      "Time taken by a control cycle (in milliseconds)",
			Objectives: map[float64]float64{
				0.5:  0.01,
				0.9:  0.01,
				0.99: 0.01,
			},
		},
		[]string{"component", "instance"},
	)

	starvationSeconds = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reconcile_starved_total_seconds",
			Help:      "Total seconds the control loop was starved",
		},
	)

	touchEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "touch_events_total",
			Help:      "Touch events by event type and the behavior layer that consumed them",
		},
		[]string{"instance", "event", "handled_by"},
	)

	stateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "state_transitions_total",
			Help:      "Behavior state transitions by source and destination state",
		},
		[]string{"instance", "from", "to"},
	)

	currentState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "behavior_current_state",
			Help:      "Current behavior state (0=standby, 1=bloom_light, 2=bloom_open, 3=bloom, 4=bloom_picker, 5=bloom_close, 6=light, 7=light_picker, 8=fade)",
		},
		[]string{"instance"},
	)

	colorsDispensed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "colors_dispensed_total",
			Help:      "Palette colors handed out by the color picker, by palette index",
		},
		[]string{"instance", "index"},
	)

	colorRedraws = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "color_redraws_total",
			Help:      "Random draws rejected because the color was already used in the current cycle",
		},
		[]string{"instance"},
	)

	colorCycleResets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "color_cycle_resets_total",
			Help:      "Times the color usage mask was cleared after the palette was exhausted",
		},
		[]string{"instance"},
	)

	radioEnabled = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "radio_enabled",
			Help:      "1 if the wireless control channel has been enabled",
		},
		[]string{"instance"},
	)
)

// SetupMetricsEndpoint starts an HTTP server to expose metrics.
// This should be called once at application startup.
func SetupMetricsEndpoint(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sentry.ReportIssue(err, sentry.IssueTypeFatal, logger.For("metrics"))
		}
	}()

	return server
}

// IncErrorCountAndLog increments the error counter for a component and logs a debug message if a logger is provided.
func IncErrorCountAndLog(component, instance string, err error, logger *zap.SugaredLogger) {
	IncErrorCount(component, instance)

	if logger != nil {
		logger.Debugf("Component %s instance %s failed: %v", component, instance, err)
	}
}

// IncErrorCount increments the error counter for a component.
func IncErrorCount(component, instance string) {
	errorCounter.WithLabelValues(component, instance).Inc()
}

// InitErrorCounter initializes the error counter for a component.
func InitErrorCounter(component, instance string) {
	errorCounter.WithLabelValues(component, instance).Add(0)
}

// ObserveReconcileTime records the time taken for a control cycle.
func ObserveReconcileTime(component, instance string, duration time.Duration) {
	reconcileTime.WithLabelValues(component, instance).Observe(float64(duration.Milliseconds()))
}

// AddStarvationTime increases the starvation counter by the specified seconds.
func AddStarvationTime(seconds float64) {
	starvationSeconds.Add(seconds)
}

// RecordTouchEvent counts a touch event and the layer that consumed it.
func RecordTouchEvent(instance, event, handledBy string) {
	touchEvents.WithLabelValues(instance, event, handledBy).Inc()
}

// RecordStateTransition counts a transition and updates the current state gauge.
func RecordStateTransition(instance, from, to string, toValue int) {
	stateTransitions.WithLabelValues(instance, from, to).Inc()
	currentState.WithLabelValues(instance).Set(float64(toValue))
}

// SetCurrentState sets the current state gauge without counting a transition.
func SetCurrentState(instance string, value int) {
	currentState.WithLabelValues(instance).Set(float64(value))
}

// RecordColorDispensed counts a color handed out by the color picker.
func RecordColorDispensed(instance string, index int, redraws int) {
	colorsDispensed.WithLabelValues(instance, strconv.Itoa(index)).Inc()
	if redraws > 0 {
		colorRedraws.WithLabelValues(instance).Add(float64(redraws))
	}
}

// IncColorCycleReset counts a cleared color usage mask.
func IncColorCycleReset(instance string) {
	colorCycleResets.WithLabelValues(instance).Inc()
}

// SetRadioEnabled updates the radio gauge.
func SetRadioEnabled(instance string, enabled bool) {
	value := 0.0
	if enabled {
		value = 1
	}
	radioEnabled.WithLabelValues(instance).Set(value)
}
