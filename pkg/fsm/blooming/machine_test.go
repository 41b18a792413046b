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

package blooming_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/floower/bloom-core/pkg/config"
	"github.com/floower/bloom-core/pkg/fsm/blooming"
	"github.com/floower/bloom-core/pkg/metrics"
	"github.com/floower/bloom-core/pkg/service/device"
)

var allTouchEvents = []blooming.TouchEvent{blooming.TouchDown, blooming.TouchUp, blooming.TouchLongPress}

type touchKey struct {
	state blooming.State
	event blooming.TouchEvent
}

// handledTouches is the dispatch table: every pair not listed here is ignored.
var handledTouches = map[touchKey]blooming.State{
	{blooming.StateStandby, blooming.TouchDown}:     blooming.StateBloomLight,
	{blooming.StateBloomPicker, blooming.TouchDown}: blooming.StateBloom,
	{blooming.StateLightPicker, blooming.TouchDown}: blooming.StateLight,

	{blooming.StateStandby, blooming.TouchUp}:    blooming.StateBloomOpen,
	{blooming.StateBloomLight, blooming.TouchUp}: blooming.StateBloomOpen,
	{blooming.StateBloom, blooming.TouchUp}:      blooming.StateBloomClose,
	{blooming.StateLight, blooming.TouchUp}:      blooming.StateFade,

	{blooming.StateStandby, blooming.TouchLongPress}:    blooming.StateLightPicker,
	{blooming.StateBloomLight, blooming.TouchLongPress}: blooming.StateLightPicker,
	{blooming.StateLight, blooming.TouchLongPress}:      blooming.StateLightPicker,
	{blooming.StateBloom, blooming.TouchLongPress}:      blooming.StateBloomPicker,
}

// settlingDevice runs onIdle before answering IsIdle, so a test can move the
// behavior between the state check and the transition.
type settlingDevice struct {
	*device.MockService
	onIdle func()
}

func (d *settlingDevice) IsIdle() bool {
	if d.onIdle != nil {
		d.onIdle()
	}

	return d.MockService.IsIdle()
}

// behaviorErrorCount reads floower_core_errors_total for the blooming behavior instance.
func behaviorErrorCount(instance string) float64 {
	families, err := prometheus.DefaultGatherer.Gather()
	Expect(err).NotTo(HaveOccurred())

	for _, family := range families {
		if family.GetName() != "floower_core_errors_total" {
			continue
		}

		for _, m := range family.GetMetric() {
			labels := map[string]string{}
			for _, label := range m.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}

			if labels["component"] == metrics.ComponentBloomingBehavior && labels["instance"] == instance {
				return m.GetCounter().GetValue()
			}
		}
	}

	return 0
}

var _ = Describe("BloomingBehavior", func() {
	var (
		ctx      context.Context
		cancel   context.CancelFunc
		cfg      config.BehaviorConfig
		mockDev  *device.MockService
		base     *scriptedBase
		rng      *sequenceRand
		behavior *blooming.BloomingBehavior
	)

	newBehavior := func() *blooming.BloomingBehavior {
		b, err := blooming.NewBloomingBehaviorWithRand("test-flower", cfg, mockDev, base, rng)
		Expect(err).NotTo(HaveOccurred())

		return b
	}

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)

		cfg = config.BehaviorConfig{
			ColorScheme: []config.HSBColor{
				{Hue: 0.1, Saturation: 0.9},
				{Hue: 0.4, Saturation: 0.8},
				{Hue: 0.7, Saturation: 1},
			},
			ColorBrightness:    0.6,
			SpeedMillis:        4000,
			MaxOpenLevel:       70,
			ColorPickerEnabled: true,
		}
		mockDev = device.NewMockService()
		base = &scriptedBase{}
		rng = newSequenceRand(1, 2, 0)
		behavior = newBehavior()
	})

	AfterEach(func() {
		cancel()
	})

	Describe("construction", func() {
		It("starts in standby with an empty usage mask", func() {
			Expect(behavior.CurrentState()).To(Equal(blooming.StateStandby))
			Expect(behavior.ColorsUsed()).To(BeZero())
			Expect(behavior.PreventTouchUp()).To(BeFalse())
			Expect(behavior.GetID()).To(Equal("test-flower"))
		})

		It("rejects an empty palette", func() {
			cfg.ColorScheme = nil
			_, err := blooming.NewBloomingBehavior("test-flower", cfg, mockDev, base)
			Expect(err).To(MatchError(ContainSubstring("colorScheme")))
		})

		It("rejects a missing device", func() {
			_, err := blooming.NewBloomingBehavior("test-flower", cfg, nil, base)
			Expect(err).To(HaveOccurred())
		})

		It("keeps its own copy of the config", func() {
			cfg.ColorScheme[1].Hue = 0.99
			cfg.SpeedMillis = 1

			Expect(behavior.HandleTouch(ctx, blooming.TouchDown)).To(BeTrue())
			cmd := mockDev.GetCommands()[0]
			Expect(cmd.Hue).To(Equal(0.4))
			Expect(cmd.DurationMillis).To(Equal(4000))
		})

		It("falls back to the default base", func() {
			b, err := blooming.NewBloomingBehavior("test-flower", cfg, mockDev, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(b.CanEnableRadio()).To(BeFalse())
		})
	})

	Describe("HandleTouch", func() {
		It("ignores every pair outside the dispatch table and keeps the state", func() {
			for _, state := range blooming.AllStates() {
				for _, event := range allTouchEvents {
					if _, ok := handledTouches[touchKey{state, event}]; ok {
						continue
					}

					mockDev.Reset()
					behavior.SetCurrentState(state)

					Expect(behavior.HandleTouch(ctx, event)).To(BeFalse(), "%s/%s", state, event)
					Expect(behavior.CurrentState()).To(Equal(state), "%s/%s", state, event)
					Expect(mockDev.GetCommands()).To(BeEmpty(), "%s/%s", state, event)
				}
			}
		})

		It("moves every pair of the dispatch table to its target state", func() {
			for key, target := range handledTouches {
				behavior.SetCurrentState(key.state)

				Expect(behavior.HandleTouch(ctx, key.event)).To(BeTrue(), "%s/%s", key.state, key.event)
				Expect(behavior.CurrentState()).To(Equal(target), "%s/%s", key.state, key.event)
			}
		})

		It("offers every touch to the base first", func() {
			base.handleTouch = func(blooming.Posture, blooming.TouchEvent) bool { return true }

			Expect(behavior.HandleTouch(ctx, blooming.TouchDown)).To(BeTrue())
			Expect(behavior.CurrentState()).To(Equal(blooming.StateStandby))
			Expect(mockDev.GetCommands()).To(BeEmpty())
			Expect(base.touchesSeen).To(Equal([]blooming.TouchEvent{blooming.TouchDown}))
		})

		It("does nothing with a cancelled context", func() {
			cancel()

			Expect(behavior.HandleTouch(ctx, blooming.TouchDown)).To(BeFalse())
			Expect(behavior.CurrentState()).To(Equal(blooming.StateStandby))
			Expect(mockDev.GetCommands()).To(BeEmpty())
		})

		Context("on press", func() {
			It("lights up with exactly one color transition from standby", func() {
				Expect(behavior.HandleTouch(ctx, blooming.TouchDown)).To(BeTrue())
				Expect(behavior.CurrentState()).To(Equal(blooming.StateBloomLight))

				Expect(mockDev.GetCommands()).To(Equal([]device.Command{{
					Name:           device.CommandTransitionColor,
					Hue:            0.4,
					Saturation:     0.8,
					Brightness:     0.6,
					DurationMillis: 4000,
				}}))
				Expect(behavior.ColorsUsed()).To(Equal(uint64(0b010)))
			})

			DescribeTable("confirms the picker on the shown color",
				func(from, to blooming.State) {
					behavior.SetCurrentState(from)

					Expect(behavior.HandleTouch(ctx, blooming.TouchDown)).To(BeTrue())
					Expect(behavior.CurrentState()).To(Equal(to))
					Expect(behavior.PreventTouchUp()).To(BeTrue())
					Expect(mockDev.GetCommands()).To(Equal([]device.Command{{Name: device.CommandStopAnimation, KeepColor: true}}))
				},
				Entry("bloom picker", blooming.StateBloomPicker, blooming.StateBloom),
				Entry("light picker", blooming.StateLightPicker, blooming.StateLight),
			)
		})

		Context("on release", func() {
			It("lights up and opens from standby", func() {
				Expect(behavior.HandleTouch(ctx, blooming.TouchUp)).To(BeTrue())
				Expect(behavior.CurrentState()).To(Equal(blooming.StateBloomOpen))

				Expect(mockDev.GetCommands()).To(Equal([]device.Command{
					{Name: device.CommandTransitionColor, Hue: 0.4, Saturation: 0.8, Brightness: 0.6, DurationMillis: 4000},
					{Name: device.CommandSetPetalsOpenLevel, Level: 70, DurationMillis: 4000},
				}))
			})

			It("opens without a new color after the press", func() {
				Expect(behavior.HandleTouch(ctx, blooming.TouchDown)).To(BeTrue())
				mockDev.Reset()

				Expect(behavior.HandleTouch(ctx, blooming.TouchUp)).To(BeTrue())
				Expect(behavior.CurrentState()).To(Equal(blooming.StateBloomOpen))
				Expect(mockDev.GetCommands()).To(Equal([]device.Command{
					{Name: device.CommandSetPetalsOpenLevel, Level: 70, DurationMillis: 4000},
				}))
				Expect(behavior.ColorsUsed()).To(Equal(uint64(0b010)))
			})

			It("closes the petals from bloom", func() {
				behavior.SetCurrentState(blooming.StateBloom)

				Expect(behavior.HandleTouch(ctx, blooming.TouchUp)).To(BeTrue())
				Expect(behavior.CurrentState()).To(Equal(blooming.StateBloomClose))
				Expect(mockDev.GetCommands()).To(Equal([]device.Command{
					{Name: device.CommandSetPetalsOpenLevel, Level: 0, DurationMillis: 4000},
				}))
			})

			It("fades out in half the time from light", func() {
				behavior.SetCurrentState(blooming.StateLight)

				Expect(behavior.HandleTouch(ctx, blooming.TouchUp)).To(BeTrue())
				Expect(behavior.CurrentState()).To(Equal(blooming.StateFade))
				Expect(mockDev.GetCommands()).To(Equal([]device.Command{
					{Name: device.CommandTransitionColorBrightness, Brightness: 0, DurationMillis: 2000},
				}))
			})
		})

		Context("on long press", func() {
			DescribeTable("starts the rainbow",
				func(from, to blooming.State) {
					behavior.SetCurrentState(from)

					Expect(behavior.HandleTouch(ctx, blooming.TouchLongPress)).To(BeTrue())
					Expect(behavior.CurrentState()).To(Equal(to))
					Expect(behavior.PreventTouchUp()).To(BeTrue())
					Expect(mockDev.GetCommands()).To(Equal([]device.Command{
						{Name: device.CommandStartAnimation, Animation: device.AnimationRainbow},
					}))
				},
				Entry("from standby", blooming.StateStandby, blooming.StateLightPicker),
				Entry("from bloom light", blooming.StateBloomLight, blooming.StateLightPicker),
				Entry("from light", blooming.StateLight, blooming.StateLightPicker),
				Entry("from bloom", blooming.StateBloom, blooming.StateBloomPicker),
			)

			It("is ignored when the color picker is disabled", func() {
				cfg.ColorPickerEnabled = false
				behavior = newBehavior()

				for _, state := range []blooming.State{blooming.StateStandby, blooming.StateBloomLight, blooming.StateLight, blooming.StateBloom} {
					behavior.SetCurrentState(state)

					Expect(behavior.HandleTouch(ctx, blooming.TouchLongPress)).To(BeFalse(), state.String())
					Expect(behavior.CurrentState()).To(Equal(state))
				}
				Expect(mockDev.GetCommands()).To(BeEmpty())
				Expect(behavior.PreventTouchUp()).To(BeFalse())
			})
		})
	})

	Describe("Tick", func() {
		DescribeTable("settles a transient state once the device is idle",
			func(from, to blooming.State) {
				behavior.SetCurrentState(from)

				mockDev.SetIdle(false)
				behavior.Tick(ctx)
				Expect(behavior.CurrentState()).To(Equal(from))

				mockDev.SetIdle(true)
				behavior.Tick(ctx)
				Expect(behavior.CurrentState()).To(Equal(to))
				Expect(mockDev.GetCommands()).To(BeEmpty())
			},
			Entry("opening", blooming.StateBloomOpen, blooming.StateBloom),
			Entry("closing", blooming.StateBloomClose, blooming.StateLight),
			Entry("fading", blooming.StateFade, blooming.StateStandby),
		)

		It("is idempotent in resting states", func() {
			mockDev.SetIdle(true)

			for _, state := range []blooming.State{blooming.StateBloomLight, blooming.StateBloom, blooming.StateBloomPicker, blooming.StateLight, blooming.StateLightPicker} {
				behavior.SetCurrentState(state)
				behavior.Tick(ctx)
				behavior.Tick(ctx)
				Expect(behavior.CurrentState()).To(Equal(state))
			}
			Expect(mockDev.GetCommands()).To(BeEmpty())
		})

		It("does not query the device in standby", func() {
			mockDev.SetIdle(true)
			behavior.Tick(ctx)

			Expect(mockDev.IsIdleCalls).To(BeZero())
			Expect(base.ticks).To(Equal(1))
		})

		It("ticks the base first and lets it enter standby", func() {
			behavior.SetCurrentState(blooming.StateBloomOpen)
			mockDev.SetIdle(true)
			base.onTick = func(ctx context.Context, posture blooming.Posture) {
				Expect(posture.EnterStandby(ctx)).To(Succeed())
			}

			behavior.Tick(ctx)
			Expect(behavior.CurrentState()).To(Equal(blooming.StateStandby))
			Expect(mockDev.IsIdleCalls).To(BeZero())
		})
	})

	Describe("CanEnableRadio", func() {
		It("is true exactly in bloom light and light picker without the base", func() {
			for _, state := range blooming.AllStates() {
				behavior.SetCurrentState(state)

				expected := state == blooming.StateBloomLight || state == blooming.StateLightPicker
				Expect(behavior.CanEnableRadio()).To(Equal(expected), state.String())
			}
		})

		It("adds the states the base permits", func() {
			base.radioStates = map[blooming.State]bool{blooming.StateStandby: true, blooming.StateBloom: true}

			for _, state := range blooming.AllStates() {
				behavior.SetCurrentState(state)

				expected := state == blooming.StateBloomLight || state == blooming.StateLightPicker ||
					state == blooming.StateStandby || state == blooming.StateBloom
				Expect(behavior.CanEnableRadio()).To(Equal(expected), state.String())
			}
			Expect(base.radioQueries).To(Equal(len(blooming.AllStates())))
		})
	})

	Describe("a full gesture sequence with the default base", func() {
		BeforeEach(func() {
			var err error
			behavior, err = blooming.NewBloomingBehaviorWithRand("test-flower", cfg, mockDev, blooming.DefaultBase{}, rng)
			Expect(err).NotTo(HaveOccurred())
		})

		It("blooms, picks a color, closes and fades back to standby", func() {
			mockDev.SetIdle(false)

			Expect(behavior.HandleTouch(ctx, blooming.TouchDown)).To(BeTrue())
			Expect(behavior.HandleTouch(ctx, blooming.TouchUp)).To(BeTrue())
			Expect(behavior.CurrentState()).To(Equal(blooming.StateBloomOpen))

			behavior.Tick(ctx)
			Expect(behavior.CurrentState()).To(Equal(blooming.StateBloomOpen))
			mockDev.SetIdle(true)
			behavior.Tick(ctx)
			Expect(behavior.CurrentState()).To(Equal(blooming.StateBloom))

			Expect(behavior.HandleTouch(ctx, blooming.TouchLongPress)).To(BeTrue())
			Expect(behavior.CurrentState()).To(Equal(blooming.StateBloomPicker))

			// the release of the long press is swallowed by the base
			Expect(behavior.HandleTouch(ctx, blooming.TouchUp)).To(BeTrue())
			Expect(behavior.CurrentState()).To(Equal(blooming.StateBloomPicker))
			Expect(behavior.PreventTouchUp()).To(BeFalse())

			Expect(behavior.HandleTouch(ctx, blooming.TouchDown)).To(BeTrue())
			Expect(behavior.CurrentState()).To(Equal(blooming.StateBloom))
			Expect(behavior.HandleTouch(ctx, blooming.TouchUp)).To(BeTrue())
			Expect(behavior.CurrentState()).To(Equal(blooming.StateBloom))

			Expect(behavior.HandleTouch(ctx, blooming.TouchUp)).To(BeTrue())
			Expect(behavior.CurrentState()).To(Equal(blooming.StateBloomClose))
			behavior.Tick(ctx)
			Expect(behavior.CurrentState()).To(Equal(blooming.StateLight))

			Expect(behavior.HandleTouch(ctx, blooming.TouchUp)).To(BeTrue())
			Expect(behavior.CurrentState()).To(Equal(blooming.StateFade))
			behavior.Tick(ctx)
			Expect(behavior.CurrentState()).To(Equal(blooming.StateStandby))

			Expect(mockDev.CommandNames()).To(Equal([]string{
				device.CommandTransitionColor,
				device.CommandSetPetalsOpenLevel,
				device.CommandStartAnimation,
				device.CommandStopAnimation,
				device.CommandSetPetalsOpenLevel,
				device.CommandTransitionColorBrightness,
			}))
		})

		It("cycles through the palette across sessions of light", func() {
			mockDev.SetIdle(true)
			seen := map[uint64]bool{}

			for i := 0; i < len(cfg.ColorScheme); i++ {
				Expect(behavior.HandleTouch(ctx, blooming.TouchDown)).To(BeTrue())
				Expect(behavior.HandleTouch(ctx, blooming.TouchLongPress)).To(BeTrue())
				Expect(behavior.HandleTouch(ctx, blooming.TouchUp)).To(BeTrue())
				Expect(behavior.HandleTouch(ctx, blooming.TouchDown)).To(BeTrue())
				Expect(behavior.HandleTouch(ctx, blooming.TouchUp)).To(BeTrue())
				Expect(behavior.CurrentState()).To(Equal(blooming.StateLight))
				Expect(behavior.HandleTouch(ctx, blooming.TouchUp)).To(BeTrue())
				behavior.Tick(ctx)
				Expect(behavior.CurrentState()).To(Equal(blooming.StateStandby))

				seen[behavior.ColorsUsed()] = true
			}

			Expect(behavior.ColorsUsed()).To(Equal(uint64(0b111)))
			Expect(seen).To(HaveLen(3))
		})
	})

	Describe("transition errors", func() {
		var dev *settlingDevice

		BeforeEach(func() {
			dev = &settlingDevice{MockService: mockDev}

			var err error
			behavior, err = blooming.NewBloomingBehaviorWithRand("error-flower", cfg, dev, base, rng)
			Expect(err).NotTo(HaveOccurred())
		})

		It("records a rejected event and clears it after the next transition", func() {
			behavior.SetCurrentState(blooming.StateBloomOpen)
			mockDev.SetIdle(true)
			dev.onIdle = func() {
				dev.onIdle = nil
				behavior.SetCurrentState(blooming.StateStandby)
			}
			before := behaviorErrorCount("error-flower")

			behavior.Tick(ctx)
			Expect(behavior.CurrentState()).To(Equal(blooming.StateStandby))
			Expect(behavior.Snapshot().LastError).To(ContainSubstring("open_done"))
			Expect(behaviorErrorCount("error-flower")).To(Equal(before + 1))

			Expect(behavior.HandleTouch(ctx, blooming.TouchDown)).To(BeTrue())
			Expect(behavior.CurrentState()).To(Equal(blooming.StateBloomLight))
			Expect(behavior.Snapshot().LastError).To(BeEmpty())
		})

		It("does not count an event skipped for lack of time as an error", func() {
			before := behaviorErrorCount("error-flower")

			shortCtx, shortCancel := context.WithTimeout(ctx, time.Millisecond)
			defer shortCancel()

			Expect(behavior.HandleTouch(shortCtx, blooming.TouchDown)).To(BeFalse())
			Expect(behavior.CurrentState()).To(Equal(blooming.StateStandby))
			Expect(behavior.Snapshot().LastError).To(BeEmpty())
			Expect(behaviorErrorCount("error-flower")).To(Equal(before))
			Expect(mockDev.GetCommands()).To(BeEmpty())
		})
	})

	Describe("Snapshot", func() {
		It("reports the observable state", func() {
			Expect(behavior.HandleTouch(ctx, blooming.TouchDown)).To(BeTrue())

			snapshot := behavior.Snapshot()
			Expect(snapshot.ID).To(Equal("test-flower"))
			Expect(snapshot.SessionID).To(Equal(behavior.SessionID().String()))
			Expect(snapshot.State).To(Equal("bloom_light"))
			Expect(snapshot.ColorsUsed).To(Equal(uint64(0b010)))
			Expect(snapshot.RadioPermitted).To(BeTrue())
			Expect(snapshot.LastError).To(BeEmpty())
		})
	})
})
