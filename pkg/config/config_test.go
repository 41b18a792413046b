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

package config_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/floower/bloom-core/pkg/config"
)

var _ = Describe("BehaviorConfig", func() {
	var cfg config.BehaviorConfig

	BeforeEach(func() {
		cfg = config.DefaultBehaviorConfig()
	})

	It("accepts the factory defaults", func() {
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.ColorScheme).To(HaveLen(7))
		Expect(cfg.ColorPickerEnabled).To(BeTrue())
	})

	It("rejects an empty palette", func() {
		cfg.ColorScheme = nil
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("at least one color")))
	})

	It("rejects a palette that does not fit the usage mask", func() {
		cfg.ColorScheme = make([]config.HSBColor, 65)
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("at most 64")))
	})

	It("accepts a palette of exactly 64 colors", func() {
		cfg.ColorScheme = make([]config.HSBColor, 64)
		Expect(cfg.Validate()).To(Succeed())
	})

	DescribeTable("rejects out of range values",
		func(mutate func(*config.BehaviorConfig), msg string) {
			mutate(&cfg)
			Expect(cfg.Validate()).To(MatchError(ContainSubstring(msg)))
		},
		Entry("hue", func(c *config.BehaviorConfig) { c.ColorScheme[0].Hue = 1.5 }, "hue"),
		Entry("saturation", func(c *config.BehaviorConfig) { c.ColorScheme[2].Saturation = -0.1 }, "saturation"),
		Entry("brightness", func(c *config.BehaviorConfig) { c.ColorBrightness = 2 }, "colorBrightness"),
		Entry("speed", func(c *config.BehaviorConfig) { c.SpeedMillis = 0 }, "speedMillis"),
		Entry("open level", func(c *config.BehaviorConfig) { c.MaxOpenLevel = 101 }, "maxOpenLevel"),
	)

	It("clones without sharing the palette", func() {
		clone := cfg.Clone()
		clone.ColorScheme[0].Hue = 0.5

		Expect(cfg.ColorScheme[0].Hue).To(Equal(0.0))
		Expect(clone.ColorScheme).To(HaveLen(len(cfg.ColorScheme)))
	})
})
