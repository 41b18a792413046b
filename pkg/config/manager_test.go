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
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap/zaptest"

	"github.com/floower/bloom-core/pkg/backoff"
	"github.com/floower/bloom-core/pkg/config"
)

var _ = Describe("FileConfigManager", func() {
	var (
		ctx     context.Context
		cancel  context.CancelFunc
		dir     string
		path    string
		manager *config.FileConfigManager
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		dir = GinkgoT().TempDir()
		path = filepath.Join(dir, "config.yaml")

		var err error
		manager, err = config.NewFileConfigManager(path)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		cancel()
	})

	It("falls back to the defaults when the file does not exist", func() {
		cfg, err := manager.GetConfig(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg).To(Equal(config.DefaultConfig()))
	})

	It("merges file values over the defaults", func() {
		Expect(os.WriteFile(path, []byte(`
agent:
  name: kitchen
behavior:
  speedMillis: 2000
  colorPickerEnabled: false
  colorScheme:
    - hue: 0.5
      saturation: 1
`), 0o600)).To(Succeed())

		cfg, err := manager.GetConfig(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Agent.Name).To(Equal("kitchen"))
		Expect(cfg.Agent.MetricsPort).To(Equal(config.DefaultConfig().Agent.MetricsPort))
		Expect(cfg.Behavior.SpeedMillis).To(Equal(2000))
		Expect(cfg.Behavior.ColorPickerEnabled).To(BeFalse())
		Expect(cfg.Behavior.ColorScheme).To(Equal([]config.HSBColor{{Hue: 0.5, Saturation: 1}}))
		Expect(cfg.Behavior.MaxOpenLevel).To(Equal(config.DefaultBehaviorConfig().MaxOpenLevel))
	})

	It("reads the file fresh on every call", func() {
		Expect(os.WriteFile(path, []byte("behavior:\n  speedMillis: 3000\n"), 0o600)).To(Succeed())

		first, err := manager.GetConfig(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Behavior.SpeedMillis).To(Equal(3000))

		first.Behavior.ColorScheme[0].Hue = 0.99

		Expect(os.WriteFile(path, []byte("behavior:\n  speedMillis: 4000\n"), 0o600)).To(Succeed())

		second, err := manager.GetConfig(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Behavior.SpeedMillis).To(Equal(4000))
		Expect(second.Behavior.ColorScheme[0].Hue).To(Equal(config.DefaultColorScheme()[0].Hue))
	})

	It("treats an empty file as transient", func() {
		Expect(os.WriteFile(path, []byte("   \n"), 0o600)).To(Succeed())

		_, err := manager.GetConfig(ctx)
		Expect(backoff.IsTransientError(err)).To(BeTrue())
	})

	It("treats a parse failure as permanent", func() {
		Expect(os.WriteFile(path, []byte("behavior: [unclosed"), 0o600)).To(Succeed())

		_, err := manager.GetConfig(ctx)
		Expect(backoff.IsPermanentError(err)).To(BeTrue())
	})

	It("treats an invalid palette as permanent", func() {
		Expect(os.WriteFile(path, []byte("behavior:\n  colorScheme: []\n"), 0o600)).To(Succeed())

		_, err := manager.GetConfig(ctx)
		Expect(backoff.IsPermanentError(err)).To(BeTrue())
		Expect(err).To(MatchError(ContainSubstring("at least one color")))
	})

	It("treats read failures as transient", func() {
		manager.WithReadFile(func(string) ([]byte, error) {
			return nil, errors.New("device busy") //nolint:err113 // Test needs dynamic error
		})

		_, err := manager.GetConfig(ctx)
		Expect(backoff.IsTransientError(err)).To(BeTrue())
	})

	Context("with environment overrides", func() {
		AfterEach(func() {
			for _, key := range []string{config.EnvSpeedMillis, config.EnvColorPicker, config.EnvColorBrightness} {
				Expect(os.Unsetenv(key)).To(Succeed())
			}
		})

		It("lets the environment win over the file", func() {
			Expect(os.WriteFile(path, []byte("behavior:\n  speedMillis: 2000\n"), 0o600)).To(Succeed())
			Expect(os.Setenv(config.EnvSpeedMillis, "1500")).To(Succeed())
			Expect(os.Setenv(config.EnvColorPicker, "off")).To(Succeed())

			cfg, err := manager.GetConfig(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Behavior.SpeedMillis).To(Equal(1500))
			Expect(cfg.Behavior.ColorPickerEnabled).To(BeFalse())
		})

		It("rejects malformed override values", func() {
			Expect(os.Setenv(config.EnvColorBrightness, "bright")).To(Succeed())

			_, err := manager.GetConfig(ctx)
			Expect(backoff.IsPermanentError(err)).To(BeTrue())
		})
	})
})

var _ = Describe("LoadConfig", func() {
	It("retries transient failures", func() {
		mock := config.NewMockConfigManager()
		mock.ConfigErrors = []error{
			backoff.NewTransientError(errors.New("not yet")), //nolint:err113 // Test needs dynamic error
		}

		cfg, err := config.LoadConfig(context.Background(), mock, zaptest.NewLogger(GinkgoT()).Sugar())
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg).To(Equal(config.DefaultConfig()))
		Expect(mock.GetConfigCalls).To(Equal(2))
	})

	It("does not retry permanent failures", func() {
		mock := config.NewMockConfigManager()
		mock.ConfigError = backoff.NewPermanentError(errors.New("bad palette")) //nolint:err113 // Test needs dynamic error

		_, err := config.LoadConfig(context.Background(), mock, zaptest.NewLogger(GinkgoT()).Sugar())
		Expect(err).To(MatchError(ContainSubstring("bad palette")))
		Expect(mock.GetConfigCalls).To(Equal(1))
	})
})
