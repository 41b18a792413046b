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

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/floower/bloom-core/pkg/backoff"
	"github.com/floower/bloom-core/pkg/constants"
	"github.com/floower/bloom-core/pkg/env"
	"github.com/floower/bloom-core/pkg/logger"
	"github.com/floower/bloom-core/pkg/metrics"
)

// ConfigManager is the interface for config management.
type ConfigManager interface {
	// GetConfig returns the current config
	GetConfig(ctx context.Context) (FullConfig, error)
}

// FileConfigManager reads the config from a YAML file and applies environment overrides.
type FileConfigManager struct {
	configPath string

	// readFile is swapped in tests
	readFile func(name string) ([]byte, error)

	logger *zap.SugaredLogger
}

// NewFileConfigManager creates a manager for the given path. An empty path
// means FLOOWER_CONFIG, or constants.DefaultConfigPath if that is unset.
func NewFileConfigManager(configPath string) (*FileConfigManager, error) {
	if configPath == "" {
		path, err := env.GetAsString("FLOOWER_CONFIG", false, constants.DefaultConfigPath)
		if err != nil {
			return nil, err
		}
		configPath = path
	}

	return &FileConfigManager{
		configPath: configPath,
		readFile:   os.ReadFile,
		logger:     logger.For(logger.ComponentConfigManager),
	}, nil
}

// WithReadFile replaces the function used to read the config file.
func (m *FileConfigManager) WithReadFile(readFile func(name string) ([]byte, error)) *FileConfigManager {
	m.readFile = readFile

	return m
}

// ConfigPath returns the file this manager reads.
func (m *FileConfigManager) ConfigPath() string {
	return m.configPath
}

// GetConfig reads the config file fresh from disk. A missing file yields the
// defaults. Read failures and empty files are transient, parse, override and
// validation failures are permanent.
func (m *FileConfigManager) GetConfig(ctx context.Context) (FullConfig, error) {
	if ctx.Err() != nil {
		return FullConfig{}, ctx.Err()
	}

	config := DefaultConfig()

	data, err := m.readFile(m.configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		m.logger.Infof("Config file %s does not exist, using defaults", m.configPath)
	case err != nil:
		return FullConfig{}, backoff.NewTransientError(fmt.Errorf("failed to read config file: %w", err))
	case len(strings.TrimSpace(string(data))) == 0:
		// The file may still be in the middle of being written.
		return FullConfig{}, backoff.NewTransientError(fmt.Errorf("config file is empty: %s", m.configPath))
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return FullConfig{}, backoff.NewPermanentError(fmt.Errorf("failed to parse config file: %w", err))
		}
	}

	config, err = ApplyEnvOverrides(config)
	if err != nil {
		return FullConfig{}, backoff.NewPermanentError(err)
	}

	if err := config.Validate(); err != nil {
		return FullConfig{}, backoff.NewPermanentError(fmt.Errorf("invalid config: %w", err))
	}

	return config, nil
}

// LoadConfig fetches the config from the manager, retrying transient failures
// with exponential backoff.
func LoadConfig(ctx context.Context, manager ConfigManager, log *zap.SugaredLogger) (FullConfig, error) {
	if log == nil {
		log = logger.For(logger.ComponentConfigManager)
	}

	var config FullConfig
	start := time.Now()

	err := backoff.Retry(ctx, backoff.RetryConfig{
		InitialInterval: constants.ConfigLoadInitialInterval,
		MaxRetries:      constants.ConfigLoadMaxRetries,
	}, func() error {
		var err error
		config, err = manager.GetConfig(ctx)

		return err
	}, func(err error, next time.Duration) {
		metrics.IncErrorCount(metrics.ComponentConfigManager, "config")
		log.Warnf("Failed to load config, retrying in %s: %v", next, err)
	})
	if err != nil {
		metrics.IncErrorCount(metrics.ComponentConfigManager, "config")

		return FullConfig{}, fmt.Errorf("failed to load config after %s: %w", time.Since(start).Round(time.Millisecond), err)
	}

	log.Debugf("Loaded config in %s", time.Since(start))

	return config, nil
}
