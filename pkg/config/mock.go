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
	"sync"
	"time"
)

// MockConfigManager is a mock implementation of ConfigManager for testing.
type MockConfigManager struct {
	GetConfigCalled bool
	GetConfigCalls  int
	Config          FullConfig

	// ConfigErrors are returned by consecutive GetConfig calls before
	// ConfigError takes over.
	ConfigErrors []error
	ConfigError  error
	ConfigDelay  time.Duration

	mu sync.Mutex
}

// NewMockConfigManager creates a MockConfigManager returning the defaults.
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{Config: DefaultConfig()}
}

// WithConfig sets the config returned by GetConfig.
func (m *MockConfigManager) WithConfig(cfg FullConfig) *MockConfigManager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Config = cfg

	return m
}

// GetConfig implements the ConfigManager interface.
func (m *MockConfigManager) GetConfig(ctx context.Context) (FullConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetConfigCalled = true
	m.GetConfigCalls++

	if m.ConfigDelay > 0 {
		select {
		case <-time.After(m.ConfigDelay):
		case <-ctx.Done():
			return FullConfig{}, ctx.Err()
		}
	}

	if len(m.ConfigErrors) > 0 {
		err := m.ConfigErrors[0]
		m.ConfigErrors = m.ConfigErrors[1:]
		if err != nil {
			return FullConfig{}, err
		}
	}

	if m.ConfigError != nil {
		return FullConfig{}, m.ConfigError
	}

	return m.Config.Clone(), nil
}
