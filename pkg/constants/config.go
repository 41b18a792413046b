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

package constants

import "time"

const (
	// DefaultConfigPath is where the behavior configuration is read from.
	DefaultConfigPath = "/data/config.yaml"

	// ConfigLoadMaxRetries is the number of retries for transient config read failures.
	ConfigLoadMaxRetries = 5

	// ConfigLoadInitialInterval is the first backoff interval when loading the config.
	ConfigLoadInitialInterval = 200 * time.Millisecond

	// DefaultMetricsPort serves /metrics.
	DefaultMetricsPort = 8080

	// DefaultAPIPort serves the control API.
	DefaultAPIPort = 8090

	// DefaultAppVersion is reported when the binary was not built with a version tag.
	DefaultAppVersion = "0.0.0-dev"

	DefaultDevelopmentEnvironment = "development"
	DefaultProductionEnvironment  = "production"
)
