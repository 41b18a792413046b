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

package backoff

import (
	"context"
	"time"

	cbackoff "github.com/cenkalti/backoff"
)

// RetryConfig bounds a retried operation.
type RetryConfig struct {
	InitialInterval time.Duration
	MaxRetries      uint64
}

// Retry runs op until it succeeds, returns a permanent error, the context is
// cancelled or the retry budget is spent. notify, if set, is called after
// every failed attempt that will be retried.
func Retry(ctx context.Context, cfg RetryConfig, op func() error, notify func(err error, next time.Duration)) error {
	exp := cbackoff.NewExponentialBackOff()
	if cfg.InitialInterval > 0 {
		exp.InitialInterval = cfg.InitialInterval
	}
	// The retry count is the only budget; elapsed time is bounded by ctx.
	exp.MaxElapsedTime = 0

	policy := cbackoff.WithContext(cbackoff.WithMaxRetries(exp, cfg.MaxRetries), ctx)

	wrapped := func() error {
		err := op()
		if err != nil && IsPermanentError(err) {
			return &cbackoff.PermanentError{Err: err}
		}

		return err
	}

	if notify == nil {
		return cbackoff.Retry(wrapped, policy)
	}

	return cbackoff.RetryNotify(wrapped, policy, notify)
}
