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

package control

import (
	"sync"
	"time"

	"github.com/tiendc/go-deepcopy"

	"github.com/floower/bloom-core/pkg/config"
	"github.com/floower/bloom-core/pkg/fsm/blooming"
	"github.com/floower/bloom-core/pkg/service/device"
)

// TouchStats counts touch events taken from the queue.
type TouchStats struct {
	Handled uint64 `json:"handled"`
	Ignored uint64 `json:"ignored"`
	Dropped uint64 `json:"dropped"`
}

// SystemSnapshot is the state of the flower after a control cycle or touch.
// Readers outside the control goroutine only ever see copies of it.
type SystemSnapshot struct {
	SnapshotTime time.Time             `json:"snapshotTime"`
	Device       *device.Status        `json:"device,omitempty"`
	Behavior     blooming.Snapshot     `json:"behavior"`
	Config       config.BehaviorConfig `json:"config"`
	Touches      TouchStats            `json:"touches"`
	Tick         uint64                `json:"tick"`
	RadioEnabled bool                  `json:"radioEnabled"`
}

// SnapshotManager manages thread-safe storage and retrieval of system snapshots
type SnapshotManager struct {
	mu           sync.RWMutex
	lastSnapshot *SystemSnapshot
}

// NewSnapshotManager creates a new snapshot manager
func NewSnapshotManager() *SnapshotManager {
	return &SnapshotManager{}
}

// UpdateSnapshot replaces the stored snapshot. The caller must not modify it afterwards.
func (s *SnapshotManager) UpdateSnapshot(snapshot *SystemSnapshot) {
	if s == nil || snapshot == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSnapshot = snapshot
}

// GetSnapshot returns the most recent snapshot, or nil before the first cycle.
func (s *SnapshotManager) GetSnapshot() *SystemSnapshot {
	if s == nil {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastSnapshot
}

// GetDeepCopySnapshot returns a deep copy of the most recent snapshot.
// The second return value is false if there is no snapshot yet.
func (s *SnapshotManager) GetDeepCopySnapshot() (SystemSnapshot, bool) {
	if s == nil {
		return SystemSnapshot{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastSnapshot == nil {
		return SystemSnapshot{}, false
	}

	var snapshotCopy SystemSnapshot
	if err := deepcopy.Copy(&snapshotCopy, s.lastSnapshot); err != nil {
		return SystemSnapshot{}, false
	}

	return snapshotCopy, true
}
