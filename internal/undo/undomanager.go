/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"
	"time"
)

// Snapshot represents a reversible state blob for one tab's canvas.
// Blob content is opaque to the manager; size is estimated as len(Blob).
// TS is when the snapshot was captured.
type Snapshot struct {
	TabID string
	Blob  []byte
	TS    time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; older entries are pruned when exceeded.
	MaxBytes int
	// MaxPerTab limits number of snapshots per tab kept in memory (0 means unlimited).
	MaxPerTab int
	// MinInterval coalesces snapshots captured within the interval for the same tab,
	// replacing the previous one instead of pushing a new entry. Drag-resize on the
	// grid canvas produces bursts of near-identical states; coalescing keeps one.
	MinInterval time.Duration
}

// Manager provides an in-memory undo/redo stack per tab with performance safeguards.
// It is safe for concurrent use.
type Manager struct {
	cfg Config
	mu  sync.Mutex
	// per-tab stacks
	undo map[string][]Snapshot
	redo map[string][]Snapshot
	// accounting
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	// Set conservative defaults if not provided
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// PushSnapshot records a snapshot for a tab. If within MinInterval from the last
// snapshot on the same tab, it replaces the last one. Clears redo stack for that tab.
func (m *Manager) PushSnapshot(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[s.TabID]
	if n := len(stack); n > 0 {
		last := stack[n-1]
		if s.TS.Sub(last.TS) < m.cfg.MinInterval {
			// Coalesce: adjust accounting and replace
			m.totalBytes -= len(last.Blob)
			m.totalBytes += len(s.Blob)
			stack[n-1] = s
			m.undo[s.TabID] = stack
			m.redo[s.TabID] = nil
			m.enforceCapsLocked(s.TabID)
			return
		}
	}
	// Push new
	stack = append(stack, s)
	m.undo[s.TabID] = stack
	m.totalBytes += len(s.Blob)
	// Any new change invalidates redo for the tab
	m.redo[s.TabID] = nil
	m.enforceCapsLocked(s.TabID)
}

// Undo pops from the tab undo stack and pushes to redo stack, returning the snapshot.
func (m *Manager) Undo(tabID string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[tabID]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[tabID] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	m.redo[tabID] = append(m.redo[tabID], s)
	return s, true
}

// Redo pops from redo and pushes back to undo.
func (m *Manager) Redo(tabID string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[tabID]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[tabID] = r[:len(r)-1]
	m.undo[tabID] = append(m.undo[tabID], s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(tabID)
	return s, true
}

// ClearTab clears undo/redo stacks for a tab to free memory. Called when a
// tab is removed from its layout.
func (m *Manager) ClearTab(tabID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[tabID] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, tabID)
	delete(m.redo, tabID)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, tabs int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tabs = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, tabs, totalSnapshots
}

func (m *Manager) enforceCapsLocked(tabID string) {
	// Per-tab depth cap
	if m.cfg.MaxPerTab > 0 {
		stack := m.undo[tabID]
		if len(stack) > m.cfg.MaxPerTab {
			// drop the oldest extras
			toDrop := len(stack) - m.cfg.MaxPerTab
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[tabID] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// Global memory cap: prune oldest across all tabs
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		oldestTab := ""
		oldestIdx := -1
		var oldestTS time.Time
		for tab, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if oldestIdx == -1 || stack[0].TS.Before(oldestTS) {
				oldestTab = tab
				oldestIdx = 0
				oldestTS = stack[0].TS
			}
		}
		if oldestIdx == -1 {
			break
		}
		stack := m.undo[oldestTab]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldestTab] = stack[1:]
		if len(m.undo[oldestTab]) == 0 {
			delete(m.undo, oldestTab)
		}
	}
}
