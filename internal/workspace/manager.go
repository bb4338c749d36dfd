/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package workspace owns the tab and layout lifecycle for one user's
// session: the current layout document, the saved-layouts list, the active
// tab pointer and the persisted theme and identity records. Every mutation
// persists synchronously; there is no dirty state to flush at exit.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"gridshell/internal/domain"
	applog "gridshell/internal/log"
	"gridshell/internal/registry"
	"gridshell/internal/storage"
	"gridshell/internal/undo"
)

var (
	ErrNoUser         = errors.New("no user loaded")
	ErrTabNotFound    = errors.New("tab not found")
	ErrLayoutNotFound = errors.New("layout not found")
	ErrTabNotClosable = errors.New("tab is not closable")
	ErrInvalidTabType = errors.New("invalid tab type")
	ErrLayoutActive   = errors.New("layout is active")
)

// Manager coordinates layout and tab state against the durable store and
// the session store. It is safe for concurrent use.
type Manager struct {
	store   storage.KV // durable records
	session storage.KV // session-scoped records (active tab)
	reg     *registry.Registry
	log     *slog.Logger

	mu      sync.Mutex
	user    domain.User
	current domain.Layout
	loaded  bool
	history *undo.Manager // may be nil
}

// NewManager wires a manager over the given stores. Call Load before any
// tab or layout operation.
func NewManager(store, session storage.KV, reg *registry.Registry) *Manager {
	return &Manager{
		store:   store,
		session: session,
		reg:     reg,
		log:     applog.WithComponent("workspace"),
	}
}

// AttachHistory registers the shared undo stacks so a removed tab's
// snapshots are released with it.
func (m *Manager) AttachHistory(h *undo.Manager) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = h
}

// SetUser records the workspace identity and persists it.
func (m *Manager) SetUser(u domain.User) error {
	if u.ID == "" {
		return errors.New("user id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = u
	m.loaded = false // a different user means a different layout
	return m.store.Put(storage.UserKey(), u)
}

// User returns the workspace identity, reading the persisted record when
// none has been set or loaded yet.
func (m *Manager) User() (domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user.ID == "" {
		var u domain.User
		if m.store.Get(storage.UserKey(), &u) && u.ID != "" {
			m.user = u
		}
	}
	return m.user, m.user.ID != ""
}

// Theme returns the persisted theme id, or the default when none is set.
func (m *Manager) Theme() string {
	var theme string
	if !m.store.Get(storage.ThemeKey(), &theme) || theme == "" {
		return "dark"
	}
	return theme
}

// SetTheme persists the theme id.
func (m *Manager) SetTheme(theme string) error {
	return m.store.Put(storage.ThemeKey(), theme)
}

// Load restores the workspace for the stored user: the current layout is
// read (seeding the default layout on first run), legacy component ids are
// rewritten to their canonical form, and the document is checked against
// the layout schema. Schema violations are logged, never fatal; the stored
// record might come from a newer build.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user.ID == "" {
		var u domain.User
		if !m.store.Get(storage.UserKey(), &u) {
			return ErrNoUser
		}
		m.user = u
	}

	var layout domain.Layout
	if !m.store.Get(storage.CurrentLayoutKey(m.user.ID), &layout) {
		layout = DefaultLayout()
		m.log.Info("seeded default layout", slog.String("user", m.user.ID), slog.String("layout", layout.ID))
		if err := m.store.Put(storage.CurrentLayoutKey(m.user.ID), layout); err != nil {
			return fmt.Errorf("seed default layout: %w", err)
		}
	}

	if m.canonicalizeLayout(&layout) {
		m.log.Info("rewrote legacy component ids", slog.String("layout", layout.ID))
		if err := m.store.Put(storage.CurrentLayoutKey(m.user.ID), layout); err != nil {
			return fmt.Errorf("persist migrated layout: %w", err)
		}
	}
	m.migrateSavedLayoutsLocked()

	// Advisory only: a record written by a newer build may fail the schema
	// and should still load.
	if doc, err := json.Marshal(layout); err == nil {
		if err := storage.ValidateLayout(doc); err != nil {
			m.log.Warn("layout schema violation", slog.String("layout", layout.ID), slog.Any("err", err))
		}
	}

	m.current = layout
	m.loaded = true
	return nil
}

// migrateSavedLayoutsLocked rewrites legacy component ids across the saved
// layout list and re-persists the record when anything changed, so the
// migration lands on disk instead of repeating on every read.
func (m *Manager) migrateSavedLayoutsLocked() {
	var layouts []domain.Layout
	if !m.store.Get(storage.LayoutsKey(m.user.ID), &layouts) || len(layouts) == 0 {
		return
	}
	changed := false
	for i := range layouts {
		if m.canonicalizeLayout(&layouts[i]) {
			changed = true
		}
	}
	if !changed {
		return
	}
	m.log.Info("rewrote legacy component ids in saved layouts", slog.String("user", m.user.ID))
	if err := m.store.Put(storage.LayoutsKey(m.user.ID), layouts); err != nil {
		m.log.Warn("persist migrated saved layouts failed", slog.Any("err", err))
	}
}

// canonicalizeLayout rewrites legacy component ids in place and reports
// whether anything changed. Running it twice is a no-op.
func (m *Manager) canonicalizeLayout(l *domain.Layout) bool {
	if m.reg == nil {
		return false
	}
	changed := false
	for ti := range l.Tabs {
		for ci := range l.Tabs[ti].Components {
			c := &l.Tabs[ti].Components[ci]
			if canonical := m.reg.Canonical(c.ComponentID); canonical != c.ComponentID {
				c.ComponentID = canonical
				changed = true
			}
		}
	}
	return changed
}

// Current returns a deep copy of the current layout.
func (m *Manager) Current() (domain.Layout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return domain.Layout{}, ErrNoUser
	}
	return copyLayout(m.current), nil
}

func (m *Manager) persistCurrentLocked() error {
	if err := m.store.Put(storage.CurrentLayoutKey(m.user.ID), m.current); err != nil {
		return fmt.Errorf("persist layout %s: %w", m.current.ID, err)
	}
	return nil
}

// CreateTab appends a tab of the given type and makes it active.
// New tabs are closable; the seeded defaults are the only pinned ones.
func (m *Manager) CreateTab(name string, typ domain.TabType) (domain.Tab, error) {
	if !typ.Valid() {
		return domain.Tab{}, fmt.Errorf("%w: %q", ErrInvalidTabType, typ)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return domain.Tab{}, ErrNoUser
	}
	tab := domain.Tab{
		ID:         uuid.NewString(),
		Name:       name,
		Type:       typ,
		Closable:   true,
		Components: []domain.ComponentInstance{},
	}
	m.current.Tabs = append(m.current.Tabs, tab)
	if err := m.persistCurrentLocked(); err != nil {
		m.current.Tabs = m.current.Tabs[:len(m.current.Tabs)-1]
		return domain.Tab{}, err
	}
	m.setActiveTabLocked(tab.ID)
	return tab, nil
}

// RemoveTab closes a tab and deletes its canvas record. Non-closable tabs
// are refused. Removing the active tab activates its left neighbour, and
// removing the last tab seeds a fresh fallback tab so the active pointer
// never dangles.
func (m *Manager) RemoveTab(tabID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return ErrNoUser
	}
	idx := m.current.TabIndex(tabID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTabNotFound, tabID)
	}
	tab := m.current.Tabs[idx]
	if !tab.Closable {
		return fmt.Errorf("%w: %s", ErrTabNotClosable, tabID)
	}
	m.current.Tabs = append(m.current.Tabs[:idx], m.current.Tabs[idx+1:]...)
	seeded := false
	if len(m.current.Tabs) == 0 {
		m.current.Tabs = []domain.Tab{FallbackTab()}
		seeded = true
		m.log.Info("seeded fallback tab", slog.String("layout", m.current.ID))
	}
	if err := m.persistCurrentLocked(); err != nil {
		return err
	}
	// canvas state keyed by tab id dies with the tab
	var canvasKey string
	if tab.Type == domain.TabStatic {
		canvasKey = storage.StaticCanvasKey(tabID)
	} else {
		canvasKey = storage.DynamicCanvasKey(tabID)
	}
	if err := m.store.Delete(canvasKey); err != nil {
		m.log.Warn("delete canvas record failed", slog.String("tab", tabID), slog.Any("err", err))
	}
	if m.history != nil {
		m.history.ClearTab(tabID)
	}
	if seeded || m.activeTabLocked() == tabID {
		next := idx - 1
		if next < 0 {
			next = 0
		}
		m.setActiveTabLocked(m.current.Tabs[next].ID)
	}
	return nil
}

// RenameTab sets the tab's display name.
func (m *Manager) RenameTab(tabID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return ErrNoUser
	}
	tab := m.current.Tab(tabID)
	if tab == nil {
		return fmt.Errorf("%w: %s", ErrTabNotFound, tabID)
	}
	tab.Name = name
	return m.persistCurrentLocked()
}

// SetEditMode toggles a tab's edit flag.
func (m *Manager) SetEditMode(tabID string, edit bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return ErrNoUser
	}
	tab := m.current.Tab(tabID)
	if tab == nil {
		return fmt.Errorf("%w: %s", ErrTabNotFound, tabID)
	}
	tab.EditMode = edit
	return m.persistCurrentLocked()
}

// TabUpdate is a partial tab mutation; nil fields are left untouched. The
// id, type and closable flag are immutable.
type TabUpdate struct {
	Name     *string
	EditMode *bool
}

// UpdateTab merges the non-nil fields of upd into the tab and persists.
func (m *Manager) UpdateTab(tabID string, upd TabUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return ErrNoUser
	}
	tab := m.current.Tab(tabID)
	if tab == nil {
		return fmt.Errorf("%w: %s", ErrTabNotFound, tabID)
	}
	if upd.Name != nil {
		tab.Name = *upd.Name
	}
	if upd.EditMode != nil {
		tab.EditMode = *upd.EditMode
	}
	return m.persistCurrentLocked()
}

// ReorderTabs rearranges the layout's tabs. ids must be a permutation of
// the existing tab ids.
func (m *Manager) ReorderTabs(ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return ErrNoUser
	}
	if len(ids) != len(m.current.Tabs) {
		return fmt.Errorf("reorder: got %d ids, layout has %d tabs", len(ids), len(m.current.Tabs))
	}
	byID := make(map[string]domain.Tab, len(m.current.Tabs))
	for _, t := range m.current.Tabs {
		byID[t.ID] = t
	}
	reordered := make([]domain.Tab, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrTabNotFound, id)
		}
		delete(byID, id)
		reordered = append(reordered, t)
	}
	m.current.Tabs = reordered
	return m.persistCurrentLocked()
}

// ActiveTab returns the active tab id, defaulting to the first tab when the
// session carries no pointer or points at a removed tab.
func (m *Manager) ActiveTab() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return "", ErrNoUser
	}
	id := m.activeTabLocked()
	if id != "" && m.current.TabIndex(id) >= 0 {
		return id, nil
	}
	if len(m.current.Tabs) == 0 {
		return "", ErrTabNotFound
	}
	return m.current.Tabs[0].ID, nil
}

// SetActiveTab points the session at the given tab.
func (m *Manager) SetActiveTab(tabID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return ErrNoUser
	}
	if m.current.TabIndex(tabID) < 0 {
		return fmt.Errorf("%w: %s", ErrTabNotFound, tabID)
	}
	m.setActiveTabLocked(tabID)
	return nil
}

func (m *Manager) activeTabLocked() string {
	var id string
	m.session.Get(storage.ActiveTabKey(m.user.ID), &id)
	return id
}

func (m *Manager) setActiveTabLocked(tabID string) {
	if err := m.session.Put(storage.ActiveTabKey(m.user.ID), tabID); err != nil {
		m.log.Warn("persist active tab failed", slog.Any("err", err))
	}
}

// SetComponents replaces a tab's embedded component list. Canvas managers
// call this so the layout document mirrors the canvas record.
func (m *Manager) SetComponents(tabID string, components []domain.ComponentInstance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return ErrNoUser
	}
	tab := m.current.Tab(tabID)
	if tab == nil {
		return fmt.Errorf("%w: %s", ErrTabNotFound, tabID)
	}
	tab.Components = components
	return m.persistCurrentLocked()
}

// SavedLayouts returns the user's saved layout list.
func (m *Manager) SavedLayouts() ([]domain.Layout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return nil, ErrNoUser
	}
	return m.savedLayoutsLocked(), nil
}

func (m *Manager) savedLayoutsLocked() []domain.Layout {
	var layouts []domain.Layout
	m.store.Get(storage.LayoutsKey(m.user.ID), &layouts)
	for i := range layouts {
		m.canonicalizeLayout(&layouts[i])
	}
	return layouts
}

// SaveLayoutAs snapshots the current layout into the saved list under a new
// id. Tab ids are preserved so saved layouts keep referencing the same
// canvas records.
func (m *Manager) SaveLayoutAs(name string) (domain.Layout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return domain.Layout{}, ErrNoUser
	}
	snap := copyLayout(m.current)
	snap.ID = uuid.NewString()
	snap.Name = name
	layouts := append(m.savedLayoutsLocked(), snap)
	if err := m.store.Put(storage.LayoutsKey(m.user.ID), layouts); err != nil {
		return domain.Layout{}, fmt.Errorf("persist saved layouts: %w", err)
	}
	return snap, nil
}

// SwitchLayout replaces the current layout with a saved one and records it
// as active. The active tab pointer resets to the new layout's first tab.
func (m *Manager) SwitchLayout(layoutID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return ErrNoUser
	}
	for _, l := range m.savedLayoutsLocked() {
		if l.ID != layoutID {
			continue
		}
		m.current = copyLayout(l)
		if err := m.persistCurrentLocked(); err != nil {
			return err
		}
		if err := m.store.Put(storage.ActiveLayoutKey(m.user.ID), layoutID); err != nil {
			return fmt.Errorf("persist active layout id: %w", err)
		}
		if len(m.current.Tabs) > 0 {
			m.setActiveTabLocked(m.current.Tabs[0].ID)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrLayoutNotFound, layoutID)
}

// DeleteLayout removes a saved layout. The layout currently marked active
// is refused; switch away first.
func (m *Manager) DeleteLayout(layoutID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return ErrNoUser
	}
	var activeID string
	m.store.Get(storage.ActiveLayoutKey(m.user.ID), &activeID)
	if layoutID == activeID {
		return fmt.Errorf("%w: %s", ErrLayoutActive, layoutID)
	}
	layouts := m.savedLayoutsLocked()
	kept := layouts[:0]
	found := false
	for _, l := range layouts {
		if l.ID == layoutID {
			found = true
			continue
		}
		kept = append(kept, l)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrLayoutNotFound, layoutID)
	}
	if err := m.store.Put(storage.LayoutsKey(m.user.ID), kept); err != nil {
		return fmt.Errorf("persist saved layouts: %w", err)
	}
	return nil
}

// RenameLayout renames a saved layout in place.
func (m *Manager) RenameLayout(layoutID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return ErrNoUser
	}
	layouts := m.savedLayoutsLocked()
	for i := range layouts {
		if layouts[i].ID == layoutID {
			layouts[i].Name = name
			if err := m.store.Put(storage.LayoutsKey(m.user.ID), layouts); err != nil {
				return fmt.Errorf("persist saved layouts: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrLayoutNotFound, layoutID)
}

func copyLayout(l domain.Layout) domain.Layout {
	out := l
	out.Tabs = make([]domain.Tab, len(l.Tabs))
	for i, t := range l.Tabs {
		out.Tabs[i] = t
		out.Tabs[i].Components = append([]domain.ComponentInstance(nil), t.Components...)
	}
	return out
}
