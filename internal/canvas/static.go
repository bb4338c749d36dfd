/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"gridshell/internal/domain"
	"gridshell/internal/inventory"
	"gridshell/internal/storage"
)

var (
	ErrSlotNotFound = errors.New("slot not found")
	ErrSlotLocked   = errors.New("slot is locked")
)

// Static is the fixed-slot canvas for one static tab. Unlike the dynamic
// canvas it does not autosave: edits accumulate in memory and reach disk
// only through Save, with Revert discarding them.
type Static struct {
	store storage.KV
	inv   *inventory.Inventory

	mu    sync.Mutex
	tabID string
	state domain.StaticCanvasState
	dirty bool
}

// OpenStatic restores the slot canvas for tab, falling back to the tab's
// embedded slots and finally to the starter template.
func OpenStatic(store storage.KV, inv *inventory.Inventory, tab domain.Tab) (*Static, error) {
	if tab.Type != domain.TabStatic {
		return nil, fmt.Errorf("tab %s is %q, want static", tab.ID, tab.Type)
	}
	s := &Static{store: store, inv: inv, tabID: tab.ID}
	if store.Get(storage.StaticCanvasKey(tab.ID), &s.state) && s.state.TabID == tab.ID {
		return s, nil
	}
	if len(tab.Components) > 0 {
		s.state = domain.StaticCanvasState{
			TabID: tab.ID,
			Slots: append([]domain.ComponentInstance(nil), tab.Components...),
		}
		return s, nil
	}
	s.state = StarterTemplate(tab.ID)
	// the template is a proposal, not a saved document
	s.dirty = true
	return s, nil
}

// StarterTemplate is the slot arrangement a fresh static tab opens with:
// locked header and footer bands with a two-column body between them.
func StarterTemplate(tabID string) domain.StaticCanvasState {
	return domain.StaticCanvasState{
		TabID: tabID,
		Slots: []domain.ComponentInstance{
			{ID: "slot-header", Slot: &domain.SlotRect{X: 0, Y: 0, Width: 100, Height: 10, Locked: true, Label: "Header"}},
			{ID: "slot-body-left", Slot: &domain.SlotRect{X: 0, Y: 10, Width: 50, Height: 80, Label: "Body Left"}},
			{ID: "slot-body-right", Slot: &domain.SlotRect{X: 50, Y: 10, Width: 50, Height: 80, Label: "Body Right"}},
			{ID: "slot-footer", Slot: &domain.SlotRect{X: 0, Y: 90, Width: 100, Height: 10, Locked: true, Label: "Footer"}},
		},
	}
}

// TabID returns the owning tab's id.
func (s *Static) TabID() string { return s.tabID }

// State returns a copy of the in-memory slot document, saved or not.
func (s *Static) State() domain.StaticCanvasState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.Slots = make([]domain.ComponentInstance, len(s.state.Slots))
	for i, sl := range s.state.Slots {
		out.Slots[i] = sl
		if sl.Slot != nil {
			r := *sl.Slot
			out.Slots[i].Slot = &r
		}
	}
	return out
}

// HasUnsavedChanges reports whether the canvas differs from disk.
func (s *Static) HasUnsavedChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Save persists the slot document and clears the dirty flag.
func (s *Static) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Put(storage.StaticCanvasKey(s.tabID), s.state); err != nil {
		return fmt.Errorf("save canvas %s: %w", s.tabID, err)
	}
	s.dirty = false
	return nil
}

// Revert discards unsaved changes, restoring the last persisted document or
// the starter template when nothing was ever saved.
func (s *Static) Revert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var persisted domain.StaticCanvasState
	if s.store.Get(storage.StaticCanvasKey(s.tabID), &persisted) && persisted.TabID == s.tabID {
		s.state = persisted
		s.dirty = false
		return
	}
	s.state = StarterTemplate(s.tabID)
	s.dirty = true
}

func (s *Static) slotLocked(slotID string) (*domain.ComponentInstance, error) {
	for i := range s.state.Slots {
		if s.state.Slots[i].ID == slotID {
			return &s.state.Slots[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, slotID)
}

// AssignComponent binds a catalog component to a slot. Locked slots accept
// assignments; only their geometry is pinned.
func (s *Static) AssignComponent(slotID, componentID string) error {
	if _, ok := s.inv.Get(componentID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, componentID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, err := s.slotLocked(slotID)
	if err != nil {
		return err
	}
	slot.ComponentID = componentID
	s.dirty = true
	return nil
}

// ClearSlot removes a slot's component binding, keeping the slot itself.
func (s *Static) ClearSlot(slotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, err := s.slotLocked(slotID)
	if err != nil {
		return err
	}
	slot.ComponentID = ""
	s.dirty = true
	return nil
}

// MoveSlot replaces a slot's rectangle. Coordinates are clamped into the
// 0-100 canvas rather than rejected. Locked slots refuse.
func (s *Static) MoveSlot(slotID string, r domain.SlotRect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, err := s.slotLocked(slotID)
	if err != nil {
		return err
	}
	if slot.Slot != nil && slot.Slot.Locked {
		return fmt.Errorf("%w: %s", ErrSlotLocked, slotID)
	}
	clamped := clampRect(r)
	if slot.Slot != nil {
		clamped.Locked = slot.Slot.Locked
		if clamped.Label == "" {
			clamped.Label = slot.Slot.Label
		}
	}
	slot.Slot = &clamped
	s.dirty = true
	return nil
}

// AddSlot appends an unlocked slot with the given geometry.
func (s *Static) AddSlot(r domain.SlotRect, label string) (domain.ComponentInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clamped := clampRect(r)
	clamped.Locked = false
	clamped.Label = label
	slot := domain.ComponentInstance{
		ID:   "slot-" + uuid.NewString(),
		Slot: &clamped,
	}
	s.state.Slots = append(s.state.Slots, slot)
	s.dirty = true
	return slot, nil
}

// RemoveSlot deletes an unlocked slot and any component bound to it.
func (s *Static) RemoveSlot(slotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Slots {
		if s.state.Slots[i].ID != slotID {
			continue
		}
		if sl := s.state.Slots[i].Slot; sl != nil && sl.Locked {
			return fmt.Errorf("%w: %s", ErrSlotLocked, slotID)
		}
		s.state.Slots = append(s.state.Slots[:i], s.state.Slots[i+1:]...)
		s.dirty = true
		return nil
	}
	return fmt.Errorf("%w: %s", ErrSlotNotFound, slotID)
}

// clampRect forces a rectangle into the percentage canvas: every edge lands
// in 0-100 and the size shrinks before the origin moves.
func clampRect(r domain.SlotRect) domain.SlotRect {
	clamp := func(v, lo, hi float64) float64 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	r.Width = clamp(r.Width, 0, 100)
	r.Height = clamp(r.Height, 0, 100)
	r.X = clamp(r.X, 0, 100-r.Width)
	r.Y = clamp(r.Y, 0, 100-r.Height)
	return r
}
