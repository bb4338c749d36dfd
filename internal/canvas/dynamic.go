/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas manages per-tab component placement. Two strategies exist
// with deliberately different save semantics: the dynamic grid canvas
// persists after every mutation, the static slot canvas accumulates changes
// and persists only on an explicit Save.
package canvas

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gridshell/internal/domain"
	"gridshell/internal/inventory"
	applog "gridshell/internal/log"
	"gridshell/internal/storage"
	"gridshell/internal/undo"
)

var (
	ErrInstanceNotFound  = errors.New("component instance not found")
	ErrUnknownComponent  = errors.New("component not in catalog")
	ErrUnknownBreakpoint = errors.New("unknown breakpoint")
	ErrOutOfBounds       = errors.New("placement out of bounds")
	ErrPlacementOverlap  = errors.New("placement overlaps another component")
)

// Breakpoint is one responsive width band of the dynamic grid.
type Breakpoint struct {
	Name string
	Cols int
}

// Breakpoints lists the grid's width bands, widest first. Geometry is kept
// per band so a narrow viewport can stack what a wide one tiles.
var Breakpoints = []Breakpoint{
	{Name: "lg", Cols: 12},
	{Name: "md", Cols: 10},
	{Name: "sm", Cols: 6},
	{Name: "xs", Cols: 4},
	{Name: "xxs", Cols: 2},
}

func breakpointCols(name string) (int, bool) {
	for _, bp := range Breakpoints {
		if bp.Name == name {
			return bp.Cols, true
		}
	}
	return 0, false
}

// LayoutMirror receives the canvas's component list after each change so
// the owning layout document stays in sync. workspace.Manager implements it.
type LayoutMirror interface {
	SetComponents(tabID string, components []domain.ComponentInstance) error
}

// Dynamic is the autosaving grid canvas for one dynamic tab. SetAutosave
// can defer writes for batch edits; the default writes on every mutation.
type Dynamic struct {
	store   storage.KV
	inv     *inventory.Inventory
	mirror  LayoutMirror  // may be nil
	history *undo.Manager // may be nil
	log     *slog.Logger

	mu       sync.Mutex
	state    domain.DynamicCanvasState
	autosave bool
	dirty    bool

	// now is swappable for deterministic instance ids in tests
	now func() time.Time
}

// OpenDynamic restores the canvas for tab. Restore cascades: the canvas
// record wins, the tab's embedded component list is the fallback, and an
// empty canvas is the base case.
func OpenDynamic(store storage.KV, inv *inventory.Inventory, mirror LayoutMirror, tab domain.Tab) (*Dynamic, error) {
	if tab.Type != domain.TabDynamic {
		return nil, fmt.Errorf("tab %s is %q, want dynamic", tab.ID, tab.Type)
	}
	d := &Dynamic{
		store:    store,
		inv:      inv,
		mirror:   mirror,
		autosave: true,
		log:      applog.WithComponent("canvas.dynamic"),
		now:      time.Now,
	}
	if store.Get(storage.DynamicCanvasKey(tab.ID), &d.state) && d.state.TabID == tab.ID {
		return d, nil
	}
	d.state = domain.DynamicCanvasState{
		TabID:      tab.ID,
		Components: []domain.ComponentInstance{},
		Layouts:    map[string][]domain.GridItem{},
	}
	if len(tab.Components) > 0 {
		// rebuild geometry from the embedded list
		d.state.Components = append(d.state.Components, tab.Components...)
		for _, bp := range Breakpoints {
			items := make([]domain.GridItem, 0, len(tab.Components))
			for _, c := range tab.Components {
				g := domain.GridPlacement{W: 2, H: 2}
				if c.Grid != nil {
					g = *c.Grid
				}
				g = fitToColumns(g, bp.Cols)
				if collides(items, g) {
					g = firstFit(items, bp.Cols, domain.GridSize{W: g.W, H: g.H})
				}
				items = append(items, domain.GridItem{InstanceID: c.ID, GridPlacement: g})
			}
			d.state.Layouts[bp.Name] = items
		}
		if err := d.saveLocked(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// TabID returns the owning tab's id.
func (d *Dynamic) TabID() string { return d.state.TabID }

// AttachHistory enables undo for this canvas: every mutation records the
// prior state in the shared per-tab snapshot stacks.
func (d *Dynamic) AttachHistory(h *undo.Manager) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history = h
}

// SetAutosave toggles write-per-mutation. With autosave off, mutations
// accumulate in memory until Save; the workspace autosave_canvas setting
// feeds this so batch edits land as one write.
func (d *Dynamic) SetAutosave(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.autosave = on
}

// HasUnsavedChanges reports whether mutations are waiting for a Save.
// Always false while autosave is on.
func (d *Dynamic) HasUnsavedChanges() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

// Save persists the canvas document regardless of the autosave setting.
func (d *Dynamic) Save() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.persistLocked()
}

// snapshotLocked records the current document as the pre-mutation state.
func (d *Dynamic) snapshotLocked() {
	if d.history == nil {
		return
	}
	blob, err := json.Marshal(d.state)
	if err != nil {
		d.log.Warn("snapshot canvas failed", slog.String("tab", d.state.TabID), slog.Any("err", err))
		return
	}
	d.history.PushSnapshot(undo.Snapshot{TabID: d.state.TabID, Blob: blob, TS: d.now()})
}

// Undo restores the most recent pre-mutation snapshot and autosaves it.
func (d *Dynamic) Undo() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.history == nil {
		return errors.New("no history attached")
	}
	s, ok := d.history.Undo(d.state.TabID)
	if !ok {
		return errors.New("nothing to undo")
	}
	var prev domain.DynamicCanvasState
	if err := json.Unmarshal(s.Blob, &prev); err != nil {
		return fmt.Errorf("decode undo snapshot: %w", err)
	}
	d.state = prev
	return d.saveLocked()
}

// State returns a copy of the canvas document.
func (d *Dynamic) State() domain.DynamicCanvasState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return copyDynamicState(d.state)
}

// AddComponent places a catalog component at the first free cell of every
// breakpoint and autosaves. The instance id embeds the creation time so
// repeated adds of the same component stay distinct.
func (d *Dynamic) AddComponent(componentID string) (domain.ComponentInstance, error) {
	meta, ok := d.inv.Get(componentID)
	if !ok {
		return domain.ComponentInstance{}, fmt.Errorf("%w: %s", ErrUnknownComponent, componentID)
	}
	size := meta.DefaultSize
	if size.W < 1 {
		size.W = 2
	}
	if size.H < 1 {
		size.H = 2
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.snapshotLocked()

	inst := domain.ComponentInstance{
		ID:          fmt.Sprintf("%s-%d", componentID, d.now().UnixMilli()),
		ComponentID: componentID,
	}
	placements := make(map[string]domain.GridItem, len(Breakpoints))
	for _, bp := range Breakpoints {
		s := size
		if s.W > bp.Cols {
			s.W = bp.Cols
		}
		g := firstFit(d.state.Layouts[bp.Name], bp.Cols, s)
		placements[bp.Name] = domain.GridItem{InstanceID: inst.ID, GridPlacement: g}
	}
	// the widest band's geometry doubles as the instance's embedded copy
	lg := placements[Breakpoints[0].Name].GridPlacement
	inst.Grid = &lg

	d.state.Components = append(d.state.Components, inst)
	if d.state.Layouts == nil {
		d.state.Layouts = map[string][]domain.GridItem{}
	}
	for name, item := range placements {
		d.state.Layouts[name] = append(d.state.Layouts[name], item)
	}
	if err := d.saveLocked(); err != nil {
		return domain.ComponentInstance{}, err
	}
	return inst, nil
}

// RemoveComponent drops an instance from the canvas and every breakpoint,
// then autosaves.
func (d *Dynamic) RemoveComponent(instanceID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx := -1
	for i, c := range d.state.Components {
		if c.ID == instanceID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrInstanceNotFound, instanceID)
	}
	d.snapshotLocked()
	d.state.Components = append(d.state.Components[:idx], d.state.Components[idx+1:]...)
	for name, items := range d.state.Layouts {
		kept := items[:0]
		for _, it := range items {
			if it.InstanceID != instanceID {
				kept = append(kept, it)
			}
		}
		d.state.Layouts[name] = kept
	}
	return d.saveLocked()
}

// Place moves or resizes an instance within one breakpoint. The placement
// must stay inside the band's columns and may not overlap another
// instance's cells. Autosaves on success.
func (d *Dynamic) Place(instanceID, breakpoint string, g domain.GridPlacement) error {
	cols, ok := breakpointCols(breakpoint)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBreakpoint, breakpoint)
	}
	if g.W < 1 || g.H < 1 || g.X < 0 || g.Y < 0 || g.X+g.W > cols {
		return fmt.Errorf("%w: %+v in %d cols", ErrOutOfBounds, g, cols)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	items := d.state.Layouts[breakpoint]
	idx := -1
	for i, it := range items {
		if it.InstanceID == instanceID {
			idx = i
			continue
		}
		if it.Overlaps(g) {
			return fmt.Errorf("%w: %s and %s", ErrPlacementOverlap, instanceID, it.InstanceID)
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrInstanceNotFound, instanceID)
	}
	d.snapshotLocked()
	items[idx].GridPlacement = g
	if breakpoint == Breakpoints[0].Name {
		for i := range d.state.Components {
			if d.state.Components[i].ID == instanceID {
				gCopy := g
				d.state.Components[i].Grid = &gCopy
			}
		}
	}
	return d.saveLocked()
}

func (d *Dynamic) saveLocked() error {
	if !d.autosave {
		d.dirty = true
		return nil
	}
	return d.persistLocked()
}

func (d *Dynamic) persistLocked() error {
	if err := d.store.Put(storage.DynamicCanvasKey(d.state.TabID), d.state); err != nil {
		return fmt.Errorf("autosave canvas %s: %w", d.state.TabID, err)
	}
	if d.mirror != nil {
		if err := d.mirror.SetComponents(d.state.TabID, append([]domain.ComponentInstance(nil), d.state.Components...)); err != nil {
			// the canvas record is authoritative; a stale mirror only costs
			// the embedded fallback copy
			d.log.Warn("mirror component list failed", slog.String("tab", d.state.TabID), slog.Any("err", err))
		}
	}
	d.dirty = false
	return nil
}

func collides(items []domain.GridItem, g domain.GridPlacement) bool {
	for _, it := range items {
		if it.Overlaps(g) {
			return true
		}
	}
	return false
}

// firstFit scans rows top to bottom, columns left to right, and returns the
// first placement of the given size that collides with nothing.
func firstFit(items []domain.GridItem, cols int, size domain.GridSize) domain.GridPlacement {
	w := size.W
	if w > cols {
		w = cols
	}
	for y := 0; ; y++ {
		for x := 0; x+w <= cols; x++ {
			candidate := domain.GridPlacement{X: x, Y: y, W: w, H: size.H}
			free := true
			for _, it := range items {
				if it.Overlaps(candidate) {
					free = false
					break
				}
			}
			if free {
				return candidate
			}
		}
	}
}

// fitToColumns clips a placement into a band's column count, preserving
// width before position.
func fitToColumns(g domain.GridPlacement, cols int) domain.GridPlacement {
	if g.W > cols {
		g.W = cols
	}
	if g.X+g.W > cols {
		g.X = cols - g.W
	}
	if g.X < 0 {
		g.X = 0
	}
	return g
}

func copyDynamicState(s domain.DynamicCanvasState) domain.DynamicCanvasState {
	out := s
	out.Components = append([]domain.ComponentInstance(nil), s.Components...)
	out.Layouts = make(map[string][]domain.GridItem, len(s.Layouts))
	for name, items := range s.Layouts {
		out.Layouts[name] = append([]domain.GridItem(nil), items...)
	}
	return out
}
