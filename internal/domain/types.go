/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model for gridshell: users, workspace
// layouts, tabs and the component instances placed on their canvases.
// Everything here serializes to human-readable JSON records.

// User identifies the person whose workspace is loaded. gridshell never
// creates or destroys users; identity is supplied externally. The user id
// namespaces all per-user storage keys.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// TabType selects the canvas strategy for a tab.
type TabType string

const (
	// TabDynamic is a draggable/resizable grid canvas with autosave.
	TabDynamic TabType = "dynamic"
	// TabStatic is a percentage-based fixed-slot canvas with explicit save.
	TabStatic TabType = "static"
)

// Valid reports whether t is a known tab type.
func (t TabType) Valid() bool { return t == TabDynamic || t == TabStatic }

// Layout is a named, ordered collection of tabs belonging to one user.
// A user has exactly one current layout at a time. Layout ids are unique;
// names need not be.
type Layout struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tabs []Tab  `json:"tabs"`
}

// Tab is a navigable panel within a layout. The id is stable and immutable:
// it doubles as the storage sub-key for the tab's canvas state, so a
// regenerated id deliberately orphans that state (treated as a new tab).
type Tab struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Type       TabType             `json:"type"`
	Closable   bool                `json:"closable"`
	EditMode   bool                `json:"editMode,omitempty"`
	Components []ComponentInstance `json:"components"`
}

// TabIndex returns the position of the tab with the given id, or -1.
func (l *Layout) TabIndex(tabID string) int {
	for i := range l.Tabs {
		if l.Tabs[i].ID == tabID {
			return i
		}
	}
	return -1
}

// Tab returns the tab with the given id, or nil.
func (l *Layout) Tab(tabID string) *Tab {
	if i := l.TabIndex(tabID); i >= 0 {
		return &l.Tabs[i]
	}
	return nil
}

// ComponentInstance is one placed occurrence of a catalog component inside a
// tab. The instance id is derived from the component id plus the creation
// timestamp and is unique within the tab. Exactly one of Grid/Slot is
// meaningful, selected by the owning tab's type.
type ComponentInstance struct {
	ID          string         `json:"id"`
	ComponentID string         `json:"componentId"`
	Grid        *GridPlacement `json:"grid,omitempty"`
	Slot        *SlotRect      `json:"slot,omitempty"`
}

// GridPlacement is cell geometry on a dynamic canvas, in grid units.
type GridPlacement struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Overlaps reports whether two placements occupy a common cell.
func (g GridPlacement) Overlaps(o GridPlacement) bool {
	return g.X < o.X+o.W && o.X < g.X+g.W && g.Y < o.Y+o.H && o.Y < g.Y+g.H
}

// SlotRect is a percentage-based rectangle on a static canvas. All fields
// are in the range 0-100 relative to the canvas.
type SlotRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Locked bool    `json:"locked,omitempty"`
	Label  string  `json:"label,omitempty"`
}

// GridSize is a component footprint in grid units.
type GridSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

// GridItem ties a grid placement to the component instance it positions.
// The short json name matches the conventional grid-layout wire shape.
type GridItem struct {
	InstanceID string `json:"i"`
	GridPlacement
}

// DynamicCanvasState is the persisted document for a dynamic tab's canvas:
// the component instances plus per-breakpoint geometry.
type DynamicCanvasState struct {
	TabID      string                `json:"tabId"`
	Components []ComponentInstance   `json:"components"`
	Layouts    map[string][]GridItem `json:"layouts,omitempty"` // keyed by breakpoint name
}

// StaticCanvasState is the persisted document for a static tab's canvas.
type StaticCanvasState struct {
	TabID string              `json:"tabId"`
	Slots []ComponentInstance `json:"slots"`
}
