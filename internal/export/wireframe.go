/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders layout wireframes to SVG and PDF: one page per
// tab, one labelled rectangle per placed component. The wireframe is a
// review artifact, not a pixel-faithful rendering.
package export

import (
	"fmt"
	"sort"

	"gridshell/internal/domain"
	"gridshell/internal/inventory"
	"gridshell/internal/storage"
)

// Page geometry in points. Tabs render onto a fixed landscape canvas.
const (
	pageWidth  = 1000.0
	pageHeight = 625.0
	gridCols   = 12
	rowHeight  = 52.0
)

// wireRect is one labelled rectangle on a tab page, in page points.
type wireRect struct {
	X, Y, W, H float64
	Label      string
	Locked     bool
}

// tabRects flattens a tab's canvas into page-space rectangles. Geometry
// cascades like the canvas restore: persisted canvas record first, then the
// tab's embedded component list.
func tabRects(store storage.KV, inv *inventory.Inventory, tab domain.Tab) []wireRect {
	switch tab.Type {
	case domain.TabStatic:
		return staticRects(store, inv, tab)
	default:
		return dynamicRects(store, inv, tab)
	}
}

func dynamicRects(store storage.KV, inv *inventory.Inventory, tab domain.Tab) []wireRect {
	cellW := pageWidth / gridCols

	var state domain.DynamicCanvasState
	if store != nil && store.Get(storage.DynamicCanvasKey(tab.ID), &state) && state.TabID == tab.ID {
		componentOf := make(map[string]string, len(state.Components))
		for _, c := range state.Components {
			componentOf[c.ID] = c.ComponentID
		}
		items := append([]domain.GridItem(nil), state.Layouts["lg"]...)
		sort.Slice(items, func(i, j int) bool {
			if items[i].Y != items[j].Y {
				return items[i].Y < items[j].Y
			}
			return items[i].X < items[j].X
		})
		out := make([]wireRect, 0, len(items))
		for _, it := range items {
			out = append(out, wireRect{
				X:     float64(it.X) * cellW,
				Y:     float64(it.Y) * rowHeight,
				W:     float64(it.W) * cellW,
				H:     float64(it.H) * rowHeight,
				Label: componentLabel(inv, componentOf[it.InstanceID], it.InstanceID),
			})
		}
		return out
	}

	out := make([]wireRect, 0, len(tab.Components))
	for _, c := range tab.Components {
		g := domain.GridPlacement{W: 2, H: 2}
		if c.Grid != nil {
			g = *c.Grid
		}
		out = append(out, wireRect{
			X:     float64(g.X) * cellW,
			Y:     float64(g.Y) * rowHeight,
			W:     float64(g.W) * cellW,
			H:     float64(g.H) * rowHeight,
			Label: componentLabel(inv, c.ComponentID, c.ID),
		})
	}
	return out
}

func staticRects(store storage.KV, inv *inventory.Inventory, tab domain.Tab) []wireRect {
	slots := tab.Components
	var state domain.StaticCanvasState
	if store != nil && store.Get(storage.StaticCanvasKey(tab.ID), &state) && state.TabID == tab.ID {
		slots = state.Slots
	}
	out := make([]wireRect, 0, len(slots))
	for _, s := range slots {
		if s.Slot == nil {
			continue
		}
		label := s.Slot.Label
		if s.ComponentID != "" {
			label = componentLabel(inv, s.ComponentID, s.ID)
		}
		out = append(out, wireRect{
			X:      s.Slot.X / 100 * pageWidth,
			Y:      s.Slot.Y / 100 * pageHeight,
			W:      s.Slot.Width / 100 * pageWidth,
			H:      s.Slot.Height / 100 * pageHeight,
			Label:  label,
			Locked: s.Slot.Locked,
		})
	}
	return out
}

func componentLabel(inv *inventory.Inventory, componentID, fallback string) string {
	if inv != nil {
		if meta, ok := inv.Get(componentID); ok {
			if meta.DisplayName != "" {
				return meta.DisplayName
			}
			return meta.Name
		}
	}
	if componentID != "" {
		return componentID
	}
	return fallback
}

// tabIndexes mirrors the page selection convention: empty means all.
func tabIndexes(total int, specific []int) []int {
	if len(specific) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	return specific
}

func tabFileName(layout domain.Layout, tab domain.Tab, n int, ext string) string {
	return fmt.Sprintf("layout-%s-tab-%d.%s", layout.ID, n, ext)
}
