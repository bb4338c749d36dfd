/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gridshell/internal/domain"
	"gridshell/internal/inventory"
	"gridshell/internal/storage"
)

// SVGOptions controls SVG export behavior.
type SVGOptions struct {
	// IncludeGrid draws the dynamic grid's column guides behind components.
	IncludeGrid bool
	// Tabs selects tab indexes to export; empty exports all.
	Tabs []int
}

// ExportLayoutSVGTabs exports each tab of a layout as a separate SVG file
// named layout-<layout-id>-tab-<n>.svg under outDir.
func ExportLayoutSVGTabs(store storage.KV, inv *inventory.Inventory, layout domain.Layout, outDir string, opt SVGOptions) error {
	if len(layout.Tabs) == 0 {
		return fmt.Errorf("layout %s has no tabs", layout.ID)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}

	for _, tidx := range tabIndexes(len(layout.Tabs), opt.Tabs) {
		if tidx < 0 || tidx >= len(layout.Tabs) {
			continue
		}
		tab := layout.Tabs[tidx]

		var buf bytes.Buffer
		var werr error
		wf := func(format string, args ...any) {
			if werr != nil {
				return
			}
			_, werr = fmt.Fprintf(&buf, format, args...)
		}

		wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
		wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%g\" height=\"%g\" viewBox=\"0 0 %g %g\">\n", pageWidth, pageHeight, pageWidth, pageHeight)
		wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"#ffffff\"/>\n", pageWidth, pageHeight)
		wf("  <text x=\"8\" y=\"18\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"14\" fill=\"#444\">%s (%s)</text>\n", escText(tab.Name), tab.Type)

		if opt.IncludeGrid && tab.Type == domain.TabDynamic {
			cellW := pageWidth / gridCols
			for c := 1; c < gridCols; c++ {
				x := float64(c) * cellW
				wf("  <line x1=\"%g\" y1=\"0\" x2=\"%g\" y2=\"%g\" stroke=\"#dddddd\" stroke-width=\"0.5\"/>\n", x, x, pageHeight)
			}
		}

		for _, r := range tabRects(store, inv, tab) {
			stroke := "#333333"
			if r.Locked {
				stroke = "#9966cc"
			}
			wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"#f5f5f5\" stroke=\"%s\" stroke-width=\"1\"/>\n", r.X, r.Y, r.W, r.H, stroke)
			if r.Label != "" {
				wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"12\" fill=\"#000\">%s</text>\n", r.X+6, r.Y+16, escText(r.Label))
			}
		}

		wf("</svg>\n")
		if werr != nil {
			return fmt.Errorf("build svg: %w", werr)
		}

		name := filepath.Join(outDir, tabFileName(layout, tab, tidx+1, "svg"))
		if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write svg: %w", err)
		}
	}
	return nil
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
