/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"gridshell/internal/domain"
	"gridshell/internal/inventory"
	"gridshell/internal/storage"
)

// PDFOptions controls PDF export behavior. Units are points. Vector text
// relies on built-in Helvetica for portability.
type PDFOptions struct {
	// IncludeGrid draws the dynamic grid's column guides behind components.
	IncludeGrid bool
	// Tabs selects tab indexes to export; empty exports all.
	Tabs []int
}

// ExportLayoutPDF exports a layout to a single multi-page PDF at outPath,
// one page per tab.
func ExportLayoutPDF(store storage.KV, inv *inventory.Inventory, layout domain.Layout, outPath string, opt PDFOptions) error {
	if len(layout.Tabs) == 0 {
		return fmt.Errorf("layout %s has no tabs", layout.ID)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
		OrientationStr: "",
	})
	pdf.SetTitle(fmt.Sprintf("%s — Layout", layout.Name), false)
	pdf.SetAuthor("GridShell", false)
	pdf.SetFont("Helvetica", "", 12)

	for _, tidx := range tabIndexes(len(layout.Tabs), opt.Tabs) {
		if tidx < 0 || tidx >= len(layout.Tabs) {
			continue
		}
		tab := layout.Tabs[tidx]
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: pageWidth, Ht: pageHeight})

		pdf.SetTextColor(68, 68, 68)
		pdf.SetFont("Helvetica", "", 14)
		pdf.Text(8, 18, fmt.Sprintf("%s (%s)", tab.Name, tab.Type))

		if opt.IncludeGrid && tab.Type == domain.TabDynamic {
			pdf.SetDrawColor(221, 221, 221)
			pdf.SetLineWidth(0.5)
			cellW := pageWidth / gridCols
			for c := 1; c < gridCols; c++ {
				x := float64(c) * cellW
				pdf.Line(x, 0, x, pageHeight)
			}
		}

		for _, r := range tabRects(store, inv, tab) {
			pdf.SetFillColor(245, 245, 245)
			if r.Locked {
				pdf.SetDrawColor(153, 102, 204)
			} else {
				pdf.SetDrawColor(51, 51, 51)
			}
			pdf.SetLineWidth(1)
			pdf.Rect(r.X, r.Y, r.W, r.H, "FD")
			if r.Label != "" {
				pdf.SetTextColor(0, 0, 0)
				pdf.SetFont("Helvetica", "", 12)
				pdf.Text(r.X+6, r.Y+16, r.Label)
			}
		}
	}

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
