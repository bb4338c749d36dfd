package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gridshell/internal/domain"
	"gridshell/internal/inventory"
	"gridshell/internal/storage"
)

func wireLayout() domain.Layout {
	return domain.Layout{
		ID:   "l1",
		Name: "Main",
		Tabs: []domain.Tab{
			{
				ID: "t1", Name: "Overview", Type: domain.TabDynamic,
				Components: []domain.ComponentInstance{
					{ID: "a", ComponentID: "live-rates", Grid: &domain.GridPlacement{X: 0, Y: 0, W: 4, H: 3}},
					{ID: "b", ComponentID: "watchlist", Grid: &domain.GridPlacement{X: 4, Y: 0, W: 3, H: 4}},
				},
			},
			{
				ID: "t2", Name: "Reports", Type: domain.TabStatic,
				Components: []domain.ComponentInstance{
					{ID: "slot-header", ComponentID: "pnl-summary", Slot: &domain.SlotRect{X: 0, Y: 0, Width: 100, Height: 10, Locked: true, Label: "Header"}},
					{ID: "slot-body", Slot: &domain.SlotRect{X: 0, Y: 10, Width: 100, Height: 90, Label: "Body"}},
				},
			},
		},
	}
}

func TestExportLayoutSVGTabs(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	inv := inventory.NewWithBuiltins()
	outDir := t.TempDir()

	if err := ExportLayoutSVGTabs(store, inv, wireLayout(), outDir, SVGOptions{IncludeGrid: true}); err != nil {
		t.Fatalf("export: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(outDir, "layout-l1-tab-1.svg"))
	if err != nil {
		t.Fatalf("read tab 1 svg: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "<svg") || !strings.Contains(s, "Live Rates") || !strings.Contains(s, "Watchlist") {
		t.Fatalf("tab 1 svg missing component labels: %s", s)
	}

	b, err = os.ReadFile(filepath.Join(outDir, "layout-l1-tab-2.svg"))
	if err != nil {
		t.Fatalf("read tab 2 svg: %v", err)
	}
	s = string(b)
	// assigned slot shows the component; empty slot keeps its label
	if !strings.Contains(s, "P&amp;L Summary") || !strings.Contains(s, "Body") {
		t.Fatalf("tab 2 svg missing slot labels: %s", s)
	}
}

func TestExportSVGPrefersCanvasRecord(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	// persisted canvas record has a different component than the embedded list
	state := domain.DynamicCanvasState{
		TabID:      "t1",
		Components: []domain.ComponentInstance{{ID: "x", ComponentID: "candle-chart"}},
		Layouts: map[string][]domain.GridItem{
			"lg": {{InstanceID: "x", GridPlacement: domain.GridPlacement{X: 0, Y: 0, W: 6, H: 4}}},
		},
	}
	if err := store.Put(storage.DynamicCanvasKey("t1"), state); err != nil {
		t.Fatalf("put: %v", err)
	}
	outDir := t.TempDir()
	if err := ExportLayoutSVGTabs(store, inventory.NewWithBuiltins(), wireLayout(), outDir, SVGOptions{}); err != nil {
		t.Fatalf("export: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(outDir, "layout-l1-tab-1.svg"))
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "Candlestick Chart") {
		t.Fatalf("canvas record not used: %s", s)
	}
	if strings.Contains(s, "Live Rates") {
		t.Fatalf("embedded fallback used despite canvas record: %s", s)
	}
}

func TestExportLayoutPDF(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	outPath := filepath.Join(t.TempDir(), "layout.pdf")
	if err := ExportLayoutPDF(store, inventory.NewWithBuiltins(), wireLayout(), outPath, PDFOptions{IncludeGrid: true}); err != nil {
		t.Fatalf("export: %v", err)
	}
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if len(b) == 0 || !strings.HasPrefix(string(b[:5]), "%PDF-") {
		t.Fatalf("output is not a PDF (len=%d)", len(b))
	}
}

func TestExportEmptyLayoutFails(t *testing.T) {
	if err := ExportLayoutSVGTabs(nil, nil, domain.Layout{ID: "x"}, t.TempDir(), SVGOptions{}); err == nil {
		t.Fatal("expected error for layout without tabs")
	}
	if err := ExportLayoutPDF(nil, nil, domain.Layout{ID: "x"}, filepath.Join(t.TempDir(), "x.pdf"), PDFOptions{}); err == nil {
		t.Fatal("expected error for layout without tabs")
	}
}
