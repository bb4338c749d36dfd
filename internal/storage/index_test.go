package storage

import (
	"context"
	"os"
	"testing"

	"gridshell/internal/domain"
)

func seedLayout(t *testing.T, s *Store, userID string, lay domain.Layout) {
	t.Helper()
	if err := s.Put(CurrentLayoutKey(userID), lay); err != nil {
		t.Fatalf("seed layout: %v", err)
	}
}

func TestInitOrOpenIndexCreatesDatabase(t *testing.T) {
	root := t.TempDir()
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex: %v", err)
	}
	defer db.Close()
	if _, err := os.Stat(IndexPath(root)); err != nil {
		t.Fatalf("index file missing: %v", err)
	}
	var schema int
	if err := db.QueryRow(`SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read version row: %v", err)
	}
	if schema != indexSchemaVersion {
		t.Fatalf("schema = %d, want %d", schema, indexSchemaVersion)
	}
}

func TestRebuildIndexAndWhereUsed(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedLayout(t, s, "u1", domain.Layout{ID: "l1", Name: "Trading", Tabs: []domain.Tab{
		{ID: "t1", Name: "FX", Type: domain.TabDynamic, Closable: true, Components: []domain.ComponentInstance{
			{ID: "live-rates-1", ComponentID: "live-rates"},
			{ID: "candle-chart-1", ComponentID: "candle-chart"},
		}},
	}})
	seedLayout(t, s, "u2", domain.Layout{ID: "l2", Name: "Research", Tabs: []domain.Tab{
		{ID: "t2", Name: "Macro", Type: domain.TabStatic, Closable: true, Components: []domain.ComponentInstance{
			{ID: "live-rates-2", ComponentID: "live-rates"},
		}},
	}})

	n, err := RebuildIndex(ctx, s)
	if err != nil {
		t.Fatalf("RebuildIndex: %v", err)
	}
	if n != 3 {
		t.Fatalf("indexed %d placements, want 3", n)
	}

	used, err := WhereUsed(ctx, s.Root(), "live-rates")
	if err != nil {
		t.Fatalf("WhereUsed: %v", err)
	}
	if len(used) != 2 {
		t.Fatalf("WhereUsed(live-rates) = %d rows, want 2", len(used))
	}
	if used[0].UserID != "u1" || used[0].TabName != "FX" {
		t.Fatalf("unexpected first usage: %+v", used[0])
	}

	none, err := WhereUsed(ctx, s.Root(), "volatility-surface")
	if err != nil {
		t.Fatalf("WhereUsed(unused): %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("WhereUsed of unused component returned %d rows", len(none))
	}
}

func TestSearchUsage(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedLayout(t, s, "u1", domain.Layout{ID: "l1", Name: "Trading Desk", Tabs: []domain.Tab{
		{ID: "t1", Name: "Rates", Type: domain.TabDynamic, Closable: true, Components: []domain.ComponentInstance{
			{ID: "yield-curve-1", ComponentID: "yield-curve"},
		}},
	}})
	if _, err := RebuildIndex(ctx, s); err != nil {
		t.Fatalf("RebuildIndex: %v", err)
	}
	hits, err := SearchUsage(ctx, s.Root(), "rates", 0)
	if err != nil {
		t.Fatalf("SearchUsage: %v", err)
	}
	if len(hits) != 1 || hits[0].ComponentID != "yield-curve" {
		t.Fatalf("SearchUsage(rates) = %+v", hits)
	}
	empty, err := SearchUsage(ctx, s.Root(), "", 0)
	if err != nil || len(empty) != 0 {
		t.Fatalf("SearchUsage of empty text should be empty, got %v, %v", empty, err)
	}
}

func TestPruneOrphanCanvases(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedLayout(t, s, "u1", domain.Layout{ID: "l1", Name: "Main", Tabs: []domain.Tab{
		{ID: "t-live", Name: "Markets", Type: domain.TabDynamic, Closable: true, Components: []domain.ComponentInstance{}},
	}})
	if err := s.Put(DynamicCanvasKey("t-live"), domain.DynamicCanvasState{TabID: "t-live"}); err != nil {
		t.Fatalf("put live canvas: %v", err)
	}
	if err := s.Put(DynamicCanvasKey("t-gone"), domain.DynamicCanvasState{TabID: "t-gone"}); err != nil {
		t.Fatalf("put orphan canvas: %v", err)
	}
	if err := s.Put(StaticCanvasKey("t-gone2"), domain.StaticCanvasState{TabID: "t-gone2"}); err != nil {
		t.Fatalf("put orphan static canvas: %v", err)
	}

	removed, err := PruneOrphanCanvases(ctx, s)
	if err != nil {
		t.Fatalf("PruneOrphanCanvases: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed %d orphans, want 2", removed)
	}
	var st domain.DynamicCanvasState
	if !s.Get(DynamicCanvasKey("t-live"), &st) {
		t.Fatalf("live canvas was pruned")
	}
	if s.Get(DynamicCanvasKey("t-gone"), &st) {
		t.Fatalf("orphan canvas survived prune")
	}
}
