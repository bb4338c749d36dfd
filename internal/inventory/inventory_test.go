package inventory

import (
	"testing"

	"gridshell/internal/domain"
)

func TestSearchAllTokensMustMatch(t *testing.T) {
	inv := NewWithBuiltins()

	got := inv.Search("chart", nil)
	if len(got) == 0 {
		t.Fatalf("expected chart results, got none")
	}
	for _, m := range got {
		if !matchesTokens(m, []string{"chart"}) {
			t.Fatalf("entry %q does not match query", m.ID)
		}
	}

	// multi-token: every token must match somewhere in the entry text
	got = inv.Search("chart volatility", nil)
	if len(got) != 1 || got[0].ID != "volatility-surface" {
		t.Fatalf("chart volatility = %v, want [volatility-surface]", ids(got))
	}

	got = inv.Search("no-such-widget", nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("no-match query must return empty non-nil slice, got %v", got)
	}
}

func TestSearchNameMatchesSortFirst(t *testing.T) {
	inv := NewWithBuiltins()
	got := inv.Search("rates", nil)
	if len(got) < 2 {
		t.Fatalf("expected several rates results, got %v", ids(got))
	}
	// live-rates, fx-matrix and yield-curve all carry the "rates" tag, but
	// only live-rates has it in the name.
	if got[0].ID != "live-rates" {
		t.Fatalf("first result = %q, want live-rates (name match)", got[0].ID)
	}
}

func TestSearchQualityRankBreaksTies(t *testing.T) {
	inv := New()
	for _, m := range []Meta{
		{ID: "a-basic", Name: "alpha basic", Quality: QualityBasic, Category: "x", Description: "ticker panel"},
		{ID: "a-3000", Name: "alpha prime", Quality: QualityPort3000, Category: "x", Description: "ticker panel"},
		{ID: "a-enh", Name: "alpha plus", Quality: QualityEnhanced, Category: "x", Description: "ticker panel"},
		{ID: "a-3200", Name: "alpha next", Quality: QualityPort3200, Category: "x", Description: "ticker panel"},
	} {
		if err := inv.Add(m); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	got := inv.Search("ticker", nil)
	want := []string{"a-3000", "a-3200", "a-enh", "a-basic"}
	if len(got) != len(want) {
		t.Fatalf("got %v", ids(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("rank order = %v, want %v", ids(got), want)
		}
	}
}

func TestSearchFilters(t *testing.T) {
	inv := NewWithBuiltins()

	got := inv.Search("", &Filters{Category: "market-data", Subcategory: "rates"})
	for _, m := range got {
		if m.Category != "market-data" || m.Subcategory != "rates" {
			t.Fatalf("filter leaked entry %q (%s/%s)", m.ID, m.Category, m.Subcategory)
		}
	}
	if len(got) != 2 {
		t.Fatalf("market-data/rates = %v, want live-rates and fx-matrix", ids(got))
	}

	got = inv.Search("chart", &Filters{Quality: QualityPort3200})
	for _, m := range got {
		if m.Quality != QualityPort3200 {
			t.Fatalf("quality filter leaked %q", m.ID)
		}
	}

	got = inv.Search("", &Filters{Tags: []string{"pnl"}})
	if len(got) != 2 {
		t.Fatalf("tag filter pnl = %v", ids(got))
	}
}

func TestByCategory(t *testing.T) {
	inv := NewWithBuiltins()
	got := inv.ByCategory("trading", "")
	if len(got) != 2 {
		t.Fatalf("trading = %v", ids(got))
	}
	got = inv.ByCategory("trading", "entry")
	if len(got) != 1 || got[0].ID != "trade-ticket" {
		t.Fatalf("trading/entry = %v", ids(got))
	}
}

func TestAddRebuildsTokenIndex(t *testing.T) {
	inv := New()
	m := Meta{ID: "w", Name: "widget ux", Description: "original text", Category: "x",
		DefaultSize: domain.GridSize{W: 2, H: 2}}
	if err := inv.Add(m); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := inv.IndexedIDs("original"); len(got) != 1 {
		t.Fatalf("expected token index entry for 'original', got %v", got)
	}
	// tokens of two or fewer characters are not indexed
	if got := inv.IndexedIDs("ux"); len(got) != 0 {
		t.Fatalf("short token 'ux' should not be indexed, got %v", got)
	}

	m.Description = "replacement text"
	if err := inv.Add(m); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if got := inv.IndexedIDs("original"); len(got) != 0 {
		t.Fatalf("stale token survived overwrite: %v", got)
	}
	if got := inv.IndexedIDs("replacement"); len(got) != 1 {
		t.Fatalf("new token missing after overwrite: %v", got)
	}
}

func TestAddRequiresID(t *testing.T) {
	inv := New()
	if err := inv.Add(Meta{Name: "nameless"}); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func ids(ms []Meta) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}
