package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"gridshell/internal/domain"
	"gridshell/internal/inventory"
)

func testInventory() *inventory.Inventory {
	inv := inventory.New()
	_ = inv.Add(inventory.Meta{ID: "live-rates", Name: "live-rates", Category: "market-data",
		DefaultSize: domain.GridSize{W: 4, H: 3}})
	_ = inv.Add(inventory.Meta{ID: "metadata-only", Name: "metadata-only", Category: "tools",
		DefaultSize: domain.GridSize{W: 2, H: 2}})
	return inv
}

func TestResolveNative(t *testing.T) {
	r := New(testInventory())
	r.Register("live-rates", NativeLoader("live-rates", func(_ context.Context, size domain.GridSize) (string, error) {
		return "rates", nil
	}))

	res, err := r.Resolve(context.Background(), "live-rates")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.State != StateResolved || res.Widget == nil {
		t.Fatalf("state = %s, widget = %v", res.State, res.Widget)
	}
	out, err := res.Widget.Render(context.Background(), domain.GridSize{W: 4, H: 3})
	if err != nil || out != "rates" {
		t.Fatalf("render = %q, %v", out, err)
	}
	if got := r.StateOf("live-rates"); got != StateResolved {
		t.Fatalf("StateOf = %s", got)
	}
}

func TestResolvePlaceholderVsNotFound(t *testing.T) {
	r := New(testInventory())

	// metadata without a loader is a soft miss
	res, err := r.Resolve(context.Background(), "metadata-only")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.State != StatePlaceholder {
		t.Fatalf("state = %s, want placeholder", res.State)
	}

	// no metadata either: hard miss, still not an error return
	res, err = r.Resolve(context.Background(), "vanished")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.State != StateNotFound {
		t.Fatalf("state = %s, want not-found", res.State)
	}
}

func TestResolveLoaderErrorIsCached(t *testing.T) {
	r := New(testInventory())
	boom := errors.New("backend down")
	var calls atomic.Int32
	r.Register("live-rates", func(ctx context.Context) (Widget, error) {
		calls.Add(1)
		return nil, boom
	})

	_, err := r.Resolve(context.Background(), "live-rates")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if got := r.StateOf("live-rates"); got != StateError {
		t.Fatalf("StateOf = %s", got)
	}

	// error outcome is cached until invalidated
	if _, err := r.Resolve(context.Background(), "live-rates"); !errors.Is(err, boom) {
		t.Fatalf("second resolve err = %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("loader ran %d times, want 1", calls.Load())
	}

	r.Invalidate("live-rates")
	if got := r.StateOf("live-rates"); got != StateUnresolved {
		t.Fatalf("after invalidate StateOf = %s", got)
	}
	_, _ = r.Resolve(context.Background(), "live-rates")
	if calls.Load() != 2 {
		t.Fatalf("loader did not retry after invalidate")
	}
}

func TestResolveDeduplicatesConcurrentLoads(t *testing.T) {
	r := New(testInventory())
	var calls atomic.Int32
	release := make(chan struct{})
	r.Register("live-rates", func(ctx context.Context) (Widget, error) {
		calls.Add(1)
		<-release
		return &nativeWidget{id: "live-rates", render: func(context.Context, domain.GridSize) (string, error) {
			return "ok", nil
		}}, nil
	})

	const n = 8
	var wg sync.WaitGroup
	results := make([]Resolution, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := r.Resolve(context.Background(), "live-rates")
			if err != nil {
				t.Errorf("resolve %d: %v", i, err)
			}
			results[i] = res
		}(i)
	}
	// let the goroutines pile up behind the single load, then release it
	for r.StateOf("live-rates") != StateLoading {
	}
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("loader ran %d times for %d concurrent resolves", calls.Load(), n)
	}
	for i, res := range results {
		if res.State != StateResolved || res.Widget == nil {
			t.Fatalf("result %d: state=%s widget=%v", i, res.State, res.Widget)
		}
	}
}

func TestCanonicalLegacyIDs(t *testing.T) {
	r := New(testInventory())
	if got := r.Canonical("fx-rates"); got != "live-rates" {
		t.Fatalf("Canonical(fx-rates) = %q", got)
	}
	// idempotent on canonical input
	if got := r.Canonical("live-rates"); got != "live-rates" {
		t.Fatalf("Canonical(live-rates) = %q", got)
	}

	r.RegisterLegacy("old-watch", "watchlist")
	if got := r.Canonical("old-watch"); got != "watchlist" {
		t.Fatalf("Canonical(old-watch) = %q", got)
	}

	// resolution through a legacy id lands on the canonical entry
	r.Register("live-rates", NativeLoader("live-rates", func(context.Context, domain.GridSize) (string, error) {
		return "rates", nil
	}))
	res, err := r.Resolve(context.Background(), "spot-rates")
	if err != nil {
		t.Fatalf("resolve legacy: %v", err)
	}
	if res.ID != "live-rates" || res.State != StateResolved {
		t.Fatalf("legacy resolve = %+v", res)
	}
}

func TestScriptLoader(t *testing.T) {
	r := New(testInventory())
	r.Register("metadata-only", ScriptLoader("metadata-only",
		`function(id, w, h) { return id + " " + w + "x" + h; }`))

	res, err := r.Resolve(context.Background(), "metadata-only")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	out, err := res.Widget.Render(context.Background(), domain.GridSize{W: 3, H: 2})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "metadata-only 3x2" {
		t.Fatalf("render = %q", out)
	}
}

func TestScriptLoaderBadSource(t *testing.T) {
	r := New(testInventory())
	r.Register("metadata-only", ScriptLoader("metadata-only", `function( {`))
	res, err := r.Resolve(context.Background(), "metadata-only")
	if err == nil {
		t.Fatal("expected compile error")
	}
	if res.State != StateError {
		t.Fatalf("state = %s, want error", res.State)
	}
}

func TestRegisterBuiltinsResolvesShippedWidgets(t *testing.T) {
	inv := inventory.NewWithBuiltins()
	r := New(inv)
	RegisterBuiltins(r)

	res, err := r.Resolve(context.Background(), "live-rates")
	if err != nil {
		t.Fatalf("resolve live-rates: %v", err)
	}
	if res.State != StateResolved || res.Widget == nil {
		t.Fatalf("live-rates state = %s", res.State)
	}
	out, err := res.Widget.Render(context.Background(), domain.GridSize{W: 4, H: 3})
	if err != nil || out == "" {
		t.Fatalf("render = %q, %v", out, err)
	}

	// catalog entries without a shipped renderer stay soft placeholders
	res, err = r.Resolve(context.Background(), "depth-chart")
	if err != nil {
		t.Fatalf("resolve depth-chart: %v", err)
	}
	if res.State != StatePlaceholder {
		t.Fatalf("depth-chart state = %s, want placeholder", res.State)
	}

	// the legacy alias goes through the same loader
	res, err = r.Resolve(context.Background(), "fx-rates")
	if err != nil || res.State != StateResolved {
		t.Fatalf("fx-rates via alias: state = %s, %v", res.State, err)
	}
}
