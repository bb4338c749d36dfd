package storage

import (
	"encoding/json"
	"strings"
	"testing"

	"gridshell/internal/domain"
)

func TestValidateLayoutAcceptsWellFormedDocument(t *testing.T) {
	lay := domain.Layout{ID: "l1", Name: "Main", Tabs: []domain.Tab{
		{ID: "t1", Name: "Markets", Type: domain.TabDynamic, Closable: true,
			Components: []domain.ComponentInstance{
				{ID: "live-rates-1700000000000", ComponentID: "live-rates", Grid: &domain.GridPlacement{X: 0, Y: 0, W: 4, H: 3}},
			}},
		{ID: "t2", Name: "Desk", Type: domain.TabStatic, Closable: true,
			Components: []domain.ComponentInstance{
				{ID: "pnl-summary-1700000000001", ComponentID: "pnl-summary", Slot: &domain.SlotRect{X: 0, Y: 0, Width: 100, Height: 10, Locked: true, Label: "header"}},
			}},
	}}
	raw, err := json.Marshal(lay)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := ValidateLayout(raw); err != nil {
		t.Fatalf("valid layout rejected: %v", err)
	}
}

func TestValidateLayoutReportsViolations(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"missing id", `{"name":"x","tabs":[]}`, "id"},
		{"bad tab type", `{"id":"l1","name":"x","tabs":[{"id":"t1","name":"a","type":"floating","components":[]}]}`, "type"},
		{"slot out of range", `{"id":"l1","name":"x","tabs":[{"id":"t1","name":"a","type":"static","components":[{"id":"c1","componentId":"watchlist","slot":{"x":0,"y":0,"width":120,"height":10}}]}]}`, "width"},
	}
	for _, c := range cases {
		err := ValidateLayout(json.RawMessage(c.doc))
		if err == nil {
			t.Fatalf("%s: invalid layout accepted", c.name)
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Fatalf("%s: error %q does not mention %q", c.name, err, c.want)
		}
	}
}
