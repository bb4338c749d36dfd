/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package inventory holds the descriptive catalog of available dashboard
// components. The inventory describes what a component is (metadata, size
// constraints, tags); how to obtain its implementation is the resolver's
// job in internal/registry. An id can exist here without a resolver entry,
// which renders as a soft placeholder rather than an error.
package inventory

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"gridshell/internal/domain"
)

// Quality classifies the provenance/maturity of a component port.
type Quality string

const (
	QualityPort3000 Quality = "port-3000"
	QualityPort3200 Quality = "port-3200"
	QualityEnhanced Quality = "enhanced"
	QualityBasic    Quality = "basic"
)

// qualityRank orders results when name relevance ties. Lower sorts first.
func qualityRank(q Quality) int {
	switch q {
	case QualityPort3000:
		return 0
	case QualityPort3200:
		return 1
	case QualityEnhanced:
		return 2
	case QualityBasic:
		return 3
	default:
		return 4
	}
}

// Meta describes one catalog component. ID is the stable external contract:
// persisted layouts reference it, so it survives schema migrations.
type Meta struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	DisplayName string          `json:"displayName,omitempty"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Complexity  string          `json:"complexity,omitempty"` // simple | moderate | complex
	Quality     Quality         `json:"quality,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	DefaultSize domain.GridSize `json:"defaultSize"`
	MinSize     domain.GridSize `json:"minSize,omitempty"`
	MaxSize     domain.GridSize `json:"maxSize,omitempty"`
	Source      string          `json:"source,omitempty"` // builtin | catalog | script
}

// searchText is the concatenated haystack every query token must match.
func (m Meta) searchText() string {
	return strings.ToLower(m.Name + " " + m.DisplayName + " " + m.Description + " " + strings.Join(m.Tags, " "))
}

// Filters restrict search results by exact-match fields and tag overlap.
type Filters struct {
	Category    string
	Subcategory string
	Complexity  string
	Quality     Quality
	Tags        []string
}

// Inventory is an explicitly constructed catalog. It is passed by reference
// to consumers rather than living as a module global, so tests can build
// isolated instances.
type Inventory struct {
	mu      sync.RWMutex
	entries map[string]Meta
	// tokens maps indexed search tokens (length > 2) to component ids.
	tokens map[string]map[string]bool
}

// New returns an empty inventory.
func New() *Inventory {
	return &Inventory{
		entries: make(map[string]Meta),
		tokens:  make(map[string]map[string]bool),
	}
}

// NewWithBuiltins returns an inventory seeded with the built-in component list.
func NewWithBuiltins() *Inventory {
	inv := New()
	for _, m := range Builtins() {
		// built-in metadata is well formed; Add only rejects empty ids
		_ = inv.Add(m)
	}
	return inv
}

// Add inserts or overwrites the entry by id and rebuilds its slice of the
// token index (tokens from name, description and tags longer than 2 chars).
func (inv *Inventory) Add(m Meta) error {
	if strings.TrimSpace(m.ID) == "" {
		return errors.New("component id is required")
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	// drop stale tokens when overwriting
	if _, exists := inv.entries[m.ID]; exists {
		for tok, ids := range inv.tokens {
			delete(ids, m.ID)
			if len(ids) == 0 {
				delete(inv.tokens, tok)
			}
		}
	}
	inv.entries[m.ID] = m
	for _, tok := range indexTokens(m) {
		ids, ok := inv.tokens[tok]
		if !ok {
			ids = make(map[string]bool)
			inv.tokens[tok] = ids
		}
		ids[m.ID] = true
	}
	return nil
}

// Get returns the entry for id, if present.
func (inv *Inventory) Get(id string) (Meta, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	m, ok := inv.entries[id]
	return m, ok
}

// Len returns the number of catalog entries.
func (inv *Inventory) Len() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.entries)
}

// All returns every entry ordered by name then id.
func (inv *Inventory) All() []Meta {
	inv.mu.RLock()
	out := make([]Meta, 0, len(inv.entries))
	for _, m := range inv.entries {
		out = append(out, m)
	}
	inv.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Search returns entries where every whitespace-separated query token
// appears as a substring of the entry's combined searchable text, further
// restricted by the optional filters. Entries whose name contains the raw
// query sort first; ties are broken by quality rank, then name.
// A query matching nothing returns an empty slice, never nil.
func (inv *Inventory) Search(query string, f *Filters) []Meta {
	tokens := strings.Fields(strings.ToLower(query))
	rawQuery := strings.ToLower(strings.TrimSpace(query))

	inv.mu.RLock()
	candidates := make([]Meta, 0, len(inv.entries))
	for _, m := range inv.entries {
		candidates = append(candidates, m)
	}
	inv.mu.RUnlock()

	out := []Meta{}
	for _, m := range candidates {
		if !matchesTokens(m, tokens) {
			continue
		}
		if !matchesFilters(m, f) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		iName := strings.Contains(strings.ToLower(out[i].Name), rawQuery) && rawQuery != ""
		jName := strings.Contains(strings.ToLower(out[j].Name), rawQuery) && rawQuery != ""
		if iName != jName {
			return iName
		}
		ri, rj := qualityRank(out[i].Quality), qualityRank(out[j].Quality)
		if ri != rj {
			return ri < rj
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ByCategory returns entries in the given category (and subcategory, when
// non-empty), ordered like All.
func (inv *Inventory) ByCategory(category, subcategory string) []Meta {
	out := []Meta{}
	for _, m := range inv.All() {
		if m.Category != category {
			continue
		}
		if subcategory != "" && m.Subcategory != subcategory {
			continue
		}
		out = append(out, m)
	}
	return out
}

// IndexedIDs returns the component ids indexed under token, for diagnostics.
func (inv *Inventory) IndexedIDs(token string) []string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	ids := make([]string, 0, len(inv.tokens[token]))
	for id := range inv.tokens[strings.ToLower(token)] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func matchesTokens(m Meta, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	hay := m.searchText()
	for _, tok := range tokens {
		if !strings.Contains(hay, tok) {
			return false
		}
	}
	return true
}

func matchesFilters(m Meta, f *Filters) bool {
	if f == nil {
		return true
	}
	if f.Category != "" && m.Category != f.Category {
		return false
	}
	if f.Subcategory != "" && m.Subcategory != f.Subcategory {
		return false
	}
	if f.Complexity != "" && m.Complexity != f.Complexity {
		return false
	}
	if f.Quality != "" && m.Quality != f.Quality {
		return false
	}
	if len(f.Tags) > 0 {
		have := make(map[string]bool, len(m.Tags))
		for _, t := range m.Tags {
			have[strings.ToLower(t)] = true
		}
		any := false
		for _, t := range f.Tags {
			if have[strings.ToLower(t)] {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	return true
}

// indexTokens tokenizes name, description and tags; only tokens longer than
// two characters are indexed.
func indexTokens(m Meta) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		for _, tok := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
			return r == ' ' || r == '-' || r == '_' || r == '/' || r == ','
		}) {
			if len(tok) > 2 && !seen[tok] {
				seen[tok] = true
				out = append(out, tok)
			}
		}
	}
	add(m.Name)
	add(m.Description)
	for _, t := range m.Tags {
		add(t)
	}
	return out
}
