/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package registry resolves component ids to loadable widget
// implementations. Resolution distinguishes two failure shapes: an id with
// catalog metadata but no loader degrades to a placeholder and never fails
// the surrounding layout, while an id unknown to both the loader table and
// the catalog is reported as not found. Loader failures are hard errors
// scoped to the single component.
package registry

import (
	"context"
	"fmt"
	"sync"

	"gridshell/internal/domain"
	"gridshell/internal/inventory"
	applog "gridshell/internal/log"
)

// State names one step of a component's resolution lifecycle.
type State string

const (
	StateUnresolved  State = "unresolved"
	StateLoading     State = "loading"
	StateResolved    State = "resolved"
	StatePlaceholder State = "placeholder"
	StateNotFound    State = "not-found"
	StateError       State = "error"
)

// Terminal reports whether the state will not change without an Invalidate.
func (s State) Terminal() bool {
	switch s {
	case StateResolved, StatePlaceholder, StateNotFound:
		return true
	}
	return false
}

// Widget is a resolved component implementation.
type Widget interface {
	ComponentID() string
	// Render produces a textual representation of the widget at the given
	// grid size. Headless surfaces (export, CLI) consume this directly.
	Render(ctx context.Context, size domain.GridSize) (string, error)
}

// Loader produces a widget, typically once per resolved id.
type Loader func(ctx context.Context) (Widget, error)

// Resolution is the outcome of resolving one component id.
type Resolution struct {
	ID     string // canonical id
	State  State
	Widget Widget // non-nil only when State == StateResolved
	Err    error  // non-nil only when State == StateError
}

type entry struct {
	state  State
	widget Widget
	err    error
}

// inflightCall is shared by all goroutines waiting on one load.
type inflightCall struct {
	done   chan struct{}
	widget Widget
	err    error
}

// Registry maps component ids to loaders and caches resolution outcomes.
// The zero value is not usable; construct with New.
type Registry struct {
	inv *inventory.Inventory

	mu       sync.Mutex
	loaders  map[string]Loader
	legacy   map[string]string
	entries  map[string]*entry
	inflight map[string]*inflightCall
}

// New returns a registry resolving against the given catalog.
func New(inv *inventory.Inventory) *Registry {
	r := &Registry{
		inv:      inv,
		loaders:  make(map[string]Loader),
		legacy:   make(map[string]string),
		entries:  make(map[string]*entry),
		inflight: make(map[string]*inflightCall),
	}
	for legacyID, canonical := range legacyComponentIDs {
		r.legacy[legacyID] = canonical
	}
	return r
}

// Register installs (or replaces) the loader for id and resets any cached
// outcome so the next Resolve uses the new loader.
func (r *Registry) Register(id string, l Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[id] = l
	delete(r.entries, id)
}

// RegisterLegacy adds a legacy-id mapping. Mapping chains are not followed;
// the target must already be canonical.
func (r *Registry) RegisterLegacy(legacyID, canonical string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.legacy[legacyID] = canonical
}

// Canonical maps a possibly-legacy component id to its canonical form.
// Canonical ids map to themselves, so the function is idempotent.
func (r *Registry) Canonical(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.legacy[id]; ok {
		return c
	}
	return id
}

// StateOf reports the cached state for id without triggering a load.
func (r *Registry) StateOf(id string) State {
	id = r.Canonical(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.inflight[id]; ok {
		return StateLoading
	}
	if e, ok := r.entries[id]; ok {
		return e.state
	}
	return StateUnresolved
}

// Invalidate drops the cached outcome for id so the next Resolve retries.
// An in-flight load is left to finish; its result is discarded.
func (r *Registry) Invalidate(id string) {
	id = r.Canonical(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	delete(r.inflight, id)
}

// Resolve resolves id to a widget, loading at most once per id no matter
// how many goroutines ask concurrently. The returned error is non-nil only
// for loader failures; placeholder and not-found are reported through the
// Resolution state so a layout render can proceed past them.
func (r *Registry) Resolve(ctx context.Context, id string) (Resolution, error) {
	canonical := r.Canonical(id)
	logger := applog.WithComponent("registry")

	r.mu.Lock()
	if e, ok := r.entries[canonical]; ok {
		r.mu.Unlock()
		return Resolution{ID: canonical, State: e.state, Widget: e.widget, Err: e.err}, e.err
	}
	loader, hasLoader := r.loaders[canonical]
	if !hasLoader {
		// No implementation. Catalog metadata decides soft vs hard miss.
		var e *entry
		if _, known := r.inv.Get(canonical); known {
			e = &entry{state: StatePlaceholder}
			logger.Debug("component has metadata but no loader, using placeholder", "component_id", canonical)
		} else {
			e = &entry{state: StateNotFound}
			logger.Warn("component id unknown", "component_id", canonical)
		}
		r.entries[canonical] = e
		r.mu.Unlock()
		return Resolution{ID: canonical, State: e.state}, nil
	}
	if call, ok := r.inflight[canonical]; ok {
		r.mu.Unlock()
		return r.wait(ctx, canonical, call)
	}
	call := &inflightCall{done: make(chan struct{})}
	r.inflight[canonical] = call
	r.mu.Unlock()

	call.widget, call.err = loader(ctx)
	close(call.done)

	r.mu.Lock()
	// Invalidate during flight removes the inflight record; don't cache then.
	if r.inflight[canonical] == call {
		delete(r.inflight, canonical)
		if call.err != nil {
			r.entries[canonical] = &entry{state: StateError, err: call.err}
		} else {
			r.entries[canonical] = &entry{state: StateResolved, widget: call.widget}
		}
	}
	r.mu.Unlock()

	if call.err != nil {
		logger.Error("component load failed", "component_id", canonical, "error", call.err)
		return Resolution{ID: canonical, State: StateError, Err: call.err},
			fmt.Errorf("load component %s: %w", canonical, call.err)
	}
	return Resolution{ID: canonical, State: StateResolved, Widget: call.widget}, nil
}

func (r *Registry) wait(ctx context.Context, id string, call *inflightCall) (Resolution, error) {
	select {
	case <-ctx.Done():
		return Resolution{ID: id, State: StateLoading}, ctx.Err()
	case <-call.done:
	}
	if call.err != nil {
		return Resolution{ID: id, State: StateError, Err: call.err},
			fmt.Errorf("load component %s: %w", id, call.err)
	}
	return Resolution{ID: id, State: StateResolved, Widget: call.widget}, nil
}
