/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"gridshell/internal/domain"
)

// RenderFunc builds the textual representation for a native widget.
type RenderFunc func(ctx context.Context, size domain.GridSize) (string, error)

type nativeWidget struct {
	id     string
	render RenderFunc
}

func (w *nativeWidget) ComponentID() string { return w.id }

func (w *nativeWidget) Render(ctx context.Context, size domain.GridSize) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return w.render(ctx, size)
}

// NativeLoader wraps a Go render function as a Loader.
func NativeLoader(id string, render RenderFunc) Loader {
	return func(ctx context.Context) (Widget, error) {
		if render == nil {
			return nil, fmt.Errorf("component %s: nil render func", id)
		}
		return &nativeWidget{id: id, render: render}, nil
	}
}

// scriptWidget runs a compiled JS program. The program must evaluate to a
// function of (id, width, height) returning a string. The runtime is created
// lazily on first Render and reused for the widget's lifetime; the mutex
// serialises all access to it, goja runtimes are not goroutine safe.
type scriptWidget struct {
	id      string
	program *goja.Program

	mu sync.Mutex
	vm *goja.Runtime
	fn goja.Callable
}

func (w *scriptWidget) ComponentID() string { return w.id }

func (w *scriptWidget) Render(ctx context.Context, size domain.GridSize) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.vm == nil {
		vm := goja.New()
		value, err := vm.RunProgram(w.program)
		if err != nil {
			return "", fmt.Errorf("script widget %s: %w", w.id, err)
		}
		fn, ok := goja.AssertFunction(value)
		if !ok {
			return "", fmt.Errorf("script widget %s: script must evaluate to a function", w.id)
		}
		w.vm, w.fn = vm, fn
	}
	res, err := w.fn(goja.Undefined(),
		w.vm.ToValue(w.id), w.vm.ToValue(size.W), w.vm.ToValue(size.H))
	if err != nil {
		return "", fmt.Errorf("script widget %s render: %w", w.id, err)
	}
	out, ok := res.Export().(string)
	if !ok {
		return "", fmt.Errorf("script widget %s: render returned %T, want string", w.id, res.Export())
	}
	return out, nil
}

// ScriptLoader compiles src once and returns a loader for a script-defined
// widget. Compilation errors surface at load time, so a bad script degrades
// exactly like any other failed loader.
func ScriptLoader(id, src string) Loader {
	return func(ctx context.Context) (Widget, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		program, err := goja.Compile(id, fmt.Sprintf("(function(){ return (%s); })()", src), false)
		if err != nil {
			return nil, fmt.Errorf("compile script for %s: %w", id, err)
		}
		// run once here so loader failures catch non-function scripts early
		vm := goja.New()
		value, err := vm.RunProgram(program)
		if err != nil {
			return nil, fmt.Errorf("evaluate script for %s: %w", id, err)
		}
		if _, ok := goja.AssertFunction(value); !ok {
			return nil, fmt.Errorf("script for %s must evaluate to a function", id)
		}
		return &scriptWidget{id: id, program: program}, nil
	}
}
