/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash /*
package crash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	applog "gridshell/internal/log"
	"gridshell/internal/storage"
	"gridshell/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Recover captures a panic, logs an error with stacktrace, writes an error
// report file, and snapshots every current-layout record next to it so a
// half-applied mutation cannot cost the user their layouts.
//
// It must be deferred directly, not wrapped in a closure, or recover()
// cannot see the panic. The store is passed as a getter because the
// workspace is usually opened after the defer statement runs.
//
// Usage: defer crash.Recover(cli.Store)
func Recover(getStore func() *storage.Store) {
	if r := recover(); r != nil {
		var store *storage.Store
		if getStore != nil {
			store = getStore()
		}
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, _ := writeReport(store, r, stack)
		if store != nil {
			if path, err := snapshotLayouts(store); err != nil {
				l.Error("layout crash snapshot failed", slog.Any("err", err))
			} else if path != "" {
				l.Info("layout crash snapshot written", slog.String("path", path))
			}
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		// Exit with a non-zero code to indicate failure in CLI context.
		exitFn(2)
	}
}

func reportDir(store *storage.Store) string {
	if store != nil && store.Root() != "" {
		dir := filepath.Join(store.Root(), storage.IndexDirName, "crash")
		_ = os.MkdirAll(dir, 0o755)
		return dir
	}
	return os.TempDir()
}

func writeReport(store *storage.Store, panicVal any, stack []byte) (string, error) {
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(reportDir(store), fmt.Sprintf("crash-%s.log", stamp))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "GridShell Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if store != nil {
		_, _ = fmt.Fprintf(&buf, "Workspace: %s\n", store.Root())
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}

// snapshotLayouts copies every current-layout record into one timestamped
// JSON file in the crash directory. The records themselves are already on
// disk; the snapshot guards against a corrupting write in the panicking
// mutation.
func snapshotLayouts(store *storage.Store) (string, error) {
	prefix := storage.Prefix + "-current-layout-"
	snap := map[string]json.RawMessage{}
	for _, key := range store.Keys(context.Background()) {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if payload, ok := store.GetRaw(key); ok {
			snap[key] = payload
		}
	}
	if len(snap) == 0 {
		return "", nil
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", err
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(reportDir(store), fmt.Sprintf("layouts-%s.json", stamp))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
