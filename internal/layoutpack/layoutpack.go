/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

// Package layoutpack moves layouts between workspaces as zip archives: the
// current layout, the saved-layouts list and every referenced canvas record,
// stored as plain JSON files so a pack can be inspected and diffed by hand.
package layoutpack

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gridshell/internal/domain"
	applog "gridshell/internal/log"
	"gridshell/internal/storage"
)

const manifestName = "layoutpack.manifest.txt"

// Export zips one user's layout records into destZipPath. The archive holds
// layouts/current.json, layouts/saved.json and canvas/<kind>-<tabid>.json
// for every tab of every exported layout, plus a small manifest at the root
// for quick human inspection.
func Export(store *storage.Store, userID string, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("layoutpack"), "export").With(slog.String("user", userID))
	if strings.TrimSpace(userID) == "" {
		return errors.New("userID is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}

	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)
	defer func() { _ = zw.Close() }()

	manifest := fmt.Sprintf("GridShell Layout Pack\nCreated: %s\nUser: %s\n\nContents are the user's layout and canvas records as JSON.\n",
		time.Now().Format(time.RFC3339), userID)
	w, err := zw.Create(manifestName)
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	added := 0
	addJSON := func(name string, payload json.RawMessage) error {
		fw, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := fw.Write(payload); err != nil {
			return err
		}
		added++
		return nil
	}

	var tabs []domain.Tab
	if payload, ok := store.GetRaw(storage.CurrentLayoutKey(userID)); ok {
		if err := addJSON("layouts/current.json", payload); err != nil {
			return fmt.Errorf("add current layout: %w", err)
		}
		var layout domain.Layout
		_ = json.Unmarshal(payload, &layout)
		tabs = append(tabs, layout.Tabs...)
	}
	if payload, ok := store.GetRaw(storage.LayoutsKey(userID)); ok {
		if err := addJSON("layouts/saved.json", payload); err != nil {
			return fmt.Errorf("add saved layouts: %w", err)
		}
		var layouts []domain.Layout
		_ = json.Unmarshal(payload, &layouts)
		for _, lay := range layouts {
			tabs = append(tabs, lay.Tabs...)
		}
	}

	seen := map[string]bool{}
	for _, tab := range tabs {
		if seen[tab.ID] {
			continue
		}
		seen[tab.ID] = true
		var key, name string
		if tab.Type == domain.TabStatic {
			key = storage.StaticCanvasKey(tab.ID)
			name = fmt.Sprintf("canvas/static-%s.json", tab.ID)
		} else {
			key = storage.DynamicCanvasKey(tab.ID)
			name = fmt.Sprintf("canvas/dynamic-%s.json", tab.ID)
		}
		if payload, ok := store.GetRaw(key); ok {
			if err := addJSON(name, payload); err != nil {
				return fmt.Errorf("add canvas %s: %w", tab.ID, err)
			}
		}
	}

	l.Info("layout pack exported", slog.Int("files", added), slog.String("zip", destZipPath))
	return nil
}

// Install extracts a pack into the target user's workspace. Layouts land in
// the saved-layouts list (the current layout is never replaced); layouts
// whose id already exists are skipped, as are canvas records already on
// disk. Returns the count of records installed.
func Install(store *storage.Store, userID string, packZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("layoutpack"), "install").With(slog.String("user", userID))
	if strings.TrimSpace(userID) == "" {
		return 0, errors.New("userID is required")
	}
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}

	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	var existing []domain.Layout
	store.Get(storage.LayoutsKey(userID), &existing)
	have := map[string]bool{}
	for _, lay := range existing {
		have[lay.ID] = true
	}

	installed := 0
	incoming := []domain.Layout{}
	for _, f := range r.File {
		if f.Name == manifestName || f.FileInfo().IsDir() {
			continue
		}
		payload, err := readZipFile(f)
		if err != nil {
			return installed, fmt.Errorf("read %s: %w", f.Name, err)
		}
		switch {
		case f.Name == "layouts/current.json":
			var layout domain.Layout
			if err := json.Unmarshal(payload, &layout); err != nil {
				return installed, fmt.Errorf("decode %s: %w", f.Name, err)
			}
			incoming = append(incoming, layout)
		case f.Name == "layouts/saved.json":
			var layouts []domain.Layout
			if err := json.Unmarshal(payload, &layouts); err != nil {
				return installed, fmt.Errorf("decode %s: %w", f.Name, err)
			}
			incoming = append(incoming, layouts...)
		case strings.HasPrefix(f.Name, "canvas/"):
			key := canvasKeyForEntry(f.Name)
			if key == "" {
				l.Warn("skip unrecognized pack entry", slog.String("name", f.Name))
				continue
			}
			if store.Has(key) {
				l.Warn("skip existing canvas record", slog.String("key", key))
				continue
			}
			if err := store.Put(key, json.RawMessage(payload)); err != nil {
				return installed, fmt.Errorf("install canvas %s: %w", key, err)
			}
			installed++
		default:
			l.Warn("skip unrecognized pack entry", slog.String("name", f.Name))
		}
	}

	merged := existing
	for _, lay := range incoming {
		if have[lay.ID] {
			l.Warn("skip existing layout", slog.String("layout", lay.ID))
			continue
		}
		have[lay.ID] = true
		merged = append(merged, lay)
		installed++
	}
	if len(merged) != len(existing) {
		if err := store.Put(storage.LayoutsKey(userID), merged); err != nil {
			return installed, fmt.Errorf("persist saved layouts: %w", err)
		}
	}

	l.Info("layout pack installed", slog.Int("records", installed))
	return installed, nil
}

func canvasKeyForEntry(name string) string {
	base := strings.TrimPrefix(name, "canvas/")
	switch {
	case strings.HasPrefix(base, "dynamic-") && strings.HasSuffix(base, ".json"):
		return storage.DynamicCanvasKey(strings.TrimSuffix(strings.TrimPrefix(base, "dynamic-"), ".json"))
	case strings.HasPrefix(base, "static-") && strings.HasSuffix(base, ".json"):
		return storage.StaticCanvasKey(strings.TrimSuffix(strings.TrimPrefix(base, "static-"), ".json"))
	}
	return ""
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
