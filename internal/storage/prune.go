/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"context"
	"log/slog"
	"strings"

	"gridshell/internal/domain"
	applog "gridshell/internal/log"
)

// PruneOrphanCanvases deletes canvas records whose tab no longer exists in
// any persisted layout. Canvas state is keyed by tab id, so a closed tab or
// a regenerated id leaves its record behind; this sweep reclaims them.
// Returns the number of records removed.
func PruneOrphanCanvases(ctx context.Context, s *Store) (int, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "prune_canvases")

	live := make(map[string]bool)
	var canvasKeys []string
	for _, key := range s.Keys(ctx) {
		switch {
		case strings.HasPrefix(key, Prefix+"-current-layout-"):
			var layout domain.Layout
			if s.Get(key, &layout) {
				for _, t := range layout.Tabs {
					live[t.ID] = true
				}
			}
		case strings.HasPrefix(key, Prefix+"-layouts-"):
			var layouts []domain.Layout
			if s.Get(key, &layouts) {
				for _, lay := range layouts {
					for _, t := range lay.Tabs {
						live[t.ID] = true
					}
				}
			}
		case strings.HasPrefix(key, "dynamic-canvas-"), strings.HasPrefix(key, "static-canvas-"):
			canvasKeys = append(canvasKeys, key)
		}
	}

	removed := 0
	for _, key := range canvasKeys {
		tabID := strings.TrimPrefix(strings.TrimPrefix(key, "dynamic-canvas-"), "static-canvas-")
		if live[tabID] {
			continue
		}
		if err := s.Delete(key); err != nil {
			l.Warn("delete orphan canvas failed", slog.String("key", key), slog.Any("err", err))
			continue
		}
		removed++
	}
	if removed > 0 {
		l.Info("orphan canvases pruned", slog.Int("removed", removed))
	}
	return removed, nil
}
