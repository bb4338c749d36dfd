/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gridshell/internal/domain"
	applog "gridshell/internal/log"
	"gridshell/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName stores all per-workspace ephemeral/index data under the workspace root.
	IndexDirName  = ".gsh"
	IndexFileName = "index.sqlite"

	// indexSchemaVersion tracks the local SQLite schema for the embedded index.
	// Bump this when you perform breaking schema changes and add migrations.
	indexSchemaVersion = 2
)

// IndexPath returns the full path to the workspace's embedded index database file.
func IndexPath(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, IndexDirName, IndexFileName)
}

// InitOrOpenIndex ensures that the per-workspace SQLite index exists at
// .gsh/index.sqlite, opens the database, enables WAL mode, and ensures the
// meta/version tables exist. The returned *sql.DB is ready for use.
func InitOrOpenIndex(workspaceRoot string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_init").With(
		slog.String("root", workspaceRoot),
	)
	if strings.TrimSpace(workspaceRoot) == "" {
		return nil, errors.New("workspace root is required")
	}
	if err := os.MkdirAll(filepath.Join(workspaceRoot, IndexDirName), 0o755); err != nil {
		l.Error("create .gsh dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create .gsh dir: %w", err)
	}

	path := IndexPath(workspaceRoot)
	uriPath := filepath.ToSlash(path)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", uriPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureIndexMeta(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure index schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runIndexMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("index ready", slog.String("path", path))
	return db, nil
}

func ensureIndexMeta(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, indexSchemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureIndexSchema creates the placements table and FTS structures if they do not exist.
func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		// One row per component instance placed in a persisted layout.
		`CREATE TABLE IF NOT EXISTS placements (
			row_id       INTEGER PRIMARY KEY,
			user_id      TEXT NOT NULL,
			layout_id    TEXT NOT NULL,
			layout_name  TEXT NOT NULL,
			tab_id       TEXT NOT NULL,
			tab_name     TEXT NOT NULL,
			tab_type     TEXT NOT NULL,
			component_id TEXT NOT NULL,
			instance_id  TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_placements_tab ON placements(tab_id);`,

		// Contentless FTS5 index fed from placements via triggers.
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_placements USING fts5(
			text,
			content='',
			tokenize = 'unicode61'
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS placements_ai AFTER INSERT ON placements BEGIN
			INSERT INTO fts_placements(rowid, text) VALUES (new.row_id, new.layout_name || ' ' || new.tab_name || ' ' || new.component_id);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS placements_ad AFTER DELETE ON placements BEGIN
			INSERT INTO fts_placements(fts_placements, rowid, text) VALUES ('delete', old.row_id, old.layout_name || ' ' || old.tab_name || ' ' || old.component_id);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	return nil
}

// runIndexMigrations applies incremental schema migrations up to indexSchemaVersion.
func runIndexMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > indexSchemaVersion {
		// Do not downgrade; just continue
		return nil
	}
	for cur < indexSchemaVersion {
		next := cur + 1
		switch next {
		case 2:
			// Add a component lookup index for where-used queries
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_placements_component ON placements(component_id);`); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d commit: %w", next, err)
			}
		default:
			// Unknown future step; break
		}
		cur = next
	}
	return nil
}

// RebuildIndex wipes and repopulates the placements index from the KV store.
// The index is derived data; rebuilding is always safe.
func RebuildIndex(ctx context.Context, s *Store) (int, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_rebuild")
	db, err := InitOrOpenIndex(s.Root())
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `DELETE FROM placements`); err != nil {
		return 0, fmt.Errorf("clear placements: %w", err)
	}

	inserted := 0
	seen := make(map[string]bool) // userID/layoutID, current-layout and saved list can overlap
	insert := func(userID string, lay domain.Layout) error {
		if seen[userID+"/"+lay.ID] {
			return nil
		}
		seen[userID+"/"+lay.ID] = true
		for _, t := range lay.Tabs {
			for _, c := range t.Components {
				if _, err := db.ExecContext(ctx,
					`INSERT INTO placements (user_id, layout_id, layout_name, tab_id, tab_name, tab_type, component_id, instance_id)
					 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
					userID, lay.ID, lay.Name, t.ID, t.Name, string(t.Type), c.ComponentID, c.ID); err != nil {
					return fmt.Errorf("insert placement: %w", err)
				}
				inserted++
			}
		}
		return nil
	}

	for _, key := range s.Keys(ctx) {
		switch {
		case strings.HasPrefix(key, Prefix+"-current-layout-"):
			userID := strings.TrimPrefix(key, Prefix+"-current-layout-")
			var lay domain.Layout
			if s.Get(key, &lay) {
				if err := insert(userID, lay); err != nil {
					return inserted, err
				}
			}
		case strings.HasPrefix(key, Prefix+"-layouts-"):
			userID := strings.TrimPrefix(key, Prefix+"-layouts-")
			var list []domain.Layout
			if s.Get(key, &list) {
				for _, lay := range list {
					if err := insert(userID, lay); err != nil {
						return inserted, err
					}
				}
			}
		}
	}
	l.Info("index rebuilt", slog.Int("placements", inserted))
	return inserted, nil
}
