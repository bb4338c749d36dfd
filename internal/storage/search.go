/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Usage is one placement row from the usage index: a component instance
// inside a persisted layout.
type Usage struct {
	UserID      string
	LayoutID    string
	LayoutName  string
	TabID       string
	TabName     string
	TabType     string
	ComponentID string
	InstanceID  string
}

// WhereUsed returns every placement of the given component id across all
// indexed layouts. Run RebuildIndex first if layouts changed outside this
// process. Returns an empty slice when the component is unused.
func WhereUsed(ctx context.Context, workspaceRoot, componentID string) ([]Usage, error) {
	if strings.TrimSpace(componentID) == "" {
		return nil, errors.New("component id is required")
	}
	db, err := InitOrOpenIndex(workspaceRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	rows, err := db.QueryContext(ctx,
		`SELECT user_id, layout_id, layout_name, tab_id, tab_name, tab_type, component_id, instance_id
		 FROM placements WHERE component_id = ?
		 ORDER BY user_id, layout_id, tab_id, instance_id`, componentID)
	if err != nil {
		return nil, fmt.Errorf("where-used query: %w", err)
	}
	defer rows.Close()
	return scanUsages(rows)
}

// SearchUsage performs full-text search over layout names, tab names and
// component ids in the usage index. Text uses SQLite FTS5 syntax.
func SearchUsage(ctx context.Context, workspaceRoot, text string, limit int) ([]Usage, error) {
	if strings.TrimSpace(text) == "" {
		return []Usage{}, nil
	}
	db, err := InitOrOpenIndex(workspaceRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.QueryContext(ctx,
		`SELECT p.user_id, p.layout_id, p.layout_name, p.tab_id, p.tab_name, p.tab_type, p.component_id, p.instance_id
		 FROM fts_placements JOIN placements p ON fts_placements.rowid = p.row_id
		 WHERE fts_placements MATCH ?
		 ORDER BY p.user_id, p.layout_id, p.tab_id
		 LIMIT ?`, text, limit)
	if err != nil {
		return nil, fmt.Errorf("usage search query: %w", err)
	}
	defer rows.Close()
	return scanUsages(rows)
}

func scanUsages(rows *sql.Rows) ([]Usage, error) {
	out := []Usage{}
	for rows.Next() {
		var u Usage
		if err := rows.Scan(&u.UserID, &u.LayoutID, &u.LayoutName, &u.TabID, &u.TabName, &u.TabType, &u.ComponentID, &u.InstanceID); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
