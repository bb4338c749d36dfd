/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"encoding/json"
	"fmt"
)

// CurrentSchemaVersion is the version tag stamped on every record written by
// this build. Bump it when a record's shape changes and register a step in
// the migrations table below.
const CurrentSchemaVersion = 2

// MigrateFunc upgrades a record payload by exactly one schema version.
type MigrateFunc func(payload json.RawMessage) (json.RawMessage, error)

// migrations maps a source schema version to the step that upgrades it to
// the next version. Steps are applied in sequence on read; a gap in the
// table makes records of that vintage unreadable, so never remove entries.
var migrations = map[int]MigrateFunc{
	1: migrateV1LayoutTitles,
}

// migrateV1LayoutTitles upgrades version 1 records, which stored the display
// name of layouts and tabs under "title". Version 2 uses "name". Records
// that never had a title field pass through unchanged.
func migrateV1LayoutTitles(payload json.RawMessage) (json.RawMessage, error) {
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("parse v1 payload: %w", err)
	}
	doc = renameTitleToName(doc)
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("re-encode v1 payload: %w", err)
	}
	return out, nil
}

// renameTitleToName walks the document and moves "title" to "name" on layout
// and tab shaped objects (those carrying "tabs" or "components").
func renameTitleToName(doc any) any {
	switch v := doc.(type) {
	case map[string]any:
		_, isLayout := v["tabs"]
		_, isTab := v["components"]
		if isLayout || isTab {
			if title, ok := v["title"]; ok {
				if _, has := v["name"]; !has {
					v["name"] = title
				}
				delete(v, "title")
			}
		}
		for k, child := range v {
			v[k] = renameTitleToName(child)
		}
		return v
	case []any:
		for i, child := range v {
			v[i] = renameTitleToName(child)
		}
		return v
	default:
		return doc
	}
}
