/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import "fmt"

// Prefix namespaces every process-wide key; per-user keys append the user id.
// The key schema is a stable external contract: records written by older
// builds remain readable as long as these patterns do not change.
const Prefix = "gridshell"

// UserKey holds the current user identity (process-wide).
func UserKey() string { return Prefix + "-user" }

// ThemeKey holds the selected theme identifier (process-wide).
func ThemeKey() string { return Prefix + "-theme" }

// CurrentLayoutKey holds the active layout document for one user.
func CurrentLayoutKey(userID string) string {
	return fmt.Sprintf("%s-current-layout-%s", Prefix, userID)
}

// LayoutsKey holds the array of saved layouts for one user.
func LayoutsKey(userID string) string {
	return fmt.Sprintf("%s-layouts-%s", Prefix, userID)
}

// ActiveLayoutKey holds the id of the user's active layout.
func ActiveLayoutKey(userID string) string {
	return fmt.Sprintf("%s-active-layout-%s", Prefix, userID)
}

// ActiveTabKey holds the id of the active tab. Session-scoped: it lives in
// the SessionStore, never on disk.
func ActiveTabKey(userID string) string {
	return fmt.Sprintf("%s-active-tab-%s", Prefix, userID)
}

// DynamicCanvasKey holds a dynamic tab's component list and grid geometry.
// The tab id is the sub-key, so regenerating a tab id orphans this record.
func DynamicCanvasKey(tabID string) string { return "dynamic-canvas-" + tabID }

// StaticCanvasKey holds a static tab's slot list.
func StaticCanvasKey(tabID string) string { return "static-canvas-" + tabID }

// ScriptsKey holds the user-registered script widgets, a map of component id
// to script source (process-wide).
func ScriptsKey() string { return Prefix + "-scripts" }
