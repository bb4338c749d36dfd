/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package cli

import (
	"context"
	"testing"

	"gridshell/internal/domain"
	"gridshell/internal/inventory"
	"gridshell/internal/registry"
	"gridshell/internal/storage"
)

func TestCommandTree(t *testing.T) {
	root := New()
	want := []string{
		"version", "serve", "config", "user", "theme", "layout", "tab",
		"component", "canvas", "export", "pack", "index", "sync",
	}
	have := map[string]bool{}
	for _, c := range root.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing command %q", name)
		}
	}
}

func TestCanvasSubcommands(t *testing.T) {
	root := New()
	var canvasCmd map[string]bool
	for _, c := range root.Commands() {
		if c.Name() != "canvas" {
			continue
		}
		canvasCmd = map[string]bool{}
		for _, sub := range c.Commands() {
			canvasCmd[sub.Name()] = true
		}
	}
	if canvasCmd == nil {
		t.Fatal("canvas command missing")
	}
	for _, name := range []string{
		"show", "add", "rm", "place", "assign", "move",
		"add-slot", "rm-slot", "clear", "save", "apply",
	} {
		if !canvasCmd[name] {
			t.Errorf("missing canvas subcommand %q", name)
		}
	}
}

func TestWorkspaceFlagOverridesConfig(t *testing.T) {
	t.Setenv("GSH_WORKSPACE_DIR", t.TempDir())
	workspaceFlag = t.TempDir()
	defer func() { workspaceFlag = "" }()

	a, err := openApp()
	if err != nil {
		t.Fatalf("openApp: %v", err)
	}
	if a.store.Root() != workspaceFlag {
		t.Fatalf("store root = %q, want flag dir %q", a.store.Root(), workspaceFlag)
	}
}

func TestOpenAppSeedsBuiltinLoaders(t *testing.T) {
	workspaceFlag = t.TempDir()
	defer func() { workspaceFlag = "" }()

	a, err := openApp()
	if err != nil {
		t.Fatalf("openApp: %v", err)
	}
	res, err := a.reg.Resolve(context.Background(), "live-rates")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.State != registry.StateResolved {
		t.Fatalf("live-rates state = %s, want resolved", res.State)
	}
	if a.history == nil {
		t.Fatal("undo history not wired")
	}
}

func TestRegisterScriptWidgetsFromStore(t *testing.T) {
	st, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	scripts := map[string]string{
		"hello-card": `function (id, w, h) { return "hi " + id + " " + w + "x" + h; }`,
	}
	if err := st.Put(storage.ScriptsKey(), scripts); err != nil {
		t.Fatalf("put scripts: %v", err)
	}

	reg := registry.New(inventory.NewWithBuiltins())
	registerScriptWidgets(st, reg)

	res, err := reg.Resolve(context.Background(), "hello-card")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.State != registry.StateResolved {
		t.Fatalf("state = %s, want resolved", res.State)
	}
	out, err := res.Widget.Render(context.Background(), domain.GridSize{W: 3, H: 2})
	if err != nil || out != "hi hello-card 3x2" {
		t.Fatalf("render = %q, %v", out, err)
	}
}
