/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package cli assembles the gridshell command tree.
package cli

import (
	"github.com/spf13/cobra"

	"gridshell/internal/config"
	"gridshell/internal/inventory"
	"gridshell/internal/registry"
	"gridshell/internal/storage"
	"gridshell/internal/undo"
	"gridshell/internal/workspace"
)

var (
	workspaceFlag string

	// openedStore is the workspace store of the current invocation; the
	// crash handler in main reads it to snapshot layouts on panic.
	openedStore *storage.Store
)

// New builds the root command.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gridshell",
		Short:         "Dashboard workspace manager for the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&workspaceFlag, "workspace", "", "workspace directory (defaults to config, override with GSH_WORKSPACE_DIR)")

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addVersion(topLevel)
	addServe(topLevel)
	addConfig(topLevel)
	addUser(topLevel)
	addTheme(topLevel)
	addLayout(topLevel)
	addTab(topLevel)
	addComponent(topLevel)
	addCanvas(topLevel)
	addExport(topLevel)
	addPack(topLevel)
	addIndex(topLevel)
	addSync(topLevel)
}

// Store returns the workspace store opened by the current invocation, if any.
func Store() *storage.Store { return openedStore }

// app bundles everything a workspace-bound command needs.
type app struct {
	cfg     config.AppConfig
	token   string
	store   *storage.Store
	inv     *inventory.Inventory
	reg     *registry.Registry
	mgr     *workspace.Manager
	history *undo.Manager
}

// openApp loads the config and opens the workspace store plus the manager
// stack over it. Commands that mutate layouts call loadWorkspace next.
func openApp() (*app, error) {
	cfg, token, err := config.Load()
	if err != nil {
		return nil, err
	}
	dir := cfg.Workspace.EffectiveWorkspaceDir()
	if workspaceFlag != "" {
		dir = workspaceFlag
	}
	st, err := storage.Open(dir)
	if err != nil {
		return nil, err
	}
	openedStore = st
	inv := inventory.NewWithBuiltins()
	reg := registry.New(inv)
	registry.RegisterBuiltins(reg)
	registerScriptWidgets(st, reg)
	history := undo.NewManager(undo.Config{})
	mgr := workspace.NewManager(st, storage.NewSessionStore(), reg)
	mgr.AttachHistory(history)
	return &app{cfg: cfg, token: token, store: st, inv: inv, reg: reg, mgr: mgr, history: history}, nil
}

// registerScriptWidgets restores loaders for the script widgets persisted in
// the workspace store.
func registerScriptWidgets(st *storage.Store, reg *registry.Registry) {
	var scripts map[string]string
	if !st.Get(storage.ScriptsKey(), &scripts) {
		return
	}
	for id, src := range scripts {
		reg.Register(id, registry.ScriptLoader(id, src))
	}
}

func (a *app) loadWorkspace() error { return a.mgr.Load() }
