/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gridshell/internal/config"
)

func addConfig(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration and where each value comes from.",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, _, err := config.Load()
			if err != nil {
				return err
			}
			if path, err := config.ConfigPath(); err == nil {
				fmt.Println("Config file:", path)
			}
			printSetting("general.theme", cfg.General.Theme)
			printSetting("general.enable_server", strconv.FormatBool(cfg.General.EnableServer))
			printSetting("workspace.dir", cfg.Workspace.EffectiveWorkspaceDir())
			printSetting("workspace.autosave_canvas", strconv.FormatBool(cfg.Workspace.AutosaveEnabled()))
			printSetting("sync.base_url", cfg.Sync.BaseURL)
			printSetting("sync.timeout_ms", strconv.Itoa(cfg.Sync.TimeoutMs))
			printSetting("sync.tls_insecure", strconv.FormatBool(cfg.Sync.TLSInsecure))
			printSetting("logging.level", cfg.Logging.Level)
			printSetting("logging.format", cfg.Logging.Format)
			printSetting("logging.source", strconv.FormatBool(cfg.Logging.Source))
			printSetting("logging.file", cfg.Logging.File)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func printSetting(key, value string) {
	if env, ok := config.EnvOverrideFor(key); ok {
		fmt.Printf("%-28s %s (from %s)\n", key, value, env)
		return
	}
	fmt.Printf("%-28s %s\n", key, value)
}
