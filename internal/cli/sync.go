/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gridshell/internal/backend"
	"gridshell/internal/config"
	"gridshell/internal/domain"
	"gridshell/internal/storage"
)

func addSync(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push and pull layouts through the sync server.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	login := &cobra.Command{
		Use:   "login <token>",
		Short: "Store the sync bearer token in the system keyring.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, _, err := config.Load()
			if err != nil {
				return err
			}
			if err := config.Save(cfg, args[0]); err != nil {
				return err
			}
			fmt.Println("Token stored.")
			return nil
		},
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored sync token.",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := config.ClearToken(); err != nil {
				return err
			}
			fmt.Println("Token removed.")
			return nil
		},
	}

	push := &cobra.Command{
		Use:   "push",
		Short: "Upload the current layout to the sync server.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, c, uid, err := openSync()
			if err != nil {
				return err
			}
			cur, err := a.mgr.Current()
			if err != nil {
				return err
			}
			raw, ok := a.store.GetRaw(storage.CurrentLayoutKey(uid))
			if !ok {
				return fmt.Errorf("no persisted current layout to push")
			}
			ver, err := c.PushLayout(cmd.Context(), uid, cur.ID, cur.Name, raw)
			if err != nil {
				return err
			}
			fmt.Printf("Pushed layout %s as version %d\n", cur.ID, ver)
			return nil
		},
	}

	pull := &cobra.Command{
		Use:   "pull <layout-id>",
		Short: "Download a remote layout into the saved layouts list.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, c, uid, err := openSync()
			if err != nil {
				return err
			}
			env, err := c.GetLayoutSnapshot(cmd.Context(), uid, args[0])
			if err != nil {
				return err
			}
			var l domain.Layout
			if err := json.Unmarshal(env.Snapshot, &l); err != nil {
				return fmt.Errorf("decode remote layout: %w", err)
			}
			if l.ID == "" {
				return fmt.Errorf("remote layout has no id")
			}
			var saved []domain.Layout
			a.store.Get(storage.LayoutsKey(uid), &saved)
			replaced := false
			for i := range saved {
				if saved[i].ID == l.ID {
					saved[i] = l
					replaced = true
					break
				}
			}
			if !replaced {
				saved = append(saved, l)
			}
			if err := a.store.Put(storage.LayoutsKey(uid), saved); err != nil {
				return err
			}
			fmt.Printf("Pulled layout %s  %q (version %d) into saved layouts\n", l.ID, l.Name, env.Version)
			return nil
		},
	}

	layouts := &cobra.Command{
		Use:   "layouts",
		Short: "List remote layouts.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, c, uid, err := openSync()
			if err != nil {
				return err
			}
			list, err := c.ListLayouts(cmd.Context(), uid)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No remote layouts.")
				return nil
			}
			for _, li := range list {
				fmt.Printf("%-36s %-24s v%-4d %s\n", li.LayoutID, li.Name, li.Version, li.CreatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}

	catalog := &cobra.Command{
		Use:   "catalog [query]",
		Short: "Browse the shared component catalog.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, _, err := openSync()
			if err != nil {
				return err
			}
			q := ""
			if len(args) == 1 {
				q = args[0]
			}
			list, err := c.GetCatalog(cmd.Context(), q)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No catalog entries.")
				return nil
			}
			for _, e := range list {
				name := e.DisplayName
				if name == "" {
					name = e.Name
				}
				fmt.Printf("%-24s %-24s %-12s %s\n", e.ID, name, e.Category, e.Quality)
			}
			return nil
		},
	}

	cmd.AddCommand(login, logout, push, pull, layouts, catalog)
	topLevel.AddCommand(cmd)
}

// openSync prepares a loaded workspace plus a sync client from config.
func openSync() (*app, *backend.Client, string, error) {
	a, err := openApp()
	if err != nil {
		return nil, nil, "", err
	}
	if err := a.loadWorkspace(); err != nil {
		return nil, nil, "", err
	}
	u, ok := a.mgr.User()
	if !ok {
		return nil, nil, "", fmt.Errorf("no user set; run gridshell user set first")
	}
	c := backend.NewClient(a.cfg.Sync.BaseURL, a.token)
	if a.cfg.Sync.TimeoutMs > 0 {
		c.SetTimeout(time.Duration(a.cfg.Sync.TimeoutMs) * time.Millisecond)
	}
	return a, c, u.ID, nil
}
