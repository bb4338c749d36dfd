/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gridshell/internal/domain"
)

func addTab(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "tab",
		Short: "Manage tabs in the current layout.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var tabType string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a tab to the current layout.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			if err := a.loadWorkspace(); err != nil {
				return err
			}
			t, err := a.mgr.CreateTab(args[0], domain.TabType(tabType))
			if err != nil {
				return err
			}
			fmt.Printf("Created %s tab %s  %q\n", t.Type, t.ID, t.Name)
			return nil
		},
	}
	add.Flags().StringVar(&tabType, "type", string(domain.TabDynamic), "tab type: dynamic or static")

	rm := &cobra.Command{
		Use:   "rm <tab-id>",
		Short: "Remove a tab and its canvas state.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			if err := a.loadWorkspace(); err != nil {
				return err
			}
			if err := a.mgr.RemoveTab(args[0]); err != nil {
				return err
			}
			fmt.Println("Removed tab", args[0])
			return nil
		},
	}

	rename := &cobra.Command{
		Use:   "rename <tab-id> <name>",
		Short: "Rename a tab.",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			if err := a.loadWorkspace(); err != nil {
				return err
			}
			if err := a.mgr.RenameTab(args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("Renamed tab", args[0])
			return nil
		},
	}

	ls := &cobra.Command{
		Use:   "ls",
		Short: "List tabs in the current layout.",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			if err := a.loadWorkspace(); err != nil {
				return err
			}
			cur, err := a.mgr.Current()
			if err != nil {
				return err
			}
			active, err := a.mgr.ActiveTab()
			if err != nil {
				return err
			}
			for _, t := range cur.Tabs {
				marker := " "
				if t.ID == active {
					marker = "*"
				}
				fmt.Printf("%s %s  %-20s %s\n", marker, t.ID, t.Name, t.Type)
			}
			return nil
		},
	}

	activate := &cobra.Command{
		Use:   "activate <tab-id>",
		Short: "Make a tab the active tab for this session.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			if err := a.loadWorkspace(); err != nil {
				return err
			}
			if err := a.mgr.SetActiveTab(args[0]); err != nil {
				return err
			}
			fmt.Println("Active tab:", args[0])
			return nil
		},
	}

	reorder := &cobra.Command{
		Use:   "reorder <tab-id>...",
		Short: "Reorder tabs; the ids must be a permutation of the current set.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			if err := a.loadWorkspace(); err != nil {
				return err
			}
			if err := a.mgr.ReorderTabs(args); err != nil {
				return err
			}
			fmt.Println("Reordered tabs")
			return nil
		},
	}

	cmd.AddCommand(add, rm, rename, ls, activate, reorder)
	topLevel.AddCommand(cmd)
}
