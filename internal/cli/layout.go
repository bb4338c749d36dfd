/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func addLayout(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Manage layouts.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the current and saved layouts.",
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
			fmt.Printf("* %s  %s  (%d tabs, current)\n", cur.ID, cur.Name, len(cur.Tabs))
			saved, err := a.mgr.SavedLayouts()
			if err != nil {
				return err
			}
			for _, l := range saved {
				fmt.Printf("  %s  %s  (%d tabs)\n", l.ID, l.Name, len(l.Tabs))
			}
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the current layout's tabs.",
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
			fmt.Printf("Layout %s  %q\n", cur.ID, cur.Name)
			for _, t := range cur.Tabs {
				marker := " "
				if t.ID == active {
					marker = "*"
				}
				fmt.Printf("%s %s  %-20s %-8s components=%d closable=%v\n",
					marker, t.ID, t.Name, t.Type, len(t.Components), t.Closable)
			}
			return nil
		},
	}

	newCmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Save the current layout under a new name.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			if err := a.loadWorkspace(); err != nil {
				return err
			}
			l, err := a.mgr.SaveLayoutAs(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Saved layout %s  %q\n", l.ID, l.Name)
			return nil
		},
	}

	sw := &cobra.Command{
		Use:   "switch <layout-id>",
		Short: "Make a saved layout the current layout.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			if err := a.loadWorkspace(); err != nil {
				return err
			}
			if err := a.mgr.SwitchLayout(args[0]); err != nil {
				return err
			}
			fmt.Println("Switched to layout", args[0])
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <layout-id>",
		Short: "Delete a saved layout.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			if err := a.loadWorkspace(); err != nil {
				return err
			}
			if err := a.mgr.DeleteLayout(args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted layout", args[0])
			return nil
		},
	}

	rename := &cobra.Command{
		Use:   "rename <layout-id> <name>",
		Short: "Rename a layout.",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			if err := a.loadWorkspace(); err != nil {
				return err
			}
			if err := a.mgr.RenameLayout(args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("Renamed layout", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, show, newCmd, sw, rm, rename)
	topLevel.AddCommand(cmd)
}
