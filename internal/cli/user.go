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

func addUser(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Show the workspace user.",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			u, ok := a.mgr.User()
			if !ok {
				fmt.Println("No user set. Run: gridshell user set <id> <name> [email]")
				return nil
			}
			fmt.Printf("ID:    %s\n", u.ID)
			fmt.Printf("Name:  %s\n", u.Name)
			if u.Email != "" {
				fmt.Printf("Email: %s\n", u.Email)
			}
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <id> <name> [email]",
		Short: "Set the workspace user and seed the default layout.",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			u := domain.User{ID: args[0], Name: args[1]}
			if len(args) == 3 {
				u.Email = args[2]
			}
			if err := a.mgr.SetUser(u); err != nil {
				return err
			}
			if err := a.loadWorkspace(); err != nil {
				return err
			}
			cur, err := a.mgr.Current()
			if err != nil {
				return err
			}
			fmt.Printf("User %s set; current layout %q (%d tabs)\n", u.ID, cur.Name, len(cur.Tabs))
			return nil
		},
	}
	cmd.AddCommand(set)

	topLevel.AddCommand(cmd)
}

func addTheme(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "theme [name]",
		Short: "Show or set the workspace theme.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				fmt.Println(a.mgr.Theme())
				return nil
			}
			if err := a.mgr.SetTheme(args[0]); err != nil {
				return err
			}
			fmt.Println("Theme set to", args[0])
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}
