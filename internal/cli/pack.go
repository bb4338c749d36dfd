/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gridshell/internal/layoutpack"
)

func addPack(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Export and install layout packs (zip archives).",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	exp := &cobra.Command{
		Use:   "export <out-zip>",
		Short: "Bundle this workspace's layouts and canvases into a zip.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			u, ok := a.mgr.User()
			if !ok {
				return fmt.Errorf("no user set; run gridshell user set first")
			}
			if err := layoutpack.Export(a.store, u.ID, args[0]); err != nil {
				return err
			}
			fmt.Println("Wrote layout pack", args[0])
			return nil
		},
	}

	inst := &cobra.Command{
		Use:   "install <pack-zip>",
		Short: "Merge a layout pack into this workspace (never overwrites).",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			u, ok := a.mgr.User()
			if !ok {
				return fmt.Errorf("no user set; run gridshell user set first")
			}
			n, err := layoutpack.Install(a.store, u.ID, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Installed %d records from %s\n", n, args[0])
			return nil
		},
	}

	cmd.AddCommand(exp, inst)
	topLevel.AddCommand(cmd)
}
