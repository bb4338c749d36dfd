/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gridshell/internal/storage"
)

func addIndex(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Maintain and query the workspace usage index.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rebuild := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the usage index from the persisted layouts.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			n, err := storage.RebuildIndex(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			fmt.Printf("Indexed %d placements\n", n)
			return nil
		},
	}

	whereUsed := &cobra.Command{
		Use:   "where-used <component-id>",
		Short: "List every placement of a component across indexed layouts.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			usages, err := storage.WhereUsed(cmd.Context(), a.store.Root(), args[0])
			if err != nil {
				return err
			}
			if len(usages) == 0 {
				fmt.Println("Component is not used in any indexed layout.")
				return nil
			}
			printUsages(usages)
			return nil
		},
	}

	search := &cobra.Command{
		Use:   "search <text>",
		Short: "Full-text search over layout names, tab names and component ids.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			usages, err := storage.SearchUsage(cmd.Context(), a.store.Root(), args[0], 100)
			if err != nil {
				return err
			}
			if len(usages) == 0 {
				fmt.Println("No matches.")
				return nil
			}
			printUsages(usages)
			return nil
		},
	}

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete canvas records whose tab no longer exists in any layout.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			n, err := storage.PruneOrphanCanvases(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			fmt.Printf("Pruned %d orphan canvas records\n", n)
			return nil
		},
	}

	cmd.AddCommand(rebuild, whereUsed, search, prune)
	topLevel.AddCommand(cmd)
}

func printUsages(usages []storage.Usage) {
	for _, u := range usages {
		fmt.Printf("%-12s layout=%s (%s)  tab=%s (%s, %s)  instance=%s\n",
			u.ComponentID, u.LayoutID, u.LayoutName, u.TabID, u.TabName, u.TabType, u.InstanceID)
	}
}
