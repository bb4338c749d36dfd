/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gridshell/internal/inventory"
	"gridshell/internal/registry"
	"gridshell/internal/storage"
)

func addComponent(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "component",
		Short: "Browse the component inventory.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var (
		category string
		quality  string
		tags     []string
	)
	search := &cobra.Command{
		Use:   "search <query>...",
		Short: "Search components; every word must match.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			var f *inventory.Filters
			if category != "" || quality != "" || len(tags) > 0 {
				f = &inventory.Filters{
					Category: category,
					Quality:  inventory.Quality(quality),
					Tags:     tags,
				}
			}
			results := a.inv.Search(strings.Join(args, " "), f)
			if len(results) == 0 {
				fmt.Println("No components found.")
				return nil
			}
			printMetaList(results)
			return nil
		},
	}
	search.Flags().StringVar(&category, "category", "", "filter by category")
	search.Flags().StringVar(&quality, "quality", "", "filter by quality tier")
	search.Flags().StringSliceVar(&tags, "tag", nil, "filter by tag (repeatable)")

	ls := &cobra.Command{
		Use:   "ls",
		Short: "List all registered components.",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			printMetaList(a.inv.All())
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <component-id>",
		Short: "Show one component's metadata and resolution state.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			id := a.reg.Canonical(args[0])
			if id != args[0] {
				fmt.Printf("%s is a legacy id for %s\n", args[0], id)
			}
			m, ok := a.inv.Get(id)
			if !ok {
				return fmt.Errorf("component %q is not in the inventory", id)
			}
			fmt.Printf("ID:          %s\n", m.ID)
			fmt.Printf("Name:        %s\n", m.Name)
			if m.DisplayName != "" {
				fmt.Printf("Display:     %s\n", m.DisplayName)
			}
			if m.Description != "" {
				fmt.Printf("Description: %s\n", m.Description)
			}
			fmt.Printf("Category:    %s", m.Category)
			if m.Subcategory != "" {
				fmt.Printf(" / %s", m.Subcategory)
			}
			fmt.Println()
			if m.Quality != "" {
				fmt.Printf("Quality:     %s\n", m.Quality)
			}
			if len(m.Tags) > 0 {
				fmt.Printf("Tags:        %s\n", strings.Join(m.Tags, ", "))
			}
			fmt.Printf("Default:     %dx%d\n", m.DefaultSize.W, m.DefaultSize.H)
			res, err := a.reg.Resolve(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("Resolution:  %s\n", res.State)
			return nil
		},
	}

	register := &cobra.Command{
		Use:   "register <component-id> <script-file>",
		Short: "Register a script widget from a JavaScript file.",
		Long: "Registers a widget whose render is a JavaScript function of\n" +
			"(id, width, height) returning a string. The script is persisted in\n" +
			"the workspace and reloaded on every invocation.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			id := args[0]
			src, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			a.reg.Register(id, registry.ScriptLoader(id, string(src)))
			// resolve now so a broken script fails here, not on first render
			res, err := a.reg.Resolve(cmd.Context(), id)
			if err != nil {
				return err
			}
			var scripts map[string]string
			a.store.Get(storage.ScriptsKey(), &scripts)
			if scripts == nil {
				scripts = map[string]string{}
			}
			scripts[id] = string(src)
			if err := a.store.Put(storage.ScriptsKey(), scripts); err != nil {
				return err
			}
			fmt.Printf("Registered %s (%s)\n", id, res.State)
			return nil
		},
	}

	unregister := &cobra.Command{
		Use:   "unregister <component-id>",
		Short: "Remove a registered script widget.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			var scripts map[string]string
			a.store.Get(storage.ScriptsKey(), &scripts)
			if _, ok := scripts[args[0]]; !ok {
				return fmt.Errorf("no script widget registered as %q", args[0])
			}
			delete(scripts, args[0])
			if err := a.store.Put(storage.ScriptsKey(), scripts); err != nil {
				return err
			}
			a.reg.Invalidate(args[0])
			fmt.Println("Unregistered", args[0])
			return nil
		},
	}

	cmd.AddCommand(search, ls, show, register, unregister)
	topLevel.AddCommand(cmd)
}

func printMetaList(list []inventory.Meta) {
	for _, m := range list {
		name := m.DisplayName
		if name == "" {
			name = m.Name
		}
		fmt.Printf("%-24s %-24s %-12s %s\n", m.ID, name, m.Category, m.Quality)
	}
}
