/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gridshell/internal/export"
)

func addExport(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the current layout as wireframes.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var (
		grid bool
		tabs []int
	)

	svg := &cobra.Command{
		Use:   "svg <out-dir>",
		Short: "Write one SVG wireframe per tab.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
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
			opt := export.SVGOptions{IncludeGrid: grid, Tabs: tabs}
			if err := export.ExportLayoutSVGTabs(a.store, a.inv, cur, args[0], opt); err != nil {
				return err
			}
			fmt.Println("Wrote SVG wireframes to", args[0])
			return nil
		},
	}

	pdf := &cobra.Command{
		Use:   "pdf <out-file>",
		Short: "Write a PDF wireframe report, one page per tab.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
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
			opt := export.PDFOptions{IncludeGrid: grid, Tabs: tabs}
			if err := export.ExportLayoutPDF(a.store, a.inv, cur, args[0], opt); err != nil {
				return err
			}
			fmt.Println("Wrote PDF report to", args[0])
			return nil
		},
	}

	for _, c := range []*cobra.Command{svg, pdf} {
		c.Flags().BoolVar(&grid, "grid", false, "draw column guides on dynamic tabs")
		c.Flags().IntSliceVar(&tabs, "tabs", nil, "tab indexes to export (default all)")
	}

	cmd.AddCommand(svg, pdf)
	topLevel.AddCommand(cmd)
}
