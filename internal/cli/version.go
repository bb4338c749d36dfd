/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gridshell/internal/version"
)

func addVersion(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the gridshell version.",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(version.String())
		},
	}
	topLevel.AddCommand(cmd)
}
