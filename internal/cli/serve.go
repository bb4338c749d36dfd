/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package cli

import (
	"github.com/spf13/cobra"

	"gridshell/internal/backend"
)

func addServe(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sync server (Postgres-backed).",
		Long: `Run the layout sync and shared catalog server.

Configuration comes from the environment: GSH_PG_DSN or DATABASE_URL for the
database, PORT or ADDR for the bind address, GSH_AUTH_SECRET for token signing.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return backend.Start()
		},
	}
	topLevel.AddCommand(cmd)
}
