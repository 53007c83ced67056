package main

import (
	"github.com/spf13/cobra"

	"github.com/verte-zerg/orthostat/internal/ortho"
)

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the effective rules (after --edit) as TOML",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			return ortho.EncodeTOML(cmd.OutOrStdout(), e.edited)
		}),
	}
}
