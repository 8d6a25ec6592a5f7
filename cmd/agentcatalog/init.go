package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/agentcatalog/internal/registry"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Write the starter templates into an empty templates directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := cfg.TemplatesDir
			if len(args) == 1 {
				dir = args[0]
			}
			n, err := registry.Seed(dir)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already has templates, nothing written\n", dir)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d starter templates to %s\n", n, dir)
			return nil
		},
	}
}
