package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/agentcatalog/internal/db"
)

func newSnapshotCmd() *cobra.Command {
	var stats bool

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export the loaded catalog into a SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg, err := loadRegistry()
			if err != nil {
				return err
			}

			store, err := db.Open(ctx, cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			repo := db.NewTemplateRepo(store.SQL())
			snap, err := repo.ReplaceAll(ctx, cfg.TemplatesDir, reg.All())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Snapshot %s: %d templates from %s into %s\n", snap.ID, snap.TemplateCount, snap.Source, cfg.DBPath)

			if !stats {
				return nil
			}
			tags, err := repo.TagCounts(ctx)
			if err != nil {
				return err
			}
			frameworks, err := repo.FrameworkCounts(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "\nTags:")
			for _, c := range tags {
				fmt.Fprintf(out, "  %-24s %d\n", c.Value, c.Count)
			}
			fmt.Fprintln(out, "\nFrameworks:")
			for _, c := range frameworks {
				fmt.Fprintf(out, "  %-24s %d\n", c.Value, c.Count)
			}
			return nil
		},
	}
	cmd.Flags().String("db", "", "SQLite database path (default agentcatalog.db)")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print tag and framework counts")
	return cmd
}
