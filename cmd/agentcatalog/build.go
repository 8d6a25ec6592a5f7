package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/agentcatalog/internal/site"
)

const defaultBundleDir = "dist"

func newBuildCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Write a static catalog bundle",
		Long: `Build writes index.json, raw template copies, the JSON Schema and the
frameworks configuration into the output directory. When --static-dir is
set its files are copied in first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := buildBundle(outDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d files to %s\n", len(res.Files), res.Dir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", defaultBundleDir, "Output directory")
	cmd.Flags().String("static-dir", "", "Static asset directory copied into the bundle")
	return cmd
}

func buildBundle(outDir string) (*site.Result, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	frameworks, err := loadFrameworks()
	if err != nil {
		return nil, err
	}
	return site.Build(outDir, reg, site.Options{
		Frameworks: frameworks,
		StaticDir:  cfg.StaticDir,
	})
}
