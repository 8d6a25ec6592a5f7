package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/agentcatalog/internal/publish"
)

func newPublishCmd() *cobra.Command {
	var (
		dir   string
		build bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload a built bundle to an S3 bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if build {
				if _, err := buildBundle(dir); err != nil {
					return err
				}
			}
			client, err := publish.NewS3Client(ctx, cfg.Publish.Region)
			if err != nil {
				return err
			}
			objects, err := publish.Dir(ctx, client, dir, publish.Options{
				Bucket: cfg.Publish.Bucket,
				Prefix: cfg.Publish.Prefix,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d objects to s3://%s/%s\n", len(objects), cfg.Publish.Bucket, cfg.Publish.Prefix)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", defaultBundleDir, "Bundle directory to upload")
	cmd.Flags().BoolVar(&build, "build", false, "Build the bundle before uploading")
	cmd.Flags().String("bucket", "", "Target bucket")
	cmd.Flags().String("prefix", "", "Key prefix inside the bucket")
	cmd.Flags().String("region", "", "AWS region")
	cmd.Flags().String("static-dir", "", "Static asset directory copied in with --build")
	return cmd
}
