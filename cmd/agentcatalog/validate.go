package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/agentcatalog/internal/validate"
)

func newValidateCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate [dir]",
		Short: "Check template files against the authoring rules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := cfg.TemplatesDir
			if len(args) == 1 {
				dir = args[0]
			}
			report, err := validate.Dir(dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				err = validate.WriteJSON(out, report)
			case "text":
				err = validate.WriteText(out, report, useColor(out))
			default:
				return fmt.Errorf("unknown format %q: must be text or json", format)
			}
			if err != nil {
				return err
			}
			return report.Err()
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}
