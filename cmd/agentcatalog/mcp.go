package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/agentcatalog/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve catalog tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg, err := loadRegistry()
			if err != nil {
				return err
			}
			frameworks, err := loadFrameworks()
			if err != nil {
				return err
			}
			return mcp.Run(ctx, mcp.NewServer(reg, frameworks, version))
		},
	}
}
