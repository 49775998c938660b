package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yungbote/shariabridge-backend/internal/mcpserver"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the assistant as MCP tools over stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing
sharia_ask and sharia_profile. Logs are silent unless --log-mode is given,
and never go to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := loadApp(ctx, opts, true, nil)
			if err != nil {
				return err
			}
			defer a.Close(context.WithoutCancel(ctx))

			s := mcpserver.New(mcpserver.Deps{
				Assistant:        a.Assistant,
				Version:          version,
				SearchDefault:    a.Cfg.Assistant.SearchDefault,
				ReasoningDefault: a.Cfg.Assistant.ReasoningDefault,
			})
			return mcpserver.ServeStdio(s)
		},
	}
}
