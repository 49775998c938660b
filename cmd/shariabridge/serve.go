package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yungbote/shariabridge-backend/internal/platform/shutdown"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and SSE event stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := shutdown.NotifyContext(cmd.Context())
			defer stop()

			a, err := loadApp(ctx, opts, false, nil)
			if err != nil {
				return err
			}
			defer a.Close(context.WithoutCancel(ctx))

			a.Log.Info("shariabridge starting", "version", version, "addr", a.Cfg.HTTP.Addr, "env", a.Cfg.Env)
			return a.Serve(ctx)
		},
	}
}
