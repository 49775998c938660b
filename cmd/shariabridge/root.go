package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/shariabridge-backend/internal/app"
	"github.com/yungbote/shariabridge-backend/internal/config"
	"github.com/yungbote/shariabridge-backend/internal/platform/logger"
	"github.com/yungbote/shariabridge-backend/internal/realtime"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

type rootOptions struct {
	configPath string
	logMode    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "shariabridge",
		Short: "Arabic Islamic jurisprudence assistant backend",
		Long: `shariabridge answers jurisprudence questions through a staged pipeline:
search augmentation, multi-stage reasoning and a final answer shaped by what
the assistant has learned about the user during the session.

Run "serve" for the HTTP API, "chat" or "ask" in a terminal, or "mcp" to
expose the assistant as MCP tools over stdio.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $SB_CONFIG_PATH or ./config/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logMode, "log-mode", "", "log mode: dev, prod or nop (overrides config)")

	cmd.AddCommand(
		newServeCmd(opts),
		newAskCmd(opts),
		newChatCmd(opts),
		newMCPCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadApp reads configuration and wires the application. Terminal commands
// default to a silent logger so output stays readable.
func loadApp(ctx context.Context, opts *rootOptions, quietByDefault bool, events realtime.Emitter) (*app.App, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	mode := cfg.Log.Mode
	if quietByDefault {
		mode = "nop"
	}
	if opts.logMode != "" {
		mode = opts.logMode
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return app.New(ctx, cfg, log, app.Options{Version: version, Events: events})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shariabridge %s\ncommit: %s\n", version, commit)
		},
	}
}
