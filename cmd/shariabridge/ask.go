package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/shariabridge-backend/internal/assistant/orchestrator"
	"github.com/yungbote/shariabridge-backend/internal/termui"
)

type turnFlags struct {
	search    bool
	reasoning bool
	plain     bool
	width     int
}

func (f *turnFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.search, "search", false, "run search augmentation (default from config)")
	cmd.Flags().BoolVar(&f.reasoning, "reasoning", false, "run the reasoning pipeline (default from config)")
	cmd.Flags().BoolVar(&f.plain, "plain", false, "disable colours and styling")
	cmd.Flags().IntVar(&f.width, "width", 100, "wrap width for rendered answers")
}

// request resolves the toggles: explicit flags win over the configured defaults.
func (f *turnFlags) request(cmd *cobra.Command, message string, searchDefault, reasoningDefault bool) orchestrator.Request {
	req := orchestrator.Request{Message: message, Search: searchDefault, Reasoning: reasoningDefault}
	if cmd.Flags().Changed("search") {
		req.Search = f.search
	}
	if cmd.Flags().Changed("reasoning") {
		req.Reasoning = f.reasoning
	}
	return req
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	flags := &turnFlags{}
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question and print the rendered answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			r, err := termui.NewRenderer(flags.width, flags.plain)
			if err != nil {
				return err
			}
			progress := newProgressPrinter(cmd.ErrOrStderr(), r)

			a, err := loadApp(ctx, opts, true, progress)
			if err != nil {
				return err
			}
			defer a.Close(context.WithoutCancel(ctx))

			id := a.Assistant.CreateSession()
			question := strings.Join(args, " ")
			reply, err := a.Assistant.Ask(ctx, id, flags.request(cmd, question, a.Cfg.Assistant.SearchDefault, a.Cfg.Assistant.ReasoningDefault))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.Reply(reply))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
