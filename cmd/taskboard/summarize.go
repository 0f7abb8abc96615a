package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/ai"
	"github.com/nhle/taskboard/internal/board"
)

func summarizeCmd(cfgPath *string) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Ask Claude to summarize the open tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			b, _, err := e.loadBoard(ctx)
			if err != nil {
				return err
			}
			return runSummarize(ctx, cmd, e, b)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "Give up on the summary after this long")
	return cmd
}

func runSummarize(ctx context.Context, cmd *cobra.Command, e *env, b *board.Board) error {
	requester, _ := e.requester()
	res := requester.Request(ctx, b.List())
	if res.Err != nil {
		e.logger.Warn("summarize command failed", zap.Error(res.Err))
		if errors.Is(res.Err, ai.ErrNotConfigured) {
			return fmt.Errorf("%s: set %s or run `taskboard api-key set`", res.Err.Error(), ai.APIKeyEnv)
		}
		return errors.New(ai.FailureMessage)
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Summary)
	return nil
}
