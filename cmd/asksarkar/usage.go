package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/theIndrajeet/AskSarkar/internal/config"
	"github.com/theIndrajeet/AskSarkar/internal/domain"
)

func runUsage(cmd *cobra.Command, args []string) error {
	return withLimiterUsage(cmd, false)
}

func runResetUsage(cmd *cobra.Command, args []string) error {
	return withLimiterUsage(cmd, true)
}

func withLimiterUsage(cmd *cobra.Command, reset bool) error {
	cfg := config.Load()
	log.SetLevel(cfg.Level())

	ctx := context.Background()
	st, err := openStores(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer st.Close()

	limiter, err := newLimiter(cfg, st.records)
	if err != nil {
		return err
	}

	if reset {
		limiter.ForceReset(ctx)
		fmt.Fprintln(cmd.OutOrStdout(), "Usage counter reset.")
	}
	printUsage(cmd.OutOrStdout(), limiter.UsageInfo(ctx), limiter.UsageMessage(ctx))
	return nil
}

func printUsage(w io.Writer, info domain.UsageInfo, msg *domain.UsageMessage) {
	fmt.Fprintf(w, "Used:      %d/%d (%.0f%%)\n", info.Used, info.Limit, info.PercentageUsed)
	fmt.Fprintf(w, "Remaining: %d\n", info.Remaining)
	fmt.Fprintf(w, "Blocked:   %d\n", info.BlockedCalls)
	fmt.Fprintf(w, "Resets in: %dh\n", info.HoursUntilReset)
	if msg != nil {
		fmt.Fprintf(w, "[%s] %s\n", msg.Type, msg.Message)
	}
}
