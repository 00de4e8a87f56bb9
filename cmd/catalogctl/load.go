package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/daonpick/internal/clickload"
)

func newLoadCmd(opts *options) *cobra.Command {
	cfg := &clickload.Config{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Send click traffic to a running server and verify the counters",
		Long: `load spreads unique clicks over the current top products of a running
server, replays some click ids, then refreshes the catalog until each view
counter moved by exactly its number of unique clicks.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := clickload.Run(cmd.Context(), cfg)
			out := cmd.OutOrStdout()
			if stats != nil {
				if opts.jsonOut {
					if perr := opts.printJSON(out, stats); perr != nil {
						return perr
					}
				} else {
					fmt.Fprintf(out, "submitted=%d accepted=%d failed=%d duration=%s\n",
						stats.Submitted, stats.Accepted, stats.Failed, stats.Duration)
					for code, want := range stats.Expected {
						fmt.Fprintf(out, "%s expected=%d observed=%d\n", code, want, stats.Observed[code])
					}
				}
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	f.IntVar(&cfg.Clicks, "clicks", 1000, "Unique clicks to send")
	f.IntVar(&cfg.Replays, "replays", 100, "Clicks resent with an already used click id")
	f.IntVar(&cfg.Codes, "codes", 5, "Top products to spread the clicks over")
	f.IntVarP(&cfg.Workers, "workers", "w", 8, "Concurrent clients")
	f.DurationVar(&cfg.Timeout, "timeout", 10*time.Second, "HTTP request timeout")
	f.DurationVar(&cfg.Settle, "settle", 30*time.Second, "How long to wait for the counters")
	f.StringVar(&cfg.AdminToken, "admin-token", "", "Bearer token for the server's admin routes")
	return cmd
}
