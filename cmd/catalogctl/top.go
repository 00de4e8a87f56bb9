package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	app "github.com/okian/daonpick/internal/app"
	"github.com/okian/daonpick/internal/domain/ranking"
	"github.com/okian/daonpick/pkg/logger"
)

type topRow struct {
	Rank     int    `json:"rank"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Views    int64  `json:"views"`
	Label    string `json:"views_label"`
}

func newTopCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Load the catalog and print the most viewed products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := opts.loadConfig(ctx)
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = cfg.TopN
			}
			svcOpts, err := app.FromConfig(ctx, cfg, logger.Named("service"))
			if err != nil {
				return err
			}
			svc := app.New(svcOpts...)
			snap, err := svc.Refresh(ctx)
			if err != nil {
				return err
			}

			ranked := ranking.WithRanks(ranking.TopN(snap.Entries, limit))
			rows := make([]topRow, 0, len(ranked))
			for _, e := range ranked {
				rows = append(rows, topRow{
					Rank: e.Rank, Code: e.Code, Name: e.Name, Category: e.Category,
					Views: e.Views, Label: ranking.FormatViews(e.Views, e.Code),
				})
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return opts.printJSON(out, rows)
			}
			if len(snap.Degraded) > 0 {
				fmt.Fprintf(out, "degraded sources: %v\n", snap.Degraded)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tCODE\tVIEWS\tLABEL\tCATEGORY\tNAME")
			for _, r := range rows {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n", r.Rank, r.Code, r.Views, r.Label, r.Category, r.Name)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Entries to print (default top_n)")
	return cmd
}
