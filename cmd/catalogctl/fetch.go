package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/daonpick/internal/adapters/feed"
	app "github.com/okian/daonpick/internal/app"
)

type fetchResult struct {
	Products feed.Report `json:"products"`
	Settings feed.Report `json:"settings"`
	Errors   []string    `json:"errors,omitempty"`
}

func newFetchCmd(opts *options) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch and validate the product and settings feeds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := opts.loadConfig(ctx)
			if err != nil {
				return err
			}
			src := app.NewFeed(cfg)

			var res fetchResult
			_, res.Products, err = src.Products(ctx)
			if err != nil {
				res.Errors = append(res.Errors, "products: "+err.Error())
			}
			_, res.Settings, err = src.Settings(ctx)
			if err != nil {
				res.Errors = append(res.Errors, "settings: "+err.Error())
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				if err := opts.printJSON(out, res); err != nil {
					return err
				}
			} else {
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "FEED\tTOTAL\tVALID\tINVALID")
				fmt.Fprintf(tw, "products\t%d\t%d\t%d\n", res.Products.Total, res.Products.Valid, res.Products.Invalid)
				fmt.Fprintf(tw, "settings\t%d\t%d\t%d\n", res.Settings.Total, res.Settings.Valid, res.Settings.Invalid)
				if err := tw.Flush(); err != nil {
					return err
				}
				for _, is := range append(res.Products.Issues, res.Settings.Issues...) {
					fmt.Fprintf(out, "row %d: %s: %s\n", is.Row, is.Field, is.Reason)
				}
				for _, e := range res.Errors {
					fmt.Fprintln(out, "error:", e)
				}
			}

			if len(res.Errors) > 0 {
				return fmt.Errorf("%d feed(s) unavailable", len(res.Errors))
			}
			if strict && res.Products.Invalid+res.Settings.Invalid > 0 {
				return fmt.Errorf("%d invalid row(s)", res.Products.Invalid+res.Settings.Invalid)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any row is invalid")
	return cmd
}
