package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/daonpick/internal/adapters/viewstore"
	app "github.com/okian/daonpick/internal/app"
	"github.com/okian/daonpick/internal/clicksim"
	"github.com/okian/daonpick/pkg/logger"
)

type simulateResult struct {
	Atomic          clicksim.Result `json:"atomic"`
	ReadModifyWrite clicksim.Result `json:"read_modify_write"`
}

func newSimulateCmd(opts *options) *cobra.Command {
	var (
		workers    int
		clicks     int
		gap        time.Duration
		code       string
		configured bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Compare atomic and read-modify-write view counters under load",
		Long: `simulate sends concurrent increments for one code to an atomic counter and
to a read-modify-write counter and reports how many increments each kept.

By default both run in memory. With --configured the atomic run uses the
view_store from the config, so real clicks are added to that store.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := logger.Named("simulate")
			sim := clicksim.New(clicksim.WithWorkers(workers), clicksim.WithClicks(clicks), clicksim.WithLogger(log))

			var atomicStore viewstore.Store = viewstore.NewMemoryStore()
			if configured {
				cfg, err := opts.loadConfig(ctx)
				if err != nil {
					return err
				}
				if atomicStore, err = app.NewViewStore(ctx, cfg, log); err != nil {
					return err
				}
			}
			defer atomicStore.Close()
			rmw := viewstore.NewReadModifyWrite(viewstore.NewMemoryStore(), viewstore.WithGap(gap))

			var res simulateResult
			var err error
			if res.Atomic, err = sim.Run(ctx, atomicStore, code); err != nil {
				return fmt.Errorf("atomic run: %w", err)
			}
			if res.ReadModifyWrite, err = sim.Run(ctx, rmw, code); err != nil {
				return fmt.Errorf("read-modify-write run: %w", err)
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return opts.printJSON(out, res)
			}
			fmt.Fprintln(out, "atomic:           ", res.Atomic)
			fmt.Fprintln(out, "read-modify-write:", res.ReadModifyWrite)
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 8, "Concurrent clickers")
	cmd.Flags().IntVar(&clicks, "clicks", 100, "Clicks per worker")
	cmd.Flags().DurationVar(&gap, "gap", time.Millisecond, "Delay between read and write in the read-modify-write counter")
	cmd.Flags().StringVar(&code, "code", "10024", "Product code to click")
	cmd.Flags().BoolVar(&configured, "configured", false, "Use the configured view store for the atomic run")
	return cmd
}
