// Command catalogctl inspects feeds, ranks the catalog and load-tests clicks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/daonpick/internal/config"
	"github.com/okian/daonpick/pkg/logger"
)

type options struct {
	configPath string
	jsonOut    bool
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Operate the daonpick catalog",
		Long: `catalogctl works on the same configuration as the daonpick server.

Available subcommands:
  fetch    - Fetch and validate the product and settings feeds
  top      - Load the catalog and print the most viewed products
  simulate - Compare atomic and read-modify-write view counters under load
  load     - Send click traffic to a running server and verify the counters`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWith(cmd.ErrOrStderr(), "text"); err != nil {
				return err
			}
			return logger.SetLevelString(opts.logLevel)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (overrides "+config.EnvFile+")")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Print results as JSON")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(newFetchCmd(opts), newTopCmd(opts), newSimulateCmd(opts), newLoadCmd(opts))
	return root
}

// loadConfig applies the --config flag and loads the layered config.
func (o *options) loadConfig(ctx context.Context) (*config.Config, error) {
	if o.configPath != "" {
		if err := os.Setenv(config.EnvFile, o.configPath); err != nil {
			return nil, err
		}
	}
	return config.Load(ctx)
}

func (o *options) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
