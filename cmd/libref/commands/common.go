// Package commands holds the libref subcommands.
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teranos/libref/config"
	"github.com/teranos/libref/pipeline"
)

// loadConfig reads the configuration honouring the persistent --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	return config.Load(file)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// RunMode loads the configuration, runs the selected stages (adjusted for
// output.clear) and prints the report.
func RunMode(cmd *cobra.Command, mode pipeline.Mode) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd)
	defer cancel()

	p := pipeline.New(cfg)
	defer p.Close()

	report, err := p.Run(ctx, mode.ForConfig(cfg))
	if report != nil {
		report.Print(cmd.OutOrStdout(), cfg.Categories.Ordered())
	}
	return err
}
