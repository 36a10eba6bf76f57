package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/libref/pipeline"
	"github.com/teranos/libref/watch"
)

// WatchCmd regenerates whenever a library file changes.
var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate on every library change",
	Long: `Run a full generation, then watch the library directory and
regenerate after .py files change. Bursts of changes are debounced
(watch.debounce_ms). Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(cmd)
		defer cancel()

		p := pipeline.New(cfg)
		defer p.Close()

		w, err := watch.New(p)
		if err != nil {
			return err
		}
		w.OnRun(func(report *pipeline.Report, err error) {
			if report != nil {
				report.Print(cmd.OutOrStdout(), cfg.Categories.Ordered())
			}
		})
		return w.Run(ctx)
	},
}
