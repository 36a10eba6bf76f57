package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/libref/pipeline"
	"github.com/teranos/libref/preview"
	"github.com/teranos/libref/watch"
)

var (
	previewAddr  string
	previewWatch bool
)

// PreviewCmd serves the generated pages as HTML.
var PreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Serve the generated pages for local review",
	Long: `Start a local HTTP server rendering the pages in the output
directory. With --watch the library is regenerated on change and open
browsers reload.

Examples:
  libref preview                  # Serve on preview.addr
  libref preview --watch          # Regenerate and live reload
  libref preview --addr :8080     # Another address`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	PreviewCmd.Flags().StringVar(&previewAddr, "addr", "", "Listen address (default: preview.addr)")
	PreviewCmd.Flags().BoolVarP(&previewWatch, "watch", "w", false, "Regenerate on library changes and reload browsers")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	addr := cfg.Preview.Addr
	if previewAddr != "" {
		addr = previewAddr
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	srv := preview.New(cfg)
	pterm.Info.Printfln("Previewing %s at http://%s", cfg.Output.Dir, addr)

	if !previewWatch {
		return srv.ListenAndServe(ctx, addr)
	}

	p := pipeline.New(cfg)
	defer p.Close()
	w, err := watch.New(p)
	if err != nil {
		return err
	}
	w.OnRun(func(report *pipeline.Report, err error) {
		if err == nil {
			srv.Reload()
		}
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(ctx, addr) })
	g.Go(func() error { return w.Run(ctx) })
	return g.Wait()
}
