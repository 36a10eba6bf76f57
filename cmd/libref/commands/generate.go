package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/libref/pipeline"
)

var (
	generateNoClear bool
	generateNoNav   bool
)

// GenerateCmd regenerates the pages.
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Clear, regenerate every page and update navigation",
	Long: `Regenerate the API reference. Same as running libref without a
subcommand; the flags skip individual stages.

Examples:
  libref generate             # Full run
  libref generate --no-clear  # Overwrite pages, keep orphans
  libref generate --no-nav    # Leave docs.json untouched`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunMode(cmd, pipeline.Mode{
			Clear:    !generateNoClear,
			Generate: true,
			Nav:      !generateNoNav,
		})
	},
}

// NavCmd rebuilds the navigation group from the pages on disk.
var NavCmd = &cobra.Command{
	Use:   "nav",
	Short: "Rebuild the navigation group from existing pages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunMode(cmd, pipeline.Mode{Nav: true})
	},
}

// ClearCmd removes generated pages.
var ClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove generated pages from every category directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunMode(cmd, pipeline.Mode{Clear: true})
	},
}

func init() {
	GenerateCmd.Flags().BoolVar(&generateNoClear, "no-clear", false, "Keep existing pages instead of clearing first")
	GenerateCmd.Flags().BoolVar(&generateNoNav, "no-nav", false, "Do not update the navigation manifest")
}
