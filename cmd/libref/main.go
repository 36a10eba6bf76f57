package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/libref/cmd/libref/commands"
	"github.com/teranos/libref/errors"
	"github.com/teranos/libref/logger"
	"github.com/teranos/libref/pipeline"
)

var (
	updateNavOnly bool
	clearOnly     bool
)

var rootCmd = &cobra.Command{
	Use:   "libref",
	Short: "libref - API reference generator for the faebryk component library",
	Long: `libref - Generate API reference pages for the faebryk component library.

Scans the library's Python sources, extracts each component, interface and
trait, renders one MDX page per class and rewrites the "Library Reference"
navigation group of the documentation manifest.

Without a subcommand libref clears the output directory, regenerates every
page and updates the manifest.

Examples:
  libref                       # Full run
  libref --update-nav-only     # Rebuild navigation from pages on disk
  libref --clear-only          # Remove generated pages
  libref check                 # Fail when the committed reference is stale
  libref preview --watch       # Browse pages while editing the library
  libref inspect Resistor      # Show what the extractor sees`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if updateNavOnly && clearOnly {
			return errors.New("--update-nav-only and --clear-only cannot be combined")
		}
		mode := pipeline.FullRun
		switch {
		case updateNavOnly:
			mode = pipeline.Mode{Nav: true}
		case clearOnly:
			mode = pipeline.Mode{Clear: true}
		}
		return commands.RunMode(cmd, mode)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default: libref.toml found from the working directory upwards)")
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")

	rootCmd.Flags().BoolVar(&updateNavOnly, "update-nav-only", false, "Only rebuild the navigation group from existing pages")
	rootCmd.Flags().BoolVar(&clearOnly, "clear-only", false, "Only remove generated pages")

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.NavCmd)
	rootCmd.AddCommand(commands.ClearCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.PreviewCmd)
	rootCmd.AddCommand(commands.MCPCmd)
	rootCmd.AddCommand(commands.InspectCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		for _, hint := range errors.GetAllHints(err) {
			pterm.Info.Println(hint)
		}
		os.Exit(1)
	}
}
