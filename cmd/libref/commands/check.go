package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/libref/check"
	"github.com/teranos/libref/pipeline"
)

var checkQuiet bool

// CheckCmd fails when the committed reference differs from a fresh run.
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that generated pages and navigation are up to date",
	Long: `Generate into a temporary directory and compare with the output
directory and manifest. Differences are printed as unified diffs and the
command exits non-zero. Nothing in the working tree is modified.

Examples:
  libref check          # Print diffs for stale files
  libref check --quiet  # Only list stale files`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	CheckCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "List changed files without diffs")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd)
	defer cancel()

	p := pipeline.New(cfg)
	defer p.Close()

	res, err := check.Run(ctx, p)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.UpToDate {
		fmt.Fprint(out, pterm.Success.Sprintfln("%s is up to date", cfg.Output.Dir))
		return nil
	}

	fmt.Fprint(out, res.Summary())
	if !checkQuiet {
		for _, c := range res.Changes {
			fmt.Fprint(out, c.Diff)
		}
	}
	return res.Err()
}
