package commands

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/libref/pipeline"
)

var inspectPage bool

// InspectCmd prints what the extractor sees for one class.
var InspectCmd = &cobra.Command{
	Use:   "inspect <Class>",
	Short: "Print the extracted record of a class as YAML",
	Long: `Extract one class and print its record as YAML, or with --page the
MDX page it would produce.

Examples:
  libref inspect Resistor
  libref inspect can_bridge --page`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(cmd)
		defer cancel()

		p := pipeline.New(cfg)
		defer p.Close()

		out := cmd.OutOrStdout()
		if inspectPage {
			page, err := p.Document(ctx, args[0])
			if err != nil {
				return err
			}
			_, err = out.Write([]byte(page))
			return err
		}

		rec, err := p.Record(ctx, args[0])
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(rec)
	},
}

func init() {
	InspectCmd.Flags().BoolVar(&inspectPage, "page", false, "Print the rendered page instead of the record")
}
