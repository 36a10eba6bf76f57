package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/libref/config"
)

var configWrite string

// ConfigCmd prints the effective configuration.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as TOML",
	Long: `Print the configuration after defaults, config files and LIBREF_*
environment variables are merged. With --write the result is saved to a
file, keeping a backup of any existing one.

Examples:
  libref config
  libref config --write libref.toml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if configWrite != "" {
			if err := config.Write(configWrite, cfg); err != nil {
				return err
			}
			pterm.Success.Printfln("Wrote %s", configWrite)
			return nil
		}
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	ConfigCmd.Flags().StringVar(&configWrite, "write", "", "Write the configuration to this file instead of printing it")
}
