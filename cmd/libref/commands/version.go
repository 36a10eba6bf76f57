package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/libref/version"
)

// VersionCmd prints build information.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show libref version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		short, _ := cmd.Flags().GetBool("short")
		info := version.Get()
		out := cmd.OutOrStdout()

		switch {
		case short:
			fmt.Fprintln(out, info.Version)
		case asJSON:
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		default:
			fmt.Fprintln(out, info.String())
			fmt.Fprintf(out, "%s, %s\n", info.GoVersion, info.Platform)
		}
		return nil
	},
}

func init() {
	VersionCmd.Flags().BoolP("json", "j", false, "Output version info as JSON")
	VersionCmd.Flags().BoolP("short", "s", false, "Print only the version")
}
