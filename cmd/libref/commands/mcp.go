package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/libref/mcpserver"
	"github.com/teranos/libref/pipeline"
)

// MCPCmd serves the library over the Model Context Protocol on stdio.
var MCPCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve library lookups to MCP clients on stdio",
	Long: `Start a Model Context Protocol server on stdin/stdout with the tools
list_classes and describe_class. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		p := pipeline.New(cfg)
		defer p.Close()
		return mcpserver.New(p).ServeStdio()
	},
}
