// ABOUTME: Root CLI command with global flags for the mddrag tool
// ABOUTME: Wires up all subcommands and output mode flags
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
███╗   ███╗██████╗ ██████╗ ██████╗  █████╗  ██████╗
████╗ ████║██╔══██╗██╔══██╗██╔══██╗██╔══██╗██╔════╝
██╔████╔██║██║  ██║██║  ██║██████╔╝███████║██║  ███╗
██║╚██╔╝██║██║  ██║██║  ██║██╔══██╗██╔══██║██║   ██║
██║ ╚═╝ ██║██████╔╝██████╔╝██║  ██║██║  ██║╚██████╔╝
╚═╝     ╚═╝╚═════╝ ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝`

// NewRootCmd creates the root command with all subcommands
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mddrag",
		Short: "RAG server for Obsidian Canvas modular documentation",
		Long: banner + `

mddrag gives LLM agents structured access to documentation organized
as Obsidian Canvas graphs (the MDD method), plus semantic search over
the whole vault with incremental reindexing.

Run 'mddrag mcp' to serve tools over MCP, or use the subcommands to
parse canvases, index a vault, and search from the terminal.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, json")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewCanvasCmd())
	cmd.AddCommand(NewIndexCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
