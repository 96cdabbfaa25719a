package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/teranos/devize/cmd/devize/commands"
	"github.com/teranos/devize/logger"
)

var rootCmd = &cobra.Command{
	Use:   "devize",
	Short: "devize - declarative visualization definitions",
	Long: `devize - resolve visualization specs into drawing primitives.

Types are declared with define specs, usually collected in type libraries,
and every spec is decomposed until only primitives (rectangle, circle, line,
text, path, group) remain. The result is painted as SVG or printed as data.

Available commands:
  render  - Resolve a spec document and paint it
  types   - Inspect registered types and their contracts
  am      - Manage devize configuration ("I am")
  version - Show version information

Examples:
  devize render chart.yaml -l lib/ -o chart.svg
  devize render chart.yaml --format json
  devize types list -l lib/
  devize am show`,
	SilenceUsage: true,
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
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON to stderr")
	rootCmd.PersistentFlags().Bool("json", false, "Print command output as JSON")

	rootCmd.AddCommand(commands.RenderCmd)
	rootCmd.AddCommand(commands.TypesCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
