// cmd/logprefix/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bethropolis/logprefix/internal/config"
	"github.com/bethropolis/logprefix/internal/pipeline"
)

var flags config.Flags

var rootCmd = &cobra.Command{
	Use:   "logprefix [flags] <path|->...",
	Short: "Route loglevel call arguments through the logger's prefix method",
	Long: `logprefix rewrites loglevel calls such as log.debug(a, b) into
log.debug(...log.prefix(a, b)) so a browser prefix plugin can format them,
and writes a source map for every rewritten file.

Paths may be files or directories. Use - to read stdin and write stdout.`,
	Args:          cobra.MinimumNArgs(1),
	RunE:          runTransform,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// main registers subcommands and persistent flags, then executes the root
// command. Any error exits with status 1.
func main() {
	rootCmd.Version = config.Version

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	flags.DefineFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only print the summary and problems")
	rootCmd.Flags().String("stdin-filename", "stdin.js", "unit id used for stdin, its extension picks the grammar")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		errColor.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (plugin %s)\n", config.AppName, config.Version, pipeline.PluginName)
	},
}
