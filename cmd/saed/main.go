// Command saed is the query engine's binary entry point: it loads the
// provider list and engine settings, starts one poller per configured
// provider, serves the debug/metrics HTTP surface, and evaluates one-off
// queries against the resulting store. There is no interactive shell;
// "saed query" is the non-interactive equivalent for one-off evaluation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "saed",
	Short: "saed runs the semantic object query engine's provider poller and debug surface",
}

func main() {
	rootCmd.AddCommand(serveCmd, queryCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
