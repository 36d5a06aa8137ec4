// bilancio-demo exercises the ledger end to end against the in-memory
// store: seed fake records, then print an aggregated report.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bilancio-demo",
	Short: "Seed and report on an in-memory finance ledger",
	Long: `bilancio-demo runs the same ingestion and aggregation logic as the
HTTP server against an in-memory store, for trying the ledger out
without a database or a broker.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("bilancio-demo")
		fmt.Println("Use --help for available commands")
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(reportCmd)
}
