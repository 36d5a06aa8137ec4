package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bilancio/internal/core"
	"bilancio/internal/ledger/memory"
	"bilancio/internal/services"
)

var (
	reportFrom  string
	reportTo    string
	reportCount int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Seed fake data and print the aggregated summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := services.NewLedgerService(memory.New(), nil)
		ctx := context.Background()

		if err := seedLedger(ctx, svc, reportCount, 30); err != nil {
			return err
		}

		var from, to core.Date
		if reportFrom != "" {
			d, err := core.ParseDate(reportFrom)
			if err != nil {
				return fmt.Errorf("invalid --from date: %w", err)
			}
			from = d
		}
		if reportTo != "" {
			d, err := core.ParseDate(reportTo)
			if err != nil {
				return fmt.Errorf("invalid --to date: %w", err)
			}
			to = d
		}

		sum, err := svc.BuildSummary(ctx, from, to)
		if err != nil {
			return err
		}

		return printSummary(sum)
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "inclusive start date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "inclusive end date (YYYY-MM-DD)")
	reportCmd.Flags().IntVar(&reportCount, "count", 50, "number of transactions to generate")
}

func printSummary(sum core.Summary) error {
	balance := core.Money{Cents: sum.Income.Cents - sum.Expenses.Cents}

	fmt.Printf("Total income:   %s\n", sum.Income)
	fmt.Printf("Total expenses: %s\n", sum.Expenses)
	fmt.Printf("Balance:        %s\n", balance)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tEXPENSES")
	for _, ca := range sum.ByCategory {
		fmt.Fprintf(w, "%s\t%s\n", ca.Name, ca.Amount)
	}
	return w.Flush()
}
