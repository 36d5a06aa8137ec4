package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"text/tabwriter"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"

	"bilancio/internal/core"
	"bilancio/internal/ledger/memory"
	"bilancio/internal/services"
)

var (
	seedCount int
	seedDays  int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate fake transactions, budgets and goals and print them",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := services.NewLedgerService(memory.New(), nil)
		ctx := context.Background()

		if err := seedLedger(ctx, svc, seedCount, seedDays); err != nil {
			return err
		}
		return printLedger(ctx, svc)
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 20, "number of transactions to generate")
	seedCmd.Flags().IntVar(&seedDays, "days", 30, "spread transactions over the past N days")
}

var demoCategories = []string{"Food", "Transport", "Entertainment", "Utilities", "Health"}

func seedLedger(ctx context.Context, svc *services.LedgerService, count, days int) error {
	for _, category := range demoCategories {
		limit := core.Money{Cents: int64(gofakeit.Number(200, 1500)) * 100}
		if _, err := svc.CreateBudget(ctx, core.Budget{Category: category, Limit: limit}); err != nil {
			return fmt.Errorf("seed budget %s: %w", category, err)
		}
	}

	today := core.Today()
	for i := 0; i < count; i++ {
		daysAgo := rand.Intn(days)
		date := core.Date{Time: today.AddDate(0, 0, -daysAgo)}

		t := core.Transaction{
			Date:        date,
			Category:    demoCategories[rand.Intn(len(demoCategories))],
			Description: gofakeit.ProductName(),
			Kind:        core.Expense,
			Amount:      core.Money{Cents: int64(gofakeit.Number(100, 25000))},
		}
		// Roughly one in five is income.
		if rand.Intn(5) == 0 {
			t.Kind = core.Income
			t.Category = "Salary"
			t.Description = gofakeit.Company()
			t.Amount = core.Money{Cents: int64(gofakeit.Number(100000, 400000))}
		}

		if _, err := svc.CreateTransaction(ctx, t); err != nil {
			return fmt.Errorf("seed transaction: %w", err)
		}
	}

	deadline := core.Date{Time: today.AddDate(0, 6, 0)}
	goal := core.Goal{
		Name:     gofakeit.City() + " trip",
		Target:   core.Money{Cents: int64(gofakeit.Number(1000, 8000)) * 100},
		Deadline: deadline,
	}
	created, err := svc.CreateGoal(ctx, goal)
	if err != nil {
		return fmt.Errorf("seed goal: %w", err)
	}
	if _, err := svc.AddGoalProgress(ctx, created.ID, core.Money{Cents: created.Target.Cents / 10}); err != nil {
		return fmt.Errorf("seed goal progress: %w", err)
	}

	return nil
}

func printLedger(ctx context.Context, svc *services.LedgerService) error {
	txs, err := svc.ListTransactions(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTYPE\tCATEGORY\tDESCRIPTION\tAMOUNT")
	for _, t := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			t.Date, t.Kind, t.Category, t.Description, t.Amount)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	budgets, err := svc.ListBudgets(ctx)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Fprintln(w, "BUDGET\tLIMIT\tSPENT\tREMAINING\tUSED")
	for _, b := range budgets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%%\n",
			b.Category, b.Limit, b.Spent, b.Remaining(), b.PercentUsed().StringFixed(2))
	}
	return w.Flush()
}
