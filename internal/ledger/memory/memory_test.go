package memory

import (
	"context"
	"errors"
	"testing"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
)

func TestTransactionRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	res, err := s.CreateTransaction(ctx, core.Transaction{
		Date:        core.NewDate(2024, 1, 10),
		Amount:      core.Money{Cents: 12345},
		Category:    "Food",
		Description: "groceries",
		Kind:        core.Expense,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Transaction.ID == 0 || res.Transaction.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp, got %+v", res.Transaction)
	}

	txs, err := s.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	got := txs[0]
	if got.Amount.Cents != 12345 || got.Category != "Food" || got.Description != "groceries" ||
		got.Kind != core.Expense || got.Date.String() != "2024-01-10" {
		t.Fatalf("fields not preserved: %+v", got)
	}
}

func TestCreateTransactionRejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.CreateTransaction(context.Background(), core.Transaction{
		Date: core.NewDate(2024, 1, 1), Amount: core.Money{Cents: 1}, Category: "c", Kind: "transfer",
	})
	var fe core.FieldErrors
	if !errors.As(err, &fe) || fe["type"] == nil {
		t.Fatalf("expected type field error, got %v", err)
	}
}

func TestExpenseUpdatesMatchingBudget(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateBudget(ctx, core.Budget{Category: "Food", Limit: core.Money{Cents: 100000}}); err != nil {
		t.Fatalf("create budget: %v", err)
	}

	res, err := s.CreateTransaction(ctx, core.Transaction{
		Date: core.NewDate(2024, 1, 10), Amount: core.Money{Cents: 15000}, Category: "Food", Kind: core.Expense,
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if res.Budget == nil {
		t.Fatalf("expected matching budget in result")
	}
	if res.Budget.Spent.Cents != 15000 {
		t.Fatalf("spent expected 15000, got %d", res.Budget.Spent.Cents)
	}

	budgets, _ := s.ListBudgets(ctx)
	b := budgets[0]
	if b.Spent.Cents != 15000 {
		t.Fatalf("stored spent expected 15000, got %d", b.Spent.Cents)
	}
	if b.Remaining().Cents != 85000 {
		t.Fatalf("remaining expected 85000, got %d", b.Remaining().Cents)
	}
	if got := b.PercentUsed().StringFixed(2); got != "15.00" {
		t.Fatalf("percent used expected 15.00, got %s", got)
	}
}

func TestBudgetNotTouchedByIncomeOrOtherCategory(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, _ = s.CreateBudget(ctx, core.Budget{Category: "Food", Limit: core.Money{Cents: 100000}})

	cases := []core.Transaction{
		{Date: core.NewDate(2024, 1, 1), Amount: core.Money{Cents: 5000}, Category: "Food", Kind: core.Income},
		{Date: core.NewDate(2024, 1, 1), Amount: core.Money{Cents: 5000}, Category: "Transport", Kind: core.Expense},
		// Matching is case-sensitive
		{Date: core.NewDate(2024, 1, 1), Amount: core.Money{Cents: 5000}, Category: "food", Kind: core.Expense},
	}
	for _, tc := range cases {
		res, err := s.CreateTransaction(ctx, tc)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if res.Budget != nil {
			t.Fatalf("no budget should match %+v", tc)
		}
	}

	budgets, _ := s.ListBudgets(ctx)
	if budgets[0].Spent.Cents != 0 {
		t.Fatalf("spent expected 0, got %d", budgets[0].Spent.Cents)
	}
}

func TestDuplicateBudgetCategory(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.CreateBudget(ctx, core.Budget{Category: "Food", Limit: core.Money{Cents: 100000}})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err = s.CreateBudget(ctx, core.Budget{Category: "Food", Limit: core.Money{Cents: 50000}})
	var fe core.FieldErrors
	if !errors.As(err, &fe) || fe["category"] == nil {
		t.Fatalf("expected category uniqueness error, got %v", err)
	}

	budgets, _ := s.ListBudgets(ctx)
	if len(budgets) != 1 || budgets[0].Limit.Cents != first.Limit.Cents {
		t.Fatalf("existing budget must be unchanged: %+v", budgets)
	}
}

func TestGoalProgress(t *testing.T) {
	s := New()
	ctx := context.Background()

	g, err := s.CreateGoal(ctx, core.Goal{Name: "Vacation", Target: core.Money{Cents: 500000}, Deadline: core.NewDate(2025, 6, 1)})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if got := g.ProgressPercent().StringFixed(2); got != "0.00" {
		t.Fatalf("fresh goal expected 0.00, got %s", got)
	}

	updated, err := s.AddGoalProgress(ctx, g.ID, core.Money{Cents: 50000})
	if err != nil {
		t.Fatalf("add progress: %v", err)
	}
	if got := updated.ProgressPercent().StringFixed(2); got != "10.00" {
		t.Fatalf("after progress expected 10.00, got %s", got)
	}

	if _, err := s.AddGoalProgress(ctx, 999, core.Money{Cents: 1}); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
