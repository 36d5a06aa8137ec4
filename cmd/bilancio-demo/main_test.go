package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/ledger/memory"
	"bilancio/internal/services"
)

func TestRootCommand(t *testing.T) {
	assert.NotNil(t, rootCmd, "rootCmd should be defined")
	assert.Equal(t, "bilancio-demo", rootCmd.Use)
	assert.Contains(t, rootCmd.Short, "finance ledger")
}

func TestSubcommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["seed"], "seed command should be registered")
	assert.True(t, names["report"], "report command should be registered")
}

func TestSeedLedger(t *testing.T) {
	svc := services.NewLedgerService(memory.New(), nil)
	ctx := context.Background()

	require.NoError(t, seedLedger(ctx, svc, 25, 30))

	txs, err := svc.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 25)

	budgets, err := svc.ListBudgets(ctx)
	require.NoError(t, err)
	assert.Len(t, budgets, len(demoCategories))

	goals, err := svc.ListGoals(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Positive(t, goals[0].Current.Cents, "goal should have seeded progress")

	sum, err := svc.BuildSummary(ctx, txs[0].Date, txs[0].Date)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, sum.Expenses.Cents, int64(0))
}
