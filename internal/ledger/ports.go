// Package ledger defines the ports every record store implements.
package ledger

import (
	"context"
	"errors"

	"bilancio/internal/core"
)

// ErrNotFound is returned when a record addressed by id does not exist.
var ErrNotFound = errors.New("record not found")

// IngestResult is the outcome of a transaction ingestion. Budget is the
// matching budget after its spent increment, nil when no budget matched
// or the transaction was income.
type IngestResult struct {
	Transaction core.Transaction
	Budget      *core.Budget
}

type (
	// TransactionWriter persists a transaction. When the transaction is
	// an expense and a budget with the exact same category exists, the
	// budget's spent amount is increased by the transaction amount in
	// the same atomic step.
	TransactionWriter interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (IngestResult, error)
	}

	// TransactionLister returns all transactions in insertion order.
	TransactionLister interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// BudgetWriter persists a budget. Category uniqueness is enforced
	// transactionally: of two concurrent creations with the same
	// category, exactly one succeeds. A duplicate surfaces as
	// core.FieldErrors on the category field.
	BudgetWriter interface {
		CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	}

	BudgetLister interface {
		ListBudgets(ctx context.Context) ([]core.Budget, error)
	}

	GoalWriter interface {
		CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
	}

	GoalLister interface {
		ListGoals(ctx context.Context) ([]core.Goal, error)
	}

	// GoalProgressor advances a goal's current amount by the given
	// delta. Returns ErrNotFound for an unknown id.
	GoalProgressor interface {
		AddGoalProgress(ctx context.Context, id int64, amount core.Money) (core.Goal, error)
	}
)
