package services

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/backend"
	"bilancio/internal/core"
	"bilancio/internal/ledger"
	applog "bilancio/internal/log"
)

// EventPublisher is the outbound side of ingestion: export requests for
// the worker and alerts for overspent budgets.
type EventPublisher interface {
	PublishTransactionExport(ctx context.Context, id int64) error
	PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error
}

// LedgerService wires the record store to the event pipeline. All API
// handlers and the demo CLI go through it.
type LedgerService struct {
	store  backend.Backend
	events EventPublisher
}

// NewLedgerService creates a service over the given store. events may
// be nil; publishing is then skipped.
func NewLedgerService(store backend.Backend, events EventPublisher) *LedgerService {
	return &LedgerService{store: store, events: events}
}

// CreateTransaction persists the transaction together with its budget
// side effect, then publishes events. Publishing failures are logged
// and do not fail the request: the record is already durable.
func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (ledger.IngestResult, error) {
	res, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return ledger.IngestResult{}, err
	}

	if s.events != nil {
		if err := s.events.PublishTransactionExport(ctx, res.Transaction.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish export message",
				applog.FieldRecordID, res.Transaction.ID, applog.FieldError, err)
		}

		if res.Budget != nil && res.Budget.Overspent() {
			alert := amqp.NewBudgetAlertMessage(
				res.Budget.ID, res.Budget.Category,
				res.Budget.Limit.Cents, res.Budget.Spent.Cents)
			if err := s.events.PublishBudgetAlert(ctx, alert); err != nil {
				slog.ErrorContext(ctx, "Failed to publish budget alert",
					"budget_id", res.Budget.ID, applog.FieldError, err)
			}
		}
	}

	return res, nil
}

func (s *LedgerService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

func (s *LedgerService) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	return s.store.CreateBudget(ctx, b)
}

func (s *LedgerService) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx)
}

func (s *LedgerService) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	return s.store.CreateGoal(ctx, g)
}

func (s *LedgerService) ListGoals(ctx context.Context) ([]core.Goal, error) {
	return s.store.ListGoals(ctx)
}

func (s *LedgerService) AddGoalProgress(ctx context.Context, id int64, amount core.Money) (core.Goal, error) {
	return s.store.AddGoalProgress(ctx, id, amount)
}

// BuildSummary computes the aggregated report over the stored
// transactions within the optional inclusive date range.
func (s *LedgerService) BuildSummary(ctx context.Context, from, to core.Date) (core.Summary, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list transactions for summary: %w", err)
	}
	return core.BuildSummary(txs, from, to), nil
}
