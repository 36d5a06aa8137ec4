// Package memory is the in-process record store. It backs the demo CLI
// and the default backend; the same serialization rules as the SQL
// stores apply, guarded by a single mutex.
package memory

import (
	"context"
	"sync"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
)

type Store struct {
	mu           sync.Mutex
	nextTxID     int64
	nextBudgetID int64
	nextGoalID   int64
	transactions []core.Transaction
	budgets      []core.Budget
	goals        []core.Goal
}

func New() *Store {
	return &Store{nextTxID: 1, nextBudgetID: 1, nextGoalID: 1}
}

// CreateTransaction implements ledger.TransactionWriter. The budget
// spent increment happens under the same lock as the append, so both
// apply or neither does.
func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (ledger.IngestResult, error) {
	if errs := t.Validate(); errs.Any() {
		return ledger.IngestResult{}, errs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.nextTxID
	s.nextTxID++
	t.CreatedAt = time.Now().UTC()
	s.transactions = append(s.transactions, t)

	res := ledger.IngestResult{Transaction: t}
	if t.Kind == core.Expense {
		for i := range s.budgets {
			if s.budgets[i].Category == t.Category {
				s.budgets[i].Spent = s.budgets[i].Spent.Add(t.Amount)
				updated := s.budgets[i]
				res.Budget = &updated
				break
			}
		}
	}
	return res, nil
}

// ListTransactions implements ledger.TransactionLister.
func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.transactions...), nil
}

// CreateBudget implements ledger.BudgetWriter. The uniqueness check and
// the append share the lock, so duplicates cannot race in.
func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if errs := b.Validate(); errs.Any() {
		return core.Budget{}, errs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.budgets {
		if existing.Category == b.Category {
			return core.Budget{}, core.FieldErrors{"category": {core.MsgTaken}}
		}
	}

	b.ID = s.nextBudgetID
	s.nextBudgetID++
	b.Spent = core.Money{}
	b.CreatedAt = time.Now().UTC()
	s.budgets = append(s.budgets, b)
	return b, nil
}

// ListBudgets implements ledger.BudgetLister.
func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Budget(nil), s.budgets...), nil
}

// CreateGoal implements ledger.GoalWriter.
func (s *Store) CreateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	if errs := g.Validate(); errs.Any() {
		return core.Goal{}, errs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g.ID = s.nextGoalID
	s.nextGoalID++
	g.Current = core.Money{}
	g.CreatedAt = time.Now().UTC()
	s.goals = append(s.goals, g)
	return g, nil
}

// ListGoals implements ledger.GoalLister.
func (s *Store) ListGoals(_ context.Context) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Goal(nil), s.goals...), nil
}

// AddGoalProgress implements ledger.GoalProgressor.
func (s *Store) AddGoalProgress(_ context.Context, id int64, amount core.Money) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.goals {
		if s.goals[i].ID == id {
			s.goals[i].Current = s.goals[i].Current.Add(amount)
			return s.goals[i], nil
		}
	}
	return core.Goal{}, ledger.ErrNotFound
}
