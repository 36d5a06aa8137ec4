package worker

import (
	"context"
	"errors"
	"testing"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/ledger"
)

type fakeStore struct {
	transactions map[int64]core.Transaction
	pending      []core.Transaction
	exported     []int64
	errored      []int64
}

func (s *fakeStore) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return t, nil
}

func (s *fakeStore) ListPendingExport(_ context.Context, limit int) ([]core.Transaction, error) {
	if len(s.pending) > limit {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *fakeStore) MarkExported(_ context.Context, id int64) error {
	s.exported = append(s.exported, id)
	return nil
}

func (s *fakeStore) MarkExportError(_ context.Context, id int64) error {
	s.errored = append(s.errored, id)
	return nil
}

type fakeAppender struct {
	rows []core.Transaction
	err  error
}

func (a *fakeAppender) AppendTransaction(_ context.Context, t core.Transaction) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.rows = append(a.rows, t)
	return "Transactions!A2:E2", nil
}

func sampleTransaction(id int64) core.Transaction {
	return core.Transaction{
		ID:       id,
		Date:     core.NewDate(2024, 1, 15),
		Amount:   core.Money{Cents: 15000},
		Category: "Food",
		Kind:     core.Expense,
	}
}

func TestHandleExportMessage(t *testing.T) {
	store := &fakeStore{transactions: map[int64]core.Transaction{7: sampleTransaction(7)}}
	appender := &fakeAppender{}
	w := NewExportWorker(store, appender, 10)

	msg := amqp.NewTransactionExportMessage(7)
	if err := w.HandleExportMessage(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(appender.rows) != 1 || appender.rows[0].ID != 7 {
		t.Fatalf("expected transaction 7 appended, got %v", appender.rows)
	}
	if len(store.exported) != 1 || store.exported[0] != 7 {
		t.Fatalf("expected transaction 7 marked exported, got %v", store.exported)
	}
}

func TestHandleExportMessageUnknownID(t *testing.T) {
	store := &fakeStore{transactions: map[int64]core.Transaction{}}
	w := NewExportWorker(store, &fakeAppender{}, 10)

	if err := w.HandleExportMessage(context.Background(), amqp.NewTransactionExportMessage(99)); err == nil {
		t.Fatal("expected error for unknown transaction")
	}
}

func TestAppendFailureMarksError(t *testing.T) {
	store := &fakeStore{transactions: map[int64]core.Transaction{7: sampleTransaction(7)}}
	appender := &fakeAppender{err: errors.New("quota exceeded")}
	w := NewExportWorker(store, appender, 10)

	if err := w.HandleExportMessage(context.Background(), amqp.NewTransactionExportMessage(7)); err == nil {
		t.Fatal("expected error when append fails")
	}
	if len(store.errored) != 1 || store.errored[0] != 7 {
		t.Fatalf("expected transaction 7 marked errored, got %v", store.errored)
	}
	if len(store.exported) != 0 {
		t.Fatalf("nothing should be marked exported, got %v", store.exported)
	}
}

func TestProcessPendingRespectsBatchSize(t *testing.T) {
	store := &fakeStore{
		pending: []core.Transaction{sampleTransaction(1), sampleTransaction(2), sampleTransaction(3)},
	}
	appender := &fakeAppender{}
	w := NewExportWorker(store, appender, 2)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if len(appender.rows) != 2 {
		t.Fatalf("expected 2 exports, got %d", len(appender.rows))
	}
}

func TestProcessPendingContinuesAfterFailure(t *testing.T) {
	store := &fakeStore{
		pending: []core.Transaction{sampleTransaction(1), sampleTransaction(2)},
	}
	appender := &fakeAppender{err: errors.New("boom")}
	w := NewExportWorker(store, appender, 10)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("sweep should not fail on per-row errors: %v", err)
	}
	if len(store.errored) != 2 {
		t.Fatalf("expected both rows marked errored, got %v", store.errored)
	}
}
