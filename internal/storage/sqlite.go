package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/ledger"

	_ "modernc.org/sqlite"
)

// ExportStatus values for the transaction export queue.
const (
	ExportPending = "pending"
	ExportSynced  = "synced"
	ExportError   = "error"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunSQLiteMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTransaction implements ledger.TransactionWriter. The insert and
// the matching budget's spent increment run in one sql transaction.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (ledger.IngestResult, error) {
	if errs := t.Validate(); errs.Any() {
		return ledger.IngestResult{}, errs
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.IngestResult{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (date, amount_cents, category, description, kind, sync_status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Date.String(), t.Amount.Cents, t.Category, t.Description, string(t.Kind), ExportPending, now)
	if err != nil {
		return ledger.IngestResult{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ledger.IngestResult{}, fmt.Errorf("last insert id: %w", err)
	}
	t.ID = id
	t.CreatedAt = now

	result := ledger.IngestResult{Transaction: t}
	if t.Kind == core.Expense {
		upd, err := tx.ExecContext(ctx,
			`UPDATE budgets SET spent_cents = spent_cents + ? WHERE category = ?`,
			t.Amount.Cents, t.Category)
		if err != nil {
			return ledger.IngestResult{}, fmt.Errorf("update budget spent: %w", err)
		}
		if n, err := upd.RowsAffected(); err == nil && n > 0 {
			b, err := scanBudget(tx.QueryRowContext(ctx,
				`SELECT id, category, limit_cents, spent_cents, created_at FROM budgets WHERE category = ?`,
				t.Category))
			if err != nil {
				return ledger.IngestResult{}, fmt.Errorf("reload budget: %w", err)
			}
			result.Budget = &b
		}
	}

	if err := tx.Commit(); err != nil {
		return ledger.IngestResult{}, fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"kind", string(t.Kind),
		"category", t.Category,
		"amount_cents", t.Amount.Cents,
		"budget_matched", result.Budget != nil)

	return result, nil
}

// ListTransactions implements ledger.TransactionLister. Insertion order
// is the id order.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, amount_cents, category, description, kind, created_at
		 FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateBudget implements ledger.BudgetWriter. The UNIQUE constraint on
// category is the serialization point for concurrent creations.
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if errs := b.Validate(); errs.Any() {
		return core.Budget{}, errs
	}

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (category, limit_cents, spent_cents, created_at) VALUES (?, ?, 0, ?)`,
		b.Category, b.Limit.Cents, now)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return core.Budget{}, core.FieldErrors{"category": {core.MsgTaken}}
		}
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("last insert id: %w", err)
	}
	b.ID = id
	b.Spent = core.Money{}
	b.CreatedAt = now
	return b, nil
}

// ListBudgets implements ledger.BudgetLister.
func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, limit_cents, spent_cents, created_at FROM budgets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CreateGoal implements ledger.GoalWriter.
func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if errs := g.Validate(); errs.Any() {
		return core.Goal{}, errs
	}

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (name, target_cents, current_cents, deadline, created_at) VALUES (?, ?, 0, ?, ?)`,
		g.Name, g.Target.Cents, g.Deadline.String(), now)
	if err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Goal{}, fmt.Errorf("last insert id: %w", err)
	}
	g.ID = id
	g.Current = core.Money{}
	g.CreatedAt = now
	return g, nil
}

// ListGoals implements ledger.GoalLister.
func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, target_cents, current_cents, deadline, created_at FROM goals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// AddGoalProgress implements ledger.GoalProgressor.
func (r *SQLiteRepository) AddGoalProgress(ctx context.Context, id int64, amount core.Money) (core.Goal, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET current_cents = current_cents + ? WHERE id = ?`, amount.Cents, id)
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal progress: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Goal{}, ledger.ErrNotFound
	}

	g, err := scanGoal(r.db.QueryRowContext(ctx,
		`SELECT id, name, target_cents, current_cents, deadline, created_at FROM goals WHERE id = ?`, id))
	if err != nil {
		return core.Goal{}, fmt.Errorf("reload goal: %w", err)
	}
	return g, nil
}

// GetTransaction loads a single transaction, used by the export worker.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx,
		`SELECT id, date, amount_cents, category, description, kind, created_at
		 FROM transactions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return t, err
}

// ListPendingExport returns transactions that still need to be exported.
func (r *SQLiteRepository) ListPendingExport(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, amount_cents, category, description, kind, created_at
		 FROM transactions WHERE sync_status = ? ORDER BY id LIMIT ?`, ExportPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending export: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkExported marks a transaction as successfully exported.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id int64) error {
	return r.setExportStatus(ctx, id, ExportSynced)
}

// MarkExportError marks a transaction as failed to export.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, id int64) error {
	return r.setExportStatus(ctx, id, ExportError)
}

func (r *SQLiteRepository) setExportStatus(ctx context.Context, id int64, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set export status %s: %w", status, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		dateStr string
		kind    string
	)
	if err := row.Scan(&t.ID, &dateStr, &t.Amount.Cents, &t.Category, &t.Description, &kind, &t.CreatedAt); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	d, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", dateStr, err)
	}
	t.Date = d
	t.Kind = core.Kind(kind)
	return t, nil
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var b core.Budget
	if err := row.Scan(&b.ID, &b.Category, &b.Limit.Cents, &b.Spent.Cents, &b.CreatedAt); err != nil {
		return core.Budget{}, fmt.Errorf("scan budget: %w", err)
	}
	return b, nil
}

func scanGoal(row rowScanner) (core.Goal, error) {
	var (
		g           core.Goal
		deadlineStr string
	)
	if err := row.Scan(&g.ID, &g.Name, &g.Target.Cents, &g.Current.Cents, &deadlineStr, &g.CreatedAt); err != nil {
		return core.Goal{}, fmt.Errorf("scan goal: %w", err)
	}
	d, err := core.ParseDate(deadlineStr)
	if err != nil {
		return core.Goal{}, fmt.Errorf("parse stored deadline %q: %w", deadlineStr, err)
	}
	g.Deadline = d
	return g, nil
}

func isSQLiteUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
