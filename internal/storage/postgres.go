package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
)

// pgUniqueViolation is the Postgres error code for a unique constraint.
const pgUniqueViolation = "23505"

// PostgresRepository is the production store, pointed at by DATABASE_URL.
// Same contract as SQLiteRepository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, url string) (*PostgresRepository, error) {
	if err := RunPostgresMigrations(url); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}

// CreateTransaction implements ledger.TransactionWriter.
func (r *PostgresRepository) CreateTransaction(ctx context.Context, t core.Transaction) (ledger.IngestResult, error) {
	if errs := t.Validate(); errs.Any() {
		return ledger.IngestResult{}, errs
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return ledger.IngestResult{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO transactions (date, amount_cents, category, description, kind, sync_status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		t.Date.Time, t.Amount.Cents, t.Category, t.Description, string(t.Kind), ExportPending,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return ledger.IngestResult{}, fmt.Errorf("insert transaction: %w", err)
	}

	result := ledger.IngestResult{Transaction: t}
	if t.Kind == core.Expense {
		var b core.Budget
		err := tx.QueryRow(ctx,
			`UPDATE budgets SET spent_cents = spent_cents + $1 WHERE category = $2
			 RETURNING id, category, limit_cents, spent_cents, created_at`,
			t.Amount.Cents, t.Category,
		).Scan(&b.ID, &b.Category, &b.Limit.Cents, &b.Spent.Cents, &b.CreatedAt)
		switch {
		case err == nil:
			result.Budget = &b
		case errors.Is(err, pgx.ErrNoRows):
			// no budget for this category
		default:
			return ledger.IngestResult{}, fmt.Errorf("update budget spent: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
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

// ListTransactions implements ledger.TransactionLister.
func (r *PostgresRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, date, amount_cents, category, description, kind, created_at
		 FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanPgTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateBudget implements ledger.BudgetWriter.
func (r *PostgresRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if errs := b.Validate(); errs.Any() {
		return core.Budget{}, errs
	}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO budgets (category, limit_cents, spent_cents) VALUES ($1, $2, 0)
		 RETURNING id, created_at`,
		b.Category, b.Limit.Cents,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return core.Budget{}, core.FieldErrors{"category": {core.MsgTaken}}
		}
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	b.Spent = core.Money{}
	return b, nil
}

// ListBudgets implements ledger.BudgetLister.
func (r *PostgresRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, category, limit_cents, spent_cents, created_at FROM budgets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.Category, &b.Limit.Cents, &b.Spent.Cents, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CreateGoal implements ledger.GoalWriter.
func (r *PostgresRepository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if errs := g.Validate(); errs.Any() {
		return core.Goal{}, errs
	}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO goals (name, target_cents, current_cents, deadline) VALUES ($1, $2, 0, $3)
		 RETURNING id, created_at`,
		g.Name, g.Target.Cents, g.Deadline.Time,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	g.Current = core.Money{}
	return g, nil
}

// ListGoals implements ledger.GoalLister.
func (r *PostgresRepository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, target_cents, current_cents, deadline, created_at FROM goals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanPgGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// AddGoalProgress implements ledger.GoalProgressor.
func (r *PostgresRepository) AddGoalProgress(ctx context.Context, id int64, amount core.Money) (core.Goal, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE goals SET current_cents = current_cents + $1 WHERE id = $2
		 RETURNING id, name, target_cents, current_cents, deadline, created_at`,
		amount.Cents, id)

	g, err := scanPgGoal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Goal{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal progress: %w", err)
	}
	return g, nil
}

// GetTransaction loads a single transaction, used by the export worker.
func (r *PostgresRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	t, err := scanPgTransaction(r.pool.QueryRow(ctx,
		`SELECT id, date, amount_cents, category, description, kind, created_at
		 FROM transactions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return t, err
}

// ListPendingExport returns transactions that still need to be exported.
func (r *PostgresRepository) ListPendingExport(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, date, amount_cents, category, description, kind, created_at
		 FROM transactions WHERE sync_status = $1 ORDER BY id LIMIT $2`, ExportPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending export: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanPgTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkExported marks a transaction as successfully exported.
func (r *PostgresRepository) MarkExported(ctx context.Context, id int64) error {
	return r.setExportStatus(ctx, id, ExportSynced)
}

// MarkExportError marks a transaction as failed to export.
func (r *PostgresRepository) MarkExportError(ctx context.Context, id int64) error {
	return r.setExportStatus(ctx, id, ExportError)
}

func (r *PostgresRepository) setExportStatus(ctx context.Context, id int64, status string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE transactions SET sync_status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("set export status %s: %w", status, err)
	}
	return nil
}

func scanPgTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t    core.Transaction
		date time.Time
		kind string
	)
	if err := row.Scan(&t.ID, &date, &t.Amount.Cents, &t.Category, &t.Description, &kind, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Date = core.NewDate(date.Year(), int(date.Month()), date.Day())
	t.Kind = core.Kind(kind)
	return t, nil
}

func scanPgGoal(row rowScanner) (core.Goal, error) {
	var (
		g        core.Goal
		deadline time.Time
	)
	if err := row.Scan(&g.ID, &g.Name, &g.Target.Cents, &g.Current.Cents, &deadline, &g.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Goal{}, err
		}
		return core.Goal{}, fmt.Errorf("scan goal: %w", err)
	}
	g.Deadline = core.NewDate(deadline.Year(), int(deadline.Month()), deadline.Day())
	return g, nil
}
