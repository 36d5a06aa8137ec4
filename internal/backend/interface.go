package backend

import (
	"bilancio/internal/ledger"
)

// Backend is the full record store a running instance needs: every
// ledger port in one place.
type Backend interface {
	ledger.TransactionWriter
	ledger.TransactionLister
	ledger.BudgetWriter
	ledger.BudgetLister
	ledger.GoalWriter
	ledger.GoalLister
	ledger.GoalProgressor
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result contains the backend instance and optional cleanup function.
type Result struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Type represents the kind of backend.
type Type string

const (
	MemoryBackend   Type = "memory"
	SQLiteBackend   Type = "sqlite"
	PostgresBackend Type = "postgres"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
