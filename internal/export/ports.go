package export

import (
	"context"

	"bilancio/internal/core"
)

// Ports for outbound export adapters.
type (
	TransactionAppender interface {
		AppendTransaction(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}
)
