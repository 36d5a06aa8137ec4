package worker

import (
	"context"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	applog "bilancio/internal/log"
)

// AlertWorker consumes budget alerts and surfaces them in the logs.
type AlertWorker struct{}

func NewAlertWorker() *AlertWorker {
	return &AlertWorker{}
}

// HandleAlertMessage logs an overspent budget with the overshoot amount.
func (w *AlertWorker) HandleAlertMessage(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	over := core.Money{Cents: msg.SpentCents - msg.LimitCents}

	slog.WarnContext(ctx, "Budget exceeded",
		"budget_id", msg.BudgetID,
		applog.FieldCategory, msg.Category,
		"limit", core.Money{Cents: msg.LimitCents}.String(),
		"spent", core.Money{Cents: msg.SpentCents}.String(),
		"over", over.String())

	return nil
}
