// Package worker mirrors transaction events into the spreadsheet export.
package worker

import (
	"context"
	"errors"
	"fmt"

	"centavo/internal/amqp"
	"centavo/internal/core"
	"centavo/internal/log"
	"centavo/internal/metrics"
	"centavo/internal/sheets"
)

// TransactionGetter loads a transaction with its category name resolved.
type TransactionGetter interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
}

// ExportWorker turns transaction events into sheet rows.
type ExportWorker struct {
	transactions TransactionGetter
	rows         sheets.RowWriter
	logger       *log.Logger
}

func NewExportWorker(transactions TransactionGetter, rows sheets.RowWriter, logger *log.Logger) *ExportWorker {
	return &ExportWorker{
		transactions: transactions,
		rows:         rows,
		logger:       logger.WithComponent(log.ComponentWorker),
	}
}

// Handle applies one event. It satisfies amqp.EventHandler; a returned error
// requeues the message.
func (w *ExportWorker) Handle(ctx context.Context, ev amqp.TransactionEvent) error {
	logger := w.logger.With(
		log.FieldEventKind, ev.Kind,
		log.FieldTransactionID, ev.TransactionID,
		log.FieldUserID, ev.UserID)

	var (
		result string
		err    error
	)
	switch ev.Kind {
	case amqp.TransactionCreated:
		result, err = w.export(ctx, ev.TransactionID, false)
	case amqp.TransactionUpdated:
		result, err = w.export(ctx, ev.TransactionID, true)
	case amqp.TransactionDeleted:
		result = "ok"
		if err = w.rows.DeleteRow(ctx, ev.TransactionID); err != nil {
			err = fmt.Errorf("delete row: %w", err)
		}
	default:
		result, err = "skipped", nil
		logger.WarnContext(ctx, "Ignoring unknown event kind")
	}

	if err != nil {
		metrics.EventsConsumed.WithLabelValues(string(ev.Kind), "error").Inc()
		return err
	}
	metrics.EventsConsumed.WithLabelValues(string(ev.Kind), result).Inc()
	logger.InfoContext(ctx, "Event exported", "result", result)
	return nil
}

// export (re)writes the row for id. The transaction may be gone by the time
// the event arrives; that is skipped, not retried.
func (w *ExportWorker) export(ctx context.Context, id string, replace bool) (string, error) {
	t, err := w.transactions.GetTransaction(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return "skipped", nil
	}
	if err != nil {
		return "", fmt.Errorf("load transaction: %w", err)
	}

	if replace {
		if err := w.rows.DeleteRow(ctx, id); err != nil {
			return "", fmt.Errorf("delete stale row: %w", err)
		}
	}
	if err := w.rows.AppendRow(ctx, sheets.RowFromTransaction(t)); err != nil {
		return "", fmt.Errorf("append row: %w", err)
	}
	return "ok", nil
}
