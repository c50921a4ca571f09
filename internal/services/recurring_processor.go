package services

import (
	"context"
	"fmt"

	"centavo/internal/core"
	"centavo/internal/log"
)

// RecurringProcessor posts due auto-post templates for every user.
type RecurringProcessor struct {
	recurring    RecurringStore
	transactions *TransactionService
	logger       *log.Logger
}

func NewRecurringProcessor(recurring RecurringStore, transactions *TransactionService, logger *log.Logger) *RecurringProcessor {
	return &RecurringProcessor{
		recurring:    recurring,
		transactions: transactions,
		logger:       logger.WithComponent(log.ComponentRecurring),
	}
}

// ProcessDue posts every template due on today and returns how many were
// posted. Failures on one template do not stop the others.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, today core.Date) (int, error) {
	templates, err := p.recurring.ListActiveAutoPost(ctx)
	if err != nil {
		return 0, fmt.Errorf("list auto-post templates: %w", err)
	}

	p.logger.InfoContext(ctx, "Processing recurring transactions",
		"total_active", len(templates),
		"processing_date", today.String())

	posted := 0
	for _, rt := range templates {
		due, err := IsDue(rt, today)
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to check if template is due",
				log.FieldRecurringID, rt.ID,
				log.FieldError, err)
			continue
		}
		if !due {
			continue
		}

		t, err := postRecurring(ctx, p.transactions, p.recurring, rt, today, p.logger)
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to post recurring transaction",
				log.FieldRecurringID, rt.ID,
				log.FieldError, err)
			continue
		}

		posted++
		p.logger.InfoContext(ctx, "Posted recurring transaction",
			log.FieldRecurringID, rt.ID,
			log.FieldTransactionID, t.ID,
			log.FieldAmountCents, rt.Amount.Cents,
			"frequency", rt.Frequency)
	}

	p.logger.InfoContext(ctx, "Recurring processing complete",
		"posted", posted,
		"total_checked", len(templates))
	return posted, nil
}
