package services

import (
	"context"
	"fmt"
	"strings"

	"centavo/internal/amqp"
	"centavo/internal/core"
	"centavo/internal/log"
	"centavo/internal/metrics"
	"centavo/internal/storage"
)

// Sources label where a transaction came from.
const (
	SourceAPI       = "api"
	SourceBot       = "bot"
	SourceRecurring = "recurring"
)

// TransactionService saves transactions and announces changes. The database
// write is authoritative; event publishing is best effort.
type TransactionService struct {
	transactions TransactionStore
	categories   CategoryStore
	users        UserStore
	publisher    EventPublisher // nil disables events
	logger       *log.Logger
	today        func() core.Date
}

func NewTransactionService(transactions TransactionStore, categories CategoryStore, users UserStore, publisher EventPublisher, logger *log.Logger) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		categories:   categories,
		users:        users,
		publisher:    publisher,
		logger:       logger,
		today:        core.Today,
	}
}

// CreateTransactionInput describes a new transaction. An empty Currency
// uses the user's default and a zero Date means today.
type CreateTransactionInput struct {
	UserID      string
	Type        core.TransactionType
	Amount      core.Money
	Currency    string
	Description string
	CategoryID  *string
	Date        core.Date
	RawMessage  *string
	Source      string
}

func (s *TransactionService) Create(ctx context.Context, in CreateTransactionInput) (core.Transaction, error) {
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		u, err := s.users.GetUserByID(ctx, in.UserID)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("load user: %w", err)
		}
		currency = u.DefaultCurrency
	}
	date := in.Date
	if date.IsZero() {
		date = s.today()
	}

	t := core.Transaction{
		UserID:      in.UserID,
		CategoryID:  in.CategoryID,
		Type:        in.Type,
		Amount:      in.Amount,
		Currency:    currency,
		Description: strings.TrimSpace(in.Description),
		RawMessage:  in.RawMessage,
		Date:        date,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if t.CategoryID != nil {
		c, err := resolveCategory(ctx, s.categories, t.UserID, *t.CategoryID, t.Type)
		if err != nil {
			return core.Transaction{}, err
		}
		t.CategoryName = c.Name
	}

	created, err := s.transactions.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	created.CategoryName = t.CategoryName

	source := in.Source
	if source == "" {
		source = SourceAPI
	}
	metrics.TransactionsCreated.WithLabelValues(string(created.Type), source).Inc()
	s.logger.InfoContext(ctx, "Transaction created",
		log.FieldUserID, created.UserID,
		log.FieldTransactionID, created.ID,
		log.FieldType, created.Type,
		log.FieldAmountCents, created.Amount.Cents,
		"source", source)

	s.publish(ctx, amqp.TransactionCreated, created)
	return created, nil
}

// Get returns the user's transaction. Another user's transaction is
// core.ErrForbidden.
func (s *TransactionService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	t, err := s.transactions.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if t.UserID != userID {
		return core.Transaction{}, core.ErrForbidden
	}
	return t, nil
}

// UpdateTransactionInput holds optional changes. ClearCategory removes the
// category; otherwise a nil CategoryID keeps it.
type UpdateTransactionInput struct {
	Type          *core.TransactionType
	Amount        *core.Money
	Currency      *string
	Description   *string
	CategoryID    *string
	ClearCategory bool
	Date          *core.Date
}

func (s *TransactionService) Update(ctx context.Context, userID, id string, in UpdateTransactionInput) (core.Transaction, error) {
	t, err := s.Get(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}

	if in.Type != nil {
		t.Type = *in.Type
	}
	if in.Amount != nil {
		t.Amount = *in.Amount
	}
	if in.Currency != nil {
		t.Currency = strings.ToUpper(strings.TrimSpace(*in.Currency))
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.Date != nil {
		t.Date = *in.Date
	}
	switch {
	case in.ClearCategory:
		t.CategoryID = nil
	case in.CategoryID != nil:
		t.CategoryID = in.CategoryID
	}

	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if t.CategoryID != nil {
		if _, err := resolveCategory(ctx, s.categories, userID, *t.CategoryID, t.Type); err != nil {
			return core.Transaction{}, err
		}
	}

	updated, err := s.transactions.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.publish(ctx, amqp.TransactionUpdated, updated)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	t, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.transactions.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldUserID, userID, log.FieldTransactionID, id)
	s.publish(ctx, amqp.TransactionDeleted, t)
	return nil
}

// ListFilter narrows List. Zero fields are ignored.
type ListFilter struct {
	Type       core.TransactionType
	CategoryID string
	Start      core.Date
	End        core.Date
}

// List returns one page of the user's transactions, newest first. page
// starts at 1; pageSize is clamped to [1, MaxPageSize].
func (s *TransactionService) List(ctx context.Context, userID string, f ListFilter, page, pageSize int) (Page[core.Transaction], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if !f.Start.IsZero() && !f.End.IsZero() && f.End.Before(f.Start.Time) {
		return Page[core.Transaction]{}, core.NewValidationError("end_date", "must not be before start_date")
	}

	filter := storage.TransactionFilter{
		UserID:     userID,
		Type:       f.Type,
		CategoryID: f.CategoryID,
		Start:      f.Start,
		End:        f.End,
	}
	total, err := s.transactions.CountTransactions(ctx, filter)
	if err != nil {
		return Page[core.Transaction]{}, err
	}
	items, err := s.transactions.ListTransactions(ctx, filter, (page-1)*pageSize, pageSize)
	if err != nil {
		return Page[core.Transaction]{}, err
	}
	return NewPage(items, total, page, pageSize), nil
}

// Recent returns the user's n newest transactions.
func (s *TransactionService) Recent(ctx context.Context, userID string, n int) ([]core.Transaction, error) {
	return s.transactions.ListTransactions(ctx, storage.TransactionFilter{UserID: userID}, 0, n)
}

func (s *TransactionService) publish(ctx context.Context, kind amqp.EventKind, t core.Transaction) {
	if s.publisher == nil {
		return
	}
	ev := amqp.NewTransactionEvent(kind, t.ID, t.UserID)
	if err := s.publisher.PublishTransactionEvent(ctx, ev); err != nil {
		metrics.EventsPublished.WithLabelValues(string(kind), "error").Inc()
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			log.FieldEventKind, kind,
			log.FieldTransactionID, t.ID,
			log.FieldError, err)
		return
	}
	metrics.EventsPublished.WithLabelValues(string(kind), "ok").Inc()
}
