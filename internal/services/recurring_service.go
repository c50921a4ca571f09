package services

import (
	"context"
	"fmt"
	"strings"

	"centavo/internal/core"
	"centavo/internal/log"
)

// RecurringService manages recurring templates and pays them on demand.
type RecurringService struct {
	recurring    RecurringStore
	categories   CategoryStore
	users        UserStore
	transactions *TransactionService
	logger       *log.Logger
	today        func() core.Date
}

func NewRecurringService(recurring RecurringStore, categories CategoryStore, users UserStore, transactions *TransactionService, logger *log.Logger) *RecurringService {
	return &RecurringService{
		recurring:    recurring,
		categories:   categories,
		users:        users,
		transactions: transactions,
		logger:       logger,
		today:        core.Today,
	}
}

func (s *RecurringService) List(ctx context.Context, userID string) ([]core.RecurringTransaction, error) {
	list, err := s.recurring.ListRecurring(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []core.RecurringTransaction{}
	}
	return list, nil
}

// Get returns the user's template. Another user's template is
// core.ErrForbidden.
func (s *RecurringService) Get(ctx context.Context, userID, id string) (core.RecurringTransaction, error) {
	rt, err := s.recurring.GetRecurring(ctx, id)
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	if rt.UserID != userID {
		return core.RecurringTransaction{}, core.ErrForbidden
	}
	return rt, nil
}

// CreateRecurringInput describes a template. Empty Frequency means monthly,
// empty Currency the user's default and a zero StartDate today.
type CreateRecurringInput struct {
	Name       string
	Amount     core.Money
	Currency   string
	CategoryID *string
	Type       core.TransactionType
	Frequency  core.Frequency
	DayOfMonth int
	StartDate  core.Date
	AutoPost   bool
}

func (s *RecurringService) Create(ctx context.Context, userID string, in CreateRecurringInput) (core.RecurringTransaction, error) {
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		u, err := s.users.GetUserByID(ctx, userID)
		if err != nil {
			return core.RecurringTransaction{}, fmt.Errorf("load user: %w", err)
		}
		currency = u.DefaultCurrency
	}
	rt := core.RecurringTransaction{
		UserID:     userID,
		Name:       strings.TrimSpace(in.Name),
		Amount:     in.Amount,
		Currency:   currency,
		CategoryID: in.CategoryID,
		Type:       in.Type,
		Frequency:  in.Frequency,
		DayOfMonth: in.DayOfMonth,
		StartDate:  in.StartDate,
		IsActive:   true,
		AutoPost:   in.AutoPost,
	}
	if rt.Frequency == "" {
		rt.Frequency = core.Monthly
	}
	if rt.StartDate.IsZero() {
		rt.StartDate = s.today()
	}
	if err := s.check(ctx, rt); err != nil {
		return core.RecurringTransaction{}, err
	}

	created, err := s.recurring.CreateRecurring(ctx, rt)
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	s.logger.InfoContext(ctx, "Recurring transaction created",
		log.FieldUserID, userID,
		log.FieldRecurringID, created.ID)
	return created, nil
}

type UpdateRecurringInput struct {
	Name          *string
	Amount        *core.Money
	Currency      *string
	CategoryID    *string
	ClearCategory bool
	Type          *core.TransactionType
	Frequency     *core.Frequency
	DayOfMonth    *int
	StartDate     *core.Date
	IsActive      *bool
	AutoPost      *bool
}

func (s *RecurringService) Update(ctx context.Context, userID, id string, in UpdateRecurringInput) (core.RecurringTransaction, error) {
	rt, err := s.Get(ctx, userID, id)
	if err != nil {
		return core.RecurringTransaction{}, err
	}

	if in.Name != nil {
		rt.Name = strings.TrimSpace(*in.Name)
	}
	if in.Amount != nil {
		rt.Amount = *in.Amount
	}
	if in.Currency != nil {
		rt.Currency = strings.ToUpper(strings.TrimSpace(*in.Currency))
	}
	switch {
	case in.ClearCategory:
		rt.CategoryID = nil
	case in.CategoryID != nil:
		rt.CategoryID = in.CategoryID
	}
	if in.Type != nil {
		rt.Type = *in.Type
	}
	if in.Frequency != nil {
		rt.Frequency = *in.Frequency
	}
	if in.DayOfMonth != nil {
		rt.DayOfMonth = *in.DayOfMonth
	}
	if in.StartDate != nil {
		rt.StartDate = *in.StartDate
	}
	if in.IsActive != nil {
		rt.IsActive = *in.IsActive
	}
	if in.AutoPost != nil {
		rt.AutoPost = *in.AutoPost
	}

	if err := s.check(ctx, rt); err != nil {
		return core.RecurringTransaction{}, err
	}
	return s.recurring.UpdateRecurring(ctx, rt)
}

func (s *RecurringService) check(ctx context.Context, rt core.RecurringTransaction) error {
	if err := rt.Validate(); err != nil {
		return err
	}
	if rt.CategoryID != nil {
		if _, err := resolveCategory(ctx, s.categories, rt.UserID, *rt.CategoryID, rt.Type); err != nil {
			return err
		}
	}
	return nil
}

func (s *RecurringService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.recurring.DeleteRecurring(ctx, id)
}

// Pay records today's occurrence of the template as a transaction.
// Inactive templates cannot be paid.
func (s *RecurringService) Pay(ctx context.Context, userID, id string) (core.Transaction, error) {
	rt, err := s.Get(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if !rt.IsActive {
		return core.Transaction{}, fmt.Errorf("%w: recurring transaction is inactive", core.ErrForbidden)
	}
	return postRecurring(ctx, s.transactions, s.recurring, rt, s.today(), s.logger)
}

// postRecurring snapshots rt into a transaction dated on and records the
// post on the template.
func postRecurring(ctx context.Context, transactions *TransactionService, store RecurringStore, rt core.RecurringTransaction, on core.Date, logger *log.Logger) (core.Transaction, error) {
	t, err := transactions.Create(ctx, CreateTransactionInput{
		UserID:      rt.UserID,
		Type:        rt.Type,
		Amount:      rt.Amount,
		Currency:    rt.Currency,
		Description: rt.Name,
		CategoryID:  rt.CategoryID,
		Date:        on,
		Source:      SourceRecurring,
	})
	if err != nil {
		return core.Transaction{}, err
	}
	if err := store.MarkRecurringPosted(ctx, rt.ID, on); err != nil {
		// The transaction exists; a stale marker only risks a second post.
		logger.ErrorContext(ctx, "Failed to mark recurring transaction posted",
			log.FieldRecurringID, rt.ID,
			log.FieldError, err)
	}
	return t, nil
}
