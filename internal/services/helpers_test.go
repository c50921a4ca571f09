package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"centavo/internal/amqp"
	"centavo/internal/auth"
	"centavo/internal/core"
	"centavo/internal/kv"
	"centavo/internal/log"
	"centavo/internal/storage"

	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []amqp.TransactionEvent
	err    error
}

func (p *recordingPublisher) PublishTransactionEvent(_ context.Context, ev amqp.TransactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) kinds() []amqp.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventKind, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Kind
	}
	return out
}

type fixture struct {
	repo         *storage.SQLiteRepository
	codes        *kv.Memory
	publisher    *recordingPublisher
	users        *UserService
	categories   *CategoryService
	transactions *TransactionService
	summary      *SummaryService
	recurring    *RecurringService
	processor    *RecurringProcessor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := storage.Open(filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	logger := log.Discard()
	codes := kv.NewMemory()
	pub := &recordingPublisher{}
	tokens := auth.NewTokens("0123456789abcdef0123456789abcdef", 15*time.Minute, time.Hour)
	linker := NewLinker(codes, repo, 5*time.Minute, logger)

	f := &fixture{repo: repo, codes: codes, publisher: pub}
	f.users = NewUserService(repo, tokens, linker, "MXN", logger)
	f.categories = NewCategoryService(repo, logger)
	f.transactions = NewTransactionService(repo, repo, repo, pub, logger)
	f.summary = NewSummaryService(repo, repo)
	f.recurring = NewRecurringService(repo, repo, repo, f.transactions, logger)
	f.processor = NewRecurringProcessor(repo, f.transactions, logger)
	return f
}

func (f *fixture) webUser(t *testing.T, email string) core.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), RegisterInput{
		Email: email, Password: "password123", DisplayName: "Web",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) botUser(t *testing.T, tgID int64) core.User {
	t.Helper()
	u, _, err := f.users.GetOrCreateTelegramUser(context.Background(), tgID, "bot", "Bot")
	require.NoError(t, err)
	return u
}

func (f *fixture) expense(t *testing.T, userID string, cents int64, categoryID *string, date core.Date) core.Transaction {
	t.Helper()
	tx, err := f.transactions.Create(context.Background(), CreateTransactionInput{
		UserID: userID, Type: core.Expense, Amount: core.Money{Cents: cents},
		Description: "test", CategoryID: categoryID, Date: date,
	})
	require.NoError(t, err)
	return tx
}

func ptr[T any](v T) *T { return &v }
