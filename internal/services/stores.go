// Package services holds the business rules behind the API and the bot.
package services

import (
	"context"

	"centavo/internal/amqp"
	"centavo/internal/core"
	"centavo/internal/storage"
)

// UserStore is the user persistence the services need.
type UserStore interface {
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	GetUserByID(ctx context.Context, id string) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (core.User, error)
	UpdateUser(ctx context.Context, u core.User) (core.User, error)
	MergeUsers(ctx context.Context, shadowID, targetID string, telegramID int64) error
	BindTelegram(ctx context.Context, userID string, telegramID int64) error
}

type CategoryStore interface {
	ListCategories(ctx context.Context, userID string, typ *core.TransactionType) ([]core.Category, error)
	CountUserCategories(ctx context.Context, userID string, typ core.TransactionType) (int, error)
	GetCategory(ctx context.Context, id string) (core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	ListTransactions(ctx context.Context, f storage.TransactionFilter, offset, limit int) ([]core.Transaction, error)
	CountTransactions(ctx context.Context, f storage.TransactionFilter) (int, error)
	TransactionsBetween(ctx context.Context, userID string, start, end core.Date) ([]core.Transaction, error)
}

type RecurringStore interface {
	CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error)
	GetRecurring(ctx context.Context, id string) (core.RecurringTransaction, error)
	ListRecurring(ctx context.Context, userID string) ([]core.RecurringTransaction, error)
	ListActiveAutoPost(ctx context.Context) ([]core.RecurringTransaction, error)
	UpdateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error)
	DeleteRecurring(ctx context.Context, id string) error
	MarkRecurringPosted(ctx context.Context, id string, on core.Date) error
}

// EventPublisher announces transaction changes. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, ev amqp.TransactionEvent) error
}

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// NewPage builds a page, computing the page count from total.
func NewPage[T any](items []T, total, page, pageSize int) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return Page[T]{Items: items, Total: total, Page: page, PageSize: pageSize, TotalPages: pages}
}
