// Package telegram is the chat front-end. It turns Telegram updates into
// service calls and answers with MarkdownV2 replies.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"centavo/internal/cache"
	"centavo/internal/core"
	"centavo/internal/log"
	"centavo/internal/metrics"
	"centavo/internal/services"
)

const (
	pendingTTL      = 10 * time.Minute
	pendingCapacity = 1000
	keyboardLimit   = 20
	categoriesShown = 10
	recentCount     = 5
)

// Sender is the part of *tgbotapi.BotAPI the bot talks to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Poller delivers updates in long-polling mode.
type Poller interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Services struct {
	Users        *services.UserService
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Summary      *services.SummaryService
}

// pendingTransaction is a parsed message waiting for a category choice.
type pendingTransaction struct {
	Type        core.TransactionType
	Amount      core.Money
	Description string
	Raw         string
}

type Bot struct {
	api     Sender
	svc     Services
	pending *cache.LRUCache[pendingTransaction]
	logger  *log.Logger
	now     func() time.Time
}

func New(api Sender, svc Services, logger *log.Logger) *Bot {
	return &Bot{
		api:     api,
		svc:     svc,
		pending: cache.NewLRUCache[pendingTransaction](pendingCapacity, pendingTTL),
		logger:  logger.WithComponent(log.ComponentBot),
		now:     time.Now,
	}
}

// Pending exposes the pending-choice cache for periodic sweeping.
func (b *Bot) Pending() cache.Cleaner {
	return b.pending
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context, p Poller) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := p.GetUpdatesChan(u)

	b.logger.InfoContext(ctx, "Bot polling for updates")
	for {
		select {
		case <-ctx.Done():
			p.StopReceivingUpdates()
			b.logger.InfoContext(ctx, "Bot stopped", "reason", ctx.Err())
			return nil
		case update, ok := <-updates:
			if !ok {
				return fmt.Errorf("update channel closed")
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches one update. Failures are logged and answered with
// a generic error message; they never stop the bot.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	var (
		kind   string
		chatID int64
		err    error
	)

	switch {
	case update.CallbackQuery != nil:
		kind = "callback"
		if m := update.CallbackQuery.Message; m != nil && m.Chat != nil {
			chatID = m.Chat.ID
		}
		err = b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		kind = "command"
		chatID = update.Message.Chat.ID
		err = b.handleCommand(ctx, update.Message)
	case update.Message != nil && update.Message.Text != "":
		kind = "text"
		chatID = update.Message.Chat.ID
		err = b.handleText(ctx, update.Message)
	default:
		kind = "other"
	}
	metrics.BotUpdates.WithLabelValues(kind).Inc()

	if err != nil {
		b.logger.ErrorContext(ctx, "Failed to handle update",
			log.FieldError, err,
			log.FieldChatID, chatID,
			"kind", kind,
			"update_id", update.UpdateID)
		if chatID != 0 {
			b.sendPlain(ctx, chatID, "❌ Something went wrong. Please try again.")
		}
	}
}

// user resolves the sender to a stored user, creating a shadow user on first
// contact.
func (b *Bot) user(ctx context.Context, from *tgbotapi.User) (core.User, error) {
	if from == nil {
		return core.User{}, fmt.Errorf("update without sender")
	}
	u, _, err := b.svc.Users.GetOrCreateTelegramUser(ctx, from.ID, from.UserName, from.FirstName)
	if err != nil {
		return core.User{}, fmt.Errorf("resolve telegram user %d: %w", from.ID, err)
	}
	return u, nil
}

func (b *Bot) sendMarkdown(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return b.send(ctx, msg)
}

// sendPlain is used on error paths where a failure to send is only logged.
func (b *Bot) sendPlain(ctx context.Context, chatID int64, text string) {
	_ = b.send(ctx, tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) error {
	if _, err := b.api.Send(c); err != nil {
		b.logger.WarnContext(ctx, "Failed to send message", log.FieldError, err)
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// pendingKey scopes a pending choice to one sender in one chat, so in a
// group only the author can complete it.
func pendingKey(chatID, telegramID int64) string {
	return strconv.FormatInt(chatID, 10) + ":" + strconv.FormatInt(telegramID, 10)
}

func (b *Bot) today() core.Date {
	return core.DateOf(b.now().UTC())
}
