package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"centavo/internal/core"
	"centavo/internal/log"
	"centavo/internal/metrics"
	"centavo/internal/parser"
	"centavo/internal/services"
)

const noCategory = "cat_none"

// handleText logs a free-text transaction such as "50 lunch".
func (b *Bot) handleText(ctx context.Context, m *tgbotapi.Message) error {
	parsed, ok := parser.Parse(m.Text)
	if !ok {
		metrics.ParserResults.WithLabelValues("no_match").Inc()
		return b.sendMarkdown(ctx, m.Chat.ID,
			md("❌ I couldn't understand that.")+"\n\n"+
				md("Try: ")+code("50 lunch")+md(" or ")+code("+1000 salary")+"\n"+
				md("Use /help for more examples."))
	}
	metrics.ParserResults.WithLabelValues(string(parsed.Type)).Inc()

	u, err := b.user(ctx, m.From)
	if err != nil {
		return err
	}

	if parsed.CategoryHint != "" {
		cat, err := b.svc.Categories.FindByKeyword(ctx, u.ID, parsed.CategoryHint, parsed.Type)
		if err != nil {
			return fmt.Errorf("match category: %w", err)
		}
		if cat != nil {
			return b.logTransaction(ctx, m.Chat.ID, u, pendingFrom(parsed, m.Text), &cat.ID)
		}
	}

	cats, err := b.svc.Categories.List(ctx, u.ID, &parsed.Type)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	if len(cats) == 0 {
		return b.logTransaction(ctx, m.Chat.ID, u, pendingFrom(parsed, m.Text), nil)
	}

	p := pendingFrom(parsed, m.Text)
	b.pending.Set(pendingKey(m.Chat.ID, m.From.ID), p)

	msg := tgbotapi.NewMessage(m.Chat.ID, fmt.Sprintf("%s Select category for:\n$%s - %s",
		typeEmoji(p.Type), p.Amount, p.Description))
	msg.ReplyMarkup = categoryKeyboard(cats)
	return b.send(ctx, msg)
}

func pendingFrom(p parser.Parsed, raw string) pendingTransaction {
	return pendingTransaction{
		Type:        p.Type,
		Amount:      p.Amount,
		Description: p.Description,
		Raw:         raw,
	}
}

func categoryKeyboard(cats []core.Category) tgbotapi.InlineKeyboardMarkup {
	if len(cats) > keyboardLimit {
		cats = cats[:keyboardLimit]
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(cats)+1)
	for _, c := range cats {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Icon+" "+c.Name, "cat_"+c.ID)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🚫 No category", noCategory)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) logTransaction(ctx context.Context, chatID int64, u core.User, p pendingTransaction, categoryID *string) error {
	t, err := b.create(ctx, u, p, categoryID)
	if err != nil {
		return err
	}
	return b.sendMarkdown(ctx, chatID, loggedText(t))
}

func (b *Bot) create(ctx context.Context, u core.User, p pendingTransaction, categoryID *string) (core.Transaction, error) {
	raw := p.Raw
	t, err := b.svc.Transactions.Create(ctx, services.CreateTransactionInput{
		UserID:      u.ID,
		Type:        p.Type,
		Amount:      p.Amount,
		Description: p.Description,
		CategoryID:  categoryID,
		Date:        b.today(),
		RawMessage:  &raw,
		Source:      services.SourceBot,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

// handleCallback completes a pending transaction with the chosen category.
func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	// Answer first so the client stops its spinner even if we fail below.
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.logger.WarnContext(ctx, "Failed to answer callback", log.FieldError, err)
	}

	if q.From == nil || q.Message == nil || q.Message.Chat == nil || !strings.HasPrefix(q.Data, "cat_") {
		return nil
	}
	chatID, messageID := q.Message.Chat.ID, q.Message.MessageID

	// A tap from anyone but the author finds nothing under its own key.
	p, ok := b.pending.Take(pendingKey(chatID, q.From.ID))
	if !ok {
		return b.send(ctx, tgbotapi.NewEditMessageText(chatID, messageID, "❌ Transaction expired. Please try again."))
	}

	u, err := b.user(ctx, q.From)
	if err != nil {
		return err
	}

	var categoryID *string
	if q.Data != noCategory {
		id := strings.TrimPrefix(q.Data, "cat_")
		categoryID = &id
	}

	t, err := b.create(ctx, u, p, categoryID)
	if errors.Is(err, core.ErrForbidden) || errors.Is(err, core.ErrValidation) {
		return b.send(ctx, tgbotapi.NewEditMessageText(chatID, messageID, "❌ That category can't be used. Please send the message again."))
	}
	if err != nil {
		return err
	}

	return b.send(ctx, tgbotapi.NewEditMessageText(chatID, messageID,
		fmt.Sprintf("✅ %s Transaction saved!\n$%s - %s", typeEmoji(t.Type), t.Amount, t.Description)))
}
