package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"centavo/internal/core"
	"centavo/internal/log"
	"centavo/internal/report"
)

func (b *Bot) handleCommand(ctx context.Context, m *tgbotapi.Message) error {
	switch m.Command() {
	case "start":
		return b.cmdStart(ctx, m)
	case "help":
		return b.sendMarkdown(ctx, m.Chat.ID, helpText())
	case "report":
		return b.cmdReport(ctx, m)
	case "categories":
		return b.cmdCategories(ctx, m)
	case "settings":
		return b.cmdSettings(ctx, m)
	case "link":
		return b.cmdLink(ctx, m)
	case "recent":
		return b.cmdRecent(ctx, m)
	case "chart":
		return b.cmdChart(ctx, m)
	}
	return b.send(ctx, tgbotapi.NewMessage(m.Chat.ID, "Unknown command. Use /help to see what I can do."))
}

func (b *Bot) cmdStart(ctx context.Context, m *tgbotapi.Message) error {
	u, err := b.user(ctx, m.From)
	if err != nil {
		return err
	}
	text := "👋 " + md("Welcome to ") + bold("Centavo") + md(", "+u.DisplayName+"!") + "\n\n" +
		md("I'm your personal expense tracker. I can help you:") + "\n" +
		md("• 💰 Track expenses and income") + "\n" +
		md("• 📊 View spending reports") + "\n" +
		md("• 📁 Organize by categories") + "\n\n" +
		md("Just send me a message like:") + "\n" +
		code("50 lunch") + md(" or ") + code("+1000 salary") + "\n\n" +
		md("Use /help to see all commands.")
	return b.sendMarkdown(ctx, m.Chat.ID, text)
}

func helpText() string {
	lines := []string{
		bold("Available Commands:"),
		"",
		md("/start - Welcome message"),
		md("/help - Show this help"),
		md("/report - This month's summary"),
		md("/recent - Your last transactions"),
		md("/chart - Expense chart for this month"),
		md("/categories - List categories"),
		md("/settings - Your preferences"),
		md("/link <code> - Connect your web account"),
		"",
		bold("Quick Tips:"),
		md("• Send ") + code("50 lunch") + md(" to log an expense"),
		md("• Use ") + code("+100 salary") + md(" for income"),
		md("• Spanish works too: ") + code("gasté 30 en taxi"),
	}
	return strings.Join(lines, "\n")
}

func (b *Bot) cmdReport(ctx context.Context, m *tgbotapi.Message) error {
	u, err := b.user(ctx, m.From)
	if err != nil {
		return err
	}
	now := b.now().UTC()
	sum, err := b.svc.Summary.Month(ctx, u.ID, now.Year(), int(now.Month()))
	if err != nil {
		return fmt.Errorf("month summary: %w", err)
	}
	return b.sendMarkdown(ctx, m.Chat.ID, reportText(sum, u.DefaultCurrency))
}

func (b *Bot) cmdCategories(ctx context.Context, m *tgbotapi.Message) error {
	u, err := b.user(ctx, m.From)
	if err != nil {
		return err
	}
	cats, err := b.svc.Categories.List(ctx, u.ID, nil)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}

	var expense, income []core.Category
	for _, c := range cats {
		if c.Type == core.Income {
			income = append(income, c)
		} else {
			expense = append(expense, c)
		}
	}

	var sb strings.Builder
	sb.WriteString(bold("📁 Available Categories") + "\n")
	for _, group := range []struct {
		title string
		cats  []core.Category
	}{{"Expenses:", expense}, {"Income:", income}} {
		if len(group.cats) == 0 {
			continue
		}
		sb.WriteString("\n" + bold(group.title) + "\n")
		for i, c := range group.cats {
			if i == categoriesShown {
				sb.WriteString(md(fmt.Sprintf("… and %d more", len(group.cats)-categoriesShown)) + "\n")
				break
			}
			sb.WriteString(md(c.Icon+" "+c.Name) + "\n")
		}
	}

	ownExpense, err := b.svc.Categories.HasOwn(ctx, u.ID, core.Expense)
	if err != nil {
		return fmt.Errorf("count own categories: %w", err)
	}
	ownIncome, err := b.svc.Categories.HasOwn(ctx, u.ID, core.Income)
	if err != nil {
		return fmt.Errorf("count own categories: %w", err)
	}
	if !ownExpense && !ownIncome {
		sb.WriteString("\n" + md("Tip: link your web account with /link to create your own categories."))
	}
	return b.sendMarkdown(ctx, m.Chat.ID, strings.TrimRight(sb.String(), "\n"))
}

func (b *Bot) cmdSettings(ctx context.Context, m *tgbotapi.Message) error {
	u, err := b.user(ctx, m.From)
	if err != nil {
		return err
	}
	account := "not linked (use /link)"
	if u.Email != nil {
		account = *u.Email
	}
	text := bold("⚙️ Your Settings") + "\n\n" +
		md("Telegram ID: ") + code(fmt.Sprint(m.From.ID)) + "\n" +
		md("Display Name: "+u.DisplayName) + "\n" +
		md("Currency: "+u.DefaultCurrency) + "\n" +
		md("Web account: "+account)
	return b.sendMarkdown(ctx, m.Chat.ID, text)
}

func (b *Bot) cmdLink(ctx context.Context, m *tgbotapi.Message) error {
	if m.From == nil {
		return fmt.Errorf("link command without sender")
	}
	args := strings.Fields(m.CommandArguments())
	if len(args) != 1 {
		return b.send(ctx, tgbotapi.NewMessage(m.Chat.ID,
			"⚠️ Please provide the link code from the dashboard.\nUsage: /link 123456"))
	}

	ok, err := b.svc.Users.LinkTelegram(ctx, args[0], m.From.ID)
	if err != nil {
		return fmt.Errorf("link telegram account: %w", err)
	}
	if !ok {
		return b.send(ctx, tgbotapi.NewMessage(m.Chat.ID,
			"❌ Invalid or expired code.\nPlease generate a new code from your dashboard settings."))
	}

	b.logger.InfoContext(ctx, "Telegram account linked", log.FieldTelegramID, m.From.ID)
	return b.send(ctx, tgbotapi.NewMessage(m.Chat.ID,
		"✅ Accounts linked successfully!\nYour transactions will now appear in your Web Dashboard."))
}

func (b *Bot) cmdRecent(ctx context.Context, m *tgbotapi.Message) error {
	u, err := b.user(ctx, m.From)
	if err != nil {
		return err
	}
	txs, err := b.svc.Transactions.Recent(ctx, u.ID, recentCount)
	if err != nil {
		return fmt.Errorf("recent transactions: %w", err)
	}
	if len(txs) == 0 {
		return b.send(ctx, tgbotapi.NewMessage(m.Chat.ID, "No transactions yet. Send something like \"50 lunch\" to start."))
	}

	lines := []string{bold("🧾 Recent Transactions"), ""}
	for _, t := range txs {
		lines = append(lines, recentLine(t))
	}
	return b.sendMarkdown(ctx, m.Chat.ID, strings.Join(lines, "\n"))
}

func (b *Bot) cmdChart(ctx context.Context, m *tgbotapi.Message) error {
	u, err := b.user(ctx, m.From)
	if err != nil {
		return err
	}
	now := b.now().UTC()
	sum, err := b.svc.Summary.Month(ctx, u.ID, now.Year(), int(now.Month()))
	if err != nil {
		return fmt.Errorf("month summary: %w", err)
	}

	img, err := report.MonthChart(sum)
	if errors.Is(err, report.ErrNoData) {
		return b.send(ctx, tgbotapi.NewMessage(m.Chat.ID, "No expenses to chart for "+sum.Period+" yet."))
	}
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	photo := tgbotapi.NewPhoto(m.Chat.ID, tgbotapi.FileBytes{Name: "chart.png", Bytes: img})
	photo.Caption = "📊 Expenses for " + sum.Period
	return b.send(ctx, photo)
}
