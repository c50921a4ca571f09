package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"centavo/internal/core"
)

// md escapes s for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

func code(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "`" + strings.ReplaceAll(s, "`", "\\`") + "`"
}

func typeEmoji(t core.TransactionType) string {
	if t == core.Income {
		return "💰"
	}
	return "💸"
}

func amount(m core.Money, currency string) string {
	return fmt.Sprintf("$%s %s", m, currency)
}

// loggedText confirms a transaction created from a chat message.
func loggedText(t core.Transaction) string {
	category := t.CategoryName
	if t.CategoryID == nil {
		category = "None"
	}
	var sb strings.Builder
	sb.WriteString("✅ " + typeEmoji(t.Type) + " " + md("Logged!") + "\n\n")
	sb.WriteString(md("Amount: "+amount(t.Amount, t.Currency)) + "\n")
	sb.WriteString(md("Description: "+t.Description) + "\n")
	sb.WriteString(md("Category: " + category))
	return sb.String()
}

func reportText(sum core.MonthSummary, currency string) string {
	var sb strings.Builder
	sb.WriteString(bold("📊 "+sum.Period+" Report") + "\n\n")
	sb.WriteString("💸 " + bold("Expenses:") + " " + md(amount(sum.TotalExpenses, currency)) + "\n")
	sb.WriteString("💰 " + bold("Income:") + " " + md(amount(sum.TotalIncome, currency)) + "\n")
	sb.WriteString("📈 " + bold("Balance:") + " " + md(balance(sum.Balance, currency)) + "\n")
	sb.WriteString("📝 " + bold("Transactions:") + " " + md(fmt.Sprint(sum.TransactionCount)) + "\n")

	if len(sum.TopCategories) > 0 {
		sb.WriteString("\n" + bold("Top Categories:") + "\n")
		for _, c := range sum.TopCategories {
			sb.WriteString(md(fmt.Sprintf("  • %s: %s", c.Name, amount(c.Amount, currency))) + "\n")
		}
	}

	var over []core.BudgetStatus
	for _, b := range sum.Budgets {
		if b.Exceeded {
			over = append(over, b)
		}
	}
	if len(over) > 0 {
		sb.WriteString("\n" + bold("⚠️ Over budget:") + "\n")
		for _, b := range over {
			sb.WriteString(md(fmt.Sprintf("  • %s: %s of %s", b.Name, b.Spent, b.Limit)) + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// balance formats a signed amount; Money.String keeps the sign.
func balance(m core.Money, currency string) string {
	if m.Cents < 0 {
		return fmt.Sprintf("-$%s %s", core.Money{Cents: -m.Cents}, currency)
	}
	return amount(m, currency)
}

func recentLine(t core.Transaction) string {
	line := fmt.Sprintf("%s %s %s %s", typeEmoji(t.Type), t.Date, amount(t.Amount, t.Currency), t.Description)
	if t.CategoryName != "" {
		line += " (" + t.CategoryName + ")"
	}
	return md(line)
}
