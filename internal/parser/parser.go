// Package parser turns short free-text messages such as "50 lunch" or
// "+1000 salary" into transaction guesses.
//
// Matching is deterministic and order-sensitive: income patterns are tried
// before expense patterns, and the first matching pattern wins. Category
// hints come from fixed keyword tables, English first, then Spanish.
package parser

import (
	"regexp"
	"strings"

	"centavo/internal/core"

	"github.com/shopspring/decimal"
)

// Parsed is the structured guess produced from a message.
type Parsed struct {
	Type         core.TransactionType
	Amount       core.Money
	Description  string
	CategoryHint string // empty when no keyword matched
	Raw          string // normalized input
}

const amount = `(\d+(?:\.\d{2})?)`

// Examples, in order: "+1000 salary", "income 1000 salary",
// "earned 1000 from salary", "ingreso 1000 salario", "gané 1000 de salario".
var incomePatterns = compile(
	`^\+`+amount+`\s+(.+)$`,
	`^income\s+`+amount+`\s+(.+)$`,
	`^earned\s+`+amount+`\s+(?:from\s+)?(.+)$`,
	`^ingreso\s+`+amount+`\s+(.+)$`,
	`^gané\s+`+amount+`\s+(?:de\s+)?(.+)$`,
)

// Examples, in order: "50 lunch", "$50 lunch", "spent 50 on lunch",
// "gasté 50 en comida".
var expensePatterns = compile(
	`^`+amount+`\s+(.+)$`,
	`^\$`+amount+`\s+(.+)$`,
	`^spent\s+`+amount+`\s+(?:on\s+)?(.+)$`,
	`^gasté\s+`+amount+`\s+(?:en\s+)?(.+)$`,
)

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// Parse returns the first interpretation of text, or false when no pattern
// matches.
func Parse(text string) (Parsed, bool) {
	msg := strings.ToLower(strings.TrimSpace(text))
	if msg == "" {
		return Parsed{}, false
	}

	if p, ok := match(msg, incomePatterns, core.Income); ok {
		return p, true
	}
	return match(msg, expensePatterns, core.Expense)
}

func match(msg string, patterns []*regexp.Regexp, typ core.TransactionType) (Parsed, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		d, err := decimal.NewFromString(m[1])
		if err != nil {
			continue
		}
		amt, err := core.MoneyFromDecimal(d)
		if err != nil {
			// "0 lunch" is not a transaction
			return Parsed{}, false
		}
		desc := strings.TrimSpace(m[2])
		return Parsed{
			Type:         typ,
			Amount:       amt,
			Description:  desc,
			CategoryHint: DetectCategory(desc),
			Raw:          msg,
		}, true
	}
	return Parsed{}, false
}
