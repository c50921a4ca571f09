package services

import (
	"context"
	"sort"
	"time"

	"centavo/internal/core"
)

const topCategoryCount = 5

type SummaryService struct {
	transactions TransactionStore
	categories   CategoryStore
}

func NewSummaryService(transactions TransactionStore, categories CategoryStore) *SummaryService {
	return &SummaryService{transactions: transactions, categories: categories}
}

// Month aggregates the user's transactions for one calendar month.
func (s *SummaryService) Month(ctx context.Context, userID string, year, month int) (core.MonthSummary, error) {
	if month < 1 || month > 12 {
		return core.MonthSummary{}, core.NewValidationError("month", core.ErrInvalidMonth.Error())
	}
	if year < 1970 || year > 9999 {
		return core.MonthSummary{}, core.NewValidationError("year", "must be between 1970 and 9999")
	}

	first, last := core.MonthBounds(year, month)
	txs, err := s.transactions.TransactionsBetween(ctx, userID, first, last)
	if err != nil {
		return core.MonthSummary{}, err
	}

	sum := core.MonthSummary{
		Year:             year,
		Month:            month,
		Period:           time.Month(month).String() + " " + first.Format("2006"),
		TransactionCount: len(txs),
		TopCategories:    []core.CategoryAmount{},
		Budgets:          []core.BudgetStatus{},
	}

	spent := map[string]*core.CategoryAmount{}
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			sum.TotalIncome = sum.TotalIncome.Add(t.Amount)
		case core.Expense:
			sum.TotalExpenses = sum.TotalExpenses.Add(t.Amount)
			if t.CategoryID == nil {
				continue
			}
			ca, ok := spent[*t.CategoryID]
			if !ok {
				ca = &core.CategoryAmount{CategoryID: *t.CategoryID, Name: t.CategoryName}
				spent[*t.CategoryID] = ca
			}
			ca.Amount = ca.Amount.Add(t.Amount)
		}
	}
	sum.Balance = sum.TotalIncome.Sub(sum.TotalExpenses)

	all := make([]core.CategoryAmount, 0, len(spent))
	for _, ca := range spent {
		all = append(all, *ca)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Amount.Cents != all[j].Amount.Cents {
			return all[i].Amount.Cents > all[j].Amount.Cents
		}
		return all[i].Name < all[j].Name
	})
	if len(all) > topCategoryCount {
		all = all[:topCategoryCount]
	}
	sum.TopCategories = all

	expense := core.Expense
	cats, err := s.categories.ListCategories(ctx, userID, &expense)
	if err != nil {
		return core.MonthSummary{}, err
	}
	for _, c := range cats {
		if c.MonthlyLimit == nil {
			continue
		}
		var used core.Money
		if ca, ok := spent[c.ID]; ok {
			used = ca.Amount
		}
		sum.Budgets = append(sum.Budgets, core.BudgetStatus{
			CategoryID: c.ID,
			Name:       c.Name,
			Limit:      *c.MonthlyLimit,
			Spent:      used,
			Remaining:  c.MonthlyLimit.Sub(used),
			Exceeded:   used.Cents > c.MonthlyLimit.Cents,
		})
	}
	return sum, nil
}
