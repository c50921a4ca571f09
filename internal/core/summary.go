package core

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Amount     Money  `json:"amount"`
}

// BudgetStatus compares a category's monthly limit with what was spent.
type BudgetStatus struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Limit      Money  `json:"limit"`
	Spent      Money  `json:"spent"`
	Remaining  Money  `json:"remaining"`
	Exceeded   bool   `json:"exceeded"`
}

// MonthSummary aggregates one user's transactions for a calendar month.
type MonthSummary struct {
	Year             int              `json:"year"`
	Month            int              `json:"month"` // 1-12
	Period           string           `json:"period"`
	TotalExpenses    Money            `json:"total_expenses"`
	TotalIncome      Money            `json:"total_income"`
	Balance          Money            `json:"balance"`
	TransactionCount int              `json:"transaction_count"`
	TopCategories    []CategoryAmount `json:"top_categories"`
	Budgets          []BudgetStatus   `json:"budgets"`
}
