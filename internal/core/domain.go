package core

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	DefaultCurrency      = "MXN"
	DefaultCategoryIcon  = "📦"
	DefaultCategoryColor = "#6366f1"
)

type (
	TransactionType string

	Frequency string

	User struct {
		ID              string    `json:"id"`
		TelegramID      *int64    `json:"telegram_id"`
		Email           *string   `json:"email"`
		PasswordHash    string    `json:"-"`
		DisplayName     string    `json:"display_name"`
		DefaultCurrency string    `json:"default_currency"`
		IsActive        bool      `json:"is_active"`
		CreatedAt       time.Time `json:"created_at"`
		UpdatedAt       time.Time `json:"updated_at"`
	}

	Category struct {
		ID           string          `json:"id"`
		UserID       *string         `json:"user_id"`
		Name         string          `json:"name"`
		Icon         string          `json:"icon"`
		Color        string          `json:"color"`
		Type         TransactionType `json:"type"`
		IsSystem     bool            `json:"is_system"`
		MonthlyLimit *Money          `json:"monthly_limit"`
		CreatedAt    time.Time       `json:"created_at"`
		UpdatedAt    time.Time       `json:"updated_at"`
	}

	Transaction struct {
		ID           string          `json:"id"`
		UserID       string          `json:"user_id"`
		CategoryID   *string         `json:"category_id"`
		CategoryName string          `json:"category_name,omitempty"`
		Type         TransactionType `json:"type"`
		Amount       Money           `json:"amount"`
		Currency     string          `json:"currency"`
		Description  string          `json:"description"`
		RawMessage   *string         `json:"raw_message,omitempty"`
		Date         Date            `json:"transaction_date"`
		CreatedAt    time.Time       `json:"created_at"`
		UpdatedAt    time.Time       `json:"updated_at"`
	}

	RecurringTransaction struct {
		ID           string          `json:"id"`
		UserID       string          `json:"user_id"`
		Name         string          `json:"name"`
		Amount       Money           `json:"amount"`
		Currency     string          `json:"currency"`
		CategoryID   *string         `json:"category_id"`
		Type         TransactionType `json:"type"`
		Frequency    Frequency       `json:"frequency"`
		DayOfMonth   int             `json:"day_of_month"`
		StartDate    Date            `json:"start_date"`
		IsActive     bool            `json:"is_active"`
		AutoPost     bool            `json:"auto_post"`
		LastPostedOn *Date           `json:"last_posted_on"`
		CreatedAt    time.Time       `json:"created_at"`
		UpdatedAt    time.Time       `json:"updated_at"`
	}
)

var (
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	colorPattern    = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// ParseTransactionType accepts "expense" or "income" in any case.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

func (t TransactionType) Valid() bool {
	return t == Expense || t == Income
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// IsShadow reports whether the user was created from a messaging identity
// and never registered with an email.
func (u User) IsShadow() bool {
	return u.Email == nil || *u.Email == ""
}

// OwnedBy reports whether the category belongs to userID. System categories
// are owned by nobody.
func (c Category) OwnedBy(userID string) bool {
	return c.UserID != nil && *c.UserID == userID
}

// VisibleTo reports whether userID may read or reference the category.
func (c Category) VisibleTo(userID string) bool {
	return c.IsSystem || c.OwnedBy(userID)
}

// ValidCurrency reports whether s is a three-letter upper-case code.
func ValidCurrency(s string) bool {
	return currencyPattern.MatchString(s)
}

func (u User) Validate() error {
	v := &ValidationError{}
	name := strings.TrimSpace(u.DisplayName)
	if name == "" || utf8.RuneCountInString(name) > 100 {
		v.Add("display_name", "must be between 1 and 100 characters")
	}
	if !ValidCurrency(u.DefaultCurrency) {
		v.Add("default_currency", ErrInvalidCurrency.Error())
	}
	return v.OrNil()
}

func (c Category) Validate() error {
	v := &ValidationError{}
	name := strings.TrimSpace(c.Name)
	if name == "" || utf8.RuneCountInString(name) > 50 {
		v.Add("name", "must be between 1 and 50 characters")
	}
	if utf8.RuneCountInString(c.Icon) > 50 {
		v.Add("icon", "must be at most 50 characters")
	}
	if !colorPattern.MatchString(c.Color) {
		v.Add("color", "must be a hex color like #6366f1")
	}
	if !c.Type.Valid() {
		v.Add("type", ErrInvalidType.Error())
	}
	if c.MonthlyLimit != nil && c.MonthlyLimit.Cents <= 0 {
		v.Add("monthly_limit", ErrInvalidAmount.Error())
	}
	return v.OrNil()
}

func (t Transaction) Validate() error {
	v := &ValidationError{}
	if !t.Type.Valid() {
		v.Add("type", ErrInvalidType.Error())
	}
	if err := t.Amount.Validate(); err != nil {
		v.Add("amount", err.Error())
	}
	if !ValidCurrency(t.Currency) {
		v.Add("currency", ErrInvalidCurrency.Error())
	}
	desc := strings.TrimSpace(t.Description)
	if desc == "" {
		v.Add("description", ErrEmptyDescription.Error())
	} else if utf8.RuneCountInString(desc) > 500 {
		v.Add("description", "description too long (max 500 characters)")
	}
	if err := t.Date.Validate(); err != nil {
		v.Add("transaction_date", err.Error())
	}
	return v.OrNil()
}

func (rt RecurringTransaction) Validate() error {
	v := &ValidationError{}
	name := strings.TrimSpace(rt.Name)
	if name == "" || utf8.RuneCountInString(name) > 100 {
		v.Add("name", "must be between 1 and 100 characters")
	}
	if err := rt.Amount.Validate(); err != nil {
		v.Add("amount", err.Error())
	}
	if !ValidCurrency(rt.Currency) {
		v.Add("currency", ErrInvalidCurrency.Error())
	}
	if !rt.Type.Valid() {
		v.Add("type", ErrInvalidType.Error())
	}
	if !rt.Frequency.Valid() {
		v.Add("frequency", ErrInvalidFrequency.Error())
	}
	if rt.DayOfMonth < 1 || rt.DayOfMonth > 31 {
		v.Add("day_of_month", ErrInvalidDay.Error())
	}
	if err := rt.StartDate.Validate(); err != nil {
		v.Add("start_date", err.Error())
	}
	return v.OrNil()
}
