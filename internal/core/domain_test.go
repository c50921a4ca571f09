package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMonthBounds(t *testing.T) {
	first, last := MonthBounds(2024, 2)
	if first.String() != "2024-02-01" || last.String() != "2024-02-29" {
		t.Fatalf("MonthBounds(2024, 2) = %s..%s", first, last)
	}
	first, last = MonthBounds(2025, 12)
	if first.String() != "2025-12-01" || last.String() != "2025-12-31" {
		t.Fatalf("MonthBounds(2025, 12) = %s..%s", first, last)
	}
}

func TestParseTransactionType(t *testing.T) {
	for in, want := range map[string]TransactionType{"expense": Expense, " INCOME ": Income} {
		got, err := ParseTransactionType(in)
		if err != nil || got != want {
			t.Fatalf("ParseTransactionType(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseTransactionType("transfer"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Type:        Expense,
		Amount:      Money{Cents: 5000},
		Currency:    "MXN",
		Description: "lunch",
		Date:        NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name  string
		mut   func(*Transaction)
		field string
	}{
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, "amount"},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, "type"},
		{"lowercase currency", func(tx *Transaction) { tx.Currency = "mxn" }, "currency"},
		{"empty description", func(tx *Transaction) { tx.Description = "  " }, "description"},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("x", 501) }, "description"},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, "transaction_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := good
			tt.mut(&tx)
			err := tx.Validate()
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("expected field %q in %v", tt.field, verr.Fields)
			}
		})
	}
}

func TestCategoryVisibility(t *testing.T) {
	owner := "u1"
	system := Category{IsSystem: true}
	own := Category{UserID: &owner}

	if !system.VisibleTo("anyone") || system.OwnedBy("anyone") {
		t.Error("system category must be visible to all and owned by none")
	}
	if !own.VisibleTo("u1") || own.VisibleTo("u2") {
		t.Error("custom category must be visible only to its owner")
	}
}

func TestRecurringValidate(t *testing.T) {
	rt := RecurringTransaction{
		Name:       "Rent",
		Amount:     Money{Cents: 1200000},
		Currency:   "MXN",
		Type:       Expense,
		Frequency:  Monthly,
		DayOfMonth: 31,
		StartDate:  NewDate(2025, 1, 31),
	}
	if err := rt.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	rt.DayOfMonth = 32
	rt.Frequency = "hourly"
	if err := rt.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
