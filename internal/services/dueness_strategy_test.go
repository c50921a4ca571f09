package services

import (
	"testing"

	"centavo/internal/core"
)

func template(freq core.Frequency, day int, start core.Date) core.RecurringTransaction {
	return core.RecurringTransaction{Frequency: freq, DayOfMonth: day, StartDate: start, IsActive: true}
}

func TestDailyChecker_IsDue(t *testing.T) {
	checker := DailyChecker{}
	today := core.NewDate(2024, 1, 15)
	rt := template(core.Daily, 1, core.NewDate(2024, 1, 1))

	tests := []struct {
		name string
		last core.Date
		want bool
	}{
		{"never posted - is due", core.Date{}, true},
		{"posted today - not due", today, false},
		{"posted yesterday - is due", core.NewDate(2024, 1, 14), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsDue(rt, tt.last, today); got != tt.want {
				t.Errorf("DailyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeeklyChecker_IsDue(t *testing.T) {
	checker := WeeklyChecker{}
	today := core.NewDate(2024, 1, 15)
	rt := template(core.Weekly, 1, core.NewDate(2024, 1, 1))

	tests := []struct {
		name string
		last core.Date
		want bool
	}{
		{"never posted - is due", core.Date{}, true},
		{"posted 6 days ago - not due", core.NewDate(2024, 1, 9), false},
		{"posted 7 days ago - is due", core.NewDate(2024, 1, 8), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsDue(rt, tt.last, today); got != tt.want {
				t.Errorf("WeeklyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthlyChecker_IsDue(t *testing.T) {
	checker := MonthlyChecker{}

	tests := []struct {
		name  string
		day   int
		last  core.Date
		today core.Date
		want  bool
	}{
		{"never posted, before target day", 15, core.Date{}, core.NewDate(2024, 1, 10), false},
		{"never posted, on target day", 15, core.Date{}, core.NewDate(2024, 1, 15), true},
		{"posted this month", 15, core.NewDate(2024, 1, 15), core.NewDate(2024, 1, 20), false},
		{"new month, before target", 15, core.NewDate(2024, 1, 15), core.NewDate(2024, 2, 14), false},
		{"new month, after target", 15, core.NewDate(2024, 1, 15), core.NewDate(2024, 2, 16), true},
		{"day 31 clamps to february end", 31, core.NewDate(2024, 1, 31), core.NewDate(2024, 2, 29), true},
		{"day 31 in april on the 30th", 31, core.NewDate(2024, 3, 31), core.NewDate(2024, 4, 30), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := template(core.Monthly, tt.day, core.NewDate(2023, 1, 1))
			if got := checker.IsDue(rt, tt.last, tt.today); got != tt.want {
				t.Errorf("MonthlyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestYearlyChecker_IsDue(t *testing.T) {
	checker := YearlyChecker{}
	rt := template(core.Yearly, 10, core.NewDate(2022, 3, 10))

	tests := []struct {
		name  string
		last  core.Date
		today core.Date
		want  bool
	}{
		{"posted this year", core.NewDate(2024, 3, 10), core.NewDate(2024, 6, 1), false},
		{"before target month", core.NewDate(2023, 3, 10), core.NewDate(2024, 2, 20), false},
		{"target month before day", core.NewDate(2023, 3, 10), core.NewDate(2024, 3, 9), false},
		{"target month on day", core.NewDate(2023, 3, 10), core.NewDate(2024, 3, 10), true},
		{"past target month", core.NewDate(2023, 3, 10), core.NewDate(2024, 5, 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsDue(rt, tt.last, tt.today); got != tt.want {
				t.Errorf("YearlyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDueGates(t *testing.T) {
	rt := template(core.Daily, 1, core.NewDate(2024, 6, 1))

	if due, _ := IsDue(rt, core.NewDate(2024, 5, 31)); due {
		t.Error("template must not post before its start date")
	}
	rt.IsActive = false
	if due, _ := IsDue(rt, core.NewDate(2024, 6, 2)); due {
		t.Error("inactive template must not post")
	}
	rt.IsActive = true
	rt.Frequency = "hourly"
	if _, err := IsDue(rt, core.NewDate(2024, 6, 2)); err == nil {
		t.Error("unknown frequency should fail")
	}
}
