package services

import (
	"fmt"
	"time"

	"centavo/internal/core"
)

// DuenessChecker decides whether a recurring template should post on a
// given day. Implementations exist per frequency.
type DuenessChecker interface {
	// IsDue reports whether rt should produce a transaction on today.
	// lastPosted is zero when the template never posted.
	IsDue(rt core.RecurringTransaction, lastPosted, today core.Date) bool
}

// DailyChecker posts once per calendar day.
type DailyChecker struct{}

func (DailyChecker) IsDue(_ core.RecurringTransaction, lastPosted, today core.Date) bool {
	return lastPosted.IsZero() || lastPosted.Before(today.Time)
}

// WeeklyChecker posts when seven or more days passed since the last post.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(_ core.RecurringTransaction, lastPosted, today core.Date) bool {
	if lastPosted.IsZero() {
		return true
	}
	return today.Sub(lastPosted.Time).Hours()/24 >= 7
}

// MonthlyChecker posts once per month, on or after day_of_month. Days past
// the end of a short month fall on its last day.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(rt core.RecurringTransaction, lastPosted, today core.Date) bool {
	if !lastPosted.IsZero() && lastPosted.Year() == today.Year() && lastPosted.Month() == today.Month() {
		return false
	}
	return today.Day() >= clampDay(today.Year(), today.Month(), rt.DayOfMonth)
}

// YearlyChecker posts once per year, in the start date's month on or after
// day_of_month.
type YearlyChecker struct{}

func (YearlyChecker) IsDue(rt core.RecurringTransaction, lastPosted, today core.Date) bool {
	if !lastPosted.IsZero() && lastPosted.Year() == today.Year() {
		return false
	}

	targetMonth := rt.StartDate.Month()
	switch {
	case today.Month() < targetMonth:
		return false
	case today.Month() > targetMonth:
		return true
	}
	return today.Day() >= clampDay(today.Year(), today.Month(), rt.DayOfMonth)
}

func clampDay(year, month, day int) int {
	if last := core.DaysIn(year, time.Month(month)); day > last {
		return last
	}
	return day
}

var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Daily:   DailyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
	core.Yearly:  YearlyChecker{},
}

// GetDuenessChecker returns the checker for frequency.
func GetDuenessChecker(frequency core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidFrequency, frequency)
	}
	return checker, nil
}

// IsDue applies the template's frequency and start date to today.
func IsDue(rt core.RecurringTransaction, today core.Date) (bool, error) {
	if !rt.IsActive || today.Before(rt.StartDate.Time) {
		return false, nil
	}
	checker, err := GetDuenessChecker(rt.Frequency)
	if err != nil {
		return false, err
	}
	var last core.Date
	if rt.LastPostedOn != nil {
		last = *rt.LastPostedOn
	}
	return checker.IsDue(rt, last, today), nil
}
