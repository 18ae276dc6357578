package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Month identifies one calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the Month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Key returns the canonical "YYYY-MM" form.
func (m Month) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Prev returns the previous calendar month.
func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Start returns midnight UTC on the first day.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last instant of the month's final day.
func (m Month) End() time.Time {
	return m.Next().Start().Add(-time.Nanosecond)
}

// Before reports whether m precedes other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// Contains reports whether t falls inside the month.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

// MonthlyBalance is the cached per-month summary of actual and projected
// balances for all accounts and categories. Projected balances follow
//
//	projected(N) = projected(N-1) + (actual(N) - actual(N-1)) + planned(N)
//
// so months must be computed in chronological order.
type MonthlyBalance struct {
	LastCalculated            time.Time
	AccountBalances           map[string]decimal.Decimal
	CategoryBalances          map[string]decimal.Decimal
	ProjectedAccountBalances  map[string]decimal.Decimal
	ProjectedCategoryBalances map[string]decimal.Decimal
	Month                     Month
}

// NewMonthlyBalance returns an empty snapshot with initialized maps.
func NewMonthlyBalance(month Month) *MonthlyBalance {
	return &MonthlyBalance{
		Month:                     month,
		AccountBalances:           make(map[string]decimal.Decimal),
		CategoryBalances:          make(map[string]decimal.Decimal),
		ProjectedAccountBalances:  make(map[string]decimal.Decimal),
		ProjectedCategoryBalances: make(map[string]decimal.Decimal),
	}
}

// Valid reports whether the snapshot can be trusted as a cache hit.
// Corrupt snapshots are treated as misses, never as fatal errors.
func (s *MonthlyBalance) Valid() bool {
	return s != nil &&
		s.AccountBalances != nil &&
		s.CategoryBalances != nil &&
		s.ProjectedAccountBalances != nil &&
		s.ProjectedCategoryBalances != nil
}
