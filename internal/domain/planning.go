package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurrencePattern is the unit a planning transaction repeats by.
type RecurrencePattern string

const (
	RecurrenceOnce      RecurrencePattern = "ONCE"
	RecurrenceDaily     RecurrencePattern = "DAILY"
	RecurrenceWeekly    RecurrencePattern = "WEEKLY"
	RecurrenceBiweekly  RecurrencePattern = "BIWEEKLY"
	RecurrenceMonthly   RecurrencePattern = "MONTHLY"
	RecurrenceQuarterly RecurrencePattern = "QUARTERLY"
	RecurrenceYearly    RecurrencePattern = "YEARLY"
)

// RecurrenceEnd is the end condition of a planning transaction.
type RecurrenceEnd string

const (
	RecurrenceEndNever RecurrenceEnd = "NEVER"
	RecurrenceEndDate  RecurrenceEnd = "DATE"
	RecurrenceEndCount RecurrenceEnd = "COUNT"
)

// WeekendHandling is applied to each candidate occurrence date.
type WeekendHandling string

const (
	WeekendNone   WeekendHandling = "NONE"
	WeekendBefore WeekendHandling = "BEFORE"
	WeekendAfter  WeekendHandling = "AFTER"
)

// PlanningTransaction is a template for recurring transactions. ONCE plans
// are deleted when they execute; repeating plans are deleted when the last
// recurrence fires.
type PlanningTransaction struct {
	CreatedAt           time.Time
	UpdatedAt           time.Time
	StartDate           time.Time
	EndDate             *time.Time
	ID                  string
	Name                string
	Type                TransactionType
	AccountID           string
	CategoryID          string
	ToCategoryID        string
	TransferToAccountID string
	CounterPlanningID   string
	Recurrence          RecurrencePattern
	EndType             RecurrenceEnd
	WeekendHandling     WeekendHandling
	Amount              decimal.Decimal
	MaxOccurrences      int
	ExecutionDay        int
	Active              bool
}

// AdjustForWeekend shifts a date off Saturday/Sunday to the nearest weekday
// in the configured direction.
func AdjustForWeekend(d time.Time, handling WeekendHandling) time.Time {
	switch handling {
	case WeekendBefore:
		switch d.Weekday() {
		case time.Saturday:
			return d.AddDate(0, 0, -1)
		case time.Sunday:
			return d.AddDate(0, 0, -2)
		}
	case WeekendAfter:
		switch d.Weekday() {
		case time.Saturday:
			return d.AddDate(0, 0, 2)
		case time.Sunday:
			return d.AddDate(0, 0, 1)
		}
	}
	return d
}

// NextOccurrence advances an unadjusted occurrence date by one recurrence
// unit. Month-based patterns clamp the execution day to the last valid day
// of the target month (day 31 in February becomes the 28th/29th).
func (p *PlanningTransaction) NextOccurrence(d time.Time) time.Time {
	switch p.Recurrence {
	case RecurrenceDaily:
		return d.AddDate(0, 0, 1)
	case RecurrenceWeekly:
		return d.AddDate(0, 0, 7)
	case RecurrenceBiweekly:
		return d.AddDate(0, 0, 14)
	case RecurrenceMonthly:
		return p.addMonthsClamped(d, 1)
	case RecurrenceQuarterly:
		return p.addMonthsClamped(d, 3)
	case RecurrenceYearly:
		return p.addMonthsClamped(d, 12)
	}
	return d
}

func (p *PlanningTransaction) addMonthsClamped(d time.Time, months int) time.Time {
	day := p.ExecutionDay
	if day <= 0 {
		day = d.Day()
	}

	// First of the target month, then clamp the day.
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location()).AddDate(0, months, 0)
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}

	return time.Date(first.Year(), first.Month(), day, d.Hour(), d.Minute(), d.Second(), d.Nanosecond(), d.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
