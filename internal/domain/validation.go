package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidName      = errors.New("invalid name")
	ErrAmountTooLarge   = errors.New("amount exceeds maximum allowed")
	ErrInvalidMonth     = errors.New("invalid year/month")
	ErrInvalidDateRange = errors.New("start date must not be after end date")
)

// Validation constants
const (
	MaxNameLength        = 255
	MinNameLength        = 1
	MaxTransactionAmount = "1000000000" // 1 billion, absolute
)

// ValidateName validates account/category/planning names.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, MaxNameLength)
	}

	return nil
}

// ValidateAmount validates a signed transaction amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsZero() {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxTransactionAmount)
	if amount.Abs().GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxTransactionAmount)
	}

	return nil
}

// ValidateMonth validates a year/month pair.
func ValidateMonth(year int, month time.Month) error {
	if year < 1970 || year > 9999 {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidMonth, year)
	}

	if month < time.January || month > time.December {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidMonth, int(month))
	}

	return nil
}

// ValidateDateRange validates an inclusive [start, end] window.
func ValidateDateRange(start, end time.Time) error {
	if start.After(end) {
		return ErrInvalidDateRange
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
