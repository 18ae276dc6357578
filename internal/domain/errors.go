package domain

import "errors"

var (
	// Not-found conditions. Balance reads degrade these to zero results;
	// writes surface them to the caller.
	ErrAccountNotFound     = errors.New("account not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrPlanningNotFound    = errors.New("planning transaction not found")
	ErrSnapshotNotFound    = errors.New("monthly snapshot not found")

	// Invariant violations. Budgeting cannot proceed past these.
	ErrAvailableFundsMissing = errors.New("available funds category is missing")
	ErrMalformedTransferPair = errors.New("transfer legs are not a valid pair")

	// Input errors
	ErrInvalidAmount          = errors.New("amount must be non-zero")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrSameAccount            = errors.New("cannot transfer to same account")
	ErrSameCategory           = errors.New("cannot transfer to same category")
	ErrMissingAccount         = errors.New("transaction requires an account")
	ErrMissingCategory        = errors.New("transfer requires source and target categories")
)
