package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies how a transaction affects balances.
type TransactionType string

const (
	TransactionTypeIncome           TransactionType = "INCOME"
	TransactionTypeExpense          TransactionType = "EXPENSE"
	TransactionTypeAccountTransfer  TransactionType = "ACCOUNTTRANSFER"
	TransactionTypeCategoryTransfer TransactionType = "CATEGORYTRANSFER"
	TransactionTypeReconcile        TransactionType = "RECONCILE"
)

// Transaction is a single booking. Account balances key off Date,
// category balances key off ValueDate; the two may differ.
type Transaction struct {
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Date                 time.Time
	ValueDate            time.Time
	ID                   string
	Type                 TransactionType
	AccountID            string
	CategoryID           string
	ToCategoryID         string
	TransferToAccountID  string
	CounterTransactionID string
	Note                 string
	Amount               decimal.Decimal
	RunningBalance       decimal.Decimal
	Reconciled           bool
}

// IsTransfer reports whether the transaction is one leg of a linked pair.
func (t *Transaction) IsTransfer() bool {
	return t.Type == TransactionTypeAccountTransfer || t.Type == TransactionTypeCategoryTransfer
}

// AffectsAccount reports whether the transaction contributes to account balances.
func (t *Transaction) AffectsAccount() bool {
	return t.AccountID != "" && t.Type != TransactionTypeCategoryTransfer
}

// AffectsCategory reports whether the transaction contributes to category balances.
func (t *Transaction) AffectsCategory() bool {
	return t.CategoryID != ""
}

// Validate checks type-specific required fields.
func (t *Transaction) Validate() error {
	if t.Amount.IsZero() && t.Type != TransactionTypeReconcile {
		return ErrInvalidAmount
	}

	switch t.Type {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeReconcile:
		if t.AccountID == "" {
			return ErrMissingAccount
		}
	case TransactionTypeAccountTransfer:
		if t.AccountID == "" || t.TransferToAccountID == "" {
			return ErrMissingAccount
		}
		if t.AccountID == t.TransferToAccountID {
			return ErrSameAccount
		}
	case TransactionTypeCategoryTransfer:
		if t.CategoryID == "" || t.ToCategoryID == "" {
			return ErrMissingCategory
		}
		if t.CategoryID == t.ToCategoryID {
			return ErrSameCategory
		}
	default:
		return ErrInvalidTransactionType
	}

	return nil
}

// ValidateTransferPair checks the two legs of a transfer: mutual counter
// links, opposite amounts, and swapped endpoints.
func ValidateTransferPair(a, b *Transaction) error {
	if a == nil || b == nil {
		return ErrMalformedTransferPair
	}

	if a.Type != b.Type || !a.IsTransfer() {
		return ErrMalformedTransferPair
	}

	if a.CounterTransactionID != b.ID || b.CounterTransactionID != a.ID {
		return ErrMalformedTransferPair
	}

	if !a.Amount.Equal(b.Amount.Neg()) {
		return ErrMalformedTransferPair
	}

	switch a.Type {
	case TransactionTypeCategoryTransfer:
		if a.CategoryID != b.ToCategoryID || a.ToCategoryID != b.CategoryID {
			return ErrMalformedTransferPair
		}
	case TransactionTypeAccountTransfer:
		if a.AccountID != b.TransferToAccountID || a.TransferToAccountID != b.AccountID {
			return ErrMalformedTransferPair
		}
	}

	return nil
}
