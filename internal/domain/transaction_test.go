package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		tx      Transaction
		wantErr error
	}{
		{
			name: "valid expense",
			tx: Transaction{
				Type:      TransactionTypeExpense,
				AccountID: "acc-1",
				Amount:    decimal.NewFromInt(-50),
			},
		},
		{
			name: "expense without account",
			tx: Transaction{
				Type:   TransactionTypeExpense,
				Amount: decimal.NewFromInt(-50),
			},
			wantErr: ErrMissingAccount,
		},
		{
			name: "zero amount",
			tx: Transaction{
				Type:      TransactionTypeIncome,
				AccountID: "acc-1",
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "reconcile may be zero",
			tx: Transaction{
				Type:      TransactionTypeReconcile,
				AccountID: "acc-1",
			},
		},
		{
			name: "account transfer to itself",
			tx: Transaction{
				Type:                TransactionTypeAccountTransfer,
				AccountID:           "acc-1",
				TransferToAccountID: "acc-1",
				Amount:              decimal.NewFromInt(10),
			},
			wantErr: ErrSameAccount,
		},
		{
			name: "category transfer without target",
			tx: Transaction{
				Type:       TransactionTypeCategoryTransfer,
				CategoryID: "cat-1",
				Amount:     decimal.NewFromInt(10),
			},
			wantErr: ErrMissingCategory,
		},
		{
			name: "unknown type",
			tx: Transaction{
				Type:      "SOMETHING",
				AccountID: "acc-1",
				Amount:    decimal.NewFromInt(1),
			},
			wantErr: ErrInvalidTransactionType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTransferPair(t *testing.T) {
	leg := func(id, counter, from, to string, amount int64) *Transaction {
		return &Transaction{
			ID:                   id,
			Type:                 TransactionTypeCategoryTransfer,
			CategoryID:           from,
			ToCategoryID:         to,
			CounterTransactionID: counter,
			Amount:               decimal.NewFromInt(amount),
		}
	}

	a := leg("t1", "t2", "cat-src", "cat-dst", -100)
	b := leg("t2", "t1", "cat-dst", "cat-src", 100)

	if err := ValidateTransferPair(a, b); err != nil {
		t.Fatalf("expected valid pair, got %v", err)
	}

	// Same sign on both legs
	bad := leg("t2", "t1", "cat-dst", "cat-src", -100)
	if err := ValidateTransferPair(a, bad); err != ErrMalformedTransferPair {
		t.Errorf("expected ErrMalformedTransferPair for same-sign legs, got %v", err)
	}

	// Endpoints not swapped
	bad = leg("t2", "t1", "cat-src", "cat-dst", 100)
	if err := ValidateTransferPair(a, bad); err != ErrMalformedTransferPair {
		t.Errorf("expected ErrMalformedTransferPair for unswapped endpoints, got %v", err)
	}

	// Broken counter link
	bad = leg("t2", "t3", "cat-dst", "cat-src", 100)
	if err := ValidateTransferPair(a, bad); err != ErrMalformedTransferPair {
		t.Errorf("expected ErrMalformedTransferPair for broken link, got %v", err)
	}

	if err := ValidateTransferPair(a, nil); err != ErrMalformedTransferPair {
		t.Errorf("expected ErrMalformedTransferPair for nil leg, got %v", err)
	}
}
