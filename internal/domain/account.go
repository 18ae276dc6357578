package domain

import "time"

// Account holds identity and membership only. Balances are never stored on
// the account; they are always derived from its transactions.
type Account struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	Name      string
	GroupID   string
	SortOrder int
	Active    bool
	Offline   bool
}

// AccountGroup groups accounts for display ordering.
type AccountGroup struct {
	ID        string
	Name      string
	SortOrder int
}
