package usecase

import "time"

const (
	// MonthIndexTTL bounds how long a per-month transaction bucket is served
	// without refetching.
	MonthIndexTTL = 5 * time.Minute

	// RunningBalanceDebounce coalesces bursts of writes (e.g. CSV imports)
	// into one running-balance pass per affected account.
	RunningBalanceDebounce = 100 * time.Millisecond

	// MonthlyBalanceDebounce coalesces snapshot recomputation per month.
	MonthlyBalanceDebounce = 200 * time.Millisecond

	// SummaryCacheTTL bounds monthly-summary memoization.
	SummaryCacheTTL = 30 * time.Second

	// MaxPlanningIterations is the safety cap on occurrence expansion.
	MaxPlanningIterations = 1000

	// NeverWindowMonths truncates NEVER-ending recurrences.
	NeverWindowMonths = 24

	// RunningBalanceScale is the rounding applied after every running-balance step.
	RunningBalanceScale = 2
)
