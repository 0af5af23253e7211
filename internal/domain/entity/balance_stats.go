package entity

import "github.com/shopspring/decimal"

// BalanceSummary pairs the balances read from one snapshot
type BalanceSummary struct {
	UserID    uint64
	Current   Money
	Available Money
	Reserved  Money // Outstanding withdrawal amounts
}

// BalanceStats aggregates a user's ledger and withdrawal history
type BalanceStats struct {
	UserID               uint64
	TotalRevenue         Money
	TotalFees            Money
	TotalWithdrawn       Money
	PendingWithdrawals   int
	CompletedWithdrawals int
	AverageOrderValue    Money
	MonthOverMonthGrowth decimal.Decimal // Percent, two decimals
}

// GrowthPercent is the percent change from previous to current, rounded to two decimals.
// A zero previous value yields 100 when current is positive and 0 otherwise.
func GrowthPercent(current, previous Money) decimal.Decimal {
	if previous == 0 {
		if current > 0 {
			return decimal.NewFromInt(100)
		}
		return decimal.Zero
	}
	diff := current.Decimal().Sub(previous.Decimal())
	return diff.Div(previous.Decimal().Abs()).Mul(decimal.NewFromInt(100)).Round(2)
}
