package entity

import (
	"fmt"

	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	"github.com/shopspring/decimal"
)

// FeePolicy holds the deployment-specific fee and threshold values
type FeePolicy struct {
	ModerationFee     Money
	MinimumWithdrawal Money
	WithdrawalFeeRate decimal.Decimal
}

// FeeQuote is the display-only fee breakdown of a withdrawal amount
type FeeQuote struct {
	Amount Money
	Fee    Money
	Net    Money
}

// DefaultFeePolicy returns the standard platform values:
// 5000 moderation fee, 1000 minimum withdrawal, 2.5% withdrawal fee
func DefaultFeePolicy() FeePolicy {
	return FeePolicy{
		ModerationFee:     MajorUnits(5000),
		MinimumWithdrawal: MajorUnits(1000),
		WithdrawalFeeRate: decimal.RequireFromString("0.025"),
	}
}

// NewFeePolicy builds a policy from configuration strings
func NewFeePolicy(moderationFee, minimumWithdrawal, withdrawalFeeRate string) (FeePolicy, error) {
	fee, err := ParseMoney(moderationFee)
	if err != nil {
		return FeePolicy{}, fmt.Errorf("moderation fee: %w", err)
	}
	if fee < 0 {
		return FeePolicy{}, errs.NewValidationError("moderationFee", "must not be negative")
	}

	minimum, err := ParseMoney(minimumWithdrawal)
	if err != nil {
		return FeePolicy{}, fmt.Errorf("minimum withdrawal: %w", err)
	}
	if minimum <= 0 {
		return FeePolicy{}, errs.NewValidationError("minimumWithdrawal", "must be positive")
	}

	rate, err := decimal.NewFromString(withdrawalFeeRate)
	if err != nil {
		return FeePolicy{}, errs.NewValidationError("withdrawalFeeRate", "invalid number format")
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return FeePolicy{}, errs.NewValidationError("withdrawalFeeRate", "must be in [0, 1)")
	}

	return FeePolicy{
		ModerationFee:     fee,
		MinimumWithdrawal: minimum,
		WithdrawalFeeRate: rate,
	}, nil
}

// QuoteWithdrawal computes fee = round(amount * rate, 2) and net = amount - fee.
// The values are never stored; callers recompute them from the amount.
func (p FeePolicy) QuoteWithdrawal(amount Money) FeeQuote {
	fee := MoneyFromDecimal(amount.Decimal().Mul(p.WithdrawalFeeRate))
	return FeeQuote{
		Amount: amount,
		Fee:    fee,
		Net:    amount - fee,
	}
}
