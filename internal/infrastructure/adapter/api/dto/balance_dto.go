package dto

import "github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"

// BalanceResponse represents the API response for a user's balance
type BalanceResponse struct {
	UserID           uint64 `json:"userId"`
	Balance          string `json:"balance"`
	AvailableBalance string `json:"availableBalance"`
	Reserved         string `json:"reserved"`
	Currency         string `json:"currency"`
}

// StatsResponse represents the API response for a user's balance statistics
type StatsResponse struct {
	UserID               uint64 `json:"userId"`
	TotalRevenue         string `json:"totalRevenue"`
	TotalFees            string `json:"totalFees"`
	TotalWithdrawn       string `json:"totalWithdrawn"`
	PendingWithdrawals   int    `json:"pendingWithdrawals"`
	CompletedWithdrawals int    `json:"completedWithdrawals"`
	AverageOrderValue    string `json:"averageOrderValue"`
	MonthOverMonthGrowth string `json:"monthOverMonthGrowth"`
	Currency             string `json:"currency"`
}

// NewBalanceResponse converts a balance summary
func NewBalanceResponse(s *entity.BalanceSummary, currency string) BalanceResponse {
	return BalanceResponse{
		UserID:           s.UserID,
		Balance:          s.Current.String(),
		AvailableBalance: s.Available.String(),
		Reserved:         s.Reserved.String(),
		Currency:         currency,
	}
}

// NewStatsResponse converts balance statistics
func NewStatsResponse(s *entity.BalanceStats, currency string) StatsResponse {
	return StatsResponse{
		UserID:               s.UserID,
		TotalRevenue:         s.TotalRevenue.String(),
		TotalFees:            s.TotalFees.String(),
		TotalWithdrawn:       s.TotalWithdrawn.String(),
		PendingWithdrawals:   s.PendingWithdrawals,
		CompletedWithdrawals: s.CompletedWithdrawals,
		AverageOrderValue:    s.AverageOrderValue.String(),
		MonthOverMonthGrowth: s.MonthOverMonthGrowth.StringFixed(2),
		Currency:             currency,
	}
}
