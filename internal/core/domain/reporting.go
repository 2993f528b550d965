package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyAmount is one point of a monthly funding series.
type MonthlyAmount struct {
	Month  time.Time       `json:"month"` // first day of the month, UTC
	Amount decimal.Decimal `json:"amount"`
}

// PlatformStats feeds the admin dashboard.
type PlatformStats struct {
	DealsByStatus        map[DealStatus]int `json:"dealsByStatus"`
	UsersByRole          map[UserRole]int   `json:"usersByRole"`
	TotalPaid            decimal.Decimal    `json:"totalPaid"`            // paid, not yet released
	TotalReleased        decimal.Decimal    `json:"totalReleased"`        // gross amount released
	CommissionEarned     decimal.Decimal    `json:"commissionEarned"`     // on released transactions
	PendingTransactions  int                `json:"pendingTransactions"`  // intents never confirmed
	MonthlyFundedAmounts []MonthlyAmount    `json:"monthlyFundedAmounts"` // paid or released, by month
}
