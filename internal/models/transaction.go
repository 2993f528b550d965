package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the funding_transactions table.
type Transaction struct {
	TransactionID          string          `db:"transaction_id"`
	DealID                 string          `db:"deal_id"`
	InvestorID             string          `db:"investor_id"`
	EntrepreneurID         string          `db:"entrepreneur_id"`
	Amount                 decimal.Decimal `db:"amount"`
	Currency               string          `db:"currency"`
	StripeFee              decimal.Decimal `db:"stripe_fee"`
	PlatformCommission     decimal.Decimal `db:"platform_commission"`
	NetAmount              decimal.Decimal `db:"net_amount"`
	PaymentIntentID        string          `db:"payment_intent_id"`
	Status                 string          `db:"status"`
	IsAdditionalInvestment bool            `db:"is_additional_investment"`
	CreatedAt              time.Time       `db:"created_at"`
	PaidAt                 *time.Time      `db:"paid_at"`
	AdminActionDate        *time.Time      `db:"admin_action_date"`
	ReleasedBy             *string         `db:"released_by"`
}
