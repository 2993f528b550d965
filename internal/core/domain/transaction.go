package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransactionStatus tracks one funding event through capture and release.
type TransactionStatus string

const (
	TransactionPending       TransactionStatus = "pending" // intent created, not yet confirmed
	TransactionPaid          TransactionStatus = "paid"
	TransactionFundsReleased TransactionStatus = "funds_released"
	TransactionFailed        TransactionStatus = "failed" // processor declined the intent
)

func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionPending, TransactionPaid, TransactionFundsReleased, TransactionFailed:
		return true
	}
	return false
}

// IsOpen reports whether the transaction still holds the deal's funding round.
func (s TransactionStatus) IsOpen() bool {
	return s == TransactionPending || s == TransactionPaid
}

// Transaction is one funding event against an accepted deal.
type Transaction struct {
	TransactionID          string            `json:"transactionID"`
	DealID                 string            `json:"dealID"`
	InvestorID             string            `json:"investorID"`
	EntrepreneurID         string            `json:"entrepreneurID"`
	Amount                 decimal.Decimal   `json:"amount"`
	Currency               string            `json:"currency"`
	StripeFee              decimal.Decimal   `json:"stripeFee"`
	PlatformCommission     decimal.Decimal   `json:"platformCommission"`
	NetAmount              decimal.Decimal   `json:"netAmount"`
	PaymentIntentID        string            `json:"paymentIntentID"`
	Status                 TransactionStatus `json:"status"`
	IsAdditionalInvestment bool              `json:"isAdditionalInvestment"`
	CreatedAt              time.Time         `json:"createdAt"`
	PaidAt                 *time.Time        `json:"paidAt,omitempty"`
	AdminActionDate        *time.Time        `json:"adminActionDate,omitempty"`
	ReleasedBy             *string           `json:"releasedBy,omitempty"`
}

// NetAmount is what the entrepreneur receives.
//
// FORMULA: net = amount - processorFee - platformCommission
func NetAmount(amount, processorFee, platformCommission decimal.Decimal) decimal.Decimal {
	return amount.Sub(processorFee).Sub(platformCommission)
}

// FeeSchedule holds the processor fee and platform commission rates, in percent.
type FeeSchedule struct {
	ProcessorPercent  decimal.Decimal
	ProcessorFixed    decimal.Decimal
	CommissionPercent decimal.Decimal
}

// Apply computes the processor fee and platform commission for amount, rounded
// to cents. Charges are capped so the net amount never goes below zero.
func (f FeeSchedule) Apply(amount decimal.Decimal) (processorFee, commission decimal.Decimal) {
	processorFee = amount.Mul(f.ProcessorPercent).Div(hundred).Add(f.ProcessorFixed).Round(2)
	commission = amount.Mul(f.CommissionPercent).Div(hundred).Round(2)

	if processorFee.IsNegative() {
		processorFee = decimal.Zero
	}
	if commission.IsNegative() {
		commission = decimal.Zero
	}
	if processorFee.GreaterThan(amount) {
		processorFee = amount
	}
	if processorFee.Add(commission).GreaterThan(amount) {
		commission = amount.Sub(processorFee)
	}
	return processorFee, commission
}

// FundingRound decides whether a new transaction may be opened on deal given its
// existing transactions. It returns whether the new one is an additional investment.
// Failed transactions neither block a new round nor count as funding.
func FundingRound(deal Deal, existing []Transaction) (bool, error) {
	if deal.Status != DealStatusAccepted {
		return false, fmt.Errorf("%w: deal %s is %s, payments require an accepted deal", apperrors.ErrValidation, deal.DealID, deal.Status)
	}
	additional := false
	for _, t := range existing {
		if t.Status.IsOpen() {
			return false, fmt.Errorf("%w: transaction %s is %s", apperrors.ErrPaymentInProgress, t.TransactionID, t.Status)
		}
		if t.Status == TransactionFundsReleased {
			additional = true
		}
	}
	return additional, nil
}

// ValidatePaymentAmount rejects amounts below the agreed investment.
func ValidatePaymentAmount(deal Deal, amount decimal.Decimal) error {
	if amount.LessThan(deal.Terms.InvestmentAmount) {
		return fmt.Errorf("%w: amount %s is less than the agreed investment %s",
			apperrors.ErrValidation, amount.String(), deal.Terms.InvestmentAmount.String())
	}
	return nil
}

// MarkPaid moves a pending transaction to paid.
func (t Transaction) MarkPaid(now time.Time) (Transaction, error) {
	if t.Status != TransactionPending {
		return Transaction{}, fmt.Errorf("%w: transaction %s is %s, expected %s", apperrors.ErrValidation, t.TransactionID, t.Status, TransactionPending)
	}
	t.Status = TransactionPaid
	t.PaidAt = &now
	return t, nil
}

// MarkFailed closes a pending transaction whose intent the processor declined.
func (t Transaction) MarkFailed() (Transaction, error) {
	if t.Status != TransactionPending {
		return Transaction{}, fmt.Errorf("%w: transaction %s is %s, expected %s", apperrors.ErrValidation, t.TransactionID, t.Status, TransactionPending)
	}
	t.Status = TransactionFailed
	return t, nil
}

// Release moves a paid transaction to funds_released and settles the net amount.
func (t Transaction) Release(adminID string, now time.Time) (Transaction, error) {
	if t.Status != TransactionPaid {
		return Transaction{}, fmt.Errorf("%w: transaction %s is %s, only paid transactions can be released", apperrors.ErrValidation, t.TransactionID, t.Status)
	}
	t.NetAmount = NetAmount(t.Amount, t.StripeFee, t.PlatformCommission)
	if t.NetAmount.IsNegative() || t.NetAmount.GreaterThan(t.Amount) {
		return Transaction{}, fmt.Errorf("%w: net amount %s out of range for amount %s", apperrors.ErrValidation, t.NetAmount, t.Amount)
	}
	t.Status = TransactionFundsReleased
	t.AdminActionDate = &now
	t.ReleasedBy = &adminID
	return t, nil
}
