package dto

import (
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePaymentIntentRequest opens a funding transaction on an accepted deal.
type CreatePaymentIntentRequest struct {
	DealID string          `json:"dealID" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required,gt=0" swaggertype:"string" example:"150000"`
}

// PaymentIntentResponse is returned to the client to complete the payment.
type PaymentIntentResponse struct {
	TransactionID          string          `json:"transactionID"`
	PaymentIntentID        string          `json:"paymentIntentID"`
	ClientSecret           string          `json:"clientSecret"`
	Amount                 decimal.Decimal `json:"amount"`
	Currency               string          `json:"currency"`
	StripeFee              decimal.Decimal `json:"stripeFee"`
	PlatformCommission     decimal.Decimal `json:"platformCommission"`
	NetAmount              decimal.Decimal `json:"netAmount"`
	IsAdditionalInvestment bool            `json:"isAdditionalInvestment"`
}

// ConfirmPaymentRequest confirms a pending transaction with the processor.
type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentID" binding:"required"`
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
	Status    string  `form:"status" binding:"omitempty,oneof=pending paid funds_released failed"`
	DealID    string  `form:"dealID"`
}

// TransactionResponse defines the data returned for a funding transaction.
type TransactionResponse struct {
	TransactionID          string                   `json:"transactionID"`
	DealID                 string                   `json:"dealID"`
	InvestorID             string                   `json:"investorID"`
	EntrepreneurID         string                   `json:"entrepreneurID"`
	Amount                 decimal.Decimal          `json:"amount"`
	Currency               string                   `json:"currency"`
	StripeFee              decimal.Decimal          `json:"stripeFee"`
	PlatformCommission     decimal.Decimal          `json:"platformCommission"`
	NetAmount              decimal.Decimal          `json:"netAmount"`
	PaymentIntentID        string                   `json:"paymentIntentID"`
	Status                 domain.TransactionStatus `json:"status"`
	IsAdditionalInvestment bool                     `json:"isAdditionalInvestment"`
	CreatedAt              time.Time                `json:"createdAt"`
	PaidAt                 *time.Time               `json:"paidAt,omitempty"`
	AdminActionDate        *time.Time               `json:"adminActionDate,omitempty"`
	ReleasedBy             *string                  `json:"releasedBy,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to its DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:          t.TransactionID,
		DealID:                 t.DealID,
		InvestorID:             t.InvestorID,
		EntrepreneurID:         t.EntrepreneurID,
		Amount:                 t.Amount,
		Currency:               t.Currency,
		StripeFee:              t.StripeFee,
		PlatformCommission:     t.PlatformCommission,
		NetAmount:              t.NetAmount,
		PaymentIntentID:        t.PaymentIntentID,
		Status:                 t.Status,
		IsAdditionalInvestment: t.IsAdditionalInvestment,
		CreatedAt:              t.CreatedAt,
		PaidAt:                 t.PaidAt,
		AdminActionDate:        t.AdminActionDate,
		ReleasedBy:             t.ReleasedBy,
	}
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToListTransactionsResponse converts a page of transactions.
func ToListTransactionsResponse(txns []domain.Transaction, nextToken *string) ListTransactionsResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return ListTransactionsResponse{Transactions: res, NextToken: nextToken}
}
