package mapping

import (
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:          d.TransactionID,
		DealID:                 d.DealID,
		InvestorID:             d.InvestorID,
		EntrepreneurID:         d.EntrepreneurID,
		Amount:                 d.Amount,
		Currency:               d.Currency,
		StripeFee:              d.StripeFee,
		PlatformCommission:     d.PlatformCommission,
		NetAmount:              d.NetAmount,
		PaymentIntentID:        d.PaymentIntentID,
		Status:                 string(d.Status),
		IsAdditionalInvestment: d.IsAdditionalInvestment,
		CreatedAt:              d.CreatedAt,
		PaidAt:                 d.PaidAt,
		AdminActionDate:        d.AdminActionDate,
		ReleasedBy:             d.ReleasedBy,
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:          m.TransactionID,
		DealID:                 m.DealID,
		InvestorID:             m.InvestorID,
		EntrepreneurID:         m.EntrepreneurID,
		Amount:                 m.Amount,
		Currency:               m.Currency,
		StripeFee:              m.StripeFee,
		PlatformCommission:     m.PlatformCommission,
		NetAmount:              m.NetAmount,
		PaymentIntentID:        m.PaymentIntentID,
		Status:                 domain.TransactionStatus(m.Status),
		IsAdditionalInvestment: m.IsAdditionalInvestment,
		CreatedAt:              m.CreatedAt,
		PaidAt:                 m.PaidAt,
		AdminActionDate:        m.AdminActionDate,
		ReleasedBy:             m.ReleasedBy,
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to a slice of domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
