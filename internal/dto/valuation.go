package dto

import (
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostMoneyParams are the query parameters of the post-money calculator.
type PostMoneyParams struct {
	PreMoney string `form:"preMoney" binding:"required,numeric"`
	Amount   string `form:"amount" binding:"required,numeric"`
}

// PostMoneyResponse is the calculator result.
type PostMoneyResponse struct {
	PreMoneyValuation  decimal.Decimal `json:"preMoneyValuation"`
	InvestmentAmount   decimal.Decimal `json:"investmentAmount"`
	PostMoneyValuation decimal.Decimal `json:"postMoneyValuation"`
}

// ValuationResponse labels an estimate with the method that produced it.
// Placeholder is set for estimates that are informational only.
type ValuationResponse struct {
	Value       decimal.Decimal `json:"value"`
	Method      string          `json:"method"`
	Placeholder bool            `json:"placeholder"`
}

// ToHeuristicValuationResponse wraps a profile heuristic estimate.
func ToHeuristicValuationResponse(value decimal.Decimal) ValuationResponse {
	return ValuationResponse{
		Value:       value,
		Method:      domain.HeuristicValuationMethod,
		Placeholder: true,
	}
}
