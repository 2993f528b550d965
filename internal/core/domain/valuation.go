package domain

import "github.com/shopspring/decimal"

// heuristicRevenueMultiple is the base revenue multiple of the profile valuation heuristic.
const heuristicRevenueMultiple = 5

// HeuristicValuationMethod labels estimates produced by HeuristicValuation.
const HeuristicValuationMethod = "revenue_multiple_5x"

var hundred = decimal.NewFromInt(100)

// PostMoneyValuation returns the company value immediately after an investment.
//
// FORMULA: postMoney = preMoney + investmentAmount
func PostMoneyValuation(preMoney, investmentAmount decimal.Decimal) decimal.Decimal {
	return preMoney.Add(investmentAmount)
}

// HeuristicValuation is the informational startup valuation shown on entrepreneur profiles.
// It is a rough revenue multiple, not a financial model, and is never stored on a deal.
//
// FORMULA: valuation = revenue * base
//
//	base = 5 * (1 + growthRate/100 + profitMargin/100)  when growthRate and profitMargin are both set
//	base = 1                                             otherwise
//
// A missing revenue counts as 0.
func HeuristicValuation(revenue, growthRate, profitMargin *decimal.Decimal) decimal.Decimal {
	rev := decimal.Zero
	if revenue != nil {
		rev = *revenue
	}

	base := decimal.NewFromInt(1)
	if growthRate != nil && profitMargin != nil {
		base = decimal.NewFromInt(heuristicRevenueMultiple).Mul(
			decimal.NewFromInt(1).
				Add(growthRate.Div(hundred)).
				Add(profitMargin.Div(hundred)),
		)
	}

	return rev.Mul(base)
}
