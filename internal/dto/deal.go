package dto

import (
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DealTermsRequest carries a complete set of deal terms.
// postMoneyValuation is not accepted; it is always derived on the server.
type DealTermsRequest struct {
	InvestmentAmount  decimal.Decimal       `json:"investmentAmount" binding:"required,gt=0" swaggertype:"string" example:"100000"`
	EquityOffered     decimal.Decimal       `json:"equityOffered" binding:"gte=0,lte=100" swaggertype:"string" example:"10"`
	PreMoneyValuation decimal.Decimal       `json:"preMoneyValuation" binding:"gte=0" swaggertype:"string" example:"900000"`
	InvestmentType    domain.InvestmentType `json:"investmentType" binding:"required,oneof=Equity ConvertibleNote SAFE Debt"`
	Stage             domain.Stage          `json:"stage" binding:"required,oneof=PreSeed Seed SeriesA SeriesB LateStage"`
	BoardSeat         domain.YesNo          `json:"boardSeat" binding:"omitempty,oneof=Yes No"`
	VotingRights      domain.VotingRights   `json:"votingRights" binding:"omitempty,oneof=Full Limited None"`
	Dividends         domain.Dividends      `json:"dividends" binding:"omitempty,oneof=Yes No OnExitOnly"`
	ROFR              domain.YesNo          `json:"rofr" binding:"omitempty,oneof=Yes No"`
	ExitStrategy      domain.ExitStrategy   `json:"exitStrategy" binding:"omitempty,oneof=IPO Acquisition Buyback Other"`
	ExitTimeline      string                `json:"exitTimeline" binding:"max=100"`
	AdditionalTerms   string                `json:"additionalTerms" binding:"max=5000"`
}

// ToDomain converts the request into a finalized proposal.
func (r DealTermsRequest) ToDomain() domain.DealProposal {
	return domain.DealProposal{
		InvestmentAmount:  r.InvestmentAmount,
		EquityOffered:     r.EquityOffered,
		PreMoneyValuation: r.PreMoneyValuation,
		InvestmentType:    r.InvestmentType,
		Stage:             r.Stage,
		BoardSeat:         r.BoardSeat,
		VotingRights:      r.VotingRights,
		Dividends:         r.Dividends,
		ROFR:              r.ROFR,
		ExitStrategy:      r.ExitStrategy,
		ExitTimeline:      r.ExitTimeline,
		AdditionalTerms:   r.AdditionalTerms,
	}.Finalize()
}

// CreateDealRequest is sent by an investor to open a deal with an entrepreneur.
type CreateDealRequest struct {
	EntrepreneurID string `json:"entrepreneurID" binding:"required"`
	DealTermsRequest
}

// NegotiateDealRequest is a counter-offer. Omitted term fields keep the value
// of the latest proposal. Version must match the deal's current version.
type NegotiateDealRequest struct {
	Version           int64                  `json:"version" binding:"required,gt=0"`
	Note              string                 `json:"note" binding:"max=2000"`
	InvestmentAmount  *decimal.Decimal       `json:"investmentAmount" binding:"omitempty,gt=0" swaggertype:"string"`
	EquityOffered     *decimal.Decimal       `json:"equityOffered" binding:"omitempty,gte=0,lte=100" swaggertype:"string"`
	PreMoneyValuation *decimal.Decimal       `json:"preMoneyValuation" binding:"omitempty,gte=0" swaggertype:"string"`
	InvestmentType    *domain.InvestmentType `json:"investmentType" binding:"omitempty,oneof=Equity ConvertibleNote SAFE Debt"`
	Stage             *domain.Stage          `json:"stage" binding:"omitempty,oneof=PreSeed Seed SeriesA SeriesB LateStage"`
	BoardSeat         *domain.YesNo          `json:"boardSeat" binding:"omitempty,oneof=Yes No"`
	VotingRights      *domain.VotingRights   `json:"votingRights" binding:"omitempty,oneof=Full Limited None"`
	Dividends         *domain.Dividends      `json:"dividends" binding:"omitempty,oneof=Yes No OnExitOnly"`
	ROFR              *domain.YesNo          `json:"rofr" binding:"omitempty,oneof=Yes No"`
	ExitStrategy      *domain.ExitStrategy   `json:"exitStrategy" binding:"omitempty,oneof=IPO Acquisition Buyback Other"`
	ExitTimeline      *string                `json:"exitTimeline" binding:"omitempty,max=100"`
	AdditionalTerms   *string                `json:"additionalTerms" binding:"omitempty,max=5000"`
}

// ToEdit converts the request into a partial proposal edit.
func (r NegotiateDealRequest) ToEdit() domain.ProposalEdit {
	return domain.ProposalEdit{
		InvestmentAmount:  r.InvestmentAmount,
		EquityOffered:     r.EquityOffered,
		PreMoneyValuation: r.PreMoneyValuation,
		InvestmentType:    r.InvestmentType,
		Stage:             r.Stage,
		BoardSeat:         r.BoardSeat,
		VotingRights:      r.VotingRights,
		Dividends:         r.Dividends,
		ROFR:              r.ROFR,
		ExitStrategy:      r.ExitStrategy,
		ExitTimeline:      r.ExitTimeline,
		AdditionalTerms:   r.AdditionalTerms,
	}
}

// DealDecisionRequest accepts or rejects a deal at a known version.
type DealDecisionRequest struct {
	Version int64  `json:"version" binding:"required,gt=0"`
	Note    string `json:"note" binding:"max=2000"`
}

// ListDealsParams defines query parameters for listing deals.
type ListDealsParams struct {
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
	Status    string  `form:"status" binding:"omitempty,oneof=Pending Negotiating Accepted Rejected"`
}

// DealResponse defines the data returned for a deal.
type DealResponse struct {
	DealID             string                    `json:"dealID"`
	InvestorID         string                    `json:"investorID"`
	EntrepreneurID     string                    `json:"entrepreneurID"`
	Terms              domain.DealProposal       `json:"terms"`
	BaseTerms          domain.DealProposal       `json:"baseTerms"`
	Status             domain.DealStatus         `json:"status"`
	LastActionBy       domain.PartyRole          `json:"lastActionBy,omitempty"`
	NegotiationHistory []domain.NegotiationEntry `json:"negotiationHistory"`
	PaymentStatus      domain.PaymentStatus      `json:"paymentStatus"`
	Version            int64                     `json:"version"`
	CreatedAt          time.Time                 `json:"createdAt"`
	UpdatedAt          time.Time                 `json:"updatedAt"`
	ClosedAt           *time.Time                `json:"closedAt,omitempty"`
}

// ToDealResponse converts a domain.Deal to a DealResponse DTO
func ToDealResponse(d *domain.Deal) DealResponse {
	history := d.NegotiationHistory
	if history == nil {
		history = []domain.NegotiationEntry{}
	}
	return DealResponse{
		DealID:             d.DealID,
		InvestorID:         d.InvestorID,
		EntrepreneurID:     d.EntrepreneurID,
		Terms:              d.Terms,
		BaseTerms:          d.BaseTerms,
		Status:             d.Status,
		LastActionBy:       d.LastActionBy,
		NegotiationHistory: history,
		PaymentStatus:      d.PaymentStatus,
		Version:            d.Version,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
		ClosedAt:           d.ClosedAt,
	}
}

// ListDealsResponse wraps a page of deals.
type ListDealsResponse struct {
	Deals     []DealResponse `json:"deals"`
	NextToken *string        `json:"nextToken,omitempty"`
}

// ToListDealsResponse converts a page of deals.
func ToListDealsResponse(deals []domain.Deal, nextToken *string) ListDealsResponse {
	res := make([]DealResponse, len(deals))
	for i := range deals {
		res[i] = ToDealResponse(&deals[i])
	}
	return ListDealsResponse{Deals: res, NextToken: nextToken}
}
