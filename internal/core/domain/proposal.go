package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

// InvestmentType is the instrument used for a deal.
type InvestmentType string

const (
	InvestmentEquity          InvestmentType = "Equity"
	InvestmentConvertibleNote InvestmentType = "ConvertibleNote"
	InvestmentSAFE            InvestmentType = "SAFE"
	InvestmentDebt            InvestmentType = "Debt"
)

func (t InvestmentType) IsValid() bool {
	switch t {
	case InvestmentEquity, InvestmentConvertibleNote, InvestmentSAFE, InvestmentDebt:
		return true
	}
	return false
}

// Stage is the funding stage of the startup.
type Stage string

const (
	StagePreSeed   Stage = "PreSeed"
	StageSeed      Stage = "Seed"
	StageSeriesA   Stage = "SeriesA"
	StageSeriesB   Stage = "SeriesB"
	StageLateStage Stage = "LateStage"
)

func (s Stage) IsValid() bool {
	switch s {
	case StagePreSeed, StageSeed, StageSeriesA, StageSeriesB, StageLateStage:
		return true
	}
	return false
}

// YesNo is used for boolean deal terms (board seat, ROFR).
type YesNo string

const (
	Yes YesNo = "Yes"
	No  YesNo = "No"
)

func (y YesNo) IsValid() bool { return y == Yes || y == No }

// VotingRights granted to the investor.
type VotingRights string

const (
	VotingFull    VotingRights = "Full"
	VotingLimited VotingRights = "Limited"
	VotingNone    VotingRights = "None"
)

func (v VotingRights) IsValid() bool {
	return v == VotingFull || v == VotingLimited || v == VotingNone
}

// Dividends policy for the investor.
type Dividends string

const (
	DividendsYes        Dividends = "Yes"
	DividendsNo         Dividends = "No"
	DividendsOnExitOnly Dividends = "OnExitOnly"
)

func (d Dividends) IsValid() bool {
	return d == DividendsYes || d == DividendsNo || d == DividendsOnExitOnly
}

// ExitStrategy expected by the investor.
type ExitStrategy string

const (
	ExitIPO         ExitStrategy = "IPO"
	ExitAcquisition ExitStrategy = "Acquisition"
	ExitBuyback     ExitStrategy = "Buyback"
	ExitOther       ExitStrategy = "Other"
)

func (e ExitStrategy) IsValid() bool {
	switch e {
	case ExitIPO, ExitAcquisition, ExitBuyback, ExitOther:
		return true
	}
	return false
}

// DealProposal is a snapshot of negotiable terms at one point in time.
// PostMoneyValuation is derived and only ever set through Finalize.
type DealProposal struct {
	InvestmentAmount   decimal.Decimal `json:"investmentAmount"`
	EquityOffered      decimal.Decimal `json:"equityOffered"`
	PreMoneyValuation  decimal.Decimal `json:"preMoneyValuation"`
	PostMoneyValuation decimal.Decimal `json:"postMoneyValuation"`
	InvestmentType     InvestmentType  `json:"investmentType"`
	Stage              Stage           `json:"stage"`
	BoardSeat          YesNo           `json:"boardSeat,omitempty"`
	VotingRights       VotingRights    `json:"votingRights,omitempty"`
	Dividends          Dividends       `json:"dividends,omitempty"`
	ROFR               YesNo           `json:"rofr,omitempty"`
	ExitStrategy       ExitStrategy    `json:"exitStrategy,omitempty"`
	ExitTimeline       string          `json:"exitTimeline,omitempty"`
	AdditionalTerms    string          `json:"additionalTerms,omitempty"`
}

// Finalize returns a copy with the post-money valuation recomputed from its inputs.
func (p DealProposal) Finalize() DealProposal {
	p.PostMoneyValuation = PostMoneyValuation(p.PreMoneyValuation, p.InvestmentAmount)
	return p
}

// Validate checks the proposal rules required before it can be submitted
// as a new deal or as a counter-offer. All violations are reported at once.
func (p DealProposal) Validate() error {
	var problems []string

	if !p.InvestmentAmount.IsPositive() {
		problems = append(problems, "investmentAmount must be greater than 0")
	}
	if p.EquityOffered.IsNegative() || p.EquityOffered.GreaterThan(hundred) {
		problems = append(problems, "equityOffered must be between 0 and 100")
	}
	if p.PreMoneyValuation.IsNegative() {
		problems = append(problems, "preMoneyValuation must not be negative")
	}
	if !p.InvestmentType.IsValid() {
		problems = append(problems, fmt.Sprintf("investmentType %q is not supported", p.InvestmentType))
	}
	if !p.Stage.IsValid() {
		problems = append(problems, fmt.Sprintf("stage %q is not supported", p.Stage))
	}
	if p.BoardSeat != "" && !p.BoardSeat.IsValid() {
		problems = append(problems, fmt.Sprintf("boardSeat %q must be Yes or No", p.BoardSeat))
	}
	if p.VotingRights != "" && !p.VotingRights.IsValid() {
		problems = append(problems, fmt.Sprintf("votingRights %q is not supported", p.VotingRights))
	}
	if p.Dividends != "" && !p.Dividends.IsValid() {
		problems = append(problems, fmt.Sprintf("dividends %q is not supported", p.Dividends))
	}
	if p.ROFR != "" && !p.ROFR.IsValid() {
		problems = append(problems, fmt.Sprintf("rofr %q must be Yes or No", p.ROFR))
	}
	if p.ExitStrategy != "" && !p.ExitStrategy.IsValid() {
		problems = append(problems, fmt.Sprintf("exitStrategy %q is not supported", p.ExitStrategy))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// ProposalEdit is a partial change to a proposal. Nil fields are left untouched.
// There is deliberately no PostMoneyValuation field.
type ProposalEdit struct {
	InvestmentAmount  *decimal.Decimal
	EquityOffered     *decimal.Decimal
	PreMoneyValuation *decimal.Decimal
	InvestmentType    *InvestmentType
	Stage             *Stage
	BoardSeat         *YesNo
	VotingRights      *VotingRights
	Dividends         *Dividends
	ROFR              *YesNo
	ExitStrategy      *ExitStrategy
	ExitTimeline      *string
	AdditionalTerms   *string
}

// ReduceProposal applies edit to state and returns the finalized result.
// It never mutates state.
func ReduceProposal(state DealProposal, edit ProposalEdit) DealProposal {
	next := state
	if edit.InvestmentAmount != nil {
		next.InvestmentAmount = *edit.InvestmentAmount
	}
	if edit.EquityOffered != nil {
		next.EquityOffered = *edit.EquityOffered
	}
	if edit.PreMoneyValuation != nil {
		next.PreMoneyValuation = *edit.PreMoneyValuation
	}
	if edit.InvestmentType != nil {
		next.InvestmentType = *edit.InvestmentType
	}
	if edit.Stage != nil {
		next.Stage = *edit.Stage
	}
	if edit.BoardSeat != nil {
		next.BoardSeat = *edit.BoardSeat
	}
	if edit.VotingRights != nil {
		next.VotingRights = *edit.VotingRights
	}
	if edit.Dividends != nil {
		next.Dividends = *edit.Dividends
	}
	if edit.ROFR != nil {
		next.ROFR = *edit.ROFR
	}
	if edit.ExitStrategy != nil {
		next.ExitStrategy = *edit.ExitStrategy
	}
	if edit.ExitTimeline != nil {
		next.ExitTimeline = *edit.ExitTimeline
	}
	if edit.AdditionalTerms != nil {
		next.AdditionalTerms = *edit.AdditionalTerms
	}
	return next.Finalize()
}
