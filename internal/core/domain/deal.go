package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
)

// DealStatus is the negotiation status of a deal.
type DealStatus string

const (
	DealStatusPending     DealStatus = "Pending"
	DealStatusNegotiating DealStatus = "Negotiating"
	DealStatusAccepted    DealStatus = "Accepted"
	DealStatusRejected    DealStatus = "Rejected"
)

func (s DealStatus) IsValid() bool {
	switch s {
	case DealStatusPending, DealStatusNegotiating, DealStatusAccepted, DealStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether negotiation is closed. Accepted deals can still be funded.
func (s DealStatus) IsTerminal() bool {
	return s == DealStatusAccepted || s == DealStatusRejected
}

// PartyRole is the side a user plays on a specific deal.
type PartyRole string

const (
	PartyInvestor     PartyRole = "investor"
	PartyEntrepreneur PartyRole = "entrepreneur"
)

func (r PartyRole) IsValid() bool { return r == PartyInvestor || r == PartyEntrepreneur }

// Counterparty returns the other side of the deal.
func (r PartyRole) Counterparty() PartyRole {
	if r == PartyInvestor {
		return PartyEntrepreneur
	}
	return PartyInvestor
}

// PaymentStatus summarises funding progress on a deal.
type PaymentStatus string

const (
	PaymentStatusNone          PaymentStatus = "none"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusFundsReleased PaymentStatus = "funds_released"
)

// NegotiationEntry is one counter-proposal in a deal's history.
type NegotiationEntry struct {
	EntryID       string       `json:"entryID"`
	Actor         PartyRole    `json:"actor"`
	Note          string       `json:"note,omitempty"`
	ProposedTerms DealProposal `json:"proposedTerms"`
	Timestamp     time.Time    `json:"timestamp"`
}

// Deal is the persistent negotiation record between one investor and one entrepreneur.
type Deal struct {
	DealID             string             `json:"dealID"`
	InvestorID         string             `json:"investorID"`
	EntrepreneurID     string             `json:"entrepreneurID"`
	Terms              DealProposal       `json:"terms"`
	BaseTerms          DealProposal       `json:"baseTerms"`
	Status             DealStatus         `json:"status"`
	LastActionBy       PartyRole          `json:"lastActionBy,omitempty"`
	NegotiationHistory []NegotiationEntry `json:"negotiationHistory"`
	PaymentStatus      PaymentStatus      `json:"paymentStatus"`
	ClosedAt           *time.Time         `json:"closedAt,omitempty"`
	Version            int64              `json:"version"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// NewDeal builds a pending deal from an investor's proposal.
func NewDeal(dealID, investorID, entrepreneurID string, terms DealProposal, now time.Time) (Deal, error) {
	if investorID == "" || entrepreneurID == "" {
		return Deal{}, fmt.Errorf("%w: investor and entrepreneur are required", apperrors.ErrValidation)
	}
	if investorID == entrepreneurID {
		return Deal{}, fmt.Errorf("%w: investor and entrepreneur must be different users", apperrors.ErrValidation)
	}
	terms = terms.Finalize()
	if err := terms.Validate(); err != nil {
		return Deal{}, err
	}
	return Deal{
		DealID:             dealID,
		InvestorID:         investorID,
		EntrepreneurID:     entrepreneurID,
		Terms:              terms,
		BaseTerms:          terms,
		Status:             DealStatusPending,
		NegotiationHistory: []NegotiationEntry{},
		PaymentStatus:      PaymentStatusNone,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// RoleOf resolves the party role of userID on this deal.
func (d Deal) RoleOf(userID string) (PartyRole, bool) {
	switch userID {
	case d.InvestorID:
		return PartyInvestor, true
	case d.EntrepreneurID:
		return PartyEntrepreneur, true
	}
	return "", false
}

// IsTurnOf is the turn-taking guard: the party that acted last may not act again,
// and nobody may act once negotiation is closed. A Pending deal has no
// LastActionBy, so either party may act on it, including the investor
// accepting or rejecting their own opening proposal.
func (d Deal) IsTurnOf(role PartyRole) bool {
	if !role.IsValid() || d.Status.IsTerminal() {
		return false
	}
	return d.LastActionBy != role
}

// CounterOfferBase returns the terms a new counter-offer starts from:
// the latest proposal in the history, or the original terms when there is none.
func (d Deal) CounterOfferBase() DealProposal {
	if n := len(d.NegotiationHistory); n > 0 {
		return d.NegotiationHistory[n-1].ProposedTerms
	}
	return d.BaseTerms
}

// DealActionType enumerates the negotiation actions.
type DealActionType string

const (
	ActionNegotiate DealActionType = "negotiate"
	ActionAccept    DealActionType = "accept"
	ActionReject    DealActionType = "reject"
)

// DealAction is one input to the negotiation state machine.
type DealAction struct {
	Type    DealActionType
	Actor   PartyRole
	Note    string
	Terms   DealProposal // used by ActionNegotiate only
	EntryID string       // id for the appended history entry
}

// ApplyDealAction is the negotiation transition function. It returns the next
// state of d without modifying d. On error the returned Deal is the zero value.
//
//	Pending     --negotiate--> Negotiating
//	Negotiating --negotiate--> Negotiating  (counterparty of LastActionBy only)
//	Pending|Negotiating --accept--> Accepted  (Pending: either party)
//	Pending|Negotiating --reject--> Rejected  (Pending: either party)
func ApplyDealAction(d Deal, action DealAction, now time.Time) (Deal, error) {
	if !action.Actor.IsValid() {
		return Deal{}, fmt.Errorf("%w: unknown actor %q", apperrors.ErrValidation, action.Actor)
	}
	if d.Status.IsTerminal() {
		return Deal{}, fmt.Errorf("%w: deal %s is %s", apperrors.ErrTerminalState, d.DealID, d.Status)
	}
	if !d.IsTurnOf(action.Actor) {
		return Deal{}, fmt.Errorf("%w: waiting for the %s to respond", apperrors.ErrNotYourTurn, action.Actor.Counterparty())
	}

	next := d
	next.NegotiationHistory = append(make([]NegotiationEntry, 0, len(d.NegotiationHistory)+1), d.NegotiationHistory...)

	switch action.Type {
	case ActionNegotiate:
		terms := action.Terms.Finalize()
		if err := terms.Validate(); err != nil {
			return Deal{}, err
		}
		next.NegotiationHistory = append(next.NegotiationHistory, NegotiationEntry{
			EntryID:       action.EntryID,
			Actor:         action.Actor,
			Note:          action.Note,
			ProposedTerms: terms,
			Timestamp:     now,
		})
		next.Terms = terms
		next.Status = DealStatusNegotiating
	case ActionAccept:
		next.Status = DealStatusAccepted
		next.ClosedAt = &now
	case ActionReject:
		next.Status = DealStatusRejected
		next.ClosedAt = &now
	default:
		return Deal{}, fmt.Errorf("%w: unknown deal action %q", apperrors.ErrValidation, action.Type)
	}

	next.LastActionBy = action.Actor
	next.Version = d.Version + 1
	next.UpdatedAt = now
	return next, nil
}

// ProposalView is what a party sees when opening a deal: the current terms, the
// original terms, the prefilled counter-offer and whether the view is read-only.
type ProposalView struct {
	Terms        DealProposal `json:"terms"`
	BaseTerms    DealProposal `json:"baseTerms"`
	CounterOffer DealProposal `json:"counterOffer"`
	Role         PartyRole    `json:"role,omitempty"`
	YourTurn     bool         `json:"yourTurn"`
	ReadOnly     bool         `json:"readOnly"`
}

// ViewFor builds the proposal view for a viewer. role is empty for non-parties
// such as admins, who always get a read-only view.
func (d Deal) ViewFor(role PartyRole) ProposalView {
	yourTurn := d.IsTurnOf(role)
	return ProposalView{
		Terms:        d.Terms,
		BaseTerms:    d.BaseTerms,
		CounterOffer: d.CounterOfferBase(),
		Role:         role,
		YourTurn:     yourTurn,
		ReadOnly:     !yourTurn,
	}
}
