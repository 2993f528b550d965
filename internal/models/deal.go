package models

import (
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
)

// Deal is a row of the deals table. Terms are stored as JSONB.
type Deal struct {
	DealID         string              `db:"deal_id"`
	InvestorID     string              `db:"investor_id"`
	EntrepreneurID string              `db:"entrepreneur_id"`
	Terms          domain.DealProposal `db:"terms"`
	BaseTerms      domain.DealProposal `db:"base_terms"`
	Status         string              `db:"status"`
	LastActionBy   *string             `db:"last_action_by"`
	PaymentStatus  string              `db:"payment_status"`
	ClosedAt       *time.Time          `db:"closed_at"`
	Version        int64               `db:"version"`
	CreatedAt      time.Time           `db:"created_at"`
	UpdatedAt      time.Time           `db:"updated_at"`
}

// NegotiationEntry is a row of deal_negotiation_entries. Position is the
// zero-based index of the entry in the deal's history.
type NegotiationEntry struct {
	EntryID       string              `db:"entry_id"`
	DealID        string              `db:"deal_id"`
	Position      int                 `db:"position"`
	Actor         string              `db:"actor"`
	Note          string              `db:"note"`
	ProposedTerms domain.DealProposal `db:"proposed_terms"`
	CreatedAt     time.Time           `db:"created_at"`
}
