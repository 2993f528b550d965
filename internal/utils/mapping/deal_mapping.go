package mapping

import (
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/models"
)

// ToModelDeal converts a domain Deal to a model Deal. History is stored separately.
func ToModelDeal(d domain.Deal) models.Deal {
	var lastActionBy *string
	if d.LastActionBy != "" {
		actor := string(d.LastActionBy)
		lastActionBy = &actor
	}
	return models.Deal{
		DealID:         d.DealID,
		InvestorID:     d.InvestorID,
		EntrepreneurID: d.EntrepreneurID,
		Terms:          d.Terms,
		BaseTerms:      d.BaseTerms,
		Status:         string(d.Status),
		LastActionBy:   lastActionBy,
		PaymentStatus:  string(d.PaymentStatus),
		ClosedAt:       d.ClosedAt,
		Version:        d.Version,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// ToDomainDeal converts a model Deal and its history rows to a domain Deal.
// Stored terms are finalized again so the post-money value is never taken from storage.
func ToDomainDeal(m models.Deal, history []models.NegotiationEntry) domain.Deal {
	var lastActionBy domain.PartyRole
	if m.LastActionBy != nil {
		lastActionBy = domain.PartyRole(*m.LastActionBy)
	}
	entries := make([]domain.NegotiationEntry, len(history))
	for i, h := range history {
		entries[i] = ToDomainNegotiationEntry(h)
	}
	return domain.Deal{
		DealID:             m.DealID,
		InvestorID:         m.InvestorID,
		EntrepreneurID:     m.EntrepreneurID,
		Terms:              m.Terms.Finalize(),
		BaseTerms:          m.BaseTerms.Finalize(),
		Status:             domain.DealStatus(m.Status),
		LastActionBy:       lastActionBy,
		NegotiationHistory: entries,
		PaymentStatus:      domain.PaymentStatus(m.PaymentStatus),
		ClosedAt:           m.ClosedAt,
		Version:            m.Version,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// ToModelNegotiationEntry converts a history entry at position of deal dealID.
func ToModelNegotiationEntry(dealID string, position int, e domain.NegotiationEntry) models.NegotiationEntry {
	return models.NegotiationEntry{
		EntryID:       e.EntryID,
		DealID:        dealID,
		Position:      position,
		Actor:         string(e.Actor),
		Note:          e.Note,
		ProposedTerms: e.ProposedTerms,
		CreatedAt:     e.Timestamp,
	}
}

// ToDomainNegotiationEntry converts a model NegotiationEntry to a domain NegotiationEntry
func ToDomainNegotiationEntry(m models.NegotiationEntry) domain.NegotiationEntry {
	return domain.NegotiationEntry{
		EntryID:       m.EntryID,
		Actor:         domain.PartyRole(m.Actor),
		Note:          m.Note,
		ProposedTerms: m.ProposedTerms.Finalize(),
		Timestamp:     m.CreatedAt,
	}
}
