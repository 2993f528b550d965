package services

import (
	"context"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
)

// DealReaderSvc defines read operations for deals. Parties see their own
// deals; admins see every deal.
type DealReaderSvc interface {
	GetDeal(ctx context.Context, caller domain.Principal, dealID string) (*domain.Deal, error)

	// GetProposalView returns the terms with the caller's counter-offer prefill and read-only flag.
	GetProposalView(ctx context.Context, caller domain.Principal, dealID string) (*domain.ProposalView, error)

	// ListDeals lists the caller's deals, or all deals for an admin.
	ListDeals(ctx context.Context, caller domain.Principal, params dto.ListDealsParams) ([]domain.Deal, *string, error)
}

// DealNegotiationSvc defines the negotiation actions. Each one carries the
// deal version the caller last saw.
type DealNegotiationSvc interface {
	// CreateDeal opens a pending deal. Only investors can create deals.
	CreateDeal(ctx context.Context, caller domain.Principal, req dto.CreateDealRequest) (*domain.Deal, error)

	NegotiateDeal(ctx context.Context, caller domain.Principal, dealID string, req dto.NegotiateDealRequest) (*domain.Deal, error)
	AcceptDeal(ctx context.Context, caller domain.Principal, dealID string, req dto.DealDecisionRequest) (*domain.Deal, error)
	RejectDeal(ctx context.Context, caller domain.Principal, dealID string, req dto.DealDecisionRequest) (*domain.Deal, error)
}

// DealSvcFacade combines all deal service interfaces
type DealSvcFacade interface {
	DealReaderSvc
	DealNegotiationSvc
}
