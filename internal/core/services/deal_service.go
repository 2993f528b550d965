package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/trustbridge_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
	"github.com/SscSPs/trustbridge_backend/internal/platform/metrics"
	"github.com/google/uuid"
)

// dealService implements the DealSvcFacade interface
type dealService struct {
	BaseService
	dealRepo portsrepo.DealRepositoryFacade
	userRepo portsrepo.UserReader
}

// DealServiceOption is a functional option for configuring the deal service
type DealServiceOption func(*dealService)

// WithDealEventPublisher adds the domain event publisher
func WithDealEventPublisher(p gateways.EventPublisher) DealServiceOption {
	return func(s *dealService) {
		s.Events = p
	}
}

// WithDealNotifier adds live notifications to the deal parties
func WithDealNotifier(n portssvc.ChatNotifier) DealServiceOption {
	return func(s *dealService) {
		s.Notifier = n
	}
}

// NewDealService creates a new deal service with the provided options
func NewDealService(dealRepo portsrepo.DealRepositoryFacade, userRepo portsrepo.UserReader, options ...DealServiceOption) portssvc.DealSvcFacade {
	svc := &dealService{
		dealRepo: dealRepo,
		userRepo: userRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure dealService implements the DealSvcFacade interface
var _ portssvc.DealSvcFacade = (*dealService)(nil)

func (s *dealService) CreateDeal(ctx context.Context, caller domain.Principal, req dto.CreateDealRequest) (*domain.Deal, error) {
	if caller.Role != domain.RoleInvestor {
		return nil, fmt.Errorf("%w: only investors can propose deals", apperrors.ErrForbidden)
	}

	if _, err := s.RequireActiveUser(ctx, s.userRepo, caller.UserID); err != nil {
		return nil, err
	}

	entrepreneur, err := s.userRepo.FindUserByID(ctx, req.EntrepreneurID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: entrepreneur %s does not exist", apperrors.ErrValidation, req.EntrepreneurID)
		}
		s.LogError(ctx, err, "Failed to load entrepreneur", slog.String("entrepreneur_id", req.EntrepreneurID))
		return nil, err
	}
	if entrepreneur.Role != domain.RoleEntrepreneur || entrepreneur.Suspended {
		return nil, fmt.Errorf("%w: user %s cannot receive deal proposals", apperrors.ErrValidation, req.EntrepreneurID)
	}

	deal, err := domain.NewDeal(uuid.NewString(), caller.UserID, entrepreneur.UserID, req.ToDomain(), time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.dealRepo.SaveDeal(ctx, deal); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save deal", slog.String("deal_id", deal.DealID))
		}
		return nil, err
	}

	metrics.DealTransitions.WithLabelValues("create", string(deal.Status)).Inc()
	s.LogInfo(ctx, "Deal created",
		slog.String("deal_id", deal.DealID),
		slog.String("entrepreneur_id", deal.EntrepreneurID))
	s.PublishEvent(ctx, domain.EventDealCreated, deal.DealID, caller.UserID, []string{deal.EntrepreneurID}, map[string]any{
		"status":           deal.Status,
		"investmentAmount": deal.Terms.InvestmentAmount.String(),
	})
	return &deal, nil
}

func (s *dealService) NegotiateDeal(ctx context.Context, caller domain.Principal, dealID string, req dto.NegotiateDealRequest) (*domain.Deal, error) {
	return s.act(ctx, caller, dealID, req.Version, func(d domain.Deal, role domain.PartyRole) domain.DealAction {
		return domain.DealAction{
			Type:    domain.ActionNegotiate,
			Actor:   role,
			Note:    req.Note,
			Terms:   domain.ReduceProposal(d.CounterOfferBase(), req.ToEdit()),
			EntryID: uuid.NewString(),
		}
	})
}

func (s *dealService) AcceptDeal(ctx context.Context, caller domain.Principal, dealID string, req dto.DealDecisionRequest) (*domain.Deal, error) {
	return s.act(ctx, caller, dealID, req.Version, func(_ domain.Deal, role domain.PartyRole) domain.DealAction {
		return domain.DealAction{Type: domain.ActionAccept, Actor: role, Note: req.Note}
	})
}

func (s *dealService) RejectDeal(ctx context.Context, caller domain.Principal, dealID string, req dto.DealDecisionRequest) (*domain.Deal, error) {
	return s.act(ctx, caller, dealID, req.Version, func(_ domain.Deal, role domain.PartyRole) domain.DealAction {
		return domain.DealAction{Type: domain.ActionReject, Actor: role, Note: req.Note}
	})
}

// act runs one negotiation action against the stored deal. The write only
// succeeds if the deal is still at the version the caller saw.
func (s *dealService) act(ctx context.Context, caller domain.Principal, dealID string, version int64, build func(domain.Deal, domain.PartyRole) domain.DealAction) (*domain.Deal, error) {
	deal, err := s.dealRepo.FindDealByID(ctx, dealID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load deal", slog.String("deal_id", dealID))
		}
		return nil, err
	}

	role, ok := deal.RoleOf(caller.UserID)
	if !ok {
		return nil, fmt.Errorf("%w: user is not a party to deal %s", apperrors.ErrForbidden, dealID)
	}
	if _, err := s.RequireActiveUser(ctx, s.userRepo, caller.UserID); err != nil {
		return nil, err
	}

	action := build(*deal, role)
	if deal.Version != version {
		metrics.DealActionsRejected.WithLabelValues(string(action.Type), "version_conflict").Inc()
		return nil, fmt.Errorf("%w: deal %s is at version %d, request was made against %d", apperrors.ErrConflict, dealID, deal.Version, version)
	}

	next, err := domain.ApplyDealAction(*deal, action, time.Now().UTC())
	if err != nil {
		metrics.DealActionsRejected.WithLabelValues(string(action.Type), rejectionReason(err)).Inc()
		s.LogDebug(ctx, "Deal action refused",
			slog.String("deal_id", dealID),
			slog.String("action", string(action.Type)),
			slog.String("reason", err.Error()))
		return nil, err
	}

	newEntries := next.NegotiationHistory[len(deal.NegotiationHistory):]
	if err := s.dealRepo.UpdateDeal(ctx, next, deal.Version, newEntries); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			metrics.DealActionsRejected.WithLabelValues(string(action.Type), "version_conflict").Inc()
		} else {
			s.LogError(ctx, err, "Failed to update deal", slog.String("deal_id", dealID))
		}
		return nil, err
	}

	metrics.DealTransitions.WithLabelValues(string(action.Type), string(next.Status)).Inc()
	s.LogInfo(ctx, "Deal updated",
		slog.String("deal_id", dealID),
		slog.String("action", string(action.Type)),
		slog.String("status", string(next.Status)),
		slog.Int64("version", next.Version))

	counterparty := next.InvestorID
	if role == domain.PartyInvestor {
		counterparty = next.EntrepreneurID
	}
	s.PublishEvent(ctx, domain.DealEventType(action.Type), dealID, caller.UserID, []string{counterparty}, map[string]any{
		"status":  next.Status,
		"actor":   role,
		"version": next.Version,
	})
	return &next, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, apperrors.ErrTerminalState):
		return "terminal_state"
	case errors.Is(err, apperrors.ErrValidation):
		return "validation"
	}
	return "other"
}

func (s *dealService) GetDeal(ctx context.Context, caller domain.Principal, dealID string) (*domain.Deal, error) {
	deal, err := s.dealRepo.FindDealByID(ctx, dealID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load deal", slog.String("deal_id", dealID))
		}
		return nil, err
	}
	if _, ok := deal.RoleOf(caller.UserID); !ok && !caller.IsAdmin() {
		return nil, fmt.Errorf("%w: user is not a party to deal %s", apperrors.ErrForbidden, dealID)
	}
	return deal, nil
}

func (s *dealService) GetProposalView(ctx context.Context, caller domain.Principal, dealID string) (*domain.ProposalView, error) {
	deal, err := s.GetDeal(ctx, caller, dealID)
	if err != nil {
		return nil, err
	}
	role, _ := deal.RoleOf(caller.UserID)
	view := deal.ViewFor(role)
	return &view, nil
}

func (s *dealService) ListDeals(ctx context.Context, caller domain.Principal, params dto.ListDealsParams) ([]domain.Deal, *string, error) {
	filter := portsrepo.DealFilter{}
	if !caller.IsAdmin() {
		filter.UserID = caller.UserID
	}
	if params.Status != "" {
		status := domain.DealStatus(params.Status)
		if !status.IsValid() {
			return nil, nil, fmt.Errorf("%w: unknown deal status %q", apperrors.ErrValidation, params.Status)
		}
		filter.Status = &status
	}

	deals, nextToken, err := s.dealRepo.ListDeals(ctx, filter, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list deals", slog.String("user_id", caller.UserID))
		return nil, nil, err
	}
	if deals == nil {
		deals = []domain.Deal{}
	}
	return deals, nextToken, nil
}
