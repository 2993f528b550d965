package services

import (
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/trustbridge_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/SscSPs/trustbridge_backend/internal/platform/config"
)

// Gateways groups the outbound adapters the services depend on.
type Gateways struct {
	Processor gateways.PaymentProcessor
	Events    gateways.EventPublisher
	KYC       gateways.KYCVerifier
	Notifier  portssvc.ChatNotifier
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, gw Gateways) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.User = NewUserService(repos.UserRepo, WithKYCVerifier(gw.KYC))
	container.Token = NewTokenService(cfg)

	container.Deal = NewDealService(
		repos.DealRepo,
		repos.UserRepo,
		WithDealEventPublisher(gw.Events),
		WithDealNotifier(gw.Notifier),
	)

	container.Payment = NewPaymentService(
		repos.TransactionRepo,
		repos.DealRepo,
		repos.UserRepo,
		gw.Processor,
		WithFeeSchedule(domain.FeeSchedule{
			ProcessorPercent:  cfg.ProcessorFeePercent,
			ProcessorFixed:    cfg.ProcessorFeeFixed,
			CommissionPercent: cfg.PlatformCommissionPercent,
		}),
		WithPaymentCurrency(cfg.PaymentCurrency),
		WithPaymentEventPublisher(gw.Events),
		WithPaymentNotifier(gw.Notifier),
	)

	container.Chat = NewChatService(repos.ChatRepo, repos.UserRepo, WithChatNotifier(gw.Notifier))

	container.Collaboration = NewCollaborationService(
		repos.CollaborationRepo,
		repos.UserRepo,
		WithCollaborationEventPublisher(gw.Events),
		WithCollaborationNotifier(gw.Notifier),
	)

	container.Reporting = NewReportingService(repos.ReportingRepo)

	return container
}
