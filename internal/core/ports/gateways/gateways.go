package gateways

import (
	"context"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// IntentStatus is the processor-side status of a payment intent.
type IntentStatus string

const (
	IntentRequiresConfirmation IntentStatus = "requires_confirmation"
	IntentSucceeded            IntentStatus = "succeeded"
	IntentFailed               IntentStatus = "failed"
)

// IntentRequest describes the charge to prepare.
type IntentRequest struct {
	TransactionID string
	DealID        string
	InvestorID    string
	Amount        decimal.Decimal
	Currency      string
}

// Intent is a payment intent as reported by the processor.
type Intent struct {
	IntentID      string
	ClientSecret  string
	Amount        decimal.Decimal
	Currency      string
	Status        IntentStatus
	FailureReason string
}

// PaymentProcessor is the card processor. Card handling stays on the processor side.
type PaymentProcessor interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	ConfirmIntent(ctx context.Context, intentID string) (*Intent, error)
}

// EventPublisher fans domain events out to subscribers outside the service.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.DomainEvent) error
}

// KYCVerifier checks submitted identity data.
type KYCVerifier interface {
	Verify(ctx context.Context, sub domain.KYCSubmission) (bool, error)
}
