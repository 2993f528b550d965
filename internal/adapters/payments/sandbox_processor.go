package payments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/SscSPs/trustbridge_backend/internal/core/ports/gateways"
	"github.com/SscSPs/trustbridge_backend/internal/utils"
	"github.com/shopspring/decimal"
)

// DeclineReasonCardDeclined is reported for intents the sandbox refuses.
const DeclineReasonCardDeclined = "card_declined"

// SandboxProcessor is an in-memory PaymentProcessor for development and tests.
// It never touches card data; intents succeed on confirmation unless the
// amount exceeds the configured decline limit.
type SandboxProcessor struct {
	mu           sync.Mutex
	intents      map[string]gateways.Intent
	declineAbove decimal.Decimal
	logger       *slog.Logger
}

// SandboxOption configures a SandboxProcessor
type SandboxOption func(*SandboxProcessor)

// WithDeclineAbove makes confirmations of intents larger than limit fail.
func WithDeclineAbove(limit decimal.Decimal) SandboxOption {
	return func(p *SandboxProcessor) {
		p.declineAbove = limit
	}
}

// WithSandboxLogger sets the logger used for processor activity.
func WithSandboxLogger(logger *slog.Logger) SandboxOption {
	return func(p *SandboxProcessor) {
		p.logger = logger
	}
}

func NewSandboxProcessor(options ...SandboxOption) *SandboxProcessor {
	p := &SandboxProcessor{
		intents: make(map[string]gateways.Intent),
		logger:  slog.Default(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Ensure SandboxProcessor implements gateways.PaymentProcessor
var _ gateways.PaymentProcessor = (*SandboxProcessor)(nil)

func (p *SandboxProcessor) CreateIntent(ctx context.Context, req gateways.IntentRequest) (*gateways.Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("sandbox: amount must be positive, got %s", req.Amount)
	}
	if len(req.Currency) != 3 {
		return nil, fmt.Errorf("sandbox: invalid currency %q", req.Currency)
	}

	intentID, err := utils.PrefixedID("pi", 12)
	if err != nil {
		return nil, fmt.Errorf("sandbox: failed to generate intent id: %w", err)
	}
	secretPart, err := utils.RandomHex(16)
	if err != nil {
		return nil, fmt.Errorf("sandbox: failed to generate client secret: %w", err)
	}

	intent := gateways.Intent{
		IntentID:     intentID,
		ClientSecret: intentID + "_secret_" + secretPart,
		Amount:       req.Amount,
		Currency:     strings.ToLower(req.Currency),
		Status:       gateways.IntentRequiresConfirmation,
	}

	p.mu.Lock()
	p.intents[intentID] = intent
	p.mu.Unlock()

	p.logger.Debug("Sandbox intent created",
		slog.String("intent_id", intentID),
		slog.String("transaction_id", req.TransactionID),
		slog.String("amount", req.Amount.String()))
	return &intent, nil
}

// ConfirmIntent captures an intent. Confirming a captured intent again returns it unchanged.
func (p *SandboxProcessor) ConfirmIntent(ctx context.Context, intentID string) (*gateways.Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	intent, ok := p.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("sandbox: unknown payment intent %s", intentID)
	}
	if intent.Status != gateways.IntentRequiresConfirmation {
		return &intent, nil
	}

	if p.declineAbove.IsPositive() && intent.Amount.GreaterThan(p.declineAbove) {
		intent.Status = gateways.IntentFailed
		intent.FailureReason = DeclineReasonCardDeclined
	} else {
		intent.Status = gateways.IntentSucceeded
	}
	p.intents[intentID] = intent

	p.logger.Debug("Sandbox intent confirmed",
		slog.String("intent_id", intentID),
		slog.String("status", string(intent.Status)))
	return &intent, nil
}
