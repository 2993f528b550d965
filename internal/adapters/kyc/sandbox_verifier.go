package kyc

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/core/ports/gateways"
)

// SandboxVerifier approves any submission that carries a document number and a
// two-letter country code. It stands in for an identity provider.
type SandboxVerifier struct{}

func NewSandboxVerifier() *SandboxVerifier {
	return &SandboxVerifier{}
}

// Ensure SandboxVerifier implements gateways.KYCVerifier
var _ gateways.KYCVerifier = (*SandboxVerifier)(nil)

func (v *SandboxVerifier) Verify(ctx context.Context, sub domain.KYCSubmission) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if sub.UserID == "" {
		return false, fmt.Errorf("kyc: submission without user")
	}
	if strings.TrimSpace(sub.DocumentNumber) == "" || strings.TrimSpace(sub.FullName) == "" {
		return false, nil
	}
	return len(strings.TrimSpace(sub.Country)) == 2, nil
}
