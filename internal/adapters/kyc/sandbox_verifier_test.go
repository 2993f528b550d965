package kyc

import (
	"context"
	"testing"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestSandboxVerifier(t *testing.T) {
	tests := []struct {
		name     string
		sub      domain.KYCSubmission
		verified bool
		wantErr  bool
	}{
		{
			name:     "complete submission",
			sub:      domain.KYCSubmission{UserID: "u-1", FullName: "Ada Lovelace", DocumentType: "passport", DocumentNumber: "X123", Country: "GB"},
			verified: true,
		},
		{
			name: "missing document number",
			sub:  domain.KYCSubmission{UserID: "u-1", FullName: "Ada Lovelace", Country: "GB"},
		},
		{
			name: "bad country",
			sub:  domain.KYCSubmission{UserID: "u-1", FullName: "Ada Lovelace", DocumentNumber: "X123", Country: "GBR"},
		},
		{
			name:    "no user",
			sub:     domain.KYCSubmission{DocumentNumber: "X123"},
			wantErr: true,
		},
	}

	v := NewSandboxVerifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := v.Verify(context.Background(), tt.sub)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.verified, ok)
		})
	}
}
