package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanCollaborate(t *testing.T) {
	assert.True(t, domain.CanCollaborate(domain.RoleInvestor, domain.RoleEntrepreneur))
	assert.True(t, domain.CanCollaborate(domain.RoleEntrepreneur, domain.RoleInvestor))
	assert.False(t, domain.CanCollaborate(domain.RoleInvestor, domain.RoleInvestor))
	assert.False(t, domain.CanCollaborate(domain.RoleAdmin, domain.RoleEntrepreneur))
}

func TestCollaborationRequest_Respond(t *testing.T) {
	now := time.Now().UTC()
	req := domain.CollaborationRequest{RequestID: "r1", SenderID: "a", ReceiverID: "b", Status: domain.CollaborationPending}

	_, err := req.Respond("a", true, now)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	accepted, err := req.Respond("b", true, now)
	require.NoError(t, err)
	assert.Equal(t, domain.CollaborationAccepted, accepted.Status)
	assert.NotNil(t, accepted.RespondedAt)

	_, err = accepted.Respond("b", false, now)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	declined, err := req.Respond("b", false, now)
	require.NoError(t, err)
	assert.Equal(t, domain.CollaborationDeclined, declined.Status)
}

func TestChatMessage_Validate(t *testing.T) {
	valid := domain.ChatMessage{MessageID: "m1", SenderID: "a", ReceiverID: "b", Body: "hello"}
	assert.NoError(t, valid.Validate())

	tests := map[string]func(m *domain.ChatMessage){
		"missing id":      func(m *domain.ChatMessage) { m.MessageID = "" },
		"self message":    func(m *domain.ChatMessage) { m.ReceiverID = m.SenderID },
		"blank body":      func(m *domain.ChatMessage) { m.Body = "   " },
		"oversized body":  func(m *domain.ChatMessage) { m.Body = strings.Repeat("x", domain.MaxChatMessageLength+1) },
		"missing partner": func(m *domain.ChatMessage) { m.ReceiverID = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			m := valid
			mutate(&m)
			assert.ErrorIs(t, m.Validate(), apperrors.ErrValidation)
		})
	}
}
