package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
)

// CollaborationStatus is the lifecycle of a collaboration request.
type CollaborationStatus string

const (
	CollaborationPending  CollaborationStatus = "pending"
	CollaborationAccepted CollaborationStatus = "accepted"
	CollaborationDeclined CollaborationStatus = "declined"
)

// CollaborationRequest is an introduction request between an investor and an entrepreneur.
type CollaborationRequest struct {
	RequestID   string              `json:"requestID"`
	SenderID    string              `json:"senderID"`
	ReceiverID  string              `json:"receiverID"`
	Message     string              `json:"message,omitempty"`
	Status      CollaborationStatus `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	RespondedAt *time.Time          `json:"respondedAt,omitempty"`
}

// CanCollaborate reports whether two roles may open a collaboration: one investor, one entrepreneur.
func CanCollaborate(sender, receiver UserRole) bool {
	return (sender == RoleInvestor && receiver == RoleEntrepreneur) ||
		(sender == RoleEntrepreneur && receiver == RoleInvestor)
}

// Respond accepts or declines the request on behalf of responderID.
func (r CollaborationRequest) Respond(responderID string, accept bool, now time.Time) (CollaborationRequest, error) {
	if responderID != r.ReceiverID {
		return CollaborationRequest{}, fmt.Errorf("%w: only the receiver can respond to request %s", apperrors.ErrForbidden, r.RequestID)
	}
	if r.Status != CollaborationPending {
		return CollaborationRequest{}, fmt.Errorf("%w: request %s is already %s", apperrors.ErrValidation, r.RequestID, r.Status)
	}
	r.Status = CollaborationDeclined
	if accept {
		r.Status = CollaborationAccepted
	}
	r.RespondedAt = &now
	return r, nil
}
