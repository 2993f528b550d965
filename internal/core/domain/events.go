package domain

import "time"

// EventType names a domain event published to subscribers outside the service.
type EventType string

const (
	EventDealCreated            EventType = "deal.created"
	EventDealNegotiated         EventType = "deal.negotiated"
	EventDealAccepted           EventType = "deal.accepted"
	EventDealRejected           EventType = "deal.rejected"
	EventPaymentPaid            EventType = "payment.paid"
	EventPaymentReleased        EventType = "payment.released"
	EventCollaborationRequested EventType = "collaboration.requested"
)

// DomainEvent is the envelope for published events.
type DomainEvent struct {
	EventID     string         `json:"eventID"`
	Type        EventType      `json:"type"`
	AggregateID string         `json:"aggregateID"`
	ActorID     string         `json:"actorID"`
	Recipients  []string       `json:"recipients,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	OccurredAt  time.Time      `json:"occurredAt"`
}

// DealEventType maps a negotiation action to the event it produces.
func DealEventType(action DealActionType) EventType {
	switch action {
	case ActionAccept:
		return EventDealAccepted
	case ActionReject:
		return EventDealRejected
	default:
		return EventDealNegotiated
	}
}
