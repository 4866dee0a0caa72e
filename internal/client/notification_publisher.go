package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
)

// EventPublisher delivers raw messages to a subject.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// NotificationPublisher publishes order request events to NATS for
// consumption by the notifications service.
//
// Subject convention: notifications.procurement.<event_type>
// Event types: order_request_submitted, order_request_approved, order_request_rejected
//
// Publishing is non-fatal: errors are logged and never returned, so a broker
// outage never fails an order request operation.
type NotificationPublisher struct {
	nats EventPublisher
	log  zerolog.Logger
}

// NotificationEvent is the JSON schema published to NATS.
type NotificationEvent struct {
	EventType    string         `json:"event_type"`
	CompanyID    string         `json:"company_id"`
	ActorID      string         `json:"actor_id"`
	Recipients   []string       `json:"recipients"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	IsActionable bool           `json:"is_actionable,omitempty"`
	Severity     string         `json:"severity,omitempty"`
	Category     string         `json:"category,omitempty"`
	Payload      map[string]any `json:"payload,omitempty"`
}

// NewNotificationPublisher creates a publisher. A nil nats disables publishing.
func NewNotificationPublisher(nats EventPublisher, log zerolog.Logger) *NotificationPublisher {
	return &NotificationPublisher{nats: nats, log: log}
}

// OrderRequestCreated tells the company's admins a request awaits a decision.
func (p *NotificationPublisher) OrderRequestCreated(ctx context.Context, req *repository.OrderRequest, adminIDs []string) {
	recipients := make([]string, 0, len(adminIDs))
	for _, id := range adminIDs {
		if id != req.RequesterID {
			recipients = append(recipients, id)
		}
	}

	p.publish(ctx, "order_request_submitted", req, req.RequesterID, recipients, true, map[string]any{
		"total_amount": req.TotalAmount,
		"item_count":   len(req.Items),
	})
}

// OrderRequestResolved tells the requester about the decision.
func (p *NotificationPublisher) OrderRequestResolved(ctx context.Context, req *repository.OrderRequest) {
	eventType := "order_request_approved"
	if req.Status == repository.OrderRequestRejected {
		eventType = "order_request_rejected"
	}

	var actorID string
	if req.ResolverID != nil {
		actorID = *req.ResolverID
	}
	payload := map[string]any{"total_amount": req.TotalAmount}
	if req.Notes != nil {
		payload["notes"] = *req.Notes
	}

	p.publish(ctx, eventType, req, actorID, []string{req.RequesterID}, false, payload)
}

func (p *NotificationPublisher) publish(
	ctx context.Context,
	eventType string,
	req *repository.OrderRequest,
	actorID string,
	recipients []string,
	actionable bool,
	payload map[string]any,
) {
	if p.nats == nil {
		return
	}
	if len(recipients) == 0 {
		return
	}

	event := &NotificationEvent{
		EventType:    eventType,
		CompanyID:    req.CompanyID,
		ActorID:      actorID,
		Recipients:   recipients,
		ResourceType: "order_request",
		ResourceID:   req.ID,
		IsActionable: actionable,
		Severity:     "info",
		Category:     "procurement_approval",
		Payload:      payload,
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.log.Warn().Err(err).Str("event_type", eventType).Msg("notification: failed to marshal event")
		return
	}

	subject := fmt.Sprintf("notifications.procurement.%s", eventType)
	if err := p.nats.Publish(ctx, subject, data); err != nil {
		p.log.Warn().Err(err).
			Str("subject", subject).
			Str("order_request_id", req.ID).
			Msg("notification: failed to publish NATS event (non-fatal)")
		return
	}

	p.log.Debug().
		Str("subject", subject).
		Str("order_request_id", req.ID).
		Int("recipients", len(recipients)).
		Msg("notification: event published")
}
