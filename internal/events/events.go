package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventLeadCreated          = "LeadCreated"
	EventLeadStatusChanged    = "LeadStatusChanged"
	EventLeadConverted        = "LeadConverted"
	EventLeadRejected         = "LeadRejected"
	EventProjectStatusChanged = "ProjectStatusChanged"
	EventQuoteSubmitted       = "QuoteSubmitted"
	EventQuoteDecided         = "QuoteDecided"
	EventQuotesExpired        = "QuotesExpired"
)

const (
	envelopeVersion = 1
	producerName    = "ora-interior-api"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // lead or project id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payloads ----

type LeadStatusChangedPayload struct {
	LeadID    string `json:"lead_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	ChangedBy string `json:"changed_by"`
}

type LeadConvertedPayload struct {
	LeadID         string    `json:"lead_id"`
	ProjectID      string    `json:"project_id"`
	DesignerID     string    `json:"designer_id,omitempty"`
	CustomerID     string    `json:"customer_id,omitempty"`
	DesignIDs      []string  `json:"design_ids"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	CopiedMessages int       `json:"copied_messages"`
	ConvertedBy    string    `json:"converted_by"`
}

type LeadRejectedPayload struct {
	LeadID     string `json:"lead_id"`
	Reason     string `json:"reason"`
	RejectedBy string `json:"rejected_by"`
}

type ProjectStatusChangedPayload struct {
	ProjectID string `json:"project_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Locked    bool   `json:"locked"`
	ChangedBy string `json:"changed_by"`
}

type QuotePayload struct {
	QuoteID     string `json:"quote_id"`
	ProjectID   string `json:"project_id"`
	Version     int    `json:"version"`
	Status      string `json:"status"`
	TotalAmount string `json:"total_amount"`
	ActorID     string `json:"actor_id"`
}

type QuotesExpiredPayload struct {
	Count  int64     `json:"count"`
	Cutoff time.Time `json:"cutoff"`
}

// Publisher emits domain events. Implementations must not block the caller
// on broker availability.
type Publisher interface {
	Publish(ctx context.Context, eventType, correlationID string, payload any) error
}

// NoopPublisher discards events; used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, string, any) error { return nil }

func NewEnvelope(eventType, correlationID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  envelopeVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      producerName,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// UnwrapPayload decodes an envelope payload into T.
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
