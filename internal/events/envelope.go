package events

import (
	"encoding/json"
	"fmt"
	"time"

	timeline_errors "island-timeline/pkg/errors"
)

// Envelope is the wire format of every queue message. EventID is the
// idempotency key, IslandID the partition key.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"type"`
	IslandID   string          `json:"island_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func NewEnvelope(eventID, eventType, islandID string, payload interface{}) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:    eventID,
		EventType:  eventType,
		IslandID:   islandID,
		OccurredAt: time.Now().UTC(),
		Payload:    data,
	}, nil
}

// DecodeEnvelope parses raw message bytes. Anything unusable is reported as ErrDecode.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	if len(raw) == 0 {
		return Envelope{}, fmt.Errorf("empty message: %w", timeline_errors.ErrDecode)
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%v: %w", err, timeline_errors.ErrDecode)
	}
	if env.EventID == "" || env.EventType == "" {
		return Envelope{}, fmt.Errorf("missing event_id or type: %w", timeline_errors.ErrDecode)
	}
	return env, nil
}

// DecodePayload unmarshals the payload into v. A missing payload is a decode error.
func (e Envelope) DecodePayload(v interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return fmt.Errorf("%s %s has no payload: %w", e.EventType, e.EventID, timeline_errors.ErrDecode)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%s %s payload: %v: %w", e.EventType, e.EventID, err, timeline_errors.ErrDecode)
	}
	return nil
}
