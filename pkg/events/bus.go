package events

import (
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// WorkflowEvent is the envelope published on the event bus for observers
// (the websocket hub, primarily). It carries the session the event belongs to
// and the stage that produced it.
type WorkflowEvent struct {
	SessionID  string    `json:"session_id"`
	Stage      string    `json:"stage"`
	Event      Event     `json:"event"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Bus fans workflow events out on a watermill topic. Publishing is
// best-effort from the orchestrator's perspective; a broken observer must not
// fail a turn.
type Bus struct {
	topic string
	pub   message.Publisher
}

func NewBus(topic string, pub message.Publisher) *Bus {
	return &Bus{topic: topic, pub: pub}
}

// Publish wraps the event in a WorkflowEvent envelope and publishes it.
func (b *Bus) Publish(sessionID, stage string, e Event) error {
	if b == nil || b.pub == nil {
		return nil
	}
	payload, err := json.Marshal(WorkflowEvent{
		SessionID:  sessionID,
		Stage:      stage,
		Event:      e,
		OccurredAt: time.Now(),
	})
	if err != nil {
		return err
	}
	return b.pub.Publish(b.topic, message.NewMessage(watermill.NewUUID(), payload))
}
