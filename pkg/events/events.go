// Package events publishes catalog domain events after successful mutations.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
)

type Type string

const (
	ProductCreated      Type = "product.created"
	ProductUpdated      Type = "product.updated"
	ProductImageUpdated Type = "product.image_updated"
	ProductDeleted      Type = "product.deleted"
	FavoriteAdded       Type = "favorite.added"
	FavoriteRemoved     Type = "favorite.removed"
)

const envelopeVersion = 1

// Envelope is the message body written to the catalog topic.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	Type       Type            `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	ActorID    string          `json:"actorId,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// Publisher emits a single event and waits for the broker to accept it.
type Publisher interface {
	Publish(ctx context.Context, eventType Type, actorID string, data any) error
}

// Noop drops every event. Used when no catalog topic is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Type, string, any) error { return nil }

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

type topicPublisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) publishResult
}

// PubSubPublisher publishes envelopes to a Pub/Sub topic.
type PubSubPublisher struct {
	topic topicPublisher
	now   func() time.Time
}

// NewPubSubPublisher returns Noop when the topic handle is nil.
func NewPubSubPublisher(p *gcppubsub.Publisher) Publisher {
	if p == nil {
		return Noop{}
	}
	return &PubSubPublisher{topic: &gcpPublisher{Publisher: p}, now: time.Now}
}

func (p *PubSubPublisher) Publish(ctx context.Context, eventType Type, actorID string, data any) error {
	if p == nil || p.topic == nil {
		return errors.New("pubsub publisher not initialized")
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", eventType, err)
	}

	env := Envelope{
		Version:    envelopeVersion,
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: p.now().UTC(),
		ActorID:    actorID,
		Data:       payload,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding %s envelope: %w", eventType, err)
	}

	msg := &gcppubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"event_type": string(eventType),
			"event_id":   env.EventID,
		},
	}

	result := p.topic.Publish(ctx, msg)
	if result == nil {
		return fmt.Errorf("publishing %s: no publish result", eventType)
	}
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing %s: %w", eventType, err)
	}
	return nil
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return p.Publisher.Publish(ctx, msg)
}

// ProductPayload is the data carried by product events.
type ProductPayload struct {
	ProductID string `json:"productId"`
	Name      string `json:"name,omitempty"`
	Image     string `json:"image,omitempty"`
}

// FavoritePayload is the data carried by favorite events.
type FavoritePayload struct {
	FavoriteID string `json:"favoriteId,omitempty"`
	ProductID  string `json:"productId,omitempty"`
}
