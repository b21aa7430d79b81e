// Package events publishes registration status changes to Redis Pub/Sub so admin dashboards
// can refresh without polling.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	registrationChannelPrefix = "ngo:events:project:" // Pub/Sub channel per project: ngo:events:project:{project_id}
	allRegistrationsChannel   = "ngo:events:registrations"
)

// Event types.
const (
	TypeRegistrationCreated       = "registration.created"
	TypeRegistrationStatusChanged = "registration.status_changed"
)

// RegistrationEvent describes a change to one registration.
type RegistrationEvent struct {
	Type           string    `json:"type"`
	RegistrationID string    `json:"registrationId"`
	ProjectID      string    `json:"projectId"`
	From           string    `json:"from,omitempty"`
	To             string    `json:"to"`
	At             time.Time `json:"at"`
}

// Publisher emits registration events.
type Publisher interface {
	Publish(ctx context.Context, ev RegistrationEvent) error
}

// RedisPublisher fans every event out to the project channel and the global channel.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish sends ev on both channels in one pipeline.
func (p *RedisPublisher) Publish(ctx context.Context, ev RegistrationEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, ProjectChannel(ev.ProjectID), data)
	pipe.Publish(ctx, allRegistrationsChannel, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// ProjectChannel is the channel carrying events for one project.
func ProjectChannel(projectID string) string {
	return fmt.Sprintf("%s%s", registrationChannelPrefix, projectID)
}

// Nop discards events. It is used when Redis is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, RegistrationEvent) error { return nil }
