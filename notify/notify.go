// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// channelPrefix is followed by the election id.
const channelPrefix = "quickly-vote:tally:"

// Event announces a committed tally change.
type Event struct {
	ElectionID  string    `json:"election_id"`
	CandidateID string    `json:"candidate_id"`
	Tally       int64     `json:"tally"`
	At          time.Time `json:"at"`
}

// Notifier publishes tally changes to subscribers.
type Notifier interface {
	Publish(ctx context.Context, e Event) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, e Event) error

func (f Func) Publish(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// Log writes events to the default logger. Used when no broker is configured.
type Log struct{}

func (Log) Publish(_ context.Context, e Event) error {
	slog.Info("tally changed", "election_id", e.ElectionID, "candidate_id", e.CandidateID, "tally", e.Tally)
	return nil
}

// Channel returns the pub/sub channel for an election.
func Channel(electionID string) string {
	return channelPrefix + electionID
}

// Redis publishes events as JSON on a per-election pub/sub channel.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to url (redis://[:password@]host:port/db).
func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &Redis{client: redis.NewClient(opts)}, nil
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *Redis) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := r.client.Publish(ctx, Channel(e.ElectionID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish tally event: %w", err)
	}
	return nil
}

// Subscribe returns the pub/sub handle for an election's channel.
func (r *Redis) Subscribe(ctx context.Context, electionID string) *redis.PubSub {
	return r.client.Subscribe(ctx, Channel(electionID))
}

func (r *Redis) Close() error {
	return r.client.Close()
}
