// Package relay moves committed outbox events onto Kafka.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"rollbook/pkg/platform/changefeed"
)

// Sink is the publishing side of the relay; satisfied by the platform Kafka
// producer.
type Sink interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Relay polls the outbox for unpublished events and produces them to the
// sink. Events stay in the outbox until the produce succeeds, so a crash
// between produce and mark yields at-least-once delivery; consumers must
// dedupe on event id.
type Relay struct {
	outbox   changefeed.Outbox
	sink     Sink
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

// New builds a relay. A zero interval defaults to one second.
func New(outbox changefeed.Outbox, sink Sink, logger *slog.Logger, interval time.Duration) *Relay {
	if interval <= 0 {
		interval = time.Second
	}
	return &Relay{outbox: outbox, sink: sink, logger: logger, interval: interval, batch: 100}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.RelayOnce(ctx); err != nil {
				r.logger.WarnContext(ctx, "changefeed relay pass failed", "error", err)
			}
		}
	}
}

// RelayOnce drains one batch of pending events.
func (r *Relay) RelayOnce(ctx context.Context) error {
	events, err := r.outbox.ListUnpublished(ctx, r.batch)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	published := make([]uuid.UUID, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", event.ID, err)
		}
		if err := r.sink.Publish(ctx, string(event.CampaignRef), payload); err != nil {
			// Stop the batch; unpublished events retry next pass in order.
			r.logger.WarnContext(ctx, "changefeed publish failed",
				"event_id", event.ID,
				"event_type", event.Type,
				"error", err.Error(),
			)
			break
		}
		published = append(published, event.ID)
	}
	if len(published) == 0 {
		return nil
	}
	return r.outbox.MarkPublished(ctx, published)
}
