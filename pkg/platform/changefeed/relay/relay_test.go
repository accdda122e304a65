package relay

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollbook/pkg/platform/changefeed"
	"rollbook/pkg/platform/changefeed/store/memory"
)

type fakeSink struct {
	published [][]byte
	failAfter int // fail once this many publishes have succeeded; negative disables
}

func (f *fakeSink) Publish(_ context.Context, _ string, payload []byte) error {
	if f.failAfter >= 0 && len(f.published) >= f.failAfter {
		return errors.New("broker unavailable")
	}
	f.published = append(f.published, payload)
	return nil
}

func appendEvents(t *testing.T, store *memory.Store, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := store.Append(context.Background(), changefeed.Event{
			ID:          uuid.New(),
			Type:        changefeed.EventRegistrationCreated,
			Timestamp:   time.Now(),
			CampaignRef: "fall-2016",
		})
		require.NoError(t, err)
	}
}

func TestRelayOnce_PublishesAndMarks(t *testing.T) {
	store := memory.New()
	appendEvents(t, store, 3)
	sink := &fakeSink{failAfter: -1}

	r := New(store, sink, slog.Default(), time.Second)
	require.NoError(t, r.RelayOnce(context.Background()))

	assert.Len(t, sink.published, 3)
	pending, err := store.ListUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRelayOnce_SinkFailureKeepsRemainderPending(t *testing.T) {
	store := memory.New()
	appendEvents(t, store, 3)
	sink := &fakeSink{failAfter: 1}

	r := New(store, sink, slog.Default(), time.Second)
	require.NoError(t, r.RelayOnce(context.Background()))

	// One published and marked; the rest stay queued for the next pass.
	pending, err := store.ListUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	sink.failAfter = -1
	require.NoError(t, r.RelayOnce(context.Background()))
	pending, err = store.ListUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRelayOnce_SinkFailureIsLogged(t *testing.T) {
	store := memory.New()
	appendEvents(t, store, 1)
	sink := &fakeSink{failAfter: 0}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := New(store, sink, logger, time.Second)
	require.NoError(t, r.RelayOnce(context.Background()))

	assert.Contains(t, buf.String(), "changefeed publish failed")
	assert.Contains(t, buf.String(), "broker unavailable")
}

func TestRelayOnce_EmptyOutboxIsNoop(t *testing.T) {
	sink := &fakeSink{failAfter: -1}
	r := New(memory.New(), sink, slog.Default(), time.Second)
	require.NoError(t, r.RelayOnce(context.Background()))
	assert.Empty(t, sink.published)
}
