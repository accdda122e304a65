//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"rollbook/pkg/platform/changefeed"
	feedpg "rollbook/pkg/platform/changefeed/store/postgres"
	"rollbook/pkg/testutil/containers"
)

type OutboxSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *feedpg.Store
}

func TestOutboxSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(OutboxSuite))
}

func (s *OutboxSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = feedpg.New(s.postgres.DB)
}

func (s *OutboxSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "changefeed_outbox")
	s.Require().NoError(err)
}

func newEvent(eventType changefeed.EventType) changefeed.Event {
	return changefeed.Event{
		ID:          uuid.New(),
		Type:        eventType,
		Timestamp:   time.Now().UTC().Truncate(time.Second),
		CampaignRef: "camp-1",
		UserRef:     "user-1",
	}
}

func (s *OutboxSuite) TestAppendAndList() {
	ctx := context.Background()

	first := newEvent(changefeed.EventRegistrationCreated)
	second := newEvent(changefeed.EventSurveySubmitted)
	s.Require().NoError(s.store.Append(ctx, first))
	s.Require().NoError(s.store.Append(ctx, second))

	pending, err := s.store.ListUnpublished(ctx, 10)
	s.NoError(err)
	s.Require().Len(pending, 2)
	s.Equal(first.ID, pending[0].ID)
	s.Equal(second.ID, pending[1].ID)
	s.Equal(changefeed.EventRegistrationCreated, pending[0].Type)
}

func (s *OutboxSuite) TestMarkPublished() {
	ctx := context.Background()

	first := newEvent(changefeed.EventRegistrationCreated)
	second := newEvent(changefeed.EventRegistrationPurged)
	s.Require().NoError(s.store.Append(ctx, first))
	s.Require().NoError(s.store.Append(ctx, second))

	s.Require().NoError(s.store.MarkPublished(ctx, []uuid.UUID{first.ID}))

	pending, err := s.store.ListUnpublished(ctx, 10)
	s.NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(second.ID, pending[0].ID)
}

func (s *OutboxSuite) TestListRespectsLimit() {
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		s.Require().NoError(s.store.Append(ctx, newEvent(changefeed.EventRegistrationCreated)))
	}

	pending, err := s.store.ListUnpublished(ctx, 3)
	s.NoError(err)
	s.Len(pending, 3)
}
