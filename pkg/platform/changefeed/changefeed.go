// Package changefeed captures registration lifecycle events so dependent
// systems can react to registrations, surveys, and administrative purges.
//
// Events are written to a transactional outbox in the same unit of work as the
// state change that produced them, then relayed to Kafka by a background
// worker. Kafka consumers are the audience; rollbook itself never reads the
// feed back.
package changefeed

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "rollbook/pkg/domain"
)

// EventType names one kind of lifecycle event.
type EventType string

const (
	EventRegistrationCreated EventType = "registration.created"
	EventSurveySubmitted     EventType = "survey.submitted"
	EventRegistrationPurged  EventType = "registration.purged"
)

// Event is emitted from domain logic to capture one lifecycle change. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID             uuid.UUID         `json:"id"`
	Type           EventType         `json:"type"`
	Timestamp      time.Time         `json:"timestamp"`
	CampaignRef    id.CampaignRef    `json:"campaign_ref"`
	UserRef        string            `json:"user_ref,omitempty"`
	RegistrationID id.RegistrationID `json:"registration_id,omitempty"`
	// CourseID carries the resolved course for purge events so downstream
	// systems can unenroll; empty when the reverse lookup was ambiguous.
	CourseID  id.CourseID `json:"course_id,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Store persists events for later relay. Implementations must honor a
// transaction carried in ctx so the outbox write commits or rolls back with
// the state change it describes.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Outbox extends Store with the relay-side queries.
type Outbox interface {
	Store
	ListUnpublished(ctx context.Context, limit int) ([]Event, error)
	MarkPublished(ctx context.Context, eventIDs []uuid.UUID) error
}
