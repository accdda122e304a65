// Package models defines the persisted records of the registration core:
// campaigns, enrollment rules, session ranges, registrations, and survey
// submissions with their key/value details.
package models

import (
	"time"

	id "rollbook/pkg/domain"
)

// Campaign is one registration drive. Callers identify it by ExternalID; the
// numeric ID is assigned by the store the first time anything references the
// external id.
type Campaign struct {
	ID         id.CampaignID
	ExternalID id.CampaignRef
	CreatedAt  time.Time
}

// EnrollmentRule maps a (school, grade taught, curriculum) tuple to the course
// a registrant is admitted into. Rules are bulk-replaced wholesale; no per-rule
// lifecycle exists.
type EnrollmentRule struct {
	ID            int64
	CampaignID    id.CampaignID
	School        string
	GradeTeaching string
	Curriculum    string
	CourseID      id.CourseID
}

// RuleSpec carries the caller-supplied fields of one enrollment rule. Specs
// are stored verbatim with no field validation.
type RuleSpec struct {
	School        string      `json:"school"`
	GradeTeaching string      `json:"grade_teaching"`
	Curriculum    string      `json:"curriculum"`
	CourseID      id.CourseID `json:"course_id"`
}

// SessionRange is a labeled date-range offering for a campaign. Distinct from
// an analytics session id.
type SessionRange struct {
	ID         int64
	CampaignID id.CampaignID
	Label      string
	Curriculum string
	CourseID   id.CourseID
}

// SessionSpec carries the caller-supplied fields of one session range.
type SessionSpec struct {
	Label      string      `json:"session_range"`
	Curriculum string      `json:"curriculum"`
	CourseID   id.CourseID `json:"course_id"`
}

// Registration is one user's accepted enrollment record for a campaign.
// Curriculum is resolved from the matching rule at registration time, never
// taken from caller input. Registrations are immutable once created.
type Registration struct {
	ID            id.RegistrationID
	CampaignID    id.CampaignID
	UserID        id.UserID
	School        string
	GradeTeaching string
	Curriculum    string
	Phone         string
	EmployeeID    string
	SessionRange  string
	SessionID     string
	CreatedAt     time.Time
}

// RegistrationPayload is the caller-submitted portion of a registration.
// Curriculum is deliberately absent: accepting it here would let a caller
// self-assign an unapproved curriculum.
type RegistrationPayload struct {
	School        string      `json:"school"`
	GradeTeaching string      `json:"grade_teaching"`
	CourseID      id.CourseID `json:"course_id"`
	Phone         string      `json:"phone"`
	EmployeeID    string      `json:"employee_id"`
	SessionRange  string      `json:"session_range"`
}

// SurveySubmission is the single post-registration survey envelope for a
// registration.
type SurveySubmission struct {
	ID             id.SubmissionID
	RegistrationID id.RegistrationID
	UserID         id.UserID
	Version        string
	SessionID      string
	CreatedAt      time.Time
}

// SurveyDetail stores one question's raw serialized response.
type SurveyDetail struct {
	ID           int64
	SubmissionID id.SubmissionID
	QuestionID   string
	Raw          []byte
}

// DeletedRegistration pairs a purged registration with the course id resolved
// from its rule scope, so callers can notify dependent systems. CourseID is
// empty when the reverse lookup found nothing or was ambiguous.
type DeletedRegistration struct {
	Registration Registration
	CourseID     id.CourseID
}
