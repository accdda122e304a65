package handler

import (
	"time"

	"rollbook/internal/registration/models"
	"rollbook/internal/registration/service"
)

// RegistrationResponse is the wire form of a stored registration.
type RegistrationResponse struct {
	ID            int64     `json:"id"`
	School        string    `json:"school"`
	GradeTeaching string    `json:"grade_teaching"`
	Curriculum    string    `json:"curriculum"`
	Phone         string    `json:"phone,omitempty"`
	EmployeeID    string    `json:"employee_id,omitempty"`
	SessionRange  string    `json:"session_range,omitempty"`
	SessionID     string    `json:"session_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// FromRegistration converts a domain registration to its wire form.
func FromRegistration(reg models.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:            int64(reg.ID),
		School:        reg.School,
		GradeTeaching: reg.GradeTeaching,
		Curriculum:    reg.Curriculum,
		Phone:         reg.Phone,
		EmployeeID:    reg.EmployeeID,
		SessionRange:  reg.SessionRange,
		SessionID:     reg.SessionID,
		CreatedAt:     reg.CreatedAt,
	}
}

// ValidateResponse is the HTTP response for POST /registrations/validate.
type ValidateResponse struct {
	Curriculum string `json:"curriculum"`
}

// SurveyResponse is the wire form of a submitted survey.
type SurveyResponse struct {
	ID        int64          `json:"id"`
	Version   string         `json:"version"`
	SessionID string         `json:"session_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Answers   map[string]any `json:"answers,omitempty"`
}

// FromSurvey converts a decoded survey to its wire form.
func FromSurvey(survey service.Survey) SurveyResponse {
	return SurveyResponse{
		ID:        int64(survey.Submission.ID),
		Version:   survey.Submission.Version,
		SessionID: survey.Submission.SessionID,
		CreatedAt: survey.Submission.CreatedAt,
		Answers:   survey.Answers,
	}
}

// ReplaceResponse reports a bulk replacement.
type ReplaceResponse struct {
	Inserted int `json:"inserted"`
}

// DeletedRegistrationResponse pairs a purged registration with its resolved
// course.
type DeletedRegistrationResponse struct {
	Registration RegistrationResponse `json:"registration"`
	CourseID     string               `json:"course_id,omitempty"`
}

// QuestionsResponse lists the known survey question ids for a campaign.
type QuestionsResponse struct {
	QuestionIDs []string `json:"question_ids"`
}
