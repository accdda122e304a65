package handler

import (
	"strings"

	"rollbook/internal/registration/models"
	id "rollbook/pkg/domain"
	dErrors "rollbook/pkg/domain-errors"
)

// RegisterRequest is the HTTP request body for POST /registrations.
type RegisterRequest struct {
	Campaign      string `json:"campaign"`
	School        string `json:"school"`
	GradeTeaching string `json:"grade_teaching"`
	CourseID      string `json:"course_id"`
	Phone         string `json:"phone"`
	EmployeeID    string `json:"employee_id"`
	SessionRange  string `json:"session_range"`

	parsedCampaign id.CampaignRef
}

// Validate validates and parses the request.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	campaign, err := parseCampaign(r.Campaign)
	if err != nil {
		return err
	}
	r.parsedCampaign = campaign

	r.School = strings.TrimSpace(r.School)
	if r.School == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "school is required")
	}
	r.GradeTeaching = strings.TrimSpace(r.GradeTeaching)
	if r.GradeTeaching == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "grade_teaching is required")
	}
	r.CourseID = strings.TrimSpace(r.CourseID)
	if r.CourseID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "course_id is required")
	}
	return nil
}

// Payload converts the request into the service payload.
func (r *RegisterRequest) Payload() models.RegistrationPayload {
	return models.RegistrationPayload{
		School:        r.School,
		GradeTeaching: r.GradeTeaching,
		CourseID:      id.CourseID(r.CourseID),
		Phone:         r.Phone,
		EmployeeID:    r.EmployeeID,
		SessionRange:  r.SessionRange,
	}
}

// ValidateRequest is the HTTP request body for POST /registrations/validate.
type ValidateRequest struct {
	Campaign      string `json:"campaign"`
	School        string `json:"school"`
	GradeTeaching string `json:"grade_teaching"`
	CourseID      string `json:"course_id"`

	parsedCampaign id.CampaignRef
}

func (r *ValidateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	campaign, err := parseCampaign(r.Campaign)
	if err != nil {
		return err
	}
	r.parsedCampaign = campaign
	return nil
}

// SubmitSurveyRequest is the HTTP request body for POST /surveys.
type SubmitSurveyRequest struct {
	Campaign string         `json:"campaign"`
	Version  string         `json:"version"`
	Answers  map[string]any `json:"answers"`

	parsedCampaign id.CampaignRef
}

func (r *SubmitSurveyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	campaign, err := parseCampaign(r.Campaign)
	if err != nil {
		return err
	}
	r.parsedCampaign = campaign
	if len(r.Answers) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "answers are required")
	}
	return nil
}

// ReplaceRulesRequest is the HTTP request body for PUT /campaigns/{campaign}/rules.
type ReplaceRulesRequest struct {
	Truncate bool              `json:"truncate"`
	Rules    []models.RuleSpec `json:"rules"`
}

func (r *ReplaceRulesRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Rules) == 0 && !r.Truncate {
		return dErrors.New(dErrors.CodeInvalidInput, "rules are required unless truncate is set")
	}
	return nil
}

// ReplaceSessionsRequest is the HTTP request body for PUT /campaigns/{campaign}/sessions.
type ReplaceSessionsRequest struct {
	Truncate bool                 `json:"truncate"`
	Sessions []models.SessionSpec `json:"sessions"`
}

func (r *ReplaceSessionsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Sessions) == 0 && !r.Truncate {
		return dErrors.New(dErrors.CodeInvalidInput, "sessions are required unless truncate is set")
	}
	return nil
}

func parseCampaign(raw string) (id.CampaignRef, error) {
	campaign, err := id.ParseCampaignRef(strings.TrimSpace(raw))
	if err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "campaign is required")
	}
	return campaign, nil
}
