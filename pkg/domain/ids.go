// Package domain holds the identifier primitives shared across rollbook.
//
// Internal identifiers are generator-assigned numeric surrogates; the only
// caller-supplied natural key in the system is a campaign's external id.
// Distinct named types keep the compiler from letting a registration id leak
// into a campaign lookup.
package domain

import (
	"fmt"
	"strings"
)

// CampaignID is the internal surrogate key for a registration campaign.
type CampaignID int64

// UserID is the internal surrogate key for a resolved user identity.
type UserID int64

// RegistrationID is the internal surrogate key for an accepted registration.
type RegistrationID int64

// SubmissionID is the internal surrogate key for a survey submission.
type SubmissionID int64

// CourseID is an opaque course catalog identifier (an NTIID-style string).
// Courses are not required to exist at rule insertion time, so this is never
// validated against the catalog here.
type CourseID string

// CampaignRef is the caller-supplied external campaign identifier.
type CampaignRef string

func (c CampaignID) IsNil() bool     { return c == 0 }
func (u UserID) IsNil() bool         { return u == 0 }
func (r RegistrationID) IsNil() bool { return r == 0 }
func (s SubmissionID) IsNil() bool   { return s == 0 }

func (c CourseID) String() string   { return string(c) }
func (c CampaignRef) String() string { return string(c) }

// ParseCampaignRef validates a caller-supplied campaign identifier at the
// trust boundary. Refs are opaque but must be non-blank.
func ParseCampaignRef(s string) (CampaignRef, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("campaign ref must not be blank")
	}
	return CampaignRef(s), nil
}
