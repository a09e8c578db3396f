package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is the participation condition printed on a certificate.
type Role string

const (
	RoleParticipant Role = "Participant"
	RoleSpeaker     Role = "Speaker"
	RoleOrganizer   Role = "Organizer"
	RoleModerator   Role = "Moderator"
	RoleCommittee   Role = "Committee"
)

// Roles lists every accepted participation role, in display order.
func Roles() []Role {
	return []Role{RoleParticipant, RoleSpeaker, RoleOrganizer, RoleModerator, RoleCommittee}
}

// ParseRole validates a role string against the fixed enumeration.
// Matching is case-insensitive; the canonical form is returned.
func ParseRole(raw string) (Role, error) {
	trimmed := strings.TrimSpace(raw)
	for _, r := range Roles() {
		if strings.EqualFold(trimmed, string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

func (r Role) String() string {
	return string(r)
}

// DateLayout is the display layout for event and issuance dates. It is also
// the form the dates take inside the derivation payload, so changing it
// changes every future code.
const DateLayout = "02/01/2006"

// CertificateRecord is the unit of truth for one issued credential.
// Descriptive attributes are set once at creation and never mutated; the
// tracking code is the globally unique lookup key.
type CertificateRecord struct {
	ID              int64     `json:"id"`
	SubjectName     string    `json:"subject_name"`
	EventName       string    `json:"event_name"`
	Workload        string    `json:"workload"`
	Role            Role      `json:"role"`
	Institution     string    `json:"institution"`
	City            string    `json:"city,omitempty"`
	EventDate       time.Time `json:"event_date"`
	IssuanceDate    time.Time `json:"issuance_date"`
	Notes           string    `json:"notes,omitempty"`
	TrackingCode    string    `json:"tracking_code"`
	OriginalityCode string    `json:"originality_code"`
	VerificationURL string    `json:"verification_url"`
	CreatedAt       time.Time `json:"created_at"`
}

// EventDateDisplay renders the event date in the certificate's date layout.
func (r CertificateRecord) EventDateDisplay() string {
	return r.EventDate.Format(DateLayout)
}

// IssuanceDateDisplay renders the issuance date in the certificate's date layout.
func (r CertificateRecord) IssuanceDateDisplay() string {
	return r.IssuanceDate.Format(DateLayout)
}
