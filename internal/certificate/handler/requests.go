package handler

import (
	"encoding/base64"
	"fmt"
	"time"

	"certifica/internal/certificate/models"
	"certifica/internal/certificate/service"
	dErrors "certifica/pkg/domain-errors"
)

// IssueRequest is the JSON body for issuing a single certificate.
type IssueRequest struct {
	SubjectName string `json:"subject_name"`
	EventName   string `json:"event_name"`
	Workload    string `json:"workload"`
	Role        string `json:"role"`
	Institution string `json:"institution"`
	City        string `json:"city"`
	EventDate   string `json:"event_date"`
	Notes       string `json:"notes"`
	LogoBase64  string `json:"logo_base64,omitempty"`
}

// eventDateLayouts are the accepted wire forms for event_date. The display
// layout comes first since that is what operators see on the documents.
var eventDateLayouts = []string{models.DateLayout, "2006-01-02"}

func parseEventDate(raw string) (time.Time, error) {
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, dErrors.New(dErrors.CodeValidation,
		fmt.Sprintf("event_date must be in %s format", models.DateLayout))
}

// ToAttributes converts the wire request into issuance attributes. Field
// presence checks stay in the service; only wire-format conversions can fail
// here.
func (r *IssueRequest) ToAttributes() (service.Attributes, error) {
	if r == nil {
		return service.Attributes{}, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	role, err := models.ParseRole(r.Role)
	if err != nil {
		return service.Attributes{}, dErrors.New(dErrors.CodeValidation, err.Error())
	}

	eventDate, err := parseEventDate(r.EventDate)
	if err != nil {
		return service.Attributes{}, err
	}

	var logo []byte
	if r.LogoBase64 != "" {
		logo, err = base64.StdEncoding.DecodeString(r.LogoBase64)
		if err != nil {
			return service.Attributes{}, dErrors.New(dErrors.CodeValidation, "logo_base64 is not valid base64")
		}
	}

	return service.Attributes{
		SubjectName: r.SubjectName,
		EventName:   r.EventName,
		Workload:    r.Workload,
		Role:        role,
		Institution: r.Institution,
		City:        r.City,
		EventDate:   eventDate,
		Notes:       r.Notes,
		Logo:        logo,
	}, nil
}

// BatchIssueRequest is the JSON body for issuing one certificate per subject.
// Subjects are separated by newlines or semicolons; the embedded fields are
// shared by every subject and subject_name is ignored.
type BatchIssueRequest struct {
	Subjects string `json:"subjects"`
	IssueRequest
}

// ToAttributes converts the shared batch fields into issuance attributes.
func (r *BatchIssueRequest) ToAttributes() (service.Attributes, error) {
	if r == nil {
		return service.Attributes{}, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	attrs, err := r.IssueRequest.ToAttributes()
	if err != nil {
		return service.Attributes{}, err
	}
	attrs.SubjectName = ""
	return attrs, nil
}
