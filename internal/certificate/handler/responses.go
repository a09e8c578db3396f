package handler

import (
	"errors"

	"certifica/internal/certificate/models"
	"certifica/internal/certificate/service"
	dErrors "certifica/pkg/domain-errors"
)

// IssueResponse is the JSON reply for a single issuance. Document carries the
// rendered HTML base64-encoded; it is absent when rendering failed and the
// warnings explain why.
type IssueResponse struct {
	Certificate models.CertificateRecord `json:"certificate"`
	Document    []byte                   `json:"document,omitempty"`
	Warnings    []service.Warning        `json:"warnings,omitempty"`
}

// BatchSubjectResponse is the per-subject outcome inside a batch reply.
type BatchSubjectResponse struct {
	SubjectName string                    `json:"subject_name"`
	Certificate *models.CertificateRecord `json:"certificate,omitempty"`
	Error       string                    `json:"error,omitempty"`
	ErrorCode   string                    `json:"error_code,omitempty"`
	Warnings    []service.Warning         `json:"warnings,omitempty"`
}

// BatchIssueResponse is the JSON reply for a batch issuance.
type BatchIssueResponse struct {
	BatchID string                 `json:"batch_id"`
	Issued  int                    `json:"issued"`
	Failed  int                    `json:"failed"`
	Results []BatchSubjectResponse `json:"results"`
}

func toBatchResponse(result *service.BatchResult) BatchIssueResponse {
	res := BatchIssueResponse{
		BatchID: result.BatchID,
		Issued:  result.Issued,
		Failed:  result.Failed,
		Results: make([]BatchSubjectResponse, 0, len(result.Results)),
	}
	for _, r := range result.Results {
		subject := BatchSubjectResponse{
			SubjectName: r.SubjectName,
			Certificate: r.Record,
			Warnings:    r.Warnings,
		}
		if r.Err != nil {
			subject.Error = r.Err.Error()
			subject.ErrorCode = string(errorCode(r.Err))
		}
		res.Results = append(res.Results, subject)
	}
	return res
}

func errorCode(err error) dErrors.Code {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return dErrors.CodeInternal
}

// ListResponse is the JSON reply for the full ledger listing.
type ListResponse struct {
	Certificates []models.CertificateRecord `json:"certificates"`
	Count        int                        `json:"count"`
}

// VerifyResponse is the public verification reply. A missing record is a
// successful verification with a negative answer, not an error.
type VerifyResponse struct {
	Authentic   bool                      `json:"authentic"`
	Certificate *models.CertificateRecord `json:"certificate,omitempty"`
	Message     string                    `json:"message"`
}
