package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"certifica/internal/certificate/archive"
	"certifica/internal/certificate/models"
	"certifica/internal/tracing"
	dErrors "certifica/pkg/domain-errors"
	pkgstring "certifica/pkg/string"
)

// SubjectResult is the per-subject outcome of a batch issuance. Exactly one
// of Record or Err is set.
type SubjectResult struct {
	SubjectName string
	Record      *models.CertificateRecord
	Document    []byte
	Warnings    []Warning
	Err         error
}

// BatchResult is the outcome of a batch issuance. Results preserves the order
// subjects appeared in the input, including failed ones. Archive is a zip of
// every successfully rendered document.
type BatchResult struct {
	BatchID string
	Results []SubjectResult
	Issued  int
	Failed  int
	Archive []byte
}

// IssueBatch issues one certificate per subject parsed from subjectsRaw,
// sharing the remaining attributes. Subjects are separated by newlines or
// semicolons; blank entries are dropped.
//
// A failed subject never aborts the batch. Failures are collected in order
// next to the successes so the caller can report both.
func (s *Service) IssueBatch(ctx context.Context, subjectsRaw string, shared Attributes) (result *BatchResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanIssueBatch)
	defer func() { span.End(err) }()

	subjects := pkgstring.SplitSubjects(subjectsRaw)
	if len(subjects) == 0 {
		err = dErrors.New(dErrors.CodeValidation, "at least one subject name is required")
		return nil, err
	}

	span.SetAttributes(tracing.Int64(tracing.AttrSubjects, int64(len(subjects))))
	if s.metrics != nil {
		s.metrics.BatchSubjects.Observe(float64(len(subjects)))
	}

	results := make([]SubjectResult, len(subjects))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, subject := range subjects {
		g.Go(func() error {
			attrs := shared
			attrs.SubjectName = subject
			issued, issueErr := s.Issue(gctx, attrs)
			if issueErr != nil {
				results[i] = SubjectResult{SubjectName: subject, Err: issueErr}
				return nil
			}
			results[i] = SubjectResult{
				SubjectName: issued.Record.SubjectName,
				Record:      &issued.Record,
				Document:    issued.Document,
				Warnings:    issued.Warnings,
			}
			return nil
		})
	}
	// Workers report per-subject failures through results, never through the
	// group, so Wait only joins them.
	_ = g.Wait()

	result = &BatchResult{
		BatchID: uuid.New().String(),
		Results: results,
	}

	var entries []archive.Entry
	for _, r := range results {
		if r.Err != nil {
			result.Failed++
			continue
		}
		result.Issued++
		if len(r.Document) > 0 {
			entries = append(entries, archive.Entry{
				Name: archive.DocumentName(r.SubjectName, ".html"),
				Data: r.Document,
			})
		}
	}

	if len(entries) > 0 {
		zipped, zipErr := archive.Build(entries)
		if zipErr != nil {
			s.logger.ErrorContext(ctx, "could not build batch archive",
				"batch_id", result.BatchID,
				"error", zipErr,
			)
		} else {
			result.Archive = zipped
		}
	}

	s.logger.InfoContext(ctx, "batch issuance finished",
		"batch_id", result.BatchID,
		"subjects", len(subjects),
		"issued", result.Issued,
		"failed", result.Failed,
	)
	return result, nil
}
