// Package service orchestrates certificate issuance and verification: code
// derivation, the collision-retry contract against the store, document
// rendering and the optional external sync notification.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"certifica/internal/certificate/codes"
	"certifica/internal/certificate/models"
	"certifica/internal/certificate/store"
	"certifica/internal/platform/metrics"
	"certifica/internal/tracing"
	dErrors "certifica/pkg/domain-errors"
	pkgstring "certifica/pkg/string"
	"certifica/pkg/validation"
)

// Renderer produces the visual document for a finalized record. It receives a
// fully-populated record and must not re-derive or re-validate anything.
type Renderer interface {
	Render(ctx context.Context, record models.CertificateRecord, assets RenderAssets) ([]byte, error)
}

// RenderAssets carries the optional visual inputs for rendering. Absence of
// either asset is a normal, typed case, not a failure.
type RenderAssets struct {
	Logo []byte
	QR   []byte
}

// QREncoder rasterizes a verification URL into image bytes for embedding.
type QREncoder interface {
	Encode(url string) ([]byte, error)
}

// Syncer pushes an issued record to the external sync collaborator. Its
// outcome never affects the store: a failed push is reported as a warning,
// not rolled back.
type Syncer interface {
	Push(ctx context.Context, record models.CertificateRecord) error
}

// Attributes describe one credential to issue. The issuance date is fixed
// server-side and is deliberately absent here.
type Attributes struct {
	SubjectName string      `validate:"required,notblank,max=200"`
	EventName   string      `validate:"required,notblank,max=200"`
	Workload    string      `validate:"required,notblank,max=100"`
	Role        models.Role `validate:"required"`
	Institution string      `validate:"required,notblank,max=200"`
	City        string      `validate:"max=120"`
	EventDate   time.Time   `validate:"required"`
	Notes       string      `validate:"max=2000"`
	Logo        []byte      `validate:"-"`
}

func (a *Attributes) trim() {
	pkgstring.TrimStrings(&a.SubjectName, &a.EventName, &a.Workload, &a.Institution, &a.City, &a.Notes)
}

// Warning is a non-fatal condition attached to an otherwise successful issuance.
type Warning struct {
	Code    dErrors.Code `json:"code"`
	Message string       `json:"message"`
}

// IssueResult is the outcome of a successful issuance. Document is nil when
// rendering failed; the corresponding warning explains why.
type IssueResult struct {
	Record   models.CertificateRecord
	Document []byte
	Warnings []Warning
}

// Option configures the certificate service.
type Option func(*Service)

// Service implements the issuance and verification workflows.
type Service struct {
	store    store.Store
	renderer Renderer
	qr       QREncoder
	syncer   Syncer

	secret        string
	verifyBaseURL string

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracing.Tracer

	clock            func() time.Time
	nonce            func() string
	batchConcurrency int
}

// NewService creates a certificate service. The secret and verification base
// URL are passed explicitly; nothing reads them from process-wide state.
func NewService(st store.Store, renderer Renderer, secret, verifyBaseURL string, opts ...Option) *Service {
	svc := &Service{
		store:            st,
		renderer:         renderer,
		secret:           secret,
		verifyBaseURL:    verifyBaseURL,
		logger:           slog.New(slog.DiscardHandler),
		tracer:           tracing.NewNoop(),
		clock:            time.Now,
		batchConcurrency: 4,
	}
	svc.nonce = func() string { return svc.clock().Format(time.RFC3339Nano) }
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithSyncer configures the optional external sync collaborator.
func WithSyncer(syncer Syncer) Option {
	return func(s *Service) { s.syncer = syncer }
}

// WithQREncoder configures the optional QR collaborator.
func WithQREncoder(qr QREncoder) Option {
	return func(s *Service) { s.qr = qr }
}

// WithLogger configures a logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics configures application metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer configures a tracer for the service.
func WithTracer(t tracing.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithClock overrides the issuance clock. Used by tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithNonce overrides the collision nonce source. Used by tests.
func WithNonce(nonce func() string) Option {
	return func(s *Service) { s.nonce = nonce }
}

// WithBatchConcurrency bounds per-subject parallelism in batch issuance.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// Issue validates the attributes, derives the code pair, persists the record
// and hands it to the rendering and sync collaborators.
//
// Exactly one durable write becomes visible per successful call: a tracking
// code collision is recovered once by re-deriving with a timestamp nonce, and
// a second collision aborts the issuance rather than looping.
func (s *Service) Issue(ctx context.Context, attrs Attributes) (result *IssueResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanIssue)
	defer func() { span.End(err) }()

	attrs.trim()
	if err = s.validateAttributes(attrs); err != nil {
		s.countFailure("validation")
		return nil, err
	}

	issuanceDate := s.clock()
	record := models.CertificateRecord{
		SubjectName:  attrs.SubjectName,
		EventName:    attrs.EventName,
		Workload:     attrs.Workload,
		Role:         attrs.Role,
		Institution:  attrs.Institution,
		City:         attrs.City,
		EventDate:    attrs.EventDate,
		IssuanceDate: issuanceDate,
		Notes:        attrs.Notes,
	}

	payload := codes.Payload(attrs.SubjectName, attrs.EventName, attrs.Workload, attrs.Role,
		attrs.Institution, attrs.EventDate, issuanceDate)
	record.TrackingCode, record.OriginalityCode = codes.Derive(payload, s.secret)
	record.VerificationURL = s.verificationURL(record.TrackingCode)

	if err = s.insertWithRetry(ctx, &record, payload, span); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CertificatesIssued.Inc()
	}
	span.SetAttributes(tracing.String(tracing.AttrTrackingCode, record.TrackingCode))
	s.logger.InfoContext(ctx, "certificate issued",
		"tracking_code", record.TrackingCode,
		"event", record.EventName,
	)

	result = &IssueResult{Record: record}
	result.Document, result.Warnings = s.finalize(ctx, record, attrs.Logo)
	return result, nil
}

// Verify answers an authenticity check for a trimmed tracking code. A missing
// record is the expected negative result (not_found), distinguishable from a
// store failure.
func (s *Service) Verify(ctx context.Context, code string) (record models.CertificateRecord, err error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanVerify)
	defer func() { span.End(err) }()

	code = strings.TrimSpace(code)
	if code == "" {
		err = dErrors.New(dErrors.CodeValidation, "tracking code is required")
		return models.CertificateRecord{}, err
	}

	record, err = s.store.FindByTrackingCode(ctx, code)
	switch {
	case err == nil:
		s.countVerification("authentic")
		span.SetAttributes(tracing.String(tracing.AttrVerifyResult, "authentic"))
		return record, nil
	case errors.Is(err, store.ErrNotFound):
		s.countVerification("not_found")
		span.SetAttributes(tracing.String(tracing.AttrVerifyResult, "not_found"))
		return models.CertificateRecord{}, err
	default:
		s.countVerification("error")
		err = dErrors.Wrap(err, dErrors.CodeInternal, "verification lookup failed")
		return models.CertificateRecord{}, err
	}
}

// ListAll returns every issued certificate, most recent first.
func (s *Service) ListAll(ctx context.Context) ([]models.CertificateRecord, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list certificates")
	}
	return records, nil
}

func (s *Service) validateAttributes(attrs Attributes) error {
	if err := validation.Validate(&attrs); err != nil {
		return err
	}
	if _, err := models.ParseRole(string(attrs.Role)); err != nil {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return nil
}

// insertWithRetry attempts the atomic insert, recovering a tracking code
// collision exactly once with a nonce-extended payload. A second collision
// under a fresh nonce indicates a broken store, not bad luck, so it is fatal.
func (s *Service) insertWithRetry(ctx context.Context, record *models.CertificateRecord, payload string, span tracing.Span) error {
	err := s.store.Insert(ctx, record)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrDuplicateTrackingCode) {
		s.countFailure("store")
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not persist certificate")
	}

	span.AddEvent(tracing.EventCollisionRetry)
	if s.metrics != nil {
		s.metrics.CodeCollisions.Inc()
	}
	s.logger.WarnContext(ctx, "tracking code collision, retrying with nonce",
		"tracking_code", record.TrackingCode,
	)

	retryPayload := codes.WithNonce(payload, s.nonce())
	record.TrackingCode, record.OriginalityCode = codes.Derive(retryPayload, s.secret)
	record.VerificationURL = s.verificationURL(record.TrackingCode)

	if err := s.store.Insert(ctx, record); err != nil {
		s.countFailure("collision_retry")
		if errors.Is(err, store.ErrDuplicateTrackingCode) {
			// Wrap would keep the conflict code; a second collision is a
			// different, terminal condition.
			return &dErrors.Error{
				Code:    dErrors.CodeIssuanceFailed,
				Message: "tracking code collided again after nonce retry",
				Err:     err,
			}
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not persist certificate")
	}
	return nil
}

// finalize runs the post-persistence collaborators. The record is already
// durable; nothing here may fail the issuance.
func (s *Service) finalize(ctx context.Context, record models.CertificateRecord, logo []byte) ([]byte, []Warning) {
	var warnings []Warning

	var qrBytes []byte
	if s.qr != nil {
		encoded, err := s.qr.Encode(record.VerificationURL)
		if err != nil {
			// The document is still valid without the QR symbol; both codes
			// are printed on it.
			s.logger.WarnContext(ctx, "qr encoding failed, rendering without qr",
				"tracking_code", record.TrackingCode,
				"error", err,
			)
		} else {
			qrBytes = encoded
		}
	}

	document, err := s.renderer.Render(ctx, record, RenderAssets{Logo: logo, QR: qrBytes})
	if err != nil {
		warnings = append(warnings, Warning{
			Code:    dErrors.CodeRenderFailed,
			Message: "document rendering failed; certificate remains issued",
		})
		s.logger.ErrorContext(ctx, "document rendering failed",
			"tracking_code", record.TrackingCode,
			"error", err,
		)
		document = nil
	}

	if s.syncer != nil {
		if err := s.syncer.Push(ctx, record); err != nil {
			warnings = append(warnings, Warning{
				Code:    dErrors.CodeSyncFailed,
				Message: "external sync failed; certificate remains issued",
			})
			if s.metrics != nil {
				s.metrics.SyncFailures.Inc()
			}
			s.logger.WarnContext(ctx, "external sync failed",
				"tracking_code", record.TrackingCode,
				"error", err,
			)
		}
	}

	return document, warnings
}

func (s *Service) verificationURL(trackingCode string) string {
	u, err := url.Parse(s.verifyBaseURL)
	if err != nil {
		return s.verifyBaseURL + "?verificar=" + url.QueryEscape(trackingCode)
	}
	q := u.Query()
	q.Set("verificar", trackingCode)
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Service) countFailure(reason string) {
	if s.metrics != nil {
		s.metrics.IssuanceFailures.WithLabelValues(reason).Inc()
	}
}

func (s *Service) countVerification(result string) {
	if s.metrics != nil {
		s.metrics.Verifications.WithLabelValues(result).Inc()
	}
}
