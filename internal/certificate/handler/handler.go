// Package handler exposes the certificate engine over HTTP: operator-facing
// issuance endpoints, the public verification endpoint and the admin ledger
// views.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"certifica/internal/certificate/export"
	"certifica/internal/certificate/models"
	"certifica/internal/certificate/service"
	"certifica/internal/clientinfo"
	"certifica/internal/platform/metrics"
	"certifica/internal/platform/middleware"
	dErrors "certifica/pkg/domain-errors"
	"certifica/pkg/httputil"
)

// Service defines the certificate operations the handlers depend on.
type Service interface {
	Issue(ctx context.Context, attrs service.Attributes) (*service.IssueResult, error)
	IssueBatch(ctx context.Context, subjectsRaw string, shared service.Attributes) (*service.BatchResult, error)
	Verify(ctx context.Context, trackingCode string) (models.CertificateRecord, error)
	ListAll(ctx context.Context) ([]models.CertificateRecord, error)
}

// Handler handles certificate endpoints.
type Handler struct {
	logger       *slog.Logger
	certificates Service
	metrics      *metrics.Metrics
}

// New creates a new certificate Handler.
func New(certificates Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:       logger,
		certificates: certificates,
		metrics:      metrics,
	}
}

// RegisterIssuance registers the operator-guarded issuance routes.
func (h *Handler) RegisterIssuance(r chi.Router) {
	r.Post("/certificates", h.handleIssue)
	r.Post("/certificates/batch", h.handleIssueBatch)
}

// RegisterPublic registers the unauthenticated verification route.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/verify", h.handleVerify)
}

// RegisterAdmin registers the ledger listing and export routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/certificates", h.handleList)
	r.Get("/certificates/export", h.handleExport)
}

func (h *Handler) observeLatency(endpoint string, start time.Time) {
	if h.metrics != nil {
		h.metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observeLatency("issue", time.Now())
	requestID := middleware.GetRequestID(ctx)

	var req IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode issue request",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	attrs, err := req.ToAttributes()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.certificates.Issue(ctx, attrs)
	if err != nil {
		h.logger.ErrorContext(ctx, "issuance failed",
			"request_id", requestID,
			"operator", middleware.GetOperator(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, IssueResponse{
		Certificate: result.Record,
		Document:    result.Document,
		Warnings:    result.Warnings,
	})
}

func (h *Handler) handleIssueBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observeLatency("issue_batch", time.Now())
	requestID := middleware.GetRequestID(ctx)

	var req BatchIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode batch request",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	attrs, err := req.ToAttributes()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.certificates.IssueBatch(ctx, req.Subjects, attrs)
	if err != nil {
		h.logger.ErrorContext(ctx, "batch issuance failed",
			"request_id", requestID,
			"operator", middleware.GetOperator(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "zip" {
		if len(result.Archive) == 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no documents were rendered for this batch"))
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="certificados_%s.zip"`, result.BatchID))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Archive)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toBatchResponse(result))
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observeLatency("verify", time.Now())

	client := clientinfo.Describe(r.UserAgent())
	if h.metrics != nil {
		h.metrics.VerifierPlatform.WithLabelValues(client.Platform).Inc()
	}

	trackingCode := r.URL.Query().Get("verificar")
	record, err := h.certificates.Verify(ctx, trackingCode)
	switch {
	case err == nil:
		h.logger.InfoContext(ctx, "certificate verified",
			"request_id", middleware.GetRequestID(ctx),
			"tracking_code", record.TrackingCode,
			"client_platform", client.Platform,
			"client_os", client.OS,
		)
		httputil.WriteJSON(w, http.StatusOK, VerifyResponse{
			Authentic:   true,
			Certificate: &record,
			Message:     "certificado autêntico",
		})
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		// A miss still gets the verification envelope, not a bare error.
		httputil.WriteJSON(w, http.StatusNotFound, VerifyResponse{
			Authentic: false,
			Message:   "nenhum certificado encontrado para este código",
		})
	default:
		h.logger.ErrorContext(ctx, "verification failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observeLatency("list", time.Now())

	records, err := h.certificates.ListAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "ledger listing failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ListResponse{
		Certificates: records,
		Count:        len(records),
	})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observeLatency("export", time.Now())

	records, err := h.certificates.ListAll(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	var (
		data        []byte
		contentType string
		filename    string
	)
	switch format {
	case "csv":
		data, err = export.CSV(records)
		contentType = "text/csv; charset=utf-8"
		filename = "certificados.csv"
	case "xlsx":
		data, err = export.XLSX(records)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = "certificados.xlsx"
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "format must be csv or xlsx"))
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "ledger export failed",
			"request_id", middleware.GetRequestID(ctx),
			"format", format,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
