// Package sync pushes issued certificate records to an external registry over
// HTTP. The push is strictly best-effort: the caller treats any failure as a
// warning, so this client reports every failure mode under a single code and
// never retries on its own.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"certifica/internal/certificate/models"
	"certifica/internal/certificate/service"
	dErrors "certifica/pkg/domain-errors"
)

// HTTPClient implements service.Syncer by posting records to an external
// certificate registry.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

var _ service.Syncer = (*HTTPClient)(nil)

// HTTPClientOption configures the HTTPClient.
type HTTPClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) HTTPClientOption {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// NewHTTPClient creates a new HTTP-based sync client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, opts ...HTTPClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// syncRequest is the wire form of a pushed record. The secret never crosses
// this boundary; only derived codes do.
type syncRequest struct {
	SubjectName     string `json:"subject_name"`
	EventName       string `json:"event_name"`
	Workload        string `json:"workload"`
	Role            string `json:"role"`
	Institution     string `json:"institution"`
	City            string `json:"city,omitempty"`
	EventDate       string `json:"event_date"`
	IssuanceDate    string `json:"issuance_date"`
	TrackingCode    string `json:"tracking_code"`
	OriginalityCode string `json:"originality_code"`
	VerificationURL string `json:"verification_url"`
}

// Push sends one issued record to the external registry. All failure modes
// collapse into sync_failed: the caller only decides "warn or not", never
// branches on the transport detail.
func (c *HTTPClient) Push(ctx context.Context, record models.CertificateRecord) error {
	reqBody, err := json.Marshal(syncRequest{
		SubjectName:     record.SubjectName,
		EventName:       record.EventName,
		Workload:        record.Workload,
		Role:            record.Role.String(),
		Institution:     record.Institution,
		City:            record.City,
		EventDate:       record.EventDate.Format(time.RFC3339),
		IssuanceDate:    record.IssuanceDate.Format(time.RFC3339),
		TrackingCode:    record.TrackingCode,
		OriginalityCode: record.OriginalityCode,
		VerificationURL: record.VerificationURL,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeSyncFailed, "could not marshal sync request")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/api/v1/certificates", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeSyncFailed, "could not create sync request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return dErrors.Wrap(err, dErrors.CodeSyncFailed, "sync request timed out")
		}
		return dErrors.Wrap(err, dErrors.CodeSyncFailed, "could not reach sync endpoint")
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return dErrors.New(dErrors.CodeSyncFailed,
			fmt.Sprintf("sync endpoint returned status %d", resp.StatusCode))
	}
	return nil
}
