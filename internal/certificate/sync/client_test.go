package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"certifica/internal/certificate/models"
	dErrors "certifica/pkg/domain-errors"
)

type SyncClientSuite struct {
	suite.Suite
	record models.CertificateRecord
}

func (s *SyncClientSuite) SetupTest() {
	s.record = models.CertificateRecord{
		SubjectName:     "Ana Lima",
		EventName:       "Workshop X",
		Workload:        "4 horas",
		Role:            models.RoleParticipant,
		Institution:     "Alfa Unipac",
		EventDate:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		IssuanceDate:    time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		TrackingCode:    "458172.557523",
		OriginalityCode: "5EC3B1BDABE8",
		VerificationURL: "https://certs.example/verify?verificar=458172.557523",
	}
}

func TestSyncClientSuite(t *testing.T) {
	suite.Run(t, new(SyncClientSuite))
}

func (s *SyncClientSuite) TestPushSendsRecordWithAPIKey() {
	var gotPath, gotKey string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "registry-key", 2*time.Second)
	err := client.Push(context.Background(), s.record)

	s.Require().NoError(err)
	s.Equal("/api/v1/certificates", gotPath)
	s.Equal("registry-key", gotKey)
	s.Equal("458172.557523", gotBody["tracking_code"])
	s.Equal("5EC3B1BDABE8", gotBody["originality_code"])
	s.Equal("Ana Lima", gotBody["subject_name"])
	s.NotContains(gotBody, "secret")
}

func (s *SyncClientSuite) TestPushNonSuccessStatusIsSyncFailed() {
	// Justification: the issuance workflow only branches on sync_failed, so
	// every upstream status outside 2xx must collapse into that one code.
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))

		client := NewHTTPClient(srv.URL, "key", 2*time.Second)
		err := client.Push(context.Background(), s.record)
		srv.Close()

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeSyncFailed), "status %d", status)
	}
}

func (s *SyncClientSuite) TestPushTimeoutIsSyncFailed() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "key", 50*time.Millisecond)
	err := client.Push(context.Background(), s.record)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeSyncFailed))
}

func (s *SyncClientSuite) TestPushUnreachableHostIsSyncFailed() {
	client := NewHTTPClient("http://127.0.0.1:1", "key", 500*time.Millisecond)
	err := client.Push(context.Background(), s.record)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeSyncFailed))
}
