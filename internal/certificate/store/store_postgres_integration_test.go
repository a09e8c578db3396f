//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"certifica/internal/certificate/models"
	"certifica/internal/certificate/store"
	"certifica/pkg/testutil/containers"
)

type PostgresStoreIntegrationSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.PostgresStore
}

func (s *PostgresStoreIntegrationSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.pg.DB)
}

func (s *PostgresStoreIntegrationSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "certificates"))
}

func TestPostgresStoreIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreIntegrationSuite))
}

func (s *PostgresStoreIntegrationSuite) record(trackingCode string) models.CertificateRecord {
	return models.CertificateRecord{
		SubjectName:     "Ana Lima",
		EventName:       "Workshop X",
		Workload:        "4 horas",
		Role:            models.RoleParticipant,
		Institution:     "Alfa Unipac",
		City:            "Teófilo Otoni",
		EventDate:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		IssuanceDate:    time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		TrackingCode:    trackingCode,
		OriginalityCode: "5EC3B1BDABE8",
		VerificationURL: "https://certs.example/verify?verificar=" + trackingCode,
	}
}

func (s *PostgresStoreIntegrationSuite) TestInsertAssignsIdentity() {
	ctx := context.Background()

	rec := s.record("458172.557523")
	s.Require().NoError(s.store.Insert(ctx, &rec))

	s.NotZero(rec.ID)
	s.False(rec.CreatedAt.IsZero())
}

func (s *PostgresStoreIntegrationSuite) TestInsertDuplicateTrackingCode() {
	ctx := context.Background()

	first := s.record("458172.557523")
	s.Require().NoError(s.store.Insert(ctx, &first))

	second := s.record("458172.557523")
	err := s.store.Insert(ctx, &second)
	s.Require().ErrorIs(err, store.ErrDuplicateTrackingCode)
}

func (s *PostgresStoreIntegrationSuite) TestFindByTrackingCode() {
	ctx := context.Background()

	rec := s.record("458172.557523")
	s.Require().NoError(s.store.Insert(ctx, &rec))

	found, err := s.store.FindByTrackingCode(ctx, " 458172.557523 ")
	s.Require().NoError(err)
	s.Equal(rec.ID, found.ID)
	s.Equal("Ana Lima", found.SubjectName)
	s.Equal(models.RoleParticipant, found.Role)
	s.Equal("Teófilo Otoni", found.City)
}

func (s *PostgresStoreIntegrationSuite) TestFindMissReturnsNotFound() {
	_, err := s.store.FindByTrackingCode(context.Background(), "000000.000000")
	s.Require().ErrorIs(err, store.ErrNotFound)
}

func (s *PostgresStoreIntegrationSuite) TestNullableFieldsRoundTrip() {
	ctx := context.Background()

	rec := s.record("111111.222222")
	rec.City = ""
	rec.Notes = ""
	s.Require().NoError(s.store.Insert(ctx, &rec))

	found, err := s.store.FindByTrackingCode(ctx, "111111.222222")
	s.Require().NoError(err)
	s.Empty(found.City)
	s.Empty(found.Notes)
}

func (s *PostgresStoreIntegrationSuite) TestListAllNewestFirst() {
	ctx := context.Background()

	for _, code := range []string{"111111.111111", "222222.222222", "333333.333333"} {
		rec := s.record(code)
		s.Require().NoError(s.store.Insert(ctx, &rec))
	}

	records, err := s.store.ListAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	s.Equal("333333.333333", records[0].TrackingCode)
	s.Equal("111111.111111", records[2].TrackingCode)
}
