package service_test

import (
	"context"
	"errors"

	"go.uber.org/mock/gomock"

	"certifica/internal/certificate/codes"
	"certifica/internal/certificate/models"
	"certifica/internal/certificate/service"
	"certifica/internal/certificate/store"
	dErrors "certifica/pkg/domain-errors"
)

// expectedCodes recomputes the code pair the service must derive for the
// default attributes under the pinned clock.
func expectedCodes() (string, string) {
	attrs := validAttributes()
	payload := codes.Payload(attrs.SubjectName, attrs.EventName, attrs.Workload, attrs.Role,
		attrs.Institution, attrs.EventDate, fixedIssuance)
	return codes.Derive(payload, testSecret)
}

func (s *ServiceSuite) TestIssueHappyPath() {
	tracking, originality := expectedCodes()

	s.mockStore.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *models.CertificateRecord) error {
			rec.ID = 1
			rec.CreatedAt = fixedIssuance
			return nil
		})
	s.mockRenderer.EXPECT().
		Render(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte("<html>doc</html>"), nil)

	result, err := s.newService().Issue(context.Background(), validAttributes())

	s.Require().NoError(err)
	s.Equal(tracking, result.Record.TrackingCode)
	s.Equal(originality, result.Record.OriginalityCode)
	s.Equal(testBaseURL+"?verificar="+tracking, result.Record.VerificationURL)
	s.Equal(fixedIssuance, result.Record.IssuanceDate)
	s.Equal([]byte("<html>doc</html>"), result.Document)
	s.Empty(result.Warnings)
}

func (s *ServiceSuite) TestIssueTrimsAttributes() {
	// Justification: the derivation payload is built from the stored values,
	// so padding must be stripped before hashing or the printed codes would
	// depend on invisible whitespace.
	tracking, _ := expectedCodes()

	s.mockStore.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *models.CertificateRecord) error {
			s.Equal("Ana Lima", rec.SubjectName)
			return nil
		})
	s.mockRenderer.EXPECT().
		Render(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte("doc"), nil)

	attrs := validAttributes()
	attrs.SubjectName = "  Ana Lima  "
	attrs.Institution = "Alfa Unipac "

	result, err := s.newService().Issue(context.Background(), attrs)

	s.Require().NoError(err)
	s.Equal(tracking, result.Record.TrackingCode)
}

func (s *ServiceSuite) TestIssueValidationFailureHasNoSideEffects() {
	// No EXPECT on any mock: a validation failure must not touch the store,
	// the renderer or the syncer.
	svc := s.newService(service.WithSyncer(s.mockSyncer))

	attrs := validAttributes()
	attrs.SubjectName = "   "

	result, err := svc.Issue(context.Background(), attrs)

	s.Require().Error(err)
	s.Nil(result)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestIssueRejectsUnknownRole() {
	attrs := validAttributes()
	attrs.Role = "Wizard"

	result, err := s.newService().Issue(context.Background(), attrs)

	s.Require().Error(err)
	s.Nil(result)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestIssueRecoversCollisionWithNonce() {
	attrs := validAttributes()
	payload := codes.Payload(attrs.SubjectName, attrs.EventName, attrs.Workload, attrs.Role,
		attrs.Institution, attrs.EventDate, fixedIssuance)
	firstTracking, _ := codes.Derive(payload, testSecret)
	retryTracking, retryOriginality := codes.Derive(codes.WithNonce(payload, testNonce), testSecret)

	gomock.InOrder(
		s.mockStore.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, rec *models.CertificateRecord) error {
				s.Equal(firstTracking, rec.TrackingCode)
				return store.ErrDuplicateTrackingCode
			}),
		s.mockStore.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, rec *models.CertificateRecord) error {
				s.Equal(retryTracking, rec.TrackingCode)
				rec.ID = 2
				return nil
			}),
	)
	s.mockRenderer.EXPECT().
		Render(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte("doc"), nil)

	result, err := s.newService().Issue(context.Background(), attrs)

	s.Require().NoError(err)
	s.Equal(retryTracking, result.Record.TrackingCode)
	s.Equal(retryOriginality, result.Record.OriginalityCode)
	s.Equal(testBaseURL+"?verificar="+retryTracking, result.Record.VerificationURL)
	s.Empty(result.Warnings)
}

func (s *ServiceSuite) TestIssueFailsAfterSecondCollision() {
	s.mockStore.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(store.ErrDuplicateTrackingCode).
		Times(2)

	result, err := s.newService().Issue(context.Background(), validAttributes())

	s.Require().Error(err)
	s.Nil(result)
	s.True(dErrors.HasCode(err, dErrors.CodeIssuanceFailed))
}

func (s *ServiceSuite) TestIssueStoreFailureIsInternal() {
	s.mockStore.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(errors.New("connection refused"))

	result, err := s.newService().Issue(context.Background(), validAttributes())

	s.Require().Error(err)
	s.Nil(result)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestIssueRenderFailureIsWarning() {
	// Justification: the record is durable before rendering starts, so a
	// rendering failure must degrade to a warning instead of undoing the
	// issuance.
	s.mockStore.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(nil)
	s.mockRenderer.EXPECT().
		Render(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("template exploded"))

	result, err := s.newService().Issue(context.Background(), validAttributes())

	s.Require().NoError(err)
	s.Nil(result.Document)
	s.Require().Len(result.Warnings, 1)
	s.Equal(dErrors.CodeRenderFailed, result.Warnings[0].Code)
	s.NotEmpty(result.Record.TrackingCode)
}

func (s *ServiceSuite) TestIssueSyncFailureIsWarning() {
	s.mockStore.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(nil)
	s.mockRenderer.EXPECT().
		Render(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte("doc"), nil)
	s.mockSyncer.EXPECT().
		Push(gomock.Any(), gomock.Any()).
		Return(dErrors.New(dErrors.CodeSyncFailed, "upstream said 503"))

	svc := s.newService(service.WithSyncer(s.mockSyncer))
	result, err := svc.Issue(context.Background(), validAttributes())

	s.Require().NoError(err)
	s.Equal([]byte("doc"), result.Document)
	s.Require().Len(result.Warnings, 1)
	s.Equal(dErrors.CodeSyncFailed, result.Warnings[0].Code)
}

func (s *ServiceSuite) TestIssueQRFailureRendersWithoutSymbol() {
	s.mockStore.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(nil)
	s.mockQR.EXPECT().
		Encode(gomock.Any()).
		Return(nil, errors.New("encoder down"))
	s.mockRenderer.EXPECT().
		Render(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.CertificateRecord, assets service.RenderAssets) ([]byte, error) {
			s.Nil(assets.QR)
			return []byte("doc"), nil
		})

	svc := s.newService(service.WithQREncoder(s.mockQR))
	result, err := svc.Issue(context.Background(), validAttributes())

	s.Require().NoError(err)
	s.Empty(result.Warnings)
}

func (s *ServiceSuite) TestIssueEmbedsQRWhenAvailable() {
	s.mockStore.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(nil)
	s.mockQR.EXPECT().
		Encode(gomock.Any()).
		DoAndReturn(func(url string) ([]byte, error) {
			s.Contains(url, "?verificar=")
			return []byte{0x89, 0x50}, nil
		})
	s.mockRenderer.EXPECT().
		Render(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.CertificateRecord, assets service.RenderAssets) ([]byte, error) {
			s.Equal([]byte{0x89, 0x50}, assets.QR)
			return []byte("doc"), nil
		})

	svc := s.newService(service.WithQREncoder(s.mockQR))
	_, err := svc.Issue(context.Background(), validAttributes())
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestVerifyAuthentic() {
	rec := models.CertificateRecord{ID: 7, TrackingCode: "458172.557523", SubjectName: "Ana Lima"}
	s.mockStore.EXPECT().
		FindByTrackingCode(gomock.Any(), "458172.557523").
		Return(rec, nil)

	found, err := s.newService().Verify(context.Background(), "  458172.557523  ")

	s.Require().NoError(err)
	s.Equal(rec, found)
}

func (s *ServiceSuite) TestVerifyNotFound() {
	s.mockStore.EXPECT().
		FindByTrackingCode(gomock.Any(), "000000.000000").
		Return(models.CertificateRecord{}, store.ErrNotFound)

	_, err := s.newService().Verify(context.Background(), "000000.000000")

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestVerifyBlankCode() {
	_, err := s.newService().Verify(context.Background(), "   ")

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestVerifyStoreFailure() {
	s.mockStore.EXPECT().
		FindByTrackingCode(gomock.Any(), gomock.Any()).
		Return(models.CertificateRecord{}, errors.New("connection reset"))

	_, err := s.newService().Verify(context.Background(), "458172.557523")

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestListAll() {
	records := []models.CertificateRecord{{ID: 2}, {ID: 1}}
	s.mockStore.EXPECT().
		ListAll(gomock.Any()).
		Return(records, nil)

	got, err := s.newService().ListAll(context.Background())

	s.Require().NoError(err)
	s.Equal(records, got)
}
