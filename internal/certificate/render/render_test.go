package render

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"certifica/internal/certificate/models"
	"certifica/internal/certificate/service"
)

type RenderSuite struct {
	suite.Suite
	renderer *HTMLRenderer
	record   models.CertificateRecord
}

func (s *RenderSuite) SetupTest() {
	s.renderer = NewHTML()
	s.record = models.CertificateRecord{
		SubjectName:     "Ana Lima",
		EventName:       "Workshop X",
		Workload:        "4 horas",
		Role:            models.RoleParticipant,
		Institution:     "Alfa Unipac",
		City:            "Teófilo Otoni",
		EventDate:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		IssuanceDate:    time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		TrackingCode:    "458172.557523",
		OriginalityCode: "5EC3B1BDABE8",
		VerificationURL: "https://certs.example/verify?verificar=458172.557523",
	}
}

func TestRenderSuite(t *testing.T) {
	suite.Run(t, new(RenderSuite))
}

func (s *RenderSuite) TestRenderCarriesRecordFields() {
	doc, err := s.renderer.Render(context.Background(), s.record, service.RenderAssets{})
	s.Require().NoError(err)

	html := string(doc)
	s.Contains(html, "Ana Lima")
	s.Contains(html, "Workshop X")
	s.Contains(html, "Alfa Unipac")
	s.Contains(html, "458172.557523")
	s.Contains(html, "5EC3B1BDABE8")
	s.Contains(html, "01/01/2025")
	s.Contains(html, "02/01/2025")
	s.Contains(html, "https://certs.example/verify?verificar=458172.557523")
}

func (s *RenderSuite) TestRenderWithoutAssetsOmitsImages() {
	// Justification: QR and logo are optional; their absence is a normal case
	// and must not leave broken image tags in the document.
	doc, err := s.renderer.Render(context.Background(), s.record, service.RenderAssets{})
	s.Require().NoError(err)
	s.NotContains(string(doc), "<img")
}

func (s *RenderSuite) TestRenderEmbedsAssets() {
	doc, err := s.renderer.Render(context.Background(), s.record, service.RenderAssets{
		Logo: []byte{0x89, 0x50, 0x4e, 0x47},
		QR:   []byte{0x89, 0x50, 0x4e, 0x47},
	})
	s.Require().NoError(err)

	html := string(doc)
	s.Contains(html, "data:image/png;base64,")
	s.Contains(html, `class="logo"`)
	s.Contains(html, `class="qr"`)
}

func (s *RenderSuite) TestRenderEscapesHostileInput() {
	s.record.SubjectName = `<script>alert("x")</script>`

	doc, err := s.renderer.Render(context.Background(), s.record, service.RenderAssets{})
	s.Require().NoError(err)

	html := string(doc)
	s.NotContains(html, "<script>")
	s.Contains(html, "&lt;script&gt;")
}

func (s *RenderSuite) TestRenderOmitsEmptyOptionalFields() {
	s.record.City = ""
	s.record.Notes = ""

	doc, err := s.renderer.Render(context.Background(), s.record, service.RenderAssets{})
	s.Require().NoError(err)

	html := string(doc)
	s.NotContains(html, "class=\"notes\"")
	s.NotContains(html, ", em ,")
}
