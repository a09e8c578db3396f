package codes

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"certifica/internal/certificate/models"
)

// CodesSuite pins down the derivation contract.
//
// Justification: every printed certificate and every stored record depends on
// this function being stable across releases and platforms. The known-vector
// tests guard against accidental changes to the digest input or formatting.
type CodesSuite struct {
	suite.Suite
}

func TestCodesSuite(t *testing.T) {
	suite.Run(t, new(CodesSuite))
}

const testSecret = "s3cr3t"

var trackingFormat = regexp.MustCompile(`^\d{6}\.\d{6}$`)

func (s *CodesSuite) TestKnownVectors() {
	cases := []struct {
		name            string
		payload         string
		wantTracking    string
		wantOriginality string
	}{
		{
			name:            "reference payload",
			payload:         "Ana Lima|Workshop X|4 horas|Participante|Alfa Unipac|01/01/2025|02/01/2025",
			wantTracking:    "458172.557523",
			wantOriginality: "5EC3B1BDABE8",
		},
		{
			name:            "trailing space changes both codes",
			payload:         "Ana Lima |Workshop X|4 horas|Participante|Alfa Unipac|01/01/2025|02/01/2025",
			wantTracking:    "711856.269564",
			wantOriginality: "74C0095912AE",
		},
		{
			name:            "empty payload is still hashed",
			payload:         "",
			wantTracking:    "423863.906493",
			wantOriginality: "4E738CA5563C",
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			tracking, originality := Derive(tc.payload, testSecret)
			s.Equal(tc.wantTracking, tracking)
			s.Equal(tc.wantOriginality, originality)
		})
	}
}

func (s *CodesSuite) TestDeterminism() {
	payload := "Maria Silva|Semana Acadêmica|8 horas|Speaker|Alfa Unipac|10/03/2025|11/03/2025"

	t1, o1 := Derive(payload, testSecret)
	t2, o2 := Derive(payload, testSecret)

	s.Equal(t1, t2)
	s.Equal(o1, o2)
	s.Regexp(trackingFormat, t1)
	s.Len(o1, 12)
}

func (s *CodesSuite) TestPayloadSensitivity() {
	base := Payload("Maria Silva", "Workshop X", "4 horas", models.RoleParticipant, "Alfa Unipac",
		date(2025, 1, 1), date(2025, 1, 2))
	baseTracking, baseOriginality := Derive(base, testSecret)

	variants := []string{
		Payload("Maria  Silva", "Workshop X", "4 horas", models.RoleParticipant, "Alfa Unipac", date(2025, 1, 1), date(2025, 1, 2)),
		Payload("Maria Silva", "Workshop Y", "4 horas", models.RoleParticipant, "Alfa Unipac", date(2025, 1, 1), date(2025, 1, 2)),
		Payload("Maria Silva", "Workshop X", "8 horas", models.RoleParticipant, "Alfa Unipac", date(2025, 1, 1), date(2025, 1, 2)),
		Payload("Maria Silva", "Workshop X", "4 horas", models.RoleSpeaker, "Alfa Unipac", date(2025, 1, 1), date(2025, 1, 2)),
		Payload("Maria Silva", "Workshop X", "4 horas", models.RoleParticipant, "Beta Unipac", date(2025, 1, 1), date(2025, 1, 2)),
		Payload("Maria Silva", "Workshop X", "4 horas", models.RoleParticipant, "Alfa Unipac", date(2025, 1, 3), date(2025, 1, 2)),
		Payload("Maria Silva", "Workshop X", "4 horas", models.RoleParticipant, "Alfa Unipac", date(2025, 1, 1), date(2025, 1, 4)),
	}

	for i, variant := range variants {
		s.NotEqual(base, variant, "variant %d should alter the payload", i)
		tracking, originality := Derive(variant, testSecret)
		if tracking == baseTracking && originality == baseOriginality {
			s.Failf("insensitive variant", "variant %d produced identical codes", i)
		}
	}
}

func (s *CodesSuite) TestSecretSensitivity() {
	payload := Payload("Ana Lima", "Workshop X", "4 horas", models.RoleParticipant, "Alfa Unipac",
		date(2025, 1, 1), date(2025, 1, 2))

	t1, o1 := Derive(payload, "secret-a")
	t2, o2 := Derive(payload, "secret-b")

	s.False(t1 == t2 && o1 == o2, "different secrets must not produce the same code pair")
}

func (s *CodesSuite) TestPayloadOrdering() {
	payload := Payload("Ana Lima", "Workshop X", "4 horas", models.RoleParticipant, "Alfa Unipac",
		date(2025, 1, 1), date(2025, 1, 2))
	s.Equal("Ana Lima|Workshop X|4 horas|Participant|Alfa Unipac|01/01/2025|02/01/2025", payload)
}

func (s *CodesSuite) TestWithNonce() {
	base := "a|b|c"
	s.Equal("a|b|c|2025-01-01T00:00:00Z", WithNonce(base, "2025-01-01T00:00:00Z"))

	t1, _ := Derive(base, testSecret)
	t2, _ := Derive(WithNonce(base, "n"), testSecret)
	s.NotEqual(t1, t2)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
