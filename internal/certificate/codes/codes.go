// Package codes derives the two verification codes printed on a certificate
// from its canonical attribute payload and a shared secret. Derivation is a
// pure function: identical inputs produce identical codes on every platform,
// which lets an auditor recompute a code from the printed attributes without
// consulting the store.
package codes

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strings"
	"time"

	"certifica/internal/certificate/models"
)

// Separator joins payload fields. Part of the derivation contract.
const Separator = "|"

// trackingSpace is 10^12: the tracking code is the digest reduced into a
// 12-decimal-digit space.
var trackingSpace = new(big.Int).Exp(big.NewInt(10), big.NewInt(12), nil)

// Payload builds the canonical, order-fixed concatenation of the descriptive
// attributes. The field order is a breaking-change contract: reordering it
// silently changes every future code.
func Payload(subject, event, workload string, role models.Role, institution string, eventDate, issuanceDate time.Time) string {
	return strings.Join([]string{
		subject,
		event,
		workload,
		role.String(),
		institution,
		eventDate.Format(models.DateLayout),
		issuanceDate.Format(models.DateLayout),
	}, Separator)
}

// WithNonce appends a collision-avoidance nonce as an extra payload segment.
func WithNonce(payload, nonce string) string {
	return payload + Separator + nonce
}

// Derive computes the code pair from a payload and the process-wide secret.
// The secret is appended to the payload before hashing and must never appear
// in logs or responses.
//
// The originality code is the first 12 hex characters of the SHA-256 digest,
// upper-cased (a 48-bit space; collisions are acceptable since it is not
// uniqueness-enforced). The tracking code interprets the full digest as an
// unsigned integer reduced modulo 10^12, zero-padded to 12 digits and grouped
// as NNNNNN.NNNNNN.
func Derive(payload, secret string) (trackingCode, originalityCode string) {
	sum := sha256.Sum256([]byte(payload + secret))

	originalityCode = strings.ToUpper(hex.EncodeToString(sum[:6]))

	n := new(big.Int).SetBytes(sum[:])
	n.Mod(n, trackingSpace)
	digits := n.String()
	if pad := 12 - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	trackingCode = digits[:6] + "." + digits[6:]
	return trackingCode, originalityCode
}
