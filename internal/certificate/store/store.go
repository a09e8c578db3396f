package store

import (
	"context"

	"certifica/internal/certificate/models"
	dErrors "certifica/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	// It is the expected negative verification result, not a failure.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "certificate not found")

	// ErrDuplicateTrackingCode signals that an insert lost the uniqueness race
	// on the tracking code. Recoverable: the caller re-derives with a nonce.
	ErrDuplicateTrackingCode = dErrors.New(dErrors.CodeConflict, "duplicate tracking code")
)

// Store is the durable, append-mostly table of issued certificates.
//
// Insert must enforce tracking-code uniqueness atomically inside the store
// (a unique constraint or equivalent check-and-set), never by a separate
// read-then-write in the caller, so concurrent issuers cannot both claim the
// same code. Records are immutable once inserted; no update or delete is
// part of the contract.
type Store interface {
	// Insert persists a new record and fills its store-assigned fields
	// (ID, CreatedAt). Either the full record becomes visible to subsequent
	// lookups or none of it does.
	Insert(ctx context.Context, record *models.CertificateRecord) error

	// FindByTrackingCode performs an exact-match lookup after trimming
	// surrounding whitespace from the code. Absence is ErrNotFound.
	FindByTrackingCode(ctx context.Context, code string) (models.CertificateRecord, error)

	// ListAll returns every record, most recently created first.
	ListAll(ctx context.Context) ([]models.CertificateRecord, error)
}
