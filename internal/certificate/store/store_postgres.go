package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"certifica/internal/certificate/models"
)

// uniqueViolation is the PostgreSQL error code raised when an insert hits the
// tracking_code unique constraint.
const uniqueViolation = "23505"

// PostgresStore persists certificates in PostgreSQL. The tracking_code unique
// constraint makes Insert's uniqueness check atomic under concurrent callers.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed certificate store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, record *models.CertificateRecord) error {
	query := `
		INSERT INTO certificates
			(subject_name, event_name, workload, role, institution, city,
			 event_date, issuance_date, notes, tracking_code, originality_code, verification_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		record.SubjectName,
		record.EventName,
		record.Workload,
		string(record.Role),
		record.Institution,
		nullable(record.City),
		record.EventDate,
		record.IssuanceDate,
		nullable(record.Notes),
		record.TrackingCode,
		record.OriginalityCode,
		record.VerificationURL,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateTrackingCode
		}
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByTrackingCode(ctx context.Context, code string) (models.CertificateRecord, error) {
	query := selectColumns + ` FROM certificates WHERE tracking_code = $1`
	record, err := scanCertificate(s.db.QueryRowContext(ctx, query, strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CertificateRecord{}, ErrNotFound
		}
		return models.CertificateRecord{}, fmt.Errorf("find certificate by tracking code: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]models.CertificateRecord, error) {
	query := selectColumns + ` FROM certificates ORDER BY id DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	var out []models.CertificateRecord
	for rows.Next() {
		record, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan certificate row: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate certificates: %w", err)
	}
	return out, nil
}

const selectColumns = `
	SELECT id, subject_name, event_name, workload, role, institution, city,
		event_date, issuance_date, notes, tracking_code, originality_code,
		verification_url, created_at`

type certificateRow interface {
	Scan(dest ...any) error
}

func scanCertificate(row certificateRow) (models.CertificateRecord, error) {
	var record models.CertificateRecord
	var role string
	var city, notes sql.NullString
	if err := row.Scan(
		&record.ID,
		&record.SubjectName,
		&record.EventName,
		&record.Workload,
		&role,
		&record.Institution,
		&city,
		&record.EventDate,
		&record.IssuanceDate,
		&notes,
		&record.TrackingCode,
		&record.OriginalityCode,
		&record.VerificationURL,
		&record.CreatedAt,
	); err != nil {
		return models.CertificateRecord{}, err
	}
	record.Role = models.Role(role)
	record.City = city.String
	record.Notes = notes.String
	return record, nil
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
