package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"certifica/internal/certificate/models"
)

// InMemoryStore is an in-memory implementation of Store for tests or local use.
// It is safe for concurrent access but does not persist across process restarts.
type InMemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	records map[string]models.CertificateRecord
}

// NewInMemoryStore constructs an empty in-memory certificate store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]models.CertificateRecord)}
}

// Insert claims the tracking code and persists the record under one lock, so
// two concurrent callers can never both observe "code free".
func (s *InMemoryStore) Insert(_ context.Context, record *models.CertificateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.TrackingCode]; exists {
		return ErrDuplicateTrackingCode
	}

	s.nextID++
	record.ID = s.nextID
	record.CreatedAt = time.Now().UTC()
	s.records[record.TrackingCode] = *record
	return nil
}

// FindByTrackingCode retrieves a record by trimmed tracking code or returns ErrNotFound.
func (s *InMemoryStore) FindByTrackingCode(_ context.Context, code string) (models.CertificateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if record, ok := s.records[strings.TrimSpace(code)]; ok {
		return record, nil
	}
	return models.CertificateRecord{}, ErrNotFound
}

// ListAll returns all records, most recently created first.
func (s *InMemoryStore) ListAll(_ context.Context) ([]models.CertificateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CertificateRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
