package memory

import (
	"context"
	"sync"

	"github.com/simaogato/fundbalance-backend/internal/domain"
)

// HistoryRepository implements domain.HistoryRepository in process memory
type HistoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	records []*domain.RebalanceRecord // Append order, so ids ascend
}

// NewHistoryRepository creates an empty in-memory history repository
func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{nextID: 1}
}

// Append stores a copy of the record and sets record.ID
func (r *HistoryRepository) Append(ctx context.Context, record *domain.RebalanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.ID = r.nextID
	r.nextID++
	r.records = append(r.records, record.Clone())
	return nil
}

// List returns up to limit summaries, most recent first
func (r *HistoryRepository) List(ctx context.Context, limit int) ([]domain.RecordSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.RecordSummary, 0, min(limit, len(r.records)))
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[i].Summary())
	}
	return out, nil
}

// Get returns a copy of the full record
func (r *HistoryRepository) Get(ctx context.Context, id int64) (*domain.RebalanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.records {
		if record.ID == id {
			return record.Clone(), nil
		}
	}
	return nil, domain.NewNotFoundError("rebalance record", id)
}
