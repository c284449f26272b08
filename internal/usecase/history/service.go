package history

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/fundbalance-backend/internal/domain"
)

// DefaultLimit is the number of summaries returned when a caller does not ask for a size
const DefaultLimit = 10

// RecordDetail is a full history record together with its derived statistics
type RecordDetail struct {
	Record *domain.RebalanceRecord
	Stats  domain.AdviceStats
}

// HistoryService appends and reads immutable rebalance records
type HistoryService struct {
	Repo domain.HistoryRepository
	Now  func() time.Time
}

// NewHistoryService creates a new HistoryService instance
func NewHistoryService(repo domain.HistoryRepository) *HistoryService {
	return &HistoryService{
		Repo: repo,
		Now:  time.Now,
	}
}

// Append stores a copy of the run and returns the stored record
// The repository assigns the id; created_at is stamped here in UTC
func (s *HistoryService) Append(ctx context.Context, threshold, totalValue decimal.Decimal, suggestions []domain.Suggestion) (*domain.RebalanceRecord, error) {
	record := &domain.RebalanceRecord{
		CreatedAt:   s.Now().UTC().Truncate(time.Microsecond),
		Threshold:   threshold,
		TotalValue:  totalValue,
		Suggestions: make([]domain.Suggestion, len(suggestions)),
	}
	copy(record.Suggestions, suggestions)

	if err := s.Repo.Append(ctx, record); err != nil {
		return nil, err
	}

	return record.Clone(), nil
}

// List returns up to limit summaries, most recent first
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.RecordSummary, error) {
	if limit <= 0 {
		return nil, domain.NewValidationError("limit", "limit must be positive, got %d", limit)
	}
	return s.Repo.List(ctx, limit)
}

// Get returns one record with its suggestions and statistics
func (s *HistoryService) Get(ctx context.Context, id int64) (*RecordDetail, error) {
	record, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &RecordDetail{
		Record: record,
		Stats:  domain.Summarize(record.Suggestions),
	}, nil
}
