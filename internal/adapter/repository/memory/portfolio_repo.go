package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/simaogato/fundbalance-backend/internal/domain"
)

// PortfolioRepository implements domain.PortfolioRepository in process memory
// Every method copies on the way in and out so callers never share slices with the store
type PortfolioRepository struct {
	mu        sync.RWMutex
	portfolio domain.Portfolio
}

// NewPortfolioRepository creates an empty in-memory portfolio repository
func NewPortfolioRepository() *PortfolioRepository {
	return &PortfolioRepository{portfolio: domain.Portfolio{}}
}

// Load retrieves every bucket with its funds
func (r *PortfolioRepository) Load(ctx context.Context) (domain.Portfolio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.portfolio.Clone(), nil
}

// CountBuckets returns the number of stored buckets
func (r *PortfolioRepository) CountBuckets(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.portfolio), nil
}

// CreateBucket stores a bucket and its funds after the existing buckets
func (r *PortfolioRepository) CreateBucket(ctx context.Context, bucket *domain.Bucket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := domain.Portfolio{*bucket}.Clone()[0]
	r.portfolio = append(r.portfolio, stored)
	return nil
}

// InsertFund appends a fund to the end of the bucket
func (r *PortfolioRepository) InsertFund(ctx context.Context, bucketID uuid.UUID, fund *domain.Fund) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.portfolio {
		if r.portfolio[i].ID == bucketID {
			r.portfolio[i].Funds = append(r.portfolio[i].Funds, *fund)
			return nil
		}
	}
	return domain.NewNotFoundError("bucket", bucketID)
}

// UpdateFund overwrites every attribute of an existing fund
func (r *PortfolioRepository) UpdateFund(ctx context.Context, fund *domain.Fund) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bi, fi, ok := r.find(fund.ID)
	if !ok {
		return domain.NewNotFoundError("fund", fund.ID)
	}
	r.portfolio[bi].Funds[fi] = *fund
	return nil
}

// DeleteFund removes a fund, keeping the order of the remaining ones
func (r *PortfolioRepository) DeleteFund(ctx context.Context, fundID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bi, fi, ok := r.find(fundID)
	if !ok {
		return domain.NewNotFoundError("fund", fundID)
	}
	funds := r.portfolio[bi].Funds
	r.portfolio[bi].Funds = append(funds[:fi:fi], funds[fi+1:]...)
	return nil
}

func (r *PortfolioRepository) find(fundID uuid.UUID) (int, int, bool) {
	for bi, bucket := range r.portfolio {
		for fi, f := range bucket.Funds {
			if f.ID == fundID {
				return bi, fi, true
			}
		}
	}
	return 0, 0, false
}
